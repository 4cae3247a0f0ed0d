package icalendar

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/emersion/go-ical"
	"github.com/samber/mo"
)

// maxLineOctets is the RFC 5545 content line limit, excluding the line break.
const maxLineOctets = 75

// TaskUpdate names the fields to change. Absent fields are left alone.
type TaskUpdate struct {
	Summary         mo.Option[string]
	Status          mo.Option[Status]
	PercentComplete mo.Option[int]
}

// Empty reports whether the update names no field.
func (u TaskUpdate) Empty() bool {
	return u.Summary.IsAbsent() && u.Status.IsAbsent() && u.PercentComplete.IsAbsent()
}

// ApplyTaskUpdate edits the first VTODO in raw in place. The first
// SUMMARY, STATUS and PERCENT-COMPLETE lines are replaced when named in u.
// A missing SUMMARY or STATUS line is left missing; a missing
// PERCENT-COMPLETE is inserted just before END:VTODO. LAST-MODIFIED is
// always set to now. All other lines, including properties the model does
// not know about, come back unchanged, as does the line terminator style.
// Text without a VTODO is returned as is.
func ApplyTaskUpdate(raw string, u TaskUpdate, now time.Time) string {
	eol := "\n"
	if strings.Contains(raw, "\r\n") {
		eol = "\r\n"
	}
	lines := strings.Split(raw, eol)

	begin, end := componentBounds(lines, ical.CompToDo)
	if begin < 0 {
		return raw
	}

	set := func(name, value string, insert bool) {
		replacement := foldLine(name + ":" + value)
		at, n := findProperty(lines, begin+1, end, name)
		switch {
		case at >= 0:
			lines = splice(lines, at, n, replacement)
			end += len(replacement) - n
		case insert:
			lines = splice(lines, end, 0, replacement)
			end += len(replacement)
		}
	}

	if s, ok := u.Summary.Get(); ok {
		set(propSummary, escapeText(s), false)
	}
	if st, ok := u.Status.Get(); ok {
		set(propStatus, string(st), false)
	}
	set(propLastModified, now.UTC().Format(dateTimeLayout), true)
	// Inserted last so a new PERCENT-COMPLETE sits directly before END:VTODO.
	if pct, ok := u.PercentComplete.Get(); ok {
		set(propPercentComplete, strconv.Itoa(pct), true)
	}

	return strings.Join(lines, eol)
}

// componentBounds returns the indexes of the BEGIN and matching END line
// of the first kind component, or -1, -1.
func componentBounds(lines []string, kind string) (int, int) {
	begin := -1
	depth := 0
	for i, line := range lines {
		if isContinuation(line) {
			continue
		}
		l, ok := parseContentLine(line)
		if !ok {
			continue
		}
		switch l.name {
		case "BEGIN":
			if begin < 0 {
				if strings.EqualFold(strings.TrimSpace(l.value), kind) {
					begin = i
				}
				continue
			}
			depth++
		case "END":
			if begin < 0 {
				continue
			}
			if depth == 0 {
				return begin, i
			}
			depth--
		}
	}
	return -1, -1
}

// findProperty returns the index of the first name property directly
// inside lines[from:to] and how many physical lines it spans.
func findProperty(lines []string, from, to int, name string) (int, int) {
	depth := 0
	for i := from; i < to; i++ {
		if isContinuation(lines[i]) {
			continue
		}
		l, ok := parseContentLine(lines[i])
		if !ok {
			continue
		}
		switch l.name {
		case "BEGIN":
			depth++
			continue
		case "END":
			depth--
			continue
		}
		if depth != 0 || l.name != name {
			continue
		}
		n := 1
		for i+n < to && isContinuation(lines[i+n]) {
			n++
		}
		return i, n
	}
	return -1, 0
}

func isContinuation(line string) bool {
	return strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
}

func splice(lines []string, at, remove int, insert []string) []string {
	out := make([]string, 0, len(lines)-remove+len(insert))
	out = append(out, lines[:at]...)
	out = append(out, insert...)
	return append(out, lines[at+remove:]...)
}

// foldLine splits a content line into RFC 5545 physical lines without
// cutting a UTF-8 sequence.
func foldLine(line string) []string {
	if len(line) <= maxLineOctets {
		return []string{line}
	}
	var out []string
	for len(line) > maxLineOctets {
		cut := maxLineOctets
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		out = append(out, line[:cut])
		// The leading space counts towards the next line's octets.
		line = " " + line[cut:]
	}
	return append(out, line)
}
