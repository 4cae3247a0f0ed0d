package icalendar

import (
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/samber/mo"
)

// Properties read from a VTODO or VEVENT. Every other line is skipped.
const (
	propUID             = ical.PropUID
	propSummary         = ical.PropSummary
	propDescription     = ical.PropDescription
	propStatus          = ical.PropStatus
	propPercentComplete = ical.PropPercentComplete
	propPriority        = ical.PropPriority
	propDue             = ical.PropDue
	propStart           = ical.PropDateTimeStart
	propEnd             = ical.PropDateTimeEnd
	propLocation        = ical.PropLocation
	propCreated         = ical.PropCreated
	propLastModified    = ical.PropLastModified
	propRRule           = ical.PropRecurrenceRule
	propDuration        = ical.PropDuration
	propExDate          = ical.PropExceptionDates
	propRecurrenceID    = ical.PropRecurrenceID
)

// contentLine is one unfolded property line split into its parts.
type contentLine struct {
	name   string
	params map[string]string
	value  string
}

func (l contentLine) param(name string) string {
	return l.params[name]
}

// DecodeTasks returns every VTODO in text that carries a UID. Components
// without a UID and unparseable values are dropped silently.
func DecodeTasks(text string) []Task {
	var tasks []Task
	for _, obj := range Split(text) {
		if t, ok := decodeTask(obj); ok {
			tasks = append(tasks, t)
		}
	}
	return tasks
}

// DecodeEvents returns every VEVENT in text that carries a UID.
func DecodeEvents(text string) []Event {
	var events []Event
	for _, obj := range Split(text) {
		if e, ok := decodeEvent(obj); ok {
			events = append(events, e)
		}
	}
	return events
}

func decodeTask(obj Object) (Task, bool) {
	props, ok := firstComponent(obj.Data, ical.CompToDo)
	if !ok {
		return Task{}, false
	}
	t := Task{Status: StatusNeedsAction, Href: obj.Href, ETag: obj.ETag}
	if l, ok := props[propUID]; ok {
		t.UID = strings.TrimSpace(l.value)
	}
	if t.UID == "" {
		return Task{}, false
	}
	if l, ok := props[propSummary]; ok {
		t.Summary = unescapeText(l.value)
	}
	if l, ok := props[propDescription]; ok {
		t.Description = mo.Some(unescapeText(l.value))
	}
	if l, ok := props[propStatus]; ok {
		if st, err := ParseStatus(l.value); err == nil {
			t.Status = st
		}
	}
	if l, ok := props[propPercentComplete]; ok {
		if n, err := strconv.Atoi(strings.TrimSpace(l.value)); err == nil && n >= 0 && n <= 100 {
			t.PercentComplete = mo.Some(n)
		}
	}
	if l, ok := props[propPriority]; ok {
		// PRIORITY:0 means undefined.
		if n, err := strconv.Atoi(strings.TrimSpace(l.value)); err == nil && n >= 1 && n <= 9 {
			t.Priority = mo.Some(n)
		}
	}
	if l, ok := props[propDue]; ok {
		if d, ok := parseValue(l.value, l.param("VALUE")); ok {
			t.Due = mo.Some(d)
		}
	}
	t.Created = timestamp(props, propCreated)
	t.LastModified = timestamp(props, propLastModified)
	return t, true
}

// decodeEvent reads the recurring master of obj, or its first VEVENT when
// there is none. Overrides carrying the master's UID are attached to it.
func decodeEvent(obj Object) (Event, bool) {
	comps := components(obj.Data, ical.CompEvent)
	if len(comps) == 0 {
		return Event{}, false
	}
	master := 0
	for i, c := range comps {
		if _, ok := c.props[propRecurrenceID]; !ok {
			master = i
			break
		}
	}

	e, ok := eventFrom(comps[master], obj)
	if !ok {
		return Event{}, false
	}
	if !e.Recurring() {
		return e, true
	}
	for i, c := range comps {
		if i == master {
			continue
		}
		o, ok := eventFrom(c, obj)
		if !ok || o.UID != e.UID || o.RecurrenceID.IsAbsent() {
			continue
		}
		e.Overrides = append(e.Overrides, o)
	}
	return e, true
}

func eventFrom(c component, obj Object) (Event, bool) {
	props := c.props
	e := Event{Href: obj.Href, ETag: obj.ETag}
	if l, ok := props[propUID]; ok {
		e.UID = strings.TrimSpace(l.value)
	}
	if e.UID == "" {
		return Event{}, false
	}
	if l, ok := props[propSummary]; ok {
		e.Summary = unescapeText(l.value)
	}
	if l, ok := props[propDescription]; ok {
		e.Description = mo.Some(unescapeText(l.value))
	}
	if l, ok := props[propLocation]; ok {
		e.Location = mo.Some(unescapeText(l.value))
	}
	if l, ok := props[propStart]; ok {
		if d, ok := parseValue(l.value, l.param("VALUE")); ok {
			e.Start = d
		}
	}
	e.End = eventEnd(props, e.Start)
	if l, ok := props[propRRule]; ok && strings.TrimSpace(l.value) != "" {
		e.RRule = mo.Some(strings.TrimSpace(l.value))
	}
	for _, l := range c.all(propExDate) {
		for _, v := range strings.Split(l.value, ",") {
			if d, ok := parseValue(v, l.param("VALUE")); ok {
				e.ExDates = append(e.ExDates, d.Time)
			}
		}
	}
	e.RecurrenceID = timestamp(props, propRecurrenceID)
	e.Created = timestamp(props, propCreated)
	return e, true
}

// eventEnd returns DTEND, else DTSTART plus DURATION. Without either, a
// date-only event lasts one day and a timed event ends when it starts.
func eventEnd(props map[string]contentLine, start Date) Date {
	if l, ok := props[propEnd]; ok {
		if d, ok := parseValue(l.value, l.param("VALUE")); ok {
			return d
		}
	}
	if start.Time.IsZero() {
		return Date{}
	}
	if l, ok := props[propDuration]; ok {
		prop := ical.NewProp(propDuration)
		prop.Value = strings.TrimSpace(l.value)
		if dur, err := prop.Duration(); err == nil && dur >= 0 {
			return Date{Time: start.Time.Add(dur), DateOnly: start.DateOnly}
		}
	}
	if start.DateOnly {
		return Date{Time: start.Time.AddDate(0, 0, 1), DateOnly: true}
	}
	return start
}

func timestamp(props map[string]contentLine, name string) mo.Option[time.Time] {
	l, ok := props[name]
	if !ok {
		return mo.None[time.Time]()
	}
	d, ok := parseValue(l.value, l.param("VALUE"))
	if !ok {
		return mo.None[time.Time]()
	}
	return mo.Some(d.Time)
}

// component is one VTODO or VEVENT. props holds the first occurrence of
// each property and lines every property in order.
type component struct {
	props map[string]contentLine
	lines []contentLine
}

func (c component) all(name string) []contentLine {
	var out []contentLine
	for _, l := range c.lines {
		if l.name == name {
			out = append(out, l)
		}
	}
	return out
}

// firstComponent returns the properties of the first kind component in
// data.
func firstComponent(data, kind string) (map[string]contentLine, bool) {
	comps := components(data, kind)
	if len(comps) == 0 {
		return nil, false
	}
	return comps[0].props, true
}

// components collects every kind component in data. Properties of nested
// components such as VALARM, and of siblings such as VTIMEZONE, are not
// collected.
func components(data, kind string) []component {
	var (
		out    []component
		cur    component
		inside bool
		depth  int
	)
	for _, raw := range unfold(data) {
		l, ok := parseContentLine(raw)
		if !ok {
			continue
		}
		switch l.name {
		case "BEGIN":
			if inside {
				depth++
			} else if strings.EqualFold(strings.TrimSpace(l.value), kind) {
				inside = true
				cur = component{props: make(map[string]contentLine)}
			}
			continue
		case "END":
			if inside {
				if depth == 0 {
					out = append(out, cur)
					inside = false
				} else {
					depth--
				}
			}
			continue
		}
		if inside && depth == 0 {
			if _, seen := cur.props[l.name]; !seen {
				cur.props[l.name] = l
			}
			cur.lines = append(cur.lines, l)
		}
	}
	// An unterminated component still counts.
	if inside {
		out = append(out, cur)
	}
	return out
}

// unfold joins RFC 5545 continuation lines onto the line they continue.
func unfold(data string) []string {
	var lines []string
	for _, line := range strings.Split(normalizeNewlines(data), "\n") {
		if len(lines) > 0 && (strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")) {
			lines[len(lines)-1] += line[1:]
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// parseContentLine splits NAME;PARAM=V;...:VALUE. The name is matched
// without its parameters, and colons inside quoted parameter values do not
// end the name.
func parseContentLine(line string) (contentLine, bool) {
	colon := -1
	quoted := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			quoted = !quoted
		case ':':
			if !quoted {
				colon = i
			}
		}
		if colon >= 0 {
			break
		}
	}
	if colon <= 0 {
		return contentLine{}, false
	}

	head := line[:colon]
	l := contentLine{value: line[colon+1:]}
	parts := strings.Split(head, ";")
	l.name = strings.ToUpper(strings.TrimSpace(parts[0]))
	if l.name == "" {
		return contentLine{}, false
	}
	for _, p := range parts[1:] {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			continue
		}
		if l.params == nil {
			l.params = make(map[string]string)
		}
		l.params[strings.ToUpper(strings.TrimSpace(k))] = strings.Trim(v, `"`)
	}
	return l, true
}

func unescapeText(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n', 'N':
			b.WriteByte('\n')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func escapeText(s string) string {
	r := strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\r\n", `\n`, "\n", `\n`)
	return r.Replace(s)
}
