package icalendar

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout     = "20060102"
	dateTimeLayout = "20060102T150405Z"
	floatingLayout = "20060102T150405"
)

// Date is either a calendar date or a UTC date-time. The two are kept
// apart so a DUE date never turns into a midnight timestamp on re-encode.
type Date struct {
	Time     time.Time
	DateOnly bool
}

// NewDate returns a date-only value.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), DateOnly: true}
}

// NewDateTime returns a date-time value normalized to UTC.
func NewDateTime(t time.Time) Date {
	return Date{Time: t.UTC()}
}

// String renders the normalized form: 2025-01-10 or 2025-03-01 09:00.
func (d Date) String() string {
	if d.Time.IsZero() {
		return ""
	}
	if d.DateOnly {
		return d.Time.Format("2006-01-02")
	}
	return d.Time.UTC().Format("2006-01-02 15:04")
}

// ICal renders the compact iCalendar form used on the wire.
func (d Date) ICal() string {
	if d.DateOnly {
		return d.Time.Format(dateLayout)
	}
	return d.Time.UTC().Format(dateTimeLayout)
}

// Before compares the instants of two values.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

var inputLayouts = []struct {
	layout   string
	dateOnly bool
}{
	{"2006-01-02", true},
	{dateLayout, true},
	{time.RFC3339, false},
	{"2006-01-02T15:04:05", false},
	{"2006-01-02T15:04", false},
	{"2006-01-02 15:04:05", false},
	{"2006-01-02 15:04", false},
	{dateTimeLayout, false},
	{floatingLayout, false},
}

// ParseDate reads a user-supplied date or date-time. Values without an
// offset are taken as UTC.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, in := range inputLayouts {
		t, err := time.Parse(in.layout, s)
		if err != nil {
			continue
		}
		if in.dateOnly {
			return Date{Time: t, DateOnly: true}, nil
		}
		return NewDateTime(t), nil
	}
	return Date{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD or YYYY-MM-DDTHH:MM[:SS][Z])", s)
}

// parseValue reads a DATE or DATE-TIME property value. TZID parameters are
// not modelled: local and floating times are read as UTC.
func parseValue(value, valueType string) (Date, bool) {
	value = strings.TrimSpace(value)
	if strings.EqualFold(valueType, "DATE") {
		t, err := time.Parse(dateLayout, value)
		if err != nil {
			return Date{}, false
		}
		return Date{Time: t, DateOnly: true}, true
	}
	switch len(value) {
	case len(dateLayout):
		t, err := time.Parse(dateLayout, value)
		if err != nil {
			return Date{}, false
		}
		return Date{Time: t, DateOnly: true}, true
	case len(dateTimeLayout):
		t, err := time.Parse(dateTimeLayout, value)
		if err != nil {
			return Date{}, false
		}
		return Date{Time: t}, true
	case len(floatingLayout):
		t, err := time.Parse(floatingLayout, value)
		if err != nil {
			return Date{}, false
		}
		return Date{Time: t}, true
	}
	return Date{}, false
}
