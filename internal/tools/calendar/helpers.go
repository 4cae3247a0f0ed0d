package calendar

import (
	"fmt"
	"time"

	"github.com/samber/mo"

	"github.com/Jaypeg-dev/nextcloud-mcp/internal/icalendar"
)

const (
	defaultLimit = 50
	maxLimit     = 1000
)

// CalendarSummary is a compact representation of a calendar collection.
type CalendarSummary struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"`
	Description string `json:"description,omitempty"`
}

// EventSummary is a compact representation of a calendar event or one
// occurrence of a recurring event.
type EventSummary struct {
	UID         string `json:"uid"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	Start       string `json:"start"`
	End         string `json:"end"`
	AllDay      bool   `json:"all_day,omitempty"`
	Recurrence  string `json:"recurrence,omitempty"`
	Created     string `json:"created,omitempty"`
}

// eventToSummary converts a decoded event to a compact summary.
func eventToSummary(e icalendar.Event) EventSummary {
	s := EventSummary{
		UID:         e.UID,
		Summary:     e.Summary,
		Description: e.Description.OrEmpty(),
		Location:    e.Location.OrEmpty(),
		Start:       e.Start.String(),
		End:         e.End.String(),
		AllDay:      e.Start.DateOnly,
		Recurrence:  e.RRule.OrEmpty(),
	}
	if created, ok := e.Created.Get(); ok {
		s.Created = icalendar.NewDateTime(created).String()
	}
	return s
}

// parseBound parses an optional date bound given by the caller. A plain
// date used as an end bound covers that whole day.
func parseBound(field, value string, end bool) (mo.Option[time.Time], error) {
	if value == "" {
		return mo.None[time.Time](), nil
	}
	d, err := icalendar.ParseDate(value)
	if err != nil {
		return mo.None[time.Time](), fmt.Errorf("invalid %s: %w", field, err)
	}
	if end && d.DateOnly {
		return mo.Some(d.Time.AddDate(0, 0, 1)), nil
	}
	return mo.Some(d.Time), nil
}
