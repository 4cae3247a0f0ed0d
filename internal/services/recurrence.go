package services

import (
	"log/slog"
	"slices"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/Jaypeg-dev/nextcloud-mcp/internal/caldav"
	"github.com/Jaypeg-dev/nextcloud-mcp/internal/icalendar"
)

// MaxOccurrencesPerEvent caps how many instances one recurrence rule may
// contribute to a window.
const MaxOccurrencesPerEvent = 500

// ExpandOccurrences replaces every recurring event with its occurrences in
// r, each keeping the master's duration. EXDATE instances are dropped and
// instances with a RECURRENCE-ID override are replaced by the override,
// which is listed when its own time overlaps r. Non-recurring events pass
// through. A rule that fails to parse leaves the master in place. The
// result is sorted by start time.
func ExpandOccurrences(events []icalendar.Event, r caldav.TimeRange, logger *slog.Logger) []icalendar.Event {
	if logger == nil {
		logger = slog.Default()
	}

	out := make([]icalendar.Event, 0, len(events))
	for _, e := range events {
		raw, ok := e.RRule.Get()
		if !ok {
			out = append(out, e)
			continue
		}

		rule, err := rrule.StrToRRule(raw)
		if err != nil {
			logger.Warn("skipping expansion of unparseable recurrence rule",
				"uid", e.UID,
				"rrule", raw,
				"error", err,
			)
			out = append(out, e)
			continue
		}
		rule.DTStart(e.Start.Time)

		var set rrule.Set
		set.RRule(rule)
		for _, ex := range e.ExDates {
			set.ExDate(ex)
		}

		master := e
		master.Overrides = nil
		for _, o := range e.Overrides {
			set.ExDate(o.RecurrenceID.MustGet())
			if overlaps(o.Start.Time, o.End.Time, r) {
				out = append(out, o)
			}
		}

		duration := max(e.End.Time.Sub(e.Start.Time), 0)
		// Step the window start back by the duration so occurrences that
		// began before the window but are still running are kept.
		starts := set.Between(r.Start.Add(-duration), r.End, true)
		if len(starts) > MaxOccurrencesPerEvent {
			logger.Warn("truncating recurring event occurrences",
				"uid", e.UID,
				"cap", MaxOccurrencesPerEvent,
			)
			starts = starts[:MaxOccurrencesPerEvent]
		}

		for _, start := range starts {
			end := start.Add(duration)
			if !overlaps(start, end, r) {
				continue
			}
			occ := master
			occ.Start = icalendar.Date{Time: start.UTC(), DateOnly: e.Start.DateOnly}
			occ.End = icalendar.Date{Time: end.UTC(), DateOnly: e.End.DateOnly}
			out = append(out, occ)
		}
	}

	SortByStart(out)
	return out
}

// overlaps reports whether [start, end) intersects r. A zero-length
// instance overlaps when it starts inside r.
func overlaps(start, end time.Time, r caldav.TimeRange) bool {
	if !start.Before(r.End) {
		return false
	}
	if end.After(start) {
		return end.After(r.Start)
	}
	return !start.Before(r.Start)
}

// SortByStart orders events by start time, keeping server order for ties.
func SortByStart(events []icalendar.Event) {
	slices.SortStableFunc(events, func(a, b icalendar.Event) int {
		return a.Start.Time.Compare(b.Start.Time)
	})
}
