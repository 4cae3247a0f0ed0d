package icalendar

import (
	"strings"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 1, 2, 8, 30, 0, 0, time.UTC)

func lines(text string) []string {
	return strings.Split(normalizeNewlines(text), "\n")
}

func TestEncodeTask(t *testing.T) {
	tests := []struct {
		name     string
		task     Task
		want     []string
		dontWant []string
	}{
		{
			name: "summary due and priority",
			task: Task{
				UID:      "task-1",
				Summary:  "Review docs",
				Due:      mo.Some(NewDate(2025, time.January, 10)),
				Priority: mo.Some(1),
			},
			want: []string{
				"BEGIN:VCALENDAR",
				"VERSION:2.0",
				"PRODID:" + ProductID,
				"BEGIN:VTODO",
				"UID:task-1",
				"SUMMARY:Review docs",
				"STATUS:NEEDS-ACTION",
				"DUE;VALUE=DATE:20250110",
				"PRIORITY:1",
				"CREATED:20250102T083000Z",
				"LAST-MODIFIED:20250102T083000Z",
				"DTSTAMP:20250102T083000Z",
				"END:VTODO",
				"END:VCALENDAR",
			},
			dontWant: []string{"DESCRIPTION", "PERCENT-COMPLETE"},
		},
		{
			name: "date-time due and explicit status",
			task: Task{
				UID:             "task-2",
				Summary:         "Call back",
				Status:          StatusInProcess,
				Due:             mo.Some(NewDateTime(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))),
				PercentComplete: mo.Some(40),
				Description:     mo.Some("Ask about invoice"),
			},
			want: []string{
				"STATUS:IN-PROCESS",
				"DUE:20250301T090000Z",
				"PERCENT-COMPLETE:40",
				"DESCRIPTION:Ask about invoice",
			},
			dontWant: []string{"PRIORITY"},
		},
		{
			name: "existing creation time kept",
			task: Task{
				UID:     "task-3",
				Summary: "Old task",
				Created: mo.Some(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)),
			},
			want: []string{"CREATED:20240601T120000Z"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := EncodeTask(tt.task, fixedNow)
			require.NoError(t, err)

			got := lines(text)
			for _, w := range tt.want {
				assert.Contains(t, got, w)
			}
			for _, dw := range tt.dontWant {
				assert.NotContains(t, text, dw)
			}
			assert.Equal(t, 1, strings.Count(text, "BEGIN:VTODO"))
		})
	}
}

func TestEncodeTaskErrors(t *testing.T) {
	tests := []struct {
		name string
		task Task
	}{
		{"missing uid", Task{Summary: "x"}},
		{"priority too high", Task{UID: "a", Priority: mo.Some(10)}},
		{"priority zero", Task{UID: "a", Priority: mo.Some(0)}},
		{"percent over 100", Task{UID: "a", PercentComplete: mo.Some(101)}},
		{"unknown status", Task{UID: "a", Status: Status("DONE")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncodeTask(tt.task, fixedNow)
			assert.Error(t, err)
		})
	}
}

func TestEncodeEvent(t *testing.T) {
	ev := Event{
		UID:      "event-1",
		Summary:  "Standup",
		Start:    NewDateTime(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)),
		End:      NewDateTime(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)),
		Location: mo.Some("Room 4"),
	}

	text, err := EncodeEvent(ev, fixedNow)
	require.NoError(t, err)

	got := lines(text)
	assert.Contains(t, got, "BEGIN:VEVENT")
	assert.Contains(t, got, "UID:event-1")
	assert.Contains(t, got, "SUMMARY:Standup")
	assert.Contains(t, got, "DTSTART:20250301T090000Z")
	assert.Contains(t, got, "DTEND:20250301T100000Z")
	assert.Contains(t, got, "LOCATION:Room 4")
	assert.NotContains(t, text, "DESCRIPTION")
	assert.NotContains(t, text, "RRULE")
}

func TestEncodeEventDateOnlyRendersDateTime(t *testing.T) {
	ev := Event{
		UID:   "event-2",
		Start: NewDate(2025, time.May, 1),
		End:   NewDate(2025, time.May, 2),
	}

	text, err := EncodeEvent(ev, fixedNow)
	require.NoError(t, err)

	got := lines(text)
	assert.Contains(t, got, "DTSTART:20250501T000000Z")
	assert.Contains(t, got, "DTEND:20250502T000000Z")
}

func TestEncodeEventRecurrence(t *testing.T) {
	ev := Event{
		UID:   "event-3",
		Start: NewDateTime(time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)),
		End:   NewDateTime(time.Date(2025, 3, 3, 9, 15, 0, 0, time.UTC)),
		RRule: mo.Some("FREQ=WEEKLY;BYDAY=MO"),
	}

	text, err := EncodeEvent(ev, fixedNow)
	require.NoError(t, err)
	assert.Contains(t, lines(text), "RRULE:FREQ=WEEKLY;BYDAY=MO")
}

func TestEncodeEventErrors(t *testing.T) {
	start := NewDateTime(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	tests := []struct {
		name  string
		event Event
	}{
		{"missing uid", Event{Start: start, End: start}},
		{"missing end", Event{UID: "e", Start: start}},
		{"end before start", Event{UID: "e", Start: start, End: NewDateTime(start.Time.Add(-time.Hour))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncodeEvent(tt.event, fixedNow)
			assert.Error(t, err)
		})
	}
}

func TestTaskRoundTrip(t *testing.T) {
	tasks := []Task{
		{UID: "rt-1", Summary: "Minimal", Status: StatusNeedsAction},
		{
			UID:             "rt-2",
			Summary:         "Everything",
			Status:          StatusCompleted,
			Description:     mo.Some("Some notes"),
			PercentComplete: mo.Some(100),
			Priority:        mo.Some(5),
			Due:             mo.Some(NewDate(2025, time.February, 28)),
		},
		{
			UID:     "rt-3",
			Summary: "Timed",
			Status:  StatusCancelled,
			Due:     mo.Some(NewDateTime(time.Date(2025, 4, 1, 17, 45, 0, 0, time.UTC))),
		},
	}

	for _, want := range tasks {
		t.Run(want.UID, func(t *testing.T) {
			text, err := EncodeTask(want, fixedNow)
			require.NoError(t, err)

			got := DecodeTasks(text)
			require.Len(t, got, 1)
			assert.Equal(t, want.UID, got[0].UID)
			assert.Equal(t, want.Summary, got[0].Summary)
			assert.Equal(t, want.Status, got[0].Status)
			assert.Equal(t, want.Description, got[0].Description)
			assert.Equal(t, want.PercentComplete, got[0].PercentComplete)
			assert.Equal(t, want.Priority, got[0].Priority)
			assert.Equal(t, want.Due, got[0].Due)
			assert.Equal(t, mo.Some(fixedNow), got[0].Created)
		})
	}
}

func TestEventRoundTrip(t *testing.T) {
	want := Event{
		UID:         "rt-event",
		Summary:     "Planning",
		Description: mo.Some("Quarterly"),
		Location:    mo.Some("HQ"),
		Start:       NewDateTime(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)),
		End:         NewDateTime(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)),
	}

	text, err := EncodeEvent(want, fixedNow)
	require.NoError(t, err)

	got := DecodeEvents(text)
	require.Len(t, got, 1)
	assert.Equal(t, want.UID, got[0].UID)
	assert.Equal(t, want.Summary, got[0].Summary)
	assert.Equal(t, want.Description, got[0].Description)
	assert.Equal(t, want.Location, got[0].Location)
	assert.Equal(t, want.Start, got[0].Start)
	assert.Equal(t, want.End, got[0].End)
	assert.False(t, got[0].Recurring())
}
