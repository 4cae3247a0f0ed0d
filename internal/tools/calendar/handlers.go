package calendar

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/samber/mo"
	"github.com/teambition/rrule-go"

	"github.com/Jaypeg-dev/nextcloud-mcp/internal/caldav"
	"github.com/Jaypeg-dev/nextcloud-mcp/internal/icalendar"
	"github.com/Jaypeg-dev/nextcloud-mcp/internal/middleware"
	"github.com/Jaypeg-dev/nextcloud-mcp/internal/pkg/response"
	"github.com/Jaypeg-dev/nextcloud-mcp/internal/pkg/validate"
	"github.com/Jaypeg-dev/nextcloud-mcp/internal/services"
)

// --- list_events (core) ---

type ListEventsInput struct {
	StartDate       string `json:"start_date,omitempty" jsonschema:"Start of the range, YYYY-MM-DD or RFC 3339 (default today)"`
	EndDate         string `json:"end_date,omitempty" jsonschema:"End of the range, YYYY-MM-DD or RFC 3339 (default start plus 30 days)"`
	Calendar        string `json:"calendar,omitempty" jsonschema:"Calendar name (defaults to the configured calendar)"`
	Limit           int    `json:"limit,omitempty" jsonschema:"Maximum number of events to return"`
	ExpandRecurring *bool  `json:"expand_recurring,omitempty" jsonschema:"Expand recurring events into occurrences within the range"`
}

type ListEventsOutput struct {
	Calendar string         `json:"calendar"`
	Start    string         `json:"start"`
	End      string         `json:"end"`
	Count    int            `json:"count"`
	Events   []EventSummary `json:"events"`
}

func createListEventsHandler(factory *services.Factory) mcp.ToolHandlerFor[ListEventsInput, ListEventsOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListEventsInput) (*mcp.CallToolResult, ListEventsOutput, error) {
		if input.Calendar != "" {
			if err := validate.CollectionName(input.Calendar); err != nil {
				return nil, ListEventsOutput{}, err
			}
		}
		start, err := parseBound("start_date", input.StartDate, false)
		if err != nil {
			return nil, ListEventsOutput{}, err
		}
		end, err := parseBound("end_date", input.EndDate, true)
		if err != nil {
			return nil, ListEventsOutput{}, err
		}
		if input.Limit <= 0 {
			input.Limit = defaultLimit
		}
		expand := input.ExpandRecurring == nil || *input.ExpandRecurring

		r := caldav.ResolveRange(start, end, factory.Now())
		store := factory.EventStore(input.Calendar)
		events, err := store.List(ctx, r)
		if err != nil {
			return nil, ListEventsOutput{}, middleware.HandleRemoteError(err)
		}

		if expand {
			events = services.ExpandOccurrences(events, r, nil)
		} else {
			services.SortByStart(events)
		}
		if len(events) > input.Limit {
			events = events[:input.Limit]
		}

		out := ListEventsOutput{
			Calendar: store.Name(),
			Start:    icalendar.NewDateTime(r.Start).String(),
			End:      icalendar.NewDateTime(r.End).String(),
			Count:    len(events),
			Events:   make([]EventSummary, 0, len(events)),
		}
		for _, e := range events {
			out.Events = append(out.Events, eventToSummary(e))
		}

		res, err := response.JSON(out)
		return res, out, err
	}
}

// --- create_event (core) ---

type CreateEventInput struct {
	Summary     string `json:"summary" jsonschema:"Event title"`
	Start       string `json:"start" jsonschema:"Start date-time (RFC 3339, e.g. 2025-03-01T09:00:00Z)"`
	End         string `json:"end" jsonschema:"End date-time (RFC 3339); must not be before start"`
	Description string `json:"description,omitempty" jsonschema:"Event description"`
	Location    string `json:"location,omitempty" jsonschema:"Event location"`
	Calendar    string `json:"calendar,omitempty" jsonschema:"Calendar name (defaults to the configured calendar)"`
	RRule       string `json:"rrule,omitempty" jsonschema:"Recurrence rule, e.g. FREQ=WEEKLY;COUNT=10"`
}

type EventOutput struct {
	Calendar string       `json:"calendar"`
	Event    EventSummary `json:"event"`
}

func createCreateEventHandler(factory *services.Factory) mcp.ToolHandlerFor[CreateEventInput, EventOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input CreateEventInput) (*mcp.CallToolResult, EventOutput, error) {
		if strings.TrimSpace(input.Summary) == "" {
			return nil, EventOutput{}, fmt.Errorf("summary is required")
		}
		if input.Calendar != "" {
			if err := validate.CollectionName(input.Calendar); err != nil {
				return nil, EventOutput{}, err
			}
		}
		start, err := icalendar.ParseDate(input.Start)
		if err != nil {
			return nil, EventOutput{}, fmt.Errorf("invalid start: %w", err)
		}
		end, err := icalendar.ParseDate(input.End)
		if err != nil {
			return nil, EventOutput{}, fmt.Errorf("invalid end: %w", err)
		}

		event := icalendar.Event{
			Summary: input.Summary,
			Start:   icalendar.NewDateTime(start.Time),
			End:     icalendar.NewDateTime(end.Time),
		}
		if input.Description != "" {
			event.Description = mo.Some(input.Description)
		}
		if input.Location != "" {
			event.Location = mo.Some(input.Location)
		}
		if input.RRule != "" {
			rule := strings.TrimPrefix(input.RRule, "RRULE:")
			if _, err := rrule.StrToRRule(rule); err != nil {
				return nil, EventOutput{}, fmt.Errorf("invalid rrule: %w", err)
			}
			event.RRule = mo.Some(rule)
		}

		store := factory.EventStore(input.Calendar)
		created, err := store.Create(ctx, event)
		if err != nil {
			return nil, EventOutput{}, middleware.HandleRemoteError(err)
		}

		out := EventOutput{Calendar: store.Name(), Event: eventToSummary(created)}
		res, err := response.JSON(out)
		return res, out, err
	}
}

// --- list_calendars (extended) ---

type ListCalendarsInput struct{}

type ListCalendarsOutput struct {
	Default   string            `json:"default"`
	Calendars []CalendarSummary `json:"calendars"`
}

func createListCalendarsHandler(factory *services.Factory) mcp.ToolHandlerFor[ListCalendarsInput, ListCalendarsOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListCalendarsInput) (*mcp.CallToolResult, ListCalendarsOutput, error) {
		cols, err := factory.Collections(ctx, caldav.ComponentEvent)
		if err != nil {
			return nil, ListCalendarsOutput{}, middleware.HandleRemoteError(err)
		}

		out := ListCalendarsOutput{
			Default:   factory.DefaultCalendar(),
			Calendars: make([]CalendarSummary, 0, len(cols)),
		}
		for _, c := range cols {
			out.Calendars = append(out.Calendars, CalendarSummary{
				Name:        c.Name,
				DisplayName: c.DisplayName,
				Description: c.Description,
			})
		}

		res, err := response.JSON(out)
		return res, out, err
	}
}

// --- delete_event (complete) ---

type DeleteEventInput struct {
	UID      string `json:"uid" jsonschema:"UID of the event to delete"`
	Calendar string `json:"calendar,omitempty" jsonschema:"Calendar name (defaults to the configured calendar)"`
}

type DeleteOutput struct {
	UID     string `json:"uid"`
	Deleted bool   `json:"deleted"`
}

func createDeleteEventHandler(factory *services.Factory) mcp.ToolHandlerFor[DeleteEventInput, DeleteOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input DeleteEventInput) (*mcp.CallToolResult, DeleteOutput, error) {
		if err := validate.UID(input.UID); err != nil {
			return nil, DeleteOutput{}, err
		}
		if input.Calendar != "" {
			if err := validate.CollectionName(input.Calendar); err != nil {
				return nil, DeleteOutput{}, err
			}
		}

		if err := factory.EventStore(input.Calendar).Delete(ctx, input.UID); err != nil {
			return nil, DeleteOutput{}, middleware.HandleRemoteError(err)
		}

		out := DeleteOutput{UID: input.UID, Deleted: true}
		res, err := response.JSON(out)
		return res, out, err
	}
}
