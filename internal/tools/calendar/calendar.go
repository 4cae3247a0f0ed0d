package calendar

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Jaypeg-dev/nextcloud-mcp/internal/pkg/ptr"
	"github.com/Jaypeg-dev/nextcloud-mcp/internal/pkg/schema"
	"github.com/Jaypeg-dev/nextcloud-mcp/internal/pkg/toolgate"
	"github.com/Jaypeg-dev/nextcloud-mcp/internal/services"
)

var serviceIcons = []mcp.Icon{{
	Source:   "https://raw.githubusercontent.com/nextcloud/calendar/main/img/calendar.svg",
	MIMEType: "image/svg+xml",
	Sizes:    []string{"any"},
}}

// Register registers all calendar tools with the gate.
func Register(gate *toolgate.Gate, factory *services.Factory) {
	// --- Core tools ---

	toolgate.Add(gate, &mcp.Tool{
		Name:        "list_events",
		Icons:       serviceIcons,
		Description: "List calendar events (VEVENT) overlapping a date range. Defaults to today through 30 days from the start. Recurring events are expanded into individual occurrences unless expand_recurring is false.",
		InputSchema: schema.For[ListEventsInput](
			schema.Default("limit", defaultLimit),
			schema.Range("limit", 1, maxLimit),
			schema.Default("expand_recurring", true),
		),
		Annotations: &mcp.ToolAnnotations{
			Title:         "List Events",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr.Bool(true),
		},
	}, createListEventsHandler(factory))

	toolgate.Add(gate, &mcp.Tool{
		Name:        "create_event",
		Icons:       serviceIcons,
		Description: "Create a calendar event. Start and end accept RFC 3339 date-times (2025-03-01T09:00:00Z) or plain dates; times are stored in UTC.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Create Event",
			OpenWorldHint: ptr.Bool(true),
		},
	}, createCreateEventHandler(factory))

	// --- Extended tools ---

	toolgate.Add(gate, &mcp.Tool{
		Name:        "list_calendars",
		Icons:       serviceIcons,
		Description: "List the user's Nextcloud calendars that can hold events. Returns the names accepted by the calendar parameter of other calendar tools.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "List Calendars",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr.Bool(true),
		},
	}, createListCalendarsHandler(factory))

	// --- Complete tools ---

	toolgate.Add(gate, &mcp.Tool{
		Name:        "delete_event",
		Icons:       serviceIcons,
		Description: "Permanently delete a calendar event, including every occurrence of a recurring event. This action cannot be undone.",
		Annotations: &mcp.ToolAnnotations{
			Title:           "Delete Event",
			DestructiveHint: ptr.Bool(true),
			OpenWorldHint:   ptr.Bool(true),
		},
	}, createDeleteEventHandler(factory))
}
