package tasks

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Jaypeg-dev/nextcloud-mcp/internal/icalendar"
	"github.com/Jaypeg-dev/nextcloud-mcp/internal/pkg/ptr"
	"github.com/Jaypeg-dev/nextcloud-mcp/internal/pkg/schema"
	"github.com/Jaypeg-dev/nextcloud-mcp/internal/pkg/toolgate"
	"github.com/Jaypeg-dev/nextcloud-mcp/internal/services"
)

var serviceIcons = []mcp.Icon{{
	Source:   "https://raw.githubusercontent.com/nextcloud/tasks/main/img/app.svg",
	MIMEType: "image/svg+xml",
	Sizes:    []string{"any"},
}}

// statusFilters are the values list_tasks accepts for status.
var statusFilters = []string{filterAll, filterOpen, filterCompleted}

func statusValues() []string {
	out := make([]string, 0, len(icalendar.Statuses))
	for _, s := range icalendar.Statuses {
		out = append(out, string(s))
	}
	return out
}

// Register registers all task tools (core + extended + complete) with the gate.
func Register(gate *toolgate.Gate, factory *services.Factory) {
	// --- Core tools ---

	toolgate.Add(gate, &mcp.Tool{
		Name:        "list_tasks",
		Icons:       serviceIcons,
		Description: "List tasks (VTODO) in a Nextcloud task list, optionally filtered by status. Open means neither completed nor cancelled.",
		InputSchema: schema.For[ListTasksInput](
			schema.Enum("status", statusFilters...),
			schema.Default("status", filterAll),
			schema.Default("limit", defaultLimit),
			schema.Range("limit", 1, maxLimit),
		),
		Annotations: &mcp.ToolAnnotations{
			Title:         "List Tasks",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr.Bool(true),
		},
	}, createListTasksHandler(factory))

	toolgate.Add(gate, &mcp.Tool{
		Name:        "create_task",
		Icons:       serviceIcons,
		Description: "Create a new task in a Nextcloud task list. Due accepts a date (2025-01-10) or a date-time (2025-01-10T09:00:00Z).",
		InputSchema: schema.For[CreateTaskInput](
			schema.Range("priority", 1, 9),
		),
		Annotations: &mcp.ToolAnnotations{
			Title:         "Create Task",
			OpenWorldHint: ptr.Bool(true),
		},
	}, createCreateTaskHandler(factory))

	toolgate.Add(gate, &mcp.Tool{
		Name:        "update_task",
		Icons:       serviceIcons,
		Description: "Update a task's summary, status, or percent complete. Only specified fields are changed; every other property of the stored task is kept as is.",
		InputSchema: schema.For[UpdateTaskInput](
			schema.Enum("status", statusValues()...),
			schema.Range("percent_complete", 0, 100),
		),
		Annotations: &mcp.ToolAnnotations{
			Title:          "Update Task",
			IdempotentHint: true,
			OpenWorldHint:  ptr.Bool(true),
		},
	}, createUpdateTaskHandler(factory))

	// --- Extended tools ---

	toolgate.Add(gate, &mcp.Tool{
		Name:        "get_task",
		Icons:       serviceIcons,
		Description: "Get a single task by UID, including description, due date, priority, and timestamps.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Get Task",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr.Bool(true),
		},
	}, createGetTaskHandler(factory))

	toolgate.Add(gate, &mcp.Tool{
		Name:        "list_task_lists",
		Icons:       serviceIcons,
		Description: "List the user's Nextcloud collections that can hold tasks. Returns the names accepted by the task_list parameter of other task tools.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "List Task Lists",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr.Bool(true),
		},
	}, createListTaskListsHandler(factory))

	// --- Complete tools ---

	toolgate.Add(gate, &mcp.Tool{
		Name:        "delete_task",
		Icons:       serviceIcons,
		Description: "Permanently delete a task. This action cannot be undone.",
		Annotations: &mcp.ToolAnnotations{
			Title:           "Delete Task",
			DestructiveHint: ptr.Bool(true),
			OpenWorldHint:   ptr.Bool(true),
		},
	}, createDeleteTaskHandler(factory))
}
