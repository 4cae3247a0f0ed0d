package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/samber/mo"

	"github.com/Jaypeg-dev/nextcloud-mcp/internal/caldav"
	"github.com/Jaypeg-dev/nextcloud-mcp/internal/icalendar"
	"github.com/Jaypeg-dev/nextcloud-mcp/internal/middleware"
	"github.com/Jaypeg-dev/nextcloud-mcp/internal/pkg/response"
	"github.com/Jaypeg-dev/nextcloud-mcp/internal/pkg/validate"
	"github.com/Jaypeg-dev/nextcloud-mcp/internal/services"
)

// --- list_tasks (core) ---

type ListTasksInput struct {
	TaskList string `json:"task_list,omitempty" jsonschema:"Task list name (defaults to the configured list)"`
	Status   string `json:"status,omitempty" jsonschema:"Which tasks to return: all, open, or completed"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Maximum number of tasks to return"`
}

type ListTasksOutput struct {
	TaskList string        `json:"task_list"`
	Count    int           `json:"count"`
	Tasks    []TaskSummary `json:"tasks"`
}

func createListTasksHandler(factory *services.Factory) mcp.ToolHandlerFor[ListTasksInput, ListTasksOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListTasksInput) (*mcp.CallToolResult, ListTasksOutput, error) {
		if input.TaskList != "" {
			if err := validate.CollectionName(input.TaskList); err != nil {
				return nil, ListTasksOutput{}, err
			}
		}
		if input.Status == "" {
			input.Status = filterAll
		}
		if input.Limit <= 0 {
			input.Limit = defaultLimit
		}

		store := factory.TaskStore(input.TaskList)
		all, err := store.List(ctx)
		if err != nil {
			return nil, ListTasksOutput{}, middleware.HandleRemoteError(err)
		}

		out := ListTasksOutput{TaskList: store.Name(), Tasks: make([]TaskSummary, 0, min(len(all), input.Limit))}
		for _, t := range all {
			if len(out.Tasks) == input.Limit {
				break
			}
			if matchesFilter(t, input.Status) {
				out.Tasks = append(out.Tasks, taskToSummary(t))
			}
		}
		out.Count = len(out.Tasks)

		res, err := response.JSON(out)
		return res, out, err
	}
}

// --- create_task (core) ---

type CreateTaskInput struct {
	Summary     string `json:"summary" jsonschema:"Task title"`
	Description string `json:"description,omitempty" jsonschema:"Task notes"`
	Due         string `json:"due,omitempty" jsonschema:"Due date (YYYY-MM-DD) or date-time (RFC 3339)"`
	Priority    int    `json:"priority,omitempty" jsonschema:"Priority from 1 (highest) to 9 (lowest)"`
	TaskList    string `json:"task_list,omitempty" jsonschema:"Task list name (defaults to the configured list)"`
}

type TaskOutput struct {
	TaskList string      `json:"task_list"`
	Task     TaskSummary `json:"task"`
}

func createCreateTaskHandler(factory *services.Factory) mcp.ToolHandlerFor[CreateTaskInput, TaskOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input CreateTaskInput) (*mcp.CallToolResult, TaskOutput, error) {
		if strings.TrimSpace(input.Summary) == "" {
			return nil, TaskOutput{}, fmt.Errorf("summary is required")
		}
		if input.TaskList != "" {
			if err := validate.CollectionName(input.TaskList); err != nil {
				return nil, TaskOutput{}, err
			}
		}

		task := icalendar.Task{
			Summary: input.Summary,
			Status:  icalendar.StatusNeedsAction,
		}
		if input.Description != "" {
			task.Description = mo.Some(input.Description)
		}
		if input.Due != "" {
			due, err := icalendar.ParseDate(input.Due)
			if err != nil {
				return nil, TaskOutput{}, fmt.Errorf("invalid due: %w", err)
			}
			task.Due = mo.Some(due)
		}
		if input.Priority != 0 {
			if err := validate.Range("priority", input.Priority, 1, 9); err != nil {
				return nil, TaskOutput{}, err
			}
			task.Priority = mo.Some(input.Priority)
		}

		store := factory.TaskStore(input.TaskList)
		created, err := store.Create(ctx, task)
		if err != nil {
			return nil, TaskOutput{}, middleware.HandleRemoteError(err)
		}

		out := TaskOutput{TaskList: store.Name(), Task: taskToSummary(created)}
		res, err := response.JSON(out)
		return res, out, err
	}
}

// --- update_task (core) ---

type UpdateTaskInput struct {
	UID             string `json:"uid" jsonschema:"UID of the task to update"`
	Summary         string `json:"summary,omitempty" jsonschema:"New task title"`
	Status          string `json:"status,omitempty" jsonschema:"New status: NEEDS-ACTION, IN-PROCESS, COMPLETED, or CANCELLED"`
	PercentComplete *int   `json:"percent_complete,omitempty" jsonschema:"New completion percentage from 0 to 100"`
	TaskList        string `json:"task_list,omitempty" jsonschema:"Task list name (defaults to the configured list)"`
}

func createUpdateTaskHandler(factory *services.Factory) mcp.ToolHandlerFor[UpdateTaskInput, TaskOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input UpdateTaskInput) (*mcp.CallToolResult, TaskOutput, error) {
		if err := validate.UID(input.UID); err != nil {
			return nil, TaskOutput{}, err
		}
		if input.TaskList != "" {
			if err := validate.CollectionName(input.TaskList); err != nil {
				return nil, TaskOutput{}, err
			}
		}

		var u icalendar.TaskUpdate
		if input.Summary != "" {
			u.Summary = mo.Some(input.Summary)
		}
		if input.Status != "" {
			status, err := icalendar.ParseStatus(input.Status)
			if err != nil {
				return nil, TaskOutput{}, err
			}
			u.Status = mo.Some(status)
		}
		if input.PercentComplete != nil {
			if err := validate.Range("percent_complete", *input.PercentComplete, 0, 100); err != nil {
				return nil, TaskOutput{}, err
			}
			u.PercentComplete = mo.Some(*input.PercentComplete)
		}
		if u.Empty() {
			return nil, TaskOutput{}, fmt.Errorf("nothing to update: provide summary, status, or percent_complete")
		}

		store := factory.TaskStore(input.TaskList)
		updated, err := store.Update(ctx, input.UID, u)
		if err != nil {
			return nil, TaskOutput{}, middleware.HandleRemoteError(err)
		}

		out := TaskOutput{TaskList: store.Name(), Task: taskToSummary(updated)}
		res, err := response.JSON(out)
		return res, out, err
	}
}

// --- get_task (extended) ---

type GetTaskInput struct {
	UID      string `json:"uid" jsonschema:"UID of the task"`
	TaskList string `json:"task_list,omitempty" jsonschema:"Task list name (defaults to the configured list)"`
}

func createGetTaskHandler(factory *services.Factory) mcp.ToolHandlerFor[GetTaskInput, TaskOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input GetTaskInput) (*mcp.CallToolResult, TaskOutput, error) {
		if err := validate.UID(input.UID); err != nil {
			return nil, TaskOutput{}, err
		}
		if input.TaskList != "" {
			if err := validate.CollectionName(input.TaskList); err != nil {
				return nil, TaskOutput{}, err
			}
		}

		store := factory.TaskStore(input.TaskList)
		task, err := store.Get(ctx, input.UID)
		if err != nil {
			return nil, TaskOutput{}, middleware.HandleRemoteError(err)
		}

		out := TaskOutput{TaskList: store.Name(), Task: taskToSummary(task)}
		res, err := response.JSON(out)
		return res, out, err
	}
}

// --- list_task_lists (extended) ---

type ListTaskListsInput struct{}

type ListTaskListsOutput struct {
	Default   string            `json:"default"`
	TaskLists []TaskListSummary `json:"task_lists"`
}

func createListTaskListsHandler(factory *services.Factory) mcp.ToolHandlerFor[ListTaskListsInput, ListTaskListsOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListTaskListsInput) (*mcp.CallToolResult, ListTaskListsOutput, error) {
		cols, err := factory.Collections(ctx, caldav.ComponentToDo)
		if err != nil {
			return nil, ListTaskListsOutput{}, middleware.HandleRemoteError(err)
		}

		out := ListTaskListsOutput{
			Default:   factory.DefaultTaskList(),
			TaskLists: make([]TaskListSummary, 0, len(cols)),
		}
		for _, c := range cols {
			out.TaskLists = append(out.TaskLists, TaskListSummary{
				Name:        c.Name,
				DisplayName: c.DisplayName,
				Description: c.Description,
			})
		}

		res, err := response.JSON(out)
		return res, out, err
	}
}

// --- delete_task (complete) ---

type DeleteTaskInput struct {
	UID      string `json:"uid" jsonschema:"UID of the task to delete"`
	TaskList string `json:"task_list,omitempty" jsonschema:"Task list name (defaults to the configured list)"`
}

type DeleteOutput struct {
	UID     string `json:"uid"`
	Deleted bool   `json:"deleted"`
}

func createDeleteTaskHandler(factory *services.Factory) mcp.ToolHandlerFor[DeleteTaskInput, DeleteOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input DeleteTaskInput) (*mcp.CallToolResult, DeleteOutput, error) {
		if err := validate.UID(input.UID); err != nil {
			return nil, DeleteOutput{}, err
		}
		if input.TaskList != "" {
			if err := validate.CollectionName(input.TaskList); err != nil {
				return nil, DeleteOutput{}, err
			}
		}

		if err := factory.TaskStore(input.TaskList).Delete(ctx, input.UID); err != nil {
			return nil, DeleteOutput{}, middleware.HandleRemoteError(err)
		}

		out := DeleteOutput{UID: input.UID, Deleted: true}
		res, err := response.JSON(out)
		return res, out, err
	}
}
