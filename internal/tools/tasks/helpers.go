package tasks

import (
	"time"

	"github.com/Jaypeg-dev/nextcloud-mcp/internal/icalendar"
	"github.com/Jaypeg-dev/nextcloud-mcp/internal/pkg/ptr"
)

const (
	filterAll       = "all"
	filterOpen      = "open"
	filterCompleted = "completed"

	defaultLimit = 50
	maxLimit     = 1000
)

// TaskSummary is a compact representation of a task.
type TaskSummary struct {
	UID             string `json:"uid"`
	Summary         string `json:"summary"`
	Status          string `json:"status"`
	Description     string `json:"description,omitempty"`
	PercentComplete *int   `json:"percent_complete,omitempty"`
	Due             string `json:"due,omitempty"`
	Priority        int    `json:"priority,omitempty"`
	Created         string `json:"created,omitempty"`
	LastModified    string `json:"last_modified,omitempty"`
}

// TaskListSummary is a compact representation of a task list.
type TaskListSummary struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"`
	Description string `json:"description,omitempty"`
}

// taskToSummary converts a decoded task to a summary.
func taskToSummary(t icalendar.Task) TaskSummary {
	s := TaskSummary{
		UID:         t.UID,
		Summary:     t.Summary,
		Status:      string(t.Status),
		Description: t.Description.OrEmpty(),
		Priority:    t.Priority.OrEmpty(),

		PercentComplete: ptr.FromOption(t.PercentComplete),
	}
	if due, ok := t.Due.Get(); ok {
		s.Due = due.String()
	}
	if created, ok := t.Created.Get(); ok {
		s.Created = formatTimestamp(created)
	}
	if modified, ok := t.LastModified.Get(); ok {
		s.LastModified = formatTimestamp(modified)
	}
	return s
}

func formatTimestamp(t time.Time) string {
	return icalendar.NewDateTime(t).String()
}

// matchesFilter reports whether a task passes the list_tasks status filter.
func matchesFilter(t icalendar.Task, filter string) bool {
	switch filter {
	case filterOpen:
		return !t.Status.Closed()
	case filterCompleted:
		return t.Status == icalendar.StatusCompleted
	default:
		return true
	}
}
