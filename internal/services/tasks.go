package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/mo"

	"github.com/Jaypeg-dev/nextcloud-mcp/internal/caldav"
	"github.com/Jaypeg-dev/nextcloud-mcp/internal/icalendar"
)

// TaskStore reads and writes VTODOs in one task list.
type TaskStore struct {
	collection
}

// List returns every task in the list in server order. Status filtering is
// left to the caller.
func (s *TaskStore) List(ctx context.Context) ([]icalendar.Task, error) {
	body, err := s.report(ctx, caldav.BuildTaskQuery())
	if err != nil {
		return nil, fmt.Errorf("listing tasks in %s: %w", s.name, err)
	}
	return icalendar.DecodeTasks(body), nil
}

// Get returns the task with uid.
func (s *TaskStore) Get(ctx context.Context, uid string) (icalendar.Task, error) {
	obj, err := s.fetch(ctx, uid)
	if err != nil {
		return icalendar.Task{}, fmt.Errorf("getting task: %w", err)
	}
	return decodeStoredTask(obj, uid)
}

// Create stores a new task. A missing UID is generated, and CREATED is
// stamped with the current time unless the task already carries one.
func (s *TaskStore) Create(ctx context.Context, t icalendar.Task) (icalendar.Task, error) {
	now := s.now()
	if t.UID == "" {
		t.UID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = icalendar.StatusNeedsAction
	}
	if t.Created.IsAbsent() {
		t.Created = mo.Some(now.UTC().Truncate(time.Second))
	}
	t.LastModified = mo.Some(now.UTC().Truncate(time.Second))

	data, err := icalendar.EncodeTask(t, now)
	if err != nil {
		return icalendar.Task{}, fmt.Errorf("encoding task: %w", err)
	}
	href, etag, err := s.create(ctx, t.UID, data)
	if err != nil {
		return icalendar.Task{}, fmt.Errorf("creating task: %w", err)
	}
	t.Href, t.ETag = href, etag
	return t, nil
}

// Update applies u to the stored task with a read-modify-write cycle.
// Properties u does not name are written back byte for byte. Without
// conditional updates a concurrent writer between the read and the write
// is silently overwritten.
func (s *TaskStore) Update(ctx context.Context, uid string, u icalendar.TaskUpdate) (icalendar.Task, error) {
	obj, err := s.fetch(ctx, uid)
	if err != nil {
		return icalendar.Task{}, fmt.Errorf("updating task: %w", err)
	}

	obj.Data = icalendar.ApplyTaskUpdate(obj.Data, u, s.now())
	etag, err := s.replace(ctx, obj, uid, obj.Data)
	if err != nil {
		return icalendar.Task{}, fmt.Errorf("updating task: %w", err)
	}
	obj.ETag = etag
	return decodeStoredTask(obj, uid)
}

// Delete removes the task with uid.
func (s *TaskStore) Delete(ctx context.Context, uid string) error {
	if err := s.remove(ctx, uid); err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	return nil
}

func decodeStoredTask(obj icalendar.Object, uid string) (icalendar.Task, error) {
	tasks := icalendar.DecodeTasks(obj.Data)
	if len(tasks) == 0 {
		return icalendar.Task{}, fmt.Errorf("stored object for task %q holds no VTODO with a UID", uid)
	}
	t := tasks[0]
	t.Href, t.ETag = obj.Href, obj.ETag
	return t, nil
}
