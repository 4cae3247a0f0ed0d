package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Jaypeg-dev/nextcloud-mcp/internal/caldav"
	"github.com/Jaypeg-dev/nextcloud-mcp/internal/icalendar"
	"github.com/Jaypeg-dev/nextcloud-mcp/internal/middleware"
)

// collection is the part of a store shared by tasks and events: one
// calendar collection and the component type kept in it.
type collection struct {
	client      *caldav.Client
	logger      *slog.Logger
	user        string
	name        string
	component   string
	conditional bool
	maxAttempts int
	now         func() time.Time
}

// Name is the collection's path segment.
func (c collection) Name() string {
	return c.name
}

func (c collection) path() string {
	return caldav.CollectionPath(c.user, c.name)
}

func (c collection) objectPath(uid string) string {
	return caldav.ObjectPath(c.user, c.name, uid)
}

// report runs a calendar-query against the collection.
func (c collection) report(ctx context.Context, query string) (string, error) {
	var body string
	err := middleware.WithRetry(ctx, c.maxAttempts, func() error {
		var err error
		body, err = c.client.Report(ctx, c.path(), query)
		return err
	})
	return body, err
}

// fetch returns the stored object holding uid. Objects written by this
// server live at <uid>.ics; objects created by other clients may be named
// differently, so a 404 falls back to a UID query.
func (c collection) fetch(ctx context.Context, uid string) (icalendar.Object, error) {
	p := c.objectPath(uid)

	var data, etag string
	err := middleware.WithRetry(ctx, c.maxAttempts, func() error {
		var err error
		data, etag, err = c.client.Get(ctx, p)
		return err
	})
	if err == nil {
		return icalendar.Object{Href: p, ETag: etag, Data: data}, nil
	}
	if !caldav.IsNotFound(err) {
		return icalendar.Object{}, err
	}

	c.logger.DebugContext(ctx, "object not at canonical path, querying by UID",
		"collection", c.name,
		"uid", uid,
	)
	body, qerr := c.report(ctx, caldav.BuildUIDQuery(c.component, uid))
	if qerr != nil {
		return icalendar.Object{}, qerr
	}
	// text-match is a substring match, so confirm the UID exactly.
	for _, obj := range icalendar.Split(body) {
		if c.uidOf(obj) == uid {
			return obj, nil
		}
	}
	return icalendar.Object{}, fmt.Errorf("%s %q: %w", c.kind(), uid, err)
}

func (c collection) uidOf(obj icalendar.Object) string {
	switch c.component {
	case caldav.ComponentToDo:
		if tasks := icalendar.DecodeTasks(obj.Data); len(tasks) > 0 {
			return tasks[0].UID
		}
	case caldav.ComponentEvent:
		if events := icalendar.DecodeEvents(obj.Data); len(events) > 0 {
			return events[0].UID
		}
	}
	return ""
}

// create stores a new object at <uid>.ics, refusing to overwrite.
func (c collection) create(ctx context.Context, uid, data string) (href, etag string, err error) {
	href = c.objectPath(uid)
	etag, err = c.client.Put(ctx, href, data, caldav.Precondition{IfNoneMatch: "*"})
	if err != nil {
		if caldav.IsPreconditionFailed(err) {
			return "", "", fmt.Errorf("%s %q already exists in %s: %w", c.kind(), uid, c.name, err)
		}
		return "", "", err
	}
	return href, etag, nil
}

// replace writes data over obj. With conditional updates on, the write
// carries the etag obj was read with.
func (c collection) replace(ctx context.Context, obj icalendar.Object, uid, data string) (string, error) {
	var pre caldav.Precondition
	if c.conditional {
		pre.IfMatch = obj.ETag
	}
	etag, err := c.client.Put(ctx, obj.Href, data, pre)
	if err != nil {
		if caldav.IsPreconditionFailed(err) {
			return "", fmt.Errorf("%s %q changed on the server since it was read: %w", c.kind(), uid, err)
		}
		return "", err
	}
	return etag, nil
}

func (c collection) remove(ctx context.Context, uid string) error {
	obj, err := c.fetch(ctx, uid)
	if err != nil {
		return err
	}
	var etag string
	if c.conditional {
		etag = obj.ETag
	}
	return c.client.Delete(ctx, obj.Href, etag)
}

func (c collection) kind() string {
	if c.component == caldav.ComponentEvent {
		return "event"
	}
	return "task"
}
