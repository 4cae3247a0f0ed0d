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

// EventStore reads and writes VEVENTs in one calendar.
type EventStore struct {
	collection
}

// List returns the events the server reports as overlapping r. Recurring
// events come back as their master record; see ExpandOccurrences.
func (s *EventStore) List(ctx context.Context, r caldav.TimeRange) ([]icalendar.Event, error) {
	body, err := s.report(ctx, caldav.BuildEventQuery(r))
	if err != nil {
		return nil, fmt.Errorf("listing events in %s: %w", s.name, err)
	}
	return icalendar.DecodeEvents(body), nil
}

// Create stores a new event. A missing UID is generated.
func (s *EventStore) Create(ctx context.Context, e icalendar.Event) (icalendar.Event, error) {
	now := s.now()
	if e.UID == "" {
		e.UID = uuid.NewString()
	}
	if e.Created.IsAbsent() {
		e.Created = mo.Some(now.UTC().Truncate(time.Second))
	}

	data, err := icalendar.EncodeEvent(e, now)
	if err != nil {
		return icalendar.Event{}, fmt.Errorf("encoding event: %w", err)
	}
	href, etag, err := s.create(ctx, e.UID, data)
	if err != nil {
		return icalendar.Event{}, fmt.Errorf("creating event: %w", err)
	}
	e.Href, e.ETag = href, etag
	return e, nil
}

// Delete removes the event with uid, including all its occurrences.
func (s *EventStore) Delete(ctx context.Context, uid string) error {
	if err := s.remove(ctx, uid); err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	return nil
}
