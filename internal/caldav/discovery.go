package caldav

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"slices"
	"strings"

	"github.com/emersion/go-webdav"
	gocaldav "github.com/emersion/go-webdav/caldav"
)

// Collection is a calendar collection below the user's calendar home.
type Collection struct {
	// Name is the last path segment, the value tools take as a task list
	// or calendar name.
	Name        string
	Path        string
	DisplayName string
	Description string
	// Components is the supported component set. Empty means the server
	// did not restrict it.
	Components []string
}

// Supports reports whether the collection accepts component.
func (c Collection) Supports(component string) bool {
	if len(c.Components) == 0 {
		return true
	}
	return slices.ContainsFunc(c.Components, func(s string) bool {
		return strings.EqualFold(s, component)
	})
}

// Discoverer walks principal, calendar home set and collections.
type Discoverer struct {
	httpClient webdav.HTTPClient
	endpoint   string
}

// NewDiscoverer returns a discoverer for the DAV root at endpoint.
func NewDiscoverer(c webdav.HTTPClient, endpoint string) (*Discoverer, error) {
	if _, err := gocaldav.NewClient(c, endpoint); err != nil {
		return nil, fmt.Errorf("creating CalDAV client: %w", err)
	}
	return &Discoverer{httpClient: c, endpoint: endpoint}, nil
}

// Collections lists every calendar collection of the authenticated user.
// An HTTP failure is returned as a *RemoteError.
func (d *Discoverer) Collections(ctx context.Context) ([]Collection, error) {
	rec := &statusRecorder{client: d.httpClient}
	client, err := gocaldav.NewClient(rec, d.endpoint)
	if err != nil {
		return nil, fmt.Errorf("creating CalDAV client: %w", err)
	}

	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return nil, rec.wrap("finding current user principal", err)
	}
	home, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return nil, rec.wrap("finding calendar home set", err)
	}
	cals, err := client.FindCalendars(ctx, home)
	if err != nil {
		return nil, rec.wrap("listing calendars", err)
	}

	out := make([]Collection, 0, len(cals))
	for _, cal := range cals {
		out = append(out, Collection{
			Name:        path.Base(strings.TrimSuffix(cal.Path, "/")),
			Path:        cal.Path,
			DisplayName: cal.Name,
			Description: cal.Description,
			Components:  cal.SupportedComponentSet,
		})
	}
	slices.SortFunc(out, func(a, b Collection) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

// Filter keeps the collections that accept component.
func Filter(cols []Collection, component string) []Collection {
	var out []Collection
	for _, c := range cols {
		if c.Supports(component) {
			out = append(out, c)
		}
	}
	return out
}

// statusRecorder remembers the last non-2xx response seen by go-webdav,
// whose own HTTP error type is not exported.
type statusRecorder struct {
	client webdav.HTTPClient
	failed *RemoteError
}

func (r *statusRecorder) Do(req *http.Request) (*http.Response, error) {
	resp, err := r.client.Do(req)
	if err == nil && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		r.failed = &RemoteError{
			Method: req.Method,
			Path:   req.URL.Path,
			Code:   resp.StatusCode,
			Status: resp.Status,
		}
	}
	return resp, err
}

func (r *statusRecorder) wrap(step string, err error) error {
	if r.failed == nil {
		return fmt.Errorf("%s: %w", step, err)
	}
	re := *r.failed
	re.Message = err.Error()
	return fmt.Errorf("%s: %w", step, &re)
}
