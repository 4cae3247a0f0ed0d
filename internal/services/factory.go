package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/emersion/go-webdav"
	"golang.org/x/oauth2"

	"github.com/Jaypeg-dev/nextcloud-mcp/internal/caldav"
	"github.com/Jaypeg-dev/nextcloud-mcp/internal/config"
	"github.com/Jaypeg-dev/nextcloud-mcp/internal/middleware"
)

// Factory hands out stores bound to one Nextcloud account. The HTTP client
// is built once at startup and shared by every store; stores themselves
// hold no state between calls.
type Factory struct {
	client     *caldav.Client
	discoverer *caldav.Discoverer
	logger     *slog.Logger

	user               string
	defaultTaskList    string
	defaultCalendar    string
	conditionalUpdates bool
	maxAttempts        int

	now func() time.Time
}

// NewFactory creates a factory authenticated with the configured credential.
func NewFactory(cfg *config.Config, logger *slog.Logger) (*Factory, error) {
	return NewFactoryWithClient(cfg, authenticatedClient(cfg), logger)
}

// NewFactoryWithClient is NewFactory with a caller-supplied HTTP client
// that already carries credentials.
func NewFactoryWithClient(cfg *config.Config, httpClient webdav.HTTPClient, logger *slog.Logger) (*Factory, error) {
	if logger == nil {
		logger = slog.Default()
	}
	endpoint := caldav.EndpointFor(cfg.Nextcloud.URL, cfg.Nextcloud.DAVPath)

	client, err := caldav.NewClient(httpClient, endpoint, logger)
	if err != nil {
		return nil, err
	}
	discoverer, err := caldav.NewDiscoverer(httpClient, endpoint)
	if err != nil {
		return nil, err
	}

	return &Factory{
		client:             client,
		discoverer:         discoverer,
		logger:             logger,
		user:               cfg.Nextcloud.Username,
		defaultTaskList:    cfg.Nextcloud.TaskList,
		defaultCalendar:    cfg.Nextcloud.Calendar,
		conditionalUpdates: cfg.ConditionalUpdates,
		maxAttempts:        cfg.MaxRetries,
		now:                time.Now,
	}, nil
}

// authenticatedClient wraps the default client with the configured
// credential. Basic mode sends an app password; bearer mode sends the
// credential as a static OAuth2 access token.
func authenticatedClient(cfg *config.Config) webdav.HTTPClient {
	if cfg.Nextcloud.AuthMode == config.AuthBearer {
		src := oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.Nextcloud.Password,
			TokenType:   "Bearer",
		})
		return oauth2.NewClient(context.Background(), src)
	}
	return webdav.HTTPClientWithBasicAuth(http.DefaultClient, cfg.Nextcloud.Username, cfg.Nextcloud.Password)
}

// Endpoint returns the DAV root the factory talks to.
func (f *Factory) Endpoint() string {
	return f.client.Endpoint()
}

// DefaultTaskList is the task list used when a tool call names none.
func (f *Factory) DefaultTaskList() string {
	return f.defaultTaskList
}

// DefaultCalendar is the calendar used when a tool call names none.
func (f *Factory) DefaultCalendar() string {
	return f.defaultCalendar
}

// Now returns the factory's clock reading.
func (f *Factory) Now() time.Time {
	return f.now()
}

// TaskStore returns the store for a task list. An empty name selects the
// configured default.
func (f *Factory) TaskStore(list string) *TaskStore {
	if list == "" {
		list = f.defaultTaskList
	}
	return &TaskStore{collection: f.collection(list, caldav.ComponentToDo)}
}

// EventStore returns the store for a calendar. An empty name selects the
// configured default.
func (f *Factory) EventStore(calendar string) *EventStore {
	if calendar == "" {
		calendar = f.defaultCalendar
	}
	return &EventStore{collection: f.collection(calendar, caldav.ComponentEvent)}
}

// Collections lists the user's calendar collections that accept component.
// An empty component returns all of them.
func (f *Factory) Collections(ctx context.Context, component string) ([]caldav.Collection, error) {
	var cols []caldav.Collection
	err := middleware.WithRetry(ctx, f.maxAttempts, func() error {
		var err error
		cols, err = f.discoverer.Collections(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("discovering collections: %w", err)
	}
	if component == "" {
		return cols, nil
	}
	return caldav.Filter(cols, component), nil
}

func (f *Factory) collection(name, component string) collection {
	return collection{
		client:      f.client,
		logger:      f.logger,
		user:        f.user,
		name:        name,
		component:   component,
		conditional: f.conditionalUpdates,
		maxAttempts: f.maxAttempts,
		now:         f.now,
	}
}
