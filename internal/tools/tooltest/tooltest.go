// Package tooltest connects an MCP client to tools backed by an in-memory
// CalDAV server.
package tooltest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Jaypeg-dev/nextcloud-mcp/internal/caldav/caldavtest"
	"github.com/Jaypeg-dev/nextcloud-mcp/internal/config"
	"github.com/Jaypeg-dev/nextcloud-mcp/internal/pkg/toolgate"
	"github.com/Jaypeg-dev/nextcloud-mcp/internal/services"
)

// User is the account the fake server serves.
const User = "alice"

// Config returns a configuration pointing at srv with the default
// collections "tasks" and "personal".
func Config(srv *caldavtest.Server) *config.Config {
	cfg := &config.Config{}
	cfg.Nextcloud.URL = srv.URL
	cfg.Nextcloud.Username = User
	cfg.Nextcloud.Password = "app-password"
	cfg.Nextcloud.AuthMode = config.AuthBasic
	cfg.Nextcloud.DAVPath = caldavtest.DAVPath
	cfg.Nextcloud.TaskList = "tasks"
	cfg.Nextcloud.Calendar = "personal"
	cfg.ToolTier = "complete"
	cfg.MaxRetries = 1
	return cfg
}

// NewServer starts a fake CalDAV server with a "tasks" list and a
// "personal" calendar.
func NewServer(t testing.TB) *caldavtest.Server {
	t.Helper()
	srv := caldavtest.NewServer(t, User)
	srv.AddCollection("tasks", "VTODO")
	srv.AddCollection("personal", "VEVENT")
	return srv
}

// NewFactory returns a factory talking to srv.
func NewFactory(t testing.TB, srv *caldavtest.Server) *services.Factory {
	t.Helper()
	f, err := services.NewFactory(Config(srv), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("creating factory: %v", err)
	}
	return f
}

// Connect registers tools on a fresh MCP server and returns a connected
// client session.
func Connect(t testing.TB, register func(*toolgate.Gate)) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server := mcp.NewServer(&mcp.Implementation{Name: "nextcloud-mcp-test", Version: "0.0.0"}, nil)
	register(toolgate.New(server, nil))

	ct, st := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, st, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	t.Cleanup(func() { ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.0"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { cs.Close() })
	return cs
}

// Call invokes a tool and fails the test on protocol errors. Tool errors
// come back as results with IsError set.
func Call(t testing.TB, cs *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	if args == nil {
		args = map[string]any{}
	}
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("calling %s: %v", name, err)
	}
	return res
}

// Text returns the text of the result's single content block.
func Text(t testing.TB, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("expected 1 content block, got %d", len(res.Content))
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want *mcp.TextContent", res.Content[0])
	}
	return tc.Text
}

// Decode parses a successful result's JSON text into T.
func Decode[T any](t testing.TB, res *mcp.CallToolResult) T {
	t.Helper()
	text := Text(t, res)
	if res.IsError {
		t.Fatalf("tool returned error: %s", text)
	}
	var out T
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("decoding result %q: %v", text, err)
	}
	return out
}
