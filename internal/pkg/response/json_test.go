package response

import (
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func TestJSON(t *testing.T) {
	res, err := JSON(map[string]any{"count": 1, "tasks": []string{"a"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IsError {
		t.Error("result should not be an error")
	}
	if len(res.Content) != 1 {
		t.Fatalf("expected 1 content block, got %d", len(res.Content))
	}
	want := "{\n  \"count\": 1,\n  \"tasks\": [\n    \"a\"\n  ]\n}"
	if got := res.Content[0].(*mcp.TextContent).Text; got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
}

func TestJSONUnsupportedValue(t *testing.T) {
	if _, err := JSON(make(chan int)); err == nil {
		t.Error("expected error for unsupported value")
	}
}

func TestError(t *testing.T) {
	res := Error("Unknown tool: nope")
	if !res.IsError {
		t.Error("expected IsError")
	}
	if got := res.Content[0].(*mcp.TextContent).Text; got != "Unknown tool: nope" {
		t.Errorf("text = %q", got)
	}
}
