// Package toolgate registers tools on an MCP server behind a filter and
// remembers which names made it through.
package toolgate

import (
	"slices"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Filter decides whether a tool is registered.
type Filter func(name string, annotations *mcp.ToolAnnotations) bool

// Gate wraps a server and applies a Filter to every tool added through it.
type Gate struct {
	server *mcp.Server
	filter Filter

	mu    sync.RWMutex
	names map[string]struct{}
}

// New returns a gate for server. A nil filter admits every tool.
func New(server *mcp.Server, filter Filter) *Gate {
	return &Gate{
		server: server,
		filter: filter,
		names:  make(map[string]struct{}),
	}
}

// Add registers tool with handler when the gate's filter admits it and
// reports whether it did.
func Add[In, Out any](g *Gate, tool *mcp.Tool, handler mcp.ToolHandlerFor[In, Out]) bool {
	if g.filter != nil && !g.filter(tool.Name, tool.Annotations) {
		return false
	}
	mcp.AddTool(g.server, tool, handler)

	g.mu.Lock()
	g.names[tool.Name] = struct{}{}
	g.mu.Unlock()
	return true
}

// Has reports whether name was registered.
func (g *Gate) Has(name string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.names[name]
	return ok
}

// Names returns the registered tool names, sorted.
func (g *Gate) Names() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	names := make([]string, 0, len(g.names))
	for n := range g.names {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
