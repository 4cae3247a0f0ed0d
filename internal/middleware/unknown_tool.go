package middleware

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Jaypeg-dev/nextcloud-mcp/internal/pkg/response"
)

// ToolSet reports whether a tool name is registered on the server.
type ToolSet interface {
	Has(name string) bool
}

// UnknownToolMiddleware returns MCP SDK middleware that answers tools/call
// for an unregistered name with an error result instead of a protocol
// error, so the assistant sees "Unknown tool: <name>" like any other tool
// failure.
func UnknownToolMiddleware(tools ToolSet) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			if method != "tools/call" {
				return next(ctx, method, req)
			}

			name := toolName(req)
			if tools.Has(name) {
				return next(ctx, method, req)
			}

			return response.Error(fmt.Sprintf("Unknown tool: %s", name)), nil
		}
	}
}

// toolName reads the tool name from a tools/call request.
func toolName(req mcp.Request) string {
	if req == nil {
		return ""
	}
	params, ok := req.GetParams().(*mcp.CallToolParamsRaw)
	if !ok || params == nil {
		return ""
	}
	return params.Name
}
