package registry

import (
	"fmt"
	"log/slog"
	"regexp"
	"slices"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Jaypeg-dev/nextcloud-mcp/internal/config"
	"github.com/Jaypeg-dev/nextcloud-mcp/internal/pkg/toolgate"
	"github.com/Jaypeg-dev/nextcloud-mcp/internal/services"
	"github.com/Jaypeg-dev/nextcloud-mcp/internal/tools/calendar"
	"github.com/Jaypeg-dev/nextcloud-mcp/internal/tools/tasks"
)

// toolNameRE enforces SEP-986: tool names must match ^[a-zA-Z0-9_-]{1,64}$
var toolNameRE = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ValidateToolName checks that a tool name complies with SEP-986.
func ValidateToolName(name string) error {
	if !toolNameRE.MatchString(name) {
		return fmt.Errorf("tool name %q does not match SEP-986 pattern ^[a-zA-Z0-9_-]{1,64}$", name)
	}
	return nil
}

// serviceEnabled returns true if the service is enabled (or no filter is set).
func serviceEnabled(cfg *config.Config, service string) bool {
	return len(cfg.EnabledServices) == 0 || slices.Contains(cfg.EnabledServices, service)
}

// RegisterAll registers all tool packages with the server, applying tier, service, and mode filters.
// The returned gate knows which tool names were registered.
func RegisterAll(server *mcp.Server, factory *services.Factory, cfg *config.Config, tierMap map[string]config.ToolInfo) *toolgate.Gate {
	slog.Info("registering tools",
		"tier", cfg.ToolTier,
		"services", cfg.EnabledServices,
		"readOnly", cfg.ReadOnly,
	)

	gate := toolgate.New(server, func(name string, annotations *mcp.ToolAnnotations) bool {
		if err := ValidateToolName(name); err != nil {
			slog.Error("refusing to register tool", "error", err)
			return false
		}
		return ShouldIncludeTool(name, cfg, tierMap, annotations)
	})

	if serviceEnabled(cfg, "tasks") {
		tasks.Register(gate, factory)
		slog.Info("registered service", "service", "tasks")
	}
	if serviceEnabled(cfg, "calendar") {
		calendar.Register(gate, factory)
		slog.Info("registered service", "service", "calendar")
	}

	slog.Info("tools registered", "count", len(gate.Names()), "tools", gate.Names())
	return gate
}

// ShouldIncludeTool checks whether a tool should be registered based on the current config.
// An empty tier map disables tier filtering.
func ShouldIncludeTool(toolName string, cfg *config.Config, tierMap map[string]config.ToolInfo, annotations *mcp.ToolAnnotations) bool {
	if len(tierMap) > 0 {
		info, ok := tierMap[toolName]
		if !ok {
			slog.Warn("tool not found in tier config, skipping", "tool", toolName)
			return false
		}

		// Filter by tier level
		if config.TierLevel(info.Tier) > config.TierLevel(cfg.ToolTier) {
			return false
		}

		// Filter by enabled services
		if !serviceEnabled(cfg, info.Service) {
			return false
		}
	}

	// Filter by read-only mode: exclude tools that are not read-only
	if cfg.ReadOnly && (annotations == nil || !annotations.ReadOnlyHint) {
		return false
	}

	return true
}
