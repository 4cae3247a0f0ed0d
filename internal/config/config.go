package config

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// Auth modes for the Nextcloud credential.
const (
	AuthBasic  = "basic"
	AuthBearer = "bearer"
)

// Config holds all server configuration loaded from environment variables and CLI flags.
// It is read once at startup and never modified afterwards.
type Config struct {
	Nextcloud struct {
		URL      string
		Username string
		Password string
		AuthMode string
		DAVPath  string
		TaskList string
		Calendar string
	}
	Server struct {
		Transport string
		Port      int
		Host      string
	}
	ToolTier           string
	EnabledServices    []string
	ReadOnly           bool
	ConditionalUpdates bool
	MaxRetries         int
	LogLevel           string
}

// Load reads configuration from environment variables and the process's CLI flags.
// CLI flags take precedence over environment variables.
func Load() (*Config, error) {
	return LoadArgs(os.Args[1:])
}

// LoadArgs is Load with explicit command-line arguments.
func LoadArgs(args []string) (*Config, error) {
	cfg := &Config{}

	// Environment variables
	cfg.Nextcloud.URL = os.Getenv("NEXTCLOUD_URL")
	cfg.Nextcloud.Username = os.Getenv("NEXTCLOUD_USERNAME")
	cfg.Nextcloud.Password = os.Getenv("NEXTCLOUD_PASSWORD")
	cfg.Nextcloud.AuthMode = strings.ToLower(envOrDefault("NEXTCLOUD_AUTH_MODE", AuthBasic))
	cfg.Nextcloud.DAVPath = envOrDefault("NEXTCLOUD_DAV_PATH", "/remote.php/dav")
	cfg.Nextcloud.TaskList = envOrDefault("NEXTCLOUD_TASK_LIST", "tasks")
	cfg.Nextcloud.Calendar = envOrDefault("NEXTCLOUD_CALENDAR", "personal")
	cfg.ConditionalUpdates = envBool("NEXTCLOUD_CONDITIONAL_UPDATES")

	// Enabled services (comma-separated, empty = all)
	cfg.EnabledServices = splitList(os.Getenv("ENABLED_SERVICES"))

	cfg.Server.Host = envOrDefault("MCP_HOST", "127.0.0.1")
	cfg.Server.Transport = envOrDefault("MCP_TRANSPORT", "stdio")
	cfg.LogLevel = envOrDefault("LOG_LEVEL", "info")
	cfg.ToolTier = envOrDefault("TOOL_TIER", TierComplete)
	cfg.ReadOnly = envBool("READ_ONLY")

	// Port
	portStr := os.Getenv("MCP_PORT")
	if portStr == "" {
		portStr = os.Getenv("PORT")
	}
	if portStr == "" {
		portStr = "8000"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid port %q: %w", portStr, err)
	}
	cfg.Server.Port = port

	retries, err := strconv.Atoi(envOrDefault("NEXTCLOUD_MAX_RETRIES", "1"))
	if err != nil || retries < 1 {
		return nil, fmt.Errorf("NEXTCLOUD_MAX_RETRIES must be a positive integer")
	}
	cfg.MaxRetries = retries

	// CLI flags override env vars
	fs := flag.NewFlagSet("nextcloud-mcp", flag.ContinueOnError)
	fs.StringVar(&cfg.Nextcloud.URL, "url", cfg.Nextcloud.URL, "Nextcloud base URL (overrides NEXTCLOUD_URL)")
	fs.StringVar(&cfg.Server.Transport, "transport", cfg.Server.Transport, "Transport mode: stdio or streamable-http")
	var toolsFlag string
	fs.StringVar(&toolsFlag, "tools", "", "Services to enable (comma-separated): tasks,calendar")
	fs.StringVar(&cfg.ToolTier, "tool-tier", cfg.ToolTier, "Load tools by tier: core, extended, or complete")
	fs.BoolVar(&cfg.ReadOnly, "read-only", cfg.ReadOnly, "Register read-only tools only")
	fs.BoolVar(&cfg.ConditionalUpdates, "conditional-updates", cfg.ConditionalUpdates, "Send If-Match on updates so concurrent edits fail instead of being overwritten")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// CLI --tools flag overrides (not appends to) the ENABLED_SERVICES env var.
	if toolsFlag != "" {
		cfg.EnabledServices = splitList(toolsFlag)
	}

	// Validate required fields
	if cfg.Nextcloud.URL == "" {
		return nil, fmt.Errorf("NEXTCLOUD_URL environment variable is required")
	}
	if cfg.Nextcloud.Username == "" {
		return nil, fmt.Errorf("NEXTCLOUD_USERNAME environment variable is required")
	}
	if cfg.Nextcloud.Password == "" {
		return nil, fmt.Errorf("NEXTCLOUD_PASSWORD environment variable is required")
	}

	u, err := url.Parse(cfg.Nextcloud.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("NEXTCLOUD_URL %q must be an absolute http or https URL", cfg.Nextcloud.URL)
	}
	cfg.Nextcloud.URL = strings.TrimRight(cfg.Nextcloud.URL, "/")

	switch cfg.Nextcloud.AuthMode {
	case AuthBasic, AuthBearer:
	default:
		return nil, fmt.Errorf("NEXTCLOUD_AUTH_MODE %q is not supported (use basic or bearer)", cfg.Nextcloud.AuthMode)
	}
	if TierLevel(cfg.ToolTier) == 0 {
		return nil, fmt.Errorf("unknown tool tier %q (use core, extended, or complete)", cfg.ToolTier)
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "true" || v == "1" || v == "yes"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
