package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tool tiers, from the smallest tool set to the largest.
const (
	TierCore     = "core"
	TierExtended = "extended"
	TierComplete = "complete"
)

// ToolInfo describes a tool's tier and service.
type ToolInfo struct {
	Tier    string
	Service string
}

// TierConfig holds the tier configuration loaded from tool_tiers.yaml.
type TierConfig struct {
	Services map[string]ServiceTiers `yaml:"services"`
}

// ServiceTiers lists tools by tier within a service.
type ServiceTiers struct {
	Core     []string `yaml:"core"`
	Extended []string `yaml:"extended"`
	Complete []string `yaml:"complete"`
}

// LoadTiers reads and parses the tool tiers YAML file, returning a map of
// tool name -> ToolInfo for fast lookup during tool filtering. A tool listed
// twice is an error, since its tier would depend on map iteration order.
func LoadTiers(path string) (map[string]ToolInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tier config %s: %w", path, err)
	}

	var tc TierConfig
	if err := yaml.Unmarshal(data, &tc); err != nil {
		return nil, fmt.Errorf("parsing tier config %s: %w", path, err)
	}

	tools := make(map[string]ToolInfo)
	add := func(service, tier string, names []string) error {
		for _, name := range names {
			if prev, ok := tools[name]; ok {
				return fmt.Errorf("tier config %s: tool %q listed under %s/%s and %s/%s",
					path, name, prev.Service, prev.Tier, service, tier)
			}
			tools[name] = ToolInfo{Tier: tier, Service: service}
		}
		return nil
	}
	for service, tiers := range tc.Services {
		if err := add(service, TierCore, tiers.Core); err != nil {
			return nil, err
		}
		if err := add(service, TierExtended, tiers.Extended); err != nil {
			return nil, err
		}
		if err := add(service, TierComplete, tiers.Complete); err != nil {
			return nil, err
		}
	}

	return tools, nil
}

// TierLevel returns the numeric level for a tier name (higher = more inclusive).
func TierLevel(tier string) int {
	switch tier {
	case TierCore:
		return 1
	case TierExtended:
		return 2
	case TierComplete:
		return 3
	default:
		return 0
	}
}
