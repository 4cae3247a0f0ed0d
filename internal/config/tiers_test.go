package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadTiers(t *testing.T) {
	tiers, err := LoadTiers(filepath.Join("..", "..", "configs", "tool_tiers.yaml"))
	if err != nil {
		t.Fatalf("LoadTiers: %v", err)
	}

	tests := []struct {
		tool    string
		tier    string
		service string
	}{
		{"list_tasks", "core", "tasks"},
		{"create_task", "core", "tasks"},
		{"update_task", "core", "tasks"},
		{"get_task", "extended", "tasks"},
		{"list_task_lists", "extended", "tasks"},
		{"delete_task", "complete", "tasks"},
		{"list_events", "core", "calendar"},
		{"create_event", "core", "calendar"},
		{"list_calendars", "extended", "calendar"},
		{"delete_event", "complete", "calendar"},
	}

	if len(tiers) != len(tests) {
		t.Errorf("got %d tools, want %d", len(tiers), len(tests))
	}
	for _, tt := range tests {
		info, ok := tiers[tt.tool]
		if !ok {
			t.Errorf("%s missing from tier config", tt.tool)
			continue
		}
		if info.Tier != tt.tier || info.Service != tt.service {
			t.Errorf("%s = %+v, want tier %q service %q", tt.tool, info, tt.tier, tt.service)
		}
	}
}

func TestLoadTiersErrors(t *testing.T) {
	if _, err := LoadTiers(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("services: [not, a, map"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTiers(bad); err == nil {
		t.Error("expected error for malformed YAML")
	}

	dup := filepath.Join(t.TempDir(), "dup.yaml")
	yml := "services:\n  tasks:\n    core: [list_tasks]\n    complete: [list_tasks]\n"
	if err := os.WriteFile(dup, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTiers(dup); err == nil {
		t.Error("expected error for a tool listed twice")
	}
}

func TestTierLevel(t *testing.T) {
	tests := map[string]int{
		"core":     1,
		"extended": 2,
		"complete": 3,
		"":         0,
		"all":      0,
	}
	for tier, want := range tests {
		if got := TierLevel(tier); got != want {
			t.Errorf("TierLevel(%q) = %d, want %d", tier, got, want)
		}
	}
}
