package schema

import (
	"slices"
	"testing"
)

type input struct {
	Status string `json:"status,omitempty" jsonschema:"Which tasks to return"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum results"`
	UID    string `json:"uid" jsonschema:"Task UID"`
}

func TestFor(t *testing.T) {
	s := For[input](
		Enum("status", "all", "open"),
		Default("status", "all"),
		Default("limit", 50),
		Range("limit", 1, 500),
	)

	if !slices.Equal(s.Required, []string{"uid"}) {
		t.Errorf("required = %v, want [uid]", s.Required)
	}
	status := s.Properties["status"]
	if status.Description != "Which tasks to return" {
		t.Errorf("description = %q", status.Description)
	}
	if len(status.Enum) != 2 || status.Enum[0] != "all" || status.Enum[1] != "open" {
		t.Errorf("enum = %v", status.Enum)
	}
	if string(status.Default) != `"all"` {
		t.Errorf("default = %s", status.Default)
	}
	limit := s.Properties["limit"]
	if string(limit.Default) != "50" {
		t.Errorf("limit default = %s", limit.Default)
	}
	if limit.Minimum == nil || *limit.Minimum != 1 || limit.Maximum == nil || *limit.Maximum != 500 {
		t.Errorf("limit range = %v..%v", limit.Minimum, limit.Maximum)
	}
}

func TestForUnknownPropertyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown property")
		}
	}()
	For[input](Enum("nope", "x"))
}
