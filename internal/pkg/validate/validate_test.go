package validate

import "testing"

func TestCollectionName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"default calendar", "personal", false},
		{"default task list", "tasks", false},
		{"underscore", "contact_birthdays", false},
		{"generated", "app-generated--deck--board-1", false},
		{"shared suffix", "personal_shared_by_bob@example.com", false},
		{"empty", "", true},
		{"path traversal", "../files", true},
		{"slash", "tasks/inbox", true},
		{"leading dot", ".hidden", true},
		{"spaces", "my tasks", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CollectionName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("CollectionName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestUID(t *testing.T) {
	long := make([]byte, 256)
	for i := range long {
		long[i] = 'a'
	}

	tests := []struct {
		name    string
		uid     string
		wantErr bool
	}{
		{"uuid", "3f1c2d4e-5a6b-4c7d-8e9f-0a1b2c3d4e5f", false},
		{"with domain", "20250110T090000Z-1234@example.com", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"slash", "a/b", true},
		{"backslash", `a\b`, true},
		{"dot dot", "..", true},
		{"newline", "abc\ndef", true},
		{"too long", string(long), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := UID(tt.uid)
			if (err != nil) != tt.wantErr {
				t.Errorf("UID(%q) error = %v, wantErr %v", tt.uid, err, tt.wantErr)
			}
		})
	}
}

func TestRange(t *testing.T) {
	tests := []struct {
		v       int
		wantErr bool
	}{
		{1, false},
		{9, false},
		{0, true},
		{10, true},
	}

	for _, tt := range tests {
		if err := Range("priority", tt.v, 1, 9); (err != nil) != tt.wantErr {
			t.Errorf("Range(%d) error = %v, wantErr %v", tt.v, err, tt.wantErr)
		}
	}
}
