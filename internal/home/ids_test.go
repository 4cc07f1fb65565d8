package home

import "testing"

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Living Room", "living-room"},
		{"Kitchen", "kitchen"},
		{"Kids' Bedroom", "kids-bedroom"},
		{"  Office  ", "office"},
		{"Room #2", "room-2"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := GenerateSlug(tt.input); got != tt.want {
				t.Errorf("GenerateSlug(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGenerateID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateID()
		if id == "" {
			t.Fatal("GenerateID() returned empty string")
		}
		if seen[id] {
			t.Fatalf("GenerateID() returned duplicate %q", id)
		}
		seen[id] = true
	}
}
