package fuzzy

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Living Room", "living room"},
		{"  LIVING   ROOM  ", "living room"},
		{"living-room", "living room"},
		{"Kids' Bedroom!", "kids bedroom"},
		{"room #2", "room 2"},
		{"", ""},
		{"!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"livingroom", "living room", 1},
		{"same", "same", 0},
	}

	for _, tt := range tests {
		if got := Levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("Levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "Kitchen", "kitchen", 1},
		{"containment", "the living room please", "Living Room", 1},
		{"empty input", "", "Kitchen", 0},
		{"near miss", "livingroom", "living room", 1 - 1.0/11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestResolveRoom(t *testing.T) {
	rooms := []string{"Living Room", "Kitchen", "Bedroom", "Office"}

	tests := []struct {
		name      string
		input     string
		wantRoom  string
		wantMatch bool
	}{
		{"exact name", "Kitchen", "Kitchen", true},
		{"case insensitive", "kitchen", "Kitchen", true},
		{"room inside phrase", "turn off the kitchen lights", "Kitchen", true},
		{"missing space", "livingroom", "Living Room", true},
		{"transcription slip", "bedrum", "Bedroom", true},
		{"unrelated input", "asdkjasdkj", "", false},
		{"empty input", "", "", false},
		{"punctuation only", "?!", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room, ok := ResolveRoom(tt.input, rooms, DefaultThreshold)
			if ok != tt.wantMatch {
				t.Fatalf("ResolveRoom(%q) matched = %v, want %v", tt.input, ok, tt.wantMatch)
			}
			if room != tt.wantRoom {
				t.Errorf("ResolveRoom(%q) = %q, want %q", tt.input, room, tt.wantRoom)
			}
		})
	}
}

func TestResolveRoom_NoRooms(t *testing.T) {
	if room, ok := ResolveRoom("kitchen", nil, DefaultThreshold); ok {
		t.Errorf("ResolveRoom with no rooms = %q, want no match", room)
	}
}

func TestResolveRoom_FirstWinsTies(t *testing.T) {
	// Equidistant candidates: the earlier one wins.
	rooms := []string{"Room A", "Room B"}
	room, ok := ResolveRoom("room c", rooms, DefaultThreshold)
	if !ok || room != "Room A" {
		t.Errorf("ResolveRoom tie = %q (matched %v), want Room A", room, ok)
	}
}
