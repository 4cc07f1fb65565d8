package home

import (
	"context"
	"testing"
)

func TestFindByCategory(t *testing.T) {
	reg, _ := loadedRegistry(t)

	tests := []struct {
		name     string
		category Category
		room     string
		wantIDs  []string
	}{
		{
			name:     "all lights",
			category: CategoryLight,
			room:     "",
			wantIDs:  []string{"dev-light-3", "dev-light-1", "dev-light-2"},
		},
		{
			name:     "lights constrained to room",
			category: CategoryLight,
			room:     "Kitchen",
			wantIDs:  []string{"dev-light-3"},
		},
		{
			name:     "room match ignores case",
			category: CategoryLight,
			room:     "kitchen",
			wantIDs:  []string{"dev-light-3"},
		},
		{
			name:     "climate devices",
			category: CategoryClimate,
			room:     "",
			wantIDs:  []string{"dev-ac-1"},
		},
		{
			name:     "fans",
			category: CategoryFan,
			room:     "",
			wantIDs:  []string{"dev-fan-1"},
		},
		{
			name:     "unknown room yields nothing",
			category: CategoryLight,
			room:     "Garage",
			wantIDs:  []string{},
		},
		{
			name:     "category with no devices",
			category: CategorySpeaker,
			room:     "",
			wantIDs:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refs := reg.FindByCategory(tt.category, tt.room)

			if len(refs) != len(tt.wantIDs) {
				t.Fatalf("got %d devices, want %d", len(refs), len(tt.wantIDs))
			}
			for i, want := range tt.wantIDs {
				if refs[i].DeviceID != want {
					t.Errorf("refs[%d].DeviceID = %q, want %q", i, refs[i].DeviceID, want)
				}
			}
		})
	}
}

func TestFindByCategory_NameHeuristic(t *testing.T) {
	repo := &MockRepository{rooms: []*Room{
		{
			ID:   "room-hall",
			Name: "Hallway",
			Devices: []Device{
				// Generic switch module driving a lamp; the name decides.
				{ID: "dev-switch-1", RoomID: "room-hall", Name: "Hallway Light", Type: "switch"},
			},
		},
	}}
	reg := NewRegistry(repo)
	if err := reg.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	refs := reg.FindByCategory(CategoryLight, "")
	if len(refs) != 1 || refs[0].DeviceID != "dev-switch-1" {
		t.Errorf("name heuristic failed: refs = %v", refs)
	}
}

func TestInCategory(t *testing.T) {
	tests := []struct {
		name     string
		device   Device
		category Category
		want     bool
	}{
		{"light type", Device{Type: DeviceTypeLight}, CategoryLight, true},
		{"thermostat is climate", Device{Type: DeviceTypeThermostat}, CategoryClimate, true},
		{"vendor ac string", Device{Type: "ac_split_unit"}, CategoryClimate, true},
		{"blinds count as curtains", Device{Type: "blinds"}, CategoryCurtain, true},
		{"lock counts as door", Device{Type: DeviceTypeLock}, CategoryDoor, true},
		{"camera is security", Device{Type: DeviceTypeCamera}, CategorySecurity, true},
		{"speaker by type", Device{Type: DeviceTypeSpeaker}, CategorySpeaker, true},
		{"fan not a light", Device{Type: DeviceTypeFan}, CategoryLight, false},
		{"light not climate", Device{Type: DeviceTypeLight}, CategoryClimate, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.device.InCategory(tt.category); got != tt.want {
				t.Errorf("InCategory(%q) = %v, want %v", tt.category, got, tt.want)
			}
		})
	}
}
