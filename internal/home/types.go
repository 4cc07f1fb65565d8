package home

import (
	"strings"
	"time"
)

// Room represents a physical space containing devices.
type Room struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	SortOrder int       `json:"sort_order"`
	Devices   []Device  `json:"devices"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeepCopy creates a complete independent copy of the Room, including
// its device list. Essential for cache isolation.
func (r *Room) DeepCopy() *Room {
	if r == nil {
		return nil
	}

	cpy := *r
	if r.Devices != nil {
		cpy.Devices = make([]Device, len(r.Devices))
		for i := range r.Devices {
			cpy.Devices[i] = *r.Devices[i].DeepCopy()
		}
	}
	return &cpy
}

// Device represents a controllable entity in a room.
//
// On is the sole boolean driving on/off phrasing in assistant responses.
// The numeric attributes are nil when the device type has no such
// attribute; they are only visibly meaningful while the device is on,
// but mutating them while off is permitted.
type Device struct {
	ID     string     `json:"id"`
	RoomID string     `json:"room_id"`
	Name   string     `json:"name"`
	Type   DeviceType `json:"type"`

	On          bool     `json:"on"`
	Temperature *float64 `json:"temperature,omitempty"` // °C, typical domain 16-30
	Brightness  *int     `json:"brightness,omitempty"`  // 0-100
	Speed       *int     `json:"speed,omitempty"`       // 1-5
	Position    *int     `json:"position,omitempty"`    // 0-100, curtains and shutters

	// Sync reflects the optimistic-write state machine. Runtime only,
	// never persisted.
	Sync SyncStatus `json:"sync"`

	StateUpdatedAt *time.Time `json:"state_updated_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// DeepCopy creates an independent copy of the Device.
func (d *Device) DeepCopy() *Device {
	if d == nil {
		return nil
	}

	cpy := *d
	cpy.Temperature = copyFloat(d.Temperature)
	cpy.Brightness = copyInt(d.Brightness)
	cpy.Speed = copyInt(d.Speed)
	cpy.Position = copyInt(d.Position)
	return &cpy
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	cpy := *v
	return &cpy
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	cpy := *v
	return &cpy
}

// SyncStatus tracks where a device sits in the optimistic-write cycle.
type SyncStatus string

// SyncStatus constants.
const (
	// SyncSynced means the snapshot matches the last remote push.
	SyncSynced SyncStatus = "synced"

	// SyncPendingWrite means a local write was applied optimistically
	// and the confirming remote push has not arrived yet.
	SyncPendingWrite SyncStatus = "pending_write"

	// SyncConflict means a remote push arrived while a write was pending
	// and disagreed with the desired values. The remote values win; the
	// flag lets the UI surface the disagreement.
	SyncConflict SyncStatus = "conflict"
)

// DeviceType is the semantic kind of a device.
type DeviceType string

// Device type constants.
const (
	DeviceTypeLight          DeviceType = "light"
	DeviceTypeThermostat     DeviceType = "thermostat"
	DeviceTypeAirConditioner DeviceType = "air_conditioner"
	DeviceTypeFan            DeviceType = "fan"
	DeviceTypeCurtain        DeviceType = "curtain"
	DeviceTypeShutter        DeviceType = "shutter"
	DeviceTypeDoor           DeviceType = "door"
	DeviceTypeLock           DeviceType = "lock"
	DeviceTypeAlarm          DeviceType = "alarm"
	DeviceTypeCamera         DeviceType = "camera"
	DeviceTypeSpeaker        DeviceType = "speaker"
)

// AllDeviceTypes returns all valid device type values.
func AllDeviceTypes() []DeviceType {
	return []DeviceType{
		DeviceTypeLight, DeviceTypeThermostat, DeviceTypeAirConditioner,
		DeviceTypeFan, DeviceTypeCurtain, DeviceTypeShutter,
		DeviceTypeDoor, DeviceTypeLock, DeviceTypeAlarm,
		DeviceTypeCamera, DeviceTypeSpeaker,
	}
}

// Category is a coarse device grouping the assistant targets with one
// action ("turn on the lights" addresses CategoryLight across types).
type Category string

// Category constants.
const (
	CategoryLight    Category = "light"
	CategoryClimate  Category = "climate"
	CategoryFan      Category = "fan"
	CategoryCurtain  Category = "curtain"
	CategoryShutter  Category = "shutter"
	CategoryDoor     Category = "door"
	CategorySecurity Category = "security"
	CategorySpeaker  Category = "speaker"
)

// categoryTypeSubstrings maps each category to the type substrings that
// place a device in it. Membership is substring-based so integrations
// with vendor-specific type strings ("ac_split_unit") still classify.
var categoryTypeSubstrings = map[Category][]string{
	CategoryLight:    {"light"},
	CategoryClimate:  {"ac", "air", "climate", "thermostat"},
	CategoryFan:      {"fan", "ventilator"},
	CategoryCurtain:  {"curtain", "curtains", "blind", "blinds", "drapes", "shades"},
	CategoryShutter:  {"shutter", "shutters", "window shutter"},
	CategoryDoor:     {"door", "lock", "gate"},
	CategorySecurity: {"security", "alarm", "camera", "surveillance"},
	CategorySpeaker:  {"speaker", "audio", "sound", "music system"},
}

// InCategory reports whether the device belongs to the given category.
//
// Matching is case-insensitive substring on the type, with one
// heuristic: a device whose name contains "light" counts as a light
// regardless of type (common with generic switch modules driving lamps).
func (d *Device) InCategory(category Category) bool {
	typ := strings.ToLower(string(d.Type))

	if category == CategoryLight {
		if typ == "light" || strings.Contains(strings.ToLower(d.Name), "light") {
			return true
		}
	}

	for _, sub := range categoryTypeSubstrings[category] {
		if strings.Contains(typ, sub) {
			return true
		}
	}
	return false
}

// StateChange is a partial device state mutation. Nil fields are left
// untouched.
type StateChange struct {
	On          *bool    `json:"on,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Brightness  *int     `json:"brightness,omitempty"`
	Speed       *int     `json:"speed,omitempty"`
	Position    *int     `json:"position,omitempty"`
}

// IsZero reports whether the change mutates nothing.
func (c StateChange) IsZero() bool {
	return c.On == nil && c.Temperature == nil && c.Brightness == nil &&
		c.Speed == nil && c.Position == nil
}

// applyTo mutates the device in place with the non-nil fields.
func (c StateChange) applyTo(d *Device) {
	if c.On != nil {
		d.On = *c.On
	}
	if c.Temperature != nil {
		d.Temperature = copyFloat(c.Temperature)
	}
	if c.Brightness != nil {
		d.Brightness = copyInt(c.Brightness)
	}
	if c.Speed != nil {
		d.Speed = copyInt(c.Speed)
	}
	if c.Position != nil {
		d.Position = copyInt(c.Position)
	}
}

// matches reports whether the device already satisfies every non-nil
// field of the change. Used to confirm pending writes against remote
// pushes.
func (c StateChange) matches(d *Device) bool {
	if c.On != nil && d.On != *c.On {
		return false
	}
	if c.Temperature != nil && (d.Temperature == nil || *d.Temperature != *c.Temperature) {
		return false
	}
	if c.Brightness != nil && (d.Brightness == nil || *d.Brightness != *c.Brightness) {
		return false
	}
	if c.Speed != nil && (d.Speed == nil || *d.Speed != *c.Speed) {
		return false
	}
	if c.Position != nil && (d.Position == nil || *d.Position != *c.Position) {
		return false
	}
	return true
}

// merge folds a newer change over this one, field by field.
func (c StateChange) merge(newer StateChange) StateChange {
	out := c
	if newer.On != nil {
		out.On = newer.On
	}
	if newer.Temperature != nil {
		out.Temperature = newer.Temperature
	}
	if newer.Brightness != nil {
		out.Brightness = newer.Brightness
	}
	if newer.Speed != nil {
		out.Speed = newer.Speed
	}
	if newer.Position != nil {
		out.Position = newer.Position
	}
	return out
}

// DeviceRef identifies a device together with its room, as returned by
// the category finder and consumed by the action dispatcher.
type DeviceRef struct {
	RoomID   string `json:"room_id"`
	RoomName string `json:"room_name"`
	DeviceID string `json:"device_id"`
	Name     string `json:"name"`
	On       bool   `json:"on"`
}
