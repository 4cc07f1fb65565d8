package home

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// UpdateSource identifies where a device state change originated.
type UpdateSource string

// Update sources.
const (
	// SourceLocal marks changes made through the registry (assistant
	// commands, API writes).
	SourceLocal UpdateSource = "local"

	// SourceRemote marks changes pushed by the backing system over MQTT.
	SourceRemote UpdateSource = "remote"
)

// DeviceUpdate is delivered to registry subscribers after every state
// change. The embedded device is a copy; subscribers may retain it.
type DeviceUpdate struct {
	Device   Device       `json:"device"`
	RoomName string       `json:"room_name"`
	Source   UpdateSource `json:"source"`
}

// CommandPublisher forwards a desired state change towards the physical
// device, typically over MQTT. A nil publisher means local-only mode.
type CommandPublisher func(deviceID string, change StateChange) error

// Registry is the live in-memory snapshot of all rooms and devices.
//
// All reads the assistant performs go through the registry, never the
// database; Load populates the snapshot once at startup and every
// mutation keeps both in step. Writes are optimistic: the snapshot
// changes immediately and the device is marked PendingWrite until the
// backing system confirms over MQTT. All methods are safe for
// concurrent use.
type Registry struct {
	repo    Repository
	publish CommandPublisher

	mu      sync.RWMutex
	rooms   []*Room
	byID    map[string]*Device // device ID -> device within rooms
	roomFor map[string]*Room   // device ID -> containing room
	pending map[string]StateChange
	loaded  bool

	subMu   sync.Mutex
	subs    map[int]func(DeviceUpdate)
	nextSub int
}

// NewRegistry creates a registry backed by the given repository.
func NewRegistry(repo Repository) *Registry {
	return &Registry{
		repo:    repo,
		byID:    make(map[string]*Device),
		roomFor: make(map[string]*Room),
		pending: make(map[string]StateChange),
		subs:    make(map[int]func(DeviceUpdate)),
	}
}

// SetCommandPublisher installs the hook that forwards desired state
// towards physical devices. Must be called before the registry starts
// receiving writes.
func (r *Registry) SetCommandPublisher(publish CommandPublisher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.publish = publish
}

// Load replaces the snapshot with the current database contents.
//
// Pending writes are discarded; call only at startup or after external
// bulk changes.
func (r *Registry) Load(ctx context.Context) error {
	rooms, err := r.repo.ListRooms(ctx)
	if err != nil {
		return fmt.Errorf("loading registry: %w", err)
	}

	byID := make(map[string]*Device)
	roomFor := make(map[string]*Room)
	for _, room := range rooms {
		for i := range room.Devices {
			d := &room.Devices[i]
			d.Sync = SyncSynced
			byID[d.ID] = d
			roomFor[d.ID] = room
		}
	}

	r.mu.Lock()
	r.rooms = rooms
	r.byID = byID
	r.roomFor = roomFor
	r.pending = make(map[string]StateChange)
	r.loaded = true
	r.mu.Unlock()

	return nil
}

// Rooms returns a deep copy of the full snapshot, ordered by sort
// order then name.
func (r *Registry) Rooms() []*Room {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Room, len(r.rooms))
	for i, room := range r.rooms {
		out[i] = room.DeepCopy()
	}
	return out
}

// RoomNames returns the display names of all rooms, sorted by the
// room ordering. Feeds the fuzzy room resolver.
func (r *Registry) RoomNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.rooms))
	for i, room := range r.rooms {
		names[i] = room.Name
	}
	return names
}

// GetDevice returns a copy of the device with the given ID.
func (r *Registry) GetDevice(id string) (*Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.loaded {
		return nil, ErrNotLoaded
	}
	d, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}
	return d.DeepCopy(), nil
}

// FindRoom returns a copy of the room whose name matches exactly,
// ignoring case. Returns nil when no room matches.
func (r *Registry) FindRoom(name string) *Room {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, room := range r.rooms {
		if strings.EqualFold(room.Name, name) {
			return room.DeepCopy()
		}
	}
	return nil
}

// UpdateDevice applies a state change on behalf of a local caller.
//
// The snapshot is updated optimistically and the device marked
// PendingWrite, the change is persisted, and the command publisher (if
// set) forwards it towards the physical device. Subscribers are
// notified after the change lands. Overlapping writes to the same
// device merge their desired values, most recent field wins.
//
// If persistence fails the optimistic change is rolled back and
// subscribers are notified with the restored device, so the snapshot
// never silently diverges from the store.
func (r *Registry) UpdateDevice(ctx context.Context, deviceID string, change StateChange) error {
	if change.IsZero() {
		return ErrEmptyChange
	}

	r.mu.Lock()
	if !r.loaded {
		r.mu.Unlock()
		return ErrNotLoaded
	}
	d, ok := r.byID[deviceID]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDeviceNotFound, deviceID)
	}

	prev := *d.DeepCopy()
	prevPending, hadPending := r.pending[deviceID]

	change.applyTo(d)
	d.Sync = SyncPendingWrite
	r.pending[deviceID] = r.pending[deviceID].merge(change)

	update := DeviceUpdate{
		Device:   *d.DeepCopy(),
		RoomName: r.roomFor[deviceID].Name,
		Source:   SourceLocal,
	}
	publish := r.publish
	r.mu.Unlock()

	if err := r.repo.UpdateDeviceState(ctx, deviceID, change); err != nil {
		r.rollbackWrite(deviceID, prev, prevPending, hadPending)
		return err
	}

	if publish != nil {
		if err := publish(deviceID, change); err != nil {
			return fmt.Errorf("publishing device command: %w", err)
		}
	}

	r.notify(update)
	return nil
}

// rollbackWrite undoes an optimistic change whose persistence failed,
// restoring the device and its pending entry to their prior state and
// notifying subscribers so the kiosk un-renders the optimistic update.
func (r *Registry) rollbackWrite(deviceID string, prev Device, prevPending StateChange, hadPending bool) {
	r.mu.Lock()
	d, ok := r.byID[deviceID]
	if !ok {
		r.mu.Unlock()
		return
	}

	*d = *prev.DeepCopy()
	if hadPending {
		r.pending[deviceID] = prevPending
	} else {
		delete(r.pending, deviceID)
	}

	update := DeviceUpdate{
		Device:   *d.DeepCopy(),
		RoomName: r.roomFor[deviceID].Name,
		Source:   SourceLocal,
	}
	r.mu.Unlock()

	r.notify(update)
}

// ApplyRemoteState reconciles a state push from the backing system.
//
// With no write pending the push is taken as-is and the device stays
// Synced. With a write pending, a push that satisfies every desired
// field confirms the write (back to Synced); a push that disagrees
// flags Conflict, the remote values win either way.
func (r *Registry) ApplyRemoteState(ctx context.Context, deviceID string, change StateChange) error {
	if change.IsZero() {
		return ErrEmptyChange
	}

	r.mu.Lock()
	if !r.loaded {
		r.mu.Unlock()
		return ErrNotLoaded
	}
	d, ok := r.byID[deviceID]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDeviceNotFound, deviceID)
	}

	change.applyTo(d)

	if desired, waiting := r.pending[deviceID]; waiting {
		if desired.matches(d) {
			d.Sync = SyncSynced
		} else {
			d.Sync = SyncConflict
		}
		delete(r.pending, deviceID)
	} else {
		d.Sync = SyncSynced
	}

	update := DeviceUpdate{
		Device:   *d.DeepCopy(),
		RoomName: r.roomFor[deviceID].Name,
		Source:   SourceRemote,
	}
	r.mu.Unlock()

	if err := r.repo.UpdateDeviceState(ctx, deviceID, change); err != nil {
		return err
	}

	r.notify(update)
	return nil
}

// Subscribe registers a callback invoked after every device update.
// Returns a function that removes the subscription.
//
// Callbacks run synchronously on the updating goroutine and must not
// call back into the registry's write methods.
func (r *Registry) Subscribe(fn func(DeviceUpdate)) func() {
	r.subMu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	r.subMu.Unlock()

	return func() {
		r.subMu.Lock()
		delete(r.subs, id)
		r.subMu.Unlock()
	}
}

func (r *Registry) notify(update DeviceUpdate) {
	r.subMu.Lock()
	fns := make([]func(DeviceUpdate), 0, len(r.subs))
	for _, fn := range r.subs {
		fns = append(fns, fn)
	}
	r.subMu.Unlock()

	for _, fn := range fns {
		fn(update)
	}
}

// sortRefs orders device references for stable assistant narration.
func sortRefs(refs []DeviceRef) {
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].RoomName != refs[j].RoomName {
			return refs[i].RoomName < refs[j].RoomName
		}
		return refs[i].Name < refs[j].Name
	})
}
