package home

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Provisioning operations: room and device create/update/delete with
// write-through to the repository. Unlike state writes these hold the
// registry lock across the store call; they are rare, and the snapshot
// must never list a room or device the store does not have.

// CreateRoom persists a new room and adds it to the snapshot. The ID
// and slug are generated by the repository.
func (r *Registry) CreateRoom(ctx context.Context, name string, sortOrder int) (*Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidRoom)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.loaded {
		return nil, ErrNotLoaded
	}

	room := &Room{Name: name, SortOrder: sortOrder}
	if err := r.repo.CreateRoom(ctx, room); err != nil {
		return nil, err
	}

	r.rooms = append(r.rooms, room)
	r.sortRoomsLocked()
	return room.DeepCopy(), nil
}

// UpdateRoom renames or reorders a room. The slug is regenerated from
// the new name. Renames take effect immediately for fuzzy room
// resolution since the resolver reads the live snapshot.
func (r *Registry) UpdateRoom(ctx context.Context, id, name string, sortOrder int) (*Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidRoom)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.loaded {
		return nil, ErrNotLoaded
	}

	room := r.roomByIDLocked(id)
	if room == nil {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, id)
	}

	updated := room.DeepCopy()
	updated.Name = name
	updated.Slug = GenerateSlug(name)
	updated.SortOrder = sortOrder
	if err := r.repo.UpdateRoom(ctx, updated); err != nil {
		return nil, err
	}

	room.Name = updated.Name
	room.Slug = updated.Slug
	room.SortOrder = updated.SortOrder
	room.UpdatedAt = updated.UpdatedAt
	r.sortRoomsLocked()
	return room.DeepCopy(), nil
}

// DeleteRoom removes a room, its devices, and any pending writes for
// them from both the store and the snapshot.
func (r *Registry) DeleteRoom(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.loaded {
		return ErrNotLoaded
	}

	if err := r.repo.DeleteRoom(ctx, id); err != nil {
		return err
	}

	for i, room := range r.rooms {
		if room.ID != id {
			continue
		}
		for j := range room.Devices {
			deviceID := room.Devices[j].ID
			delete(r.byID, deviceID)
			delete(r.roomFor, deviceID)
			delete(r.pending, deviceID)
		}
		r.rooms = append(r.rooms[:i], r.rooms[i+1:]...)
		break
	}
	return nil
}

// CreateDevice persists a new device and adds it to its room in the
// snapshot. The ID is generated by the repository; the device starts
// Synced.
func (r *Registry) CreateDevice(ctx context.Context, device *Device) (*Device, error) {
	if device == nil || device.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidDevice)
	}
	if device.Type == "" {
		return nil, fmt.Errorf("%w: type is required", ErrInvalidDevice)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.loaded {
		return nil, ErrNotLoaded
	}

	// The store is authoritative on room existence; a dangling room_id
	// would otherwise surface as an opaque foreign-key failure.
	if _, err := r.repo.GetRoom(ctx, device.RoomID); err != nil {
		return nil, err
	}

	create := device.DeepCopy()
	create.Sync = SyncSynced
	if err := r.repo.CreateDevice(ctx, create); err != nil {
		return nil, err
	}

	if room := r.roomByIDLocked(create.RoomID); room != nil {
		room.Devices = append(room.Devices, *create.DeepCopy())
		sort.Slice(room.Devices, func(i, j int) bool {
			return room.Devices[i].Name < room.Devices[j].Name
		})
		r.indexRoomLocked(room)
	}
	return create.DeepCopy(), nil
}

// DeleteDevice removes a device and any pending write for it from both
// the store and the snapshot.
func (r *Registry) DeleteDevice(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.loaded {
		return ErrNotLoaded
	}

	if err := r.repo.DeleteDevice(ctx, id); err != nil {
		return err
	}

	room, ok := r.roomFor[id]
	if !ok {
		return nil
	}
	for i := range room.Devices {
		if room.Devices[i].ID == id {
			room.Devices = append(room.Devices[:i], room.Devices[i+1:]...)
			break
		}
	}
	delete(r.byID, id)
	delete(r.roomFor, id)
	delete(r.pending, id)
	r.indexRoomLocked(room)
	return nil
}

func (r *Registry) roomByIDLocked(id string) *Room {
	for _, room := range r.rooms {
		if room.ID == id {
			return room
		}
	}
	return nil
}

// sortRoomsLocked restores the sort-order-then-name ordering after an
// insert or rename.
func (r *Registry) sortRoomsLocked() {
	sort.Slice(r.rooms, func(i, j int) bool {
		if r.rooms[i].SortOrder != r.rooms[j].SortOrder {
			return r.rooms[i].SortOrder < r.rooms[j].SortOrder
		}
		return r.rooms[i].Name < r.rooms[j].Name
	})
}

// indexRoomLocked refreshes the device maps for one room. Required
// after any append or removal: those reallocate or shift the backing
// array, invalidating previously stored pointers.
func (r *Registry) indexRoomLocked(room *Room) {
	for i := range room.Devices {
		d := &room.Devices[i]
		r.byID[d.ID] = d
		r.roomFor[d.ID] = room
	}
}
