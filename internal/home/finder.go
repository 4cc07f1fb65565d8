package home

import "strings"

// FindByCategory returns references to every device in the given
// category, optionally constrained to one room.
//
// The room constraint is an exact match ignoring case; callers wanting
// fuzzy behaviour resolve the room name first and pass the canonical
// form. An unknown room or empty category simply yields no results,
// never an error, so the assistant can phrase "couldn't find" replies
// uniformly.
func (r *Registry) FindByCategory(category Category, roomName string) []DeviceRef {
	r.mu.RLock()
	defer r.mu.RUnlock()

	refs := []DeviceRef{}
	for _, room := range r.rooms {
		if roomName != "" && !strings.EqualFold(room.Name, roomName) {
			continue
		}
		for i := range room.Devices {
			d := &room.Devices[i]
			if !d.InCategory(category) {
				continue
			}
			refs = append(refs, DeviceRef{
				RoomID:   room.ID,
				RoomName: room.Name,
				DeviceID: d.ID,
				Name:     d.Name,
				On:       d.On,
			})
		}
	}

	sortRefs(refs)
	return refs
}
