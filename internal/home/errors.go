package home

import "errors"

// Sentinel errors for room and device operations.
//
// These errors can be checked using errors.Is() for specific handling:
//
//	if errors.Is(err, home.ErrDeviceNotFound) {
//	    // Respond with a not-found message
//	}
var (
	// ErrRoomNotFound indicates the requested room does not exist.
	ErrRoomNotFound = errors.New("home: room not found")

	// ErrDeviceNotFound indicates the requested device does not exist.
	ErrDeviceNotFound = errors.New("home: device not found")

	// ErrRoomExists indicates a room with the same slug already exists.
	ErrRoomExists = errors.New("home: room already exists")

	// ErrInvalidRoom indicates room data failed validation.
	ErrInvalidRoom = errors.New("home: invalid room")

	// ErrInvalidDevice indicates device data failed validation.
	ErrInvalidDevice = errors.New("home: invalid device")

	// ErrEmptyChange indicates a state update carried no fields to apply.
	ErrEmptyChange = errors.New("home: state change is empty")

	// ErrNotLoaded indicates the registry has not loaded its snapshot yet.
	ErrNotLoaded = errors.New("home: registry not loaded")
)
