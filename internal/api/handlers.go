package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/argentmirror/argent-core/internal/home"
)

// commandRequest is the request body for POST /assistant/command.
type commandRequest struct {
	Text string `json:"text"`
}

// handleAssistantCommand runs one command through the voice pipeline.
func (s *Server) handleAssistantCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeBadRequest(w, "text is required")
		return
	}

	reply := s.assistant.Handle(r.Context(), req.Text)
	writeJSON(w, http.StatusOK, reply)
}

// handleListRooms returns the full room and device snapshot.
func (s *Server) handleListRooms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"rooms": s.registry.Rooms(),
	})
}

// handleGetRoom returns one room with its devices.
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	for _, room := range s.registry.Rooms() {
		if room.ID == id {
			writeJSON(w, http.StatusOK, room)
			return
		}
	}
	writeNotFound(w, "room not found")
}

// handleGetDevice returns one device.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	device, err := s.registry.GetDevice(id)
	if err != nil {
		if errors.Is(err, home.ErrDeviceNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		writeInternalError(w, "failed to load device")
		return
	}
	writeJSON(w, http.StatusOK, device)
}

// roomRequest is the request body for room create/update.
type roomRequest struct {
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

// deviceRequest is the request body for POST /rooms/{id}/devices.
type deviceRequest struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	On          bool     `json:"on"`
	Temperature *float64 `json:"temperature,omitempty"`
	Brightness  *int     `json:"brightness,omitempty"`
	Speed       *int     `json:"speed,omitempty"`
	Position    *int     `json:"position,omitempty"`
}

// handleCreateRoom provisions a new room.
func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	room, err := s.registry.CreateRoom(r.Context(), req.Name, req.SortOrder)
	if err != nil {
		switch {
		case errors.Is(err, home.ErrInvalidRoom):
			writeBadRequest(w, "room name is required")
		case errors.Is(err, home.ErrRoomExists):
			writeConflict(w, "a room with that name already exists")
		default:
			s.logger.Error("room create failed", "error", err)
			writeInternalError(w, "failed to create room")
		}
		return
	}
	writeJSON(w, http.StatusCreated, room)
}

// handleUpdateRoom renames or reorders a room.
func (s *Server) handleUpdateRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	room, err := s.registry.UpdateRoom(r.Context(), id, req.Name, req.SortOrder)
	if err != nil {
		switch {
		case errors.Is(err, home.ErrRoomNotFound):
			writeNotFound(w, "room not found")
		case errors.Is(err, home.ErrInvalidRoom):
			writeBadRequest(w, "room name is required")
		case errors.Is(err, home.ErrRoomExists):
			writeConflict(w, "a room with that name already exists")
		default:
			s.logger.Error("room update failed", "room_id", id, "error", err)
			writeInternalError(w, "failed to update room")
		}
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// handleDeleteRoom removes a room and its devices.
func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.registry.DeleteRoom(r.Context(), id); err != nil {
		if errors.Is(err, home.ErrRoomNotFound) {
			writeNotFound(w, "room not found")
			return
		}
		s.logger.Error("room delete failed", "room_id", id, "error", err)
		writeInternalError(w, "failed to delete room")
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// handleCreateDevice provisions a new device in a room.
func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")

	var req deviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	device, err := s.registry.CreateDevice(r.Context(), &home.Device{
		RoomID:      roomID,
		Name:        strings.TrimSpace(req.Name),
		Type:        home.DeviceType(req.Type),
		On:          req.On,
		Temperature: req.Temperature,
		Brightness:  req.Brightness,
		Speed:       req.Speed,
		Position:    req.Position,
	})
	if err != nil {
		switch {
		case errors.Is(err, home.ErrInvalidDevice):
			writeBadRequest(w, "device name and type are required")
		case errors.Is(err, home.ErrRoomNotFound):
			writeNotFound(w, "room not found")
		default:
			s.logger.Error("device create failed", "room_id", roomID, "error", err)
			writeInternalError(w, "failed to create device")
		}
		return
	}
	writeJSON(w, http.StatusCreated, device)
}

// handleDeleteDevice removes a device.
func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.registry.DeleteDevice(r.Context(), id); err != nil {
		if errors.Is(err, home.ErrDeviceNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		s.logger.Error("device delete failed", "device_id", id, "error", err)
		writeInternalError(w, "failed to delete device")
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// handleSetDeviceState applies a partial state change to one device.
// Used by kiosk toggles alongside the assistant pipeline.
func (s *Server) handleSetDeviceState(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var change home.StateChange
	if err := json.NewDecoder(r.Body).Decode(&change); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if err := s.registry.UpdateDevice(r.Context(), id, change); err != nil {
		switch {
		case errors.Is(err, home.ErrDeviceNotFound):
			writeNotFound(w, "device not found")
		case errors.Is(err, home.ErrEmptyChange):
			writeBadRequest(w, "state change is empty")
		default:
			s.logger.Error("device state write failed", "device_id", id, "error", err)
			writeInternalError(w, "failed to update device")
		}
		return
	}

	device, err := s.registry.GetDevice(id)
	if err != nil {
		writeInternalError(w, "failed to load device")
		return
	}
	writeJSON(w, http.StatusOK, device)
}
