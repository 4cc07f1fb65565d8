package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Auth endpoints (no auth required)
		r.Post("/auth/login", s.handleLogin)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			// WS ticket requires authentication
			r.Post("/auth/ws-ticket", s.handleWSTicket)

			// Assistant command pipeline
			r.Post("/assistant/command", s.handleAssistantCommand)

			// Room reads and provisioning
			r.Get("/rooms", s.handleListRooms)
			r.Post("/rooms", s.handleCreateRoom)
			r.Get("/rooms/{id}", s.handleGetRoom)
			r.Put("/rooms/{id}", s.handleUpdateRoom)
			r.Delete("/rooms/{id}", s.handleDeleteRoom)
			r.Post("/rooms/{id}/devices", s.handleCreateDevice)

			// Device reads, provisioning, and direct state writes
			// (kiosk toggles)
			r.Get("/devices/{id}", s.handleGetDevice)
			r.Put("/devices/{id}/state", s.handleSetDeviceState)
			r.Delete("/devices/{id}", s.handleDeleteDevice)

			// WebSocket (auth via ticket, validated in handler)
			r.Get("/ws", s.handleWebSocket)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
