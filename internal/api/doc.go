// Package api provides the HTTP REST API and WebSocket server for
// Argent Core.
//
// It exposes the assistant command endpoint, room and device reads,
// direct device state writes, and a WebSocket channel pushing device
// updates to the kiosk UI in real time.
//
// The server follows the same lifecycle pattern as the other
// infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: all methods are safe for concurrent use.
package api
