// Package home holds the room and device model for Argent Core.
//
// It provides:
//
//   - Room and Device types with their semantic categories
//   - A Repository interface with a SQLite implementation for persistence
//   - A Registry: the live in-memory snapshot the assistant operates on,
//     kept in sync with remote state pushes and mutated through awaited
//     update calls
//   - A category-based device finder used by the action dispatcher
//
// # Sync model
//
// Writes are optimistic: UpdateDevice applies the change to the snapshot
// immediately and marks the device PendingWrite with the desired values.
// When the matching remote state push arrives, the device either returns
// to Synced (push confirms the desired values) or is flagged Conflict
// (the backing system disagreed), rather than being blindly overwritten
// while a write is in flight. Devices with no write pending take remote
// pushes as-is.
package home
