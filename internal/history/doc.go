// Package history records device state transitions and assistant
// command metrics to the time-series store.
//
// The recorder subscribes to registry updates and forwards each one as
// measurement points: an on/off series per device plus one series per
// numeric attribute. Writes are fire-and-forget; history never blocks
// or fails a device command.
package history
