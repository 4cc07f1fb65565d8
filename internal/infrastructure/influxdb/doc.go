// Package influxdb provides the InfluxDB client for device state history.
//
// Argent Core records every device state transition (on/off, temperature,
// brightness, fan speed, curtain position) as time-series points so the
// kiosk can chart history and deployments can audit what the assistant
// actually did.
//
// Writes are non-blocking and batched; failures surface through an
// asynchronous error callback rather than the write path. When InfluxDB
// is disabled in configuration, Connect returns ErrDisabled and callers
// run without history.
package influxdb
