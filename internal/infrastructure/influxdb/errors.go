package influxdb

import "errors"

// Sentinel errors for InfluxDB operations.
//
// These errors can be checked using errors.Is() for specific handling:
//
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // Run without state history
//	}
var (
	// ErrNotConnected indicates the client is not connected to InfluxDB.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrConnectionFailed indicates the initial connection attempt failed.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrDisabled indicates InfluxDB integration is disabled in config.
	ErrDisabled = errors.New("influxdb: disabled in configuration")
)
