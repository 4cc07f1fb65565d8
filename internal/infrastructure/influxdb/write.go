package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteDeviceState records an on/off transition for a device.
//
// The boolean is stored as 0/1 so it can be graphed and aggregated.
// The write is non-blocking; data is batched and sent asynchronously.
//
// Example:
//
//	client.WriteDeviceState("light-living-main", "Living Room", true)
func (c *Client) WriteDeviceState(deviceID, roomName string, on bool) {
	if !c.IsConnected() {
		return
	}

	value := 0.0
	if on {
		value = 1.0
	}

	point := write.NewPoint(
		"device_state",
		map[string]string{
			"device_id": deviceID,
			"room":      roomName,
		},
		map[string]interface{}{
			"on": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteDeviceAttribute records a numeric device attribute.
//
// Used for temperature setpoints, brightness, fan speed and curtain
// position. The attribute name becomes a tag so each series stays
// independently queryable.
//
// Example:
//
//	client.WriteDeviceAttribute("ac-bedroom", "Bedroom", "temperature", 21.0)
func (c *Client) WriteDeviceAttribute(deviceID, roomName, attribute string, value float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"device_attribute",
		map[string]string{
			"device_id": deviceID,
			"room":      roomName,
			"attribute": attribute,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteCommandMetric records an assistant command outcome.
//
// Tags the action and how the command was resolved (local intent match or
// conversational fallback) so recognition quality can be tracked over time.
func (c *Client) WriteCommandMetric(action, source string, changed int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"assistant_command",
		map[string]string{
			"action": action,
			"source": source,
		},
		map[string]interface{}{
			"devices_changed": changed,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
