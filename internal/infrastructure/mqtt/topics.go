package mqtt

import "fmt"

// Topic prefixes for the Argent MQTT hierarchy.
//
// Scheme: argent/{category}/{device_id}
const (
	// TopicPrefix is the base for all Argent topics.
	TopicPrefix = "argent"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "argent/system"
)

// Topics provides builders for Argent MQTT topics.
// Using these helpers keeps topic naming consistent across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.DeviceState("light-living-main")
//	// Returns: "argent/state/light-living-main"
type Topics struct{}

// DeviceState returns the topic for state updates of a single device.
//
// Example: argent/state/light-living-main
func (Topics) DeviceState(deviceID string) string {
	return fmt.Sprintf("%s/state/%s", TopicPrefix, deviceID)
}

// AllDeviceStates returns the wildcard topic matching every device state update.
//
// Example: argent/state/+
func (Topics) AllDeviceStates() string {
	return fmt.Sprintf("%s/state/+", TopicPrefix)
}

// DeviceCommand returns the topic for commands to a device.
//
// Example: argent/command/light-living-main
func (Topics) DeviceCommand(deviceID string) string {
	return fmt.Sprintf("%s/command/%s", TopicPrefix, deviceID)
}

// SystemStatus returns the topic for core online/offline status.
//
// Example: argent/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// DeviceIDFromStateTopic extracts the device ID from a state topic.
// Returns an empty string if the topic does not match the state scheme.
func DeviceIDFromStateTopic(topic string) string {
	prefix := TopicPrefix + "/state/"
	if len(topic) <= len(prefix) || topic[:len(prefix)] != prefix {
		return ""
	}
	return topic[len(prefix):]
}
