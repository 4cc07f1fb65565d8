package mqtt

import (
	"fmt"
)

// Maximum payload size for MQTT messages (1MB).
// Prevents resource exhaustion and aligns with typical broker limits.
const maxPayloadSize = 1 << 20

// Publish sends a message to the specified MQTT topic.
//
// QoS levels: 0 at most once, 1 at least once, 2 exactly once.
// Retained messages are stored by the broker and delivered to new
// subscribers immediately; use them for state topics, not commands.
//
// Example:
//
//	topic := mqtt.Topics{}.DeviceCommand("light-living-main")
//	err := client.Publish(topic, []byte(`{"on":true}`), 1, false)
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}

// PublishString is a convenience method that publishes a string payload.
func (c *Client) PublishString(topic string, payload string, qos byte, retained bool) error {
	return c.Publish(topic, []byte(payload), qos, retained)
}

// PublishRetained publishes a retained message with the configured default QoS.
//
// Use for state updates where new subscribers should receive the current state.
func (c *Client) PublishRetained(topic string, payload []byte) error {
	return c.Publish(topic, payload, byte(c.cfg.QoS), true)
}
