package mqtt

import (
	"fmt"
)

// Subscribe registers a handler for messages on the specified topic.
//
// Topics can include MQTT wildcards:
//   - + (single-level): "argent/state/+" matches any device state topic
//   - # (multi-level): "argent/#" matches all Argent topics
//
// The handler is called in a separate goroutine for each received message.
// Subscriptions are automatically restored if the connection is lost and
// reconnected.
//
// Example:
//
//	err := client.Subscribe(mqtt.Topics{}.AllDeviceStates(), 1,
//	    func(topic string, payload []byte) error {
//	        return handleStatePush(topic, payload)
//	    })
func (c *Client) Subscribe(topic string, qos byte, handler MessageHandler) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if handler == nil {
		return fmt.Errorf("%w: handler cannot be nil", ErrSubscribeFailed)
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	// Track subscription for reconnection restoration
	c.subMu.Lock()
	c.subscriptions[topic] = subscription{
		topic:   topic,
		qos:     qos,
		handler: handler,
	}
	c.subMu.Unlock()

	token := c.client.Subscribe(topic, qos, c.wrapHandler(handler))
	if !token.WaitTimeout(defaultPublishTimeout) {
		c.subMu.Lock()
		delete(c.subscriptions, topic)
		c.subMu.Unlock()
		return fmt.Errorf("%w: timeout after %v", ErrSubscribeFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		c.subMu.Lock()
		delete(c.subscriptions, topic)
		c.subMu.Unlock()
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}

	return nil
}

// Unsubscribe removes a subscription and stops receiving messages for a topic.
//
// Messages already in flight may still be delivered.
func (c *Client) Unsubscribe(topic string) error {
	if topic == "" {
		return ErrInvalidTopic
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	c.subMu.Lock()
	delete(c.subscriptions, topic)
	c.subMu.Unlock()

	token := c.client.Unsubscribe(topic)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrUnsubscribeFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnsubscribeFailed, err)
	}

	return nil
}

// SubscriptionCount returns the number of active subscriptions.
func (c *Client) SubscriptionCount() int {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	return len(c.subscriptions)
}

// HasSubscription checks if a subscription exists for the given topic.
//
// Note: This checks only the exact topic string, not pattern matching.
func (c *Client) HasSubscription(topic string) bool {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	_, exists := c.subscriptions[topic]
	return exists
}
