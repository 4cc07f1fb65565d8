// Package mqtt provides the MQTT client for Argent Core.
//
// The MQTT bus is how device state enters and leaves the core: protocol
// adapters publish state changes on argent/state/{device_id}, and the
// dispatcher publishes commands on argent/command/{device_id}. The home
// registry subscribes to the state topics to keep its snapshot live.
//
// The client wraps eclipse/paho.mqtt.golang with connection management,
// automatic re-subscription on reconnect, Last Will and Testament for
// offline detection, and panic-safe message handlers.
//
// All methods are safe for concurrent use.
package mqtt
