package mqtt

import (
	"crypto/tls"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/argentmirror/argent-core/internal/infrastructure/config"
)

// Connection constants.
const (
	// defaultConnectTimeout is the maximum time to wait for initial connection.
	defaultConnectTimeout = 10 * time.Second

	// defaultPublishTimeout is the maximum time to wait for publish acknowledgment.
	defaultPublishTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the time to wait for pending operations on disconnect.
	defaultDisconnectQuiesce = 1000 // milliseconds

	// defaultKeepAlive is the keepalive interval for the connection.
	defaultKeepAlive = 60 * time.Second

	// maxQoS is the maximum QoS level supported.
	maxQoS = 2

	// tlsMinVersion is the minimum TLS version for secure connections.
	tlsMinVersion = tls.VersionTLS12
)

// buildClientOptions creates paho MQTT options from Argent config.
func buildClientOptions(cfg config.MQTTConfig) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port))

	opts.SetClientID(cfg.Broker.ClientID)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	// Start fresh on connect; no persistent session on the broker.
	opts.SetCleanSession(true)

	// Auto-reconnect with exponential backoff.
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(time.Duration(cfg.Reconnect.InitialDelay) * time.Second)
	opts.SetMaxReconnectInterval(time.Duration(cfg.Reconnect.MaxDelay) * time.Second)

	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)

	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{
			MinVersion: tlsMinVersion,
		})
	}

	return opts
}

// configureLWT sets up Last Will and Testament for offline detection.
//
// The broker publishes the LWT message if the client disconnects
// unexpectedly, so other services can tell a crash from a clean shutdown.
func configureLWT(opts *pahomqtt.ClientOptions, clientID string) {
	willTopic := Topics{}.SystemStatus()
	willPayload := fmt.Sprintf(
		`{"status":"offline","client_id":"%s","reason":"unexpected_disconnect","timestamp":"%s"}`,
		clientID,
		time.Now().UTC().Format(time.RFC3339),
	)

	opts.SetWill(willTopic, willPayload, 1, true)
}

// buildOnlinePayload creates the JSON payload for online status messages.
func buildOnlinePayload(clientID string) string {
	return fmt.Sprintf(
		`{"status":"online","client_id":"%s","timestamp":"%s"}`,
		clientID,
		time.Now().UTC().Format(time.RFC3339),
	)
}

// buildOfflinePayload creates the JSON payload for graceful offline status.
func buildOfflinePayload(clientID string) string {
	return fmt.Sprintf(
		`{"status":"offline","client_id":"%s","reason":"graceful_shutdown","timestamp":"%s"}`,
		clientID,
		time.Now().UTC().Format(time.RFC3339),
	)
}
