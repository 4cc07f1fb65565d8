package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Argent Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Mirror    MirrorConfig    `yaml:"mirror"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Assistant AssistantConfig `yaml:"assistant"`
	Logging   LoggingConfig   `yaml:"logging"`
	Security  SecurityConfig  `yaml:"security"`
}

// MirrorConfig contains deployment-specific information about the mirror.
type MirrorConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Timezone string `yaml:"timezone"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings for state history.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// AssistantConfig contains voice-assistant pipeline settings.
//
// The thresholds are deliberately configuration rather than constants:
// 0.8 and 0.6 are inherited cutoffs with no calibration behind them, so
// deployments can tune them without a rebuild.
type AssistantConfig struct {
	// ConfidenceThreshold is the minimum intent-parser confidence for
	// handling a command locally. Below it, the command is forwarded to
	// the conversational fallback.
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`

	// RoomMatchThreshold is the minimum fuzzy-match score for accepting
	// a room name resolution.
	RoomMatchThreshold float64 `yaml:"room_match_threshold"`

	// LLM configures the remote conversational model.
	LLM LLMConfig `yaml:"llm"`
}

// LLMConfig contains settings for the OpenAI-compatible chat endpoint.
type LLMConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`

	// HistoryTurns bounds the conversation history replayed on each call.
	HistoryTurns int `yaml:"history_turns"`

	// RequestTimeout is the per-request timeout in seconds.
	RequestTimeout int `yaml:"request_timeout"`
}

// GetRequestTimeout returns the per-request timeout as a Duration,
// falling back to 30 seconds when unset.
func (c LLMConfig) GetRequestTimeout() time.Duration {
	if c.RequestTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.RequestTimeout) * time.Second
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	JWT JWTConfig `yaml:"jwt"`
}

// JWTConfig contains JWT token settings for kiosk sessions.
type JWTConfig struct {
	Secret         string `yaml:"secret"`
	AccessTokenTTL int    `yaml:"access_token_ttl"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: ARGENT_SECTION_KEY
// For example: ARGENT_DATABASE_PATH, ARGENT_LLM_API_KEY
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Mirror: MirrorConfig{
			ID:       "mirror-001",
			Name:     "Argent",
			Timezone: "UTC",
		},
		Database: DatabaseConfig{
			Path:        "./data/argent.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Enabled: true,
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "argent-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Assistant: AssistantConfig{
			ConfidenceThreshold: 0.8,
			RoomMatchThreshold:  0.6,
			LLM: LLMConfig{
				Enabled:        true,
				Model:          "gpt-4o-mini",
				HistoryTurns:   10,
				RequestTimeout: 30,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			JWT: JWTConfig{
				AccessTokenTTL: 1440,
			},
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: ARGENT_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Database
	if v := os.Getenv("ARGENT_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("ARGENT_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("ARGENT_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("ARGENT_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// API
	if v := os.Getenv("ARGENT_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("ARGENT_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	// InfluxDB
	if v := os.Getenv("ARGENT_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// LLM credentials (always prefer the environment for these)
	if v := os.Getenv("ARGENT_LLM_API_KEY"); v != "" {
		cfg.Assistant.LLM.APIKey = v
	}
	if v := os.Getenv("ARGENT_LLM_BASE_URL"); v != "" {
		cfg.Assistant.LLM.BaseURL = v
	}

	// Security - JWT secret (IMPORTANT: always override in production)
	if v := os.Getenv("ARGENT_JWT_SECRET"); v != "" {
		cfg.Security.JWT.Secret = v
	}
}

// Validate checks the configuration for errors and security issues.
func (c *Config) Validate() error {
	var errs []string

	if c.Mirror.ID == "" {
		errs = append(errs, "mirror.id is required")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.Assistant.ConfidenceThreshold <= 0 || c.Assistant.ConfidenceThreshold > 1 {
		errs = append(errs, "assistant.confidence_threshold must be in (0, 1]")
	}
	if c.Assistant.RoomMatchThreshold <= 0 || c.Assistant.RoomMatchThreshold > 1 {
		errs = append(errs, "assistant.room_match_threshold must be in (0, 1]")
	}
	if c.Assistant.LLM.Enabled && c.Assistant.LLM.HistoryTurns < 1 {
		errs = append(errs, "assistant.llm.history_turns must be at least 1")
	}

	// The API controls physical devices; an empty or short secret would
	// let anyone on the network forge kiosk tokens.
	const minJWTSecretLength = 32
	if c.Security.JWT.Secret == "" {
		errs = append(errs, "security.jwt.secret is required (set ARGENT_JWT_SECRET environment variable)")
	} else if len(c.Security.JWT.Secret) < minJWTSecretLength {
		errs = append(errs, "security.jwt.secret must be at least 32 characters")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}

// GetLLMTimeout returns the LLM request timeout as a Duration.
func (c *Config) GetLLMTimeout() time.Duration {
	return time.Duration(c.Assistant.LLM.RequestTimeout) * time.Second
}
