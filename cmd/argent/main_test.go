package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("ARGENT_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_MissingJWTSecret verifies run fails validation without a JWT
// secret, since the API can control physical devices.
func TestRun_MissingJWTSecret(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `
mirror:
  id: test-mirror

database:
  path: "` + filepath.Join(tmpDir, "test.db") + `"
  wal_mode: true
  busy_timeout: 5

mqtt:
  enabled: false

influxdb:
  enabled: false

assistant:
  confidence_threshold: 0.8
  room_match_threshold: 0.6
  llm:
    enabled: false

logging:
  level: info
  format: text
  output: stdout

api:
  host: "127.0.0.1"
  port: 8080
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("ARGENT_CONFIG", configPath)
	t.Setenv("ARGENT_JWT_SECRET", "")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail without a JWT secret")
	}
}

// TestGetConfigPath_Default verifies default config path.
func TestGetConfigPath_Default(t *testing.T) {
	t.Setenv("ARGENT_CONFIG", "")

	if path := getConfigPath(); path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}
}

// TestGetConfigPath_EnvOverride verifies environment variable override.
func TestGetConfigPath_EnvOverride(t *testing.T) {
	expected := "/custom/path/config.yaml"
	t.Setenv("ARGENT_CONFIG", expected)

	if path := getConfigPath(); path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}

// TestRun_StartupAndShutdown exercises the full startup path with MQTT
// and InfluxDB disabled, then cancels the context for shutdown.
func TestRun_StartupAndShutdown(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")
	dbPath := filepath.Join(tmpDir, "test.db")

	configContent := `
mirror:
  id: test-mirror

database:
  path: "` + dbPath + `"
  wal_mode: true
  busy_timeout: 5

mqtt:
  enabled: false

influxdb:
  enabled: false

assistant:
  confidence_threshold: 0.8
  room_match_threshold: 0.6
  llm:
    enabled: false

logging:
  level: error
  format: text
  output: stdout

api:
  host: "127.0.0.1"
  port: 18099
  timeouts:
    read: 30
    write: 30
    idle: 60

security:
  jwt:
    secret: "test-secret-at-least-32-characters-long"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("ARGENT_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := run(ctx); err != nil {
		t.Fatalf("run() error = %v, want clean shutdown", err)
	}
}
