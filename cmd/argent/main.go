// Argent Core - Smart Mirror Home Hub
//
// This is the main entry point for the Argent Core service. Argent
// turns a wall-mounted mirror into a voice-driven smart home kiosk:
//   - Local intent pipeline for device commands (no cloud round-trip)
//   - Conversational fallback via an OpenAI-compatible model
//   - MQTT integration with the device fleet
//   - REST + WebSocket API for the mirror UI
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	_ "github.com/argentmirror/argent-core/migrations"

	"github.com/argentmirror/argent-core/internal/api"
	"github.com/argentmirror/argent-core/internal/assistant"
	"github.com/argentmirror/argent-core/internal/assistant/dispatch"
	"github.com/argentmirror/argent-core/internal/assistant/intent"
	"github.com/argentmirror/argent-core/internal/assistant/llm"
	"github.com/argentmirror/argent-core/internal/history"
	"github.com/argentmirror/argent-core/internal/home"
	"github.com/argentmirror/argent-core/internal/infrastructure/config"
	"github.com/argentmirror/argent-core/internal/infrastructure/database"
	"github.com/argentmirror/argent-core/internal/infrastructure/influxdb"
	"github.com/argentmirror/argent-core/internal/infrastructure/logging"
	"github.com/argentmirror/argent-core/internal/infrastructure/mqtt"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for
// testability. Returning an error allows main to handle exit codes
// consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Argent Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Load the home registry
	repo := home.NewSQLiteRepository(db)
	registry := home.NewRegistry(repo)
	if loadErr := registry.Load(ctx); loadErr != nil {
		return fmt.Errorf("loading home registry: %w", loadErr)
	}
	log.Info("home registry loaded", "rooms", len(registry.RoomNames()))

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		if wireErr := wireMQTT(ctx, mqttClient, registry, cfg.MQTT.QoS, log); wireErr != nil {
			return fmt.Errorf("wiring MQTT: %w", wireErr)
		}
	} else {
		log.Info("MQTT disabled, device writes stay local")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// State history recorder (no-op when InfluxDB is disabled)
	var sink history.Sink
	if influxClient != nil {
		sink = influxClient
	}
	recorder := history.New(sink, log)
	recorder.Attach(registry)
	defer recorder.Close()

	// Assemble the assistant pipeline
	parser := intent.NewParser(registry, cfg.Assistant.RoomMatchThreshold)
	dispatcher := dispatch.New(registry, log, cfg.Assistant.RoomMatchThreshold)
	fallback := llm.New(cfg.Assistant.LLM, registry, log, cfg.Assistant.RoomMatchThreshold)
	if fallback.Enabled() {
		log.Info("conversational fallback enabled", "model", cfg.Assistant.LLM.Model)
	} else {
		log.Info("conversational fallback disabled, low-confidence commands get canned replies")
	}

	svc := assistant.New(parser, dispatcher, fallback, log, cfg.Assistant.ConfidenceThreshold)
	svc.SetObserver(recorder.RecordCommand)

	// Start the API server
	apiServer, err := api.New(api.Deps{
		Config:    cfg.API,
		WS:        cfg.WebSocket,
		Security:  cfg.Security,
		Logger:    log,
		Registry:  registry,
		Assistant: svc,
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := apiServer.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient, apiServer); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. History recorder
	// 3. InfluxDB (if enabled)
	// 4. MQTT (if enabled)
	// 5. Database

	log.Info("Argent Core stopped")
	return nil
}

// wireMQTT connects the home registry to the device fleet.
//
// Outbound: optimistic local writes publish a command payload to the
// device's command topic. Inbound: device state pushes are applied as
// remote state, confirming or conflicting pending writes.
func wireMQTT(ctx context.Context, client *mqtt.Client, registry *home.Registry, qos int, log *logging.Logger) error {
	topics := mqtt.Topics{}

	registry.SetCommandPublisher(func(deviceID string, change home.StateChange) error {
		payload, err := json.Marshal(change)
		if err != nil {
			return fmt.Errorf("encoding command payload: %w", err)
		}
		return client.Publish(topics.DeviceCommand(deviceID), payload, byte(qos), false)
	})

	return client.Subscribe(topics.AllDeviceStates(), byte(qos), func(topic string, payload []byte) error {
		deviceID := mqtt.DeviceIDFromStateTopic(topic)
		if deviceID == "" {
			return nil
		}

		var change home.StateChange
		if err := json.Unmarshal(payload, &change); err != nil {
			return fmt.Errorf("parsing state payload for %s: %w", deviceID, err)
		}

		if err := registry.ApplyRemoteState(ctx, deviceID, change); err != nil {
			// Unknown devices are normal during commissioning; anything
			// else is worth surfacing.
			log.Warn("remote state not applied", "device_id", deviceID, "error", err)
		}
		return nil
	})
}

// getConfigPath returns the configuration file path.
// Uses ARGENT_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("ARGENT_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections concurrently.
// Optional clients may be nil when disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client, apiServer *api.Server) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := db.HealthCheck(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
		return nil
	})

	if mqttClient != nil {
		g.Go(func() error {
			if err := mqttClient.HealthCheck(ctx); err != nil {
				return fmt.Errorf("mqtt: %w", err)
			}
			return nil
		})
	}

	if influxClient != nil {
		g.Go(func() error {
			if err := influxClient.HealthCheck(ctx); err != nil {
				return fmt.Errorf("influxdb: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		if err := apiServer.HealthCheck(ctx); err != nil {
			return fmt.Errorf("api: %w", err)
		}
		return nil
	})

	return g.Wait()
}
