// AV Scenes Core - Activity Orchestration Engine
//
// This is the main entry point for the AV Scenes Core application.
// It orchestrates room-based audio/video activities: given a named
// activity per room, it computes minimal device transitions, sequences
// power-on delays, and exposes control over MQTT, REST, and WebSocket.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/mkshb/ha-av-scenes/migrations"

	"github.com/mkshb/ha-av-scenes/internal/activity"
	"github.com/mkshb/ha-av-scenes/internal/api"
	"github.com/mkshb/ha-av-scenes/internal/gateway"
	"github.com/mkshb/ha-av-scenes/internal/infrastructure/config"
	"github.com/mkshb/ha-av-scenes/internal/infrastructure/database"
	"github.com/mkshb/ha-av-scenes/internal/infrastructure/influxdb"
	"github.com/mkshb/ha-av-scenes/internal/infrastructure/logging"
	"github.com/mkshb/ha-av-scenes/internal/infrastructure/mqtt"
	"github.com/mkshb/ha-av-scenes/internal/trigger"
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
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting AV Scenes Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
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
	db, err := database.Open(database.Config{
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

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Initialise activity registry
	repo := activity.NewSQLiteRepository(db.DB)
	registry := activity.NewRegistry(repo)
	registry.SetLogger(log)

	if refreshErr := registry.RefreshCache(ctx); refreshErr != nil {
		return fmt.Errorf("loading activity registry: %w", refreshErr)
	}
	log.Info("activity registry initialised", "rooms", registry.RoomCount())

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
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

	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

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

	// Assemble the activity engine: registry for config reads, MQTT
	// gateway for device commands, SQLite (+ optional InfluxDB) for the
	// transition log.
	deviceGateway := gateway.New(mqttClient, log)
	recorder := &transitionRecorder{repo: repo, influx: influxClient}
	engine := activity.NewEngine(registry, deviceGateway, recorder, log)

	// MQTT control surface: service calls in, retained room status out
	triggerService := trigger.New(engine, registry, mqttClient, log)
	if startErr := triggerService.Start(ctx); startErr != nil {
		return fmt.Errorf("starting MQTT trigger service: %w", startErr)
	}
	log.Info("MQTT trigger service started")

	// REST + WebSocket API
	apiServer, err := api.New(api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Security: cfg.Security,
		Logger:   log,
		Registry: registry,
		Engine:   engine,
		Repo:     repo,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := apiServer.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "address", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port))

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT
	// 4. Database

	log.Info("AV Scenes Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses AVSCENES_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("AVSCENES_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}

// transitionRecorder fans completed transitions out to the SQLite history
// table and, when enabled, to InfluxDB for long-term telemetry. SQLite is
// the durable record; the InfluxDB write is asynchronous and best-effort.
type transitionRecorder struct {
	repo   activity.Repository
	influx *influxdb.Client
}

// RecordTransition implements activity.TransitionRecorder.
func (r *transitionRecorder) RecordTransition(ctx context.Context, transition *activity.Transition) error {
	if r.influx != nil {
		r.influx.WriteTransition(
			transition.RoomID,
			string(transition.Kind),
			transition.FromActivity,
			transition.ToActivity,
			transition.CommandsTotal,
			transition.CommandsFailed,
			time.Duration(transition.DurationMS)*time.Millisecond,
		)
	}

	return r.repo.RecordTransition(ctx, transition)
}
