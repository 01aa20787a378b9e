// tellstickd - TellStick MQTT daemon
//
// tellstickd wraps the native telldus-core library and exposes its
// devices, sensors and events over MQTT. It also records sensor history
// to SQLite with optional InfluxDB mirroring.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/nerrad567/tellstick-core/migrations"

	"github.com/nerrad567/tellstick-core/internal/bridge"
	"github.com/nerrad567/tellstick-core/internal/history"
	"github.com/nerrad567/tellstick-core/internal/infrastructure/config"
	"github.com/nerrad567/tellstick-core/internal/infrastructure/database"
	"github.com/nerrad567/tellstick-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/tellstick-core/internal/infrastructure/logging"
	"github.com/nerrad567/tellstick-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/tellstick-core/internal/tellcore"
	"github.com/nerrad567/tellstick-core/internal/telldus"
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
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting tellstickd",
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

	// Open the native telldus-core library
	core, err := openCore(cfg, log)
	if err != nil {
		return fmt.Errorf("opening telldus-core: %w", err)
	}
	defer func() {
		log.Info("closing telldus-core")
		core.Close()
	}()
	logDeviceSummary(core, log)

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

	store := history.NewStore(db)

	// Connect to MQTT and start the event bridge (optional)
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

		mqttClient.SetLogger(log.With("component", "mqtt"))
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		eventBridge := bridge.New(core, mqttClient, log, bridge.Options{
			QoS:           byte(cfg.MQTT.QoS), //nolint:gosec // QoS validated to 0-2
			DrainInterval: cfg.EventDrainInterval(),
			OnDeviceEvent: deviceEventRecorder(store, influxClient, log),
		})
		if startErr := eventBridge.Start(); startErr != nil {
			return fmt.Errorf("starting event bridge: %w", startErr)
		}
		defer func() {
			log.Info("stopping event bridge")
			if closeErr := eventBridge.Close(); closeErr != nil {
				log.Error("error closing event bridge", "error", closeErr)
			}
		}()
	} else {
		log.Info("MQTT disabled, event bridge not started")
	}

	// Start the sensor history recorder (optional)
	if cfg.History.Enabled {
		opts := history.Options{
			Interval:  cfg.PollInterval(),
			Retention: time.Duration(cfg.History.Retention) * 24 * time.Hour,
		}
		if influxClient != nil {
			opts.Mirror = influxClient
		}
		recorder := history.New(core, store, log, opts)
		recorder.Start()
		defer func() {
			log.Info("stopping sensor recorder")
			if closeErr := recorder.Close(); closeErr != nil {
				log.Error("error closing sensor recorder", "error", closeErr)
			}
		}()
	} else {
		log.Info("sensor history disabled")
	}

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
	// 1. Sensor recorder
	// 2. Event bridge, then MQTT
	// 3. InfluxDB (if enabled)
	// 4. telldus-core
	// 5. Database

	log.Info("tellstickd stopped")
	return nil
}

// openCore opens the native library with the configured overrides.
func openCore(cfg *config.Config, log *logging.Logger) (*telldus.Core, error) {
	opts := []telldus.Option{telldus.WithLogger(log)}
	if cfg.Telldus.Library != "" {
		opts = append(opts, telldus.WithModule(cfg.Telldus.Library))
	}
	return telldus.New(opts...)
}

// logDeviceSummary logs what the native service currently knows about.
// Failures here are informational only; the service may simply be empty.
func logDeviceSummary(core *telldus.Core, log *logging.Logger) {
	devices, err := core.Devices()
	if err != nil {
		log.Warn("listing devices", "error", err)
		return
	}
	sensors, err := core.Sensors()
	if err != nil {
		log.Warn("listing sensors", "error", err)
		return
	}
	log.Info("telldus-core loaded", "devices", len(devices), "sensors", len(sensors))
}

// deviceEventRecorder persists device state changes to the history store
// and mirrors them to InfluxDB when enabled.
func deviceEventRecorder(store *history.Store, influxClient *influxdb.Client, log *logging.Logger) func(int, tellcore.Method, string) {
	return func(deviceID int, method tellcore.Method, data string) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := store.InsertDeviceEvent(ctx, history.DeviceEvent{
			DeviceID:   deviceID,
			Method:     method,
			Data:       data,
			RecordedAt: time.Now().UTC(),
		})
		if err != nil {
			log.Error("recording device event", "device_id", deviceID, "error", err)
		}

		if influxClient != nil {
			value := 0.0
			switch method {
			case tellcore.MethodTurnOn:
				value = 1
			case tellcore.MethodDim:
				if level, parseErr := parseLevel(data); parseErr == nil {
					value = level
				}
			}
			influxClient.WriteDeviceEvent(deviceID, methodLabel(method), value)
		}
	}
}

// parseLevel parses a dim level carried as event data.
func parseLevel(data string) (float64, error) {
	var level float64
	_, err := fmt.Sscanf(data, "%g", &level)
	return level, err
}

// methodLabel names a method for the InfluxDB tag.
func methodLabel(m tellcore.Method) string {
	switch m {
	case tellcore.MethodTurnOn:
		return "turnon"
	case tellcore.MethodTurnOff:
		return "turnoff"
	case tellcore.MethodBell:
		return "bell"
	case tellcore.MethodDim:
		return "dim"
	case tellcore.MethodLearn:
		return "learn"
	case tellcore.MethodExecute:
		return "execute"
	case tellcore.MethodUp:
		return "up"
	case tellcore.MethodDown:
		return "down"
	case tellcore.MethodStop:
		return "stop"
	default:
		return "unknown"
	}
}

// getConfigPath returns the configuration file path.
// Uses TELLSTICK_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("TELLSTICK_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
// mqttClient and influxClient may be nil when disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
