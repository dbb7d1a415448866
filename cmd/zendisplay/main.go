// Zen Display controller.
//
// This is the entry point for the e-ink display's lifecycle controller. It
// wires persistent preferences, the provisioning transports, the WiFi
// link, the backend session and the panel renderer, then hands control to
// the lifecycle loop until a shutdown signal or a factory reset.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nerrad567/zen-display/internal/api"
	"github.com/nerrad567/zen-display/internal/backend"
	"github.com/nerrad567/zen-display/internal/clock"
	"github.com/nerrad567/zen-display/internal/connectivity"
	"github.com/nerrad567/zen-display/internal/device"
	"github.com/nerrad567/zen-display/internal/display"
	"github.com/nerrad567/zen-display/internal/identity"
	"github.com/nerrad567/zen-display/internal/infrastructure/config"
	"github.com/nerrad567/zen-display/internal/infrastructure/database"
	"github.com/nerrad567/zen-display/internal/infrastructure/influxdb"
	"github.com/nerrad567/zen-display/internal/infrastructure/logging"
	"github.com/nerrad567/zen-display/internal/infrastructure/mqtt"
	"github.com/nerrad567/zen-display/internal/input"
	"github.com/nerrad567/zen-display/internal/lifecycle"
	"github.com/nerrad567/zen-display/internal/prefs"
	"github.com/nerrad567/zen-display/internal/process"
	"github.com/nerrad567/zen-display/internal/provisioning"
	"github.com/nerrad567/zen-display/internal/reset"
	"github.com/nerrad567/zen-display/internal/syncengine"
	"github.com/nerrad567/zen-display/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	defaultConfigPath = "configs/config.yaml"

	// nmcliTimeout bounds one nmcli invocation. Joins use --wait 0, so
	// only rescans come close.
	nmcliTimeout = 10 * time.Second
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := run(ctx)
	cancel()

	if errors.Is(err, reset.ErrRestartRequested) {
		if execErr := restart(); execErr != nil {
			fmt.Fprintf(os.Stderr, "Error: restarting after factory reset: %v\n", execErr)
			os.Exit(1)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Returns:
//   - error: nil on clean shutdown, reset.ErrRestartRequested after a
//     factory reset, or an error describing a startup failure
func run(ctx context.Context) error { //nolint:gocognit,gocyclo // linear wiring of optional components
	log := logging.Default()
	log.Info("starting Zen Display controller",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, cfg.Device.FirmwareVersion)
	log.Info("configuration loaded", "path", configPath, "level", cfg.Logging.Level)

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	if migrateErr := db.Migrate(ctx, migrations.Source()); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	store := prefs.NewSQLiteStore(db, prefs.Namespace)

	hardwareID, err := identity.DetectHardwareID(ctx, cfg.Device.HardwareID, cfg.Network.Interface, net.Interfaces, store)
	if err != nil {
		return fmt.Errorf("detecting hardware id: %w", err)
	}
	log = log.With("hardware_id", hardwareID)
	log.Info("hardware identified")

	loc, err := clock.LoadZone(cfg.Device.Timezone)
	if err != nil {
		return err
	}
	clk := clock.NewSystem(loc)

	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(ctx, cfg.MQTT, hardwareID)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log.With("component", "mqtt"))
		mqttClient.SetOnConnect(func() { log.Info("MQTT reconnected") })
		mqttClient.SetOnDisconnect(func(err error) { log.Warn("MQTT disconnected", "error", err) })
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		)
	} else {
		log.Info("MQTT disabled")
	}

	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(ctx, cfg.InfluxDB, hardwareID)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	} else {
		log.Info("InfluxDB disabled")
	}

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	// Provisioning
	var transports []provisioning.Transport
	if mqttClient != nil {
		transports = append(transports, provisioning.NewMQTTTransport(mqttClient, byte(cfg.MQTT.QoS)))
	}
	channel := provisioning.NewChannel(transports...)
	channel.SetLogger(log.With("component", "provisioning"))
	defer func() {
		if closeErr := channel.Close(); closeErr != nil {
			log.Warn("error closing provisioning transports", "error", closeErr)
		}
	}()

	ids := identity.NewStore(store)

	// Network
	nmcli := process.NewRunner(process.Config{
		Name:    "nmcli",
		Binary:  cfg.Network.NMCLIPath,
		Timeout: nmcliTimeout,
	})
	nmcli.SetLogger(log.With("component", "nmcli"))
	network := connectivity.NewManager(
		connectivity.NewNMCLILink(nmcli, cfg.Network.Interface),
		clk, clk,
		connectivity.NewNTPSyncer(cfg.TimeSync.Servers, cfg.TimeSync.Timeout),
		ids, channel,
		connectivity.Options{
			ConnectTimeout: cfg.Lifecycle.WiFiConnectTimeout,
			PollInterval:   cfg.Lifecycle.WiFiPollInterval,
			LinkCheck:      cfg.Lifecycle.WiFiLinkCheck,
			Zone:           loc,
		},
	)
	network.SetLogger(log.With("component", "network"))

	// Backend
	client := backend.NewClient(backend.Options{
		BaseURL:       cfg.Backend.BaseURL,
		Timeout:       cfg.Backend.RequestTimeout,
		RegisterPath:  cfg.Backend.RegisterPath,
		StatePath:     cfg.Backend.StatePath,
		HeartbeatPath: cfg.Backend.HeartbeatPath,
		Firmware:      cfg.Device.FirmwareVersion,
	}, &http.Client{Timeout: cfg.Backend.RequestTimeout})
	session := backend.NewSession(client, ids, syncengine.NewEngine(), channel, clk)
	session.SetLogger(log.With("component", "backend"))

	// Display
	var renderer display.Renderer
	switch cfg.Display.Renderer {
	case "mqtt":
		renderer = display.NewMQTTRenderer(mqttClient)
	default:
		renderer = display.NewLogRenderer(log.With("component", "panel"))
	}
	panel := display.NewController(renderer, clk, display.Options{
		ProvisioningRefresh: cfg.Lifecycle.ProvisioningRefresh,
		MinuteCheck:         cfg.Lifecycle.MinuteCheck,
	})
	panel.SetLogger(log.With("component", "display"))
	if influxClient != nil {
		panel.SetRecorder(influxClient)
	}

	// Inputs
	modeButton := input.NewButton(pinFor(cfg.Inputs.ModePin, cfg.Inputs.ActiveLow), clk, cfg.Inputs.Debounce)
	resetButton := input.NewButton(pinFor(cfg.Inputs.ResetPin, cfg.Inputs.ActiveLow), clk, cfg.Inputs.Debounce)
	resetter := reset.NewController(resetButton, ids, channel, cfg.Device.NamePrefix)
	resetter.SetLogger(log.With("component", "reset"))

	deps := lifecycle.Deps{
		Clock:      clk,
		Identity:   ids,
		Channel:    channel,
		Network:    network,
		Backend:    session,
		Display:    panel,
		ModeButton: modeButton,
		Reset:      resetter,
	}
	if influxClient != nil {
		deps.Telemetry = influxClient
	}

	st := device.New(hardwareID, cfg.Device.FirmwareVersion, "")
	orch := lifecycle.New(st, deps, lifecycle.Options{
		Tick:         cfg.Lifecycle.Tick,
		OfflineDelay: cfg.Lifecycle.OfflineDelay,
		RetryDelay:   cfg.Lifecycle.RetryDelay,
		StateRefresh: cfg.Lifecycle.StateRefresh,
		Heartbeat:    cfg.Lifecycle.Heartbeat,
		NamePrefix:   cfg.Device.NamePrefix,
	})
	orch.SetLogger(log.With("component", "lifecycle"))

	if cfg.API.Enabled {
		srv, apiErr := api.New(api.Deps{
			Config:       cfg.API,
			Logger:       log.With("component", "api"),
			Status:       orch,
			Provisioning: channel,
			Version:      version,
		})
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		channel.AddNotifier(srv.Hub())
		if startErr := srv.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		defer func() {
			if closeErr := srv.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	}

	log.Info("initialisation complete, entering lifecycle loop")
	err = orch.Run(ctx)
	if errors.Is(err, reset.ErrRestartRequested) {
		log.Warn("factory reset complete, restarting")
		return err
	}
	if err != nil {
		return fmt.Errorf("lifecycle: %w", err)
	}

	log.Info("Zen Display controller stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses ZENDISPLAY_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("ZENDISPLAY_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// pinFor maps an empty GPIO path to a button that is never pressed.
func pinFor(path string, activeLow bool) input.Pin {
	if path == "" {
		return input.NoPin{}
	}
	return input.FilePin{Path: path, ActiveLow: activeLow}
}

// healthCheck verifies the infrastructure connections that are enabled.
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

// restart replaces the process with a fresh copy of itself, the way the
// device reboots after a factory reset.
func restart() error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	return syscall.Exec(exe, os.Args, os.Environ()) //nolint:gosec // re-executing our own binary
}
