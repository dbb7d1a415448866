package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nerrad567/zen-display/internal/clock"
)

// Config is the root configuration structure for the Zen Display controller.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Device    DeviceConfig    `yaml:"device"`
	Backend   BackendConfig   `yaml:"backend"`
	Lifecycle LifecycleConfig `yaml:"lifecycle"`
	Network   NetworkConfig   `yaml:"network"`
	TimeSync  TimeSyncConfig  `yaml:"timesync"`
	Inputs    InputsConfig    `yaml:"inputs"`
	Display   DisplayConfig   `yaml:"display"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	API       APIConfig       `yaml:"api"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DeviceConfig identifies this display to the backend.
type DeviceConfig struct {
	// HardwareID overrides MAC detection. Leave empty on real hardware.
	HardwareID      string `yaml:"hardware_id"`
	FirmwareVersion string `yaml:"firmware_version"`
	// NamePrefix is combined with the low hardware id bits to form the
	// default advertised name, e.g. "ZenDisplay-1A2B".
	NamePrefix string `yaml:"name_prefix"`
	// Timezone is the zone every calendar comparison and clock string uses.
	Timezone string `yaml:"timezone"`
}

// BackendConfig contains the remote service settings.
type BackendConfig struct {
	BaseURL        string        `yaml:"base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	RegisterPath   string        `yaml:"register_path"`
	StatePath      string        `yaml:"state_path"`
	HeartbeatPath  string        `yaml:"heartbeat_path"`
}

// LifecycleConfig holds the loop cadence.
type LifecycleConfig struct {
	Tick                time.Duration `yaml:"tick"`
	WiFiConnectTimeout  time.Duration `yaml:"wifi_connect_timeout"`
	WiFiPollInterval    time.Duration `yaml:"wifi_poll_interval"`
	WiFiLinkCheck       time.Duration `yaml:"wifi_link_check"`
	StateRefresh        time.Duration `yaml:"state_refresh_interval"`
	Heartbeat           time.Duration `yaml:"heartbeat_interval"`
	ProvisioningRefresh time.Duration `yaml:"provisioning_refresh"`
	MinuteCheck         time.Duration `yaml:"minute_check"`
	OfflineDelay        time.Duration `yaml:"offline_delay"`
	RetryDelay          time.Duration `yaml:"retry_delay"`
}

// NetworkConfig configures the WiFi link driver.
type NetworkConfig struct {
	Interface string `yaml:"interface"`
	NMCLIPath string `yaml:"nmcli_path"`
}

// TimeSyncConfig lists NTP servers queried after each successful join.
type TimeSyncConfig struct {
	Servers []string      `yaml:"servers"`
	Timeout time.Duration `yaml:"timeout"`
}

// InputsConfig maps the two physical buttons to GPIO value files.
type InputsConfig struct {
	ModePin   string        `yaml:"mode_pin"`
	ResetPin  string        `yaml:"reset_pin"`
	ActiveLow bool          `yaml:"active_low"`
	Debounce  time.Duration `yaml:"debounce"`
}

// DisplayConfig selects how frames reach the panel driver.
type DisplayConfig struct {
	// Renderer is "mqtt" or "log".
	Renderer string `yaml:"renderer"`
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

// MQTTReconnectConfig contains MQTT reconnection settings, in seconds.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// APIConfig contains the local HTTP API settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: ZENDISPLAY_SECTION_KEY
// For example: ZENDISPLAY_DATABASE_PATH, ZENDISPLAY_BACKEND_URL
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := Default()

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

// Default returns a Config populated with the device defaults.
func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			FirmwareVersion: "0.2.0",
			NamePrefix:      "ZenDisplay",
			Timezone:        "CET",
		},
		Backend: BackendConfig{
			BaseURL:        "http://localhost:8000",
			RequestTimeout: 15 * time.Second,
			RegisterPath:   "/devices/register",
			StatePath:      "/devices/state",
			HeartbeatPath:  "/devices/heartbeat",
		},
		Lifecycle: LifecycleConfig{
			Tick:                20 * time.Millisecond,
			WiFiConnectTimeout:  20 * time.Second,
			WiFiPollInterval:    250 * time.Millisecond,
			WiFiLinkCheck:       2 * time.Second,
			StateRefresh:        60 * time.Second,
			Heartbeat:           30 * time.Second,
			ProvisioningRefresh: 60 * time.Second,
			MinuteCheck:         time.Second,
			OfflineDelay:        200 * time.Millisecond,
			RetryDelay:          500 * time.Millisecond,
		},
		Network: NetworkConfig{
			Interface: "wlan0",
			NMCLIPath: "nmcli",
		},
		TimeSync: TimeSyncConfig{
			Servers: []string{"pool.ntp.org", "time.nist.gov"},
			Timeout: 5 * time.Second,
		},
		Inputs: InputsConfig{
			Debounce: 50 * time.Millisecond,
		},
		Display: DisplayConfig{
			Renderer: "log",
		},
		Database: DatabaseConfig{
			Path:        "./data/zendisplay.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "zendisplay",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		InfluxDB: InfluxDBConfig{
			Org:           "zen",
			Bucket:        "display",
			BatchSize:     50,
			FlushInterval: 10,
		},
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8088,
			Timeouts: APITimeoutConfig{
				Read:  10,
				Write: 10,
				Idle:  60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: ZENDISPLAY_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Device
	if v := os.Getenv("ZENDISPLAY_HARDWARE_ID"); v != "" {
		cfg.Device.HardwareID = v
	}

	// Backend
	if v := os.Getenv("ZENDISPLAY_BACKEND_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}

	// Database
	if v := os.Getenv("ZENDISPLAY_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("ZENDISPLAY_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("ZENDISPLAY_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("ZENDISPLAY_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("ZENDISPLAY_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Device.FirmwareVersion == "" {
		errs = append(errs, "device.firmware_version is required")
	}
	if c.Device.Timezone == "" {
		errs = append(errs, "device.timezone is required")
	} else if _, err := clock.LoadZone(c.Device.Timezone); err != nil {
		errs = append(errs, fmt.Sprintf("device.timezone %q is not a known zone", c.Device.Timezone))
	}

	if u, err := url.Parse(c.Backend.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, "backend.base_url must be an absolute URL")
	}
	if c.Backend.RequestTimeout <= 0 {
		errs = append(errs, "backend.request_timeout must be positive")
	}

	if c.Lifecycle.Tick <= 0 {
		errs = append(errs, "lifecycle.tick must be positive")
	}
	if c.Lifecycle.WiFiConnectTimeout <= 0 {
		errs = append(errs, "lifecycle.wifi_connect_timeout must be positive")
	}
	if c.Lifecycle.WiFiPollInterval <= 0 {
		errs = append(errs, "lifecycle.wifi_poll_interval must be positive")
	}
	if c.Lifecycle.WiFiLinkCheck <= 0 {
		errs = append(errs, "lifecycle.wifi_link_check must be positive")
	}
	if c.Lifecycle.StateRefresh <= 0 || c.Lifecycle.Heartbeat <= 0 {
		errs = append(errs, "lifecycle state and heartbeat intervals must be positive")
	}

	if c.Inputs.Debounce < 0 {
		errs = append(errs, "inputs.debounce must not be negative")
	}

	switch c.Display.Renderer {
	case "log":
	case "mqtt":
		if !c.MQTT.Enabled {
			errs = append(errs, "display.renderer mqtt requires mqtt.enabled")
		}
	default:
		errs = append(errs, "display.renderer must be mqtt or log")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
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
