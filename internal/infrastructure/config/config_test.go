package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
device:
  hardware_id: "AA:BB:CC:DD:EE:FF"
backend:
  base_url: "https://api.example.com"
  request_timeout: 8s
lifecycle:
  state_refresh_interval: 2m
database:
  path: "/tmp/test.db"
mqtt:
  enabled: true
  broker:
    host: "broker.local"
display:
  renderer: mqtt
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Device.HardwareID != "AA:BB:CC:DD:EE:FF" {
		t.Errorf("Device.HardwareID = %q, want %q", cfg.Device.HardwareID, "AA:BB:CC:DD:EE:FF")
	}
	if cfg.Backend.RequestTimeout != 8*time.Second {
		t.Errorf("Backend.RequestTimeout = %v, want 8s", cfg.Backend.RequestTimeout)
	}
	if cfg.Lifecycle.StateRefresh != 2*time.Minute {
		t.Errorf("Lifecycle.StateRefresh = %v, want 2m", cfg.Lifecycle.StateRefresh)
	}
	if cfg.MQTT.Broker.Host != "broker.local" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "broker.local")
	}

	// Untouched values keep their defaults.
	if cfg.Lifecycle.WiFiConnectTimeout != 20*time.Second {
		t.Errorf("WiFiConnectTimeout = %v, want 20s", cfg.Lifecycle.WiFiConnectTimeout)
	}
	if cfg.Inputs.Debounce != 50*time.Millisecond {
		t.Errorf("Inputs.Debounce = %v, want 50ms", cfg.Inputs.Debounce)
	}
	if cfg.Backend.StatePath != "/devices/state" {
		t.Errorf("Backend.StatePath = %q, want /devices/state", cfg.Backend.StatePath)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
backend:
  base_url: "not a url"
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Fatal("Load() expected validation error for bad base_url, got nil")
	}
	if !strings.Contains(err.Error(), "backend.base_url") {
		t.Errorf("error = %v, want mention of backend.base_url", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ZENDISPLAY_BACKEND_URL", "https://override.example.com")
	t.Setenv("ZENDISPLAY_DATABASE_PATH", "/var/lib/zen/prefs.db")
	t.Setenv("ZENDISPLAY_HARDWARE_ID", "11:22:33:44:55:66")
	t.Setenv("ZENDISPLAY_INFLUXDB_TOKEN", "secret-token")

	cfg, err := Load(writeConfig(t, "logging:\n  level: debug\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Backend.BaseURL != "https://override.example.com" {
		t.Errorf("Backend.BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Database.Path != "/var/lib/zen/prefs.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Device.HardwareID != "11:22:33:44:55:66" {
		t.Errorf("Device.HardwareID = %q", cfg.Device.HardwareID)
	}
	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q", cfg.InfluxDB.Token)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing firmware version",
			mutate:  func(c *Config) { c.Device.FirmwareVersion = "" },
			wantErr: true,
		},
		{
			name:    "misspelled timezone",
			mutate:  func(c *Config) { c.Device.Timezone = "Europe/Berln" },
			wantErr: true,
		},
		{
			name:    "iana timezone",
			mutate:  func(c *Config) { c.Device.Timezone = "Europe/Berlin" },
			wantErr: false,
		},
		{
			name:    "zero link check",
			mutate:  func(c *Config) { c.Lifecycle.WiFiLinkCheck = 0 },
			wantErr: true,
		},
		{
			name:    "relative backend url",
			mutate:  func(c *Config) { c.Backend.BaseURL = "/devices" },
			wantErr: true,
		},
		{
			name:    "zero connect timeout",
			mutate:  func(c *Config) { c.Lifecycle.WiFiConnectTimeout = 0 },
			wantErr: true,
		},
		{
			name:    "mqtt renderer without mqtt",
			mutate:  func(c *Config) { c.Display.Renderer = "mqtt" },
			wantErr: true,
		},
		{
			name: "mqtt renderer with mqtt",
			mutate: func(c *Config) {
				c.Display.Renderer = "mqtt"
				c.MQTT.Enabled = true
			},
			wantErr: false,
		},
		{
			name:    "unknown renderer",
			mutate:  func(c *Config) { c.Display.Renderer = "svg" },
			wantErr: true,
		},
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: true,
		},
		{
			name:    "invalid QoS",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name: "api port out of range",
			mutate: func(c *Config) {
				c.API.Enabled = true
				c.API.Port = 70000
			},
			wantErr: true,
		},
		{
			name:    "influx enabled without url",
			mutate:  func(c *Config) { c.InfluxDB.Enabled = true },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Timeouts(t *testing.T) {
	cfg := Default()
	cfg.API.Timeouts = APITimeoutConfig{Read: 5, Write: 7, Idle: 30}

	if got := cfg.GetReadTimeout(); got != 5*time.Second {
		t.Errorf("GetReadTimeout() = %v, want 5s", got)
	}
	if got := cfg.GetWriteTimeout(); got != 7*time.Second {
		t.Errorf("GetWriteTimeout() = %v, want 7s", got)
	}
	if got := cfg.GetIdleTimeout(); got != 30*time.Second {
		t.Errorf("GetIdleTimeout() = %v, want 30s", got)
	}
}
