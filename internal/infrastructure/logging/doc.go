// Package logging provides structured logging for the Zen Display controller.
//
// It wraps log/slog so every component logs with the same shape:
// JSON in the field, text on a developer bench, and service/version
// attributes on every entry.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, cfg.Device.FirmwareVersion)
//	logger.Info("joined network", "ssid", ssid)
//
// # Security
//
// WiFi passwords and device secrets are never logged. Log the device id
// instead of the secret when correlating backend calls.
package logging
