package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/zen-display/internal/reset"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("ZENDISPLAY_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

func TestRun_InvalidRenderer(t *testing.T) {
	t.Setenv("ZENDISPLAY_CONFIG", writeConfig(t, `
display:
  renderer: mqtt
mqtt:
  enabled: false
database:
  path: "`+filepath.Join(t.TempDir(), "prefs.db")+`"
`))

	if err := run(context.Background()); err == nil {
		t.Fatal("run() should reject the mqtt renderer without mqtt")
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("ZENDISPLAY_CONFIG", "")
	if got := getConfigPath(); got != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
	}

	t.Setenv("ZENDISPLAY_CONFIG", "/custom/path/config.yaml")
	if got := getConfigPath(); got != "/custom/path/config.yaml" {
		t.Errorf("getConfigPath() = %q", got)
	}
}

func TestPinFor(t *testing.T) {
	pressed, err := pinFor("", true).Read(context.Background())
	if err != nil || pressed {
		t.Errorf("unwired pin read = %v, %v", pressed, err)
	}

	path := filepath.Join(t.TempDir(), "value")
	if err := os.WriteFile(path, []byte("0\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	pressed, err = pinFor(path, true).Read(context.Background())
	if err != nil || !pressed {
		t.Errorf("active-low pin at 0 = %v, %v", pressed, err)
	}
}

// TestRun_OfflineStartupAndShutdown boots with no stored network, no
// broker and the log renderer, then stops on context cancel.
func TestRun_OfflineStartupAndShutdown(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ZENDISPLAY_CONFIG", writeConfig(t, `
device:
  hardware_id: "aa:bb:cc:dd:ee:ff"
backend:
  base_url: "http://127.0.0.1:1"
network:
  nmcli_path: "/bin/false"
timesync:
  servers: []
display:
  renderer: log
database:
  path: "`+filepath.Join(dir, "prefs.db")+`"
logging:
  level: error
  format: text
  output: stderr
api:
  enabled: false
`))

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := run(ctx)
	if errors.Is(err, reset.ErrRestartRequested) {
		t.Fatal("unexpected factory reset")
	}
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "prefs.db")); err != nil {
		t.Errorf("database not created: %v", err)
	}
}
