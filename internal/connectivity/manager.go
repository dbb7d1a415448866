package connectivity

import (
	"context"
	"time"

	"github.com/nerrad567/zen-display/internal/clock"
	"github.com/nerrad567/zen-display/internal/device"
	"github.com/nerrad567/zen-display/internal/identity"
	"github.com/nerrad567/zen-display/internal/provisioning"
)

// plausibleYear is the earliest year a free-running clock is trusted
// without an NTP answer.
const plausibleYear = 2024

// Options configure a Manager.
type Options struct {
	ConnectTimeout time.Duration
	PollInterval   time.Duration
	// LinkCheck is how often Ensure probes a link it believes is up.
	// Between probes the recorded connection state is trusted.
	LinkCheck time.Duration
	// Zone is applied to the clock after every successful connect.
	Zone *time.Location
}

// StatusPublisher receives provisioning status tokens.
type StatusPublisher interface {
	PublishStatus(s provisioning.Status)
}

// WiFiStore persists credentials that produced a connection.
type WiFiStore interface {
	SaveWiFi(ctx context.Context, creds identity.WiFiCredentials) error
}

// Logger defines the logging interface for the manager.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Manager establishes and maintains the WiFi link. It has no retry
// backoff: the control loop calls Ensure again on its next tick.
type Manager struct {
	link   Link
	clock  clock.Clock
	setter clock.Setter
	ntp    TimeSyncer
	store  WiFiStore
	status StatusPublisher
	opts   Options
	logger Logger

	linkCheck *clock.Interval
}

// NewManager wires a manager. setter adjusts clk after a time sync and is
// usually the same value.
func NewManager(link Link, clk clock.Clock, setter clock.Setter, ntp TimeSyncer, store WiFiStore, status StatusPublisher, opts Options) *Manager {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 20 * time.Second
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 250 * time.Millisecond
	}
	if opts.LinkCheck <= 0 {
		opts.LinkCheck = 2 * time.Second
	}
	return &Manager{
		link:      link,
		clock:     clk,
		setter:    setter,
		ntp:       ntp,
		store:     store,
		status:    status,
		opts:      opts,
		logger:    noopLogger{},
		linkCheck: clock.NewInterval(opts.LinkCheck),
	}
}

// SetLogger sets the logger for the manager.
func (m *Manager) SetLogger(logger Logger) {
	m.logger = logger
}

// Connect joins the network in creds and waits up to the connect timeout
// for the link to come up.
//
// On success the credentials are persisted and copied into st, the clock
// is synced and zoned, and "wifi_connected" is published. On failure
// "wifi_failed" is published and nothing is persisted. An empty SSID is
// not attempted and publishes nothing.
func (m *Manager) Connect(ctx context.Context, st *device.State, creds identity.WiFiCredentials) device.Connection {
	st.Connection = device.Disconnected
	if creds.SSID == "" {
		m.logger.Debug("wifi connect skipped: empty ssid")
		return st.Connection
	}

	m.logger.Info("connecting to wifi", "ssid", creds.SSID)
	if !m.join(ctx, creds) {
		m.logger.Warn("wifi connection failed", "ssid", creds.SSID)
		m.status.PublishStatus(provisioning.StatusWiFiFailed)
		return st.Connection
	}

	st.Connection = device.Connected
	st.WiFi = creds
	m.linkCheck.Mark(m.clock.Elapsed())
	if err := m.store.SaveWiFi(ctx, creds); err != nil {
		m.logger.Error("persisting wifi credentials", "error", err)
	}

	m.syncTime(ctx)
	m.logger.Info("wifi connected", "ssid", creds.SSID)
	m.status.PublishStatus(provisioning.StatusWiFiConnected)
	return st.Connection
}

// Ensure keeps the link up: Connected if it already is, otherwise one
// reconnect attempt with the stored credentials. A connected link is
// probed at most once per LinkCheck.
func (m *Manager) Ensure(ctx context.Context, st *device.State) device.Connection {
	if st.Connection == device.Connected {
		now := m.clock.Elapsed()
		if !m.linkCheck.Due(now) {
			return st.Connection
		}
		m.linkCheck.Mark(now)
		if m.link.Connected(ctx) {
			return st.Connection
		}
		m.logger.Warn("wifi link lost", "ssid", st.WiFi.SSID)
	}
	st.Connection = device.Disconnected
	if st.WiFi.SSID == "" {
		return st.Connection
	}
	return m.Connect(ctx, st, st.WiFi)
}

// Quality reports the active network for heartbeats.
func (m *Manager) Quality(ctx context.Context) (Quality, error) {
	return m.link.Quality(ctx)
}

func (m *Manager) join(ctx context.Context, creds identity.WiFiCredentials) bool {
	if err := m.link.Join(ctx, creds.SSID, creds.Password); err != nil {
		m.logger.Warn("wifi join rejected", "ssid", creds.SSID, "error", err)
		return false
	}

	deadline := m.clock.Elapsed() + m.opts.ConnectTimeout
	for !m.link.Connected(ctx) {
		if m.clock.Elapsed() >= deadline {
			return false
		}
		if err := m.clock.Sleep(ctx, m.opts.PollInterval); err != nil {
			return false
		}
	}
	return true
}

func (m *Manager) syncTime(ctx context.Context) {
	m.setter.SetLocation(m.opts.Zone)

	offset, err := m.ntp.Offset(ctx)
	if err != nil {
		if m.clock.Now().Year() < plausibleYear {
			m.logger.Warn("time sync failed, clock left unsynced", "error", err)
			return
		}
		m.logger.Warn("time sync failed, trusting local clock", "error", err)
		offset = 0
	}
	m.setter.SetOffset(offset)
	m.logger.Debug("clock synced", "offset", offset)
}
