package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/nerrad567/zen-display/internal/clock"
	"github.com/nerrad567/zen-display/internal/connectivity"
	"github.com/nerrad567/zen-display/internal/device"
	"github.com/nerrad567/zen-display/internal/identity"
	"github.com/nerrad567/zen-display/internal/provisioning"
	"github.com/nerrad567/zen-display/internal/syncengine"
)

// IdentityStore persists what registration returns.
type IdentityStore interface {
	Save(ctx context.Context, id identity.Identity) error
	SaveFirmware(ctx context.Context, version string) error
}

// Slots is the outbound half of the provisioning channel.
type Slots interface {
	PublishPairing(id identity.Identity)
	PublishStatus(s provisioning.Status)
	Rename(name string)
}

// Logger defines the logging interface for the session.
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

// Session applies backend calls to the device state: it persists
// registrations, feeds fetched state through the sync engine and keeps the
// provisioning status current. Every method requires a connected link.
type Session struct {
	client *Client
	store  IdentityStore
	engine *syncengine.Engine
	slots  Slots
	clock  clock.Clock
	logger Logger
}

func NewSession(client *Client, store IdentityStore, engine *syncengine.Engine, slots Slots, clk clock.Clock) *Session {
	return &Session{
		client: client,
		store:  store,
		engine: engine,
		slots:  slots,
		clock:  clk,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the session.
func (s *Session) SetLogger(logger Logger) {
	s.logger = logger
}

// Register makes sure the device holds backend credentials.
//
// A device that already has an id and secret is never re-registered: no
// request is sent and the current pairing is republished. Otherwise the
// new identity is persisted, the sync cache is dropped so the next fetch
// redraws, and "registered" is published. A failed request or a failed
// save leaves st untouched, so the next tick registers again.
func (s *Session) Register(ctx context.Context, st *device.State) error {
	if !st.Online() {
		return ErrNotConnected
	}
	if st.Registered() {
		s.logger.Debug("device already registered, using stored credentials", "device_id", st.Identity.DeviceID)
		s.slots.PublishPairing(st.Identity)
		s.slots.PublishStatus(provisioning.StatusRegistered)
		return nil
	}

	s.logger.Info("registering device", "hardware_id", st.HardwareID)
	reg, err := s.client.Register(ctx, st.HardwareID)
	if err != nil {
		return err
	}

	id := identity.Identity{
		DeviceID:     reg.DeviceID,
		DeviceSecret: reg.DeviceSecret,
		PairingToken: reg.PairingToken,
		DisplayName:  st.Identity.DisplayName,
	}
	renamed := reg.BluetoothName != "" && reg.BluetoothName != id.DisplayName
	if reg.BluetoothName != "" {
		id.DisplayName = reg.BluetoothName
	}

	if err := s.store.Save(ctx, id); err != nil {
		return fmt.Errorf("persisting registration: %w", err)
	}
	if err := s.store.SaveFirmware(ctx, st.FirmwareVersion); err != nil {
		s.logger.Error("persisting firmware marker", "error", err)
	}

	st.Identity = id
	st.StateReady = false
	s.engine.Reset()

	if renamed {
		s.slots.Rename(id.DisplayName)
	}
	s.slots.PublishPairing(id)
	s.slots.PublishStatus(provisioning.StatusRegistered)
	s.logger.Info("device registered", "device_id", id.DeviceID, "display_name", id.DisplayName)
	return nil
}

// FetchState pulls the latest calendar and email state and stores the
// resulting snapshot in st.
//
// 409 publishes "waiting_for_claim", clears StateReady and returns
// ErrUnclaimed. Any other failure returns an error and leaves st alone,
// so the last good snapshot stays on screen.
func (s *Session) FetchState(ctx context.Context, st *device.State) (syncengine.Result, error) {
	if !st.Online() {
		return syncengine.Result{}, ErrNotConnected
	}
	if !st.Registered() {
		return syncengine.Result{}, ErrNotRegistered
	}

	raw, err := s.client.FetchState(ctx, st.Identity)
	if errors.Is(err, ErrUnclaimed) {
		s.logger.Info("device waiting to be claimed", "device_id", st.Identity.DeviceID)
		st.StateReady = false
		s.slots.PublishStatus(provisioning.StatusWaitingForClaim)
		return syncengine.Result{}, err
	}
	if err != nil {
		s.logger.Warn("state fetch failed", "error", err)
		return syncengine.Result{}, err
	}

	res := s.engine.Apply(raw, s.clock.Now(), s.clock.Synced(), st.Snapshot)
	st.Snapshot = res.Snapshot
	st.StateReady = true
	s.slots.PublishStatus(provisioning.StatusReady)

	s.logger.Debug("state fetched",
		"calendar_entries", len(res.Snapshot.Calendar),
		"email_senders", len(res.Snapshot.Email.Senders),
		"changed", res.Changed,
	)
	return res, nil
}

// MarkDrawn records that the snapshot in res reached the panel, so the
// same content fetched later is reported unchanged.
func (s *Session) MarkDrawn(res syncengine.Result) {
	s.engine.Commit(res.Snapshot.Fingerprint)
}

// Heartbeat reports link quality. Failures are logged and returned for
// telemetry only; the control loop ignores them.
func (s *Session) Heartbeat(ctx context.Context, st *device.State, q connectivity.Quality, qualityErr error) error {
	if !st.Online() {
		return ErrNotConnected
	}

	body := HeartbeatRequest{WiFiSSID: st.WiFi.SSID}
	if qualityErr == nil {
		if q.SSID != "" {
			body.WiFiSSID = q.SSID
		}
		rssi := q.RSSI
		body.WiFiRSSI = &rssi
	}

	if err := s.client.Heartbeat(ctx, st.Identity, body); err != nil {
		s.logger.Debug("heartbeat failed", "error", err)
		return err
	}
	return nil
}
