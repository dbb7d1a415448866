package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/zen-display/internal/backend"
	"github.com/nerrad567/zen-display/internal/clock"
	"github.com/nerrad567/zen-display/internal/connectivity"
	"github.com/nerrad567/zen-display/internal/device"
	"github.com/nerrad567/zen-display/internal/display"
	"github.com/nerrad567/zen-display/internal/identity"
	"github.com/nerrad567/zen-display/internal/provisioning"
	"github.com/nerrad567/zen-display/internal/reset"
)

// Fetch outcomes reported to telemetry.
const (
	OutcomeOK        = "ok"
	OutcomeUnclaimed = "unclaimed"
	OutcomeError     = "error"
)

// Button reports completed presses. input.Button implements it.
type Button interface {
	Pressed(ctx context.Context) (bool, error)
}

// Telemetry receives link and sync measurements. influxdb.Client
// implements it.
type Telemetry interface {
	WriteLinkQuality(ssid string, rssi int)
	WriteSyncResult(outcome string, entries int, changed bool)
}

// Logger defines the logging interface for the orchestrator.
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

// Deps are the components the orchestrator drives.
type Deps struct {
	Clock      clock.Clock
	Identity   *identity.Store
	Channel    *provisioning.Channel
	Network    *connectivity.Manager
	Backend    *backend.Session
	Display    *display.Controller
	ModeButton Button
	Reset      *reset.Controller

	// Telemetry is optional.
	Telemetry Telemetry
}

// Options are the loop timings.
type Options struct {
	// Tick is the delay between iterations once content is showing.
	Tick time.Duration
	// OfflineDelay is used while the link is down.
	OfflineDelay time.Duration
	// RetryDelay is used while registration or the first fetch is pending.
	RetryDelay   time.Duration
	StateRefresh time.Duration
	Heartbeat    time.Duration
	NamePrefix   string
}

// Orchestrator runs the device lifecycle: provisioning, connection,
// registration, periodic sync and input handling, one tick at a time.
//
// Thread Safety:
//   - Boot, Tick and Run must be called from a single goroutine.
//   - Status is safe for concurrent use.
type Orchestrator struct {
	deps   Deps
	opts   Options
	st     *device.State
	logger Logger

	// confirmed is set once registration has been checked (or done) since
	// boot or the last credential change.
	confirmed  bool
	stateFetch *clock.Interval
	heartbeat  *clock.Interval

	mu     sync.RWMutex
	status device.Status
}

// New returns an orchestrator owning st.
func New(st *device.State, deps Deps, opts Options) *Orchestrator {
	o := &Orchestrator{
		deps:       deps,
		opts:       opts,
		st:         st,
		logger:     noopLogger{},
		stateFetch: clock.NewInterval(opts.StateRefresh),
		heartbeat:  clock.NewInterval(opts.Heartbeat),
	}
	o.publish()
	return o
}

// SetLogger sets the logger for the orchestrator.
func (o *Orchestrator) SetLogger(logger Logger) {
	o.logger = logger
}

// Status returns a copy of the externally visible state as of the end of
// the last tick.
func (o *Orchestrator) Status() device.Status {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.status
}

// Boot loads the persisted identity and WiFi credentials, starts the
// provisioning channel, shows the setup screen and tries the stored
// network once.
func (o *Orchestrator) Boot(ctx context.Context) error {
	defer o.publish()
	st := o.st

	id, err := o.deps.Identity.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading identity: %w", err)
	}
	if id.DisplayName == "" {
		id.DisplayName = identity.DefaultDisplayName(o.opts.NamePrefix, st.HardwareID)
	}
	st.Identity = id

	wifi, err := o.deps.Identity.LoadWiFi(ctx)
	if err != nil {
		return fmt.Errorf("loading wifi credentials: %w", err)
	}
	st.WiFi = wifi

	o.logger.Info("booting",
		"hardware_id", st.HardwareID,
		"display_name", id.DisplayName,
		"registered", id.Registered(),
		"has_wifi", wifi.SSID != "",
	)

	if err := o.deps.Channel.Start(ctx, id.DisplayName); err != nil {
		o.logger.Error("provisioning channel unavailable", "error", err)
	}
	o.deps.Channel.PublishPairing(st.Identity)
	o.deps.Channel.PublishStatus(provisioning.StatusIdle)

	if err := o.deps.Display.ShowProvisioning(ctx, st); err != nil {
		o.logger.Warn("drawing provisioning screen", "error", err)
	}

	if wifi.SSID != "" {
		o.deps.Network.Connect(ctx, st, wifi)
	}
	return nil
}

// Tick runs one loop iteration and returns how long to wait before the
// next. The only error is reset.ErrRestartRequested.
func (o *Orchestrator) Tick(ctx context.Context) (time.Duration, error) {
	defer o.publish()
	st := o.st

	force, err := o.deps.Display.CheckMinute(ctx, st)
	if err != nil {
		o.logger.Warn("minute redraw failed", "error", err)
	}
	if force {
		o.stateFetch.Invalidate()
	}

	if err := o.deps.Reset.Poll(ctx, st); err != nil {
		o.confirmed = false
		return 0, err
	}

	if creds, ok := o.deps.Channel.Take(); ok {
		o.applyCredentials(ctx, creds)
	}

	if o.deps.Network.Ensure(ctx, st) != device.Connected {
		o.showProvisioning(ctx)
		return o.opts.OfflineDelay, nil
	}

	if !o.confirmed {
		if err := o.deps.Backend.Register(ctx, st); err != nil {
			o.logger.Warn("registration failed", "error", err)
			o.showProvisioning(ctx)
			return o.opts.RetryDelay, nil
		}
		o.confirmed = true
	}

	now := o.deps.Clock.Elapsed()
	if o.heartbeat.Due(now) {
		o.sendHeartbeat(ctx)
		o.heartbeat.Mark(now)
	}

	if o.stateFetch.Due(now) || !st.StateReady {
		o.fetch(ctx)
		o.stateFetch.Mark(now)
	}

	if !st.StateReady {
		o.showProvisioning(ctx)
		return o.opts.RetryDelay, nil
	}

	pressed, err := o.deps.ModeButton.Pressed(ctx)
	if err != nil {
		o.logger.Debug("reading mode button", "error", err)
	}
	if pressed {
		if err := o.deps.Display.Toggle(ctx, st); err != nil {
			o.logger.Warn("mode toggle failed", "error", err)
		}
	}

	return o.opts.Tick, nil
}

// Run boots and then ticks until ctx ends or a factory reset asks for a
// restart, in which case reset.ErrRestartRequested is returned.
func (o *Orchestrator) Run(ctx context.Context) error {
	if err := o.Boot(ctx); err != nil {
		return err
	}
	for {
		delay, err := o.Tick(ctx)
		if err != nil {
			return err
		}
		if err := o.deps.Clock.Sleep(ctx, delay); err != nil {
			o.logger.Info("lifecycle stopped", "reason", err)
			return nil
		}
	}
}

// applyCredentials switches to newly provisioned WiFi. The old
// registration is dropped with it: the new owner will claim the device
// afresh.
func (o *Orchestrator) applyCredentials(ctx context.Context, creds identity.WiFiCredentials) {
	if creds.SSID == "" {
		o.logger.Warn("ignoring credentials with empty ssid")
		return
	}
	st := o.st
	o.logger.Info("applying new wifi credentials", "ssid", creds.SSID)

	o.confirmed = false
	st.StateReady = false
	st.Identity = st.Identity.WithoutRegistration()
	if err := o.deps.Identity.ClearRegistration(ctx); err != nil {
		o.logger.Error("clearing stored registration", "error", err)
	}

	o.deps.Channel.PublishStatus(provisioning.StatusConnecting)
	o.deps.Network.Connect(ctx, st, creds)
}

func (o *Orchestrator) sendHeartbeat(ctx context.Context) {
	q, qerr := o.deps.Network.Quality(ctx)
	if qerr != nil {
		o.logger.Debug("link quality unavailable", "error", qerr)
	} else if o.deps.Telemetry != nil {
		o.deps.Telemetry.WriteLinkQuality(q.SSID, q.RSSI)
	}
	_ = o.deps.Backend.Heartbeat(ctx, o.st, q, qerr) //nolint:errcheck // fire and forget
}

func (o *Orchestrator) fetch(ctx context.Context) {
	st := o.st
	res, err := o.deps.Backend.FetchState(ctx, st)

	switch {
	case errors.Is(err, backend.ErrUnclaimed):
		o.record(OutcomeUnclaimed, 0, false)
	case err != nil:
		o.record(OutcomeError, 0, false)
	default:
		o.record(OutcomeOK, len(res.Snapshot.Calendar), res.Changed)
		if err := o.deps.Display.ApplySync(ctx, st, res); err != nil {
			o.logger.Warn("redraw after sync failed", "error", err)
			return
		}
		o.deps.Backend.MarkDrawn(res)
	}
}

func (o *Orchestrator) showProvisioning(ctx context.Context) {
	if err := o.deps.Display.ShowProvisioning(ctx, o.st); err != nil {
		o.logger.Warn("drawing provisioning screen", "error", err)
	}
}

func (o *Orchestrator) record(outcome string, entries int, changed bool) {
	if o.deps.Telemetry != nil {
		o.deps.Telemetry.WriteSyncResult(outcome, entries, changed)
	}
}

func (o *Orchestrator) publish() {
	s := o.st.Status()
	o.mu.Lock()
	o.status = s
	o.mu.Unlock()
}
