package display

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/zen-display/internal/clock"
	"github.com/nerrad567/zen-display/internal/device"
	"github.com/nerrad567/zen-display/internal/syncengine"
)

const (
	timeLayout  = "15:04"
	unknownTime = "--:--"
)

// Logger defines the logging interface for the controller.
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

// RedrawRecorder is told about every frame that reached the panel.
type RedrawRecorder interface {
	WriteRedraw(view, reason string)
}

// Options configure a Controller.
type Options struct {
	// ProvisioningRefresh forces a provisioning redraw even when its text
	// is unchanged.
	ProvisioningRefresh time.Duration
	// MinuteCheck is how often the header clock is compared.
	MinuteCheck time.Duration
}

// Controller is the view state machine over provisioning, calendar and
// email. It decides when the panel is redrawn; Renderer does the drawing.
type Controller struct {
	renderer Renderer
	clock    clock.Clock
	logger   Logger
	recorder RedrawRecorder

	provRefresh *clock.Interval
	lastProv    ProvisioningText
	provDrawn   bool

	minute     *clock.Interval
	lastMinute string
}

func NewController(r Renderer, clk clock.Clock, opts Options) *Controller {
	if opts.ProvisioningRefresh <= 0 {
		opts.ProvisioningRefresh = 60 * time.Second
	}
	if opts.MinuteCheck <= 0 {
		opts.MinuteCheck = time.Second
	}
	return &Controller{
		renderer:    r,
		clock:       clk,
		logger:      noopLogger{},
		provRefresh: clock.NewInterval(opts.ProvisioningRefresh),
		minute:      clock.NewInterval(opts.MinuteCheck),
	}
}

// SetLogger sets the logger for the controller.
func (c *Controller) SetLogger(logger Logger) {
	c.logger = logger
}

// SetRecorder registers a recorder for redraw telemetry.
func (c *Controller) SetRecorder(r RedrawRecorder) {
	c.recorder = r
}

// ClockText returns the header time, "--:--" while the clock is unsynced.
func (c *Controller) ClockText() string {
	if !c.clock.Synced() {
		return unknownTime
	}
	return c.clock.Now().Format(timeLayout)
}

// RequestMode switches the panel to target. It does nothing when target
// is already shown. Calendar falls back to Email when the snapshot has no
// calendar content.
func (c *Controller) RequestMode(ctx context.Context, st *device.State, target device.Mode, reason string) error {
	if st.Mode == target {
		return nil
	}
	if target == device.ModeCalendar && !st.Snapshot.HasCalendar() {
		target = device.ModeEmail
	}
	return c.draw(ctx, st, target, reason)
}

// Toggle flips between calendar and email. From provisioning it goes to
// calendar.
func (c *Controller) Toggle(ctx context.Context, st *device.State) error {
	target := device.ModeCalendar
	if st.Mode == device.ModeCalendar {
		target = device.ModeEmail
	}
	return c.RequestMode(ctx, st, target, ReasonToggle)
}

// RefreshCurrent redraws the calendar or email view in place. The
// provisioning screen has its own gate, see ShowProvisioning.
func (c *Controller) RefreshCurrent(ctx context.Context, st *device.State, reason string) error {
	switch st.Mode {
	case device.ModeCalendar, device.ModeEmail:
		return c.draw(ctx, st, st.Mode, reason)
	default:
		return nil
	}
}

// ShowProvisioning draws the setup screen when its text changed, when
// another view is showing, or when the refresh interval has passed.
func (c *Controller) ShowProvisioning(ctx context.Context, st *device.State) error {
	text := provisioningText(st)
	now := c.clock.Elapsed()

	if c.provDrawn && st.Mode == device.ModeProvisioning && text == c.lastProv && !c.provRefresh.Due(now) {
		return nil
	}

	if err := c.draw(ctx, st, device.ModeProvisioning, ReasonProvisioning); err != nil {
		return err
	}
	c.lastProv = text
	c.provDrawn = true
	c.provRefresh.Mark(now)
	return nil
}

// ApplySync redraws after a successful fetch according to the redraw
// policy. The pending minute tick is cleared only by a successful draw.
func (c *Controller) ApplySync(ctx context.Context, st *device.State, res syncengine.Result) error {
	decision := syncengine.Decide(st.Mode == device.ModeProvisioning, res.Changed, st.MinutePending)

	var err error
	switch decision {
	case syncengine.RedrawPromote:
		err = c.RequestMode(ctx, st, device.ModeCalendar, ReasonPromote)
	case syncengine.RedrawCurrent:
		reason := ReasonContent
		if !res.Changed {
			reason = ReasonMinute
		}
		err = c.RefreshCurrent(ctx, st, reason)
	default:
		c.logger.Debug("content unchanged, redraw skipped")
		return nil
	}
	if err != nil {
		return err
	}
	st.MinutePending = false
	return nil
}

// CheckMinute compares the header time with the last one seen, at most
// once per MinuteCheck. On a change it marks a pending minute redraw and
// returns true when the caller should fetch state now; without a
// registered connection it redraws the current view itself.
func (c *Controller) CheckMinute(ctx context.Context, st *device.State) (bool, error) {
	now := c.clock.Elapsed()
	if !c.minute.Due(now) {
		return false, nil
	}
	c.minute.Mark(now)

	text := c.ClockText()
	if text == c.lastMinute {
		return false, nil
	}
	c.lastMinute = text
	st.MinutePending = true

	if st.Online() && st.Registered() {
		return true, nil
	}
	if st.StateReady && st.Mode != device.ModeProvisioning {
		if err := c.RefreshCurrent(ctx, st, ReasonMinute); err != nil {
			return false, err
		}
		st.MinutePending = false
		return false, nil
	}
	return false, nil
}

func (c *Controller) draw(ctx context.Context, st *device.State, mode device.Mode, reason string) error {
	f := Frame{
		View:       mode,
		Reason:     reason,
		Clock:      c.ClockText(),
		RenderedAt: c.clock.Now(),
	}
	switch mode {
	case device.ModeProvisioning:
		text := provisioningText(st)
		f.Provisioning = &text
	case device.ModeCalendar:
		view := st.Snapshot.CalendarView()
		f.Calendar = &view
	case device.ModeEmail:
		f.Email = emailView(st.Snapshot.Email)
	default:
		return fmt.Errorf("display: unknown mode %q", mode)
	}

	if err := c.renderer.Render(ctx, f); err != nil {
		c.logger.Warn("render failed", "view", mode, "error", err)
		return err
	}
	st.Mode = mode
	if c.recorder != nil {
		c.recorder.WriteRedraw(string(mode), reason)
	}
	c.logger.Debug("panel redrawn", "view", mode, "reason", reason)
	return nil
}
