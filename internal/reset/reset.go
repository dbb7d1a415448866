package reset

import (
	"context"
	"errors"
	"io"

	"github.com/nerrad567/zen-display/internal/device"
	"github.com/nerrad567/zen-display/internal/identity"
)

// ErrRestartRequested is returned after a factory reset. The caller is
// expected to unwind and restart the process.
var ErrRestartRequested = errors.New("reset: restart requested")

// Button reports completed presses. input.Button implements it.
type Button interface {
	Pressed(ctx context.Context) (bool, error)
}

// Wiper erases persisted identity and WiFi credentials.
type Wiper interface {
	Wipe(ctx context.Context) error
}

// Logger defines the logging interface for the controller.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Controller performs the factory reset when its button is pressed.
// There is no confirmation step.
type Controller struct {
	button     Button
	store      Wiper
	transports io.Closer
	namePrefix string
	logger     Logger
}

// NewController returns a controller. transports is closed during a reset
// and may be nil.
func NewController(button Button, store Wiper, transports io.Closer, namePrefix string) *Controller {
	return &Controller{
		button:     button,
		store:      store,
		transports: transports,
		namePrefix: namePrefix,
		logger:     noopLogger{},
	}
}

// SetLogger sets the logger for the controller.
func (c *Controller) SetLogger(logger Logger) {
	c.logger = logger
}

// Poll samples the button once. It returns ErrRestartRequested when a
// press triggered a reset and nil otherwise.
func (c *Controller) Poll(ctx context.Context, st *device.State) error {
	pressed, err := c.button.Pressed(ctx)
	if err != nil {
		c.logger.Warn("reading reset button", "error", err)
	}
	if !pressed {
		return nil
	}
	return c.Perform(ctx, st)
}

// Perform wipes the device back to factory state. Storage and transport
// errors are logged and do not stop the reset.
func (c *Controller) Perform(ctx context.Context, st *device.State) error {
	c.logger.Warn("factory reset", "hardware_id", st.HardwareID)

	if err := c.store.Wipe(ctx); err != nil {
		c.logger.Error("wiping stored identity", "error", err)
	}
	st.FactoryReset(identity.DefaultDisplayName(c.namePrefix, st.HardwareID))

	if c.transports != nil {
		if err := c.transports.Close(); err != nil {
			c.logger.Error("closing provisioning transports", "error", err)
		}
	}
	return ErrRestartRequested
}
