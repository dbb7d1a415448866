package input

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nerrad567/zen-display/internal/clock"
)

// ErrBadLevel is returned when a pin value file holds something other
// than 0 or 1.
var ErrBadLevel = errors.New("input: pin value is not 0 or 1")

// Pin reads a digital level. True means high.
type Pin interface {
	Read(ctx context.Context) (bool, error)
}

// Button is a debounced Pin.
type Button struct {
	pin   Pin
	clock clock.Clock
	deb   *Debouncer
}

// NewButton debounces pin over window, timing readings with c.
func NewButton(pin Pin, c clock.Clock, window time.Duration) *Button {
	return &Button{pin: pin, clock: c, deb: NewDebouncer(window)}
}

// Pressed samples the pin once and reports a completed press. A read
// error counts as low so a flaky pin can never trigger a reset.
func (b *Button) Pressed(ctx context.Context) (bool, error) {
	level, err := b.pin.Read(ctx)
	if err != nil {
		level = false
	}
	return b.deb.Update(level, b.clock.Elapsed()), err
}

// FilePin reads a sysfs-style GPIO value file containing "0" or "1".
type FilePin struct {
	Path string
	// ActiveLow inverts the reading, for buttons wired to ground.
	ActiveLow bool
}

func (p FilePin) Read(_ context.Context) (bool, error) {
	raw, err := os.ReadFile(p.Path)
	if err != nil {
		return false, fmt.Errorf("reading pin %s: %w", p.Path, err)
	}

	var high bool
	switch strings.TrimSpace(string(raw)) {
	case "1":
		high = true
	case "0":
		high = false
	default:
		return false, fmt.Errorf("%w: %s", ErrBadLevel, p.Path)
	}
	return high != p.ActiveLow, nil
}

// NoPin is a Pin that is always low, for displays without that button.
type NoPin struct{}

func (NoPin) Read(context.Context) (bool, error) { return false, nil }
