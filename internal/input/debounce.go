package input

import "time"

// Debouncer filters a bouncing digital reading. A change in the raw
// reading restarts the window; a reading that stays put for longer than
// the window becomes the stable level. Update reports a press when the
// stable level goes from low to high.
type Debouncer struct {
	window time.Duration

	last        bool
	stable      bool
	lastPressed bool
	lastChange  time.Duration
}

// NewDebouncer returns a debouncer whose stable level starts low.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{window: window}
}

// Update feeds one raw reading taken at now (monotonic) and reports
// whether it completes a press.
func (d *Debouncer) Update(reading bool, now time.Duration) bool {
	if reading != d.last {
		d.lastChange = now
	}

	pressed := false
	if now-d.lastChange > d.window && reading != d.stable {
		d.stable = reading
		pressed = d.stable && !d.lastPressed
		d.lastPressed = d.stable
	}

	d.last = reading
	return pressed
}

// Stable returns the debounced level.
func (d *Debouncer) Stable() bool {
	return d.stable
}
