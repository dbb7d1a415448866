package clock

import "time"

// Interval tracks when a periodic job last ran, in Elapsed time.
// The zero value has never run and is always due.
type Interval struct {
	Every time.Duration

	last time.Duration
	ran  bool
}

// NewInterval returns an Interval that is due immediately.
func NewInterval(every time.Duration) *Interval {
	return &Interval{Every: every}
}

// Due reports whether at least Every has passed since the last Mark.
func (i *Interval) Due(now time.Duration) bool {
	return !i.ran || now-i.last >= i.Every
}

// Mark records a run at now.
func (i *Interval) Mark(now time.Duration) {
	i.last = now
	i.ran = true
}

// Invalidate makes the next Due return true.
func (i *Interval) Invalidate() {
	i.ran = false
}
