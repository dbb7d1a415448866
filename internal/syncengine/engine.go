package syncengine

import (
	"sync"
	"time"
)

// Redraw is the decision taken after a successful fetch.
type Redraw int

const (
	// RedrawNone leaves the panel alone.
	RedrawNone Redraw = iota
	// RedrawPromote leaves the provisioning screen for the calendar view
	// (or email, via the fallback rule).
	RedrawPromote
	// RedrawCurrent repaints the current view.
	RedrawCurrent
)

func (r Redraw) String() string {
	switch r {
	case RedrawPromote:
		return "promote"
	case RedrawCurrent:
		return "current"
	default:
		return "none"
	}
}

// Decide applies the redraw policy. The panel refresh is slow and visible,
// so outside provisioning it only happens for new content or a pending
// minute tick.
func Decide(provisioning, changed, minutePending bool) Redraw {
	switch {
	case provisioning:
		return RedrawPromote
	case changed || minutePending:
		return RedrawCurrent
	default:
		return RedrawNone
	}
}

// Engine turns raw fetch results into snapshots and remembers the
// fingerprint of the content last drawn, so unchanged content can be
// detected.
type Engine struct {
	mu   sync.Mutex
	last string
}

func NewEngine() *Engine {
	return &Engine{}
}

// Apply builds a snapshot from raw and reports whether its fingerprint
// differs from the last committed one. prev is the snapshot currently
// held. Apply does not commit: content that never reaches the panel keeps
// reporting a change.
func (e *Engine) Apply(raw RawState, now time.Time, synced bool, prev Snapshot) Result {
	snap := Build(raw, now, synced, prev.Email)

	e.mu.Lock()
	defer e.mu.Unlock()
	return Result{Snapshot: snap, Changed: snap.Fingerprint != e.last}
}

// Commit records fingerprint as the content now on the panel.
func (e *Engine) Commit(fingerprint string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.last = fingerprint
}

// Reset forgets the last fingerprint so the next Apply reports a change.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.last = ""
}

// LastFingerprint returns the most recently committed fingerprint.
func (e *Engine) LastFingerprint() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}
