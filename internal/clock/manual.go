package clock

import (
	"context"
	"sync"
	"time"
)

// Manual is a Clock that only moves when told to. Sleep advances it
// instead of blocking.
type Manual struct {
	mu      sync.Mutex
	wall    time.Time
	elapsed time.Duration
	synced  bool
	loc     *time.Location
	onSleep func(d time.Duration)
}

// NewManual returns a Manual clock reading wall, reporting synced.
func NewManual(wall time.Time) *Manual {
	return &Manual{wall: wall, synced: true, loc: wall.Location()}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wall.In(m.loc)
}

func (m *Manual) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.elapsed
}

func (m *Manual) Synced() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.synced
}

// Sleep advances the clock by d and runs the OnSleep hook, if any.
func (m *Manual) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.Advance(d)
	m.mu.Lock()
	hook := m.onSleep
	m.mu.Unlock()
	if hook != nil {
		hook(d)
	}
	return nil
}

// Advance moves both wall and monotonic time forward.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wall = m.wall.Add(d)
	m.elapsed += d
}

// SetSynced overrides the synced flag.
func (m *Manual) SetSynced(synced bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.synced = synced
}

// OnSleep registers a hook called after every Sleep, e.g. to bring a fake
// link up part way through a connect attempt.
func (m *Manual) OnSleep(hook func(d time.Duration)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onSleep = hook
}

func (m *Manual) SetOffset(offset time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wall = m.wall.Add(offset)
	m.synced = true
}

func (m *Manual) SetLocation(loc *time.Location) {
	if loc == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loc = loc
}
