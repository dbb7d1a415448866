package clock

import (
	"context"
	"fmt"
	"sync"
	"time"
	_ "time/tzdata" // embedded zone database; the device image may ship none
)

// DefaultZone is the display zone: UTC+1 with the EU summer time rule
// (CET-1CEST,M3.5.0/2,M10.5.0/3).
const DefaultZone = "CET"

// Clock is the time source for the control loop.
//
// Now is wall time in the display zone, corrected by the last time sync.
// Elapsed is monotonic time since the clock was created and is what every
// interval is measured against, so a time sync never fires or stalls them.
type Clock interface {
	Now() time.Time
	Elapsed() time.Duration
	Synced() bool
	Sleep(ctx context.Context, d time.Duration) error
}

// Setter is implemented by clocks that accept time sync results.
type Setter interface {
	SetOffset(offset time.Duration)
	SetLocation(loc *time.Location)
}

// System is the production Clock.
type System struct {
	start time.Time

	mu     sync.RWMutex
	offset time.Duration
	loc    *time.Location
	synced bool
}

// NewSystem returns a System clock in loc. A nil loc means UTC.
func NewSystem(loc *time.Location) *System {
	if loc == nil {
		loc = time.UTC
	}
	return &System{start: time.Now(), loc: loc}
}

// LoadZone resolves an IANA zone name such as "CET" or "Europe/Berlin".
func LoadZone(name string) (*time.Location, error) {
	if name == "" {
		return nil, fmt.Errorf("clock: empty zone name")
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("clock: unknown zone %q: %w", name, err)
	}
	return loc, nil
}

func (c *System) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Now().Add(c.offset).In(c.loc)
}

func (c *System) Elapsed() time.Duration {
	return time.Since(c.start)
}

func (c *System) Synced() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.synced
}

func (c *System) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// SetOffset applies a sync result and marks the clock synced.
func (c *System) SetOffset(offset time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset = offset
	c.synced = true
}

func (c *System) SetLocation(loc *time.Location) {
	if loc == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loc = loc
}
