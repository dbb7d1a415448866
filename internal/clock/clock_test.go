package clock

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestInterval(t *testing.T) {
	iv := NewInterval(60 * time.Second)

	if !iv.Due(0) {
		t.Fatal("fresh interval should be due")
	}
	iv.Mark(10 * time.Second)

	tests := []struct {
		now  time.Duration
		want bool
	}{
		{10 * time.Second, false},
		{69 * time.Second, false},
		{70 * time.Second, true},
		{200 * time.Second, true},
	}
	for _, tt := range tests {
		if got := iv.Due(tt.now); got != tt.want {
			t.Errorf("Due(%v) = %v, want %v", tt.now, got, tt.want)
		}
	}

	iv.Invalidate()
	if !iv.Due(11 * time.Second) {
		t.Error("invalidated interval should be due")
	}
}

func TestManual(t *testing.T) {
	start := time.Date(2026, 1, 8, 7, 50, 0, 0, time.UTC)
	m := NewManual(start)

	var slept time.Duration
	m.OnSleep(func(d time.Duration) { slept += d })

	if err := m.Sleep(context.Background(), 250*time.Millisecond); err != nil {
		t.Fatalf("Sleep() error = %v", err)
	}
	m.Advance(time.Second)

	if got := m.Elapsed(); got != 1250*time.Millisecond {
		t.Errorf("Elapsed() = %v", got)
	}
	if got := m.Now(); !got.Equal(start.Add(1250 * time.Millisecond)) {
		t.Errorf("Now() = %v", got)
	}
	if slept != 250*time.Millisecond {
		t.Errorf("hook saw %v", slept)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.Sleep(ctx, time.Second); !errors.Is(err, context.Canceled) {
		t.Errorf("Sleep() on cancelled ctx = %v", err)
	}
}

func TestSystem_OffsetAndZone(t *testing.T) {
	c := NewSystem(nil)
	if c.Synced() {
		t.Error("new clock should not be synced")
	}

	before := time.Now()
	c.SetOffset(time.Hour)
	c.SetLocation(mustZone(t, DefaultZone))

	if !c.Synced() {
		t.Error("clock should be synced after SetOffset")
	}
	if got := c.Now(); got.Sub(before) < 59*time.Minute {
		t.Errorf("offset not applied: %v", got.Sub(before))
	}
	if name, _ := c.Now().Zone(); name != "CET" && name != "CEST" {
		t.Errorf("zone = %q, want CET or CEST", name)
	}
}

func mustZone(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := LoadZone(name)
	if err != nil {
		t.Fatalf("LoadZone(%q) error = %v", name, err)
	}
	return loc
}

func TestLoadZone(t *testing.T) {
	cet := mustZone(t, "CET")
	winter := time.Date(2026, 1, 8, 12, 0, 0, 0, time.UTC).In(cet)
	if _, off := winter.Zone(); off != 3600 {
		t.Errorf("winter offset = %d, want 3600", off)
	}
	summer := time.Date(2026, 7, 8, 12, 0, 0, 0, time.UTC).In(cet)
	if _, off := summer.Zone(); off != 7200 {
		t.Errorf("summer offset = %d, want 7200", off)
	}

	for _, name := range []string{"Not/AZone", "Europe/Berln", ""} {
		if loc, err := LoadZone(name); err == nil {
			t.Errorf("LoadZone(%q) = %v, want error", name, loc)
		}
	}
}

func TestSystem_Sleep(t *testing.T) {
	c := NewSystem(time.UTC)
	if err := c.Sleep(context.Background(), time.Millisecond); err != nil {
		t.Errorf("Sleep() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("Sleep() cancelled = %v", err)
	}
}
