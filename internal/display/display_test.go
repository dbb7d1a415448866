package display

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nerrad567/zen-display/internal/clock"
	"github.com/nerrad567/zen-display/internal/device"
	"github.com/nerrad567/zen-display/internal/identity"
	"github.com/nerrad567/zen-display/internal/infrastructure/mqtt"
	"github.com/nerrad567/zen-display/internal/syncengine"
)

type recordingRenderer struct {
	frames []Frame
	err    error
}

func (r *recordingRenderer) Render(_ context.Context, f Frame) error {
	if r.err != nil {
		return r.err
	}
	r.frames = append(r.frames, f)
	return nil
}

func (r *recordingRenderer) last() Frame {
	return r.frames[len(r.frames)-1]
}

type redrawLog []string

func (l *redrawLog) WriteRedraw(view, reason string) { *l = append(*l, view+"/"+reason) }

var cet = time.FixedZone("CET", 3600)

func newController(t *testing.T) (*Controller, *recordingRenderer, *clock.Manual, *device.State) {
	t.Helper()
	clk := clock.NewManual(time.Date(2026, 1, 8, 7, 59, 30, 0, cet))
	r := &recordingRenderer{}
	c := NewController(r, clk, Options{ProvisioningRefresh: time.Minute, MinuteCheck: time.Second})
	st := device.New("aa:bb:cc:dd:ee:ff", "0.2.0", "ZenDisplay-EEFF")
	return c, r, clk, st
}

func withCalendar(st *device.State) {
	st.Snapshot = syncengine.Snapshot{
		Calendar: []syncengine.CalendarEntry{{TimeOfDay: "07:50", Summary: "Standup"}},
		Email:    syncengine.EmailSection{Senders: []string{"Alice"}},
	}
}

func TestRequestMode_FallsBackToEmail(t *testing.T) {
	c, r, _, st := newController(t)
	st.Snapshot = syncengine.Snapshot{}

	if err := c.RequestMode(context.Background(), st, device.ModeCalendar, ReasonPromote); err != nil {
		t.Fatalf("RequestMode() error = %v", err)
	}
	if st.Mode != device.ModeEmail {
		t.Errorf("Mode = %q, want email", st.Mode)
	}
	if r.last().Email == nil || r.last().Calendar != nil {
		t.Errorf("frame = %+v", r.last())
	}
}

func TestRequestMode_SameModeIsNoop(t *testing.T) {
	c, r, _, st := newController(t)
	withCalendar(st)
	st.Mode = device.ModeCalendar

	if err := c.RequestMode(context.Background(), st, device.ModeCalendar, ReasonToggle); err != nil {
		t.Fatal(err)
	}
	if len(r.frames) != 0 {
		t.Errorf("redrew %d frames", len(r.frames))
	}
}

func TestRequestMode_PlaceholderCountsAsCalendar(t *testing.T) {
	c, r, _, st := newController(t)

	if err := c.RequestMode(context.Background(), st, device.ModeCalendar, ReasonPromote); err != nil {
		t.Fatal(err)
	}
	if st.Mode != device.ModeCalendar {
		t.Errorf("Mode = %q", st.Mode)
	}
	if got := r.last().Calendar.Selected; got != "Open Zen Phone app" {
		t.Errorf("selected = %q", got)
	}
}

func TestToggle(t *testing.T) {
	c, _, _, st := newController(t)
	withCalendar(st)
	st.Mode = device.ModeCalendar
	ctx := context.Background()

	if err := c.Toggle(ctx, st); err != nil || st.Mode != device.ModeEmail {
		t.Fatalf("Toggle() from calendar: mode=%q err=%v", st.Mode, err)
	}
	if err := c.Toggle(ctx, st); err != nil || st.Mode != device.ModeCalendar {
		t.Fatalf("Toggle() from email: mode=%q err=%v", st.Mode, err)
	}
}

func TestRenderFailureKeepsMode(t *testing.T) {
	c, r, _, st := newController(t)
	withCalendar(st)
	st.Mode = device.ModeCalendar
	r.err = errors.New("panel busy")

	if err := c.Toggle(context.Background(), st); err == nil {
		t.Fatal("Toggle() should surface the render error")
	}
	if st.Mode != device.ModeCalendar {
		t.Errorf("Mode = %q after failed render", st.Mode)
	}
}

func TestShowProvisioning_Gating(t *testing.T) {
	c, r, clk, st := newController(t)
	ctx := context.Background()

	if err := c.ShowProvisioning(ctx, st); err != nil {
		t.Fatal(err)
	}
	f := r.last()
	if f.Provisioning.Headline != "Setup this display" || f.Provisioning.Line3 != "Select BLE ZenDisplay-EEFF" {
		t.Errorf("provisioning text = %+v", f.Provisioning)
	}

	clk.Advance(10 * time.Second)
	c.ShowProvisioning(ctx, st) //nolint:errcheck // renderer never fails here
	if len(r.frames) != 1 {
		t.Fatalf("unchanged text redrawn: %d frames", len(r.frames))
	}

	st.Connection = device.Connected
	c.ShowProvisioning(ctx, st) //nolint:errcheck // renderer never fails here
	if len(r.frames) != 2 || r.last().Provisioning.Headline != "Waiting for pairing" {
		t.Fatalf("text change not drawn: %d frames", len(r.frames))
	}

	clk.Advance(59 * time.Second)
	c.ShowProvisioning(ctx, st) //nolint:errcheck // renderer never fails here
	if len(r.frames) != 2 {
		t.Fatal("redrawn before refresh interval")
	}
	clk.Advance(time.Second)
	c.ShowProvisioning(ctx, st) //nolint:errcheck // renderer never fails here
	if len(r.frames) != 3 {
		t.Fatal("not redrawn after refresh interval")
	}
}

func TestShowProvisioning_FromOtherView(t *testing.T) {
	c, r, _, st := newController(t)
	ctx := context.Background()

	c.ShowProvisioning(ctx, st) //nolint:errcheck // renderer never fails here
	withCalendar(st)
	c.RequestMode(ctx, st, device.ModeCalendar, ReasonPromote) //nolint:errcheck // renderer never fails here

	c.ShowProvisioning(ctx, st) //nolint:errcheck // renderer never fails here
	if st.Mode != device.ModeProvisioning || len(r.frames) != 3 {
		t.Errorf("mode=%q frames=%d", st.Mode, len(r.frames))
	}
}

func TestApplySync(t *testing.T) {
	tests := []struct {
		name        string
		mode        device.Mode
		changed     bool
		pending     bool
		wantFrames  int
		wantMode    device.Mode
		wantReason  string
		wantPending bool
	}{
		{"promote from provisioning", device.ModeProvisioning, false, true, 1, device.ModeCalendar, ReasonPromote, false},
		{"content changed", device.ModeEmail, true, false, 1, device.ModeEmail, ReasonContent, false},
		{"minute pending", device.ModeCalendar, false, true, 1, device.ModeCalendar, ReasonMinute, false},
		{"nothing new", device.ModeCalendar, false, false, 0, device.ModeCalendar, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, r, _, st := newController(t)
			withCalendar(st)
			st.Mode = tt.mode
			st.MinutePending = tt.pending

			err := c.ApplySync(context.Background(), st, syncengine.Result{Snapshot: st.Snapshot, Changed: tt.changed})
			if err != nil {
				t.Fatal(err)
			}
			if len(r.frames) != tt.wantFrames {
				t.Fatalf("frames = %d, want %d", len(r.frames), tt.wantFrames)
			}
			if st.Mode != tt.wantMode {
				t.Errorf("Mode = %q, want %q", st.Mode, tt.wantMode)
			}
			if tt.wantFrames > 0 && r.last().Reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", r.last().Reason, tt.wantReason)
			}
			if st.MinutePending != tt.wantPending {
				t.Errorf("MinutePending = %v", st.MinutePending)
			}
		})
	}
}

func TestApplySync_RenderFailureKeepsMinutePending(t *testing.T) {
	tests := []struct {
		name    string
		mode    device.Mode
		changed bool
	}{
		{"new content", device.ModeEmail, true},
		{"minute only", device.ModeCalendar, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, r, _, st := newController(t)
			withCalendar(st)
			st.Mode = tt.mode
			st.MinutePending = true
			r.err = errors.New("broker down")

			err := c.ApplySync(context.Background(), st, syncengine.Result{Snapshot: st.Snapshot, Changed: tt.changed})
			if err == nil {
				t.Fatal("ApplySync() should surface the render error")
			}
			if !st.MinutePending {
				t.Error("MinutePending cleared although nothing was drawn")
			}

			r.err = nil
			if err := c.ApplySync(context.Background(), st, syncengine.Result{Snapshot: st.Snapshot}); err != nil {
				t.Fatal(err)
			}
			if len(r.frames) != 1 || st.MinutePending {
				t.Errorf("retry: frames=%d pending=%v", len(r.frames), st.MinutePending)
			}
		})
	}
}

func TestCheckMinute(t *testing.T) {
	t.Run("registered connection forces fetch", func(t *testing.T) {
		c, r, clk, st := newController(t)
		st.Connection = device.Connected
		st.Identity = identity.Identity{DeviceID: "d", DeviceSecret: "s"}
		ctx := context.Background()

		force, _ := c.CheckMinute(ctx, st)
		if !force || !st.MinutePending {
			t.Fatalf("first check: force=%v pending=%v", force, st.MinutePending)
		}
		st.MinutePending = false

		clk.Advance(500 * time.Millisecond)
		if force, _ := c.CheckMinute(ctx, st); force {
			t.Error("checked again before the interval")
		}

		clk.Advance(10 * time.Second)
		if force, _ := c.CheckMinute(ctx, st); force || st.MinutePending {
			t.Error("same minute reported as a change")
		}

		clk.Advance(30 * time.Second)
		if force, _ := c.CheckMinute(ctx, st); !force {
			t.Error("minute change not detected")
		}
		if len(r.frames) != 0 {
			t.Error("registered path should leave drawing to the fetch")
		}
	})

	t.Run("offline redraws current view", func(t *testing.T) {
		c, r, _, st := newController(t)
		withCalendar(st)
		st.Mode = device.ModeCalendar
		st.StateReady = true

		force, err := c.CheckMinute(context.Background(), st)
		if err != nil || force {
			t.Fatalf("force=%v err=%v", force, err)
		}
		if len(r.frames) != 1 || r.last().Reason != ReasonMinute || r.last().Clock != "07:59" {
			t.Errorf("frames = %+v", r.frames)
		}
		if st.MinutePending {
			t.Error("pending not cleared after redraw")
		}
	})

	t.Run("provisioning keeps pending", func(t *testing.T) {
		c, r, _, st := newController(t)
		force, _ := c.CheckMinute(context.Background(), st)
		if force || len(r.frames) != 0 || !st.MinutePending {
			t.Errorf("force=%v frames=%d pending=%v", force, len(r.frames), st.MinutePending)
		}
	})
}

func TestClockText_Unsynced(t *testing.T) {
	c, _, clk, _ := newController(t)
	clk.SetSynced(false)
	if got := c.ClockText(); got != "--:--" {
		t.Errorf("ClockText() = %q", got)
	}
}

func TestRecorder(t *testing.T) {
	c, _, _, st := newController(t)
	var log redrawLog
	c.SetRecorder(&log)

	c.ShowProvisioning(context.Background(), st) //nolint:errcheck // renderer never fails here
	if len(log) != 1 || log[0] != "provisioning/provisioning" {
		t.Errorf("recorded %v", log)
	}
}

type fakePublisher struct {
	topic   string
	payload []byte
}

func (p *fakePublisher) Topics() mqtt.Topics { return mqtt.NewTopics("aa:bb:cc:dd:ee:ff") }

func (p *fakePublisher) PublishRetained(topic string, payload []byte) error {
	p.topic, p.payload = topic, payload
	return nil
}

func TestMQTTRenderer(t *testing.T) {
	pub := &fakePublisher{}
	r := NewMQTTRenderer(pub)
	email := emailView(syncengine.EmailSection{Senders: []string{"Alice", "Bob"}, Subject: "Hi"})

	err := r.Render(context.Background(), Frame{View: device.ModeEmail, Reason: ReasonToggle, Clock: "08:00", Email: email})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if pub.topic != pub.Topics().DisplayFrame() {
		t.Errorf("topic = %q", pub.topic)
	}

	var got map[string]any
	if err := json.Unmarshal(pub.payload, &got); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if got["view"] != "email" || got["clock"] != "08:00" {
		t.Errorf("payload = %v", got)
	}
	if _, ok := got["calendar"]; ok {
		t.Error("calendar section present on email frame")
	}
	em := got["email"].(map[string]any)
	if em["selected"] != "Alice" || em["primary"] != "Bob" || em["secondary"] != "" {
		t.Errorf("email section = %v", em)
	}
}
