package syncengine

import (
	"strings"
	"testing"
	"time"
)

var cet = time.FixedZone("CET", 3600)

func at(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", s, cet)
	if err != nil {
		panic(err)
	}
	return t
}

func TestBuild_CalendarFiltering(t *testing.T) {
	now := at("2026-03-10 07:30")

	raw := RawState{Calendar: RawCalendar{Connected: true, Items: []RawCalendarItem{
		{Start: "2026-03-10T07:50:00+01:00", Summary: "Standup", Location: "Room 1"},
		{Start: "", Summary: "No start"},
		{Start: "2026-03-11T09:00:00+01:00", Summary: "Tomorrow"},
		{Start: "2026-03-10", Summary: "All day"},
		{Start: "2026-03-10T12:00:00+01:00", Summary: "Lunch"},
		{Start: "2026-03-10T15:00:00+01:00", Summary: "Review"},
	}}}

	snap := Build(raw, now, true, EmailSection{})

	want := []CalendarEntry{
		{TimeOfDay: "07:50", Summary: "Standup", Location: "Room 1"},
		{TimeOfDay: "--:--", Summary: "All day"},
		{TimeOfDay: "12:00", Summary: "Lunch"},
	}
	if len(snap.Calendar) != len(want) {
		t.Fatalf("got %d entries, want %d: %+v", len(snap.Calendar), len(want), snap.Calendar)
	}
	for i := range want {
		if snap.Calendar[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, snap.Calendar[i], want[i])
		}
	}

	view := snap.CalendarView()
	if view.Selected != "07:50 Standup" || view.Location != "Room 1" {
		t.Errorf("view = %+v", view)
	}
	if view.Slots[2] != "12:00 Lunch" {
		t.Errorf("slot 2 = %q", view.Slots[2])
	}
}

func TestBuild_UnsyncedClockKeepsNoEvents(t *testing.T) {
	raw := RawState{Calendar: RawCalendar{Items: []RawCalendarItem{
		{Start: "1970-01-01T00:05:00Z", Summary: "Epoch"},
	}}}
	snap := Build(raw, time.Unix(60, 0).In(cet), false, EmailSection{})
	if len(snap.Calendar) != 0 {
		t.Errorf("unsynced clock kept %d entries", len(snap.Calendar))
	}
	if snap.HasCalendar() {
		t.Error("HasCalendar() = true for empty fetch")
	}
}

func TestBuild_Email(t *testing.T) {
	raw := RawState{Email: RawEmail{Connected: true, Items: []RawEmailItem{
		{From: "Alice", Subject: "Hello", Snippet: "First snippet"},
		{From: "Bob", Subject: "Ignored", Snippet: "Ignored"},
		{From: "Carol"},
		{From: "Dave"},
	}}}

	snap := Build(raw, at("2026-03-10 08:00"), true, EmailSection{})

	if got := strings.Join(snap.Email.Senders, ","); got != "Alice,Bob,Carol" {
		t.Errorf("senders = %q", got)
	}
	if snap.Email.Subject != "Hello" || snap.Email.Summary != "First snippet" {
		t.Errorf("email = %+v", snap.Email)
	}
	if snap.Email.Sender(3) != "" {
		t.Error("Sender(3) should be empty")
	}
}

func TestBuild_NoEmailKeepsPrevious(t *testing.T) {
	prev := Initial().Email
	snap := Build(RawState{}, at("2026-03-10 08:00"), true, prev)

	if snap.Email.Sender(0) != "No email" {
		t.Errorf("email section not carried over: %+v", snap.Email)
	}
	if want := "cal:0;mail:||"; snap.Fingerprint != want {
		t.Errorf("Fingerprint = %q, want %q", snap.Fingerprint, want)
	}
}

func TestFingerprint(t *testing.T) {
	cal := []CalendarEntry{
		{TimeOfDay: "07:50", Summary: "Standup", Location: "Room 1"},
		{TimeOfDay: "09:00", Summary: "Planning"},
	}
	got := Fingerprint(cal, "Hi", "Alice", "snip")
	want := "cal:2|07:50 Standup|09:00 Planning|loc0:Room 1;mail:Hi|Alice|snip"
	if got != want {
		t.Errorf("Fingerprint() = %q, want %q", got, want)
	}

	long := Fingerprint(nil, strings.Repeat("é", 400), "", "")
	if len(long) > MaxFingerprintLen {
		t.Errorf("len = %d, exceeds %d", len(long), MaxFingerprintLen)
	}
	if !strings.HasPrefix(long, "cal:0;mail:") {
		t.Errorf("prefix lost: %q", long[:20])
	}
	if r := []rune(long); r[len(r)-1] != 'é' {
		t.Errorf("truncation split a rune: %q", long[len(long)-4:])
	}
}

func TestWrapSummary(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"short", "Hello", []string{"Hello"}},
		{"placeholder", "Open Settings -> Connect Display", []string{"Open Settings ->", "Connect Display"}},
		{"exact width", "abcdefghijklmnopqr", []string{"abcdefghijklmnopqr"}},
		{"hard cut", "abcdefghijklmnopqrstuvwxyz", []string{"abcdefghijklmnopqr", "stuvwxyz"}},
		{"leading space", " bcdefghijklmnopqrstu", []string{" bcdefghijklmnopqr", "stu"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapSummary(tt.in)
			for i := 0; i < SummaryLines; i++ {
				want := ""
				if i < len(tt.want) {
					want = tt.want[i]
				}
				if got[i] != want {
					t.Errorf("line %d = %q, want %q", i, got[i], want)
				}
			}
		})
	}
}

func TestWrapSummary_Bounds(t *testing.T) {
	in := strings.Repeat("word ", 60)
	lines := WrapSummary(in)
	for i, l := range lines {
		if n := len([]rune(l)); n > SummaryWidth {
			t.Errorf("line %d has %d chars", i, n)
		}
		if l == "" {
			t.Errorf("line %d empty for long input", i)
		}
	}
}

func TestEngine_Apply(t *testing.T) {
	e := NewEngine()
	now := at("2026-03-10 07:00")
	raw := RawState{Calendar: RawCalendar{Items: []RawCalendarItem{
		{Start: "2026-03-10T07:50:00+01:00", Summary: "Standup"},
	}}}

	first := e.Apply(raw, now, true, Initial())
	if !first.Changed {
		t.Error("first Apply should report a change")
	}
	e.Commit(first.Snapshot.Fingerprint)

	second := e.Apply(raw, now, true, first.Snapshot)
	if second.Changed {
		t.Error("identical content reported as changed")
	}

	raw.Calendar.Items[0].Summary = "Standup (moved)"
	third := e.Apply(raw, now, true, second.Snapshot)
	if !third.Changed {
		t.Error("new content not reported as changed")
	}
	e.Commit(third.Snapshot.Fingerprint)

	e.Reset()
	if !e.Apply(raw, now, true, third.Snapshot).Changed {
		t.Error("Apply after Reset should report a change")
	}
	if e.LastFingerprint() != "" {
		t.Errorf("LastFingerprint() after Reset = %q", e.LastFingerprint())
	}
}

func TestEngine_UncommittedContentStaysChanged(t *testing.T) {
	e := NewEngine()
	now := at("2026-03-10 07:00")
	raw := RawState{Email: RawEmail{Items: []RawEmailItem{{From: "Alice", Subject: "Hi"}}}}

	drawn := e.Apply(raw, now, true, Initial())
	e.Commit(drawn.Snapshot.Fingerprint)

	raw.Email.Items[0].Subject = "Lunch?"
	for i := 0; i < 2; i++ {
		res := e.Apply(raw, now, true, drawn.Snapshot)
		if !res.Changed {
			t.Fatalf("fetch %d: undrawn content reported unchanged", i+1)
		}
	}
	if e.LastFingerprint() != drawn.Snapshot.Fingerprint {
		t.Errorf("Apply moved the committed fingerprint to %q", e.LastFingerprint())
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		provisioning, changed, pending bool
		want                           Redraw
	}{
		{true, false, false, RedrawPromote},
		{true, true, true, RedrawPromote},
		{false, true, false, RedrawCurrent},
		{false, false, true, RedrawCurrent},
		{false, false, false, RedrawNone},
	}
	for _, tt := range tests {
		if got := Decide(tt.provisioning, tt.changed, tt.pending); got != tt.want {
			t.Errorf("Decide(%v, %v, %v) = %v, want %v", tt.provisioning, tt.changed, tt.pending, got, tt.want)
		}
	}
}

func TestInitial(t *testing.T) {
	s := Initial()
	if !s.HasCalendar() {
		t.Error("placeholder should count as calendar content")
	}
	v := s.CalendarView()
	if v.Selected != "Open Zen Phone app" || v.Slots[0] != "Pair Zen Display" {
		t.Errorf("placeholder view = %+v", v)
	}
	if s.Email.Lines[0] != "Open Settings ->" {
		t.Errorf("placeholder lines = %q", s.Email.Lines)
	}
}

func TestBuild_TodayOnlyExample(t *testing.T) {
	raw := RawState{Calendar: RawCalendar{Items: []RawCalendarItem{
		{Start: "2026-01-08T07:50:00+01:00", Summary: "Standup"},
		{Start: "2025-01-01T09:00:00+01:00", Summary: "OldEvent"},
	}}}
	snap := Build(raw, at("2026-01-08 06:00"), true, EmailSection{})

	if len(snap.Calendar) != 1 || snap.Calendar[0].Text() != "07:50 Standup" {
		t.Errorf("Calendar = %+v, want only 07:50 Standup", snap.Calendar)
	}
}

func TestFingerprint_SameEntriesSameFingerprint(t *testing.T) {
	now := at("2026-01-08 06:00")
	a := RawState{Calendar: RawCalendar{Items: []RawCalendarItem{
		{Start: "2026-01-08T07:50:00+01:00", Summary: "Standup"},
		{Start: "2026-01-09T09:00:00+01:00", Summary: "Tomorrow"},
		{Start: "2026-01-08T10:00:00+01:00", Summary: "Design"},
	}}}
	b := RawState{Calendar: RawCalendar{Connected: true, Items: []RawCalendarItem{
		{Start: "2025-12-31T07:50:00+01:00", Summary: "Old"},
		{Start: "2026-01-08T07:50:00+01:00", Summary: "Standup"},
		{Start: "", Summary: "Broken"},
		{Start: "2026-01-08T10:00:00+01:00", Summary: "Design"},
	}}}

	fa := Build(a, now, true, EmailSection{}).Fingerprint
	fb := Build(b, now, true, EmailSection{}).Fingerprint
	if fa != fb {
		t.Errorf("fingerprints differ:\n%s\n%s", fa, fb)
	}
}
