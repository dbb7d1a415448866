package syncengine

// RawState is the body of a 200 response from the state endpoint.
type RawState struct {
	Calendar RawCalendar `json:"calendar"`
	Email    RawEmail    `json:"email"`
}

// RawCalendar is the calendar section of RawState.
type RawCalendar struct {
	Connected bool             `json:"connected"`
	Items     []RawCalendarItem `json:"items"`
}

// RawCalendarItem is one event as sent by the backend. Start is an
// ISO 8601 timestamp in the display's local offset.
type RawCalendarItem struct {
	Start    string `json:"start"`
	Summary  string `json:"summary"`
	Location string `json:"location"`
}

// RawEmail is the email section of RawState.
type RawEmail struct {
	Connected bool           `json:"connected"`
	Items     []RawEmailItem `json:"items"`
}

// RawEmailItem is one message summary as sent by the backend.
type RawEmailItem struct {
	From    string `json:"from"`
	Subject string `json:"subject"`
	Snippet string `json:"snippet"`
}

// CalendarEntry is a kept, display-ready event.
type CalendarEntry struct {
	TimeOfDay string `json:"timeOfDay"`
	Summary   string `json:"summary"`
	Location  string `json:"location,omitempty"`
}

// Text is the line shown on the panel, e.g. "07:50 Standup".
func (e CalendarEntry) Text() string {
	return e.TimeOfDay + " " + e.Summary
}

// CalendarView is the text of the calendar screen.
type CalendarView struct {
	Selected string                     `json:"selected"`
	Slots    [MaxCalendarEntries]string `json:"slots"`
	Location string                     `json:"location"`
}

// EmailSection is what the email view shows. Senders holds up to three
// senders in input order; Subject and Summary come from the first message.
type EmailSection struct {
	Senders []string             `json:"senders"`
	Subject string               `json:"subject"`
	Summary string               `json:"summary"`
	Lines   [SummaryLines]string `json:"lines"`
}

// Snapshot is the display-ready result of a state fetch.
type Snapshot struct {
	// Calendar holds up to three of today's events. An empty slice after a
	// fetch means "nothing today", not "no data".
	Calendar []CalendarEntry `json:"calendar"`

	// Placeholder is true only for the snapshot shown before the first
	// successful fetch.
	Placeholder bool `json:"placeholder"`

	Email       EmailSection `json:"email"`
	Fingerprint string       `json:"fingerprint"`
}

// HasCalendar reports whether the calendar view has anything to show.
// The pre-fetch placeholder counts as content.
func (s Snapshot) HasCalendar() bool {
	return s.Placeholder || len(s.Calendar) > 0
}

// Result is the outcome of Engine.Apply.
type Result struct {
	Snapshot Snapshot

	// Changed is true when the fingerprint differs from the previous fetch.
	Changed bool
}

// Sender returns the sender in slot i, or "" when the slot is empty.
func (e EmailSection) Sender(i int) string {
	if i < 0 || i >= len(e.Senders) {
		return ""
	}
	return e.Senders[i]
}
