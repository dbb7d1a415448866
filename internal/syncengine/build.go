package syncengine

import (
	"strconv"
	"strings"
	"time"
)

const (
	// MaxCalendarEntries is the number of events the calendar view shows.
	MaxCalendarEntries = 3
	// MaxSenders is the number of sender slots in the email view.
	MaxSenders = 3
	// SummaryLines and SummaryWidth shape the wrapped summary block.
	SummaryLines = 6
	SummaryWidth = 18
	// MaxFingerprintLen bounds the fingerprint, in bytes.
	MaxFingerprintLen = 511

	unknownTime = "--:--"
	dateLayout  = "2006-01-02"
)

// Initial returns the placeholder snapshot shown before the first fetch.
func Initial() Snapshot {
	s := Snapshot{
		Placeholder: true,
		Email: EmailSection{
			Senders: []string{"No email", "Connect Gmail"},
			Summary: "Open Settings -> Connect Display",
		},
	}
	s.Email.Lines = WrapSummary(s.Email.Summary)
	s.Fingerprint = "initial"
	return s
}

// CalendarView returns the calendar screen's text: the highlighted event,
// the three list slots and the highlighted event's location.
func (s Snapshot) CalendarView() CalendarView {
	if s.Placeholder {
		return CalendarView{
			Selected: "Open Zen Phone app",
			Slots:    [MaxCalendarEntries]string{"Pair Zen Display", "Add calendar", ""},
		}
	}
	var v CalendarView
	for i, e := range s.Calendar {
		v.Slots[i] = e.Text()
	}
	if len(s.Calendar) > 0 {
		v.Selected = v.Slots[0]
		v.Location = s.Calendar[0].Location
	}
	return v
}

// Build turns raw records into a snapshot for the local date of now.
//
// When synced is false the date of now is not trusted and no calendar
// entry is kept. prev supplies the email section when raw carries no
// messages, so the last known mail stays on screen.
func Build(raw RawState, now time.Time, synced bool, prev EmailSection) Snapshot {
	var s Snapshot

	today := ""
	if synced {
		today = now.Format(dateLayout)
	}
	for _, item := range raw.Calendar.Items {
		if len(s.Calendar) == MaxCalendarEntries {
			break
		}
		if item.Start == "" || !onDate(item.Start, today) {
			continue
		}
		s.Calendar = append(s.Calendar, CalendarEntry{
			TimeOfDay: timeOfDay(item.Start),
			Summary:   item.Summary,
			Location:  item.Location,
		})
	}

	var first RawEmailItem
	var senders []string
	for i, item := range raw.Email.Items {
		if i == MaxSenders {
			break
		}
		if i == 0 {
			first = item
		}
		senders = append(senders, item.From)
	}

	if len(senders) > 0 {
		s.Email = EmailSection{
			Senders: senders,
			Subject: first.Subject,
			Summary: first.Snippet,
			Lines:   WrapSummary(first.Snippet),
		}
	} else {
		s.Email = prev
	}

	s.Fingerprint = Fingerprint(s.Calendar, first.Subject, firstOf(senders), first.Snippet)
	return s
}

// Fingerprint is the redraw-suppression key: calendar count, each entry's
// text, the first location and the primary email fields, cut to
// MaxFingerprintLen bytes.
func Fingerprint(calendar []CalendarEntry, subject, sender, snippet string) string {
	var b strings.Builder
	b.WriteString("cal:")
	b.WriteString(strconv.Itoa(len(calendar)))
	for _, e := range calendar {
		b.WriteString("|")
		b.WriteString(e.Text())
	}
	if len(calendar) > 0 {
		b.WriteString("|loc0:")
		b.WriteString(calendar[0].Location)
	}
	b.WriteString(";mail:")
	b.WriteString(subject)
	b.WriteString("|")
	b.WriteString(sender)
	b.WriteString("|")
	b.WriteString(snippet)
	return truncate(b.String(), MaxFingerprintLen)
}

// WrapSummary word-wraps text into SummaryLines lines of at most
// SummaryWidth characters. A line breaks at its last space when more text
// follows and that space is not the first character; otherwise it is cut
// hard at the width. Text beyond the last line is dropped.
func WrapSummary(text string) [SummaryLines]string {
	var lines [SummaryLines]string
	rest := []rune(text)

	for i := 0; i < SummaryLines && len(rest) > 0; i++ {
		n := min(len(rest), SummaryWidth)
		cut, next := n, n

		if n < len(rest) {
			if sp := lastSpace(rest[:n]); sp > 0 {
				cut, next = sp, sp+1
			}
		}
		lines[i] = string(rest[:cut])
		rest = rest[next:]
	}
	return lines
}

func lastSpace(rs []rune) int {
	for i := len(rs) - 1; i >= 0; i-- {
		if rs[i] == ' ' {
			return i
		}
	}
	return -1
}

// onDate reports whether the date part of an ISO timestamp is today.
// An empty today (clock not synced) never matches.
func onDate(start, today string) bool {
	return today != "" && len(start) >= len(dateLayout) && start[:len(dateLayout)] == today
}

// timeOfDay extracts HH:MM from "YYYY-MM-DDTHH:MM...", or "--:--" when the
// timestamp is too short to hold one.
func timeOfDay(start string) string {
	if len(start) > 16 {
		return start[11:16]
	}
	return unknownTime
}

func firstOf(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func utf8RuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
