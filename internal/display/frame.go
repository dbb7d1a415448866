package display

import (
	"time"

	"github.com/nerrad567/zen-display/internal/device"
	"github.com/nerrad567/zen-display/internal/syncengine"
)

// Frame is one full-screen image, described as text. Exactly one of
// Provisioning, Calendar and Email is set, matching View.
type Frame struct {
	View   device.Mode `json:"view"`
	Reason string      `json:"reason"`

	// Clock is the HH:MM shown in the header, "--:--" until the clock
	// is synced.
	Clock      string    `json:"clock"`
	RenderedAt time.Time `json:"renderedAt"`

	Provisioning *ProvisioningText        `json:"provisioning,omitempty"`
	Calendar     *syncengine.CalendarView `json:"calendar,omitempty"`
	Email        *EmailView               `json:"email,omitempty"`
}

// ProvisioningText is the copy of the setup screen.
type ProvisioningText struct {
	Headline string `json:"headline"`
	Line1    string `json:"line1"`
	Line2    string `json:"line2"`
	Line3    string `json:"line3"`
}

// EmailView is the text of the email screen. Selected is the highlighted
// sender; Primary and Secondary fill the list below it.
type EmailView struct {
	Selected  string                          `json:"selected"`
	Primary   string                          `json:"primary"`
	Secondary string                          `json:"secondary"`
	Subject   string                          `json:"subject"`
	Summary   [syncengine.SummaryLines]string `json:"summary"`
}

// Redraw reasons.
const (
	ReasonPromote      = "promote"
	ReasonContent      = "content"
	ReasonMinute       = "minute"
	ReasonToggle       = "toggle"
	ReasonProvisioning = "provisioning"
)

func provisioningText(st *device.State) ProvisioningText {
	headline := "Setup this display"
	if st.Online() {
		headline = "Waiting for pairing"
	}
	return ProvisioningText{
		Headline: headline,
		Line1:    "Open the Zen AI Phone app",
		Line2:    "Tap 'Connect Display' and follow the instructions",
		Line3:    "Select BLE " + st.Identity.DisplayName,
	}
}

func emailView(e syncengine.EmailSection) *EmailView {
	return &EmailView{
		Selected:  e.Sender(0),
		Primary:   e.Sender(1),
		Secondary: e.Sender(2),
		Subject:   e.Subject,
		Summary:   e.Lines,
	}
}
