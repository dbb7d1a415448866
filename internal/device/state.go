package device

import (
	"github.com/nerrad567/zen-display/internal/identity"
	"github.com/nerrad567/zen-display/internal/syncengine"
)

// Mode is the view currently on the panel.
type Mode string

const (
	ModeProvisioning Mode = "provisioning"
	ModeCalendar     Mode = "calendar"
	ModeEmail        Mode = "email"
)

// Connection is the network link state, derived each tick.
type Connection int

const (
	Disconnected Connection = iota
	Connected
)

func (c Connection) String() string {
	if c == Connected {
		return "connected"
	}
	return "disconnected"
}

// State is the single mutable aggregate of the display. The control loop
// owns it and passes it by pointer to every operation; no component keeps
// a copy.
type State struct {
	HardwareID      string
	FirmwareVersion string

	Identity identity.Identity
	WiFi     identity.WiFiCredentials

	Connection Connection
	// StateReady is set after a successful state fetch and cleared whenever
	// registration changes or the backend reports the device unclaimed.
	StateReady bool

	Mode     Mode
	Snapshot syncengine.Snapshot
	// MinutePending marks that the displayed HH:MM changed and the next
	// redraw should happen even if content is unchanged.
	MinutePending bool
}

// New returns the factory state for a device.
func New(hardwareID, firmware, displayName string) *State {
	return &State{
		HardwareID:      hardwareID,
		FirmwareVersion: firmware,
		Identity:        identity.Identity{DisplayName: displayName},
		Mode:            ModeProvisioning,
		Snapshot:        syncengine.Initial(),
	}
}

// Registered reports whether backend credentials are present.
func (s *State) Registered() bool {
	return s.Identity.Registered()
}

// Online reports whether the link is up.
func (s *State) Online() bool {
	return s.Connection == Connected
}

// FactoryReset returns s to the state of a device that was never set up,
// keeping only hardware facts and the given display name.
func (s *State) FactoryReset(displayName string) {
	*s = *New(s.HardwareID, s.FirmwareVersion, displayName)
}

// Status is a read-only copy of the externally visible state.
type Status struct {
	HardwareID      string `json:"hardwareId"`
	FirmwareVersion string `json:"firmwareVersion"`
	DeviceID        string `json:"deviceId,omitempty"`
	DisplayName     string `json:"displayName"`
	SSID            string `json:"wifiSsid,omitempty"`
	Connection      string `json:"connection"`
	Registered      bool   `json:"registered"`
	StateReady      bool   `json:"stateReady"`
	Mode            Mode   `json:"mode"`
	Fingerprint     string `json:"fingerprint"`
	CalendarEntries int    `json:"calendarEntries"`
}

// Status copies the visible fields. Secrets are never included.
func (s *State) Status() Status {
	return Status{
		HardwareID:      s.HardwareID,
		FirmwareVersion: s.FirmwareVersion,
		DeviceID:        s.Identity.DeviceID,
		DisplayName:     s.Identity.DisplayName,
		SSID:            s.WiFi.SSID,
		Connection:      s.Connection.String(),
		Registered:      s.Registered(),
		StateReady:      s.StateReady,
		Mode:            s.Mode,
		Fingerprint:     s.Snapshot.Fingerprint,
		CalendarEntries: len(s.Snapshot.Calendar),
	}
}
