package connectivity

import "context"

// Link is the WiFi radio.
type Link interface {
	// Join starts associating with a network. It does not wait for the
	// association to finish; poll Connected for that.
	Join(ctx context.Context, ssid, password string) error

	// Connected reports whether the link is associated and has an address.
	Connected(ctx context.Context) bool

	// Quality reports the active network and its signal strength.
	Quality(ctx context.Context) (Quality, error)
}

// Quality describes the active network for heartbeats.
type Quality struct {
	SSID string
	// RSSI is the signal strength in dBm.
	RSSI int
}
