package mqtt

import (
	"fmt"
	"strings"
)

// TopicPrefix is the root of every topic this controller uses.
const TopicPrefix = "zendisplay"

// Topics builds the per-device topic tree:
//
//	zendisplay/{device}/provisioning/credentials   inbound "ssid\npassword"
//	zendisplay/{device}/provisioning/pairing       retained {"deviceId","token"}
//	zendisplay/{device}/provisioning/status        retained status token
//	zendisplay/{device}/provisioning/name          retained advertised name
//	zendisplay/{device}/display/frame              retained rendered frame
//	zendisplay/{device}/system/status              online/offline (LWT)
//
// The device segment is the hardware id with separators removed, so a MAC
// of "AA:BB:CC:DD:EE:FF" becomes "aabbccddeeff".
type Topics struct {
	Device string
}

// NewTopics returns topic builders for the given hardware id.
func NewTopics(hardwareID string) Topics {
	return Topics{Device: sanitiseSegment(hardwareID)}
}

func (t Topics) base() string {
	return fmt.Sprintf("%s/%s", TopicPrefix, t.Device)
}

// ProvisioningCredentials is the inbound credentials topic.
func (t Topics) ProvisioningCredentials() string {
	return t.base() + "/provisioning/credentials"
}

// ProvisioningPairing carries the latest pairing info.
func (t Topics) ProvisioningPairing() string {
	return t.base() + "/provisioning/pairing"
}

// ProvisioningStatus carries the latest lifecycle status token.
func (t Topics) ProvisioningStatus() string {
	return t.base() + "/provisioning/status"
}

// ProvisioningName carries the advertised provisioning name.
func (t Topics) ProvisioningName() string {
	return t.base() + "/provisioning/name"
}

// DisplayFrame carries the frame the panel driver should paint.
func (t Topics) DisplayFrame() string {
	return t.base() + "/display/frame"
}

// SystemStatus is the online/offline topic, also used for the LWT.
func (t Topics) SystemStatus() string {
	return t.base() + "/system/status"
}

// All matches every topic of this device.
func (t Topics) All() string {
	return t.base() + "/#"
}

// sanitiseSegment lower-cases id and drops characters that are not safe in
// a single topic level.
func sanitiseSegment(id string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(id) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}
