package identity

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// Identity is the registration record issued by the backend.
// DeviceID and DeviceSecret are either both set or both empty.
type Identity struct {
	DeviceID     string
	DeviceSecret string
	PairingToken string
	// DisplayName is the name advertised on the provisioning channel.
	DisplayName string
}

// Registered reports whether the device holds backend credentials.
func (i Identity) Registered() bool {
	return i.DeviceID != "" && i.DeviceSecret != ""
}

// Validate rejects a half-populated id/secret pair.
func (i Identity) Validate() error {
	if (i.DeviceID == "") != (i.DeviceSecret == "") {
		return ErrPartialRegistration
	}
	return nil
}

// WithoutRegistration returns i with id, secret and token cleared. The
// display name survives.
func (i Identity) WithoutRegistration() Identity {
	return Identity{DisplayName: i.DisplayName}
}

// WiFiCredentials are the stored network credentials.
type WiFiCredentials struct {
	SSID     string
	Password string
}

// DefaultDisplayName builds "<prefix>-XXXX" from the low 16 bits of the
// hardware id. MAC addresses contribute their last two octets; any other
// id is hashed.
func DefaultDisplayName(prefix, hardwareID string) string {
	return fmt.Sprintf("%s-%04X", prefix, low16(hardwareID))
}

func low16(hardwareID string) uint16 {
	hex := strings.NewReplacer(":", "", "-", "").Replace(hardwareID)
	if len(hex) == 12 {
		if v, err := strconv.ParseUint(hex[8:], 16, 16); err == nil {
			return uint16(v)
		}
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(hardwareID)) //nolint:errcheck // hash writes never fail
	return uint16(h.Sum32() & 0xFFFF)
}
