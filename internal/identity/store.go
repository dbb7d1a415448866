package identity

import (
	"context"
	"fmt"

	"github.com/nerrad567/zen-display/internal/prefs"
)

// Persisted keys.
const (
	KeyWiFiSSID     = "wifi_ssid"
	KeyWiFiPassword = "wifi_pass"
	KeyDeviceID     = "device_id"
	KeyDeviceSecret = "device_secret"
	KeyPairingToken = "pairing_token"
	KeyDisplayName  = "ble_name"
	KeyFirmware     = "fw"
	KeyHardwareID   = "hardware_id"
)

var (
	registrationKeys = []string{KeyDeviceID, KeyDeviceSecret, KeyPairingToken}

	// factoryKeys are erased by a factory reset. The generated hardware id
	// is not among them: it names the unit, not the owner.
	factoryKeys = []string{
		KeyWiFiSSID, KeyWiFiPassword,
		KeyDeviceID, KeyDeviceSecret, KeyPairingToken,
		KeyDisplayName, KeyFirmware,
	}
)

// Store reads and writes identity fields through a prefs.Store.
type Store struct {
	prefs prefs.Store
}

func NewStore(p prefs.Store) *Store {
	return &Store{prefs: p}
}

// Load returns the persisted identity. Missing keys read as empty. A
// stored record with only one of id/secret is treated as unregistered.
func (s *Store) Load(ctx context.Context) (Identity, error) {
	var id Identity
	for key, dst := range map[string]*string{
		KeyDeviceID:     &id.DeviceID,
		KeyDeviceSecret: &id.DeviceSecret,
		KeyPairingToken: &id.PairingToken,
		KeyDisplayName:  &id.DisplayName,
	} {
		v, _, err := s.prefs.Get(ctx, key)
		if err != nil {
			return Identity{}, fmt.Errorf("loading identity: %w", err)
		}
		*dst = v
	}
	if id.Validate() != nil {
		return id.WithoutRegistration(), nil
	}
	return id, nil
}

// Save persists all four identity fields in one write.
func (s *Store) Save(ctx context.Context, id Identity) error {
	if err := id.Validate(); err != nil {
		return err
	}
	err := s.prefs.Put(ctx, map[string]string{
		KeyDeviceID:     id.DeviceID,
		KeyDeviceSecret: id.DeviceSecret,
		KeyPairingToken: id.PairingToken,
		KeyDisplayName:  id.DisplayName,
	})
	if err != nil {
		return fmt.Errorf("saving identity: %w", err)
	}
	return nil
}

// ClearRegistration erases id, secret and token.
func (s *Store) ClearRegistration(ctx context.Context) error {
	if err := s.prefs.Remove(ctx, registrationKeys...); err != nil {
		return fmt.Errorf("clearing registration: %w", err)
	}
	return nil
}

// LoadWiFi returns the stored network credentials.
func (s *Store) LoadWiFi(ctx context.Context) (WiFiCredentials, error) {
	ssid, _, err := s.prefs.Get(ctx, KeyWiFiSSID)
	if err != nil {
		return WiFiCredentials{}, fmt.Errorf("loading wifi ssid: %w", err)
	}
	pass, _, err := s.prefs.Get(ctx, KeyWiFiPassword)
	if err != nil {
		return WiFiCredentials{}, fmt.Errorf("loading wifi password: %w", err)
	}
	return WiFiCredentials{SSID: ssid, Password: pass}, nil
}

// SaveWiFi stores network credentials after a successful join.
func (s *Store) SaveWiFi(ctx context.Context, creds WiFiCredentials) error {
	if err := s.prefs.Put(ctx, map[string]string{
		KeyWiFiSSID:     creds.SSID,
		KeyWiFiPassword: creds.Password,
	}); err != nil {
		return fmt.Errorf("saving wifi credentials: %w", err)
	}
	return nil
}

// SaveFirmware records the firmware version the registration was made with.
func (s *Store) SaveFirmware(ctx context.Context, version string) error {
	if err := s.prefs.Put(ctx, map[string]string{KeyFirmware: version}); err != nil {
		return fmt.Errorf("saving firmware marker: %w", err)
	}
	return nil
}

// Firmware returns the recorded firmware marker, if any.
func (s *Store) Firmware(ctx context.Context) (string, error) {
	v, _, err := s.prefs.Get(ctx, KeyFirmware)
	if err != nil {
		return "", fmt.Errorf("loading firmware marker: %w", err)
	}
	return v, nil
}

// Wipe erases every identity and WiFi field.
func (s *Store) Wipe(ctx context.Context) error {
	if err := s.prefs.Remove(ctx, factoryKeys...); err != nil {
		return fmt.Errorf("wiping identity: %w", err)
	}
	return nil
}
