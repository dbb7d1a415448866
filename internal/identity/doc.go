// Package identity holds the device's registration record and the WiFi
// credentials stored next to it.
//
// The record is written only after a successful registration and erased
// on new provisioning credentials (registration part only) or a factory
// reset (everything). Fields are kept in the zen_disp preferences
// namespace under wifi_ssid, wifi_pass, device_id, device_secret,
// pairing_token, ble_name and fw.
package identity
