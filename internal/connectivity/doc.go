// Package connectivity manages the WiFi link and wall-clock sync.
//
// Connect joins a network and polls the link until it is up or the
// connect timeout passes; a successful connect persists the credentials,
// syncs the clock over NTP and applies the display's time zone. Ensure is
// called on every control-loop tick and reconnects with the stored
// credentials when the link has dropped.
//
// On Linux the link is NetworkManager, driven through nmcli.
package connectivity
