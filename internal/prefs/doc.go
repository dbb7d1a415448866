// Package prefs persists the display's small set of key-value fields
// (WiFi credentials, registration, advertised name, firmware marker).
package prefs
