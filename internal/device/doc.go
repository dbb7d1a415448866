// Package device defines the display's state aggregate: identity, WiFi
// credentials, link state, registration progress, current view and the
// last synchronized snapshot.
package device
