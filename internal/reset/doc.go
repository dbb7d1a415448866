// Package reset implements the factory-reset button: erase the stored
// identity and WiFi credentials, return the in-memory state to factory
// defaults, stop the provisioning transports and ask for a restart.
package reset
