// Package lifecycle is the display's control loop.
//
// Each tick, in order: check the header clock, sample the reset button,
// apply newly provisioned WiFi credentials, keep the link up, make sure
// the device is registered, send the heartbeat, fetch state when due and
// sample the mode button. The tick returns the delay before the next one,
// which is longer while offline or still waiting on the backend.
//
// All device state lives in one device.State owned by the Orchestrator.
// The only concurrent writer is the provisioning channel's mailbox.
package lifecycle
