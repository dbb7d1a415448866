// Package clock provides the time source for the control loop.
//
// All periodic work (state refresh, heartbeat, provisioning redraw, the
// minute check) is expressed as an Interval compared against monotonic
// Elapsed time. Tests drive a Manual clock instead of sleeping.
package clock
