// Package input turns raw button readings into debounced presses.
//
// Both physical buttons (mode and factory reset) use the same Debouncer.
// Readings are timed with the clock package's monotonic Elapsed so tests
// can drive presses with a manual clock.
package input
