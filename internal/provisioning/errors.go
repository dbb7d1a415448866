package provisioning

import "errors"

var (
	// ErrEmptyPayload is reported for a write with no bytes.
	ErrEmptyPayload = errors.New("provisioning: empty credentials payload")

	// ErrNoSeparator is reported for a write without the "\n" between
	// SSID and password.
	ErrNoSeparator = errors.New("provisioning: credentials payload has no newline")
)
