package identity

import "errors"

var (
	// ErrPartialRegistration is returned when only one of device id and
	// device secret is set.
	ErrPartialRegistration = errors.New("identity: device id and secret must be set together")

	// ErrNoHardwareID is returned when no interface address can be read
	// and no fallback id could be stored.
	ErrNoHardwareID = errors.New("identity: no hardware id available")
)
