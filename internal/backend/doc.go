// Package backend talks to the Zen backend's device API.
//
// Client is the wire layer: register, fetch state and heartbeat, with
// JSON bodies and device credentials in X-Device-Id / X-Device-Secret.
// Session applies those calls to the device state the control loop owns.
//
// There is no retry or backoff here. A failed call is simply made again
// at its next scheduled tick.
//
// Error Handling:
//   - ErrUnclaimed: the state endpoint answered 409
//   - ErrUnexpectedStatus: any other unexpected HTTP status (see StatusError)
//   - ErrMalformedResponse: a body that could not be decoded or lacks
//     required fields
package backend
