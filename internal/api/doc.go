// Package api implements the display's local HTTP API and WebSocket
// notification stream.
//
// This package provides:
//   - Read-only status of the lifecycle loop
//   - The provisioning surface: pairing info, status token and a
//     credentials endpoint that feeds the same mailbox as the radio bridge
//   - A WebSocket hub that pushes pairing and status changes
//   - Middleware stack (request ID, logging, recovery, body limit)
//
// # Architecture
//
// The server is a provisioning transport like the MQTT bridge. Writes to
// POST /api/v1/provisioning/credentials go through
// provisioning.Channel.HandleWrite, and the Hub is registered as a
// provisioning.Notifier so every status or pairing change reaches
// connected WebSocket clients.
//
// The server binds to loopback by default. It carries no authentication:
// it is meant for the companion process on the device itself.
package api
