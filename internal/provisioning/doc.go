// Package provisioning implements the local pairing channel.
//
// A phone app writes "ssid\npassword" to the channel; the control loop
// picks the credentials up on its next tick. In the other direction the
// loop publishes a pairing slot ({"deviceId","token"}) and a status token
// so the app can follow along. Transports carry the channel over a medium
// (MQTT here); notifiers such as the local API's WebSocket hub only
// receive the outbound slots.
//
// Thread Safety:
//   - HandleWrite may be called from transport goroutines at any time.
//     The mailbox holds one value; a newer write replaces an unconsumed one.
//   - All other methods belong to the control loop.
package provisioning
