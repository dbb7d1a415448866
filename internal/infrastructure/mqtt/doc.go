// Package mqtt provides the broker connection used by the display.
//
// The controller talks to two neighbouring processes over a local broker:
// the BLE peripheral daemon, which relays provisioning writes and
// notifications, and the panel driver, which paints frames. Each display
// owns the topic subtree zendisplay/{device}/...
//
// This package manages:
//   - Connection with auto-reconnect and subscription restoration
//   - Retained online status and an offline Last Will
//   - Publish/subscribe with input validation and handler panic recovery
//
// # Usage
//
//	client, err := mqtt.Connect(ctx, cfg.MQTT, hardwareID)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.PublishRetained(client.Topics().ProvisioningStatus(), []byte("idle"))
package mqtt
