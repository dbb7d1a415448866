// Package influxdb records display telemetry in InfluxDB.
//
// Three measurements are written, all tagged with the hardware id:
//   - link_quality: WiFi RSSI sampled at heartbeat time
//   - state_sync: outcome of each backend state fetch
//   - redraw: every full panel refresh, tagged with view and reason
//
// The integration is optional. With influxdb.enabled false, Connect returns
// ErrDisabled and the controller runs without telemetry.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB, hardwareID)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteRedraw("calendar", "content_changed")
package influxdb
