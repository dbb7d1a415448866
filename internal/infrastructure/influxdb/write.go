package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	MeasurementLink   = "link_quality"
	MeasurementSync   = "state_sync"
	MeasurementRedraw = "redraw"
)

// WriteLinkQuality records the WiFi signal reported with each heartbeat.
//
// Example:
//
//	client.WriteLinkQuality("HomeNet", -61)
func (c *Client) WriteLinkQuality(ssid string, rssi int) {
	c.writePoint(linkPoint(c.device, ssid, rssi, time.Now()))
}

// WriteSyncResult records the outcome of a state fetch: "ok", "unclaimed"
// or "error". entries and changed are only meaningful for "ok".
func (c *Client) WriteSyncResult(outcome string, entries int, changed bool) {
	c.writePoint(syncPoint(c.device, outcome, entries, changed, time.Now()))
}

// WriteRedraw records a full panel refresh and what caused it.
func (c *Client) WriteRedraw(view, reason string) {
	c.writePoint(redrawPoint(c.device, view, reason, time.Now()))
}

func (c *Client) writePoint(p *write.Point) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(p)
}

func linkPoint(device, ssid string, rssi int, at time.Time) *write.Point {
	return write.NewPoint(
		MeasurementLink,
		map[string]string{"device": device, "ssid": ssid},
		map[string]interface{}{"rssi": rssi},
		at,
	)
}

func syncPoint(device, outcome string, entries int, changed bool, at time.Time) *write.Point {
	return write.NewPoint(
		MeasurementSync,
		map[string]string{"device": device, "outcome": outcome},
		map[string]interface{}{"calendar_entries": entries, "changed": changed},
		at,
	)
}

func redrawPoint(device, view, reason string, at time.Time) *write.Point {
	return write.NewPoint(
		MeasurementRedraw,
		map[string]string{"device": device, "view": view, "reason": reason},
		map[string]interface{}{"count": 1},
		at,
	)
}
