// Package display owns what the e-ink panel shows.
//
// The panel refresh is slow and visible, so Controller redraws only on a
// mode change, new content, a minute tick, or the provisioning screen's
// own text change or refresh interval. A frame is handed to a Renderer;
// the MQTT renderer publishes it for the panel driver and the log
// renderer is for development.
package display
