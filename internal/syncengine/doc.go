// Package syncengine normalizes backend state into the snapshot the panel
// shows and decides whether a fetch warrants a redraw.
//
// Calendar events are filtered to the local "today" and capped at three.
// Email keeps up to three senders, with the first message's snippet as
// the summary, wrapped into six lines of eighteen characters. Each
// snapshot carries a fingerprint; equal fingerprints mean the panel would
// look the same and must not be refreshed.
package syncengine
