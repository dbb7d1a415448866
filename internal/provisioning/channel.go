package provisioning

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/nerrad567/zen-display/internal/identity"
)

// Status is a provisioning status token shown to the pairing app.
type Status string

const (
	StatusIdle            Status = "idle"
	StatusConnecting      Status = "connecting"
	StatusWiFiConnected   Status = "wifi_connected"
	StatusWiFiFailed      Status = "wifi_failed"
	StatusRegistered      Status = "registered"
	StatusWaitingForClaim Status = "waiting_for_claim"
	StatusReady           Status = "ready"
)

// Pairing is the payload of the pairing slot.
type Pairing struct {
	DeviceID string `json:"deviceId"`
	Token    string `json:"token"`
}

// JSON encodes p the way every transport publishes it.
func (p Pairing) JSON() []byte {
	b, _ := json.Marshal(p) //nolint:errcheck // two string fields always encode
	return b
}

// Sink receives raw credential writes. It returns false when the payload
// was discarded.
type Sink func(payload []byte) bool

// Notifier receives the outbound slots.
type Notifier interface {
	PublishPairing(p Pairing) error
	PublishStatus(s Status) error
}

// Transport carries the channel over one medium.
type Transport interface {
	Notifier

	// Start begins accepting writes, delivering each to sink.
	Start(ctx context.Context, sink Sink) error

	// Rename changes the name the transport advertises.
	Rename(name string) error

	Close() error
}

// Logger defines the logging interface for the channel.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Channel is the local pairing channel: a credentials mailbox written by
// transports and drained by the control loop, plus the pairing and status
// slots the loop publishes.
//
// HandleWrite may run on any goroutine. Everything else is called from
// the control loop.
type Channel struct {
	logger Logger

	mu      sync.Mutex
	pending identity.WiFiCredentials
	ready   atomic.Bool

	stateMu    sync.RWMutex
	pairing    Pairing
	status     Status
	name       string
	transports []Transport
	notifiers  []Notifier
}

// NewChannel returns a channel publishing to the given transports.
func NewChannel(transports ...Transport) *Channel {
	return &Channel{
		logger:     noopLogger{},
		status:     StatusIdle,
		transports: transports,
	}
}

// SetLogger sets the logger for the channel.
func (c *Channel) SetLogger(logger Logger) {
	c.logger = logger
}

// AddNotifier registers an extra receiver for pairing and status updates.
// The current values are pushed to it immediately.
func (c *Channel) AddNotifier(n Notifier) {
	c.stateMu.Lock()
	c.notifiers = append(c.notifiers, n)
	p, s := c.pairing, c.status
	c.stateMu.Unlock()

	_ = n.PublishPairing(p) //nolint:errcheck // best effort
	_ = n.PublishStatus(s)  //nolint:errcheck // best effort
}

// Start starts every transport with the display name to advertise.
// A transport that fails to start is logged and skipped.
func (c *Channel) Start(ctx context.Context, name string) error {
	c.stateMu.Lock()
	c.name = name
	transports := c.transports
	c.stateMu.Unlock()

	var errs []error
	for _, t := range transports {
		if err := t.Start(ctx, c.HandleWrite); err != nil {
			c.logger.Error("provisioning transport failed to start", "error", err)
			errs = append(errs, err)
			continue
		}
		if err := t.Rename(name); err != nil {
			c.logger.Warn("provisioning transport rename failed", "error", err)
		}
	}
	if len(errs) > 0 && len(errs) == len(transports) {
		return fmt.Errorf("starting provisioning transports: %w", errors.Join(errs...))
	}
	return nil
}

// HandleWrite parses a raw "ssid\npassword" write and stores it in the
// mailbox, replacing any unconsumed value. The SSID is everything before
// the first newline; the password is everything after it and may itself
// contain newlines.
func (c *Channel) HandleWrite(payload []byte) bool {
	creds, err := ParseCredentials(payload)
	if err != nil {
		c.logger.Warn("discarding credentials write", "error", err, "bytes", len(payload))
		return false
	}

	c.mu.Lock()
	c.pending = creds
	c.ready.Store(true)
	c.mu.Unlock()

	c.logger.Info("credentials received", "ssid", creds.SSID)
	return true
}

// Take returns the pending credentials and clears the mailbox. The second
// result is false when nothing arrived since the last Take.
func (c *Channel) Take() (identity.WiFiCredentials, bool) {
	if !c.ready.Load() {
		return identity.WiFiCredentials{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ready.Swap(false) {
		return identity.WiFiCredentials{}, false
	}
	creds := c.pending
	c.pending = identity.WiFiCredentials{}
	return creds, true
}

// PublishPairing updates the pairing slot from id.
func (c *Channel) PublishPairing(id identity.Identity) {
	p := Pairing{DeviceID: id.DeviceID, Token: id.PairingToken}

	c.stateMu.Lock()
	c.pairing = p
	c.stateMu.Unlock()

	c.each(func(n Notifier) error { return n.PublishPairing(p) })
}

// PublishStatus updates the status slot.
func (c *Channel) PublishStatus(s Status) {
	c.stateMu.Lock()
	c.status = s
	c.stateMu.Unlock()

	c.logger.Debug("provisioning status", "status", s)
	c.each(func(n Notifier) error { return n.PublishStatus(s) })
}

// Rename changes the advertised name on every transport.
func (c *Channel) Rename(name string) {
	c.stateMu.Lock()
	if c.name == name {
		c.stateMu.Unlock()
		return
	}
	c.name = name
	transports := c.transports
	c.stateMu.Unlock()

	for _, t := range transports {
		if err := t.Rename(name); err != nil {
			c.logger.Warn("provisioning transport rename failed", "error", err)
		}
	}
}

// Pairing returns the last published pairing value.
func (c *Channel) Pairing() Pairing {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.pairing
}

// Status returns the last published status.
func (c *Channel) Status() Status {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.status
}

// Name returns the advertised display name.
func (c *Channel) Name() string {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.name
}

// Close stops every transport. The channel is unusable afterwards.
func (c *Channel) Close() error {
	c.stateMu.Lock()
	transports := c.transports
	c.transports = nil
	c.stateMu.Unlock()

	var errs []error
	for _, t := range transports {
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Channel) each(fn func(Notifier) error) {
	c.stateMu.RLock()
	targets := make([]Notifier, 0, len(c.transports)+len(c.notifiers))
	for _, t := range c.transports {
		targets = append(targets, t)
	}
	targets = append(targets, c.notifiers...)
	c.stateMu.RUnlock()

	for _, n := range targets {
		if err := fn(n); err != nil {
			c.logger.Warn("provisioning publish failed", "error", err)
		}
	}
}

// ParseCredentials splits a raw write at its first newline.
func ParseCredentials(payload []byte) (identity.WiFiCredentials, error) {
	if len(payload) == 0 {
		return identity.WiFiCredentials{}, ErrEmptyPayload
	}
	ssid, password, found := bytes.Cut(payload, []byte{'\n'})
	if !found {
		return identity.WiFiCredentials{}, ErrNoSeparator
	}
	return identity.WiFiCredentials{SSID: string(ssid), Password: string(password)}, nil
}
