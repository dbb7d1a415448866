package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/zen-display/internal/identity"
	"github.com/nerrad567/zen-display/internal/syncengine"
)

const (
	defaultTimeout = 15 * time.Second

	// maxBodySize bounds how much of a response is read.
	maxBodySize = 1 << 20

	headerDeviceID     = "X-Device-Id"
	headerDeviceSecret = "X-Device-Secret"
	headerRequestID    = "X-Request-ID"
)

// Doer sends an HTTP request. *http.Client implements it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options configure a Client.
type Options struct {
	BaseURL       string
	Timeout       time.Duration
	RegisterPath  string
	StatePath     string
	HeartbeatPath string
	// Firmware is sent at registration and in heartbeats, and names the
	// User-Agent.
	Firmware string
}

// Registration is the 201 body of the register endpoint.
type Registration struct {
	DeviceID      string `json:"deviceId"`
	DeviceSecret  string `json:"deviceSecret"`
	PairingToken  string `json:"pairingToken"`
	BluetoothName string `json:"bluetoothName,omitempty"`
}

type registerRequest struct {
	HardwareID      string `json:"hardwareId"`
	FirmwareVersion string `json:"firmwareVersion"`
}

// HeartbeatRequest is the heartbeat body. Link fields are omitted when
// the link quality is unknown.
type HeartbeatRequest struct {
	WiFiSSID        string `json:"wifiSsid,omitempty"`
	WiFiRSSI        *int   `json:"wifiRssi,omitempty"`
	FirmwareVersion string `json:"firmwareVersion"`
}

// Client speaks the backend's device API. It holds no device state.
type Client struct {
	opts Options
	http Doer
}

// NewClient returns a client for opts. A nil doer uses an http.Client
// with opts.Timeout.
func NewClient(opts Options, doer Doer) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RegisterPath == "" {
		opts.RegisterPath = "/devices/register"
	}
	if opts.StatePath == "" {
		opts.StatePath = "/devices/state"
	}
	if opts.HeartbeatPath == "" {
		opts.HeartbeatPath = "/devices/heartbeat"
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if doer == nil {
		doer = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{opts: opts, http: doer}
}

// Register announces hardwareID and returns the issued credentials.
func (c *Client) Register(ctx context.Context, hardwareID string) (Registration, error) {
	body := registerRequest{HardwareID: hardwareID, FirmwareVersion: c.opts.Firmware}

	resp, err := c.do(ctx, http.MethodPost, c.opts.RegisterPath, nil, body)
	if err != nil {
		return Registration{}, fmt.Errorf("register: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		drain(resp.Body)
		return Registration{}, &StatusError{Op: "register", StatusCode: resp.StatusCode}
	}

	var reg Registration
	if err := decode(resp.Body, &reg); err != nil {
		return Registration{}, fmt.Errorf("register: %w", err)
	}
	if reg.DeviceID == "" || reg.DeviceSecret == "" {
		return Registration{}, fmt.Errorf("register: %w: missing deviceId or deviceSecret", ErrMalformedResponse)
	}
	return reg, nil
}

// FetchState returns the raw calendar and email records for id.
func (c *Client) FetchState(ctx context.Context, id identity.Identity) (syncengine.RawState, error) {
	if !id.Registered() {
		return syncengine.RawState{}, ErrNotRegistered
	}

	resp, err := c.do(ctx, http.MethodGet, c.opts.StatePath, &id, nil)
	if err != nil {
		return syncengine.RawState{}, fmt.Errorf("fetch state: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		drain(resp.Body)
		return syncengine.RawState{}, &StatusError{Op: "fetch state", StatusCode: resp.StatusCode}
	}

	var raw syncengine.RawState
	if err := decode(resp.Body, &raw); err != nil {
		return syncengine.RawState{}, fmt.Errorf("fetch state: %w", err)
	}
	return raw, nil
}

// Heartbeat posts link telemetry. Any 2xx counts as delivered.
func (c *Client) Heartbeat(ctx context.Context, id identity.Identity, body HeartbeatRequest) error {
	if id.DeviceID == "" {
		return ErrNotRegistered
	}
	body.FirmwareVersion = c.opts.Firmware

	resp, err := c.do(ctx, http.MethodPost, c.opts.HeartbeatPath, &id, body)
	if err != nil {
		return fmt.Errorf("heartbeat: %w", err)
	}
	defer resp.Body.Close()
	drain(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Op: "heartbeat", StatusCode: resp.StatusCode}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, id *identity.Identity, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	req, err := http.NewRequestWithContext(ctx, method, c.opts.BaseURL+path, reader)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "zendisplay/"+c.opts.Firmware)
	req.Header.Set(headerRequestID, uuid.NewString())
	if id != nil {
		req.Header.Set(headerDeviceID, id.DeviceID)
		req.Header.Set(headerDeviceSecret, id.DeviceSecret)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

func decode(r io.Reader, v any) error {
	if err := json.NewDecoder(io.LimitReader(r, maxBodySize)).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return nil
}

func drain(r io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, maxBodySize)) //nolint:errcheck // connection reuse only
}

// cancelOnClose releases the request context once the body is closed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
