package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/zen-display/internal/device"
	"github.com/nerrad567/zen-display/internal/identity"
	"github.com/nerrad567/zen-display/internal/infrastructure/config"
	"github.com/nerrad567/zen-display/internal/infrastructure/logging"
	"github.com/nerrad567/zen-display/internal/provisioning"
)

type fakeStatus struct{ status device.Status }

func (f fakeStatus) Status() device.Status { return f.status }

func newTestServer(t *testing.T) (*Server, *provisioning.Channel, *httptest.Server) {
	t.Helper()
	ch := provisioning.NewChannel()
	if err := ch.Start(context.Background(), "ZenDisplay-EEFF"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	srv, err := New(Deps{
		Config:       config.APIConfig{Host: "127.0.0.1"},
		Logger:       logging.Discard(),
		Status:       fakeStatus{device.Status{HardwareID: "aa:bb", Mode: device.ModeCalendar, StateReady: true}},
		Provisioning: ch,
		Version:      "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ch.AddNotifier(srv.Hub())

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ch, ts
}

func TestNew_RequiresDeps(t *testing.T) {
	if _, err := New(Deps{}); err == nil {
		t.Error("New() with no logger should fail")
	}
	if _, err := New(Deps{Logger: logging.Discard()}); err == nil {
		t.Error("New() with no status source should fail")
	}
	if _, err := New(Deps{Logger: logging.Discard(), Status: fakeStatus{}}); err == nil {
		t.Error("New() with no provisioning channel should fail")
	}
}

func TestReadEndpoints(t *testing.T) {
	_, ch, ts := newTestServer(t)
	ch.PublishPairing(identity.Identity{DeviceID: "dev-1", PairingToken: "tok"})
	ch.PublishStatus(provisioning.StatusReady)

	tests := []struct {
		path string
		want map[string]any
	}{
		{"/api/v1/health", map[string]any{"status": "ok", "version": "test"}},
		{"/api/v1/status", map[string]any{"hardwareId": "aa:bb", "mode": "calendar", "stateReady": true}},
		{"/api/v1/provisioning/pairing", map[string]any{"deviceId": "dev-1", "token": "tok"}},
		{"/api/v1/provisioning/status", map[string]any{"status": "ready", "name": "ZenDisplay-EEFF"}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(ts.URL + tt.path)
			if err != nil {
				t.Fatalf("GET error = %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			if resp.Header.Get("X-Request-ID") == "" {
				t.Error("missing X-Request-ID")
			}
			var got map[string]any
			if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("%s = %v, want %v", k, got[k], v)
				}
			}
		})
	}
}

func TestCredentials(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
		wantErr  string
		wantSSID string
	}{
		{"valid", "HomeNet\nhunter2", http.StatusAccepted, "", "HomeNet"},
		{"open network", "Cafe\n", http.StatusAccepted, "", "Cafe"},
		{"no separator", "HomeNet", http.StatusBadRequest, CodeInvalidCredentials, ""},
		{"empty", "", http.StatusBadRequest, CodeInvalidCredentials, ""},
		{"oversized", "x\n" + strings.Repeat("p", 600), http.StatusBadRequest, CodeCredentialsTooLarge, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ch, ts := newTestServer(t)

			resp, err := http.Post(ts.URL+"/api/v1/provisioning/credentials", "text/plain", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("POST error = %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantCode {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantCode)
			}
			if tt.wantErr != "" {
				var body ErrorBody
				if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Code != tt.wantErr {
					t.Errorf("error body = %+v (%v), want code %q", body, err, tt.wantErr)
				}
			}
			creds, ok := ch.Take()
			if ok != (tt.wantSSID != "") || creds.SSID != tt.wantSSID {
				t.Errorf("Take() = %+v, %v", creds, ok)
			}
		})
	}
}

func TestNotFound(t *testing.T) {
	_, _, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/v1/nope")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body ErrorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound || body.Code != CodeNotFound {
		t.Errorf("got %d %+v", resp.StatusCode, body)
	}
}

func TestRecovery(t *testing.T) {
	srv, _, _ := newTestServer(t)
	h := srv.recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
}

func readEvent(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	//nolint:errcheck // test deadline
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg WSMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return msg
}

func TestWebSocketPushesProvisioningEvents(t *testing.T) {
	srv, ch, ts := newTestServer(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	resp.Body.Close()
	defer conn.Close()

	// Replay of the values pushed when the hub was added as a notifier.
	if msg := readEvent(t, conn); msg.EventType != ChannelPairing {
		t.Errorf("first replay = %+v", msg)
	}
	msg := readEvent(t, conn)
	if msg.EventType != ChannelStatus || msg.Payload.(map[string]any)["status"] != "idle" {
		t.Errorf("second replay = %+v", msg)
	}
	if srv.Hub().ClientCount() != 1 {
		t.Errorf("ClientCount() = %d", srv.Hub().ClientCount())
	}

	ch.PublishStatus(provisioning.StatusConnecting)
	msg = readEvent(t, conn)
	if msg.Type != WSTypeEvent || msg.Payload.(map[string]any)["status"] != "connecting" {
		t.Errorf("status event = %+v", msg)
	}

	if err := conn.WriteJSON(map[string]string{"type": WSTypePing, "id": "p1"}); err != nil {
		t.Fatal(err)
	}
	if msg := readEvent(t, conn); msg.Type != WSTypePong || msg.ID != "p1" {
		t.Errorf("pong = %+v", msg)
	}

	if err := conn.WriteJSON(map[string]any{
		"type":    WSTypeUnsubscribe,
		"id":      "u1",
		"payload": map[string]any{"channels": []string{ChannelStatus}},
	}); err != nil {
		t.Fatal(err)
	}
	if msg := readEvent(t, conn); msg.Type != WSTypeResponse || msg.ID != "u1" {
		t.Errorf("unsubscribe response = %+v", msg)
	}

	ch.PublishStatus(provisioning.StatusReady)
	ch.PublishPairing(identity.Identity{DeviceID: "dev-2"})
	if msg := readEvent(t, conn); msg.EventType != ChannelPairing {
		t.Errorf("unsubscribed status leaked: %+v", msg)
	}
}

func TestServerStartClose(t *testing.T) {
	ch := provisioning.NewChannel()
	srv, err := New(Deps{
		Config:       config.APIConfig{Host: "127.0.0.1", Port: 0},
		Logger:       logging.Discard(),
		Status:       fakeStatus{},
		Provisioning: ch,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := srv.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck() before Start should fail")
	}
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	resp, err := http.Get("http://" + srv.Addr() + "/api/v1/health")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	if err := srv.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
	if err := srv.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
