package api

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// maxCredentialsSize bounds a credentials write. SSIDs are at most 32
// bytes and WPA passphrases 63, so this leaves plenty of room.
const maxCredentialsSize = 512

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "no such endpoint")
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)

		r.Route("/provisioning", func(r chi.Router) {
			r.Get("/pairing", s.handlePairing)
			r.Get("/status", s.handleProvisioningStatus)
			r.Post("/credentials", s.handleCredentials)
		})

		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.status.Status())
}

func (s *Server) handlePairing(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.provisioning.Pairing())
}

func (s *Server) handleProvisioningStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": string(s.provisioning.Status()),
		"name":   s.provisioning.Name(),
	})
}

// handleCredentials accepts the same raw "ssid\npassword" payload the
// radio characteristic takes. The control loop applies it on its next
// tick; progress is reported through the status token.
func (s *Server) handleCredentials(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxCredentialsSize+1))
	if err != nil {
		rejectCredentials(w, CodeUnreadableBody, "reading body failed")
		return
	}
	if len(body) > maxCredentialsSize {
		rejectCredentials(w, CodeCredentialsTooLarge, "credentials payload too large")
		return
	}
	if !s.provisioning.HandleWrite(body) {
		rejectCredentials(w, CodeInvalidCredentials, "payload must be \"ssid\\npassword\"")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]bool{"accepted": true})
}
