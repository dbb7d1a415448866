package api

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the JSON body of every non-2xx response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes returned by the local API. A provisioning client only needs
// to tell a rejected payload from a transport problem.
const (
	CodeInvalidCredentials  = "invalid_credentials"
	CodeCredentialsTooLarge = "credentials_too_large"
	CodeUnreadableBody      = "unreadable_body"
	CodeNotFound            = "not_found"
	CodeInternal            = "internal_error"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorBody{Code: code, Message: message})
}

// rejectCredentials answers a credentials write that was discarded. The
// status token is left alone: nothing reached the control loop.
func rejectCredentials(w http.ResponseWriter, code, message string) {
	writeError(w, http.StatusBadRequest, code, message)
}
