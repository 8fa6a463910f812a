package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ttbackend/apiserver/internal/auth"
)

const (
	maxBodyBytes = 1 << 20

	challenge = `Bearer realm="Application"`

	msgMissingCredentials = "Missing email or password"
	msgInvalidCredentials = "Invalid email or password"
	msgUnexpected         = "An unexpected error occurred"
	msgTokenCreation      = "An unexpected error occurred while creating the token"
	msgThrottled          = "Too many login attempts, try again later"
	msgUnauthorized       = "unauthorized"
)

// ErrorResponse is a simple error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeUnauthorized answers 401 with the bearer challenge.
func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", challenge)
	writeError(w, http.StatusUnauthorized, message)
}

// writeAuthError maps a credential failure to its response. Causes are
// never echoed to the client.
func writeAuthError(w http.ResponseWriter, err error) {
	switch auth.KindOf(err) {
	case auth.KindMissingCredentials:
		writeError(w, http.StatusBadRequest, msgMissingCredentials)
	case auth.KindInvalidCredentials:
		writeUnauthorized(w, msgInvalidCredentials)
	case auth.KindTokenCreation:
		writeError(w, http.StatusInternalServerError, msgTokenCreation)
	case auth.KindThrottled:
		writeError(w, http.StatusTooManyRequests, msgThrottled)
	case auth.KindStorage:
		writeError(w, http.StatusInternalServerError, msgUnexpected)
	default:
		writeError(w, http.StatusInternalServerError, msgUnexpected)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
