package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/authmail/authmail-be/internal/apierr"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	User    interface{} `json:"user,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondSuccess(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Success: true, Message: message})
}

// respondError maps domain errors onto the envelope. Unexpected errors
// are logged and returned as a generic 500 that leaks nothing.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		writeJSON(w, apiErr.Status, Response{Success: false, Message: apiErr.Message})
		return
	}

	log.Error().Err(err).Str("path", r.URL.Path).Msg("Unhandled error")
	writeJSON(w, http.StatusInternalServerError, Response{Success: false, Message: "Something went wrong!"})
}
