package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/petermazzocco/car-dealership/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Println("Failed to encode response:", err)
	}
}

// writeError answers with the status for err's kind and a message safe to
// show the user. Provider details only go to the log.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrInvalid):
		status = http.StatusBadRequest
	case errors.Is(err, apperr.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperr.ErrUpstream):
		status = http.StatusBadGateway
	}
	if status >= http.StatusInternalServerError {
		log.Println("ERROR:", err)
	}
	writeJSON(w, status, map[string]any{
		"error": apperr.Message(err),
	})
}
