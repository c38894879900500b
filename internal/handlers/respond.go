package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"batepapo/internal/services"
	"batepapo/pkg/logger"
)

type errorResponse struct {
	Errors []string `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Error encoding response: %v", err)
	}
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &services.ValidationError{Details: []string{"request body must be a valid JSON object"}}
	}
	return nil
}

// respondError maps service errors to status codes. Anything unrecognised is an
// internal failure: logged in full, reported without detail.
func respondError(w http.ResponseWriter, operation string, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Errors: validationErr.Details})
	case errors.Is(err, services.ErrUnauthorized):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Errors: []string{err.Error()}})
	case errors.Is(err, services.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrMissingIdentity):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		logger.Error("%s error: %v", operation, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
