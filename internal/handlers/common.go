package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"teacher-gallery-backend/internal/directory"
	"teacher-gallery-backend/internal/session"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// respondTaxonomyError maps the typed failure kinds onto HTTP statuses.
// Validation problems keep their specific message; everything else gets the
// error's own single human-readable message.
func respondTaxonomyError(w http.ResponseWriter, err error) {
	var validationErr *directory.ValidationError
	if errors.As(err, &validationErr) {
		respondError(w, validationErr.Message, http.StatusBadRequest)
		return
	}

	var notFoundErr *directory.NotFoundError
	if errors.As(err, &notFoundErr) {
		respondError(w, notFoundErr.Error(), http.StatusNotFound)
		return
	}

	var authErr *session.AuthError
	if errors.As(err, &authErr) {
		respondError(w, authErr.Error(), http.StatusUnauthorized)
		return
	}

	var adapterErr *directory.AdapterError
	if errors.As(err, &adapterErr) {
		respondError(w, adapterErr.Error(), http.StatusInternalServerError)
		return
	}

	respondError(w, "internal error", http.StatusInternalServerError)
}
