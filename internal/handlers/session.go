package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"teacher-gallery-backend/internal/session"

	"github.com/rs/zerolog/log"
)

// SessionHandler handles login, logout and session restore
type SessionHandler struct {
	gate *session.Gate
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(gate *session.Gate) *SessionHandler {
	return &SessionHandler{gate: gate}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LogoutRequest represents the logout request body
type LogoutRequest struct {
	Confirm bool `json:"confirm"`
}

// Login handles POST /api/v1/session
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sess, err := h.gate.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		log.Info().Str("username", req.Username).Msg("Login rejected")
		respondTaxonomyError(w, err)
		return
	}

	log.Info().Str("username", sess.Username).Str("mode", string(sess.Mode)).Msg("Login succeeded")
	respondJSON(w, http.StatusOK, sess)
}

// Restore handles GET /api/v1/session
func (h *SessionHandler) Restore(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		respondError(w, "Authorization header required", http.StatusUnauthorized)
		return
	}

	sess, err := h.gate.Restore(r.Context(), token)
	if err != nil {
		respondTaxonomyError(w, err)
		return
	}
	if sess == nil {
		respondError(w, "Session is no longer valid", http.StatusUnauthorized)
		return
	}

	respondJSON(w, http.StatusOK, sess)
}

// Logout handles DELETE /api/v1/session. The request must carry an
// explicit confirmation; without it the session is left untouched.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		respondError(w, "Authorization header required", http.StatusUnauthorized)
		return
	}

	var req LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.gate.Logout(token, req.Confirm); err != nil {
		if errors.Is(err, session.ErrNotConfirmed) {
			respondError(w, err.Error(), http.StatusBadRequest)
			return
		}
		respondTaxonomyError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
