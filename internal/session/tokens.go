package session

import (
	"sync"

	"teacher-gallery-backend/internal/models"
)

// TokenStore is the short-lived session store: in-memory, scoped to the
// running process, cleared per token at logout. Restarting the process
// drops every session, which is the intended lifetime.
type TokenStore struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
}

// NewTokenStore creates an empty token store
func NewTokenStore() *TokenStore {
	return &TokenStore{sessions: make(map[string]models.Session)}
}

// Set registers a session under its token
func (s *TokenStore) Set(session models.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = session
}

// Get looks up a session by token
func (s *TokenStore) Get(token string) (models.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	return session, ok
}

// Clear removes a session by token
func (s *TokenStore) Clear(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}
