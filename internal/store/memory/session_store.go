package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/teamcal/internal/models"
	"github.com/wolfeidau/teamcal/internal/store"
)

// SessionStore implements store.SessionStore using in-memory storage.
type SessionStore struct {
	db *DB
}

// NewSessionStore creates a session store backed by db.
func NewSessionStore(db *DB) *SessionStore {
	return &SessionStore{db: db}
}

// Create creates a new session in memory.
func (s *SessionStore) Create(ctx context.Context, session *models.Session) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, exists := s.db.users[session.UserID]; !exists {
		return store.ErrUserNotFound
	}

	// Clone to avoid external modifications
	clone := *session
	s.db.sessions[session.SessionID] = &clone

	return nil
}

// Get retrieves a session by ID.
func (s *SessionStore) Get(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	session, exists := s.db.sessions[sessionID]
	if !exists {
		return nil, store.ErrSessionNotFound
	}

	// Check if session has expired
	if session.IsExpired() {
		return nil, store.ErrSessionExpired
	}

	clone := *session
	return &clone, nil
}

// UpdateLastUsed touches an unexpired session.
func (s *SessionStore) UpdateLastUsed(ctx context.Context, sessionID uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	session, exists := s.db.sessions[sessionID]
	if !exists || session.IsExpired() {
		return store.ErrSessionNotFound
	}

	session.LastUsedAt = time.Now()
	return nil
}

// Delete deletes a session by ID (logout).
func (s *SessionStore) Delete(ctx context.Context, sessionID uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, exists := s.db.sessions[sessionID]; !exists {
		return store.ErrSessionNotFound
	}

	delete(s.db.sessions, sessionID)
	return nil
}

// DeleteExpired deletes all expired sessions (cleanup job).
func (s *SessionStore) DeleteExpired(ctx context.Context) (int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	now := time.Now()
	removed := 0
	for id, session := range s.db.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.db.sessions, id)
			removed++
		}
	}

	return removed, nil
}
