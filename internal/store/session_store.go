package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wolfeidau/teamcal/internal/models"
)

// Sentinel errors for session store operations
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// SessionStore manages server-side login sessions.
type SessionStore interface {
	// Create stores a new session.
	Create(ctx context.Context, session *models.Session) error

	// Get retrieves a session by ID.
	// Returns ErrSessionNotFound if missing and ErrSessionExpired once past ExpiresAt.
	Get(ctx context.Context, sessionID uuid.UUID) (*models.Session, error)

	// UpdateLastUsed records activity on a session.
	UpdateLastUsed(ctx context.Context, sessionID uuid.UUID) error

	// Delete removes a session (logout).
	Delete(ctx context.Context, sessionID uuid.UUID) error

	// DeleteExpired removes all expired sessions and returns how many were removed.
	DeleteExpired(ctx context.Context) (int, error)
}
