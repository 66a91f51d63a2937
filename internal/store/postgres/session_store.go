package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/teamcal/internal/models"
	"github.com/wolfeidau/teamcal/internal/store"
)

// host() strips the /32 or /128 mask INET values carry
const sessionColumns = `session_id, user_id, created_at, expires_at, last_used_at, user_agent, host(ip_address)`

// SessionStore implements store.SessionStore using PostgreSQL.
type SessionStore struct {
	pool *pgxpool.Pool
}

func NewSessionStore(pool *pgxpool.Pool) *SessionStore {
	return &SessionStore{pool: pool}
}

// Create stores a login session. An empty IP address is stored as NULL.
func (s *SessionStore) Create(ctx context.Context, session *models.Session) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sessions (session_id, user_id, created_at, expires_at, last_used_at, user_agent, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7::inet)`,
		session.SessionID, session.UserID,
		session.CreatedAt, session.ExpiresAt, session.LastUsedAt,
		session.UserAgent, nullIfEmpty(session.IPAddress),
	)
	if err != nil {
		return mapPostgresError(err)
	}

	log.Debug().
		Str("session_id", session.SessionID.String()).
		Int64("user_id", session.UserID).
		Msg("Created session")

	return nil
}

func (s *SessionStore) Get(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	var (
		session models.Session
		ip      *string
	)

	err := s.pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE session_id = $1`, sessionID).Scan(
		&session.SessionID, &session.UserID,
		&session.CreatedAt, &session.ExpiresAt, &session.LastUsedAt,
		&session.UserAgent, &ip,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if ip != nil {
		session.IPAddress = *ip
	}

	if session.IsExpired() {
		return nil, store.ErrSessionExpired
	}

	return &session, nil
}

// UpdateLastUsed touches an unexpired session.
func (s *SessionStore) UpdateLastUsed(ctx context.Context, sessionID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE sessions SET last_used_at = now() WHERE session_id = $1 AND expires_at > now()`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrSessionNotFound
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, sessionID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrSessionNotFound
	}

	log.Debug().Str("session_id", sessionID.String()).Msg("Deleted session")
	return nil
}

func (s *SessionStore) DeleteExpired(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	count := int(tag.RowsAffected())
	if count > 0 {
		log.Info().Int("count", count).Msg("Deleted expired sessions")
	}
	return count, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
