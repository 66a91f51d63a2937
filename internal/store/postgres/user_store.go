package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/teamcal/internal/models"
	"github.com/wolfeidau/teamcal/internal/store"
)

var userFields = []string{
	"user_id", "company_id", "username", "first_name", "last_name",
	"email", "password_hash", "timezone", "created_at",
}

// userColumns returns the user select list qualified with alias.
func userColumns(alias string) string {
	cols := make([]string, len(userFields))
	for i, f := range userFields {
		cols[i] = alias + "." + f
	}
	return strings.Join(cols, ", ")
}

// userDest returns scan destinations matching userColumns.
func userDest(u *models.User) []any {
	return []any{
		&u.UserID, &u.CompanyID, &u.Username, &u.FirstName, &u.LastName,
		&u.Email, &u.PasswordHash, &u.Timezone, &u.CreatedAt,
	}
}

// UserStore implements store.UserStore using PostgreSQL.
type UserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore creates a new PostgreSQL-backed user store.
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{
		pool: pool,
	}
}

// Create inserts a user and assigns its ID.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	if user.Timezone == "" {
		user.Timezone = models.DefaultTimezone
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (
			company_id, username, first_name, last_name, email, password_hash, timezone
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
		RETURNING user_id, created_at
	`,
		user.CompanyID,
		user.Username,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		user.Timezone,
	).Scan(&user.UserID, &user.CreatedAt)
	if err != nil {
		return mapPostgresError(err)
	}

	log.Debug().
		Int64("user_id", user.UserID).
		Str("username", user.Username).
		Msg("Created user")

	return nil
}

// Get retrieves a user by ID.
func (s *UserStore) Get(ctx context.Context, userID int64) (*models.User, error) {
	return s.getOne(ctx, "u.user_id = $1", userID)
}

// GetByUsername retrieves a user by username.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getOne(ctx, "u.username = $1", username)
}

func (s *UserStore) getOne(ctx context.Context, where string, arg any) (*models.User, error) {
	query := "SELECT " + userColumns("u") + " FROM users u WHERE " + where

	var u models.User
	if err := s.pool.QueryRow(ctx, query, arg).Scan(userDest(&u)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &u, nil
}

// ListByEmails returns every user whose email exactly matches one of emails.
func (s *UserStore) ListByEmails(ctx context.Context, emails []string) ([]*models.User, error) {
	if len(emails) == 0 {
		return nil, nil
	}

	query := "SELECT " + userColumns("u") + ` FROM users u
		WHERE u.email <> '' AND u.email = ANY($1)
		ORDER BY u.user_id`

	rows, err := s.pool.Query(ctx, query, emails)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(userDest(&u)...); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// Delete removes a user and, in one transaction, their owned events, their managed
// locations with the events held there, their participant links and their sessions.
func (s *UserStore) Delete(ctx context.Context, userID int64) error {
	var eventsRemoved, locationsRemoved int64

	err := withTx(ctx, s.pool, func(tx pgx.Tx) error {
		var exists int
		err := tx.QueryRow(ctx, `SELECT 1 FROM users WHERE user_id = $1 FOR UPDATE`, userID).Scan(&exists)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return store.ErrUserNotFound
			}
			return fmt.Errorf("failed to lock user: %w", err)
		}

		doomed := `
			SELECT event_id FROM events
			WHERE owner_id = $1
			   OR location_id IN (SELECT location_id FROM locations WHERE manager_id = $1)
		`

		if _, err := tx.Exec(ctx, `DELETE FROM event_participants WHERE event_id IN (`+doomed+`) OR user_id = $1`, userID); err != nil {
			return mapPostgresError(err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM events WHERE event_id IN (`+doomed+`)`, userID)
		if err != nil {
			return mapPostgresError(err)
		}
		eventsRemoved = tag.RowsAffected()

		tag, err = tx.Exec(ctx, `DELETE FROM locations WHERE manager_id = $1`, userID)
		if err != nil {
			return mapPostgresError(err)
		}
		locationsRemoved = tag.RowsAffected()

		if _, err := tx.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID); err != nil {
			return mapPostgresError(err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM users WHERE user_id = $1`, userID); err != nil {
			return mapPostgresError(err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	log.Info().
		Int64("user_id", userID).
		Int64("events_removed", eventsRemoved).
		Int64("locations_removed", locationsRemoved).
		Msg("Deleted user")

	return nil
}
