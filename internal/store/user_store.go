package store

import (
	"context"
	"errors"

	"github.com/wolfeidau/teamcal/internal/models"
)

// Errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

// UserStore manages user accounts.
type UserStore interface {
	// Create stores a new user and assigns user.UserID.
	// Returns ErrUserAlreadyExists if the username is taken.
	Create(ctx context.Context, user *models.User) error

	// Get retrieves a user by ID.
	Get(ctx context.Context, userID int64) (*models.User, error)

	// GetByUsername retrieves a user by username.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// ListByEmails returns every user whose email exactly matches one of emails.
	// Emails without an account are ignored.
	ListByEmails(ctx context.Context, emails []string) ([]*models.User, error)

	// Delete removes a user together with everything that depends on it, in one transaction:
	// owned events, participant links, managed locations (and their events) and sessions.
	Delete(ctx context.Context, userID int64) error
}
