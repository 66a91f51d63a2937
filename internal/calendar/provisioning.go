package calendar

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/teamcal/internal/auth"
	"github.com/wolfeidau/teamcal/internal/models"
	"github.com/wolfeidau/teamcal/internal/store"
	"github.com/wolfeidau/teamcal/internal/wallclock"
)

// AddUserInput describes an account created by an administrator.
type AddUserInput struct {
	Username  string
	Password  string
	CompanyID uuid.UUID
	Email     string
	FirstName string
	LastName  string
	Timezone  string
}

// AddUser creates the company if it doesn't exist yet and a user bound to it.
func (s *Service) AddUser(ctx context.Context, in AddUserInput) (*models.User, error) {
	if in.Username == "" {
		return nil, &ValidationError{Field: "username", Message: "This field may not be blank."}
	}
	if in.CompanyID == uuid.Nil {
		return nil, &ValidationError{Field: "company_id", Message: "This field is required."}
	}

	if in.Timezone == "" {
		in.Timezone = models.DefaultTimezone
	}
	if _, err := wallclock.LoadZone(in.Timezone); err != nil {
		return nil, &ValidationError{Field: "timezone", Message: fmt.Sprintf("%q is not a valid timezone.", in.Timezone)}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, &ValidationError{Field: "password", Message: err.Error()}
	}

	_, created, err := s.stores.Companies.GetOrCreate(ctx, in.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create company: %w", err)
	}

	companyID := in.CompanyID
	user := &models.User{
		CompanyID:    &companyID,
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
		Timezone:     in.Timezone,
	}

	if err := s.stores.Users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrUserAlreadyExists) {
			return nil, &ValidationError{Field: "username", Message: "A user with that username already exists."}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Int64("user_id", user.UserID).
		Str("username", user.Username).
		Str("company_id", companyID.String()).
		Bool("company_created", created).
		Msg("Added user")

	return user, nil
}

// DeleteUser removes a user with their owned events, managed locations and sessions.
func (s *Service) DeleteUser(ctx context.Context, username string) error {
	user, err := s.stores.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.stores.Users.Delete(ctx, user.UserID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return nil
}
