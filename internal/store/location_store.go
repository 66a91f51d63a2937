package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wolfeidau/teamcal/internal/models"
)

// Errors
var (
	ErrLocationNotFound = errors.New("location not found")
)

// LocationStore manages locations. Company scoping follows the manager's company.
type LocationStore interface {
	// Create stores a new location and assigns location.LocationID.
	// Returns ErrUserNotFound if the manager doesn't exist.
	Create(ctx context.Context, location *models.Location) error

	// Get retrieves a location by ID with its manager populated.
	Get(ctx context.Context, locationID int64) (*models.Location, error)

	// GetForCompany retrieves a location only if its manager belongs to companyID.
	// Returns ErrLocationNotFound otherwise.
	GetForCompany(ctx context.Context, companyID uuid.UUID, locationID int64) (*models.Location, error)

	// ListByCompany returns all locations managed by users of companyID.
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*models.Location, error)

	// ExistsInCompany reports whether any location is managed by a user of companyID.
	ExistsInCompany(ctx context.Context, companyID uuid.UUID) (bool, error)

	// Delete removes a location and, in the same transaction, every event held there.
	Delete(ctx context.Context, locationID int64) error
}
