package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wolfeidau/teamcal/internal/models"
)

// Sentinel errors for company store operations
var (
	ErrCompanyNotFound      = errors.New("company not found")
	ErrCompanyAlreadyExists = errors.New("company already exists")
)

// CompanyStore defines the interface for company storage operations.
// Companies are tenants; they are created by provisioning and never updated.
type CompanyStore interface {
	// Create creates a new company.
	// Returns ErrCompanyAlreadyExists if a company with the same ID already exists.
	Create(ctx context.Context, company *models.Company) error

	// Get retrieves a company by ID.
	// Returns ErrCompanyNotFound if the company doesn't exist.
	Get(ctx context.Context, companyID uuid.UUID) (*models.Company, error)

	// GetOrCreate returns the company with the given ID, creating it when absent.
	// The boolean result is true when the company was created by this call.
	GetOrCreate(ctx context.Context, companyID uuid.UUID) (*models.Company, bool, error)
}
