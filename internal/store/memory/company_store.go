package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/teamcal/internal/models"
	"github.com/wolfeidau/teamcal/internal/store"
)

// CompanyStore implements store.CompanyStore using in-memory storage.
type CompanyStore struct {
	db *DB
}

// NewCompanyStore creates a company store backed by db.
func NewCompanyStore(db *DB) *CompanyStore {
	return &CompanyStore{db: db}
}

// Create creates a new company in memory.
func (s *CompanyStore) Create(ctx context.Context, company *models.Company) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, exists := s.db.companies[company.CompanyID]; exists {
		return store.ErrCompanyAlreadyExists
	}

	if company.CreatedAt.IsZero() {
		company.CreatedAt = time.Now()
	}

	// Clone to avoid external modifications
	clone := *company
	s.db.companies[company.CompanyID] = &clone

	return nil
}

// Get retrieves a company by ID.
func (s *CompanyStore) Get(ctx context.Context, companyID uuid.UUID) (*models.Company, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	company, exists := s.db.companies[companyID]
	if !exists {
		return nil, store.ErrCompanyNotFound
	}

	clone := *company
	return &clone, nil
}

// GetOrCreate returns the company, creating it when it doesn't exist yet.
func (s *CompanyStore) GetOrCreate(ctx context.Context, companyID uuid.UUID) (*models.Company, bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if company, exists := s.db.companies[companyID]; exists {
		clone := *company
		return &clone, false, nil
	}

	company := &models.Company{CompanyID: companyID, CreatedAt: time.Now()}
	s.db.companies[companyID] = company

	clone := *company
	return &clone, true, nil
}
