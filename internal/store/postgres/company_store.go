package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/teamcal/internal/models"
	"github.com/wolfeidau/teamcal/internal/store"
)

// CompanyStore implements store.CompanyStore using PostgreSQL.
type CompanyStore struct {
	pool *pgxpool.Pool
}

// NewCompanyStore creates a new PostgreSQL-backed company store.
// It shares the connection pool with other stores.
func NewCompanyStore(pool *pgxpool.Pool) *CompanyStore {
	return &CompanyStore{
		pool: pool,
	}
}

// Create creates a new company in the database.
func (s *CompanyStore) Create(ctx context.Context, company *models.Company) error {
	if company.CreatedAt.IsZero() {
		company.CreatedAt = time.Now()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO companies (company_id, created_at) VALUES ($1, $2)
	`, company.CompanyID, company.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrCompanyAlreadyExists
		}
		return fmt.Errorf("failed to create company: %w", err)
	}

	log.Debug().
		Str("company_id", company.CompanyID.String()).
		Msg("Created company")

	return nil
}

// Get retrieves a company by ID.
func (s *CompanyStore) Get(ctx context.Context, companyID uuid.UUID) (*models.Company, error) {
	var company models.Company
	err := s.pool.QueryRow(ctx, `
		SELECT company_id, created_at FROM companies WHERE company_id = $1
	`, companyID).Scan(&company.CompanyID, &company.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	return &company, nil
}

// GetOrCreate returns the company, creating it when it doesn't exist yet.
// The boolean reports whether a row was inserted.
func (s *CompanyStore) GetOrCreate(ctx context.Context, companyID uuid.UUID) (*models.Company, bool, error) {
	company := models.Company{CompanyID: companyID}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO companies (company_id) VALUES ($1)
		ON CONFLICT (company_id) DO NOTHING
		RETURNING created_at
	`, companyID).Scan(&company.CreatedAt)
	if err == nil {
		log.Debug().
			Str("company_id", companyID.String()).
			Msg("Created company")
		return &company, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to create company: %w", mapPostgresError(err))
	}

	existing, err := s.Get(ctx, companyID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}
