package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/teamcal/internal/models"
	"github.com/wolfeidau/teamcal/internal/store"
)

// selectLocations joins each location with its manager; scan with locationDest.
var selectLocations = `
	SELECT l.location_id, l.manager_id, l.name, l.address, l.created_at, ` + userColumns("m") + `
	FROM locations l
	JOIN users m ON m.user_id = l.manager_id
`

func locationDest(l *models.Location) []any {
	l.Manager = &models.User{}
	return append([]any{&l.LocationID, &l.ManagerID, &l.Name, &l.Address, &l.CreatedAt}, userDest(l.Manager)...)
}

// LocationStore implements store.LocationStore using PostgreSQL.
type LocationStore struct {
	pool *pgxpool.Pool
}

// NewLocationStore creates a new PostgreSQL-backed location store.
func NewLocationStore(pool *pgxpool.Pool) *LocationStore {
	return &LocationStore{
		pool: pool,
	}
}

// Create inserts a location and assigns its ID.
func (s *LocationStore) Create(ctx context.Context, location *models.Location) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO locations (manager_id, name, address)
		VALUES ($1, $2, $3)
		RETURNING location_id, created_at
	`, location.ManagerID, location.Name, location.Address).Scan(&location.LocationID, &location.CreatedAt)
	if err != nil {
		return mapPostgresError(err)
	}

	log.Debug().
		Int64("location_id", location.LocationID).
		Int64("manager_id", location.ManagerID).
		Msg("Created location")

	return nil
}

// Get retrieves a location by ID.
func (s *LocationStore) Get(ctx context.Context, locationID int64) (*models.Location, error) {
	return s.getOne(ctx, selectLocations+`WHERE l.location_id = $1`, locationID)
}

// GetForCompany retrieves a location whose manager belongs to companyID.
func (s *LocationStore) GetForCompany(ctx context.Context, companyID uuid.UUID, locationID int64) (*models.Location, error) {
	return s.getOne(ctx, selectLocations+`WHERE l.location_id = $1 AND m.company_id = $2`, locationID, companyID)
}

func (s *LocationStore) getOne(ctx context.Context, query string, args ...any) (*models.Location, error) {
	var loc models.Location
	if err := s.pool.QueryRow(ctx, query, args...).Scan(locationDest(&loc)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrLocationNotFound
		}
		return nil, fmt.Errorf("failed to get location: %w", err)
	}
	return &loc, nil
}

// ListByCompany returns all locations managed by users of companyID.
func (s *LocationStore) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*models.Location, error) {
	rows, err := s.pool.Query(ctx, selectLocations+`WHERE m.company_id = $1 ORDER BY l.location_id`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	defer rows.Close()

	var locations []*models.Location
	for rows.Next() {
		var loc models.Location
		if err := rows.Scan(locationDest(&loc)...); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, &loc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locations: %w", err)
	}

	return locations, nil
}

// ExistsInCompany reports whether any location is managed by a user of companyID.
func (s *LocationStore) ExistsInCompany(ctx context.Context, companyID uuid.UUID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM locations l
			JOIN users m ON m.user_id = l.manager_id
			WHERE m.company_id = $1
		)
	`, companyID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check locations: %w", err)
	}
	return exists, nil
}

// Delete removes a location and the events held there in one transaction.
func (s *LocationStore) Delete(ctx context.Context, locationID int64) error {
	var eventsRemoved int64

	err := withTx(ctx, s.pool, func(tx pgx.Tx) error {
		var exists int
		err := tx.QueryRow(ctx, `SELECT 1 FROM locations WHERE location_id = $1 FOR UPDATE`, locationID).Scan(&exists)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return store.ErrLocationNotFound
			}
			return fmt.Errorf("failed to lock location: %w", err)
		}

		batch := &pgx.Batch{}
		batch.Queue(`DELETE FROM event_participants WHERE event_id IN (SELECT event_id FROM events WHERE location_id = $1)`, locationID)
		batch.Queue(`DELETE FROM events WHERE location_id = $1`, locationID).Exec(func(tag pgconn.CommandTag) error {
			eventsRemoved = tag.RowsAffected()
			return nil
		})
		batch.Queue(`DELETE FROM locations WHERE location_id = $1`, locationID)

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return mapPostgresError(err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	log.Info().
		Int64("location_id", locationID).
		Int64("events_removed", eventsRemoved).
		Msg("Deleted location")

	return nil
}
