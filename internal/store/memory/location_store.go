package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/teamcal/internal/models"
	"github.com/wolfeidau/teamcal/internal/store"
)

// LocationStore implements store.LocationStore using in-memory storage.
type LocationStore struct {
	db *DB
}

// NewLocationStore creates a location store backed by db.
func NewLocationStore(db *DB) *LocationStore {
	return &LocationStore{db: db}
}

// Create stores a new location and assigns its ID.
func (s *LocationStore) Create(ctx context.Context, location *models.Location) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, exists := s.db.users[location.ManagerID]; !exists {
		return store.ErrUserNotFound
	}

	s.db.nextLocationID++
	location.LocationID = s.db.nextLocationID
	if location.CreatedAt.IsZero() {
		location.CreatedAt = time.Now()
	}

	clone := *location
	clone.Manager = nil
	s.db.locations[location.LocationID] = &clone

	return nil
}

// Get retrieves a location by ID.
func (s *LocationStore) Get(ctx context.Context, locationID int64) (*models.Location, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	loc, exists := s.db.locations[locationID]
	if !exists {
		return nil, store.ErrLocationNotFound
	}
	return s.db.locationWithManager(loc), nil
}

// GetForCompany retrieves a location whose manager belongs to companyID.
func (s *LocationStore) GetForCompany(ctx context.Context, companyID uuid.UUID, locationID int64) (*models.Location, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	loc, exists := s.db.locations[locationID]
	if !exists || !s.managedIn(loc, companyID) {
		return nil, store.ErrLocationNotFound
	}
	return s.db.locationWithManager(loc), nil
}

// ListByCompany returns all locations managed by users of companyID.
func (s *LocationStore) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*models.Location, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var result []*models.Location
	for _, loc := range s.db.locations {
		if s.managedIn(loc, companyID) {
			result = append(result, s.db.locationWithManager(loc))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].LocationID < result[j].LocationID })

	return result, nil
}

// ExistsInCompany reports whether any location is managed by a user of companyID.
func (s *LocationStore) ExistsInCompany(ctx context.Context, companyID uuid.UUID) (bool, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	for _, loc := range s.db.locations {
		if s.managedIn(loc, companyID) {
			return true, nil
		}
	}
	return false, nil
}

// Delete removes a location and the events held there.
func (s *LocationStore) Delete(ctx context.Context, locationID int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, exists := s.db.locations[locationID]; !exists {
		return store.ErrLocationNotFound
	}

	removed := s.db.deleteLocation(locationID)

	log.Debug().
		Int64("location_id", locationID).
		Int("events_removed", removed).
		Msg("Deleted location")

	return nil
}

// managedIn must be called with the lock held.
func (s *LocationStore) managedIn(loc *models.Location, companyID uuid.UUID) bool {
	manager, ok := s.db.users[loc.ManagerID]
	return ok && manager.InCompany(companyID)
}
