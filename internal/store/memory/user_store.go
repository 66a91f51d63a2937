package memory

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/teamcal/internal/models"
	"github.com/wolfeidau/teamcal/internal/store"
)

// UserStore implements store.UserStore using in-memory storage.
type UserStore struct {
	db *DB
}

// NewUserStore creates a user store backed by db.
func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db}
}

// Create stores a new user and assigns its ID.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, exists := s.db.usersByName[user.Username]; exists {
		return store.ErrUserAlreadyExists
	}

	if user.CompanyID != nil {
		if _, exists := s.db.companies[*user.CompanyID]; !exists {
			return store.ErrCompanyNotFound
		}
	}

	s.db.nextUserID++
	user.UserID = s.db.nextUserID
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	if user.Timezone == "" {
		user.Timezone = models.DefaultTimezone
	}

	s.db.users[user.UserID] = cloneUser(user)
	s.db.usersByName[user.Username] = user.UserID

	return nil
}

// Get retrieves a user by ID.
func (s *UserStore) Get(ctx context.Context, userID int64) (*models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	u, exists := s.db.users[userID]
	if !exists {
		return nil, store.ErrUserNotFound
	}
	return cloneUser(u), nil
}

// GetByUsername retrieves a user by username.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	userID, exists := s.db.usersByName[username]
	if !exists {
		return nil, store.ErrUserNotFound
	}
	return cloneUser(s.db.users[userID]), nil
}

// ListByEmails returns every user whose email matches one of emails exactly.
func (s *UserStore) ListByEmails(ctx context.Context, emails []string) ([]*models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	wanted := make(map[string]struct{}, len(emails))
	for _, email := range emails {
		wanted[email] = struct{}{}
	}

	var result []*models.User
	for _, u := range s.db.users {
		if u.Email == "" {
			continue
		}
		if _, ok := wanted[u.Email]; ok {
			result = append(result, cloneUser(u))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })

	return result, nil
}

// Delete removes a user and everything depending on it.
func (s *UserStore) Delete(ctx context.Context, userID int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	u, exists := s.db.users[userID]
	if !exists {
		return store.ErrUserNotFound
	}

	eventsRemoved := 0
	for id, e := range s.db.events {
		if e.OwnerID == userID {
			s.db.deleteEvent(id)
			eventsRemoved++
		}
	}

	locationsRemoved := 0
	for id, loc := range s.db.locations {
		if loc.ManagerID == userID {
			eventsRemoved += s.db.deleteLocation(id)
			locationsRemoved++
		}
	}

	for _, links := range s.db.participants {
		delete(links, userID)
	}

	for id, session := range s.db.sessions {
		if session.UserID == userID {
			delete(s.db.sessions, id)
		}
	}

	delete(s.db.usersByName, u.Username)
	delete(s.db.users, userID)

	log.Debug().
		Int64("user_id", userID).
		Int("events_removed", eventsRemoved).
		Int("locations_removed", locationsRemoved).
		Msg("Deleted user")

	return nil
}
