package memory

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/wolfeidau/teamcal/internal/models"
	"github.com/wolfeidau/teamcal/internal/store"
)

// DB holds all in-memory tables behind a single lock so that multi-row writes
// (an event and its participant links, cascading deletes) are atomic.
// This implementation is for testing and development only - data is lost on restart.
type DB struct {
	mu sync.RWMutex

	companies    map[uuid.UUID]*models.Company
	users        map[int64]*models.User
	usersByName  map[string]int64
	locations    map[int64]*models.Location
	events       map[int64]*models.Event
	participants map[int64]map[int64]struct{} // event_id -> set of user_id
	sessions     map[uuid.UUID]*models.Session

	nextUserID     int64
	nextLocationID int64
	nextEventID    int64
}

// New creates an empty in-memory database.
func New() *DB {
	return &DB{
		companies:    make(map[uuid.UUID]*models.Company),
		users:        make(map[int64]*models.User),
		usersByName:  make(map[string]int64),
		locations:    make(map[int64]*models.Location),
		events:       make(map[int64]*models.Event),
		participants: make(map[int64]map[int64]struct{}),
		sessions:     make(map[uuid.UUID]*models.Session),
	}
}

// Stores returns every store backed by this database.
func (db *DB) Stores() store.Stores {
	return store.Stores{
		Companies: NewCompanyStore(db),
		Users:     NewUserStore(db),
		Locations: NewLocationStore(db),
		Events:    NewEventStore(db),
		Sessions:  NewSessionStore(db),
	}
}

func cloneUser(u *models.User) *models.User {
	clone := *u
	if u.CompanyID != nil {
		companyID := *u.CompanyID
		clone.CompanyID = &companyID
	}
	return &clone
}

// locationWithManager must be called with the lock held.
func (db *DB) locationWithManager(loc *models.Location) *models.Location {
	clone := *loc
	if manager, ok := db.users[loc.ManagerID]; ok {
		clone.Manager = cloneUser(manager)
	}
	return &clone
}

// populateEvent returns a copy of e with owner, location and participants attached.
// Must be called with the lock held.
func (db *DB) populateEvent(e *models.Event) *models.Event {
	clone := *e
	if e.LocationID != nil {
		locationID := *e.LocationID
		clone.LocationID = &locationID
		if loc, ok := db.locations[locationID]; ok {
			clone.Location = db.locationWithManager(loc)
		}
	}
	if owner, ok := db.users[e.OwnerID]; ok {
		clone.Owner = cloneUser(owner)
	}

	clone.Participants = make([]*models.User, 0, len(db.participants[e.EventID]))
	for userID := range db.participants[e.EventID] {
		if u, ok := db.users[userID]; ok {
			clone.Participants = append(clone.Participants, cloneUser(u))
		}
	}
	sort.Slice(clone.Participants, func(i, j int) bool {
		return clone.Participants[i].UserID < clone.Participants[j].UserID
	})

	return &clone
}

// visibleTo reports whether the viewer owns or participates in the event.
// Must be called with the lock held.
func (db *DB) visibleTo(e *models.Event, viewerID int64) bool {
	if e.OwnerID == viewerID {
		return true
	}
	_, ok := db.participants[e.EventID][viewerID]
	return ok
}

// deleteEvent removes an event and its participant links. Must be called with the write lock held.
func (db *DB) deleteEvent(eventID int64) {
	delete(db.participants, eventID)
	delete(db.events, eventID)
}

// deleteLocation removes a location and the events held there. Must be called with the write lock held.
func (db *DB) deleteLocation(locationID int64) int {
	removed := 0
	for id, e := range db.events {
		if e.LocationID != nil && *e.LocationID == locationID {
			db.deleteEvent(id)
			removed++
		}
	}
	delete(db.locations, locationID)
	return removed
}
