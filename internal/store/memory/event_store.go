package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/teamcal/internal/models"
	"github.com/wolfeidau/teamcal/internal/store"
	"golang.org/x/text/cases"
)

// EventStore implements store.EventStore using in-memory storage.
type EventStore struct {
	db *DB
}

// NewEventStore creates an event store backed by db.
func NewEventStore(db *DB) *EventStore {
	return &EventStore{db: db}
}

// Create stores the event and its participant links. Every constraint is checked before
// anything is written, so a failure leaves no trace.
func (s *EventStore) Create(ctx context.Context, event *models.Event, participantIDs []int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if err := s.checkConstraints(event, participantIDs); err != nil {
		return err
	}

	s.db.nextEventID++
	event.EventID = s.db.nextEventID
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	clone := *event
	clone.Start = event.Start.UTC()
	clone.End = event.End.UTC()
	clone.Owner, clone.Location, clone.Participants = nil, nil, nil
	if event.LocationID != nil {
		locationID := *event.LocationID
		clone.LocationID = &locationID
	}
	s.db.events[clone.EventID] = &clone

	links := make(map[int64]struct{}, len(participantIDs))
	for _, userID := range participantIDs {
		links[userID] = struct{}{}
	}
	s.db.participants[clone.EventID] = links

	log.Debug().
		Int64("event_id", clone.EventID).
		Int64("owner_id", clone.OwnerID).
		Int("participants", len(links)).
		Msg("Created event")

	return nil
}

// checkConstraints mirrors the CHECK and FOREIGN KEY constraints of the relational schema.
// Must be called with the lock held.
func (s *EventStore) checkConstraints(event *models.Event, participantIDs []int64) error {
	if event.OwnerID == 0 {
		return fmt.Errorf("%w: %s", store.ErrConstraintViolation, store.ConstraintOwnerRequired)
	}
	if _, ok := s.db.users[event.OwnerID]; !ok {
		return fmt.Errorf("%w: events_owner_id_fkey", store.ErrConstraintViolation)
	}
	if !event.End.After(event.Start) {
		return fmt.Errorf("%w: %s", store.ErrConstraintViolation, store.ConstraintEndAfterStart)
	}
	if event.End.After(event.Start.Add(models.MaxEventDuration)) {
		return fmt.Errorf("%w: %s", store.ErrConstraintViolation, store.ConstraintMaxDuration)
	}
	if event.LocationID != nil {
		if _, ok := s.db.locations[*event.LocationID]; !ok {
			return store.ErrLocationNotFound
		}
	}
	for _, userID := range participantIDs {
		if _, ok := s.db.users[userID]; !ok {
			return fmt.Errorf("%w: %s", store.ErrConstraintViolation, store.ConstraintParticipant)
		}
	}
	return nil
}

// GetForViewer retrieves an event the viewer owns or participates in.
func (s *EventStore) GetForViewer(ctx context.Context, viewerID int64, eventID int64) (*models.Event, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	e, exists := s.db.events[eventID]
	if !exists || !s.db.visibleTo(e, viewerID) {
		return nil, store.ErrEventNotFound
	}
	return s.db.populateEvent(e), nil
}

// List returns the events matching query.
func (s *EventStore) List(ctx context.Context, query store.EventQuery) ([]*models.Event, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	// Casers are stateful, so each call folds with its own.
	fold := cases.Fold()
	terms := make([]string, 0, len(query.Terms))
	for _, term := range query.Terms {
		terms = append(terms, fold.String(term))
	}

	var result []*models.Event
	for _, e := range s.db.events {
		if !s.db.visibleTo(e, query.ViewerID) {
			continue
		}
		if query.LocationID != nil && (e.LocationID == nil || *e.LocationID != *query.LocationID) {
			continue
		}
		if query.Day != nil && !query.Day.Contains(e.Start) && !query.Day.Contains(e.End) {
			continue
		}
		if !matchesTerms(fold, e, terms) {
			continue
		}
		result = append(result, s.db.populateEvent(e))
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Start.Equal(result[j].Start) {
			return result[i].Start.Before(result[j].Start)
		}
		return result[i].EventID < result[j].EventID
	})

	return result, nil
}

func matchesTerms(fold cases.Caser, e *models.Event, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	name := fold.String(e.Name)
	agenda := fold.String(e.Agenda)
	for _, term := range terms {
		if !strings.Contains(name, term) && !strings.Contains(agenda, term) {
			return false
		}
	}
	return true
}
