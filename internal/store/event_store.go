package store

import (
	"context"
	"errors"
	"time"

	"github.com/wolfeidau/teamcal/internal/models"
)

// Errors
var (
	ErrEventNotFound = errors.New("event not found")

	// ErrConstraintViolation is returned when a write breaks a persistence invariant
	// (end after start, maximum duration, required owner, referential integrity).
	ErrConstraintViolation = errors.New("constraint violation")
)

// Constraint names shared by both backends.
const (
	ConstraintEndAfterStart = "events_end_after_start"
	ConstraintMaxDuration   = "events_duration_lte_8h"
	ConstraintOwnerRequired = "events_owner_required"
	ConstraintParticipant   = "event_participants_user_id_fkey"
)

// EventStore persists events and answers viewer-scoped queries.
type EventStore interface {
	// Create stores the event and its participant links atomically and assigns
	// event.EventID. Either the event and every link exist afterwards, or none do.
	// Returns ErrConstraintViolation when a persistence invariant is broken and
	// ErrLocationNotFound when the referenced location doesn't exist.
	Create(ctx context.Context, event *models.Event, participantIDs []int64) error

	// GetForViewer retrieves an event visible to viewerID (owner or participant) with
	// owner, location and participants populated. Returns ErrEventNotFound otherwise.
	GetForViewer(ctx context.Context, viewerID int64, eventID int64) (*models.Event, error)

	// List returns the events matching the query, ordered by start then ID.
	List(ctx context.Context, query EventQuery) ([]*models.Event, error)
}

// EventQuery describes a viewer-scoped event search. All set filters must match.
type EventQuery struct {
	// ViewerID restricts results to events owned by or shared with the viewer. Required.
	ViewerID int64

	// LocationID filters on exact location.
	LocationID *int64

	// Day keeps events whose start or end falls inside the window.
	Day *TimeWindow

	// Terms must each appear (case-insensitively) in the name or the agenda.
	Terms []string
}

// TimeWindow is a half-open interval [From, To).
type TimeWindow struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the window.
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}
