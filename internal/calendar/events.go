package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/teamcal/internal/models"
	"github.com/wolfeidau/teamcal/internal/store"
	"github.com/wolfeidau/teamcal/internal/wallclock"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// CreateEventInput is a proposed event as submitted by its owner.
// DateStart and DateEnd are wall-clock values in the owner's timezone.
type CreateEventInput struct {
	Name         string
	Agenda       string
	DateStart    string
	DateEnd      string
	Participants []string
	LocationID   *int64
}

// EventFilter narrows an event listing. Zero values don't filter.
type EventFilter struct {
	Query      string
	Day        string
	LocationID *int64
}

// CreateEvent validates and stores a new event owned by actor, then returns it with
// owner, location and participants populated.
func (s *Service) CreateEvent(ctx context.Context, actor *models.User, in CreateEventInput) (*models.Event, error) {
	if err := requireViewer(actor); err != nil {
		return nil, err
	}

	loc, err := wallclock.LoadZone(actor.Timezone)
	if err != nil {
		return nil, err
	}

	start, err := parseField(in.DateStart, "date_start", loc)
	if err != nil {
		s.reject(ctx, "format")
		return nil, err
	}

	end, err := parseField(in.DateEnd, "date_end", loc)
	if err != nil {
		s.reject(ctx, "format")
		return nil, err
	}

	if err := ValidateWindow(start, end); err != nil {
		s.reject(ctx, "window")
		return nil, err
	}

	if err := s.locations.Check(ctx, actor, in.LocationID); err != nil {
		s.reject(ctx, "location")
		return nil, err
	}

	participants, err := s.participants.Resolve(ctx, in.Participants)
	if err != nil {
		return nil, err
	}

	if dropped := countUnique(in.Participants) - len(participants); dropped > 0 {
		s.metrics.ParticipantsDroppedTotal.Add(ctx, int64(dropped))
	}

	participantIDs := make([]int64, 0, len(participants))
	for _, p := range participants {
		participantIDs = append(participantIDs, p.UserID)
	}

	event := &models.Event{
		OwnerID:    actor.UserID,
		Name:       in.Name,
		Agenda:     in.Agenda,
		Start:      start,
		End:        end,
		LocationID: in.LocationID,
	}

	if err := s.stores.Events.Create(ctx, event, participantIDs); err != nil {
		switch {
		case errors.Is(err, store.ErrLocationNotFound):
			s.reject(ctx, "location")
			return nil, &ValidationError{Field: "location_id", Message: msgLocationNotAvailable}
		case errors.Is(err, store.ErrConstraintViolation):
			s.reject(ctx, "constraint")
			zerolog.Ctx(ctx).Error().Err(err).
				Int64("owner_id", actor.UserID).
				Msg("Event passed validation but violated a store constraint")
			return nil, &PersistenceConstraintError{Err: err}
		default:
			return nil, fmt.Errorf("failed to create event: %w", err)
		}
	}

	s.metrics.EventsCreatedTotal.Add(ctx, 1)
	s.metrics.EventParticipants.Record(ctx, int64(len(participantIDs)))

	zerolog.Ctx(ctx).Info().
		Int64("event_id", event.EventID).
		Int64("owner_id", actor.UserID).
		Int("participants", len(participantIDs)).
		Msg("Created event")

	return s.GetEvent(ctx, actor, event.EventID)
}

// ListEvents returns the events the viewer owns or participates in, narrowed by f.
// A malformed day yields no events rather than an error.
func (s *Service) ListEvents(ctx context.Context, viewer *models.User, f EventFilter) ([]*models.Event, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}

	started := time.Now()
	defer func() {
		s.metrics.EventQueriesTotal.Add(ctx, 1)
		s.metrics.EventQueryDuration.Record(ctx, float64(time.Since(started).Milliseconds()))
	}()

	query := viewerQuery(viewer)
	query.LocationID = f.LocationID
	query.Terms = SearchTerms(f.Query)

	if f.Day != "" {
		loc, err := wallclock.LoadZone(viewer.Timezone)
		if err != nil {
			return nil, err
		}

		from, to, err := wallclock.DayWindow(f.Day, loc)
		if err != nil {
			zerolog.Ctx(ctx).Debug().Str("day", f.Day).Msg("Ignoring malformed day filter")
			return []*models.Event{}, nil
		}
		query.Day = &store.TimeWindow{From: from, To: to}
	}

	events, err := s.stores.Events.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	return events, nil
}

// GetEvent returns an event the viewer owns or participates in.
func (s *Service) GetEvent(ctx context.Context, viewer *models.User, eventID int64) (*models.Event, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}

	event, err := s.stores.Events.GetForViewer(ctx, viewer.UserID, eventID)
	if err != nil {
		if errors.Is(err, store.ErrEventNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return event, nil
}

func parseField(value, field string, loc *time.Location) (time.Time, error) {
	t, err := wallclock.ParseInZone(value, loc)
	if err != nil {
		var fe *wallclock.FormatError
		if errors.As(err, &fe) {
			fe.Field = field
		}
		return time.Time{}, err
	}
	return t, nil
}

func (s *Service) reject(ctx context.Context, reason string) {
	s.metrics.RejectionsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func countUnique(values []string) int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			seen[v] = struct{}{}
		}
	}
	return len(seen)
}
