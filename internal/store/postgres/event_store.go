package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/teamcal/internal/models"
	"github.com/wolfeidau/teamcal/internal/store"
)

const eventColumns = `e.event_id, e.owner_id, e.name, e.agenda, e.date_start, e.date_end, e.location_id, e.created_at`

// visibleToViewer restricts events to those the viewer owns or participates in.
const visibleToViewer = `(e.owner_id = $1 OR EXISTS (
	SELECT 1 FROM event_participants p WHERE p.event_id = e.event_id AND p.user_id = $1
))`

func eventDest(e *models.Event) []any {
	return []any{&e.EventID, &e.OwnerID, &e.Name, &e.Agenda, &e.Start, &e.End, &e.LocationID, &e.CreatedAt}
}

// EventStore implements store.EventStore using PostgreSQL.
type EventStore struct {
	pool *pgxpool.Pool
}

// NewEventStore creates a new PostgreSQL-backed event store.
func NewEventStore(pool *pgxpool.Pool) *EventStore {
	return &EventStore{
		pool: pool,
	}
}

// Create inserts the event and its participant links in one transaction.
// The schema's CHECK and FOREIGN KEY constraints enforce the persistence invariants.
func (s *EventStore) Create(ctx context.Context, event *models.Event, participantIDs []int64) error {
	var ownerID any
	if event.OwnerID != 0 {
		ownerID = event.OwnerID
	}

	err := withTx(ctx, s.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO events (owner_id, name, agenda, date_start, date_end, location_id)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING event_id, created_at
		`,
			ownerID,
			event.Name,
			event.Agenda,
			event.Start.UTC(),
			event.End.UTC(),
			event.LocationID,
		).Scan(&event.EventID, &event.CreatedAt)
		if err != nil {
			return mapPostgresError(err)
		}

		if len(participantIDs) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		for _, userID := range participantIDs {
			batch.Queue(`
				INSERT INTO event_participants (event_id, user_id) VALUES ($1, $2)
				ON CONFLICT (event_id, user_id) DO NOTHING
			`, event.EventID, userID)
		}

		results := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return mapPostgresError(err)
			}
		}

		return results.Close()
	})
	if err != nil {
		event.EventID = 0
		return err
	}

	log.Debug().
		Int64("event_id", event.EventID).
		Int64("owner_id", event.OwnerID).
		Int("participants", len(participantIDs)).
		Msg("Created event")

	return nil
}

// GetForViewer retrieves an event the viewer owns or participates in.
func (s *EventStore) GetForViewer(ctx context.Context, viewerID int64, eventID int64) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e WHERE ` + visibleToViewer + ` AND e.event_id = $2`

	var e models.Event
	if err := s.pool.QueryRow(ctx, query, viewerID, eventID).Scan(eventDest(&e)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	events := []*models.Event{&e}
	if err := hydrateEvents(ctx, s.pool, events); err != nil {
		return nil, err
	}

	return &e, nil
}

// List returns the viewer's events matching query, ordered by start then ID.
func (s *EventStore) List(ctx context.Context, query store.EventQuery) ([]*models.Event, error) {
	sql, args := buildEventQuery(query)

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(eventDest(&e)...); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	if err := hydrateEvents(ctx, s.pool, events); err != nil {
		return nil, err
	}

	return events, nil
}

func buildEventQuery(query store.EventQuery) (string, []any) {
	args := []any{query.ViewerID}
	conditions := []string{visibleToViewer}

	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if query.LocationID != nil {
		conditions = append(conditions, "e.location_id = "+next(*query.LocationID))
	}

	if query.Day != nil {
		from, to := next(query.Day.From.UTC()), next(query.Day.To.UTC())
		conditions = append(conditions, fmt.Sprintf(
			"((e.date_start >= %[1]s AND e.date_start < %[2]s) OR (e.date_end >= %[1]s AND e.date_end < %[2]s))",
			from, to,
		))
	}

	for _, term := range query.Terms {
		p := next("%" + escapeLike(term) + "%")
		conditions = append(conditions, fmt.Sprintf(`(e.name ILIKE %[1]s ESCAPE '\' OR e.agenda ILIKE %[1]s ESCAPE '\')`, p))
	}

	sql := `SELECT ` + eventColumns + ` FROM events e WHERE ` +
		strings.Join(conditions, " AND ") +
		` ORDER BY e.date_start, e.event_id`

	return sql, args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// hydrateEvents attaches owners, locations (with managers) and participants.
func hydrateEvents(ctx context.Context, q querier, events []*models.Event) error {
	if len(events) == 0 {
		return nil
	}

	byID := make(map[int64]*models.Event, len(events))
	eventIDs := make([]int64, 0, len(events))
	ownerIDs := make([]int64, 0, len(events))
	var locationIDs []int64
	for _, e := range events {
		e.Start, e.End = e.Start.UTC(), e.End.UTC()
		e.Participants = []*models.User{}
		byID[e.EventID] = e
		eventIDs = append(eventIDs, e.EventID)
		ownerIDs = append(ownerIDs, e.OwnerID)
		if e.LocationID != nil {
			locationIDs = append(locationIDs, *e.LocationID)
		}
	}

	owners, err := usersByID(ctx, q, ownerIDs)
	if err != nil {
		return err
	}

	locations := make(map[int64]*models.Location)
	if len(locationIDs) > 0 {
		rows, err := q.Query(ctx, selectLocations+`WHERE l.location_id = ANY($1)`, locationIDs)
		if err != nil {
			return fmt.Errorf("failed to load event locations: %w", err)
		}
		for rows.Next() {
			var loc models.Location
			if err := rows.Scan(locationDest(&loc)...); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan location: %w", err)
			}
			locations[loc.LocationID] = &loc
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("error iterating locations: %w", err)
		}
	}

	rows, err := q.Query(ctx, `
		SELECT p.event_id, `+userColumns("u")+`
		FROM event_participants p
		JOIN users u ON u.user_id = p.user_id
		WHERE p.event_id = ANY($1)
		ORDER BY p.event_id, u.user_id
	`, eventIDs)
	if err != nil {
		return fmt.Errorf("failed to load participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var eventID int64
		var u models.User
		if err := rows.Scan(append([]any{&eventID}, userDest(&u)...)...); err != nil {
			return fmt.Errorf("failed to scan participant: %w", err)
		}
		byID[eventID].Participants = append(byID[eventID].Participants, &u)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating participants: %w", err)
	}

	for _, e := range events {
		e.Owner = owners[e.OwnerID]
		if e.LocationID != nil {
			e.Location = locations[*e.LocationID]
		}
	}

	return nil
}

func usersByID(ctx context.Context, q querier, ids []int64) (map[int64]*models.User, error) {
	rows, err := q.Query(ctx, `SELECT `+userColumns("u")+` FROM users u WHERE u.user_id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	defer rows.Close()

	users := make(map[int64]*models.User, len(ids))
	for rows.Next() {
		var u models.User
		if err := rows.Scan(userDest(&u)...); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users[u.UserID] = &u
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}
