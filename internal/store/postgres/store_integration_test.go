//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/wolfeidau/teamcal/internal/models"
	"github.com/wolfeidau/teamcal/internal/store"
)

func setupPostgresContainer(t *testing.T, ctx context.Context) (store.Stores, func()) {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connString := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	pool, err := NewPool(ctx, &PoolConfig{ConnString: connString})
	require.NoError(t, err)

	require.NoError(t, Migrate(ctx, pool))
	// second run is a no-op
	require.NoError(t, Migrate(ctx, pool))

	cleanup := func() {
		pool.Close()
		_ = container.Terminate(ctx)
	}

	return NewStores(pool), cleanup
}

func TestIntegration_Calendar(t *testing.T) {
	ctx := context.Background()
	stores, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	companyID := uuid.Must(uuid.NewV7())
	_, created, err := stores.Companies.GetOrCreate(ctx, companyID)
	require.NoError(t, err)
	require.True(t, created)

	_, created, err = stores.Companies.GetOrCreate(ctx, companyID)
	require.NoError(t, err)
	require.False(t, created)

	newUser := func(name string) *models.User {
		u := &models.User{Username: name, Email: name + "@example.com", CompanyID: &companyID}
		require.NoError(t, stores.Users.Create(ctx, u))
		return u
	}

	owner := newUser("owner")
	guest := newUser("guest")
	require.Equal(t, models.DefaultTimezone, owner.Timezone)

	err = stores.Users.Create(ctx, &models.User{Username: "owner"})
	require.ErrorIs(t, err, store.ErrUserAlreadyExists)

	loc := &models.Location{ManagerID: owner.UserID, Name: "room", Address: "street 1"}
	require.NoError(t, stores.Locations.Create(ctx, loc))

	start := time.Date(2024, 4, 26, 9, 0, 0, 0, time.UTC)

	t.Run("constraints", func(t *testing.T) {
		tests := []struct {
			name       string
			ownerID    int64
			end        time.Time
			constraint string
		}{
			{"end before start", owner.UserID, start.Add(-time.Minute), store.ConstraintEndAfterStart},
			{"end equals start", owner.UserID, start, store.ConstraintEndAfterStart},
			{"longer than 8 hours", owner.UserID, start.Add(8*time.Hour + time.Second), store.ConstraintMaxDuration},
			{"missing owner", 0, start.Add(time.Hour), store.ConstraintOwnerRequired},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				e := &models.Event{OwnerID: tt.ownerID, Name: "n", Agenda: "a", Start: start, End: tt.end}
				err := stores.Events.Create(ctx, e, nil)
				require.ErrorIs(t, err, store.ErrConstraintViolation)
				require.Contains(t, err.Error(), tt.constraint)
			})
		}
	})

	t.Run("exactly 8 hours is accepted", func(t *testing.T) {
		e := &models.Event{OwnerID: owner.UserID, Name: "long", Agenda: "a", Start: start, End: start.Add(8 * time.Hour)}
		require.NoError(t, stores.Events.Create(ctx, e, nil))
	})

	t.Run("unknown participant rolls back", func(t *testing.T) {
		e := &models.Event{OwnerID: guest.UserID, Name: "ghost", Agenda: "a", Start: start, End: start.Add(time.Hour)}
		err := stores.Events.Create(ctx, e, []int64{owner.UserID, 999999})
		require.ErrorIs(t, err, store.ErrConstraintViolation)

		events, err := stores.Events.List(ctx, store.EventQuery{ViewerID: guest.UserID, Terms: []string{"ghost"}})
		require.NoError(t, err)
		require.Empty(t, events)
	})

	var planning *models.Event
	t.Run("create and read back", func(t *testing.T) {
		planning = &models.Event{
			OwnerID: owner.UserID, Name: "Sprint planning", Agenda: "100% focus_time",
			Start: start.Add(time.Hour), End: start.Add(2 * time.Hour), LocationID: &loc.LocationID,
		}
		require.NoError(t, stores.Events.Create(ctx, planning, []int64{guest.UserID, guest.UserID}))

		got, err := stores.Events.GetForViewer(ctx, guest.UserID, planning.EventID)
		require.NoError(t, err)
		require.Equal(t, "owner", got.Owner.Username)
		require.Equal(t, "owner", got.Location.Manager.Username)
		require.Len(t, got.Participants, 1)
		require.True(t, got.Start.Equal(planning.Start))
	})

	t.Run("list filters", func(t *testing.T) {
		events, err := stores.Events.List(ctx, store.EventQuery{ViewerID: guest.UserID})
		require.NoError(t, err)
		require.Len(t, events, 1)

		events, err = stores.Events.List(ctx, store.EventQuery{ViewerID: owner.UserID, Terms: []string{"SPRINT", "100%"}})
		require.NoError(t, err)
		require.Len(t, events, 1)

		// underscore is literal, not a wildcard
		events, err = stores.Events.List(ctx, store.EventQuery{ViewerID: owner.UserID, Terms: []string{"focus_t"}})
		require.NoError(t, err)
		require.Len(t, events, 1)
		events, err = stores.Events.List(ctx, store.EventQuery{ViewerID: owner.UserID, Terms: []string{"focusXt"}})
		require.NoError(t, err)
		require.Empty(t, events)

		window := store.TimeWindow{From: start.Add(90 * time.Minute), To: start.Add(24 * time.Hour)}
		events, err = stores.Events.List(ctx, store.EventQuery{ViewerID: owner.UserID, Day: &window})
		require.NoError(t, err)
		require.Len(t, events, 2)

		events, err = stores.Events.List(ctx, store.EventQuery{ViewerID: owner.UserID, LocationID: &loc.LocationID})
		require.NoError(t, err)
		require.Len(t, events, 1)
	})

	t.Run("company scoping", func(t *testing.T) {
		locs, err := stores.Locations.ListByCompany(ctx, companyID)
		require.NoError(t, err)
		require.Len(t, locs, 1)

		_, err = stores.Locations.GetForCompany(ctx, uuid.Must(uuid.NewV7()), loc.LocationID)
		require.ErrorIs(t, err, store.ErrLocationNotFound)

		ok, err := stores.Locations.ExistsInCompany(ctx, companyID)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("sessions", func(t *testing.T) {
		session := &models.Session{
			SessionID: uuid.Must(uuid.NewV7()), UserID: guest.UserID,
			CreatedAt: time.Now(), ExpiresAt: time.Now().Add(time.Hour), LastUsedAt: time.Now(),
			IPAddress: "10.0.0.1",
		}
		require.NoError(t, stores.Sessions.Create(ctx, session))

		got, err := stores.Sessions.Get(ctx, session.SessionID)
		require.NoError(t, err)
		require.Equal(t, "10.0.0.1", got.IPAddress)
		require.NoError(t, stores.Sessions.UpdateLastUsed(ctx, session.SessionID))

		expired := &models.Session{
			SessionID: uuid.Must(uuid.NewV7()), UserID: guest.UserID,
			CreatedAt: time.Now().Add(-2 * time.Hour), ExpiresAt: time.Now().Add(-time.Hour), LastUsedAt: time.Now().Add(-2 * time.Hour),
		}
		require.NoError(t, stores.Sessions.Create(ctx, expired))

		_, err = stores.Sessions.Get(ctx, expired.SessionID)
		require.ErrorIs(t, err, store.ErrSessionExpired)
		require.ErrorIs(t, stores.Sessions.UpdateLastUsed(ctx, expired.SessionID), store.ErrSessionNotFound)

		n, err := stores.Sessions.DeleteExpired(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, n)

		require.NoError(t, stores.Sessions.Delete(ctx, session.SessionID))
		require.ErrorIs(t, stores.Sessions.Delete(ctx, session.SessionID), store.ErrSessionNotFound)
	})

	t.Run("location delete cascades", func(t *testing.T) {
		require.NoError(t, stores.Locations.Delete(ctx, loc.LocationID))

		_, err := stores.Events.GetForViewer(ctx, owner.UserID, planning.EventID)
		require.ErrorIs(t, err, store.ErrEventNotFound)
	})

	t.Run("user delete cascades", func(t *testing.T) {
		require.NoError(t, stores.Users.Delete(ctx, owner.UserID))

		_, err := stores.Users.Get(ctx, owner.UserID)
		require.ErrorIs(t, err, store.ErrUserNotFound)

		require.ErrorIs(t, stores.Users.Delete(ctx, owner.UserID), store.ErrUserNotFound)
	})
}
