package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/teamcal/internal/models"
	"github.com/wolfeidau/teamcal/internal/store"
)

type fixture struct {
	db      *DB
	stores  store.Stores
	company uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := New()
	f := &fixture{db: db, stores: db.Stores(), company: uuid.Must(uuid.NewV7())}

	_, _, err := f.stores.Companies.GetOrCreate(context.Background(), f.company)
	require.NoError(t, err)

	return f
}

func (f *fixture) user(t *testing.T, username string) *models.User {
	t.Helper()

	companyID := f.company
	u := &models.User{
		Username:  username,
		Email:     username + "@example.com",
		CompanyID: &companyID,
		Timezone:  "UTC",
	}
	require.NoError(t, f.stores.Users.Create(context.Background(), u))
	return u
}

func (f *fixture) location(t *testing.T, manager *models.User) *models.Location {
	t.Helper()

	loc := &models.Location{ManagerID: manager.UserID, Name: "conference room", Address: "ul. Wielkopolska 1"}
	require.NoError(t, f.stores.Locations.Create(context.Background(), loc))
	return loc
}

func (f *fixture) event(t *testing.T, owner *models.User, start time.Time, d time.Duration, locationID *int64, participants ...*models.User) *models.Event {
	t.Helper()

	ids := make([]int64, 0, len(participants))
	for _, p := range participants {
		ids = append(ids, p.UserID)
	}

	e := &models.Event{
		OwnerID:    owner.UserID,
		Name:       "planning",
		Agenda:     "sprint planning poker",
		Start:      start,
		End:        start.Add(d),
		LocationID: locationID,
	}
	require.NoError(t, f.stores.Events.Create(context.Background(), e, ids))
	return e
}
