package calendar

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/teamcal/internal/models"
	"github.com/wolfeidau/teamcal/internal/store"
	"github.com/wolfeidau/teamcal/internal/store/memory"
)

type fixture struct {
	svc     *Service
	stores  store.Stores
	company uuid.UUID
}

func newFixture(t *testing.T, mode LocationCheckMode) *fixture {
	t.Helper()

	stores := memory.New().Stores()
	return &fixture{
		svc:     NewService(stores, Options{LocationCheck: mode}),
		stores:  stores,
		company: uuid.Must(uuid.NewV7()),
	}
}

func (f *fixture) addUser(t *testing.T, username, tz string) *models.User {
	t.Helper()
	return f.addUserIn(t, f.company, username, tz)
}

func (f *fixture) addUserIn(t *testing.T, companyID uuid.UUID, username, tz string) *models.User {
	t.Helper()

	u, err := f.svc.AddUser(context.Background(), AddUserInput{
		Username:  username,
		Password:  "password",
		CompanyID: companyID,
		Email:     username + "@example.com",
		Timezone:  tz,
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) addLocation(t *testing.T, manager *models.User) *models.Location {
	t.Helper()

	loc, err := f.svc.CreateLocation(context.Background(), manager, CreateLocationInput{
		ManagerID: manager.UserID,
		Name:      "Board room",
		Address:   "Main street 1",
	})
	require.NoError(t, err)
	return loc
}

func eventInput(start, end string) CreateEventInput {
	return CreateEventInput{
		Name:      "Planning",
		Agenda:    "Quarterly roadmap review",
		DateStart: start,
		DateEnd:   end,
	}
}

func int64Ptr(v int64) *int64 { return &v }
