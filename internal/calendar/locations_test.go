package calendar

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/teamcal/internal/store"
)

func TestLocations(t *testing.T) {
	f := newFixture(t, LocationCheckStrict)
	ctx := context.Background()
	manager := f.addUser(t, "manager", "UTC")
	colleague := f.addUser(t, "colleague", "UTC")
	outsider := f.addUserIn(t, uuid.Must(uuid.NewV7()), "outsider", "UTC")

	loc := f.addLocation(t, manager)

	t.Run("unknown manager", func(t *testing.T) {
		_, err := f.svc.CreateLocation(ctx, manager, CreateLocationInput{ManagerID: 999, Name: "x"})

		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		require.Equal(t, "manager_id", ve.Field)
		require.Equal(t, `Invalid pk "999" - object does not exist.`, ve.Message)
	})

	t.Run("colleague sees company locations", func(t *testing.T) {
		locs, err := f.svc.ListLocations(ctx, colleague)
		require.NoError(t, err)
		require.Len(t, locs, 1)
		require.Equal(t, "manager", locs[0].Manager.Username)

		got, err := f.svc.GetLocation(ctx, colleague, loc.LocationID)
		require.NoError(t, err)
		require.Equal(t, loc.Name, got.Name)
	})

	t.Run("outsider does not", func(t *testing.T) {
		locs, err := f.svc.ListLocations(ctx, outsider)
		require.NoError(t, err)
		require.Empty(t, locs)

		_, err = f.svc.GetLocation(ctx, outsider, loc.LocationID)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete cascades events", func(t *testing.T) {
		in := eventInput("2024-04-26 11:00:00", "2024-04-26 12:00:00")
		in.LocationID = &loc.LocationID
		event, err := f.svc.CreateEvent(ctx, manager, in)
		require.NoError(t, err)

		require.NoError(t, f.svc.DeleteLocation(ctx, loc.LocationID))

		_, err = f.svc.GetEvent(ctx, manager, event.EventID)
		require.ErrorIs(t, err, ErrNotFound)

		require.ErrorIs(t, f.svc.DeleteLocation(ctx, loc.LocationID), ErrNotFound)
	})
}

func TestProvisioning(t *testing.T) {
	f := newFixture(t, LocationCheckStrict)
	ctx := context.Background()

	t.Run("company is created once", func(t *testing.T) {
		first := f.addUser(t, "first", "")
		second := f.addUser(t, "second", "")
		require.Equal(t, *first.CompanyID, *second.CompanyID)
		require.Equal(t, "Europe/Warsaw", first.Timezone)

		_, err := f.stores.Companies.Get(ctx, f.company)
		require.NoError(t, err)
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := f.svc.AddUser(ctx, AddUserInput{Username: "first", Password: "pw", CompanyID: f.company})

		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		require.Equal(t, "username", ve.Field)
	})

	t.Run("invalid timezone", func(t *testing.T) {
		for _, tz := range []string{"Mars/Olympus", "Local"} {
			_, err := f.svc.AddUser(ctx, AddUserInput{Username: "x", Password: "pw", CompanyID: f.company, Timezone: tz})

			var ve *ValidationError
			require.ErrorAs(t, err, &ve, tz)
			require.Equal(t, "timezone", ve.Field)
		}
	})

	t.Run("delete user", func(t *testing.T) {
		require.NoError(t, f.svc.DeleteUser(ctx, "second"))

		_, err := f.stores.Users.GetByUsername(ctx, "second")
		require.ErrorIs(t, err, store.ErrUserNotFound)

		require.ErrorIs(t, f.svc.DeleteUser(ctx, "second"), ErrNotFound)
	})
}
