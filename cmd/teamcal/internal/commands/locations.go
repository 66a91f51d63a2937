package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/wolfeidau/teamcal/internal/calendar"
	"github.com/wolfeidau/teamcal/internal/logger"
)

type RemoveLocationCmd struct {
	LocationID int64         `arg:"" help:"ID of the location to delete"`
	Postgres   PostgresFlags `embed:"" prefix:"postgres-"`
}

func (c *RemoveLocationCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Dev)
	ctx = log.WithContext(ctx)

	stores, closeStores, err := c.Postgres.openStores(ctx)
	if err != nil {
		return err
	}
	defer closeStores()

	if err := calendar.NewService(stores, calendar.Options{}).DeleteLocation(ctx, c.LocationID); err != nil {
		if errors.Is(err, calendar.ErrNotFound) {
			return fmt.Errorf("location %d not found", c.LocationID)
		}
		return err
	}

	fmt.Printf("Removed location %d and its events\n", c.LocationID)
	return nil
}
