package commands

import (
	"context"

	"github.com/wolfeidau/teamcal/internal/logger"
)

type MigrateCmd struct {
	Postgres PostgresFlags `embed:"" prefix:"postgres-"`
}

func (c *MigrateCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Dev)
	ctx = log.WithContext(ctx)

	pool, err := c.Postgres.open(ctx, true)
	if err != nil {
		return err
	}
	pool.Close()

	log.Info().Msg("Migrations applied")
	return nil
}
