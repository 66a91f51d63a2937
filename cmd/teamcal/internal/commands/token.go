package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/wolfeidau/teamcal/internal/auth"
	"github.com/wolfeidau/teamcal/internal/logger"
)

type TokenCmd struct {
	Username string        `arg:"" help:"User the token authenticates as"`
	TTL      time.Duration `help:"Token lifetime" default:"1h"`
	Secret   string        `help:"Token signing secret (at least 32 bytes)" required:"" env:"TEAMCAL_TOKEN_SECRET"`
	Postgres PostgresFlags `embed:"" prefix:"postgres-"`
}

func (t *TokenCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Dev)
	ctx = log.WithContext(ctx)

	stores, closeStores, err := t.Postgres.openStores(ctx)
	if err != nil {
		return err
	}
	defer closeStores()

	user, err := stores.Users.GetByUsername(ctx, t.Username)
	if err != nil {
		return fmt.Errorf("failed to find user %q: %w", t.Username, err)
	}

	token, err := auth.IssueToken([]byte(t.Secret), user.UserID, t.TTL)
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}
