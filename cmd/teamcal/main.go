package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/wolfeidau/teamcal/cmd/teamcal/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Dev     bool `help:"Enable development mode (debug logging, console output)." env:"TEAMCAL_DEV"`
		Version kong.VersionFlag

		Serve          commands.ServeCmd          `cmd:"" help:"Start the calendar API server"`
		Migrate        commands.MigrateCmd        `cmd:"" help:"Apply database migrations"`
		AddUser        commands.AddUserCmd        `cmd:"" help:"Create a user, creating the company if needed"`
		ImportUsers    commands.ImportUsersCmd    `cmd:"" help:"Create users from a YAML file"`
		RemoveUser     commands.RemoveUserCmd     `cmd:"" help:"Delete a user and everything it owns"`
		RemoveLocation commands.RemoveLocationCmd `cmd:"" help:"Delete a location and its events"`
		Token          commands.TokenCmd          `cmd:"" help:"Issue an API bearer token for a user"`
	}
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := kong.Parse(&cli,
		kong.Name("teamcal"),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Dev: cli.Dev, Version: version})
	cmd.FatalIfErrorf(err)
}
