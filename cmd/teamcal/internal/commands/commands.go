package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wolfeidau/teamcal/internal/store"
	postgresstore "github.com/wolfeidau/teamcal/internal/store/postgres"
)

type Globals struct {
	Dev     bool
	Version string
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
		IdleTimeout:       5 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}

type PostgresFlags struct {
	// Connection Configuration
	ConnString   string        `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`
	ConnectRetry time.Duration `help:"how long to wait for the database at startup" default:"30s" env:"POSTGRES_CONNECT_RETRY"`

	// Connection Pool Configuration
	MaxConns        int32         `help:"maximum number of connections in pool" default:"20"`
	MinConns        int32         `help:"minimum number of connections in pool" default:"2"`
	MaxConnLifetime time.Duration `help:"maximum connection lifetime" default:"1h"`
	MaxConnIdleTime time.Duration `help:"maximum connection idle time" default:"30m"`
}

func (p *PostgresFlags) Validate() error {
	if p.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
	}
	return nil
}

// open connects to PostgreSQL and optionally applies migrations.
func (p *PostgresFlags) open(ctx context.Context, migrate bool) (*pgxpool.Pool, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate postgres flags: %w", err)
	}

	pool, err := postgresstore.NewPool(ctx, &postgresstore.PoolConfig{
		ConnString:      p.ConnString,
		MaxConns:        p.MaxConns,
		MinConns:        p.MinConns,
		MaxConnLifetime: p.MaxConnLifetime,
		MaxConnIdleTime: p.MaxConnIdleTime,
		ConnectRetry:    p.ConnectRetry,
	})
	if err != nil {
		return nil, err
	}

	if migrate {
		if err := postgresstore.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
	}

	return pool, nil
}

// openStores opens the PostgreSQL stores used by the administrative commands.
func (p *PostgresFlags) openStores(ctx context.Context) (store.Stores, func(), error) {
	pool, err := p.open(ctx, false)
	if err != nil {
		return store.Stores{}, nil, err
	}
	return postgresstore.NewStores(pool), pool.Close, nil
}
