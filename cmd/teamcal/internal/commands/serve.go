package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"filippo.io/csrf"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/teamcal/internal/api"
	"github.com/wolfeidau/teamcal/internal/auth"
	"github.com/wolfeidau/teamcal/internal/calendar"
	"github.com/wolfeidau/teamcal/internal/logger"
	"github.com/wolfeidau/teamcal/internal/store"
	memorystore "github.com/wolfeidau/teamcal/internal/store/memory"
	postgresstore "github.com/wolfeidau/teamcal/internal/store/postgres"
	"github.com/wolfeidau/teamcal/internal/telemetry"
)

type ServeCmd struct {
	// Server configuration
	Listen string `help:"HTTP server listen address" default:"0.0.0.0:8080" env:"TEAMCAL_LISTEN"`
	Cert   string `help:"path to TLS cert file" default:"" env:"TEAMCAL_TLS_CERT"`
	Key    string `help:"path to TLS key file" default:"" env:"TEAMCAL_TLS_KEY"`

	// CORS configuration
	CORSOrigins []string `help:"allowed CORS origins" default:"https://localhost" env:"TEAMCAL_CORS_ORIGINS"`

	// Authentication
	TokenSecret   string        `help:"secret for verifying bearer tokens (at least 32 bytes, empty disables bearer auth)" env:"TEAMCAL_TOKEN_SECRET"`
	SessionTTL    time.Duration `help:"session TTL" default:"24h" env:"TEAMCAL_SESSION_TTL"`
	SecureCookies bool          `help:"mark the session cookie Secure" default:"true" negatable:"" env:"TEAMCAL_SECURE_COOKIES"`

	// Scheduling rules
	LocationCheck string `help:"how event locations are checked against the owner's company (strict or company)" default:"strict" enum:"strict,company" env:"TEAMCAL_LOCATION_CHECK"`

	// Operational
	Tracing     bool    `help:"enable tracing and metrics export" default:"false" env:"TEAMCAL_TRACING"`
	TraceSample float64 `help:"fraction of root traces sampled" default:"1.0" env:"TEAMCAL_TRACE_SAMPLE"`

	// Store configuration
	StoreType   string        `help:"store type (memory or postgres)" default:"memory" env:"TEAMCAL_STORE_TYPE" enum:"memory,postgres"`
	SeedFile    string        `help:"YAML file of users to create at startup" type:"existingfile" env:"TEAMCAL_SEED_FILE"`
	Postgres    PostgresFlags `embed:"" prefix:"postgres-"`
	AutoMigrate bool          `help:"apply database migrations on startup" default:"false" env:"TEAMCAL_POSTGRES_AUTO_MIGRATE"`
}

func (c *ServeCmd) Validate() error {
	if c.TokenSecret != "" && len(c.TokenSecret) < auth.MinSecretLength {
		return fmt.Errorf("token secret must be at least %d bytes (256 bits) for HMAC-SHA256", auth.MinSecretLength)
	}
	if (c.Cert == "") != (c.Key == "") {
		return errors.New("TLS requires both --cert and --key")
	}
	return nil
}

func (c *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Dev)
	ctx = log.WithContext(ctx)

	log.Info().Str("version", globals.Version).Bool("dev", globals.Dev).Msg("Starting server")

	if !globals.Dev {
		gin.SetMode(gin.ReleaseMode)
	}

	if c.Tracing {
		log.Info().Float64("sample_ratio", c.TraceSample).Msg("Tracing is enabled")
		shutdown, err := telemetry.InitTelemetry(ctx, "teamcal", globals.Version, c.TraceSample)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without metrics")
			shutdown = func(ctx context.Context) error { return nil }
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Failed to shutdown telemetry")
			}
		}()
	}

	stores, closeStores, err := c.createStores(ctx, log)
	if err != nil {
		return err
	}
	defer closeStores()

	mode, err := calendar.ParseLocationCheckMode(c.LocationCheck)
	if err != nil {
		return err
	}
	svc := calendar.NewService(stores, calendar.Options{LocationCheck: mode})

	if c.SeedFile != "" {
		entries, err := readUserFile(c.SeedFile)
		if err != nil {
			return err
		}
		created, err := importUsers(ctx, svc, entries)
		if err != nil {
			return err
		}
		log.Info().Int("users", created).Str("file", c.SeedFile).Msg("Seeded users")
	}

	if n, err := stores.Sessions.DeleteExpired(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to remove expired sessions")
	} else if n > 0 {
		log.Info().Int("sessions", n).Msg("Removed expired sessions")
	}

	if c.TokenSecret == "" {
		log.Warn().Msg("No token secret configured, bearer authentication is disabled")
	}

	authn := auth.NewAuthenticator(stores.Users, stores.Sessions, auth.Config{
		TokenSecret:   []byte(c.TokenSecret),
		SessionTTL:    c.SessionTTL,
		SecureCookies: c.SecureCookies,
	})

	router := api.NewRouter(svc, authn, api.Options{
		Logger:      log,
		Tracing:     c.Tracing,
		ServiceName: "teamcal",
	})

	// cookie sessions need cross-origin write protection; CORS origins are trusted
	protection := csrf.New()
	for _, origin := range c.CORSOrigins {
		if err := protection.AddTrustedOrigin(origin); err != nil {
			return fmt.Errorf("invalid CORS origin %q: %w", origin, err)
		}
	}

	srv := configureHTTPServer(c.Listen, withCORS(c.CORSOrigins, protection.Handler(router)))

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", c.Listen).Bool("tls", c.Cert != "").Str("store", c.StoreType).Msg("Starting HTTP server")
		if c.Cert != "" {
			errCh <- srv.ListenAndServeTLS(c.Cert, c.Key)
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func (c *ServeCmd) createStores(ctx context.Context, log zerolog.Logger) (store.Stores, func(), error) {
	switch c.StoreType {
	case "postgres":
		pool, err := c.Postgres.open(ctx, c.AutoMigrate)
		if err != nil {
			return store.Stores{}, nil, err
		}
		log.Info().Msg("Using PostgreSQL stores")
		return postgresstore.NewStores(pool), pool.Close, nil

	default:
		if c.SeedFile == "" {
			log.Warn().Msg("Using in-memory stores without a seed file, nobody can log in")
		} else {
			log.Info().Msg("Using in-memory stores")
		}
		return memorystore.New().Stores(), func() {}, nil
	}
}

// withCORS allows browser clients on the configured origins to call the API with cookies.
func withCORS(allowedOrigins []string, h http.Handler) http.Handler {
	middleware := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true, // Required for cookie-based authentication
	})
	return middleware.Handler(h)
}
