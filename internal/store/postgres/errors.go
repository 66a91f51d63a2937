package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/wolfeidau/teamcal/internal/store"
)

// mapPostgresError maps PostgreSQL-specific errors to sentinel errors.
// Returns the original error if it's not a PostgreSQL error or doesn't match known patterns.
func mapPostgresError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		switch pgErr.ConstraintName {
		case "users_username_key":
			return store.ErrUserAlreadyExists
		case "companies_pkey":
			return store.ErrCompanyAlreadyExists
		}
		return fmt.Errorf("unique constraint violation: %s: %w", pgErr.ConstraintName, err)

	case pgerrcode.ForeignKeyViolation:
		switch pgErr.ConstraintName {
		case "events_location_id_fkey":
			return store.ErrLocationNotFound
		case "locations_manager_id_fkey", "sessions_user_id_fkey":
			return store.ErrUserNotFound
		case "users_company_id_fkey":
			return store.ErrCompanyNotFound
		}
		return fmt.Errorf("%w: %s", store.ErrConstraintViolation, pgErr.ConstraintName)

	case pgerrcode.CheckViolation:
		return fmt.Errorf("%w: %s", store.ErrConstraintViolation, pgErr.ConstraintName)

	case pgerrcode.NotNullViolation:
		if pgErr.TableName == "events" && pgErr.ColumnName == "owner_id" {
			return fmt.Errorf("%w: %s", store.ErrConstraintViolation, store.ConstraintOwnerRequired)
		}
		return fmt.Errorf("%w: %s.%s not null", store.ErrConstraintViolation, pgErr.TableName, pgErr.ColumnName)

	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
		return fmt.Errorf("transaction conflict (retryable): %w", err)

	case pgerrcode.ConnectionException,
		pgerrcode.ConnectionDoesNotExist,
		pgerrcode.ConnectionFailure,
		pgerrcode.CannotConnectNow,
		pgerrcode.SQLClientUnableToEstablishSQLConnection:
		return fmt.Errorf("database connection error: %w", err)

	case pgerrcode.AdminShutdown,
		pgerrcode.CrashShutdown:
		return fmt.Errorf("database server unavailable: %w", err)

	case pgerrcode.QueryCanceled:
		return fmt.Errorf("query canceled: %w", err)

	default:
		return fmt.Errorf("postgres error [%s]: %s (detail: %s, hint: %s): %w",
			pgErr.Code, pgErr.Message, pgErr.Detail, pgErr.Hint, err)
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
