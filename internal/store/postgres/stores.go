package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wolfeidau/teamcal/internal/store"
)

// NewStores returns every store backed by pool.
func NewStores(pool *pgxpool.Pool) store.Stores {
	return store.Stores{
		Companies: NewCompanyStore(pool),
		Users:     NewUserStore(pool),
		Locations: NewLocationStore(pool),
		Events:    NewEventStore(pool),
		Sessions:  NewSessionStore(pool),
	}
}
