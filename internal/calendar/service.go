// Package calendar holds the scheduling rules: event validation, location eligibility,
// participant resolution and viewer-scoped reads. Persistence is delegated to the
// store interfaces.
package calendar

import (
	"github.com/wolfeidau/teamcal/internal/store"
	"github.com/wolfeidau/teamcal/internal/telemetry"
)

// Options configures a Service.
type Options struct {
	LocationCheck LocationCheckMode
}

// Service implements the calendar operations on top of a set of stores.
type Service struct {
	stores       store.Stores
	locations    *LocationChecker
	participants *ParticipantResolver
	metrics      *telemetry.Metrics
}

// NewService creates a calendar service.
func NewService(stores store.Stores, opts Options) *Service {
	return &Service{
		stores:       stores,
		locations:    NewLocationChecker(stores.Locations, opts.LocationCheck),
		participants: NewParticipantResolver(stores.Users),
		metrics:      telemetry.GetMetrics(),
	}
}
