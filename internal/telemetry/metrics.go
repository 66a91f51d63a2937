package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/teamcal"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Event metrics
	EventsCreatedTotal       metric.Int64Counter
	EventParticipants        metric.Int64Histogram
	ParticipantsDroppedTotal metric.Int64Counter
	EventQueriesTotal        metric.Int64Counter
	EventQueryDuration       metric.Float64Histogram

	// Rejections by reason (validation, format, location, constraint)
	RejectionsTotal metric.Int64Counter

	// Location metrics
	LocationsCreatedTotal metric.Int64Counter
	LocationsDeletedTotal metric.Int64Counter

	// Auth metrics
	LoginsTotal        metric.Int64Counter
	LoginFailuresTotal metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// initMetrics creates and registers all metric instruments.
// Instruments come from the global meter provider, which is a no-op until InitTelemetry runs.
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.EventsCreatedTotal, _ = meter.Int64Counter(
		"teamcal.events.created.total",
		metric.WithDescription("Total number of events created"),
		metric.WithUnit("{event}"),
	)

	m.EventParticipants, _ = meter.Int64Histogram(
		"teamcal.events.participants",
		metric.WithDescription("Number of participants attached to created events"),
		metric.WithUnit("{user}"),
	)

	m.ParticipantsDroppedTotal, _ = meter.Int64Counter(
		"teamcal.events.participants.dropped.total",
		metric.WithDescription("Participant emails ignored because no account matched"),
		metric.WithUnit("{email}"),
	)

	m.EventQueriesTotal, _ = meter.Int64Counter(
		"teamcal.events.queries.total",
		metric.WithDescription("Total number of event list queries"),
		metric.WithUnit("{query}"),
	)

	m.EventQueryDuration, _ = meter.Float64Histogram(
		"teamcal.events.queries.duration",
		metric.WithDescription("Duration of event list queries"),
		metric.WithUnit("ms"),
	)

	m.RejectionsTotal, _ = meter.Int64Counter(
		"teamcal.rejections.total",
		metric.WithDescription("Writes rejected before or by the store, by reason"),
		metric.WithUnit("{request}"),
	)

	m.LocationsCreatedTotal, _ = meter.Int64Counter(
		"teamcal.locations.created.total",
		metric.WithDescription("Total number of locations created"),
		metric.WithUnit("{location}"),
	)

	m.LocationsDeletedTotal, _ = meter.Int64Counter(
		"teamcal.locations.deleted.total",
		metric.WithDescription("Total number of locations deleted"),
		metric.WithUnit("{location}"),
	)

	m.LoginsTotal, _ = meter.Int64Counter(
		"teamcal.auth.logins.total",
		metric.WithDescription("Total number of successful logins"),
		metric.WithUnit("{login}"),
	)

	m.LoginFailuresTotal, _ = meter.Int64Counter(
		"teamcal.auth.login_failures.total",
		metric.WithDescription("Total number of failed logins"),
		metric.WithUnit("{login}"),
	)

	return m
}
