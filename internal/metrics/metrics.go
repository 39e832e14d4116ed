package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "grassmap"

type Metrics struct {
	GeocodeLookups   *prometheus.CounterVec
	ChatRequests     *prometheus.CounterVec
	UpstreamRequests *prometheus.CounterVec
	Events           *prometheus.CounterVec
	ActiveSessions   prometheus.Gauge
	TripsCompleted   prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		GeocodeLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_lookups_total",
			Help:      "Address lookups by provider and outcome (ok, error, cache).",
		}, []string{"provider", "outcome"}),
		ChatRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_requests_total",
			Help:      "Chat turns by provider and outcome.",
		}, []string{"provider", "outcome"}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Calls to third-party lookup APIs.",
		}, []string{"service", "outcome"}),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analytics_events_total",
			Help:      "Client analytics events by name.",
		}, []string{"name"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions currently held in memory.",
		}),
		TripsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trips_completed_total",
			Help:      "Plans whose points were all checked in.",
		}),
	}
	reg.MustRegister(
		m.GeocodeLookups,
		m.ChatRequests,
		m.UpstreamRequests,
		m.Events,
		m.ActiveSessions,
		m.TripsCompleted,
	)
	return m
}

// NewNop returns collectors bound to a private registry, for tests and tools.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
