package telemetry

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the Prometheus collectors the scenario Runner and
// Repositioning controller update as the simulation advances — grounded
// on the pack's services exposing a prometheus.Registry per process
// (client_golang is the pack's sole metrics library).
type Metrics struct {
	Registry *prometheus.Registry

	CompletedTrips    prometheus.Counter
	QuoteRejections   *prometheus.CounterVec
	MatchMisses       prometheus.Counter
	OsrmSpawnFallback prometheus.Counter
	RepositionMoves   prometheus.Counter
	ReactorDuration   *prometheus.HistogramVec
}

// NewMetrics constructs and registers every collector against a fresh
// registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		CompletedTrips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "completed_trips_total",
			Help: "Total trips that reached TripCompleted.",
		}),
		QuoteRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quote_rejections_total",
			Help: "Quote rejections by reason.",
		}, []string{"reason"}),
		MatchMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "match_misses_total",
			Help: "TryMatch attempts, and riders left unpaired by a BatchMatchRun assignment, that found no eligible driver.",
		}),
		OsrmSpawnFallback: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "osrm_spawn_fallback_total",
			Help: "Spawns that fell back to an unsnapped position after an osrm failure.",
		}),
		RepositionMoves: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reposition_moves_total",
			Help: "Idle drivers relocated by the repositioning controller.",
		}),
		ReactorDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "reactor_duration_seconds",
			Help:    "Per-reactor wall-clock duration.",
			Buckets: prometheus.DefBuckets,
		}, []string{"reactor"}),
	}

	reg.MustRegister(
		m.CompletedTrips,
		m.QuoteRejections,
		m.MatchMisses,
		m.OsrmSpawnFallback,
		m.RepositionMoves,
		m.ReactorDuration,
	)
	return m
}
