// Package reactors implements the per-event lifecycle handlers (spec
// §4.6): one function per rider/driver/trip state-machine transition,
// dispatched by the scenario Runner in the fixed order spec §6 names.
// Every reactor inspects the CurrentEvent and early-returns unless its
// kind (and subject) matches — grounded on the teacher's switch-shaped
// event handling in sim/runner.go, generalized from one big loop over
// concrete event structs into a schedule of independent functions over
// a single tagged Event (spec §9 Design Notes: "the spec mandates the
// CurrentEvent model exclusively; the runner pops once, reactors only
// inspect").
package reactors

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dpapukchiev/ridehail-sim/clock"
	"github.com/dpapukchiev/ridehail-sim/distribution"
	"github.com/dpapukchiev/ridehail-sim/matching"
	"github.com/dpapukchiev/ridehail-sim/model"
	"github.com/dpapukchiev/ridehail-sim/pricing"
	"github.com/dpapukchiev/ridehail-sim/reposition"
	"github.com/dpapukchiev/ridehail-sim/telemetry"
	"github.com/dpapukchiev/ridehail-sim/traffic"
)

// MatchRetrySecs is the per-rider TryMatch reschedule delay on a miss
// (spec §4.4: "MATCH_RETRY_SECS = 30 s").
const MatchRetrySecs = 30

// OffDutyCheckIntervalSecs is how often CheckDriverOffDuty re-schedules
// itself (spec §4.6: "periodic every 5 min").
const OffDutyCheckIntervalSecs = 300

// ETASpeedKmh is the nominal speed ShowQuote uses to estimate pickup ETA
// (spec §4.6 ShowQuote: "great_circle_km(d, rider)/ETA_SPEED_KMH").
const ETASpeedKmh = 40.0

// Params bundles every tunable the reactor schedule reads (spec §6
// configuration groups, minus Scenario/Telemetry/Server/Osrm which the
// scenario package owns directly).
type Params struct {
	Seed int64

	MatchRadius         int
	MatchingAlgorithm   matching.Algorithm
	BatchEnabled        bool
	BatchIntervalSecs   uint64
	HotspotWeight       float64

	MaxQuoteRejections  int
	ReQuoteDelaySecs    uint64
	AcceptProbability   float64
	MaxWillingnessToPay float64
	MaxAcceptableEtaMs  uint64

	MinWaitSecs uint64
	MaxWaitSecs uint64

	BaseAcceptanceScore float64

	Pricing    pricing.Config
	Traffic    traffic.Profile
	Reposition reposition.Policy

	BaseSpeedKmh float64

	// SnapshotIntervalMs gates how often TelemetrySnapshotReactor pushes a
	// new telemetry.SimSnapshot (spec §4.7).
	SnapshotIntervalMs uint64
}

// DefaultParams returns the scenario's documented defaults (spec §6).
func DefaultParams() Params {
	return Params{
		Seed:                42,
		MatchRadius:         3,
		MatchingAlgorithm:   matching.AlgorithmCostBased,
		BatchEnabled:        false,
		BatchIntervalSecs:   15,
		HotspotWeight:       0.5,
		MaxQuoteRejections:  3,
		ReQuoteDelaySecs:    10,
		AcceptProbability:   0.8,
		MaxWillingnessToPay: 80,
		MaxAcceptableEtaMs:  10 * 60 * 1000,
		MinWaitSecs:         60,
		MaxWaitSecs:         600,
		BaseAcceptanceScore: 1.0,
		Pricing:             pricing.DefaultConfig(),
		Traffic:             traffic.None(),
		Reposition:          reposition.DefaultPolicy(),
		BaseSpeedKmh:        40.0,
		SnapshotIntervalMs:  5000,
	}
}

// World bundles every resource a reactor needs: the entity store, the
// clock (for scheduling follow-up events), telemetry sinks, and the
// tunable Params. One World is constructed per scenario run and shared
// by every reactor in the schedule (spec §5 "every reactor has
// exclusive mutable access to the world for the duration of its
// invocation").
type World struct {
	RunID   uuid.UUID
	Store   *model.Store
	Clock   *clock.Clock
	Metrics *telemetry.Metrics
	Trips   *telemetry.SimSnapshots
	Log     *logrus.Entry
	Params  Params

	// CompletedTrips accumulates records appended on TripCompleted (spec
	// §4.7); the scenario Runner reads this after the run drains.
	CompletedTrips []telemetry.CompletedTripRecord

	// Spawning: the scenario builder wires these before the run starts.
	// RiderSource/DriverSource sample new entities on each SpawnRider/
	// SpawnDriver event; the counters below track the running entity
	// index each draw derives its seed from (spec §9 "seed, entity_index,
	// event_kind") and the remaining-spawns budget so SpawnRiderReactor
	// knows when to stop self-rescheduling.
	RiderSource   RiderSource
	DriverSource  DriverSource
	RiderArrival  distribution.InterArrival
	DriverArrival distribution.InterArrival

	NumRidersTarget  int
	NumDriversTarget int
	RidersSpawned    int
	DriversSpawned   int
	NextRiderIndex   uint64
	NextDriverIndex  uint64

	DailyEarningsTarget float64
	FatigueThresholdMs  uint64

	// TargetIdle is the per-zone idle-driver target the repositioning
	// controller last computed (spec §4.4 CostBased: "target_idle[z]
	// comes from the repositioning controller"); nil/empty until the
	// first RepositionRun fires, in which case scoring falls back to
	// minimum_zone_reserve per matching.ZoneStats.targetIdle.
	TargetIdle map[model.Cell]int

	// LastSnapshotMs is the sim-time TelemetrySnapshotReactor last pushed
	// a SimSnapshot at (spec §4.7).
	LastSnapshotMs uint64

	// Profiler, when set, accumulates per-reactor wall-clock cost
	// alongside Metrics.ReactorDuration — nil disables the overhead
	// entirely for runs that don't want it.
	Profiler *telemetry.Profiler
}

// Reactor is one entry in the fixed dispatch schedule (spec §6
// "Reactor schedule order"). It inspects ev and, if relevant, mutates w
// and schedules follow-up events.
type Reactor func(w *World, ev *clock.Event)

// namedReactor pairs a Reactor with the label Metrics.ReactorDuration and
// Profiler record it under, so per-reactor cost can be attributed without
// reflection on the underlying function value.
type namedReactor struct {
	name string
	fn   Reactor
}

// Schedule is the fixed, deterministic reactor order spec §6 mandates.
// Execution order is part of the specification, not an implementation
// detail: later reactors in the list observe mutations earlier ones in
// the same step already made.
var Schedule = []namedReactor{
	{"SimulationStarted", SimulationStarted},
	{"SpawnRiderReactor", SpawnRiderReactor},
	{"SpawnDriverReactor", SpawnDriverReactor},
	{"ShowQuote", ShowQuote},
	{"QuoteDecisionReactor", QuoteDecisionReactor},
	{"QuoteAccepted", QuoteAccepted},
	{"QuoteRejected", QuoteRejected},
	{"TryMatchReactor", TryMatchReactor},
	{"BatchMatchRunReactor", BatchMatchRunReactor},
	{"MatchAccepted", MatchAccepted},
	{"MatchRejected", MatchRejected},
	{"DriverDecisionReactor", DriverDecisionReactor},
	{"MoveStepReactor", MoveStepReactor},
	{"PickupEtaUpdated", PickupEtaUpdated},
	{"RiderCancel", RiderCancel},
	{"TripStarted", TripStarted},
	{"TripCompletedReactor", TripCompletedReactor},
	{"CheckDriverOffDuty", CheckDriverOffDuty},
	{"RepositionRunReactor", RepositionRunReactor},
	{"TelemetrySnapshotReactor", TelemetrySnapshotReactor},
}

// Dispatch runs every reactor in Schedule against ev, then applies
// deferred entity commands (spec §4.2 steps 3-4). Each reactor's wall-clock
// cost is attributed to its name in Metrics.ReactorDuration and, when w.Profiler
// is set, in the in-process Profiler summary too.
func Dispatch(w *World, ev *clock.Event) {
	for _, r := range Schedule {
		start := time.Now()
		r.fn(w, ev)
		elapsed := time.Since(start)

		if w.Metrics != nil {
			w.Metrics.ReactorDuration.WithLabelValues(r.name).Observe(elapsed.Seconds())
		}
		if w.Profiler != nil {
			w.Profiler.Record(r.name, elapsed)
		}
	}
	w.Store.ApplyDeferred()
}
