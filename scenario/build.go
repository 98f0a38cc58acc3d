// Package scenario wires the config, entity store, clock, spawners, and
// reactor schedule into a runnable simulation (spec §6), then drives the
// event loop (spec §4.2) — grounded on the teacher's StartRunner
// (backend/sim/runner.go), generalized from a goroutine-per-bus producer
// into a single-threaded pop/dispatch loop matching the CurrentEvent
// model spec §4.1/§4.2 mandate.
package scenario

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dpapukchiev/ridehail-sim/clock"
	"github.com/dpapukchiev/ridehail-sim/config"
	"github.com/dpapukchiev/ridehail-sim/distribution"
	"github.com/dpapukchiev/ridehail-sim/logging"
	"github.com/dpapukchiev/ridehail-sim/matching"
	"github.com/dpapukchiev/ridehail-sim/model"
	"github.com/dpapukchiev/ridehail-sim/osrm"
	"github.com/dpapukchiev/ridehail-sim/pricing"
	"github.com/dpapukchiev/ridehail-sim/reactors"
	"github.com/dpapukchiev/ridehail-sim/reposition"
	"github.com/dpapukchiev/ridehail-sim/spawner"
	"github.com/dpapukchiev/ridehail-sim/telemetry"
	"github.com/dpapukchiev/ridehail-sim/traffic"
)

// riderSourceAdapter satisfies reactors.RiderSource over spawner.SpawnRider.
type riderSourceAdapter struct{ cfg spawner.Config }

func (a riderSourceAdapter) NextRider(entityIndex uint64) (model.Rider, model.Cell) {
	return spawner.SpawnRider(a.cfg, entityIndex)
}

// driverSourceAdapter satisfies reactors.DriverSource over spawner.SpawnDriver.
type driverSourceAdapter struct{ cfg spawner.Config }

func (a driverSourceAdapter) NextDriver(entityIndex uint64, nowMs uint64, dailyTarget float64, fatigueThresholdMs uint64) (model.Driver, model.Cell, model.Earnings, model.Fatigue) {
	return spawner.SpawnDriver(a.cfg, entityIndex, nowMs, dailyTarget, fatigueThresholdMs)
}

// Scenario bundles everything one simulation run needs: the store, the
// clock, the reactor World, and the log/telemetry sinks a caller (main
// or the live server) reads from after (or during) a run.
type Scenario struct {
	RunID   uuid.UUID
	Store   *model.Store
	Clock   *clock.Clock
	World   *reactors.World
	Log     *logrus.Entry
	Metrics *telemetry.Metrics
}

func matchingAlgorithm(name string) matching.Algorithm {
	switch name {
	case "simple":
		return matching.AlgorithmSimple
	case "hungarian":
		return matching.AlgorithmHungarian
	default:
		return matching.AlgorithmCostBased
	}
}

func trafficProfile(name string) traffic.Profile {
	switch name {
	case "berlin":
		return traffic.Berlin()
	default:
		return traffic.None()
	}
}

// Build constructs a fresh Scenario from cfg (spec §6). osrmClient may be
// nil, in which case spawns fall back to the unsnapped sampled position
// (spec §7 External service failure).
func Build(cfg config.Config, osrmClient osrm.Client) (*Scenario, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}

	runID := uuid.New()
	log := logging.WithComponent(logging.WithRun(logging.New(cfg.Logging.Level, cfg.Logging.Env), runID.String(), cfg.Scenario.Seed), "scenario")

	store := model.NewStore()
	clk := clock.New(cfg.Scenario.EpochMs, log)

	metrics := telemetry.NewMetrics()
	snapshots := telemetry.NewSimSnapshots(cfg.Telemetry.MaxSnapshots)

	osrmTelemetry := &telemetry.OsrmSpawnTelemetry{}
	spawnCfg := spawner.Config{
		Box: spawner.BoundingBox{
			LatMin: cfg.Scenario.LatMin, LatMax: cfg.Scenario.LatMax,
			LngMin: cfg.Scenario.LngMin, LngMax: cfg.Scenario.LngMax,
		},
		MinTripCells:  cfg.Scenario.MinTripCells,
		MaxTripCells:  cfg.Scenario.MaxTripCells,
		Seed:          cfg.Scenario.Seed,
		OsrmClient:    osrmClient,
		OsrmTelemetry: osrmTelemetry,
	}

	algorithm := matchingAlgorithm(cfg.Matching.Algorithm)
	batchEnabled := cfg.Matching.BatchEnabled || algorithm == matching.AlgorithmHungarian

	params := reactors.Params{
		Seed:                cfg.Scenario.Seed,
		MatchRadius:         cfg.Scenario.MatchRadius,
		MatchingAlgorithm:   algorithm,
		BatchEnabled:        batchEnabled,
		BatchIntervalSecs:   cfg.Matching.BatchIntervalSecs,
		HotspotWeight:       cfg.Matching.HotspotWeight,
		MaxQuoteRejections:  cfg.RiderQuote.MaxQuoteRejections,
		ReQuoteDelaySecs:    cfg.RiderQuote.ReQuoteDelaySecs,
		AcceptProbability:   cfg.RiderQuote.AcceptProbability,
		MaxWillingnessToPay: cfg.RiderQuote.MaxWillingnessToPay,
		MaxAcceptableEtaMs:  cfg.RiderQuote.MaxAcceptableEtaMs,
		MinWaitSecs:         cfg.RiderCancel.MinWaitSecs,
		MaxWaitSecs:         cfg.RiderCancel.MaxWaitSecs,
		BaseAcceptanceScore: cfg.DriverDecision.BaseAcceptanceScore,
		Pricing: pricingConfig(cfg),
		Traffic: trafficProfile(cfg.Traffic.Profile),
		Reposition: reposition.Policy{
			Enabled:                 cfg.Reposition.Enabled,
			MinimumZoneReserve:      cfg.Reposition.MinimumZoneReserve,
			HotspotWeight:           cfg.Reposition.HotspotWeight,
			MaxDriversMovedPerCycle: cfg.Reposition.MaxDriversMovedPerCycle,
			MaxRepositionDistanceKm: cfg.Reposition.MaxRepositionDistanceKm,
			CooldownSecs:            cfg.Reposition.CooldownSecs,
			ControlIntervalSecs:     cfg.Reposition.ControlIntervalSecs,
		},
		BaseSpeedKmh:       40.0,
		SnapshotIntervalMs: cfg.Telemetry.IntervalMs,
	}

	world := &reactors.World{
		RunID:            runID,
		Store:            store,
		Clock:            clk,
		Metrics:          metrics,
		Trips:            snapshots,
		Log:              log,
		Params:           params,
		Profiler:         telemetry.NewProfiler(),
		RiderSource:      riderSourceAdapter{cfg: spawnCfg},
		DriverSource:     driverSourceAdapter{cfg: spawnCfg},
		RiderArrival:     distribution.Uniform{MinMs: cfg.Scenario.RequestWindowMs / 100, MaxMs: cfg.Scenario.RequestWindowMs / 10},
		DriverArrival:    distribution.Uniform{MinMs: cfg.Scenario.DriverSpreadMs / 100, MaxMs: cfg.Scenario.DriverSpreadMs / 10},
		NumRidersTarget:  cfg.Scenario.NumRiders,
		NumDriversTarget: cfg.Scenario.NumDrivers,

		DailyEarningsTarget: cfg.Scenario.DailyEarningsTarget,
		FatigueThresholdMs:  cfg.Scenario.FatigueThresholdMs,
	}

	sc := &Scenario{RunID: runID, Store: store, Clock: clk, World: world, Log: log, Metrics: metrics}
	seedInitial(sc, cfg)
	return sc, nil
}

func pricingConfig(cfg config.Config) pricing.Config {
	return pricing.Config{
		BaseFare:           cfg.Pricing.BaseFare,
		PerKmRate:          cfg.Pricing.PerKmRate,
		CommissionRate:     cfg.Pricing.CommissionRate,
		SurgeEnabled:       cfg.Pricing.SurgeEnabled,
		SurgeRadiusK:       cfg.Pricing.SurgeRadiusK,
		SurgeMaxMultiplier: cfg.Pricing.SurgeMaxMultiplier,
	}
}

// seedInitial spawns the initial rider/driver cohort immediately (spec
// §6 initial_rider_count/initial_driver_count), ahead of
// SimulationStarted's event-driven spawning for the remainder of the
// target population.
func seedInitial(sc *Scenario, cfg config.Config) {
	w := sc.World
	for i := 0; i < cfg.Scenario.InitialDriverCount && w.DriversSpawned < w.NumDriversTarget; i++ {
		idx := w.NextDriverIndex
		w.NextDriverIndex++
		w.DriversSpawned++
		driver, cell, earn, fat := w.DriverSource.NextDriver(idx, w.Clock.Now(), w.DailyEarningsTarget, w.FatigueThresholdMs)
		e := w.Store.AllocEntity()
		w.Store.AttachDriver(e, driver, cell, earn, fat)
	}
	for i := 0; i < cfg.Scenario.InitialRiderCount && w.RidersSpawned < w.NumRidersTarget; i++ {
		idx := w.NextRiderIndex
		w.NextRiderIndex++
		w.RidersSpawned++
		rider, cell := w.RiderSource.NextRider(idx)
		e := w.Store.AllocEntity()
		w.Store.AttachRider(e, rider, cell)
		w.Clock.ScheduleIn(1000, clock.ShowQuote, clock.RiderSubject(e))
	}
	w.Clock.ScheduleAt(w.Clock.Now(), clock.SimulationStarted, clock.NoSubject)
}
