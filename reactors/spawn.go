package reactors

import (
	"github.com/dpapukchiev/ridehail-sim/clock"
	"github.com/dpapukchiev/ridehail-sim/distribution"
	"github.com/dpapukchiev/ridehail-sim/model"
)

// RiderSource supplies a sampled rider and spawn cell; the scenario
// builder wires spawner.SpawnRider in here so reactors itself never
// imports spawner or osrm; its own imports are clock, distribution,
// logging, matching, model, pricing, reposition, spatial, telemetry and
// traffic.
type RiderSource interface {
	NextRider(entityIndex uint64) (model.Rider, model.Cell)
}

// DriverSource supplies a sampled driver, spawn cell, and starting
// earnings/fatigue components.
type DriverSource interface {
	NextDriver(entityIndex uint64, nowMs uint64, dailyTarget float64, fatigueThresholdMs uint64) (model.Driver, model.Cell, model.Earnings, model.Fatigue)
}

// SimulationStarted (broadcast) arms the recurring control-loop timers
// and the first SpawnRider/SpawnDriver events. Spawning itself is
// scheduled here rather than self-perpetuated entirely inside
// SpawnRiderReactor so the initial cohort (spec §6
// initial_rider_count/initial_driver_count) can be seeded immediately
// without waiting on an inter-arrival draw.
func SimulationStarted(w *World, ev *clock.Event) {
	if ev.Kind != clock.SimulationStarted {
		return
	}
	w.Clock.ScheduleIn(OffDutyCheckIntervalSecs*1000, clock.CheckDriverOffDuty, clock.NoSubject)
	if w.Params.Reposition.Enabled {
		w.Clock.ScheduleIn(w.Params.Reposition.ControlIntervalSecs*1000, clock.RepositionRun, clock.NoSubject)
	}
	if w.Params.BatchEnabled {
		w.Clock.ScheduleIn(w.Params.BatchIntervalSecs*1000, clock.BatchMatchRun, clock.NoSubject)
	}
	if w.RidersSpawned < w.NumRidersTarget {
		w.Clock.ScheduleAt(w.Clock.Now(), clock.SpawnRider, clock.NoSubject)
	}
	if w.DriversSpawned < w.NumDriversTarget {
		w.Clock.ScheduleAt(w.Clock.Now(), clock.SpawnDriver, clock.NoSubject)
	}
}

// SpawnRiderReactor (broadcast) samples a new rider from RiderSource,
// attaches it, fires ShowQuote in 1s for it (spec §4.6 SpawnRider), and
// — while the target cohort isn't exhausted — schedules the next
// SpawnRider after an inter-arrival draw.
func SpawnRiderReactor(w *World, ev *clock.Event) {
	if ev.Kind != clock.SpawnRider || w.RiderSource == nil {
		return
	}
	if w.RidersSpawned >= w.NumRidersTarget {
		return
	}

	idx := w.NextRiderIndex
	w.NextRiderIndex++
	w.RidersSpawned++

	rider, cell := w.RiderSource.NextRider(idx)
	e := w.Store.AllocEntity()
	w.Store.DeferSpawnRider(e, rider, cell)
	w.Clock.ScheduleIn(1000, clock.ShowQuote, clock.RiderSubject(e))

	if w.RidersSpawned < w.NumRidersTarget && w.RiderArrival != nil {
		rng := distribution.RNGFor(w.Params.Seed, idx, "rider_interarrival")
		delay := w.RiderArrival.NextDelayMs(rng, w.Clock.Now())
		w.Clock.ScheduleIn(delay, clock.SpawnRider, clock.NoSubject)
	}
}

// SpawnDriverReactor is the driver-side analogue of SpawnRiderReactor.
// A spawned driver simply waits Idle until matched; nothing further to
// schedule for it individually.
func SpawnDriverReactor(w *World, ev *clock.Event) {
	if ev.Kind != clock.SpawnDriver || w.DriverSource == nil {
		return
	}
	if w.DriversSpawned >= w.NumDriversTarget {
		return
	}

	idx := w.NextDriverIndex
	w.NextDriverIndex++
	w.DriversSpawned++

	driver, cell, earn, fat := w.DriverSource.NextDriver(idx, w.Clock.Now(), w.DailyEarningsTarget, w.FatigueThresholdMs)
	e := w.Store.AllocEntity()
	w.Store.DeferSpawnDriver(e, driver, cell, earn, fat)

	if w.DriversSpawned < w.NumDriversTarget && w.DriverArrival != nil {
		rng := distribution.RNGFor(w.Params.Seed, idx, "driver_interarrival")
		delay := w.DriverArrival.NextDelayMs(rng, w.Clock.Now())
		w.Clock.ScheduleIn(delay, clock.SpawnDriver, clock.NoSubject)
	}
}
