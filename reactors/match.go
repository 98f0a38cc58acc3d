package reactors

import (
	"github.com/dpapukchiev/ridehail-sim/clock"
	"github.com/dpapukchiev/ridehail-sim/matching"
	"github.com/dpapukchiev/ridehail-sim/model"
)

// zoneStats builds the supply/demand/target snapshot score_driver_for_rider
// needs from the current world state (spec §4.4 CostBased).
func zoneStats(w *World) matching.ZoneStats {
	idle := map[model.Cell]int{}
	for e := range w.Store.Drivers() {
		st, ok := w.Store.DriverState(e)
		if !ok || st != model.DriverIdle {
			continue
		}
		if c, ok := w.Store.Position(e); ok {
			idle[c]++
		}
	}
	waiting := map[model.Cell]int{}
	for e, r := range w.Store.Riders() {
		st, ok := w.Store.RiderState(e)
		if !ok || st != model.RiderWaiting || r.MatchedDriver != nil {
			continue
		}
		if c, ok := w.Store.Position(e); ok {
			waiting[c]++
		}
	}
	return matching.ZoneStats{
		IdleSupply:         idle,
		WaitingDemand:      waiting,
		TargetIdle:         w.TargetIdle,
		MinimumZoneReserve: w.Params.Reposition.MinimumZoneReserve,
		HotspotWeight:      w.Params.HotspotWeight,
	}
}

func idleDriverCandidates(w *World) []matching.DriverCandidate {
	var out []matching.DriverCandidate
	for e := range w.Store.Drivers() {
		st, ok := w.Store.DriverState(e)
		if !ok || st != model.DriverIdle {
			continue
		}
		c, ok := w.Store.Position(e)
		if !ok {
			continue
		}
		out = append(out, matching.DriverCandidate{Entity: e, Cell: c, Seq: uint64(e)})
	}
	return out
}

// applyPairing sets rider.matched_driver, driver.matched_rider, flips
// the driver to Evaluating, and schedules MatchAccepted in 1s (spec
// §4.4 "On a successful pairing").
func applyPairing(w *World, riderE, driverE model.Entity) {
	rider, ok := w.Store.Rider(riderE)
	if !ok {
		return
	}
	driver, ok := w.Store.Driver(driverE)
	if !ok {
		return
	}
	d := driverE
	r := riderE
	rider.MatchedDriver = &d
	driver.MatchedRider = &r
	w.Store.SetDriverState(driverE, model.DriverEvaluating)
	w.Clock.ScheduleIn(1000, clock.MatchAccepted, clock.DriverSubject(driverE))
}

// TryMatchReactor (Rider; Waiting, only when batch disabled) invokes the
// single-rider matcher (spec §4.4 TryMatch).
func TryMatchReactor(w *World, ev *clock.Event) {
	if ev.Kind != clock.TryMatch || ev.Subject.Kind != model.KindRider || w.Params.BatchEnabled {
		return
	}
	e := ev.Subject.Entity
	rider, ok := w.Store.Rider(e)
	if !ok {
		return
	}
	state, ok := w.Store.RiderState(e)
	if !ok || state != model.RiderWaiting || rider.MatchedDriver != nil {
		return
	}
	riderCell, ok := w.Store.Position(e)
	if !ok {
		return
	}

	drivers := idleDriverCandidates(w)
	match, found := runSingleMatch(w, riderCell, drivers)
	if !found {
		if w.Metrics != nil {
			w.Metrics.MatchMisses.Inc()
		}
		w.Clock.ScheduleIn(MatchRetrySecs*1000, clock.TryMatch, clock.RiderSubject(e))
		return
	}
	applyPairing(w, e, match.Entity)
}

func runSingleMatch(w *World, riderCell model.Cell, drivers []matching.DriverCandidate) (matching.DriverCandidate, bool) {
	switch w.Params.MatchingAlgorithm {
	case matching.AlgorithmSimple:
		return matching.FindMatchSimple(riderCell, drivers, w.Params.MatchRadius)
	default:
		return matching.FindMatchCostBased(riderCell, drivers, w.Params.MatchRadius, zoneStats(w))
	}
}

// BatchMatchRunReactor (broadcast, periodic) runs the global assignment
// over every waiting-unassigned rider and idle driver (spec §4.4 Batch).
func BatchMatchRunReactor(w *World, ev *clock.Event) {
	if ev.Kind != clock.BatchMatchRun || !w.Params.BatchEnabled {
		return
	}

	var riders []matching.RiderCandidate
	for e, r := range w.Store.Riders() {
		st, ok := w.Store.RiderState(e)
		if !ok || st != model.RiderWaiting || r.MatchedDriver != nil {
			continue
		}
		c, ok := w.Store.Position(e)
		if !ok {
			continue
		}
		riders = append(riders, matching.RiderCandidate{Entity: e, Cell: c, Destination: r.Destination, Seq: uint64(e)})
	}
	drivers := idleDriverCandidates(w)

	if len(riders) == 0 || len(drivers) == 0 {
		w.Clock.ScheduleIn(w.Params.BatchIntervalSecs*1000, clock.BatchMatchRun, clock.NoSubject)
		return
	}

	pairs := matching.FindMatchesBatchWithZones(riders, drivers, w.Params.MatchRadius, zoneStats(w))
	matched := map[model.Entity]bool{}
	for _, p := range pairs {
		applyPairing(w, p.Rider, p.Driver)
		matched[p.Rider] = true
	}
	if w.Metrics != nil {
		misses := len(riders) - len(pairs)
		for i := 0; i < misses; i++ {
			w.Metrics.MatchMisses.Inc()
		}
	}

	w.Clock.ScheduleIn(w.Params.BatchIntervalSecs*1000, clock.BatchMatchRun, clock.NoSubject)
}

// MatchRejected (Rider) clears matched_driver; when batch is disabled
// and the rider is still Waiting, retries via TryMatch (spec §4.6
// MatchRejected).
func MatchRejected(w *World, ev *clock.Event) {
	if ev.Kind != clock.MatchRejected || ev.Subject.Kind != model.KindRider {
		return
	}
	e := ev.Subject.Entity
	rider, ok := w.Store.Rider(e)
	if !ok {
		return
	}
	rider.MatchedDriver = nil
	state, ok := w.Store.RiderState(e)
	if ok && state == model.RiderWaiting && !w.Params.BatchEnabled {
		w.Clock.ScheduleIn(MatchRetrySecs*1000, clock.TryMatch, clock.RiderSubject(e))
	}
}

// MatchAccepted (Driver) schedules DriverDecision in 1s (spec §4.6
// MatchAccepted).
func MatchAccepted(w *World, ev *clock.Event) {
	if ev.Kind != clock.MatchAccepted || ev.Subject.Kind != model.KindDriver {
		return
	}
	e := ev.Subject.Entity
	if _, ok := w.Store.Driver(e); !ok {
		return
	}
	w.Clock.ScheduleIn(1000, clock.DriverDecision, clock.DriverSubject(e))
}
