package reactors

import (
	"github.com/dpapukchiev/ridehail-sim/clock"
	"github.com/dpapukchiev/ridehail-sim/model"
	"github.com/dpapukchiev/ridehail-sim/reposition"
)

// RepositionRunReactor (broadcast, periodic every
// Params.Reposition.ControlIntervalSecs) runs one repositioning cycle
// over every idle, off-cooldown driver and applies the resulting moves
// (spec §4.5).
func RepositionRunReactor(w *World, ev *clock.Event) {
	if ev.Kind != clock.RepositionRun || ev.Subject.Kind != model.KindNone {
		return
	}
	now := w.Clock.Now()

	waitingDemand := map[model.Cell]int{}
	for e, r := range w.Store.Riders() {
		st, ok := w.Store.RiderState(e)
		if !ok || st != model.RiderWaiting || r.MatchedDriver != nil {
			continue
		}
		if c, ok := w.Store.Position(e); ok {
			waitingDemand[c]++
		}
	}

	idleSupply := map[model.Cell]int{}
	var candidates []reposition.IdleDriver
	for e := range w.Store.Drivers() {
		st, ok := w.Store.DriverState(e)
		if !ok || st != model.DriverIdle {
			continue
		}
		c, ok := w.Store.Position(e)
		if !ok {
			continue
		}
		idleSupply[c]++
		cooldownUntil := uint64(0)
		if cd, ok := w.Store.Cooldown(e); ok {
			cooldownUntil = cd.UntilMs
		}
		candidates = append(candidates, reposition.IdleDriver{Entity: e, Cell: c, CooldownUnitMs: cooldownUntil})
	}

	result := reposition.Run(w.Params.Reposition, now, waitingDemand, idleSupply, candidates)
	for _, mv := range result.Moves {
		w.Store.MoveDriver(mv.Entity, mv.To)
	}
	for e, until := range result.NewCooldownMs {
		w.Store.SetCooldown(e, until)
	}
	if len(result.Target) > 0 {
		w.TargetIdle = result.Target
	}
	if w.Metrics != nil {
		for range result.Moves {
			w.Metrics.RepositionMoves.Inc()
		}
	}

	w.Clock.ScheduleIn(w.Params.Reposition.ControlIntervalSecs*1000, clock.RepositionRun, clock.NoSubject)
}
