package reactors

import (
	"github.com/dpapukchiev/ridehail-sim/clock"
	"github.com/dpapukchiev/ridehail-sim/distribution"
	"github.com/dpapukchiev/ridehail-sim/model"
	"github.com/dpapukchiev/ridehail-sim/spatial"
	"github.com/dpapukchiev/ridehail-sim/traffic"
)

// cellWidthKm is H3 resolution 9's approximate cell width (spec §4.3),
// used to translate a sampled km/h speed into "how many hex steps does
// one step cover" for MoveStep's duration math.
const cellWidthKm = 0.24

// stepToward returns the neighbor of from (inclusive of from itself)
// minimizing grid distance to target, i.e. one hex step along the
// shortest path (spec §4.6 MoveStep: "advance the driver one hex cell
// along the grid-disk toward the trip's current target").
func stepToward(from, target model.Cell) model.Cell {
	if from.Equal(target) {
		return from
	}
	ring, err := spatial.GridDisk(from, 1)
	if err != nil {
		return from
	}
	best := from
	bestDist, err := spatial.GridDistance(from, target)
	if err != nil {
		return from
	}
	for _, c := range ring {
		d, derr := spatial.GridDistance(c, target)
		if derr != nil {
			continue
		}
		if d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

// MoveStepReactor (Trip) advances the driver one hex step toward pickup
// (EnRoute) or dropoff (OnTrip), schedules the next MoveStep after the
// sampled step duration, or fires TripStarted/TripCompleted on arrival
// (spec §4.6 MoveStep).
func MoveStepReactor(w *World, ev *clock.Event) {
	if ev.Kind != clock.MoveStep || ev.Subject.Kind != model.KindTrip {
		return
	}
	tripE := ev.Subject.Entity
	trip, ok := w.Store.Trip(tripE)
	if !ok {
		return
	}
	state, ok := w.Store.TripState(tripE)
	if !ok {
		return
	}

	var target model.Cell
	switch state {
	case model.TripEnRoute:
		target = trip.Pickup
	case model.TripOnTrip:
		target = trip.Dropoff
	default:
		return
	}

	driverE := trip.Driver
	driverCell, ok := w.Store.Position(driverE)
	if !ok {
		return
	}

	if driverCell.Equal(target) {
		switch state {
		case model.TripEnRoute:
			w.Clock.ScheduleIn(1000, clock.TripStarted, clock.TripSubject(tripE))
		case model.TripOnTrip:
			w.Clock.ScheduleIn(1000, clock.TripCompleted, clock.TripSubject(tripE))
		}
		return
	}

	countInCell := len(w.Store.DriverIndex.EntitiesAt(driverCell))
	msSinceMidnight := (w.Clock.Now()) % (24 * 3600 * 1000)
	rng := distribution.RNGFor(w.Params.Seed, uint64(driverE), "move_step")
	speedKmh := traffic.SpeedSample(rng, w.Params.BaseSpeedKmh, w.Params.Traffic, msSinceMidnight, driverCell.String(), countInCell)

	stepDurationMs := uint64(cellWidthKm / speedKmh * 3_600_000.0)
	if stepDurationMs == 0 {
		stepDurationMs = 1
	}

	next := stepToward(driverCell, target)
	w.Store.MoveDriver(driverE, next)

	w.Clock.ScheduleIn(stepDurationMs, clock.MoveStep, clock.TripSubject(tripE))
	if state == model.TripEnRoute {
		w.Clock.ScheduleIn(1000, clock.PickupEtaUpdated, clock.TripSubject(tripE))
	}
}
