package reactors

import (
	"github.com/dpapukchiev/ridehail-sim/clock"
	"github.com/dpapukchiev/ridehail-sim/distribution"
	"github.com/dpapukchiev/ridehail-sim/model"
	"github.com/dpapukchiev/ridehail-sim/spatial"
)

// driverAcceptScore turns the driver's baseline acceptance tendency and
// the trip's fare into a logistic acceptance probability (spec §4.6
// DriverDecision: "base_acceptance_score plus fare-dependent term using
// a logistic function"). The fare term is scaled against the
// configured base fare so richer trips raise acceptance odds roughly
// proportionally regardless of the currency unit's magnitude — an
// explicit choice where the source left the exact fare term unspecified
// (see DESIGN.md Open Questions).
func driverAcceptScore(baseScore, fare, baseFare float64) float64 {
	if baseFare <= 0 {
		baseFare = 1
	}
	fareTerm := (fare - baseFare) / baseFare
	return distribution.Logistic(baseScore + fareTerm)
}

// DriverDecisionReactor (Driver; Evaluating) accepts or declines the
// pending match (spec §4.6 DriverDecision).
func DriverDecisionReactor(w *World, ev *clock.Event) {
	if ev.Kind != clock.DriverDecision || ev.Subject.Kind != model.KindDriver {
		return
	}
	driverE := ev.Subject.Entity
	driver, ok := w.Store.Driver(driverE)
	if !ok {
		return
	}
	state, ok := w.Store.DriverState(driverE)
	if !ok || state != model.DriverEvaluating {
		return
	}
	if driver.MatchedRider == nil {
		return
	}
	riderE := *driver.MatchedRider
	rider, ok := w.Store.Rider(riderE)
	if !ok {
		w.Store.SetDriverState(driverE, model.DriverIdle)
		driver.MatchedRider = nil
		return
	}

	fare := 0.0
	if rider.AcceptedFare != nil {
		fare = *rider.AcceptedFare
	}
	prob := driverAcceptScore(w.Params.BaseAcceptanceScore, fare, w.Params.Pricing.BaseFare)

	rng := distribution.RNGFor(w.Params.Seed, uint64(driverE), "driver_decision")
	if !distribution.Bernoulli(rng, prob) {
		w.Store.SetDriverState(driverE, model.DriverIdle)
		driver.MatchedRider = nil
		w.Clock.ScheduleIn(1000, clock.MatchRejected, clock.RiderSubject(riderE))
		return
	}

	driverCell, _ := w.Store.Position(driverE)
	riderCell, _ := w.Store.Position(riderE)
	dropoff := riderCell
	if rider.Destination != nil {
		dropoff = *rider.Destination
	}

	now := w.Clock.Now()
	requestedAt := now
	if rider.RequestedAt != nil {
		requestedAt = *rider.RequestedAt
	}
	pickupDistKm := spatial.GreatCircleKm(driverCell, riderCell)
	pickupEtaMs := pickupDistKm / ETASpeedKmh * 3_600_000.0
	if pickupEtaMs < 1000 {
		pickupEtaMs = 1000
	}

	tripE := w.Store.AllocEntity()
	w.Store.SpawnTrip(tripE,
		model.Trip{Rider: riderE, Driver: driverE, Pickup: riderCell, Dropoff: dropoff},
		model.Timing{RequestedAt: requestedAt, MatchedAt: now},
		model.Financials{AgreedFare: rider.AcceptedFare, PickupDistanceKmAtAccept: pickupDistKm},
		model.LiveData{PickupEtaMs: uint64(pickupEtaMs)},
	)

	rider.AssignedTrip = &tripE
	driver.AssignedTrip = &tripE
	w.Store.SetDriverState(driverE, model.DriverEnRoute)
	w.Clock.ScheduleIn(1000, clock.MoveStep, clock.TripSubject(tripE))
}
