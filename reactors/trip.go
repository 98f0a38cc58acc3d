package reactors

import (
	"github.com/dpapukchiev/ridehail-sim/clock"
	"github.com/dpapukchiev/ridehail-sim/logging"
	"github.com/dpapukchiev/ridehail-sim/model"
	"github.com/dpapukchiev/ridehail-sim/telemetry"
)

// TripStarted (Trip; EnRoute) fires when MoveStep finds the driver at the
// pickup cell: flips trip/rider/driver into their "on trip" states and
// kicks off the dropoff leg (spec §4.6 TripStarted).
func TripStarted(w *World, ev *clock.Event) {
	if ev.Kind != clock.TripStarted || ev.Subject.Kind != model.KindTrip {
		return
	}
	tripE := ev.Subject.Entity
	trip, ok := w.Store.Trip(tripE)
	if !ok {
		return
	}
	state, ok := w.Store.TripState(tripE)
	if !ok || state != model.TripEnRoute {
		return
	}

	riderState, ok := w.Store.RiderState(trip.Rider)
	if !ok || riderState != model.RiderWaiting {
		return
	}
	driverState, ok := w.Store.DriverState(trip.Driver)
	if !ok || driverState != model.DriverEnRoute {
		return
	}

	now := w.Clock.Now()
	if timing, ok := w.Store.Timing(tripE); ok {
		timing.PickupAt = &now
	}

	w.Store.SetTripState(tripE, model.TripOnTrip)
	w.Store.SetRiderState(trip.Rider, model.RiderInTransit)
	w.Store.SetDriverState(trip.Driver, model.DriverOnTrip)

	w.Clock.ScheduleIn(1000, clock.MoveStep, clock.TripSubject(tripE))
}

// TripCompletedReactor (Trip; OnTrip) fires when MoveStep finds the
// driver at the dropoff cell: settles the trip, pays the driver, records
// the completed-trip telemetry record, and despawns the rider (spec §4.6
// TripCompleted, §4.7).
func TripCompletedReactor(w *World, ev *clock.Event) {
	if ev.Kind != clock.TripCompleted || ev.Subject.Kind != model.KindTrip {
		return
	}
	tripE := ev.Subject.Entity
	trip, ok := w.Store.Trip(tripE)
	if !ok {
		return
	}
	state, ok := w.Store.TripState(tripE)
	if !ok || state != model.TripOnTrip {
		return
	}

	riderState, ok := w.Store.RiderState(trip.Rider)
	if !ok || riderState != model.RiderInTransit {
		return
	}
	driverState, ok := w.Store.DriverState(trip.Driver)
	if !ok || driverState != model.DriverOnTrip {
		return
	}

	now := w.Clock.Now()
	timing, _ := w.Store.Timing(tripE)
	fin, _ := w.Store.Financials(tripE)

	fare := 0.0
	if fin != nil && fin.AgreedFare != nil {
		fare = *fin.AgreedFare
	}

	w.Store.SetTripState(tripE, model.TripCompleted)
	w.Store.SetRiderState(trip.Rider, model.RiderCompleted)
	w.Store.DeferDespawnRider(trip.Rider)

	driver, ok := w.Store.Driver(trip.Driver)
	if ok {
		driver.MatchedRider = nil
		driver.AssignedTrip = nil
	}

	earn, hasEarnings := w.Store.Earnings(trip.Driver)
	if hasEarnings {
		earn.DailyEarnings += w.Params.Pricing.DriverEarningsShare(fare)
	}
	// CheckDriverOffDuty can flip the driver OffDuty (earnings target or
	// fatigue hit) while this dropoff was still running; don't resurrect
	// them into Idle out from under that decision.
	if !hasEarnings || earn.SessionEndMs == nil {
		w.Store.SetDriverState(trip.Driver, model.DriverIdle)
	}

	requestedAt, matchedAt, pickupAt := uint64(0), uint64(0), now
	if timing != nil {
		timing.DropoffAt = &now
		requestedAt = timing.RequestedAt
		matchedAt = timing.MatchedAt
		if timing.PickupAt != nil {
			pickupAt = *timing.PickupAt
		}
	}

	w.CompletedTrips = append(w.CompletedTrips, telemetry.CompletedTripRecord{
		RunID:       w.RunID,
		Trip:        tripE,
		Rider:       trip.Rider,
		Driver:      trip.Driver,
		RequestedAt: requestedAt,
		MatchedAt:   matchedAt,
		PickupAt:    pickupAt,
		CompletedAt: now,
		Fare:        fare,
	})
	if w.Metrics != nil {
		w.Metrics.CompletedTrips.Inc()
	}
	if w.Log != nil {
		logging.WithReactor(w.Log, "TripCompletedReactor", ev.Kind.String()).WithFields(logging.Fields{
			"trip":   tripE,
			"rider":  trip.Rider,
			"driver": trip.Driver,
			"fare":   fare,
		}).Debug("trip completed")
	}
}
