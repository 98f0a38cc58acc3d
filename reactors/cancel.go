package reactors

import (
	"github.com/dpapukchiev/ridehail-sim/clock"
	"github.com/dpapukchiev/ridehail-sim/logging"
	"github.com/dpapukchiev/ridehail-sim/model"
	"github.com/dpapukchiev/ridehail-sim/spatial"
)

// PickupEtaUpdated (Trip; EnRoute) refreshes the trip's live pickup ETA
// from the driver's current position, then applies the deterministic
// patience check (spec §4.6 PickupEtaUpdated): below min_wait_secs since
// match, do nothing; otherwise cancel only if the refreshed ETA would
// carry pickup past max_wait_secs since match. Anchored on MatchedAt, not
// RequestedAt — the funnel invariant requested_at <= matched_at means the
// two can differ, and the wait budget spec §4.6 describes starts at match.
func PickupEtaUpdated(w *World, ev *clock.Event) {
	if ev.Kind != clock.PickupEtaUpdated || ev.Subject.Kind != model.KindTrip {
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
	timing, ok := w.Store.Timing(tripE)
	if !ok {
		return
	}

	var etaMs uint64
	if driverCell, ok := w.Store.Position(trip.Driver); ok {
		remainingKm := spatial.GreatCircleKm(driverCell, trip.Pickup)
		etaFloat := remainingKm / ETASpeedKmh * 3_600_000.0
		if etaFloat > 0 {
			etaMs = uint64(etaFloat)
		}
		w.Store.SetLiveData(tripE, model.LiveData{PickupEtaMs: etaMs})
	}

	now := w.Clock.Now()
	minWaitMs := w.Params.MinWaitSecs * 1000
	maxWaitMs := w.Params.MaxWaitSecs * 1000

	if now < timing.MatchedAt+minWaitMs {
		return
	}
	if now+etaMs > timing.MatchedAt+maxWaitMs {
		if w.Log != nil {
			logging.WithReactor(w.Log, "PickupEtaUpdated", ev.Kind.String()).WithFields(logging.Fields{
				"trip":          tripE,
				"rider":         trip.Rider,
				"pickup_eta_ms": etaMs,
				"matched_at":    timing.MatchedAt,
			}).Debug("pickup eta would overshoot max wait, cancelling")
		}
		w.Clock.ScheduleIn(1000, clock.RiderCancel, clock.RiderSubject(trip.Rider))
	}
}

// RiderCancel (Rider; Waiting with a matched driver) cuts a trip short
// before pickup: the trip and rider move to Cancelled, the rider
// despawns, and the driver returns to Idle (spec §4.6 RiderCancel).
func RiderCancel(w *World, ev *clock.Event) {
	if ev.Kind != clock.RiderCancel || ev.Subject.Kind != model.KindRider {
		return
	}
	riderE := ev.Subject.Entity
	rider, ok := w.Store.Rider(riderE)
	if !ok {
		return
	}
	state, ok := w.Store.RiderState(riderE)
	if !ok || state != model.RiderWaiting || rider.MatchedDriver == nil {
		return
	}

	driverE := *rider.MatchedDriver
	if rider.AssignedTrip != nil {
		tripE := *rider.AssignedTrip
		if tst, ok := w.Store.TripState(tripE); ok && tst == model.TripEnRoute {
			w.Store.SetTripState(tripE, model.TripCancelled)
			now := w.Clock.Now()
			if timing, ok := w.Store.Timing(tripE); ok {
				timing.CancelledAt = &now
			}
		}
	}

	if driver, ok := w.Store.Driver(driverE); ok {
		if dst, ok := w.Store.DriverState(driverE); ok && dst == model.DriverEnRoute {
			w.Store.SetDriverState(driverE, model.DriverIdle)
			driver.MatchedRider = nil
			driver.AssignedTrip = nil
		}
	}

	w.Store.SetRiderState(riderE, model.RiderCancelled)
	w.Store.DeferDespawnRider(riderE)
}
