package reactors

import (
	"math"

	"github.com/dpapukchiev/ridehail-sim/clock"
	"github.com/dpapukchiev/ridehail-sim/distribution"
	"github.com/dpapukchiev/ridehail-sim/model"
	"github.com/dpapukchiev/ridehail-sim/spatial"
)

// ShowQuote (subject Rider, state must be Browsing) computes the quoted
// fare and pickup ETA and attaches a Quote component, then schedules
// QuoteDecision in 1s (spec §4.6 ShowQuote).
func ShowQuote(w *World, ev *clock.Event) {
	if ev.Kind != clock.ShowQuote || ev.Subject.Kind != model.KindRider {
		return
	}
	e := ev.Subject.Entity
	rider, ok := w.Store.Rider(e)
	if !ok {
		return
	}
	state, ok := w.Store.RiderState(e)
	if !ok || state != model.RiderBrowsing {
		return
	}
	riderCell, ok := w.Store.Position(e)
	if !ok {
		return
	}
	destCell := riderCell
	if rider.Destination != nil {
		destCell = *rider.Destination
	}

	distanceKm := spatial.GreatCircleKm(riderCell, destCell)

	demand, supply := 0, 0
	if w.Params.Pricing.SurgeEnabled && w.Params.Pricing.SurgeRadiusK > 0 {
		demand, supply = surgeCounts(w, riderCell, w.Params.Pricing.SurgeRadiusK)
	}
	fare := w.Params.Pricing.QuotedFare(distanceKm, demand, supply)

	etaMs := pickupEtaMs(w, riderCell)

	w.Store.SetQuote(e, model.Quote{Fare: fare, EtaMs: etaMs})
	w.Clock.ScheduleIn(1000, clock.QuoteDecision, clock.RiderSubject(e))
}

// surgeCounts counts browsing/waiting riders and idle drivers within k
// hex-steps of cell (spec §4.6 ShowQuote surge cluster).
func surgeCounts(w *World, cell model.Cell, k int) (demand, supply int) {
	ring, err := spatial.GridDisk(cell, k)
	if err != nil {
		return 0, 0
	}
	riderEntities := w.Store.RiderIndex.EntitiesInCells(ring)
	for _, re := range riderEntities {
		if st, ok := w.Store.RiderState(re); ok && (st == model.RiderBrowsing || st == model.RiderWaiting) {
			demand++
		}
	}
	driverEntities := w.Store.DriverIndex.EntitiesInCells(ring)
	for _, de := range driverEntities {
		if st, ok := w.Store.DriverState(de); ok && st == model.DriverIdle {
			supply++
		}
	}
	return demand, supply
}

// pickupEtaMs is the minimum ETA over all idle drivers, clamped to at
// least 1000ms, defaulting to 300_000ms with no idle drivers (spec §4.6
// ShowQuote).
func pickupEtaMs(w *World, riderCell model.Cell) uint64 {
	best := math.MaxFloat64
	found := false
	for de, st := range allDriverStates(w) {
		if st != model.DriverIdle {
			continue
		}
		dc, ok := w.Store.Position(de)
		if !ok {
			continue
		}
		distKm := spatial.GreatCircleKm(dc, riderCell)
		etaMs := distKm / ETASpeedKmh * 3_600_000.0
		if etaMs < best {
			best = etaMs
			found = true
		}
	}
	if !found {
		return 300_000
	}
	if best < 1000 {
		best = 1000
	}
	return uint64(math.Round(best))
}

func allDriverStates(w *World) map[model.Entity]model.DriverState {
	out := make(map[model.Entity]model.DriverState, len(w.Store.Drivers()))
	for e := range w.Store.Drivers() {
		if st, ok := w.Store.DriverState(e); ok {
			out[e] = st
		}
	}
	return out
}

// QuoteDecisionReactor (Rider; Browsing) accepts or rejects the active
// quote (spec §4.6 QuoteDecision).
func QuoteDecisionReactor(w *World, ev *clock.Event) {
	if ev.Kind != clock.QuoteDecision || ev.Subject.Kind != model.KindRider {
		return
	}
	e := ev.Subject.Entity
	rider, ok := w.Store.Rider(e)
	if !ok {
		return
	}
	state, ok := w.Store.RiderState(e)
	if !ok || state != model.RiderBrowsing {
		return
	}
	quote, ok := w.Store.Quote(e)
	if !ok {
		return
	}

	if quote.Fare > w.Params.MaxWillingnessToPay {
		rider.LastRejectionReason = model.QuotePriceTooHigh
		w.Clock.ScheduleAt(w.Clock.Now(), clock.QuoteRejected, clock.RiderSubject(e))
		return
	}
	if quote.EtaMs > w.Params.MaxAcceptableEtaMs {
		rider.LastRejectionReason = model.QuoteEtaTooLong
		w.Clock.ScheduleAt(w.Clock.Now(), clock.QuoteRejected, clock.RiderSubject(e))
		return
	}

	rng := distribution.RNGFor(w.Params.Seed, uint64(e), "quote_decision")
	if distribution.Bernoulli(rng, w.Params.AcceptProbability) {
		w.Clock.ScheduleAt(w.Clock.Now(), clock.QuoteAccepted, clock.RiderSubject(e))
	} else {
		rider.LastRejectionReason = model.QuoteStochasticRejection
		w.Clock.ScheduleAt(w.Clock.Now(), clock.QuoteRejected, clock.RiderSubject(e))
	}
}

// QuoteAccepted (Rider; Browsing) transitions the rider to Waiting and
// either waits for the next batch cycle or fires TryMatch immediately
// (spec §4.6 QuoteAccepted).
func QuoteAccepted(w *World, ev *clock.Event) {
	if ev.Kind != clock.QuoteAccepted || ev.Subject.Kind != model.KindRider {
		return
	}
	e := ev.Subject.Entity
	rider, ok := w.Store.Rider(e)
	if !ok {
		return
	}
	state, ok := w.Store.RiderState(e)
	if !ok || state != model.RiderBrowsing {
		return
	}
	quote, ok := w.Store.Quote(e)
	if !ok {
		return
	}

	now := w.Clock.Now()
	fare := quote.Fare
	rider.AcceptedFare = &fare
	rider.RequestedAt = &now
	w.Store.SetRiderState(e, model.RiderWaiting)
	w.Store.ClearQuote(e)

	if !w.Params.BatchEnabled {
		w.Clock.ScheduleAt(now, clock.TryMatch, clock.RiderSubject(e))
	}
}

// QuoteRejected (Rider; Browsing) increments the rejection counter and
// either re-quotes or cancels the rider entirely (spec §4.6 QuoteRejected).
func QuoteRejected(w *World, ev *clock.Event) {
	if ev.Kind != clock.QuoteRejected || ev.Subject.Kind != model.KindRider {
		return
	}
	e := ev.Subject.Entity
	rider, ok := w.Store.Rider(e)
	if !ok {
		return
	}
	state, ok := w.Store.RiderState(e)
	if !ok || state != model.RiderBrowsing {
		return
	}

	rider.QuoteRejections++
	if w.Metrics != nil {
		w.Metrics.QuoteRejections.WithLabelValues(rider.LastRejectionReason.String()).Inc()
	}

	if rider.QuoteRejections <= w.Params.MaxQuoteRejections {
		w.Clock.ScheduleIn(w.Params.ReQuoteDelaySecs*1000, clock.ShowQuote, clock.RiderSubject(e))
		return
	}
	w.Store.SetRiderState(e, model.RiderCancelled)
	w.Store.DeferDespawnRider(e)
}
