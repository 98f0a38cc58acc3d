package reactors

import (
	"github.com/dpapukchiev/ridehail-sim/clock"
	"github.com/dpapukchiev/ridehail-sim/logging"
	"github.com/dpapukchiev/ridehail-sim/model"
)

// CheckDriverOffDuty (broadcast, periodic every OffDutyCheckIntervalSecs)
// flips any driver who has hit their daily earnings target or fatigue
// threshold to OffDuty, cancelling an in-progress pickup through the
// normal RiderCancel patience path rather than force-completing it (spec
// §4.6 CheckDriverOffDuty).
func CheckDriverOffDuty(w *World, ev *clock.Event) {
	if ev.Kind != clock.CheckDriverOffDuty || ev.Subject.Kind != model.KindNone {
		return
	}
	now := w.Clock.Now()

	for e, driver := range w.Store.Drivers() {
		state, ok := w.Store.DriverState(e)
		if !ok || (state != model.DriverIdle && state != model.DriverEnRoute) {
			continue
		}
		earn, ok := w.Store.Earnings(e)
		if !ok {
			continue
		}
		fatigue, _ := w.Store.Fatigue(e)

		hitTarget := earn.DailyEarningsTarget > 0 && earn.DailyEarnings >= earn.DailyEarningsTarget
		hitFatigue := fatigue != nil && fatigue.FatigueThresholdMs > 0 &&
			now-earn.SessionStartMs >= fatigue.FatigueThresholdMs
		if !hitTarget && !hitFatigue {
			continue
		}

		if state == model.DriverEnRoute && driver.MatchedRider != nil {
			w.Clock.ScheduleIn(1000, clock.RiderCancel, clock.RiderSubject(*driver.MatchedRider))
		}

		w.Store.SetDriverState(e, model.DriverOffDuty)
		earn.SessionEndMs = &now

		if w.Log != nil {
			logging.WithReactor(w.Log, "CheckDriverOffDuty", ev.Kind.String()).WithFields(logging.Fields{
				"driver":       e,
				"hit_target":   hitTarget,
				"hit_fatigue":  hitFatigue,
				"daily_earned": earn.DailyEarnings,
			}).Debug("driver went off duty")
		}
	}

	w.Clock.ScheduleIn(OffDutyCheckIntervalSecs*1000, clock.CheckDriverOffDuty, clock.NoSubject)
}
