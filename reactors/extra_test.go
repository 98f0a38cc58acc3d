package reactors

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dpapukchiev/ridehail-sim/clock"
	"github.com/dpapukchiev/ridehail-sim/model"
)

func newPickupEtaTrip(t *testing.T, w *World, riderCell, driverCell model.Cell, matchedAt uint64) model.Entity {
	t.Helper()
	riderE := w.Store.AllocEntity()
	w.Store.AttachRider(riderE, model.Rider{}, riderCell)
	w.Store.SetRiderState(riderE, model.RiderWaiting)

	driverE := w.Store.AllocEntity()
	w.Store.AttachDriver(driverE, model.Driver{MatchedRider: &riderE}, driverCell, model.Earnings{}, model.Fatigue{})
	w.Store.SetDriverState(driverE, model.DriverEnRoute)

	tripE := w.Store.AllocEntity()
	w.Store.SpawnTrip(tripE,
		model.Trip{Rider: riderE, Driver: driverE, Pickup: riderCell, Dropoff: riderCell},
		model.Timing{RequestedAt: matchedAt, MatchedAt: matchedAt},
		model.Financials{},
		model.LiveData{},
	)
	w.Store.SetTripState(tripE, model.TripEnRoute)
	return tripE
}

// TestPickupEtaUpdatedCancelsWhenEtaOvershootsMaxWait pins spec's
// Concrete Scenario 4 (min_wait_secs=10, max_wait_secs=60): a driver far
// enough away that now+pickup_eta_ms exceeds matched_at+max_wait_secs*1000
// must deterministically cancel, not depend on a random draw.
func TestPickupEtaUpdatedCancelsWhenEtaOvershootsMaxWait(t *testing.T) {
	w := newTestWorld(t)
	w.Params.MinWaitSecs = 10
	w.Params.MaxWaitSecs = 60
	riderCell := mustCell(t, 52.52, 13.405)
	driverCell := mustCell(t, 52.62, 13.505) // several km out: large pickup ETA

	tripE := newPickupEtaTrip(t, w, riderCell, driverCell, 0)

	w.Clock.ScheduleAt(11_000, clock.PickupEtaUpdated, clock.TripSubject(tripE))
	ev, _ := w.Clock.PopNext()
	PickupEtaUpdated(w, ev)

	next, ok := w.Clock.PeekNext()
	require.True(t, ok)
	require.Equal(t, clock.RiderCancel, next.Kind)

	live, ok := w.Store.LiveData(tripE)
	require.True(t, ok)
	require.Greater(t, live.PickupEtaMs, uint64(0))
}

// TestPickupEtaUpdatedDoesNothingBeforeMinWait asserts the first branch:
// before matched_at+min_wait_secs*1000 elapses, no cancellation fires
// regardless of how large the live ETA is.
func TestPickupEtaUpdatedDoesNothingBeforeMinWait(t *testing.T) {
	w := newTestWorld(t)
	w.Params.MinWaitSecs = 10
	w.Params.MaxWaitSecs = 60
	riderCell := mustCell(t, 52.52, 13.405)
	driverCell := mustCell(t, 52.62, 13.505) // same large-ETA driver as above

	tripE := newPickupEtaTrip(t, w, riderCell, driverCell, 0)

	w.Clock.ScheduleAt(5_000, clock.PickupEtaUpdated, clock.TripSubject(tripE))
	ev, _ := w.Clock.PopNext()
	PickupEtaUpdated(w, ev)

	_, ok := w.Clock.PeekNext()
	require.False(t, ok)
}

// TestPickupEtaUpdatedDoesNotCancelWhenEtaWithinMaxWait asserts that a
// driver already essentially at the pickup cell (near-zero ETA) never
// overshoots max_wait_secs, even once min_wait_secs has elapsed.
func TestPickupEtaUpdatedDoesNotCancelWhenEtaWithinMaxWait(t *testing.T) {
	w := newTestWorld(t)
	w.Params.MinWaitSecs = 10
	w.Params.MaxWaitSecs = 60
	riderCell := mustCell(t, 52.52, 13.405)

	tripE := newPickupEtaTrip(t, w, riderCell, riderCell, 0)

	w.Clock.ScheduleAt(11_000, clock.PickupEtaUpdated, clock.TripSubject(tripE))
	ev, _ := w.Clock.PopNext()
	PickupEtaUpdated(w, ev)

	_, ok := w.Clock.PeekNext()
	require.False(t, ok)
}

func TestRiderCancelReturnsDriverToIdleAndDespawnsRider(t *testing.T) {
	w := newTestWorld(t)
	riderCell := mustCell(t, 52.52, 13.405)
	driverCell := mustCell(t, 52.521, 13.406)

	riderE := w.Store.AllocEntity()
	w.Store.AttachRider(riderE, model.Rider{MatchedDriver: new(model.Entity)}, riderCell)
	w.Store.SetRiderState(riderE, model.RiderWaiting)
	rider, _ := w.Store.Rider(riderE)

	driverE := w.Store.AllocEntity()
	w.Store.AttachDriver(driverE, model.Driver{}, driverCell, model.Earnings{}, model.Fatigue{})
	w.Store.SetDriverState(driverE, model.DriverEnRoute)
	rider.MatchedDriver = &driverE

	tripE := w.Store.AllocEntity()
	w.Store.SpawnTrip(tripE,
		model.Trip{Rider: riderE, Driver: driverE, Pickup: riderCell, Dropoff: riderCell},
		model.Timing{RequestedAt: 0},
		model.Financials{},
		model.LiveData{},
	)
	w.Store.SetTripState(tripE, model.TripEnRoute)
	rider.AssignedTrip = &tripE

	RiderCancel(w, &clock.Event{Kind: clock.RiderCancel, Subject: clock.RiderSubject(riderE)})

	driverState, _ := w.Store.DriverState(driverE)
	require.Equal(t, model.DriverIdle, driverState)
	tripState, _ := w.Store.TripState(tripE)
	require.Equal(t, model.TripCancelled, tripState)

	riderState, _ := w.Store.RiderState(riderE)
	require.Equal(t, model.RiderCancelled, riderState)
	w.Store.ApplyDeferred()
	_, stillPresent := w.Store.Rider(riderE)
	require.False(t, stillPresent)
}

func TestCheckDriverOffDutyFlipsDriverOverEarningsTarget(t *testing.T) {
	w := newTestWorld(t)
	driverCell := mustCell(t, 52.521, 13.406)

	driverE := w.Store.AllocEntity()
	w.Store.AttachDriver(driverE, model.Driver{}, driverCell,
		model.Earnings{DailyEarnings: 150, DailyEarningsTarget: 100}, model.Fatigue{})
	w.Store.SetDriverState(driverE, model.DriverIdle)

	CheckDriverOffDuty(w, &clock.Event{Kind: clock.CheckDriverOffDuty, Subject: clock.NoSubject})

	state, _ := w.Store.DriverState(driverE)
	require.Equal(t, model.DriverOffDuty, state)

	next, ok := w.Clock.PeekNext()
	require.True(t, ok)
	require.Equal(t, clock.CheckDriverOffDuty, next.Kind)
}

func TestMoveStepReactorStepsDriverTowardPickupAndReschedules(t *testing.T) {
	w := newTestWorld(t)
	riderCell := mustCell(t, 52.52, 13.405)
	driverCell := mustCell(t, 52.55, 13.44)

	riderE := w.Store.AllocEntity()
	w.Store.AttachRider(riderE, model.Rider{}, riderCell)
	w.Store.SetRiderState(riderE, model.RiderWaiting)

	driverE := w.Store.AllocEntity()
	w.Store.AttachDriver(driverE, model.Driver{}, driverCell, model.Earnings{}, model.Fatigue{})
	w.Store.SetDriverState(driverE, model.DriverEnRoute)

	tripE := w.Store.AllocEntity()
	w.Store.SpawnTrip(tripE,
		model.Trip{Rider: riderE, Driver: driverE, Pickup: riderCell, Dropoff: riderCell},
		model.Timing{RequestedAt: 0},
		model.Financials{},
		model.LiveData{},
	)
	w.Store.SetTripState(tripE, model.TripEnRoute)

	startCell, _ := w.Store.Position(driverE)
	w.Clock.ScheduleAt(0, clock.MoveStep, clock.TripSubject(tripE))
	ev, _ := w.Clock.PopNext()
	MoveStepReactor(w, ev)

	endCell, _ := w.Store.Position(driverE)
	require.False(t, startCell.Equal(endCell))

	next, ok := w.Clock.PeekNext()
	require.True(t, ok)
	require.True(t, next.Kind == clock.MoveStep || next.Kind == clock.PickupEtaUpdated)
}

func TestMoveStepReactorArrivalFiresTripStarted(t *testing.T) {
	w := newTestWorld(t)
	cell := mustCell(t, 52.52, 13.405)

	riderE := w.Store.AllocEntity()
	w.Store.AttachRider(riderE, model.Rider{}, cell)
	w.Store.SetRiderState(riderE, model.RiderWaiting)

	driverE := w.Store.AllocEntity()
	w.Store.AttachDriver(driverE, model.Driver{}, cell, model.Earnings{}, model.Fatigue{})
	w.Store.SetDriverState(driverE, model.DriverEnRoute)

	tripE := w.Store.AllocEntity()
	w.Store.SpawnTrip(tripE,
		model.Trip{Rider: riderE, Driver: driverE, Pickup: cell, Dropoff: cell},
		model.Timing{RequestedAt: 0},
		model.Financials{},
		model.LiveData{},
	)
	w.Store.SetTripState(tripE, model.TripEnRoute)

	MoveStepReactor(w, &clock.Event{Kind: clock.MoveStep, Subject: clock.TripSubject(tripE)})

	next, ok := w.Clock.PeekNext()
	require.True(t, ok)
	require.Equal(t, clock.TripStarted, next.Kind)
}

func TestTripStartedMovesEveryoneIntoOnTripStates(t *testing.T) {
	w := newTestWorld(t)
	cell := mustCell(t, 52.52, 13.405)

	riderE := w.Store.AllocEntity()
	w.Store.AttachRider(riderE, model.Rider{}, cell)
	w.Store.SetRiderState(riderE, model.RiderWaiting)

	driverE := w.Store.AllocEntity()
	w.Store.AttachDriver(driverE, model.Driver{}, cell, model.Earnings{}, model.Fatigue{})
	w.Store.SetDriverState(driverE, model.DriverEnRoute)

	tripE := w.Store.AllocEntity()
	w.Store.SpawnTrip(tripE,
		model.Trip{Rider: riderE, Driver: driverE, Pickup: cell, Dropoff: cell},
		model.Timing{RequestedAt: 0},
		model.Financials{},
		model.LiveData{},
	)
	w.Store.SetTripState(tripE, model.TripEnRoute)

	TripStarted(w, &clock.Event{Kind: clock.TripStarted, Subject: clock.TripSubject(tripE)})

	tripState, _ := w.Store.TripState(tripE)
	require.Equal(t, model.TripOnTrip, tripState)
	riderState, _ := w.Store.RiderState(riderE)
	require.Equal(t, model.RiderInTransit, riderState)
	driverState, _ := w.Store.DriverState(driverE)
	require.Equal(t, model.DriverOnTrip, driverState)

	next, ok := w.Clock.PeekNext()
	require.True(t, ok)
	require.Equal(t, clock.MoveStep, next.Kind)
}

func TestMatchRejectedClearsPairingAndRetriesWhenNotBatched(t *testing.T) {
	w := newTestWorld(t)
	riderCell := mustCell(t, 52.52, 13.405)

	riderE := w.Store.AllocEntity()
	driverE := model.Entity(999)
	w.Store.AttachRider(riderE, model.Rider{MatchedDriver: &driverE}, riderCell)
	w.Store.SetRiderState(riderE, model.RiderWaiting)

	MatchRejected(w, &clock.Event{Kind: clock.MatchRejected, Subject: clock.RiderSubject(riderE)})

	rider, _ := w.Store.Rider(riderE)
	require.Nil(t, rider.MatchedDriver)

	next, ok := w.Clock.PeekNext()
	require.True(t, ok)
	require.Equal(t, clock.TryMatch, next.Kind)
}

func TestBatchMatchRunReactorPairsWaitingRiderWithIdleDriver(t *testing.T) {
	w := newTestWorld(t)
	w.Params.BatchEnabled = true
	w.Params.BatchIntervalSecs = 15
	riderCell := mustCell(t, 52.52, 13.405)
	driverCell := mustCell(t, 52.521, 13.406)

	riderE := w.Store.AllocEntity()
	w.Store.AttachRider(riderE, model.Rider{}, riderCell)
	w.Store.SetRiderState(riderE, model.RiderWaiting)

	driverE := w.Store.AllocEntity()
	w.Store.AttachDriver(driverE, model.Driver{}, driverCell, model.Earnings{}, model.Fatigue{})

	BatchMatchRunReactor(w, &clock.Event{Kind: clock.BatchMatchRun, Subject: clock.NoSubject})

	rider, _ := w.Store.Rider(riderE)
	require.NotNil(t, rider.MatchedDriver)
	require.Equal(t, driverE, *rider.MatchedDriver)

	next, ok := w.Clock.PeekNext()
	require.True(t, ok)
	require.True(t, next.Kind == clock.MatchAccepted || next.Kind == clock.BatchMatchRun)
}

func TestRepositionRunReactorReschedulesAfterControlInterval(t *testing.T) {
	w := newTestWorld(t)
	w.Params.Reposition.Enabled = true
	w.Params.Reposition.ControlIntervalSecs = 60

	riderCell := mustCell(t, 52.55, 13.44)
	driverCell := mustCell(t, 52.52, 13.405)

	riderE := w.Store.AllocEntity()
	w.Store.AttachRider(riderE, model.Rider{}, riderCell)
	w.Store.SetRiderState(riderE, model.RiderWaiting)

	driverE := w.Store.AllocEntity()
	w.Store.AttachDriver(driverE, model.Driver{}, driverCell, model.Earnings{}, model.Fatigue{})
	w.Store.SetDriverState(driverE, model.DriverIdle)

	RepositionRunReactor(w, &clock.Event{Kind: clock.RepositionRun, Subject: clock.NoSubject})

	next, ok := w.Clock.PeekNext()
	require.True(t, ok)
	require.Equal(t, clock.RepositionRun, next.Kind)
	require.Equal(t, uint64(60_000), next.TimestampMs)
}

// TestRepositionRunReactorExcludesAlreadyMatchedWaitingRiders pins the
// spec's "Waiting riders with no assignment" filter: a Waiting rider who
// already has a MatchedDriver must not inflate waiting_demand in its
// zone. With the only rider excluded, waiting_demand is empty, so the
// rider's cell is not a zone at all and gets no target; counting the
// matched rider would have made its cell a zone with a hotspot-boosted
// target of 1.
func TestRepositionRunReactorExcludesAlreadyMatchedWaitingRiders(t *testing.T) {
	w := newTestWorld(t)
	w.Params.Reposition.Enabled = true
	w.Params.Reposition.HotspotWeight = 1.0
	w.Params.Reposition.MinimumZoneReserve = 0

	riderCell := mustCell(t, 52.55, 13.44)
	driverCell := mustCell(t, 52.52, 13.405)

	matchedDriverE := w.Store.AllocEntity()
	riderE := w.Store.AllocEntity()
	w.Store.AttachRider(riderE, model.Rider{MatchedDriver: &matchedDriverE}, riderCell)
	w.Store.SetRiderState(riderE, model.RiderWaiting)

	idleDriverE := w.Store.AllocEntity()
	w.Store.AttachDriver(idleDriverE, model.Driver{}, driverCell, model.Earnings{}, model.Fatigue{})
	w.Store.SetDriverState(idleDriverE, model.DriverIdle)

	RepositionRunReactor(w, &clock.Event{Kind: clock.RepositionRun, Subject: clock.NoSubject})

	require.NotContains(t, w.TargetIdle, riderCell)
}

func TestSimulationStartedArmsControlLoopsAndInitialSpawns(t *testing.T) {
	w := newTestWorld(t)
	w.Params.Reposition.Enabled = true
	w.Params.Reposition.ControlIntervalSecs = 60
	w.Params.BatchEnabled = true
	w.Params.BatchIntervalSecs = 15
	w.NumRidersTarget = 1
	w.NumDriversTarget = 1

	SimulationStarted(w, &clock.Event{Kind: clock.SimulationStarted, Subject: clock.NoSubject})

	var kinds []clock.Kind
	for w.Clock.Len() > 0 {
		ev, _ := w.Clock.PopNext()
		kinds = append(kinds, ev.Kind)
	}
	require.Contains(t, kinds, clock.CheckDriverOffDuty)
	require.Contains(t, kinds, clock.RepositionRun)
	require.Contains(t, kinds, clock.BatchMatchRun)
	require.Contains(t, kinds, clock.SpawnRider)
	require.Contains(t, kinds, clock.SpawnDriver)
}

func TestSpawnDriverReactorSamplesFromSourceAndDefersSpawn(t *testing.T) {
	w := newTestWorld(t)
	w.DriverSource = fixedDriverSource{cell: mustCell(t, 52.52, 13.405)}
	w.NumDriversTarget = 1

	SpawnDriverReactor(w, &clock.Event{Kind: clock.SpawnDriver, Subject: clock.NoSubject})
	w.Store.ApplyDeferred()

	require.Len(t, w.Store.Drivers(), 1)
	require.Equal(t, 1, w.DriversSpawned)
}

func TestTelemetrySnapshotReactorPushesAfterInterval(t *testing.T) {
	w := newTestWorld(t)
	w.Params.SnapshotIntervalMs = 1000
	w.Clock.ScheduleAt(2000, clock.ShowQuote, clock.NoSubject)
	ev, _ := w.Clock.PopNext()

	TelemetrySnapshotReactor(w, ev)

	snap, ok := w.Trips.Latest()
	require.True(t, ok)
	require.Equal(t, uint64(2000), snap.TimestampMs)
	require.Equal(t, uint64(2000), w.LastSnapshotMs)
}

func TestTelemetrySnapshotReactorSkipsWithinInterval(t *testing.T) {
	w := newTestWorld(t)
	w.Params.SnapshotIntervalMs = 10_000
	w.LastSnapshotMs = 500

	w.Clock.ScheduleAt(1000, clock.ShowQuote, clock.NoSubject)
	ev, _ := w.Clock.PopNext()
	TelemetrySnapshotReactor(w, ev)

	require.Equal(t, uint64(500), w.LastSnapshotMs)
}

type fixedDriverSource struct{ cell model.Cell }

func (f fixedDriverSource) NextDriver(entityIndex uint64, nowMs uint64, dailyTarget float64, fatigueThresholdMs uint64) (model.Driver, model.Cell, model.Earnings, model.Fatigue) {
	return model.Driver{}, f.cell, model.Earnings{DailyEarningsTarget: dailyTarget, SessionStartMs: nowMs}, model.Fatigue{FatigueThresholdMs: fatigueThresholdMs}
}
