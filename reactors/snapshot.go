package reactors

import (
	"github.com/dpapukchiev/ridehail-sim/clock"
	"github.com/dpapukchiev/ridehail-sim/telemetry"
)

// TelemetrySnapshotReactor runs on every dispatched event (it has no
// Kind filter, unlike the other reactors) and pushes a rolling-buffer
// SimSnapshot whenever at least SnapshotIntervalMs of sim-time has
// passed since the last push (spec §6 schedule: "telemetry_snapshot"
// runs after repositioning and before deferred entities apply; spec §4.7
// "bounded, FIFO eviction").
func TelemetrySnapshotReactor(w *World, ev *clock.Event) {
	if w.Trips == nil {
		return
	}
	now := w.Clock.Now()
	if w.Params.SnapshotIntervalMs > 0 && now-w.LastSnapshotMs < w.Params.SnapshotIntervalMs && w.LastSnapshotMs != 0 {
		return
	}
	w.LastSnapshotMs = now

	riderCounts := map[string]int{}
	var riders []telemetry.EntitySnapshot
	for e := range w.Store.Riders() {
		st, ok := w.Store.RiderState(e)
		if !ok {
			continue
		}
		riderCounts[st.String()]++
		c, _ := w.Store.Position(e)
		riders = append(riders, telemetry.EntitySnapshot{Entity: e, Cell: c, State: st.String()})
	}

	driverCounts := map[string]int{}
	var drivers []telemetry.EntitySnapshot
	for e := range w.Store.Drivers() {
		st, ok := w.Store.DriverState(e)
		if !ok {
			continue
		}
		driverCounts[st.String()]++
		c, _ := w.Store.Position(e)
		drivers = append(drivers, telemetry.EntitySnapshot{Entity: e, Cell: c, State: st.String()})
	}

	tripCounts := map[string]int{}
	var trips []telemetry.TripSnapshot
	for e, t := range w.Store.Trips() {
		st, ok := w.Store.TripState(e)
		if !ok {
			continue
		}
		tripCounts[st.String()]++
		trips = append(trips, telemetry.TripSnapshot{Trip: e, Rider: t.Rider, Driver: t.Driver, State: st.String()})
	}

	w.Trips.Push(telemetry.SimSnapshot{
		TimestampMs:  now,
		RiderCounts:  riderCounts,
		DriverCounts: driverCounts,
		TripCounts:   tripCounts,
		Riders:       riders,
		Drivers:      drivers,
		Trips:        trips,
	})
}
