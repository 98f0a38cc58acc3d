package telemetry

import (
	"errors"
	"sync"

	"github.com/dpapukchiev/ridehail-sim/osrm"
)

// OsrmSpawnTelemetry counts road-snap failures by class so a scenario
// run surfaces external-service degradation without ever failing a
// spawn (spec §7: "logged to an OsrmSpawnTelemetry counter... the spawn
// falls back to unsnapped coordinates").
type OsrmSpawnTelemetry struct {
	mu sync.Mutex

	MatchErrors       int
	MatchRejectedSoft int // SnapTrace found no road match (osrm.ErrNoMatch), not a hard error
	NearestFailures   int
}

// RecordMatchError counts a SnapTrace failure, classifying it by the
// osrm error sentinel it wraps.
func (t *OsrmSpawnTelemetry) RecordMatchError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch {
	case err == nil:
		return
	case errors.Is(err, osrm.ErrNoMatch):
		t.MatchRejectedSoft++
	default:
		t.MatchErrors++
	}
}

// RecordNearestFailure counts a SnapNearest failure.
func (t *OsrmSpawnTelemetry) RecordNearestFailure(err error) {
	if err == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.NearestFailures++
}

// Snapshot returns a copy of the current counters for export.
func (t *OsrmSpawnTelemetry) Snapshot() (matchErrors, rejectedSoft, nearestFailures int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.MatchErrors, t.MatchRejectedSoft, t.NearestFailures
}
