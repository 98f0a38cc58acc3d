// Package telemetry records completed trips, rolling world-state
// snapshots, and error counters (spec §4.7, §7).
package telemetry

import (
	"github.com/google/uuid"

	"github.com/dpapukchiev/ridehail-sim/model"
)

// CompletedTripRecord is appended on TripCompleted (spec §4.7).
type CompletedTripRecord struct {
	RunID       uuid.UUID
	Trip        model.Entity
	Rider       model.Entity
	Driver      model.Entity
	RequestedAt uint64
	MatchedAt   uint64
	PickupAt    uint64
	CompletedAt uint64
	Fare        float64
}

// EntitySnapshot is one entity's position and state tag at a snapshot instant.
type EntitySnapshot struct {
	Entity model.Entity
	Cell   model.Cell
	State  string
}

// TripSnapshot captures a live trip's progress at a snapshot instant.
type TripSnapshot struct {
	Trip   model.Entity
	Rider  model.Entity
	Driver model.Entity
	State  string
}

// SimSnapshot is one rolling-buffer entry (spec §4.7): aggregate counts
// per state plus the full per-entity detail the visualization front-end
// consumes (spec §6 External collaborators — "read-only reader of
// SimSnapshots").
type SimSnapshot struct {
	TimestampMs  uint64
	RiderCounts  map[string]int
	DriverCounts map[string]int
	TripCounts   map[string]int
	Riders       []EntitySnapshot
	Drivers      []EntitySnapshot
	Trips        []TripSnapshot
}

// SimSnapshots is a bounded, FIFO-evicting rolling buffer (spec §4.7:
// "bounded, FIFO eviction").
type SimSnapshots struct {
	MaxSnapshots int
	buf          []SimSnapshot
}

// NewSimSnapshots constructs an empty buffer bounded to maxSnapshots
// (0 or negative means unbounded, matching a misconfigured max as
// "don't evict" rather than "keep nothing").
func NewSimSnapshots(maxSnapshots int) *SimSnapshots {
	return &SimSnapshots{MaxSnapshots: maxSnapshots}
}

// Push appends a new snapshot, evicting the oldest if the buffer is full.
func (s *SimSnapshots) Push(snap SimSnapshot) {
	s.buf = append(s.buf, snap)
	if s.MaxSnapshots > 0 && len(s.buf) > s.MaxSnapshots {
		s.buf = s.buf[len(s.buf)-s.MaxSnapshots:]
	}
}

// Len reports how many snapshots are currently buffered.
func (s *SimSnapshots) Len() int { return len(s.buf) }

// Latest returns the most recently pushed snapshot, if any.
func (s *SimSnapshots) Latest() (SimSnapshot, bool) {
	if len(s.buf) == 0 {
		return SimSnapshot{}, false
	}
	return s.buf[len(s.buf)-1], true
}

// All returns every buffered snapshot, oldest first. The slice is the
// buffer's backing array; callers must not mutate it.
func (s *SimSnapshots) All() []SimSnapshot {
	return s.buf
}
