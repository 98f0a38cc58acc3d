// Package matching implements the candidate filter, scoring policy,
// single-rider matcher, and batch global matcher described in spec §4.4.
// Both entry points are pure functions of their inputs — no ECS access —
// so the lifecycle reactors own fetching candidates from the entity
// store and calling into this package (spec §9 Design Notes: queries
// are read-then-write passes; matching never reaches back into a
// mutable store).
package matching

import "github.com/dpapukchiev/ridehail-sim/model"

// DriverCandidate is an idle driver under consideration for a match.
type DriverCandidate struct {
	Entity model.Entity
	Cell   model.Cell
	// Seq is the driver's insertion sequence, used for batch tie-breaks
	// (spec §4.4: "(3) by smaller driver insertion-sequence").
	Seq uint64
}

// RiderCandidate is a waiting rider under consideration for a match.
type RiderCandidate struct {
	Entity      model.Entity
	Cell        model.Cell
	Destination *model.Cell
	// Seq is the rider's insertion sequence (spec §4.4 tie-break (2)).
	Seq uint64
}

// Pair is a proposed rider<->driver match.
type Pair struct {
	Rider  model.Entity
	Driver model.Entity
}

// ZoneStats supplies the supply/demand/target context score_driver_for_rider
// needs (spec §4.4 CostBased), built fresh each call from the current
// world state by the caller (typically the matching reactor).
type ZoneStats struct {
	IdleSupply         map[model.Cell]int
	WaitingDemand      map[model.Cell]int
	TargetIdle         map[model.Cell]int
	MinimumZoneReserve int
	HotspotWeight      float64
}

func (z ZoneStats) idleSupply(c model.Cell) int    { return z.IdleSupply[c] }
func (z ZoneStats) waitingDemand(c model.Cell) int { return z.WaitingDemand[c] }
func (z ZoneStats) targetIdle(c model.Cell) int {
	if v, ok := z.TargetIdle[c]; ok {
		return v
	}
	return z.MinimumZoneReserve
}

// Algorithm tags which matching policy to run (spec §9 Design Notes:
// "represent as a tagged-variant Algorithm = Simple | CostBased |
// Batch(params)").
type Algorithm uint8

const (
	AlgorithmSimple Algorithm = iota
	AlgorithmCostBased
	AlgorithmHungarian
)
