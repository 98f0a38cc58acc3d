// Package reposition implements the periodic idle-driver rebalancing
// controller fired on RepositionRun events.
package reposition

import (
	"math"
	"sort"

	"github.com/dpapukchiev/ridehail-sim/model"
	"github.com/dpapukchiev/ridehail-sim/spatial"
)

// Policy mirrors RepositionPolicyConfig.
type Policy struct {
	Enabled                 bool
	MinimumZoneReserve      int
	HotspotWeight           float64
	MaxDriversMovedPerCycle int
	MaxRepositionDistanceKm float64
	CooldownSecs            uint64
	ControlIntervalSecs     uint64
}

// DefaultPolicy returns conservative defaults matching the scenario's
// documented baseline.
func DefaultPolicy() Policy {
	return Policy{
		Enabled:                 true,
		MinimumZoneReserve:      1,
		HotspotWeight:           0.5,
		MaxDriversMovedPerCycle: 10,
		MaxRepositionDistanceKm: 8.0,
		CooldownSecs:            120,
		ControlIntervalSecs:     60,
	}
}

// IdleDriver is an idle, off-cooldown-eligible driver candidate.
type IdleDriver struct {
	Entity       model.Entity
	Cell         model.Cell
	CooldownUnitMs uint64 // cooldown_until_ms; driver ineligible while nowMs < this
}

// Move records a single driver relocation applied by a cycle.
type Move struct {
	Entity   model.Entity
	From, To model.Cell
}

// Result is the outcome of one RepositionRun cycle: the moves to apply
// and, per driver, the new cooldown_until_ms.
type Result struct {
	Moves         []Move
	NewCooldownMs map[model.Entity]uint64
	// Target is the per-zone idle-driver target this cycle computed
	// (spec §4.4 CostBased "target_idle[z] comes from the repositioning
	// controller"); matching reads this to score imbalance.
	Target map[model.Cell]int
}

// Run executes spec §4.5 steps 1-4 for one cycle. waitingDemand and
// idleSupply are keyed by cell; drivers lists every currently idle driver
// (candidates for relocation).
func Run(policy Policy, nowMs uint64, waitingDemand, idleSupply map[model.Cell]int, drivers []IdleDriver) Result {
	result := Result{NewCooldownMs: map[model.Entity]uint64{}}
	if !policy.Enabled {
		return result
	}

	zones := unionKeys(waitingDemand, idleSupply)
	if len(zones) == 0 {
		return result
	}

	totalIdle := 0
	for _, c := range idleSupply {
		totalIdle += c
	}
	totalDemand := 0
	for _, c := range waitingDemand {
		totalDemand += c
	}

	target := make(map[model.Cell]int, len(zones))
	for _, z := range zones {
		base := float64(totalIdle) / float64(len(zones))
		if base < float64(policy.MinimumZoneReserve) {
			base = float64(policy.MinimumZoneReserve)
		}
		demandShare := 0.0
		if totalDemand > 0 {
			demandShare = float64(waitingDemand[z]) / float64(totalDemand)
		}
		hotspotExtra := math.Round(demandShare * float64(totalIdle) * policy.HotspotWeight)
		target[z] = int(base) + int(hotspotExtra)
	}
	result.Target = target

	type deficit struct {
		zone   model.Cell
		needed int
	}
	var deficits []deficit
	for _, z := range zones {
		needed := target[z] - idleSupply[z]
		if needed > 0 {
			deficits = append(deficits, deficit{zone: z, needed: needed})
		}
	}
	sort.Slice(deficits, func(i, j int) bool { return deficits[i].zone.String() < deficits[j].zone.String() })

	supplyPost := make(map[model.Cell]int, len(idleSupply))
	for z, v := range idleSupply {
		supplyPost[z] = v
	}

	movedThisCycle := map[model.Entity]bool{}
	candidates := append([]IdleDriver(nil), drivers...)
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Entity < candidates[j].Entity })

	movesLeft := policy.MaxDriversMovedPerCycle

	for di := range deficits {
		for deficits[di].needed > 0 && movesLeft > 0 {
			best := -1
			bestDist := math.MaxFloat64
			for ci, d := range candidates {
				if movedThisCycle[d.Entity] {
					continue
				}
				if nowMs < d.CooldownUnitMs {
					continue
				}
				srcTarget := target[d.Cell]
				if srcTarget < policy.MinimumZoneReserve {
					srcTarget = policy.MinimumZoneReserve
				}
				if supplyPost[d.Cell] <= srcTarget {
					continue
				}
				dist := spatial.GreatCircleKm(d.Cell, deficits[di].zone)
				if dist > policy.MaxRepositionDistanceKm {
					continue
				}
				if dist < bestDist {
					bestDist = dist
					best = ci
				}
			}
			if best < 0 {
				break
			}
			chosen := candidates[best]
			result.Moves = append(result.Moves, Move{Entity: chosen.Entity, From: chosen.Cell, To: deficits[di].zone})
			supplyPost[chosen.Cell]--
			supplyPost[deficits[di].zone]++
			movedThisCycle[chosen.Entity] = true
			result.NewCooldownMs[chosen.Entity] = nowMs + policy.CooldownSecs*1000
			deficits[di].needed--
			movesLeft--
		}
		if movesLeft <= 0 {
			break
		}
	}

	return result
}

func unionKeys(a, b map[model.Cell]int) []model.Cell {
	seen := map[model.Cell]struct{}{}
	var out []model.Cell
	for z := range a {
		if _, ok := seen[z]; !ok {
			seen[z] = struct{}{}
			out = append(out, z)
		}
	}
	for z := range b {
		if _, ok := seen[z]; !ok {
			seen[z] = struct{}{}
			out = append(out, z)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
