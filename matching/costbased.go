package matching

import (
	"github.com/dpapukchiev/ridehail-sim/model"
	"github.com/dpapukchiev/ridehail-sim/spatial"
)

// FindMatchCostBased filters candidates by radius then minimizes
// ScoreDriverForRider (spec §4.4 "CostBased"): ties broken by first in
// iteration order, so callers must hand in drivers already ordered by
// insertion sequence for determinism.
func FindMatchCostBased(riderCell model.Cell, drivers []DriverCandidate, radius int, zones ZoneStats) (DriverCandidate, bool) {
	var (
		best      DriverCandidate
		bestScore float64
		found     bool
	)
	for _, d := range drivers {
		dist, err := spatial.GridDistance(riderCell, d.Cell)
		if err != nil || dist < 0 || dist > radius {
			continue
		}
		score := ScoreDriverForRider(riderCell, d.Cell, zones)
		if !found || score < bestScore {
			best, bestScore, found = d, score, true
		}
	}
	return best, found
}
