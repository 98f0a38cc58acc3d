package matching

import (
	"github.com/dpapukchiev/ridehail-sim/model"
	"github.com/dpapukchiev/ridehail-sim/spatial"
)

// FindMatchSimple returns the first driver in iteration order within
// radius hex-steps of the rider (spec §4.4 "Simple"). O(n), deterministic
// given input ordering.
func FindMatchSimple(riderCell model.Cell, drivers []DriverCandidate, radius int) (DriverCandidate, bool) {
	for _, d := range drivers {
		dist, err := spatial.GridDistance(riderCell, d.Cell)
		if err != nil {
			continue
		}
		if dist >= 0 && dist <= radius {
			return d, true
		}
	}
	return DriverCandidate{}, false
}
