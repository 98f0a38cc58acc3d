package matching

import (
	"math"

	"github.com/dpapukchiev/ridehail-sim/model"
	"github.com/dpapukchiev/ridehail-sim/spatial"
)

// ScoreDriverForRider computes the CostBased composite score (spec
// §4.4): lower is better.
//
//	score = pickup_time_cost + reposition_cost + imbalance_penalty - hotspot_bonus
func ScoreDriverForRider(riderCell, driverCell model.Cell, zones ZoneStats) float64 {
	distanceKm := spatial.GreatCircleKm(riderCell, driverCell)

	pickupTimeSeconds := math.Round(distanceKm / 40.0 * 3_600_000.0)
	if pickupTimeSeconds < 1000 {
		pickupTimeSeconds = 1000
	}
	pickupTimeCost := pickupTimeSeconds / 1000.0

	repositionCost := distanceKm * 0.15

	srcSupply := zones.idleSupply(driverCell)
	srcTarget := zones.targetIdle(driverCell)
	var imbalancePenalty float64
	switch {
	case srcSupply <= zones.MinimumZoneReserve:
		imbalancePenalty = 3000
	case srcSupply-1 < srcTarget:
		imbalancePenalty = float64(srcTarget-(srcSupply-1)) * 20
	default:
		imbalancePenalty = 0
	}

	hotspotBonus := float64(zones.waitingDemand(riderCell)) * zones.HotspotWeight

	return pickupTimeCost + repositionCost + imbalancePenalty - hotspotBonus
}
