package matching

import (
	"sort"

	"github.com/dpapukchiev/ridehail-sim/spatial"
)

// infeasible marks a rider-driver pair outside the match radius; it must
// sort after every real score so the assignment solver never picks it
// while a feasible pair remains.
const infeasible = 1e18

// FindMatchesBatch solves the restricted bipartite assignment described
// in spec §4.4 "Batch(params)": among riders and drivers within radius of
// each other, pick the set of pairs minimizing total ScoreDriverForRider
// cost, one driver per rider at most. Pairs outside radius are excluded
// from consideration entirely (never forced).
//
// The solver is a straightforward O(n^3) Hungarian algorithm (Jonker-
// Volgenant style augmenting-path variant) over a square cost matrix
// padded with infeasible entries, adequate for the batch sizes a single
// BatchMatchRun cycle sees (the default batch_interval_secs of 15 groups
// a few seconds of demand, not a city's full fleet).
func FindMatchesBatch(riders []RiderCandidate, drivers []DriverCandidate, radius int) []Pair {
	return FindMatchesBatchWithZones(riders, drivers, radius, ZoneStats{})
}

// FindMatchesBatchWithZones is FindMatchesBatch with a caller-supplied
// ZoneStats so imbalance/hotspot terms reflect live supply and demand
// rather than the neutral defaults.
func FindMatchesBatchWithZones(riders []RiderCandidate, drivers []DriverCandidate, radius int, zones ZoneStats) []Pair {
	n := len(riders)
	m := len(drivers)
	if n == 0 || m == 0 {
		return nil
	}

	riders = append([]RiderCandidate(nil), riders...)
	drivers = append([]DriverCandidate(nil), drivers...)
	sort.Slice(riders, func(i, j int) bool { return riders[i].Seq < riders[j].Seq })
	sort.Slice(drivers, func(i, j int) bool { return drivers[i].Seq < drivers[j].Seq })

	cost := make([][]float64, n)
	for i, r := range riders {
		cost[i] = make([]float64, m)
		for j, d := range drivers {
			dist, err := spatial.GridDistance(r.Cell, d.Cell)
			if err != nil || dist < 0 || dist > radius {
				cost[i][j] = infeasible
				continue
			}
			cost[i][j] = ScoreDriverForRider(r.Cell, d.Cell, zones)
		}
	}

	assignment := hungarian(cost)

	pairs := make([]Pair, 0, n)
	for i, j := range assignment {
		if j < 0 || cost[i][j] >= infeasible {
			continue
		}
		pairs = append(pairs, Pair{Rider: riders[i].Entity, Driver: drivers[j].Entity})
	}
	return pairs
}

// hungarian solves a rectangular minimum-cost assignment via the
// Jonker-Volgenant shortest-augmenting-path formulation, returning for
// each row its assigned column index or -1 if unmatched (when there are
// more rows than columns). Rows are riders, columns are drivers.
func hungarian(cost [][]float64) []int {
	n := len(cost)
	if n == 0 {
		return nil
	}
	m := len(cost[0])

	const inf = 1e18
	// Pad to square with infeasible entries so every rider gets a slot to
	// "not match" without biasing real assignments.
	size := n
	if m > size {
		size = m
	}
	a := make([][]float64, size)
	for i := 0; i < size; i++ {
		a[i] = make([]float64, size)
		for j := 0; j < size; j++ {
			switch {
			case i < n && j < m:
				a[i][j] = cost[i][j]
			default:
				a[i][j] = inf
			}
		}
	}

	u := make([]float64, size+1)
	v := make([]float64, size+1)
	p := make([]int, size+1)
	way := make([]int, size+1)

	for i := 1; i <= size; i++ {
		p[0] = i
		j0 := 0
		minV := make([]float64, size+1)
		used := make([]bool, size+1)
		for j := range minV {
			minV[j] = inf
		}
		for {
			used[j0] = true
			i0 := p[j0]
			delta := inf
			j1 := -1
			for j := 1; j <= size; j++ {
				if used[j] {
					continue
				}
				cur := a[i0-1][j-1] - u[i0] - v[j]
				if cur < minV[j] {
					minV[j] = cur
					way[j] = j0
				}
				if minV[j] < delta {
					delta = minV[j]
					j1 = j
				}
			}
			for j := 0; j <= size; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minV[j] -= delta
				}
			}
			j0 = j1
			if p[j0] == 0 {
				break
			}
		}
		for j0 != 0 {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
		}
	}

	colToRow := make([]int, size+1)
	for j := 1; j <= size; j++ {
		colToRow[j] = p[j]
	}

	result := make([]int, n)
	for i := range result {
		result[i] = -1
	}
	for j := 1; j <= size; j++ {
		row := colToRow[j] - 1
		col := j - 1
		if row >= 0 && row < n && col < m {
			result[row] = col
		}
	}
	return result
}
