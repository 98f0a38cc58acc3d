package reposition

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dpapukchiev/ridehail-sim/model"
	"github.com/dpapukchiev/ridehail-sim/spatial"
)

func mustCell(t *testing.T, lat, lng float64) model.Cell {
	t.Helper()
	c, err := spatial.FromLatLng(lat, lng, spatial.DefaultResolution)
	require.NoError(t, err)
	return c
}

func TestRunBiasesTowardHotspot(t *testing.T) {
	zA := mustCell(t, 52.52, 13.405)
	zB := mustCell(t, 52.40, 13.10)

	// 20 idle drivers, 5 in zA and 15 in zB: targets come out at
	// zA = 10 + round(10/11*20*0.5) = 19 and zB = 10 + 1 = 11, so zB is
	// the only zone whose supply exceeds its own target and can donate.
	var drivers []IdleDriver
	for i := 0; i < 5; i++ {
		drivers = append(drivers, IdleDriver{Entity: model.Entity(i), Cell: zA})
	}
	for i := 5; i < 20; i++ {
		drivers = append(drivers, IdleDriver{Entity: model.Entity(i), Cell: zB})
	}

	demand := map[model.Cell]int{zA: 10, zB: 1}
	supply := map[model.Cell]int{zA: 5, zB: 15}

	policy := DefaultPolicy()
	policy.MaxDriversMovedPerCycle = 20
	policy.MaxRepositionDistanceKm = 1000

	result := Run(policy, 0, demand, supply, drivers)
	require.NotEmpty(t, result.Moves)

	movedToA := 0
	for _, m := range result.Moves {
		if m.To.Equal(zA) {
			movedToA++
		}
	}
	require.Greater(t, movedToA, 0)
}

func TestRunRespectsCooldown(t *testing.T) {
	zA := mustCell(t, 52.52, 13.405)
	zB := mustCell(t, 52.40, 13.10)

	drivers := []IdleDriver{
		{Entity: 1, Cell: zB, CooldownUnitMs: 5000},
	}
	demand := map[model.Cell]int{zA: 5}
	supply := map[model.Cell]int{zA: 0, zB: 5}

	policy := DefaultPolicy()
	policy.MaxRepositionDistanceKm = 1000

	result := Run(policy, 1000, demand, supply, drivers)
	require.Empty(t, result.Moves)

	result2 := Run(policy, 6000, demand, supply, drivers)
	require.NotEmpty(t, result2.Moves)
}

func TestRunDisabledIsNoop(t *testing.T) {
	policy := DefaultPolicy()
	policy.Enabled = false
	result := Run(policy, 0, nil, nil, nil)
	require.Empty(t, result.Moves)
}
