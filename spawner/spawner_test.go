package spawner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dpapukchiev/ridehail-sim/osrm"
	"github.com/dpapukchiev/ridehail-sim/spatial"
)

func testConfig() Config {
	return Config{
		Box:          BoundingBox{LatMin: 52.45, LatMax: 52.58, LngMin: 13.28, LngMax: 13.52},
		Resolution:   spatial.DefaultResolution,
		MinTripCells: 2,
		MaxTripCells: 6,
		Seed:         42,
	}
}

func TestSpawnRiderIsDeterministicForSameEntityIndex(t *testing.T) {
	cfg := testConfig()
	r1, c1 := SpawnRider(cfg, 3)
	r2, c2 := SpawnRider(cfg, 3)

	require.True(t, c1.Equal(c2))
	require.Equal(t, r1.DisplayName, r2.DisplayName)
	require.NotNil(t, r1.Destination)
	require.NotNil(t, r2.Destination)
	require.True(t, r1.Destination.Equal(*r2.Destination))
}

func TestSpawnRiderDestinationWithinConfiguredCellRange(t *testing.T) {
	cfg := testConfig()
	rider, cell := SpawnRider(cfg, 5)
	require.NotNil(t, rider.Destination)

	dist, err := spatial.GridDistance(cell, *rider.Destination)
	require.NoError(t, err)
	require.GreaterOrEqual(t, dist, cfg.MinTripCells)
	require.LessOrEqual(t, dist, cfg.MaxTripCells)
}

func TestSpawnRiderDifferentIndicesYieldDifferentDraws(t *testing.T) {
	cfg := testConfig()
	_, c1 := SpawnRider(cfg, 1)
	_, c2 := SpawnRider(cfg, 2)
	require.False(t, c1.Equal(c2))
}

func TestSpawnDriverPopulatesEarningsAndFatigue(t *testing.T) {
	cfg := testConfig()
	driver, cell, earn, fat := SpawnDriver(cfg, 1, 5000, 150.0, 8*3_600_000)

	require.NotEmpty(t, driver.DisplayName)
	require.True(t, cell.IsValid())
	require.Equal(t, 150.0, earn.DailyEarningsTarget)
	require.Equal(t, uint64(5000), earn.SessionStartMs)
	require.Equal(t, uint64(8*3_600_000), fat.FatigueThresholdMs)
}

type fakeOsrmClient struct {
	lat, lng float64
	err      error
}

func (f fakeOsrmClient) SnapNearest(p osrm.Point) (osrm.SnapResult, error) {
	if f.err != nil {
		return osrm.SnapResult{}, f.err
	}
	return osrm.SnapResult{Point: osrm.Point{Lat: f.lat, Lng: f.lng}}, nil
}

func (f fakeOsrmClient) SnapTrace(points []osrm.Point, radiiM []float64) (osrm.SnapResult, error) {
	return f.SnapNearest(points[0])
}

func TestSpawnRiderUsesOsrmSnappedPositionWhenClientSucceeds(t *testing.T) {
	cfg := testConfig()
	cfg.OsrmClient = fakeOsrmClient{lat: 52.50, lng: 13.40}

	_, cell := SpawnRider(cfg, 1)
	lat, lng := cell.LatLng()
	require.InDelta(t, 52.50, lat, 0.01)
	require.InDelta(t, 13.40, lng, 0.01)
}

func TestSpawnRiderFallsBackWhenOsrmFails(t *testing.T) {
	cfg := testConfig()
	cfg.OsrmClient = fakeOsrmClient{err: osrm.ErrTimeout}

	require.NotPanics(t, func() {
		_, cell := SpawnRider(cfg, 1)
		require.True(t, cell.IsValid())
	})
}
