package spatial

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromLatLngRoundTripsNearCenter(t *testing.T) {
	c, err := FromLatLng(52.52, 13.405, DefaultResolution)
	require.NoError(t, err)
	require.True(t, c.IsValid())
	require.Equal(t, DefaultResolution, c.Resolution())

	lat, lng := c.LatLng()
	require.InDelta(t, 52.52, lat, 0.01)
	require.InDelta(t, 13.405, lng, 0.01)
}

func TestEqualAndZeroValueInvalid(t *testing.T) {
	var zero Cell
	require.False(t, zero.IsValid())

	a := MustFromLatLng(52.52, 13.405, DefaultResolution)
	b := MustFromLatLng(52.52, 13.405, DefaultResolution)
	require.True(t, a.Equal(b))
}

func TestGridDistanceZeroForSameCell(t *testing.T) {
	a := MustFromLatLng(52.52, 13.405, DefaultResolution)
	d, err := GridDistance(a, a)
	require.NoError(t, err)
	require.Equal(t, 0, d)
}

func TestGridDistancePositiveForDistinctCells(t *testing.T) {
	a := MustFromLatLng(52.52, 13.405, DefaultResolution)
	b := MustFromLatLng(52.55, 13.44, DefaultResolution)
	d, err := GridDistance(a, b)
	require.NoError(t, err)
	require.Greater(t, d, 0)
}

func TestGridDiskIncludesOriginAndNeighbors(t *testing.T) {
	origin := MustFromLatLng(52.52, 13.405, DefaultResolution)
	disk, err := GridDisk(origin, 1)
	require.NoError(t, err)

	found := false
	for _, c := range disk {
		if c.Equal(origin) {
			found = true
		}
	}
	require.True(t, found)
	require.GreaterOrEqual(t, len(disk), 7) // origin + its 6 neighbors at k=1 for a hexagonal cell
}

func TestGreatCircleKmZeroForSamePoint(t *testing.T) {
	require.InDelta(t, 0, HaversineKm(52.52, 13.405, 52.52, 13.405), 1e-9)
}

func TestGreatCircleKmMatchesKnownRoughDistance(t *testing.T) {
	// Berlin to Potsdam, roughly 27km apart.
	km := HaversineKm(52.52, 13.405, 52.3989, 13.0657)
	require.InDelta(t, 27, km, 5)
}
