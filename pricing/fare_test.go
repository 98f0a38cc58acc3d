package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFareIsBaseFarePlusDistance(t *testing.T) {
	c := DefaultConfig()
	require.InDelta(t, 2.50+3*1.50, c.Fare(3), 1e-9)
}

func TestSurgeMultiplierNoSurgeWhenSupplyMeetsDemand(t *testing.T) {
	c := DefaultConfig()
	require.Equal(t, 1.0, c.SurgeMultiplier(5, 10))
	require.Equal(t, 1.0, c.SurgeMultiplier(5, 5))
}

func TestSurgeMultiplierScalesWithImbalance(t *testing.T) {
	c := DefaultConfig()
	m := c.SurgeMultiplier(15, 10)
	require.InDelta(t, 1.5, m, 1e-9)
}

func TestSurgeMultiplierCapsAtMax(t *testing.T) {
	c := DefaultConfig()
	m := c.SurgeMultiplier(1000, 1)
	require.Equal(t, c.SurgeMaxMultiplier, m)
}

func TestSurgeMultiplierMaxedWhenNoSupplyAtAll(t *testing.T) {
	c := DefaultConfig()
	require.Equal(t, c.SurgeMaxMultiplier, c.SurgeMultiplier(5, 0))
}

func TestSurgeMultiplierDisabledIsAlwaysOne(t *testing.T) {
	c := DefaultConfig()
	c.SurgeEnabled = false
	require.Equal(t, 1.0, c.SurgeMultiplier(100, 1))
}

func TestQuotedFareAppliesSurgeOnTopOfBaseFare(t *testing.T) {
	c := DefaultConfig()
	base := c.Fare(4)
	got := c.QuotedFare(4, 20, 10)
	require.InDelta(t, base*2.0, got, 1e-9)
}

func TestDriverEarningsShareDeductsCommission(t *testing.T) {
	c := DefaultConfig()
	require.InDelta(t, 10.0*0.8, c.DriverEarningsShare(10.0), 1e-9)
}
