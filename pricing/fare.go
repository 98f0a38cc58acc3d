// Package pricing computes quoted fares, including the surge multiplier
// (spec §4.6 ShowQuote).
package pricing

// Config holds the pricing knobs from spec §6.
type Config struct {
	BaseFare          float64 // default 2.50
	PerKmRate         float64 // default 1.50
	CommissionRate    float64
	SurgeEnabled      bool
	SurgeRadiusK      int
	SurgeMaxMultiplier float64
}

// DefaultConfig returns the spec-documented defaults.
func DefaultConfig() Config {
	return Config{
		BaseFare:           2.50,
		PerKmRate:          1.50,
		CommissionRate:     0.20,
		SurgeEnabled:       true,
		SurgeRadiusK:       2,
		SurgeMaxMultiplier: 3.0,
	}
}

// Fare computes the un-surged fare for a pickup->dropoff distance.
func (c Config) Fare(distanceKm float64) float64 {
	return c.BaseFare + distanceKm*c.PerKmRate
}

// SurgeMultiplier implements spec §4.6's ShowQuote surge rule:
//
//	demand > supply > 0: multiplier = min(1 + (demand-supply)/supply, max)
//	demand > supply = 0: multiplier = max
//	otherwise:           multiplier = 1
func (c Config) SurgeMultiplier(demand, supply int) float64 {
	if !c.SurgeEnabled || c.SurgeRadiusK <= 0 {
		return 1.0
	}
	if demand > supply && supply > 0 {
		m := 1.0 + float64(demand-supply)/float64(supply)
		if m > c.SurgeMaxMultiplier {
			m = c.SurgeMaxMultiplier
		}
		return m
	}
	if demand > supply && supply == 0 {
		return c.SurgeMaxMultiplier
	}
	return 1.0
}

// QuotedFare applies the surge multiplier to the base fare for a trip.
func (c Config) QuotedFare(distanceKm float64, demand, supply int) float64 {
	return c.Fare(distanceKm) * c.SurgeMultiplier(demand, supply)
}

// DriverEarningsShare computes the driver's take after commission.
func (c Config) DriverEarningsShare(fare float64) float64 {
	return fare * (1 - c.CommissionRate)
}
