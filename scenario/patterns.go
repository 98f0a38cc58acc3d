package scenario

import "github.com/dpapukchiev/ridehail-sim/config"

// Pattern is a named, reusable scenario preset: a function that mutates
// a baseline config.Config's field bundles to express a recognizable
// demand shape (spec SPEC_FULL.md patterns.rs mapping). main.go's
// -pattern flag looks a name up here and applies it on top of the config
// loaded via -config (or the built-in defaults).
type Pattern func(cfg config.Config) config.Config

// Patterns is the named preset registry.
var Patterns = map[string]Pattern{
	"morning-rush":  MorningRush,
	"airport-surge": AirportSurge,
}

// MorningRush skews demand well above supply and switches on the
// Berlin rush-hour traffic profile, reproducing the classic
// undersupplied-commute shape: riders queue for longer, surge engages
// more often, and repositioning has real work to do.
func MorningRush(cfg config.Config) config.Config {
	cfg.Scenario.NumRiders = cfg.Scenario.NumRiders * 3
	cfg.Scenario.InitialRiderCount = cfg.Scenario.InitialRiderCount * 2
	cfg.Traffic.Profile = "berlin"
	cfg.Pricing.SurgeEnabled = true
	cfg.Pricing.SurgeMaxMultiplier = 4.0
	cfg.Reposition.Enabled = true
	cfg.Reposition.HotspotWeight = 0.8
	return cfg
}

// AirportSurge concentrates both initial cohorts into a tight bounding
// box (standing in for a single terminal catchment) and maxes out the
// surge multiplier, the opposite stress shape from MorningRush: a
// geographically narrow demand spike rather than a city-wide one.
func AirportSurge(cfg config.Config) config.Config {
	latMid := (cfg.Scenario.LatMin + cfg.Scenario.LatMax) / 2
	lngMid := (cfg.Scenario.LngMin + cfg.Scenario.LngMax) / 2
	latSpan := (cfg.Scenario.LatMax - cfg.Scenario.LatMin) * 0.08
	lngSpan := (cfg.Scenario.LngMax - cfg.Scenario.LngMin) * 0.08
	cfg.Scenario.LatMin, cfg.Scenario.LatMax = latMid-latSpan, latMid+latSpan
	cfg.Scenario.LngMin, cfg.Scenario.LngMax = lngMid-lngSpan, lngMid+lngSpan

	cfg.Scenario.NumRiders = cfg.Scenario.NumRiders * 2
	cfg.Scenario.RequestWindowMs = cfg.Scenario.RequestWindowMs / 4
	cfg.Pricing.SurgeEnabled = true
	cfg.Pricing.SurgeRadiusK = 4
	cfg.Pricing.SurgeMaxMultiplier = 5.0
	return cfg
}
