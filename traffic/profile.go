// Package traffic models time-of-day and density-driven speed
// attenuation for moving drivers (spec §6 TrafficProfile, §4.6 MoveStep).
package traffic

import "math/rand"

// Profile holds 24 hourly speed-multiplier factors plus an optional
// per-zone override, matching spec §6: "hourly factors [24] multiplying
// speed; composite profile_factor · density_factor(cells_around) ·
// zone_override?".
type Profile struct {
	Name        string
	HourFactors [24]float64
	// ZoneOverride, when non-nil, replaces the hourly factor for a named
	// zone key (callers pass a cell's string form or a coarser zone id).
	ZoneOverride map[string]float64
}

// None is the identity profile: factor 1.0 at every hour.
func None() Profile {
	p := Profile{Name: "none"}
	for i := range p.HourFactors {
		p.HourFactors[i] = 1.0
	}
	return p
}

// Berlin is the rush-hour attenuation profile named in spec §6, with
// verification value factor_at(hour=7)=0.45 and factor_at(hour=17)=0.45.
func Berlin() Profile {
	p := Profile{Name: "berlin"}
	for i := range p.HourFactors {
		p.HourFactors[i] = 1.0
	}
	p.HourFactors[6] = 0.65
	p.HourFactors[7] = 0.45
	p.HourFactors[8] = 0.55
	p.HourFactors[16] = 0.60
	p.HourFactors[17] = 0.45
	p.HourFactors[18] = 0.55
	p.HourFactors[19] = 0.70
	return p
}

// FactorAt returns the hourly multiplier for a timestamp expressed as
// milliseconds since local midnight, optionally overridden per zone.
func (p Profile) FactorAt(msSinceMidnight uint64, zone string) float64 {
	hour := int((msSinceMidnight / (3600 * 1000)) % 24)
	f := p.HourFactors[hour]
	if f <= 0 {
		f = 1.0
	}
	if p.ZoneOverride != nil {
		if ov, ok := p.ZoneOverride[zone]; ok && ov > 0 {
			return ov
		}
	}
	return f
}

// DensityFactor attenuates speed further based on how many vehicles
// currently occupy the same cell (spec §4.6 MoveStep): 1.0 for <=2,
// 1.0 for 3, 0.85 for 4-5, 0.70 for 6-9, 0.55 for >=10.
func DensityFactor(countInCell int) float64 {
	switch {
	case countInCell <= 3:
		return 1.0
	case countInCell <= 5:
		return 0.85
	case countInCell <= 9:
		return 0.70
	default:
		return 0.55
	}
}

// SpeedSample draws a per-segment km/h speed: base kmh attenuated by the
// hourly profile and cell density, with a small normal jitter factor
// (1 + 0.05·N(0,1), clamped to [0.7, 1.3]) so consecutive segments aren't perfectly uniform — the original
// source's speed.rs models per-segment variance rather than a flat
// multiply (see SPEC_FULL.md Supplemented Features). The jitter uses the
// caller-supplied deterministic rng, preserving the seeded-per-decision
// discipline (spec §9).
func SpeedSample(rng *rand.Rand, baseKmh float64, profile Profile, msSinceMidnight uint64, zone string, countInCell int) float64 {
	f := profile.FactorAt(msSinceMidnight, zone) * DensityFactor(countInCell)
	jitter := 1.0 + 0.05*rng.NormFloat64()
	if jitter < 0.7 {
		jitter = 0.7
	}
	if jitter > 1.3 {
		jitter = 1.3
	}
	v := baseKmh * f * jitter
	if v < 1 {
		v = 1
	}
	return v
}
