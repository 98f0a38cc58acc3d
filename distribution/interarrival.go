package distribution

import (
	"math"
	"math/rand"
)

// InterArrival samples the delay in milliseconds until the next arrival
// given the current simulation time.
type InterArrival interface {
	NextDelayMs(rng *rand.Rand, nowMs uint64) uint64
}

// Uniform draws delays uniformly from [MinMs, MaxMs).
type Uniform struct {
	MinMs, MaxMs uint64
}

func (u Uniform) NextDelayMs(rng *rand.Rand, _ uint64) uint64 {
	if u.MaxMs <= u.MinMs {
		return u.MinMs
	}
	span := u.MaxMs - u.MinMs
	return u.MinMs + uint64(rng.Int63n(int64(span)))
}

// TimeOfDay modulates a base mean inter-arrival time by an hourly
// weight profile (24 entries, hour 0..23 local to EpochMs), then draws
// an exponential inter-arrival delay with that adjusted mean — the same
// "arrival rate varies by hour" idea the teacher's TimePeriodMultiplier
// table encodes, generalized from six coarse periods to 24 hourly
// weights so it can share code with traffic.Profile.
type TimeOfDay struct {
	BaseMeanMs  float64
	HourWeights [24]float64
	EpochMs     uint64
}

func (t TimeOfDay) NextDelayMs(rng *rand.Rand, nowMs uint64) uint64 {
	hour := hourOfDay(nowMs, t.EpochMs)
	w := t.HourWeights[hour]
	if w <= 0 {
		w = 1
	}
	mean := t.BaseMeanMs / w
	if mean <= 0 {
		mean = 1
	}
	// Exponential(1/mean) via inverse-CDF sampling.
	u := rng.Float64()
	for u <= 0 {
		u = rng.Float64()
	}
	delay := -mean * math.Log(u)
	if delay < 0 {
		delay = 0
	}
	return uint64(delay)
}

func hourOfDay(nowMs, epochMs uint64) int {
	elapsed := nowMs
	if elapsed < epochMs {
		elapsed = epochMs
	}
	msIntoDay := (elapsed - epochMs) % (24 * 3600 * 1000)
	return int(msIntoDay / (3600 * 1000))
}
