// Package spawner produces rider and driver entities on schedule,
// sampling positions and (for riders) destinations from the scenario's
// bounding box (spec §2 component 5, §4.6 SpawnRider/SpawnDriver).
package spawner

import (
	"math/rand"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/dpapukchiev/ridehail-sim/distribution"
	"github.com/dpapukchiev/ridehail-sim/model"
	"github.com/dpapukchiev/ridehail-sim/osrm"
	"github.com/dpapukchiev/ridehail-sim/spatial"
	"github.com/dpapukchiev/ridehail-sim/telemetry"
)

// BoundingBox bounds the lat/lng rectangle riders and drivers spawn
// within (spec §6 Scenario config: lat_min/max, lng_min/max).
type BoundingBox struct {
	LatMin, LatMax float64
	LngMin, LngMax float64
}

func (b BoundingBox) sample(rng *rand.Rand) (lat, lng float64) {
	lat = b.LatMin + rng.Float64()*(b.LatMax-b.LatMin)
	lng = b.LngMin + rng.Float64()*(b.LngMax-b.LngMin)
	return lat, lng
}

// Config holds the knobs the rider and driver spawners share (spec §6).
type Config struct {
	Box            BoundingBox
	Resolution     int
	MinTripCells   int
	MaxTripCells   int
	Seed           int64
	OsrmClient     osrm.Client // nil disables road-snap (spec §6 "failure falls back to the unsnapped position")
	OsrmTelemetry  *telemetry.OsrmSpawnTelemetry
}

// SpawnRider samples a position and a destination cell at grid-distance
// between MinTripCells and MaxTripCells from it, then builds the
// Rider component and attaches a gofakeit display name — grounded on
// the teacher's newPassenger (sim/simulator.go), generalized from a
// fixed origin/destination stop pair to a freely sampled hex cell and
// its disk neighborhood.
func SpawnRider(cfg Config, entityIndex uint64) (model.Rider, model.Cell) {
	rng := distribution.RNGFor(cfg.Seed, entityIndex, "spawn_rider")
	cell := samplePosition(cfg, rng)

	destCell := sampleDestination(cfg, rng, cell)

	fake := gofakeit.New(uint64(distribution.DeriveSeed(cfg.Seed, entityIndex, "rider_name")))

	return model.Rider{
		DisplayName: fake.Name(),
		Destination: &destCell,
	}, cell
}

// SpawnDriver samples a starting position and builds the Driver,
// Earnings and Fatigue components for a newly entering driver.
func SpawnDriver(cfg Config, entityIndex uint64, nowMs uint64, dailyTarget float64, fatigueThresholdMs uint64) (model.Driver, model.Cell, model.Earnings, model.Fatigue) {
	rng := distribution.RNGFor(cfg.Seed, entityIndex, "spawn_driver")
	cell := samplePosition(cfg, rng)

	fake := gofakeit.New(uint64(distribution.DeriveSeed(cfg.Seed, entityIndex, "driver_name")))

	driver := model.Driver{DisplayName: fake.Name()}
	earnings := model.Earnings{DailyEarningsTarget: dailyTarget, SessionStartMs: nowMs}
	fatigue := model.Fatigue{FatigueThresholdMs: fatigueThresholdMs}
	return driver, cell, earnings, fatigue
}

func samplePosition(cfg Config, rng *rand.Rand) model.Cell {
	lat, lng := cfg.Box.sample(rng)
	if cfg.OsrmClient != nil {
		if snapped, err := cfg.OsrmClient.SnapNearest(osrm.Point{Lat: lat, Lng: lng}); err == nil {
			lat, lng = snapped.Point.Lat, snapped.Point.Lng
		} else if cfg.OsrmTelemetry != nil {
			cfg.OsrmTelemetry.RecordNearestFailure(err)
		}
	}
	cell, err := spatial.FromLatLng(lat, lng, resolutionOrDefault(cfg.Resolution))
	if err != nil {
		// cfg validation should have caught an invalid lat/lng box; fall
		// back to the box center rather than propagating — spawners
		// never fail a scenario run over a single bad draw.
		cell, _ = spatial.FromLatLng((cfg.Box.LatMin+cfg.Box.LatMax)/2, (cfg.Box.LngMin+cfg.Box.LngMax)/2, resolutionOrDefault(cfg.Resolution))
	}
	return cell
}

func sampleDestination(cfg Config, rng *rand.Rand, origin model.Cell) model.Cell {
	minK := cfg.MinTripCells
	maxK := cfg.MaxTripCells
	if maxK < minK {
		maxK = minK
	}
	if maxK <= 0 {
		maxK = 1
	}
	k := minK
	if maxK > minK {
		k = minK + rng.Intn(maxK-minK+1)
	}
	ring, err := spatial.GridDisk(origin, k)
	if err != nil || len(ring) == 0 {
		return origin
	}
	// GridDisk includes the origin and every closer cell; filter to the
	// outer boundary so destinations aren't biased toward k=0.
	var boundary []model.Cell
	for _, c := range ring {
		dist, derr := spatial.GridDistance(origin, c)
		if derr == nil && dist == k {
			boundary = append(boundary, c)
		}
	}
	if len(boundary) == 0 {
		return ring[rng.Intn(len(ring))]
	}
	return boundary[rng.Intn(len(boundary))]
}

func resolutionOrDefault(res int) int {
	if res <= 0 {
		return spatial.DefaultResolution
	}
	return res
}
