// Package config loads and validates scenario configuration from YAML
// layered over built-in defaults — grounded on
// terow-rist-stunning-train/internal/general/config's layered-config
// shape and pedeveaux-kafka-ride-sharing's godotenv usage.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Scenario mirrors spec §6's Scenario configuration group.
type Scenario struct {
	NumRiders            int     `yaml:"num_riders"`
	NumDrivers           int     `yaml:"num_drivers"`
	InitialRiderCount    int     `yaml:"initial_rider_count"`
	InitialDriverCount   int     `yaml:"initial_driver_count"`
	Seed                 int64   `yaml:"seed"`
	MatchRadius          int     `yaml:"match_radius"`
	RequestWindowMs      uint64  `yaml:"request_window_ms"`
	DriverSpreadMs       uint64  `yaml:"driver_spread_ms"`
	SimulationEndTimeMs  uint64  `yaml:"simulation_end_time_ms"`
	LatMin               float64 `yaml:"lat_min"`
	LatMax               float64 `yaml:"lat_max"`
	LngMin               float64 `yaml:"lng_min"`
	LngMax               float64 `yaml:"lng_max"`
	MinTripCells         int     `yaml:"min_trip_cells"`
	MaxTripCells         int     `yaml:"max_trip_cells"`
	EpochMs              uint64  `yaml:"epoch_ms"`
	DailyEarningsTarget  float64 `yaml:"daily_earnings_target"`
	FatigueThresholdMs   uint64  `yaml:"fatigue_threshold_ms"`
}

// Matching mirrors spec §6's Matching configuration group.
type Matching struct {
	Algorithm          string  `yaml:"algorithm"` // "simple" | "cost_based" | "hungarian"
	BatchEnabled       bool    `yaml:"batch_enabled"`
	BatchIntervalSecs  uint64  `yaml:"batch_interval_secs"`
	EtaWeight          float64 `yaml:"eta_weight"`
	HotspotWeight      float64 `yaml:"hotspot_weight"`
}

// RiderQuote mirrors spec §6's Rider quote configuration group.
type RiderQuote struct {
	MaxQuoteRejections  int     `yaml:"max_quote_rejections"`
	ReQuoteDelaySecs    uint64  `yaml:"re_quote_delay_secs"`
	AcceptProbability   float64 `yaml:"accept_probability"`
	Seed                int64   `yaml:"seed"`
	MaxWillingnessToPay float64 `yaml:"max_willingness_to_pay"`
	MaxAcceptableEtaMs  uint64  `yaml:"max_acceptable_eta_ms"`
}

// RiderCancel mirrors spec §6's Rider cancel configuration group.
type RiderCancel struct {
	MinWaitSecs uint64 `yaml:"min_wait_secs"`
	MaxWaitSecs uint64 `yaml:"max_wait_secs"`
	Seed        int64  `yaml:"seed"`
}

// DriverDecision mirrors spec §6's Driver decision configuration group.
type DriverDecision struct {
	BaseAcceptanceScore float64 `yaml:"base_acceptance_score"`
	Seed                int64   `yaml:"seed"`
}

// Reposition mirrors spec §6's Repositioning configuration group.
type Reposition struct {
	Enabled                 bool    `yaml:"enabled"`
	MinimumZoneReserve      int     `yaml:"minimum_zone_reserve"`
	HotspotWeight           float64 `yaml:"hotspot_weight"`
	MaxDriversMovedPerCycle int     `yaml:"max_drivers_moved_per_cycle"`
	MaxRepositionDistanceKm float64 `yaml:"max_reposition_distance_km"`
	CooldownSecs            uint64  `yaml:"cooldown_secs"`
	ControlIntervalSecs     uint64  `yaml:"control_interval_secs"`
}

// Pricing mirrors spec §6's Pricing configuration group.
type Pricing struct {
	BaseFare           float64 `yaml:"base_fare"`
	PerKmRate          float64 `yaml:"per_km_rate"`
	CommissionRate     float64 `yaml:"commission_rate"`
	SurgeEnabled       bool    `yaml:"surge_enabled"`
	SurgeRadiusK       int     `yaml:"surge_radius_k"`
	SurgeMaxMultiplier float64 `yaml:"surge_max_multiplier"`
}

// Traffic mirrors spec §6's Traffic configuration group.
type Traffic struct {
	Profile string `yaml:"profile"` // "none" | "berlin"
}

// Telemetry configures the rolling snapshot buffer (spec §4.7).
type Telemetry struct {
	IntervalMs   uint64 `yaml:"interval_ms"`
	MaxSnapshots int    `yaml:"max_snapshots"`
}

// Server configures the optional live-telemetry HTTP/websocket server.
type Server struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`

	// PlaybackSpeed is the initial simulated-seconds-per-real-second
	// ratio the live server's playback loop advances at; server.Server
	// keeps it in its own speed control, separate from
	// clock.Clock.SimSecondsPerRealSecond.
	// 0 means unthrottled (dispatch as fast as possible).
	PlaybackSpeed float64 `yaml:"playback_speed"`
}

// Osrm configures the optional road-snap client.
type Osrm struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`
}

// Logging configures the ambient logger.
type Logging struct {
	Level string `yaml:"level"` // "debug" | "info" | "warn" | "error"
	Env   string `yaml:"env"`   // "production" | "development"
}

// Config is the top-level scenario configuration loaded from YAML.
type Config struct {
	Scenario       Scenario       `yaml:"scenario"`
	Matching       Matching       `yaml:"matching"`
	RiderQuote     RiderQuote     `yaml:"rider_quote"`
	RiderCancel    RiderCancel    `yaml:"rider_cancel"`
	DriverDecision DriverDecision `yaml:"driver_decision"`
	Reposition     Reposition     `yaml:"reposition"`
	Pricing        Pricing        `yaml:"pricing"`
	Traffic        Traffic        `yaml:"traffic"`
	Telemetry      Telemetry      `yaml:"telemetry"`
	Server         Server         `yaml:"server"`
	Osrm           Osrm           `yaml:"osrm"`
	Logging        Logging        `yaml:"logging"`
}

// Default returns the scenario's documented defaults (spec §6).
func Default() Config {
	return Config{
		Scenario: Scenario{
			NumRiders: 200, NumDrivers: 50,
			InitialRiderCount: 20, InitialDriverCount: 30,
			Seed: 42, MatchRadius: 3,
			RequestWindowMs: 3_600_000, DriverSpreadMs: 600_000,
			SimulationEndTimeMs: 4 * 3_600_000,
			LatMin: 52.45, LatMax: 52.58, LngMin: 13.28, LngMax: 13.52,
			MinTripCells: 2, MaxTripCells: 20,
			DailyEarningsTarget: 150, FatigueThresholdMs: 8 * 3_600_000,
		},
		Matching: Matching{
			Algorithm: "cost_based", BatchEnabled: false, BatchIntervalSecs: 15,
			EtaWeight: 1.0, HotspotWeight: 0.5,
		},
		RiderQuote: RiderQuote{
			MaxQuoteRejections: 3, ReQuoteDelaySecs: 10,
			AcceptProbability: 0.8, MaxWillingnessToPay: 80, MaxAcceptableEtaMs: 10 * 60 * 1000,
		},
		RiderCancel:    RiderCancel{MinWaitSecs: 60, MaxWaitSecs: 600},
		DriverDecision: DriverDecision{BaseAcceptanceScore: 1.0},
		Reposition: Reposition{
			Enabled: true, MinimumZoneReserve: 1, HotspotWeight: 0.5,
			MaxDriversMovedPerCycle: 10, MaxRepositionDistanceKm: 8.0,
			CooldownSecs: 120, ControlIntervalSecs: 60,
		},
		Pricing: Pricing{
			BaseFare: 2.50, PerKmRate: 1.50, CommissionRate: 0.20,
			SurgeEnabled: true, SurgeRadiusK: 2, SurgeMaxMultiplier: 3.0,
		},
		Traffic:   Traffic{Profile: "none"},
		Telemetry: Telemetry{IntervalMs: 60_000, MaxSnapshots: 500},
		Server:    Server{Enabled: false, Addr: ":8090", PlaybackSpeed: 60.0},
		Osrm:      Osrm{Enabled: false},
		Logging:   Logging{Level: "info", Env: "development"},
	}
}

// Load first loads a `.env` file into the process environment if one is
// present (godotenv.Load returns an error when the file is missing,
// which Load ignores — `.env` is always optional), then reads a YAML
// config file, keeping Default() for any fields the file omits by
// unmarshaling on top of the defaults. No Config field is read from the
// environment.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects configuration the scenario builder cannot recover
// from (spec §7 "Invalid configuration... surfaced by the scenario
// builder as an early failure; the core cannot recover").
func (c Config) Validate() error {
	s := c.Scenario
	if s.LatMin >= s.LatMax {
		return fmt.Errorf("config: scenario.lat_min must be < lat_max")
	}
	if s.LngMin >= s.LngMax {
		return fmt.Errorf("config: scenario.lng_min must be < lng_max")
	}
	if s.NumRiders < 0 || s.NumDrivers < 0 {
		return fmt.Errorf("config: scenario.num_riders/num_drivers must be >= 0")
	}
	if s.MatchRadius < 0 {
		return fmt.Errorf("config: scenario.match_radius must be >= 0")
	}
	if s.MinTripCells <= 0 || s.MaxTripCells < s.MinTripCells {
		return fmt.Errorf("config: scenario.min_trip_cells/max_trip_cells misconfigured")
	}
	if c.Pricing.BaseFare < 0 || c.Pricing.PerKmRate < 0 {
		return fmt.Errorf("config: pricing.base_fare/per_km_rate must be >= 0")
	}
	if c.Pricing.CommissionRate < 0 || c.Pricing.CommissionRate > 1 {
		return fmt.Errorf("config: pricing.commission_rate must be in [0,1]")
	}
	switch c.Matching.Algorithm {
	case "simple", "cost_based", "hungarian":
	default:
		return fmt.Errorf("config: matching.algorithm %q is not one of simple|cost_based|hungarian", c.Matching.Algorithm)
	}
	if c.Telemetry.MaxSnapshots < 0 {
		return fmt.Errorf("config: telemetry.max_snapshots must be >= 0")
	}
	return nil
}
