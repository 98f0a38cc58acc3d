// Command ridehail-sim drives one scenario run from the CLI, either
// draining it head-down to a completion report or (with -serve) hosting
// it behind the live-telemetry server — grounded on the teacher's
// backend/main.go flag set (period/time_scale/arrival_factor), adapted
// from bus-route flags to the ridehail scenario's own config groups.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dpapukchiev/ridehail-sim/config"
	"github.com/dpapukchiev/ridehail-sim/osrm"
	"github.com/dpapukchiev/ridehail-sim/scenario"
	"github.com/dpapukchiev/ridehail-sim/server"
)

func main() {
	configPath := flag.String("config", "", "path to a scenario YAML config (omitted: built-in defaults)")
	pattern := flag.String("pattern", "", "named scenario pattern to apply on top of -config (morning-rush, airport-surge)")
	seedOverride := flag.Int64("seed", 0, "override scenario.seed (0 = use config's value)")
	maxSteps := flag.Int("max-steps", 0, "cap on events dispatched before forcing a stop (0 = unbounded, drive to completion or SimulationEndTimeMs)")
	serve := flag.Bool("serve", false, "host the scenario behind the live-telemetry HTTP/websocket server instead of draining it head-down")
	addr := flag.String("addr", "", "listen address for -serve (defaults to config's server.addr)")
	showProfile := flag.Bool("profile", false, "print per-reactor wall-clock cost after a headless run")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	if *pattern != "" {
		p, ok := scenario.Patterns[*pattern]
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown pattern %q (known: morning-rush, airport-surge)\n", *pattern)
			os.Exit(1)
		}
		cfg = p(cfg)
	}
	if *seedOverride != 0 {
		cfg.Scenario.Seed = *seedOverride
	}

	var osrmClient osrm.Client
	if cfg.Osrm.Enabled {
		osrmClient = osrm.NewHTTPClient(cfg.Osrm.BaseURL)
	}

	if *serve {
		runServer(cfg, osrmClient, *addr)
		return
	}
	runHeadless(cfg, osrmClient, *maxSteps, *showProfile)
}

func runHeadless(cfg config.Config, osrmClient osrm.Client, maxSteps int, showProfile bool) {
	sc, err := scenario.Build(cfg, osrmClient)
	if err != nil {
		fmt.Fprintln(os.Stderr, "scenario:", err)
		os.Exit(1)
	}

	var steps int
	if cfg.Scenario.SimulationEndTimeMs > 0 {
		endMs := sc.Clock.EpochMs() + cfg.Scenario.SimulationEndTimeMs
		for maxSteps <= 0 || steps < maxSteps {
			next, ok := sc.Clock.PeekNext()
			if !ok || next.TimestampMs >= endMs || !sc.RunNextEvent() {
				break
			}
			steps++
		}
	} else {
		steps = sc.RunUntilEmpty(maxSteps)
	}

	sc.Log.WithField("events_dispatched", steps).Info("run complete")
	fmt.Printf("run %s: %d events, %d completed trips, %d riders spawned, %d drivers spawned\n",
		sc.RunID, steps, len(sc.World.CompletedTrips), sc.World.RidersSpawned, sc.World.DriversSpawned)

	if showProfile && sc.World.Profiler != nil {
		fmt.Println("reactor cost (total, count, avg, max):")
		for _, stat := range sc.World.Profiler.Report() {
			fmt.Printf("  %-28s %10s %6d %10s %10s\n", stat.Name, stat.Total, stat.Count, stat.Average, stat.Max)
		}
	}
}

func runServer(cfg config.Config, osrmClient osrm.Client, addrOverride string) {
	srv, err := server.New(cfg, osrmClient)
	if err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}

	addr := cfg.Server.Addr
	if addrOverride != "" {
		addr = addrOverride
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := srv.Run(ctx, addr); err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
}
