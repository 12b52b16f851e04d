// cmd/sectorsim/main.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// sectorsim runs a fixed-timestep air traffic simulation, either drawn on
// the terminal or headless for a fixed amount of simulated time.
package main

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	av "github.com/mmp/sectorsim/aviation"
	"github.com/mmp/sectorsim/log"
	"github.com/mmp/sectorsim/rand"
	"github.com/mmp/sectorsim/scope"
	"github.com/mmp/sectorsim/sim"
	"github.com/mmp/sectorsim/util"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/sync/errgroup"
)

//go:embed exeter.yaml
var defaultScenario []byte

var (
	cpuprofile     = flag.String("cpuprofile", "", "write CPU profile to file")
	memprofile     = flag.String("memprofile", "", "write memory profile to this file")
	logLevel       = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir         = flag.String("logdir", "", "log file directory")
	scenarioFile   = flag.String("scenario", "", "filename of YAML or JSON scenario definition (default: built-in scenario)")
	lintScenario   = flag.Bool("lint", false, "check the validity of the scenario and exit")
	headless       = flag.Bool("headless", false, "run without the terminal display")
	duration       = flag.Duration("duration", 0, "when headless, amount of simulated time to run as fast as possible (0: run in real time until interrupted)")
	fixedStep      = flag.Duration("step", sim.DefaultFixedStep, "simulation fixed time step")
	seed           = flag.Int64("seed", 0, "random seed (0: seed from the current time)")
	spawnRate      = flag.Float64("spawnrate", 60, "average number of tracks spawned per simulated hour")
	spawnRadius    = flag.Float64("spawnradius", 40, "distance from the origin at which tracks are spawned, in nm")
	metricsAddress = flag.String("metrics", "", "address to serve Prometheus metrics on, e.g. localhost:9464")
	recordFile     = flag.String("record", "", "write zstd-compressed snapshots to this file")
	dumpWorld      = flag.Bool("dump", false, "when headless, print the final world state")
	traceFile      = flag.String("trace", "", "write OpenTelemetry spans for each advance and step to this file")
)

func loadScenario() (*av.Scenario, error) {
	if *scenarioFile != "" {
		return av.LoadScenarioFile(*scenarioFile)
	}
	return av.LoadScenario(bytes.NewReader(defaultScenario), av.FormatYAML)
}

func main() {
	flag.Parse()

	lg := log.New(*headless, *logLevel, *logDir)

	if err := run(lg); err != nil {
		lg.Errorf("%v", err)
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(lg *log.Logger) error {
	profiler, err := util.CreateProfiler(*cpuprofile, *memprofile)
	if err != nil {
		return err
	}
	defer func() {
		if err := profiler.Cleanup(); err != nil {
			lg.Errorf("profiler: %v", err)
		}
	}()

	scenario, err := loadScenario()
	if err != nil {
		return err
	}
	if *lintScenario {
		fmt.Printf("%s: %d sectors, %d tracks, ok\n", scenario.Name, len(scenario.Sectors.Sectors),
			len(scenario.Tracks))
		return nil
	}
	lg.Info("loaded scenario", "name", scenario.Name, "sectors", len(scenario.Sectors.Sectors),
		"tracks", len(scenario.Tracks))

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	lg.Infof("random seed %d", *seed)

	var metrics *sim.Metrics
	if *metricsAddress != "" {
		if metrics, err = sim.NewMetrics(nil); err != nil {
			return err
		}
	}

	origin := scenario.LocalOrigin()
	spawner, err := sim.NewSpawner(sim.SpawnConfig{
		Origin:             origin,
		Radius:             *spawnRadius * sim.NMToMeters,
		HeadingJitter:      30,
		MinSpeedKt:         160,
		MaxSpeedKt:         320,
		MinAltitudeFt:      3000,
		MaxAltitudeFt:      20000,
		FlightPlanFraction: 0.85,
		Airlines:           scenario.Airlines,
		AircraftTypes:      scenario.AircraftTypes,
	})
	if err != nil {
		return err
	}

	if *traceFile != "" {
		shutdown, err := initTracing(context.Background(), *traceFile, lg)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	step := sim.KinematicStep(sim.KinematicConfig{
		Origin:       origin,
		OwnedSectors: scenario.OwnedSectors,
		ExitDistance: 1.5 * *spawnRadius * sim.NMToMeters,
	})
	runner, err := sim.NewRunner(sim.RunnerConfig{
		World: sim.World{
			Tracks:  scenario.Tracks,
			Sectors: &scenario.Sectors,
		},
		Step:      sim.WithSpawner(step, spawner, *spawnRate),
		Random:    rand.MakeSeeded(*seed).Float64,
		FixedStep: *fixedStep,
		Logger:    lg,
		Metrics:   metrics,
	})
	if err != nil {
		return err
	}

	if *recordFile != "" {
		f, err := os.Create(*recordFile)
		if err != nil {
			return err
		}
		defer f.Close()

		rec, err := sim.NewRecorder(f, lg)
		if err != nil {
			return err
		}
		sub := runner.OnSnapshot(rec)
		defer func() {
			sub.Unsubscribe()
			if err := rec.Close(); err != nil {
				lg.Errorf("%s: %v", *recordFile, err)
			}
			lg.Infof("%s: recorded %d snapshots", *recordFile, rec.Count())
		}()
	}

	if *headless && *duration > 0 {
		return runBatch(runner, lg)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	if metrics != nil {
		srv := &http.Server{Addr: *metricsAddress, Handler: metrics.Handler()}
		g.Go(func() error {
			lg.Infof("serving metrics on %s", *metricsAddress)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			return srv.Shutdown(context.Background())
		})
	}

	g.Go(func() error { return runner.RunTimer(ctx) })

	if *headless {
		g.Go(func() error { return logProgress(ctx, runner, lg) })
	} else {
		screen, err := tcell.NewScreen()
		if err != nil {
			return err
		}
		if err := screen.Init(); err != nil {
			return err
		}
		defer screen.Fini()

		sc, err := scope.New(screen, scope.Config{
			Origin:       origin,
			OwnedSectors: scenario.OwnedSectors,
			FixedStep:    *fixedStep,
			OnSpawn:      func() { runner.Post(spawner.Spawn) },
			Logger:       lg,
		})
		if err != nil {
			return err
		}
		sc.AddMessage(fmt.Sprintf("%s: seed %d", scenario.Name, *seed))
		sub := runner.OnSnapshot(sc)
		defer sub.Unsubscribe()

		// Returning ErrQuit cancels the group's context, which stops
		// everything else.
		g.Go(func() error { return sc.Run(ctx) })
	}

	if err := g.Wait(); err != nil && !errors.Is(err, scope.ErrQuit) {
		return err
	}
	return nil
}

// runBatch advances the simulation by the requested duration as quickly
// as possible and reports the final state.
func runBatch(runner *sim.Runner, lg *log.Logger) error {
	start := time.Now()
	steps := runner.AdvanceBy(*duration)
	elapsed := time.Since(start)

	w := runner.World()
	cs, err := w.Checksum()
	if err != nil {
		return err
	}
	lg.Info("batch run complete", "steps", steps, "elapsed", elapsed, "checksum", cs)

	fmt.Printf("simulated %s in %d steps (%s)\n", w.Timestamp, steps, elapsed.Round(time.Millisecond))
	fmt.Printf("tracks: %d\n", len(w.Tracks))
	counts := w.CountByStatus()
	for _, status := range util.SortedMapKeys(counts) {
		fmt.Printf("  %-16s %d\n", status, counts[status])
	}
	fmt.Printf("checksum: %016x\n", cs)

	if *dumpWorld {
		fmt.Println(runner.Dump())
	}
	return nil
}

// logProgress logs a summary of the world every simulated minute until
// ctx is cancelled.
func logProgress(ctx context.Context, runner *sim.Runner, lg *log.Logger) error {
	ch, sub := runner.SubscribeChan(16)
	defer sub.Unsubscribe()

	var last time.Duration
	for {
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-ch:
			if !ok {
				return nil
			}
			if snap.Timestamp-last < time.Minute {
				continue
			}
			last = snap.Timestamp
			counts := snap.World.CountByStatus()
			lg.Info("progress", "tick", snap.Tick, "time", snap.Timestamp, "tracks", len(snap.World.Tracks),
				"inbound", counts[av.TrackStatusInbound], "intruders", counts[av.TrackStatusIntruder])
		}
	}
}
