package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/citygridlabs/intersection-simulator/core"
	"github.com/citygridlabs/intersection-simulator/internal/logging"
	"github.com/citygridlabs/intersection-simulator/model"
	"github.com/citygridlabs/intersection-simulator/timectrl"
)

func main() {
	duration := flag.Duration("duration", 60*time.Second, "total simulated duration")
	tick := flag.Duration("tick", 100*time.Millisecond, "tick interval")
	accelerated := flag.Bool("accelerated", true, "run in accelerated mode (vs real-time)")
	seed := flag.Int64("seed", 0, "random seed (0 uses a time-based seed)")
	spawnRate := flag.String("spawn-rate", "medium", "traffic density: very_low, low, medium, high, very_high")
	report := flag.Duration("report", 10*time.Second, "simulated time between summary reports")
	scenarioPath := flag.String("scenario", "", "path to a JSON scenario file")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	rate, err := model.ParseSpawnRate(*spawnRate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -spawn-rate: %v\n", err)
		os.Exit(2)
	}

	cfg := core.DefaultConfig()
	cfg.Spawn.DefaultRate = rate

	scenario := loadScenario(*scenarioPath)
	if scenario != nil {
		cfg = scenario.ApplyToConfig(cfg)
	}

	opts := []core.Option{core.WithLogger(log)}
	if *seed != 0 {
		opts = append(opts, core.WithRandSeed(*seed))
	}
	sim, err := core.NewSimulation(cfg, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}
	if scenario != nil {
		if err := scenario.Apply(sim); err != nil {
			fmt.Fprintf(os.Stderr, "invalid scenario: %v\n", err)
			os.Exit(2)
		}
	}

	mode := timectrl.RealTime
	if *accelerated {
		mode = timectrl.Accelerated
	}
	start := time.Now().UTC()
	tc := timectrl.NewTimeController(start, *tick, mode)

	var mu sync.Mutex
	var sinceReport time.Duration

	tc.AddListener(func(simTime time.Time, dt float64) {
		mu.Lock()
		defer mu.Unlock()

		sim.Tick(dt)

		sinceReport += time.Duration(dt * float64(time.Second))
		if *report > 0 && sinceReport >= *report {
			sinceReport = 0
			printSummary(simTime.Sub(start), sim)
		}
	})

	// Interrupt stops the controller early; the run loop drains normally.
	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-stopCtx.Done()
		tc.Stop()
	}()

	log.Info(ctx, "starting simulation",
		logging.String("duration", duration.String()),
		logging.String("tick", tick.String()),
		logging.String("spawn_rate", rate.String()),
		logging.Any("accelerated", *accelerated))

	<-tc.Start(*duration)

	mu.Lock()
	printSummary(*duration, sim)
	stats := sim.Statistics()
	perf := sim.Perf()
	mu.Unlock()

	fmt.Printf("Simulation complete: %d spawned, %d passed, avg wait %.1fs, max wait %.1fs\n",
		stats.TotalSpawned, stats.TotalPassed, stats.AverageWait, stats.MaxWait)
	fmt.Printf("Tick compute: avg %.3fms, max %.3fms over %d ticks\n",
		perf.AverageSeconds()*1000, perf.MaxSeconds()*1000, perf.Count())
}

func loadScenario(path string) *core.Scenario {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open scenario: %v\n", err)
		os.Exit(2)
	}
	defer f.Close()

	s, err := core.LoadScenario(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	return s
}

func printSummary(elapsed time.Duration, sim *core.Simulation) {
	state := sim.PhaseState()
	stats := sim.Statistics()
	dec := sim.LastDecision()

	fmt.Printf("[%7s] phase=%s/%s timer=%4.1fs vehicles=%d passed=%d avg_wait=%.1fs\n",
		elapsed.Truncate(time.Second),
		state.Group, state.Stage, state.Timer,
		stats.CurrentCount, stats.TotalPassed, stats.AverageWait)
	fmt.Printf("          decision: %s (NS %.1f/%d vs EW %.1f/%d)\n",
		dec.Reason, dec.NSScore, dec.NSCount, dec.EWScore, dec.EWCount)

	for dir, summary := range sim.TrafficSummary() {
		if summary.Vehicles == 0 {
			continue
		}
		fmt.Printf("          %-5s count=%2d avg_wait=%5.1fs max_wait=%5.1fs emergencies=%d\n",
			dir, summary.Vehicles, summary.AverageWait, summary.MaxWait, summary.Emergencies)
	}
}
