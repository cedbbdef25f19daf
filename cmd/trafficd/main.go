package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/citygridlabs/intersection-simulator/core"
	"github.com/citygridlabs/intersection-simulator/internal/logging"
	"github.com/citygridlabs/intersection-simulator/internal/observability"
	"github.com/citygridlabs/intersection-simulator/internal/web"
	"github.com/citygridlabs/intersection-simulator/model"
	"github.com/citygridlabs/intersection-simulator/timectrl"
)

func main() {
	httpAddr := flag.String("http-addr", ":8080", "HTTP address for the API and WebSocket stream")
	metricsAddr := flag.String("metrics-addr", ":9090", "HTTP address for Prometheus /metrics")
	tick := flag.Duration("tick", 50*time.Millisecond, "tick interval")
	seed := flag.Int64("seed", 0, "random seed (0 uses a time-based seed)")
	spawnRate := flag.String("spawn-rate", "medium", "initial traffic density")
	scenarioPath := flag.String("scenario", "", "path to a JSON scenario file")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	collector, err := observability.NewSimCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
		os.Exit(1)
	}

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}

	rate, err := model.ParseSpawnRate(*spawnRate)
	if err != nil {
		log.Error(ctx, "invalid -spawn-rate", logging.String("error", err.Error()))
		os.Exit(2)
	}

	cfg := core.DefaultConfig()
	cfg.Spawn.DefaultRate = rate

	scenario := loadScenario(ctx, log, *scenarioPath)
	if scenario != nil {
		cfg = scenario.ApplyToConfig(cfg)
	}

	opts := []core.Option{
		core.WithLogger(log),
		core.WithMetricsRecorder(collector),
	}
	if *seed != 0 {
		opts = append(opts, core.WithRandSeed(*seed))
	}
	sim, err := core.NewSimulation(cfg, opts...)
	if err != nil {
		log.Error(ctx, "invalid configuration", logging.String("error", err.Error()))
		os.Exit(2)
	}
	if scenario != nil {
		if err := scenario.Apply(sim); err != nil {
			log.Error(ctx, "invalid scenario", logging.String("error", err.Error()))
			os.Exit(2)
		}
	}

	// One lock serializes the tick loop against the HTTP surface.
	var mu sync.Mutex

	tc := timectrl.NewTimeController(time.Now().UTC(), *tick, timectrl.RealTime)
	tc.AddListener(func(_ time.Time, dt float64) {
		mu.Lock()
		sim.Tick(dt)
		mu.Unlock()
	})

	apiSrv := &http.Server{
		Addr:    *httpAddr,
		Handler: web.New(sim, &mu, log, collector).Routes(),
	}
	go func() {
		log.Info(ctx, "serving traffic API", logging.String("addr", *httpAddr))
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "API server exited", logging.String("error", err.Error()))
		}
	}()

	metricsSrv := serveMetrics(*metricsAddr, collector, log)

	log.Info(ctx, "starting tick loop",
		logging.String("tick", tick.String()),
		logging.String("spawn_rate", rate.String()))
	done := tc.Start(0)

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	<-stopCtx.Done()

	log.Info(ctx, "shutting down")
	tc.Stop()
	<-done

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = apiSrv.Shutdown(shutdownCtx)
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)
}

func loadScenario(ctx context.Context, log logging.Logger, path string) *core.Scenario {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		log.Error(ctx, "open scenario", logging.String("path", path), logging.String("error", err.Error()))
		os.Exit(2)
	}
	defer f.Close()

	s, err := core.LoadScenario(f)
	if err != nil {
		log.Error(ctx, "load scenario", logging.String("path", path), logging.String("error", err.Error()))
		os.Exit(2)
	}
	log.Info(ctx, "loaded scenario", logging.String("path", path))
	return s
}

func serveMetrics(addr string, collector *observability.SimCollector, log logging.Logger) *http.Server {
	if collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.String("error", err.Error()))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
