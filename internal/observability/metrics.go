package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/citygridlabs/intersection-simulator/model"
)

// SimCollector bundles the Prometheus metrics for the intersection
// simulation and the HTTP control surface. It implements
// core.MetricsRecorder so the engine can drive the values directly from its
// mutators.
type SimCollector struct {
	gatherer prometheus.Gatherer

	VehiclesSpawned *prometheus.CounterVec
	VehiclesPassed  prometheus.Counter
	WaitTime        prometheus.Histogram
	Population      prometheus.Gauge
	QueueLength     *prometheus.GaugeVec
	PhaseSwitches   *prometheus.CounterVec
	TickDuration    prometheus.Histogram

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec
}

// NewSimCollector registers the simulation metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewSimCollector(reg prometheus.Registerer) (*SimCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	spawned := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_vehicles_spawned_total",
		Help: "Total vehicles spawned, labeled by kind.",
	}, []string{"kind"})
	spawned, err := registerCounterVec(reg, spawned, "sim_vehicles_spawned_total")
	if err != nil {
		return nil, err
	}

	passed, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_vehicles_passed_total",
		Help: "Total vehicles that cleared the intersection.",
	}), "sim_vehicles_passed_total")
	if err != nil {
		return nil, err
	}

	wait := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_vehicle_wait_seconds",
		Help:    "Wait time accumulated by each vehicle before clearing the intersection.",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 30, 60, 120},
	})
	wait, err = registerHistogram(reg, wait, "sim_vehicle_wait_seconds")
	if err != nil {
		return nil, err
	}

	population, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_vehicle_population",
		Help: "Current number of live vehicles.",
	}), "sim_vehicle_population")
	if err != nil {
		return nil, err
	}

	queue := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sim_queue_length",
		Help: "Waiting vehicles per approach group at the last analysis sample.",
	}, []string{"group"})
	queue, err = registerGaugeVec(reg, queue, "sim_queue_length")
	if err != nil {
		return nil, err
	}

	switches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_phase_switches_total",
		Help: "Signal phase switches, labeled by target group and trigger.",
	}, []string{"group", "trigger"})
	switches, err = registerCounterVec(reg, switches, "sim_phase_switches_total")
	if err != nil {
		return nil, err
	}

	tick := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_tick_duration_seconds",
		Help:    "Compute time of one simulation tick.",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
	})
	tick, err = registerHistogram(reg, tick, "sim_tick_duration_seconds")
	if err != nil {
		return nil, err
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Handled HTTP requests, labeled by path, method, and status code.",
	}, []string{"path", "method", "code"})
	requests, err = registerCounterVec(reg, requests, "http_requests_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"path", "method"})
	durations, err = registerHistogramVec(reg, durations, "http_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &SimCollector{
		gatherer:        gatherer,
		VehiclesSpawned: spawned,
		VehiclesPassed:  passed,
		WaitTime:        wait,
		Population:      population,
		QueueLength:     queue,
		PhaseSwitches:   switches,
		TickDuration:    tick,
		HTTPRequests:    requests,
		HTTPDurations:   durations,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *SimCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// ---- core.MetricsRecorder ----

func (c *SimCollector) RecordSpawn(kind model.VehicleKind) {
	if c == nil || c.VehiclesSpawned == nil {
		return
	}
	c.VehiclesSpawned.WithLabelValues(kind.String()).Inc()
}

func (c *SimCollector) RecordPassage(waitSeconds float64) {
	if c == nil {
		return
	}
	if c.VehiclesPassed != nil {
		c.VehiclesPassed.Inc()
	}
	if c.WaitTime != nil {
		c.WaitTime.Observe(waitSeconds)
	}
}

func (c *SimCollector) SetPopulation(n int) {
	if c == nil || c.Population == nil {
		return
	}
	c.Population.Set(float64(n))
}

func (c *SimCollector) SetQueueLengths(ns, ew int) {
	if c == nil || c.QueueLength == nil {
		return
	}
	c.QueueLength.WithLabelValues(model.GroupNS.String()).Set(float64(ns))
	c.QueueLength.WithLabelValues(model.GroupEW.String()).Set(float64(ew))
}

func (c *SimCollector) RecordPhaseSwitch(to model.ApproachGroup, trigger string) {
	if c == nil || c.PhaseSwitches == nil {
		return
	}
	c.PhaseSwitches.WithLabelValues(to.String(), trigger).Inc()
}

func (c *SimCollector) RecordTickDuration(seconds float64) {
	if c == nil || c.TickDuration == nil {
		return
	}
	c.TickDuration.Observe(seconds)
}

// RecordHTTP folds one handled request into the HTTP metrics.
func (c *SimCollector) RecordHTTP(path, method string, code int, seconds float64) {
	if c == nil {
		return
	}
	if c.HTTPRequests != nil {
		c.HTTPRequests.WithLabelValues(path, method, fmt.Sprintf("%d", code)).Inc()
	}
	if c.HTTPDurations != nil {
		c.HTTPDurations.WithLabelValues(path, method).Observe(seconds)
	}
}

// ---- register-or-reuse helpers ----

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounter(reg prometheus.Registerer, ctr prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(ctr); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return ctr, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
