package core

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/citygridlabs/intersection-simulator/internal/logging"
	"github.com/citygridlabs/intersection-simulator/model"
)

// Simulation wires the signal controller, fleet, analyzer, and arbitration
// into a single tick-driven engine. One Tick call advances everything in a
// fixed order: signal first, then the fleet against the now-current
// clearance state, then (on its own cadence) the analyzer, and finally the
// policy plus switch gate, whose mutations take effect from the next tick.
//
// The simulation is not safe for concurrent use; the host owns the clock and
// serializes Tick against queries and commands.
type Simulation struct {
	cfg Config
	log logging.Logger
	rec MetricsRecorder

	signal   *SignalController
	fleet    *VehicleFleet
	analyzer *CongestionAnalyzer
	policy   ArbitrationPolicy
	gate     SwitchGate

	lastDecision model.Decision
	history      []model.Decision
	paused       bool
	perf         TickStats
}

type simOptions struct {
	log logging.Logger
	rec MetricsRecorder
	rng *rand.Rand
}

// Option customizes a Simulation at construction time.
type Option func(*simOptions)

// WithLogger attaches a structured logger; the default drops all logs.
func WithLogger(l logging.Logger) Option {
	return func(o *simOptions) { o.log = l }
}

// WithMetricsRecorder attaches an observability sink.
func WithMetricsRecorder(r MetricsRecorder) Option {
	return func(o *simOptions) { o.rec = r }
}

// WithRand injects the random source for spawning; fixed seeds give
// reproducible runs.
func WithRand(rng *rand.Rand) Option {
	return func(o *simOptions) { o.rng = rng }
}

// WithRandSeed is shorthand for WithRand over a seeded source.
func WithRandSeed(seed int64) Option {
	return WithRand(rand.New(rand.NewSource(seed)))
}

// NewSimulation validates the config and assembles the engine. An invalid
// config is fatal to construction; the simulation never runs on one.
func NewSimulation(cfg Config, opts ...Option) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}

	o := simOptions{
		log: logging.Noop(),
		rec: nopRecorder{},
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Simulation{
		cfg:      cfg,
		log:      o.log,
		rec:      o.rec,
		signal:   NewSignalController(cfg.Signal),
		fleet:    NewVehicleFleet(cfg, o.rng, o.log, o.rec),
		analyzer: NewCongestionAnalyzer(cfg.Analyzer),
		policy:   NewArbitrationPolicy(cfg.Policy),
		gate:     NewSwitchGate(cfg.Policy),
	}
	s.lastDecision = s.startupDecision()
	return s, nil
}

func (s *Simulation) startupDecision() model.Decision {
	return model.Decision{
		RecommendedGroup: model.GroupNS,
		CurrentGroup:     model.GroupNS,
		Reason:           "starting up",
		Action:           "collecting traffic data",
	}
}

// Tick advances the whole simulation by dt seconds. Paused simulations and
// non-positive dt are no-ops.
func (s *Simulation) Tick(dt float64) {
	if s.paused || dt <= 0 {
		return
	}
	started := time.Now()

	s.signal.Update(dt)
	s.fleet.Update(dt, s.signal.IsClear)

	if s.analyzer.Update(dt, s.fleet.Sample) {
		s.arbitrate()
	}

	elapsed := time.Since(started).Seconds()
	s.perf.Observe(elapsed)
	s.rec.RecordTickDuration(elapsed)
}

// arbitrate runs the policy over the fresh sample and lets the gate decide
// whether the recommendation actually reaches the signal.
func (s *Simulation) arbitrate() {
	emergencyDir, hasEmergency := s.analyzer.Emergency()

	in := PolicyInput{
		NSScore:            s.analyzer.GroupScore(model.GroupNS),
		EWScore:            s.analyzer.GroupScore(model.GroupEW),
		NSCount:            s.analyzer.GroupCount(model.GroupNS),
		EWCount:            s.analyzer.GroupCount(model.GroupEW),
		CurrentGroup:       s.signal.CurrentGroup(),
		PhaseElapsed:       s.signal.PhaseTimer(),
		CycleSeconds:       s.cfg.Signal.CycleSeconds(),
		HasEmergency:       hasEmergency,
		EmergencyDirection: emergencyDir,
	}
	dec := s.policy.Recommend(in)

	if s.gate.Apply(dec, s.signal) {
		trigger := TriggerPolicy
		if dec.HasEmergency {
			trigger = TriggerEmergency
		}
		s.rec.RecordPhaseSwitch(dec.RecommendedGroup, trigger)
		s.log.Info(context.Background(), "phase switched",
			logging.String("to", dec.RecommendedGroup.String()),
			logging.String("trigger", trigger),
			logging.String("reason", dec.Reason))
	}

	s.lastDecision = dec
	s.history = append(s.history, dec)
	if len(s.history) > s.cfg.Analyzer.HistorySize {
		s.history = s.history[1:]
	}
	s.rec.SetQueueLengths(in.NSCount, in.EWCount)
}

// ---- Queries ----

// CurrentGroup returns the group holding right of way.
func (s *Simulation) CurrentGroup() model.ApproachGroup { return s.signal.CurrentGroup() }

// CurrentStage returns the active stage.
func (s *Simulation) CurrentStage() model.Stage { return s.signal.CurrentStage() }

// PhaseTimer is the seconds since the last group switch.
func (s *Simulation) PhaseTimer() float64 { return s.signal.PhaseTimer() }

// TimeUntilChange is the seconds until the next scheduled group flip.
func (s *Simulation) TimeUntilChange() float64 { return s.signal.TimeUntilChange() }

// IsClear reports whether the approach may enter the intersection.
func (s *Simulation) IsClear(d model.Direction) bool { return s.signal.IsClear(d) }

// PhaseState returns the full signal snapshot.
func (s *Simulation) PhaseState() model.PhaseState { return s.signal.State() }

// FleetSnapshot returns a read-only copy of every vehicle.
func (s *Simulation) FleetSnapshot() []model.VehicleSnapshot { return s.fleet.Snapshot() }

// Statistics returns fleet throughput aggregates.
func (s *Simulation) Statistics() model.Statistics { return s.fleet.Statistics() }

// LastDecision returns the most recent arbitration decision.
func (s *Simulation) LastDecision() model.Decision { return s.lastDecision }

// DecisionHistory returns the recent decisions, oldest first.
func (s *Simulation) DecisionHistory() []model.Decision {
	out := make([]model.Decision, len(s.history))
	copy(out, s.history)
	return out
}

// TrafficSummary returns the analyzer's per-approach view.
func (s *Simulation) TrafficSummary() map[string]ApproachSummary { return s.analyzer.Summary() }

// SpawnRate returns the fleet's current density level.
func (s *Simulation) SpawnRate() model.SpawnRate { return s.fleet.SpawnRate() }

// Paused reports whether ticking is suspended.
func (s *Simulation) Paused() bool { return s.paused }

// Perf returns the rolling tick-duration statistics.
func (s *Simulation) Perf() *TickStats { return &s.perf }

// ---- Commands ----

// ForcePhase grants right of way to the group immediately.
func (s *Simulation) ForcePhase(g model.ApproachGroup) {
	s.signal.ForcePhase(g)
	s.rec.RecordPhaseSwitch(g, TriggerCommand)
	s.log.Info(context.Background(), "phase forced", logging.String("group", g.String()))
}

// CyclePhase flips to the opposite group immediately.
func (s *Simulation) CyclePhase() {
	s.ForcePhase(s.signal.CurrentGroup().Opposite())
}

// SetEmergency activates the emergency override for the approach.
func (s *Simulation) SetEmergency(d model.Direction) {
	s.signal.SetEmergency(d)
	s.log.Info(context.Background(), "emergency override set", logging.String("direction", d.String()))
}

// ClearEmergency deactivates the emergency override.
func (s *Simulation) ClearEmergency() {
	s.signal.ClearEmergency()
	s.log.Info(context.Background(), "emergency override cleared")
}

// SetSpawnRate selects the traffic density level.
func (s *Simulation) SetSpawnRate(rate model.SpawnRate) { s.fleet.SetSpawnRate(rate) }

// SetDirectionWeights biases spawning per approach.
func (s *Simulation) SetDirectionWeights(w map[model.Direction]float64) error {
	return s.fleet.SetDirectionWeights(w)
}

// SetPaused suspends or resumes ticking. A paused simulation holds every
// subsystem exactly where it is.
func (s *Simulation) SetPaused(paused bool) { s.paused = paused }

// Reset restores the entire simulation to its initial state in one step:
// empty fleet, signal at group NS stage GREEN timer zero, cleared analyzer
// and decision history. No partially-reset state is observable between
// ticks.
func (s *Simulation) Reset() {
	s.fleet.Reset()
	s.signal.Reset()
	s.analyzer.Reset()
	s.lastDecision = s.startupDecision()
	s.history = nil
	s.paused = false
	s.log.Info(context.Background(), "simulation reset")
}
