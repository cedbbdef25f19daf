package core

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/citygridlabs/intersection-simulator/model"
)

// Scenario is a declarative starting setup loaded from JSON: config overrides
// plus initial runtime commands. Every field is optional; absent fields leave
// the defaults alone.
type Scenario struct {
	signal    *SignalTimings
	spawnRate *model.SpawnRate
	weights   map[model.Direction]float64
	maxPop    *int
	emergProb *float64
	paused    bool
}

// internal JSON shapes, unexported so the wire format can evolve freely.
type scenarioJSON struct {
	Signal           *signalJSON        `json:"signal"`
	SpawnRate        *model.SpawnRate   `json:"spawn_rate"`
	DirectionWeights map[string]float64 `json:"direction_weights"`
	MaxPopulation    *int               `json:"max_population"`
	EmergencyProb    *float64           `json:"emergency_probability"`
	StartPaused      bool               `json:"start_paused"`
}

type signalJSON struct {
	GreenSeconds  float64 `json:"green_seconds"`
	YellowSeconds float64 `json:"yellow_seconds"`
	AllRedSeconds float64 `json:"all_red_seconds"`
}

// LoadScenario reads a scenario from r. It fails only on JSON and structural
// errors; semantic validation happens when the scenario is applied, through
// the same paths the runtime commands use.
func LoadScenario(r io.Reader) (*Scenario, error) {
	var payload scenarioJSON
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("load scenario: decode failed: %w", err)
	}

	s := &Scenario{
		spawnRate: payload.SpawnRate,
		maxPop:    payload.MaxPopulation,
		emergProb: payload.EmergencyProb,
		paused:    payload.StartPaused,
	}
	if payload.Signal != nil {
		s.signal = &SignalTimings{
			GreenSeconds:  payload.Signal.GreenSeconds,
			YellowSeconds: payload.Signal.YellowSeconds,
			AllRedSeconds: payload.Signal.AllRedSeconds,
		}
	}
	if len(payload.DirectionWeights) > 0 {
		s.weights = make(map[model.Direction]float64, len(payload.DirectionWeights))
		for name, w := range payload.DirectionWeights {
			dir, err := model.ParseDirection(name)
			if err != nil {
				return nil, fmt.Errorf("load scenario: %w", err)
			}
			s.weights[dir] = w
		}
	}
	return s, nil
}

// ApplyToConfig folds the scenario's config overrides into cfg. The caller
// still validates the result through NewSimulation.
func (s *Scenario) ApplyToConfig(cfg Config) Config {
	if s.signal != nil {
		cfg.Signal = *s.signal
	}
	if s.spawnRate != nil {
		cfg.Spawn.DefaultRate = *s.spawnRate
	}
	if s.maxPop != nil {
		cfg.Spawn.MaxPopulation = *s.maxPop
	}
	if s.emergProb != nil {
		cfg.Spawn.EmergencyProbability = *s.emergProb
	}
	return cfg
}

// Apply issues the scenario's runtime commands against a constructed
// simulation.
func (s *Scenario) Apply(sim *Simulation) error {
	if len(s.weights) > 0 {
		if err := sim.SetDirectionWeights(s.weights); err != nil {
			return fmt.Errorf("apply scenario: %w", err)
		}
	}
	if s.paused {
		sim.SetPaused(true)
	}
	return nil
}
