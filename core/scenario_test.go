package core

import (
	"strings"
	"testing"

	"github.com/citygridlabs/intersection-simulator/model"
)

func TestLoadScenarioOverrides(t *testing.T) {
	input := `{
		"signal": {"green_seconds": 40, "yellow_seconds": 4, "all_red_seconds": 3},
		"spawn_rate": "high",
		"direction_weights": {"north": 3, "south": 1, "east": 1, "west": 1},
		"max_population": 80,
		"emergency_probability": 0.01,
		"start_paused": true
	}`

	s, err := LoadScenario(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}

	cfg := s.ApplyToConfig(DefaultConfig())
	if cfg.Signal.GreenSeconds != 40 || cfg.Signal.YellowSeconds != 4 || cfg.Signal.AllRedSeconds != 3 {
		t.Errorf("signal overrides not applied: %+v", cfg.Signal)
	}
	if cfg.Spawn.DefaultRate != model.SpawnHigh {
		t.Errorf("expected spawn rate high, got %s", cfg.Spawn.DefaultRate)
	}
	if cfg.Spawn.MaxPopulation != 80 {
		t.Errorf("expected population cap 80, got %d", cfg.Spawn.MaxPopulation)
	}
	if cfg.Spawn.EmergencyProbability != 0.01 {
		t.Errorf("expected emergency probability 0.01, got %v", cfg.Spawn.EmergencyProbability)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("overridden config must still validate: %v", err)
	}

	sim, err := NewSimulation(cfg, WithRandSeed(1))
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}
	if err := s.Apply(sim); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !sim.Paused() {
		t.Errorf("scenario requested a paused start")
	}
}

func TestLoadScenarioEmptyLeavesDefaults(t *testing.T) {
	s, err := LoadScenario(strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}

	def := DefaultConfig()
	cfg := s.ApplyToConfig(def)
	if cfg != def {
		t.Errorf("empty scenario must not change the config")
	}
}

func TestLoadScenarioRejectsBadInput(t *testing.T) {
	cases := []string{
		`{"spawn_rate": "ludicrous"}`,
		`{"direction_weights": {"diagonal": 1}}`,
		`not json`,
	}
	for _, input := range cases {
		if _, err := LoadScenario(strings.NewReader(input)); err == nil {
			t.Errorf("expected error for %q", input)
		}
	}
}

func TestScenarioApplyRejectsBadWeights(t *testing.T) {
	s, err := LoadScenario(strings.NewReader(`{"direction_weights": {"north": -2}}`))
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	sim, err := NewSimulation(DefaultConfig(), WithRandSeed(1))
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}
	if err := s.Apply(sim); err == nil {
		t.Errorf("expected weight validation error at apply time")
	}
}
