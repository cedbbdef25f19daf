package core

import (
	"fmt"

	"github.com/citygridlabs/intersection-simulator/model"
)

// SignalTimings are the stage durations of the normal signal cycle.
type SignalTimings struct {
	GreenSeconds  float64
	YellowSeconds float64
	AllRedSeconds float64
}

// CycleSeconds is the full duration of one group's turn.
func (t SignalTimings) CycleSeconds() float64 {
	return t.GreenSeconds + t.YellowSeconds + t.AllRedSeconds
}

// VehicleSpecs are the kinematic constants shared by every vehicle.
// Acceleration and deceleration are deliberately asymmetric; braking is
// stronger than pulling away.
type VehicleSpecs struct {
	MaxSpeed     float64 // distance units per second
	Acceleration float64 // units/s^2 when speeding up
	Deceleration float64 // units/s^2 when slowing down

	// BrakingDistance is where a vehicle starts ramping down for a red
	// light; below StopDistance the target speed clamps to zero. The ramp
	// never uses a distance smaller than MinRampDistance so the target
	// does not collapse before the hard-stop zone.
	BrakingDistance float64
	StopDistance    float64
	MinRampDistance float64
}

// SpawnSettings calibrate stochastic vehicle arrival.
type SpawnSettings struct {
	// Scale multiplies rate*dt into the per-tick Bernoulli probability.
	Scale                float64
	MaxPopulation        int
	EmergencyProbability float64
	DefaultRate          model.SpawnRate
}

// AnalyzerSettings control the congestion sampling cadence.
type AnalyzerSettings struct {
	IntervalSeconds float64
	HistorySize     int
}

// PolicySettings hold the arbitration thresholds. The same constants feed
// both the policy and the switch gate; the two-layer check is intentional
// and prevents oscillation near the imbalance boundary.
type PolicySettings struct {
	// StarvationScore: switch away from an empty group once the other
	// side's score exceeds this.
	StarvationScore float64
	// ImbalanceRatio: switch when the other group's score exceeds the
	// current group's by this factor...
	ImbalanceRatio float64
	// ...but only after the phase has held for MinElapsedSeconds.
	MinElapsedSeconds float64
	// MinDwellSeconds is the gate's hard floor between non-emergency
	// switches.
	MinDwellSeconds float64
}

// Config is the immutable configuration for one simulation. Construct it
// once (usually from DefaultConfig), validate, and pass by value into the
// component constructors. There is no mutable global configuration.
type Config struct {
	Signal   SignalTimings
	Vehicle  VehicleSpecs
	Spawn    SpawnSettings
	Analyzer AnalyzerSettings
	Policy   PolicySettings
	Geometry Geometry
}

// DefaultConfig returns the reference calibration.
func DefaultConfig() Config {
	return Config{
		Signal: SignalTimings{
			GreenSeconds:  30,
			YellowSeconds: 3,
			AllRedSeconds: 2,
		},
		Vehicle: VehicleSpecs{
			MaxSpeed:        100,
			Acceleration:    80,
			Deceleration:    120,
			BrakingDistance: 150,
			StopDistance:    20,
			MinRampDistance: 10,
		},
		Spawn: SpawnSettings{
			Scale:                30,
			MaxPopulation:        50,
			EmergencyProbability: 0.001,
			DefaultRate:          model.SpawnMedium,
		},
		Analyzer: AnalyzerSettings{
			IntervalSeconds: 2.0,
			HistorySize:     10,
		},
		Policy: PolicySettings{
			StarvationScore:   10,
			ImbalanceRatio:    2.0,
			MinElapsedSeconds: 20,
			MinDwellSeconds:   15,
		},
		Geometry: DefaultGeometry(),
	}
}

// Validate checks the configuration for internal consistency. A failure here
// is fatal; the simulation must not run on an inconsistent config.
func (c Config) Validate() error {
	if c.Signal.GreenSeconds <= 0 || c.Signal.YellowSeconds <= 0 || c.Signal.AllRedSeconds <= 0 {
		return fmt.Errorf("signal timings must be positive, got green=%v yellow=%v all_red=%v",
			c.Signal.GreenSeconds, c.Signal.YellowSeconds, c.Signal.AllRedSeconds)
	}
	if c.Signal.GreenSeconds <= c.Signal.YellowSeconds+c.Signal.AllRedSeconds {
		return fmt.Errorf("green duration %v must exceed yellow+all_red %v",
			c.Signal.GreenSeconds, c.Signal.YellowSeconds+c.Signal.AllRedSeconds)
	}
	if c.Vehicle.MaxSpeed <= 0 {
		return fmt.Errorf("max speed must be positive, got %v", c.Vehicle.MaxSpeed)
	}
	if c.Vehicle.Acceleration <= 0 || c.Vehicle.Deceleration <= 0 {
		return fmt.Errorf("acceleration rates must be positive, got accel=%v decel=%v",
			c.Vehicle.Acceleration, c.Vehicle.Deceleration)
	}
	if c.Vehicle.StopDistance <= 0 || c.Vehicle.BrakingDistance <= c.Vehicle.StopDistance {
		return fmt.Errorf("braking distance %v must exceed stop distance %v (both positive)",
			c.Vehicle.BrakingDistance, c.Vehicle.StopDistance)
	}
	if c.Spawn.MaxPopulation <= 0 {
		return fmt.Errorf("population cap must be positive, got %d", c.Spawn.MaxPopulation)
	}
	if c.Spawn.Scale <= 0 {
		return fmt.Errorf("spawn scale must be positive, got %v", c.Spawn.Scale)
	}
	if c.Spawn.EmergencyProbability < 0 || c.Spawn.EmergencyProbability > 1 {
		return fmt.Errorf("emergency probability must be in [0,1], got %v", c.Spawn.EmergencyProbability)
	}
	if c.Analyzer.IntervalSeconds <= 0 {
		return fmt.Errorf("analysis interval must be positive, got %v", c.Analyzer.IntervalSeconds)
	}
	if c.Analyzer.HistorySize <= 0 {
		return fmt.Errorf("decision history size must be positive, got %d", c.Analyzer.HistorySize)
	}
	if c.Policy.ImbalanceRatio <= 1 {
		return fmt.Errorf("imbalance ratio must exceed 1, got %v", c.Policy.ImbalanceRatio)
	}
	if c.Policy.MinDwellSeconds < 0 || c.Policy.MinElapsedSeconds < 0 {
		return fmt.Errorf("policy dwell times must be non-negative, got dwell=%v elapsed=%v",
			c.Policy.MinDwellSeconds, c.Policy.MinElapsedSeconds)
	}
	if err := c.Geometry.Validate(); err != nil {
		return fmt.Errorf("geometry: %w", err)
	}
	return nil
}
