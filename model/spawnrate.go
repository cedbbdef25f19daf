package model

import "fmt"

// SpawnRate is a tagged traffic-density level. The numeric probability lives
// in a lookup table rather than in the enum values themselves, so policy
// calibration stays out of the type definition.
type SpawnRate int

const (
	SpawnVeryLow SpawnRate = iota
	SpawnLow
	SpawnMedium
	SpawnHigh
	SpawnVeryHigh
)

// spawnProbabilities maps each density level to the per-trial Bernoulli
// probability before dt and scale calibration are applied.
var spawnProbabilities = map[SpawnRate]float64{
	SpawnVeryLow:  0.003,
	SpawnLow:      0.01,
	SpawnMedium:   0.02,
	SpawnHigh:     0.04,
	SpawnVeryHigh: 0.06,
}

// Probability returns the base spawn probability for the level.
func (r SpawnRate) Probability() float64 {
	p, ok := spawnProbabilities[r]
	if !ok {
		panic(fmt.Sprintf("model: invalid spawn rate %d", int(r)))
	}
	return p
}

func (r SpawnRate) String() string {
	switch r {
	case SpawnVeryLow:
		return "very_low"
	case SpawnLow:
		return "low"
	case SpawnMedium:
		return "medium"
	case SpawnHigh:
		return "high"
	case SpawnVeryHigh:
		return "very_high"
	default:
		panic(fmt.Sprintf("model: invalid spawn rate %d", int(r)))
	}
}

// ParseSpawnRate converts a wire name into a SpawnRate.
func ParseSpawnRate(s string) (SpawnRate, error) {
	switch s {
	case "very_low":
		return SpawnVeryLow, nil
	case "low":
		return SpawnLow, nil
	case "medium":
		return SpawnMedium, nil
	case "high":
		return SpawnHigh, nil
	case "very_high":
		return SpawnVeryHigh, nil
	default:
		return 0, fmt.Errorf("unknown spawn rate %q", s)
	}
}
