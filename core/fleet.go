package core

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/citygridlabs/intersection-simulator/internal/logging"
	"github.com/citygridlabs/intersection-simulator/model"
)

// waitSpeedThreshold: a vehicle slower than this counts as stopped and
// accrues wait time.
const waitSpeedThreshold = 1.0

// VehicleFleet owns every vehicle in the simulation: stochastic spawning,
// per-tick kinematics, passage bookkeeping, and aggregate statistics. No
// other component holds a live vehicle reference; consumers get snapshots
// or samples.
type VehicleFleet struct {
	specs SpawnSettings
	kin   VehicleSpecs
	geo   Geometry

	rng *rand.Rand
	log logging.Logger
	rec MetricsRecorder

	vehicles []*model.Vehicle
	nextID   uint64

	spawnRate model.SpawnRate
	weights   [model.NumDirections]float64

	totalSpawned int
	totalPassed  int
	totalWait    float64
	maxWait      float64
}

// NewVehicleFleet constructs an empty fleet. The rand source is injected so
// runs are reproducible under a fixed seed.
func NewVehicleFleet(cfg Config, rng *rand.Rand, log logging.Logger, rec MetricsRecorder) *VehicleFleet {
	if log == nil {
		log = logging.Noop()
	}
	if rec == nil {
		rec = nopRecorder{}
	}
	f := &VehicleFleet{
		specs:     cfg.Spawn,
		kin:       cfg.Vehicle,
		geo:       cfg.Geometry,
		rng:       rng,
		log:       log,
		rec:       rec,
		spawnRate: cfg.Spawn.DefaultRate,
	}
	for i := range f.weights {
		f.weights[i] = 1
	}
	return f
}

// SetSpawnRate selects the traffic density level.
func (f *VehicleFleet) SetSpawnRate(rate model.SpawnRate) {
	rate.Probability() // panics on an out-of-domain value
	f.spawnRate = rate
	f.log.Info(context.Background(), "spawn rate changed", logging.String("rate", rate.String()))
}

// SpawnRate returns the current density level.
func (f *VehicleFleet) SpawnRate() model.SpawnRate { return f.spawnRate }

// SetDirectionWeights biases the spawn draw per approach. Weights must be
// non-negative and sum to a positive value.
func (f *VehicleFleet) SetDirectionWeights(weights map[model.Direction]float64) error {
	var next [model.NumDirections]float64
	var sum float64
	for d, w := range weights {
		if w < 0 {
			return fmt.Errorf("direction weight for %s must be non-negative, got %v", d, w)
		}
		next[d] = w
		sum += w
	}
	if sum <= 0 {
		return fmt.Errorf("direction weights must sum to a positive value")
	}
	f.weights = next
	return nil
}

// Update advances the fleet one tick: maybe spawn, update every vehicle
// against the clearance predicate, latch passage statistics, then remove
// vehicles that left the world. Removal happens in a single batch pass after
// all vehicles have moved.
func (f *VehicleFleet) Update(dt float64, isClear func(model.Direction) bool) {
	if dt <= 0 {
		return
	}
	f.maybeSpawn(dt)

	for _, v := range f.vehicles {
		f.updateVehicle(v, dt, isClear(v.Direction))

		if v.Passed && !v.Counted {
			v.Counted = true
			f.totalPassed++
			f.totalWait += v.WaitTime
			f.maxWait = math.Max(f.maxWait, v.WaitTime)
			f.rec.RecordPassage(v.WaitTime)
		}
	}

	f.cleanup()
	f.rec.SetPopulation(len(f.vehicles))
}

func (f *VehicleFleet) maybeSpawn(dt float64) {
	chance := f.spawnRate.Probability() * dt * f.specs.Scale
	if f.rng.Float64() >= chance || len(f.vehicles) >= f.specs.MaxPopulation {
		return
	}

	dir := f.weightedDirection()
	kind := model.KindOrdinary
	if f.rng.Float64() < f.specs.EmergencyProbability {
		kind = model.KindEmergency
	}

	x, y := f.geo.SpawnPosition(dir)
	f.nextID++
	v := &model.Vehicle{
		ID:          f.nextID,
		Direction:   dir,
		Kind:        kind,
		X:           x,
		Y:           y,
		TargetSpeed: f.kin.MaxSpeed,
	}
	f.vehicles = append(f.vehicles, v)
	f.totalSpawned++
	f.rec.RecordSpawn(kind)

	if kind == model.KindEmergency {
		f.log.Info(context.Background(), "emergency vehicle spawned",
			logging.String("direction", dir.String()),
			logging.Any("id", v.ID))
	}
}

func (f *VehicleFleet) weightedDirection() model.Direction {
	var total float64
	for _, w := range f.weights {
		total += w
	}
	r := f.rng.Float64() * total
	for _, d := range model.AllDirections() {
		r -= f.weights[d]
		if r < 0 {
			return d
		}
	}
	return model.West
}

// updateVehicle applies one tick of kinematics: wait accrual, target-speed
// selection against the signal, asymmetric accelerate/decelerate clamped so
// the speed never overshoots the target, position advance, and the one-way
// passage latch.
func (f *VehicleFleet) updateVehicle(v *model.Vehicle, dt float64, clear bool) {
	if v.Speed < waitSpeedThreshold && !v.Passed {
		v.WaitTime += dt
		v.Waiting = true
	} else {
		v.Waiting = false
	}

	if !clear && !v.Passed {
		dist := f.geo.DistanceToStopLine(v.Direction, v.X, v.Y)
		switch {
		case dist < f.kin.StopDistance:
			v.TargetSpeed = 0
		case dist < f.kin.BrakingDistance:
			ramp := math.Max(f.kin.MinRampDistance, dist)
			v.TargetSpeed = ramp / f.kin.BrakingDistance * f.kin.MaxSpeed
		default:
			v.TargetSpeed = f.kin.MaxSpeed
		}
	} else {
		v.TargetSpeed = f.kin.MaxSpeed
	}

	if v.TargetSpeed > v.Speed {
		v.Speed = math.Min(v.Speed+f.kin.Acceleration*dt, v.TargetSpeed)
	} else {
		v.Speed = math.Max(v.Speed-f.kin.Deceleration*dt, v.TargetSpeed)
	}

	f.move(v, dt)

	if !v.Passed && f.geo.HasPassed(v.Direction, v.X, v.Y) {
		v.Passed = true
	}
}

func (f *VehicleFleet) move(v *model.Vehicle, dt float64) {
	dist := v.Speed * dt
	switch v.Direction {
	case model.North:
		v.Y += dist
	case model.South:
		v.Y -= dist
	case model.East:
		v.X -= dist
	case model.West:
		v.X += dist
	default:
		panic(fmt.Sprintf("core: invalid direction %d", int(v.Direction)))
	}
}

func (f *VehicleFleet) cleanup() {
	kept := f.vehicles[:0]
	for _, v := range f.vehicles {
		if !f.geo.OutOfBounds(v.Direction, v.X, v.Y) {
			kept = append(kept, v)
		}
	}
	for i := len(kept); i < len(f.vehicles); i++ {
		f.vehicles[i] = nil
	}
	f.vehicles = kept
}

// Population is the current number of live vehicles.
func (f *VehicleFleet) Population() int { return len(f.vehicles) }

// Snapshot returns a read-only copy of every vehicle for presentation.
func (f *VehicleFleet) Snapshot() []model.VehicleSnapshot {
	out := make([]model.VehicleSnapshot, 0, len(f.vehicles))
	for _, v := range f.vehicles {
		out = append(out, model.VehicleSnapshot{
			ID:        v.ID,
			Direction: v.Direction,
			Kind:      v.Kind,
			X:         v.X,
			Y:         v.Y,
			Speed:     v.Speed,
			Waiting:   v.Waiting,
			Passed:    v.Passed,
		})
	}
	return out
}

// Sample returns the immutable per-vehicle view the congestion analyzer
// reads. The analyzer never touches live vehicles.
func (f *VehicleFleet) Sample() []model.VehicleSample {
	out := make([]model.VehicleSample, 0, len(f.vehicles))
	for _, v := range f.vehicles {
		out = append(out, model.VehicleSample{
			Direction: v.Direction,
			Kind:      v.Kind,
			WaitTime:  v.WaitTime,
			Passed:    v.Passed,
		})
	}
	return out
}

// Statistics returns throughput aggregates. Average wait is zero until a
// vehicle has passed.
func (f *VehicleFleet) Statistics() model.Statistics {
	avg := 0.0
	if f.totalPassed > 0 {
		avg = f.totalWait / float64(f.totalPassed)
	}
	return model.Statistics{
		TotalSpawned: f.totalSpawned,
		TotalPassed:  f.totalPassed,
		CurrentCount: len(f.vehicles),
		AverageWait:  avg,
		MaxWait:      f.maxWait,
	}
}

// Reset clears the vehicle collection and every counter.
func (f *VehicleFleet) Reset() {
	f.vehicles = nil
	f.totalSpawned = 0
	f.totalPassed = 0
	f.totalWait = 0
	f.maxWait = 0
	f.rec.SetPopulation(0)
}
