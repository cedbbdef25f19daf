package core

import "github.com/citygridlabs/intersection-simulator/model"

// MetricsRecorder receives simulation events so an observability layer can
// drive gauges and counters directly from the mutators. The core never
// depends on a concrete metrics implementation.
type MetricsRecorder interface {
	RecordSpawn(kind model.VehicleKind)
	RecordPassage(waitSeconds float64)
	SetPopulation(n int)
	SetQueueLengths(ns, ew int)
	RecordPhaseSwitch(to model.ApproachGroup, trigger string)
	RecordTickDuration(seconds float64)
}

// Phase-switch trigger labels.
const (
	TriggerPolicy    = "policy"
	TriggerEmergency = "emergency"
	TriggerCommand   = "command"
)

type nopRecorder struct{}

func (nopRecorder) RecordSpawn(model.VehicleKind)                 {}
func (nopRecorder) RecordPassage(float64)                         {}
func (nopRecorder) SetPopulation(int)                             {}
func (nopRecorder) SetQueueLengths(int, int)                      {}
func (nopRecorder) RecordPhaseSwitch(model.ApproachGroup, string) {}
func (nopRecorder) RecordTickDuration(float64)                    {}
