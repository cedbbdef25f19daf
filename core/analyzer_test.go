package core

import (
	"math"
	"testing"

	"github.com/citygridlabs/intersection-simulator/model"
)

func sampleFunc(samples []model.VehicleSample) func() []model.VehicleSample {
	return func() []model.VehicleSample { return samples }
}

func TestAnalyzerSamplesOnCadence(t *testing.T) {
	a := NewCongestionAnalyzer(AnalyzerSettings{IntervalSeconds: 2, HistorySize: 10})

	called := false
	probe := func() []model.VehicleSample {
		called = true
		return nil
	}

	if a.Update(1.0, probe) {
		t.Errorf("no sample due after 1s of a 2s interval")
	}
	if called {
		t.Errorf("sample function must not run between intervals")
	}

	if !a.Update(1.0, probe) {
		t.Errorf("expected a sample once the interval elapsed")
	}
	if !called {
		t.Errorf("sample function must run when a sample is due")
	}
}

func TestAnalyzerSkipsPassedAndMovingVehicles(t *testing.T) {
	a := NewCongestionAnalyzer(AnalyzerSettings{IntervalSeconds: 1, HistorySize: 10})

	samples := []model.VehicleSample{
		{Direction: model.North, WaitTime: 10},
		{Direction: model.North, WaitTime: 5, Passed: true}, // already through
		{Direction: model.North, WaitTime: 0},               // still moving
		{Direction: model.East, WaitTime: 4},
	}
	a.Update(1, sampleFunc(samples))

	north := a.DirectionStats(model.North)
	if north.VehicleCount != 1 {
		t.Errorf("expected 1 waiting north vehicle, got %d", north.VehicleCount)
	}
	if north.MaxWait != 10 {
		t.Errorf("expected max wait 10, got %v", north.MaxWait)
	}
	east := a.DirectionStats(model.East)
	if east.VehicleCount != 1 {
		t.Errorf("expected 1 waiting east vehicle, got %d", east.VehicleCount)
	}
}

func TestAnalyzerRebuildsStatsEachSample(t *testing.T) {
	a := NewCongestionAnalyzer(AnalyzerSettings{IntervalSeconds: 1, HistorySize: 10})

	a.Update(1, sampleFunc([]model.VehicleSample{
		{Direction: model.North, WaitTime: 10},
	}))
	if a.DirectionStats(model.North).VehicleCount != 1 {
		t.Fatalf("first sample not recorded")
	}

	// Fleet drained; stats must drop to zero, not accumulate.
	a.Update(1, sampleFunc(nil))
	if a.DirectionStats(model.North).VehicleCount != 0 {
		t.Errorf("stats must be rebuilt wholesale, got %+v", a.DirectionStats(model.North))
	}
}

func TestPriorityScoreCalibration(t *testing.T) {
	var s ApproachStats
	s.Observe(8, false)
	s.Observe(2, false)

	// 2 vehicles * 2.0 + longest wait 8 * 0.5 = 8.
	if got := s.PriorityScore(); got != 8 {
		t.Errorf("expected score 8, got %v", got)
	}
}

func TestPriorityScoreCaps(t *testing.T) {
	var s ApproachStats
	for i := 0; i < 15; i++ {
		s.Observe(40, false)
	}

	// Count saturates at 20, wait at 15.
	if got := s.PriorityScore(); got != 35 {
		t.Errorf("expected capped score 35, got %v", got)
	}
}

func TestEmergencyDominatesScore(t *testing.T) {
	var ordinary ApproachStats
	for i := 0; i < 10; i++ {
		ordinary.Observe(30, false)
	}

	var emergency ApproachStats
	emergency.Observe(1, true)

	if emergency.PriorityScore() <= ordinary.PriorityScore() {
		t.Errorf("one emergency (%v) must outrank a saturated ordinary queue (%v)",
			emergency.PriorityScore(), ordinary.PriorityScore())
	}
}

func TestGroupAggregation(t *testing.T) {
	a := NewCongestionAnalyzer(AnalyzerSettings{IntervalSeconds: 1, HistorySize: 10})
	a.Update(1, sampleFunc([]model.VehicleSample{
		{Direction: model.North, WaitTime: 4},
		{Direction: model.South, WaitTime: 6},
		{Direction: model.East, WaitTime: 2},
	}))

	// North: 2 + 2 = 4; South: 2 + 3 = 5.
	if got := a.GroupScore(model.GroupNS); got != 9 {
		t.Errorf("expected NS score 9, got %v", got)
	}
	if got := a.GroupCount(model.GroupNS); got != 2 {
		t.Errorf("expected NS count 2, got %d", got)
	}
	if got := a.GroupCount(model.GroupEW); got != 1 {
		t.Errorf("expected EW count 1, got %d", got)
	}
}

func TestEmergencyDetection(t *testing.T) {
	a := NewCongestionAnalyzer(AnalyzerSettings{IntervalSeconds: 1, HistorySize: 10})

	if _, found := a.Emergency(); found {
		t.Errorf("no emergency before any sample")
	}

	a.Update(1, sampleFunc([]model.VehicleSample{
		{Direction: model.West, Kind: model.KindEmergency, WaitTime: 1},
	}))
	dir, found := a.Emergency()
	if !found || dir != model.West {
		t.Errorf("expected west emergency, got %v found=%v", dir, found)
	}

	// A passed emergency vehicle no longer counts.
	a.Update(1, sampleFunc([]model.VehicleSample{
		{Direction: model.West, Kind: model.KindEmergency, WaitTime: 1, Passed: true},
	}))
	if _, found := a.Emergency(); found {
		t.Errorf("passed emergency must not register")
	}
}

func TestEmptyFleetProducesZeroStats(t *testing.T) {
	a := NewCongestionAnalyzer(AnalyzerSettings{IntervalSeconds: 1, HistorySize: 10})
	a.Update(1, sampleFunc(nil))

	for _, d := range model.AllDirections() {
		s := a.DirectionStats(d)
		if s.VehicleCount != 0 || s.PriorityScore() != 0 || s.AverageWait() != 0 {
			t.Errorf("%s: expected zero stats on empty fleet, got %+v", d, s)
		}
	}
	if a.GroupScore(model.GroupNS) != 0 || a.GroupScore(model.GroupEW) != 0 {
		t.Errorf("group scores must be zero on empty fleet")
	}
}

func TestApproachSummary(t *testing.T) {
	a := NewCongestionAnalyzer(AnalyzerSettings{IntervalSeconds: 1, HistorySize: 10})
	a.Update(1, sampleFunc([]model.VehicleSample{
		{Direction: model.South, WaitTime: 3},
		{Direction: model.South, WaitTime: 9},
	}))

	summary := a.Summary()
	if len(summary) != model.NumDirections {
		t.Fatalf("expected %d entries, got %d", model.NumDirections, len(summary))
	}
	south := summary["south"]
	if south.Vehicles != 2 || south.MaxWait != 9 {
		t.Errorf("unexpected south summary: %+v", south)
	}
	if math.Abs(south.AverageWait-6) > 1e-9 {
		t.Errorf("expected average wait 6, got %v", south.AverageWait)
	}
}
