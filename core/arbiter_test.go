package core

import (
	"testing"

	"github.com/citygridlabs/intersection-simulator/model"
)

func testPolicySettings() PolicySettings {
	return PolicySettings{
		StarvationScore:   10,
		ImbalanceRatio:    2.0,
		MinElapsedSeconds: 20,
		MinDwellSeconds:   15,
	}
}

func TestRecommendStarvation(t *testing.T) {
	p := NewArbitrationPolicy(testPolicySettings())

	dec := p.Recommend(PolicyInput{
		NSScore:      0,
		EWScore:      12,
		EWCount:      4,
		CurrentGroup: model.GroupNS,
		PhaseElapsed: 5,
		CycleSeconds: 35,
	})

	if !dec.ShouldSwitch || dec.RecommendedGroup != model.GroupEW {
		t.Errorf("expected starvation switch to EW, got %+v", dec)
	}
}

func TestRecommendStarvationThresholdExclusive(t *testing.T) {
	p := NewArbitrationPolicy(testPolicySettings())

	// Other score exactly at the threshold does not trigger.
	dec := p.Recommend(PolicyInput{
		NSScore:      0,
		EWScore:      10,
		CurrentGroup: model.GroupNS,
		PhaseElapsed: 5,
		CycleSeconds: 35,
	})
	if dec.ShouldSwitch {
		t.Errorf("score equal to starvation threshold must not switch, got %+v", dec)
	}
}

func TestRecommendImbalance(t *testing.T) {
	p := NewArbitrationPolicy(testPolicySettings())

	dec := p.Recommend(PolicyInput{
		NSScore:      10,
		EWScore:      21,
		NSCount:      3,
		EWCount:      8,
		CurrentGroup: model.GroupNS,
		PhaseElapsed: 25,
		CycleSeconds: 35,
	})

	if !dec.ShouldSwitch || dec.RecommendedGroup != model.GroupEW {
		t.Errorf("expected imbalance switch to EW, got %+v", dec)
	}
}

func TestRecommendImbalanceNeedsElapsed(t *testing.T) {
	p := NewArbitrationPolicy(testPolicySettings())

	// Same imbalance, but the phase is too young.
	dec := p.Recommend(PolicyInput{
		NSScore:      10,
		EWScore:      21,
		CurrentGroup: model.GroupNS,
		PhaseElapsed: 10,
		CycleSeconds: 35,
	})

	if dec.ShouldSwitch {
		t.Errorf("imbalance must wait for the minimum phase age, got %+v", dec)
	}
}

func TestRecommendImbalanceNeedsRatio(t *testing.T) {
	p := NewArbitrationPolicy(testPolicySettings())

	// 19 is less than double 10; conservatism holds.
	dec := p.Recommend(PolicyInput{
		NSScore:      10,
		EWScore:      19,
		CurrentGroup: model.GroupNS,
		PhaseElapsed: 25,
		CycleSeconds: 35,
	})

	if dec.ShouldSwitch {
		t.Errorf("sub-ratio imbalance must not switch, got %+v", dec)
	}
}

func TestRecommendEmergencyOutranksEverything(t *testing.T) {
	p := NewArbitrationPolicy(testPolicySettings())

	// Heavy EW congestion, but the emergency is on a NS approach.
	dec := p.Recommend(PolicyInput{
		NSScore:            2,
		EWScore:            35,
		CurrentGroup:       model.GroupEW,
		PhaseElapsed:       30,
		CycleSeconds:       35,
		HasEmergency:       true,
		EmergencyDirection: model.South,
	})

	if !dec.ShouldSwitch || dec.RecommendedGroup != model.GroupNS {
		t.Errorf("emergency must outrank congestion, got %+v", dec)
	}
	if !dec.HasEmergency {
		t.Errorf("decision must carry the emergency flag")
	}
}

func TestRecommendEmergencySameGroupStays(t *testing.T) {
	p := NewArbitrationPolicy(testPolicySettings())

	dec := p.Recommend(PolicyInput{
		CurrentGroup:       model.GroupNS,
		HasEmergency:       true,
		EmergencyDirection: model.North,
	})

	if dec.ShouldSwitch {
		t.Errorf("emergency on the current group needs no switch, got %+v", dec)
	}
}

func TestRecommendDefaultStay(t *testing.T) {
	p := NewArbitrationPolicy(testPolicySettings())

	dec := p.Recommend(PolicyInput{
		NSScore:      8,
		EWScore:      9,
		CurrentGroup: model.GroupNS,
		PhaseElapsed: 12,
		CycleSeconds: 35,
	})

	if dec.ShouldSwitch {
		t.Errorf("balanced traffic must not switch, got %+v", dec)
	}
	if dec.RecommendedGroup != model.GroupNS {
		t.Errorf("default decision must keep the current group")
	}
}

func TestGateRefusesWithinDwell(t *testing.T) {
	g := NewSwitchGate(testPolicySettings())
	sc := NewSignalController(testTimings())
	sc.Update(10) // under the 15s dwell floor

	dec := model.Decision{
		RecommendedGroup: model.GroupEW,
		CurrentGroup:     model.GroupNS,
		EWScore:          30,
		EWCount:          10,
		ShouldSwitch:     true,
	}

	if g.Apply(dec, sc) {
		t.Errorf("gate must refuse a switch inside the dwell window")
	}
	if sc.CurrentGroup() != model.GroupNS {
		t.Errorf("signal must be untouched by a refused switch")
	}
}

func TestGateCommitsAfterDwell(t *testing.T) {
	g := NewSwitchGate(testPolicySettings())
	sc := NewSignalController(testTimings())
	sc.Update(16)

	dec := model.Decision{
		RecommendedGroup: model.GroupEW,
		CurrentGroup:     model.GroupNS,
		NSScore:          5,
		EWScore:          30,
		NSCount:          2,
		EWCount:          10,
		ShouldSwitch:     true,
	}

	if !g.Apply(dec, sc) {
		t.Fatalf("gate must commit a still-valid switch after the dwell")
	}
	if sc.CurrentGroup() != model.GroupEW {
		t.Errorf("expected EW after commit, got %s", sc.CurrentGroup())
	}
	if sc.PhaseTimer() != 0 {
		t.Errorf("committed switch must restart the cycle")
	}
}

func TestGateRecheckRejectsStaleDecision(t *testing.T) {
	g := NewSwitchGate(testPolicySettings())
	sc := NewSignalController(testTimings())
	sc.Update(16)

	// ShouldSwitch is set, but the carried scores no longer justify it.
	dec := model.Decision{
		RecommendedGroup: model.GroupEW,
		CurrentGroup:     model.GroupNS,
		NSScore:          10,
		EWScore:          11,
		NSCount:          4,
		EWCount:          4,
		ShouldSwitch:     true,
	}

	if g.Apply(dec, sc) {
		t.Errorf("gate must re-validate and reject a stale switch")
	}
}

func TestGateEmergencyBypassesDwell(t *testing.T) {
	g := NewSwitchGate(testPolicySettings())
	sc := NewSignalController(testTimings())
	sc.Update(1) // deep inside the dwell window

	dec := model.Decision{
		RecommendedGroup:   model.GroupEW,
		CurrentGroup:       model.GroupNS,
		HasEmergency:       true,
		EmergencyDirection: model.East,
		ShouldSwitch:       true,
	}

	if !g.Apply(dec, sc) {
		t.Fatalf("emergency switch must bypass the dwell gate")
	}
	if sc.CurrentGroup() != model.GroupEW {
		t.Errorf("expected EW after emergency commit, got %s", sc.CurrentGroup())
	}
}

func TestGateIgnoresStayDecision(t *testing.T) {
	g := NewSwitchGate(testPolicySettings())
	sc := NewSignalController(testTimings())
	sc.Update(20)

	if g.Apply(model.Decision{ShouldSwitch: false}, sc) {
		t.Errorf("a stay decision must never touch the signal")
	}
}
