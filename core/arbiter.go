package core

import (
	"fmt"
	"math"

	"github.com/citygridlabs/intersection-simulator/model"
)

// PolicyInput carries everything the arbitration policy needs for one
// decision. Scores and counts come from the analyzer's last sample; phase
// timing comes live from the signal controller.
type PolicyInput struct {
	NSScore float64
	EWScore float64
	NSCount int
	EWCount int

	CurrentGroup model.ApproachGroup
	PhaseElapsed float64
	CycleSeconds float64

	HasEmergency       bool
	EmergencyDirection model.Direction
}

func (in PolicyInput) score(g model.ApproachGroup) float64 {
	switch g {
	case model.GroupNS:
		return in.NSScore
	case model.GroupEW:
		return in.EWScore
	default:
		panic(fmt.Sprintf("core: invalid approach group %d", int(g)))
	}
}

func (in PolicyInput) count(g model.ApproachGroup) int {
	switch g {
	case model.GroupNS:
		return in.NSCount
	case model.GroupEW:
		return in.EWCount
	default:
		panic(fmt.Sprintf("core: invalid approach group %d", int(g)))
	}
}

// ArbitrationPolicy is a pure decision function over analyzer output and
// phase timing. It recommends; it never mutates the signal. Rules in strict
// priority order: emergency, starvation, imbalance with conservatism,
// default stay. The policy is total: any input, including an empty fleet,
// yields a decision.
type ArbitrationPolicy struct {
	settings PolicySettings
}

// NewArbitrationPolicy builds a policy around the configured thresholds.
func NewArbitrationPolicy(settings PolicySettings) ArbitrationPolicy {
	return ArbitrationPolicy{settings: settings}
}

// Recommend evaluates the rules and produces a Decision.
func (p ArbitrationPolicy) Recommend(in PolicyInput) model.Decision {
	dec := model.Decision{
		RecommendedGroup:   in.CurrentGroup,
		CurrentGroup:       in.CurrentGroup,
		NSScore:            in.NSScore,
		EWScore:            in.EWScore,
		NSCount:            in.NSCount,
		EWCount:            in.EWCount,
		HasEmergency:       in.HasEmergency,
		EmergencyDirection: in.EmergencyDirection,
	}

	cur := in.CurrentGroup
	other := cur.Opposite()
	curScore, otherScore := in.score(cur), in.score(other)
	curCount, otherCount := in.count(cur), in.count(other)

	switch {
	case in.HasEmergency:
		dec.RecommendedGroup = in.EmergencyDirection.Group()
		dec.Reason = fmt.Sprintf("emergency vehicle detected from %s", in.EmergencyDirection)
		dec.Action = fmt.Sprintf("switch to %s immediately", dec.RecommendedGroup)

	case curScore == 0 && otherScore > p.settings.StarvationScore:
		dec.RecommendedGroup = other
		dec.Reason = fmt.Sprintf("no cars waiting %s, but %d cars waiting %s", cur, otherCount, other)
		dec.Action = fmt.Sprintf("switch to %s to reduce wait times", other)

	case otherScore > curScore*p.settings.ImbalanceRatio && in.PhaseElapsed > p.settings.MinElapsedSeconds:
		dec.RecommendedGroup = other
		dec.Reason = fmt.Sprintf("%s has %d cars (%.1f) vs %s %d cars (%.1f)",
			other, otherCount, otherScore, cur, curCount, curScore)
		dec.Action = fmt.Sprintf("switch to %s - significantly more traffic", other)

	default:
		remaining := math.Max(5, in.CycleSeconds-in.PhaseElapsed)
		dec.Reason = fmt.Sprintf("%s has %d cars, %s has %d cars", cur, curCount, other, otherCount)
		dec.Action = fmt.Sprintf("continue %s green (%ds remaining)", cur, int(remaining))
	}

	dec.ShouldSwitch = dec.RecommendedGroup != in.CurrentGroup
	return dec
}

// SwitchGate sits between the policy and the signal controller. It re-checks
// a non-emergency recommendation against the minimum dwell time and the
// starvation/imbalance conditions before committing, so a recommendation
// flickering around the ratio boundary cannot oscillate the lights.
// Emergency recommendations bypass the gate entirely.
type SwitchGate struct {
	settings PolicySettings
}

// NewSwitchGate builds a gate sharing the policy's thresholds.
func NewSwitchGate(settings PolicySettings) SwitchGate {
	return SwitchGate{settings: settings}
}

// Apply validates the decision against the live controller state and, when
// it holds up, commits the switch. It reports whether the signal changed.
func (g SwitchGate) Apply(dec model.Decision, signal *SignalController) bool {
	if !dec.ShouldSwitch {
		return false
	}

	if dec.HasEmergency {
		signal.ForcePhase(dec.RecommendedGroup)
		return true
	}

	if signal.PhaseTimer() < g.settings.MinDwellSeconds {
		return false
	}

	in := PolicyInput{
		NSScore: dec.NSScore, EWScore: dec.EWScore,
		NSCount: dec.NSCount, EWCount: dec.EWCount,
	}
	cur := signal.CurrentGroup()
	other := cur.Opposite()

	starved := in.count(other) > 0 && in.count(cur) == 0
	imbalanced := in.score(other) > in.score(cur)*g.settings.ImbalanceRatio
	if !starved && !imbalanced {
		return false
	}

	signal.ForcePhase(dec.RecommendedGroup)
	return true
}
