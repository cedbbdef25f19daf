package core

import (
	"math"

	"github.com/citygridlabs/intersection-simulator/model"
)

// emergencyResumeLead pre-positions the phase timer when the emergency
// override forces a group change, so normal sequencing resumes near the end
// of green once the override clears.
const emergencyResumeLead = 5.0

// SignalController owns the phase state machine for the intersection. The
// normal cycle is a strict ring, GREEN -> YELLOW -> ALL_RED -> group flip,
// with the stage derived purely from the phase timer and the configured
// durations. The emergency override is an orthogonal layer on top: it forces
// group and clearance directly and suppresses threshold-driven transitions,
// but the timer keeps advancing so sequencing resumes cleanly afterwards.
//
// Only Update, ForcePhase, CyclePhase, SetEmergency, ClearEmergency, and
// Reset mutate the controller. Everything else is a read.
type SignalController struct {
	timings SignalTimings

	group model.ApproachGroup
	timer float64

	emergencyActive    bool
	emergencyDirection model.Direction
}

// NewSignalController starts at group NS, stage GREEN, timer zero.
func NewSignalController(timings SignalTimings) *SignalController {
	return &SignalController{timings: timings, group: model.GroupNS}
}

// Update advances the phase timer by dt seconds. Outside emergency mode it
// flips the group and zeroes the timer once the full cycle has elapsed;
// during emergency mode the timer advances for bookkeeping only.
func (s *SignalController) Update(dt float64) {
	if dt < 0 {
		dt = 0
	}
	s.timer += dt

	if s.emergencyActive {
		return
	}
	if s.timer >= s.timings.CycleSeconds() {
		s.group = s.group.Opposite()
		s.timer = 0
	}
}

// stageForTimer derives the stage from a phase timer value.
func (s *SignalController) stageForTimer(timer float64) model.Stage {
	switch {
	case timer < s.timings.GreenSeconds:
		return model.StageGreen
	case timer < s.timings.GreenSeconds+s.timings.YellowSeconds:
		return model.StageYellow
	default:
		return model.StageAllRed
	}
}

// CurrentGroup returns the group holding right of way.
func (s *SignalController) CurrentGroup() model.ApproachGroup { return s.group }

// CurrentStage returns the stage for the current group. While the emergency
// override is active the stage is forced green for the overridden group.
func (s *SignalController) CurrentStage() model.Stage {
	if s.emergencyActive {
		return model.StageGreen
	}
	return s.stageForTimer(s.timer)
}

// PhaseTimer is the seconds since the last group switch.
func (s *SignalController) PhaseTimer() float64 { return s.timer }

// TimeUntilChange is the seconds until the group flips under normal
// sequencing.
func (s *SignalController) TimeUntilChange() float64 {
	return math.Max(0, s.timings.CycleSeconds()-s.timer)
}

// IsClear reports whether the approach may enter the intersection. Yellow
// and all-red are not traversable. During an emergency override only the
// exact overridden approach is clear.
func (s *SignalController) IsClear(d model.Direction) bool {
	if s.emergencyActive {
		return d == s.emergencyDirection
	}
	return d.Group() == s.group && s.stageForTimer(s.timer) == model.StageGreen
}

// ForcePhase immediately grants right of way to the group and restarts its
// cycle. Subsequent Update calls resume normal sequencing.
func (s *SignalController) ForcePhase(g model.ApproachGroup) {
	s.group = g
	s.timer = 0
}

// CyclePhase flips to the opposite group immediately.
func (s *SignalController) CyclePhase() {
	s.ForcePhase(s.group.Opposite())
}

// SetEmergency enters emergency mode for the given approach: its group takes
// right of way at once and every other approach reads as not clear. If the
// controller was serving the other group, the phase timer is pre-positioned
// near the end of green (see emergencyResumeLead); if it was already serving
// the emergency group the timer is left alone.
func (s *SignalController) SetEmergency(d model.Direction) {
	s.emergencyActive = true
	s.emergencyDirection = d

	if target := d.Group(); s.group != target {
		s.group = target
		s.timer = s.timings.GreenSeconds - emergencyResumeLead
	}
}

// ClearEmergency returns to normal threshold-driven sequencing from wherever
// the phase timer currently stands.
func (s *SignalController) ClearEmergency() {
	s.emergencyActive = false
}

// Emergency reports the active override, if any.
func (s *SignalController) Emergency() (model.Direction, bool) {
	return s.emergencyDirection, s.emergencyActive
}

// State returns a read-only snapshot of the phase state.
func (s *SignalController) State() model.PhaseState {
	return model.PhaseState{
		Group:              s.group,
		Stage:              s.CurrentStage(),
		Timer:              s.timer,
		EmergencyActive:    s.emergencyActive,
		EmergencyDirection: s.emergencyDirection,
	}
}

// Reset restores the initial phase: group NS, timer zero, no override.
func (s *SignalController) Reset() {
	s.group = model.GroupNS
	s.timer = 0
	s.emergencyActive = false
	s.emergencyDirection = model.North
}
