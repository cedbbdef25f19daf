package model

import "fmt"

// Stage is the stage of the signal cycle for the group currently holding
// right of way. Outside emergency mode it is derived from the phase timer,
// never stored independently.
type Stage int

const (
	StageGreen Stage = iota
	StageYellow
	StageAllRed
)

func (s Stage) String() string {
	switch s {
	case StageGreen:
		return "GREEN"
	case StageYellow:
		return "YELLOW"
	case StageAllRed:
		return "ALL_RED"
	default:
		panic(fmt.Sprintf("model: invalid stage %d", int(s)))
	}
}

// PhaseState is a read-only snapshot of the signal controller. Timer is the
// seconds elapsed since the last group switch; Stage is derived from it
// unless the emergency override is active.
type PhaseState struct {
	Group              ApproachGroup `json:"group"`
	Stage              Stage         `json:"stage"`
	Timer              float64       `json:"phase_timer"`
	EmergencyActive    bool          `json:"emergency_active"`
	EmergencyDirection Direction     `json:"emergency_direction"`
}
