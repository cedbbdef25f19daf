package model

// Decision is the arbitration policy's output for one analysis interval. It
// is transient: recomputed every interval and retained only as the most
// recent decision (plus a short history) for display.
type Decision struct {
	RecommendedGroup ApproachGroup `json:"recommended_group"`
	CurrentGroup     ApproachGroup `json:"current_group"`
	Reason           string        `json:"reason"`
	Action           string        `json:"action"`

	NSScore float64 `json:"ns_score"`
	EWScore float64 `json:"ew_score"`
	NSCount int     `json:"ns_count"`
	EWCount int     `json:"ew_count"`

	HasEmergency       bool      `json:"has_emergency"`
	EmergencyDirection Direction `json:"emergency_direction"`

	// ShouldSwitch is true when RecommendedGroup differs from CurrentGroup.
	// The switch gate may still refuse to apply it.
	ShouldSwitch bool `json:"should_switch"`
}
