package model

import "fmt"

// VehicleKind distinguishes ordinary traffic from emergency vehicles, which
// get absolute priority in congestion scoring.
type VehicleKind int

const (
	KindOrdinary VehicleKind = iota
	KindEmergency
)

func (k VehicleKind) String() string {
	switch k {
	case KindOrdinary:
		return "ordinary"
	case KindEmergency:
		return "emergency"
	default:
		panic(fmt.Sprintf("model: invalid vehicle kind %d", int(k)))
	}
}

// Vehicle is a single moving entity on one approach. It is owned exclusively
// by the fleet; every other component sees read-only snapshots.
//
// Passed and Counted are one-way latches: once set they are never cleared for
// the lifetime of the vehicle. Counted guards the fleet's passage statistics
// so each vehicle contributes exactly once.
type Vehicle struct {
	ID        uint64
	Direction Direction
	Kind      VehicleKind

	X           float64
	Y           float64
	Speed       float64
	TargetSpeed float64

	WaitTime float64
	Waiting  bool
	Passed   bool
	Counted  bool
}

// AxisPosition projects the vehicle's position onto its travel axis, signed
// so that it increases in the direction of travel. Useful for monotonicity
// checks; vehicles never reverse.
func (v *Vehicle) AxisPosition() float64 {
	switch v.Direction {
	case North:
		return v.Y
	case South:
		return -v.Y
	case East:
		return -v.X
	case West:
		return v.X
	default:
		panic(fmt.Sprintf("model: invalid direction %d", int(v.Direction)))
	}
}

// VehicleSnapshot is the read-only view handed to presentation layers.
type VehicleSnapshot struct {
	ID        uint64      `json:"id"`
	Direction Direction   `json:"direction"`
	Kind      VehicleKind `json:"kind"`
	X         float64     `json:"x"`
	Y         float64     `json:"y"`
	Speed     float64     `json:"speed"`
	Waiting   bool        `json:"waiting"`
	Passed    bool        `json:"passed"`
}

// VehicleSample is the minimal immutable view the congestion analyzer works
// from. Handing out samples rather than live vehicles keeps the fleet the
// single writer even if analysis moves to its own goroutine.
type VehicleSample struct {
	Direction Direction
	Kind      VehicleKind
	WaitTime  float64
	Passed    bool
}

// Statistics aggregates fleet throughput. AverageWait and MaxWait cover only
// vehicles that have cleared the intersection.
type Statistics struct {
	TotalSpawned int     `json:"total_spawned"`
	TotalPassed  int     `json:"total_passed"`
	CurrentCount int     `json:"current_count"`
	AverageWait  float64 `json:"average_wait_time"`
	MaxWait      float64 `json:"max_wait_time"`
}
