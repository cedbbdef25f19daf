package core

import (
	"fmt"

	"github.com/citygridlabs/intersection-simulator/model"
)

// Geometry describes the simulated area: a four-way intersection centred in
// a rectangular world. All values are in abstract distance units; the host
// presentation layer decides what a unit looks like on screen.
//
// Each approach carries a single lane offset from the road centreline, so
// opposing flows do not share coordinates.
type Geometry struct {
	Width     float64
	Height    float64
	RoadWidth float64
	LaneWidth float64

	// SpawnMargin is how far outside the world a vehicle is created.
	// PassBuffer is the overshoot past the intersection's far edge before
	// a vehicle counts as passed. RemovalBuffer is the overshoot past the
	// world edge before the fleet removes it.
	SpawnMargin   float64
	PassBuffer    float64
	RemovalBuffer float64
}

// DefaultGeometry mirrors the reference world layout.
func DefaultGeometry() Geometry {
	return Geometry{
		Width:         1200,
		Height:        800,
		RoadWidth:     400,
		LaneWidth:     60,
		SpawnMargin:   100,
		PassBuffer:    50,
		RemovalBuffer: 100,
	}
}

// Validate rejects layouts the kinematics cannot operate on.
func (g Geometry) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("world bounds must be positive, got %vx%v", g.Width, g.Height)
	}
	if g.RoadWidth <= 0 {
		return fmt.Errorf("road width must be positive, got %v", g.RoadWidth)
	}
	if g.RoadWidth >= g.Height || g.RoadWidth >= g.Width {
		return fmt.Errorf("road width %v must fit inside world %vx%v", g.RoadWidth, g.Width, g.Height)
	}
	if g.LaneWidth <= 0 || g.LaneWidth*2 > g.RoadWidth {
		return fmt.Errorf("lane width %v must be positive and fit the road width %v", g.LaneWidth, g.RoadWidth)
	}
	if g.SpawnMargin < 0 || g.PassBuffer < 0 || g.RemovalBuffer < 0 {
		return fmt.Errorf("buffers must be non-negative")
	}
	return nil
}

// Center returns the intersection centre point.
func (g Geometry) Center() (float64, float64) {
	return g.Width / 2, g.Height / 2
}

// SpawnPosition is where a new vehicle on the given approach is created:
// one half-lane off the centreline, just outside the world bounds on the
// side opposite its travel. North-bound traffic enters from the top edge
// and travels toward +Y, matching the reference coordinate system.
func (g Geometry) SpawnPosition(d model.Direction) (float64, float64) {
	cx, cy := g.Center()
	lane := g.LaneWidth / 2

	switch d {
	case model.North:
		return cx + lane, -g.SpawnMargin
	case model.South:
		return cx - lane, g.Height + g.SpawnMargin
	case model.East:
		return g.Width + g.SpawnMargin, cy + lane
	case model.West:
		return -g.SpawnMargin, cy - lane
	default:
		panic(fmt.Sprintf("core: invalid direction %d", int(d)))
	}
}

// DistanceToStopLine is the signed distance from (x, y) to the near edge of
// the intersection along the approach's travel axis. Negative once the
// vehicle is inside or beyond the box.
func (g Geometry) DistanceToStopLine(d model.Direction, x, y float64) float64 {
	cx, cy := g.Center()
	half := g.RoadWidth / 2

	switch d {
	case model.North:
		return cy - half - y
	case model.South:
		return y - (cy + half)
	case model.East:
		return x - (cx + half)
	case model.West:
		return cx - half - x
	default:
		panic(fmt.Sprintf("core: invalid direction %d", int(d)))
	}
}

// HasPassed reports whether (x, y) is beyond the far edge of the
// intersection plus PassBuffer for the approach.
func (g Geometry) HasPassed(d model.Direction, x, y float64) bool {
	cx, cy := g.Center()
	half := g.RoadWidth / 2

	switch d {
	case model.North:
		return y > cy+half+g.PassBuffer
	case model.South:
		return y < cy-half-g.PassBuffer
	case model.East:
		return x < cx-half-g.PassBuffer
	case model.West:
		return x > cx+half+g.PassBuffer
	default:
		panic(fmt.Sprintf("core: invalid direction %d", int(d)))
	}
}

// OutOfBounds reports whether (x, y) has left the world plus RemovalBuffer
// in the approach's direction of travel.
func (g Geometry) OutOfBounds(d model.Direction, x, y float64) bool {
	switch d {
	case model.North:
		return y > g.Height+g.RemovalBuffer
	case model.South:
		return y < -g.RemovalBuffer
	case model.East:
		return x < -g.RemovalBuffer
	case model.West:
		return x > g.Width+g.RemovalBuffer
	default:
		panic(fmt.Sprintf("core: invalid direction %d", int(d)))
	}
}
