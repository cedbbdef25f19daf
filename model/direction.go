package model

import "fmt"

// Direction identifies one of the four intersection approaches. The domain is
// closed: passing any other value to a method in this module is a programming
// error and panics rather than silently defaulting.
type Direction int

const (
	North Direction = iota
	South
	East
	West
)

// NumDirections is the size of the Direction domain.
const NumDirections = 4

// AllDirections lists every approach in a fixed order, for exhaustive
// iteration and for array indexing keyed by Direction.
func AllDirections() [NumDirections]Direction {
	return [NumDirections]Direction{North, South, East, West}
}

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case South:
		return "south"
	case East:
		return "east"
	case West:
		return "west"
	default:
		panic(fmt.Sprintf("model: invalid direction %d", int(d)))
	}
}

// Group maps an approach to the signal group that controls it.
func (d Direction) Group() ApproachGroup {
	switch d {
	case North, South:
		return GroupNS
	case East, West:
		return GroupEW
	default:
		panic(fmt.Sprintf("model: invalid direction %d", int(d)))
	}
}

// ParseDirection converts a wire name ("north", "south", ...) into a
// Direction. Unlike the methods above it returns an error, since its input
// comes from outside the closed domain.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "north":
		return North, nil
	case "south":
		return South, nil
	case "east":
		return East, nil
	case "west":
		return West, nil
	default:
		return 0, fmt.Errorf("unknown direction %q", s)
	}
}

// ApproachGroup is one of the two signal groups arbitrated by the controller.
type ApproachGroup int

const (
	GroupNS ApproachGroup = iota
	GroupEW
)

func (g ApproachGroup) String() string {
	switch g {
	case GroupNS:
		return "NS"
	case GroupEW:
		return "EW"
	default:
		panic(fmt.Sprintf("model: invalid approach group %d", int(g)))
	}
}

// Opposite returns the other group.
func (g ApproachGroup) Opposite() ApproachGroup {
	switch g {
	case GroupNS:
		return GroupEW
	case GroupEW:
		return GroupNS
	default:
		panic(fmt.Sprintf("model: invalid approach group %d", int(g)))
	}
}

// Directions returns the two approaches the group controls.
func (g ApproachGroup) Directions() [2]Direction {
	switch g {
	case GroupNS:
		return [2]Direction{North, South}
	case GroupEW:
		return [2]Direction{East, West}
	default:
		panic(fmt.Sprintf("model: invalid approach group %d", int(g)))
	}
}

// ParseGroup converts a wire name ("NS" or "EW") into an ApproachGroup.
func ParseGroup(s string) (ApproachGroup, error) {
	switch s {
	case "NS":
		return GroupNS, nil
	case "EW":
		return GroupEW, nil
	default:
		return 0, fmt.Errorf("unknown approach group %q", s)
	}
}
