package core

import (
	"testing"

	"github.com/citygridlabs/intersection-simulator/model"
)

func TestDefaultGeometryValid(t *testing.T) {
	if err := DefaultGeometry().Validate(); err != nil {
		t.Fatalf("default geometry must validate: %v", err)
	}
}

func TestGeometryValidationFailures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Geometry)
	}{
		{"zero width", func(g *Geometry) { g.Width = 0 }},
		{"zero road", func(g *Geometry) { g.RoadWidth = 0 }},
		{"road wider than world", func(g *Geometry) { g.RoadWidth = 900 }},
		{"lanes exceed road", func(g *Geometry) { g.LaneWidth = 250 }},
		{"negative buffer", func(g *Geometry) { g.PassBuffer = -1 }},
	}
	for _, tc := range cases {
		g := DefaultGeometry()
		tc.mutate(&g)
		if err := g.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestSpawnPositionsOutsideWorld(t *testing.T) {
	g := DefaultGeometry()

	cases := []struct {
		dir  model.Direction
		x, y float64
	}{
		{model.North, 630, -100},
		{model.South, 570, 900},
		{model.East, 1300, 430},
		{model.West, -100, 370},
	}
	for _, tc := range cases {
		x, y := g.SpawnPosition(tc.dir)
		if x != tc.x || y != tc.y {
			t.Errorf("%s: expected spawn (%v, %v), got (%v, %v)", tc.dir, tc.x, tc.y, x, y)
		}
	}
}

func TestDistanceToStopLine(t *testing.T) {
	g := DefaultGeometry()

	// North-bound stop line sits at y = 200.
	if d := g.DistanceToStopLine(model.North, 630, -100); d != 300 {
		t.Errorf("expected 300 at spawn, got %v", d)
	}
	if d := g.DistanceToStopLine(model.North, 630, 200); d != 0 {
		t.Errorf("expected 0 at the stop line, got %v", d)
	}
	if d := g.DistanceToStopLine(model.North, 630, 300); d >= 0 {
		t.Errorf("expected negative distance inside the box, got %v", d)
	}

	// The world is wider than it is tall, so EW approaches start further
	// from the box than NS approaches.
	wantFromSpawn := map[model.Direction]float64{
		model.North: 300,
		model.South: 300,
		model.East:  500,
		model.West:  500,
	}
	for _, dir := range model.AllDirections() {
		x, y := g.SpawnPosition(dir)
		if d := g.DistanceToStopLine(dir, x, y); d != wantFromSpawn[dir] {
			t.Errorf("%s: expected %v from spawn to stop line, got %v", dir, wantFromSpawn[dir], d)
		}
	}
}

func TestHasPassedAndOutOfBounds(t *testing.T) {
	g := DefaultGeometry()

	// North-bound: far edge at y=600, pass threshold 650, removal at 900.
	if g.HasPassed(model.North, 630, 640) {
		t.Errorf("not yet past the buffer at y=640")
	}
	if !g.HasPassed(model.North, 630, 651) {
		t.Errorf("expected passed at y=651")
	}
	if g.OutOfBounds(model.North, 630, 890) {
		t.Errorf("still inside removal buffer at y=890")
	}
	if !g.OutOfBounds(model.North, 630, 901) {
		t.Errorf("expected out of bounds at y=901")
	}

	// East-bound travels toward -X: pass threshold at x=350.
	if !g.HasPassed(model.East, 349, 430) {
		t.Errorf("expected passed at x=349 east-bound")
	}
	if !g.OutOfBounds(model.East, -101, 430) {
		t.Errorf("expected out of bounds at x=-101 east-bound")
	}
}
