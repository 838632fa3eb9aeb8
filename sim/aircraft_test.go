// sim/aircraft_test.go
// Copyright(c) 2025 gismap contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"testing"

	"github.com/gismap/gismap/math"
)

func TestAircraftUpdateMovesAndTrails(t *testing.T) {
	ac := &Aircraft{
		Callsign: "HVN123",
		Position: math.Point2LL{105.85, 21.03},
		Velocity: math.Point2LL{0.001, 0.002},
	}
	bounds := math.MakeExtent2D(math.Point2LL{105, 20}, math.Point2LL{107, 22})

	ac.Update(bounds, true)

	// The trail records the position before the move.
	if len(ac.Trail) != 1 || ac.Trail[0] != (math.Point2LL{105.85, 21.03}) {
		t.Errorf("trail %v after first update", ac.Trail)
	}
	if ac.Position != (math.Point2LL{105.851, 21.032}) {
		t.Errorf("position %v after update", ac.Position)
	}
}

func TestAircraftTrailCap(t *testing.T) {
	ac := &Aircraft{
		Position: math.Point2LL{105.85, 21.03},
		Velocity: math.Point2LL{0.0001, 0},
	}
	bounds := math.MakeExtent2D(math.Point2LL{105, 20}, math.Point2LL{107, 22})

	for i := 0; i < maxTrailLength+20; i++ {
		ac.Update(bounds, true)
	}

	if len(ac.Trail) != maxTrailLength {
		t.Errorf("trail length %d, expected %d", len(ac.Trail), maxTrailLength)
	}
	// Oldest entries dropped: the first remaining one is 20 steps in.
	want := 105.85 + 20*0.0001
	if got := ac.Trail[0][0]; math.Abs(got-want) > 1e-9 {
		t.Errorf("oldest trail longitude %v, expected %v", got, want)
	}
}

func TestAircraftBounce(t *testing.T) {
	bounds := math.MakeExtent2D(math.Point2LL{105, 20}, math.Point2LL{107, 22})

	ac := &Aircraft{
		Position: math.Point2LL{106.9995, 21},
		Velocity: math.Point2LL{0.001, 0},
	}
	ac.Update(bounds, true)

	if ac.Position[0] != 107 {
		t.Errorf("position not clamped to east edge: %v", ac.Position)
	}
	if ac.Velocity[0] != -0.001 {
		t.Errorf("velocity not reflected: %v", ac.Velocity)
	}

	// Next step moves back inside.
	ac.Update(bounds, true)
	if ac.Position[0] >= 107 {
		t.Errorf("still at edge after reflected step: %v", ac.Position)
	}

	// With bouncing off, the aircraft sails out of the box.
	ac2 := &Aircraft{
		Position: math.Point2LL{106.9995, 21},
		Velocity: math.Point2LL{0.001, 0},
	}
	ac2.Update(bounds, false)
	ac2.Update(bounds, false)
	if ac2.Position[0] <= 107 {
		t.Errorf("bounced with bouncing disabled: %v", ac2.Position)
	}
}

func TestAircraftHeadingTracksVelocity(t *testing.T) {
	bounds := math.MakeExtent2D(math.Point2LL{105, 20}, math.Point2LL{107, 22})

	for _, tc := range []struct {
		v   math.Point2LL
		hdg float64
	}{
		{math.Point2LL{0, 0.001}, 0},    // north
		{math.Point2LL{0.001, 0}, 90},   // east
		{math.Point2LL{0, -0.001}, 180}, // south
		{math.Point2LL{-0.001, 0}, 270}, // west
	} {
		ac := &Aircraft{Position: math.Point2LL{106, 21}, Velocity: tc.v}
		ac.Update(bounds, false)
		if math.Abs(ac.Heading-tc.hdg) > 1e-6 {
			t.Errorf("velocity %v: heading %v, expected %v", tc.v, ac.Heading, tc.hdg)
		}
	}

	// Zero velocity leaves the heading alone.
	ac := &Aircraft{Position: math.Point2LL{106, 21}, Heading: 45}
	ac.Update(bounds, false)
	if ac.Heading != 45 {
		t.Errorf("heading changed with zero velocity: %v", ac.Heading)
	}
}

func TestAircraftSetState(t *testing.T) {
	ac := &Aircraft{State: StateNormal}

	prev, changed := ac.SetState(StateInRegion)
	if !changed || prev != StateNormal || ac.State != StateInRegion {
		t.Errorf("SetState: prev %v changed %v state %v", prev, changed, ac.State)
	}

	if _, changed := ac.SetState(StateInRegion); changed {
		t.Errorf("SetState reported a change for the same state")
	}
}
