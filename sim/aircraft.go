// sim/aircraft.go
// Copyright(c) 2025 gismap contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"log/slog"

	"github.com/gismap/gismap/math"
)

type AircraftState int

const (
	StateNormal AircraftState = iota
	StateInRegion
	StateSelected
)

func (s AircraftState) String() string {
	return [...]string{"Normal", "InRegion", "Selected"}[s]
}

// maxTrailLength bounds the position history kept per aircraft.
const maxTrailLength = 50

type Aircraft struct {
	Callsign     string
	AircraftType string

	Position math.Point2LL
	// Velocity is the per-update position delta, in degrees of
	// longitude and latitude.
	Velocity math.Point2LL
	Heading  float64
	Altitude float64 // feet
	Speed    float64 // knots

	State  AircraftState
	Moving bool
	Trail  []math.Point2LL
}

func (ac *Aircraft) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("callsign", ac.Callsign),
		slog.String("state", ac.State.String()),
		slog.Any("position", ac.Position),
		slog.Float64("heading", ac.Heading))
}

// Update advances the aircraft one step: the current position is
// recorded in the trail, then the velocity is applied. If bounce is set
// and the step would leave bounds, the offending velocity component is
// reflected and the position clamped to the box edge.
func (ac *Aircraft) Update(bounds math.Extent2D, bounce bool) {
	ac.Trail = append(ac.Trail, ac.Position)
	if len(ac.Trail) > maxTrailLength {
		ac.Trail = ac.Trail[1:]
	}

	ac.Position = math.Add2LL(ac.Position, ac.Velocity)

	if bounce {
		if ac.Position[0] < bounds.P0[0] {
			ac.Position[0] = bounds.P0[0]
			ac.Velocity[0] = -ac.Velocity[0]
		} else if ac.Position[0] > bounds.P1[0] {
			ac.Position[0] = bounds.P1[0]
			ac.Velocity[0] = -ac.Velocity[0]
		}
		if ac.Position[1] < bounds.P0[1] {
			ac.Position[1] = bounds.P0[1]
			ac.Velocity[1] = -ac.Velocity[1]
		} else if ac.Position[1] > bounds.P1[1] {
			ac.Position[1] = bounds.P1[1]
			ac.Velocity[1] = -ac.Velocity[1]
		}
	}

	ac.Position = math.ClampLatLong(ac.Position)

	if hdg, ok := math.VelocityHeading(ac.Velocity[0], ac.Velocity[1]); ok {
		ac.Heading = hdg
	}
}

// SetState transitions the aircraft to the given state and returns the
// previous one. It is a no-op if the state is unchanged.
func (ac *Aircraft) SetState(s AircraftState) (AircraftState, bool) {
	if ac.State == s {
		return ac.State, false
	}
	prev := ac.State
	ac.State = s
	return prev, true
}

func (ac *Aircraft) Selected() bool { return ac.State == StateSelected }
