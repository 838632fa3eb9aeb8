// math/heading.go
// Copyright(c) 2025 gismap contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import gomath "math"

///////////////////////////////////////////////////////////////////////////
// headings
//
// Headings are expressed in degrees clockwise from true north, in
// [0, 360).

// NormalizeHeading returns the heading in [0, 360).
func NormalizeHeading(h float64) float64 {
	h = gomath.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}

// VelocityHeading returns the heading of the given velocity vector,
// where dlon is the eastward and dlat the northward component. A zero
// vector has no direction; (0, false) is returned for it.
func VelocityHeading(dlon, dlat float64) (float64, bool) {
	if dlon == 0 && dlat == 0 {
		return 0, false
	}
	return NormalizeHeading(Degrees(gomath.Atan2(dlon, dlat))), true
}

// HeadingDifference returns the minimum angle between two headings,
// in [0, 180].
func HeadingDifference(a float64, b float64) float64 {
	d := gomath.Abs(NormalizeHeading(a) - NormalizeHeading(b))
	if d > 180 {
		d = 360 - d
	}
	return d
}
