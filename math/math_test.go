// math/math_test.go
// Copyright(c) 2025 gismap contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"
	"testing"
)

func TestPointInPolygon(t *testing.T) {
	// Closed square ring, first == last.
	square := []Point2LL{{0, 0}, {0, 10}, {10, 10}, {10, 0}, {0, 0}}

	testCases := []struct {
		name     string
		point    Point2LL
		polygon  []Point2LL
		expected bool
	}{
		{name: "CenterOfSquare", point: Point2LL{5, 5}, polygon: square, expected: true},
		{name: "OutsideSquare", point: Point2LL{15, 15}, polygon: square, expected: false},
		{name: "OutsideNegative", point: Point2LL{-1, 5}, polygon: square, expected: false},
		// Half-open edge rule: the southern edge (minimum latitude) is
		// inside, the northern edge outside.
		{name: "OnSouthEdge", point: Point2LL{5, 0}, polygon: square, expected: true},
		{name: "OnNorthEdge", point: Point2LL{5, 10}, polygon: square, expected: false},
		{
			name:     "OpenRingSameResult",
			point:    Point2LL{5, 5},
			polygon:  []Point2LL{{0, 0}, {0, 10}, {10, 10}, {10, 0}},
			expected: true,
		},
		{
			name:     "HanoiBoxContainsHanoi",
			point:    Point2LL{105.85, 21.03},
			polygon:  []Point2LL{{105.7, 20.8}, {105.7, 21.3}, {106.1, 21.3}, {106.1, 20.8}, {105.7, 20.8}},
			expected: true,
		},
		{
			name:     "HanoiBoxExcludesGulf",
			point:    Point2LL{106.2, 20.8},
			polygon:  []Point2LL{{105.7, 20.8}, {105.7, 21.3}, {106.1, 21.3}, {106.1, 20.8}, {105.7, 20.8}},
			expected: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PointInPolygon(tc.point, tc.polygon); got != tc.expected {
				t.Errorf("got %v, expected %v", got, tc.expected)
			}
		})
	}
}

func TestPointInPolygonDegenerate(t *testing.T) {
	degenerate := [][]Point2LL{
		nil,
		{},
		{{1, 1}},
		{{1, 1}, {2, 2}},
		{{1, 1}, {2, 2}, {1, 1}},           // closed ring, 2 distinct
		{{1, 1}, {1, 1}, {1, 1}, {1, 1}},   // all coincident
		{{0, 0}, {5, 5}, {0, 0}, {5, 5}},   // 2 distinct, interleaved
	}
	for _, poly := range degenerate {
		if PointInPolygon(Point2LL{1, 1}, poly) {
			t.Errorf("degenerate polygon %v reported containment", poly)
		}
	}
}

func TestClampLatLong(t *testing.T) {
	p := ClampLatLong(Point2LL{105, 90})
	if p[1] != MercatorLatitudeLimit {
		t.Errorf("latitude 90 clamped to %g, want %g", p[1], MercatorLatitudeLimit)
	}
	p = ClampLatLong(Point2LL{-190, -90})
	if p[0] != 170 || p[1] != -MercatorLatitudeLimit {
		t.Errorf("(-190, -90) clamped to %v", p)
	}
	p = ClampLatLong(Point2LL{105.85, 21.03})
	if p != (Point2LL{105.85, 21.03}) {
		t.Errorf("in-range point changed to %v", p)
	}
}

func TestVelocityHeading(t *testing.T) {
	testCases := []struct {
		dlon, dlat float64
		heading    float64
	}{
		{0, 1, 0},    // due north
		{1, 0, 90},   // due east
		{0, -1, 180}, // due south
		{-1, 0, 270}, // due west
		{1, 1, 45},
		{-1, -1, 225},
	}
	for _, tc := range testCases {
		h, ok := VelocityHeading(tc.dlon, tc.dlat)
		if !ok {
			t.Errorf("(%g, %g): unexpectedly no heading", tc.dlon, tc.dlat)
		}
		if gomath.Abs(h-tc.heading) > 1e-9 {
			t.Errorf("(%g, %g): got heading %g, want %g", tc.dlon, tc.dlat, h, tc.heading)
		}
	}

	if _, ok := VelocityHeading(0, 0); ok {
		t.Errorf("zero velocity returned a heading")
	}
}

func TestDistanceKM(t *testing.T) {
	// One degree of latitude is about 111.19 km.
	d := DistanceKM(Point2LL{105, 20}, Point2LL{105, 21})
	if gomath.Abs(d-111.19) > 0.1 {
		t.Errorf("one degree of latitude measured %g km", d)
	}
	if DistanceKM(Point2LL{105.85, 21.03}, Point2LL{105.85, 21.03}) != 0 {
		t.Errorf("distance from a point to itself is nonzero")
	}
}

func TestExtent2D(t *testing.T) {
	e := MakeExtent2D(Point2LL{106.1, 20.8}, Point2LL{105.7, 21.3})
	if e.P0 != (Point2LL{105.7, 20.8}) || e.P1 != (Point2LL{106.1, 21.3}) {
		t.Errorf("extent corners not normalized: %+v", e)
	}
	if !e.Inside(Point2LL{105.9, 21}) {
		t.Errorf("interior point reported outside")
	}
	if e.Inside(Point2LL{105.9, 21.4}) {
		t.Errorf("exterior point reported inside")
	}
	if c := e.Center(); gomath.Abs(c[0]-105.9) > 1e-12 || gomath.Abs(c[1]-21.05) > 1e-12 {
		t.Errorf("center %v", c)
	}
}
