// math/geom.go
// Copyright(c) 2025 gismap contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

///////////////////////////////////////////////////////////////////////////
// Extent2D

// Extent2D represents a 2D axis-aligned bounding box in latitude-longitude
// with the usual Point2LL ordering: 0 (x) is longitude, 1 (y) is latitude.
type Extent2D struct {
	P0, P1 Point2LL
}

// MakeExtent2D returns an Extent2D spanning the two given points,
// regardless of their relative ordering.
func MakeExtent2D(a, b Point2LL) Extent2D {
	e := Extent2D{a, b}
	if e.P0[0] > e.P1[0] {
		e.P0[0], e.P1[0] = e.P1[0], e.P0[0]
	}
	if e.P0[1] > e.P1[1] {
		e.P0[1], e.P1[1] = e.P1[1], e.P0[1]
	}
	return e
}

func (e Extent2D) Width() float64 {
	return e.P1[0] - e.P0[0]
}

func (e Extent2D) Height() float64 {
	return e.P1[1] - e.P0[1]
}

func (e Extent2D) Center() Point2LL {
	return Point2LL{(e.P0[0] + e.P1[0]) / 2, (e.P0[1] + e.P1[1]) / 2}
}

func (e Extent2D) Inside(p Point2LL) bool {
	return p[0] >= e.P0[0] && p[0] <= e.P1[0] && p[1] >= e.P0[1] && p[1] <= e.P1[1]
}

///////////////////////////////////////////////////////////////////////////
// point in polygon

// PointInPolygon checks whether the given point is inside the given
// polygon using the even-odd (ray casting) rule. The polygon is treated
// as a closed ring: a repeated final vertex is ignored and the edge from
// the last vertex back to the first is always included. Edge rule: the
// crossing test is half-open in latitude, so a point lying exactly on a
// southern edge is inside and one on a northern edge is outside; this is
// deterministic but direction-dependent, which is fine for region
// classification.
//
// A degenerate polygon with fewer than 3 distinct vertices contains no
// points.
func PointInPolygon(p Point2LL, pts []Point2LL) bool {
	// Drop a closing vertex that duplicates the first.
	if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	if distinctVertices(pts) < 3 {
		return false
	}

	inside := false
	for i := 0; i < len(pts); i++ {
		p0, p1 := pts[i], pts[(i+1)%len(pts)]
		if (p0[1] <= p[1] && p[1] < p1[1]) || (p1[1] <= p[1] && p[1] < p0[1]) {
			x := p0[0] + (p[1]-p0[1])*(p1[0]-p0[0])/(p1[1]-p0[1])
			if x > p[0] {
				inside = !inside
			}
		}
	}
	return inside
}

func distinctVertices(pts []Point2LL) int {
	n := 0
	for i, p := range pts {
		dup := false
		for _, q := range pts[:i] {
			if p == q {
				dup = true
				break
			}
		}
		if !dup {
			n++
		}
	}
	return n
}
