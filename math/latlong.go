// math/latlong.go
// Copyright(c) 2025 gismap contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"fmt"
	gomath "math"
)

// MercatorLatitudeLimit is the northern/southern latitude bound of the
// Web Mercator projection; latitudes beyond it project to infinity, so
// all projection entry points clamp to it.
const MercatorLatitudeLimit = 85.0511287798

const EarthRadiusKM = 6371

///////////////////////////////////////////////////////////////////////////
// Point2LL

// Point2LL represents a 2D point on the Earth in latitude-longitude.
// Important: 0 (x) is longitude, 1 (y) is latitude
type Point2LL [2]float64

func (p Point2LL) Longitude() float64 {
	return p[0]
}

func (p Point2LL) Latitude() float64 {
	return p[1]
}

func (p Point2LL) IsZero() bool {
	return p[0] == 0 && p[1] == 0
}

// DDString returns the position in decimal degrees, e.g.:
// (21.030000, 105.850000)
func (p Point2LL) DDString() string {
	return fmt.Sprintf("(%f, %f)", p[1], p[0]) // latitude, longitude
}

func Add2LL(a Point2LL, b Point2LL) Point2LL {
	return Point2LL{a[0] + b[0], a[1] + b[1]}
}

func Sub2LL(a Point2LL, b Point2LL) Point2LL {
	return Point2LL{a[0] - b[0], a[1] - b[1]}
}

func Scale2LL(a Point2LL, s float64) Point2LL {
	return Point2LL{s * a[0], s * a[1]}
}

// ClampLatLong returns p with its longitude wrapped into [-180,180] and
// its latitude clamped to the Mercator singularity limit.
func ClampLatLong(p Point2LL) Point2LL {
	lon := p[0]
	for lon < -180 {
		lon += 360
	}
	for lon > 180 {
		lon -= 360
	}
	return Point2LL{lon, Clamp(p[1], -MercatorLatitudeLimit, MercatorLatitudeLimit)}
}

// DistanceKM returns the great-circle distance between a and b in
// kilometers, via the haversine formula.
func DistanceKM(a Point2LL, b Point2LL) float64 {
	lat1, lon1 := Radians(a[1]), Radians(a[0])
	lat2, lon2 := Radians(b[1]), Radians(b[0])

	dlat, dlon := lat2-lat1, lon2-lon1
	h := Sqr(gomath.Sin(dlat/2)) + gomath.Cos(lat1)*gomath.Cos(lat2)*Sqr(gomath.Sin(dlon/2))
	return 2 * EarthRadiusKM * gomath.Atan2(gomath.Sqrt(h), gomath.Sqrt(1-h))
}

///////////////////////////////////////////////////////////////////////////
// core math

// Degrees converts an angle expressed in radians to degrees
func Degrees(r float64) float64 {
	return r * 180 / gomath.Pi
}

// Radians converts an angle expressed in degrees to radians
func Radians(d float64) float64 {
	return d / 180 * gomath.Pi
}

func Sqr(x float64) float64 {
	return x * x
}

func Abs[T float64 | float32 | int](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

func Clamp[T float64 | float32 | int](x T, low T, high T) T {
	if x < low {
		return low
	}
	if x > high {
		return high
	}
	return x
}

// Lerp interpolates x of the way between a and b.
func Lerp(x, a, b float64) float64 {
	return (1-x)*a + x*b
}
