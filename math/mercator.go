// math/mercator.go
// Copyright(c) 2025 gismap contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"
)

///////////////////////////////////////////////////////////////////////////
// Web Mercator projection
//
// The global pixel space at a zoom level z is a square of
// 2^z * tileSize pixels per side; (0,0) is the top-left corner
// (180W, 85.05N) and y grows southward.

// NumTiles returns the number of tiles per axis at the given zoom level.
func NumTiles(zoom int) int {
	return 1 << zoom
}

// GeoToPixel projects a lat-long point to global pixel coordinates at
// the given zoom level. The latitude is clamped to the Mercator limit
// so the result is always finite.
func GeoToPixel(p Point2LL, zoom int, tileSize int) (float64, float64) {
	p = ClampLatLong(p)
	n := float64(int64(1)<<zoom) * float64(tileSize)

	x := (p[0] + 180) / 360 * n
	latRad := Radians(p[1])
	y := (1 - gomath.Log(gomath.Tan(latRad)+1/gomath.Cos(latRad))/gomath.Pi) / 2 * n
	return x, y
}

// PixelToGeo is the exact inverse of GeoToPixel.
func PixelToGeo(x, y float64, zoom int, tileSize int) Point2LL {
	n := float64(int64(1)<<zoom) * float64(tileSize)

	lon := x/n*360 - 180
	latRad := gomath.Atan(gomath.Sinh(gomath.Pi * (1 - 2*y/n)))
	return Point2LL{lon, Degrees(latRad)}
}

// TileIndex returns the tile grid indices containing the given point at
// the given zoom level. The indices are guaranteed to lie in
// [0, 2^zoom) on both axes.
func TileIndex(p Point2LL, zoom int) (int, int) {
	// Work in units of tiles; tile size cancels out.
	x, y := GeoToPixel(p, zoom, 1)
	tx := int(gomath.Floor(x))
	ty := int(gomath.Floor(y))

	// The eastern and southern edges of the pixel square land exactly on
	// 2^zoom; fold them back onto the last tile.
	n := NumTiles(zoom)
	return Clamp(tx, 0, n-1), Clamp(ty, 0, n-1)
}

// MetersPerPixel returns the ground resolution of the projection at the
// given latitude and zoom level.
func MetersPerPixel(lat float64, zoom int, tileSize int) float64 {
	const earthCircumference = 40075016.686 // meters, at the equator
	lat = Clamp(lat, -MercatorLatitudeLimit, MercatorLatitudeLimit)
	return earthCircumference * gomath.Cos(Radians(lat)) / (float64(int64(1)<<zoom) * float64(tileSize))
}
