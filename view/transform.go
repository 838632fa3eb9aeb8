// view/transform.go
// Copyright(c) 2025 gismap contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package view

import (
	"github.com/gismap/gismap/math"
)

// Transform owns the current map view: center position, zoom level, and
// viewport size in pixels. It converts between geographic and on-screen
// pixel coordinates and derives the visible geographic bounds.
//
// Setters use change detection: interested parties registered with
// OnChange are notified synchronously, and only when something actually
// changed, so a redundant SetCenter/SetZoom never triggers a tile
// reload.
type Transform struct {
	center   math.Point2LL
	zoom     int
	width    int
	height   int
	tileSize int
	minZoom  int
	maxZoom  int

	listeners []func()
}

func NewTransform(center math.Point2LL, zoom, width, height, tileSize, minZoom, maxZoom int) *Transform {
	return &Transform{
		center:   math.ClampLatLong(center),
		zoom:     math.Clamp(zoom, minZoom, maxZoom),
		width:    width,
		height:   height,
		tileSize: tileSize,
		minZoom:  minZoom,
		maxZoom:  maxZoom,
	}
}

func (t *Transform) Center() math.Point2LL { return t.center }
func (t *Transform) Zoom() int             { return t.zoom }
func (t *Transform) TileSize() int         { return t.tileSize }

func (t *Transform) ViewportSize() (int, int) {
	return t.width, t.height
}

// OnChange registers a callback invoked synchronously after every
// actual change to the transform.
func (t *Transform) OnChange(fn func()) {
	t.listeners = append(t.listeners, fn)
}

func (t *Transform) notify() {
	for _, fn := range t.listeners {
		fn()
	}
}

// GeoToScreen projects a lat-long point to viewport pixel coordinates,
// with the transform's center at the middle of the viewport.
func (t *Transform) GeoToScreen(p math.Point2LL) (float64, float64) {
	px, py := math.GeoToPixel(p, t.zoom, t.tileSize)
	cx, cy := math.GeoToPixel(t.center, t.zoom, t.tileSize)
	return px - cx + float64(t.width)/2, py - cy + float64(t.height)/2
}

// ScreenToGeo is the inverse of GeoToScreen.
func (t *Transform) ScreenToGeo(x, y float64) math.Point2LL {
	cx, cy := math.GeoToPixel(t.center, t.zoom, t.tileSize)
	return math.PixelToGeo(x-float64(t.width)/2+cx, y-float64(t.height)/2+cy, t.zoom, t.tileSize)
}

// VisibleBounds returns the geographic extent covered by the viewport.
func (t *Transform) VisibleBounds() math.Extent2D {
	topLeft := t.ScreenToGeo(0, 0)
	bottomRight := t.ScreenToGeo(float64(t.width), float64(t.height))
	return math.MakeExtent2D(topLeft, bottomRight)
}

func (t *Transform) SetCenter(p math.Point2LL) {
	p = math.ClampLatLong(p)
	if t.center != p {
		t.center = p
		t.notify()
	}
}

// SetZoom clamps the given zoom level to the configured range; it is a
// no-op if the clamped level equals the current one.
func (t *Transform) SetZoom(zoom int) {
	zoom = math.Clamp(zoom, t.minZoom, t.maxZoom)
	if t.zoom != zoom {
		t.zoom = zoom
		t.notify()
	}
}

func (t *Transform) ZoomIn()  { t.SetZoom(t.zoom + 1) }
func (t *Transform) ZoomOut() { t.SetZoom(t.zoom - 1) }

func (t *Transform) SetViewportSize(width, height int) {
	if t.width != width || t.height != height {
		t.width, t.height = width, height
		t.notify()
	}
}

// Pan moves the view by the given pixel delta. The delta is converted
// to a geographic offset by re-deriving lat-long positions at the
// screen origin and at the delta, which compensates for the Mercator
// projection's latitude-dependent pixel scale; a flat pixel-to-degree
// ratio would drift away from the cursor at high latitudes.
func (t *Transform) Pan(dx, dy float64) {
	start := t.ScreenToGeo(0, 0)
	end := t.ScreenToGeo(dx, dy)
	offset := math.Sub2LL(end, start)
	t.SetCenter(math.Sub2LL(t.center, offset))
}

// MetersPerPixel returns the ground resolution at the view center.
func (t *Transform) MetersPerPixel() float64 {
	return math.MetersPerPixel(t.center.Latitude(), t.zoom, t.tileSize)
}

func (t *Transform) PixelsPerMeter() float64 {
	return 1 / t.MetersPerPixel()
}
