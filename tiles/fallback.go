// tiles/fallback.go
// Copyright(c) 2025 gismap contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package tiles

import (
	"image"
	"image/color"
)

// Fallback colors: pale blue ground, light gray grid, green land blobs.
var (
	fallbackGround = color.RGBA{240, 248, 255, 255}
	fallbackGrid   = color.RGBA{200, 200, 200, 255}
	fallbackLand   = color.RGBA{220, 240, 220, 255}
	fallbackBorder = color.RGBA{180, 180, 180, 255}
)

// Fallback generates the placeholder shown when a tile cannot be
// fetched or decoded. The pattern is deterministic in the tile
// coordinates (the pseudo-land blobs are seeded from x and y), so
// adjacent placeholders are distinguishable and the same tile always
// gets the same placeholder. It is never blank: the view must always
// have something to render.
func Fallback(k TileKey, tileSize int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, tileSize, tileSize))

	for y := 0; y < tileSize; y++ {
		for x := 0; x < tileSize; x++ {
			img.SetRGBA(x, y, fallbackGround)
		}
	}

	// Grid lines every eighth of a tile.
	spacing := tileSize / 8
	for i := 0; i < tileSize; i += spacing {
		for j := 0; j < tileSize; j++ {
			img.SetRGBA(i, j, fallbackGrid)
			img.SetRGBA(j, i, fallbackGrid)
		}
	}

	// A few elliptical land masses, positioned and sized from the tile
	// coordinates.
	for i := 0; i < 3; i++ {
		x := posMod(k.X*37+i*67, tileSize-60)
		y := posMod(k.Y*43+i*53, tileSize-40)
		w := 30 + posMod(k.X+k.Y+i, 60)
		h := 20 + posMod(k.X-k.Y+i, 40)
		fillEllipse(img, x, y, w, h)
	}

	return img
}

func posMod(a, m int) int {
	if m <= 0 {
		return 0
	}
	a %= m
	if a < 0 {
		a += m
	}
	return a
}

// fillEllipse draws a filled ellipse inscribed in the rectangle at
// (x, y) with size (w, h), with a darker single-pixel border.
func fillEllipse(img *image.RGBA, x, y, w, h int) {
	b := img.Bounds()
	cx, cy := float64(x)+float64(w)/2, float64(y)+float64(h)/2
	rx, ry := float64(w)/2, float64(h)/2
	if rx <= 0 || ry <= 0 {
		return
	}

	for py := y; py < y+h; py++ {
		for px := x; px < x+w; px++ {
			if px < b.Min.X || px >= b.Max.X || py < b.Min.Y || py >= b.Max.Y {
				continue
			}
			dx, dy := (float64(px)+0.5-cx)/rx, (float64(py)+0.5-cy)/ry
			d := dx*dx + dy*dy
			if d <= 1 {
				if d > 0.85 {
					img.SetRGBA(px, py, fallbackBorder)
				} else {
					img.SetRGBA(px, py, fallbackLand)
				}
			}
		}
	}
}
