// tiles/key.go
// Copyright(c) 2025 gismap contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package tiles

import (
	"fmt"
	"path/filepath"
	"strconv"
)

// TileKey identifies a single map tile: the serving tile server, the
// zoom level, and the grid indices at that zoom. It is the key for both
// cache tiers and its string form is canonical.
type TileKey struct {
	Server string
	Zoom   int
	X, Y   int
}

// Valid reports whether the grid indices are inside the 2^zoom tile
// grid. Requests for invalid keys are silently dropped by the loader.
func (k TileKey) Valid() bool {
	if k.Zoom < 0 || k.Zoom > 30 || k.Server == "" {
		return false
	}
	n := 1 << k.Zoom
	return k.X >= 0 && k.X < n && k.Y >= 0 && k.Y < n
}

// String returns the canonical "server/zoom/x/y" form.
func (k TileKey) String() string {
	return fmt.Sprintf("%s/%d/%d/%d", k.Server, k.Zoom, k.X, k.Y)
}

// DiskPath returns the on-disk location of the tile under the given
// cache root: <root>/<server>/<zoom>/<x>/<y>.png.
func (k TileKey) DiskPath(root string) string {
	return filepath.Join(root, k.Server, strconv.Itoa(k.Zoom), strconv.Itoa(k.X),
		strconv.Itoa(k.Y)+".png")
}

// Offset is a tile's position in the current view window, expressed in
// whole tiles relative to the center tile.
type Offset struct {
	DX, DY int
}
