// tiles/server_test.go
// Copyright(c) 2025 gismap contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package tiles

import "testing"

func TestTileURL(t *testing.T) {
	k := TileKey{Server: "openstreetmap", Zoom: 12, X: 3252, Y: 1803}

	servers := DefaultServers()
	if got := servers["openstreetmap"].TileURL(k); got != "https://tile.openstreetmap.org/12/3252/1803.png" {
		t.Errorf("TileURL = %q", got)
	}

	// The satellite template swaps x and y.
	want := "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/12/1803/3252"
	if got := servers["satellite"].TileURL(k); got != want {
		t.Errorf("TileURL = %q", got)
	}
}

func TestTileKeyDiskPath(t *testing.T) {
	k := TileKey{Server: "openstreetmap", Zoom: 12, X: 3252, Y: 1803}
	if got := k.DiskPath("/cache"); got != "/cache/openstreetmap/12/3252/1803.png" {
		t.Errorf("DiskPath = %q", got)
	}
	if got := k.String(); got != "openstreetmap/12/3252/1803" {
		t.Errorf("String = %q", got)
	}
}
