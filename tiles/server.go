// tiles/server.go
// Copyright(c) 2025 gismap contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package tiles

import (
	"strconv"
	"strings"
)

// Operational constants sent with every tile request. Tile servers use
// these for usage accounting; they are not protocol-critical.
const (
	userAgent = "gismap/1.0 (https://github.com/gismap/gismap)"
	referer   = "https://www.openstreetmap.org/"
)

// Server describes a tile server: a short name used in cache keys and
// paths, and a URL template with {z}, {x}, {y} placeholders.
type Server struct {
	Name        string
	URLTemplate string
}

// TileURL substitutes the key's indices into the URL template.
func (s Server) TileURL(k TileKey) string {
	r := strings.NewReplacer(
		"{z}", strconv.Itoa(k.Zoom),
		"{x}", strconv.Itoa(k.X),
		"{y}", strconv.Itoa(k.Y))
	return r.Replace(s.URLTemplate)
}

// DefaultServers returns the built-in tile server set.
func DefaultServers() map[string]Server {
	return map[string]Server{
		"openstreetmap": {
			Name:        "openstreetmap",
			URLTemplate: "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
		},
		"satellite": {
			Name:        "satellite",
			URLTemplate: "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}",
		},
	}
}
