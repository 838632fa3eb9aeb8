// sim/trailexport.go
// Copyright(c) 2025 gismap contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"os"
	"slices"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/gismap/gismap/math"
)

// TrailSnapshot is one aircraft's recorded track, as written to a trail
// export file.
type TrailSnapshot struct {
	Callsign string
	Trail    []math.Point2LL
}

// ExportTrails writes every aircraft's trail to a zstd-compressed
// msgpack file at path.
func (m *Manager) ExportTrails(path string) error {
	snaps := make([]TrailSnapshot, 0, len(m.aircraft))
	for _, ac := range m.aircraft {
		snaps = append(snaps, TrailSnapshot{
			Callsign: ac.Callsign,
			Trail:    slices.Clone(ac.Trail),
		})
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating trail export: %w", err)
	}
	defer f.Close()

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return err
	}
	if err := msgpack.NewEncoder(zw).Encode(snaps); err != nil {
		zw.Close()
		return fmt.Errorf("encoding trails: %w", err)
	}
	return zw.Close()
}

// ImportTrails reads a trail export file written by ExportTrails.
func ImportTrails(path string) ([]TrailSnapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var snaps []TrailSnapshot
	if err := msgpack.NewDecoder(zr).Decode(&snaps); err != nil {
		return nil, fmt.Errorf("decoding trails: %w", err)
	}
	return snaps, nil
}
