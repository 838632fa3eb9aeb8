// store/store.go
// Copyright(c) 2025 gismap contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package store

import "github.com/gismap/gismap/math"

// RegionRecord is a persisted region of interest: a named polygon used
// to classify aircraft.
type RegionRecord struct {
	Name     string
	Vertices []math.Point2LL
}

// AircraftRecord is the persisted form of an aircraft.
type AircraftRecord struct {
	Callsign     string
	AircraftType string
	Position     math.Point2LL
	Velocity     math.Point2LL
	Heading      float64
	Altitude     float64
	Speed        float64
}

// Store persists regions and aircraft across sessions.
type Store interface {
	SaveRegion(r RegionRecord) error
	LoadRegion(name string) (RegionRecord, error)
	LoadAllRegions() ([]RegionRecord, error)
	DeleteRegion(name string) error

	SaveAircraft(ac AircraftRecord) error
	LoadAllAircraft() ([]AircraftRecord, error)
	DeleteAircraft(callsign string) error

	Close() error
}
