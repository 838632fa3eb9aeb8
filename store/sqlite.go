// store/sqlite.go
// Copyright(c) 2025 gismap contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/gismap/gismap/math"
)

var ErrNotFound = errors.New("store: record not found")

// SQLiteStore implements Store on a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if necessary) the database at path and
// initializes the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// WAL keeps reads cheap while the simulation writes each tick.
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS regions (
			name TEXT PRIMARY KEY,
			vertices TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS aircraft (
			callsign TEXT PRIMARY KEY,
			aircraft_type TEXT,
			longitude REAL NOT NULL,
			latitude REAL NOT NULL,
			vlongitude REAL NOT NULL,
			vlatitude REAL NOT NULL,
			heading REAL,
			altitude REAL,
			speed REAL
		);`,
	}
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveRegion(r RegionRecord) error {
	verts, err := json.Marshal(r.Vertices)
	if err != nil {
		return fmt.Errorf("encoding region %q: %w", r.Name, err)
	}
	_, err = s.db.Exec(`INSERT INTO regions (name, vertices) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET vertices=excluded.vertices`,
		r.Name, string(verts))
	return err
}

func (s *SQLiteStore) LoadRegion(name string) (RegionRecord, error) {
	var verts string
	err := s.db.QueryRow(`SELECT vertices FROM regions WHERE name = ?`, name).Scan(&verts)
	if errors.Is(err, sql.ErrNoRows) {
		return RegionRecord{}, ErrNotFound
	} else if err != nil {
		return RegionRecord{}, err
	}

	r := RegionRecord{Name: name}
	if err := json.Unmarshal([]byte(verts), &r.Vertices); err != nil {
		return RegionRecord{}, fmt.Errorf("decoding region %q: %w", name, err)
	}
	return r, nil
}

func (s *SQLiteStore) LoadAllRegions() ([]RegionRecord, error) {
	rows, err := s.db.Query(`SELECT name, vertices FROM regions ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regions []RegionRecord
	for rows.Next() {
		var r RegionRecord
		var verts string
		if err := rows.Scan(&r.Name, &verts); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(verts), &r.Vertices); err != nil {
			return nil, fmt.Errorf("decoding region %q: %w", r.Name, err)
		}
		regions = append(regions, r)
	}
	return regions, rows.Err()
}

func (s *SQLiteStore) DeleteRegion(name string) error {
	_, err := s.db.Exec(`DELETE FROM regions WHERE name = ?`, name)
	return err
}

func (s *SQLiteStore) SaveAircraft(ac AircraftRecord) error {
	_, err := s.db.Exec(`INSERT INTO aircraft
		(callsign, aircraft_type, longitude, latitude, vlongitude, vlatitude,
		 heading, altitude, speed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(callsign) DO UPDATE SET
			aircraft_type=excluded.aircraft_type,
			longitude=excluded.longitude, latitude=excluded.latitude,
			vlongitude=excluded.vlongitude, vlatitude=excluded.vlatitude,
			heading=excluded.heading, altitude=excluded.altitude,
			speed=excluded.speed`,
		ac.Callsign, ac.AircraftType, ac.Position[0], ac.Position[1],
		ac.Velocity[0], ac.Velocity[1], ac.Heading, ac.Altitude, ac.Speed)
	return err
}

func (s *SQLiteStore) LoadAllAircraft() ([]AircraftRecord, error) {
	rows, err := s.db.Query(`SELECT callsign, aircraft_type, longitude, latitude,
		vlongitude, vlatitude, heading, altitude, speed
		FROM aircraft ORDER BY callsign`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var aircraft []AircraftRecord
	for rows.Next() {
		var ac AircraftRecord
		var lon, lat, vlon, vlat float64
		if err := rows.Scan(&ac.Callsign, &ac.AircraftType, &lon, &lat,
			&vlon, &vlat, &ac.Heading, &ac.Altitude, &ac.Speed); err != nil {
			return nil, err
		}
		ac.Position = math.Point2LL{lon, lat}
		ac.Velocity = math.Point2LL{vlon, vlat}
		aircraft = append(aircraft, ac)
	}
	return aircraft, rows.Err()
}

func (s *SQLiteStore) DeleteAircraft(callsign string) error {
	_, err := s.db.Exec(`DELETE FROM aircraft WHERE callsign = ?`, callsign)
	return err
}
