// sim/manager.go
// Copyright(c) 2025 gismap contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/gismap/gismap/log"
	"github.com/gismap/gismap/math"
	"github.com/gismap/gismap/rand"
	"github.com/gismap/gismap/store"
	"github.com/gismap/gismap/util"
	"github.com/gismap/gismap/view"
)

// Manager owns the simulated aircraft: it advances them each tick,
// classifies them against the region of interest, and tracks the
// user's selection. The aircraft slice is kept in creation order;
// the last element draws topmost.
type Manager struct {
	aircraft []*Aircraft
	selected *Aircraft

	region     []math.Point2LL
	regionName string

	// bounds is the box aircraft bounce around in, independent of the
	// classification region.
	bounds math.Extent2D
	bounce bool
	speed  float64 // max per-tick velocity component, degrees

	updateInterval time.Duration

	store store.Store
	es    *EventStream
	lg    *log.Logger
}

func NewManager(st store.Store, es *EventStream, bounds math.Extent2D, bounce bool,
	speed float64, lg *log.Logger) *Manager {
	return &Manager{
		bounds:         bounds,
		bounce:         bounce,
		speed:          speed,
		updateInterval: time.Second,
		store:          st,
		es:             es,
		lg:             lg,
	}
}

func (m *Manager) UpdateInterval() time.Duration { return m.updateInterval }

func (m *Manager) SetUpdateInterval(d time.Duration) {
	if d > 0 {
		m.updateInterval = d
	}
}

// Restore loads the persisted region and aircraft. Missing records are
// not an error; a fresh database just yields an empty simulation.
func (m *Manager) Restore(regionName string, defaultRegion []math.Point2LL) error {
	m.regionName = regionName
	m.region = defaultRegion

	if r, err := m.store.LoadRegion(regionName); err == nil {
		m.region = r.Vertices
	} else if err := m.store.SaveRegion(store.RegionRecord{Name: regionName,
		Vertices: defaultRegion}); err != nil {
		return fmt.Errorf("saving default region: %w", err)
	}

	records, err := m.store.LoadAllAircraft()
	if err != nil {
		return fmt.Errorf("loading aircraft: %w", err)
	}
	for _, rec := range records {
		ac := &Aircraft{
			Callsign:     rec.Callsign,
			AircraftType: rec.AircraftType,
			Position:     rec.Position,
			Velocity:     rec.Velocity,
			Heading:      rec.Heading,
			Altitude:     rec.Altitude,
			Speed:        rec.Speed,
			Moving:       true,
		}
		m.aircraft = append(m.aircraft, ac)
	}
	m.classifyAll()

	m.lg.Info("restored simulation", slog.Int("aircraft", len(m.aircraft)),
		slog.String("region", regionName))
	return nil
}

// Shutdown persists the current aircraft and closes nothing; the store
// is owned by the caller.
func (m *Manager) Shutdown() error {
	for _, ac := range m.aircraft {
		rec := store.AircraftRecord{
			Callsign:     ac.Callsign,
			AircraftType: ac.AircraftType,
			Position:     ac.Position,
			Velocity:     ac.Velocity,
			Heading:      ac.Heading,
			Altitude:     ac.Altitude,
			Speed:        ac.Speed,
		}
		if err := m.store.SaveAircraft(rec); err != nil {
			return fmt.Errorf("saving %s: %w", ac.Callsign, err)
		}
	}
	return nil
}

var aircraftTypes = []string{"A321", "A350", "B738", "B789", "AT76", "E190"}

// SpawnAircraft creates n aircraft at random positions in the movement
// box with random velocities.
func (m *Manager) SpawnAircraft(n int) {
	for i := 0; i < n; i++ {
		callsign := fmt.Sprintf("AC%d", rand.IntnRange(1000, 9999))
		if m.Aircraft(callsign) != nil {
			i--
			continue
		}
		pos := math.Point2LL{
			math.Lerp(rand.Float64(), m.bounds.P0[0], m.bounds.P1[0]),
			math.Lerp(rand.Float64(), m.bounds.P0[1], m.bounds.P1[1]),
		}
		vel := math.Point2LL{
			rand.Float64Range(-m.speed, m.speed),
			rand.Float64Range(-m.speed, m.speed),
		}
		m.AddAircraft(&Aircraft{
			Callsign:     callsign,
			AircraftType: aircraftTypes[rand.Intn(len(aircraftTypes))],
			Position:     pos,
			Velocity:     vel,
			Altitude:     float64(rand.IntnRange(50, 390)) * 100,
			Speed:        float64(rand.IntnRange(180, 480)),
		})
	}
}

// AddAircraft registers an aircraft, classifies it, and announces it.
func (m *Manager) AddAircraft(ac *Aircraft) {
	ac.Moving = true
	if hdg, ok := math.VelocityHeading(ac.Velocity[0], ac.Velocity[1]); ok {
		ac.Heading = hdg
	}
	m.classify(ac)
	m.aircraft = append(m.aircraft, ac)
	m.es.Post(Event{Type: AircraftCreatedEvent, Callsign: ac.Callsign,
		State: ac.State, Position: ac.Position})
}

// RemoveAircraft deletes the aircraft from the simulation and the
// store.
func (m *Manager) RemoveAircraft(callsign string) error {
	idx := slices.IndexFunc(m.aircraft, func(ac *Aircraft) bool {
		return ac.Callsign == callsign
	})
	if idx == -1 {
		return fmt.Errorf("%s: unknown aircraft", callsign)
	}
	if m.selected == m.aircraft[idx] {
		m.selected = nil
	}
	m.aircraft = util.DeleteSliceElement(m.aircraft, idx)
	m.es.Post(Event{Type: AircraftRemovedEvent, Callsign: callsign})
	return m.store.DeleteAircraft(callsign)
}

// Aircraft returns the aircraft with the given callsign, or nil.
func (m *Manager) Aircraft(callsign string) *Aircraft {
	for _, ac := range m.aircraft {
		if ac.Callsign == callsign {
			return ac
		}
	}
	return nil
}

// All returns the aircraft in creation order; the caller must not
// mutate the slice.
func (m *Manager) All() []*Aircraft {
	return m.aircraft
}

func (m *Manager) Selected() *Aircraft { return m.selected }

func (m *Manager) Region() []math.Point2LL { return m.region }

// SetRegion replaces the classification polygon and immediately
// reclassifies every aircraft against it.
func (m *Manager) SetRegion(vertices []math.Point2LL) error {
	m.region = vertices
	m.classifyAll()
	return m.store.SaveRegion(store.RegionRecord{Name: m.regionName, Vertices: vertices})
}

// Update advances every moving aircraft one step and reclassifies them.
func (m *Manager) Update() {
	for _, ac := range m.aircraft {
		if ac.Moving {
			ac.Update(m.bounds, m.bounce)
		}
	}
	m.classifyAll()
}

// StartMovement resumes movement for every aircraft.
func (m *Manager) StartMovement() {
	for _, ac := range m.aircraft {
		ac.Moving = true
	}
}

// StopMovement freezes every aircraft and persists their state.
func (m *Manager) StopMovement() error {
	for _, ac := range m.aircraft {
		ac.Moving = false
	}
	return m.Shutdown()
}

// Clear removes every aircraft from the simulation and the store.
func (m *Manager) Clear() error {
	for _, ac := range m.aircraft {
		if err := m.store.DeleteAircraft(ac.Callsign); err != nil {
			return fmt.Errorf("deleting %s: %w", ac.Callsign, err)
		}
		m.es.Post(Event{Type: AircraftRemovedEvent, Callsign: ac.Callsign})
	}
	m.aircraft = nil
	m.selected = nil
	return nil
}

// classify sets the aircraft's region-membership state. Selection is
// sticky: a selected aircraft keeps that state regardless of where it
// moves, until it is deselected.
func (m *Manager) classify(ac *Aircraft) {
	if ac.State == StateSelected {
		return
	}
	s := StateNormal
	if math.PointInPolygon(ac.Position, m.region) {
		s = StateInRegion
	}
	if prev, changed := ac.SetState(s); changed {
		m.es.Post(Event{Type: StateChangedEvent, Callsign: ac.Callsign,
			State: s, PrevState: prev, Position: ac.Position})
	}
}

func (m *Manager) classifyAll() {
	for _, ac := range m.aircraft {
		m.classify(ac)
	}
}

// Select marks the aircraft as selected, clearing any previous
// selection. The previously selected aircraft is reclassified right
// away so it does not linger in the selected state.
func (m *Manager) Select(callsign string) error {
	ac := m.Aircraft(callsign)
	if ac == nil {
		return fmt.Errorf("%s: unknown aircraft", callsign)
	}
	if ac == m.selected {
		return nil
	}
	m.Deselect()

	m.selected = ac
	prev, _ := ac.SetState(StateSelected)
	m.es.Post(Event{Type: AircraftSelectedEvent, Callsign: ac.Callsign,
		State: StateSelected, PrevState: prev, Position: ac.Position})
	return nil
}

// Deselect clears the selection, if any, and reclassifies the aircraft.
func (m *Manager) Deselect() {
	if m.selected == nil {
		return
	}
	ac := m.selected
	m.selected = nil
	ac.State = StateNormal
	m.classify(ac)
	m.es.Post(Event{Type: AircraftDeselectedEvent, Callsign: ac.Callsign,
		State: ac.State, Position: ac.Position})
}

// AircraftAt returns the topmost aircraft within radius pixels of the
// given screen position, or nil.
func (m *Manager) AircraftAt(tf *view.Transform, x, y float64, radius float64) *Aircraft {
	for i := len(m.aircraft) - 1; i >= 0; i-- {
		ac := m.aircraft[i]
		ax, ay := tf.GeoToScreen(ac.Position)
		if math.Sqr(ax-x)+math.Sqr(ay-y) <= math.Sqr(radius) {
			return ac
		}
	}
	return nil
}
