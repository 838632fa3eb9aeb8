// cmd/gismap/main.go
// Copyright(c) 2025 gismap contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// gismap is a slippy-map aircraft viewer: it keeps a tile-backed map
// view centered over a configured area and advances a small aircraft
// simulation over it, classifying aircraft against a region of
// interest and persisting everything across runs.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gismap/gismap/config"
	"github.com/gismap/gismap/log"
	"github.com/gismap/gismap/sim"
	"github.com/gismap/gismap/store"
	"github.com/gismap/gismap/tiles"
	"github.com/gismap/gismap/view"
)

// repaintInterval paces tile completion handling and prefetch.
const repaintInterval = 100 * time.Millisecond

func main() {
	logLevel := flag.String("loglevel", "", "logging level: debug, info, warn, error")
	logDir := flag.String("logdir", "", "log file directory")
	resetSession := flag.Bool("resetsession", false, "ignore the saved view from the last run")
	exportTrails := flag.String("exporttrails", "", "write aircraft trails to the given file on exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "gismap: %v\n", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	lg := log.New(cfg.LogLevel, *logDir)
	lg.Info("starting gismap", slog.Any("map", cfg.Map), slog.String("db", cfg.DBPath))

	if err := run(cfg, *resetSession, *exportTrails, lg); err != nil {
		lg.Errorf("%v", err)
		fmt.Fprintf(os.Stderr, "gismap: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, resetSession bool, exportTrails string, lg *log.Logger) error {
	st, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	es := sim.NewEventStream(lg)
	defer es.Destroy()
	sub := es.Subscribe()

	mgr := sim.NewManager(st, es, cfg.Sim.Bounds, cfg.Sim.Bounce, cfg.Sim.Speed, lg)
	mgr.SetUpdateInterval(time.Duration(cfg.Sim.UpdateMS) * time.Millisecond)
	if err := mgr.Restore(cfg.Sim.RegionName, cfg.Sim.Region); err != nil {
		return fmt.Errorf("restoring simulation: %w", err)
	}
	if len(mgr.All()) == 0 {
		mgr.SpawnAircraft(cfg.Sim.NumAircraft)
	}

	center, zoom, server := cfg.Map.Center, cfg.Map.Zoom, cfg.Map.TileServer
	if !resetSession {
		if s, ok := store.LoadSession(); ok {
			center, zoom, server = s.Center, s.Zoom, s.TileServer
			lg.Info("restored session", slog.Any("center", center), slog.Int("zoom", zoom))
		}
	}

	tf := view.NewTransform(center, zoom, 1200, 800, cfg.Map.TileSize,
		cfg.Map.MinZoom, cfg.Map.MaxZoom)

	cacheDir := cfg.Cache.Dir
	if cacheDir == "" {
		cd, err := os.UserCacheDir()
		if err != nil {
			return fmt.Errorf("finding cache dir: %w", err)
		}
		cacheDir = filepath.Join(cd, "gismap", "tiles")
	}
	cache := tiles.NewCache(cacheDir, cfg.Cache.Enabled, cfg.Cache.MaxSizeMB,
		time.Duration(cfg.Cache.MaxAgeDay)*24*time.Hour, lg)

	loader := tiles.NewLoader(cache, tiles.DefaultServers(), server, cfg.Map.TileSize,
		15*time.Second, cfg.Map.PrefetchRadius, cfg.Map.PrefetchCap, lg)

	// Reload the tile window whenever the view moves.
	viewDirty := true
	tf.OnChange(func() { viewDirty = true })

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	repaint := time.NewTicker(repaintInterval)
	defer repaint.Stop()
	advance := time.NewTicker(mgr.UpdateInterval())
	defer advance.Stop()

	lg.Infof("running with %d aircraft", len(mgr.All()))

	for {
		select {
		case <-repaint.C:
			if viewDirty {
				viewDirty = false
				loader.Load(loader.Window(tf))
				loader.Prefetch(tf)
			}
			loader.Update()

		case <-advance.C:
			mgr.Update()
			for _, e := range sub.Get() {
				if e.Type == sim.StateChangedEvent {
					lg.Info("aircraft state change", slog.String("callsign", e.Callsign),
						slog.String("from", e.PrevState.String()),
						slog.String("to", e.State.String()),
						slog.Any("position", e.Position))
				}
			}

		case <-sigs:
			lg.Info("shutting down")
			if exportTrails != "" {
				if err := mgr.ExportTrails(exportTrails); err != nil {
					lg.Warnf("exporting trails: %v", err)
				}
			}
			if err := mgr.Shutdown(); err != nil {
				lg.Warnf("saving aircraft: %v", err)
			}
			if err := store.SaveSession(store.Session{
				Center:     tf.Center(),
				Zoom:       tf.Zoom(),
				TileServer: loader.ActiveServer(),
			}); err != nil {
				lg.Warnf("saving session: %v", err)
			}
			return nil
		}
	}
}
