// config/config.go
// Copyright(c) 2025 gismap contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/gismap/gismap/math"
)

// Config holds all configuration for gismap.
type Config struct {
	Map      MapConfig
	Cache    CacheConfig
	Sim      SimConfig
	DBPath   string
	LogLevel string
}

// MapConfig holds the initial view and tile source settings.
type MapConfig struct {
	Center         math.Point2LL
	Zoom           int
	MinZoom        int
	MaxZoom        int
	TileSize       int
	TileServer     string
	PrefetchRadius int
	PrefetchCap    int
}

// CacheConfig holds the tile cache settings.
type CacheConfig struct {
	Enabled   bool
	Dir       string
	MaxSizeMB int
	MaxAgeDay int
}

// SimConfig holds the aircraft simulation settings.
type SimConfig struct {
	UpdateMS     int
	NumAircraft  int
	Speed        float64 // max per-update velocity component, degrees
	SelectRadius float64 // pixels
	Bounce       bool
	RegionName   string
	Region       []math.Point2LL
	Bounds       math.Extent2D
}

// Load reads configuration from an optional YAML config file and
// GISMAP_* environment variables, falling back to defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("map.center_longitude", 105.85)
	v.SetDefault("map.center_latitude", 21.03)
	v.SetDefault("map.zoom", 12)
	v.SetDefault("map.min_zoom", 3)
	v.SetDefault("map.max_zoom", 18)
	v.SetDefault("map.tile_size", 256)
	v.SetDefault("map.tile_server", "openstreetmap")
	v.SetDefault("map.prefetch_radius", 1)
	v.SetDefault("map.prefetch_cap", 25)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.dir", "")
	v.SetDefault("cache.max_size_mb", 100)
	v.SetDefault("cache.max_age_days", 7)

	v.SetDefault("sim.update_ms", 1000)
	v.SetDefault("sim.num_aircraft", 10)
	v.SetDefault("sim.speed", 0.001)
	v.SetDefault("sim.select_radius", 15)
	v.SetDefault("sim.bounce", true)
	v.SetDefault("sim.region_name", "hanoi")
	v.SetDefault("sim.region_west", 105.7)
	v.SetDefault("sim.region_south", 20.8)
	v.SetDefault("sim.region_east", 106.1)
	v.SetDefault("sim.region_north", 21.3)
	v.SetDefault("sim.bounds_west", 105.0)
	v.SetDefault("sim.bounds_south", 20.0)
	v.SetDefault("sim.bounds_east", 107.0)
	v.SetDefault("sim.bounds_north", 22.0)

	v.SetDefault("db_path", "gismap.db")
	v.SetDefault("log_level", "info")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/gismap")
	v.AddConfigPath(".")

	if path := os.Getenv("GISMAP_CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// No config file is fine; defaults plus environment apply.
	}

	v.SetEnvPrefix("GISMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Map: MapConfig{
			Center: math.Point2LL{
				v.GetFloat64("map.center_longitude"),
				v.GetFloat64("map.center_latitude"),
			},
			Zoom:           v.GetInt("map.zoom"),
			MinZoom:        v.GetInt("map.min_zoom"),
			MaxZoom:        v.GetInt("map.max_zoom"),
			TileSize:       v.GetInt("map.tile_size"),
			TileServer:     v.GetString("map.tile_server"),
			PrefetchRadius: v.GetInt("map.prefetch_radius"),
			PrefetchCap:    v.GetInt("map.prefetch_cap"),
		},
		Cache: CacheConfig{
			Enabled:   v.GetBool("cache.enabled"),
			Dir:       v.GetString("cache.dir"),
			MaxSizeMB: v.GetInt("cache.max_size_mb"),
			MaxAgeDay: v.GetInt("cache.max_age_days"),
		},
		Sim: SimConfig{
			UpdateMS:     v.GetInt("sim.update_ms"),
			NumAircraft:  v.GetInt("sim.num_aircraft"),
			Speed:        v.GetFloat64("sim.speed"),
			SelectRadius: v.GetFloat64("sim.select_radius"),
			Bounce:       v.GetBool("sim.bounce"),
			RegionName:   v.GetString("sim.region_name"),
			Region: []math.Point2LL{
				{v.GetFloat64("sim.region_west"), v.GetFloat64("sim.region_south")},
				{v.GetFloat64("sim.region_east"), v.GetFloat64("sim.region_south")},
				{v.GetFloat64("sim.region_east"), v.GetFloat64("sim.region_north")},
				{v.GetFloat64("sim.region_west"), v.GetFloat64("sim.region_north")},
			},
			Bounds: math.MakeExtent2D(
				math.Point2LL{v.GetFloat64("sim.bounds_west"), v.GetFloat64("sim.bounds_south")},
				math.Point2LL{v.GetFloat64("sim.bounds_east"), v.GetFloat64("sim.bounds_north")}),
		},
		DBPath:   v.GetString("db_path"),
		LogLevel: v.GetString("log_level"),
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Map.MinZoom < 0 || cfg.Map.MaxZoom > 30 || cfg.Map.MinZoom > cfg.Map.MaxZoom {
		return fmt.Errorf("zoom range [%d, %d] out of order", cfg.Map.MinZoom, cfg.Map.MaxZoom)
	}
	if cfg.Map.Zoom < cfg.Map.MinZoom || cfg.Map.Zoom > cfg.Map.MaxZoom {
		return fmt.Errorf("zoom %d outside [%d, %d]", cfg.Map.Zoom, cfg.Map.MinZoom, cfg.Map.MaxZoom)
	}
	if cfg.Map.TileSize <= 0 {
		return fmt.Errorf("tile_size must be greater than 0")
	}
	if cfg.Cache.MaxSizeMB < 0 || cfg.Cache.MaxAgeDay <= 0 {
		return fmt.Errorf("cache size and age must be positive")
	}
	if cfg.Sim.UpdateMS <= 0 {
		return fmt.Errorf("update_ms must be greater than 0")
	}
	if cfg.Sim.SelectRadius <= 0 {
		return fmt.Errorf("select_radius must be greater than 0")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", cfg.LogLevel)
	}

	return nil
}
