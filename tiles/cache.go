// tiles/cache.go
// Copyright(c) 2025 gismap contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package tiles

import (
	"bytes"
	"image"
	"image/png"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/gismap/gismap/log"
)

// Cache is the two-tier tile cache: a bounded in-memory LRU of decoded
// images in front of a persistent on-disk store of PNG files laid out
// as <dir>/<server>/<zoom>/<x>/<y>.png.
//
// Contract: a disk entry older than maxAge is never served (it is
// deleted and reported as a miss), and the total on-disk size never
// exceeds the configured cap except transiently between a write and the
// sweep that follows it.
//
// All methods are safe for concurrent use; prefetch goroutines write
// through the same cache the UI loop reads.
type Cache struct {
	mem      *expirable.LRU[string, image.Image]
	dir      string
	enabled  bool
	maxBytes int64
	maxAge   time.Duration
	lg       *log.Logger
}

// memTileEntries bounds the number of decoded tiles held in memory;
// enough for a handful of full view windows.
const memTileEntries = 128

func NewCache(dir string, enabled bool, maxSizeMB int, maxAge time.Duration, lg *log.Logger) *Cache {
	return &Cache{
		mem:      expirable.NewLRU[string, image.Image](memTileEntries, nil, maxAge),
		dir:      dir,
		enabled:  enabled,
		maxBytes: int64(maxSizeMB) * 1024 * 1024,
		maxAge:   maxAge,
		lg:       lg,
	}
}

// Get returns the cached image for the key, consulting the memory tier
// first and then the disk tier. A disk hit is promoted into memory.
func (c *Cache) Get(k TileKey) (image.Image, bool) {
	if img, ok := c.mem.Get(k.String()); ok {
		return img, true
	}
	img, ok := c.loadDisk(k)
	if ok {
		c.mem.Add(k.String(), img)
	}
	return img, ok
}

// Contains reports whether the key would be a cache hit, without
// decoding anything.
func (c *Cache) Contains(k TileKey) bool {
	if c.mem.Contains(k.String()) {
		return true
	}
	if !c.enabled {
		return false
	}
	fi, err := os.Stat(k.DiskPath(c.dir))
	return err == nil && time.Since(fi.ModTime()) <= c.maxAge
}

func (c *Cache) loadDisk(k TileKey) (image.Image, bool) {
	if !c.enabled {
		return nil, false
	}

	path := k.DiskPath(c.dir)
	fi, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	if time.Since(fi.ModTime()) > c.maxAge {
		// Expired; remove it so the sweep doesn't have to.
		c.lg.Debug("removing stale cached tile", slog.String("path", path))
		_ = os.Remove(path)
		return nil, false
	}

	b, err := os.ReadFile(path)
	if err != nil {
		_ = os.Remove(path)
		return nil, false
	}
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		// Corrupt file: delete and report a miss so it is refetched.
		c.lg.Warn("removing corrupt cached tile", slog.String("path", path),
			slog.Any("error", err))
		_ = os.Remove(path)
		return nil, false
	}
	return img, true
}

// Put inserts the image into the memory tier and writes it through to
// disk, then sweeps the disk tier back under the size cap.
func (c *Cache) Put(k TileKey, img image.Image) {
	c.mem.Add(k.String(), img)
	if !c.enabled {
		return
	}
	if err := c.writeDisk(k, img); err != nil {
		c.lg.Warn("tile cache write failed", slog.String("key", k.String()),
			slog.Any("error", err))
		return
	}
	c.sweep()
}

// PutMemory inserts the image into the memory tier only. Fallback tiles
// go through here: caching a placeholder on disk would suppress retries
// for the full TTL.
func (c *Cache) PutMemory(k TileKey, img image.Image) {
	c.mem.Add(k.String(), img)
}

func (c *Cache) writeDisk(k TileKey, img image.Image) error {
	path := k.DiskPath(c.dir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}

	// Write to a temporary file and rename so a concurrent sweep or
	// read never sees a partial tile.
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		_ = os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return err
	}
	return os.Rename(f.Name(), path)
}

// sweep deletes the oldest-modified tiles until the total size of the
// disk tier is back under the cap. It is best-effort: losing a
// size-accounting race with a concurrent write is fine, and in-progress
// temporary files are never touched.
func (c *Cache) sweep() {
	type tileFile struct {
		path    string
		size    int64
		modTime time.Time
	}
	var files []tileFile
	var totalSize int64

	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".png") {
			return nil
		}
		if fi, err := d.Info(); err == nil {
			files = append(files, tileFile{path: path, size: fi.Size(), modTime: fi.ModTime()})
			totalSize += fi.Size()
		}
		return nil
	})
	if err != nil || totalSize <= c.maxBytes {
		return
	}

	slices.SortFunc(files, func(a, b tileFile) int {
		return a.modTime.Compare(b.modTime)
	})

	removed := 0
	for _, f := range files {
		if totalSize <= c.maxBytes {
			break
		}
		if err := os.Remove(f.path); err == nil {
			totalSize -= f.size
			removed++
		}
	}
	c.lg.Debug("tile cache sweep", slog.Int("removed", removed),
		slog.Int64("size", totalSize), slog.Int64("cap", c.maxBytes))
}

// Size returns the total byte size of the disk tier.
func (c *Cache) Size() int64 {
	var total int64
	_ = filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			if fi, err := d.Info(); err == nil {
				total += fi.Size()
			}
		}
		return nil
	})
	return total
}

// Clear drops both tiers.
func (c *Cache) Clear() error {
	c.mem.Purge()
	if !c.enabled {
		return nil
	}
	if err := os.RemoveAll(c.dir); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0755)
}
