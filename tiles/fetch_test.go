// tiles/fetch_test.go
// Copyright(c) 2025 gismap contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package tiles

import (
	"bytes"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gismap/gismap/log"
	"github.com/gismap/gismap/math"
	"github.com/gismap/gismap/view"
)

// tileServer serves a solid PNG tile for any URL and counts requests
// per path.
func tileServer(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, testTile(color.RGBA{B: 255, A: 255}, 64)); err != nil {
		t.Fatal(err)
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(buf.Bytes())
	}))
}

func testLoader(t *testing.T, url string) *Loader {
	t.Helper()
	servers := map[string]Server{
		"test": {Name: "test", URLTemplate: url + "/{z}/{x}/{y}.png"},
	}
	cache := NewCache(t.TempDir(), true, 100, 7*24*time.Hour, log.Discard())
	return NewLoader(cache, servers, "test", 256, 10*time.Second, 1, 25, log.Discard())
}

// drain pumps Update until all pending fetches have completed or the
// deadline passes.
func drain(t *testing.T, l *Loader, deadline time.Duration) {
	t.Helper()
	stop := time.Now().Add(deadline)
	for l.Pending() > 0 {
		if time.Now().After(stop) {
			t.Fatalf("%d fetches still pending after %v", l.Pending(), deadline)
		}
		l.Update()
		time.Sleep(5 * time.Millisecond)
	}
	l.Update()
}

func hanoiView() *view.Transform {
	return view.NewTransform(math.Point2LL{105.85, 21.03}, 12, 1200, 800, 256, 3, 18)
}

func TestLoaderWindow(t *testing.T) {
	l := testLoader(t, "http://unused.invalid")
	tf := hanoiView()

	window := l.Window(tf)
	if len(window) == 0 {
		t.Fatalf("empty tile window")
	}

	center, ok := window[Offset{0, 0}]
	if !ok {
		t.Fatalf("window missing center tile")
	}
	cx, cy := math.TileIndex(tf.Center(), tf.Zoom())
	if center.X != cx || center.Y != cy {
		t.Errorf("center tile (%d,%d), expected (%d,%d)", center.X, center.Y, cx, cy)
	}

	for off, k := range window {
		if !k.Valid() {
			t.Errorf("invalid key %v in window", k)
		}
		if k.X != cx+off.DX || k.Y != cy+off.DY {
			t.Errorf("offset %v maps to tile (%d,%d)", off, k.X, k.Y)
		}
	}
}

func TestLoaderWindowClipsAtPole(t *testing.T) {
	l := testLoader(t, "http://unused.invalid")
	tf := view.NewTransform(math.Point2LL{0, 85}, 4, 1200, 800, 256, 3, 18)

	for _, k := range l.Window(tf) {
		if k.Y < 0 || k.Y >= math.NumTiles(4) {
			t.Errorf("out-of-range tile %v in window", k)
		}
	}
}

func TestLoaderFallbackThenReplace(t *testing.T) {
	var hits atomic.Int64
	srv := tileServer(t, &hits)
	defer srv.Close()

	l := testLoader(t, srv.URL)
	tf := hanoiView()
	window := l.Window(tf)
	l.Load(window)

	// Every window slot gets an immediate placeholder.
	if len(l.Tiles()) != len(window) {
		t.Fatalf("placed %d tiles, window has %d", len(l.Tiles()), len(window))
	}
	if l.Pending() != len(window) {
		t.Errorf("%d pending fetches, expected %d", l.Pending(), len(window))
	}

	drain(t, l, 5*time.Second)

	// All placeholders replaced by downloads.
	for off, img := range l.Tiles() {
		if img.Bounds().Dx() != 64 {
			t.Errorf("tile at %v still a placeholder", off)
		}
	}
	if got := hits.Load(); got != int64(len(window)) {
		t.Errorf("%d server hits for %d tiles", got, len(window))
	}
}

func TestLoaderDedup(t *testing.T) {
	var hits atomic.Int64
	srv := tileServer(t, &hits)
	defer srv.Close()

	l := testLoader(t, srv.URL)
	window := map[Offset]TileKey{
		{0, 0}: {Server: "test", Zoom: 12, X: 3252, Y: 1803},
	}

	// Load the same window repeatedly before the fetch completes.
	l.Load(window)
	l.Load(window)
	l.Load(window)
	if l.Pending() != 1 {
		t.Fatalf("%d pending fetches for one tile", l.Pending())
	}

	drain(t, l, 5*time.Second)
	if got := hits.Load(); got != 1 {
		t.Errorf("%d server hits, expected 1", got)
	}

	// A later Load serves from cache without refetching.
	l.Load(window)
	if l.Pending() != 0 {
		t.Errorf("cache hit still started a fetch")
	}
}

func TestLoaderStaleDiscard(t *testing.T) {
	var hits atomic.Int64
	srv := tileServer(t, &hits)
	defer srv.Close()

	l := testLoader(t, srv.URL)
	k1 := TileKey{Server: "test", Zoom: 12, X: 3252, Y: 1803}
	k2 := TileKey{Server: "test", Zoom: 12, X: 3300, Y: 1850}

	l.Load(map[Offset]TileKey{{0, 0}: k1})

	// Pan far away before the fetch for k1 lands.
	l.Load(map[Offset]TileKey{{0, 0}: k2})

	drain(t, l, 5*time.Second)

	// The displayed tile must be k2's image, never k1's.
	img := l.Tiles()[Offset{0, 0}]
	if img == nil {
		t.Fatalf("no tile placed")
	}

	// k1's download still landed in the cache for later.
	if !l.cache.Contains(k1) {
		t.Errorf("stale download not written to cache")
	}

	// Panning back serves k1 from cache immediately.
	l.Load(map[Offset]TileKey{{0, 0}: k1})
	if l.Pending() != 0 {
		t.Errorf("refetched a tile the stale completion already cached")
	}
	if got := l.Tiles()[Offset{0, 0}]; got.Bounds().Dx() != 64 {
		t.Errorf("cached stale tile not served")
	}
}

func TestLoaderFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "tile missing", http.StatusNotFound)
	}))
	defer srv.Close()

	l := testLoader(t, srv.URL)
	k := TileKey{Server: "test", Zoom: 12, X: 3252, Y: 1803}
	l.Load(map[Offset]TileKey{{0, 0}: k})
	drain(t, l, 5*time.Second)

	// The failure produced a fallback tile, held in memory only.
	if img := l.Tiles()[Offset{0, 0}]; img == nil {
		t.Fatalf("no tile placed after fetch failure")
	}
	if _, err := os.Stat(k.DiskPath(l.cache.dir)); err == nil {
		t.Errorf("fallback tile written to disk")
	}

	// Memory tier serves the fallback, so the next Load doesn't hammer
	// the server.
	l.Load(map[Offset]TileKey{{0, 0}: k})
	if l.Pending() != 0 {
		t.Errorf("failed tile refetched while fallback cached in memory")
	}
}

func TestLoaderOnPlace(t *testing.T) {
	var hits atomic.Int64
	srv := tileServer(t, &hits)
	defer srv.Close()

	l := testLoader(t, srv.URL)
	var notified atomic.Int64
	l.OnPlace(func() { notified.Add(1) })

	l.Load(map[Offset]TileKey{{0, 0}: {Server: "test", Zoom: 12, X: 3252, Y: 1803}})
	drain(t, l, 5*time.Second)

	if notified.Load() != 1 {
		t.Errorf("OnPlace fired %d times, expected 1", notified.Load())
	}
}

func TestLoaderSetServer(t *testing.T) {
	l := testLoader(t, "http://unused.invalid")
	if l.SetServer("nonexistent") {
		t.Errorf("SetServer accepted an unknown server")
	}
	if !l.SetServer("test") {
		t.Errorf("SetServer rejected a known server")
	}
	if l.ActiveServer() != "test" {
		t.Errorf("active server %q", l.ActiveServer())
	}
}

func TestLoaderPrefetch(t *testing.T) {
	var hits atomic.Int64
	srv := tileServer(t, &hits)
	defer srv.Close()

	l := testLoader(t, srv.URL)
	tf := hanoiView()
	cx, cy := math.TileIndex(tf.Center(), tf.Zoom())

	n := l.Prefetch(tf)
	if n != 8 {
		t.Fatalf("prefetched %d tiles, expected the 8-tile ring", n)
	}

	// Prefetch runs in the background; poll the cache.
	ring := TileKey{Server: "test", Zoom: tf.Zoom(), X: cx + 1, Y: cy + 1}
	deadline := time.Now().Add(5 * time.Second)
	for !l.cache.Contains(ring) {
		if time.Now().After(deadline) {
			t.Fatalf("prefetched tile never reached the cache")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Center tile is never part of the ring.
	if l.cache.Contains(TileKey{Server: "test", Zoom: tf.Zoom(), X: cx, Y: cy}) {
		t.Errorf("prefetch fetched the center tile")
	}
}

func TestLoaderPrefetchSkipsCached(t *testing.T) {
	var hits atomic.Int64
	srv := tileServer(t, &hits)
	defer srv.Close()

	l := testLoader(t, srv.URL)
	tf := hanoiView()
	cx, cy := math.TileIndex(tf.Center(), tf.Zoom())

	// Pre-populate the whole ring.
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			k := TileKey{Server: "test", Zoom: tf.Zoom(), X: cx + dx, Y: cy + dy}
			l.cache.Put(k, testTile(color.White, 64))
		}
	}

	if n := l.Prefetch(tf); n != 0 {
		t.Errorf("prefetched %d cached tiles", n)
	}
	if hits.Load() != 0 {
		t.Errorf("server hit for fully cached ring")
	}
}
