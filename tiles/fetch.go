// tiles/fetch.go
// Copyright(c) 2025 gismap contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package tiles

import (
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"time"

	_ "image/jpeg" // satellite servers return JPEG tiles
	_ "image/png"

	"golang.org/x/sync/errgroup"

	"github.com/gismap/gismap/log"
	"github.com/gismap/gismap/math"
	"github.com/gismap/gismap/view"
)

// Loader resolves tile requests for the current view window: cache hit
// is served synchronously, a miss gets an immediate fallback tile plus
// a deduplicated asynchronous network fetch whose completion is applied
// on a later Update call.
//
// Loader methods must be called from the single UI goroutine. Network
// downloads run in their own goroutines but only communicate back over
// the completions channel; all Loader state is mutated on the UI side.
type Loader struct {
	cache    *Cache
	servers  map[string]Server
	active   string
	tileSize int
	client   *http.Client

	prefetchRadius int
	prefetchCap    int

	// pending maps in-flight request URLs to the viewport offset that
	// requested them, deduplicating concurrent requests for a tile.
	pending     map[string]Offset
	needed      map[Offset]TileKey
	placed      map[Offset]image.Image
	completions chan completion

	onPlace func()
	lg      *log.Logger
}

type completion struct {
	url      string
	key      TileKey
	off      Offset
	img      image.Image
	fallback bool
}

func NewLoader(cache *Cache, servers map[string]Server, active string, tileSize int,
	timeout time.Duration, prefetchRadius, prefetchCap int, lg *log.Logger) *Loader {
	if timeout < 5*time.Second {
		timeout = 5 * time.Second
	}
	return &Loader{
		cache:          cache,
		servers:        servers,
		active:         active,
		tileSize:       tileSize,
		client:         &http.Client{Timeout: timeout},
		prefetchRadius: prefetchRadius,
		prefetchCap:    prefetchCap,
		pending:        make(map[string]Offset),
		needed:         make(map[Offset]TileKey),
		placed:         make(map[Offset]image.Image),
		completions:    make(chan completion, 64),
		lg:             lg,
	}
}

// OnPlace registers a callback invoked after every tile placement, so
// the renderer can redraw. It may be invoked redundantly.
func (l *Loader) OnPlace(fn func()) {
	l.onPlace = fn
}

func (l *Loader) ActiveServer() string {
	return l.active
}

// SetServer switches the active tile server. Cache keys include the
// server name, so switching never mixes imagery between servers.
func (l *Loader) SetServer(name string) bool {
	if _, ok := l.servers[name]; !ok {
		return false
	}
	l.active = name
	return true
}

// Window computes the tile window covering the given view: the grid of
// (offset, key) pairs around the view's center tile. Out-of-range tiles
// at the poles and the antimeridian are simply absent from the window.
func (l *Loader) Window(tf *view.Transform) map[Offset]TileKey {
	zoom := tf.Zoom()
	cx, cy := math.TileIndex(tf.Center(), zoom)
	w, h := tf.ViewportSize()

	// Enough tiles to cover the viewport with a margin, but bounded so
	// a huge window doesn't flood the fetch queue.
	tilesX := min(w/l.tileSize+3, 8)
	tilesY := min(h/l.tileSize+3, 6)

	window := make(map[Offset]TileKey)
	for dx := -tilesX / 2; dx <= tilesX/2; dx++ {
		for dy := -tilesY / 2; dy <= tilesY/2; dy++ {
			k := TileKey{Server: l.active, Zoom: zoom, X: cx + dx, Y: cy + dy}
			if k.Valid() {
				window[Offset{dx, dy}] = k
			}
		}
	}
	return window
}

// Load makes the given window the needed tile set, resolving every
// entry: from cache if possible, otherwise placing a fallback tile and
// starting an asynchronous fetch. Tiles from a previous window keep
// their images if their key is unchanged.
func (l *Loader) Load(window map[Offset]TileKey) {
	needed := make(map[Offset]TileKey, len(window))
	placed := make(map[Offset]image.Image, len(window))

	for off, k := range window {
		if !k.Valid() {
			continue
		}
		needed[off] = k

		// Unchanged from the previous window: keep what's on screen.
		if prev, ok := l.needed[off]; ok && prev == k {
			if img, ok := l.placed[off]; ok {
				placed[off] = img
				continue
			}
		}

		if img, ok := l.cache.Get(k); ok {
			placed[off] = img
			continue
		}
		placed[off] = Fallback(k, l.tileSize)
		l.fetch(k, off)
	}

	l.needed = needed
	l.placed = placed
}

// Tiles returns the current tile images by viewport offset, for
// rendering.
func (l *Loader) Tiles() map[Offset]image.Image {
	return l.placed
}

// Pending returns the number of fetches in flight.
func (l *Loader) Pending() int {
	return len(l.pending)
}

func (l *Loader) fetch(k TileKey, off Offset) {
	srv, ok := l.servers[k.Server]
	if !ok {
		return
	}
	url := srv.TileURL(k)
	if _, inflight := l.pending[url]; inflight {
		// Already being downloaded for another viewport pass.
		return
	}
	l.pending[url] = off

	go func() {
		img, err := l.fetchImage(url)
		if err != nil {
			l.lg.Info("tile fetch failed", slog.String("url", url), slog.Any("error", err))
			l.completions <- completion{url: url, key: k, off: off, img: Fallback(k, l.tileSize), fallback: true}
			return
		}
		l.completions <- completion{url: url, key: k, off: off, img: img}
	}()
}

func (l *Loader) fetchImage(url string) (image.Image, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", referer)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %s", url, resp.Status)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: decoding tile: %w", url, err)
	}
	return img, nil
}

// Update drains completed fetches and applies them. Results are applied
// in completion order; a completion whose offset no longer maps to its
// key (the view panned or zoomed away during the round trip) is
// discarded silently, though successful downloads still write through
// to the cache for later use. Returns the number of tiles placed.
func (l *Loader) Update() int {
	placed := 0
	for {
		select {
		case c := <-l.completions:
			delete(l.pending, c.url)

			if c.fallback {
				// Memory tier only: a placeholder written to disk would
				// mask the real tile for the whole TTL.
				l.cache.PutMemory(c.key, c.img)
			} else {
				l.cache.Put(c.key, c.img)
			}

			if k, ok := l.needed[c.off]; ok && k == c.key {
				l.placed[c.off] = c.img
				placed++
				if l.onPlace != nil {
					l.onPlace()
				}
			} else {
				l.lg.Debug("discarding stale tile", slog.String("key", c.key.String()))
			}
		default:
			return placed
		}
	}
}

// prefetchWorkers bounds concurrent prefetch downloads so a prefetch
// burst cannot starve the main fetch path.
const prefetchWorkers = 4

// Prefetch requests a ring of tiles around the view's center tile that
// are not yet cached, writing them to the cache in the background. At
// most prefetchCap tiles are requested per pass. Prefetched tiles never
// replace tiles already displayed; they only seed the cache.
func (l *Loader) Prefetch(tf *view.Transform) int {
	zoom := tf.Zoom()
	cx, cy := math.TileIndex(tf.Center(), zoom)

	var targets []TileKey
	for r := 1; r <= l.prefetchRadius && len(targets) < l.prefetchCap; r++ {
		for dx := -r; dx <= r && len(targets) < l.prefetchCap; dx++ {
			for dy := -r; dy <= r && len(targets) < l.prefetchCap; dy++ {
				// Ring border only; inner tiles were covered at smaller radii.
				if math.Abs(dx) != r && math.Abs(dy) != r {
					continue
				}
				k := TileKey{Server: l.active, Zoom: zoom, X: cx + dx, Y: cy + dy}
				if !k.Valid() || l.cache.Contains(k) {
					continue
				}
				if srv, ok := l.servers[k.Server]; ok {
					if _, inflight := l.pending[srv.TileURL(k)]; inflight {
						continue
					}
				}
				targets = append(targets, k)
			}
		}
	}

	if len(targets) == 0 {
		return 0
	}

	go func() {
		var eg errgroup.Group
		eg.SetLimit(prefetchWorkers)
		for _, k := range targets {
			k := k
			eg.Go(func() error {
				img, err := l.fetchImage(l.servers[k.Server].TileURL(k))
				if err != nil {
					l.lg.Debug("prefetch failed", slog.String("key", k.String()),
						slog.Any("error", err))
					return nil // best effort
				}
				l.cache.Put(k, img)
				return nil
			})
		}
		_ = eg.Wait()
	}()

	return len(targets)
}
