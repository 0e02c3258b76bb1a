package material

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"strconv"
	"sync"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// pendingLoad tracks one in-flight texture fetch. Waiters block on done;
// img and err are valid once it is closed.
type pendingLoad struct {
	done chan struct{}
	img  *image.RGBA
	err  error
}

// TextureCache memoizes decoded textures by URL and tileable patterns by
// (material, scale). Concurrent requests for one URL share a single fetch.
// Failures are returned to every waiter and never cached, so callers can
// retry. Clear starts a new generation; loads still in flight when it runs
// complete for their callers but do not repopulate the cache.
type TextureCache struct {
	mu       sync.Mutex
	fetcher  Fetcher
	patterns map[string]*Pattern
	images   map[string]*image.RGBA
	pending  map[string]*pendingLoad
	gen      uint64
}

// NewTextureCache creates a cache that loads textures through fetcher.
func NewTextureCache(fetcher Fetcher) *TextureCache {
	return &TextureCache{
		fetcher:  fetcher,
		patterns: make(map[string]*Pattern),
		images:   make(map[string]*image.RGBA),
		pending:  make(map[string]*pendingLoad),
	}
}

func patternKey(materialID string, scale float64) string {
	return materialID + "@" + strconv.FormatFloat(scale, 'g', -1, 64)
}

// GetPattern returns the tileable pattern for a material texture at the
// given scale, fetching and decoding the texture on first use. The context
// bounds the fetch and any wait on a fetch already in flight.
func (c *TextureCache) GetPattern(ctx context.Context, materialID, textureURL string, scale float64) (*Pattern, error) {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("material %s: tile scale must be positive, got %v", materialID, scale)
	}

	key := patternKey(materialID, scale)

	c.mu.Lock()
	gen := c.gen
	if p, ok := c.patterns[key]; ok {
		c.mu.Unlock()
		return p, nil
	}
	if img, ok := c.images[textureURL]; ok {
		c.mu.Unlock()
		return c.finishPattern(key, img, scale, gen), nil
	}
	load, inFlight := c.pending[textureURL]
	if !inFlight {
		load = &pendingLoad{done: make(chan struct{})}
		c.pending[textureURL] = load
	}
	c.mu.Unlock()

	if inFlight {
		select {
		case <-load.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	} else {
		c.fetchAndDecode(ctx, textureURL, load, gen)
	}

	if load.err != nil {
		return nil, load.err
	}
	return c.finishPattern(key, load.img, scale, gen), nil
}

// Clear drops all cached patterns, decoded textures and pending bookkeeping.
func (c *TextureCache) Clear() {
	c.mu.Lock()
	c.gen++
	c.patterns = make(map[string]*Pattern)
	c.images = make(map[string]*image.RGBA)
	c.pending = make(map[string]*pendingLoad)
	c.mu.Unlock()
}

func (c *TextureCache) fetchAndDecode(ctx context.Context, url string, load *pendingLoad, gen uint64) {
	load.img, load.err = c.decode(ctx, url)

	c.mu.Lock()
	if c.pending[url] == load {
		delete(c.pending, url)
	}
	if load.err == nil && c.gen == gen {
		c.images[url] = load.img
	}
	c.mu.Unlock()

	close(load.done)
}

func (c *TextureCache) decode(ctx context.Context, url string) (*image.RGBA, error) {
	r, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch texture %s: %w", url, err)
	}
	defer r.Close()

	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", url, err)
	}

	b := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(rgba, rgba.Bounds(), src, b.Min, xdraw.Src)
	return rgba, nil
}

// finishPattern builds the scaled pattern outside the lock and installs it
// unless the cache moved to a newer generation in the meantime.
func (c *TextureCache) finishPattern(key string, img *image.RGBA, scale float64, gen uint64) *Pattern {
	p := buildPattern(img, scale)

	c.mu.Lock()
	if c.gen == gen {
		if existing, ok := c.patterns[key]; ok {
			p = existing
		} else {
			c.patterns[key] = p
		}
	}
	c.mu.Unlock()
	return p
}
