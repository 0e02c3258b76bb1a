package render

import (
	"fmt"
	"image"
	"sync"
	"time"
)

// DefaultCacheEntries bounds the result cache when no capacity is given.
// Composited buffers are full photo size, so the cache stays small.
const DefaultCacheEntries = 20

type cacheEntry struct {
	key        string
	materialID string
	maskHash   uint32
	img        *image.RGBA
	storedAt   time.Time

	prev, next *cacheEntry
}

// ResultCache memoizes composited buffers keyed by everything that affects
// the output. When full, the least recently used entry is evicted. Safe for
// concurrent use.
type ResultCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*cacheEntry
	head     *cacheEntry // most recently used
	tail     *cacheEntry // least recently used
}

// NewResultCache creates a cache holding at most capacity rendered buffers.
// Non-positive capacity selects DefaultCacheEntries.
func NewResultCache(capacity int) *ResultCache {
	if capacity <= 0 {
		capacity = DefaultCacheEntries
	}
	return &ResultCache{
		capacity: capacity,
		entries:  make(map[string]*cacheEntry),
	}
}

// cacheKey folds every render input into a string key.
func cacheKey(materialID string, tileScale float64, s Settings, maskHash uint32) string {
	return fmt.Sprintf("%s|%g|%t|%g|%g|%g|%08x",
		materialID, tileScale, s.Enabled, s.Blend, s.Refraction, s.EdgeSoftness, maskHash)
}

// Get returns the cached buffer for the given render inputs and marks it
// most recently used.
func (c *ResultCache) Get(materialID string, tileScale float64, s Settings, maskHash uint32) (*image.RGBA, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[cacheKey(materialID, tileScale, s, maskHash)]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.img, true
}

// Put stores a rendered buffer, evicting least recently used entries if the
// cache is full. Storing under an existing key replaces the buffer in
// place.
func (c *ResultCache) Put(materialID string, tileScale float64, s Settings, maskHash uint32, img *image.RGBA) {
	if img == nil {
		return
	}
	key := cacheKey(materialID, tileScale, s, maskHash)

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.img = img
		e.storedAt = time.Now()
		c.moveToFront(e)
		return
	}

	for len(c.entries) >= c.capacity {
		c.removeTail()
	}
	e := &cacheEntry{
		key:        key,
		materialID: materialID,
		maskHash:   maskHash,
		img:        img,
		storedAt:   time.Now(),
	}
	c.entries[key] = e
	c.addToFront(e)
}

// InvalidateMaterial drops every entry rendered with the material and
// returns how many were removed. Called when a material's texture or tile
// scale definition changes.
func (c *ResultCache) InvalidateMaterial(materialID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removeMatching(func(e *cacheEntry) bool { return e.materialID == materialID })
}

// InvalidateMask drops every entry rendered for the mask geometry and
// returns how many were removed. Called when mask points move.
func (c *ResultCache) InvalidateMask(maskHash uint32) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removeMatching(func(e *cacheEntry) bool { return e.maskHash == maskHash })
}

// Clear empties the cache.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
	c.head = nil
	c.tail = nil
}

// Len returns the current entry count.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// CacheStats summarizes cache occupancy for debug overlays.
type CacheStats struct {
	Entries           int
	ApproxMemoryBytes int64
}

// Stats reports the entry count and the approximate pixel memory held.
func (c *ResultCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := CacheStats{Entries: len(c.entries)}
	for e := c.head; e != nil; e = e.next {
		b := e.img.Bounds()
		st.ApproxMemoryBytes += int64(b.Dx()) * int64(b.Dy()) * 4
	}
	return st
}

func (c *ResultCache) removeMatching(match func(*cacheEntry) bool) int {
	removed := 0
	for e := c.head; e != nil; {
		next := e.next
		if match(e) {
			c.remove(e)
			delete(c.entries, e.key)
			removed++
		}
		e = next
	}
	return removed
}

// List management, head is most recently used.

func (c *ResultCache) addToFront(e *cacheEntry) {
	e.prev = nil
	e.next = c.head
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *ResultCache) moveToFront(e *cacheEntry) {
	if c.head == e {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *ResultCache) remove(e *cacheEntry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
	e.prev = nil
	e.next = nil
}

func (c *ResultCache) removeTail() {
	if c.tail == nil {
		return
	}
	e := c.tail
	c.remove(e)
	delete(c.entries, e.key)
}
