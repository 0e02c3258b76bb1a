package render

import (
	"fmt"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malakyesheridan/PoolVisual-sub005/pkg/geometry"
)

func blankImage(w, h int) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

func TestResultCacheHitAndMiss(t *testing.T) {
	c := NewResultCache(4)
	s := DefaultSettings()
	img := blankImage(8, 8)

	_, ok := c.Get("travertine", 1, s, 42)
	assert.False(t, ok)

	c.Put("travertine", 1, s, 42, img)
	got, ok := c.Get("travertine", 1, s, 42)
	require.True(t, ok)
	assert.Same(t, img, got)
	assert.Equal(t, 1, c.Len())
}

func TestResultCacheKeySensitivity(t *testing.T) {
	s := DefaultSettings()
	c := NewResultCache(8)
	c.Put("travertine", 1, s, 42, blankImage(4, 4))

	disabled := s
	disabled.Enabled = false

	misses := []struct {
		name       string
		materialID string
		tileScale  float64
		settings   Settings
		maskHash   uint32
	}{
		{"material", "marble", 1, s, 42},
		{"tile scale", "travertine", 1.5, s, 42},
		{"enabled", "travertine", 1, disabled, 42},
		{"blend", "travertine", 1, s.WithBlend(s.Blend + 1), 42},
		{"refraction", "travertine", 1, s.WithRefraction(s.Refraction + 1), 42},
		{"edge softness", "travertine", 1, s.WithEdgeSoftness(s.EdgeSoftness + 1), 42},
		{"mask hash", "travertine", 1, s, 43},
	}

	for _, m := range misses {
		t.Run(m.name, func(t *testing.T) {
			_, ok := c.Get(m.materialID, m.tileScale, m.settings, m.maskHash)
			assert.False(t, ok)
		})
	}

	_, ok := c.Get("travertine", 1, s, 42)
	assert.True(t, ok, "original key still present")
}

func TestResultCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewResultCache(3)
	s := DefaultSettings()

	c.Put("m", 1, s, 1, blankImage(2, 2))
	c.Put("m", 1, s, 2, blankImage(2, 2))
	c.Put("m", 1, s, 3, blankImage(2, 2))

	// Touch the oldest entry so the second-oldest becomes the victim.
	_, ok := c.Get("m", 1, s, 1)
	require.True(t, ok)

	c.Put("m", 1, s, 4, blankImage(2, 2))
	assert.Equal(t, 3, c.Len())

	_, ok = c.Get("m", 1, s, 2)
	assert.False(t, ok, "least recently used entry gets evicted")
	for _, hash := range []uint32{1, 3, 4} {
		_, ok := c.Get("m", 1, s, hash)
		assert.True(t, ok, "entry %d survives", hash)
	}
}

func TestResultCacheDefaultCapacity(t *testing.T) {
	c := NewResultCache(0)
	s := DefaultSettings()

	for i := 0; i <= DefaultCacheEntries; i++ {
		c.Put("m", 1, s, uint32(i), blankImage(2, 2))
	}
	assert.Equal(t, DefaultCacheEntries, c.Len())

	_, ok := c.Get("m", 1, s, 0)
	assert.False(t, ok, "first entry aged out")
	_, ok = c.Get("m", 1, s, uint32(DefaultCacheEntries))
	assert.True(t, ok)
}

func TestResultCachePutReplacesExistingKey(t *testing.T) {
	c := NewResultCache(3)
	s := DefaultSettings()

	first := blankImage(2, 2)
	second := blankImage(2, 2)
	c.Put("m", 1, s, 7, first)
	c.Put("m", 1, s, 7, second)

	assert.Equal(t, 1, c.Len())
	got, ok := c.Get("m", 1, s, 7)
	require.True(t, ok)
	assert.Same(t, second, got)
}

func TestResultCacheInvalidateMaterial(t *testing.T) {
	c := NewResultCache(8)
	s := DefaultSettings()

	c.Put("travertine", 1, s, 1, blankImage(2, 2))
	c.Put("travertine", 2, s, 2, blankImage(2, 2))
	c.Put("marble", 1, s, 3, blankImage(2, 2))

	assert.Equal(t, 2, c.InvalidateMaterial("travertine"))
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get("travertine", 1, s, 1)
	assert.False(t, ok)
	_, ok = c.Get("marble", 1, s, 3)
	assert.True(t, ok)

	assert.Equal(t, 0, c.InvalidateMaterial("granite"))
}

func TestResultCacheInvalidateMask(t *testing.T) {
	c := NewResultCache(8)
	s := DefaultSettings()

	c.Put("travertine", 1, s, 10, blankImage(2, 2))
	c.Put("marble", 1, s, 10, blankImage(2, 2))
	c.Put("marble", 1, s, 11, blankImage(2, 2))

	assert.Equal(t, 2, c.InvalidateMask(10))
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get("marble", 1, s, 11)
	assert.True(t, ok)
}

func TestResultCacheClearAndStats(t *testing.T) {
	c := NewResultCache(8)
	s := DefaultSettings()

	c.Put("a", 1, s, 1, blankImage(10, 10))
	c.Put("b", 1, s, 2, blankImage(20, 10))

	st := c.Stats()
	assert.Equal(t, 2, st.Entries)
	assert.Equal(t, int64(10*10*4+20*10*4), st.ApproxMemoryBytes)

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, CacheStats{}, c.Stats())
	_, ok := c.Get("a", 1, s, 1)
	assert.False(t, ok)
}

func TestResultCacheConcurrentAccess(t *testing.T) {
	c := NewResultCache(16)
	s := DefaultSettings()

	done := make(chan struct{})
	for g := 0; g < 4; g++ {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 200; i++ {
				hash := uint32(i % 24)
				c.Put(fmt.Sprintf("m%d", g), 1, s, hash, blankImage(2, 2))
				c.Get(fmt.Sprintf("m%d", g), 1, s, hash)
				if i%50 == 0 {
					c.InvalidateMask(hash)
				}
			}
		}(g)
	}
	for g := 0; g < 4; g++ {
		<-done
	}
	assert.LessOrEqual(t, c.Len(), 16)
}

func TestMaskHash(t *testing.T) {
	square := squarePolygon(5, 5, 15, 15)

	assert.Equal(t, MaskHash(square), MaskHash(squarePolygon(5, 5, 15, 15)), "same geometry hashes equal")

	moved := squarePolygon(5, 5, 15, 15)
	moved[2].X += 0.25
	assert.NotEqual(t, MaskHash(square), MaskHash(moved), "vertex move changes the hash")

	reversed := []geometry.Point2D{square[3], square[2], square[1], square[0]}
	assert.NotEqual(t, MaskHash(square), MaskHash(reversed), "vertex order matters")

	assert.Equal(t, MaskHash(nil), MaskHash([]geometry.Point2D{}))
}
