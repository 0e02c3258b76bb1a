package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malakyesheridan/PoolVisual-sub005/pkg/geometry"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func gradientImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(x * 7),
				G: uint8(y * 5),
				B: uint8(x + y),
				A: 255,
			})
		}
	}
	return img
}

func squarePolygon(x0, y0, x1, y1 float64) []geometry.Point2D {
	return []geometry.Point2D{
		{X: x0, Y: y0},
		{X: x1, Y: y0},
		{X: x1, Y: y1},
		{X: x0, Y: y1},
	}
}

func TestCompositeDisabledPassesMaterialThrough(t *testing.T) {
	bg := solidImage(20, 20, color.RGBA{R: 180, G: 40, B: 40, A: 255})
	mat := solidImage(20, 20, color.RGBA{R: 120, G: 130, B: 140, A: 255})
	poly := squarePolygon(5, 5, 15, 15)

	// Nonzero parameters must be ignored while disabled.
	res := Composite(bg, mat, poly, Settings{Enabled: false, Blend: 80, Refraction: 50, EdgeSoftness: 6})
	require.True(t, res.Success)
	require.NoError(t, res.Err)
	require.NotNil(t, res.Image)

	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			got := res.Image.RGBAAt(x, y)
			if x >= 5 && x < 15 && y >= 5 && y < 15 {
				assert.Equal(t, mat.RGBAAt(x, y), got, "inside mask at %d,%d", x, y)
			} else {
				assert.Equal(t, bg.RGBAAt(x, y), got, "outside mask at %d,%d", x, y)
			}
		}
	}
}

func TestCompositeEnabledZeroParamsMatchesRawMaterial(t *testing.T) {
	bg := gradientImage(20, 20)
	mat := gradientImage(20, 20)
	poly := squarePolygon(4, 4, 16, 16)

	res := Composite(bg, mat, poly, Settings{Enabled: true})
	require.True(t, res.Success)

	for y := 4; y < 16; y++ {
		for x := 4; x < 16; x++ {
			assert.Equal(t, mat.RGBAAt(x, y), res.Image.RGBAAt(x, y), "at %d,%d", x, y)
		}
	}
}

func TestCompositeDeterministic(t *testing.T) {
	bg := gradientImage(32, 32)
	mat := gradientImage(32, 32)
	poly := squarePolygon(3, 3, 29, 29)

	first := Composite(bg, mat, poly, DefaultSettings())
	second := Composite(bg, mat, poly, DefaultSettings())
	require.True(t, first.Success)
	require.True(t, second.Success)

	assert.True(t, bytes.Equal(first.Image.Pix, second.Image.Pix), "identical inputs must render identical bytes")
	assert.Equal(t, bg.Bounds(), first.Image.Bounds())
}

func TestCompositeTint(t *testing.T) {
	bg := solidImage(20, 20, color.RGBA{R: 10, G: 10, B: 10, A: 255})
	mat := solidImage(20, 20, color.RGBA{R: 200, G: 200, B: 200, A: 255})
	poly := squarePolygon(5, 5, 15, 15)

	t.Run("full strength", func(t *testing.T) {
		res := Composite(bg, mat, poly, Settings{Enabled: true, Blend: 100})
		require.True(t, res.Success)
		assert.Equal(t, color.RGBA{R: 136, G: 153, B: 187, A: 255}, res.Image.RGBAAt(10, 10))
	})

	t.Run("half strength lerps toward original", func(t *testing.T) {
		res := Composite(bg, mat, poly, Settings{Enabled: true, Blend: 50})
		require.True(t, res.Success)
		assert.Equal(t, color.RGBA{R: 168, G: 177, B: 194, A: 255}, res.Image.RGBAAt(10, 10))
	})

	t.Run("background untouched", func(t *testing.T) {
		res := Composite(bg, mat, poly, Settings{Enabled: true, Blend: 100})
		require.True(t, res.Success)
		assert.Equal(t, bg.RGBAAt(2, 2), res.Image.RGBAAt(2, 2))
	})
}

func TestCompositeRefractionDisplacesPixels(t *testing.T) {
	bg := solidImage(40, 40, color.RGBA{R: 9, G: 9, B: 9, A: 255})
	mat := gradientImage(40, 40)
	poly := squarePolygon(5, 5, 35, 35)

	still := Composite(bg, mat, poly, Settings{Enabled: true, Refraction: 0})
	rippled := Composite(bg, mat, poly, Settings{Enabled: true, Refraction: 100})
	require.True(t, still.Success)
	require.True(t, rippled.Success)

	displaced := 0
	for y := 5; y < 35; y++ {
		for x := 5; x < 35; x++ {
			if rippled.Image.RGBAAt(x, y) != mat.RGBAAt(x, y) {
				displaced++
			}
			// Zero refraction must leave material pixels alone.
			assert.Equal(t, mat.RGBAAt(x, y), still.Image.RGBAAt(x, y))
		}
	}
	assert.Greater(t, displaced, 0, "refraction should move at least some pixels")

	for x := 0; x < 40; x++ {
		assert.Equal(t, bg.RGBAAt(x, 0), rippled.Image.RGBAAt(x, 0), "outside mask at %d,0", x)
	}
}

func TestCompositeEdgeSofteningDarkensBoundary(t *testing.T) {
	gray := color.RGBA{R: 200, G: 200, B: 200, A: 255}
	bg := solidImage(60, 60, color.RGBA{R: 30, G: 30, B: 30, A: 255})
	mat := solidImage(60, 60, gray)
	poly := squarePolygon(10, 10, 50, 50)

	res := Composite(bg, mat, poly, Settings{Enabled: true, EdgeSoftness: 3})
	require.True(t, res.Success)

	// Deep inside the mask the blurred coverage saturates at 1, so the
	// material shows at full brightness.
	assert.Equal(t, gray, res.Image.RGBAAt(30, 30))

	corner := res.Image.RGBAAt(10, 10)
	assert.Less(t, corner.R, gray.R, "boundary pixels sit in the inner shadow")
	assert.Equal(t, uint8(255), corner.A)

	edge := res.Image.RGBAAt(30, 10)
	assert.Less(t, edge.R, gray.R)
	assert.Greater(t, edge.R, corner.R, "a straight edge keeps more coverage than a corner")

	assert.Equal(t, bg.RGBAAt(5, 5), res.Image.RGBAAt(5, 5), "shadow never bleeds outside the mask")
}

func TestCompositeSizeMismatchFails(t *testing.T) {
	bg := solidImage(20, 20, color.RGBA{A: 255})
	mat := solidImage(10, 10, color.RGBA{A: 255})

	res := Composite(bg, mat, squarePolygon(2, 2, 8, 8), DefaultSettings())
	assert.False(t, res.Success)
	assert.True(t, errors.Is(res.Err, ErrSizeMismatch))
	assert.Nil(t, res.Image)
	assert.GreaterOrEqual(t, res.ProcessingTime, time.Duration(0))
}

func TestCompositeNilImageFails(t *testing.T) {
	mat := solidImage(10, 10, color.RGBA{A: 255})

	res := Composite(nil, mat, squarePolygon(2, 2, 8, 8), DefaultSettings())
	assert.False(t, res.Success)
	assert.True(t, errors.Is(res.Err, ErrNilImage))

	res = Composite(mat, nil, squarePolygon(2, 2, 8, 8), DefaultSettings())
	assert.False(t, res.Success)
	assert.True(t, errors.Is(res.Err, ErrNilImage))
}

func TestCompositeDegeneratePolygonLeavesBackground(t *testing.T) {
	bg := gradientImage(16, 16)
	mat := solidImage(16, 16, color.RGBA{R: 255, A: 255})

	for _, poly := range [][]geometry.Point2D{
		nil,
		{{X: 4, Y: 4}},
		{{X: 4, Y: 4}, {X: 12, Y: 12}},
	} {
		res := Composite(bg, mat, poly, DefaultSettings())
		require.True(t, res.Success)
		assert.True(t, bytes.Equal(bg.Pix, res.Image.Pix), "degenerate polygon covers nothing")
	}
}

func TestCompositeDoesNotModifyInputs(t *testing.T) {
	bg := gradientImage(24, 24)
	mat := gradientImage(24, 24)
	bgBefore := append([]uint8(nil), bg.Pix...)
	matBefore := append([]uint8(nil), mat.Pix...)

	res := Composite(bg, mat, squarePolygon(2, 2, 22, 22), DefaultSettings())
	require.True(t, res.Success)

	assert.Equal(t, bgBefore, bg.Pix)
	assert.Equal(t, matBefore, mat.Pix)
}

func TestCompositeClampsOutOfRangeSettings(t *testing.T) {
	bg := solidImage(20, 20, color.RGBA{R: 10, G: 10, B: 10, A: 255})
	mat := solidImage(20, 20, color.RGBA{R: 200, G: 200, B: 200, A: 255})
	poly := squarePolygon(5, 5, 15, 15)

	over := Composite(bg, mat, poly, Settings{Enabled: true, Blend: 500})
	capped := Composite(bg, mat, poly, Settings{Enabled: true, Blend: 100})
	require.True(t, over.Success)
	require.True(t, capped.Success)
	assert.True(t, bytes.Equal(capped.Image.Pix, over.Image.Pix))
}

type checkerTile struct {
	w, h int
}

func (t checkerTile) ColorAt(x, y int) color.RGBA {
	x = ((x % t.w) + t.w) % t.w
	y = ((y % t.h) + t.h) % t.h
	return color.RGBA{R: uint8(x * 40), G: uint8(y * 60), B: 9, A: 255}
}

func TestFillPatternTiles(t *testing.T) {
	tile := checkerTile{w: 4, h: 3}
	img := FillPattern(10, 7, tile)

	require.Equal(t, image.Rect(0, 0, 10, 7), img.Bounds())
	for y := 0; y < 7; y++ {
		for x := 0; x < 10; x++ {
			assert.Equal(t, tile.ColorAt(x, y), img.RGBAAt(x, y), "at %d,%d", x, y)
		}
	}
	// Wrap check: one full tile to the right must repeat.
	assert.Equal(t, img.RGBAAt(1, 2), img.RGBAAt(5, 2))
	assert.Equal(t, img.RGBAAt(2, 1), img.RGBAAt(2, 4))
}

func TestSettingsClamp(t *testing.T) {
	s := Settings{Enabled: true, Blend: 150, Refraction: -5, EdgeSoftness: 20}.Clamp()
	assert.Equal(t, float64(MaxBlend), s.Blend)
	assert.Equal(t, 0.0, s.Refraction)
	assert.Equal(t, float64(MaxEdgeSoftness), s.EdgeSoftness)

	nan := Settings{Blend: math.NaN()}.Clamp()
	assert.Equal(t, 0.0, nan.Blend)
}

func TestSettingsWithModifiers(t *testing.T) {
	base := DefaultSettings()

	mod := base.WithBlend(10).WithRefraction(200).WithEdgeSoftness(2)
	assert.Equal(t, 10.0, mod.Blend)
	assert.Equal(t, float64(MaxRefraction), mod.Refraction)
	assert.Equal(t, 2.0, mod.EdgeSoftness)

	// Value semantics: the base is untouched.
	assert.Equal(t, DefaultSettings(), base)
}

func TestDefaultPresetsAreValid(t *testing.T) {
	presets := DefaultPresets()
	require.NotEmpty(t, presets)

	seen := map[string]bool{}
	for _, p := range presets {
		assert.False(t, seen[p.Name], "duplicate preset %q", p.Name)
		seen[p.Name] = true
		assert.Equal(t, p.Settings, p.Settings.Clamp(), "preset %q must be in range", p.Name)
		assert.True(t, p.Settings.Enabled)
	}

	sunny, ok := PresetByName("sunny")
	require.True(t, ok)
	assert.Equal(t, DefaultSettings(), sunny.Settings)

	_, ok = PresetByName("lagoon")
	assert.False(t, ok)
}
