package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"time"

	"github.com/malakyesheridan/PoolVisual-sub005/pkg/colorutil"
	"github.com/malakyesheridan/PoolVisual-sub005/pkg/geometry"
)

// Ripple geometry of the refraction stage. Refraction=100 displaces reads
// by at most maxRippleAmplitude pixels.
const (
	rippleFrequency    = 0.1
	maxRippleAmplitude = 2.0
	edgeShadowStrength = 0.3
)

var (
	ErrNilImage     = errors.New("render: nil image")
	ErrSizeMismatch = errors.New("render: background and material sizes differ")
)

// Result is the outcome of one Composite call. ProcessingTime is measured
// on failure too.
type Result struct {
	Image          *image.RGBA
	Success        bool
	Err            error
	ProcessingTime time.Duration
}

// Composite renders one mask region: the returned buffer holds the
// background everywhere outside the polygon and the staged material inside
// it. With the effect disabled the material pixels pass through untouched,
// which gives the editor a fast raw preview. Inputs are never modified.
//
// Stage order inside the mask is tint, then refraction, then edge
// softening. A stage whose parameter is zero is skipped entirely.
func Composite(background, material *image.RGBA, polygon []geometry.Point2D, settings Settings) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = Result{Err: fmt.Errorf("render: composite panic: %v", r)}
		}
		res.ProcessingTime = time.Since(start)
	}()

	if background == nil || material == nil {
		res.Err = ErrNilImage
		return res
	}
	bw, bh := background.Bounds().Dx(), background.Bounds().Dy()
	mw, mh := material.Bounds().Dx(), material.Bounds().Dy()
	if bw != mw || bh != mh {
		res.Err = fmt.Errorf("%w: background %dx%d, material %dx%d", ErrSizeMismatch, bw, bh, mw, mh)
		return res
	}
	if bw <= 0 || bh <= 0 {
		res.Err = fmt.Errorf("render: empty %dx%d buffer", bw, bh)
		return res
	}

	settings = settings.Clamp()
	out := cloneRGBA(background)
	cov := rasterizeMask(polygon, bw, bh)

	work := cloneRGBA(material)
	if settings.Enabled {
		if settings.Blend > 0 {
			applyTint(work, settings.Blend)
		}
		if settings.Refraction > 0 {
			applyRefraction(work, settings.Refraction)
		}
	}

	var soft []float64
	if settings.Enabled && settings.EdgeSoftness > 0 {
		soft = softenCoverage(cov, bw, bh, settings.EdgeSoftness)
	}

	for y := 0; y < bh; y++ {
		row := y * bw
		for x := 0; x < bw; x++ {
			if !cov[row+x] {
				continue
			}
			wo := work.PixOffset(x, y)
			r := work.Pix[wo]
			g := work.Pix[wo+1]
			b := work.Pix[wo+2]
			a := work.Pix[wo+3]
			if soft != nil {
				f := 1 - edgeShadowStrength*(1-soft[row+x])
				r = colorutil.Clamp8(float64(r) * f)
				g = colorutil.Clamp8(float64(g) * f)
				b = colorutil.Clamp8(float64(b) * f)
			}
			o := out.PixOffset(x, y)
			out.Pix[o] = r
			out.Pix[o+1] = g
			out.Pix[o+2] = b
			out.Pix[o+3] = a
		}
	}

	res.Image = out
	res.Success = true
	return res
}

// Tile is the sampling surface FillPattern repeats across a buffer.
// *material.Pattern implements it.
type Tile interface {
	ColorAt(x, y int) color.RGBA
}

// FillPattern builds a w x h buffer by tiling the pattern from the origin.
// The result is sized for use as the material input of Composite.
func FillPattern(w, h int, tile Tile) *image.RGBA {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, tile.ColorAt(x, y))
		}
	}
	return img
}

// cloneRGBA copies an image into a fresh buffer anchored at the origin, so
// stage loops can index Pix directly.
func cloneRGBA(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// rasterizeMask tests each pixel center against the polygon. Only the part
// of the polygon's bounding box that overlaps the buffer is scanned. Fewer
// than three vertices covers nothing.
func rasterizeMask(polygon []geometry.Point2D, w, h int) []bool {
	cov := make([]bool, w*h)
	if len(polygon) < 3 {
		return cov
	}

	clip, ok := geometry.BoundingBox(polygon).Intersect(geometry.NewRect(0, 0, float64(w), float64(h)))
	if !ok {
		return cov
	}
	x0 := clampInt(int(math.Floor(clip.X)), 0, w-1)
	y0 := clampInt(int(math.Floor(clip.Y)), 0, h-1)
	x1 := clampInt(int(math.Ceil(clip.X+clip.Width)), 0, w-1)
	y1 := clampInt(int(math.Ceil(clip.Y+clip.Height)), 0, h-1)

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			center := geometry.Point2D{X: float64(x) + 0.5, Y: float64(y) + 0.5}
			if geometry.PointInPolygon(center, polygon) {
				cov[y*w+x] = true
			}
		}
	}
	return cov
}

// applyTint lerps every pixel toward its underwater-tinted color. blend is
// the 0-100 strength.
func applyTint(img *image.RGBA, blend float64) {
	t := blend / 100
	pix := img.Pix
	for i := 0; i < len(pix); i += 4 {
		r := float64(pix[i])
		g := float64(pix[i+1])
		b := float64(pix[i+2])
		tr, tg, tb := colorutil.ApplyWaterTint(r, g, b)
		pix[i] = colorutil.Clamp8(colorutil.Lerp(r, tr, t))
		pix[i+1] = colorutil.Clamp8(colorutil.Lerp(g, tg, t))
		pix[i+2] = colorutil.Clamp8(colorutil.Lerp(b, tb, t))
	}
}

// applyRefraction displaces each pixel read by a fixed sinusoidal field.
// Reads come from a snapshot of the buffer so displacement never compounds,
// and source positions are clamped to the buffer.
func applyRefraction(img *image.RGBA, refraction float64) {
	ripple := refraction / 100 * maxRippleAmplitude
	src := cloneRGBA(img)
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()

	for y := 0; y < h; y++ {
		offX := math.Sin(float64(y)*rippleFrequency) * ripple
		for x := 0; x < w; x++ {
			offY := math.Cos(float64(x)*rippleFrequency) * ripple
			sx := clampInt(int(math.Round(float64(x)+offX)), 0, w-1)
			sy := clampInt(int(math.Round(float64(y)+offY)), 0, h-1)
			so := src.PixOffset(sx, sy)
			do := img.PixOffset(x, y)
			copy(img.Pix[do:do+4], src.Pix[so:so+4])
		}
	}
}

// softenCoverage blurs the binary mask into a 0-1 field with a separable
// Gaussian. Pixels outside the buffer count as uncovered, so the inner
// shadow also follows a mask cut off by the photo edge. The radius is
// ceil(softness), sigma radius/2 with a 0.5 floor.
func softenCoverage(cov []bool, w, h int, softness float64) []float64 {
	radius := int(math.Ceil(softness))
	sigma := float64(radius) / 2
	if sigma < 0.5 {
		sigma = 0.5
	}
	kernel := gaussianKernel(radius, sigma)

	field := make([]float64, w*h)
	for i, in := range cov {
		if in {
			field[i] = 1
		}
	}

	tmp := make([]float64, w*h)
	for y := 0; y < h; y++ {
		row := y * w
		for x := 0; x < w; x++ {
			var sum float64
			for k := -radius; k <= radius; k++ {
				sx := x + k
				if sx < 0 || sx >= w {
					continue
				}
				sum += field[row+sx] * kernel[k+radius]
			}
			tmp[row+x] = sum
		}
	}
	for y := 0; y < h; y++ {
		row := y * w
		for x := 0; x < w; x++ {
			var sum float64
			for k := -radius; k <= radius; k++ {
				sy := y + k
				if sy < 0 || sy >= h {
					continue
				}
				sum += tmp[sy*w+x] * kernel[k+radius]
			}
			field[row+x] = sum
		}
	}
	return field
}

func gaussianKernel(radius int, sigma float64) []float64 {
	k := make([]float64, 2*radius+1)
	var sum float64
	for i := range k {
		d := float64(i - radius)
		k[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += k[i]
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
