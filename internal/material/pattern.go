package material

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/gift"
)

// Pattern is a tileable bitmap built from a material texture at a fixed
// scale. Sampling wraps on both axes, so a pattern fills regions of any
// size.
type Pattern struct {
	img *image.RGBA
}

// buildPattern scales the decoded texture to naturalSize*scale with Lanczos
// resampling. Dimensions are floored at one pixel so extreme downscales
// stay tileable.
func buildPattern(src *image.RGBA, scale float64) *Pattern {
	b := src.Bounds()
	w := int(math.Round(float64(b.Dx()) * scale))
	h := int(math.Round(float64(b.Dy()) * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if w == b.Dx() && h == b.Dy() {
		return &Pattern{img: src}
	}

	g := gift.New(gift.Resize(w, h, gift.LanczosResampling))
	dst := image.NewRGBA(g.Bounds(b))
	g.Draw(dst, src)
	return &Pattern{img: dst}
}

// Size returns the tile dimensions in pixels.
func (p *Pattern) Size() (w, h int) {
	b := p.img.Bounds()
	return b.Dx(), b.Dy()
}

// ColorAt samples the pattern at a pixel position, wrapping both axes.
func (p *Pattern) ColorAt(x, y int) color.RGBA {
	b := p.img.Bounds()
	w, h := b.Dx(), b.Dy()
	x = ((x % w) + w) % w
	y = ((y % h) + h) % h
	return p.img.RGBAAt(b.Min.X+x, b.Min.Y+y)
}

// ApproxBytes estimates the pattern's pixel memory.
func (p *Pattern) ApproxBytes() int64 {
	w, h := p.Size()
	return int64(w) * int64(h) * 4
}
