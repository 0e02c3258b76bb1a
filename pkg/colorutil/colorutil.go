// Package colorutil provides shared color utilities for the pool visualizer.
package colorutil

import (
	"image/color"
)

// Overlay colors used by the diagnostic render tool.
var (
	Black   = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Outline = color.RGBA{R: 0, G: 255, B: 255, A: 255}
	Vertex  = color.RGBA{R: 255, G: 255, B: 0, A: 255}
)

// Water tint coefficients. Applied per channel, then the brightness factor,
// to shift a material color toward the look of submersion.
const (
	WaterTintR      = 0.8
	WaterTintG      = 0.9
	WaterTintB      = 1.1
	WaterBrightness = 0.85
)

// ApplyWaterTint shifts an RGB triple (0-255 floats) toward the underwater
// look. Results may exceed 255 on the blue channel; callers clamp on write.
func ApplyWaterTint(r, g, b float64) (float64, float64, float64) {
	return r * WaterTintR * WaterBrightness,
		g * WaterTintG * WaterBrightness,
		b * WaterTintB * WaterBrightness
}

// Clamp8 clamps a float channel value to the displayable 0-255 range.
func Clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// Lerp blends two float channel values, t=0 giving a and t=1 giving b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// LerpRGBA blends two colors channel-wise, t=0 giving a and t=1 giving b.
// Alpha is blended along with the color channels.
func LerpRGBA(a, b color.RGBA, t float64) color.RGBA {
	return color.RGBA{
		R: Clamp8(Lerp(float64(a.R), float64(b.R), t)),
		G: Clamp8(Lerp(float64(a.G), float64(b.G), t)),
		B: Clamp8(Lerp(float64(a.B), float64(b.B), t)),
		A: Clamp8(Lerp(float64(a.A), float64(b.A), t)),
	}
}
