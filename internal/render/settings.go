// Package render implements the underwater compositing pipeline and the
// bounded cache that memoizes its results.
package render

import "math"

// Parameter ranges consumed by the pipeline.
const (
	MaxBlend        = 100
	MaxRefraction   = 100
	MaxEdgeSoftness = 12
)

// Settings are the pipeline's contract: the effect toggle plus the three
// tunable parameters. Blend and Refraction are percentages, EdgeSoftness is
// a radius in pixels.
type Settings struct {
	Enabled      bool    `json:"enabled"`
	Blend        float64 `json:"blend"`
	Refraction   float64 `json:"refraction"`
	EdgeSoftness float64 `json:"edge_softness"`
}

// DefaultSettings returns the effect parameters used for a freshly painted
// mask. Tuned for a sunlit outdoor pool photo.
func DefaultSettings() Settings {
	return Settings{
		Enabled:      true,
		Blend:        70,
		Refraction:   30,
		EdgeSoftness: 4,
	}
}

// Clamp returns a copy with every parameter forced into its valid range.
// NaN collapses to 0.
func (s Settings) Clamp() Settings {
	s.Blend = clampParam(s.Blend, MaxBlend)
	s.Refraction = clampParam(s.Refraction, MaxRefraction)
	s.EdgeSoftness = clampParam(s.EdgeSoftness, MaxEdgeSoftness)
	return s
}

func clampParam(v, max float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

// WithBlend returns a copy with the tint strength replaced.
func (s Settings) WithBlend(v float64) Settings {
	s.Blend = v
	return s.Clamp()
}

// WithRefraction returns a copy with the ripple strength replaced.
func (s Settings) WithRefraction(v float64) Settings {
	s.Refraction = v
	return s.Clamp()
}

// WithEdgeSoftness returns a copy with the softening radius replaced.
func (s Settings) WithEdgeSoftness(v float64) Settings {
	s.EdgeSoftness = v
	return s.Clamp()
}

// Preset is a named underwater look offered by the editor UI.
type Preset struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Settings    Settings `json:"settings"`
}

// DefaultPresets returns the built-in looks, mildest first.
func DefaultPresets() []Preset {
	return []Preset{
		{
			Name:        "clear",
			Description: "Barely-there tint for very clear, shallow water",
			Settings:    Settings{Enabled: true, Blend: 55, Refraction: 20, EdgeSoftness: 3},
		},
		{
			Name:        "sunny",
			Description: "Bright outdoor pool under direct sun",
			Settings:    DefaultSettings(),
		},
		{
			Name:        "dusk",
			Description: "Deeper tint for evening or shaded photos",
			Settings:    Settings{Enabled: true, Blend: 85, Refraction: 25, EdgeSoftness: 5},
		},
		{
			Name:        "spa",
			Description: "Strong ripple and soft edges for small agitated water",
			Settings:    Settings{Enabled: true, Blend: 75, Refraction: 50, EdgeSoftness: 6},
		},
	}
}

// PresetByName finds a built-in preset. The bool reports whether the name
// exists.
func PresetByName(name string) (Preset, bool) {
	for _, p := range DefaultPresets() {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}
