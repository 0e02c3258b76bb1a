// Package mask implements polygonal region masks drawn over a pool photo
// and their edge-based real-world calibration.
package mask

import (
	"github.com/malakyesheridan/PoolVisual-sub005/pkg/geometry"
)

// Kind distinguishes closed region masks from open polylines.
type Kind string

const (
	// Area masks are closed polygons with an implicit edge from the last
	// point back to the first.
	Area Kind = "area"
	// Linear masks are open polylines, used for coping edges, waterlines
	// and similar linear features.
	Linear Kind = "linear"
)

// Closed reports whether the kind implies a closing edge.
func (k Kind) Closed() bool {
	return k == Area
}

// Mask is a user-drawn point sequence in image-pixel coordinates.
type Mask struct {
	ID          string             `json:"id"`
	Points      []geometry.Point2D `json:"points"`
	Kind        Kind               `json:"type"`
	MaterialID  string             `json:"material_id,omitempty"`
	Calibration *CustomCalibration `json:"custom_calibration,omitempty"`
}

// Edge is one consecutive point pair of a mask. Edges are derived on demand
// and never stored.
type Edge struct {
	Index       int
	Start       geometry.Point2D
	End         geometry.Point2D
	PixelLength float64
}

// ExtractEdges derives the edge list for a point sequence. Closed sequences
// wrap from the last point back to the first; open ones stop at the last
// point. Degenerate sequences (under 3 points closed, under 2 open) yield
// an empty list.
func ExtractEdges(points []geometry.Point2D, closed bool) []Edge {
	n := len(points)
	if closed && n < 3 {
		return nil
	}
	if !closed && n < 2 {
		return nil
	}

	count := n
	if !closed {
		count = n - 1
	}

	edges := make([]Edge, count)
	for i := 0; i < count; i++ {
		start := points[i]
		end := points[(i+1)%n]
		edges[i] = Edge{
			Index:       i,
			Start:       start,
			End:         end,
			PixelLength: start.Distance(end),
		}
	}
	return edges
}

// Edges derives the mask's edge list.
func (m Mask) Edges() []Edge {
	return ExtractEdges(m.Points, m.Kind.Closed())
}

// PixelArea returns the enclosed area in square pixels. Zero for linear
// masks and degenerate polygons.
func (m Mask) PixelArea() float64 {
	if !m.Kind.Closed() {
		return 0
	}
	return geometry.Area(m.Points)
}

// PixelPerimeter returns the path length in pixels, including the closing
// edge for area masks.
func (m Mask) PixelPerimeter() float64 {
	return geometry.Perimeter(m.Points, m.Kind.Closed())
}

// CalibratedArea returns the mask's real-world area in square meters, zero
// when the mask is linear, degenerate, or carries no usable per-edge
// calibration.
func (m Mask) CalibratedArea() float64 {
	if !m.Kind.Closed() || m.Calibration == nil {
		return 0
	}
	return CalibratedArea(m.Points, m.Calibration.EdgeMeasurements)
}

// CalibratedLength returns the polyline's real-world length in meters, zero
// for area masks or without usable per-edge calibration.
func (m Mask) CalibratedLength() float64 {
	if m.Kind.Closed() || m.Calibration == nil {
		return 0
	}
	return CalibratedLength(m.Points, m.Calibration.EdgeMeasurements)
}

// Bounds returns the mask's axis-aligned bounding box in image pixels.
func (m Mask) Bounds() geometry.Rect {
	return geometry.BoundingBox(m.Points)
}
