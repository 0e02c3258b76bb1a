package mask

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/malakyesheridan/PoolVisual-sub005/pkg/geometry"
)

// Method identifies how a mask's calibration was established.
type Method string

const (
	// MethodReference scales against a known reference object in the photo.
	MethodReference Method = "reference"
	// MethodEstimated stores user-guessed overall dimensions.
	MethodEstimated Method = "estimated"
	// MethodAuto derives rough dimensions from the bounding box and an
	// assumed pixel density. Not a real calibration.
	MethodAuto Method = "auto"
	// MethodManualEdges carries per-edge measurements and is the only
	// method that feeds the weighted scale and area calculations.
	MethodManualEdges Method = "manual_edges"
)

// Confidence grades how trustworthy a calibration is.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Plausibility bounds for a single measured edge, in meters. Pool features
// outside this range are almost certainly input mistakes.
const (
	MinPlausibleMeters = 0.1
	MaxPlausibleMeters = 100
)

// EdgeMeasurement records the user-entered real-world length of one mask
// edge together with the derived pixel density.
type EdgeMeasurement struct {
	EdgeIndex       int     `json:"edge_index"`
	PixelLength     float64 `json:"pixel_length"`
	RealWorldLength float64 `json:"real_world_length"`
	PixelsPerMeter  float64 `json:"pixels_per_meter"`
}

// NewEdgeMeasurement derives a measurement for an edge. The real-world
// length must be a positive, finite number of meters.
func NewEdgeMeasurement(edge Edge, realWorldLength float64) (EdgeMeasurement, error) {
	if math.IsNaN(realWorldLength) || math.IsInf(realWorldLength, 0) || realWorldLength <= 0 {
		return EdgeMeasurement{}, fmt.Errorf("edge %d: real-world length must be a positive number of meters, got %v", edge.Index, realWorldLength)
	}
	return EdgeMeasurement{
		EdgeIndex:       edge.Index,
		PixelLength:     edge.PixelLength,
		RealWorldLength: realWorldLength,
		PixelsPerMeter:  edge.PixelLength / realWorldLength,
	}, nil
}

func (m EdgeMeasurement) usable() bool {
	return m.RealWorldLength > 0 && m.PixelLength > 0 &&
		!math.IsNaN(m.RealWorldLength) && !math.IsInf(m.RealWorldLength, 0) &&
		!math.IsNaN(m.PixelLength) && !math.IsInf(m.PixelLength, 0)
}

// CustomCalibration is the single calibration record a mask carries.
// It is replaced wholesale on every save, never merged.
type CustomCalibration struct {
	EstimatedLength  float64           `json:"estimated_length,omitempty"`
	EstimatedWidth   float64           `json:"estimated_width,omitempty"`
	EdgeMeasurements []EdgeMeasurement `json:"edge_measurements,omitempty"`
	Method           Method            `json:"calibration_method"`
	Confidence       Confidence        `json:"confidence"`
	LastUpdated      time.Time         `json:"last_updated"`
}

// ManualEdges builds a per-edge calibration, the only kind consumed by the
// weighted scale and area calculations.
func ManualEdges(measurements []EdgeMeasurement) CustomCalibration {
	return CustomCalibration{
		EdgeMeasurements: measurements,
		Method:           MethodManualEdges,
		Confidence:       ConfidenceHigh,
		LastUpdated:      time.Now(),
	}
}

// Reference builds a calibration scaled against a known object in the photo.
func Reference(lengthMeters, widthMeters float64) CustomCalibration {
	return CustomCalibration{
		EstimatedLength: lengthMeters,
		EstimatedWidth:  widthMeters,
		Method:          MethodReference,
		Confidence:      ConfidenceHigh,
		LastUpdated:     time.Now(),
	}
}

// Estimated builds a calibration from user-guessed overall dimensions.
func Estimated(lengthMeters, widthMeters float64) CustomCalibration {
	return CustomCalibration{
		EstimatedLength: lengthMeters,
		EstimatedWidth:  widthMeters,
		Method:          MethodEstimated,
		Confidence:      ConfidenceMedium,
		LastUpdated:     time.Now(),
	}
}

// AutoEstimate derives rough overall dimensions from the mask's bounding box
// and an assumed pixel density. Confidence is always low: nothing in the
// photo was actually measured.
func AutoEstimate(points []geometry.Point2D, assumedPixelsPerMeter float64) CustomCalibration {
	c := CustomCalibration{
		Method:      MethodAuto,
		Confidence:  ConfidenceLow,
		LastUpdated: time.Now(),
	}
	if assumedPixelsPerMeter <= 0 || len(points) == 0 {
		return c
	}
	box := geometry.BoundingBox(points)
	c.EstimatedLength = box.Width / assumedPixelsPerMeter
	c.EstimatedWidth = box.Height / assumedPixelsPerMeter
	return c
}

// WeightedPixelsPerMeter averages the per-edge pixel densities weighted by
// each edge's real-world length. Longer measured edges dominate, since
// their relative measurement error is proportionally smaller. Returns 0
// with no usable measurements.
func WeightedPixelsPerMeter(measurements []EdgeMeasurement) float64 {
	vals := make([]float64, 0, len(measurements))
	weights := make([]float64, 0, len(measurements))
	for _, m := range measurements {
		if !m.usable() {
			continue
		}
		vals = append(vals, m.PixelsPerMeter)
		weights = append(weights, m.RealWorldLength)
	}
	if len(vals) == 0 {
		return 0
	}
	return stat.Mean(vals, weights)
}

// ValidationResult reports calibration plausibility. Warnings are advisory
// and never block saving; validity simply means no warnings were raised.
type ValidationResult struct {
	IsValid  bool
	Warnings []string
}

// Minimum usable measurements before the overall spread check applies. The
// opposite-pair check already covers the two-measurement quad case.
const spreadCheckMinMeasurements = 3

// Validate checks a set of measurements against the mask's current edges.
//
// Opposite edges of an approximately rectangular mask (pairs 0/2 and 1/3)
// should have near-equal real-world lengths; a gap above 20 percent of
// their average signals perspective distortion or a typo. Each measurement
// is also checked against plausibility bounds, numeric sanity, and whether
// its edge still exists on the mask.
func Validate(edges []Edge, measurements []EdgeMeasurement) ValidationResult {
	var warnings []string

	byIndex := make(map[int]EdgeMeasurement, len(measurements))
	for _, m := range measurements {
		switch {
		case math.IsNaN(m.RealWorldLength) || math.IsInf(m.RealWorldLength, 0) || m.RealWorldLength <= 0:
			warnings = append(warnings, fmt.Sprintf("edge %d: real-world length must be a positive number of meters", m.EdgeIndex))
		case m.RealWorldLength < MinPlausibleMeters:
			warnings = append(warnings, fmt.Sprintf("edge %d: %.3f m is implausibly short, verify the measurement", m.EdgeIndex, m.RealWorldLength))
		case m.RealWorldLength > MaxPlausibleMeters:
			warnings = append(warnings, fmt.Sprintf("edge %d: %.1f m is implausibly long, verify the measurement", m.EdgeIndex, m.RealWorldLength))
		}
		if m.EdgeIndex < 0 || m.EdgeIndex >= len(edges) {
			warnings = append(warnings, fmt.Sprintf("edge %d no longer exists on the mask, measurement is ignored", m.EdgeIndex))
			continue
		}
		byIndex[m.EdgeIndex] = m
	}

	if len(edges) >= 4 && len(measurements) >= 2 {
		for _, pair := range [][2]int{{0, 2}, {1, 3}} {
			a, aok := byIndex[pair[0]]
			b, bok := byIndex[pair[1]]
			if !aok || !bok || !a.usable() || !b.usable() {
				continue
			}
			avg := (a.RealWorldLength + b.RealWorldLength) / 2
			if avg > 0 && math.Abs(a.RealWorldLength-b.RealWorldLength) > 0.2*avg {
				warnings = append(warnings, fmt.Sprintf(
					"opposite edges %d and %d differ by more than 20%% (%.2f m vs %.2f m), check for perspective distortion",
					pair[0], pair[1], a.RealWorldLength, b.RealWorldLength))
			}
		}
	}

	if spread, mean, n := measurementSpread(byIndex); n >= spreadCheckMinMeasurements && mean > 0 && spread > 0.25*mean {
		warnings = append(warnings, fmt.Sprintf(
			"edge measurements imply inconsistent scales (spread %.1f of mean %.1f px/m), check for perspective distortion",
			spread, mean))
	}

	return ValidationResult{IsValid: len(warnings) == 0, Warnings: warnings}
}

// measurementSpread returns the weighted standard deviation and mean of the
// usable pixel densities, plus how many measurements contributed.
func measurementSpread(byIndex map[int]EdgeMeasurement) (spread, mean float64, n int) {
	vals := make([]float64, 0, len(byIndex))
	weights := make([]float64, 0, len(byIndex))
	for _, m := range byIndex {
		if !m.usable() {
			continue
		}
		vals = append(vals, m.PixelsPerMeter)
		weights = append(weights, m.RealWorldLength)
	}
	if len(vals) < 2 {
		return 0, 0, len(vals)
	}
	return stat.StdDev(vals, weights), stat.Mean(vals, weights), len(vals)
}

// CalibratedArea converts a polygon's pixel area to square meters using the
// weighted pixel density of its measurements. Measurements referencing
// edges the polygon no longer has are ignored. Returns 0 for degenerate
// polygons or without usable measurements.
func CalibratedArea(points []geometry.Point2D, measurements []EdgeMeasurement) float64 {
	if len(points) < 3 {
		return 0
	}
	ppm := WeightedPixelsPerMeter(currentMeasurements(measurements, len(points)))
	if ppm <= 0 {
		return 0
	}
	return geometry.Area(points) / (ppm * ppm)
}

// CalibratedLength converts an open polyline's pixel length to meters using
// the weighted pixel density of its measurements. Returns 0 for degenerate
// polylines or without usable measurements.
func CalibratedLength(points []geometry.Point2D, measurements []EdgeMeasurement) float64 {
	if len(points) < 2 {
		return 0
	}
	ppm := WeightedPixelsPerMeter(currentMeasurements(measurements, len(points)-1))
	if ppm <= 0 {
		return 0
	}
	return geometry.Perimeter(points, false) / ppm
}

// currentMeasurements drops measurements whose edge index is outside the
// mask's current edge count. Stale indices appear when vertices are
// inserted or deleted after calibration; they must not poison the math.
func currentMeasurements(measurements []EdgeMeasurement, edgeCount int) []EdgeMeasurement {
	out := make([]EdgeMeasurement, 0, len(measurements))
	for _, m := range measurements {
		if m.EdgeIndex >= 0 && m.EdgeIndex < edgeCount {
			out = append(out, m)
		}
	}
	return out
}
