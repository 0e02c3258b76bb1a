package geometry

import "math"

// PointInPolygon tests if a point is inside a polygon using ray casting.
func PointInPolygon(p Point2D, polygon []Point2D) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	n := len(polygon)

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		pi, pj := polygon[i], polygon[j]

		// Check if ray from p going right intersects edge pi-pj
		if ((pi.Y > p.Y) != (pj.Y > p.Y)) &&
			(p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X) {
			inside = !inside
		}
	}

	return inside
}

// SignedArea computes the signed area of a polygon via the shoelace formula.
// Positive for counter-clockwise winding in a y-up frame, negative for
// clockwise. Self-intersecting input yields the algebraic sum of its loops.
func SignedArea(polygon []Point2D) float64 {
	if len(polygon) < 3 {
		return 0
	}

	var sum float64
	n := len(polygon)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += polygon[i].X*polygon[j].Y - polygon[j].X*polygon[i].Y
	}
	return sum / 2
}

// Area computes the absolute polygon area via the shoelace formula.
// Returns 0 for fewer than three vertices.
func Area(polygon []Point2D) float64 {
	return math.Abs(SignedArea(polygon))
}

// Perimeter computes the total length of the path through the points.
// When closed is true the segment from the last point back to the first
// is included.
func Perimeter(points []Point2D, closed bool) float64 {
	if len(points) < 2 {
		return 0
	}

	var total float64
	for i := 0; i < len(points)-1; i++ {
		total += points[i].Distance(points[i+1])
	}
	if closed {
		total += points[len(points)-1].Distance(points[0])
	}
	return total
}
