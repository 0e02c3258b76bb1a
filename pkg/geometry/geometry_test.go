package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointInPolygon(t *testing.T) {
	square := []Point2D{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100}}

	tests := []struct {
		name  string
		point Point2D
		want  bool
	}{
		{"center", Point2D{X: 50, Y: 50}, true},
		{"outside right", Point2D{X: 150, Y: 50}, false},
		{"outside above", Point2D{X: 50, Y: -10}, false},
		{"near corner inside", Point2D{X: 1, Y: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PointInPolygon(tt.point, square))
		})
	}

	t.Run("degenerate", func(t *testing.T) {
		assert.False(t, PointInPolygon(Point2D{X: 1, Y: 1}, square[:2]))
		assert.False(t, PointInPolygon(Point2D{}, nil))
	})

	t.Run("concave notch", func(t *testing.T) {
		// L-shape with the notch at the top right.
		l := []Point2D{
			{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 50},
			{X: 50, Y: 50}, {X: 50, Y: 100}, {X: 0, Y: 100},
		}
		assert.True(t, PointInPolygon(Point2D{X: 25, Y: 75}, l))
		assert.False(t, PointInPolygon(Point2D{X: 75, Y: 75}, l))
	})
}

func TestArea(t *testing.T) {
	t.Run("square", func(t *testing.T) {
		square := []Point2D{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100}}
		assert.InDelta(t, 10000.0, Area(square), 1e-9)
	})

	t.Run("winding independent", func(t *testing.T) {
		cw := []Point2D{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}}
		ccw := []Point2D{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
		assert.InDelta(t, Area(cw), Area(ccw), 1e-9)
		assert.InDelta(t, -SignedArea(cw), SignedArea(ccw), 1e-9)
	})

	t.Run("triangle", func(t *testing.T) {
		tri := []Point2D{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 10}}
		assert.InDelta(t, 50.0, Area(tri), 1e-9)
	})

	t.Run("degenerate", func(t *testing.T) {
		assert.Zero(t, Area(nil))
		assert.Zero(t, Area([]Point2D{{X: 1, Y: 1}, {X: 2, Y: 2}}))
	})

	t.Run("circle approximation", func(t *testing.T) {
		circle := GenerateCirclePoints(50, 50, 20, 256)
		assert.InDelta(t, math.Pi*20*20, Area(circle), 1.0)
	})
}

func TestPerimeter(t *testing.T) {
	square := []Point2D{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100}}

	assert.InDelta(t, 400.0, Perimeter(square, true), 1e-9)
	assert.InDelta(t, 300.0, Perimeter(square, false), 1e-9)
	assert.Zero(t, Perimeter(square[:1], true))
	assert.Zero(t, Perimeter(nil, false))
}

func TestBoundingBox(t *testing.T) {
	points := []Point2D{{X: 10, Y: 40}, {X: -5, Y: 12}, {X: 30, Y: 7}}
	box := BoundingBox(points)

	assert.Equal(t, Rect{X: -5, Y: 7, Width: 35, Height: 33}, box)
	assert.Equal(t, Rect{}, BoundingBox(nil))
}

func TestCentroid(t *testing.T) {
	points := []Point2D{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	c := Centroid(points)

	assert.InDelta(t, 5.0, c.X, 1e-9)
	assert.InDelta(t, 5.0, c.Y, 1e-9)
	assert.Equal(t, Point2D{}, Centroid(nil))
}

func TestRectIntersect(t *testing.T) {
	a := NewRect(0, 0, 100, 100)

	t.Run("overlap", func(t *testing.T) {
		got, ok := a.Intersect(NewRect(50, 50, 100, 100))
		assert.True(t, ok)
		assert.Equal(t, NewRect(50, 50, 50, 50), got)
	})

	t.Run("disjoint", func(t *testing.T) {
		_, ok := a.Intersect(NewRect(200, 200, 10, 10))
		assert.False(t, ok)
	})

	t.Run("touching edges do not overlap", func(t *testing.T) {
		_, ok := a.Intersect(NewRect(100, 0, 10, 10))
		assert.False(t, ok)
	})
}
