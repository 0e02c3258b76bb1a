package render

import (
	"fmt"
	"hash/fnv"

	"github.com/malakyesheridan/PoolVisual-sub005/pkg/geometry"
)

// MaskHash fingerprints polygon geometry for cache keying. Coordinates are
// formatted at full precision, so any vertex move, insertion, removal or
// reorder produces a different hash.
func MaskHash(points []geometry.Point2D) uint32 {
	h := fnv.New32a()
	for _, p := range points {
		fmt.Fprintf(h, "%g,%g;", p.X, p.Y)
	}
	return h.Sum32()
}
