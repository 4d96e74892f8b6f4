// Package geo holds the pure geometry used to classify map clicks: a
// ray-casting point-in-polygon test and an ordered table of coarse continent
// outlines.
package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// edgeEpsilon replaces the denominator of an edge whose latitude span is
// effectively zero.
const edgeEpsilon = 1e-9

// PointInPolygon reports whether (x, y) lies inside ring. The ring is closed
// implicitly: the last vertex connects back to the first. Points exactly on an
// edge may land on either side, but the answer is stable for a given ring.
func PointInPolygon(x, y float64, ring orb.Ring) bool {
	n := len(ring)
	if n < 3 {
		return false
	}

	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]

		if (yi > y) == (yj > y) {
			continue
		}

		dy := yj - yi
		if math.Abs(dy) < edgeEpsilon {
			dy = math.Copysign(edgeEpsilon, dy)
		}
		if x < (xj-xi)*(y-yi)/dy+xi {
			inside = !inside
		}
	}
	return inside
}
