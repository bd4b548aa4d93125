package utils

import (
	"math"

	"seehuhn.de/go/geom/vec"
)

// NearestOnPolyline finds the point of the open polyline closest to p.
// Every segment is tried in order, and the first one at the minimum distance
// wins. ok is false when the polyline has fewer than two points.
func NearestOnPolyline(p vec.Vec2, line []vec.Vec2) (nearest vec.Vec2, dist float64, ok bool) {
	if len(line) < 2 {
		return vec.Vec2{}, 0, false
	}

	dist = math.Inf(1)
	for i := 1; i < len(line); i++ {
		q := Project(p, line[i-1], line[i])
		if d := Distance(p, q); d < dist {
			nearest, dist = q, d
		}
	}
	return nearest, dist, true
}
