package utils

import "seehuhn.de/go/geom/vec"

// Distance between two planar points.
func Distance(a, b vec.Vec2) float64 {
	return b.Sub(a).Length()
}

// Lerp blends from a (t = 0) to b (t = 1).
func Lerp(a, b vec.Vec2, t float64) vec.Vec2 {
	return a.Mul(1 - t).Add(b.Mul(t))
}

// Project returns the point of segment ab nearest to p, never past a or b.
func Project(p, a, b vec.Vec2) vec.Vec2 {
	d := b.Sub(a)
	l2 := d.Dot(d)
	if l2 == 0 {
		return a
	}
	t := p.Sub(a).Dot(d) / l2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return a.Add(d.Mul(t))
}
