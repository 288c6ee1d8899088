package outline

import "math"

// maxQuadSplits limits the number of quadratic curves a cubic curve is split into.
const maxQuadSplits = 16

// cubicToQuads approximates a cubic curve by a sequence of quadratic curves,
// each given as (control point, end point). The curve is split into n parts of
// equal parameter length, with n the smallest number for which the error of
// every part is at most maxErr.
func cubicToQuads(p0, p1, p2, p3 Point, maxErr float64) [][2]Point {
	if maxErr <= 0 {
		maxErr = 1
	}
	var quads [][2]Point
	for n := 1; n <= maxQuadSplits; n++ {
		quads = quads[:0]
		ok := true
		for i := 0; i < n; i++ {
			q0, q1, q2, q3 := cubicPart(p0, p1, p2, p3, float64(i)/float64(n), float64(i+1)/float64(n))
			if n < maxQuadSplits && quadError(q0, q1, q2, q3) > maxErr {
				ok = false
				break
			}
			ctrl := q1.add(q2).mul(3).sub(q0).sub(q3).mul(0.25)
			quads = append(quads, [2]Point{ctrl, q3})
		}
		if ok {
			break
		}
	}
	quads[len(quads)-1][1] = p3 // avoid drift of the end point
	return quads
}

// quadError returns the maximum distance between a cubic curve and its
// best quadratic approximation (sharing end points).
func quadError(p0, p1, p2, p3 Point) float64 {
	d := p3.sub(p2.mul(3)).add(p1.mul(3)).sub(p0)
	return math.Hypot(d.X, d.Y) * math.Sqrt(3) / 36
}

// cubicPart returns the control points of the part of a cubic curve between
// parameters t0 and t1.
func cubicPart(p0, p1, p2, p3 Point, t0, t1 float64) (Point, Point, Point, Point) {
	// split at t1, keep the first part, then split that at t0/t1
	a, b, c, d := splitCubic(p0, p1, p2, p3, t1)
	if t0 == 0 {
		return a, b, c, d
	}
	return splitCubicRight(a, b, c, d, t0/t1)
}

// splitCubic returns the control points of the part before t.
func splitCubic(p0, p1, p2, p3 Point, t float64) (Point, Point, Point, Point) {
	a, b, c := p0.lerp(p1, t), p1.lerp(p2, t), p2.lerp(p3, t)
	ab, bc := a.lerp(b, t), b.lerp(c, t)
	return p0, a, ab, ab.lerp(bc, t)
}

// splitCubicRight returns the control points of the part after t.
func splitCubicRight(p0, p1, p2, p3 Point, t float64) (Point, Point, Point, Point) {
	a, b, c := p0.lerp(p1, t), p1.lerp(p2, t), p2.lerp(p3, t)
	ab, bc := a.lerp(b, t), b.lerp(c, t)
	return ab.lerp(bc, t), bc, c, p3
}
