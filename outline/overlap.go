package outline

import (
	"math"

	"github.com/tdewolff/canvas"
)

// RemoveOverlaps merges the overlapping contours of a path (and the loops of
// self-intersecting contours) with the non-zero winding rule. ok is false if
// the path has no overlaps, in which case it is returned unchanged.
//
// Curves of merged paths are flattened. Coordinates are rounded to integers.
func RemoveOverlaps(path Path) (Path, bool) {
	if !crossing(path) {
		return path, false
	}
	p := &canvas.Path{}
	for _, c := range path {
		if len(c.Segs) == 0 {
			continue
		}
		p.MoveTo(c.Start.X, c.Start.Y)
		for _, s := range c.Segs {
			switch s.Op {
			case LineTo:
				p.LineTo(s.To.X, s.To.Y)
			case QuadTo:
				p.QuadTo(s.Ctrl[0].X, s.Ctrl[0].Y, s.To.X, s.To.Y)
			case CubeTo:
				p.CubeTo(s.Ctrl[0].X, s.Ctrl[0].Y, s.Ctrl[1].X, s.Ctrl[1].Y, s.To.X, s.To.Y)
			}
		}
		p.Close()
	}
	merged, ok := fromCanvas(p.Settle(canvas.NonZero))
	if !ok {
		tracer().Debugf("removing overlaps produced arcs, keeping contours")
		return path, false
	}
	return merged, true
}

// fromCanvas converts a canvas path back to contours. Arcs are not expected
// and make it fail.
func fromCanvas(p *canvas.Path) (Path, bool) {
	r := func(q canvas.Point) Point { return Point{math.Round(q.X), math.Round(q.Y)} }
	var path Path
	sc := p.Scanner()
	for sc.Scan() {
		switch sc.Cmd() {
		case canvas.MoveToCmd:
			path = append(path, Contour{Start: r(sc.End())})
			continue
		case canvas.ArcToCmd:
			return nil, false
		}
		if len(path) == 0 {
			path = append(path, Contour{Start: r(sc.Start())})
		}
		c := &path[len(path)-1]
		to := r(sc.End())
		switch sc.Cmd() {
		case canvas.LineToCmd, canvas.CloseCmd:
			if to != c.end() {
				c.Segs = append(c.Segs, Segment{Op: LineTo, To: to})
			}
		case canvas.QuadToCmd:
			c.Segs = append(c.Segs, Segment{Op: QuadTo, Ctrl: [2]Point{r(sc.CP1())}, To: to})
		case canvas.CubeToCmd:
			c.Segs = append(c.Segs, Segment{Op: CubeTo, Ctrl: [2]Point{r(sc.CP1()), r(sc.CP2())}, To: to})
		}
	}
	out := path[:0]
	for _, c := range path {
		if len(c.Segs) >= 2 { // fewer segments enclose nothing
			out = append(out, c)
		}
	}
	return out, true
}

// crossing reports whether edges of the path cross each other, within one
// contour or between two contours. Edges which only touch do not count.
func crossing(path Path) bool {
	type edge struct{ a, b Point }
	var edges [][]edge
	for _, c := range path {
		poly := c.polygon()
		if len(poly) < 3 {
			continue
		}
		es := make([]edge, len(poly))
		for i := range poly {
			es[i] = edge{poly[i], poly[(i+1)%len(poly)]}
		}
		edges = append(edges, es)
	}
	for i, ei := range edges {
		for j := i; j < len(edges); j++ {
			for k, e := range ei {
				l0 := 0
				if i == j {
					l0 = k + 2 // skip the edge itself and its successor
				}
				for l := l0; l < len(edges[j]); l++ {
					if i == j && k == 0 && l == len(ei)-1 {
						continue // neighbours across the closing point
					}
					f := edges[j][l]
					if properCross(e.a, e.b, f.a, f.b) {
						return true
					}
				}
			}
		}
	}
	return false
}

// properCross reports whether segments ab and cd intersect in a single point
// interior to both.
func properCross(a, b, c, d Point) bool {
	orient := func(p, q, r Point) float64 {
		return (q.X-p.X)*(r.Y-p.Y) - (q.Y-p.Y)*(r.X-p.X)
	}
	const eps = 1e-9
	o1, o2 := orient(a, b, c), orient(a, b, d)
	o3, o4 := orient(c, d, a), orient(c, d, b)
	return (o1 > eps && o2 < -eps || o1 < -eps && o2 > eps) &&
		(o3 > eps && o4 < -eps || o3 < -eps && o4 > eps)
}
