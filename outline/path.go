package outline

import (
	"math"

	"github.com/npillmayer/foundry/ot"
)

// Point is a point of an outline, in font units.
type Point struct {
	X, Y float64
}

func (p Point) add(q Point) Point   { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) sub(q Point) Point   { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) mul(f float64) Point { return Point{p.X * f, p.Y * f} }
func (p Point) lerp(q Point, t float64) Point {
	return Point{p.X + (q.X-p.X)*t, p.Y + (q.Y-p.Y)*t}
}
func (p Point) dist(q Point) float64 { return math.Hypot(q.X-p.X, q.Y-p.Y) }

// Op is the kind of a segment.
type Op uint8

// Segment kinds.
const (
	LineTo Op = iota
	QuadTo
	CubeTo
)

// Segment is a line or curve, starting at the end point of the previous segment.
// Quadratic curves use Ctrl[0], cubic curves both control points.
type Segment struct {
	Op   Op
	Ctrl [2]Point
	To   Point
}

// Contour is a closed sequence of segments. The closing line from the last end
// point back to Start is implicit.
type Contour struct {
	Start Point
	Segs  []Segment
}

// Path is the outline of a glyph.
type Path []Contour

// Recorder records an outline drawn with the cff.Pather methods.
type Recorder struct {
	Path Path
	open bool
}

// MoveTo starts a new contour.
func (r *Recorder) MoveTo(x, y float64) {
	r.Path = append(r.Path, Contour{Start: Point{x, y}})
	r.open = true
}

// LineTo adds a line to the current contour.
func (r *Recorder) LineTo(x, y float64) {
	r.add(Segment{Op: LineTo, To: Point{x, y}})
}

// QuadTo adds a quadratic curve to the current contour.
func (r *Recorder) QuadTo(x1, y1, x, y float64) {
	r.add(Segment{Op: QuadTo, Ctrl: [2]Point{{x1, y1}}, To: Point{x, y}})
}

// CubeTo adds a cubic curve to the current contour.
func (r *Recorder) CubeTo(x1, y1, x2, y2, x, y float64) {
	r.add(Segment{Op: CubeTo, Ctrl: [2]Point{{x1, y1}, {x2, y2}}, To: Point{x, y}})
}

// ClosePath closes the current contour.
func (r *Recorder) ClosePath() {
	r.open = false
}

func (r *Recorder) add(s Segment) {
	if !r.open {
		// drawing without MoveTo continues at the end of the last contour
		var p Point
		if n := len(r.Path); n > 0 {
			p = r.Path[n-1].end()
		}
		r.MoveTo(p.X, p.Y)
	}
	c := &r.Path[len(r.Path)-1]
	c.Segs = append(c.Segs, s)
}

// end returns the end point of the last segment.
func (c Contour) end() Point {
	if len(c.Segs) == 0 {
		return c.Start
	}
	return c.Segs[len(c.Segs)-1].To
}

// Reverse returns the contour with reversed direction.
func (c Contour) Reverse() Contour {
	r := Contour{Start: c.end()}
	for i := len(c.Segs) - 1; i >= 0; i-- {
		from := c.Start
		if i > 0 {
			from = c.Segs[i-1].To
		}
		s := c.Segs[i]
		switch s.Op {
		case QuadTo:
			s.Ctrl = [2]Point{s.Ctrl[0]}
		case CubeTo:
			s.Ctrl = [2]Point{s.Ctrl[1], s.Ctrl[0]}
		}
		s.To = from
		r.Segs = append(r.Segs, s)
	}
	return r
}

// polygon approximates the contour by straight lines.
func (c Contour) polygon() []Point {
	const steps = 16
	pts := []Point{c.Start}
	cur := c.Start
	for _, s := range c.Segs {
		switch s.Op {
		case LineTo:
			pts = append(pts, s.To)
		case QuadTo:
			for i := 1; i <= steps; i++ {
				pts = append(pts, quadAt(cur, s.Ctrl[0], s.To, float64(i)/steps))
			}
		case CubeTo:
			for i := 1; i <= steps; i++ {
				pts = append(pts, cubicAt(cur, s.Ctrl[0], s.Ctrl[1], s.To, float64(i)/steps))
			}
		}
		cur = s.To
	}
	return pts
}

// Area returns the signed area of the contour: positive for counter-clockwise
// contours (with the y axis pointing upwards).
func (c Contour) Area() float64 {
	return polygonArea(c.polygon())
}

// Bounds returns the bounding box of the contour.
func (c Contour) Bounds() (lo, hi Point) {
	lo, hi = c.Start, c.Start
	for _, p := range c.polygon() {
		lo.X, lo.Y = math.Min(lo.X, p.X), math.Min(lo.Y, p.Y)
		hi.X, hi.Y = math.Max(hi.X, p.X), math.Max(hi.Y, p.Y)
	}
	return
}

func polygonArea(pts []Point) float64 {
	a := 0.0
	for i := range pts {
		p, q := pts[i], pts[(i+1)%len(pts)]
		a += p.X*q.Y - q.X*p.Y
	}
	return a / 2
}

// contains reports whether p is inside a polygon, by the even-odd rule.
func contains(poly []Point, p Point) bool {
	in := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) && p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			in = !in
		}
	}
	return in
}

func quadAt(p0, p1, p2 Point, t float64) Point {
	return p0.lerp(p1, t).lerp(p1.lerp(p2, t), t)
}

func cubicAt(p0, p1, p2, p3 Point, t float64) Point {
	a, b, c := p0.lerp(p1, t), p1.lerp(p2, t), p2.lerp(p3, t)
	return a.lerp(b, t).lerp(b.lerp(c, t), t)
}

// Draw replays the path to a pather. Quadratic curves are elevated to cubic
// curves, and the final line back to a contour's start point is left implicit.
func (path Path) Draw(p interface {
	MoveTo(x, y float64)
	LineTo(x, y float64)
	CubeTo(x1, y1, x2, y2, x, y float64)
	ClosePath()
}) {
	for _, c := range path {
		if len(c.Segs) == 0 {
			continue
		}
		p.MoveTo(c.Start.X, c.Start.Y)
		cur := c.Start
		for i, s := range c.Segs {
			switch s.Op {
			case LineTo:
				if i == len(c.Segs)-1 && s.To == c.Start {
					break
				}
				p.LineTo(s.To.X, s.To.Y)
			case QuadTo:
				c1, c2 := elevate(cur, s.Ctrl[0], s.To)
				p.CubeTo(c1.X, c1.Y, c2.X, c2.Y, s.To.X, s.To.Y)
			case CubeTo:
				p.CubeTo(s.Ctrl[0].X, s.Ctrl[0].Y, s.Ctrl[1].X, s.Ctrl[1].Y, s.To.X, s.To.Y)
			}
			cur = s.To
		}
		p.ClosePath()
	}
}

// elevate returns the control points of the cubic curve equal to a quadratic one.
func elevate(p0, q, p2 Point) (Point, Point) {
	return p0.add(q.sub(p0).mul(2.0 / 3)), p2.add(q.sub(p2).mul(2.0 / 3))
}

// --- TrueType contours -----------------------------------------------------

// FromGlyphPoints converts a TrueType contour, a closed sequence of on- and
// off-curve points, to a contour of lines and quadratic curves.
func FromGlyphPoints(pts []ot.GlyphPoint) Contour {
	n := len(pts)
	if n == 0 {
		return Contour{}
	}
	at := func(i int) Point { return Point{float64(pts[i].X), float64(pts[i].Y)} }
	first := -1
	for i, p := range pts {
		if p.OnCurve {
			first = i
			break
		}
	}
	var c Contour
	var seq []int
	if first < 0 { // no on-curve points at all
		c.Start = at(n-1).lerp(at(0), 0.5)
		for i := 0; i < n; i++ {
			seq = append(seq, i)
		}
	} else {
		c.Start = at(first)
		for i := 1; i < n; i++ {
			seq = append(seq, (first+i)%n)
		}
	}
	var ctrl Point
	pending := false // ctrl holds an off-curve point
	for _, i := range seq {
		p := at(i)
		switch {
		case pts[i].OnCurve && !pending:
			c.Segs = append(c.Segs, Segment{Op: LineTo, To: p})
		case pts[i].OnCurve:
			c.Segs = append(c.Segs, Segment{Op: QuadTo, Ctrl: [2]Point{ctrl}, To: p})
			pending = false
		case pending:
			c.Segs = append(c.Segs, Segment{Op: QuadTo, Ctrl: [2]Point{ctrl}, To: ctrl.lerp(p, 0.5)})
			ctrl = p
		default:
			ctrl, pending = p, true
		}
	}
	if pending {
		c.Segs = append(c.Segs, Segment{Op: QuadTo, Ctrl: [2]Point{ctrl}, To: c.Start})
	} else {
		c.Segs = append(c.Segs, Segment{Op: LineTo, To: c.Start})
	}
	return c
}

// GlyphPoints converts a contour of lines and quadratic curves to TrueType
// points. Cubic curves are approximated with a maximum error of maxErr font
// units. Coordinates are rounded; on-curve points which are implied by their
// off-curve neighbours are omitted.
func (c Contour) GlyphPoints(maxErr float64) []ot.GlyphPoint {
	round := func(p Point, on bool) ot.GlyphPoint {
		return ot.GlyphPoint{X: clamp16(p.X), Y: clamp16(p.Y), OnCurve: on}
	}
	pts := []ot.GlyphPoint{round(c.Start, true)}
	cur := c.Start
	for _, s := range c.Segs {
		switch s.Op {
		case LineTo:
			pts = append(pts, round(s.To, true))
		case QuadTo:
			pts = append(pts, round(s.Ctrl[0], false), round(s.To, true))
		case CubeTo:
			for _, q := range cubicToQuads(cur, s.Ctrl[0], s.Ctrl[1], s.To, maxErr) {
				pts = append(pts, round(q[0], false), round(q[1], true))
			}
		}
		cur = s.To
	}
	// the contour closes implicitly
	if n := len(pts); n > 1 && pts[n-1] == pts[0] {
		pts = pts[:n-1]
	}
	return dropImpliedPoints(pts)
}

// dropImpliedPoints removes on-curve points lying exactly in the middle of
// two off-curve neighbours, and consecutive duplicates.
func dropImpliedPoints(pts []ot.GlyphPoint) []ot.GlyphPoint {
	n := len(pts)
	if n < 3 {
		return pts
	}
	keep := make([]ot.GlyphPoint, 0, n)
	for i, p := range pts {
		prev, next := pts[(i+n-1)%n], pts[(i+1)%n]
		if p.OnCurve && !prev.OnCurve && !next.OnCurve &&
			2*int(p.X) == int(prev.X)+int(next.X) && 2*int(p.Y) == int(prev.Y)+int(next.Y) {
			continue
		}
		if len(keep) > 0 && keep[len(keep)-1] == p {
			continue
		}
		keep = append(keep, p)
	}
	return keep
}

func clamp16(v float64) int16 {
	return int16(math.Max(math.MinInt16, math.Min(math.MaxInt16, math.Round(v))))
}
