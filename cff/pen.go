package cff

import (
	"fmt"
	"math"

	sfntcff "seehuhn.de/go/sfnt/cff"
)

// Pather receives the path of a glyph outline. Contours are started with
// MoveTo and always closed with ClosePath.
type Pather interface {
	MoveTo(x, y float64)
	LineTo(x, y float64)
	CubeTo(x1, y1, x2, y2, x, y float64)
	ClosePath()
}

// Outline sends the path of a glyph to p and returns the advance width of the
// glyph.
func (f *Font) Outline(gid int, p Pather) (float64, error) {
	if gid < 0 || gid >= len(f.Glyphs) || f.Glyphs[gid] == nil {
		return 0, fmt.Errorf("%w: no glyph %d", ErrInvalidCFF, gid)
	}
	g := f.Glyphs[gid]
	open := false
	for _, cmd := range g.Cmds {
		switch cmd.Op {
		case sfntcff.OpMoveTo:
			if open {
				p.ClosePath()
			}
			p.MoveTo(cmd.Args[0], cmd.Args[1])
			open = true
		case sfntcff.OpLineTo:
			p.LineTo(cmd.Args[0], cmd.Args[1])
		case sfntcff.OpCurveTo:
			a := cmd.Args
			p.CubeTo(a[0], a[1], a[2], a[3], a[4], a[5])
		}
	}
	if open {
		p.ClosePath()
	}
	return g.Width, nil
}

// Width returns the advance width of a glyph.
func (f *Font) Width(gid int) (float64, error) {
	if gid < 0 || gid >= len(f.Glyphs) || f.Glyphs[gid] == nil {
		return 0, fmt.Errorf("%w: no glyph %d", ErrInvalidCFF, gid)
	}
	return f.Glyphs[gid].Width, nil
}

// Pen draws a new CFF glyph. It implements Pather, so outlines may be copied
// from one font to another:
//
//	pen := cff.NewPen(name, width)
//	_, err := f.Outline(gid, pen)
//	g := pen.Glyph()
//
// Coordinates are absolute. Hints are not produced.
type Pen struct {
	g     *sfntcff.Glyph
	scale float64
}

// NewPen creates a pen for a glyph with a given name and advance width.
func NewPen(name string, width float64) *Pen {
	return &Pen{g: sfntcff.NewGlyph(name, width), scale: 1}
}

// Scaled makes the pen multiply all coordinates by s and round them.
func (p *Pen) Scaled(s float64) *Pen {
	p.scale = s
	return p
}

func (p *Pen) pt(x, y float64) (float64, float64) {
	if p.scale == 1 {
		return x, y
	}
	return math.Round(x * p.scale), math.Round(y * p.scale)
}

func (p *Pen) MoveTo(x, y float64) {
	p.g.MoveTo(p.pt(x, y))
}

func (p *Pen) LineTo(x, y float64) {
	p.g.LineTo(p.pt(x, y))
}

func (p *Pen) CubeTo(x1, y1, x2, y2, x, y float64) {
	x1, y1 = p.pt(x1, y1)
	x2, y2 = p.pt(x2, y2)
	x, y = p.pt(x, y)
	p.g.CurveTo(x1, y1, x2, y2, x, y)
}

// ClosePath does nothing, contours of CFF glyphs close implicitly.
func (p *Pen) ClosePath() {}

// Glyph returns the glyph drawn.
func (p *Pen) Glyph() *sfntcff.Glyph {
	return p.g
}

// Bounds returns the bounding box of a glyph's outline. ok is false for glyphs
// without contours.
func (f *Font) Bounds(gid int) (xmin, ymin, xmax, ymax float64, ok bool, err error) {
	b := &BoundsPen{}
	if _, err = f.Outline(gid, b); err != nil {
		return
	}
	xmin, ymin, xmax, ymax, ok = b.Bounds()
	return
}

// FontBBox returns the union of the bounding boxes of all glyphs, rounded
// outwards to integers.
func (f *Font) FontBBox() ([4]float64, error) {
	b := &BoundsPen{}
	for gid := range f.Glyphs {
		if _, err := f.Outline(gid, b); err != nil {
			return [4]float64{}, err
		}
	}
	xmin, ymin, xmax, ymax, ok := b.Bounds()
	if !ok {
		return [4]float64{}, nil
	}
	return [4]float64{math.Floor(xmin), math.Floor(ymin), math.Ceil(xmax), math.Ceil(ymax)}, nil
}

// BoundsPen is a Pather collecting the exact bounding box of a path,
// including the extrema of curves.
type BoundsPen struct {
	x, y                   float64
	xmin, ymin, xmax, ymax float64
	ok                     bool
}

// Bounds returns the box collected so far. ok is false if no point has been seen.
func (b *BoundsPen) Bounds() (xmin, ymin, xmax, ymax float64, ok bool) {
	return b.xmin, b.ymin, b.xmax, b.ymax, b.ok
}

func (b *BoundsPen) add(x, y float64) {
	if !b.ok {
		b.xmin, b.xmax, b.ymin, b.ymax, b.ok = x, x, y, y, true
		return
	}
	b.xmin, b.xmax = min(b.xmin, x), max(b.xmax, x)
	b.ymin, b.ymax = min(b.ymin, y), max(b.ymax, y)
}

func (b *BoundsPen) MoveTo(x, y float64) {
	b.add(x, y)
	b.x, b.y = x, y
}

func (b *BoundsPen) LineTo(x, y float64) {
	b.add(x, y)
	b.x, b.y = x, y
}

func (b *BoundsPen) CubeTo(x1, y1, x2, y2, x, y float64) {
	b.add(x, y)
	for _, t := range cubicExtrema(b.x, x1, x2, x) {
		b.add(cubicAt(b.x, x1, x2, x, t), cubicAt(b.y, y1, y2, y, t))
	}
	for _, t := range cubicExtrema(b.y, y1, y2, y) {
		b.add(cubicAt(b.x, x1, x2, x, t), cubicAt(b.y, y1, y2, y, t))
	}
	b.x, b.y = x, y
}

func (b *BoundsPen) ClosePath() {}

func cubicAt(p0, p1, p2, p3, t float64) float64 {
	mt := 1 - t
	return mt*mt*mt*p0 + 3*mt*mt*t*p1 + 3*mt*t*t*p2 + t*t*t*p3
}

// cubicExtrema returns the parameters in (0,1) where the derivative of a cubic
// Bézier polynomial vanishes.
func cubicExtrema(p0, p1, p2, p3 float64) []float64 {
	// derivative: a t² + b t + c
	a := 3 * (-p0 + 3*p1 - 3*p2 + p3)
	b := 6 * (p0 - 2*p1 + p2)
	c := 3 * (p1 - p0)
	var ts []float64
	in := func(t float64) {
		if t > 0 && t < 1 {
			ts = append(ts, t)
		}
	}
	const eps = 1e-12
	if math.Abs(a) < eps {
		if math.Abs(b) > eps {
			in(-c / b)
		}
		return ts
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		return ts
	}
	sq := math.Sqrt(disc)
	in((-b + sq) / (2 * a))
	in((-b - sq) / (2 * a))
	return ts
}
