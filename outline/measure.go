package outline

import (
	"fmt"
	"math"

	"github.com/npillmayer/foundry/ot"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// Stats are statistical moments of the area enclosed by a glyph outline.
// Slant is the covariance of x and y divided by the variance of y: the
// horizontal shift per unit of height of the glyph's mass.
type Stats struct {
	Area       float64
	MeanX      float64
	MeanY      float64
	VarianceX  float64
	VarianceY  float64
	Covariance float64
	Slant      float64
}

// Measurer measures glyphs of a font. Outlines are loaded with package
// golang.org/x/image/font/sfnt, at a size of one pixel per font unit.
type Measurer struct {
	otf  *ot.Font
	sf   *sfnt.Font
	upem fixed.Int26_6
	buf  sfnt.Buffer
}

// NewMeasurer prepares a font for measurement. The font is serialized as a
// plain SFNT file; later changes to otf are not seen by the Measurer.
func NewMeasurer(otf *ot.Font) (*Measurer, error) {
	m := &Measurer{otf: otf}
	flavor := otf.Flavor
	otf.Flavor = ot.FlavorSFNT
	data, err := ot.Serialize(otf, ot.Some(false))
	otf.Flavor = flavor
	if err != nil {
		return nil, err
	}
	if m.sf, err = sfnt.Parse(data); err != nil {
		// outlines are then taken from the container's tables
		tracer().Infof("measuring glyphs without sfnt: %v", err)
		m.sf = nil
	} else {
		m.upem = fixed.I(int(m.sf.UnitsPerEm()))
	}
	return m, nil
}

// Path returns the outline of a glyph, in font units.
func (m *Measurer) Path(gid ot.GlyphIndex) (Path, error) {
	if m.sf == nil {
		return GlyphPath(m.otf, gid)
	}
	segs, err := m.sf.LoadGlyph(&m.buf, sfnt.GlyphIndex(gid), m.upem, nil)
	if err != nil {
		return nil, fmt.Errorf("glyph %d: %w", gid, err)
	}
	// sfnt uses a y axis pointing downwards
	pt := func(p fixed.Point26_6) Point {
		return Point{float64(p.X) / 64, -float64(p.Y) / 64}
	}
	rec := &Recorder{}
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			rec.ClosePath()
			p := pt(seg.Args[0])
			rec.MoveTo(p.X, p.Y)
		case sfnt.SegmentOpLineTo:
			p := pt(seg.Args[0])
			rec.LineTo(p.X, p.Y)
		case sfnt.SegmentOpQuadTo:
			c, p := pt(seg.Args[0]), pt(seg.Args[1])
			rec.QuadTo(c.X, c.Y, p.X, p.Y)
		case sfnt.SegmentOpCubeTo:
			c1, c2, p := pt(seg.Args[0]), pt(seg.Args[1]), pt(seg.Args[2])
			rec.CubeTo(c1.X, c1.Y, c2.X, c2.Y, p.X, p.Y)
		}
	}
	return rec.Path, nil
}

// Measure returns the statistics of a glyph's outline.
func (m *Measurer) Measure(gid ot.GlyphIndex) (Stats, error) {
	path, err := m.Path(gid)
	if err != nil {
		return Stats{}, err
	}
	return path.Stats(), nil
}

// Stats calculates the moments of the area enclosed by a path, with Green's
// theorem over a polygonal approximation of the contours. Contours are
// expected to follow the non-zero winding rule with consistent directions.
func (path Path) Stats() Stats {
	var a, mx, my, mxx, myy, mxy float64
	for _, c := range path {
		pts := c.polygon()
		for i := range pts {
			p, q := pts[i], pts[(i+1)%len(pts)]
			cross := p.X*q.Y - q.X*p.Y
			a += cross / 2
			mx += (p.X + q.X) * cross / 6
			my += (p.Y + q.Y) * cross / 6
			mxx += (p.X*p.X + p.X*q.X + q.X*q.X) * cross / 12
			myy += (p.Y*p.Y + p.Y*q.Y + q.Y*q.Y) * cross / 12
			mxy += (p.X*q.Y + 2*p.X*p.Y + 2*q.X*q.Y + q.X*p.Y) * cross / 24
		}
	}
	var s Stats
	if a == 0 {
		return s
	}
	s.Area = math.Abs(a)
	s.MeanX, s.MeanY = mx/a, my/a
	s.VarianceX = mxx/a - s.MeanX*s.MeanX
	s.VarianceY = myy/a - s.MeanY*s.MeanY
	s.Covariance = mxy/a - s.MeanX*s.MeanY
	if s.VarianceY > 0 {
		s.Slant = s.Covariance / s.VarianceY
	}
	return s
}

// GlyphPath returns the outline of a glyph from table glyf or 'CFF ' of a font.
// Composite glyphs are resolved.
func GlyphPath(otf *ot.Font, gid ot.GlyphIndex) (Path, error) {
	if glyf := otf.Lookup(ot.T("glyf")).AsGlyf(); glyf != nil {
		contours, err := glyf.Contours(gid)
		if err != nil {
			return nil, err
		}
		path := make(Path, 0, len(contours))
		for _, c := range contours {
			path = append(path, FromGlyphPoints(c))
		}
		return path, nil
	}
	if t := otf.Lookup(ot.T("CFF ")).AsCFF(); t != nil {
		f, err := t.CFF()
		if err != nil {
			return nil, err
		}
		if int(gid) >= f.NumGlyphs() {
			return nil, fmt.Errorf("glyph %d: %w", gid, ot.ErrMissingGlyph)
		}
		rec := &Recorder{}
		if _, err := f.Outline(int(gid), rec); err != nil {
			return nil, fmt.Errorf("glyph %d: %w", gid, err)
		}
		return rec.Path, nil
	}
	return nil, fmt.Errorf("font has no outlines: %w", ot.ErrMissingTable)
}
