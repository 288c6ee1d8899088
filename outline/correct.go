package outline

import (
	"fmt"
	"slices"

	"github.com/npillmayer/foundry/cff"
	"github.com/npillmayer/foundry/ot"
	"github.com/npillmayer/foundry/otquery"
)

// DefaultMinArea is the default area below which a contour's bounding box
// counts as tiny.
const DefaultMinArea = 25

// Corrector fixes common contour problems: contours with a bounding box
// smaller than MinArea square units are removed, zero-length segments are
// dropped, overlapping contours are merged if RemoveOverlaps is set, and
// contours are turned to the winding direction of the outline format
// (clockwise outer contours for TrueType, counter-clockwise for PostScript).
//
// A MinArea of 0 keeps tiny contours.
type Corrector struct {
	MinArea        float64
	RemoveOverlaps bool
}

// DefaultCorrector removes tiny contours and overlaps.
func DefaultCorrector() Corrector {
	return Corrector{MinArea: DefaultMinArea, RemoveOverlaps: true}
}

// Correct corrects the outlines of all glyphs of a font and returns the names
// of the glyphs which have been changed, sorted. Composite TrueType glyphs are
// left alone.
func (cr Corrector) Correct(otf *ot.Font) ([]string, error) {
	names := otquery.GlyphNames(otf)
	var changed []ot.GlyphIndex
	var err error
	switch {
	case otf.Lookup(ot.T("glyf")).AsGlyf() != nil:
		changed, err = cr.correctGlyf(otf.Lookup(ot.T("glyf")).AsGlyf())
	case otf.Lookup(ot.T("CFF ")).AsCFF() != nil:
		changed, err = cr.correctCFF(otf.Lookup(ot.T("CFF ")).AsCFF())
	default:
		return nil, fmt.Errorf("font has no outlines: %w", ot.ErrMissingTable)
	}
	if err != nil {
		return nil, err
	}
	result := make([]string, 0, len(changed))
	for _, gid := range changed {
		if int(gid) < len(names) {
			result = append(result, names[gid])
		}
	}
	slices.Sort(result)
	tracer().Infof("corrected contours of %d glyphs", len(result))
	return result, nil
}

func (cr Corrector) correctGlyf(glyf *ot.GlyfTable) ([]ot.GlyphIndex, error) {
	var changed []ot.GlyphIndex
	for gid := 0; gid < glyf.NumGlyphs(); gid++ {
		g, err := glyf.Glyph(ot.GlyphIndex(gid))
		if err != nil {
			return nil, fmt.Errorf("glyph %d: %w", gid, err)
		}
		if g.IsComposite() || g.IsEmpty() {
			continue
		}
		original := g.Contours()
		deduped := make([][]ot.GlyphPoint, len(original))
		paths := make(Path, len(original))
		dirty := false
		for i, pts := range original {
			deduped[i] = dedupPoints(pts)
			dirty = dirty || len(deduped[i]) != len(pts)
			paths[i] = FromGlyphPoints(deduped[i])
		}
		fixed, origin, reversed, ok := cr.fix(paths, false)
		if !dirty && !ok {
			continue
		}
		var contours [][]ot.GlyphPoint
		for i, c := range fixed {
			var pts []ot.GlyphPoint
			switch k := origin[i]; {
			case k < 0:
				pts = c.GlyphPoints(1)
			case reversed[i]:
				pts = slices.Clone(deduped[k])
				slices.Reverse(pts)
			default:
				pts = deduped[k]
			}
			if len(pts) > 0 {
				contours = append(contours, pts)
			}
		}
		g.SetContours(contours)
		g.Instructions = nil
		glyf.SetGlyph(ot.GlyphIndex(gid), g)
		changed = append(changed, ot.GlyphIndex(gid))
	}
	return changed, nil
}

func (cr Corrector) correctCFF(t *ot.CFFTable) ([]ot.GlyphIndex, error) {
	f, err := t.CFF()
	if err != nil {
		return nil, err
	}
	var changed []ot.GlyphIndex
	for gid := 0; gid < f.NumGlyphs(); gid++ {
		rec := &Recorder{}
		width, err := f.Outline(gid, rec)
		if err != nil {
			return nil, fmt.Errorf("glyph %d: %w", gid, err)
		}
		dirty := false
		var paths Path
		for _, c := range rec.Path {
			d := dropZeroSegments(c)
			dirty = dirty || len(d.Segs) != len(c.Segs)
			paths = append(paths, d)
		}
		fixed, _, _, ok := cr.fix(paths, true)
		if !dirty && !ok {
			continue
		}
		old := f.Glyphs[gid]
		pen := cff.NewPen(old.Name, width)
		fixed.Draw(pen)
		g := pen.Glyph()
		g.HStem, g.VStem = old.HStem, old.VStem
		f.Glyphs[gid] = g
		changed = append(changed, ot.GlyphIndex(gid))
	}
	if len(changed) > 0 {
		t.MarkChanged()
	}
	return changed, nil
}

// fix applies the corrections to the contours of a glyph and reports whether
// anything changed. origin holds the index of the input contour each output
// contour stems from, or -1 for contours resulting from merging overlaps;
// reverse tells which contours have been reversed.
func (cr Corrector) fix(paths Path, postscript bool) (fixed Path, origin []int, reverse []bool, dirty bool) {
	var kept Path
	for i, c := range paths {
		if cr.tiny(c) {
			dirty = true
			continue
		}
		kept = append(kept, c)
		origin = append(origin, i)
	}
	if cr.RemoveOverlaps {
		if merged, ok := RemoveOverlaps(kept); ok {
			kept, dirty = merged, true
			origin = make([]int, len(merged))
			for i := range origin {
				origin[i] = -1
			}
		}
	}
	reverse = cr.analyze(kept, postscript)
	fixed = make(Path, len(kept))
	for i, c := range kept {
		if reverse[i] {
			dirty = true
			c = c.Reverse()
		}
		fixed[i] = c
	}
	return fixed, origin, reverse, dirty
}

// tiny reports whether a contour is empty or its bounding box is smaller than
// MinArea.
func (cr Corrector) tiny(c Contour) bool {
	if len(c.Segs) == 0 {
		return true
	}
	if cr.MinArea <= 0 {
		return false
	}
	lo, hi := c.Bounds()
	return (hi.X-lo.X)*(hi.Y-lo.Y) < cr.MinArea
}

// analyze decides which contours to reverse. A contour is an outer contour
// if it is nested inside an even number of other contours. Outer contours run
// clockwise for TrueType and counter-clockwise for PostScript; inner contours
// the other way round.
func (cr Corrector) analyze(path Path, postscript bool) (reverse []bool) {
	reverse = make([]bool, len(path))
	polys := make([][]Point, len(path))
	for i, c := range path {
		polys[i] = c.polygon()
	}
	for i := range path {
		depth := 0
		p := insidePoint(polys[i])
		for j := range path {
			if j != i && contains(polys[j], p) {
				depth++
			}
		}
		ccw := polygonArea(polys[i]) > 0
		outer := depth%2 == 0
		// PostScript: outer ⇔ ccw; TrueType: outer ⇔ cw
		reverse[i] = (outer == ccw) != postscript
	}
	return reverse
}

// insidePoint returns a point of a polygon slightly moved towards its
// centroid, to avoid testing points on the border of other contours.
func insidePoint(poly []Point) Point {
	var cx, cy float64
	for _, p := range poly {
		cx, cy = cx+p.X, cy+p.Y
	}
	c := Point{cx / float64(len(poly)), cy / float64(len(poly))}
	p := poly[0]
	return p.lerp(c, 0.01)
}

// dedupPoints removes consecutive duplicate points of a TrueType contour.
func dedupPoints(pts []ot.GlyphPoint) []ot.GlyphPoint {
	out := make([]ot.GlyphPoint, 0, len(pts))
	for i, p := range pts {
		if i > 0 && p == out[len(out)-1] {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && out[len(out)-1] == out[0] {
		out = out[:len(out)-1]
	}
	return out
}

// dropZeroSegments removes segments which do not move the pen.
func dropZeroSegments(c Contour) Contour {
	out := Contour{Start: c.Start}
	cur := c.Start
	for _, s := range c.Segs {
		if s.To == cur && (s.Op == LineTo || s.Ctrl[0] == cur && (s.Op == QuadTo || s.Ctrl[1] == cur)) {
			continue
		}
		out.Segs = append(out.Segs, s)
		cur = s.To
	}
	return out
}
