package tables

import (
	"fmt"

	"github.com/npillmayer/foundry/ot"
)

// Glyf wraps table glyf of fonts with TrueType outlines.
type Glyf struct {
	Base
}

// NewGlyf creates a wrapper for table glyf of a font.
func NewGlyf(otf *ot.Font) (*Glyf, error) {
	b, err := newBase(otf, ot.T("glyf"))
	if err != nil {
		return nil, err
	}
	if otf.Lookup(ot.T("glyf")).AsGlyf() == nil {
		return nil, fmt.Errorf("table 'glyf' not decoded: %w", ot.ErrMissingTable)
	}
	return &Glyf{Base: b}, nil
}

// GlyfTable returns the live glyf table.
func (g *Glyf) GlyfTable() *ot.GlyfTable {
	return g.otf.Lookup(ot.T("glyf")).AsGlyf()
}

// GlyphCount returns the number of glyphs in the table.
func (g *Glyf) GlyphCount() int {
	return g.GlyfTable().NumGlyphs()
}

// Decomponentize replaces all composite glyphs by simple glyphs with the
// resolved outlines of their components. Instructions of composite glyphs are
// dropped. It returns the glyphs which have been changed.
func (g *Glyf) Decomponentize() ([]ot.GlyphIndex, error) {
	t := g.GlyfTable()
	var changed []ot.GlyphIndex
	flat := make(map[ot.GlyphIndex]*ot.Glyph)
	for gid := 0; gid < t.NumGlyphs(); gid++ {
		if !t.IsComposite(ot.GlyphIndex(gid)) {
			continue
		}
		contours, err := t.Contours(ot.GlyphIndex(gid))
		if err != nil {
			return nil, fmt.Errorf("decomponentize glyph %d: %w", gid, err)
		}
		glyph := &ot.Glyph{}
		glyph.SetContours(contours)
		flat[ot.GlyphIndex(gid)] = glyph
		changed = append(changed, ot.GlyphIndex(gid))
	}
	// outlines are resolved before any composite is replaced
	for _, gid := range changed {
		t.SetGlyph(gid, flat[gid])
	}
	tracer().Infof("glyf: decomponentized %d glyphs", len(changed))
	return changed, nil
}

// RemoveInstructions drops the instructions of all glyphs and returns the
// number of glyphs which had instructions.
func (g *Glyf) RemoveInstructions() (int, error) {
	t := g.GlyfTable()
	n := 0
	for gid := 0; gid < t.NumGlyphs(); gid++ {
		glyph, err := t.Glyph(ot.GlyphIndex(gid))
		if err != nil {
			return n, err
		}
		if len(glyph.Instructions) == 0 {
			continue
		}
		glyph.Instructions = nil
		t.SetGlyph(ot.GlyphIndex(gid), glyph)
		n++
	}
	return n, nil
}
