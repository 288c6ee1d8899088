package tables

import (
	"fmt"

	"github.com/npillmayer/foundry/ot"
)

// Kern wraps table kern.
type Kern struct {
	Base
}

// NewKern creates a wrapper for table kern of a font.
func NewKern(otf *ot.Font) (*Kern, error) {
	b, err := newBase(otf, ot.T("kern"))
	if err != nil {
		return nil, err
	}
	if otf.Lookup(ot.T("kern")).AsKern() == nil {
		return nil, fmt.Errorf("table 'kern' not decoded: %w", ot.ErrMissingTable)
	}
	return &Kern{Base: b}, nil
}

// KernTable returns the live kern table.
func (k *Kern) KernTable() *ot.KernTable {
	return k.otf.Lookup(ot.T("kern")).AsKern()
}

// RemoveUnmappedGlyphs deletes all pairs of format 0 sub-tables where either
// glyph cannot be reached through a Unicode sub-table of the font's character
// map. The character map is read from the font at the time of the call.
// It returns the number of pairs removed.
func (k *Kern) RemoveUnmappedGlyphs() int {
	kern := k.KernTable()
	if !kern.HasFormat0() {
		return 0
	}
	reachable := make(map[ot.GlyphIndex]bool)
	if cmap := k.otf.Lookup(ot.T("cmap")).AsCMap(); cmap != nil {
		for _, st := range cmap.Subtables {
			if !st.IsUnicode() {
				continue
			}
			for _, gid := range st.Mapping {
				reachable[gid] = true
			}
		}
	}
	removed := 0
	for _, st := range kern.Subtables {
		if st.Format != 0 {
			continue
		}
		for pair := range st.Pairs {
			if !reachable[pair.Left] || !reachable[pair.Right] {
				delete(st.Pairs, pair)
				removed++
			}
		}
	}
	tracer().Debugf("kern: removed %d pairs of unmapped glyphs", removed)
	return removed
}
