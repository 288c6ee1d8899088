package tables

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/npillmayer/foundry/ot"
	"github.com/npillmayer/foundry/otquery"
)

// CMap wraps table cmap. It keeps a snapshot of the table taken at construction
// time, which IsModified compares against.
type CMap struct {
	Base
	snapshot *ot.CMapTable
}

// NewCMap creates a wrapper for table cmap of a font.
func NewCMap(otf *ot.Font) (*CMap, error) {
	b, err := newBase(otf, ot.T("cmap"))
	if err != nil {
		return nil, err
	}
	t := otf.Lookup(ot.T("cmap")).AsCMap()
	if t == nil {
		return nil, fmt.Errorf("table 'cmap' not decoded: %w", ot.ErrMissingTable)
	}
	return &CMap{Base: b, snapshot: t.Clone()}, nil
}

// CMapTable returns the live cmap table.
func (c *CMap) CMapTable() *ot.CMapTable {
	return c.otf.Lookup(ot.T("cmap")).AsCMap()
}

// IsModified reports whether the binary form of the table differs from the
// binary form of the snapshot taken at construction time.
func (c *CMap) IsModified() bool {
	current, err := c.CMapTable().Encode()
	if err != nil {
		tracer().Errorf("cmap: %v", err)
		return true
	}
	initial, err := c.snapshot.Encode()
	if err != nil {
		tracer().Errorf("cmap snapshot: %v", err)
		return true
	}
	return !bytes.Equal(current, initial)
}

// Codepoints returns the code-points mapped by any of the Unicode sub-tables.
func (c *CMap) Codepoints() map[rune]struct{} {
	codepoints := make(map[rune]struct{})
	for _, st := range c.CMapTable().Subtables {
		if !st.IsUnicode() {
			continue
		}
		for r := range st.Mapping {
			codepoints[r] = struct{}{}
		}
	}
	return codepoints
}

// BestCMap returns the best-effort Unicode mapping of the table.
func (c *CMap) BestCMap() map[rune]ot.GlyphIndex {
	return c.CMapTable().BestMapping()
}

// AddMissingNBSP maps U+00A0 (no-break space) to the glyph of U+0020 (space) in
// every Unicode sub-table, if the space is mapped and the no-break space is not.
// It reports whether the table has been changed.
func (c *CMap) AddMissingNBSP() bool {
	best := c.BestCMap()
	space, ok := best[0x0020]
	if !ok {
		return false
	}
	if _, ok := best[0x00A0]; ok {
		return false
	}
	for _, st := range c.CMapTable().Subtables {
		if st.IsUnicode() && st.IsDecoded() {
			st.Mapping[0x00A0] = space
		}
	}
	tracer().Infof("cmap: mapped U+00A0 to glyph %d", space)
	return true
}

// Remap maps a code-point to a glyph in every Unicode sub-table able to hold it.
func (c *CMap) Remap(r rune, gid ot.GlyphIndex) {
	for _, st := range c.CMapTable().Subtables {
		if !st.IsUnicode() || !st.IsDecoded() {
			continue
		}
		if r > 0xFFFF && !holdsSupplementary(st) {
			continue
		}
		st.Mapping[r] = gid
	}
}

// holdsSupplementary reports whether a sub-table can map code-points beyond the BMP.
func holdsSupplementary(st *ot.CMapSubtable) bool {
	return st.Format == 10 || st.Format == 12 || st.Format == 13
}

// Remapped is a code-point added to the character map for a glyph.
type Remapped struct {
	Codepoint rune
	GlyphName string
}

// RebuildFromGlyphNames maps glyphs named after a code-point ("uni0041", "u1F600")
// to that code-point. If remapAll is false, only glyphs not yet reachable through
// the character map are considered, and code-points already mapped are left
// alone. If remapAll is true, the Unicode sub-tables are cleared first and every
// suitably named glyph is mapped.
//
// Code-points beyond the BMP get a format 12 sub-table (3,10) if the table has
// none. RebuildFromGlyphNames returns the code-points added, sorted.
func (c *CMap) RebuildFromGlyphNames(remapAll bool) []Remapped {
	t := c.CMapTable()
	names := otquery.GlyphNames(c.otf)
	mapped := make(map[ot.GlyphIndex]bool)
	target := make(map[rune]ot.GlyphIndex)
	if remapAll {
		for _, st := range t.Subtables {
			if st.IsUnicode() && st.IsDecoded() {
				clear(st.Mapping)
			}
		}
	} else {
		for r, gid := range c.BestCMap() {
			target[r] = gid
			mapped[gid] = true
		}
	}
	var remapped []Remapped
	for gid, name := range names {
		if mapped[ot.GlyphIndex(gid)] {
			continue
		}
		r, ok := otquery.CodePointFromGlyphName(name)
		if !ok {
			continue
		}
		if _, taken := target[r]; taken {
			continue
		}
		target[r] = ot.GlyphIndex(gid)
		remapped = append(remapped, Remapped{Codepoint: r, GlyphName: name})
	}
	if len(remapped) == 0 {
		return nil
	}
	if slices.ContainsFunc(remapped, func(m Remapped) bool { return m.Codepoint > 0xFFFF }) &&
		!slices.ContainsFunc(t.Subtables, func(st *ot.CMapSubtable) bool { return st.IsUnicode() && holdsSupplementary(st) }) {
		st := ot.NewCMapSubtable(3, 10, 12)
		for r, gid := range c.BestCMap() {
			st.Mapping[r] = gid
		}
		t.Subtables = append(t.Subtables, st)
	}
	if !slices.ContainsFunc(t.Subtables, func(st *ot.CMapSubtable) bool { return st.IsUnicode() && st.IsDecoded() }) {
		t.Subtables = append(t.Subtables, ot.NewCMapSubtable(3, 1, 4))
	}
	for _, m := range remapped {
		c.Remap(m.Codepoint, target[m.Codepoint])
	}
	slices.SortFunc(remapped, func(a, b Remapped) int { return int(a.Codepoint - b.Codepoint) })
	tracer().Infof("cmap: remapped %d glyphs", len(remapped))
	return remapped
}
