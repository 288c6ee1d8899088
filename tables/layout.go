package tables

import (
	"fmt"

	"github.com/npillmayer/foundry/ot"
)

// GDEF wraps table GDEF.
type GDEF struct {
	Base
}

// NewGDEF creates a wrapper for table GDEF of a font.
func NewGDEF(otf *ot.Font) (*GDEF, error) {
	b, err := newBase(otf, ot.T("GDEF"))
	if err != nil {
		return nil, err
	}
	if otf.Lookup(ot.T("GDEF")).AsGDef() == nil {
		return nil, fmt.Errorf("table 'GDEF' not decoded: %w", ot.ErrMissingTable)
	}
	return &GDEF{Base: b}, nil
}

// GDefTable returns the live GDEF table.
func (g *GDEF) GDefTable() *ot.GDefTable {
	return g.otf.Lookup(ot.T("GDEF")).AsGDef()
}

// Version returns the major and minor version of the table.
func (g *GDEF) Version() (uint16, uint16) {
	t := g.GDefTable()
	return t.MajorVersion, t.MinorVersion
}

// HasGlyphClassDef reports whether the table defines glyph classes.
func (g *GDEF) HasGlyphClassDef() bool {
	return g.GDefTable().HasGlyphClassDef()
}

// GlyphClass returns the class of a glyph, or 0 if the glyph is not classified.
func (g *GDEF) GlyphClass(gid ot.GlyphIndex) uint16 {
	return g.GDefTable().GlyphClass(gid)
}

// GSUB wraps table GSUB.
type GSUB struct {
	Base
}

// NewGSUB creates a wrapper for table GSUB of a font.
func NewGSUB(otf *ot.Font) (*GSUB, error) {
	b, err := newBase(otf, ot.T("GSUB"))
	if err != nil {
		return nil, err
	}
	if otf.Lookup(ot.T("GSUB")).AsLayout() == nil {
		return nil, fmt.Errorf("table 'GSUB' not decoded: %w", ot.ErrMissingTable)
	}
	return &GSUB{Base: b}, nil
}

// LayoutTable returns the live GSUB table.
func (g *GSUB) LayoutTable() *ot.LayoutTable {
	return g.otf.Lookup(ot.T("GSUB")).AsLayout()
}

// FeatureTags returns the distinct feature tags of the table.
func (g *GSUB) FeatureTags() []string {
	var tags []string
	for _, t := range g.LayoutTable().FeatureTags() {
		tags = append(tags, t.String())
	}
	return tags
}

// UINameIDs returns the name IDs referenced by stylistic set features.
func (g *GSUB) UINameIDs() []uint16 {
	return g.LayoutTable().UINameIDs()
}

// RenameFeature renames all features tagged from to to and re-sorts the
// feature list. It reports false if the table has no feature list.
func (g *GSUB) RenameFeature(from, to string) (bool, error) {
	f, err := parseTag(from)
	if err != nil {
		return false, err
	}
	t, err := parseTag(to)
	if err != nil {
		return false, err
	}
	tracer().Debugf("GSUB: rename feature %s to %s", from, to)
	return g.LayoutTable().RenameFeature(f, t), nil
}

// parseTag checks that s is a valid 4-character tag.
func parseTag(s string) (ot.Tag, error) {
	if len(s) != 4 {
		return 0, fmt.Errorf("invalid tag %q: must have 4 characters", s)
	}
	for i := 0; i < 4; i++ {
		if s[i] < 0x20 || s[i] > 0x7E {
			return 0, fmt.Errorf("invalid tag %q", s)
		}
	}
	return ot.T(s), nil
}
