package tables

import (
	"fmt"
	"strings"

	"github.com/npillmayer/foundry/cff"
	"github.com/npillmayer/foundry/ot"
	"seehuhn.de/go/postscript/type1"
)

// CFF wraps table 'CFF ' of fonts with PostScript outlines.
type CFF struct {
	Base
}

// NewCFF creates a wrapper for table 'CFF ' of a font. The CFF data is decoded
// on construction.
func NewCFF(otf *ot.Font) (*CFF, error) {
	b, err := newBase(otf, ot.T("CFF "))
	if err != nil {
		return nil, err
	}
	t := otf.Lookup(ot.T("CFF ")).AsCFF()
	if t == nil {
		return nil, fmt.Errorf("table 'CFF ' not decoded: %w", ot.ErrMissingTable)
	}
	if _, err := t.CFF(); err != nil {
		return nil, fmt.Errorf("table 'CFF ': %w", err)
	}
	return &CFF{Base: b}, nil
}

// CFFTable returns the live 'CFF ' table.
func (c *CFF) CFFTable() *ot.CFFTable {
	return c.otf.Lookup(ot.T("CFF ")).AsCFF()
}

// CFFFont returns the decoded CFF font. Clients changing it call MarkChanged.
func (c *CFF) CFFFont() *cff.Font {
	f, _ := c.CFFTable().CFF() // decoded on construction
	return f
}

// MarkChanged tells the table to re-encode the CFF font when written.
func (c *CFF) MarkChanged() {
	c.CFFTable().MarkChanged()
}

// TopDict returns the entries of the Top DICT of the font.
func (c *CFF) TopDict() *type1.FontInfo {
	return c.CFFFont().FontInfo
}

// PrivateDict returns the Private DICT of the font, or the first one of a
// CID-keyed font.
func (c *CFF) PrivateDict() *type1.PrivateDict {
	if p := c.CFFFont().Private; len(p) > 0 {
		return p[0]
	}
	return nil
}

// HasHintingData reports whether the Private DICT holds alignment zones or
// stem widths.
func (c *CFF) HasHintingData() bool {
	return cff.HasHints(c.PrivateDict())
}

// HasStemHints reports whether any glyph carries stem hints.
func (c *CFF) HasStemHints() bool {
	return c.CFFFont().HasStemHints()
}

// CFFNames are the name strings of a CFF font. Empty strings are left alone by
// SetNames.
type CFFNames struct {
	FontName   string // PostScript name, Name INDEX
	Version    string
	Notice     string
	Copyright  string
	FullName   string
	FamilyName string
	Weight     string
}

// SetNames sets the non-empty name strings of names.
func (c *CFF) SetNames(names CFFNames) {
	top := c.TopDict()
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&top.FontName, names.FontName)
	set(&top.Version, names.Version)
	set(&top.Notice, names.Notice)
	set(&top.Copyright, names.Copyright)
	set(&top.FullName, names.FullName)
	set(&top.FamilyName, names.FamilyName)
	set(&top.Weight, names.Weight)
	c.MarkChanged()
}

// DeleteNames clears the Top DICT strings for which names has a non-empty
// entry. The font name cannot be deleted.
func (c *CFF) DeleteNames(names CFFNames) {
	top := c.TopDict()
	del := func(dst *string, v string) {
		if v != "" {
			*dst = ""
		}
	}
	del(&top.Version, names.Version)
	del(&top.Notice, names.Notice)
	del(&top.Copyright, names.Copyright)
	del(&top.FullName, names.FullName)
	del(&top.FamilyName, names.FamilyName)
	del(&top.Weight, names.Weight)
	c.MarkChanged()
}

// FindReplace replaces old by new in the font name and the Top DICT strings.
// Double blanks are collapsed and results are trimmed.
func (c *CFF) FindReplace(old, new string) {
	top := c.TopDict()
	replace := func(s *string) {
		if *s != "" {
			*s = CleanString(strings.ReplaceAll(*s, old, new))
		}
	}
	for _, s := range []*string{&top.FontName, &top.Version, &top.Notice, &top.Copyright,
		&top.FullName, &top.FamilyName, &top.Weight} {
		replace(s)
	}
	c.MarkChanged()
}

// RemoveHinting removes the stem hints and hint masks of all glyphs and
// returns the number of glyphs changed. The hinting data of the Private DICT
// (blue zones, stem widths) is kept unless dropHintingData is set.
func (c *CFF) RemoveHinting(dropHintingData bool) int {
	n := c.CFFFont().RemoveHints(dropHintingData)
	c.MarkChanged()
	return n
}

// Desubroutinize makes the table be written without subroutines. Charstrings
// are decoded with subroutines expanded, so re-encoding them is all it takes.
func (c *CFF) Desubroutinize() {
	c.MarkChanged()
}

// RenameGlyphs renames glyphs of the charset, with old names as keys, and
// returns the number of glyphs renamed.
func (c *CFF) RenameGlyphs(names map[string]string) (int, error) {
	n, err := c.CFFFont().RenameGlyphs(names)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		c.MarkChanged()
	}
	return n, nil
}

// ItalicAngle returns the italic angle of the Top DICT.
func (c *CFF) ItalicAngle() float64 {
	return c.TopDict().ItalicAngle
}

// SetItalicAngle sets the italic angle of the Top DICT.
func (c *CFF) SetItalicAngle(angle float64) {
	c.TopDict().ItalicAngle = angle
	c.MarkChanged()
}
