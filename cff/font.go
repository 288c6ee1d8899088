package cff

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"slices"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/postscript/funit"
	"seehuhn.de/go/postscript/type1"
	sfntcff "seehuhn.de/go/sfnt/cff"
	"seehuhn.de/go/sfnt/glyph"
	"seehuhn.de/go/sfnt/parser"
)

// Font is a decoded CFF font (one font of a CFF FontSet; OpenType allows just
// one). Top DICT entries are found in FontInfo, the Private DICTs in Private
// and the glyphs, with their drawing commands, in Glyphs.
type Font struct {
	*sfntcff.Font
}

// Parse decodes CFF data, i.e. the content of an OpenType table 'CFF '.
func Parse(data []byte) (*Font, error) {
	f, err := sfntcff.Read(bytes.NewReader(data))
	if err != nil {
		var unsupported *parser.NotSupportedError
		if errors.As(err, &unsupported) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupported, unsupported.Feature)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidCFF, err)
	}
	tracer().Debugf("CFF: decoded font %q with %d glyphs", f.FontName, len(f.Glyphs))
	return &Font{Font: f}, nil
}

// Encode serializes the font.
func (f *Font) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCFF, err)
	}
	return buf.Bytes(), nil
}

// NewFontInfo returns the Top DICT entries of a font named psName, with the
// default values of CFF.
func NewFontInfo(psName string) *type1.FontInfo {
	return &type1.FontInfo{
		FontName:           psName,
		UnderlinePosition:  -100,
		UnderlineThickness: 50,
		FontMatrix:         UnitMatrix(1000),
	}
}

// DefaultPrivateDict returns a Private DICT with the default values of CFF.
func DefaultPrivateDict() *type1.PrivateDict {
	return &type1.PrivateDict{
		BlueScale: 0.039625,
		BlueShift: 7,
		BlueFuzz:  1,
	}
}

// Build creates a (non-CID) font from glyphs, e.g. drawn with a Pen. The first
// glyph must be '.notdef' and glyph names must be unique.
func Build(info *type1.FontInfo, glyphs []*sfntcff.Glyph, private *type1.PrivateDict) (*Font, error) {
	if len(glyphs) == 0 || glyphs[0].Name != ".notdef" {
		return nil, fmt.Errorf("%w: first glyph must be .notdef", ErrInvalidCFF)
	}
	seen := make(map[string]bool, len(glyphs))
	for _, g := range glyphs {
		if seen[g.Name] {
			return nil, fmt.Errorf("%w: duplicate glyph name %q", ErrInvalidCFF, g.Name)
		}
		seen[g.Name] = true
	}
	f := &sfntcff.Font{
		FontInfo: info,
		Outlines: &sfntcff.Outlines{
			Glyphs:   glyphs,
			Private:  []*type1.PrivateDict{private},
			FDSelect: func(glyph.ID) int { return 0 },
			Encoding: sfntcff.StandardEncoding(glyphs),
		},
	}
	return &Font{Font: f}, nil
}

// IsCID reports whether the font is CID-keyed.
func (f *Font) IsCID() bool {
	return f.IsCIDKeyed()
}

// GlyphNames returns the names of all glyphs. Glyphs of CID-keyed fonts get
// names of the form "cid00042".
func (f *Font) GlyphNames() []string {
	names := make([]string, len(f.Glyphs))
	for gid, g := range f.Glyphs {
		if f.IsCIDKeyed() && gid < len(f.GIDToCID) {
			names[gid] = fmt.Sprintf("cid%05d", f.GIDToCID[gid])
			continue
		}
		names[gid] = g.Name
	}
	return names
}

// GlyphIndex returns the index of the glyph with a given name.
func (f *Font) GlyphIndex(name string) (int, bool) {
	i := slices.Index(f.GlyphNames(), name)
	return i, i >= 0
}

// RenameGlyphs renames glyphs, with old names as keys. It is an error if the
// new names are not unique or if the font is CID-keyed.
func (f *Font) RenameGlyphs(names map[string]string) (int, error) {
	if f.IsCIDKeyed() {
		return 0, fmt.Errorf("%w: renaming glyphs of a CID-keyed font", ErrUnsupported)
	}
	renamed := make([]string, len(f.Glyphs))
	seen := make(map[string]bool, len(f.Glyphs))
	n := 0
	for gid, g := range f.Glyphs {
		name := g.Name
		if to, ok := names[name]; ok && to != name && gid > 0 {
			name = to
			n++
		}
		if name == "" || seen[name] {
			return 0, fmt.Errorf("%w: duplicate glyph name %q", ErrInvalidCFF, name)
		}
		seen[name] = true
		renamed[gid] = name
	}
	for gid, g := range f.Glyphs {
		g.Name = renamed[gid]
	}
	return n, nil
}

// UnitMatrix returns the font matrix of a font with upem units per em.
func UnitMatrix(upem int) matrix.Matrix {
	s := 1 / float64(upem)
	return matrix.Matrix{s, 0, 0, s, 0, 0}
}

// SetUnitsPerEm sets the font matrix for a font with upem units per em.
func (f *Font) SetUnitsPerEm(upem int) {
	f.FontMatrix = UnitMatrix(upem)
}

// Scale multiplies coordinates, widths, stems and the values of the Private
// DICTs by s. Results are rounded to integers.
func (f *Font) Scale(s float64) {
	round := func(v float64) float64 { return math.Round(v * s) }
	for _, g := range f.Glyphs {
		g.Width = round(g.Width)
		for i, cmd := range g.Cmds {
			if cmd.Op == sfntcff.OpHintMask || cmd.Op == sfntcff.OpCntrMask {
				continue
			}
			args := make([]float64, len(cmd.Args))
			for k, v := range cmd.Args {
				args[k] = round(v)
			}
			g.Cmds[i].Args = args
		}
		for _, stems := range [][]float64{g.HStem, g.VStem} {
			for k := range stems {
				stems[k] = round(stems[k])
			}
		}
	}
	for _, p := range f.Private {
		for _, zones := range [][]funit.Int16{p.BlueValues, p.OtherBlues} {
			for k := range zones {
				zones[k] = funit.Int16(round(float64(zones[k])))
			}
		}
		p.StdHW, p.StdVW = round(p.StdHW), round(p.StdVW)
	}
	tracer().Debugf("CFF: scaled %d glyphs by %.4f", len(f.Glyphs), s)
}

// RemoveHints drops the stem hints and hint masks of all glyphs and returns
// the number of glyphs changed. If dropHintingData is set, the alignment zones
// and stem widths of the Private DICTs are dropped, too.
func (f *Font) RemoveHints(dropHintingData bool) int {
	n := 0
	for _, g := range f.Glyphs {
		cmds := slices.DeleteFunc(slices.Clone(g.Cmds), func(cmd sfntcff.GlyphOp) bool {
			return cmd.Op == sfntcff.OpHintMask || cmd.Op == sfntcff.OpCntrMask
		})
		if len(cmds) == len(g.Cmds) && len(g.HStem) == 0 && len(g.VStem) == 0 {
			continue
		}
		g.Cmds, g.HStem, g.VStem = cmds, nil, nil
		n++
	}
	if dropHintingData {
		for i := range f.Private {
			f.Private[i] = DefaultPrivateDict()
		}
	}
	return n
}

// HasHints reports whether a Private DICT contains hinting data (alignment
// zones or stem widths).
func HasHints(p *type1.PrivateDict) bool {
	return p != nil && (len(p.BlueValues) > 0 || len(p.OtherBlues) > 0 || p.StdHW != 0 || p.StdVW != 0)
}

// HasStemHints reports whether any glyph carries stem hints.
func (f *Font) HasStemHints() bool {
	for _, g := range f.Glyphs {
		if len(g.HStem) > 0 || len(g.VStem) > 0 {
			return true
		}
	}
	return false
}
