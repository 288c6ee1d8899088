package foundry

import (
	"slices"

	"github.com/npillmayer/foundry/ot"
	"github.com/npillmayer/foundry/otquery"
)

// --- Glyph names -----------------------------------------------------------

// RenamedGlyph is a glyph which has been given a new name.
type RenamedGlyph struct {
	Old, New string
}

// GlyphNames returns the names of all glyphs, by glyph index.
func (f *Font) GlyphNames() []string {
	return otquery.GlyphNames(f.otf)
}

// RenameGlyph gives the glyph named old the name new. It is an error if there
// is no glyph old or if a glyph new already exists.
func (f *Font) RenameGlyph(old, new string) error {
	const op = "rename glyph"
	names := f.GlyphNames()
	if !slices.Contains(names, old) {
		return errorf(op, ErrMissingGlyph, "no glyph %q", old)
	}
	if slices.Contains(names, new) {
		return errorf(op, ErrConversion, "glyph %q already exists", new)
	}
	_, err := f.RenameGlyphs(map[string]string{old: new})
	return err
}

// RenameGlyphs renames glyphs, with the old names as keys, and returns the
// glyphs renamed in glyph order. Names not in the font are ignored and
// '.notdef' keeps its name. The resulting names must be unique.
//
// Names are stored in the charset of PostScript fonts and in table post. A
// post table of a TrueType font without glyph names is upgraded to version
// 2.0. The character map addresses glyphs by index and is left alone.
func (f *Font) RenameGlyphs(names map[string]string) ([]RenamedGlyph, error) {
	const op = "rename glyphs"
	old := f.GlyphNames()
	if len(old) == 0 {
		return nil, errorf(op, ErrMissingGlyph, "font has no glyphs")
	}
	renamed := slices.Clone(old)
	var done []RenamedGlyph
	for gid, name := range old {
		if to, ok := names[name]; ok && gid > 0 && to != name {
			renamed[gid] = to
			done = append(done, RenamedGlyph{Old: name, New: to})
		}
	}
	if len(done) == 0 {
		return nil, nil
	}
	seen := make(map[string]bool, len(renamed))
	for _, name := range renamed {
		if name == "" || seen[name] {
			return nil, errorf(op, ErrConversion, "duplicate glyph name %q", name)
		}
		seen[name] = true
	}
	if err := f.setGlyphNames(renamed); err != nil {
		return nil, newError(op, nil, err)
	}
	tracer().Infof("renamed %d glyphs", len(done))
	return done, nil
}

// setGlyphNames stores names, one per glyph, in the CFF charset and the post
// table.
func (f *Font) setGlyphNames(names []string) error {
	inCharset := false
	if f.IsPS() {
		cff, err := f.CFF()
		if err != nil {
			return err
		}
		if !cff.CFFFont().IsCID() {
			m := make(map[string]string, len(names))
			for gid, name := range cff.CFFFont().GlyphNames() {
				if gid < len(names) {
					m[name] = names[gid]
				}
			}
			if _, err := cff.RenameGlyphs(m); err != nil {
				return err
			}
			inCharset = true
		}
	}
	post := f.otf.Lookup(ot.T("post")).AsPost()
	if post == nil {
		if inCharset {
			return nil
		}
		return errorf("store glyph names", ErrMissingTable, "font has no table post")
	}
	if inCharset && len(post.GlyphNames) == 0 {
		return nil
	}
	post.Version = ot.PostVersion2
	post.GlyphNames = slices.Clone(names)
	return nil
}

// SetProductionNames renames the glyphs reachable through the character map
// to their production names, "uniXXXX" or "uXXXXX" after the lowest
// code-point mapped to them. A glyph keeps its name if its production name is
// already used by another glyph. The glyphs renamed are returned.
func (f *Font) SetProductionNames() ([]RenamedGlyph, error) {
	names := f.GlyphNames()
	taken := make(map[string]bool, len(names))
	for _, name := range names {
		taken[name] = true
	}
	lowest := make(map[ot.GlyphIndex]rune)
	for r, gid := range otquery.BestCMap(f.otf) {
		if cur, ok := lowest[gid]; gid != 0 && (!ok || r < cur) {
			lowest[gid] = r
		}
	}
	m := make(map[string]string)
	for gid, name := range names {
		r, ok := lowest[ot.GlyphIndex(gid)]
		if !ok {
			continue
		}
		if prod := otquery.UnicodeGlyphName(r); !taken[prod] {
			m[name] = prod
		}
	}
	return f.RenameGlyphs(m)
}

// PSDesubroutinize makes the charstrings of a PostScript font be written
// without subroutines.
func (f *Font) PSDesubroutinize() error {
	const op = "desubroutinize"
	if !f.IsPS() {
		return errorf(op, ErrConversion, "font does not have PostScript outlines")
	}
	cff, err := f.CFF()
	if err != nil {
		return err
	}
	cff.Desubroutinize()
	return nil
}
