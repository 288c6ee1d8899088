package otquery

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/npillmayer/foundry/ot"
)

// GlyphNames returns the names of all glyphs of a font, by glyph index.
//
// Names are taken from table post if it has glyph names, else from the charset of
// table CFF. For fonts without glyph names, names are derived from the character
// map ("uni0041", "u1F600"), and glyphs not mapped get names of the form
// "glyph00042". Glyph 0 is always called ".notdef".
func GlyphNames(otf *ot.Font) []string {
	n := otf.NumGlyphs()
	if n <= 0 {
		return nil
	}
	if post := otf.Lookup(ot.T("post")).AsPost(); post != nil && len(post.GlyphNames) >= n {
		return post.GlyphNames[:n:n]
	}
	if t := otf.Lookup(ot.T("CFF ")).AsCFF(); t != nil {
		if f, err := t.CFF(); err == nil && f.NumGlyphs() >= n && !f.IsCID() {
			return f.GlyphNames()[:n:n]
		}
	}
	tracer().Debugf("font has no glyph names, deriving them from cmap")
	names := make([]string, n)
	for r, gid := range BestCMap(otf) {
		if int(gid) >= n || gid == 0 {
			continue
		}
		name := UnicodeGlyphName(r)
		if names[gid] == "" || name < names[gid] {
			names[gid] = name
		}
	}
	names[0] = ".notdef"
	for i := 1; i < n; i++ {
		if names[i] == "" {
			names[i] = fmt.Sprintf("glyph%05d", i)
		}
	}
	return names
}

// GlyphIndexByName returns the index of the glyph with a given name.
func GlyphIndexByName(otf *ot.Font, name string) (ot.GlyphIndex, bool) {
	for i, n := range GlyphNames(otf) {
		if n == name {
			return ot.GlyphIndex(i), true
		}
	}
	return 0, false
}

// UnicodeGlyphName returns the glyph name for a code-point following the
// conventions of the Adobe Glyph List for new fonts: "uniXXXX" for the BMP,
// "uXXXXX" beyond.
func UnicodeGlyphName(r rune) string {
	if r <= 0xFFFF {
		return fmt.Sprintf("uni%04X", r)
	}
	return fmt.Sprintf("u%X", r)
}

// CodePointFromGlyphName is the inverse of UnicodeGlyphName. Names with a suffix
// after a period ("uni0041.alt") and ligature names ("uni00410042") do not
// denote a single code-point and report false.
func CodePointFromGlyphName(name string) (rune, bool) {
	var hex string
	switch {
	case strings.HasPrefix(name, "uni") && len(name) == 7:
		hex = name[3:]
	case strings.HasPrefix(name, "u") && len(name) >= 5 && len(name) <= 7:
		hex = name[1:]
	default:
		return 0, false
	}
	if strings.ToUpper(hex) != hex {
		return 0, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil || v > 0x10FFFF || (v >= 0xD800 && v <= 0xDFFF) {
		return 0, false
	}
	return rune(v), true
}
