package otquery

import (
	"github.com/npillmayer/foundry/ot"
	"golang.org/x/image/font/sfnt"
)

// --- Font Information -------------------------------------------------

// FontType returns a readable name of the outline format of a font, followed by
// the container format for web fonts, e.g. "CFF (WOFF2)".
func FontType(otf *ot.Font) string {
	if otf == nil || otf.Header == nil {
		return ""
	}
	var t string
	switch otf.Header.FontType {
	case ot.TypeTrueType:
		t = "TrueType"
	case ot.TypeCFF:
		t = "CFF"
	case ot.TypeApple:
		t = "Apple TrueType"
	default:
		t = ot.Tag(otf.Header.FontType).String()
	}
	if otf.Flavor != ot.FlavorSFNT {
		t += " (" + otf.Flavor.String() + ")"
	}
	return t
}

// IsVariable reports whether a font has variation axes.
func IsVariable(otf *ot.Font) bool {
	return otf != nil && otf.HasTable(ot.T("fvar"))
}

// LayoutTables returns the tags of the OpenType layout tables present in a font.
func LayoutTables(otf *ot.Font) []string {
	var tags []string
	for _, t := range []string{"BASE", "GDEF", "GPOS", "GSUB", "JSTF", "MATH"} {
		if otf.HasTable(ot.T(t)) {
			tags = append(tags, t)
		}
	}
	return tags
}

// FontMetrics retrieves selected metrics of a font.
func FontMetrics(otf *ot.Font) FontMetricsInfo {
	metrics := FontMetricsInfo{}
	if hhea := otf.Lookup(ot.T("hhea")).AsHHea(); hhea != nil {
		metrics.Ascent = sfnt.Units(hhea.Ascender)
		metrics.Descent = sfnt.Units(hhea.Descender)
		metrics.LineGap = sfnt.Units(hhea.LineGap)
		metrics.MaxAdvance = sfnt.Units(hhea.AdvanceWidthMax)
	}
	if metrics.Ascent == 0 && metrics.Descent == 0 {
		if os2 := otf.Lookup(ot.T("OS/2")).AsOS2(); os2 != nil {
			tracer().Debugf("OS/2")
			a := sfnt.Units(os2.STypoAscender)
			if a > metrics.Ascent {
				tracer().Debugf("override of ascent: %d -> %d", metrics.Ascent, a)
				metrics.Ascent = a
			}
			d := sfnt.Units(os2.STypoDescender)
			if d < metrics.Descent {
				tracer().Debugf("override of descent: %d -> %d", metrics.Descent, d)
				metrics.Descent = d
			}
		}
	}
	if head := otf.Lookup(ot.T("head")).AsHead(); head != nil {
		metrics.UnitsPerEm = sfnt.Units(head.UnitsPerEm)
	}
	if os2 := otf.Lookup(ot.T("OS/2")).AsOS2(); os2 != nil && os2.Version >= 2 {
		metrics.CapHeight = sfnt.Units(os2.SCapHeight)
		metrics.XHeight = sfnt.Units(os2.SxHeight)
	}
	if metrics.CapHeight == 0 {
		metrics.CapHeight = glyphTop(otf, 'H')
	}
	if metrics.XHeight == 0 {
		metrics.XHeight = glyphTop(otf, 'x')
	}
	return metrics
}

// glyphTop returns the top of the bounding box of the glyph mapped to r, or 0.
func glyphTop(otf *ot.Font, r rune) sfnt.Units {
	gid := GlyphIndex(otf, r)
	if gid == 0 {
		return 0
	}
	bbox, _ := GlyphBounds(otf, gid)
	return bbox.MaxY
}

// --- Glyph Routines --------------------------------------------------------

// GlyphIndex returns the glyph index for a give code-point.
// If the code-point cannot be found, 0 is returned.
//
// From the OpenType specification: character codes that do not correspond to any glyph in
// the font should be mapped to glyph index 0. The glyph at this location must be a special
// glyph representing a missing character, commonly known as '.notdef'.
func GlyphIndex(otf *ot.Font, codepoint rune) ot.GlyphIndex {
	return BestCMap(otf)[codepoint]
}

// CodePointForGlyph returns the code-point for a given glyph index.
//
// This is an inefficient operation: All code-points contained in the font's CMap
// are checked sequentially if they produce the given glyph.
// If the glyph index does not correspond to a code-point, 0 is returned.
func CodePointForGlyph(otf *ot.Font, gid ot.GlyphIndex) rune {
	if gid == 0 {
		return 0
	}
	return otf.Lookup(ot.T("cmap")).AsCMap().ReverseLookup(gid)
}

// BestCMap returns the best-effort Unicode character map of a font, preferring
// sub-tables with full Unicode repertoire. The map returned is the live mapping
// of the cmap table and must not be changed by clients.
// For fonts without a Unicode character map, nil is returned.
func BestCMap(otf *ot.Font) map[rune]ot.GlyphIndex {
	if otf == nil {
		return nil
	}
	return otf.Lookup(ot.T("cmap")).AsCMap().BestMapping()
}

// GlyphMetrics retrieves metrics for a given glyph.
func GlyphMetrics(otf *ot.Font, gid ot.GlyphIndex) GlyphMetricsInfo {
	metrics := GlyphMetricsInfo{}
	//
	// table HMtx: advance width and left side bearing
	if hmtx := otf.Lookup(ot.T("hmtx")).AsHMtx(); hmtx != nil {
		if aw, lsb, ok := hmtx.HMetrics(gid); ok {
			metrics.Advance = sfnt.Units(aw)
			metrics.LSB = sfnt.Units(lsb)
		}
	}
	//
	// table glyf or CFF: bounding box
	if bbox, ok := GlyphBounds(otf, gid); ok {
		metrics.BBox = bbox
	}
	metrics.Class = GlyphClass(otf, gid)
	// RSB calculation: rsb = aw - (lsb + xMax - xMin)
	// From the OpenType hmtx documentation:
	// If a glyph has no contours, xMax/xMin are not defined. The left side bearing indicated
	// in the 'hmtx' table for such glyphs should be zero.
	if !metrics.BBox.Empty() { // leave RSB for empty bboxes
		metrics.RSB = metrics.Advance - (metrics.LSB + metrics.BBox.Dx())
	}
	return metrics
}

// GlyphBounds returns the bounding box of a glyph, calculated from its outline.
// Empty glyphs and glyphs which cannot be decoded report false.
func GlyphBounds(otf *ot.Font, gid ot.GlyphIndex) (BoundingBox, bool) {
	if glyf := otf.Lookup(ot.T("glyf")).AsGlyf(); glyf != nil {
		x0, y0, x1, y1, ok, err := glyf.Bounds(gid)
		if err != nil || !ok {
			tracer().Debugf("no bounds for glyph %d: %v", gid, err)
			return BoundingBox{}, false
		}
		return BoundingBox{MinX: sfntUnits(x0), MinY: sfntUnits(y0), MaxX: sfntUnits(x1), MaxY: sfntUnits(y1)}, true
	}
	if t := otf.Lookup(ot.T("CFF ")).AsCFF(); t != nil {
		f, err := t.CFF()
		if err != nil {
			tracer().Errorf("CFF: %v", err)
			return BoundingBox{}, false
		}
		x0, y0, x1, y1, ok, err := f.Bounds(int(gid))
		if err != nil || !ok {
			return BoundingBox{}, false
		}
		return BoundingBox{
			MinX: sfnt.Units(floor(x0)), MinY: sfnt.Units(floor(y0)),
			MaxX: sfnt.Units(ceil(x1)), MaxY: sfnt.Units(ceil(y1)),
		}, true
	}
	return BoundingBox{}, false
}

// GlyphClass returns the glyph class of a glyph from table GDEF, or 0 if the font
// does not define glyph classes.
func GlyphClass(otf *ot.Font, gid ot.GlyphIndex) uint16 {
	gdef := otf.Lookup(ot.T("GDEF")).AsGDef()
	if gdef == nil {
		return 0
	}
	return gdef.GlyphClass(gid)
}

// --- Helpers ----------------------------------------------------------

func sfntUnits(v int16) sfnt.Units {
	return sfnt.Units(v)
}

func floor(v float64) int {
	i := int(v)
	if float64(i) > v {
		i--
	}
	return i
}

func ceil(v float64) int {
	i := int(v)
	if float64(i) < v {
		i++
	}
	return i
}
