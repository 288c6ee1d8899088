package otquery

import "golang.org/x/image/font/sfnt"

// FontMetricsInfo holds the vertical metrics of a font, in font units.
type FontMetricsInfo struct {
	UnitsPerEm      sfnt.Units
	Ascent, Descent sfnt.Units // hhea, or OS/2 typo metrics if hhea has none
	LineGap         sfnt.Units
	MaxAdvance      sfnt.Units // hhea.advanceWidthMax
	CapHeight       sfnt.Units // OS/2 sCapHeight, or the top of 'H'
	XHeight         sfnt.Units // OS/2 sxHeight, or the top of 'x'
}

// GlyphMetricsInfo holds the horizontal metrics and bounds of a glyph.
type GlyphMetricsInfo struct {
	Advance  sfnt.Units
	LSB, RSB sfnt.Units  // RSB is 0 for glyphs without outline
	BBox     BoundingBox // from glyf or CFF outlines
	Class    uint16      // GDEF glyph class, 0 if undefined
}

// BoundingBox is a glyph bounding box in font units.
type BoundingBox struct {
	MinX, MinY sfnt.Units
	MaxX, MaxY sfnt.Units
}

// Empty reports whether the box has no area, as for a space glyph.
func (bbox BoundingBox) Empty() bool {
	return bbox.MaxX <= bbox.MinX || bbox.MaxY <= bbox.MinY
}

// Dx is the width of the box.
func (bbox BoundingBox) Dx() sfnt.Units { return bbox.MaxX - bbox.MinX }

// Dy is the height of the box.
func (bbox BoundingBox) Dy() sfnt.Units { return bbox.MaxY - bbox.MinY }

// Union returns the smallest box containing both boxes. Empty boxes are ignored.
func (bbox BoundingBox) Union(other BoundingBox) BoundingBox {
	switch {
	case other.Empty():
		return bbox
	case bbox.Empty():
		return other
	}
	return BoundingBox{
		MinX: min(bbox.MinX, other.MinX), MinY: min(bbox.MinY, other.MinY),
		MaxX: max(bbox.MaxX, other.MaxX), MaxY: max(bbox.MaxY, other.MaxY),
	}
}
