package ot

import "fmt"

// MaxPTable establishes the memory requirements for this font.
// The 'maxp' table contains a count for the number of glyphs in the font.
// Whenever this value changes, other tables which depend on it should also be updated.
//
// Fonts with CFF data use version 0.5 of this table, specifying only the numGlyphs
// field. Fonts with TrueType outlines use version 1.0, where all data is required.
type MaxPTable struct {
	tableBase
	Version               uint32 // 0x00005000 or 0x00010000
	NumGlyphs             uint16
	MaxPoints             uint16
	MaxContours           uint16
	MaxCompositePoints    uint16
	MaxCompositeContours  uint16
	MaxZones              uint16
	MaxTwilightPoints     uint16
	MaxStorage            uint16
	MaxFunctionDefs       uint16
	MaxInstructionDefs    uint16
	MaxStackElements      uint16
	MaxSizeOfInstructions uint16
	MaxComponentElements  uint16
	MaxComponentDepth     uint16
}

// Versions of table maxp.
const (
	MaxPVersion05 uint32 = 0x00005000
	MaxPVersion10 uint32 = 0x00010000
)

func newMaxPTable(tag Tag, b binarySegm, offset, size uint32) *MaxPTable {
	t := &MaxPTable{}
	base := tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.tableBase = base
	t.self = t
	return t
}

// NewMaxPTable creates a maxp table of the given version for n glyphs.
func NewMaxPTable(version uint32, n int) *MaxPTable {
	t := newMaxPTable(T("maxp"), nil, 0, 0)
	t.Version = version
	t.NumGlyphs = uint16(n)
	if version == MaxPVersion10 {
		t.MaxZones = 2
	}
	return t
}

func parseMaxP(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size < 6 {
		ec.addError(tag, "Size", fmt.Sprintf("maxp table too small: %d bytes", size), SeverityCritical, offset)
		return nil, errFontFormat("maxp table incomplete")
	}
	t := newMaxPTable(tag, b, offset, size)
	r := newFieldReader(b)
	t.Version = r.u32()
	t.NumGlyphs = r.u16()
	if t.Version < MaxPVersion10 {
		return t, nil
	}
	if size < 32 {
		ec.addWarning(tag, "maxp version 1.0 table truncated, treating as version 0.5", offset)
		t.Version = MaxPVersion05
		return t, nil
	}
	t.MaxPoints = r.u16()
	t.MaxContours = r.u16()
	t.MaxCompositePoints = r.u16()
	t.MaxCompositeContours = r.u16()
	t.MaxZones = r.u16()
	t.MaxTwilightPoints = r.u16()
	t.MaxStorage = r.u16()
	t.MaxFunctionDefs = r.u16()
	t.MaxInstructionDefs = r.u16()
	t.MaxStackElements = r.u16()
	t.MaxSizeOfInstructions = r.u16()
	t.MaxComponentElements = r.u16()
	t.MaxComponentDepth = r.u16()
	return t, r.err
}

// Encode serializes table maxp.
func (t *MaxPTable) Encode() ([]byte, error) {
	w := newBinaryWriter(32)
	w.u32(t.Version)
	w.u16(t.NumGlyphs)
	if t.Version < MaxPVersion10 {
		return w.Bytes(), nil
	}
	w.u16(t.MaxPoints)
	w.u16(t.MaxContours)
	w.u16(t.MaxCompositePoints)
	w.u16(t.MaxCompositeContours)
	w.u16(t.MaxZones)
	w.u16(t.MaxTwilightPoints)
	w.u16(t.MaxStorage)
	w.u16(t.MaxFunctionDefs)
	w.u16(t.MaxInstructionDefs)
	w.u16(t.MaxStackElements)
	w.u16(t.MaxSizeOfInstructions)
	w.u16(t.MaxComponentElements)
	w.u16(t.MaxComponentDepth)
	return w.Bytes(), nil
}

// RecalcProfile recalculates the fields of a version 1.0 table which depend on
// the glyph outlines of table glyf.
func (t *MaxPTable) RecalcProfile(glyf *GlyfTable) error {
	if t.Version != MaxPVersion10 {
		return nil
	}
	t.NumGlyphs = uint16(glyf.NumGlyphs())
	return recalcMaxPProfile(t, glyf)
}
