package ot

import "fmt"

// HHeaTable contains information for horizontal layout.
type HHeaTable struct {
	tableBase
	MajorVersion        uint16
	MinorVersion        uint16
	Ascender            int16
	Descender           int16
	LineGap             int16
	AdvanceWidthMax     uint16
	MinLeftSideBearing  int16
	MinRightSideBearing int16
	XMaxExtent          int16
	CaretSlopeRise      int16
	CaretSlopeRun       int16
	CaretOffset         int16
	MetricDataFormat    int16
	NumberOfHMetrics    uint16 // maintained by Write from table hmtx
}

const hheaTableSize = 36

func newHHeaTable(tag Tag, b binarySegm, offset, size uint32) *HHeaTable {
	t := &HHeaTable{}
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

// NewHHeaTable creates a hhea table of version 1.0.
func NewHHeaTable() *HHeaTable {
	t := newHHeaTable(T("hhea"), nil, 0, 0)
	t.MajorVersion = 1
	t.CaretSlopeRise = 1
	return t
}

// This table contains information for horizontal layout. The values in the minRightSidebearing,
// minLeftSideBearing and xMaxExtent should be computed using only glyphs that have
// contours.
func parseHHea(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	tracer().Debugf("HHea table has size %d", size)
	if size < hheaTableSize {
		ec.addError(tag, "Size", fmt.Sprintf("hhea table too small: %d bytes (need 36)", size), SeverityCritical, offset)
		return nil, errFontFormat("hhea table incomplete")
	}
	t := newHHeaTable(tag, b, offset, size)
	r := newFieldReader(b)
	t.MajorVersion = r.u16()
	t.MinorVersion = r.u16()
	t.Ascender = r.i16()
	t.Descender = r.i16()
	t.LineGap = r.i16()
	t.AdvanceWidthMax = r.u16()
	t.MinLeftSideBearing = r.i16()
	t.MinRightSideBearing = r.i16()
	t.XMaxExtent = r.i16()
	t.CaretSlopeRise = r.i16()
	t.CaretSlopeRun = r.i16()
	t.CaretOffset = r.i16()
	r.skip(8) // reserved
	t.MetricDataFormat = r.i16()
	t.NumberOfHMetrics = r.u16()
	return t, r.err
}

// Encode serializes table hhea.
func (t *HHeaTable) Encode() ([]byte, error) {
	w := newBinaryWriter(hheaTableSize)
	w.u16(t.MajorVersion)
	w.u16(t.MinorVersion)
	w.i16(t.Ascender)
	w.i16(t.Descender)
	w.i16(t.LineGap)
	w.u16(t.AdvanceWidthMax)
	w.i16(t.MinLeftSideBearing)
	w.i16(t.MinRightSideBearing)
	w.i16(t.XMaxExtent)
	w.i16(t.CaretSlopeRise)
	w.i16(t.CaretSlopeRun)
	w.i16(t.CaretOffset)
	w.u64(0)
	w.i16(t.MetricDataFormat)
	w.u16(t.NumberOfHMetrics)
	return w.Bytes(), nil
}
