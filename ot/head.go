package ot

import (
	"fmt"
	"time"
)

// HeadTable gives global information about the font.
// See https://docs.microsoft.com/en-us/typography/opentype/spec/head
type HeadTable struct {
	tableBase
	MajorVersion       uint16
	MinorVersion       uint16
	FontRevision       int32  // 16.16 fixed
	CheckSumAdjustment uint32 // recalculated by Write
	MagicNumber        uint32
	Flags              uint16
	UnitsPerEm         uint16 // values 16 … 16384 are valid
	Created            int64  // seconds since 1904-01-01 00:00 UTC
	Modified           int64  // seconds since 1904-01-01 00:00 UTC
	XMin               int16
	YMin               int16
	XMax               int16
	YMax               int16
	MacStyle           uint16 // bit 0 bold, bit 1 italic
	LowestRecPPEM      uint16
	FontDirectionHint  int16
	IndexToLocFormat   int16 // 0 for short offsets, 1 for long; maintained by Write
	GlyphDataFormat    int16
}

// MagicNumber of table head.
const headMagic = 0x5F0F3CF5

const headTableSize = 54

func newHeadTable(tag Tag, b binarySegm, offset, size uint32) *HeadTable {
	t := &HeadTable{}
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

// NewHeadTable creates a head table version 1.0 with the given units per em,
// created and modified now.
func NewHeadTable(unitsPerEm uint16) *HeadTable {
	t := newHeadTable(T("head"), nil, 0, 0)
	t.MajorVersion = 1
	t.MagicNumber = headMagic
	t.UnitsPerEm = unitsPerEm
	t.Flags = 0x000B
	t.LowestRecPPEM = 6
	t.FontDirectionHint = 2
	t.SetCreatedTime(time.Now())
	t.SetModifiedTime(time.Now())
	return t
}

func parseHead(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size < headTableSize {
		ec.addError(tag, "Size", fmt.Sprintf("head table too small: %d bytes (need 54)", size), SeverityCritical, offset)
		return nil, errFontFormat("size of head table")
	}
	t := newHeadTable(tag, b, offset, size)
	r := newFieldReader(b)
	t.MajorVersion = r.u16()
	t.MinorVersion = r.u16()
	t.FontRevision = r.i32()
	t.CheckSumAdjustment = r.u32()
	t.MagicNumber = r.u32()
	t.Flags = r.u16()
	t.UnitsPerEm = r.u16()
	t.Created = int64(r.u64())
	t.Modified = int64(r.u64())
	t.XMin = r.i16()
	t.YMin = r.i16()
	t.XMax = r.i16()
	t.YMax = r.i16()
	t.MacStyle = r.u16()
	t.LowestRecPPEM = r.u16()
	t.FontDirectionHint = r.i16()
	t.IndexToLocFormat = r.i16()
	t.GlyphDataFormat = r.i16()
	if t.MagicNumber != headMagic {
		ec.addWarning(tag, fmt.Sprintf("bad magic number %x", t.MagicNumber), offset+12)
	}
	if t.IndexToLocFormat != 0 && t.IndexToLocFormat != 1 {
		ec.addError(tag, "IndexToLocFormat", fmt.Sprintf("invalid value: %d (must be 0 or 1)", t.IndexToLocFormat),
			SeverityMajor, offset+50)
	}
	return t, r.err
}

// Encode serializes table head. CheckSumAdjustment is written as is; Write
// recalculates it for the whole font.
func (t *HeadTable) Encode() ([]byte, error) {
	w := newBinaryWriter(headTableSize)
	w.u16(t.MajorVersion)
	w.u16(t.MinorVersion)
	w.i32(t.FontRevision)
	w.u32(t.CheckSumAdjustment)
	w.u32(t.MagicNumber)
	w.u16(t.Flags)
	w.u16(t.UnitsPerEm)
	w.u64(uint64(t.Created))
	w.u64(uint64(t.Modified))
	w.i16(t.XMin)
	w.i16(t.YMin)
	w.i16(t.XMax)
	w.i16(t.YMax)
	w.u16(t.MacStyle)
	w.u16(t.LowestRecPPEM)
	w.i16(t.FontDirectionHint)
	w.i16(t.IndexToLocFormat)
	w.i16(t.GlyphDataFormat)
	return w.Bytes(), nil
}

var epoch1904 = time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC)

// LongDateTime converts a time to seconds since 1904-01-01.
func LongDateTime(t time.Time) int64 {
	return int64(t.UTC().Sub(epoch1904) / time.Second)
}

// TimeFromLongDateTime converts seconds since 1904-01-01 to a time.
// Values beyond the range of time.Duration are clamped.
func TimeFromLongDateTime(secs int64) time.Time {
	const maxSecs = int64(1<<63-1) / int64(time.Second)
	if secs > maxSecs {
		secs = maxSecs
	} else if secs < -maxSecs {
		secs = -maxSecs
	}
	return epoch1904.Add(time.Duration(secs) * time.Second)
}

// CreatedTime returns the creation date of the font.
func (t *HeadTable) CreatedTime() time.Time {
	return TimeFromLongDateTime(t.Created)
}

// ModifiedTime returns the modification date of the font.
func (t *HeadTable) ModifiedTime() time.Time {
	return TimeFromLongDateTime(t.Modified)
}

// SetCreatedTime sets the creation date of the font.
func (t *HeadTable) SetCreatedTime(tm time.Time) {
	t.Created = LongDateTime(tm)
}

// SetModifiedTime sets the modification date of the font.
func (t *HeadTable) SetModifiedTime(tm time.Time) {
	t.Modified = LongDateTime(tm)
}

// FontRevisionValue returns the font revision as a float, rounded to 3 decimals.
func (t *HeadTable) FontRevisionValue() float64 {
	return float64(int(float64(t.FontRevision)/65536*1000+0.5)) / 1000
}
