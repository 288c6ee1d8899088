package ot

import "fmt"

// OS2Table holds the OS/2 and Windows specific metrics of a font, versions 0 to 5.
// See https://docs.microsoft.com/en-us/typography/opentype/spec/os2
type OS2Table struct {
	tableBase
	Version                 uint16
	XAvgCharWidth           int16
	UsWeightClass           uint16
	UsWidthClass            uint16
	FsType                  uint16
	YSubscriptXSize         int16
	YSubscriptYSize         int16
	YSubscriptXOffset       int16
	YSubscriptYOffset       int16
	YSuperscriptXSize       int16
	YSuperscriptYSize       int16
	YSuperscriptXOffset     int16
	YSuperscriptYOffset     int16
	YStrikeoutSize          int16
	YStrikeoutPosition      int16
	SFamilyClass            int16
	Panose                  [10]byte
	UlUnicodeRange1         uint32
	UlUnicodeRange2         uint32
	UlUnicodeRange3         uint32
	UlUnicodeRange4         uint32
	AchVendID               [4]byte
	FsSelection             uint16
	UsFirstCharIndex        uint16
	UsLastCharIndex         uint16
	STypoAscender           int16
	STypoDescender          int16
	STypoLineGap            int16
	UsWinAscent             uint16
	UsWinDescent            uint16
	UlCodePageRange1        uint32 // version ≥ 1
	UlCodePageRange2        uint32
	SxHeight                int16 // version ≥ 2
	SCapHeight              int16
	UsDefaultChar           uint16
	UsBreakChar             uint16
	UsMaxContext            uint16
	UsLowerOpticalPointSize uint16 // version 5
	UsUpperOpticalPointSize uint16
	legacyShort             bool // version 0 table of Apple fonts, without typo metrics
}

// Bits of OS2Table.FsSelection.
const (
	FsSelectionItalic        = 0
	FsSelectionUnderscore    = 1
	FsSelectionNegative      = 2
	FsSelectionOutlined      = 3
	FsSelectionStrikeout     = 4
	FsSelectionBold          = 5
	FsSelectionRegular       = 6
	FsSelectionUseTypoMetric = 7
	FsSelectionWWS           = 8
	FsSelectionOblique       = 9
)

func newOS2Table(tag Tag, b binarySegm, offset, size uint32) *OS2Table {
	t := &OS2Table{}
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

// NewOS2Table creates an empty OS/2 table of version 4.
func NewOS2Table() *OS2Table {
	t := newOS2Table(T("OS/2"), nil, 0, 0)
	t.Version = 4
	t.UsWeightClass = 400
	t.UsWidthClass = 5
	return t
}

// os2Size returns the byte size of an OS/2 table of a given version.
func os2Size(version uint16) int {
	switch version {
	case 0:
		return 78
	case 1:
		return 86
	case 2, 3, 4:
		return 96
	}
	return 100
}

func parseOS2(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size < 68 {
		ec.addError(tag, "Size", fmt.Sprintf("OS/2 table too small: %d bytes", size), SeverityCritical, offset)
		return nil, errFontFormat("OS/2 table incomplete")
	}
	t := newOS2Table(tag, b, offset, size)
	r := newFieldReader(b)
	t.Version = r.u16()
	if t.Version > 5 {
		ec.addWarning(tag, fmt.Sprintf("unknown OS/2 version %d, reading as version 5", t.Version), offset)
	}
	if need := os2Size(t.Version); int(size) < need && !(t.Version == 0 && size >= 68) {
		ec.addError(tag, "Size", fmt.Sprintf("OS/2 version %d needs %d bytes, has %d", t.Version, need, size),
			SeverityMajor, offset)
		return nil, errFontFormat("OS/2 table size does not match version")
	}
	t.XAvgCharWidth = r.i16()
	t.UsWeightClass = r.u16()
	t.UsWidthClass = r.u16()
	t.FsType = r.u16()
	t.YSubscriptXSize = r.i16()
	t.YSubscriptYSize = r.i16()
	t.YSubscriptXOffset = r.i16()
	t.YSubscriptYOffset = r.i16()
	t.YSuperscriptXSize = r.i16()
	t.YSuperscriptYSize = r.i16()
	t.YSuperscriptXOffset = r.i16()
	t.YSuperscriptYOffset = r.i16()
	t.YStrikeoutSize = r.i16()
	t.YStrikeoutPosition = r.i16()
	t.SFamilyClass = r.i16()
	copy(t.Panose[:], r.bytes(10))
	t.UlUnicodeRange1 = r.u32()
	t.UlUnicodeRange2 = r.u32()
	t.UlUnicodeRange3 = r.u32()
	t.UlUnicodeRange4 = r.u32()
	copy(t.AchVendID[:], r.bytes(4))
	t.FsSelection = r.u16()
	t.UsFirstCharIndex = r.u16()
	t.UsLastCharIndex = r.u16()
	if t.Version == 0 && size < 78 {
		t.legacyShort = true
		return t, r.err
	}
	t.STypoAscender = r.i16()
	t.STypoDescender = r.i16()
	t.STypoLineGap = r.i16()
	t.UsWinAscent = r.u16()
	t.UsWinDescent = r.u16()
	if t.Version >= 1 {
		t.UlCodePageRange1 = r.u32()
		t.UlCodePageRange2 = r.u32()
	}
	if t.Version >= 2 {
		t.SxHeight = r.i16()
		t.SCapHeight = r.i16()
		t.UsDefaultChar = r.u16()
		t.UsBreakChar = r.u16()
		t.UsMaxContext = r.u16()
	}
	if t.Version >= 5 {
		t.UsLowerOpticalPointSize = r.u16()
		t.UsUpperOpticalPointSize = r.u16()
	}
	return t, r.err
}

// Encode serializes table OS/2 in the layout of its Version.
func (t *OS2Table) Encode() ([]byte, error) {
	w := newBinaryWriter(os2Size(t.Version))
	w.u16(t.Version)
	w.i16(t.XAvgCharWidth)
	w.u16(t.UsWeightClass)
	w.u16(t.UsWidthClass)
	w.u16(t.FsType)
	w.i16(t.YSubscriptXSize)
	w.i16(t.YSubscriptYSize)
	w.i16(t.YSubscriptXOffset)
	w.i16(t.YSubscriptYOffset)
	w.i16(t.YSuperscriptXSize)
	w.i16(t.YSuperscriptYSize)
	w.i16(t.YSuperscriptXOffset)
	w.i16(t.YSuperscriptYOffset)
	w.i16(t.YStrikeoutSize)
	w.i16(t.YStrikeoutPosition)
	w.i16(t.SFamilyClass)
	w.bytes(t.Panose[:])
	w.u32(t.UlUnicodeRange1)
	w.u32(t.UlUnicodeRange2)
	w.u32(t.UlUnicodeRange3)
	w.u32(t.UlUnicodeRange4)
	w.bytes(t.AchVendID[:])
	w.u16(t.FsSelection)
	w.u16(t.UsFirstCharIndex)
	w.u16(t.UsLastCharIndex)
	if t.Version == 0 && t.legacyShort {
		return w.Bytes(), nil
	}
	w.i16(t.STypoAscender)
	w.i16(t.STypoDescender)
	w.i16(t.STypoLineGap)
	w.u16(t.UsWinAscent)
	w.u16(t.UsWinDescent)
	if t.Version >= 1 {
		w.u32(t.UlCodePageRange1)
		w.u32(t.UlCodePageRange2)
	}
	if t.Version >= 2 {
		w.i16(t.SxHeight)
		w.i16(t.SCapHeight)
		w.u16(t.UsDefaultChar)
		w.u16(t.UsBreakChar)
		w.u16(t.UsMaxContext)
	}
	if t.Version >= 5 {
		w.u16(t.UsLowerOpticalPointSize)
		w.u16(t.UsUpperOpticalPointSize)
	}
	return w.Bytes(), nil
}
