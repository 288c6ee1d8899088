package tables

import (
	"fmt"
	"math"

	"github.com/npillmayer/foundry/ot"
	"github.com/npillmayer/foundry/otquery"
)

// Embedding permissions, bits 0-3 of fsType.
const (
	EmbedInstallable uint16 = 0
	EmbedRestricted  uint16 = 2
	EmbedPreview     uint16 = 4
	EmbedEditable    uint16 = 8
)

// Bits of fsType beyond the embedding level.
const (
	FsTypeNoSubsetting = 8
	FsTypeBitmapOnly   = 9
)

// OS2 wraps table OS/2.
type OS2 struct {
	Base
}

// NewOS2 creates a wrapper for table OS/2 of a font.
func NewOS2(otf *ot.Font) (*OS2, error) {
	b, err := newBase(otf, ot.T("OS/2"))
	if err != nil {
		return nil, err
	}
	if otf.Lookup(ot.T("OS/2")).AsOS2() == nil {
		return nil, fmt.Errorf("table 'OS/2' not decoded: %w", ot.ErrMissingTable)
	}
	return &OS2{Base: b}, nil
}

// OS2Table returns the live OS/2 table, or nil if the table has been removed
// from the font. Getters of a wrapper of a removed table return zero values,
// setters fail with ot.ErrMissingTable.
func (o *OS2) OS2Table() *ot.OS2Table {
	return o.otf.Lookup(ot.T("OS/2")).AsOS2()
}

func (o *OS2) table() (*ot.OS2Table, error) {
	if t := o.OS2Table(); t != nil {
		return t, nil
	}
	return nil, fmt.Errorf("table 'OS/2' removed: %w", ot.ErrMissingTable)
}

// view is the table for getters.
func (o *OS2) view() *ot.OS2Table {
	if t := o.OS2Table(); t != nil {
		return t
	}
	return &ot.OS2Table{}
}

func (o *OS2) bit(pos uint) bool {
	on, _ := o.GetBit("FsSelection", pos)
	return on
}

// IsItalic reports whether fsSelection bit 0 is set.
func (o *OS2) IsItalic() bool { return o.bit(ot.FsSelectionItalic) }

// IsBold reports whether fsSelection bit 5 is set.
func (o *OS2) IsBold() bool { return o.bit(ot.FsSelectionBold) }

// IsRegular reports whether fsSelection bit 6 is set.
func (o *OS2) IsRegular() bool { return o.bit(ot.FsSelectionRegular) }

// UseTypoMetrics reports whether fsSelection bit 7 is set.
func (o *OS2) UseTypoMetrics() bool { return o.bit(ot.FsSelectionUseTypoMetric) }

// IsWWS reports whether fsSelection bit 8 is set.
func (o *OS2) IsWWS() bool { return o.bit(ot.FsSelectionWWS) }

// IsOblique reports whether fsSelection bit 9 is set.
func (o *OS2) IsOblique() bool { return o.bit(ot.FsSelectionOblique) }

// SetItalic sets or clears fsSelection bit 0.
func (o *OS2) SetItalic(on bool) error { return o.SetBit("FsSelection", ot.FsSelectionItalic, on) }

// SetBold sets or clears fsSelection bit 5.
func (o *OS2) SetBold(on bool) error { return o.SetBit("FsSelection", ot.FsSelectionBold, on) }

// SetRegular sets or clears fsSelection bit 6.
func (o *OS2) SetRegular(on bool) error { return o.SetBit("FsSelection", ot.FsSelectionRegular, on) }

// SetUseTypoMetrics sets or clears fsSelection bit 7. The bit is defined for
// table versions 4 and later only.
func (o *OS2) SetUseTypoMetrics(on bool) error {
	return o.setV4Bit(ot.FsSelectionUseTypoMetric, on)
}

// SetWWS sets or clears fsSelection bit 8.
func (o *OS2) SetWWS(on bool) error {
	return o.setV4Bit(ot.FsSelectionWWS, on)
}

// SetOblique sets or clears fsSelection bit 9.
func (o *OS2) SetOblique(on bool) error {
	return o.setV4Bit(ot.FsSelectionOblique, on)
}

func (o *OS2) setV4Bit(pos uint, on bool) error {
	t, err := o.table()
	if err != nil {
		return err
	}
	if on && t.Version < 4 {
		return fmt.Errorf("OS/2 version %d: fsSelection bit %d requires version 4", t.Version, pos)
	}
	return o.SetBit("FsSelection", pos, on)
}

// Version returns the table version.
func (o *OS2) Version() uint16 {
	return o.view().Version
}

// UpgradeVersion raises the table version. Fields introduced by the new
// version are initialized: code page ranges are kept zero, x-height and
// cap-height are measured from the glyphs for 'x' and 'H', default and break
// characters are .notdef and space, optical point sizes span the whole range.
// Downgrading is not supported.
func (o *OS2) UpgradeVersion(version uint16) error {
	t, err := o.table()
	if err != nil {
		return err
	}
	if version > 5 {
		return fmt.Errorf("OS/2 version %d does not exist", version)
	}
	if version < t.Version {
		return fmt.Errorf("OS/2 version %d cannot be downgraded to %d", t.Version, version)
	}
	if version == t.Version {
		return nil
	}
	if t.Version < 2 && version >= 2 {
		t.SxHeight = o.glyphHeight('x')
		t.SCapHeight = o.glyphHeight('H')
		t.UsDefaultChar = 0
		t.UsBreakChar = 0x20
		t.UsMaxContext = 0
	}
	if t.Version < 5 && version == 5 {
		t.UsLowerOpticalPointSize = 0
		t.UsUpperOpticalPointSize = 0xFFFF
	}
	tracer().Infof("OS/2: upgrade version %d to %d", t.Version, version)
	t.Version = version
	return nil
}

// glyphHeight returns the yMax of the glyph mapped to r, or 0.
func (o *OS2) glyphHeight(r rune) int16 {
	gid, ok := otquery.BestCMap(o.otf)[r]
	if !ok {
		return 0
	}
	bbox, ok := otquery.GlyphBounds(o.otf, gid)
	if !ok {
		return 0
	}
	return int16(bbox.MaxY)
}

// WeightClass returns usWeightClass.
func (o *OS2) WeightClass() uint16 {
	return o.view().UsWeightClass
}

// SetWeightClass sets usWeightClass, which must be in the range 1..1000.
func (o *OS2) SetWeightClass(w uint16) error {
	if w < 1 || w > 1000 {
		return fmt.Errorf("weight class %d out of range 1..1000", w)
	}
	t, err := o.table()
	if err != nil {
		return err
	}
	t.UsWeightClass = w
	return nil
}

// WidthClass returns usWidthClass.
func (o *OS2) WidthClass() uint16 {
	return o.view().UsWidthClass
}

// SetWidthClass sets usWidthClass, which must be in the range 1..9.
func (o *OS2) SetWidthClass(w uint16) error {
	if w < 1 || w > 9 {
		return fmt.Errorf("width class %d out of range 1..9", w)
	}
	t, err := o.table()
	if err != nil {
		return err
	}
	t.UsWidthClass = w
	return nil
}

// EmbedLevel returns the embedding permission, bits 0-3 of fsType.
func (o *OS2) EmbedLevel() uint16 {
	return o.view().FsType & 0x000F
}

// SetEmbedLevel sets the embedding permission, keeping the other bits of fsType.
func (o *OS2) SetEmbedLevel(level uint16) error {
	switch level {
	case EmbedInstallable, EmbedRestricted, EmbedPreview, EmbedEditable:
	default:
		return fmt.Errorf("invalid embedding level %d", level)
	}
	t, err := o.table()
	if err != nil {
		return err
	}
	t.FsType = t.FsType&^0x000F | level
	return nil
}

// NoSubsetting reports whether fsType bit 8 is set.
func (o *OS2) NoSubsetting() bool {
	on, _ := o.GetBit("FsType", FsTypeNoSubsetting)
	return on
}

// SetNoSubsetting sets or clears fsType bit 8.
func (o *OS2) SetNoSubsetting(on bool) error {
	return o.SetBit("FsType", FsTypeNoSubsetting, on)
}

// BitmapEmbedOnly reports whether fsType bit 9 is set.
func (o *OS2) BitmapEmbedOnly() bool {
	on, _ := o.GetBit("FsType", FsTypeBitmapOnly)
	return on
}

// SetBitmapEmbedOnly sets or clears fsType bit 9.
func (o *OS2) SetBitmapEmbedOnly(on bool) error {
	return o.SetBit("FsType", FsTypeBitmapOnly, on)
}

// VendorID returns achVendID, with trailing blanks and NULs removed.
func (o *OS2) VendorID() string {
	id := o.view().AchVendID
	n := len(id)
	for n > 0 && (id[n-1] == ' ' || id[n-1] == 0) {
		n--
	}
	return string(id[:n])
}

// SetVendorID sets achVendID. id must have at most 4 printable ASCII
// characters; shorter IDs are padded with blanks.
func (o *OS2) SetVendorID(id string) error {
	if len(id) > 4 {
		return fmt.Errorf("vendor ID %q longer than 4 characters", id)
	}
	var b [4]byte
	for i := range b {
		b[i] = ' '
		if i < len(id) {
			if id[i] < 0x20 || id[i] > 0x7E {
				return fmt.Errorf("vendor ID %q: invalid character", id)
			}
			b[i] = id[i]
		}
	}
	t, err := o.table()
	if err != nil {
		return err
	}
	t.AchVendID = b
	return nil
}

// RecalcAvgCharWidth sets xAvgCharWidth to the average advance width of all
// glyphs with a non-zero advance and returns the new value.
func (o *OS2) RecalcAvgCharWidth() (int16, error) {
	t, err := o.table()
	if err != nil {
		return 0, err
	}
	hmtx := o.otf.Lookup(ot.T("hmtx")).AsHMtx()
	if hmtx == nil {
		return 0, fmt.Errorf("average char width: %w", ot.ErrMissingTable)
	}
	sum, n := 0, 0
	for _, m := range hmtx.Metrics() {
		if m.AdvanceWidth > 0 {
			sum += int(m.AdvanceWidth)
			n++
		}
	}
	var avg int16
	if n > 0 {
		avg = int16(math.Round(float64(sum) / float64(n)))
	}
	t.XAvgCharWidth = avg
	return avg, nil
}
