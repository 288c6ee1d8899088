package tables

import (
	"fmt"
	"math"

	"github.com/npillmayer/foundry/ot"
)

// HHea wraps table hhea.
type HHea struct {
	Base
}

// NewHHea creates a wrapper for table hhea of a font.
func NewHHea(otf *ot.Font) (*HHea, error) {
	b, err := newBase(otf, ot.T("hhea"))
	if err != nil {
		return nil, err
	}
	if otf.Lookup(ot.T("hhea")).AsHHea() == nil {
		return nil, fmt.Errorf("table 'hhea' not decoded: %w", ot.ErrMissingTable)
	}
	return &HHea{Base: b}, nil
}

// HHeaTable returns the live hhea table.
func (h *HHea) HHeaTable() *ot.HHeaTable {
	return h.otf.Lookup(ot.T("hhea")).AsHHea()
}

// Ascender returns the typographic ascent.
func (h *HHea) Ascender() int16 { return h.HHeaTable().Ascender }

// Descender returns the typographic descent.
func (h *HHea) Descender() int16 { return h.HHeaTable().Descender }

// LineGap returns the typographic line gap.
func (h *HHea) LineGap() int16 { return h.HHeaTable().LineGap }

// SetAscender sets the typographic ascent.
func (h *HHea) SetAscender(v int16) { h.HHeaTable().Ascender = v }

// SetDescender sets the typographic descent.
func (h *HHea) SetDescender(v int16) { h.HHeaTable().Descender = v }

// SetLineGap sets the typographic line gap.
func (h *HHea) SetLineGap(v int16) { h.HHeaTable().LineGap = v }

// CaretSlopeRise returns caretSlopeRise.
func (h *HHea) CaretSlopeRise() int16 { return h.HHeaTable().CaretSlopeRise }

// CaretSlopeRun returns caretSlopeRun.
func (h *HHea) CaretSlopeRun() int16 { return h.HHeaTable().CaretSlopeRun }

// SetCaretSlopeRise sets caretSlopeRise.
func (h *HHea) SetCaretSlopeRise(v int16) { h.HHeaTable().CaretSlopeRise = v }

// SetCaretSlopeRun sets caretSlopeRun.
func (h *HHea) SetCaretSlopeRun(v int16) { h.HHeaTable().CaretSlopeRun = v }

// CaretOffset returns caretOffset.
func (h *HHea) CaretOffset() int16 { return h.HHeaTable().CaretOffset }

// SetCaretOffset sets caretOffset.
func (h *HHea) SetCaretOffset(v int16) { h.HHeaTable().CaretOffset = v }

// RunRiseAngle returns the angle of the caret slope in degrees, in the sense
// of post.italicAngle: negative for slants to the right.
func (h *HHea) RunRiseAngle() float64 {
	t := h.HHeaTable()
	if t.CaretSlopeRise == 0 {
		return 0
	}
	return -degrees(math.Atan(float64(t.CaretSlopeRun) / float64(t.CaretSlopeRise)))
}

// CalcCaretSlopeRise returns the caretSlopeRise matching an italic angle: 1
// for upright fonts, units-per-em otherwise.
func (h *HHea) CalcCaretSlopeRise(italicAngle float64) int16 {
	if italicAngle == 0 {
		return 1
	}
	return int16(h.upem())
}

// CalcCaretSlopeRun returns the caretSlopeRun matching an italic angle, with
// units-per-em as the rise.
func (h *HHea) CalcCaretSlopeRun(italicAngle float64) int16 {
	if italicAngle == 0 {
		return 0
	}
	return int16(math.Round(math.Tan(radians(-italicAngle)) * float64(h.upem())))
}

// FixCaretSlope sets the caret slope to match an italic angle.
func (h *HHea) FixCaretSlope(italicAngle float64) {
	t := h.HHeaTable()
	t.CaretSlopeRise = h.CalcCaretSlopeRise(italicAngle)
	t.CaretSlopeRun = h.CalcCaretSlopeRun(italicAngle)
}

func (h *HHea) upem() uint16 {
	if head := h.otf.Lookup(ot.T("head")).AsHead(); head != nil && head.UnitsPerEm > 0 {
		return head.UnitsPerEm
	}
	return 1000
}

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
func radians(deg float64) float64 { return deg * math.Pi / 180 }
