package tables

import (
	"fmt"
	"time"

	"github.com/npillmayer/foundry/ot"
)

// Bits of field macStyle of table head.
const (
	MacStyleBold   = 0
	MacStyleItalic = 1
)

// Head wraps table head.
type Head struct {
	Base
}

// NewHead creates a wrapper for table head of a font.
func NewHead(otf *ot.Font) (*Head, error) {
	b, err := newBase(otf, ot.T("head"))
	if err != nil {
		return nil, err
	}
	if otf.Lookup(ot.T("head")).AsHead() == nil {
		return nil, fmt.Errorf("table 'head' not decoded: %w", ot.ErrMissingTable)
	}
	return &Head{Base: b}, nil
}

// HeadTable returns the live head table.
func (h *Head) HeadTable() *ot.HeadTable {
	return h.otf.Lookup(ot.T("head")).AsHead()
}

// IsBold reports whether bit 0 of macStyle is set.
func (h *Head) IsBold() bool {
	on, _ := h.GetBit("MacStyle", MacStyleBold)
	return on
}

// SetBold sets or clears bit 0 of macStyle.
func (h *Head) SetBold(on bool) error {
	return h.SetBit("MacStyle", MacStyleBold, on)
}

// IsItalic reports whether bit 1 of macStyle is set.
func (h *Head) IsItalic() bool {
	on, _ := h.GetBit("MacStyle", MacStyleItalic)
	return on
}

// SetItalic sets or clears bit 1 of macStyle.
func (h *Head) SetItalic(on bool) error {
	return h.SetBit("MacStyle", MacStyleItalic, on)
}

// UnitsPerEm returns the em square size.
func (h *Head) UnitsPerEm() uint16 {
	return h.HeadTable().UnitsPerEm
}

// FontRevision returns the font revision, rounded to 3 decimals.
func (h *Head) FontRevision() float64 {
	return h.HeadTable().FontRevisionValue()
}

// SetFontRevision sets the font revision.
func (h *Head) SetFontRevision(rev float64) {
	h.HeadTable().FontRevision = ot.FloatToFixed1616(rev)
}

// Created returns the creation date.
func (h *Head) Created() time.Time {
	return h.HeadTable().CreatedTime()
}

// SetCreated sets the creation date.
func (h *Head) SetCreated(t time.Time) {
	h.HeadTable().SetCreatedTime(t)
}

// Modified returns the modification date.
func (h *Head) Modified() time.Time {
	return h.HeadTable().ModifiedTime()
}

// SetModified sets the modification date.
func (h *Head) SetModified(t time.Time) {
	h.HeadTable().SetModifiedTime(t)
}

// BBox returns the font bounding box as xMin, yMin, xMax, yMax.
func (h *Head) BBox() [4]int16 {
	t := h.HeadTable()
	return [4]int16{t.XMin, t.YMin, t.XMax, t.YMax}
}
