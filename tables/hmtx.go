package tables

import (
	"fmt"

	"github.com/npillmayer/foundry/ot"
)

// HMtx wraps table hmtx.
type HMtx struct {
	Base
}

// NewHMtx creates a wrapper for table hmtx of a font.
func NewHMtx(otf *ot.Font) (*HMtx, error) {
	b, err := newBase(otf, ot.T("hmtx"))
	if err != nil {
		return nil, err
	}
	if otf.Lookup(ot.T("hmtx")).AsHMtx() == nil {
		return nil, fmt.Errorf("table 'hmtx' not decoded: %w", ot.ErrMissingTable)
	}
	return &HMtx{Base: b}, nil
}

// HMtxTable returns the live hmtx table.
func (h *HMtx) HMtxTable() *ot.HMtxTable {
	return h.otf.Lookup(ot.T("hmtx")).AsHMtx()
}

// FixNonBreakingSpaceWidth sets the metric of the glyph for U+00A0 (no-break
// space) to the metric of the glyph for U+0020 (space). It reports whether the
// metric had to be changed. If either glyph is missing from the best Unicode
// character map, an error wrapping ot.ErrMissingGlyph is returned.
func (h *HMtx) FixNonBreakingSpaceWidth() (bool, error) {
	best := h.otf.Lookup(ot.T("cmap")).AsCMap().BestMapping()
	space, ok1 := best[0x0020]
	nbsp, ok2 := best[0x00A0]
	if !ok1 || !ok2 {
		return false, fmt.Errorf("space and no-break space must both be mapped: %w", ot.ErrMissingGlyph)
	}
	hmtx := h.HMtxTable()
	sm, ok := hmtx.Metric(space)
	if !ok {
		return false, fmt.Errorf("no metric for space glyph %d: %w", space, ot.ErrMissingGlyph)
	}
	nm, ok := hmtx.Metric(nbsp)
	if !ok {
		return false, fmt.Errorf("no metric for no-break space glyph %d: %w", nbsp, ot.ErrMissingGlyph)
	}
	if nm == sm {
		return false, nil
	}
	hmtx.SetMetric(nbsp, sm.AdvanceWidth, sm.LeftSideBearing)
	tracer().Infof("hmtx: width of glyph %d set to %d", nbsp, sm.AdvanceWidth)
	return true, nil
}
