package tables

import (
	"fmt"

	"github.com/npillmayer/foundry/ot"
)

// MaxP wraps table maxp.
type MaxP struct {
	Base
}

// NewMaxP creates a wrapper for table maxp of a font.
func NewMaxP(otf *ot.Font) (*MaxP, error) {
	b, err := newBase(otf, ot.T("maxp"))
	if err != nil {
		return nil, err
	}
	if otf.Lookup(ot.T("maxp")).AsMaxP() == nil {
		return nil, fmt.Errorf("table 'maxp' not decoded: %w", ot.ErrMissingTable)
	}
	return &MaxP{Base: b}, nil
}

// NumGlyphs returns the number of glyphs of the font.
func (m *MaxP) NumGlyphs() int {
	return int(m.otf.Lookup(ot.T("maxp")).AsMaxP().NumGlyphs)
}
