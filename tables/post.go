package tables

import (
	"fmt"

	"github.com/npillmayer/foundry/ot"
)

// Post wraps table post.
type Post struct {
	Base
}

// NewPost creates a wrapper for table post of a font.
func NewPost(otf *ot.Font) (*Post, error) {
	b, err := newBase(otf, ot.T("post"))
	if err != nil {
		return nil, err
	}
	if otf.Lookup(ot.T("post")).AsPost() == nil {
		return nil, fmt.Errorf("table 'post' not decoded: %w", ot.ErrMissingTable)
	}
	return &Post{Base: b}, nil
}

// PostTable returns the live post table.
func (p *Post) PostTable() *ot.PostTable {
	return p.otf.Lookup(ot.T("post")).AsPost()
}

// ItalicAngle returns the italic angle in degrees, counter-clockwise from the vertical.
func (p *Post) ItalicAngle() float64 {
	return p.PostTable().ItalicAngleValue()
}

// SetItalicAngle sets the italic angle in degrees.
func (p *Post) SetItalicAngle(angle float64) {
	p.PostTable().SetItalicAngleValue(angle)
}

// UnderlinePosition returns the suggested position of the top of the underline.
func (p *Post) UnderlinePosition() int16 {
	return p.PostTable().UnderlinePosition
}

// SetUnderlinePosition sets the underline position.
func (p *Post) SetUnderlinePosition(v int16) {
	p.PostTable().UnderlinePosition = v
}

// UnderlineThickness returns the suggested underline thickness.
func (p *Post) UnderlineThickness() int16 {
	return p.PostTable().UnderlineThickness
}

// SetUnderlineThickness sets the underline thickness.
func (p *Post) SetUnderlineThickness(v int16) {
	p.PostTable().UnderlineThickness = v
}

// IsFixedPitch reports whether the font is monospaced.
func (p *Post) IsFixedPitch() bool {
	return p.PostTable().IsFixedPitch != 0
}

// SetFixedPitch marks the font as monospaced or proportional.
func (p *Post) SetFixedPitch(on bool) {
	var v uint32
	if on {
		v = 1
	}
	p.PostTable().IsFixedPitch = v
}
