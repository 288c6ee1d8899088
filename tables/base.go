package tables

import (
	"fmt"

	"github.com/npillmayer/foundry/internal/bits"
	"github.com/npillmayer/foundry/ot"
)

// Wrapper is the capability every table wrapper has.
type Wrapper interface {
	Tag() ot.Tag
	IsModified() bool
}

// Base is embedded by all table wrappers. It binds a wrapper to a font and a
// table tag.
type Base struct {
	otf *ot.Font
	tag ot.Tag
}

// newBase binds a wrapper to a table. If the font does not contain the table,
// an error wrapping ot.ErrMissingTable is returned.
func newBase(otf *ot.Font, tag ot.Tag) (Base, error) {
	if otf == nil || !otf.HasTable(tag) {
		return Base{}, fmt.Errorf("table '%s': %w", tag, ot.ErrMissingTable)
	}
	return Base{otf: otf, tag: tag}, nil
}

// NewBase creates a wrapper for a table without specialized operations.
func NewBase(otf *ot.Font, tag ot.Tag) (*Base, error) {
	b, err := newBase(otf, tag)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Tag returns the tag of the wrapped table.
func (b *Base) Tag() ot.Tag {
	return b.tag
}

// Font returns the font container the table belongs to.
func (b *Base) Font() *ot.Font {
	return b.otf
}

// Table returns the live table. If the table has since been removed from the
// font, nil is returned.
func (b *Base) Table() ot.Table {
	return b.otf.Table(b.tag)
}

// IsModified reports whether the table has been changed. Base cannot tell and
// always reports true; wrappers which keep a snapshot do better.
func (b *Base) IsModified() bool {
	return true
}

// SetBit sets or clears a single bit of an integer field of the table. field is
// the Go name of the field, e.g. "FsSelection". All other bits of the field are
// preserved. If the table does not have an integer field of that name, an error
// wrapping ot.ErrFieldNotFound is returned.
func (b *Base) SetBit(field string, pos uint, value bool) error {
	t := b.Table()
	v, err := ot.FieldValue(t, field)
	if err != nil {
		return err
	}
	tracer().Debugf("%s.%s: set bit %d to %v", b.tag, field, pos, value)
	return ot.SetFieldValue(t, field, bits.Set(v, pos, value))
}

// GetBit reads a single bit of an integer field of the table.
func (b *Base) GetBit(field string, pos uint) (bool, error) {
	v, err := ot.FieldValue(b.Table(), field)
	if err != nil {
		return false, err
	}
	return bits.IsSet(v, pos), nil
}
