package foundry

import (
	"errors"
	"fmt"

	"github.com/npillmayer/foundry/ot"
)

// Error kinds.
var (
	// ErrInvalidSource is returned for font sources of an unsupported type.
	ErrInvalidSource = errors.New("invalid font source")
	// ErrConversion is returned if a font cannot be converted as requested.
	ErrConversion = errors.New("font conversion failed")
	// ErrExternal is returned if an external tool failed.
	ErrExternal = errors.New("external tool failed")
	// ErrFlags is returned if style flags cannot be read or written.
	ErrFlags = errors.New("style flags")
)

// Error kinds of package ot, for convenience.
var (
	ErrMissingTable  = ot.ErrMissingTable
	ErrFieldNotFound = ot.ErrFieldNotFound
	ErrUnknownFormat = ot.ErrUnknownFormat
	ErrMissingGlyph  = ot.ErrMissingGlyph
	ErrCorruptFont   = ot.ErrCorruptFont
)

// Error is the error type of font operations. Kind is one of the error kinds
// of this package, Err the underlying cause, if any.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	case e.Kind == nil || errors.Is(e.Err, e.Kind):
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap makes both the kind and the cause visible to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func newError(op string, kind error, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

func errorf(op string, kind error, format string, args ...any) error {
	return &Error{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}
