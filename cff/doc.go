/*
Package cff handles the Compact Font Format (CFF, version 1), the outline
format of OpenType fonts with PostScript outlines (table 'CFF ').

Decoding and encoding is done by package seehuhn.de/go/sfnt/cff; this package
adds what font tools need on top: outlines drawn to a Pather, glyph bounds,
a Pen to draw new glyphs, scaling and the removal of hints.

	f, err := cff.Parse(data)
	_, err = f.Outline(gid, pather)
	data, err = f.Encode()

Charstrings are decoded with subroutines expanded, and fonts are written
without subroutines. CFF2 is not supported.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>

# Links

The Compact Font Format Specification (Adobe Technical Note #5176),
The Type 2 Charstring Format (Adobe Technical Note #5177).
*/
package cff

import (
	"errors"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.cff'
func tracer() tracing.Trace {
	return tracing.Select("font.cff")
}

// ErrInvalidCFF is returned for CFF data which cannot be decoded.
var ErrInvalidCFF = errors.New("invalid CFF data")

// ErrUnsupported is returned for CFF features this package does not handle,
// e.g. CFF2 or font sets with more than one font.
var ErrUnsupported = errors.New("unsupported CFF feature")
