/*
Package ot provides a mutable in-memory representation of OpenType fonts.

A font is read with Parse, which recognizes plain SFNT files (TrueType and CFF
flavoured) as well as the web font containers WOFF and WOFF2. Every table of the
font is kept: tables this package knows about are decoded into typed, exported
structures (e.g. HeadTable, OS2Table, CMapTable), all other tables are carried
along as raw bytes. Clients may change the decoded fields of a table and write
the font back with Write.

	otf, err := ot.Parse(data)
	head := otf.Table(ot.T("head")).Self().AsHead()
	head.MacStyle |= 0x0001
	err = ot.Write(w, otf, ot.None[bool]())

Tables are not synchronized. A font and its tables must not be shared between
goroutines without external locking.

Package ot does not try to be a font editor in its own right. Algorithms working
on outlines, such as curve conversion or contour correction, live in sister
packages and operate on the decoded tables of this package.

# Status

Variable fonts are read and written, but only table 'fvar' is interpreted.
Font collections are not supported.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>

# Links

OpenType specification:
https://docs.microsoft.com/en-us/typography/opentype/spec/

WOFF and WOFF2:
https://www.w3.org/TR/WOFF/ and https://www.w3.org/TR/WOFF2/
*/
package ot

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.opentype'
func tracer() tracing.Trace {
	return tracing.Select("font.opentype")
}
