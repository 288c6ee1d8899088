/*
Package tables has convenience wrappers around the decoded tables of an OpenType
font, as provided by package ot.

A wrapper is bound to a font container and to one table tag. It does not copy the
table: all changes are made to the live table of the container, and become part
of the font file the next time the container is written. Wrappers add
operations which span more than a single field, such as fixing the width of the
non-breaking space glyph, or removing kern pairs of glyphs not reachable through
the character map.

	cmap, err := tables.NewCMap(otf)
	if err != nil { … }
	if cmap.AddMissingNBSP() {
		…
	}

Every wrapper reports through IsModified whether its table differs from the
state at construction time. Wrappers which cannot tell report true.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package tables

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.tables'
func tracer() tracing.Trace {
	return tracing.Select("font.tables")
}
