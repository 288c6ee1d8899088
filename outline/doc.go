/*
Package outline works on the glyph outlines of OpenType fonts: it measures
glyphs, converts outlines between TrueType (quadratic) and PostScript (cubic)
curves, corrects contours, scales fonts to a different units-per-em value and
runs external hinting programs.

All operations work on an ot.Font in place. Callers which need the original
state of a font keep a clone.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package outline

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.outline'
func tracer() tracing.Trace {
	return tracing.Select("font.outline")
}
