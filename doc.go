/*
Package foundry is for inspecting, fixing and converting font files.

A Font wraps a decoded font container (see package ot) together with the
place it was loaded from. It hands out table wrappers (see package tables),
knows the format of the font, and offers operations which span several tables:
converting between TrueType and PostScript outlines, between SFNT and web
font containers, scaling units per em, correcting contours or fixing the
italic angle.

	font, err := foundry.NewFont("MyFont-Regular.ttf")
	if err != nil { … }
	defer font.Close()
	if err := font.ToWOFF2(); err != nil { … }
	out, _ := font.FilePath(foundry.PathOptions{Overwrite: true})
	err = font.SaveFile(out, ot.Some(true))

Style flags are spread over tables OS/2 and head. StyleFlags presents them as
a unit:

	flags := font.Flags()
	if err := flags.SetBold(true); err != nil { … }

Errors returned by a Font are of type *Error and may be tested against the
kinds ErrInvalidSource, ErrConversion, ErrExternal, ErrFlags and the errors of
package ot (ErrMissingTable, ErrUnknownFormat, ErrCorruptFont, …) with errors.Is.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package foundry

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.foundry'
func tracer() tracing.Trace {
	return tracing.Select("font.foundry")
}
