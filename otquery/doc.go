/*
Package otquery has typed, read-only queries over the tables of an ot.Font.

Queries never fail: if a table required to answer a query is missing from a font,
or cannot be interpreted, a zero value is returned and the condition is traced.
Clients which have to distinguish these cases use package ot directly.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otquery

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.foundry'
func tracer() tracing.Trace {
	return tracing.Select("font.foundry")
}
