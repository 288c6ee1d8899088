package ot

import (
	"github.com/npillmayer/foundry/cff"
)

// CFFTable is the table 'CFF ' of fonts with PostScript outlines. The table is
// kept as bytes and decoded with package cff on first use. After changes to the
// decoded font, clients call MarkChanged; otherwise the table is written back
// as it has been read.
type CFFTable struct {
	tableBase
	font    *cff.Font
	changed bool
}

func newCFFTable(tag Tag, b binarySegm, offset, size uint32) *CFFTable {
	t := &CFFTable{}
	base := tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.tableBase = base
	t.self = t
	return t
}

// NewCFFTable creates a table 'CFF ' for a decoded CFF font.
func NewCFFTable(f *cff.Font) *CFFTable {
	t := newCFFTable(T("CFF "), nil, 0, 0)
	t.font, t.changed = f, true
	return t
}

func parseCFF(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if len(b) < 4 || b[0] != 1 {
		ec.addError(tag, "Header", "CFF header missing or not version 1", SeverityMajor, offset)
		return nil, errFontFormat("CFF header")
	}
	return newCFFTable(tag, b, offset, size), nil
}

// CFF returns the decoded CFF font.
func (t *CFFTable) CFF() (*cff.Font, error) {
	if t.font == nil {
		f, err := cff.Parse(t.data)
		if err != nil {
			return nil, err
		}
		t.font = f
	}
	return t.font, nil
}

// MarkChanged tells the table to re-encode the decoded font on Encode.
func (t *CFFTable) MarkChanged() {
	t.changed = true
}

// Encode serializes table 'CFF '.
func (t *CFFTable) Encode() ([]byte, error) {
	if !t.changed || t.font == nil {
		return t.data, nil
	}
	return t.font.Encode()
}
