package ot

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFontErrorFormat(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	e := FontError{Table: T("cmap"), Section: "Header", Issue: "cmap header incomplete",
		Severity: SeverityCritical, Offset: 1234}
	assert.Equal(t, "[CRITICAL] cmap/Header at offset 1234: cmap header incomplete", e.Error())
	e = FontError{Table: T(""), Section: "TableRecords", Issue: "table record entries", Severity: SeverityMajor}
	assert.Equal(t, "[MAJOR] font/TableRecords: table record entries", e.Error())
	w := FontWarning{Table: T("kern"), Issue: "size mismatch", Offset: 8}
	assert.Equal(t, "[WARNING] kern at offset 8: size mismatch", w.String())
	assert.Equal(t, "UNKNOWN", ErrorSeverity(99).String())
}

func TestCriticalIssuesAreCorruptFonts(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	var err error = FontError{Table: T("head"), Severity: SeverityCritical}
	assert.True(t, errors.Is(err, ErrCorruptFont))
	err = FontError{Table: T("head"), Severity: SeverityMinor}
	assert.False(t, errors.Is(err, ErrCorruptFont))
}

// serializeRaw writes a font whose tables are given as raw bytes, bypassing
// the table encoders.
func serializeRaw(t *testing.T, tables map[string][]byte, decoded ...Table) []byte {
	t.Helper()
	otf := New(TypeTrueType)
	otf.SetTable(T("head"), NewHeadTable(1000))
	for tag, data := range tables {
		otf.SetTable(T(tag), NewRawTable(T(tag), data))
	}
	for _, tbl := range decoded {
		otf.SetTable(tbl.Self().NameTag(), tbl)
	}
	data, err := Serialize(otf, Some(true))
	require.NoError(t, err)
	return data
}

func TestParseCollectsIssues(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	data := serializeRaw(t, map[string][]byte{
		"maxp": {0, 1, 0, 0, 0, 3}, // version 1.0, but only 6 bytes
		"hmtx": {0, 100, 0, 0},     // no hhea
	})
	otf, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, otf.Warnings(), 1)
	assert.Equal(t, T("maxp"), otf.Warnings()[0].Table)
	assert.Equal(t, MaxPVersion05, otf.Lookup(T("maxp")).AsMaxP().Version)
	require.Len(t, otf.Errors(), 1)
	e := otf.Errors()[0]
	assert.Equal(t, T("hmtx"), e.Table)
	assert.Equal(t, "Dependencies", e.Section)
	assert.Equal(t, SeverityMajor, e.Severity)
	assert.False(t, otf.HasCriticalErrors())
	assert.Empty(t, New(TypeTrueType).Errors())
}

func TestParseFailsOnCriticalIssues(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	hhea := NewHHeaTable()
	hhea.NumberOfHMetrics = 3
	data := serializeRaw(t, map[string][]byte{
		"maxp": {0, 0, 0x50, 0, 0, 3}, // version 0.5, 3 glyphs
		"hmtx": {0, 100, 0, 0},        // needs 12 bytes
	}, hhea)
	_, err := Parse(data)
	assert.ErrorIs(t, err, ErrCorruptFont)
	//
	_, err = Parse(data[:40]) // table records cut off
	assert.ErrorIs(t, err, ErrCorruptFont)
}
