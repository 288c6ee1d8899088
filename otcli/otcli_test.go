package main

import (
	"testing"

	"github.com/npillmayer/foundry"
	"github.com/npillmayer/foundry/internal/fontload"
	"github.com/npillmayer/foundry/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.foundry")
	defer teardown()
	//
	cmd, err := parseCommand("table:OS/2  get:UsWeightClass set:UsWeightClass:600")
	require.NoError(t, err)
	require.Len(t, cmd.op, 3)
	assert.Equal(t, Op{code: TABLE, arg: "OS/2"}, cmd.op[0])
	assert.Equal(t, Op{code: GET, arg: "UsWeightClass"}, cmd.op[1])
	assert.Equal(t, Op{code: SET, arg: "UsWeightClass", val: "600"}, cmd.op[2])
	_, err = parseCommand("tables frobnicate")
	assert.ErrorIs(t, err, errUnknownCommand)
}

func TestExecute(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.foundry")
	defer teardown()
	//
	intp := &Intp{}
	assert.Error(t, intp.loadFont("nonexistent.ttf", foundry.TempDir(t.TempDir())))
	f, err := foundry.NewFont(fontload.Fixture{}.TrueType(), foundry.TempDir(t.TempDir()))
	require.NoError(t, err)
	defer f.Close()
	intp.font = f
	//
	cmd, err := parseCommand("get:UsWeightClass")
	require.NoError(t, err)
	_, err = intp.execute(cmd)
	assert.ErrorIs(t, err, errNoTable)
	//
	cmd, err = parseCommand("table:OS/2 set:UsWeightClass:0x258 style:bold:on")
	require.NoError(t, err)
	quit, err := intp.execute(cmd)
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Equal(t, ot.T("OS/2"), intp.table)
	v, err := ot.FieldValue(f.Container().Table(intp.table), "UsWeightClass")
	require.NoError(t, err)
	assert.Equal(t, uint64(600), v)
	bold, err := f.Flags().IsBold()
	require.NoError(t, err)
	assert.True(t, bold)
	//
	cmd, _ = parseCommand("table:GSUB")
	_, err = intp.execute(cmd)
	assert.Error(t, err)
	cmd, _ = parseCommand("glyph:H cmap:U+0048 cmap:nbsp italic quit tables")
	quit, err = intp.execute(cmd)
	assert.Error(t, err) // 'nbsp' is not a single character
	assert.False(t, quit)
	cmd, _ = parseCommand("glyph:H cmap:U+0048 italic quit tables")
	quit, err = intp.execute(cmd)
	require.NoError(t, err)
	assert.True(t, quit)
}

func TestParseCodepoint(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.foundry")
	defer teardown()
	//
	r, err := parseCodepoint("u+00a0")
	require.NoError(t, err)
	assert.Equal(t, ' ', r)
	r, err = parseCodepoint("Ä")
	require.NoError(t, err)
	assert.Equal(t, 'Ä', r)
	_, err = parseCodepoint("U+XYZ")
	assert.Error(t, err)
}
