package tables

import (
	"testing"

	"github.com/npillmayer/foundry/cff"
	"github.com/npillmayer/foundry/internal/fontload"
	"github.com/npillmayer/foundry/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"seehuhn.de/go/postscript/funit"
)

func TestGlyfDecomponentize(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.tables")
	defer teardown()
	//
	glyf, err := NewGlyf(fontload.Fixture{}.TrueType())
	require.NoError(t, err)
	assert.Equal(t, 6, glyf.GlyphCount())
	changed, err := glyf.Decomponentize()
	require.NoError(t, err)
	assert.Equal(t, []ot.GlyphIndex{4}, changed)
	g, err := glyf.GlyfTable().Glyph(4)
	require.NoError(t, err)
	assert.False(t, g.IsComposite())
	assert.Len(t, g.Contours(), 2)
	h, _ := glyf.GlyfTable().Glyph(2)
	assert.Equal(t, h.Points, g.Points)
	changed, err = glyf.Decomponentize()
	require.NoError(t, err)
	assert.Empty(t, changed)
}

func TestGlyfRemoveInstructions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.tables")
	defer teardown()
	//
	glyf, err := NewGlyf(fontload.Fixture{}.TrueType())
	require.NoError(t, err)
	g, _ := glyf.GlyfTable().Glyph(2)
	g.Instructions = []byte{0xB0, 0x01} // PUSHB[0] 1
	glyf.GlyfTable().SetGlyph(2, g)
	n, err := glyf.RemoveInstructions()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	g, _ = glyf.GlyfTable().Glyph(2)
	assert.Empty(t, g.Instructions)
}

func TestCFFNames(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.tables")
	defer teardown()
	//
	otf, err := fontload.Fixture{}.CFF()
	require.NoError(t, err)
	c, err := NewCFF(otf)
	require.NoError(t, err)
	assert.Equal(t, "Test Sans", c.TopDict().FamilyName)
	c.FindReplace("Test Sans", "Foo")
	assert.Equal(t, "Foo Regular", c.TopDict().FullName)
	assert.Equal(t, "Foo is a test font", c.TopDict().Notice)
	assert.Equal(t, "TestSans-Regular", c.TopDict().FontName)
	c.FindReplace("Regular", "")
	assert.Equal(t, "Foo", c.TopDict().FullName)
	assert.Equal(t, "TestSans-", c.TopDict().FontName)
	c.SetNames(CFFNames{FontName: "Foo-Bold", Weight: "Bold"})
	assert.Equal(t, "Foo-Bold", c.TopDict().FontName)
	assert.Equal(t, "Bold", c.TopDict().Weight)
	assert.Equal(t, "Foo", c.TopDict().FamilyName)
	c.DeleteNames(CFFNames{Notice: "x"})
	assert.Empty(t, c.TopDict().Notice)
	c.SetItalicAngle(-10)
	assert.Equal(t, -10.0, c.ItalicAngle())
}

func TestCFFRemoveHinting(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.tables")
	defer teardown()
	//
	otf, err := fontload.Fixture{}.CFF()
	require.NoError(t, err)
	c, err := NewCFF(otf)
	require.NoError(t, err)
	assert.True(t, c.HasStemHints())
	assert.Equal(t, 2, c.RemoveHinting(false)) // H and Hdot
	assert.False(t, c.HasStemHints())
	assert.True(t, c.HasHintingData())
	assert.Equal(t, []funit.Int16{-10, 0, 700, 710}, c.PrivateDict().BlueValues)
	assert.Zero(t, c.RemoveHinting(true))
	assert.False(t, c.HasHintingData())
	data, err := c.CFFTable().Encode()
	require.NoError(t, err)
	back, err := cff.Parse(data)
	require.NoError(t, err)
	assert.Empty(t, back.Private[0].BlueValues)
	assert.Len(t, back.Glyphs[2].Cmds, 8)
}

func TestCFFRenameGlyphs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.tables")
	defer teardown()
	//
	otf, err := fontload.Fixture{}.CFF()
	require.NoError(t, err)
	c, err := NewCFF(otf)
	require.NoError(t, err)
	n, err := c.RenameGlyphs(map[string]string{"uni00A0": "nbspace", "missing": "x"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "nbspace", c.CFFFont().GlyphNames()[3])
	_, err = c.RenameGlyphs(map[string]string{"I": "H"})
	assert.ErrorIs(t, err, cff.ErrInvalidCFF)
	assert.Equal(t, "I", c.CFFFont().GlyphNames()[5])
}

func TestFvar(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.tables")
	defer teardown()
	//
	otf := fontload.Fixture{Variable: true}.TrueType()
	fvar, err := NewFvar(otf)
	require.NoError(t, err)
	fvar.FvarTable().Axes = append(fvar.FvarTable().Axes, ot.FvarAxis{
		Tag: ot.T("opsz"), Minimum: 8, Default: 12, Maximum: 72, Flags: ot.AxisHidden,
	})
	assert.Equal(t, []string{"wght"}, fvar.AxisTags(false))
	assert.Equal(t, []string{"wght", "opsz"}, fvar.AxisTags(true))
	lo, hi, err := fvar.AxisLimits("opsz")
	require.NoError(t, err)
	assert.Equal(t, [2]float64{8, 72}, [2]float64{lo, hi})
	_, _, err = fvar.AxisLimits("wdth")
	assert.Error(t, err)
	_, _, err = fvar.AxisLimits("toolong")
	assert.Error(t, err)
	assert.Empty(t, fvar.Instances())
}

func TestMaxPAndTags(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.tables")
	defer teardown()
	//
	maxp, err := NewMaxP(fontload.Fixture{}.TrueType())
	require.NoError(t, err)
	assert.Equal(t, 6, maxp.NumGlyphs())
	_, err = parseTag("ss1")
	assert.Error(t, err)
	tag, err := parseTag("ss01")
	require.NoError(t, err)
	assert.Equal(t, ot.T("ss01"), tag)
}
