package tables

import (
	"testing"

	"github.com/npillmayer/foundry/internal/fontload"
	"github.com/npillmayer/foundry/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.tables")
	defer teardown()
	//
	otf := fontload.Fixture{}.TrueType()
	otf.RemoveTable(ot.T("cmap"))
	_, err := NewCMap(otf)
	assert.ErrorIs(t, err, ot.ErrMissingTable)
	_, err = NewKern(otf) // fixture without kerning
	assert.ErrorIs(t, err, ot.ErrMissingTable)
	_, err = NewGSUB(otf)
	assert.ErrorIs(t, err, ot.ErrMissingTable)
	_, err = NewCFF(otf)
	assert.ErrorIs(t, err, ot.ErrMissingTable)
	_, err = NewBase(nil, ot.T("head"))
	assert.ErrorIs(t, err, ot.ErrMissingTable)
}

func TestBaseBits(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.tables")
	defer teardown()
	//
	otf := fontload.Fixture{}.TrueType()
	b, err := NewBase(otf, ot.T("OS/2"))
	require.NoError(t, err)
	assert.True(t, b.IsModified())
	assert.Equal(t, ot.T("OS/2"), b.Tag())
	require.NoError(t, b.SetBit("FsSelection", 0, true))
	on, err := b.GetBit("FsSelection", 0)
	require.NoError(t, err)
	assert.True(t, on)
	assert.Equal(t, uint16(0x41), otf.Lookup(ot.T("OS/2")).AsOS2().FsSelection)
	err = b.SetBit("FsNoSuchField", 0, true)
	assert.ErrorIs(t, err, ot.ErrFieldNotFound)
}

func TestCMapModified(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.tables")
	defer teardown()
	//
	otf := fontload.Fixture{}.TrueType()
	cmap, err := NewCMap(otf)
	require.NoError(t, err)
	assert.False(t, cmap.IsModified())
	_ = cmap.Codepoints()
	assert.False(t, cmap.IsModified())
	cmap.Remap('H', 2) // no change
	assert.False(t, cmap.IsModified())
	cmap.Remap('J', 5)
	assert.True(t, cmap.IsModified())
}

func TestCMapCodepoints(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.tables")
	defer teardown()
	//
	otf := fontload.Fixture{}.TrueType()
	mac := ot.NewCMapSubtable(1, 0, 6)
	mac.Mapping['Z'] = 2
	sym := ot.NewCMapSubtable(0, 3, 4)
	sym.Mapping[0x2022] = 5
	cm := otf.Lookup(ot.T("cmap")).AsCMap()
	cm.Subtables = append(cm.Subtables, mac, sym)
	cmap, err := NewCMap(otf)
	require.NoError(t, err)
	cps := cmap.Codepoints()
	assert.Len(t, cps, 4)
	assert.Contains(t, cps, rune(0x2022))
	assert.NotContains(t, cps, 'Z')
}

func TestAddMissingNBSP(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.tables")
	defer teardown()
	//
	cmap, err := NewCMap(fontload.Fixture{}.TrueType())
	require.NoError(t, err)
	assert.True(t, cmap.AddMissingNBSP())
	assert.Equal(t, ot.GlyphIndex(1), cmap.BestCMap()[0xA0])
	assert.True(t, cmap.IsModified())
	assert.False(t, cmap.AddMissingNBSP())
	//
	cmap, err = NewCMap(fontload.Fixture{NBSP: true}.TrueType())
	require.NoError(t, err)
	assert.False(t, cmap.AddMissingNBSP())
	assert.Equal(t, ot.GlyphIndex(3), cmap.BestCMap()[0xA0])
	assert.False(t, cmap.IsModified())
}

func TestRebuildFromGlyphNames(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.tables")
	defer teardown()
	//
	cmap, err := NewCMap(fontload.Fixture{}.TrueType())
	require.NoError(t, err)
	remapped := cmap.RebuildFromGlyphNames(false)
	assert.Equal(t, []Remapped{{Codepoint: 0xA0, GlyphName: "uni00A0"}}, remapped)
	assert.Equal(t, ot.GlyphIndex(3), cmap.BestCMap()[0xA0])
	assert.Nil(t, cmap.RebuildFromGlyphNames(false))
}

func TestKernRemoveUnmapped(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.tables")
	defer teardown()
	//
	otf := fontload.Fixture{Kern: true}.TrueType()
	kern, err := NewKern(otf)
	require.NoError(t, err)
	assert.Equal(t, 2, kern.RemoveUnmappedGlyphs())
	pairs := kern.KernTable().Subtables[0].Pairs
	assert.Len(t, pairs, 1)
	assert.Equal(t, int16(-20), pairs[ot.KernPair{Left: 2, Right: 5}])
	//
	otf = fontload.Fixture{Kern: true, NBSP: true}.TrueType()
	kern, err = NewKern(otf)
	require.NoError(t, err)
	// cmap is read at call time
	cmap, err := NewCMap(otf)
	require.NoError(t, err)
	cmap.Remap(0x1E22, 4)
	assert.Equal(t, 0, kern.RemoveUnmappedGlyphs())
}

func TestFixNBSPWidth(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.tables")
	defer teardown()
	//
	otf := fontload.Fixture{NBSP: true}.TrueType()
	hmtx, err := NewHMtx(otf)
	require.NoError(t, err)
	fixed, err := hmtx.FixNonBreakingSpaceWidth()
	require.NoError(t, err)
	assert.True(t, fixed)
	m, _ := hmtx.HMtxTable().Metric(3)
	assert.Equal(t, uint16(250), m.AdvanceWidth)
	fixed, err = hmtx.FixNonBreakingSpaceWidth()
	require.NoError(t, err)
	assert.False(t, fixed)
	//
	hmtx, err = NewHMtx(fontload.Fixture{}.TrueType())
	require.NoError(t, err)
	_, err = hmtx.FixNonBreakingSpaceWidth()
	assert.ErrorIs(t, err, ot.ErrMissingGlyph)
}

func TestHead(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.tables")
	defer teardown()
	//
	head, err := NewHead(fontload.Fixture{Bold: true}.TrueType())
	require.NoError(t, err)
	assert.True(t, head.IsBold())
	assert.False(t, head.IsItalic())
	require.NoError(t, head.SetItalic(true))
	assert.Equal(t, uint16(3), head.HeadTable().MacStyle)
	require.NoError(t, head.SetBold(false))
	assert.Equal(t, uint16(2), head.HeadTable().MacStyle)
	assert.Equal(t, uint16(1000), head.UnitsPerEm())
	head.SetFontRevision(1.5)
	assert.Equal(t, 1.5, head.FontRevision())
}

func TestOS2(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.tables")
	defer teardown()
	//
	os2, err := NewOS2(fontload.Fixture{}.TrueType())
	require.NoError(t, err)
	assert.True(t, os2.IsRegular())
	assert.False(t, os2.IsBold())
	require.NoError(t, os2.SetUseTypoMetrics(true))
	assert.True(t, os2.UseTypoMetrics())
	assert.Error(t, os2.SetWeightClass(0))
	require.NoError(t, os2.SetWeightClass(300))
	assert.Equal(t, uint16(300), os2.WeightClass())
	require.NoError(t, os2.SetVendorID("AB"))
	assert.Equal(t, [4]byte{'A', 'B', ' ', ' '}, os2.OS2Table().AchVendID)
	assert.Equal(t, "AB", os2.VendorID())
	assert.Error(t, os2.SetVendorID("TOOLONG"))
	require.NoError(t, os2.SetEmbedLevel(EmbedPreview))
	require.NoError(t, os2.SetNoSubsetting(true))
	assert.Equal(t, uint16(0x0104), os2.OS2Table().FsType)
	assert.Error(t, os2.SetEmbedLevel(3))
	avg, err := os2.RecalcAvgCharWidth()
	require.NoError(t, err)
	assert.Equal(t, int16(400), avg)
}

func TestOS2UpgradeVersion(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.tables")
	defer teardown()
	//
	os2, err := NewOS2(fontload.Fixture{}.TrueType())
	require.NoError(t, err)
	os2.OS2Table().Version = 1
	assert.Error(t, os2.SetOblique(true))
	require.NoError(t, os2.UpgradeVersion(4))
	assert.Equal(t, uint16(4), os2.Version())
	assert.Equal(t, int16(700), os2.OS2Table().SCapHeight)
	assert.Equal(t, uint16(0x20), os2.OS2Table().UsBreakChar)
	assert.Error(t, os2.UpgradeVersion(3))
	require.NoError(t, os2.UpgradeVersion(5))
	assert.Equal(t, uint16(0xFFFF), os2.OS2Table().UsUpperOpticalPointSize)
}

func TestOS2Removed(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.tables")
	defer teardown()
	//
	otf := fontload.Fixture{}.TrueType()
	os2, err := NewOS2(otf)
	require.NoError(t, err)
	otf.RemoveTable(ot.T("OS/2"))
	assert.Nil(t, os2.OS2Table())
	for _, set := range []func(bool) error{os2.SetUseTypoMetrics, os2.SetWWS, os2.SetOblique, os2.SetItalic} {
		assert.ErrorIs(t, set(true), ot.ErrMissingTable)
		assert.ErrorIs(t, set(false), ot.ErrMissingTable)
	}
	assert.ErrorIs(t, os2.UpgradeVersion(5), ot.ErrMissingTable)
	assert.ErrorIs(t, os2.SetWeightClass(400), ot.ErrMissingTable)
	assert.ErrorIs(t, os2.SetWidthClass(5), ot.ErrMissingTable)
	assert.ErrorIs(t, os2.SetEmbedLevel(EmbedPreview), ot.ErrMissingTable)
	assert.ErrorIs(t, os2.SetVendorID("AB"), ot.ErrMissingTable)
	_, err = os2.RecalcAvgCharWidth()
	assert.ErrorIs(t, err, ot.ErrMissingTable)
	assert.Zero(t, os2.Version())
	assert.Zero(t, os2.WeightClass())
	assert.Empty(t, os2.VendorID())
	assert.False(t, os2.IsBold())
}

func TestPostAndHHea(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.tables")
	defer teardown()
	//
	otf := fontload.Fixture{}.TrueType()
	post, err := NewPost(otf)
	require.NoError(t, err)
	post.SetItalicAngle(-12.5)
	assert.Equal(t, -12.5, post.ItalicAngle())
	post.SetFixedPitch(true)
	assert.True(t, post.IsFixedPitch())
	hhea, err := NewHHea(otf)
	require.NoError(t, err)
	assert.Equal(t, int16(1), hhea.CalcCaretSlopeRise(0))
	assert.Equal(t, int16(0), hhea.CalcCaretSlopeRun(0))
	assert.Equal(t, int16(1000), hhea.CalcCaretSlopeRise(-12))
	assert.Equal(t, int16(213), hhea.CalcCaretSlopeRun(-12))
	hhea.FixCaretSlope(-12)
	assert.InDelta(t, -12.0, hhea.RunRiseAngle(), 0.1)
}

func TestName(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.tables")
	defer teardown()
	//
	name, err := NewName(fontload.Fixture{}.TrueType())
	require.NoError(t, err)
	assert.Equal(t, "Test Sans", name.Get(ot.NameFamily))
	require.NoError(t, name.Set(ot.NameFamily, "Other Sans", PlatformAny))
	assert.Equal(t, "Other Sans", name.Get(ot.NameFamily))
	assert.Equal(t, 1, name.Remove(PlatformMac, ot.NameFamily))
	assert.Equal(t, 3, name.FindReplace("Sans", "", PlatformAny))
	assert.Equal(t, "Other", name.Get(ot.NameFamily))
	assert.Equal(t, "Test-Regular", name.Get(ot.NamePostScript))
	assert.Equal(t, 1, name.FindReplace("Regular", "", PlatformWindows, ot.NameSubfamily))
	assert.Nil(t, name.NameTable().Find(ot.NameSubfamily, ot.PlatformWindows, ot.EncodingWindowsBMP, ot.WindowsEnglishUS))
}

func TestCleanString(t *testing.T) {
	assert.Equal(t, "Foo Bar", CleanString("  Foo   Bar "))
	assert.Equal(t, "", CleanString("   "))
}
