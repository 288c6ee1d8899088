package ot

import (
	"bytes"
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func TestTags(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	tag := Tag(0x636d6170)
	if tag.String() != "cmap" {
		t.Errorf("expected tag 0x636d6170 to be 'cmap', is %s", tag.String())
	}
	tag = MakeTag([]byte("cmap"))
	if tag.String() != "cmap" {
		t.Errorf("expected tag MakeTag(cmap) to be 'cmap', is %s", tag.String())
	}
	tag = T("cmap")
	if tag.String() != "cmap" {
		t.Errorf("expected tag T(cmap) to be 'cmap', is %s", tag.String())
	}
	if T("CFF").String() != "CFF " {
		t.Errorf("expected short tag to be padded with spaces, is %q", T("CFF").String())
	}
}

func TestTableName(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	tb := tableBase{}
	tb.name = 0x636d6170
	s := tb.Self().NameTag().String()
	if s != "cmap" {
		t.Errorf("expected table name to be cmap, is %v", s)
	}
}

func TestTableManagement(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	otf := New(TypeTrueType)
	assert.False(t, otf.HasTable(T("head")))
	assert.Nil(t, otf.Lookup(T("head")).AsHead())
	otf.SetTable(T("head"), NewHeadTable(1000))
	otf.SetTable(T("test"), NewRawTable(T("test"), []byte{1, 2, 3}))
	assert.Equal(t, []Tag{T("head"), T("test")}, otf.TableTags())
	assert.NotNil(t, otf.Lookup(T("head")).AsHead())
	assert.Nil(t, otf.Lookup(T("head")).AsOS2())
	otf.RemoveTable(T("head"))
	otf.RemoveTable(T("head"))
	assert.Equal(t, []Tag{T("test")}, otf.TableTags())
	assert.True(t, otf.IsTrueType())
	assert.False(t, otf.IsCFF())
}

func TestParseUnknownFormat(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	_, err := Parse([]byte("this is no font at all"))
	assert.True(t, errors.Is(err, ErrUnknownFormat))
	_, err = Parse([]byte{0, 1})
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestParseGoFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	otf, err := Parse(goregular.TTF)
	require.NoError(t, err)
	assert.Equal(t, FlavorSFNT, otf.Flavor)
	assert.True(t, otf.IsTrueType())
	assert.Empty(t, otf.CriticalErrors())
	for _, name := range RequiredTables {
		assert.True(t, otf.HasTable(T(name)), "table %s", name)
	}
	head := otf.Lookup(T("head")).AsHead()
	require.NotNil(t, head)
	assert.Equal(t, uint16(2048), head.UnitsPerEm)
	glyf := otf.Lookup(T("glyf")).AsGlyf()
	require.NotNil(t, glyf)
	assert.Equal(t, otf.NumGlyphs(), glyf.NumGlyphs())
	assert.Equal(t, otf.NumGlyphs(), otf.Lookup(T("hmtx")).AsHMtx().GlyphCount())
	cmap := otf.Lookup(T("cmap")).AsCMap()
	require.NotNil(t, cmap)
	gid := cmap.Lookup('H')
	assert.NotZero(t, gid)
	contours, err := glyf.Contours(gid)
	require.NoError(t, err)
	assert.NotEmpty(t, contours)
}

func TestGoFontRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	otf, err := Parse(goregular.TTF)
	require.NoError(t, err)
	data, err := Serialize(otf, Some(false))
	require.NoError(t, err)
	assert.Equal(t, uint32(0xB1B0AFBA), checksum(data))
	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, otf.TableTags(), back.TableTags())
	for _, tag := range otf.TableTags() {
		if _, ok := otf.Table(tag).(*genericTable); ok {
			assert.Equal(t, otf.Table(tag).Binary(), back.Table(tag).Binary(), "table %s", tag)
		}
	}
	assert.Equal(t, otf.Table(T("glyf")).Binary(), back.Table(T("glyf")).Binary())
}

func TestTableOrder(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	otf := buildTestFont(t)
	otf.SetTable(T("zzzz"), NewRawTable(T("zzzz"), []byte{1}))
	otf.SetTable(T("aaaa"), NewRawTable(T("aaaa"), []byte{2}))
	//
	original := otf.TableTags()
	dataOrder := func(reorder Option[bool]) []Tag {
		data, err := Serialize(otf, reorder)
		require.NoError(t, err)
		back, err := Parse(data)
		require.NoError(t, err)
		// the directory is always sorted
		n := int(u16(data[4:]))
		for i := 1; i < n; i++ {
			assert.Less(t, u32(data[12+16*(i-1):]), u32(data[12+16*i:]))
		}
		return back.TableTags()
	}
	assert.Equal(t, original, dataOrder(Some(false)))
	sorted := dataOrder(Some(true))
	assert.Equal(t, T("OS/2"), sorted[0])
	assert.Equal(t, T("zzzz"), sorted[len(sorted)-1])
	recommended := dataOrder(None[bool]())
	assert.Equal(t, []Tag{T("head"), T("hhea"), T("maxp"), T("OS/2"), T("hmtx"), T("cmap")}, recommended[:6])
	assert.Equal(t, T("aaaa"), recommended[len(recommended)-2])
}

func TestSyntheticRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	otf := buildTestFont(t)
	data, err := Serialize(otf, None[bool]())
	require.NoError(t, err)
	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, 5, back.NumGlyphs())
	assert.Equal(t, GlyphIndex(2), back.Lookup(T("cmap")).AsCMap().Lookup('H'))
	adv, lsb, ok := back.Lookup(T("hmtx")).AsHMtx().HMetrics(2)
	assert.True(t, ok)
	assert.Equal(t, uint16(600), adv)
	assert.Equal(t, int16(50), lsb)
	assert.Equal(t, "uni00A0", back.Lookup(T("post")).AsPost().GlyphName(3))
	assert.Equal(t, "Test Sans", back.Lookup(T("name")).AsName().Name(NameFamily))
	glyf := back.Lookup(T("glyf")).AsGlyf()
	assert.True(t, glyf.IsComposite(4))
	contours, err := glyf.Contours(4)
	require.NoError(t, err)
	require.Len(t, contours, 2)
	assert.Equal(t, GlyphPoint{X: 50 + 10, Y: 0, OnCurve: true}, contours[0][0])
	head := back.Lookup(T("head")).AsHead()
	assert.Equal(t, int16(0), head.IndexToLocFormat)
	assert.Equal(t, head.CheckSumAdjustment, otf.Lookup(T("head")).AsHead().CheckSumAdjustment)
}

func TestRecalcBBoxes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	otf := buildTestFont(t)
	glyf := otf.Lookup(T("glyf")).AsGlyf()
	g, err := glyf.Glyph(2)
	require.NoError(t, err)
	g.Points[2].Y = 900 // top right corner of first contour
	g.XMin, g.YMin, g.XMax, g.YMax = 0, 0, 0, 0
	glyf.SetGlyph(2, g)
	otf.RecalcBBoxes = true
	data, err := Serialize(otf, None[bool]())
	require.NoError(t, err)
	back, err := Parse(data)
	require.NoError(t, err)
	head := back.Lookup(T("head")).AsHead()
	assert.Equal(t, int16(900), head.YMax)
	assert.Equal(t, int16(50), head.XMin)
	g, err = back.Lookup(T("glyf")).AsGlyf().Glyph(2)
	require.NoError(t, err)
	assert.Equal(t, int16(900), g.YMax)
	maxp := back.Lookup(T("maxp")).AsMaxP()
	assert.Equal(t, uint16(8), maxp.MaxPoints)
	assert.Equal(t, uint16(2), maxp.MaxContours)
	assert.Equal(t, uint16(1), maxp.MaxComponentDepth)
	assert.Equal(t, uint16(1), maxp.MaxComponentElements)
}

func TestWOFFRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	for _, flavor := range []Flavor{FlavorWOFF, FlavorWOFF2} {
		otf, err := Parse(goregular.TTF)
		require.NoError(t, err)
		otf.Flavor = flavor
		data, err := Serialize(otf, Some(false))
		require.NoError(t, err, flavor.String())
		back, err := Parse(data)
		require.NoError(t, err, flavor.String())
		assert.Equal(t, flavor, back.Flavor)
		assert.True(t, back.IsTrueType())
		assert.Equal(t, otf.NumGlyphs(), back.NumGlyphs())
		for _, tag := range otf.TableTags() {
			require.True(t, back.HasTable(tag), "%s: table %s", flavor, tag)
			a, err := otf.Table(tag).Encode()
			require.NoError(t, err)
			b, err := back.Table(tag).Encode()
			require.NoError(t, err)
			if tag != T("head") {
				assert.True(t, bytes.Equal(a, b), "%s: table %s differs", flavor, tag)
			}
		}
	}
}

func TestClone(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	otf := buildTestFont(t)
	otf.Flavor = FlavorWOFF2
	c, err := otf.Clone()
	require.NoError(t, err)
	assert.Equal(t, FlavorWOFF2, c.Flavor)
	assert.Equal(t, FlavorWOFF2, otf.Flavor)
	c.Lookup(T("head")).AsHead().UnitsPerEm = 2000
	assert.Equal(t, uint16(1000), otf.Lookup(T("head")).AsHead().UnitsPerEm)
}

// ---------------------------------------------------------------------------

// buildTestFont creates a small TrueType font with glyphs .notdef, space, H,
// uni00A0 and a composite glyph Hdot built from H.
func buildTestFont(t *testing.T) *Font {
	t.Helper()
	otf := New(TypeTrueType)
	otf.SetTable(T("head"), NewHeadTable(1000))
	otf.SetTable(T("hhea"), NewHHeaTable())
	otf.SetTable(T("maxp"), NewMaxPTable(MaxPVersion10, 5))
	otf.SetTable(T("OS/2"), NewOS2Table())
	otf.SetTable(T("hmtx"), NewHMtxTable([]HMetricRecord{
		{AdvanceWidth: 500, LeftSideBearing: 50},
		{AdvanceWidth: 250},
		{AdvanceWidth: 600, LeftSideBearing: 50},
		{AdvanceWidth: 200},
		{AdvanceWidth: 600, LeftSideBearing: 60},
	}))
	cmap := NewCMapTable()
	st := NewCMapSubtable(3, 1, 4)
	st.Mapping[' '] = 1
	st.Mapping['H'] = 2
	st.Mapping[0xA0] = 3
	cmap.Subtables = append(cmap.Subtables, st)
	otf.SetTable(T("cmap"), cmap)
	otf.SetTable(T("loca"), NewLocaTable())
	notdef := &Glyph{}
	notdef.SetContours([][]GlyphPoint{rect(50, 0, 450, 700)})
	h := &Glyph{}
	h.SetContours([][]GlyphPoint{rect(50, 0, 150, 700), rect(450, 0, 550, 700)})
	hdot := &Glyph{Components: []GlyphComponent{{Glyph: 2, Flags: ArgsAreXYValues, Arg1: 10}}}
	hdot.XMin, hdot.XMax, hdot.YMax = 60, 560, 700
	otf.SetTable(T("glyf"), NewGlyfTable([]*Glyph{notdef, {}, h, {}, hdot}))
	name := NewNameTable()
	require.NoError(t, name.SetName("Test Sans", NameFamily, PlatformWindows, EncodingWindowsBMP, WindowsEnglishUS))
	otf.SetTable(T("name"), name)
	otf.SetTable(T("post"), NewPostTable([]string{".notdef", "space", "H", "uni00A0", "Hdot"}))
	return otf
}

func rect(x0, y0, x1, y1 int16) []GlyphPoint {
	return []GlyphPoint{
		{X: x0, Y: y0, OnCurve: true},
		{X: x0, Y: y1, OnCurve: true},
		{X: x1, Y: y1, OnCurve: true},
		{X: x1, Y: y0, OnCurve: true},
	}
}
