package otquery

import (
	"testing"

	"github.com/npillmayer/foundry/internal/fontload"
	"github.com/npillmayer/foundry/ot"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/suite"
	"golang.org/x/image/font/sfnt"
)

// --- Test Suite Preparation ------------------------------------------------

type InfoTestEnviron struct {
	suite.Suite
	otf *ot.Font // synthetic TrueType font
	cff *ot.Font // synthetic CFF font
	gof *ot.Font // Go Regular
}

// listen for 'go test' command --> run test methods
func TestInfoFunctions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.foundry")
	defer teardown()
	suite.Run(t, new(InfoTestEnviron))
}

// run once, before test suite methods
func (env *InfoTestEnviron) SetupSuite() {
	env.T().Log("Setting up test suite")
	tracing.Select("font.foundry").SetTraceLevel(tracing.LevelError)
	env.otf = fontload.Fixture{NBSP: true}.TrueType()
	var err error
	env.cff, err = fontload.Fixture{}.CFF()
	env.Require().NoError(err)
	b, err := fontload.GoFont("goregular")
	env.Require().NoError(err)
	env.gof, err = ot.Parse(b)
	env.Require().NoError(err)
	tracing.Select("font.foundry").SetTraceLevel(tracing.LevelInfo)
}

// run once, after test suite methods
func (env *InfoTestEnviron) TearDownSuite() {
	env.T().Log("Tearing down test suite")
}

// --- Tests -----------------------------------------------------------------

func (env *InfoTestEnviron) TestFontTypeInfo() {
	env.Equal("TrueType", FontType(env.otf), "expected font type of test font to be TrueType")
	env.Equal("CFF", FontType(env.cff))
	env.Equal("TrueType", FontType(env.gof))
	env.False(IsVariable(env.otf))
	env.True(IsVariable(fontload.Fixture{Variable: true}.TrueType()))
}

func (env *InfoTestEnviron) TestGeneralInfo() {
	info := NameInfo(env.gof)
	env.T().Logf("info = %v", info)
	fam, ok := info["family"]
	env.Require().True(ok, "font family identifier not found in font info")
	env.Equal("Go", fam, "expected font family name 'Go'")
	info = NameInfo(env.otf)
	env.Equal("TestSans-Regular", info["postscript"])
	env.NotContains(info, "typo-family")
}

func (env *InfoTestEnviron) TestHeadInfo() {
	h, ok := HeadInfo(env.gof)
	env.Require().True(ok, "expected to decode table 'head'")

	headTable := env.gof.Lookup(ot.T("head")).AsHead()
	env.Require().NotNil(headTable, "expected parsed HeadTable")

	env.Equal(headTable.UnitsPerEm, h.UnitsPerEm, "expected matching UnitsPerEm")
	env.Equal(headTable.IndexToLocFormat, h.IndexToLocFormat, "expected matching IndexToLocFormat")
	env.Equal(sfnt.Units(headTable.XMax), h.BBox.MaxX)
	env.True(h.Created.Year() >= 1904)
}

func (env *InfoTestEnviron) TestMaxPInfo() {
	m, ok := MaxPInfo(env.otf)
	env.Require().True(ok, "expected to decode table 'maxp'")
	env.Equal(uint16(6), m.NumGlyphs, "expected matching numGlyphs")
	env.True(m.HasExtendedProfile)
	m, ok = MaxPInfo(env.cff)
	env.Require().True(ok)
	env.False(m.HasExtendedProfile)
	env.Equal(ot.MaxPVersion05, m.VersionFixed)
}

func (env *InfoTestEnviron) TestLayoutInfo() {
	env.Empty(LayoutTables(env.otf))
}

func (env *InfoTestEnviron) TestReverseLookup() {
	r := CodePointForGlyph(env.otf, 2)
	env.Equal('H', r, "expected code-point to be %#U, is %#U", 'H', r)
	env.Equal(rune(0), CodePointForGlyph(env.otf, 4))
	env.Equal(ot.GlyphIndex(5), GlyphIndex(env.otf, 'I'))
	env.Equal(ot.GlyphIndex(0), GlyphIndex(env.otf, 'Q'))
}

func (env *InfoTestEnviron) TestGlyphMetrics() {
	for _, otf := range []*ot.Font{env.otf, env.cff} {
		m := GlyphMetrics(otf, 2)
		env.Equal(sfnt.Units(600), m.Advance)
		env.Equal(sfnt.Units(50), m.LSB)
		env.Equal(sfnt.Units(50), m.RSB)
		env.Equal(BoundingBox{MinX: 50, MinY: 0, MaxX: 550, MaxY: 700}, m.BBox)
	}
	m := GlyphMetrics(env.otf, 1)
	env.True(m.BBox.Empty())
	env.Equal(sfnt.Units(0), m.RSB)
}

func (env *InfoTestEnviron) TestFontMetrics() {
	m := FontMetrics(env.otf)
	env.Equal(sfnt.Units(1000), m.UnitsPerEm)
	env.Equal(sfnt.Units(800), m.Ascent)
	env.Equal(sfnt.Units(-200), m.Descent)
	env.Equal(sfnt.Units(700), m.CapHeight) // measured from 'H'
	env.Equal(sfnt.Units(0), m.XHeight)
}

func (env *InfoTestEnviron) TestBoundingBoxUnion() {
	h, ok := GlyphBounds(env.otf, 2)
	env.True(ok)
	i, ok := GlyphBounds(env.otf, 5)
	env.True(ok)
	env.Equal(h, h.Union(i)) // I lies within the stems of H
	env.Equal(h, BoundingBox{}.Union(h))
	env.Equal(h, h.Union(BoundingBox{}))
	env.Equal(BoundingBox{MinX: 0, MinY: -10, MaxX: 550, MaxY: 700},
		h.Union(BoundingBox{MinX: 0, MinY: -10, MaxX: 10, MaxY: 0}))
}

func (env *InfoTestEnviron) TestGlyphNames() {
	env.Equal(fontload.GlyphNames, GlyphNames(env.otf))
	env.Equal(fontload.GlyphNames, GlyphNames(env.cff))
	gid, ok := GlyphIndexByName(env.cff, "Hdot")
	env.True(ok)
	env.Equal(ot.GlyphIndex(4), gid)
	// without glyph names, names are derived from the character map
	otf, err := env.otf.Clone()
	env.Require().NoError(err)
	otf.SetTable(ot.T("post"), ot.NewPostTable(nil))
	names := GlyphNames(otf)
	env.Equal([]string{".notdef", "uni0020", "uni0048", "uni00A0", "glyph00004", "uni0049"}, names)
}

func (env *InfoTestEnviron) TestGlyphClass() {
	env.Equal(uint16(0), GlyphClass(env.otf, 2))
}

// --- Plain tests ------------------------------------------------------

func TestCodePointFromGlyphName(t *testing.T) {
	cases := []struct {
		name string
		r    rune
		ok   bool
	}{
		{"uni0041", 'A', true},
		{"u1F600", 0x1F600, true},
		{"u0041", 'A', true},
		{"uni00a0", 0, false},
		{"uniD800", 0, false},
		{"uni0041.alt", 0, false},
		{"uni00410042", 0, false},
		{"u110000", 0, false},
		{"A", 0, false},
	}
	for _, c := range cases {
		r, ok := CodePointFromGlyphName(c.name)
		if ok != c.ok || r != c.r {
			t.Errorf("CodePointFromGlyphName(%q) = %#U, %v; want %#U, %v", c.name, r, ok, c.r, c.ok)
		}
	}
	for _, r := range []rune{'A', 0xA0, 0x1F600} {
		back, ok := CodePointFromGlyphName(UnicodeGlyphName(r))
		if !ok || back != r {
			t.Errorf("round trip of %#U failed", r)
		}
	}
}
