package outline

import (
	"math"
	"testing"

	"github.com/npillmayer/foundry/cff"
	"github.com/npillmayer/foundry/internal/fontload"
	"github.com/npillmayer/foundry/ot"
	"github.com/npillmayer/foundry/otquery"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/postscript/funit"
)

func TestFromGlyphPointsImplied(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.outline")
	defer teardown()
	//
	// two consecutive off-curve points imply an on-curve point between them
	pts := []ot.GlyphPoint{
		{X: 0, Y: 0, OnCurve: true},
		{X: 0, Y: 100},
		{X: 100, Y: 100},
		{X: 100, Y: 0, OnCurve: true},
	}
	c := FromGlyphPoints(pts)
	require.Len(t, c.Segs, 3)
	assert.Equal(t, Point{0, 0}, c.Start)
	assert.Equal(t, QuadTo, c.Segs[0].Op)
	assert.Equal(t, Point{50, 100}, c.Segs[0].To)
	assert.Equal(t, QuadTo, c.Segs[1].Op)
	assert.Equal(t, Point{100, 0}, c.Segs[1].To)
	assert.Equal(t, LineTo, c.Segs[2].Op)
	assert.Equal(t, c.Start, c.Segs[2].To)
	// converting back omits the implied point
	assert.Equal(t, pts, c.GlyphPoints(1))
}

func TestFromGlyphPointsOffCurveOnly(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.outline")
	defer teardown()
	//
	c := FromGlyphPoints([]ot.GlyphPoint{{X: 0, Y: 100}, {X: 100, Y: 0}, {X: 0, Y: -100}, {X: -100, Y: 0}})
	assert.Equal(t, Point{-50, 50}, c.Start)
	require.Len(t, c.Segs, 4)
	for _, s := range c.Segs {
		assert.Equal(t, QuadTo, s.Op)
	}
	assert.Equal(t, c.Start, c.end())
	assert.Less(t, c.Area(), 0.0) // clockwise
}

func TestReverse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.outline")
	defer teardown()
	//
	c := Contour{Start: Point{0, 0}, Segs: []Segment{
		{Op: LineTo, To: Point{100, 0}},
		{Op: CubeTo, Ctrl: [2]Point{{150, 50}, {150, 100}}, To: Point{100, 150}},
		{Op: LineTo, To: Point{0, 0}},
	}}
	r := c.Reverse()
	assert.Equal(t, Point{0, 0}, r.Start)
	assert.Equal(t, Point{100, 150}, r.Segs[0].To)
	assert.Equal(t, [2]Point{{150, 100}, {150, 50}}, r.Segs[1].Ctrl)
	assert.Equal(t, Point{100, 0}, r.Segs[1].To)
	assert.InDelta(t, -c.Area(), r.Area(), 1e-9)
	assert.Equal(t, c, r.Reverse())
}

func TestCubicToQuadsErrorBound(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.outline")
	defer teardown()
	//
	// quarter circle of radius 1000
	k := 1000 * 0.5522847498
	p0, p1, p2, p3 := Point{1000, 0}, Point{1000, k}, Point{k, 1000}, Point{0, 1000}
	for _, maxErr := range []float64{10, 1, 0.25} {
		quads := cubicToQuads(p0, p1, p2, p3, maxErr)
		require.NotEmpty(t, quads)
		assert.Equal(t, p3, quads[len(quads)-1][1])
		n := len(quads)
		start := p0
		for i, q := range quads {
			for s := 0.0; s <= 1; s += 0.125 {
				want := cubicAt(p0, p1, p2, p3, (float64(i)+s)/float64(n))
				got := quadAt(start, q[0], q[1], s)
				assert.LessOrEqual(t, got.dist(want), maxErr+1e-6)
			}
			start = q[1]
		}
	}
	fine := cubicToQuads(p0, p1, p2, p3, 0.25)
	coarse := cubicToQuads(p0, p1, p2, p3, 10)
	assert.Greater(t, len(fine), len(coarse))
}

func TestStatsOfShearedRectangle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.outline")
	defer teardown()
	//
	sheared := Path{{Start: Point{0, 0}, Segs: []Segment{
		{Op: LineTo, To: Point{100, 0}},
		{Op: LineTo, To: Point{150, 200}},
		{Op: LineTo, To: Point{50, 200}},
	}}}
	s := sheared.Stats()
	assert.InDelta(t, 20000, s.Area, 1e-6)
	assert.InDelta(t, 100, s.MeanY, 1e-6)
	assert.InDelta(t, 0.25, s.Slant, 1e-9)
	// direction does not matter
	r := Path{sheared[0].Reverse()}.Stats()
	assert.InDelta(t, s.Slant, r.Slant, 1e-9)
}

func TestMeasureSlant(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.outline")
	defer teardown()
	//
	otf := fontload.Fixture{Slant: 0.2}.TrueType()
	m, err := NewMeasurer(otf)
	require.NoError(t, err)
	s, err := m.Measure(2)
	require.NoError(t, err)
	angle := -math.Atan(s.Slant) * 180 / math.Pi
	assert.InDelta(t, -11.31, angle, 0.1)
	upright, err := NewMeasurer(fontload.Fixture{}.TrueType())
	require.NoError(t, err)
	s, err = upright.Measure(2)
	require.NoError(t, err)
	assert.InDelta(t, 0, s.Slant, 1e-6)
}

func TestCFFToTrueType(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.outline")
	defer teardown()
	//
	otf, err := fontload.Fixture{}.CFF()
	require.NoError(t, err)
	require.NoError(t, CFFToTrueType(otf, 1, true))
	assert.False(t, otf.HasTable(ot.T("CFF ")))
	assert.True(t, otf.IsTrueType())
	assert.Equal(t, ot.TypeTrueType, otf.Header.FontType)
	glyf := otf.Lookup(ot.T("glyf")).AsGlyf()
	require.NotNil(t, glyf)
	contours, err := glyf.Contours(2)
	require.NoError(t, err)
	require.Len(t, contours, 2)
	for _, c := range contours {
		assert.Len(t, c, 4)
		assert.Less(t, FromGlyphPoints(c).Area(), 0.0) // clockwise
	}
	xmin, ymin, xmax, ymax, ok, err := glyf.Bounds(2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, [4]int16{50, 0, 550, 700}, [4]int16{xmin, ymin, xmax, ymax})
	assert.Equal(t, fontload.GlyphNames, otquery.GlyphNames(otf))
	assert.Equal(t, ot.MaxPVersion10, otf.Lookup(ot.T("maxp")).AsMaxP().Version)
	assert.ErrorIs(t, CFFToTrueType(otf, 1, true), ErrOutlineFormat)
}

func TestTrueTypeToCFF(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.outline")
	defer teardown()
	//
	otf := fontload.Fixture{}.TrueType()
	require.NoError(t, TrueTypeToCFF(otf, 0))
	assert.False(t, otf.HasTable(ot.T("glyf")))
	assert.False(t, otf.HasTable(ot.T("loca")))
	assert.True(t, otf.IsCFF())
	f, err := otf.Lookup(ot.T("CFF ")).AsCFF().CFF()
	require.NoError(t, err)
	assert.Equal(t, "TestSans-Regular", f.FontName)
	assert.Equal(t, fontload.GlyphNames, f.GlyphNames())
	assert.Equal(t, "Test Sans", f.FamilyName)
	assert.Equal(t, cff.UnitMatrix(1000), f.FontMatrix)
	width, err := f.Width(2)
	require.NoError(t, err)
	assert.Equal(t, 600.0, width)
	// the composite glyph is resolved
	path, err := GlyphPath(otf, 4)
	require.NoError(t, err)
	require.Len(t, path, 2)
	for _, c := range path {
		assert.Greater(t, c.Area(), 0.0) // counter-clockwise
	}
	assert.Equal(t, uint32(ot.PostVersion3), otf.Lookup(ot.T("post")).AsPost().Version)
	assert.ErrorIs(t, TrueTypeToCFF(otf, 0), ErrOutlineFormat)
}

func TestCorrectContours(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.outline")
	defer teardown()
	//
	otf := fontload.Fixture{}.TrueType()
	changed, err := DefaultCorrector().Correct(otf)
	require.NoError(t, err)
	assert.Equal(t, []string{"I"}, changed)
	contours, err := otf.Lookup(ot.T("glyf")).AsGlyf().Contours(5)
	require.NoError(t, err)
	assert.Len(t, contours, 1)
	changed, err = DefaultCorrector().Correct(otf)
	require.NoError(t, err)
	assert.Empty(t, changed)
	//
	cffFont, err := fontload.Fixture{}.CFF()
	require.NoError(t, err)
	changed, err = Corrector{MinArea: DefaultMinArea}.Correct(cffFont)
	require.NoError(t, err)
	assert.Equal(t, []string{"I"}, changed)
	path, err := GlyphPath(cffFont, 5)
	require.NoError(t, err)
	assert.Len(t, path, 1)
}

func TestCorrectWithoutMinArea(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.outline")
	defer teardown()
	//
	// a minimum area of 0 keeps the 3×3 contour of I
	otf := fontload.Fixture{}.TrueType()
	changed, err := Corrector{}.Correct(otf)
	require.NoError(t, err)
	assert.Empty(t, changed)
	contours, err := otf.Lookup(ot.T("glyf")).AsGlyf().Contours(5)
	require.NoError(t, err)
	assert.Len(t, contours, 2)
}

func TestRemoveOverlaps(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.outline")
	defer teardown()
	//
	square := func(x, y float64) Contour {
		return Contour{Start: Point{x, y}, Segs: []Segment{
			{Op: LineTo, To: Point{x + 100, y}},
			{Op: LineTo, To: Point{x + 100, y + 100}},
			{Op: LineTo, To: Point{x, y + 100}},
		}}
	}
	merged, ok := RemoveOverlaps(Path{square(0, 0), square(50, 50)})
	require.True(t, ok)
	require.Len(t, merged, 1)
	assert.InDelta(t, 17500, math.Abs(merged[0].Area()), 1e-6)
	lo, hi := merged[0].Bounds()
	assert.Equal(t, Point{0, 0}, lo)
	assert.Equal(t, Point{150, 150}, hi)
	// touching squares do not overlap
	apart := Path{square(0, 0), square(100, 0)}
	same, ok := RemoveOverlaps(apart)
	assert.False(t, ok)
	assert.Equal(t, apart, same)
}

func TestCorrectOverlaps(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.outline")
	defer teardown()
	//
	otf := fontload.Fixture{Overlap: true}.TrueType()
	changed, err := Corrector{RemoveOverlaps: true}.Correct(otf)
	require.NoError(t, err)
	assert.Equal(t, []string{"H"}, changed) // Hdot is a composite
	glyf := otf.Lookup(ot.T("glyf")).AsGlyf()
	contours, err := glyf.Contours(2)
	require.NoError(t, err)
	require.Len(t, contours, 1)
	assert.Less(t, FromGlyphPoints(contours[0]).Area(), 0.0) // clockwise
	xmin, ymin, xmax, ymax, ok, err := glyf.Bounds(2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, [4]int16{50, 0, 550, 700}, [4]int16{xmin, ymin, xmax, ymax})
	//
	cffFont, err := fontload.Fixture{Overlap: true}.CFF()
	require.NoError(t, err)
	changed, err = DefaultCorrector().Correct(cffFont)
	require.NoError(t, err)
	assert.Equal(t, []string{"H", "Hdot", "I"}, changed)
	path, err := GlyphPath(cffFont, 4)
	require.NoError(t, err)
	require.Len(t, path, 1)
	assert.Greater(t, path[0].Area(), 0.0) // counter-clockwise
	f, err := cffFont.Lookup(ot.T("CFF ")).AsCFF().CFF()
	require.NoError(t, err)
	assert.Equal(t, []float64{50, 150, 450, 550}, f.Glyphs[2].VStem) // hints are kept
}

func TestCorrectDirection(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.outline")
	defer teardown()
	//
	// an outer contour running counter-clockwise with a clockwise hole
	outer := []ot.GlyphPoint{{X: 0, Y: 0, OnCurve: true}, {X: 500, Y: 0, OnCurve: true},
		{X: 500, Y: 500, OnCurve: true}, {X: 0, Y: 500, OnCurve: true}}
	hole := []ot.GlyphPoint{{X: 100, Y: 100, OnCurve: true}, {X: 100, Y: 400, OnCurve: true},
		{X: 400, Y: 400, OnCurve: true}, {X: 400, Y: 100, OnCurve: true}}
	g := &ot.Glyph{}
	g.SetContours([][]ot.GlyphPoint{outer, hole})
	glyf := ot.NewGlyfTable([]*ot.Glyph{{}, g})
	changed, err := Corrector{}.correctGlyf(glyf)
	require.NoError(t, err)
	assert.Equal(t, []ot.GlyphIndex{1}, changed)
	contours, err := glyf.Contours(1)
	require.NoError(t, err)
	require.Len(t, contours, 2)
	assert.Less(t, FromGlyphPoints(contours[0]).Area(), 0.0)
	assert.Greater(t, FromGlyphPoints(contours[1]).Area(), 0.0)
}

func TestScaleUPM(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.outline")
	defer teardown()
	//
	otf := fontload.Fixture{Kern: true}.TrueType()
	require.NoError(t, ScaleUPM(otf, 500))
	assert.Equal(t, uint16(500), otf.Lookup(ot.T("head")).AsHead().UnitsPerEm)
	assert.Equal(t, int16(400), otf.Lookup(ot.T("hhea")).AsHHea().Ascender)
	m, ok := otf.Lookup(ot.T("hmtx")).AsHMtx().Metric(2)
	require.True(t, ok)
	assert.Equal(t, uint16(300), m.AdvanceWidth)
	assert.Equal(t, int16(25), m.LeftSideBearing)
	xmin, _, xmax, ymax, ok, err := otf.Lookup(ot.T("glyf")).AsGlyf().Bounds(4)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, [3]int16{25, 275, 350}, [3]int16{xmin, xmax, ymax})
	v, _ := otf.Lookup(ot.T("kern")).AsKern().Kerning(2, 5)
	assert.Equal(t, int16(-10), v)
	require.NoError(t, ScaleUPM(otf, 500)) // no-op
	assert.Error(t, ScaleUPM(otf, 8))
	assert.Error(t, ScaleUPM(otf, 20000))
	assert.ErrorIs(t, ScaleUPM(fontload.Fixture{Variable: true}.TrueType(), 2000), ErrOutlineFormat)
}

func TestScaleUPMOfCFF(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.outline")
	defer teardown()
	//
	otf, err := fontload.Fixture{}.CFF()
	require.NoError(t, err)
	require.NoError(t, ScaleUPM(otf, 2000))
	f, err := otf.Lookup(ot.T("CFF ")).AsCFF().CFF()
	require.NoError(t, err)
	assert.Equal(t, matrix.Matrix{0.0005, 0, 0, 0.0005, 0, 0}, f.FontMatrix)
	assert.Equal(t, []funit.Int16{-20, 0, 1400, 1420}, f.Private[0].BlueValues)
	assert.Equal(t, 200.0, f.Private[0].StdVW)
	assert.Equal(t, []float64{100, 300, 900, 1100}, f.Glyphs[2].VStem)
	width, err := f.Width(2)
	require.NoError(t, err)
	assert.Equal(t, 1200.0, width)
	path, err := GlyphPath(otf, 2)
	require.NoError(t, err)
	lo, hi := path[1].Bounds()
	assert.Equal(t, Point{900, 0}, lo)
	assert.Equal(t, Point{1100, 1400}, hi)
}
