package cff

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"seehuhn.de/go/postscript/funit"
	sfntcff "seehuhn.de/go/sfnt/cff"
)

// recorder records a path as a sequence of commands.
type recorder struct {
	cmds []string
	pts  [][2]float64
}

func (r *recorder) MoveTo(x, y float64) {
	r.cmds = append(r.cmds, "M")
	r.pts = append(r.pts, [2]float64{x, y})
}

func (r *recorder) LineTo(x, y float64) {
	r.cmds = append(r.cmds, "L")
	r.pts = append(r.pts, [2]float64{x, y})
}

func (r *recorder) CubeTo(x1, y1, x2, y2, x, y float64) {
	r.cmds = append(r.cmds, "C")
	r.pts = append(r.pts, [2]float64{x, y})
}

func (r *recorder) ClosePath() {
	r.cmds = append(r.cmds, "Z")
}

// arch draws a square with a round top.
func arch(name string, width float64) *sfntcff.Glyph {
	pen := NewPen(name, width)
	pen.MoveTo(100, 0)
	pen.LineTo(500, 0)
	pen.LineTo(500, 700)
	pen.CubeTo(400, 750, 200, 750, 100, 700)
	pen.ClosePath()
	return pen.Glyph()
}

func testFont(t *testing.T) *Font {
	t.Helper()
	private := DefaultPrivateDict()
	private.BlueValues = []funit.Int16{-10, 0, 690, 700}
	private.StdVW = 80
	info := NewFontInfo("TestSans-Regular")
	info.FullName = "Test Sans Regular"
	info.FamilyName = "Test Sans"
	info.Weight = "Regular"
	info.Notice = "Copyright (c) nobody"
	info.ItalicAngle = -12.5
	h := arch("H", 600)
	h.VStem = []float64{100, 180, 420, 500}
	f, err := Build(info, []*sfntcff.Glyph{
		NewPen(".notdef", 600).Glyph(),
		h,
		NewPen("uni00A0", 200).Glyph(),
	}, private)
	require.NoError(t, err)
	return f
}

func TestBuildEncodeParse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.cff")
	defer teardown()
	//
	f := testFont(t)
	data, err := f.Encode()
	require.NoError(t, err)
	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "TestSans-Regular", back.FontName)
	assert.Equal(t, "Test Sans", back.FamilyName)
	assert.Equal(t, "Regular", back.Weight)
	assert.Equal(t, -12.5, back.ItalicAngle)
	assert.Equal(t, UnitMatrix(1000), back.FontMatrix)
	assert.Equal(t, []string{".notdef", "H", "uni00A0"}, back.GlyphNames())
	assert.False(t, back.IsCID())
	for gid, g := range f.Glyphs {
		if diff := cmp.Diff(g.Cmds, back.Glyphs[gid].Cmds, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("glyph %d: commands differ (-built +parsed):\n%s", gid, diff)
		}
		w, err := back.Width(gid)
		require.NoError(t, err)
		assert.Equal(t, g.Width, w)
	}
	assert.Equal(t, []float64{100, 180, 420, 500}, back.Glyphs[1].VStem)
	require.Len(t, back.Private, 1)
	assert.Equal(t, []funit.Int16{-10, 0, 690, 700}, back.Private[0].BlueValues)
	assert.Equal(t, 80.0, back.Private[0].StdVW)
	gid, ok := back.GlyphIndex("uni00A0")
	assert.True(t, ok)
	assert.Equal(t, 2, gid)
	_, ok = back.GlyphIndex("A")
	assert.False(t, ok)
}

func TestBuildErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.cff")
	defer teardown()
	//
	info := NewFontInfo("X")
	_, err := Build(info, []*sfntcff.Glyph{arch("H", 600)}, DefaultPrivateDict())
	assert.ErrorIs(t, err, ErrInvalidCFF)
	_, err = Build(info, nil, DefaultPrivateDict())
	assert.ErrorIs(t, err, ErrInvalidCFF)
	_, err = Build(info, []*sfntcff.Glyph{arch(".notdef", 600), arch("H", 600), arch("H", 500)},
		DefaultPrivateDict())
	assert.ErrorIs(t, err, ErrInvalidCFF)
}

func TestParseErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.cff")
	defer teardown()
	//
	_, err := Parse([]byte{1, 0, 4})
	assert.ErrorIs(t, err, ErrInvalidCFF)
	_, err = Parse([]byte{7, 0, 4, 1, 0, 0})
	assert.ErrorIs(t, err, ErrInvalidCFF)
	_, err = Parse([]byte{2, 0, 5, 0, 0})
	assert.ErrorIs(t, err, ErrUnsupported)
}

// gsubrFont is a CFF font with one glyph, .notdef, whose charstring calls a
// global subroutine for its first moveto.
var gsubrFont = []byte{
	1, 0, 4, 1, // header
	0, 1, 1, 1, 2, 'A', // Name INDEX
	0, 1, 1, 1, 6, 170, 17, 141, 187, 18, // Top DICT INDEX: CharStrings 31, Private 2@48
	0, 0, // String INDEX
	0, 1, 1, 1, 5, 239, 139, 21, 11, // Global Subr INDEX: 100 0 rmoveto return
	0, 1, 1, 1, 13, // CharStrings INDEX
	32, 29, 248, 136, 6, 249, 80, 7, 252, 136, 6, 14, // -107 callgsubr 500 hlineto 700 vlineto -500 hlineto endchar
	189, 11, // Private DICT: StdVW 50
}

func TestGlobalSubroutines(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.cff")
	defer teardown()
	//
	f, err := Parse(gsubrFont)
	require.NoError(t, err)
	assert.Equal(t, "A", f.FontName)
	assert.Equal(t, 50.0, f.Private[0].StdVW)
	r := &recorder{}
	_, err = f.Outline(0, r)
	require.NoError(t, err)
	assert.Equal(t, []string{"M", "L", "L", "L", "Z"}, r.cmds)
	assert.Equal(t, [][2]float64{{100, 0}, {600, 0}, {600, 700}, {100, 700}}, r.pts)
	// fonts are written without subroutines
	data, err := f.Encode()
	require.NoError(t, err)
	back, err := Parse(data)
	require.NoError(t, err)
	if diff := cmp.Diff(f.Glyphs[0].Cmds, back.Glyphs[0].Cmds); diff != "" {
		t.Errorf("desubroutinized glyph differs:\n%s", diff)
	}
}

func TestOutlineAndBounds(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.cff")
	defer teardown()
	//
	f := testFont(t)
	r := &recorder{}
	width, err := f.Outline(1, r)
	require.NoError(t, err)
	assert.Equal(t, 600.0, width)
	assert.Equal(t, []string{"M", "L", "L", "C", "Z"}, r.cmds)
	x0, y0, x1, y1, ok, err := f.Bounds(1)
	require.NoError(t, err)
	require.True(t, ok)
	// the top of the curve is at t=0.5: 700/8 + 3·750/8 + 3·750/8 + 700/8
	assert.Equal(t, [4]float64{100, 0, 500, 737.5}, [4]float64{x0, y0, x1, y1})
	_, _, _, _, ok, err = f.Bounds(2)
	require.NoError(t, err)
	assert.False(t, ok)
	bbox, err := f.FontBBox()
	require.NoError(t, err)
	assert.Equal(t, [4]float64{100, 0, 500, 738}, bbox)
	_, err = f.Outline(3, r)
	assert.ErrorIs(t, err, ErrInvalidCFF)
	_, err = f.Width(-1)
	assert.ErrorIs(t, err, ErrInvalidCFF)
}

func TestScaledPen(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.cff")
	defer teardown()
	//
	pen := NewPen("a", 500).Scaled(2)
	pen.MoveTo(1.2, 3.4)
	pen.CubeTo(0.2, 0.3, 1, 1, 10, 10)
	g := pen.Glyph()
	require.Len(t, g.Cmds, 2)
	assert.Equal(t, []float64{2, 7}, g.Cmds[0].Args)
	assert.Equal(t, []float64{0, 1, 2, 2, 20, 20}, g.Cmds[1].Args)
	assert.Equal(t, sfntcff.OpCurveTo, g.Cmds[1].Op)
}

func TestScale(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.cff")
	defer teardown()
	//
	f := testFont(t)
	f.Scale(2)
	f.SetUnitsPerEm(2000)
	assert.Equal(t, UnitMatrix(2000), f.FontMatrix)
	assert.Equal(t, 1200.0, f.Glyphs[1].Width)
	assert.Equal(t, []float64{200, 360, 840, 1000}, f.Glyphs[1].VStem)
	assert.Equal(t, []funit.Int16{-20, 0, 1380, 1400}, f.Private[0].BlueValues)
	assert.Equal(t, 160.0, f.Private[0].StdVW)
	_, _, x1, y1, ok, err := f.Bounds(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, [2]float64{1000, 1475}, [2]float64{x1, y1})
}

func TestRemoveHints(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.cff")
	defer teardown()
	//
	f := testFont(t)
	assert.True(t, f.HasStemHints())
	assert.True(t, HasHints(f.Private[0]))
	assert.Equal(t, 1, f.RemoveHints(false))
	assert.False(t, f.HasStemHints())
	assert.True(t, HasHints(f.Private[0]))
	assert.Zero(t, f.RemoveHints(true))
	assert.False(t, HasHints(f.Private[0]))
	assert.False(t, HasHints(nil))
	data, err := f.Encode()
	require.NoError(t, err)
	back, err := Parse(data)
	require.NoError(t, err)
	assert.False(t, back.HasStemHints())
	assert.Empty(t, back.Private[0].BlueValues)
}

func TestRenameGlyphs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.cff")
	defer teardown()
	//
	f := testFont(t)
	n, err := f.RenameGlyphs(map[string]string{"uni00A0": "nbspace", ".notdef": "zero", "B": "C"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{".notdef", "H", "nbspace"}, f.GlyphNames())
	_, err = f.RenameGlyphs(map[string]string{"nbspace": "H"})
	assert.ErrorIs(t, err, ErrInvalidCFF)
	assert.Equal(t, []string{".notdef", "H", "nbspace"}, f.GlyphNames())
}
