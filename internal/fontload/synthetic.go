package fontload

import (
	"math"

	"github.com/npillmayer/foundry/cff"
	"github.com/npillmayer/foundry/ot"
	"seehuhn.de/go/postscript/funit"
	sfntcff "seehuhn.de/go/sfnt/cff"
)

// Fixture configures a synthetic font. All synthetic fonts have 1000 units per
// em and the glyphs
//
//	0  .notdef   rectangle
//	1  space     empty, advance 250, mapped to U+0020
//	2  H         two stems (and a crossbar overlapping them), mapped to U+0048
//	3  uni00A0   empty, advance 200
//	4  Hdot      composite of H (TrueType) or copy of H (CFF), not mapped
//	5  I         a stem plus a contour of 3×3 units, mapped to U+0049
type Fixture struct {
	NBSP     bool    // map glyph 3 to U+00A0
	Slant    float64 // horizontal offset per unit of height for glyphs H and I
	Kern     bool    // add a kern table with pairs (H,I), (H,Hdot) and (uni00A0,H)
	Bold     bool    // set the bold bits of OS/2 and head
	Family   string  // family name, default "Test Sans"
	Variable bool    // add a minimal fvar table with a weight axis
	Overlap  bool    // give H a crossbar overlapping both stems
}

// GlyphNames are the glyph names of all synthetic fonts.
var GlyphNames = []string{".notdef", "space", "H", "uni00A0", "Hdot", "I"}

var advances = []uint16{500, 250, 600, 200, 600, 250}

type point struct {
	x, y float64
}

// outlines returns the contours of all glyphs, as polygons.
func (fx Fixture) outlines() [][][]point {
	rect := func(x0, y0, x1, y1 float64) []point {
		return []point{{x0, y0}, {x0, y1}, {x1, y1}, {x1, y0}}
	}
	slanted := func(c []point) []point {
		out := make([]point, len(c))
		for i, p := range c {
			out[i] = point{math.Round(p.x + fx.Slant*p.y), p.y}
		}
		return out
	}
	h := [][]point{slanted(rect(50, 0, 150, 700)), slanted(rect(450, 0, 550, 700))}
	if fx.Overlap {
		h = append(h, slanted(rect(100, 300, 500, 400)))
	}
	i := [][]point{slanted(rect(50, 0, 150, 700)), rect(200, 300, 203, 303)}
	return [][][]point{
		{rect(50, 0, 450, 700)},
		nil,
		h,
		nil,
		h,
		i,
	}
}

// TrueType creates a synthetic font with TrueType outlines.
func (fx Fixture) TrueType() *ot.Font {
	otf := ot.New(ot.TypeTrueType)
	fx.addCommonTables(otf)
	otf.SetTable(ot.T("maxp"), ot.NewMaxPTable(ot.MaxPVersion10, len(GlyphNames)))
	glyphs := make([]*ot.Glyph, len(GlyphNames))
	for gid, contours := range fx.outlines() {
		g := &ot.Glyph{}
		var cc [][]ot.GlyphPoint
		for _, c := range contours {
			var pts []ot.GlyphPoint
			for _, p := range c {
				pts = append(pts, ot.GlyphPoint{X: int16(p.x), Y: int16(p.y), OnCurve: true})
			}
			cc = append(cc, pts)
		}
		g.SetContours(cc)
		glyphs[gid] = g
	}
	hdot := &ot.Glyph{Components: []ot.GlyphComponent{{Glyph: 2, Flags: ot.ArgsAreXYValues}}}
	hdot.XMin, hdot.YMin, hdot.XMax, hdot.YMax = glyphs[2].XMin, glyphs[2].YMin, glyphs[2].XMax, glyphs[2].YMax
	glyphs[4] = hdot
	otf.SetTable(ot.T("loca"), ot.NewLocaTable())
	otf.SetTable(ot.T("glyf"), ot.NewGlyfTable(glyphs))
	otf.SetTable(ot.T("post"), ot.NewPostTable(GlyphNames))
	fx.setMetrics(otf, func(gid int) int16 { return glyphs[gid].XMin })
	return otf
}

// CFF creates a synthetic font with PostScript outlines.
func (fx Fixture) CFF() (*ot.Font, error) {
	otf := ot.New(ot.TypeCFF)
	fx.addCommonTables(otf)
	otf.SetTable(ot.T("maxp"), ot.NewMaxPTable(ot.MaxPVersion05, len(GlyphNames)))
	private := cff.DefaultPrivateDict()
	private.BlueValues = []funit.Int16{-10, 0, 700, 710}
	private.StdVW = 100
	glyphs := make([]*sfntcff.Glyph, len(GlyphNames))
	for gid, contours := range fx.outlines() {
		pen := cff.NewPen(GlyphNames[gid], float64(advances[gid]))
		for _, c := range contours {
			// PostScript outlines run counter-clockwise
			pen.MoveTo(c[0].x, c[0].y)
			for k := len(c) - 1; k > 0; k-- {
				pen.LineTo(c[k].x, c[k].y)
			}
			pen.ClosePath()
		}
		glyphs[gid] = pen.Glyph()
	}
	if fx.Slant == 0 {
		for _, gid := range []int{2, 4} { // the stems of H
			glyphs[gid].VStem = []float64{50, 150, 450, 550}
		}
	}
	info := cff.NewFontInfo("TestSans-Regular")
	info.FullName = fx.family() + " Regular"
	info.FamilyName = fx.family()
	info.Weight = "Regular"
	info.Notice = fx.family() + " is a test font"
	f, err := cff.Build(info, glyphs, private)
	if err != nil {
		return nil, err
	}
	otf.SetTable(ot.T("CFF "), ot.NewCFFTable(f))
	otf.SetTable(ot.T("post"), ot.NewPostTable(nil))
	fx.setMetrics(otf, func(gid int) int16 {
		x0, _, _, _, ok, _ := f.Bounds(gid)
		if !ok {
			return 0
		}
		return int16(math.Floor(x0))
	})
	return otf, nil
}

func (fx Fixture) family() string {
	if fx.Family == "" {
		return "Test Sans"
	}
	return fx.Family
}

func (fx Fixture) addCommonTables(otf *ot.Font) {
	head := ot.NewHeadTable(1000)
	hhea := ot.NewHHeaTable()
	hhea.Ascender, hhea.Descender = 800, -200
	os2 := ot.NewOS2Table()
	os2.UsWeightClass = 400
	os2.FsSelection = 1 << ot.FsSelectionRegular
	if fx.Bold {
		os2.UsWeightClass = 700
		os2.FsSelection = 1 << ot.FsSelectionBold
		head.MacStyle = 0x0001
	}
	otf.SetTable(ot.T("head"), head)
	otf.SetTable(ot.T("hhea"), hhea)
	otf.SetTable(ot.T("OS/2"), os2)
	cmap := ot.NewCMapTable()
	st := ot.NewCMapSubtable(3, 1, 4)
	st.Mapping[' '] = 1
	st.Mapping['H'] = 2
	st.Mapping['I'] = 5
	if fx.NBSP {
		st.Mapping[0xA0] = 3
	}
	cmap.Subtables = append(cmap.Subtables, st)
	otf.SetTable(ot.T("cmap"), cmap)
	name := ot.NewNameTable()
	_ = name.SetName(fx.family(), ot.NameFamily, ot.PlatformWindows, ot.EncodingWindowsBMP, ot.WindowsEnglishUS)
	_ = name.SetName("Regular", ot.NameSubfamily, ot.PlatformWindows, ot.EncodingWindowsBMP, ot.WindowsEnglishUS)
	_ = name.SetName(fx.family()+" Regular", ot.NameFull, ot.PlatformWindows, ot.EncodingWindowsBMP, ot.WindowsEnglishUS)
	_ = name.SetName("TestSans-Regular", ot.NamePostScript, ot.PlatformWindows, ot.EncodingWindowsBMP, ot.WindowsEnglishUS)
	otf.SetTable(ot.T("name"), name)
	if fx.Kern {
		kern := ot.NewKernTable()
		kern.Subtables[0].Pairs[ot.KernPair{Left: 2, Right: 5}] = -20
		kern.Subtables[0].Pairs[ot.KernPair{Left: 2, Right: 4}] = -10
		kern.Subtables[0].Pairs[ot.KernPair{Left: 3, Right: 2}] = -5
		otf.SetTable(ot.T("kern"), kern)
	}
	if fx.Variable {
		fvar := ot.NewFvarTable()
		fvar.Axes = append(fvar.Axes, ot.FvarAxis{Tag: ot.T("wght"), Minimum: 100, Default: 400, Maximum: 900, NameID: 256})
		otf.SetTable(ot.T("fvar"), fvar)
	}
}

func (fx Fixture) setMetrics(otf *ot.Font, lsb func(gid int) int16) {
	metrics := make([]ot.HMetricRecord, len(GlyphNames))
	for gid := range metrics {
		metrics[gid] = ot.HMetricRecord{AdvanceWidth: advances[gid], LeftSideBearing: lsb(gid)}
	}
	otf.SetTable(ot.T("hmtx"), ot.NewHMtxTable(metrics))
}
