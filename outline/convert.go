package outline

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/npillmayer/foundry/cff"
	"github.com/npillmayer/foundry/ot"
	"github.com/npillmayer/foundry/otquery"
	"seehuhn.de/go/postscript/funit"
	"seehuhn.de/go/postscript/type1"
	sfntcff "seehuhn.de/go/sfnt/cff"
)

// ErrOutlineFormat is returned if a font does not have the outlines a
// conversion starts from.
var ErrOutlineFormat = errors.New("unexpected outline format")

// TrueType tables which carry hinting programs or hinting-dependent data.
var trueTypeHintingTables = []string{"fpgm", "prep", "cvt ", "gasp", "hdmx", "LTSH", "VDMX"}

// CFFToTrueType replaces the PostScript outlines of a font by TrueType
// outlines. Cubic curves are approximated by quadratic curves with an error
// of at most maxErr font units. If reverseDirection is set, contours are
// reversed, as PostScript and TrueType use opposite winding directions.
//
// Tables glyf and loca replace table 'CFF ', maxp is upgraded to version 1.0
// and post to version 2.0, keeping the glyph names.
func CFFToTrueType(otf *ot.Font, maxErr float64, reverseDirection bool) error {
	t := otf.Lookup(ot.T("CFF ")).AsCFF()
	if t == nil {
		return fmt.Errorf("no table 'CFF ': %w", ErrOutlineFormat)
	}
	f, err := t.CFF()
	if err != nil {
		return err
	}
	names := otquery.GlyphNames(otf)
	n := f.NumGlyphs()
	glyphs := make([]*ot.Glyph, n)
	for gid := 0; gid < n; gid++ {
		rec := &Recorder{}
		if _, err := f.Outline(gid, rec); err != nil {
			return fmt.Errorf("glyph %d: %w", gid, err)
		}
		var contours [][]ot.GlyphPoint
		for _, c := range rec.Path {
			if reverseDirection {
				c = c.Reverse()
			}
			if pts := c.GlyphPoints(maxErr); len(pts) > 0 {
				contours = append(contours, pts)
			}
		}
		g := &ot.Glyph{}
		g.SetContours(contours)
		glyphs[gid] = g
	}
	otf.RemoveTable(ot.T("CFF "))
	otf.RemoveTable(ot.T("VORG"))
	glyf := ot.NewGlyfTable(glyphs)
	otf.SetTable(ot.T("loca"), ot.NewLocaTable())
	otf.SetTable(ot.T("glyf"), glyf)
	maxp := ot.NewMaxPTable(ot.MaxPVersion10, n)
	if err := maxp.RecalcProfile(glyf); err != nil {
		return err
	}
	otf.SetTable(ot.T("maxp"), maxp)
	if len(names) == n {
		post := otf.Lookup(ot.T("post")).AsPost()
		if post == nil {
			otf.SetTable(ot.T("post"), ot.NewPostTable(names))
		} else {
			post.Version = ot.PostVersion2
			post.GlyphNames = names
		}
	}
	syncLeftSideBearings(otf, glyf)
	if head := otf.Lookup(ot.T("head")).AsHead(); head != nil {
		head.GlyphDataFormat = 0
	}
	otf.Header.FontType = ot.TypeTrueType
	tracer().Infof("converted %d glyphs from CFF to TrueType", n)
	return nil
}

// syncLeftSideBearings sets the left side bearing of every glyph to the
// glyph's xMin.
func syncLeftSideBearings(otf *ot.Font, glyf *ot.GlyfTable) {
	hmtx := otf.Lookup(ot.T("hmtx")).AsHMtx()
	if hmtx == nil {
		return
	}
	for gid := 0; gid < glyf.NumGlyphs(); gid++ {
		m, ok := hmtx.Metric(ot.GlyphIndex(gid))
		if !ok {
			continue
		}
		xmin, _, _, _, ok, err := glyf.Bounds(ot.GlyphIndex(gid))
		if err != nil || !ok {
			xmin = 0
		}
		if xmin != m.LeftSideBearing {
			hmtx.SetMetric(ot.GlyphIndex(gid), m.AdvanceWidth, xmin)
		}
	}
}

// TrueTypeToCFF replaces the TrueType outlines of a font by PostScript
// outlines. Quadratic curves are converted to cubic curves without loss; line
// segments shorter than tolerance are dropped. Contours are reversed to the
// PostScript winding direction. Composite glyphs are resolved.
//
// Table 'CFF ' replaces glyf and loca, TrueType hinting tables are removed,
// maxp is downgraded to version 0.5 and post to version 3.0, as glyph names
// are stored in the CFF charset.
func TrueTypeToCFF(otf *ot.Font, tolerance float64) error {
	glyf := otf.Lookup(ot.T("glyf")).AsGlyf()
	if glyf == nil {
		return fmt.Errorf("no table glyf: %w", ErrOutlineFormat)
	}
	names := uniqueNames(otquery.GlyphNames(otf))
	hmtx := otf.Lookup(ot.T("hmtx")).AsHMtx()
	glyphs := make([]*sfntcff.Glyph, glyf.NumGlyphs())
	for gid := range glyphs {
		contours, err := glyf.Contours(ot.GlyphIndex(gid))
		if err != nil {
			return fmt.Errorf("glyph %d: %w", gid, err)
		}
		var path Path
		for _, pts := range contours {
			c := dropShortLines(FromGlyphPoints(pts), tolerance)
			if len(c.Segs) > 0 {
				path = append(path, c.Reverse())
			}
		}
		var width float64
		if hmtx != nil {
			if m, ok := hmtx.Metric(ot.GlyphIndex(gid)); ok {
				width = float64(m.AdvanceWidth)
			}
		}
		pen := cff.NewPen(names[gid], width)
		path.rounded().Draw(pen)
		glyphs[gid] = pen.Glyph()
	}
	f, err := cff.Build(topDictFromTables(otf), glyphs, cff.DefaultPrivateDict())
	if err != nil {
		return err
	}
	for _, tag := range append([]string{"glyf", "loca"}, trueTypeHintingTables...) {
		otf.RemoveTable(ot.T(tag))
	}
	otf.SetTable(ot.T("CFF "), ot.NewCFFTable(f))
	otf.SetTable(ot.T("maxp"), ot.NewMaxPTable(ot.MaxPVersion05, len(glyphs)))
	if post := otf.Lookup(ot.T("post")).AsPost(); post != nil {
		post.Version = ot.PostVersion3
		post.GlyphNames = nil
	} else {
		otf.SetTable(ot.T("post"), ot.NewPostTable(nil))
	}
	otf.Header.FontType = ot.TypeCFF
	tracer().Infof("converted %d glyphs from TrueType to CFF", len(glyphs))
	return nil
}

// dropShortLines removes line segments shorter than tolerance, except the
// closing one.
func dropShortLines(c Contour, tolerance float64) Contour {
	if tolerance <= 0 {
		return c
	}
	out := Contour{Start: c.Start}
	cur := c.Start
	for i, s := range c.Segs {
		if s.Op == LineTo && i < len(c.Segs)-1 && cur.dist(s.To) < tolerance {
			continue
		}
		out.Segs = append(out.Segs, s)
		cur = s.To
	}
	return out
}

// rounded returns a copy of the path with all coordinates rounded. Quadratic
// curves are elevated to cubic curves before rounding.
func (path Path) rounded() Path {
	r := func(p Point) Point { return Point{math.Round(p.X), math.Round(p.Y)} }
	out := make(Path, len(path))
	for i, c := range path {
		rc := Contour{Start: r(c.Start)}
		cur := c.Start
		for _, s := range c.Segs {
			if s.Op == QuadTo {
				c1, c2 := elevate(cur, s.Ctrl[0], s.To)
				s = Segment{Op: CubeTo, Ctrl: [2]Point{c1, c2}, To: s.To}
			}
			cur = s.To
			s.Ctrl[0], s.Ctrl[1], s.To = r(s.Ctrl[0]), r(s.Ctrl[1]), r(s.To)
			rc.Segs = append(rc.Segs, s)
		}
		out[i] = rc
	}
	return out
}

// uniqueNames makes glyph names unique, as required by the CFF charset.
func uniqueNames(names []string) []string {
	seen := make(map[string]int, len(names))
	out := make([]string, len(names))
	for i, name := range names {
		if name == "" {
			name = fmt.Sprintf("glyph%05d", i)
		}
		if k := seen[name]; k > 0 {
			seen[name]++
			name = fmt.Sprintf("%s.dup%d", name, k)
		} else {
			seen[name] = 1
		}
		out[i] = name
	}
	if len(out) > 0 {
		out[0] = ".notdef"
	}
	return out
}

// postScriptName returns the PostScript name of a font from table name.
func postScriptName(otf *ot.Font) string {
	names := otquery.NameInfo(otf)
	if ps := names["postscript"]; ps != "" {
		return ps
	}
	ps := strings.Map(func(r rune) rune {
		if r <= ' ' || r > '~' || strings.ContainsRune("[](){}<>/%", r) {
			return -1
		}
		return r
	}, names["family"]+"-"+names["subfamily"])
	if ps == "-" {
		return "Untitled"
	}
	return ps
}

// topDictFromTables fills the Top DICT entries from tables name, post and head.
func topDictFromTables(otf *ot.Font) *type1.FontInfo {
	top := cff.NewFontInfo(postScriptName(otf))
	names := otquery.NameInfo(otf)
	top.FullName = names["full"]
	top.FamilyName = names["family"]
	top.Weight = names["subfamily"]
	if n := otf.Lookup(ot.T("name")).AsName(); n != nil {
		top.Copyright = n.Name(ot.NameCopyright)
		top.Notice = n.Name(ot.NameTrademark)
	}
	if v, ok := strings.CutPrefix(names["version"], "Version "); ok {
		top.Version = v
	}
	if post := otf.Lookup(ot.T("post")).AsPost(); post != nil {
		top.ItalicAngle = post.ItalicAngleValue()
		top.UnderlinePosition = funit.Float64(post.UnderlinePosition)
		top.UnderlineThickness = funit.Float64(post.UnderlineThickness)
		top.IsFixedPitch = post.IsFixedPitch != 0
	}
	if head := otf.Lookup(ot.T("head")).AsHead(); head != nil && head.UnitsPerEm > 0 {
		top.FontMatrix = cff.UnitMatrix(int(head.UnitsPerEm))
	}
	return top
}
