package outline

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/npillmayer/foundry/ot"
)

// UPM limits of table head.
const (
	MinUPM = 16
	MaxUPM = 16384
)

// ScaleUPM changes the units per em of a static font to target, scaling the
// metrics of tables head, hhea, OS/2, post, hmtx and kern, the outlines of
// glyf or 'CFF ', and the values of table 'cvt '. Layout tables (GPOS) are
// not scaled.
func ScaleUPM(otf *ot.Font, target int) error {
	if target < MinUPM || target > MaxUPM {
		return fmt.Errorf("units per em %d out of range [%d…%d]", target, MinUPM, MaxUPM)
	}
	head := otf.Lookup(ot.T("head")).AsHead()
	if head == nil {
		return fmt.Errorf("scaling units per em: %w", ot.ErrMissingTable)
	}
	if otf.HasTable(ot.T("fvar")) {
		return fmt.Errorf("scaling units per em of a variable font: %w", ErrOutlineFormat)
	}
	if int(head.UnitsPerEm) == target {
		return nil
	}
	f := float64(target) / float64(head.UnitsPerEm)
	s := func(v int16) int16 { return clamp16(float64(v) * f) }
	su := func(v uint16) uint16 { return uint16(math.Min(math.MaxUint16, math.Round(float64(v)*f))) }
	tracer().Debugf("scaling font from %d to %d units per em", head.UnitsPerEm, target)

	if glyf := otf.Lookup(ot.T("glyf")).AsGlyf(); glyf != nil {
		if err := scaleGlyf(glyf, s); err != nil {
			return err
		}
	}
	if t := otf.Lookup(ot.T("CFF ")).AsCFF(); t != nil {
		if err := scaleCFF(t, f, target); err != nil {
			return err
		}
	}
	head.UnitsPerEm = uint16(target)
	head.XMin, head.YMin, head.XMax, head.YMax = s(head.XMin), s(head.YMin), s(head.XMax), s(head.YMax)
	if hhea := otf.Lookup(ot.T("hhea")).AsHHea(); hhea != nil {
		hhea.Ascender, hhea.Descender, hhea.LineGap = s(hhea.Ascender), s(hhea.Descender), s(hhea.LineGap)
		hhea.AdvanceWidthMax = su(hhea.AdvanceWidthMax)
		hhea.MinLeftSideBearing, hhea.MinRightSideBearing = s(hhea.MinLeftSideBearing), s(hhea.MinRightSideBearing)
		hhea.XMaxExtent, hhea.CaretOffset = s(hhea.XMaxExtent), s(hhea.CaretOffset)
		if hhea.CaretSlopeRun != 0 {
			hhea.CaretSlopeRise, hhea.CaretSlopeRun = s(hhea.CaretSlopeRise), s(hhea.CaretSlopeRun)
		}
	}
	if os2 := otf.Lookup(ot.T("OS/2")).AsOS2(); os2 != nil {
		for _, v := range []*int16{
			&os2.XAvgCharWidth,
			&os2.YSubscriptXSize, &os2.YSubscriptYSize, &os2.YSubscriptXOffset, &os2.YSubscriptYOffset,
			&os2.YSuperscriptXSize, &os2.YSuperscriptYSize, &os2.YSuperscriptXOffset, &os2.YSuperscriptYOffset,
			&os2.YStrikeoutSize, &os2.YStrikeoutPosition,
			&os2.STypoAscender, &os2.STypoDescender, &os2.STypoLineGap,
			&os2.SxHeight, &os2.SCapHeight,
		} {
			*v = s(*v)
		}
		os2.UsWinAscent, os2.UsWinDescent = su(os2.UsWinAscent), su(os2.UsWinDescent)
	}
	if post := otf.Lookup(ot.T("post")).AsPost(); post != nil {
		post.UnderlinePosition, post.UnderlineThickness = s(post.UnderlinePosition), s(post.UnderlineThickness)
	}
	if hmtx := otf.Lookup(ot.T("hmtx")).AsHMtx(); hmtx != nil {
		for gid, m := range hmtx.Metrics() {
			hmtx.SetMetric(ot.GlyphIndex(gid), su(m.AdvanceWidth), s(m.LeftSideBearing))
		}
	}
	if kern := otf.Lookup(ot.T("kern")).AsKern(); kern != nil {
		for _, sub := range kern.Subtables {
			for pair, v := range sub.Pairs {
				sub.Pairs[pair] = s(v)
			}
		}
	}
	if cvt := otf.Table(ot.T("cvt ")); cvt != nil {
		data := append([]byte(nil), cvt.Binary()...)
		for i := 0; i+1 < len(data); i += 2 {
			v := s(int16(binary.BigEndian.Uint16(data[i:])))
			binary.BigEndian.PutUint16(data[i:], uint16(v))
		}
		otf.SetTable(ot.T("cvt "), ot.NewRawTable(ot.T("cvt "), data))
	}
	return nil
}

func scaleGlyf(glyf *ot.GlyfTable, s func(int16) int16) error {
	for gid := 0; gid < glyf.NumGlyphs(); gid++ {
		g, err := glyf.Glyph(ot.GlyphIndex(gid))
		if err != nil {
			return fmt.Errorf("glyph %d: %w", gid, err)
		}
		if g.IsEmpty() {
			continue
		}
		if g.IsComposite() {
			for i, c := range g.Components {
				if c.ArgsAreXY() {
					g.Components[i].Arg1 = int32(s(int16(c.Arg1)))
					g.Components[i].Arg2 = int32(s(int16(c.Arg2)))
				}
			}
			g.XMin, g.YMin, g.XMax, g.YMax = s(g.XMin), s(g.YMin), s(g.XMax), s(g.YMax)
		} else {
			for i, p := range g.Points {
				g.Points[i].X, g.Points[i].Y = s(p.X), s(p.Y)
			}
			g.RecalcBounds()
		}
		glyf.SetGlyph(ot.GlyphIndex(gid), g)
	}
	return nil
}

func scaleCFF(t *ot.CFFTable, f float64, target int) error {
	font, err := t.CFF()
	if err != nil {
		return err
	}
	font.Scale(f)
	font.SetUnitsPerEm(target)
	t.MarkChanged()
	return nil
}
