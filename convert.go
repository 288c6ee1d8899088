package foundry

import (
	"context"
	"math"

	"github.com/npillmayer/foundry/ot"
	"github.com/npillmayer/foundry/otquery"
	"github.com/npillmayer/foundry/outline"
	"github.com/npillmayer/foundry/tables"
)

// --- Container formats -----------------------------------------------------

// ToWOFF sets the container format of the font to WOFF. It is an error if the
// font already is a WOFF font.
func (f *Font) ToWOFF() error {
	if f.IsWOFF() {
		return errorf("convert to WOFF", ErrConversion, "font is already a WOFF font")
	}
	f.otf.Flavor = ot.FlavorWOFF
	return nil
}

// ToWOFF2 sets the container format of the font to WOFF2. It is an error if
// the font already is a WOFF2 font.
func (f *Font) ToWOFF2() error {
	if f.IsWOFF2() {
		return errorf("convert to WOFF2", ErrConversion, "font is already a WOFF2 font")
	}
	f.otf.Flavor = ot.FlavorWOFF2
	return nil
}

// ToSFNT sets the container format of the font to plain SFNT. It is an error
// if the font already is an SFNT font.
func (f *Font) ToSFNT() error {
	if f.IsSFNT() {
		return errorf("convert to SFNT", ErrConversion, "font is already an SFNT font")
	}
	f.otf.Flavor = ot.FlavorSFNT
	return nil
}

// --- Outline formats -------------------------------------------------------

// convertCopy runs a conversion on a copy of the font container and adopts the
// result if the conversion succeeds. If it fails, the font is left unchanged.
func (f *Font) convertCopy(op string, convert func(c *ot.Font) error) error {
	c, err := f.otf.Clone()
	if err != nil {
		return newError(op, ErrConversion, err)
	}
	if err := convert(c); err != nil {
		return newError(op, ErrConversion, err)
	}
	f.adopt(c)
	return nil
}

// ToTTF converts PostScript outlines to TrueType outlines. Cubic curves are
// approximated with a maximum error of maxErr font units. reverseDirection
// reverses the contours, as TrueType uses the opposite winding direction.
// Variable fonts and fonts with TrueType outlines cannot be converted.
func (f *Font) ToTTF(maxErr float64, reverseDirection bool) error {
	const op = "convert to TrueType"
	if f.IsTT() {
		return errorf(op, ErrConversion, "font is already a TrueType font")
	}
	if f.IsVariable() {
		return errorf(op, ErrConversion, "variable fonts are not supported")
	}
	return f.convertCopy(op, func(c *ot.Font) error {
		return outline.CFFToTrueType(c, maxErr, reverseDirection)
	})
}

// ToOTF converts TrueType outlines to PostScript outlines. Composite glyphs are
// decomposed, line segments shorter than tolerance are dropped. If
// correctContours is set, contours are corrected with the defaults of
// CorrectContours: tiny contours and overlaps are removed and contour
// directions are corrected. The average character width of OS/2 is recalculated.
// Variable fonts and fonts with PostScript outlines cannot be converted.
func (f *Font) ToOTF(tolerance float64, correctContours bool) error {
	const op = "convert to PostScript"
	if f.IsPS() {
		return errorf(op, ErrConversion, "font is already a PostScript font")
	}
	if f.IsVariable() {
		return errorf(op, ErrConversion, "variable fonts are not supported")
	}
	return f.convertCopy(op, func(c *ot.Font) error {
		glyf, err := tables.NewGlyf(c)
		if err != nil {
			return err
		}
		if _, err := glyf.Decomponentize(); err != nil {
			return err
		}
		if err := outline.TrueTypeToCFF(c, tolerance); err != nil {
			return err
		}
		if correctContours {
			if _, err := outline.DefaultCorrector().Correct(c); err != nil {
				return err
			}
		}
		if os2, err := tables.NewOS2(c); err == nil {
			_, err = os2.RecalcAvgCharWidth()
			return err
		}
		return nil
	})
}

// CorrectOptions control CorrectContours.
type CorrectOptions struct {
	MinArea      float64 // contours with a smaller bounding box are removed; 0 keeps all contours
	KeepOverlaps bool    // do not merge overlapping contours
	KeepHinting  bool    // do not remove hinting after contours have been changed
}

// DefaultCorrectOptions removes contours smaller than 25 square units and
// overlaps, and drops hinting of changed fonts.
func DefaultCorrectOptions() CorrectOptions {
	return CorrectOptions{MinArea: outline.DefaultMinArea}
}

// CorrectContours removes tiny contours, zero-length segments and overlaps,
// and corrects the direction of contours. It returns the names of the glyphs
// changed. If glyphs have been changed, hinting is removed unless
// opts.KeepHinting is set. Variable fonts are not supported.
func (f *Font) CorrectContours(opts CorrectOptions) ([]string, error) {
	const op = "correct contours"
	if f.IsVariable() {
		return nil, errorf(op, ErrConversion, "variable fonts are not supported")
	}
	if !f.IsPS() && !f.IsTT() {
		return nil, errorf(op, ErrUnknownFormat, "font type %#x", f.otf.Header.FontType)
	}
	if opts.MinArea < 0 {
		return nil, errorf(op, ErrConversion, "negative minimum area %g", opts.MinArea)
	}
	c, err := f.otf.Clone()
	if err != nil {
		return nil, newError(op, ErrConversion, err)
	}
	cr := outline.Corrector{MinArea: opts.MinArea, RemoveOverlaps: !opts.KeepOverlaps}
	changed, err := cr.Correct(c)
	if err != nil {
		return nil, newError(op, ErrConversion, err)
	}
	if len(changed) == 0 {
		return changed, nil
	}
	f.adopt(c)
	if opts.KeepHinting {
		return changed, nil
	}
	if f.IsTT() {
		err = f.TTDehint()
	} else {
		err = f.PSDehint(false)
	}
	return changed, err
}

// ScaleUPM scales the font to target units per em, which has to be in the
// range 16…16384. Nothing is done if the font already has target units per em.
// Variable fonts are not supported.
func (f *Font) ScaleUPM(target int) error {
	const op = "scale units per em"
	if target < outline.MinUPM || target > outline.MaxUPM {
		return errorf(op, ErrConversion, "units per em %d not in range %d…%d", target, outline.MinUPM, outline.MaxUPM)
	}
	head, err := f.Head()
	if err != nil {
		return err
	}
	if int(head.UnitsPerEm()) == target {
		return nil
	}
	if f.IsVariable() {
		return errorf(op, ErrConversion, "variable fonts are not supported")
	}
	return f.convertCopy(op, func(c *ot.Font) error {
		return outline.ScaleUPM(c, target)
	})
}

// --- Measurement -----------------------------------------------------------

// DefaultMinSlant is the slant in degrees below which fonts count as upright.
const DefaultMinSlant = 2.0

// italicAngleGlyph returns the glyph the italic angle is measured at.
func (f *Font) italicAngleGlyph() (ot.GlyphIndex, bool) {
	for _, name := range []string{"H", "uni0048"} {
		if gid, ok := otquery.GlyphIndexByName(f.otf, name); ok {
			return gid, true
		}
	}
	gid, ok := otquery.BestCMap(f.otf)['H']
	return gid, ok && gid != 0
}

// CalcItalicAngle measures the italic angle of the font at glyph 'H' (or
// 'uni0048'). The angle is given in degrees, negative for fonts leaning to
// the right. Angles smaller than minSlant in magnitude are reported as 0.
func (f *Font) CalcItalicAngle(minSlant float64) (float64, error) {
	const op = "calculate italic angle"
	gid, ok := f.italicAngleGlyph()
	if !ok {
		return 0, errorf(op, ErrMissingGlyph, "font has no glyph 'H' or 'uni0048'")
	}
	m, err := outline.NewMeasurer(f.otf)
	if err != nil {
		return 0, newError(op, nil, err)
	}
	stats, err := m.Measure(gid)
	if err != nil {
		return 0, newError(op, nil, err)
	}
	angle := -math.Atan(stats.Slant) * 180 / math.Pi
	if math.Abs(angle) < math.Abs(minSlant) {
		return 0, nil
	}
	tracer().Debugf("italic angle measured at glyph %d is %.2f°", gid, angle)
	return angle, nil
}

// CheckResult is the outcome of a single check of FixItalicAngle.
type CheckResult struct {
	Old  any
	New  any
	Pass bool
}

// Keys of the results of FixItalicAngle.
const (
	CheckItalic         = "is_italic"
	CheckOblique        = "is_oblique"
	CheckItalicAngle    = "italic_angle"
	CheckRunRise        = "run_rise"
	CheckCFFItalicAngle = "cff_italic_angle"
)

func otRound(v float64) int {
	return int(math.Floor(v + 0.5))
}

// FixItalicAngle measures the italic angle of the font and fixes the values
// which do not match it: the italic and oblique flags, post.italicAngle, the
// caret slope of hhea and, for PostScript fonts, the italic angle of the CFF
// Top DICT. If italic is set, fonts with a non-zero italic angle are flagged
// as italic; if oblique is set, they are flagged as oblique (for OS/2
// version 4 and later). The result reports old and new values of every
// check.
func (f *Font) FixItalicAngle(minSlant float64, italic, oblique bool) (map[string]CheckResult, error) {
	const op = "fix italic angle"
	post, err := f.Post()
	if err != nil {
		return nil, err
	}
	hhea, err := f.HHea()
	if err != nil {
		return nil, err
	}
	os2, err := f.OS2()
	if err != nil {
		return nil, err
	}
	flags := f.Flags()
	isItalic, err := flags.IsItalic()
	if err != nil {
		return nil, err
	}
	isOblique, err := flags.IsOblique()
	if err != nil {
		return nil, err
	}
	slant, err := f.CalcItalicAngle(minSlant)
	if err != nil {
		return nil, err
	}
	result := make(map[string]CheckResult)
	shouldBeItalic := italic && slant != 0
	if isItalic != shouldBeItalic {
		if err := flags.SetItalic(shouldBeItalic); err != nil {
			return nil, err
		}
	}
	result[CheckItalic] = CheckResult{Old: isItalic, New: shouldBeItalic, Pass: isItalic == shouldBeItalic}
	shouldBeOblique := oblique && slant != 0 && os2.Version() >= 4
	if isOblique != shouldBeOblique {
		if err := flags.SetOblique(shouldBeOblique); err != nil {
			return nil, err
		}
	}
	result[CheckOblique] = CheckResult{Old: isOblique, New: shouldBeOblique, Pass: isOblique == shouldBeOblique}
	postAngle := post.ItalicAngle()
	pass := otRound(postAngle) == otRound(slant)
	if !pass {
		post.SetItalicAngle(slant)
	}
	result[CheckItalicAngle] = CheckResult{Old: postAngle, New: slant, Pass: pass}
	oldRunRise := [2]int16{hhea.CaretSlopeRun(), hhea.CaretSlopeRise()}
	newRunRise := [2]int16{hhea.CalcCaretSlopeRun(slant), hhea.CalcCaretSlopeRise(slant)}
	pass = otRound(hhea.RunRiseAngle()) == otRound(slant)
	if !pass {
		hhea.SetCaretSlopeRun(newRunRise[0])
		hhea.SetCaretSlopeRise(newRunRise[1])
	}
	result[CheckRunRise] = CheckResult{Old: oldRunRise, New: newRunRise, Pass: pass}
	if f.IsPS() {
		cff, err := f.CFF()
		if err != nil {
			return nil, err
		}
		cffAngle := cff.ItalicAngle()
		pass = otRound(cffAngle) == otRound(slant)
		if !pass {
			cff.SetItalicAngle(float64(otRound(slant)))
		}
		result[CheckCFFItalicAngle] = CheckResult{Old: cffAngle, New: slant, Pass: pass}
	}
	tracer().Infof("%s: measured %.2f°", op, slant)
	return result, nil
}

// Bounds is the bounding box of a glyph, in font units.
type Bounds struct {
	XMin, YMin, XMax, YMax float64
}

// GlyphBounds returns the bounding box of the outline of a glyph. Glyphs
// without contours have an empty bounding box.
func (f *Font) GlyphBounds(name string) (Bounds, error) {
	const op = "glyph bounds"
	gid, ok := otquery.GlyphIndexByName(f.otf, name)
	if !ok {
		return Bounds{}, errorf(op, ErrMissingGlyph, "glyph %q", name)
	}
	path, err := outline.GlyphPath(f.otf, gid)
	if err != nil {
		return Bounds{}, newError(op, nil, err)
	}
	var b Bounds
	for i, c := range path {
		lo, hi := c.Bounds()
		if i == 0 {
			b = Bounds{lo.X, lo.Y, hi.X, hi.Y}
			continue
		}
		b.XMin, b.YMin = math.Min(b.XMin, lo.X), math.Min(b.YMin, lo.Y)
		b.XMax, b.YMax = math.Max(b.XMax, hi.X), math.Max(b.YMax, hi.Y)
	}
	return b, nil
}

// --- Hinting ---------------------------------------------------------------

// trueTypeHintingTables are removed by TTDehint.
var trueTypeHintingTables = []string{"fpgm", "prep", "cvt ", "hdmx", "LTSH", "VDMX"}

// TTAutohint hints a TrueType font with the font's hinting engine (by
// default the ttfautohint program). The modification time of the font and
// its container format are kept.
func (f *Font) TTAutohint(ctx context.Context) error {
	const op = "autohint"
	if !f.IsTT() {
		return errorf(op, ErrConversion, "autohinting requires TrueType outlines")
	}
	var hinted *ot.Font
	err := f.withSFNT(func() error {
		data, err := ot.Serialize(f.otf, ot.None[bool]())
		if err != nil {
			return newError(op, nil, err)
		}
		out, err := f.opts.hinter.Autohint(ctx, data)
		if err != nil {
			return newError(op, ErrExternal, err)
		}
		if hinted, err = ot.Parse(out); err != nil {
			return newError(op, ErrExternal, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if head := hinted.Lookup(ot.T("head")).AsHead(); head != nil {
		if old := f.otf.Lookup(ot.T("head")).AsHead(); old != nil {
			head.Modified = old.Modified
		}
	}
	f.adopt(hinted)
	return nil
}

// TTDehint removes the hinting of a TrueType font: the hinting tables and the
// instructions of all glyphs.
func (f *Font) TTDehint() error {
	const op = "remove TrueType hinting"
	if !f.IsTT() {
		return errorf(op, ErrConversion, "font does not have TrueType outlines")
	}
	for _, tag := range trueTypeHintingTables {
		f.otf.RemoveTable(ot.T(tag))
	}
	if f.otf.HasTable(ot.T("glyf")) {
		glyf, err := f.Glyf()
		if err != nil {
			return err
		}
		if _, err := glyf.RemoveInstructions(); err != nil {
			return newError(op, nil, err)
		}
	}
	if maxp := f.otf.Lookup(ot.T("maxp")).AsMaxP(); maxp != nil && maxp.Version == ot.MaxPVersion10 {
		maxp.MaxZones = 1
		maxp.MaxTwilightPoints, maxp.MaxStorage = 0, 0
		maxp.MaxFunctionDefs, maxp.MaxInstructionDefs = 0, 0
		maxp.MaxStackElements, maxp.MaxSizeOfInstructions = 0, 0
	}
	f.dropStaleWrappers()
	return nil
}

// PSDehint removes the hints of the charstrings of a PostScript font. If
// dropHintingData is set, the hinting values of the Private DICT are dropped
// as well.
func (f *Font) PSDehint(dropHintingData bool) error {
	const op = "remove PostScript hinting"
	if !f.IsPS() {
		return errorf(op, ErrConversion, "font does not have PostScript outlines")
	}
	cff, err := f.CFF()
	if err != nil {
		return err
	}
	n := cff.RemoveHinting(dropHintingData)
	tracer().Debugf("removed hints of %d glyphs", n)
	return nil
}
