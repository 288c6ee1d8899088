package ot

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// LocaTable stores the offsets to the locations of the glyphs in the font,
// relative to the beginning of the glyph data table. It has one more entry than
// there are glyphs, so the length of glyph i is Offsets[i+1] - Offsets[i].
//
// Dependencies (taken from Apple Developer page about TrueType):
// The size of entries in the 'loca' table must be appropriate for the value of the
// indexToLocFormat field of the 'head' table. The number of entries must be the same
// as the numGlyphs field of the 'maxp' table.
// The 'loca' table is most intimately dependent upon the contents of the 'glyf' table
// and vice versa. Write keeps both in sync.
type LocaTable struct {
	tableBase
	Offsets []uint32
	Long    bool // long (32-bit) offsets, head.indexToLocFormat = 1
}

func newLocaTable(tag Tag, b binarySegm, offset, size uint32) *LocaTable {
	t := &LocaTable{}
	base := tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.tableBase = base
	t.self = t
	return t
}

// NewLocaTable creates an empty loca table. Its offsets are set by Write from
// table glyf.
func NewLocaTable() *LocaTable {
	return newLocaTable(T("loca"), nil, 0, 0)
}

func parseLoca(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	return newLocaTable(tag, b, offset, size), nil
}

// decode reads the offsets. It is called after tables head and maxp are available.
func (t *LocaTable) decode(numGlyphs int, long bool) error {
	t.Long = long
	n := numGlyphs + 1
	entry := 2
	if long {
		entry = 4
	}
	if len(t.data) < n*entry {
		return fmt.Errorf("loca table too small for %d glyphs", numGlyphs)
	}
	t.Offsets = make([]uint32, n)
	for i := range t.Offsets {
		if long {
			t.Offsets[i] = u32(t.data[i*4:])
		} else {
			t.Offsets[i] = uint32(u16(t.data[i*2:])) * 2
		}
		if i > 0 && t.Offsets[i] < t.Offsets[i-1] {
			return fmt.Errorf("loca offsets not ascending at glyph %d", i)
		}
	}
	return nil
}

// setOffsets sets new offsets and selects the shortest format able to hold them.
func (t *LocaTable) setOffsets(offsets []uint32) {
	t.Offsets = offsets
	t.Long = false
	for _, off := range offsets {
		if off&1 != 0 || off > 0x1FFFE {
			t.Long = true
			break
		}
	}
}

// Encode serializes table loca in the format indicated by Long.
func (t *LocaTable) Encode() ([]byte, error) {
	if t.Long {
		w := newBinaryWriter(4 * len(t.Offsets))
		for _, off := range t.Offsets {
			w.u32(off)
		}
		return w.Bytes(), nil
	}
	w := newBinaryWriter(2 * len(t.Offsets))
	for _, off := range t.Offsets {
		if off&1 != 0 || off > 0x1FFFE {
			return nil, fmt.Errorf("loca offset %d cannot be stored in short format", off)
		}
		w.u16(uint16(off / 2))
	}
	return w.Bytes(), nil
}

// --- glyf ------------------------------------------------------------------

// GlyfTable contains the data that defines the appearance of the glyphs in the
// font, i.e., TrueType outlines.
//
// Glyphs are kept as bytes. Glyph decodes a glyph on demand, and SetGlyph replaces
// a glyph with a decoded (and possibly changed) version, which Encode will serialize.
// Glyphs never set are written back unchanged.
type GlyfTable struct {
	tableBase
	entries []glyfEntry
}

type glyfEntry struct {
	raw   []byte
	glyph *Glyph // non-nil if replaced by a client
}

// MaxComponentDepth is the maximum nesting of composite glyphs we follow.
const MaxComponentDepth = 8

// ErrComponentDepth is returned for composite glyphs nested too deeply or recursively.
var ErrComponentDepth = errors.New("composite glyphs too deeply nested")

func newGlyfTable(tag Tag, b binarySegm, offset, size uint32) *GlyfTable {
	t := &GlyfTable{}
	base := tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.tableBase = base
	t.self = t
	return t
}

// NewGlyfTable creates a glyf table from glyphs.
func NewGlyfTable(glyphs []*Glyph) *GlyfTable {
	t := newGlyfTable(T("glyf"), nil, 0, 0)
	for _, g := range glyphs {
		t.entries = append(t.entries, glyfEntry{glyph: g})
	}
	return t
}

func parseGlyf(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	return newGlyfTable(tag, b, offset, size), nil
}

// decode splits the glyph data along the offsets of table loca.
func (t *GlyfTable) decode(loca *LocaTable) error {
	if len(loca.Offsets) == 0 {
		return nil
	}
	t.entries = make([]glyfEntry, len(loca.Offsets)-1)
	for i := range t.entries {
		start, end := loca.Offsets[i], loca.Offsets[i+1]
		if end > uint32(len(t.data)) {
			return fmt.Errorf("glyph %d exceeds glyf table", i)
		}
		t.entries[i].raw = t.data[start:end]
	}
	return nil
}

// NumGlyphs returns the number of glyphs in the table.
func (t *GlyfTable) NumGlyphs() int {
	return len(t.entries)
}

// Glyph decodes a glyph. The returned glyph is a copy; changes have to be stored
// with SetGlyph. An empty glyph (no outline) is returned as a Glyph without contours.
func (t *GlyfTable) Glyph(gid GlyphIndex) (*Glyph, error) {
	if int(gid) >= len(t.entries) {
		return nil, fmt.Errorf("glyph %d: %w", gid, ErrMissingGlyph)
	}
	e := t.entries[gid]
	if e.glyph != nil {
		return e.glyph.Clone(), nil
	}
	return decodeGlyph(e.raw)
}

// SetGlyph replaces a glyph. Glyph indices beyond the current glyph count extend
// the table with empty glyphs.
func (t *GlyfTable) SetGlyph(gid GlyphIndex, g *Glyph) {
	for int(gid) >= len(t.entries) {
		t.entries = append(t.entries, glyfEntry{raw: []byte{}})
	}
	t.entries[gid] = glyfEntry{glyph: g}
}

// Truncate reduces the table to n glyphs.
func (t *GlyfTable) Truncate(n int) {
	if n < len(t.entries) {
		t.entries = t.entries[:n]
	}
}

// IsComposite reports whether a glyph is a composite glyph, without decoding it.
func (t *GlyfTable) IsComposite(gid GlyphIndex) bool {
	if int(gid) >= len(t.entries) {
		return false
	}
	if g := t.entries[gid].glyph; g != nil {
		return g.IsComposite()
	}
	raw := t.entries[gid].raw
	return len(raw) >= 2 && int16(u16(raw)) < 0
}

// ComponentGlyphs returns the glyphs referenced by a composite glyph.
func (t *GlyfTable) ComponentGlyphs(gid GlyphIndex) ([]GlyphIndex, error) {
	g, err := t.Glyph(gid)
	if err != nil {
		return nil, err
	}
	deps := make([]GlyphIndex, 0, len(g.Components))
	for _, c := range g.Components {
		deps = append(deps, c.Glyph)
	}
	return deps, nil
}

// Contours returns the outline of a glyph with all components resolved, in font
// units. Composite glyphs must reference components by offset.
func (t *GlyfTable) Contours(gid GlyphIndex) ([][]GlyphPoint, error) {
	return t.contours(gid, 0)
}

func (t *GlyfTable) contours(gid GlyphIndex, level int) ([][]GlyphPoint, error) {
	if level > MaxComponentDepth {
		return nil, fmt.Errorf("glyph %d: %w", gid, ErrComponentDepth)
	}
	g, err := t.Glyph(gid)
	if err != nil {
		return nil, err
	}
	if !g.IsComposite() {
		return g.Contours(), nil
	}
	var contours [][]GlyphPoint
	for _, c := range g.Components {
		if !c.ArgsAreXY() {
			return nil, fmt.Errorf("glyph %d: components anchored by point numbers not supported", gid)
		}
		sub, err := t.contours(c.Glyph, level+1)
		if err != nil {
			return nil, err
		}
		for _, contour := range sub {
			transformed := make([]GlyphPoint, len(contour))
			for i, p := range contour {
				transformed[i] = c.apply(p)
			}
			contours = append(contours, transformed)
		}
	}
	return contours, nil
}

// Bounds returns the bounding box of a glyph, resolving components.
// ok is false for glyphs without outline.
func (t *GlyfTable) Bounds(gid GlyphIndex) (xmin, ymin, xmax, ymax int16, ok bool, err error) {
	contours, err := t.Contours(gid)
	if err != nil {
		return 0, 0, 0, 0, false, err
	}
	xmin, ymin, xmax, ymax, ok = pointBounds(contours)
	return
}

func pointBounds(contours [][]GlyphPoint) (xmin, ymin, xmax, ymax int16, ok bool) {
	xmin, ymin = math.MaxInt16, math.MaxInt16
	xmax, ymax = math.MinInt16, math.MinInt16
	for _, c := range contours {
		for _, p := range c {
			xmin, xmax = min(xmin, p.X), max(xmax, p.X)
			ymin, ymax = min(ymin, p.Y), max(ymax, p.Y)
			ok = true
		}
	}
	if !ok {
		return 0, 0, 0, 0, false
	}
	return
}

// recalcBounds updates the bounding boxes of all glyphs. Bounding boxes of glyphs
// not replaced by clients are patched in place.
func (t *GlyfTable) recalcBounds() error {
	for i := range t.entries {
		gid := GlyphIndex(i)
		xmin, ymin, xmax, ymax, ok, err := t.Bounds(gid)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if g := t.entries[i].glyph; g != nil {
			g.XMin, g.YMin, g.XMax, g.YMax = xmin, ymin, xmax, ymax
			continue
		}
		raw := t.entries[i].raw
		if len(raw) < 10 {
			continue
		}
		if int16(u16(raw[2:])) == xmin && int16(u16(raw[4:])) == ymin &&
			int16(u16(raw[6:])) == xmax && int16(u16(raw[8:])) == ymax {
			continue
		}
		patched := slices.Clone(raw)
		w := &binaryWriter{buf: patched[:2]}
		w.i16(xmin)
		w.i16(ymin)
		w.i16(xmax)
		w.i16(ymax)
		t.entries[i].raw = patched
	}
	return nil
}

// build serializes all glyphs and returns the glyph data together with the
// offsets for table loca.
func (t *GlyfTable) build() ([]byte, []uint32, error) {
	if t.entries == nil && len(t.data) > 0 {
		return t.data, nil, nil // not decoded
	}
	w := newBinaryWriter(len(t.data))
	offsets := make([]uint32, 0, len(t.entries)+1)
	for i, e := range t.entries {
		offsets = append(offsets, uint32(w.Len()))
		if e.glyph == nil {
			w.bytes(e.raw)
			w.pad(2)
			continue
		}
		b, err := e.glyph.encode()
		if err != nil {
			return nil, nil, fmt.Errorf("glyph %d: %w", i, err)
		}
		w.bytes(b)
		w.pad(4)
	}
	offsets = append(offsets, uint32(w.Len()))
	return w.Bytes(), offsets, nil
}

// Encode serializes table glyf. Table loca has to be re-computed from the same
// glyph data, which Write takes care of.
func (t *GlyfTable) Encode() ([]byte, error) {
	data, _, err := t.build()
	return data, err
}

// --- Glyph -----------------------------------------------------------------

// Glyph is a decoded TrueType glyph, either simple (with contours) or composite.
type Glyph struct {
	XMin, YMin, XMax, YMax int16
	EndPoints              []uint16     // last point index of each contour
	Points                 []GlyphPoint // simple glyphs
	Components             []GlyphComponent
	Instructions           []byte
}

// GlyphPoint is a point of a glyph contour in font units.
type GlyphPoint struct {
	X, Y    int16
	OnCurve bool
}

// Flags of composite glyph components.
const (
	ArgsAreWords            uint16 = 0x0001
	ArgsAreXYValues         uint16 = 0x0002
	RoundXYToGrid           uint16 = 0x0004
	WeHaveAScale            uint16 = 0x0008
	MoreComponents          uint16 = 0x0020
	WeHaveAnXAndYScale      uint16 = 0x0040
	WeHaveATwoByTwo         uint16 = 0x0080
	WeHaveInstructions      uint16 = 0x0100
	UseMyMetrics            uint16 = 0x0200
	OverlapCompound         uint16 = 0x0400
	ScaledComponentOffset   uint16 = 0x0800
	UnscaledComponentOffset uint16 = 0x1000
)

// GlyphComponent references another glyph from a composite glyph.
// Transform holds the 2x2 matrix (xx, xy, yx, yy) as F2Dot14 values; which of its
// entries are stored is derived from the matrix on encoding. A zero matrix is
// taken as identity.
type GlyphComponent struct {
	Glyph      GlyphIndex
	Flags      uint16
	Arg1, Arg2 int32 // x/y offset or point numbers
	Transform  [4]int16
}

// ArgsAreXY reports whether Arg1 and Arg2 are offsets rather than point numbers.
func (c GlyphComponent) ArgsAreXY() bool {
	return c.Flags&ArgsAreXYValues != 0
}

// HasTransform reports whether the component is scaled or transformed.
func (c GlyphComponent) HasTransform() bool {
	return c.Flags&(WeHaveAScale|WeHaveAnXAndYScale|WeHaveATwoByTwo) != 0
}

func (c GlyphComponent) matrix() [4]int16 {
	if c.Transform == [4]int16{} {
		return [4]int16{1 << 14, 0, 0, 1 << 14}
	}
	return c.Transform
}

func (c GlyphComponent) apply(p GlyphPoint) GlyphPoint {
	x, y := float64(p.X), float64(p.Y)
	if m := c.matrix(); m != [4]int16{1 << 14, 0, 0, 1 << 14} {
		xx, xy := f2dot14(m[0]), f2dot14(m[1])
		yx, yy := f2dot14(m[2]), f2dot14(m[3])
		x, y = xx*x+yx*y, xy*x+yy*y
	}
	return GlyphPoint{
		X:       clampInt16(math.Round(x) + float64(c.Arg1)),
		Y:       clampInt16(math.Round(y) + float64(c.Arg2)),
		OnCurve: p.OnCurve,
	}
}

func f2dot14(v int16) float64 {
	return float64(v) / 16384
}

// F2Dot14 converts a float to 2.14 fixed format, as used for component transforms.
func F2Dot14(v float64) int16 {
	return clampInt16(math.Round(v * 16384))
}

func clampInt16(v float64) int16 {
	return int16(max(math.MinInt16, min(math.MaxInt16, v)))
}

// IsComposite reports whether the glyph is built from components.
func (g *Glyph) IsComposite() bool {
	return len(g.Components) > 0
}

// IsEmpty reports whether the glyph has neither contours nor components.
func (g *Glyph) IsEmpty() bool {
	return len(g.EndPoints) == 0 && len(g.Components) == 0
}

// Clone creates a deep copy of a glyph.
func (g *Glyph) Clone() *Glyph {
	c := *g
	c.EndPoints = slices.Clone(g.EndPoints)
	c.Points = slices.Clone(g.Points)
	c.Components = slices.Clone(g.Components)
	c.Instructions = slices.Clone(g.Instructions)
	return &c
}

// Contours returns the points of a simple glyph split into contours.
func (g *Glyph) Contours() [][]GlyphPoint {
	contours := make([][]GlyphPoint, 0, len(g.EndPoints))
	start := 0
	for _, end := range g.EndPoints {
		if int(end) >= len(g.Points) || int(end) < start {
			break
		}
		contours = append(contours, g.Points[start:int(end)+1])
		start = int(end) + 1
	}
	return contours
}

// SetContours replaces the outline of a glyph with contours, making it a simple
// glyph, and recalculates its bounding box.
func (g *Glyph) SetContours(contours [][]GlyphPoint) {
	g.Components = nil
	g.Points = g.Points[:0]
	g.EndPoints = g.EndPoints[:0]
	for _, c := range contours {
		if len(c) == 0 {
			continue
		}
		g.Points = append(g.Points, c...)
		g.EndPoints = append(g.EndPoints, uint16(len(g.Points)-1))
	}
	g.RecalcBounds()
}

// RecalcBounds sets the bounding box of a simple glyph from its points.
func (g *Glyph) RecalcBounds() {
	var ok bool
	g.XMin, g.YMin, g.XMax, g.YMax, ok = pointBounds([][]GlyphPoint{g.Points})
	if !ok {
		g.XMin, g.YMin, g.XMax, g.YMax = 0, 0, 0, 0
	}
}

func decodeGlyph(b binarySegm) (*Glyph, error) {
	g := &Glyph{}
	if len(b) == 0 {
		return g, nil
	}
	r := newFieldReader(b)
	numberOfContours := r.i16()
	g.XMin, g.YMin, g.XMax, g.YMax = r.i16(), r.i16(), r.i16(), r.i16()
	if r.err != nil {
		return nil, errFontFormat("glyph header")
	}
	if numberOfContours >= 0 {
		return g, decodeSimpleGlyph(g, r, int(numberOfContours))
	}
	return g, decodeCompositeGlyph(g, r)
}

func decodeSimpleGlyph(g *Glyph, r *fieldReader, numberOfContours int) error {
	if numberOfContours == 0 {
		return nil
	}
	g.EndPoints = make([]uint16, numberOfContours)
	for i := range g.EndPoints {
		g.EndPoints[i] = r.u16()
	}
	g.Instructions = slices.Clone(r.bytes(int(r.u16())))
	if r.err != nil {
		return errFontFormat("simple glyph header")
	}
	numPoints := int(g.EndPoints[numberOfContours-1]) + 1
	flags := make([]byte, numPoints)
	for i := 0; i < numPoints; i++ {
		flags[i] = r.u8()
		if flags[i]&0x08 != 0 { // REPEAT_FLAG
			repeat := int(r.u8())
			for j := 1; j <= repeat && i+j < numPoints; j++ {
				flags[i+j] = flags[i]
			}
			i += repeat
		}
	}
	g.Points = make([]GlyphPoint, numPoints)
	var x int16
	for i := range g.Points {
		switch f := flags[i]; {
		case f&0x02 != 0: // X_SHORT_VECTOR
			if f&0x10 != 0 {
				x += int16(r.u8())
			} else {
				x -= int16(r.u8())
			}
		case f&0x10 == 0:
			x += r.i16()
		}
		g.Points[i].X = x
		g.Points[i].OnCurve = flags[i]&0x01 != 0
	}
	var y int16
	for i := range g.Points {
		switch f := flags[i]; {
		case f&0x04 != 0: // Y_SHORT_VECTOR
			if f&0x20 != 0 {
				y += int16(r.u8())
			} else {
				y -= int16(r.u8())
			}
		case f&0x20 == 0:
			y += r.i16()
		}
		g.Points[i].Y = y
	}
	if r.err != nil {
		return errFontFormat("glyph coordinates exceed glyph data")
	}
	return nil
}

func decodeCompositeGlyph(g *Glyph, r *fieldReader) error {
	hasInstructions := false
	for {
		c := GlyphComponent{Flags: r.u16(), Glyph: GlyphIndex(r.u16())}
		if c.Flags&ArgsAreWords != 0 {
			if c.ArgsAreXY() {
				c.Arg1, c.Arg2 = int32(r.i16()), int32(r.i16())
			} else {
				c.Arg1, c.Arg2 = int32(r.u16()), int32(r.u16())
			}
		} else {
			if c.ArgsAreXY() {
				c.Arg1, c.Arg2 = int32(int8(r.u8())), int32(int8(r.u8()))
			} else {
				c.Arg1, c.Arg2 = int32(r.u8()), int32(r.u8())
			}
		}
		switch {
		case c.Flags&WeHaveAScale != 0:
			s := r.i16()
			c.Transform = [4]int16{s, 0, 0, s}
		case c.Flags&WeHaveAnXAndYScale != 0:
			c.Transform = [4]int16{r.i16(), 0, 0, r.i16()}
		case c.Flags&WeHaveATwoByTwo != 0:
			c.Transform = [4]int16{r.i16(), r.i16(), r.i16(), r.i16()}
		default:
			c.Transform = [4]int16{1 << 14, 0, 0, 1 << 14}
		}
		if r.err != nil {
			return errFontFormat("composite glyph component")
		}
		if c.Flags&WeHaveInstructions != 0 {
			hasInstructions = true
		}
		g.Components = append(g.Components, c)
		if c.Flags&MoreComponents == 0 {
			break
		}
	}
	if hasInstructions {
		g.Instructions = slices.Clone(r.bytes(int(r.u16())))
	}
	return r.err
}

func (g *Glyph) encode() ([]byte, error) {
	if g.IsEmpty() {
		return []byte{}, nil
	}
	w := newBinaryWriter(10 + 4*len(g.Points))
	if g.IsComposite() {
		w.i16(-1)
	} else {
		if len(g.EndPoints) > math.MaxInt16 {
			return nil, fmt.Errorf("too many contours: %d", len(g.EndPoints))
		}
		w.i16(int16(len(g.EndPoints)))
	}
	w.i16(g.XMin)
	w.i16(g.YMin)
	w.i16(g.XMax)
	w.i16(g.YMax)
	if g.IsComposite() {
		g.encodeComponents(w)
		return w.Bytes(), nil
	}
	if int(g.EndPoints[len(g.EndPoints)-1]) != len(g.Points)-1 {
		return nil, fmt.Errorf("contour end points do not match %d points", len(g.Points))
	}
	for _, e := range g.EndPoints {
		w.u16(e)
	}
	w.u16(uint16(len(g.Instructions)))
	w.bytes(g.Instructions)
	flags := make([]byte, len(g.Points))
	var xs, ys binaryWriter
	var prevX, prevY int16
	for i, p := range g.Points {
		var f byte
		if p.OnCurve {
			f |= 0x01
		}
		dx, dy := int(p.X)-int(prevX), int(p.Y)-int(prevY)
		prevX, prevY = p.X, p.Y
		switch {
		case dx == 0:
			f |= 0x10
		case dx >= -255 && dx <= 255:
			f |= 0x02
			if dx > 0 {
				f |= 0x10
			}
			xs.u8(uint8(abs(dx)))
		default:
			xs.i16(int16(dx))
		}
		switch {
		case dy == 0:
			f |= 0x20
		case dy >= -255 && dy <= 255:
			f |= 0x04
			if dy > 0 {
				f |= 0x20
			}
			ys.u8(uint8(abs(dy)))
		default:
			ys.i16(int16(dy))
		}
		flags[i] = f
	}
	for i := 0; i < len(flags); {
		j := i + 1
		for j < len(flags) && flags[j] == flags[i] && j-i <= 255 {
			j++
		}
		if repeat := j - i - 1; repeat > 0 {
			w.u8(flags[i] | 0x08)
			w.u8(uint8(repeat))
		} else {
			w.u8(flags[i])
		}
		i = j
	}
	w.bytes(xs.Bytes())
	w.bytes(ys.Bytes())
	return w.Bytes(), nil
}

func (g *Glyph) encodeComponents(w *binaryWriter) {
	for i, c := range g.Components {
		flags := c.Flags &^ (ArgsAreWords | MoreComponents | WeHaveInstructions |
			WeHaveAScale | WeHaveAnXAndYScale | WeHaveATwoByTwo)
		if c.ArgsAreXY() {
			if c.Arg1 < -128 || c.Arg1 > 127 || c.Arg2 < -128 || c.Arg2 > 127 {
				flags |= ArgsAreWords
			}
		} else if c.Arg1 > 255 || c.Arg2 > 255 {
			flags |= ArgsAreWords
		}
		m := c.matrix()
		switch {
		case m[1] != 0 || m[2] != 0:
			flags |= WeHaveATwoByTwo
		case m[0] != m[3]:
			flags |= WeHaveAnXAndYScale
		case m[0] != 1<<14:
			flags |= WeHaveAScale
		}
		if i < len(g.Components)-1 {
			flags |= MoreComponents
		} else if len(g.Instructions) > 0 {
			flags |= WeHaveInstructions
		}
		w.u16(flags)
		w.u16(uint16(c.Glyph))
		if flags&ArgsAreWords != 0 {
			w.u16(uint16(c.Arg1))
			w.u16(uint16(c.Arg2))
		} else {
			w.u8(uint8(c.Arg1))
			w.u8(uint8(c.Arg2))
		}
		switch {
		case flags&WeHaveATwoByTwo != 0:
			w.i16(m[0])
			w.i16(m[1])
			w.i16(m[2])
			w.i16(m[3])
		case flags&WeHaveAnXAndYScale != 0:
			w.i16(m[0])
			w.i16(m[3])
		case flags&WeHaveAScale != 0:
			w.i16(m[0])
		}
	}
	if len(g.Instructions) > 0 {
		w.u16(uint16(len(g.Instructions)))
		w.bytes(g.Instructions)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
