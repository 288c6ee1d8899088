package ot

import (
	"fmt"
	"io"
	"slices"
	"time"
)

// encodedTable is a serialized table, ready to be placed into a container.
type encodedTable struct {
	tag      Tag
	data     []byte
	checksum uint32
}

// Recommended order of table data, see
// https://docs.microsoft.com/en-us/typography/opentype/spec/recom#optimized-table-ordering
var (
	trueTypeTableOrder = []string{
		"head", "hhea", "maxp", "OS/2", "hmtx", "LTSH", "VDMX", "hdmx", "cmap",
		"fpgm", "prep", "cvt ", "loca", "glyf", "kern", "name", "post", "gasp", "PCLT",
	}
	cffTableOrder = []string{
		"head", "hhea", "maxp", "OS/2", "name", "cmap", "post", "CFF ",
	}
)

// Write serializes a font to w, in the container format selected by otf.Flavor.
//
// reorder selects the order of the table data within the file:
// Some(true) sorts tables by tag, Some(false) keeps the order the tables have
// been read in, and None uses the order recommended by the OpenType
// specification for the font's outline format. The table directory is always
// sorted by tag.
//
// Write keeps interdependent tables in sync: glyf and loca, hmtx and hhea, the glyph
// count of maxp, head.indexToLocFormat, checksums and head.checkSumAdjustment.
// If otf.RecalcBBoxes is set, bounding boxes of glyphs and of the font as well as
// the maxp profile are recalculated; if otf.RecalcTimestamp is set, head.modified
// is set to the current time.
func Write(w io.Writer, otf *Font, reorder Option[bool]) error {
	b, err := Serialize(otf, reorder)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Serialize is like Write, but returns the bytes of the font file.
func Serialize(otf *Font, reorder Option[bool]) ([]byte, error) {
	if otf == nil || otf.Header == nil {
		return nil, errFontFormat("font without header")
	}
	if err := syncTables(otf); err != nil {
		return nil, err
	}
	tags := tableOrder(otf, reorder)
	tables := make([]encodedTable, 0, len(tags))
	for _, tag := range tags {
		data, err := otf.tables[tag].Encode()
		if err != nil {
			return nil, fmt.Errorf("encoding table '%s': %w", tag, err)
		}
		tables = append(tables, encodedTable{tag: tag, data: data})
	}
	h := *otf.Header
	h.TableCount = uint16(len(tables))
	sfnt, err := writeSFNT(h, tables)
	if err != nil {
		return nil, err
	}
	if head := otf.Lookup(T("head")).AsHead(); head != nil {
		for _, t := range tables {
			if t.tag == T("head") {
				head.CheckSumAdjustment = u32(t.data[8:])
			}
		}
	}
	tracer().Debugf("serialized %d tables as %s", len(tables), otf.Flavor)
	switch otf.Flavor {
	case FlavorWOFF:
		return writeWOFF(h, tables, len(sfnt))
	case FlavorWOFF2:
		return writeWOFF2(h, tables, len(sfnt))
	}
	return sfnt, nil
}

// syncTables brings dependent table fields up to date before encoding.
func syncTables(otf *Font) error {
	head := otf.Lookup(T("head")).AsHead()
	if head != nil && otf.RecalcTimestamp {
		head.SetModifiedTime(time.Now())
	}
	maxp := otf.Lookup(T("maxp")).AsMaxP()
	if glyf := otf.Lookup(T("glyf")).AsGlyf(); glyf != nil && glyf.entries != nil {
		if otf.RecalcBBoxes {
			if err := glyf.recalcBounds(); err != nil {
				return fmt.Errorf("recalculating glyph bounds: %w", err)
			}
		}
		_, offsets, err := glyf.build()
		if err != nil {
			return err
		}
		if loca := otf.Lookup(T("loca")).AsLoca(); loca != nil && offsets != nil {
			loca.setOffsets(offsets)
			if head != nil {
				head.IndexToLocFormat = 0
				if loca.Long {
					head.IndexToLocFormat = 1
				}
			}
		}
		if maxp != nil {
			maxp.NumGlyphs = uint16(glyf.NumGlyphs())
			if otf.RecalcBBoxes && maxp.Version == MaxPVersion10 {
				if err := recalcMaxPProfile(maxp, glyf); err != nil {
					return err
				}
			}
		}
		if head != nil && otf.RecalcBBoxes {
			head.XMin, head.YMin, head.XMax, head.YMax = glyf.fontBounds()
		}
	}
	if cff := otf.Lookup(T("CFF ")).AsCFF(); cff != nil && (cff.changed || otf.RecalcBBoxes) {
		f, err := cff.CFF()
		if err != nil {
			return fmt.Errorf("table 'CFF ': %w", err)
		}
		if maxp != nil {
			maxp.NumGlyphs = uint16(f.NumGlyphs())
		}
		if otf.RecalcBBoxes {
			bbox, err := f.FontBBox()
			if err != nil {
				return fmt.Errorf("table 'CFF ': %w", err)
			}
			if head != nil {
				head.XMin, head.YMin = int16(bbox[0]), int16(bbox[1])
				head.XMax, head.YMax = int16(bbox[2]), int16(bbox[3])
			}
		}
	}
	if hmtx := otf.Lookup(T("hmtx")).AsHMtx(); hmtx != nil && hmtx.metrics != nil {
		if _, err := hmtx.Encode(); err != nil {
			return err
		}
		if hhea := otf.Lookup(T("hhea")).AsHHea(); hhea != nil {
			hhea.NumberOfHMetrics = uint16(hmtx.NumberOfHMetrics)
		}
	}
	return nil
}

// fontBounds returns the union of the bounding boxes of all non-empty glyphs.
func (t *GlyfTable) fontBounds() (xmin, ymin, xmax, ymax int16) {
	first := true
	for i := range t.entries {
		x0, y0, x1, y1, ok, err := t.Bounds(GlyphIndex(i))
		if err != nil || !ok {
			continue
		}
		if first {
			xmin, ymin, xmax, ymax, first = x0, y0, x1, y1, false
			continue
		}
		xmin, ymin = min(xmin, x0), min(ymin, y0)
		xmax, ymax = max(xmax, x1), max(ymax, y1)
	}
	return
}

// recalcMaxPProfile recalculates the fields of maxp 1.0 which depend on glyph data.
// Fields concerning the hinting program are left untouched.
func recalcMaxPProfile(maxp *MaxPTable, glyf *GlyfTable) error {
	var points, contours, cpoints, ccontours, elements, depth int
	for i := range glyf.entries {
		gid := GlyphIndex(i)
		g, err := glyf.Glyph(gid)
		if err != nil {
			return fmt.Errorf("glyph %d: %w", gid, err)
		}
		if !g.IsComposite() {
			points = max(points, len(g.Points))
			contours = max(contours, len(g.EndPoints))
			continue
		}
		elements = max(elements, len(g.Components))
		c, err := glyf.Contours(gid)
		if err != nil {
			return fmt.Errorf("glyph %d: %w", gid, err)
		}
		n := 0
		for _, cont := range c {
			n += len(cont)
		}
		cpoints = max(cpoints, n)
		ccontours = max(ccontours, len(c))
		d, err := glyf.componentDepth(gid, 1)
		if err != nil {
			return fmt.Errorf("glyph %d: %w", gid, err)
		}
		depth = max(depth, d)
	}
	maxp.MaxPoints = uint16(points)
	maxp.MaxContours = uint16(contours)
	maxp.MaxCompositePoints = uint16(cpoints)
	maxp.MaxCompositeContours = uint16(ccontours)
	maxp.MaxComponentElements = uint16(elements)
	maxp.MaxComponentDepth = uint16(depth)
	return nil
}

// componentDepth returns the nesting level of a composite glyph.
func (t *GlyfTable) componentDepth(gid GlyphIndex, level int) (int, error) {
	if level > MaxComponentDepth {
		return 0, ErrComponentDepth
	}
	g, err := t.Glyph(gid)
	if err != nil {
		return 0, err
	}
	depth := 0
	for _, c := range g.Components {
		cg, err := t.Glyph(c.Glyph)
		if err != nil {
			return 0, err
		}
		if !cg.IsComposite() {
			depth = max(depth, level)
			continue
		}
		d, err := t.componentDepth(c.Glyph, level+1)
		if err != nil {
			return 0, err
		}
		depth = max(depth, d)
	}
	return depth, nil
}

// tableOrder returns the tags of all tables in the order their data is written.
func tableOrder(otf *Font, reorder Option[bool]) []Tag {
	tags := otf.TableTags()
	sortByTag, ok := reorder.Unwrap()
	switch {
	case ok && !sortByTag:
		return tags
	case ok && sortByTag:
		slices.Sort(tags)
		return tags
	}
	preferred := trueTypeTableOrder
	if otf.IsCFF() || otf.HasTable(T("CFF ")) {
		preferred = cffTableOrder
	}
	ordered := make([]Tag, 0, len(tags))
	for _, name := range preferred {
		if tag := T(name); otf.HasTable(tag) {
			ordered = append(ordered, tag)
		}
	}
	rest := slices.DeleteFunc(tags, func(t Tag) bool { return slices.Contains(ordered, t) })
	slices.Sort(rest)
	return append(ordered, rest...)
}

// writeSFNT lays out tables as a plain OpenType file. It calculates table checksums
// and sets checkSumAdjustment of table head, patching the table data in place.
func writeSFNT(h FontHeader, tables []encodedTable) ([]byte, error) {
	n := len(tables)
	dirSize := 12 + 16*n
	size := dirSize
	offsets := make(map[Tag]uint32, n)
	headIndex := -1
	for i := range tables {
		if tables[i].tag == T("head") {
			if len(tables[i].data) < 12 {
				return nil, errFontFormat("head table truncated")
			}
			tables[i].data = slices.Clone(tables[i].data)
			w := &binaryWriter{buf: tables[i].data[:8]}
			w.u32(0) // checkSumAdjustment is calculated with a value of 0
			headIndex = i
		}
		tables[i].checksum = checksum(tables[i].data)
		offsets[tables[i].tag] = uint32(size)
		size += (len(tables[i].data) + 3) &^ 3
		if size < 0 || uint64(size) > 0xFFFFFFFF {
			return nil, errFontFormat("font too large")
		}
	}
	w := newBinaryWriter(size)
	w.u32(h.FontType)
	w.u16(uint16(n))
	searchRange, entrySelector, rangeShift := binarySearchParams(n, 16)
	w.u16(searchRange)
	w.u16(entrySelector)
	w.u16(rangeShift)
	for _, t := range sortedByTag(tables) {
		w.u32(uint32(t.tag))
		w.u32(t.checksum)
		w.u32(offsets[t.tag])
		w.u32(uint32(len(t.data)))
	}
	for _, t := range tables {
		w.bytes(t.data)
		w.pad(4)
	}
	b := w.Bytes()
	if headIndex >= 0 {
		adjustment := 0xB1B0AFBA - checksum(b)
		at := offsets[T("head")] + 8
		pw := &binaryWriter{buf: b[:at]}
		pw.u32(adjustment)
		pw = &binaryWriter{buf: tables[headIndex].data[:8]}
		pw.u32(adjustment)
	}
	return b, nil
}

// sortedByTag returns a copy of tables, sorted by tag as required for table directories.
func sortedByTag(tables []encodedTable) []encodedTable {
	sorted := slices.Clone(tables)
	slices.SortFunc(sorted, func(a, b encodedTable) int {
		return int(int64(a.tag) - int64(b.tag))
	})
	return sorted
}

// checksum calculates the OpenType table checksum: the sum of the data taken
// as big-endian uint32 values, zero-padded to a multiple of 4 bytes.
func checksum(b []byte) uint32 {
	var sum uint32
	for len(b) >= 4 {
		sum += u32(b)
		b = b[4:]
	}
	if len(b) > 0 {
		var tail [4]byte
		copy(tail[:], b)
		sum += u32(tail[:])
	}
	return sum
}
