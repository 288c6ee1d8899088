package ot

import (
	"bytes"
	"fmt"
	"math"
	"slices"
)

// CMapTable represents an OpenType cmap table, i.e. the table to receive glyphs
// from code-points.
//
// See https://docs.microsoft.com/de-de/typography/opentype/spec/cmap
//
// A cmap table may contain more than one lookup table (sub-table). All sub-tables
// are kept. Sub-tables of formats 0, 4, 6, 10, 12 and 13 are decoded into a
// code-point to glyph mapping, which clients may change. Sub-tables of other
// formats (e.g., format 14, Unicode variation sequences) are carried along untouched.
type CMapTable struct {
	tableBase
	Version   uint16
	Subtables []*CMapSubtable
}

// CMapSubtable is a single character to glyph mapping of a cmap table.
type CMapSubtable struct {
	PlatformID uint16
	EncodingID uint16
	Format     uint16
	Language   uint32
	Mapping    map[rune]GlyphIndex // nil for formats not decoded
	raw        []byte              // sub-table bytes of formats not decoded
}

func newCMapTable(tag Tag, b binarySegm, offset, size uint32) *CMapTable {
	t := &CMapTable{}
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

// NewCMapTable creates an empty cmap table.
func NewCMapTable() *CMapTable {
	return newCMapTable(T("cmap"), nil, 0, 0)
}

// NewCMapSubtable creates a sub-table of a given platform, encoding and format
// with an empty mapping.
func NewCMapSubtable(platformID, encodingID, format uint16) *CMapSubtable {
	return &CMapSubtable{
		PlatformID: platformID,
		EncodingID: encodingID,
		Format:     format,
		Mapping:    make(map[rune]GlyphIndex),
	}
}

// IsUnicode reports whether the sub-table interprets character codes as Unicode
// code-points, i.e. platform Unicode or Windows with encoding Unicode BMP or full.
func (st *CMapSubtable) IsUnicode() bool {
	return st.PlatformID == 0 || (st.PlatformID == 3 && (st.EncodingID == 1 || st.EncodingID == 10))
}

// IsDecoded reports whether the sub-table has a mapping accessible to clients.
func (st *CMapSubtable) IsDecoded() bool {
	return st.Mapping != nil
}

// Lookup returns the glyph for a character code.
func (st *CMapSubtable) Lookup(r rune) (GlyphIndex, bool) {
	gid, ok := st.Mapping[r]
	return gid, ok
}

// Clone creates a deep copy of the sub-table.
func (st *CMapSubtable) Clone() *CMapSubtable {
	c := *st
	if st.Mapping != nil {
		c.Mapping = make(map[rune]GlyphIndex, len(st.Mapping))
		for r, g := range st.Mapping {
			c.Mapping[r] = g
		}
	}
	c.raw = slices.Clone(st.raw)
	return &c
}

// Subtable returns the first sub-table for a platform and encoding, or nil.
func (t *CMapTable) Subtable(platformID, encodingID uint16) *CMapSubtable {
	for _, st := range t.Subtables {
		if st.PlatformID == platformID && st.EncodingID == encodingID {
			return st
		}
	}
	return nil
}

// preferredSubtables lists platform/encoding pairs in the order of preference for
// a best-effort Unicode mapping.
var preferredSubtables = [][2]uint16{
	{3, 10}, {0, 6}, {0, 4}, {3, 1}, {0, 3}, {0, 2}, {0, 1}, {0, 0},
}

// BestMapping returns the mapping of the most appropriate Unicode sub-table,
// preferring full Unicode repertoire over BMP, and Windows over Unicode platform.
// If the table has no Unicode sub-table, nil is returned.
// The returned map is the sub-table's live mapping.
func (t *CMapTable) BestMapping() map[rune]GlyphIndex {
	if t == nil {
		return nil
	}
	for _, pe := range preferredSubtables {
		if st := t.Subtable(pe[0], pe[1]); st != nil && st.Mapping != nil {
			return st.Mapping
		}
	}
	return nil
}

// Lookup returns the glyph for a code-point from the best Unicode sub-table.
// If the code-point cannot be found, 0 is returned.
func (t *CMapTable) Lookup(r rune) GlyphIndex {
	return t.BestMapping()[r]
}

// ReverseLookup retrieves a code-point for a given glyph. The cmap tables do not
// support this operation, thus this operation is inefficient.
// If more than one code-point maps to the glyph, the smallest one is returned.
func (t *CMapTable) ReverseLookup(gid GlyphIndex) rune {
	if gid == 0 {
		return 0
	}
	found := rune(-1)
	for r, g := range t.BestMapping() {
		if g == gid && (found < 0 || r < found) {
			found = r
		}
	}
	if found < 0 {
		return 0
	}
	return found
}

// Clone creates a deep copy of the table's decoded state.
func (t *CMapTable) Clone() *CMapTable {
	c := newCMapTable(t.name, t.data, t.offset, t.length)
	c.Version = t.Version
	for _, st := range t.Subtables {
		c.Subtables = append(c.Subtables, st.Clone())
	}
	return c
}

// --- Parsing ---------------------------------------------------------------

// The various cmap formats are described at
// https://www.microsoft.com/typography/otspec/cmap.htm
//
// From the spec.: Of the seven available formats, not all are commonly used today.
// Formats 4 or 12 are appropriate for most new fonts, depending on the Unicode character
// repertoire supported. Format 14 is used in many applications for support of Unicode
// variation sequences. Some platforms also make use for format 13 for a last-resort
// fallback font.
func parseCMap(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	const headerSize, entrySize = 4, 8
	if size < headerSize {
		ec.addError(tag, "Header", "cmap header incomplete", SeverityCritical, offset)
		return nil, errFontFormat("size of cmap table")
	}
	n, _ := b.u16(2) // number of sub-tables
	tracer().Debugf("font cmap has %d sub-tables in %d|%d bytes", n, len(b), size)
	t := newCMapTable(tag, b, offset, size)
	t.Version, _ = b.u16(0)
	// Check for overflow in cmap size calculation
	entriesSize, err := checkedMulUint32(entrySize, uint32(n))
	if err != nil {
		ec.addError(tag, "Header", fmt.Sprintf("entries size overflow: %v", err), SeverityCritical, offset)
		return nil, errFontFormat(fmt.Sprintf("cmap entries size overflow: %v", err))
	}
	requiredSize, err := checkedAddUint32(headerSize, entriesSize)
	if err != nil || size < requiredSize {
		ec.addError(tag, "Header", fmt.Sprintf("table size %d < required %d", size, requiredSize), SeverityCritical, offset)
		return nil, errFontFormat("size of cmap table")
	}
	decoded := make(map[uint32]*CMapSubtable) // sub-tables may be shared by encoding records
	for i := 0; i < int(n); i++ {
		rec, _ := b.view(headerSize+entrySize*i, entrySize)
		pid, eid, suboffset := u16(rec), u16(rec[2:]), u32(rec[4:])
		if prev, ok := decoded[suboffset]; ok {
			st := prev.Clone()
			st.PlatformID, st.EncodingID = pid, eid
			t.Subtables = append(t.Subtables, st)
			continue
		}
		if suboffset >= size {
			ec.addWarning(tag, fmt.Sprintf("sub-table %d (platform=%d, encoding=%d) out of bounds", i, pid, eid), offset)
			continue
		}
		st, err := parseCMapSubtable(b[suboffset:])
		if err != nil {
			tracer().Infof("cmap sub-table cannot be parsed: %v", err)
			ec.addWarning(tag, fmt.Sprintf("sub-table %d (platform=%d, encoding=%d) cannot be parsed: %v",
				i, pid, eid, err), offset+suboffset)
			continue
		}
		st.PlatformID, st.EncodingID = pid, eid
		decoded[suboffset] = st
		t.Subtables = append(t.Subtables, st)
	}
	return t, nil
}

func parseCMapSubtable(b binarySegm) (*CMapSubtable, error) {
	format, err := b.u16(0)
	if err != nil {
		return nil, err
	}
	st := &CMapSubtable{Format: format}
	switch format {
	case 0:
		err = parseCMapFormat0(st, b)
	case 4:
		err = parseCMapFormat4(st, b)
	case 6:
		err = parseCMapFormat6(st, b)
	case 10:
		err = parseCMapFormat10(st, b)
	case 12, 13:
		err = parseCMapFormat12or13(st, b)
	default:
		var length int
		length, err = cmapSubtableLength(format, b)
		if err == nil {
			var raw binarySegm
			raw, err = b.view(0, length)
			st.raw = raw
		}
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}

// cmapSubtableLength returns the byte length of a sub-table.
func cmapSubtableLength(format uint16, b binarySegm) (int, error) {
	switch format {
	case 0, 2, 4, 6:
		l, err := b.u16(2)
		return int(l), err
	case 8, 10, 12, 13:
		l, err := b.u32(4)
		return int(l), err
	case 14:
		l, err := b.u32(2)
		return int(l), err
	}
	return 0, fmt.Errorf("unknown cmap sub-table format %d", format)
}

// Format 0: Byte encoding table.
func parseCMapFormat0(st *CMapSubtable, b binarySegm) error {
	glyphs, err := b.view(6, 256)
	if err != nil {
		return err
	}
	lang, _ := b.u16(4)
	st.Language = uint32(lang)
	st.Mapping = make(map[rune]GlyphIndex)
	for c, g := range glyphs {
		if g != 0 {
			st.Mapping[rune(c)] = GlyphIndex(g)
		}
	}
	return nil
}

// Format 4: Segment mapping to delta values.
// This is the standard character-to-glyph-index mapping subtable for fonts that support
// only Unicode Basic Multilingual Plane characters (U+0000 to U+FFFF).
//
// The spec describes the calculation the find the link into the glyph ID array
// as follows:
// “The character code offset from startCode is added to the idRangeOffset value.
// This sum is used as an offset from the current location within idRangeOffset
// itself to index out the correct glyphIdArray value. This obscure indexing
// trick works because glyphIdArray immediately follows idRangeOffset in the
// font file.”
func parseCMapFormat4(st *CMapSubtable, b binarySegm) error {
	const headerSize = 14
	length, err := b.u16(2)
	if err != nil || int(length) < headerSize {
		return errFontFormat("cmap format 4 header")
	}
	if int(length) > len(b) {
		// some fonts state a wrong length; use what is there
		length = uint16(min(len(b), math.MaxUint16))
	}
	b = b[:length]
	lang, _ := b.u16(4)
	st.Language = uint32(lang)
	segCountX2, _ := b.u16(6)
	if segCountX2&1 != 0 {
		return errFontFormat("cmap format 4, illegal segment count")
	}
	segCount := int(segCountX2 / 2)
	if headerSize+8*segCount+2 > len(b) {
		return errFontFormat("cmap format 4 segments exceed sub-table")
	}
	endCodes := headerSize
	startCodes := endCodes + 2*segCount + 2 // 2 is a padding entry in the cmap table
	deltas := startCodes + 2*segCount
	rangeOffsets := deltas + 2*segCount
	st.Mapping = make(map[rune]GlyphIndex)
	for i := 0; i < segCount; i++ {
		end := u16(b[endCodes+2*i:])
		start := u16(b[startCodes+2*i:])
		delta := u16(b[deltas+2*i:])
		rangeOffsetPos := rangeOffsets + 2*i
		rangeOffset := u16(b[rangeOffsetPos:])
		if start > end {
			continue
		}
		for c := uint32(start); c <= uint32(end); c++ {
			var g uint16
			if rangeOffset == 0 {
				g = uint16(c) + delta
			} else {
				pos := rangeOffsetPos + int(rangeOffset) + 2*int(c-uint32(start))
				inx, err := b.u16(pos)
				if err != nil {
					break // glyph array truncated
				}
				if inx != 0 {
					g = inx + delta
				}
			}
			if g != 0 {
				st.Mapping[rune(c)] = GlyphIndex(g)
			}
		}
	}
	return nil
}

// Format 6: Trimmed table mapping.
func parseCMapFormat6(st *CMapSubtable, b binarySegm) error {
	r := newFieldReader(b)
	r.skip(4)
	st.Language = uint32(r.u16())
	first := r.u16()
	count := int(r.u16())
	st.Mapping = make(map[rune]GlyphIndex)
	for i := 0; i < count; i++ {
		if g := r.u16(); g != 0 {
			st.Mapping[rune(int(first)+i)] = GlyphIndex(g)
		}
	}
	return r.err
}

// Format 10: Trimmed array, for 32-bit character codes.
func parseCMapFormat10(st *CMapSubtable, b binarySegm) error {
	r := newFieldReader(b)
	r.skip(8)
	st.Language = r.u32()
	first := r.u32()
	count := r.u32()
	if int(count)*2 > r.remaining() {
		return errFontFormat("cmap format 10 glyph array exceeds sub-table")
	}
	st.Mapping = make(map[rune]GlyphIndex)
	for i := uint32(0); i < count; i++ {
		if g := r.u16(); g != 0 {
			st.Mapping[rune(first+i)] = GlyphIndex(g)
		}
	}
	return r.err
}

// Format 12: Segmented coverage, and format 13: many-to-one range mappings.
//
// Each sequential map group record specifies a character range and the starting glyph ID
// mapped from the first character. For format 12, glyph IDs for subsequent characters
// follow in sequence. For format 13, all characters of a group map to the same glyph.
func parseCMapFormat12or13(st *CMapSubtable, b binarySegm) error {
	const headerSize = 16
	r := newFieldReader(b)
	r.skip(8)
	st.Language = r.u32()
	grpCount := r.u32()
	if r.err != nil {
		return errFontFormat("cmap sub-table bounds overflow")
	}
	groupsSize, err := checkedMulInt(12, int(grpCount))
	if err != nil || groupsSize > r.remaining() {
		return errFontFormat("cmap groups exceed sub-table")
	}
	st.Mapping = make(map[rune]GlyphIndex)
	for i := uint32(0); i < grpCount; i++ {
		start, end, glyph := r.u32(), r.u32(), r.u32()
		if end < start || end > unicodeMax {
			return errFontFormat(fmt.Sprintf("cmap format %d, invalid group %d", st.Format, i))
		}
		for c := start; c <= end; c++ {
			g := glyph
			if st.Format == 12 {
				g = glyph + (c - start)
			}
			if g != 0 && g <= math.MaxUint16 {
				st.Mapping[rune(c)] = GlyphIndex(g)
			}
		}
	}
	return r.err
}

const unicodeMax = 0x10FFFF

// --- Encoding --------------------------------------------------------------

// Encode serializes table cmap. Encoding records are sorted by platform, encoding
// and language, and identical sub-tables are shared.
func (t *CMapTable) Encode() ([]byte, error) {
	subtables := slices.Clone(t.Subtables)
	slices.SortStableFunc(subtables, func(a, b *CMapSubtable) int {
		if a.PlatformID != b.PlatformID {
			return int(a.PlatformID) - int(b.PlatformID)
		}
		if a.EncodingID != b.EncodingID {
			return int(a.EncodingID) - int(b.EncodingID)
		}
		return int(a.Language) - int(b.Language)
	})
	headerSize := 4 + 8*len(subtables)
	w := newBinaryWriter(headerSize)
	w.u16(t.Version)
	w.u16(uint16(len(subtables)))
	var data []byte
	var encoded [][]byte
	var offsets []int
	for _, st := range subtables {
		sub, err := st.encode()
		if err != nil {
			return nil, fmt.Errorf("cmap sub-table (%d,%d) format %d: %w", st.PlatformID, st.EncodingID, st.Format, err)
		}
		off := -1
		for i, e := range encoded {
			if bytes.Equal(e, sub) {
				off = offsets[i]
				break
			}
		}
		if off < 0 {
			off = headerSize + len(data)
			encoded = append(encoded, sub)
			offsets = append(offsets, off)
			data = append(data, sub...)
		}
		w.u16(st.PlatformID)
		w.u16(st.EncodingID)
		w.u32(uint32(off))
	}
	w.bytes(data)
	return w.Bytes(), nil
}

func (st *CMapSubtable) encode() ([]byte, error) {
	if st.Mapping == nil {
		return st.raw, nil
	}
	codes := make([]rune, 0, len(st.Mapping))
	for r := range st.Mapping {
		codes = append(codes, r)
	}
	slices.Sort(codes)
	switch st.Format {
	case 0:
		return st.encodeFormat0()
	case 4:
		return st.encodeFormat4(codes)
	case 6:
		return st.encodeFormat6(codes)
	case 10:
		return st.encodeFormat10(codes)
	case 12, 13:
		return st.encodeFormat12or13(codes)
	}
	return nil, fmt.Errorf("cannot encode cmap format %d", st.Format)
}

func (st *CMapSubtable) encodeFormat0() ([]byte, error) {
	w := newBinaryWriter(262)
	w.u16(0)
	w.u16(262)
	w.u16(uint16(st.Language))
	var glyphs [256]byte
	for r, g := range st.Mapping {
		if r < 0 || r > 255 {
			continue
		}
		if g > 255 {
			return nil, fmt.Errorf("glyph index %d too large for format 0", g)
		}
		glyphs[r] = byte(g)
	}
	w.bytes(glyphs[:])
	return w.Bytes(), nil
}

type cmapSegment struct {
	start, end uint16
	delta      uint16
	glyphs     []uint16 // nil for delta-only segments
}

// encodeFormat4 builds one segment per run of consecutive code-points. Runs with
// consecutive glyph IDs are encoded as delta segments, all others reference the
// glyph ID array. Code-points beyond the BMP are skipped.
func (st *CMapSubtable) encodeFormat4(codes []rune) ([]byte, error) {
	var segments []cmapSegment
	for i := 0; i < len(codes); {
		if codes[i] < 0 || codes[i] >= 0xFFFF {
			i++
			continue
		}
		j := i + 1
		for j < len(codes) && codes[j] < 0xFFFF && codes[j] == codes[j-1]+1 {
			j++
		}
		seg := cmapSegment{start: uint16(codes[i]), end: uint16(codes[j-1])}
		contiguous := true
		for k := i + 1; k < j; k++ {
			if st.Mapping[codes[k]] != st.Mapping[codes[k-1]]+1 {
				contiguous = false
				break
			}
		}
		if contiguous {
			seg.delta = uint16(st.Mapping[codes[i]]) - seg.start
		} else {
			seg.glyphs = make([]uint16, 0, j-i)
			for k := i; k < j; k++ {
				seg.glyphs = append(seg.glyphs, uint16(st.Mapping[codes[k]]))
			}
		}
		segments = append(segments, seg)
		i = j
	}
	segments = append(segments, cmapSegment{start: 0xFFFF, end: 0xFFFF, delta: 1})
	segCount := len(segments)
	searchRange, entrySelector, rangeShift := binarySearchParams(segCount, 2)
	w := newBinaryWriter(16 + 8*segCount)
	w.u16(4)
	w.u16(0) // length, set below
	w.u16(uint16(st.Language))
	w.u16(uint16(segCount * 2))
	w.u16(searchRange)
	w.u16(entrySelector)
	w.u16(rangeShift)
	for _, seg := range segments {
		w.u16(seg.end)
	}
	w.u16(0) // reservedPad
	for _, seg := range segments {
		w.u16(seg.start)
	}
	for _, seg := range segments {
		w.u16(seg.delta)
	}
	glyphArrayLen := 0
	for i, seg := range segments {
		if seg.glyphs == nil {
			w.u16(0)
			continue
		}
		// offset from this entry to the glyph ID array position of the segment
		w.u16(uint16(2*(segCount-i) + 2*glyphArrayLen))
		glyphArrayLen += len(seg.glyphs)
	}
	for _, seg := range segments {
		for _, g := range seg.glyphs {
			w.u16(g)
		}
	}
	if w.Len() > math.MaxUint16 {
		return nil, fmt.Errorf("format 4 sub-table too large: %d bytes", w.Len())
	}
	w.putU16(2, uint16(w.Len()))
	return w.Bytes(), nil
}

func (st *CMapSubtable) encodeFormat6(codes []rune) ([]byte, error) {
	var first, count int
	if len(codes) > 0 {
		if codes[0] < 0 || codes[len(codes)-1] > 0xFFFF {
			return nil, fmt.Errorf("code-point out of range for format 6")
		}
		first = int(codes[0])
		count = int(codes[len(codes)-1]) - first + 1
	}
	w := newBinaryWriter(10 + 2*count)
	w.u16(6)
	w.u16(uint16(10 + 2*count))
	w.u16(uint16(st.Language))
	w.u16(uint16(first))
	w.u16(uint16(count))
	for i := 0; i < count; i++ {
		w.u16(uint16(st.Mapping[rune(first+i)]))
	}
	return w.Bytes(), nil
}

func (st *CMapSubtable) encodeFormat10(codes []rune) ([]byte, error) {
	var first, count int
	if len(codes) > 0 {
		first = int(codes[0])
		count = int(codes[len(codes)-1]) - first + 1
	}
	w := newBinaryWriter(20 + 2*count)
	w.u16(10)
	w.u16(0)
	w.u32(uint32(20 + 2*count))
	w.u32(st.Language)
	w.u32(uint32(first))
	w.u32(uint32(count))
	for i := 0; i < count; i++ {
		w.u16(uint16(st.Mapping[rune(first+i)]))
	}
	return w.Bytes(), nil
}

func (st *CMapSubtable) encodeFormat12or13(codes []rune) ([]byte, error) {
	w := newBinaryWriter(16 + 12*len(codes))
	w.u16(st.Format)
	w.u16(0)
	w.u32(0) // length, set below
	w.u32(st.Language)
	w.u32(0) // number of groups, set below
	groups := 0
	for i := 0; i < len(codes); {
		j := i + 1
		for j < len(codes) && codes[j] == codes[j-1]+1 {
			g0, g1 := st.Mapping[codes[j-1]], st.Mapping[codes[j]]
			if (st.Format == 12 && g1 != g0+1) || (st.Format == 13 && g1 != g0) {
				break
			}
			j++
		}
		w.u32(uint32(codes[i]))
		w.u32(uint32(codes[j-1]))
		w.u32(uint32(st.Mapping[codes[i]]))
		groups++
		i = j
	}
	w.putU32(4, uint32(w.Len()))
	w.putU32(12, uint32(groups))
	return w.Bytes(), nil
}
