package ot

import (
	"fmt"
	"slices"
)

// KernTable gives information about kerning and kern pairs.
// The kerning table contains the values that control the inter-character spacing for
// the glyphs in a font. OpenType fonts containing CFF outlines are not supported by
// the 'kern' table and must use the GPOS OpenType Layout table.
//
// There is significant confusion with this table concerning format differences
// between OpenType, TrueType, and fonts in the wild. Both the OpenType (Microsoft)
// header and the Apple header are read. Sub-tables of format 0 are decoded into
// editable kern pairs, all others are carried along as is.
type KernTable struct {
	tableBase
	Apple     bool // Apple header with 32-bit version and sub-table count
	Subtables []*KernSubtable
}

// KernSubtable is a sub-table of a kern table.
type KernSubtable struct {
	Version  uint16 // Microsoft header only
	Coverage uint16
	Format   uint8
	TupleIdx uint16 // Apple header only
	Pairs    map[KernPair]int16
	raw      []byte // body of sub-tables not of format 0
}

// KernPair is a pair of glyphs, the value of the kerning is applied between
// Left and Right.
type KernPair struct {
	Left, Right GlyphIndex
}

func newKernTable(tag Tag, b binarySegm, offset, size uint32) *KernTable {
	t := &KernTable{}
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

// NewKernTable creates a kern table with a single, empty format 0 sub-table
// for horizontal kerning.
func NewKernTable() *KernTable {
	t := newKernTable(T("kern"), nil, 0, 0)
	t.Subtables = []*KernSubtable{{Coverage: 0x0001, Pairs: make(map[KernPair]int16)}}
	return t
}

// Kerning returns the kerning value between two glyphs from the first sub-table
// of format 0 containing the pair.
func (t *KernTable) Kerning(left, right GlyphIndex) (int16, bool) {
	for _, st := range t.Subtables {
		if st.Format != 0 {
			continue
		}
		if v, ok := st.Pairs[KernPair{left, right}]; ok {
			return v, true
		}
	}
	return 0, false
}

// HasFormat0 reports whether at least one sub-table is of format 0.
func (t *KernTable) HasFormat0() bool {
	return slices.ContainsFunc(t.Subtables, func(st *KernSubtable) bool { return st.Format == 0 })
}

// parseKern parses the kern table. In the real world, fonts usually have just one
// kern sub-table, and older Windows versions cannot handle more than one.
func parseKern(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size < 4 {
		ec.addError(tag, "Header", "kern table header incomplete", SeverityCritical, offset)
		return nil, errFontFormat("kern table header")
	}
	t := newKernTable(tag, b, offset, size)
	var n, suboffset int
	if version := u32(b); version == 0x00010000 {
		tracer().Debugf("font has Apple TTF kern table format")
		cnt, err := b.u32(4) // number of kerning tables is uint32
		if err != nil {
			return nil, errFontFormat("kern table header")
		}
		t.Apple = true
		n, suboffset = int(cnt), 8
	} else {
		tracer().Debugf("font has OTF (MS) kern table format")
		cnt, _ := b.u16(2) // number of kerning tables is uint16
		n, suboffset = int(cnt), 4
	}
	tracer().Debugf("kern table has %d sub-tables", n)
	for i := 0; i < n && suboffset < int(size); i++ {
		st, next, err := parseKernSubtable(b, suboffset, t.Apple, ec, tag, offset)
		if err != nil {
			ec.addError(tag, "Format", fmt.Sprintf("sub-table %d: %v", i, err), SeverityMajor, offset+uint32(suboffset))
			return nil, errFontFormat(fmt.Sprintf("kern sub-table %d: %v", i, err))
		}
		t.Subtables = append(t.Subtables, st)
		suboffset = next
	}
	tracer().Debugf("table kern has %d sub-table(s)", len(t.Subtables))
	return t, nil
}

func parseKernSubtable(b binarySegm, at int, apple bool, ec *errorCollector, tag Tag, offset uint32) (*KernSubtable, int, error) {
	st := &KernSubtable{}
	r := newFieldReader(b[at:])
	var length, headerLen int
	if apple {
		length = int(r.u32())
		st.Coverage = r.u16()
		st.Format = uint8(st.Coverage & 0xff)
		st.TupleIdx = r.u16()
		headerLen = 8
	} else {
		st.Version = r.u16()
		length = int(r.u16())
		st.Coverage = r.u16()
		st.Format = uint8(st.Coverage >> 8)
		headerLen = 6
	}
	if r.err != nil {
		return nil, 0, fmt.Errorf("header exceeds table size")
	}
	if st.Format != 0 {
		if length < headerLen || at+length > len(b) {
			return nil, 0, fmt.Errorf("format %d sub-table exceeds table size", st.Format)
		}
		st.raw = b[at+headerLen : at+length]
		return st, at + length, nil
	}
	npairs := int(r.u16())
	r.skip(6) // searchRange, entrySelector, rangeShift
	// For some fonts, size calculation of kern sub-tables is off; see
	// https://github.com/fonttools/fonttools/issues/314#issuecomment-118116527
	// Testable with the Calibri font.
	sz, err := checkedMulInt(npairs, 6) // kern pair is of size 6
	if err != nil {
		return nil, 0, err
	}
	if sz > r.remaining() {
		return nil, 0, fmt.Errorf("%d kern pairs exceed table size", npairs)
	}
	if expected := headerLen + 8 + sz; length != expected && !apple {
		tracer().Infof("kern sub-table size should be 0x%x, but given as 0x%x; fixing", expected, length)
		ec.addWarning(tag, fmt.Sprintf("kern sub-table size mismatch: expected 0x%x, got 0x%x", expected, length),
			offset+uint32(at))
	}
	st.Pairs = make(map[KernPair]int16, npairs)
	for i := 0; i < npairs; i++ {
		left, right := GlyphIndex(r.u16()), GlyphIndex(r.u16())
		st.Pairs[KernPair{left, right}] = r.i16()
	}
	return st, at + headerLen + 8 + sz, r.err
}

// Encode serializes table kern. Pairs of format 0 sub-tables are written sorted
// by left and right glyph.
func (t *KernTable) Encode() ([]byte, error) {
	w := newBinaryWriter(64)
	if t.Apple {
		w.u32(0x00010000)
		w.u32(uint32(len(t.Subtables)))
	} else {
		w.u16(0)
		w.u16(uint16(len(t.Subtables)))
	}
	for i, st := range t.Subtables {
		body, err := st.encodeBody()
		if err != nil {
			return nil, fmt.Errorf("kern sub-table %d: %w", i, err)
		}
		if t.Apple {
			w.u32(uint32(8 + len(body)))
			w.u16(st.Coverage)
			w.u16(st.TupleIdx)
		} else {
			length := 6 + len(body)
			if length > 0xFFFF {
				// the length field overflows for large sub-tables; readers recompute it
				length &= 0xFFFF
			}
			w.u16(st.Version)
			w.u16(uint16(length))
			w.u16(st.Coverage)
		}
		w.bytes(body)
	}
	return w.Bytes(), nil
}

func (st *KernSubtable) encodeBody() ([]byte, error) {
	if st.Format != 0 {
		return st.raw, nil
	}
	if len(st.Pairs) > 0xFFFF {
		return nil, fmt.Errorf("too many kern pairs: %d", len(st.Pairs))
	}
	pairs := make([]KernPair, 0, len(st.Pairs))
	for p := range st.Pairs {
		pairs = append(pairs, p)
	}
	slices.SortFunc(pairs, func(a, b KernPair) int {
		if a.Left != b.Left {
			return int(a.Left) - int(b.Left)
		}
		return int(a.Right) - int(b.Right)
	})
	searchRange, entrySelector, rangeShift := binarySearchParams(len(pairs), 6)
	w := newBinaryWriter(8 + 6*len(pairs))
	w.u16(uint16(len(pairs)))
	w.u16(searchRange)
	w.u16(entrySelector)
	w.u16(rangeShift)
	for _, p := range pairs {
		w.u16(uint16(p.Left))
		w.u16(uint16(p.Right))
		w.i16(st.Pairs[p])
	}
	return w.Bytes(), nil
}
