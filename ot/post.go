package ot

import (
	"fmt"
	"math"
)

// PostTable contains additional information needed to use TrueType or OpenType fonts
// on PostScript printers, including glyph names.
//
// Glyph names are decoded for formats 1.0 and 2.0. Format 3.0 has no glyph names.
// Other formats keep their glyph data as is.
type PostTable struct {
	tableBase
	Version            uint32 // 0x00010000, 0x00020000, 0x00025000 or 0x00030000
	ItalicAngle        int32  // 16.16 fixed, counter-clockwise degrees from the vertical
	UnderlinePosition  int16
	UnderlineThickness int16
	IsFixedPitch       uint32
	MinMemType42       uint32
	MaxMemType42       uint32
	MinMemType1        uint32
	MaxMemType1        uint32
	GlyphNames         []string // per glyph index, formats 1.0 and 2.0
	tail               []byte   // glyph data of formats we do not interpret
}

// Versions of table post.
const (
	PostVersion1  uint32 = 0x00010000
	PostVersion2  uint32 = 0x00020000
	PostVersion25 uint32 = 0x00025000
	PostVersion3  uint32 = 0x00030000
)

const postHeaderSize = 32

func newPostTable(tag Tag, b binarySegm, offset, size uint32) *PostTable {
	t := &PostTable{}
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

// NewPostTable creates a post table of version 3.0 (no glyph names) or, if
// names is non-empty, of version 2.0.
func NewPostTable(names []string) *PostTable {
	t := newPostTable(T("post"), nil, 0, 0)
	t.Version = PostVersion3
	if len(names) > 0 {
		t.Version = PostVersion2
		t.GlyphNames = append([]string(nil), names...)
	}
	return t
}

func parsePost(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if size < postHeaderSize {
		ec.addError(tag, "Size", fmt.Sprintf("post table too small: %d bytes", size), SeverityCritical, offset)
		return nil, errFontFormat("post table incomplete")
	}
	t := newPostTable(tag, b, offset, size)
	r := newFieldReader(b)
	t.Version = r.u32()
	t.ItalicAngle = r.i32()
	t.UnderlinePosition = r.i16()
	t.UnderlineThickness = r.i16()
	t.IsFixedPitch = r.u32()
	t.MinMemType42 = r.u32()
	t.MaxMemType42 = r.u32()
	t.MinMemType1 = r.u32()
	t.MaxMemType1 = r.u32()
	switch t.Version {
	case PostVersion1:
		t.GlyphNames = append([]string(nil), macGlyphNames[:]...)
	case PostVersion2:
		names, err := parsePostNames(b[postHeaderSize:])
		if err != nil {
			ec.addError(tag, "GlyphNames", err.Error(), SeverityMajor, offset+postHeaderSize)
			t.tail = b[postHeaderSize:]
			t.Version = PostVersion25 // keep glyph data opaque
			return t, nil
		}
		t.GlyphNames = names
	case PostVersion3:
	default:
		t.tail = b[postHeaderSize:]
	}
	return t, r.err
}

func parsePostNames(b binarySegm) ([]string, error) {
	n, err := b.u16(0)
	if err != nil {
		return nil, err
	}
	indexBytes, err := b.view(2, int(n)*2)
	if err != nil {
		return nil, fmt.Errorf("glyph name index exceeds table")
	}
	var extra []string
	for pos := 2 + int(n)*2; pos < len(b); {
		l := int(b[pos])
		s, err := b.view(pos+1, l)
		if err != nil {
			return nil, fmt.Errorf("glyph name string exceeds table")
		}
		extra = append(extra, string(s))
		pos += l + 1
	}
	names := make([]string, n)
	for i := range names {
		inx := int(u16(indexBytes[i*2:]))
		if inx < len(macGlyphNames) {
			names[i] = macGlyphNames[inx]
		} else if inx-len(macGlyphNames) < len(extra) {
			names[i] = extra[inx-len(macGlyphNames)]
		} else {
			return nil, fmt.Errorf("glyph %d has invalid name index %d", i, inx)
		}
	}
	return names, nil
}

// Encode serializes table post. For version 2.0, names found in the standard
// Macintosh set are referenced by index, all others are stored as strings.
func (t *PostTable) Encode() ([]byte, error) {
	w := newBinaryWriter(postHeaderSize)
	w.u32(t.Version)
	w.i32(t.ItalicAngle)
	w.i16(t.UnderlinePosition)
	w.i16(t.UnderlineThickness)
	w.u32(t.IsFixedPitch)
	w.u32(t.MinMemType42)
	w.u32(t.MaxMemType42)
	w.u32(t.MinMemType1)
	w.u32(t.MaxMemType1)
	switch t.Version {
	case PostVersion1, PostVersion3:
	case PostVersion2:
		if len(t.GlyphNames) > math.MaxUint16 {
			return nil, fmt.Errorf("post: too many glyph names: %d", len(t.GlyphNames))
		}
		w.u16(uint16(len(t.GlyphNames)))
		standard := standardNameIndex()
		extraIndex := make(map[string]int)
		var extra []string
		for _, name := range t.GlyphNames {
			if inx, ok := standard[name]; ok {
				w.u16(uint16(inx))
				continue
			}
			inx, ok := extraIndex[name]
			if !ok {
				if len(name) > 255 {
					return nil, fmt.Errorf("post: glyph name too long: %q", name)
				}
				inx = len(extra)
				extraIndex[name] = inx
				extra = append(extra, name)
			}
			w.u16(uint16(len(macGlyphNames) + inx))
		}
		for _, name := range extra {
			w.u8(uint8(len(name)))
			w.bytes([]byte(name))
		}
	default:
		w.bytes(t.tail)
	}
	return w.Bytes(), nil
}

func standardNameIndex() map[string]int {
	m := make(map[string]int, len(macGlyphNames))
	for i, name := range macGlyphNames {
		m[name] = i
	}
	return m
}

// GlyphName returns the name of a glyph, or "" if the table carries no glyph names.
func (t *PostTable) GlyphName(gid GlyphIndex) string {
	if int(gid) < len(t.GlyphNames) {
		return t.GlyphNames[gid]
	}
	return ""
}

// ItalicAngleValue returns the italic angle in degrees.
func (t *PostTable) ItalicAngleValue() float64 {
	return Fixed1616ToFloat(t.ItalicAngle)
}

// SetItalicAngleValue sets the italic angle in degrees.
func (t *PostTable) SetItalicAngleValue(angle float64) {
	t.ItalicAngle = FloatToFixed1616(angle)
}

// Fixed1616ToFloat converts a 16.16 fixed number to a float.
func Fixed1616ToFloat(f int32) float64 {
	return float64(f) / 65536
}

// FloatToFixed1616 converts a float to a 16.16 fixed number.
func FloatToFixed1616(v float64) int32 {
	return int32(math.Round(v * 65536))
}
