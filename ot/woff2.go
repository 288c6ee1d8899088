package ot

import (
	"bytes"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	dsbrotli "github.com/dsnet/compress/brotli"
)

// WOFF 2.0, see https://www.w3.org/TR/WOFF2/
//
// Decoding supports the glyf/loca transform (version 0) and the hmtx transform
// (version 1). Encoding always uses null transforms.

const woff2HeaderSize = 48

// woff2KnownTags are the tags which may be encoded as an index into this table.
var woff2KnownTags = [63]string{
	"cmap", "head", "hhea", "hmtx", "maxp", "name", "OS/2", "post",
	"cvt ", "fpgm", "glyf", "loca", "prep", "CFF ", "VORG", "EBDT",
	"EBLC", "gasp", "hdmx", "kern", "LTSH", "PCLT", "VDMX", "vhea",
	"vmtx", "BASE", "GDEF", "GPOS", "GSUB", "EBSC", "JSTF", "MATH",
	"CBDT", "CBLC", "COLR", "CPAL", "SVG ", "sbix", "acnt", "avar",
	"bdat", "bloc", "bsln", "cvar", "fdsc", "feat", "fmtx", "fvar",
	"gvar", "hsty", "just", "lcar", "mort", "morx", "opbd", "prop",
	"trak", "Zapf", "Silf", "Glat", "Gloc", "Feat", "Sill",
}

type woff2Entry struct {
	tag              Tag
	transformVersion uint8
	origLength       uint32
	transformLength  uint32 // 0 if not transformed
	data             []byte // slice of the decompressed stream
}

func (e woff2Entry) transformed() bool {
	switch e.tag {
	case T("glyf"), T("loca"):
		return e.transformVersion == 0
	}
	return e.transformVersion != 0
}

// parseWOFF2 decompresses a WOFF2 file and reconstructs its tables.
func parseWOFF2(font []byte, ec *errorCollector) (FontHeader, []tableEntry, error) {
	h := FontHeader{}
	r := newFieldReader(font)
	r.skip(4) // signature
	h.FontType = r.u32()
	length := r.u32()
	numTables := r.u16()
	r.skip(2) // reserved
	r.skip(4) // totalSfntSize
	compressedSize := r.u32()
	r.skip(4 + 5*4) // version, meta and private blocks
	if r.err != nil || int(length) > len(font) {
		ec.addError(T(""), "Header", "WOFF2 header truncated", SeverityCritical, 0)
		return h, nil, errFontFormat("WOFF2 header truncated")
	}
	if h.FontType == uint32(T("ttcf")) {
		ec.addError(T(""), "Header", "font collections not supported", SeverityCritical, 0)
		return h, nil, errFontFormat("WOFF2 font collections not supported")
	}
	entries := make([]woff2Entry, 0, numTables)
	for i := 0; i < int(numTables); i++ {
		flags := r.u8()
		e := woff2Entry{transformVersion: flags >> 6}
		if index := flags & 0x3f; index == 63 {
			e.tag = Tag(r.u32())
		} else {
			e.tag = T(woff2KnownTags[index])
		}
		var err error
		if e.origLength, err = readUIntBase128(r); err != nil {
			ec.addError(e.tag, "Directory", err.Error(), SeverityCritical, uint32(r.pos))
			return h, nil, errFontFormat(fmt.Sprintf("WOFF2 table directory: %v", err))
		}
		if e.transformed() {
			if e.transformLength, err = readUIntBase128(r); err != nil {
				ec.addError(e.tag, "Directory", err.Error(), SeverityCritical, uint32(r.pos))
				return h, nil, errFontFormat(fmt.Sprintf("WOFF2 table directory: %v", err))
			}
		}
		entries = append(entries, e)
	}
	compressed := r.bytes(int(compressedSize))
	if r.err != nil {
		ec.addError(T(""), "Directory", "WOFF2 table directory truncated", SeverityCritical, 0)
		return h, nil, errFontFormat("WOFF2 table directory truncated")
	}
	br, err := dsbrotli.NewReader(bytes.NewReader(compressed), nil)
	if err != nil {
		return h, nil, errFontFormat(fmt.Sprintf("WOFF2 brotli: %v", err))
	}
	stream, err := io.ReadAll(br)
	br.Close()
	if err != nil {
		ec.addError(T(""), "Data", err.Error(), SeverityCritical, uint32(woff2HeaderSize))
		return h, nil, errFontFormat(fmt.Sprintf("WOFF2 brotli: %v", err))
	}
	at := 0
	byTag := make(map[Tag]int, len(entries))
	for i := range entries {
		n := int(entries[i].origLength)
		if entries[i].transformed() {
			n = int(entries[i].transformLength)
		}
		if at+n > len(stream) {
			ec.addError(entries[i].tag, "Data", "table exceeds decompressed data", SeverityCritical, 0)
			return h, nil, errFontFormat(fmt.Sprintf("WOFF2 table %s exceeds decompressed data", entries[i].tag))
		}
		entries[i].data = stream[at : at+n]
		byTag[entries[i].tag] = i
		at += n
	}
	tables := make([]tableEntry, 0, len(entries))
	var glyfData, locaData []byte
	var xMins []int16
	if i, ok := byTag[T("glyf")]; ok && entries[i].transformed() {
		glyfData, locaData, xMins, err = reconstructGlyf(entries[i].data)
		if err != nil {
			ec.addError(T("glyf"), "Transform", err.Error(), SeverityCritical, 0)
			return h, nil, errFontFormat(fmt.Sprintf("WOFF2 glyf: %v", err))
		}
	}
	for _, e := range entries {
		data := binarySegm(e.data)
		switch {
		case !e.transformed():
		case e.tag == T("glyf"):
			data = glyfData
		case e.tag == T("loca"):
			if locaData == nil {
				return h, nil, errFontFormat("WOFF2 transformed loca without transformed glyf")
			}
			data = locaData
		case e.tag == T("hmtx") && e.transformVersion == 1:
			data, err = reconstructHMtx(e.data, entries, byTag, xMins)
			if err != nil {
				ec.addError(T("hmtx"), "Transform", err.Error(), SeverityCritical, 0)
				return h, nil, errFontFormat(fmt.Sprintf("WOFF2 hmtx: %v", err))
			}
		default:
			ec.addError(e.tag, "Transform", fmt.Sprintf("unknown transform %d", e.transformVersion), SeverityCritical, 0)
			return h, nil, errFontFormat(fmt.Sprintf("WOFF2 table %s: unknown transform %d", e.tag, e.transformVersion))
		}
		tables = append(tables, tableEntry{tag: e.tag, data: data})
	}
	tracer().Debugf("WOFF2: flavor %s, %d tables", Tag(h.FontType), len(tables))
	return h, tables, nil
}

// readUIntBase128 reads a variable-length unsigned integer of at most 5 bytes.
func readUIntBase128(r *fieldReader) (uint32, error) {
	var accum uint32
	for i := 0; i < 5; i++ {
		b := r.u8()
		if r.err != nil {
			return 0, r.err
		}
		if i == 0 && b == 0x80 {
			return 0, fmt.Errorf("UIntBase128 with leading zeros")
		}
		if accum&0xFE000000 != 0 {
			return 0, fmt.Errorf("UIntBase128 overflow")
		}
		accum = accum<<7 | uint32(b&0x7f)
		if b&0x80 == 0 {
			return accum, nil
		}
	}
	return 0, fmt.Errorf("UIntBase128 longer than 5 bytes")
}

// read255UInt16 reads a variable-length uint16 of the WOFF2 glyf transform.
func read255UInt16(r *fieldReader) uint16 {
	const (
		oneMoreByteCode1 = 255
		oneMoreByteCode2 = 254
		wordCode         = 253
		lowestUCode      = 253
	)
	switch code := r.u8(); code {
	case wordCode:
		return r.u16()
	case oneMoreByteCode1:
		return uint16(r.u8()) + lowestUCode
	case oneMoreByteCode2:
		return uint16(r.u8()) + lowestUCode*2
	default:
		return uint16(code)
	}
}

// appendUIntBase128 appends v in UIntBase128 encoding.
func appendUIntBase128(b []byte, v uint32) []byte {
	var tmp [5]byte
	n := 0
	for {
		tmp[4-n] = byte(v & 0x7f)
		if n > 0 {
			tmp[4-n] |= 0x80
		}
		n++
		v >>= 7
		if v == 0 {
			break
		}
	}
	return append(b, tmp[5-n:]...)
}

// --- glyf transform --------------------------------------------------------

// reconstructGlyf rebuilds tables glyf and loca from the transformed glyf table.
// It additionally returns the xMin of every glyph, as needed by the hmtx transform.
func reconstructGlyf(b []byte) (glyf, loca []byte, xMins []int16, err error) {
	r := newFieldReader(b)
	r.skip(2) // reserved
	optionFlags := r.u16()
	numGlyphs := int(r.u16())
	indexFormat := r.u16()
	var sizes [7]int
	for i := range sizes {
		sizes[i] = int(r.u32())
	}
	if r.err != nil {
		return nil, nil, nil, fmt.Errorf("transformed glyf header truncated")
	}
	streams := make([]*fieldReader, 7)
	for i, n := range sizes {
		streams[i] = newFieldReader(r.bytes(n))
	}
	if r.err != nil {
		return nil, nil, nil, fmt.Errorf("transformed glyf streams truncated")
	}
	nContours, nPoints, flagStream, glyphStream := streams[0], streams[1], streams[2], streams[3]
	compositeStream, bboxStream, instructions := streams[4], streams[5], streams[6]
	bboxBitmap := bboxStream.bytes(4 * ((numGlyphs + 31) / 32))
	if bboxStream.err != nil {
		return nil, nil, nil, fmt.Errorf("bounding box bitmap truncated")
	}
	var overlapBitmap []byte
	if optionFlags&0x0001 != 0 {
		if overlapBitmap = r.bytes((numGlyphs + 7) / 8); overlapBitmap == nil {
			return nil, nil, nil, fmt.Errorf("overlap bitmap truncated")
		}
	}
	hasBBox := func(gid int) bool {
		return bboxBitmap[gid>>3]&(0x80>>(gid&7)) != 0
	}
	out := newBinaryWriter(len(b) * 2)
	offsets := make([]uint32, 0, numGlyphs+1)
	xMins = make([]int16, numGlyphs)
	for gid := 0; gid < numGlyphs; gid++ {
		offsets = append(offsets, uint32(out.Len()))
		n := nContours.i16()
		switch {
		case n == 0:
			if hasBBox(gid) {
				return nil, nil, nil, fmt.Errorf("empty glyph %d with bounding box", gid)
			}
		case n < 0:
			if !hasBBox(gid) {
				return nil, nil, nil, fmt.Errorf("composite glyph %d without bounding box", gid)
			}
			xMins[gid] = bboxStream.i16()
			out.i16(-1)
			out.i16(xMins[gid])
			out.i16(bboxStream.i16())
			out.i16(bboxStream.i16())
			out.i16(bboxStream.i16())
			start := compositeStream.pos
			hasInstructions := false
			for more := true; more; {
				flags := compositeStream.u16()
				compositeStream.skip(2) // glyph index
				size := 2
				if flags&ArgsAreWords != 0 {
					size = 4
				}
				switch {
				case flags&WeHaveAScale != 0:
					size += 2
				case flags&WeHaveAnXAndYScale != 0:
					size += 4
				case flags&WeHaveATwoByTwo != 0:
					size += 8
				}
				compositeStream.skip(size)
				hasInstructions = hasInstructions || flags&WeHaveInstructions != 0
				more = flags&MoreComponents != 0
			}
			if compositeStream.err != nil {
				return nil, nil, nil, fmt.Errorf("composite glyph %d truncated", gid)
			}
			out.bytes(compositeStream.data[start:compositeStream.pos])
			if hasInstructions {
				size := read255UInt16(glyphStream)
				out.u16(size)
				out.bytes(instructions.bytes(int(size)))
			}
		default:
			g := &Glyph{}
			total := 0
			for c := 0; c < int(n); c++ {
				total += int(read255UInt16(nPoints))
				g.EndPoints = append(g.EndPoints, uint16(total-1))
			}
			flags := flagStream.bytes(total)
			if flagStream.err != nil {
				return nil, nil, nil, fmt.Errorf("glyph %d: flags truncated", gid)
			}
			g.Points = make([]GlyphPoint, total)
			var x, y int
			for i, f := range flags {
				dx, dy, err := decodeTriplet(f&0x7f, glyphStream)
				if err != nil {
					return nil, nil, nil, fmt.Errorf("glyph %d: %w", gid, err)
				}
				x, y = x+dx, y+dy
				g.Points[i] = GlyphPoint{X: int16(x), Y: int16(y), OnCurve: f&0x80 == 0}
			}
			g.Instructions = instructions.bytes(int(read255UInt16(glyphStream)))
			if hasBBox(gid) {
				g.XMin, g.YMin, g.XMax, g.YMax = bboxStream.i16(), bboxStream.i16(), bboxStream.i16(), bboxStream.i16()
			} else {
				g.RecalcBounds()
			}
			xMins[gid] = g.XMin
			data, err := g.encode()
			if err != nil {
				return nil, nil, nil, fmt.Errorf("glyph %d: %w", gid, err)
			}
			if overlapBitmap != nil && overlapBitmap[gid>>3]&(0x80>>(gid&7)) != 0 {
				setOverlapSimple(data, len(g.EndPoints))
			}
			out.bytes(data)
		}
		out.pad(4)
	}
	offsets = append(offsets, uint32(out.Len()))
	for _, s := range streams {
		if s.err != nil {
			return nil, nil, nil, fmt.Errorf("transformed glyf data truncated")
		}
	}
	l := &LocaTable{}
	l.Offsets = offsets
	l.Long = indexFormat != 0
	if loca, err = l.Encode(); err != nil {
		return nil, nil, nil, err
	}
	return out.Bytes(), loca, xMins, nil
}

// setOverlapSimple sets flag OVERLAP_SIMPLE on the first point of an encoded
// simple glyph.
func setOverlapSimple(data []byte, numberOfContours int) {
	at := 10 + 2*numberOfContours
	if at+2 > len(data) {
		return
	}
	at += 2 + int(u16(data[at:])) // instructions
	if at < len(data) {
		data[at] |= 0x40
	}
}

// decodeTriplet decodes the coordinate deltas of a point, given its flag byte
// with the on-curve bit masked out.
func decodeTriplet(flag byte, r *fieldReader) (dx, dy int, err error) {
	withSign := func(f byte, v int) int {
		if f&1 != 0 {
			return v
		}
		return -v
	}
	f := int(flag)
	switch {
	case f < 10:
		b0 := int(r.u8())
		dy = withSign(flag, (f&14)<<7+b0)
	case f < 20:
		b0 := int(r.u8())
		dx = withSign(flag, ((f-10)&14)<<7+b0)
	case f < 84:
		b0, b1 := f-20, int(r.u8())
		dx = withSign(flag, 1+(b0&0x30)+(b1>>4))
		dy = withSign(flag>>1, 1+((b0&0x0c)<<2)+(b1&0x0f))
	case f < 120:
		b0 := f - 84
		dx = withSign(flag, 1+((b0/12)<<8)+int(r.u8()))
		dy = withSign(flag>>1, 1+(((b0%12)>>2)<<8)+int(r.u8()))
	case f < 124:
		b0, b1, b2 := int(r.u8()), int(r.u8()), int(r.u8())
		dx = withSign(flag, b0<<4+b1>>4)
		dy = withSign(flag>>1, (b1&0x0f)<<8+b2)
	default:
		dx = withSign(flag, int(r.u16()))
		dy = withSign(flag>>1, int(r.u16()))
	}
	if r.err != nil {
		return 0, 0, fmt.Errorf("coordinate triplets truncated")
	}
	return dx, dy, nil
}

// --- hmtx transform --------------------------------------------------------

// reconstructHMtx rebuilds table hmtx from its transformed version. Left side
// bearings may have been dropped by the encoder, in which case they equal the
// xMin of the glyph.
func reconstructHMtx(b []byte, entries []woff2Entry, byTag map[Tag]int, xMins []int16) ([]byte, error) {
	ih, ok1 := byTag[T("hhea")]
	im, ok2 := byTag[T("maxp")]
	if !ok1 || !ok2 || len(entries[ih].data) < hheaTableSize || len(entries[im].data) < 6 {
		return nil, fmt.Errorf("transformed hmtx requires tables hhea and maxp")
	}
	numberOfHMetrics := int(u16(entries[ih].data[34:]))
	numGlyphs := int(u16(entries[im].data[4:]))
	if numberOfHMetrics < 1 || numberOfHMetrics > numGlyphs {
		return nil, fmt.Errorf("inconsistent glyph counts")
	}
	r := newFieldReader(b)
	flags := r.u8()
	if flags&0x03 != 0 && len(xMins) < numGlyphs {
		return nil, fmt.Errorf("left side bearings require a transformed glyf table")
	}
	advances := make([]uint16, numberOfHMetrics)
	for i := range advances {
		advances[i] = r.u16()
	}
	lsbs := make([]int16, numGlyphs)
	for i := 0; i < numberOfHMetrics; i++ {
		if flags&0x01 != 0 {
			lsbs[i] = xMins[i]
		} else {
			lsbs[i] = r.i16()
		}
	}
	for i := numberOfHMetrics; i < numGlyphs; i++ {
		if flags&0x02 != 0 {
			lsbs[i] = xMins[i]
		} else {
			lsbs[i] = r.i16()
		}
	}
	if r.err != nil {
		return nil, fmt.Errorf("transformed hmtx truncated")
	}
	w := newBinaryWriter(4*numberOfHMetrics + 2*(numGlyphs-numberOfHMetrics))
	for i := 0; i < numGlyphs; i++ {
		if i < numberOfHMetrics {
			w.u16(advances[i])
		}
		w.i16(lsbs[i])
	}
	return w.Bytes(), nil
}

// --- encoding --------------------------------------------------------------

// writeWOFF2 packs prepared tables into a WOFF2 file. All tables use the null
// transform and are compressed as a single Brotli stream.
func writeWOFF2(h FontHeader, tables []encodedTable, sfntSize int) ([]byte, error) {
	dir := sortedByTag(tables)
	if i := indexOfTag(dir, T("glyf")); i >= 0 {
		// loca must immediately follow glyf
		if j := indexOfTag(dir, T("loca")); j >= 0 {
			loca := dir[j]
			dir = append(dir[:j], dir[j+1:]...)
			i = indexOfTag(dir, T("glyf"))
			dir = append(dir[:i+1], append([]encodedTable{loca}, dir[i+1:]...)...)
		}
	}
	var directory []byte
	var stream bytes.Buffer
	bw := brotli.NewWriterLevel(&stream, brotli.BestCompression)
	for _, t := range dir {
		flags := byte(63)
		for i, known := range woff2KnownTags {
			if T(known) == t.tag {
				flags = byte(i)
				break
			}
		}
		if t.tag == T("glyf") || t.tag == T("loca") {
			flags |= 3 << 6 // null transform
		}
		directory = append(directory, flags)
		if flags&0x3f == 63 {
			directory = append(directory, byte(t.tag>>24), byte(t.tag>>16), byte(t.tag>>8), byte(t.tag))
		}
		directory = appendUIntBase128(directory, uint32(len(t.data)))
		if _, err := bw.Write(t.data); err != nil {
			return nil, fmt.Errorf("WOFF2 table %s: %w", t.tag, err)
		}
	}
	if err := bw.Close(); err != nil {
		return nil, fmt.Errorf("WOFF2 compression: %w", err)
	}
	compressed := stream.Bytes()
	total := woff2HeaderSize + len(directory) + len(compressed)
	total = (total + 3) &^ 3
	w := newBinaryWriter(total)
	w.u32(signatureWOFF2)
	w.u32(h.FontType)
	w.u32(uint32(total))
	w.u16(uint16(len(dir)))
	w.u16(0) // reserved
	w.u32(uint32(sfntSize))
	w.u32(uint32(len(compressed)))
	w.u16(1) // majorVersion
	w.u16(0) // minorVersion
	w.u32(0) // metaOffset
	w.u32(0) // metaLength
	w.u32(0) // metaOrigLength
	w.u32(0) // privOffset
	w.u32(0) // privLength
	w.bytes(directory)
	w.bytes(compressed)
	w.pad(4)
	return w.Bytes(), nil
}

func indexOfTag(tables []encodedTable, tag Tag) int {
	for i, t := range tables {
		if t.tag == tag {
			return i
		}
	}
	return -1
}
