package ot

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

// Code comment often will cite passage from the
// OpenType specification version 1.8.4;
// see https://docs.microsoft.com/en-us/typography/opentype/spec/.

// ---------------------------------------------------------------------------

// Checked arithmetic operations to prevent integer overflow

// checkedMulInt checks for overflow in multiplication of two integers
func checkedMulInt(a, b int) (int, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > 0 && b > 0 && a > math.MaxInt/b {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	if a < 0 && b < 0 && a < math.MaxInt/b {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	if (a < 0 && b > 0 && a < math.MinInt/b) || (a > 0 && b < 0 && b < math.MinInt/a) {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	return a * b, nil
}

// checkedAddInt checks for overflow in addition of two integers
func checkedAddInt(a, b int) (int, error) {
	if b > 0 && a > math.MaxInt-b {
		return 0, fmt.Errorf("integer overflow: %d + %d", a, b)
	}
	if b < 0 && a < math.MinInt-b {
		return 0, fmt.Errorf("integer overflow: %d + %d", a, b)
	}
	return a + b, nil
}

// checkedMulUint32 checks for overflow in multiplication of two uint32 values
func checkedMulUint32(a, b uint32) (uint32, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > math.MaxUint32/b {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	return a * b, nil
}

// checkedAddUint32 checks for overflow in addition of two uint32 values
func checkedAddUint32(a, b uint32) (uint32, error) {
	if a > math.MaxUint32-b {
		return 0, fmt.Errorf("integer overflow: %d + %d", a, b)
	}
	return a + b, nil
}

// ---------------------------------------------------------------------------

// Container signatures.
const (
	signatureWOFF  uint32 = 0x774f4646 // 'wOFF'
	signatureWOFF2 uint32 = 0x774f4632 // 'wOF2'
)

// tableEntry is a table extracted from a container, before interpretation.
type tableEntry struct {
	tag    Tag
	data   binarySegm
	offset uint32 // offset within the container, for error messages
}

// Parse parses an OpenType font from a byte slice. Parse recognizes the container
// by its signature: plain SFNT files (TrueType and CFF flavoured) as well as WOFF
// and WOFF2 web fonts. The container format is noted in Font.Flavor.
//
// An ot.Font needs ongoing access to the fonts byte-data after the Parse function
// returns. Its elements are assumed immutable while the ot.Font remains in use.
func Parse(font []byte) (*Font, error) {
	if len(font) < 12 {
		return nil, fmt.Errorf("font data of %d bytes: %w", len(font), ErrUnknownFormat)
	}
	signature := u32(font)
	tracer().Debugf("font signature = %x|%s", signature, Tag(signature).String())
	ec := &errorCollector{}
	switch signature {
	case TypeTrueType, TypeCFF, TypeApple:
		h, entries, err := parseTableDirectory(font, ec)
		if err != nil {
			return nil, err
		}
		return assemble(h, entries, FlavorSFNT, ec)
	case signatureWOFF:
		h, entries, err := parseWOFF(font, ec)
		if err != nil {
			return nil, err
		}
		return assemble(h, entries, FlavorWOFF, ec)
	case signatureWOFF2:
		h, entries, err := parseWOFF2(font, ec)
		if err != nil {
			return nil, err
		}
		return assemble(h, entries, FlavorWOFF2, ec)
	}
	return nil, fmt.Errorf("signature %x: %w", signature, ErrUnknownFormat)
}

// parseTableDirectory reads the table records of an SFNT file.
func parseTableDirectory(font []byte, ec *errorCollector) (FontHeader, []tableEntry, error) {
	// https://www.microsoft.com/typography/otspec/otff.htm: Offset Table is 12 bytes.
	src := binarySegm(font)
	h := FontHeader{FontType: u32(font), TableCount: u16(font[4:])}
	// "The Offset Table is followed immediately by the Table Record entries …
	// sorted in ascending order by tag", 16 bytes each.
	tableRecordsSize, err := checkedMulInt(16, int(h.TableCount))
	if err != nil {
		ec.addError(T(""), "TableRecords", fmt.Sprintf("table count too large: %v", err), SeverityCritical, 12)
		return h, nil, errFontFormat(fmt.Sprintf("table count too large: %v", err))
	}
	buf, err := src.view(12, tableRecordsSize)
	if err != nil {
		ec.addError(T(""), "TableRecords", "table record entries", SeverityCritical, 12)
		return h, nil, errFontFormat("table record entries")
	}
	entries := make([]tableEntry, 0, h.TableCount)
	for b, prevTag := buf, Tag(0); len(b) > 0; b = b[16:] {
		tag := MakeTag(b)
		if tag < prevTag {
			// fonts in the wild do this; we re-sort on output
			ec.addWarning(tag, "table records not sorted by tag", 12)
		}
		prevTag = tag
		off, size := u32(b[8:12]), u32(b[12:16])
		if off&3 != 0 { // "all tables must begin on four byte boundries".
			ec.addWarning(tag, "table offset not 4-byte aligned", off)
		}
		tableEnd, err := checkedAddUint32(off, size)
		if err != nil {
			ec.addError(tag, "Size", fmt.Sprintf("size calculation overflow: %v", err), SeverityCritical, off)
			return h, nil, errFontFormat(fmt.Sprintf("table %s: size calculation overflow: %v", tag, err))
		}
		if off > uint32(len(src)) || tableEnd > uint32(len(src)) {
			ec.addError(tag, "Bounds", fmt.Sprintf("bounds [%d:%d] exceed font size %d", off, tableEnd, len(src)), SeverityCritical, off)
			return h, nil, errFontFormat(fmt.Sprintf("table %s: bounds [%d:%d] exceed font size %d",
				tag, off, tableEnd, len(src)))
		}
		entries = append(entries, tableEntry{tag: tag, data: src[off:tableEnd], offset: off})
	}
	// keep the physical order of the table data
	slices.SortStableFunc(entries, func(a, b tableEntry) int {
		return cmp.Compare(a.offset, b.offset)
	})
	return h, entries, nil
}

// assemble interprets the tables extracted from a container and links tables
// which depend on each other.
func assemble(h FontHeader, entries []tableEntry, flavor Flavor, ec *errorCollector) (*Font, error) {
	h.TableCount = uint16(len(entries))
	otf := &Font{Header: &h, Flavor: flavor, tables: make(map[Tag]Table, len(entries))}
	for _, e := range entries {
		if _, dup := otf.tables[e.tag]; dup {
			ec.addWarning(e.tag, "duplicate table record ignored", e.offset)
			continue
		}
		t, err := parseTable(e.tag, e.data, e.offset, uint32(len(e.data)), ec)
		if err != nil {
			return nil, fmt.Errorf("table '%s': %w", e.tag, err)
		}
		otf.tables[e.tag] = t
		otf.order = append(otf.order, e.tag)
	}
	if err := decodeDependentTables(otf, ec); err != nil {
		return nil, err
	}
	ec.attach(otf)
	tracer().Debugf("parsed %s font with %d tables, %d errors", flavor, len(otf.order), len(ec.errors))
	return otf, nil
}

// decodeDependentTables decodes the tables which cannot be interpreted on their own:
// hmtx needs hhea and maxp, loca needs head and maxp, glyf needs loca.
func decodeDependentTables(otf *Font, ec *errorCollector) error {
	numGlyphs := -1
	if maxp := otf.Lookup(T("maxp")).AsMaxP(); maxp != nil {
		numGlyphs = int(maxp.NumGlyphs)
	}
	if hmtx := otf.Lookup(T("hmtx")).AsHMtx(); hmtx != nil {
		hhea := otf.Lookup(T("hhea")).AsHHea()
		switch {
		case hhea == nil || numGlyphs < 0:
			ec.addError(T("hmtx"), "Dependencies", "hmtx requires tables hhea and maxp", SeverityMajor, hmtx.offset)
		default:
			if err := hmtx.decode(numGlyphs, int(hhea.NumberOfHMetrics)); err != nil {
				ec.addError(T("hmtx"), "Metrics", err.Error(), SeverityCritical, hmtx.offset)
				return errFontFormat(fmt.Sprintf("hmtx: %v", err))
			}
		}
	}
	loca := otf.Lookup(T("loca")).AsLoca()
	if loca != nil {
		head := otf.Lookup(T("head")).AsHead()
		switch {
		case head == nil || numGlyphs < 0:
			ec.addError(T("loca"), "Dependencies", "loca requires tables head and maxp", SeverityMajor, loca.offset)
			loca = nil
		case head.IndexToLocFormat > 1:
			ec.addError(T("head"), "IndexToLocFormat", fmt.Sprintf("invalid value: %d (must be 0 or 1)", head.IndexToLocFormat), SeverityCritical, 0)
			return errFontFormat(fmt.Sprintf("invalid head.IndexToLocFormat: %d (must be 0 or 1)", head.IndexToLocFormat))
		default:
			if err := loca.decode(numGlyphs, head.IndexToLocFormat == 1); err != nil {
				ec.addError(T("loca"), "Offsets", err.Error(), SeverityCritical, loca.offset)
				return errFontFormat(fmt.Sprintf("loca: %v", err))
			}
		}
	}
	if glyf := otf.Lookup(T("glyf")).AsGlyf(); glyf != nil {
		if loca == nil {
			ec.addError(T("glyf"), "Dependencies", "glyf requires table loca", SeverityMajor, glyf.offset)
		} else if err := glyf.decode(loca); err != nil {
			ec.addError(T("glyf"), "Glyphs", err.Error(), SeverityCritical, glyf.offset)
			return errFontFormat(fmt.Sprintf("glyf: %v", err))
		}
	}
	return nil
}

// According to the OpenType spec, the following tables are
// required for the font to function correctly.
var RequiredTables = []string{
	"cmap", "head", "hhea", "hmtx", "maxp", "name", "OS/2", "post",
}

func parseTable(t Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	switch t {
	case T("cmap"):
		return parseCMap(t, b, offset, size, ec)
	case T("head"):
		return parseHead(t, b, offset, size, ec)
	case T("hhea"):
		return parseHHea(t, b, offset, size, ec)
	case T("hmtx"):
		return parseHMtx(t, b, offset, size, ec)
	case T("maxp"):
		return parseMaxP(t, b, offset, size, ec)
	case T("OS/2"):
		return parseOS2(t, b, offset, size, ec)
	case T("post"):
		return parsePost(t, b, offset, size, ec)
	case T("name"):
		return parseName(t, b, offset, size, ec)
	case T("kern"):
		return parseKern(t, b, offset, size, ec)
	case T("fvar"):
		return parseFvar(t, b, offset, size, ec)
	case T("glyf"):
		return parseGlyf(t, b, offset, size, ec)
	case T("loca"):
		return parseLoca(t, b, offset, size, ec)
	case T("GSUB"), T("GPOS"):
		return parseLayout(t, b, offset, size, ec)
	case T("GDEF"):
		return parseGDef(t, b, offset, size, ec)
	case T("CFF "):
		return parseCFF(t, b, offset, size, ec)
	}
	tracer().Debugf("font contains table (%s), will not be interpreted", t)
	return newTable(t, b, offset, size), nil
}
