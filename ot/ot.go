package ot

import (
	"slices"
)

// Font represents the decoded structure of an OpenType font. It owns all the
// tables of the font, decoded or raw. Tables are mutable; changes are picked up
// by Write.
type Font struct {
	Header          *FontHeader
	Flavor          Flavor // container format the font has been read from or will be written to
	RecalcBBoxes    bool   // recalculate bounding boxes and maxp profile on Write
	RecalcTimestamp bool   // set head.modified to the current time on Write
	tables          map[Tag]Table
	order           []Tag         // tables in the order they have been read
	parseErrors     []FontError   // Errors accumulated during parsing
	parseWarnings   []FontWarning // Warnings accumulated during parsing
}

// FontHeader is the header of the table directory of a font.
//
// OpenType fonts that contain TrueType outlines should use the value of 0x00010000
// for the FontType. OpenType fonts containing CFF data (version 1 or 2) should
// use 0x4F54544F ('OTTO', when re-interpreted as a Tag).
// The Apple specification for TrueType fonts allows for 'true' and 'typ1',
// but these version tags should not be used for OpenType fonts.
type FontHeader struct {
	FontType   uint32
	TableCount uint16
}

// Font types as found in FontHeader.FontType.
const (
	TypeTrueType uint32 = 0x00010000
	TypeCFF      uint32 = 0x4f54544f // 'OTTO'
	TypeApple    uint32 = 0x74727565 // 'true'
)

// Flavor is the container format of a font file.
type Flavor int

// Container formats.
const (
	FlavorSFNT  Flavor = iota // plain OpenType/TrueType file
	FlavorWOFF                // WOFF 1.0
	FlavorWOFF2               // WOFF 2.0
)

func (f Flavor) String() string {
	switch f {
	case FlavorWOFF:
		return "woff"
	case FlavorWOFF2:
		return "woff2"
	}
	return "sfnt"
}

// New creates an empty font for a given font type (TypeTrueType or TypeCFF).
func New(fontType uint32) *Font {
	return &Font{
		Header: &FontHeader{FontType: fontType},
		tables: make(map[Tag]Table),
	}
}

// Table returns the font table for a given tag. If a table for a tag cannot
// be found in the font, nil is returned.
//
// Not every kind of font table is interpreted. However, `Table` will return at
// least a generic table type for each table contained in the font, i.e. no table
// information will be dropped.
//
// For example to receive the `OS/2` and the `loca` table, clients may call
//
//	os2  := otf.Table(ot.T("OS/2")).Self().AsOS2()
//	loca := otf.Table(ot.T("loca")).Self().AsLoca()
//
// Table tag names are case-sensitive, following the names in the OpenType specification.
func (otf *Font) Table(tag Tag) Table {
	if otf == nil {
		return nil
	}
	if t, ok := otf.tables[tag]; ok {
		return t
	}
	return nil
}

// Lookup returns a typed reference to the table for tag. If the font has no such
// table, the reference is empty and all of its down-casts return nil:
//
//	if head := otf.Lookup(ot.T("head")).AsHead(); head != nil { … }
func (otf *Font) Lookup(tag Tag) TableSelf {
	if t := otf.Table(tag); t != nil {
		return t.Self()
	}
	return TableSelf{}
}

// HasTable reports whether the font contains a table for tag.
func (otf *Font) HasTable(tag Tag) bool {
	return otf.Table(tag) != nil
}

// TableTags returns a list of tags, one for each table contained in the font,
// in the order the tables have been read or added.
func (otf *Font) TableTags() []Tag {
	tags := make([]Tag, 0, len(otf.order))
	for _, tag := range otf.order {
		if _, ok := otf.tables[tag]; ok {
			tags = append(tags, tag)
		}
	}
	return tags
}

// SetTable adds a table to the font or replaces an existing one.
func (otf *Font) SetTable(tag Tag, t Table) {
	if t == nil {
		otf.RemoveTable(tag)
		return
	}
	if otf.tables == nil {
		otf.tables = make(map[Tag]Table)
	}
	if _, ok := otf.tables[tag]; !ok {
		otf.order = append(otf.order, tag)
	}
	if tb := t.Self().tableBase; tb != nil {
		tb.name = tag
	}
	otf.tables[tag] = t
}

// RemoveTable drops a table from the font. Removing a non-existent table is a no-op.
func (otf *Font) RemoveTable(tag Tag) {
	if _, ok := otf.tables[tag]; !ok {
		return
	}
	delete(otf.tables, tag)
	otf.order = slices.DeleteFunc(otf.order, func(t Tag) bool { return t == tag })
}

// IsCFF reports whether the font has PostScript (CFF) outlines.
func (otf *Font) IsCFF() bool {
	return otf.Header != nil && otf.Header.FontType == TypeCFF
}

// IsTrueType reports whether the font has TrueType outlines.
func (otf *Font) IsTrueType() bool {
	return otf.Header != nil && (otf.Header.FontType == TypeTrueType || otf.Header.FontType == TypeApple)
}

// NumGlyphs returns the number of glyphs as stated by table maxp, or 0.
func (otf *Font) NumGlyphs() int {
	if maxp := otf.Lookup(T("maxp")).AsMaxP(); maxp != nil {
		return int(maxp.NumGlyphs)
	}
	return 0
}

// Clone creates a deep copy of the font by serializing and re-parsing it.
// The copy has the flavor and settings of the original.
func (otf *Font) Clone() (*Font, error) {
	flavor := otf.Flavor
	otf.Flavor = FlavorSFNT
	data, err := Serialize(otf, Some(false))
	otf.Flavor = flavor
	if err != nil {
		return nil, err
	}
	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	c.Flavor = flavor
	c.RecalcBBoxes = otf.RecalcBBoxes
	c.RecalcTimestamp = otf.RecalcTimestamp
	return c, nil
}

// Errors returns all errors encountered during font parsing.
// These errors represent issues that were found but did not prevent parsing from completing.
func (otf *Font) Errors() []FontError {
	if otf.parseErrors == nil {
		return []FontError{}
	}
	return otf.parseErrors
}

// Warnings returns all warnings encountered during font parsing.
func (otf *Font) Warnings() []FontWarning {
	if otf.parseWarnings == nil {
		return []FontWarning{}
	}
	return otf.parseWarnings
}

// CriticalErrors returns all errors with critical severity.
func (otf *Font) CriticalErrors() []FontError {
	critical := make([]FontError, 0)
	for _, err := range otf.parseErrors {
		if err.Severity == SeverityCritical {
			critical = append(critical, err)
		}
	}
	return critical
}

// HasCriticalErrors reports whether parsing encountered critical errors.
func (otf *Font) HasCriticalErrors() bool {
	return len(otf.CriticalErrors()) > 0
}

// GlyphIndex is a glyph index in a font.
type GlyphIndex uint16

// --- Tag -------------------------------------------------------------------

// Tag is defined by the spec as:
// Array of four uint8s (length = 32 bits) used to identify a table, design-variation axis,
// script, language system, feature, or baseline
type Tag uint32

// MakeTag creates a Tag from 4 bytes, e.g.,
// If b is shorter or longer, it will be silently extended or cut as appropriate
//
//	MakeTag([]byte("cmap"))
func MakeTag(b []byte) Tag {
	if b == nil {
		b = []byte{0, 0, 0, 0}
	} else if len(b) > 4 {
		b = b[:4]
	} else if len(b) < 4 {
		b = append([]byte{0, 0, 0, 0}[:4-len(b)], b...)
	}
	return Tag(u32(b))
}

// T returns a Tag from a (4-letter) string.
// If t is shorter or longer, it will be silently extended or cut as appropriate
func T(t string) Tag {
	t = (t + "    ")[:4]
	return Tag(u32([]byte(t)))
}

func (t Tag) String() string {
	bytes := []byte{
		byte(t >> 24 & 0xff),
		byte(t >> 16 & 0xff),
		byte(t >> 8 & 0xff),
		byte(t & 0xff),
	}
	return string(bytes)
}

// --- Table -----------------------------------------------------------------

// Table represents one of the various OpenType font tables.
//
// Binary returns the bytes of a table as they have been read. Encode serializes
// the current state of a table, including all changes clients have made to
// exported fields of a decoded table. For tables which are not decoded, both
// return the same bytes.
type Table interface {
	Extent() (uint32, uint32) // offset and byte size within the font's binary data
	Binary() []byte           // the bytes of this table as loaded; should be treated as read-only
	Encode() ([]byte, error)  // serialized current state of the table
	Self() TableSelf          // reference to itself
}

func newTable(tag Tag, b binarySegm, offset, size uint32) *genericTable {
	t := &genericTable{tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	},
	}
	t.self = t
	return t
}

// NewRawTable creates a table which is not interpreted, holding data as is.
func NewRawTable(tag Tag, data []byte) Table {
	return newTable(tag, data, 0, uint32(len(data)))
}

type genericTable struct {
	tableBase
}

// tableBase is a common parent for all kinds of OpenType tables.
type tableBase struct {
	data   binarySegm // bytes of the table as loaded
	name   Tag        // 4-byte name as an integer
	offset uint32     // from offset
	length uint32     // to offset + length
	self   any
}

// Extent returns offset and byte size of this table within the font file it was read from.
func (tb *tableBase) Extent() (uint32, uint32) {
	return tb.offset, tb.length
}

// Binary returns the bytes of this table as loaded. Should be treated as read-only by
// clients, as it is a view into the original data.
func (tb *tableBase) Binary() []byte {
	return tb.data
}

// Encode returns the bytes of a table which is not decoded.
func (tb *tableBase) Encode() ([]byte, error) {
	return tb.data, nil
}

func (tb *tableBase) Self() TableSelf {
	return TableSelf{tableBase: tb}
}

// TableSelf is a reference to a table. Its primary use is for converting
// a generic table to a concrete table flavour, and for reproducing the
// name tag of a table.
type TableSelf struct {
	tableBase *tableBase
}

// NameTag returns the 4-letter name of a table.
func (tself TableSelf) NameTag() Tag {
	if tself.tableBase == nil {
		return 0
	}
	return tself.tableBase.name
}

func safeSelf(tself TableSelf) any {
	if tself.tableBase == nil || tself.tableBase.self == nil {
		return TableSelf{}
	}
	return tself.tableBase.self
}

// AsCMap returns this table as a cmap table, or nil.
func (tself TableSelf) AsCMap() *CMapTable {
	if k, ok := safeSelf(tself).(*CMapTable); ok {
		return k
	}
	return nil
}

// AsKern returns this table as a kern table, or nil.
func (tself TableSelf) AsKern() *KernTable {
	if k, ok := safeSelf(tself).(*KernTable); ok {
		return k
	}
	return nil
}

// AsLayout returns this table as a GSUB or GPOS table, or nil.
func (tself TableSelf) AsLayout() *LayoutTable {
	if g, ok := safeSelf(tself).(*LayoutTable); ok {
		return g
	}
	return nil
}

// AsGDef returns this table as a GDEF table, or nil.
func (tself TableSelf) AsGDef() *GDefTable {
	if g, ok := safeSelf(tself).(*GDefTable); ok {
		return g
	}
	return nil
}

// AsLoca returns this table as a loca table, or nil.
func (tself TableSelf) AsLoca() *LocaTable {
	if k, ok := safeSelf(tself).(*LocaTable); ok {
		return k
	}
	return nil
}

// AsGlyf returns this table as a glyf table, or nil.
func (tself TableSelf) AsGlyf() *GlyfTable {
	if k, ok := safeSelf(tself).(*GlyfTable); ok {
		return k
	}
	return nil
}

// AsMaxP returns this table as a maxp table, or nil.
func (tself TableSelf) AsMaxP() *MaxPTable {
	if k, ok := safeSelf(tself).(*MaxPTable); ok {
		return k
	}
	return nil
}

// AsHead returns this table as a head table, or nil.
func (tself TableSelf) AsHead() *HeadTable {
	if k, ok := safeSelf(tself).(*HeadTable); ok {
		return k
	}
	return nil
}

// AsHHea returns this table as a hhea table, or nil.
func (tself TableSelf) AsHHea() *HHeaTable {
	if k, ok := safeSelf(tself).(*HHeaTable); ok {
		return k
	}
	return nil
}

// AsOS2 returns this table as an OS/2 table, or nil.
func (tself TableSelf) AsOS2() *OS2Table {
	if k, ok := safeSelf(tself).(*OS2Table); ok {
		return k
	}
	return nil
}

// AsHMtx returns this table as a hmtx table, or nil.
func (tself TableSelf) AsHMtx() *HMtxTable {
	if k, ok := safeSelf(tself).(*HMtxTable); ok {
		return k
	}
	return nil
}

// AsPost returns this table as a post table, or nil.
func (tself TableSelf) AsPost() *PostTable {
	if k, ok := safeSelf(tself).(*PostTable); ok {
		return k
	}
	return nil
}

// AsName returns this table as a name table, or nil.
func (tself TableSelf) AsName() *NameTable {
	if k, ok := safeSelf(tself).(*NameTable); ok {
		return k
	}
	return nil
}

// AsFvar returns this table as an fvar table, or nil.
func (tself TableSelf) AsFvar() *FvarTable {
	if k, ok := safeSelf(tself).(*FvarTable); ok {
		return k
	}
	return nil
}

// AsCFF returns this table as a CFF table, or nil.
func (tself TableSelf) AsCFF() *CFFTable {
	if k, ok := safeSelf(tself).(*CFFTable); ok {
		return k
	}
	return nil
}
