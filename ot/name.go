package ot

import (
	"fmt"
	"slices"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// NameTable allows multilingual strings to be associated with the OpenType™ font.
// These strings can represent copyright notices, font names, family names, style
// names, and so on.
//
// Strings of Unicode and Windows platforms, and of Macintosh Roman encoding, are
// decoded to Go strings. Records in other encodings keep their bytes and are
// written back unchanged.
type NameTable struct {
	tableBase
	Version  uint16
	Records  []*NameRecord
	LangTags []string // language-tag records of format 1
}

// NameRecord is a single string of table name.
type NameRecord struct {
	PlatformID uint16
	EncodingID uint16
	LanguageID uint16
	NameID     uint16
	Value      string // decoded string; ignored if raw is set
	raw        []byte // bytes of strings in an encoding we do not decode
}

// Frequently used name IDs.
const (
	NameCopyright        uint16 = 0
	NameFamily           uint16 = 1
	NameSubfamily        uint16 = 2
	NameUniqueID         uint16 = 3
	NameFull             uint16 = 4
	NameVersion          uint16 = 5
	NamePostScript       uint16 = 6
	NameTrademark        uint16 = 7
	NameManufacturer     uint16 = 8
	NameDesigner         uint16 = 9
	NameDescription      uint16 = 10
	NameVendorURL        uint16 = 11
	NameDesignerURL      uint16 = 12
	NameLicense          uint16 = 13
	NameLicenseURL       uint16 = 14
	NameTypoFamily       uint16 = 16
	NameTypoSubfamily    uint16 = 17
	NameCompatibleFull   uint16 = 18
	NameSampleText       uint16 = 19
	NamePostScriptCID    uint16 = 20
	NameWWSFamily        uint16 = 21
	NameWWSSubfamily     uint16 = 22
	NameVariationsPrefix uint16 = 25
)

// Platforms, encodings and languages of name records.
const (
	PlatformUnicode        uint16 = 0
	PlatformMacintosh      uint16 = 1
	PlatformWindows        uint16 = 3
	EncodingWindowsBMP     uint16 = 1
	EncodingMacintoshRoman uint16 = 0
	WindowsEnglishUS       uint16 = 0x0409
	MacintoshEnglish       uint16 = 0
)

func newNameTable(tag Tag, b binarySegm, offset, size uint32) *NameTable {
	t := &NameTable{}
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

// NewNameTable creates an empty name table.
func NewNameTable() *NameTable {
	return newNameTable(T("name"), nil, 0, 0)
}

// nameEncoding returns the text encoding for a platform/encoding pair, or nil.
func nameEncoding(platformID, encodingID uint16) encoding.Encoding {
	switch platformID {
	case PlatformUnicode:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	case PlatformMacintosh:
		if encodingID == EncodingMacintoshRoman {
			return charmap.Macintosh
		}
	case PlatformWindows:
		switch encodingID {
		case 0, 1, 10:
			return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
		}
	}
	return nil
}

// IsDecoded reports whether the record's string is available as Value.
func (rec *NameRecord) IsDecoded() bool {
	return rec.raw == nil
}

func (rec *NameRecord) encode() ([]byte, error) {
	if rec.raw != nil {
		return rec.raw, nil
	}
	enc := nameEncoding(rec.PlatformID, rec.EncodingID)
	if enc == nil {
		return nil, fmt.Errorf("cannot encode name %d for platform %d, encoding %d",
			rec.NameID, rec.PlatformID, rec.EncodingID)
	}
	return enc.NewEncoder().Bytes([]byte(rec.Value))
}

func parseName(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	if len(b) < 6 {
		ec.addError(tag, "Header", "name section corrupt", SeverityCritical, offset)
		return nil, errFontFormat("name section corrupt")
	}
	t := newNameTable(tag, b, offset, size)
	t.Version, _ = b.u16(0)
	n, _ := b.u16(2)
	strOffset, _ := b.u16(4)
	if int(strOffset) > len(b) {
		ec.addError(tag, "Header", "string offset exceeds table", SeverityCritical, offset)
		return nil, errFontFormat(fmt.Sprintf("name table string offset %d exceeds table size %d", strOffset, len(b)))
	}
	strbuf := b[strOffset:]
	tracer().Debugf("name table has %d strings, starting at %d", n, strOffset)
	// Check for arithmetic overflow in name records size calculation
	nameRecsSize, err := checkedMulInt(12, int(n))
	if err != nil {
		return nil, errFontFormat(fmt.Sprintf("name table records size overflow: %v", err))
	}
	requiredSize, err := checkedAddInt(6, nameRecsSize)
	if err != nil || len(b) < requiredSize {
		ec.addError(tag, "Records", "name records exceed table", SeverityCritical, offset)
		return nil, errFontFormat("name section corrupt")
	}
	r := newFieldReader(b[6:])
	for i := 0; i < int(n); i++ {
		rec := &NameRecord{
			PlatformID: r.u16(),
			EncodingID: r.u16(),
			LanguageID: r.u16(),
			NameID:     r.u16(),
		}
		length, off := int(r.u16()), int(r.u16())
		str, err := strbuf.view(off, length)
		if err != nil {
			ec.addWarning(tag, fmt.Sprintf("name record %d exceeds string storage, dropped", i), offset+6+uint32(12*i))
			continue
		}
		if enc := nameEncoding(rec.PlatformID, rec.EncodingID); enc != nil {
			s, err := enc.NewDecoder().Bytes(str)
			if err == nil {
				rec.Value = string(s)
				t.Records = append(t.Records, rec)
				continue
			}
		}
		rec.raw = slices.Clone([]byte(str))
		t.Records = append(t.Records, rec)
	}
	if t.Version == 1 {
		langCount := int(r.u16())
		utf16 := nameEncoding(PlatformWindows, EncodingWindowsBMP)
		for i := 0; i < langCount && r.err == nil; i++ {
			length, off := int(r.u16()), int(r.u16())
			str, err := strbuf.view(off, length)
			if err != nil {
				break
			}
			s, _ := utf16.NewDecoder().Bytes(str)
			t.LangTags = append(t.LangTags, string(s))
		}
	}
	return t, nil
}

// Name returns a name string for a name ID, preferring Windows English, then
// Macintosh English, then any decoded record. If no record exists, "" is returned.
func (t *NameTable) Name(nameID uint16) string {
	if rec := t.Find(nameID, PlatformWindows, EncodingWindowsBMP, WindowsEnglishUS); rec != nil {
		return rec.Value
	}
	if rec := t.Find(nameID, PlatformMacintosh, EncodingMacintoshRoman, MacintoshEnglish); rec != nil {
		return rec.Value
	}
	for _, rec := range t.Records {
		if rec.NameID == nameID && rec.IsDecoded() {
			return rec.Value
		}
	}
	return ""
}

// Find returns the record with exactly the given IDs, or nil.
func (t *NameTable) Find(nameID, platformID, encodingID, languageID uint16) *NameRecord {
	for _, rec := range t.Records {
		if rec.NameID == nameID && rec.PlatformID == platformID &&
			rec.EncodingID == encodingID && rec.LanguageID == languageID {
			return rec
		}
	}
	return nil
}

// SetName sets the string of a record, adding the record if it does not yet exist.
func (t *NameTable) SetName(value string, nameID, platformID, encodingID, languageID uint16) error {
	if nameEncoding(platformID, encodingID) == nil {
		return fmt.Errorf("no encoding for platform %d, encoding %d", platformID, encodingID)
	}
	if rec := t.Find(nameID, platformID, encodingID, languageID); rec != nil {
		rec.Value, rec.raw = value, nil
		return nil
	}
	t.Records = append(t.Records, &NameRecord{
		PlatformID: platformID,
		EncodingID: encodingID,
		LanguageID: languageID,
		NameID:     nameID,
		Value:      value,
	})
	return nil
}

// RemoveNames drops all records for which match returns true and reports the
// number of records removed.
func (t *NameTable) RemoveNames(match func(*NameRecord) bool) int {
	n := len(t.Records)
	t.Records = slices.DeleteFunc(t.Records, match)
	return n - len(t.Records)
}

// Encode serializes table name. Records are sorted by platform, encoding, language
// and name ID; identical strings share storage.
func (t *NameTable) Encode() ([]byte, error) {
	records := slices.Clone(t.Records)
	slices.SortStableFunc(records, func(a, b *NameRecord) int {
		switch {
		case a.PlatformID != b.PlatformID:
			return int(a.PlatformID) - int(b.PlatformID)
		case a.EncodingID != b.EncodingID:
			return int(a.EncodingID) - int(b.EncodingID)
		case a.LanguageID != b.LanguageID:
			return int(a.LanguageID) - int(b.LanguageID)
		}
		return int(a.NameID) - int(b.NameID)
	})
	version := t.Version
	if len(t.LangTags) > 0 {
		version = 1
	}
	headerSize := 6 + 12*len(records)
	if version == 1 {
		headerSize += 2 + 4*len(t.LangTags)
	}
	storage := newBinaryWriter(256)
	stored := make(map[string]int)
	store := func(b []byte) (int, error) {
		if off, ok := stored[string(b)]; ok {
			return off, nil
		}
		off := storage.Len()
		if off+len(b) > 0xFFFF || len(b) > 0xFFFF {
			return 0, fmt.Errorf("name table string storage overflow")
		}
		stored[string(b)] = off
		storage.bytes(b)
		return off, nil
	}
	w := newBinaryWriter(headerSize)
	w.u16(version)
	w.u16(uint16(len(records)))
	w.u16(uint16(headerSize))
	for _, rec := range records {
		b, err := rec.encode()
		if err != nil {
			return nil, err
		}
		off, err := store(b)
		if err != nil {
			return nil, err
		}
		w.u16(rec.PlatformID)
		w.u16(rec.EncodingID)
		w.u16(rec.LanguageID)
		w.u16(rec.NameID)
		w.u16(uint16(len(b)))
		w.u16(uint16(off))
	}
	if version == 1 {
		w.u16(uint16(len(t.LangTags)))
		utf16 := nameEncoding(PlatformWindows, EncodingWindowsBMP)
		for _, tag := range t.LangTags {
			b, err := utf16.NewEncoder().Bytes([]byte(tag))
			if err != nil {
				return nil, err
			}
			off, err := store(b)
			if err != nil {
				return nil, err
			}
			w.u16(uint16(len(b)))
			w.u16(uint16(off))
		}
	}
	w.bytes(storage.Bytes())
	return w.Bytes(), nil
}
