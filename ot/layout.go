package ot

import (
	"fmt"
	"slices"
)

// LayoutTable is a common type for the OpenType advanced layout tables GSUB and GPOS.
//
// LayoutTable keeps the bytes of the table and navigates the script list and the
// feature list on demand. Operations changing the table (e.g., RenameFeature) patch
// a private copy of the bytes, which Encode returns.
type LayoutTable struct {
	tableBase
	MajorVersion   uint16
	MinorVersion   uint16
	scriptList     int // offsets from the start of the table
	featureList    int
	lookupList     int
	featureVarList int
	patched        binarySegm // bytes after a change, nil before
}

// FeatureRecord is an entry of the feature list of a layout table.
type FeatureRecord struct {
	Tag    Tag
	Offset int // offset of the feature table from the start of the layout table
}

func newLayoutTable(tag Tag, b binarySegm, offset, size uint32) *LayoutTable {
	t := &LayoutTable{}
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

func parseLayout(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	t := newLayoutTable(tag, b, offset, size)
	r := newFieldReader(b)
	t.MajorVersion = r.u16()
	t.MinorVersion = r.u16()
	t.scriptList = int(r.u16())
	t.featureList = int(r.u16())
	t.lookupList = int(r.u16())
	if t.MajorVersion == 1 && t.MinorVersion >= 1 {
		t.featureVarList = int(r.u32())
	}
	if r.err != nil {
		ec.addError(tag, "Header", "layout table header incomplete", SeverityCritical, offset)
		return nil, errFontFormat(fmt.Sprintf("%s header", tag))
	}
	if t.MajorVersion != 1 {
		ec.addWarning(tag, fmt.Sprintf("unknown layout table version %d.%d", t.MajorVersion, t.MinorVersion), offset)
	}
	for _, off := range []int{t.scriptList, t.featureList, t.lookupList, t.featureVarList} {
		if off > len(b) {
			ec.addError(tag, "Header", "offset exceeds table", SeverityMajor, offset)
			return nil, errFontFormat(fmt.Sprintf("%s header offset %d exceeds table", tag, off))
		}
	}
	tracer().Debugf("%s has %d features", tag, len(t.Features()))
	return t, nil
}

func (t *LayoutTable) bytes() binarySegm {
	if t.patched != nil {
		return t.patched
	}
	return t.data
}

// Encode returns the bytes of the table, including changes.
func (t *LayoutTable) Encode() ([]byte, error) {
	return t.bytes(), nil
}

// Features returns the records of the feature list, in the order of the list.
func (t *LayoutTable) Features() []FeatureRecord {
	if t.featureList == 0 {
		return nil
	}
	b := t.bytes()
	n, err := b.u16(t.featureList)
	if err != nil {
		return nil
	}
	var records []FeatureRecord
	for i := 0; i < int(n); i++ {
		rec, err := b.view(t.featureList+2+6*i, 6)
		if err != nil {
			break
		}
		records = append(records, FeatureRecord{
			Tag:    MakeTag(rec[:4]),
			Offset: t.featureList + int(u16(rec[4:])),
		})
	}
	return records
}

// FeatureTags returns the distinct tags of the feature list.
func (t *LayoutTable) FeatureTags() []Tag {
	var tags []Tag
	for _, f := range t.Features() {
		if !slices.Contains(tags, f.Tag) {
			tags = append(tags, f.Tag)
		}
	}
	return tags
}

// UINameIDs returns the name IDs referenced as UI names by the feature parameters
// of stylistic set features ('ss01' … 'ss20').
func (t *LayoutTable) UINameIDs() []uint16 {
	b := t.bytes()
	var ids []uint16
	for _, f := range t.Features() {
		s := f.Tag.String()
		if len(s) != 4 || s[:2] != "ss" || s[2] < '0' || s[2] > '9' || s[3] < '0' || s[3] > '9' {
			continue
		}
		paramsOffset, err := b.u16(f.Offset)
		if err != nil || paramsOffset == 0 {
			continue
		}
		// FeatureParams for stylistic sets: version, UINameID
		nameID, err := b.u16(f.Offset + int(paramsOffset) + 2)
		if err != nil {
			continue
		}
		if !slices.Contains(ids, nameID) {
			ids = append(ids, nameID)
		}
	}
	slices.Sort(ids)
	return ids
}

// RenameFeature changes the tag of all feature records tagged from to to. The
// feature list is then sorted by tag, and all references to feature indices (from
// language systems and feature variations) are remapped. RenameFeature returns
// false if the table has no feature list.
func (t *LayoutTable) RenameFeature(from, to Tag) bool {
	if t.featureList == 0 {
		return false
	}
	features := t.Features()
	if from == to || !slices.ContainsFunc(features, func(f FeatureRecord) bool { return f.Tag == from }) {
		return true
	}
	b := slices.Clone(t.bytes())
	type indexed struct {
		FeatureRecord
		inx int
	}
	recs := make([]indexed, len(features))
	for i, f := range features {
		if f.Tag == from {
			f.Tag = to
		}
		recs[i] = indexed{f, i}
	}
	slices.SortStableFunc(recs, func(a, b indexed) int {
		switch {
		case a.Tag < b.Tag:
			return -1
		case a.Tag > b.Tag:
			return 1
		}
		return 0
	})
	remap := make([]uint16, len(recs)) // old index → new index
	w := &binaryWriter{buf: b[:t.featureList+2]}
	for newInx, rec := range recs {
		remap[rec.inx] = uint16(newInx)
		w.u32(uint32(rec.Tag))
		w.u16(uint16(rec.Offset - t.featureList))
	}
	t.remapLangSys(b, remap)
	t.remapFeatureVariations(b, remap)
	t.patched = b
	return true
}

// remapLangSys rewrites the feature indices of all language systems.
func (t *LayoutTable) remapLangSys(b binarySegm, remap []uint16) {
	if t.scriptList == 0 {
		return
	}
	fix := func(at int) {
		if v, err := b.u16(at); err == nil && int(v) < len(remap) {
			w := &binaryWriter{buf: b[:at]}
			w.u16(remap[v])
		}
	}
	done := make(map[int]bool) // language systems may be shared
	remapLangSys := func(at int) {
		if done[at] {
			return
		}
		done[at] = true
		// lookupOrderOffset, requiredFeatureIndex, featureIndexCount, featureIndices
		fix(at + 2) // 0xFFFF (no required feature) is never remapped
		n, err := b.u16(at + 4)
		if err != nil {
			return
		}
		for i := 0; i < int(n); i++ {
			fix(at + 6 + 2*i)
		}
	}
	scriptCount, _ := b.u16(t.scriptList)
	for i := 0; i < int(scriptCount); i++ {
		scriptOffset, err := b.u16(t.scriptList + 2 + 6*i + 4)
		if err != nil {
			return
		}
		script := t.scriptList + int(scriptOffset)
		if defaultLangSys, err := b.u16(script); err == nil && defaultLangSys != 0 {
			remapLangSys(script + int(defaultLangSys))
		}
		langSysCount, _ := b.u16(script + 2)
		for j := 0; j < int(langSysCount); j++ {
			langSysOffset, err := b.u16(script + 4 + 6*j + 4)
			if err != nil {
				break
			}
			remapLangSys(script + int(langSysOffset))
		}
	}
}

// remapFeatureVariations rewrites the feature indices of feature table substitutions.
func (t *LayoutTable) remapFeatureVariations(b binarySegm, remap []uint16) {
	if t.featureVarList == 0 {
		return
	}
	n, err := b.u32(t.featureVarList + 4)
	if err != nil {
		return
	}
	done := make(map[int]bool)
	for i := 0; i < int(n); i++ {
		substOffset, err := b.u32(t.featureVarList + 8 + 8*i + 4)
		if err != nil || substOffset == 0 {
			continue
		}
		subst := t.featureVarList + int(substOffset)
		if done[subst] {
			continue
		}
		done[subst] = true
		count, _ := b.u16(subst + 4)
		for j := 0; j < int(count); j++ {
			at := subst + 6 + 6*j
			if v, err := b.u16(at); err == nil && int(v) < len(remap) {
				w := &binaryWriter{buf: b[:at]}
				w.u16(remap[v])
			}
		}
	}
}

// --- GDEF ------------------------------------------------------------------

// GDefTable is the Glyph Definition table. It provides various glyph properties
// used in OpenType Layout processing. Of its content only the glyph class
// definitions are decoded; the table is written back unchanged.
type GDefTable struct {
	tableBase
	MajorVersion   uint16
	MinorVersion   uint16
	glyphClasses   map[GlyphIndex]uint16
	hasClassDef    bool
	hasMarkSetsDef bool
}

// Glyph classes of GDEF.
const (
	GlyphClassBase      uint16 = 1
	GlyphClassLigature  uint16 = 2
	GlyphClassMark      uint16 = 3
	GlyphClassComponent uint16 = 4
)

func newGDefTable(tag Tag, b binarySegm, offset, size uint32) *GDefTable {
	t := &GDefTable{}
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

// The Glyph Definition (GDEF) table provides various glyph properties used in
// OpenType Layout processing.
func parseGDef(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	t := newGDefTable(tag, b, offset, size)
	r := newFieldReader(b)
	t.MajorVersion = r.u16()
	t.MinorVersion = r.u16()
	classDefOffset := r.u16()
	r.skip(6) // attachList, ligCaretList, markAttachClassDef
	if t.MajorVersion == 1 && t.MinorVersion >= 2 {
		t.hasMarkSetsDef = r.u16() != 0
	}
	if r.err != nil {
		ec.addError(tag, "Header", "GDEF header incomplete", SeverityCritical, offset)
		return nil, errFontFormat("GDEF header")
	}
	if classDefOffset != 0 {
		classes, err := parseClassDef(b, int(classDefOffset))
		if err != nil {
			ec.addError(tag, "GlyphClassDef", err.Error(), SeverityMajor, offset+uint32(classDefOffset))
		} else {
			t.glyphClasses = classes
			t.hasClassDef = true
		}
	}
	return t, nil
}

// parseClassDef reads a class definition table of format 1 or 2.
func parseClassDef(b binarySegm, at int) (map[GlyphIndex]uint16, error) {
	r := newFieldReader(b[min(at, len(b)):])
	classes := make(map[GlyphIndex]uint16)
	switch format := r.u16(); format {
	case 1:
		start := r.u16()
		n := int(r.u16())
		if n*2 > r.remaining() {
			return nil, errFontFormat("class definition exceeds table")
		}
		for i := 0; i < n; i++ {
			if c := r.u16(); c != 0 {
				classes[GlyphIndex(int(start)+i)] = c
			}
		}
	case 2:
		n := int(r.u16())
		if n*6 > r.remaining() {
			return nil, errFontFormat("class ranges exceed table")
		}
		for i := 0; i < n; i++ {
			start, end, c := r.u16(), r.u16(), r.u16()
			for g := int(start); g <= int(end) && c != 0; g++ {
				classes[GlyphIndex(g)] = c
			}
		}
	default:
		return nil, errFontFormat(fmt.Sprintf("unknown class definition format %d", format))
	}
	return classes, r.err
}

// HasGlyphClassDef reports whether the table defines glyph classes.
func (t *GDefTable) HasGlyphClassDef() bool {
	return t.hasClassDef
}

// HasMarkGlyphSets reports whether the table defines mark glyph sets.
func (t *GDefTable) HasMarkGlyphSets() bool {
	return t.hasMarkSetsDef
}

// GlyphClass returns the class of a glyph, or 0 if the glyph is not classified.
func (t *GDefTable) GlyphClass(gid GlyphIndex) uint16 {
	return t.glyphClasses[gid]
}
