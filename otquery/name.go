package otquery

import (
	"iter"

	"github.com/npillmayer/foundry/ot"
	"golang.org/x/image/font/sfnt"
)

// NamesRange yields decoded `(nameID, value)` pairs from a font's OpenType
// `name` table, one per name ID, preferring Windows English strings.
//
// Records in encodings which are not decoded are skipped.
func NamesRange(otf *ot.Font) iter.Seq2[sfnt.NameID, string] {
	names := otf.Lookup(ot.T("name")).AsName()
	return func(yield func(sfnt.NameID, string) bool) {
		if names == nil {
			tracer().Debugf("no name table found in font")
			return
		}
		seen := make(map[uint16]bool)
		for _, rec := range names.Records {
			if seen[rec.NameID] || !rec.IsDecoded() {
				continue
			}
			seen[rec.NameID] = true
			value := names.Name(rec.NameID)
			if value == "" {
				continue
			}
			if !yield(sfnt.NameID(rec.NameID), value) {
				return
			}
		}
	}
}

// NameInfo returns selected names of a font, with keys "family", "subfamily",
// "full", "version", "postscript", "typo-family" and "typo-subfamily".
// Names not present in the font are omitted.
func NameInfo(otf *ot.Font) map[string]string {
	info := make(map[string]string)
	names := otf.Lookup(ot.T("name")).AsName()
	if names == nil {
		return info
	}
	for key, id := range map[string]uint16{
		"family":         ot.NameFamily,
		"subfamily":      ot.NameSubfamily,
		"full":           ot.NameFull,
		"version":        ot.NameVersion,
		"postscript":     ot.NamePostScript,
		"typo-family":    ot.NameTypoFamily,
		"typo-subfamily": ot.NameTypoSubfamily,
	} {
		if v := names.Name(id); v != "" {
			info[key] = v
		}
	}
	return info
}
