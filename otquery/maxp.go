package otquery

import (
	"github.com/npillmayer/foundry/ot"
)

// MaxPTableInfo is a typed query view over OpenType table 'maxp'.
// For version 1.0 tables, the TrueType profile fields are set.
type MaxPTableInfo struct {
	VersionFixed uint32
	NumGlyphs    uint16

	// TrueType profile fields (version 1.0 only)
	HasExtendedProfile   bool
	MaxPoints            uint16
	MaxContours          uint16
	MaxCompositePoints   uint16
	MaxCompositeContours uint16
	MaxComponentElements uint16
	MaxComponentDepth    uint16
}

// MaxPInfo summarizes table 'maxp'.
// Returns (info, true) on success, or (zero, false) if the table is missing.
func MaxPInfo(otf *ot.Font) (MaxPTableInfo, bool) {
	var info MaxPTableInfo
	if otf == nil {
		return info, false
	}
	maxp := otf.Lookup(ot.T("maxp")).AsMaxP()
	if maxp == nil {
		return info, false
	}
	info.VersionFixed = maxp.Version
	info.NumGlyphs = maxp.NumGlyphs
	if maxp.Version != ot.MaxPVersion10 {
		return info, true
	}
	info.HasExtendedProfile = true
	info.MaxPoints = maxp.MaxPoints
	info.MaxContours = maxp.MaxContours
	info.MaxCompositePoints = maxp.MaxCompositePoints
	info.MaxCompositeContours = maxp.MaxCompositeContours
	info.MaxComponentElements = maxp.MaxComponentElements
	info.MaxComponentDepth = maxp.MaxComponentDepth
	return info, true
}
