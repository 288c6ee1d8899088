package tables

import (
	"fmt"
	"slices"
	"strings"

	"github.com/npillmayer/foundry/ot"
)

// Platform selects the name records a Name operation applies to.
type Platform int

// Platforms of name records. Unicode platform records are left untouched by
// Set, but take part in Remove and FindReplace with PlatformAny.
const (
	PlatformAny Platform = iota
	PlatformWindows
	PlatformMac
)

func (p Platform) matches(rec *ot.NameRecord) bool {
	switch p {
	case PlatformWindows:
		return rec.PlatformID == ot.PlatformWindows
	case PlatformMac:
		return rec.PlatformID == ot.PlatformMacintosh
	}
	return true
}

// Name wraps table name.
type Name struct {
	Base
}

// NewName creates a wrapper for table name of a font.
func NewName(otf *ot.Font) (*Name, error) {
	b, err := newBase(otf, ot.T("name"))
	if err != nil {
		return nil, err
	}
	if otf.Lookup(ot.T("name")).AsName() == nil {
		return nil, fmt.Errorf("table 'name' not decoded: %w", ot.ErrMissingTable)
	}
	return &Name{Base: b}, nil
}

// NameTable returns the live name table.
func (n *Name) NameTable() *ot.NameTable {
	return n.otf.Lookup(ot.T("name")).AsName()
}

// Get returns the string for a name ID, preferring Windows English records.
func (n *Name) Get(nameID uint16) string {
	return n.NameTable().Name(nameID)
}

// Set sets the string of a name ID for English on a platform. PlatformAny
// sets both the Windows and the Macintosh record.
func (n *Name) Set(nameID uint16, value string, platform Platform) error {
	t := n.NameTable()
	if platform != PlatformMac {
		if err := t.SetName(value, nameID, ot.PlatformWindows, ot.EncodingWindowsBMP, ot.WindowsEnglishUS); err != nil {
			return err
		}
	}
	if platform != PlatformWindows {
		if err := t.SetName(value, nameID, ot.PlatformMacintosh, ot.EncodingMacintoshRoman, ot.MacintoshEnglish); err != nil {
			return err
		}
	}
	tracer().Debugf("name: set %d = %q", nameID, value)
	return nil
}

// Remove drops all records of the given name IDs on a platform and returns the
// number of records removed.
func (n *Name) Remove(platform Platform, nameIDs ...uint16) int {
	return n.NameTable().RemoveNames(func(rec *ot.NameRecord) bool {
		return platform.matches(rec) && slices.Contains(nameIDs, rec.NameID)
	})
}

// RemoveMacNames drops all Macintosh records except those of the given name IDs.
func (n *Name) RemoveMacNames(keep ...uint16) int {
	return n.NameTable().RemoveNames(func(rec *ot.NameRecord) bool {
		return rec.PlatformID == ot.PlatformMacintosh && !slices.Contains(keep, rec.NameID)
	})
}

// FindReplace replaces old by new in all decoded records on a platform,
// restricted to nameIDs if any are given. Double blanks left by the
// replacement are collapsed and the result is trimmed. Records which end up
// empty are removed. FindReplace returns the number of records changed.
func (n *Name) FindReplace(old, new string, platform Platform, nameIDs ...uint16) int {
	t := n.NameTable()
	changed := 0
	for _, rec := range t.Records {
		if !rec.IsDecoded() || !platform.matches(rec) {
			continue
		}
		if len(nameIDs) > 0 && !slices.Contains(nameIDs, rec.NameID) {
			continue
		}
		if !strings.Contains(rec.Value, old) {
			continue
		}
		rec.Value = CleanString(strings.ReplaceAll(rec.Value, old, new))
		changed++
	}
	t.RemoveNames(func(rec *ot.NameRecord) bool {
		return rec.IsDecoded() && rec.Value == ""
	})
	return changed
}

// CleanString collapses runs of blanks to single blanks and trims the result.
func CleanString(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
