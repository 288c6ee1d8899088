package ot

import (
	"errors"
	"fmt"
)

// Error kinds of package ot. Functions of this package wrap one of these
// with additional context, clients should test with errors.Is.
var (
	// ErrMissingTable is returned if a table is required but not present in a font.
	ErrMissingTable = errors.New("missing table")
	// ErrFieldNotFound is returned if a table does not have a field of a given name.
	ErrFieldNotFound = errors.New("field not found")
	// ErrUnknownFormat is returned for font data with an unrecognized signature.
	ErrUnknownFormat = errors.New("unknown font format")
	// ErrMissingGlyph is returned if a glyph required for an operation is not mapped.
	ErrMissingGlyph = errors.New("missing glyph")
	// ErrCorruptFont is returned if font data cannot be decoded or encoded.
	ErrCorruptFont = errors.New("corrupt font data")
)

// ErrorSeverity classifies the issues found while parsing a font.
type ErrorSeverity int

const (
	SeverityCritical ErrorSeverity = iota // table unusable, Parse fails or drops data
	SeverityMajor                         // table decoded partially or not interpreted
	SeverityMinor                         // cosmetic
)

func (s ErrorSeverity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityMajor:
		return "MAJOR"
	case SeverityMinor:
		return "MINOR"
	}
	return "UNKNOWN"
}

// FontError is an issue found in a table while parsing. Parse collects these
// instead of failing, as long as the font stays usable; see Font.Errors.
type FontError struct {
	Table    Tag           // table of the issue, 0 for the container itself
	Section  string        // part of the table, e.g. "Header"
	Issue    string        // description
	Severity ErrorSeverity //
	Offset   uint32        // offset in the font data, 0 if unknown
}

func (e FontError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Severity, location(e.Table, e.Section, e.Offset, e.Issue))
}

// Is makes critical issues match ErrCorruptFont.
func (e FontError) Is(target error) bool {
	return target == ErrCorruptFont && e.Severity == SeverityCritical
}

// FontWarning is a harmless irregularity found while parsing.
type FontWarning struct {
	Table  Tag
	Issue  string
	Offset uint32
}

func (w FontWarning) String() string {
	return "[WARNING] " + location(w.Table, "", w.Offset, w.Issue)
}

func location(table Tag, section string, offset uint32, issue string) string {
	where := "font"
	if table != 0 && table != T("") {
		where = table.String()
	}
	if section != "" {
		where += "/" + section
	}
	if offset > 0 {
		return fmt.Sprintf("%s at offset %d: %s", where, offset, issue)
	}
	return where + ": " + issue
}

// errorCollector accumulates the issues of one Parse call. The issues end up
// in the parsed font.
type errorCollector struct {
	errors   []FontError
	warnings []FontWarning
}

func (ec *errorCollector) addError(table Tag, section string, issue string, severity ErrorSeverity, offset uint32) {
	e := FontError{Table: table, Section: section, Issue: issue, Severity: severity, Offset: offset}
	tracer().Debugf("parse: %v", e)
	ec.errors = append(ec.errors, e)
}

func (ec *errorCollector) addWarning(table Tag, issue string, offset uint32) {
	w := FontWarning{Table: table, Issue: issue, Offset: offset}
	tracer().Debugf("parse: %s", w)
	ec.warnings = append(ec.warnings, w)
}

// attach hands the collected issues over to a parsed font.
func (ec *errorCollector) attach(otf *Font) {
	otf.parseErrors = ec.errors
	otf.parseWarnings = ec.warnings
}

// errFontFormat produces user level errors for font parsing and writing.
func errFontFormat(message string) error {
	return fmt.Errorf("%s: %w", message, ErrCorruptFont)
}

// errMissing wraps ErrMissingTable for a tag.
func errMissing(tag Tag) error {
	return fmt.Errorf("table '%s': %w", tag, ErrMissingTable)
}
