package foundry

import (
	"fmt"

	"github.com/npillmayer/foundry/tables"
)

// StyleFlags presents the style bits of a font as a unit. Bold and italic are
// kept in both OS/2.fsSelection and head.macStyle, the regular and oblique
// bits in OS/2.fsSelection only.
//
// Errors are of kind ErrFlags, wrapping the cause.
type StyleFlags struct {
	font *Font
}

func (s *StyleFlags) tables() (*tables.OS2, *tables.Head, error) {
	os2, err := s.font.OS2()
	if err != nil {
		return nil, nil, err
	}
	head, err := s.font.Head()
	if err != nil {
		return nil, nil, err
	}
	return os2, head, nil
}

// IsBold reports whether the font is bold: both the bold bit of OS/2.fsSelection
// and the bold bit of head.macStyle are set.
func (s *StyleFlags) IsBold() (bool, error) {
	os2, head, err := s.tables()
	if err != nil {
		return false, newError("is bold", ErrFlags, err)
	}
	return os2.IsBold() && head.IsBold(), nil
}

// IsItalic reports whether the font is italic: both the italic bit of
// OS/2.fsSelection and the italic bit of head.macStyle are set.
func (s *StyleFlags) IsItalic() (bool, error) {
	os2, head, err := s.tables()
	if err != nil {
		return false, newError("is italic", ErrFlags, err)
	}
	return os2.IsItalic() && head.IsItalic(), nil
}

// IsOblique reports whether the oblique bit of OS/2.fsSelection is set.
func (s *StyleFlags) IsOblique() (bool, error) {
	os2, err := s.font.OS2()
	if err != nil {
		return false, newError("is oblique", ErrFlags, err)
	}
	return os2.IsOblique(), nil
}

// IsRegular reports whether the regular bit of OS/2.fsSelection is set.
func (s *StyleFlags) IsRegular() (bool, error) {
	os2, err := s.font.OS2()
	if err != nil {
		return false, newError("is regular", ErrFlags, err)
	}
	return os2.IsRegular(), nil
}

// SetBold sets or clears the bold bits. The regular bit is set to the opposite,
// except for italic fonts, which are never regular.
func (s *StyleFlags) SetBold(on bool) error {
	return s.updateFontProperties("set bold", func() error {
		italic, err := s.IsItalic()
		if err != nil {
			return err
		}
		regular := !on && !italic
		return s.setStyle(&on, nil, &regular)
	})
}

// SetItalic sets or clears the italic bits. The regular bit is set to the
// opposite, except for bold fonts, which are never regular.
func (s *StyleFlags) SetItalic(on bool) error {
	return s.updateFontProperties("set italic", func() error {
		bold, err := s.IsBold()
		if err != nil {
			return err
		}
		regular := !on && !bold
		return s.setStyle(nil, &on, &regular)
	})
}

// SetOblique sets or clears the oblique bit. The bit is defined for OS/2
// tables of version 4 and later only.
func (s *StyleFlags) SetOblique(on bool) error {
	return s.updateFontProperties("set oblique", func() error {
		os2, err := s.font.OS2()
		if err != nil {
			return err
		}
		return os2.SetOblique(on)
	})
}

// SetRegular sets or clears the regular bit. Setting it clears the bold and
// italic bits. Clearing it leaves the regular bit set if the font is neither
// bold nor italic.
func (s *StyleFlags) SetRegular(on bool) error {
	return s.updateFontProperties("set regular", func() error {
		if on {
			off := false
			return s.setStyle(&off, &off, &on)
		}
		bold, err := s.IsBold()
		if err != nil {
			return err
		}
		italic, err := s.IsItalic()
		if err != nil {
			return err
		}
		os2, err := s.font.OS2()
		if err != nil {
			return err
		}
		return os2.SetRegular(!(bold || italic))
	})
}

// setStyle writes the bits given as non-nil.
func (s *StyleFlags) setStyle(bold, italic, regular *bool) error {
	os2, head, err := s.tables()
	if err != nil {
		return err
	}
	if bold != nil {
		if err := os2.SetBold(*bold); err != nil {
			return err
		}
		if err := head.SetBold(*bold); err != nil {
			return err
		}
	}
	if italic != nil {
		if err := os2.SetItalic(*italic); err != nil {
			return err
		}
		if err := head.SetItalic(*italic); err != nil {
			return err
		}
	}
	if regular != nil {
		return os2.SetRegular(*regular)
	}
	return nil
}

// updateFontProperties runs a change of several fields and translates any
// failure to an error of kind ErrFlags.
func (s *StyleFlags) updateFontProperties(op string, update func() error) error {
	if err := update(); err != nil {
		tracer().Debugf("%s: %v", op, err)
		return newError(op, ErrFlags, err)
	}
	return nil
}

// values returns bold, italic, oblique and regular, with false for flags
// which cannot be read.
func (s *StyleFlags) values() [4]bool {
	var v [4]bool
	v[0], _ = s.IsBold()
	v[1], _ = s.IsItalic()
	v[2], _ = s.IsOblique()
	v[3], _ = s.IsRegular()
	return v
}

func (s *StyleFlags) String() string {
	v := s.values()
	return fmt.Sprintf("StyleFlags{bold=%v, italic=%v, oblique=%v, regular=%v}", v[0], v[1], v[2], v[3])
}

// Equal reports whether two sets of style flags have the same values.
func (s *StyleFlags) Equal(other *StyleFlags) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.values() == other.values()
}
