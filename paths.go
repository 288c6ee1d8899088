package foundry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// File extensions of font files.
const (
	ExtOTF   = ".otf"
	ExtTTF   = ".ttf"
	ExtWOFF  = ".woff"
	ExtWOFF2 = ".woff2"
)

// FileExt returns the file extension matching the format of the font. Web
// font formats take precedence over outline formats.
func (f *Font) FileExt() (string, error) {
	switch {
	case f.IsWOFF():
		return ExtWOFF, nil
	case f.IsWOFF2():
		return ExtWOFF2, nil
	case f.IsPS():
		return ExtOTF, nil
	case f.IsTT():
		return ExtTTF, nil
	}
	return "", errorf("file extension", ErrUnknownFormat, "font type %#x", f.otf.Header.FontType)
}

// PathOptions control the output path derived by FilePath.
type PathOptions struct {
	File      string // file name to start from; defaults to the font's file
	OutputDir string // defaults to the directory of File
	Overwrite bool   // if false, existing files are not overwritten
	Extension string // defaults to the extension matching the font's format
	Suffix    string // appended to the file name, e.g. "-fixed"
}

// numberAdded matches the "#n" a file name gets to avoid overwriting a file.
var numberAdded = regexp.MustCompile(`#\d+$`)

// FilePath returns the path to save the font to. Font file extensions left
// in the base name by earlier conversions ("font.woff2.ttf"), a "#n"
// disambiguator and the suffix itself are removed before the suffix and the
// extension are appended. If opts.Overwrite is false and the file exists,
// "#1", "#2", … are appended to the name until a free one is found.
func (f *Font) FilePath(opts PathOptions) (string, error) {
	const op = "file path"
	file := opts.File
	if file == "" {
		file = f.file
	}
	if file == "" {
		return "", errorf(op, ErrInvalidSource, "font has not been loaded from a file, no file name given")
	}
	dir := opts.OutputDir
	if dir == "" {
		dir = filepath.Dir(file)
	}
	ext := opts.Extension
	if ext == "" {
		var err error
		if ext, err = f.FileExt(); err != nil {
			return "", err
		}
	}
	name := filepath.Base(file)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	for _, known := range []string{ExtOTF, ExtTTF, ExtWOFF2, ExtWOFF} {
		name = strings.ReplaceAll(name, known, "")
	}
	name = numberAdded.ReplaceAllString(name, "")
	if opts.Suffix != "" {
		name = strings.TrimSuffix(name, opts.Suffix)
	}
	name += opts.Suffix
	path := filepath.Join(dir, name+ext)
	for n := 1; !opts.Overwrite; n++ {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			break
		} else if err != nil {
			return "", newError(op, nil, err)
		}
		path = filepath.Join(dir, fmt.Sprintf("%s#%d%s", name, n, ext))
	}
	return path, nil
}
