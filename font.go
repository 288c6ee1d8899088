package foundry

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"

	"github.com/npillmayer/foundry/ot"
	"github.com/npillmayer/foundry/outline"
	"github.com/npillmayer/foundry/tables"
)

// Source is where a font is loaded from: a PathSource, a BytesSource, a
// ReaderSource or a ContainerSource.
type Source interface {
	source()
}

// PathSource is the path of a font file.
type PathSource string

// BytesSource is the content of a font file.
type BytesSource []byte

// ReaderSource reads the content of a font file from a reader.
type ReaderSource struct {
	io.Reader
}

// ContainerSource is an already decoded font. The Font works on a copy.
type ContainerSource struct {
	Font *ot.Font
}

func (PathSource) source()      {}
func (BytesSource) source()     {}
func (ReaderSource) source()    {}
func (ContainerSource) source() {}

// Font is a font container together with the file it has been loaded from.
// Font is not safe for concurrent use.
type Font struct {
	otf      *ot.Font
	file     string // absolute path, if loaded from a file
	tempFile string
	wrappers map[ot.Tag]tables.Wrapper
	opts     options
	flags    *StyleFlags
}

// NewFont loads a font. source may be a Source, a file path (string), the
// content of a font file ([]byte), an io.Reader (including *bytes.Buffer)
// or a decoded font (*ot.Font). Other types of source result in an error of
// kind ErrInvalidSource.
//
// Every Font gets a private temporary file, which is removed by Close.
func NewFont(source any, opts ...Option) (*Font, error) {
	const op = "open font"
	src, err := asSource(source)
	if err != nil {
		return nil, newError(op, ErrInvalidSource, err)
	}
	f := &Font{opts: defaultOptions(), wrappers: make(map[ot.Tag]tables.Wrapper)}
	for _, opt := range opts {
		opt(&f.opts)
	}
	if f.tempFile, err = createTempFile(f.opts.tempDir); err != nil {
		return nil, newError(op, nil, err)
	}
	if err = f.load(src); err != nil {
		f.Close()
		return nil, newError(op, nil, err)
	}
	f.otf.RecalcBBoxes = f.opts.recalcBBoxes
	f.otf.RecalcTimestamp = f.opts.recalcTimestamp
	f.flags = &StyleFlags{font: f}
	if !f.opts.lazy {
		for _, tag := range f.otf.TableTags() {
			if _, err := f.Table(tag); err != nil {
				f.Close()
				return nil, newError(op, nil, err)
			}
		}
	}
	tracer().Debugf("opened %s font with %d tables", f.otf.Flavor, len(f.otf.TableTags()))
	return f, nil
}

func asSource(source any) (Source, error) {
	if source == nil {
		return nil, errors.New("nil source")
	}
	if v := reflect.ValueOf(source); v.Kind() == reflect.Pointer && v.IsNil() {
		return nil, fmt.Errorf("nil source of type %T", source)
	}
	switch s := source.(type) {
	case Source:
		return s, nil
	case string:
		return PathSource(s), nil
	case []byte:
		return BytesSource(s), nil
	case *bytes.Buffer:
		return ReaderSource{s}, nil
	case io.Reader:
		return ReaderSource{s}, nil
	case *ot.Font:
		return ContainerSource{s}, nil
	}
	return nil, fmt.Errorf("source of type %T", source)
}

func (f *Font) load(src Source) error {
	var data []byte
	var err error
	switch s := src.(type) {
	case PathSource:
		if f.file, err = filepath.Abs(string(s)); err != nil {
			return err
		}
		data, err = os.ReadFile(f.file)
	case BytesSource:
		data = s
	case ReaderSource:
		if s.Reader == nil {
			return fmt.Errorf("nil reader: %w", ErrInvalidSource)
		}
		data, err = io.ReadAll(s.Reader)
	case ContainerSource:
		if s.Font == nil {
			return fmt.Errorf("nil font: %w", ErrInvalidSource)
		}
		f.otf, err = s.Font.Clone()
		return err
	default:
		return fmt.Errorf("source of type %T: %w", src, ErrInvalidSource)
	}
	if err != nil {
		return err
	}
	f.otf, err = ot.Parse(data)
	return err
}

// createTempFile creates an empty temporary file in dir, or in the default
// directory for temporary files if dir is empty. dir has to exist.
func createTempFile(dir string) (string, error) {
	if dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return "", err
		}
		if !info.IsDir() {
			return "", fmt.Errorf("temporary directory %s is not a directory", dir)
		}
	}
	tmp, err := os.CreateTemp(dir, "foundry-*.tmp")
	if err != nil {
		return "", err
	}
	return tmp.Name(), tmp.Close()
}

// Container returns the font container. Changes to the tables of the container
// are seen by the table wrappers.
func (f *Font) Container() *ot.Font {
	return f.otf
}

// File returns the absolute path of the file the font has been loaded from,
// or "" for fonts not loaded from a file.
func (f *Font) File() string {
	return f.file
}

// TempFile returns the path of the font's temporary file.
func (f *Font) TempFile() string {
	return f.tempFile
}

// Flags returns the style flags of the font.
func (f *Font) Flags() *StyleFlags {
	return f.flags
}

// --- Table wrappers --------------------------------------------------------

var wrapperConstructors = map[ot.Tag]func(*ot.Font) (tables.Wrapper, error){
	ot.T("cmap"): func(otf *ot.Font) (tables.Wrapper, error) { return tables.NewCMap(otf) },
	ot.T("head"): func(otf *ot.Font) (tables.Wrapper, error) { return tables.NewHead(otf) },
	ot.T("hhea"): func(otf *ot.Font) (tables.Wrapper, error) { return tables.NewHHea(otf) },
	ot.T("hmtx"): func(otf *ot.Font) (tables.Wrapper, error) { return tables.NewHMtx(otf) },
	ot.T("kern"): func(otf *ot.Font) (tables.Wrapper, error) { return tables.NewKern(otf) },
	ot.T("maxp"): func(otf *ot.Font) (tables.Wrapper, error) { return tables.NewMaxP(otf) },
	ot.T("name"): func(otf *ot.Font) (tables.Wrapper, error) { return tables.NewName(otf) },
	ot.T("OS/2"): func(otf *ot.Font) (tables.Wrapper, error) { return tables.NewOS2(otf) },
	ot.T("post"): func(otf *ot.Font) (tables.Wrapper, error) { return tables.NewPost(otf) },
	ot.T("fvar"): func(otf *ot.Font) (tables.Wrapper, error) { return tables.NewFvar(otf) },
	ot.T("GDEF"): func(otf *ot.Font) (tables.Wrapper, error) { return tables.NewGDEF(otf) },
	ot.T("GSUB"): func(otf *ot.Font) (tables.Wrapper, error) { return tables.NewGSUB(otf) },
	ot.T("glyf"): func(otf *ot.Font) (tables.Wrapper, error) { return tables.NewGlyf(otf) },
	ot.T("CFF "): func(otf *ot.Font) (tables.Wrapper, error) { return tables.NewCFF(otf) },
}

// Table returns the wrapper for a table. Wrappers are created on first access
// and cached: repeated calls return the same wrapper. Tables without a
// specialized wrapper get a *tables.Base. If the font does not contain the
// table, an error of kind ErrMissingTable is returned.
func (f *Font) Table(tag ot.Tag) (tables.Wrapper, error) {
	if w, ok := f.wrappers[tag]; ok {
		return w, nil
	}
	create, ok := wrapperConstructors[tag]
	if !ok {
		create = func(otf *ot.Font) (tables.Wrapper, error) { return tables.NewBase(otf, tag) }
	}
	w, err := create(f.otf)
	if err != nil {
		return nil, newError(fmt.Sprintf("table '%s'", tag), nil, err)
	}
	f.wrappers[tag] = w
	return w, nil
}

func wrapper[W tables.Wrapper](f *Font, tag string) (W, error) {
	w, err := f.Table(ot.T(tag))
	if err != nil {
		var none W
		return none, err
	}
	return w.(W), nil
}

// CMap returns the wrapper for table cmap.
func (f *Font) CMap() (*tables.CMap, error) { return wrapper[*tables.CMap](f, "cmap") }

// Head returns the wrapper for table head.
func (f *Font) Head() (*tables.Head, error) { return wrapper[*tables.Head](f, "head") }

// HHea returns the wrapper for table hhea.
func (f *Font) HHea() (*tables.HHea, error) { return wrapper[*tables.HHea](f, "hhea") }

// HMtx returns the wrapper for table hmtx.
func (f *Font) HMtx() (*tables.HMtx, error) { return wrapper[*tables.HMtx](f, "hmtx") }

// Kern returns the wrapper for table kern.
func (f *Font) Kern() (*tables.Kern, error) { return wrapper[*tables.Kern](f, "kern") }

// MaxP returns the wrapper for table maxp.
func (f *Font) MaxP() (*tables.MaxP, error) { return wrapper[*tables.MaxP](f, "maxp") }

// Name returns the wrapper for table name.
func (f *Font) Name() (*tables.Name, error) { return wrapper[*tables.Name](f, "name") }

// OS2 returns the wrapper for table OS/2.
func (f *Font) OS2() (*tables.OS2, error) { return wrapper[*tables.OS2](f, "OS/2") }

// Post returns the wrapper for table post.
func (f *Font) Post() (*tables.Post, error) { return wrapper[*tables.Post](f, "post") }

// Fvar returns the wrapper for table fvar.
func (f *Font) Fvar() (*tables.Fvar, error) { return wrapper[*tables.Fvar](f, "fvar") }

// GDef returns the wrapper for table GDEF.
func (f *Font) GDef() (*tables.GDEF, error) { return wrapper[*tables.GDEF](f, "GDEF") }

// GSub returns the wrapper for table GSUB.
func (f *Font) GSub() (*tables.GSUB, error) { return wrapper[*tables.GSUB](f, "GSUB") }

// Glyf returns the wrapper for table glyf.
func (f *Font) Glyf() (*tables.Glyf, error) { return wrapper[*tables.Glyf](f, "glyf") }

// CFF returns the wrapper for table 'CFF '.
func (f *Font) CFF() (*tables.CFF, error) { return wrapper[*tables.CFF](f, "CFF ") }

// dropStaleWrappers forgets the wrappers of tables no longer in the font.
func (f *Font) dropStaleWrappers() {
	for tag := range f.wrappers {
		if !f.otf.HasTable(tag) {
			delete(f.wrappers, tag)
		}
	}
}

// IsModified reports whether any of the tables accessed through a wrapper has
// been modified.
func (f *Font) IsModified() bool {
	for _, w := range f.wrappers {
		if w.IsModified() {
			return true
		}
	}
	return false
}

// --- Format predicates -----------------------------------------------------

// IsPS reports whether the font has PostScript outlines.
func (f *Font) IsPS() bool {
	return f.otf.Header.FontType == ot.TypeCFF
}

// IsTT reports whether the font has TrueType outlines.
func (f *Font) IsTT() bool {
	return f.otf.Header.FontType == ot.TypeTrueType || f.otf.Header.FontType == ot.TypeApple
}

// IsWOFF reports whether the font is a WOFF web font.
func (f *Font) IsWOFF() bool {
	return f.otf.Flavor == ot.FlavorWOFF
}

// IsWOFF2 reports whether the font is a WOFF2 web font.
func (f *Font) IsWOFF2() bool {
	return f.otf.Flavor == ot.FlavorWOFF2
}

// IsSFNT reports whether the font is a plain SFNT (non-web) font.
func (f *Font) IsSFNT() bool {
	return f.otf.Flavor == ot.FlavorSFNT
}

// IsVariable reports whether the font is a variable font.
func (f *Font) IsVariable() bool {
	return f.otf.HasTable(ot.T("fvar"))
}

// IsStatic reports whether the font is not a variable font.
func (f *Font) IsStatic() bool {
	return !f.IsVariable()
}

// --- Saving and loading ----------------------------------------------------

// Save writes the font to dest, which is a file path or an io.Writer, in the
// font's container format. reorder selects the order of the table data, see
// ot.Write: sorted by tag, as read, or None for the recommended order.
func (f *Font) Save(dest any, reorder ot.Option[bool]) error {
	switch d := dest.(type) {
	case string:
		return f.SaveFile(d, reorder)
	case io.Writer:
		if err := ot.Write(d, f.otf, reorder); err != nil {
			return newError("save font", nil, err)
		}
		return nil
	}
	return errorf("save font", ErrInvalidSource, "destination of type %T", dest)
}

// SaveFile writes the font to a file.
func (f *Font) SaveFile(path string, reorder ot.Option[bool]) error {
	data, err := ot.Serialize(f.otf, reorder)
	if err != nil {
		return newError("save font", nil, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return newError("save font", nil, err)
	}
	tracer().Infof("saved font to %s", path)
	return nil
}

// Close removes the font's temporary file. The decoded font is not released:
// a closed font may still be queried and saved, but Reload fails. Close may
// be called more than once.
func (f *Font) Close() error {
	if f.tempFile == "" {
		return nil
	}
	err := os.Remove(f.tempFile)
	if errors.Is(err, fs.ErrNotExist) {
		err = nil
	}
	if err != nil {
		return newError("close font", nil, err)
	}
	f.tempFile = ""
	return nil
}

// Reload writes the font to its temporary file and reads it back, bringing all
// derived values (bounding boxes, offsets, glyph counts) into a consistent
// state. All table wrappers are discarded.
func (f *Font) Reload() error {
	const op = "reload font"
	if f.tempFile == "" {
		return errorf(op, nil, "font has been closed")
	}
	if err := f.SaveFile(f.tempFile, ot.Some(false)); err != nil {
		return err
	}
	data, err := os.ReadFile(f.tempFile)
	if err != nil {
		return newError(op, nil, err)
	}
	otf, err := ot.Parse(data)
	if err != nil {
		return newError(op, nil, err)
	}
	otf.RecalcBBoxes, otf.RecalcTimestamp = f.otf.RecalcBBoxes, f.otf.RecalcTimestamp
	f.otf = otf
	clear(f.wrappers)
	return nil
}

// withSFNT calls fn with the flavor of the font set to plain SFNT, and
// restores the flavor afterwards.
func (f *Font) withSFNT(fn func() error) error {
	flavor := f.otf.Flavor
	f.otf.Flavor = ot.FlavorSFNT
	defer func() { f.otf.Flavor = flavor }()
	return fn()
}

// adopt replaces the tables of the font by the tables of another container,
// keeping the wrappers of tables which are still present.
func (f *Font) adopt(c *ot.Font) {
	for _, tag := range f.otf.TableTags() {
		if !c.HasTable(tag) {
			f.otf.RemoveTable(tag)
		}
	}
	for _, tag := range c.TableTags() {
		f.otf.SetTable(tag, c.Table(tag))
	}
	f.otf.Header.FontType = c.Header.FontType
	f.dropStaleWrappers()
}

// --- Variations ------------------------------------------------------------

// Axes returns the variation axes of a variable font, or nil for static fonts.
// Hidden axes are included only if hidden is set.
func (f *Font) Axes(hidden bool) ([]ot.FvarAxis, error) {
	if !f.IsVariable() {
		return nil, nil
	}
	fvar, err := f.Fvar()
	if err != nil {
		return nil, err
	}
	return fvar.Axes(hidden), nil
}

// Instances returns the named instances of a variable font, or nil for static
// fonts.
func (f *Font) Instances() ([]ot.FvarInstance, error) {
	if !f.IsVariable() {
		return nil, nil
	}
	fvar, err := f.Fvar()
	if err != nil {
		return nil, err
	}
	return fvar.Instances(), nil
}

// --- Options ---------------------------------------------------------------

// Option configures a Font.
type Option func(*options)

type options struct {
	lazy            bool
	recalcBBoxes    bool
	recalcTimestamp bool
	tempDir         string
	hinter          outline.Hinter
}

func defaultOptions() options {
	return options{
		lazy:         true,
		recalcBBoxes: true,
		hinter:       outline.TTFAutohint{},
	}
}

// Lazy selects whether table wrappers are created on first access (the
// default), or for all tables when the font is opened.
func Lazy(on bool) Option {
	return func(o *options) { o.lazy = on }
}

// RecalcBBoxes selects whether bounding boxes are recalculated when the font
// is saved. It is on by default.
func RecalcBBoxes(on bool) Option {
	return func(o *options) { o.recalcBBoxes = on }
}

// RecalcTimestamp selects whether the modification time of the font is set
// when the font is saved. It is off by default.
func RecalcTimestamp(on bool) Option {
	return func(o *options) { o.recalcTimestamp = on }
}

// TempDir sets the directory for the font's temporary file. The directory has
// to exist.
func TempDir(dir string) Option {
	return func(o *options) { o.tempDir = dir }
}

// WithHinter sets the hinting engine used by TTAutohint.
func WithHinter(h outline.Hinter) Option {
	return func(o *options) {
		if h != nil {
			o.hinter = h
		}
	}
}

// Configuration is the part of a schuko configuration a Font reads.
type Configuration interface {
	IsSet(key string) bool
	GetString(key string) string
	GetBool(key string) bool
}

// Configuration keys read by FromConfig.
const (
	ConfLazy            = "foundry.lazy"
	ConfRecalcBBoxes    = "foundry.recalc-bboxes"
	ConfRecalcTimestamp = "foundry.recalc-timestamp"
	ConfTempDir         = "foundry.tempdir"
)

// FromConfig takes options from a configuration. Keys not set in the
// configuration leave the respective option alone.
func FromConfig(conf Configuration) Option {
	return func(o *options) {
		if conf == nil {
			return
		}
		if conf.IsSet(ConfLazy) {
			o.lazy = conf.GetBool(ConfLazy)
		}
		if conf.IsSet(ConfRecalcBBoxes) {
			o.recalcBBoxes = conf.GetBool(ConfRecalcBBoxes)
		}
		if conf.IsSet(ConfRecalcTimestamp) {
			o.recalcTimestamp = conf.GetBool(ConfRecalcTimestamp)
		}
		if conf.IsSet(ConfTempDir) {
			o.tempDir = conf.GetString(ConfTempDir)
		}
	}
}
