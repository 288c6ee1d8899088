package foundry

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/foundry/internal/fontload"
	"github.com/npillmayer/foundry/ot"
	"github.com/npillmayer/foundry/tables"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openFixture opens a synthetic font, with PostScript outlines if ps is set.
func openFixture(t *testing.T, fx fontload.Fixture, ps bool, opts ...Option) *Font {
	t.Helper()
	otf := fx.TrueType()
	if ps {
		var err error
		otf, err = fx.CFF()
		require.NoError(t, err)
	}
	f, err := NewFont(otf, append([]Option{TempDir(t.TempDir())}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func fixtureBytes(t *testing.T) []byte {
	t.Helper()
	data, err := ot.Serialize(fontload.Fixture{}.TrueType(), ot.None[bool]())
	require.NoError(t, err)
	return data
}

func TestNewFontSources(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.foundry")
	defer teardown()
	//
	data := fixtureBytes(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "TestSans-Regular.ttf")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	for name, src := range map[string]any{
		"path":             path,
		"path source":      PathSource(path),
		"bytes":            data,
		"bytes source":     BytesSource(data),
		"buffer":           bytes.NewBuffer(data),
		"reader":           bytes.NewReader(data),
		"container":        fontload.Fixture{}.TrueType(),
		"container source": ContainerSource{fontload.Fixture{}.TrueType()},
	} {
		f, err := NewFont(src, TempDir(dir))
		require.NoError(t, err, name)
		assert.True(t, f.IsTT(), name)
		assert.Equal(t, 6, f.Container().NumGlyphs(), name)
		if name == "path" || name == "path source" {
			assert.Equal(t, path, f.File())
		} else {
			assert.Empty(t, f.File(), name)
		}
		require.NoError(t, f.Close())
	}
}

func TestNewFontInvalidSource(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.foundry")
	defer teardown()
	//
	_, err := NewFont(42)
	assert.ErrorIs(t, err, ErrInvalidSource)
	var ferr *Error
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "open font", ferr.Op)
	_, err = NewFont(ContainerSource{})
	assert.ErrorIs(t, err, ErrInvalidSource)
	// nil pointers of accepted types are rejected, not read
	_, err = NewFont((*bytes.Buffer)(nil))
	assert.ErrorIs(t, err, ErrInvalidSource)
	_, err = NewFont((*ot.Font)(nil))
	assert.ErrorIs(t, err, ErrInvalidSource)
	_, err = NewFont((*os.File)(nil))
	assert.ErrorIs(t, err, ErrInvalidSource)
	_, err = NewFont(nil)
	assert.ErrorIs(t, err, ErrInvalidSource)
	_, err = NewFont([]byte("not a font"), TempDir(t.TempDir()))
	assert.ErrorIs(t, err, ErrUnknownFormat)
	_, err = NewFont(fixtureBytes(t)[:40], TempDir(t.TempDir()))
	assert.ErrorIs(t, err, ErrCorruptFont)
	_, err = NewFont(filepath.Join(t.TempDir(), "missing.ttf"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestContainerSourceIsCopied(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.foundry")
	defer teardown()
	//
	otf := fontload.Fixture{}.TrueType()
	f, err := NewFont(otf, TempDir(t.TempDir()))
	require.NoError(t, err)
	defer f.Close()
	f.Container().RemoveTable(ot.T("name"))
	assert.True(t, otf.HasTable(ot.T("name")))
}

func TestTempFile(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.foundry")
	defer teardown()
	//
	dir := t.TempDir()
	f, err := NewFont(fontload.Fixture{}.TrueType(), TempDir(dir))
	require.NoError(t, err)
	tmp := f.TempFile()
	assert.Equal(t, dir, filepath.Dir(tmp))
	assert.FileExists(t, tmp)
	require.NoError(t, f.Close())
	assert.NoFileExists(t, tmp)
	assert.Empty(t, f.TempFile())
	assert.NoError(t, f.Close())
	//
	_, err = NewFont(fontload.Fixture{}.TrueType(), TempDir(filepath.Join(dir, "missing")))
	assert.Error(t, err)
}

func TestTableWrappers(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.foundry")
	defer teardown()
	//
	f := openFixture(t, fontload.Fixture{}, false)
	head, err := f.Head()
	require.NoError(t, err)
	again, err := f.Head()
	require.NoError(t, err)
	assert.Same(t, head, again)
	assert.Equal(t, uint16(1000), head.UnitsPerEm())
	_, err = f.Kern()
	assert.ErrorIs(t, err, ErrMissingTable)
	_, err = f.CFF()
	assert.ErrorIs(t, err, ErrMissingTable)
	w, err := f.Table(ot.T("loca"))
	require.NoError(t, err)
	assert.IsType(t, &tables.Base{}, w)
	assert.Equal(t, ot.T("loca"), w.Tag())
	assert.True(t, w.IsModified())
	assert.True(t, f.IsModified())
}

func TestCMapIsNotModified(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.foundry")
	defer teardown()
	//
	f := openFixture(t, fontload.Fixture{}, false)
	cmap, err := f.CMap()
	require.NoError(t, err)
	assert.False(t, cmap.IsModified())
	assert.False(t, f.IsModified())
}

func TestEagerWrappers(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.foundry")
	defer teardown()
	//
	f := openFixture(t, fontload.Fixture{Kern: true}, false, Lazy(false))
	assert.Len(t, f.wrappers, len(f.Container().TableTags()))
	lazy := openFixture(t, fontload.Fixture{}, false)
	assert.Empty(t, lazy.wrappers)
}

func TestFormatPredicates(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.foundry")
	defer teardown()
	//
	tt := openFixture(t, fontload.Fixture{}, false)
	assert.True(t, tt.IsTT())
	assert.False(t, tt.IsPS())
	assert.True(t, tt.IsSFNT())
	assert.False(t, tt.IsWOFF())
	assert.False(t, tt.IsWOFF2())
	assert.True(t, tt.IsStatic())
	ps := openFixture(t, fontload.Fixture{}, true)
	assert.True(t, ps.IsPS())
	assert.False(t, ps.IsTT())
	vf := openFixture(t, fontload.Fixture{Variable: true}, false)
	assert.True(t, vf.IsVariable())
	assert.False(t, vf.IsStatic())
}

func TestSaveAndReload(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.foundry")
	defer teardown()
	//
	f := openFixture(t, fontload.Fixture{}, false)
	os2, err := f.OS2()
	require.NoError(t, err)
	require.NoError(t, os2.SetWeightClass(600))
	var buf bytes.Buffer
	require.NoError(t, f.Save(&buf, ot.None[bool]()))
	saved, err := ot.Parse(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, uint16(600), saved.Lookup(ot.T("OS/2")).AsOS2().UsWeightClass)
	//
	path := filepath.Join(t.TempDir(), "out.ttf")
	require.NoError(t, f.Save(path, ot.Some(true)))
	assert.FileExists(t, path)
	assert.ErrorIs(t, f.Save(42, ot.None[bool]()), ErrInvalidSource)
	//
	require.NoError(t, f.Reload())
	assert.Empty(t, f.wrappers)
	os2, err = f.OS2()
	require.NoError(t, err)
	assert.Equal(t, uint16(600), os2.WeightClass())
	require.NoError(t, f.Close())
	assert.Error(t, f.Reload())
	// the decoded font outlives Close
	buf.Reset()
	require.NoError(t, f.Save(&buf, ot.None[bool]()))
	assert.Equal(t, saved.NumGlyphs(), f.Container().NumGlyphs())
	_, err = ot.Parse(buf.Bytes())
	assert.NoError(t, err)
}

func TestSaveKeepsFlavor(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.foundry")
	defer teardown()
	//
	f := openFixture(t, fontload.Fixture{}, false)
	require.NoError(t, f.ToWOFF2())
	var buf bytes.Buffer
	require.NoError(t, f.Save(&buf, ot.None[bool]()))
	web, err := NewFont(buf.Bytes(), TempDir(t.TempDir()))
	require.NoError(t, err)
	defer web.Close()
	assert.True(t, web.IsWOFF2())
	assert.True(t, web.IsTT())
}

func TestFromConfig(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.foundry")
	defer teardown()
	//
	dir := t.TempDir()
	conf := testconfig.Conf{
		ConfLazy:            false,
		ConfRecalcTimestamp: true,
		ConfTempDir:         dir,
	}
	f, err := NewFont(fontload.Fixture{}.TrueType(), FromConfig(conf))
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, f.opts.lazy)
	assert.True(t, f.opts.recalcBBoxes)
	assert.True(t, f.Container().RecalcTimestamp)
	assert.Equal(t, dir, filepath.Dir(f.TempFile()))
}

func TestAxes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.foundry")
	defer teardown()
	//
	static := openFixture(t, fontload.Fixture{}, false)
	axes, err := static.Axes(true)
	require.NoError(t, err)
	assert.Nil(t, axes)
	instances, err := static.Instances()
	require.NoError(t, err)
	assert.Nil(t, instances)
	vf := openFixture(t, fontload.Fixture{Variable: true}, false)
	axes, err = vf.Axes(false)
	require.NoError(t, err)
	require.Len(t, axes, 1)
	assert.Equal(t, ot.T("wght"), axes[0].Tag)
}

func TestErrorKinds(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.foundry")
	defer teardown()
	//
	cause := errors.New("disk full")
	err := newError("save font", ErrConversion, cause)
	assert.ErrorIs(t, err, ErrConversion)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "save font: font conversion failed: disk full", err.Error())
	err = newError("table 'kern'", nil, ErrMissingTable)
	assert.Equal(t, "table 'kern': "+ErrMissingTable.Error(), err.Error())
	assert.NotErrorIs(t, err, ErrConversion)
}
