package foundry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/foundry/internal/fontload"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileExt(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.foundry")
	defer teardown()
	//
	f := openFixture(t, fontload.Fixture{}, false)
	ext, err := f.FileExt()
	require.NoError(t, err)
	assert.Equal(t, ExtTTF, ext)
	require.NoError(t, f.ToWOFF())
	ext, _ = f.FileExt()
	assert.Equal(t, ExtWOFF, ext)
	require.NoError(t, f.ToWOFF2())
	ext, _ = f.FileExt()
	assert.Equal(t, ExtWOFF2, ext)
	ps := openFixture(t, fontload.Fixture{}, true)
	ext, _ = ps.FileExt()
	assert.Equal(t, ExtOTF, ext)
}

func TestFilePath(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.foundry")
	defer teardown()
	//
	f := openFixture(t, fontload.Fixture{}, false)
	_, err := f.FilePath(PathOptions{})
	assert.ErrorIs(t, err, ErrInvalidSource)
	dir := t.TempDir()
	file := filepath.Join(dir, "Sans.woff2.ttf")
	path, err := f.FilePath(PathOptions{File: file, Suffix: "-fixed"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Sans-fixed.ttf"), path)
	// the suffix is not added twice
	path, err = f.FilePath(PathOptions{File: filepath.Join(dir, "Sans-fixed.ttf"), Suffix: "-fixed"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Sans-fixed.ttf"), path)
	out := t.TempDir()
	path, err = f.FilePath(PathOptions{File: file, OutputDir: out, Extension: ".otf"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "Sans.otf"), path)
}

func TestFilePathDoesNotOverwrite(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.foundry")
	defer teardown()
	//
	f := openFixture(t, fontload.Fixture{}, false)
	dir := t.TempDir()
	file := filepath.Join(dir, "Sans.ttf")
	require.NoError(t, os.WriteFile(file, []byte{0}, 0o644))
	path, err := f.FilePath(PathOptions{File: file, Overwrite: true})
	require.NoError(t, err)
	assert.Equal(t, file, path)
	path, err = f.FilePath(PathOptions{File: file})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Sans#1.ttf"), path)
	require.NoError(t, os.WriteFile(path, []byte{0}, 0o644))
	path, err = f.FilePath(PathOptions{File: path})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Sans#2.ttf"), path)
}
