package foundry

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/npillmayer/foundry/internal/fontload"
	"github.com/npillmayer/foundry/ot"
	"github.com/npillmayer/foundry/otquery"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saveAndParse(t *testing.T, f *Font) *ot.Font {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, f.Save(&buf, ot.None[bool]()))
	saved, err := ot.Parse(buf.Bytes())
	require.NoError(t, err)
	return saved
}

func TestRenameGlyphs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.foundry")
	defer teardown()
	//
	f := openFixture(t, fontload.Fixture{}, false)
	require.NoError(t, f.RenameGlyph("uni00A0", "nbspace"))
	assert.ErrorIs(t, f.RenameGlyph("A", "B"), ErrMissingGlyph)
	assert.ErrorIs(t, f.RenameGlyph("H", "I"), ErrConversion)
	_, err := f.RenameGlyphs(map[string]string{"Hdot": "I"})
	assert.ErrorIs(t, err, ErrConversion)
	// swapping names is fine, .notdef is never renamed
	done, err := f.RenameGlyphs(map[string]string{"H": "I", "I": "H", ".notdef": "null"})
	require.NoError(t, err)
	if diff := cmp.Diff([]RenamedGlyph{{"H", "I"}, {"I", "H"}}, done); diff != "" {
		t.Errorf("renamed glyphs differ:\n%s", diff)
	}
	want := []string{".notdef", "space", "I", "nbspace", "Hdot", "H"}
	assert.Equal(t, want, f.GlyphNames())
	saved := saveAndParse(t, f)
	assert.Equal(t, want, otquery.GlyphNames(saved))
	assert.Equal(t, ot.GlyphIndex(2), otquery.GlyphIndex(saved, 'H'))
	done, err = f.RenameGlyphs(map[string]string{"B": "C"})
	require.NoError(t, err)
	assert.Empty(t, done)
}

func TestRenameGlyphsOfPostScriptFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.foundry")
	defer teardown()
	//
	f := openFixture(t, fontload.Fixture{}, true)
	require.NoError(t, f.RenameGlyph("Hdot", "H.dot"))
	cff, err := f.CFF()
	require.NoError(t, err)
	want := []string{".notdef", "space", "H", "uni00A0", "H.dot", "I"}
	assert.Equal(t, want, cff.CFFFont().GlyphNames())
	saved := saveAndParse(t, f)
	assert.Equal(t, want, otquery.GlyphNames(saved))
	// names live in the charset, post keeps carrying none
	assert.Equal(t, ot.PostVersion3, saved.Lookup(ot.T("post")).AsPost().Version)
}

func TestSetProductionNames(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.foundry")
	defer teardown()
	//
	for _, ps := range []bool{false, true} {
		f := openFixture(t, fontload.Fixture{NBSP: true}, ps)
		done, err := f.SetProductionNames()
		require.NoError(t, err)
		if diff := cmp.Diff([]RenamedGlyph{{"space", "uni0020"}, {"H", "uni0048"}, {"I", "uni0049"}}, done); diff != "" {
			t.Errorf("ps=%v: renamed glyphs differ:\n%s", ps, diff)
		}
		want := []string{".notdef", "uni0020", "uni0048", "uni00A0", "Hdot", "uni0049"}
		assert.Equal(t, want, f.GlyphNames())
		assert.Equal(t, want, otquery.GlyphNames(saveAndParse(t, f)))
		done, err = f.SetProductionNames()
		require.NoError(t, err)
		assert.Empty(t, done)
		// the glyph for H is still found for the italic angle
		_, err = f.CalcItalicAngle(0)
		assert.NoError(t, err)
	}
}

func TestSetProductionNamesKeepsTakenNames(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.foundry")
	defer teardown()
	//
	f := openFixture(t, fontload.Fixture{}, false)
	require.NoError(t, f.RenameGlyph("Hdot", "uni0049"))
	done, err := f.SetProductionNames()
	require.NoError(t, err)
	if diff := cmp.Diff([]RenamedGlyph{{"space", "uni0020"}, {"H", "uni0048"}}, done); diff != "" {
		t.Errorf("renamed glyphs differ:\n%s", diff)
	}
	assert.Equal(t, "I", f.GlyphNames()[5])
}

func TestPSDesubroutinize(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.foundry")
	defer teardown()
	//
	f := openFixture(t, fontload.Fixture{}, true)
	cff, err := f.CFF()
	require.NoError(t, err)
	require.NoError(t, f.PSDesubroutinize())
	saved := saveAndParse(t, f)
	sf, err := saved.Lookup(ot.T("CFF ")).AsCFF().CFF()
	require.NoError(t, err)
	orig := cff.CFFFont()
	require.Equal(t, len(orig.Glyphs), len(sf.Glyphs))
	for gid, g := range orig.Glyphs {
		if diff := cmp.Diff(g.Cmds, sf.Glyphs[gid].Cmds, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("glyph %d differs after desubroutinizing:\n%s", gid, diff)
		}
	}
	tt := openFixture(t, fontload.Fixture{}, false)
	assert.ErrorIs(t, tt.PSDesubroutinize(), ErrConversion)
}
