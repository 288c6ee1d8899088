package foundry

import (
	"testing"

	"github.com/npillmayer/foundry/internal/fontload"
	"github.com/npillmayer/foundry/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStyleFlagsOfRegularFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.foundry")
	defer teardown()
	//
	flags := openFixture(t, fontload.Fixture{}, false).Flags()
	assert.Equal(t, "StyleFlags{bold=false, italic=false, oblique=false, regular=true}", flags.String())
	bold := openFixture(t, fontload.Fixture{Bold: true}, false).Flags()
	isBold, err := bold.IsBold()
	require.NoError(t, err)
	assert.True(t, isBold)
	assert.False(t, flags.Equal(bold))
	assert.True(t, flags.Equal(openFixture(t, fontload.Fixture{}, true).Flags()))
}

func TestSetBoldAndItalic(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.foundry")
	defer teardown()
	//
	f := openFixture(t, fontload.Fixture{}, false)
	flags := f.Flags()
	require.NoError(t, flags.SetBold(true))
	assert.Equal(t, [4]bool{true, false, false, false}, flags.values())
	head, err := f.Head()
	require.NoError(t, err)
	assert.True(t, head.IsBold())
	require.NoError(t, flags.SetItalic(true))
	assert.Equal(t, [4]bool{true, true, false, false}, flags.values())
	require.NoError(t, flags.SetBold(false))
	assert.Equal(t, [4]bool{false, true, false, false}, flags.values())
	require.NoError(t, flags.SetItalic(false))
	assert.Equal(t, [4]bool{false, false, false, true}, flags.values())
	assert.False(t, head.IsItalic())
}

func TestSetRegular(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.foundry")
	defer teardown()
	//
	flags := openFixture(t, fontload.Fixture{Bold: true}, false).Flags()
	require.NoError(t, flags.SetItalic(true))
	require.NoError(t, flags.SetRegular(true))
	assert.Equal(t, [4]bool{false, false, false, true}, flags.values())
	// a font which is neither bold nor italic stays regular
	require.NoError(t, flags.SetRegular(false))
	assert.Equal(t, [4]bool{false, false, false, true}, flags.values())
	require.NoError(t, flags.SetBold(true))
	require.NoError(t, flags.SetRegular(false))
	assert.Equal(t, [4]bool{true, false, false, false}, flags.values())
}

func TestSetOblique(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.foundry")
	defer teardown()
	//
	f := openFixture(t, fontload.Fixture{}, false)
	flags := f.Flags()
	require.NoError(t, flags.SetOblique(true))
	isOblique, err := flags.IsOblique()
	require.NoError(t, err)
	assert.True(t, isOblique)
	f.Container().Lookup(ot.T("OS/2")).AsOS2().Version = 3
	err = flags.SetOblique(true)
	assert.ErrorIs(t, err, ErrFlags)
}

func TestFlagsWithoutOS2(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.foundry")
	defer teardown()
	//
	f := openFixture(t, fontload.Fixture{}, false)
	f.Container().RemoveTable(ot.T("OS/2"))
	_, err := f.Flags().IsBold()
	assert.ErrorIs(t, err, ErrFlags)
	assert.ErrorIs(t, err, ErrMissingTable)
	assert.ErrorIs(t, f.Flags().SetItalic(true), ErrFlags)
}
