package ot

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldAccess(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	os2 := NewOS2Table()
	os2.FsSelection = 1 << FsSelectionRegular
	v, err := FieldValue(os2, "FsSelection")
	require.NoError(t, err)
	assert.Equal(t, uint64(0x40), v)
	require.NoError(t, SetFieldValue(os2, "FsSelection", v|1<<FsSelectionBold))
	assert.Equal(t, uint16(0x60), os2.FsSelection)
	require.NoError(t, SetFieldValue(os2, "UsWeightClass", 0x10190)) // truncated
	assert.Equal(t, uint16(0x0190), os2.UsWeightClass)
}

func TestSignedFieldAccess(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	head := NewHeadTable(1000)
	head.XMin = -50
	v, err := FieldValue(head, "XMin")
	require.NoError(t, err)
	assert.Equal(t, int64(-50), int64(v))
	minus := int64(-120)
	require.NoError(t, SetFieldValue(head, "XMin", uint64(minus)))
	assert.Equal(t, int16(-120), head.XMin)
	require.NoError(t, SetFieldValue(head, "YMin", 0xFFFF))
	assert.Equal(t, int16(-1), head.YMin)
}

func TestFieldNotFound(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	os2 := NewOS2Table()
	_, err := FieldValue(os2, "NoSuchField")
	assert.ErrorIs(t, err, ErrFieldNotFound)
	_, err = FieldValue(os2, "Panose") // not an integer
	assert.ErrorIs(t, err, ErrFieldNotFound)
	_, err = FieldValue(os2, "legacyShort")
	assert.ErrorIs(t, err, ErrFieldNotFound)
	err = SetFieldValue(os2, "AchVendID", 1)
	assert.ErrorIs(t, err, ErrFieldNotFound)
	_, err = FieldValue(nil, "FsSelection")
	assert.ErrorIs(t, err, ErrMissingTable)
}
