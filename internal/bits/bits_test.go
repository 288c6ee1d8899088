package bits

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
)

func TestSetPreservesOtherBits(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.foundry")
	defer teardown()
	//
	var fsSelection uint16 = 0b0000_0000_0100_0001 // italic + regular
	v := Set(fsSelection, 5, true)
	assert.Equal(t, uint16(0b0000_0000_0110_0001), v)
	v = Set(v, 6, false)
	assert.Equal(t, uint16(0b0000_0000_0010_0001), v)
	assert.Equal(t, v, Set(v, 0, true), "setting a set bit must not change the value")
	assert.Equal(t, v, Set(v, 9, false), "clearing a clear bit must not change the value")
}

func TestIsSet(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.foundry")
	defer teardown()
	//
	var macStyle uint16 = 0x0003
	assert.True(t, IsSet(macStyle, 0))
	assert.True(t, IsSet(macStyle, 1))
	assert.False(t, IsSet(macStyle, 2))
	var ranges uint32 = 1 << 31
	assert.True(t, IsSet(ranges, 31))
}

func TestMask(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.foundry")
	defer teardown()
	//
	assert.Equal(t, uint16(0x0061), Mask[uint16](0, 5, 6))
	assert.Equal(t, uint8(0), Mask[uint8]())
}
