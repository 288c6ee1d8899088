package ot

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUIntBase128(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	for _, v := range []uint32{0, 1, 127, 128, 16383, 16384, 1 << 28, 0xFFFFFFFF} {
		b := appendUIntBase128(nil, v)
		got, err := readUIntBase128(newFieldReader(b))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
	_, err := readUIntBase128(newFieldReader([]byte{0x80, 0x01}))
	assert.Error(t, err)
}

func TestRead255UInt16(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	cases := []struct {
		in   []byte
		want uint16
	}{
		{[]byte{0}, 0},
		{[]byte{252}, 252},
		{[]byte{255, 0}, 253},
		{[]byte{255, 252}, 505},
		{[]byte{254, 0}, 506},
		{[]byte{253, 0x12, 0x34}, 0x1234},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, read255UInt16(newFieldReader(c.in)), "%v", c.in)
	}
}

func TestTripletDecoding(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	cases := []struct {
		flag   byte
		data   []byte
		dx, dy int
	}{
		{1, []byte{0}, 0, 0},
		{0, []byte{10}, 0, -10},
		{3, []byte{10}, 0, 256 + 10},
		{11, []byte{100}, 100, 0},
		{20, []byte{0x00}, -1, -1},
		{23, []byte{0x21}, 3, 2},
		{84, []byte{5, 6}, -6, -7},
		{120, []byte{0x12, 0x34, 0x56}, -0x123, -0x456},
		{127, []byte{0x01, 0x00, 0x02, 0x00}, 256, 512},
	}
	for _, c := range cases {
		dx, dy, err := decodeTriplet(c.flag, newFieldReader(c.data))
		require.NoError(t, err)
		assert.Equal(t, c.dx, dx, "dx of flag %d", c.flag)
		assert.Equal(t, c.dy, dy, "dy of flag %d", c.flag)
	}
	_, _, err := decodeTriplet(127, newFieldReader([]byte{1}))
	assert.Error(t, err)
}

func TestReconstructTransformedGlyf(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	// two glyphs: an empty one and a triangle (0,0) (100,0) (100,200)
	w := newBinaryWriter(64)
	w.u16(0) // reserved
	w.u16(0) // option flags
	w.u16(2) // numGlyphs
	w.u16(0) // indexFormat
	nContours := []byte{0, 0, 0, 1}
	nPoints := []byte{3}
	flags := []byte{1, 11, 1}
	glyphs := []byte{0, 100, 200, 0}
	bbox := []byte{0, 0, 0, 0}
	for _, stream := range [][]byte{nContours, nPoints, flags, glyphs, nil, bbox, nil} {
		w.u32(uint32(len(stream)))
	}
	for _, stream := range [][]byte{nContours, nPoints, flags, glyphs, nil, bbox, nil} {
		w.bytes(stream)
	}
	glyf, loca, xMins, err := reconstructGlyf(w.Bytes())
	require.NoError(t, err)
	l := NewLocaTable()
	l.data = loca
	require.NoError(t, l.decode(2, false))
	assert.Equal(t, uint32(0), l.Offsets[1])
	g, err := decodeGlyph(glyf[l.Offsets[1]:l.Offsets[2]])
	require.NoError(t, err)
	assert.Equal(t, []GlyphPoint{
		{X: 0, Y: 0, OnCurve: true},
		{X: 100, Y: 0, OnCurve: true},
		{X: 100, Y: 200, OnCurve: true},
	}, g.Points)
	assert.Equal(t, [4]int16{0, 0, 100, 200}, [4]int16{g.XMin, g.YMin, g.XMax, g.YMax})
	assert.Equal(t, []int16{0, 0}, xMins)
}

func TestReconstructTransformedHMtx(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	hhea := make([]byte, hheaTableSize)
	hhea[35] = 1 // numberOfHMetrics
	maxp := []byte{0, 0, 0x50, 0, 0, 2}
	entries := []woff2Entry{{tag: T("hhea"), data: hhea}, {tag: T("maxp"), data: maxp}}
	byTag := map[Tag]int{T("hhea"): 0, T("maxp"): 1}
	// flags: both lsb arrays omitted
	b, err := reconstructHMtx([]byte{3, 0x01, 0xF4}, entries, byTag, []int16{20, 30})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0xF4, 0, 20, 0, 30}, b)
	_, err = reconstructHMtx([]byte{3, 0x01, 0xF4}, entries, byTag, nil)
	assert.Error(t, err)
}
