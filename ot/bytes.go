package ot

import (
	"encoding/binary"
	"errors"
)

// Reading and writing bytes of a font's binary representation

var errBufferBounds = errors.New("internal inconsistency: buffer bounds error")

func u16(b []byte) uint16 {
	_ = b[1] // Bounds check hint to compiler
	return uint16(b[0])<<8 | uint16(b[1])<<0
}

func u32(b []byte) uint32 {
	_ = b[3] // Bounds check hint to compiler
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])<<0
}

// binarySegm is a segment of byte data. We use it throughout this package to
// read the font's binary data with bounds checks.
type binarySegm []byte

// view returns n bytes at the given offset.
// The byte segment returned is a sub-slice of b.
func (b binarySegm) view(offset, n int) (binarySegm, error) {
	if offset < 0 || n < 0 || offset+n > len(b) {
		return nil, errBufferBounds
	}
	return b[offset : offset+n], nil
}

func (b binarySegm) u8(i int) (uint8, error) {
	if i < 0 || i >= len(b) {
		return 0, errBufferBounds
	}
	return b[i], nil
}

// u16 returns the uint16 in b at the relative offset i.
func (b binarySegm) u16(i int) (uint16, error) {
	buf, err := b.view(i, 2)
	if err != nil {
		return 0, err
	}
	return u16(buf), nil
}

func (b binarySegm) i16(i int) (int16, error) {
	n, err := b.u16(i)
	return int16(n), err
}

// u32 returns the uint32 in b at the relative offset i.
func (b binarySegm) u32(i int) (uint32, error) {
	buf, err := b.view(i, 4)
	if err != nil {
		return 0, err
	}
	return u32(buf), nil
}

func (b binarySegm) u64(i int) (uint64, error) {
	buf, err := b.view(i, 8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf), nil
}

// --- Sequential reader -----------------------------------------------------

// fieldReader reads consecutive big-endian fields. After the first failing read
// all subsequent reads return zero and err holds the first error.
type fieldReader struct {
	data binarySegm
	pos  int
	err  error
}

func newFieldReader(b []byte) *fieldReader {
	return &fieldReader{data: b}
}

func (r *fieldReader) skip(n int) {
	if r.err == nil {
		if _, r.err = r.data.view(r.pos, n); r.err == nil {
			r.pos += n
		}
	}
}

func (r *fieldReader) bytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	var b binarySegm
	if b, r.err = r.data.view(r.pos, n); r.err != nil {
		return nil
	}
	r.pos += n
	return b
}

func (r *fieldReader) u8() uint8 {
	b := r.bytes(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *fieldReader) u16() uint16 {
	b := r.bytes(2)
	if b == nil {
		return 0
	}
	return u16(b)
}

func (r *fieldReader) i16() int16 {
	return int16(r.u16())
}

func (r *fieldReader) u32() uint32 {
	b := r.bytes(4)
	if b == nil {
		return 0
	}
	return u32(b)
}

func (r *fieldReader) i32() int32 {
	return int32(r.u32())
}

func (r *fieldReader) u64() uint64 {
	b := r.bytes(8)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

func (r *fieldReader) remaining() int {
	return len(r.data) - r.pos
}

// --- Writer ----------------------------------------------------------------

// binaryWriter collects big-endian encoded fields.
type binaryWriter struct {
	buf []byte
}

func newBinaryWriter(capacity int) *binaryWriter {
	return &binaryWriter{buf: make([]byte, 0, capacity)}
}

func (w *binaryWriter) Len() int {
	return len(w.buf)
}

func (w *binaryWriter) Bytes() []byte {
	return w.buf
}

func (w *binaryWriter) u8(n uint8) {
	w.buf = append(w.buf, n)
}

func (w *binaryWriter) u16(n uint16) {
	w.buf = binary.BigEndian.AppendUint16(w.buf, n)
}

func (w *binaryWriter) i16(n int16) {
	w.u16(uint16(n))
}

func (w *binaryWriter) u32(n uint32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, n)
}

func (w *binaryWriter) i32(n int32) {
	w.u32(uint32(n))
}

func (w *binaryWriter) u64(n uint64) {
	w.buf = binary.BigEndian.AppendUint64(w.buf, n)
}

func (w *binaryWriter) bytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// pad appends zero bytes until the length is a multiple of n.
func (w *binaryWriter) pad(n int) {
	for len(w.buf)%n != 0 {
		w.buf = append(w.buf, 0)
	}
}

// putU16 overwrites a uint16 at a position already written.
func (w *binaryWriter) putU16(at int, n uint16) {
	binary.BigEndian.PutUint16(w.buf[at:], n)
}

// putU32 overwrites a uint32 at a position already written.
func (w *binaryWriter) putU32(at int, n uint32) {
	binary.BigEndian.PutUint32(w.buf[at:], n)
}

// binarySearchParams calculates searchRange, entrySelector and rangeShift for
// n records of a given size, as found in many OpenType headers.
func binarySearchParams(n, size int) (searchRange, entrySelector, rangeShift uint16) {
	if n == 0 {
		return 0, 0, 0
	}
	p, e := 1, 0
	for p*2 <= n {
		p *= 2
		e++
	}
	return uint16(p * size), uint16(e), uint16(n*size - p*size)
}
