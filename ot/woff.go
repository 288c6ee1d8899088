package ot

import (
	"bytes"
	"compress/zlib"
	"fmt"

	"github.com/go-text/typesetting/font/opentype"
)

// WOFF 1.0, see https://www.w3.org/TR/WOFF/

const (
	woffHeaderSize = 44
	woffEntrySize  = 20
)

// parseWOFF unpacks the tables of a WOFF file. Decompression of the tables is
// left to the go-text loader.
func parseWOFF(font []byte, ec *errorCollector) (FontHeader, []tableEntry, error) {
	h := FontHeader{}
	if len(font) < woffHeaderSize {
		ec.addError(T(""), "Header", "WOFF header truncated", SeverityCritical, 0)
		return h, nil, errFontFormat("WOFF header truncated")
	}
	ld, err := opentype.NewLoader(bytes.NewReader(font))
	if err != nil {
		ec.addError(T(""), "Header", err.Error(), SeverityCritical, 0)
		return h, nil, errFontFormat(fmt.Sprintf("WOFF: %v", err))
	}
	h.FontType = uint32(ld.Type)
	tags := ld.Tables()
	entries := make([]tableEntry, 0, len(tags))
	for _, t := range tags {
		data, err := ld.RawTable(t)
		if err != nil {
			ec.addError(Tag(t), "Data", err.Error(), SeverityCritical, 0)
			return h, nil, errFontFormat(fmt.Sprintf("WOFF table %s: %v", Tag(t), err))
		}
		entries = append(entries, tableEntry{tag: Tag(t), data: data})
	}
	tracer().Debugf("WOFF: flavor %s, %d tables", Tag(h.FontType), len(entries))
	return h, entries, nil
}

// writeWOFF packs prepared tables into a WOFF file. Tables are compressed
// with zlib if this makes them smaller.
func writeWOFF(h FontHeader, tables []encodedTable, sfntSize int) ([]byte, error) {
	n := len(tables)
	// directory entries are sorted by tag, data follows in table order
	dir := sortedByTag(tables)
	type packed struct {
		data   []byte
		offset uint32
	}
	pack := make(map[Tag]packed, n)
	body := newBinaryWriter(sfntSize)
	offset := woffHeaderSize + n*woffEntrySize
	for _, t := range tables {
		data, err := deflate(t.data)
		if err != nil {
			return nil, fmt.Errorf("WOFF table %s: %w", t.tag, err)
		}
		pack[t.tag] = packed{data: data, offset: uint32(offset + body.Len())}
		body.bytes(data)
		body.pad(4)
	}
	total := offset + body.Len()
	w := newBinaryWriter(total)
	w.u32(signatureWOFF)
	w.u32(h.FontType)
	w.u32(uint32(total))
	w.u16(uint16(n))
	w.u16(0) // reserved
	w.u32(uint32(sfntSize))
	w.u16(1) // majorVersion
	w.u16(0) // minorVersion
	w.u32(0) // metaOffset
	w.u32(0) // metaLength
	w.u32(0) // metaOrigLength
	w.u32(0) // privOffset
	w.u32(0) // privLength
	for _, t := range dir {
		p := pack[t.tag]
		w.u32(uint32(t.tag))
		w.u32(p.offset)
		w.u32(uint32(len(p.data)))
		w.u32(uint32(len(t.data)))
		w.u32(t.checksum)
	}
	w.bytes(body.Bytes())
	return w.Bytes(), nil
}

// deflate returns data compressed with zlib, or data itself if compression
// does not pay off.
func deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	if buf.Len() >= len(data) {
		return data, nil
	}
	return buf.Bytes(), nil
}
