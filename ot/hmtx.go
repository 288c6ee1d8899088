package ot

import "fmt"

// HMtxTable contains metric information for the horizontal layout each of the glyphs in
// the font. Each element in the contained hMetrics-array has two parts: the advance width
// and left side bearing. The value NumberOfHMetrics is taken from the `hhea` table. In
// a monospaced font, only one entry is required but that entry may not be omitted.
// Optionally, an array of left side bearings follows.
// The corresponding glyphs are assumed to have the same
// advance width as that found in the last entry in the hMetrics array.
//
// HMtxTable keeps one metric per glyph. Encode compresses trailing runs of identical
// advance widths and updates NumberOfHMetrics, which Write copies to table hhea.
type HMtxTable struct {
	tableBase
	NumberOfHMetrics int
	metrics          []HMetricRecord
}

// HMetricRecord is one horizontal metric record from table hmtx.
type HMetricRecord struct {
	AdvanceWidth    uint16
	LeftSideBearing int16
}

func newHMtxTable(tag Tag, b binarySegm, offset, size uint32) *HMtxTable {
	t := &HMtxTable{}
	base := tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.tableBase = base
	t.self = t
	return t
}

// NewHMtxTable creates a hmtx table from a slice of metrics, one per glyph.
func NewHMtxTable(metrics []HMetricRecord) *HMtxTable {
	t := newHMtxTable(T("hmtx"), nil, 0, 0)
	t.metrics = append([]HMetricRecord(nil), metrics...)
	t.NumberOfHMetrics = len(metrics)
	return t
}

// Dependencies (taken from Apple Developer page about TrueType):
// The value of the numOfLongHorMetrics field is found in the 'hhea' (Horizontal Header)
// table. Fonts that lack an 'hhea' table must not have an 'hmtx' table.
func parseHMtx(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	return newHMtxTable(tag, b, offset, size), nil
}

// decode reads the metrics. It is called after tables hhea and maxp are available.
func (t *HMtxTable) decode(numGlyphs, numberOfHMetrics int) error {
	if numGlyphs < 0 {
		return fmt.Errorf("invalid glyph count %d", numGlyphs)
	}
	if numberOfHMetrics < 1 || numberOfHMetrics > numGlyphs {
		return fmt.Errorf("invalid numberOfHMetrics %d (numGlyphs=%d)", numberOfHMetrics, numGlyphs)
	}
	required := numberOfHMetrics*4 + (numGlyphs-numberOfHMetrics)*2
	if required > len(t.data) {
		return fmt.Errorf("hmtx table too small: need %d bytes, have %d", required, len(t.data))
	}
	metrics := make([]HMetricRecord, numGlyphs)
	for i := 0; i < numberOfHMetrics; i++ {
		metrics[i] = HMetricRecord{
			AdvanceWidth:    u16(t.data[i*4:]),
			LeftSideBearing: int16(u16(t.data[i*4+2:])),
		}
	}
	lastAdvance := metrics[numberOfHMetrics-1].AdvanceWidth
	base := numberOfHMetrics * 4
	for i := numberOfHMetrics; i < numGlyphs; i++ {
		metrics[i] = HMetricRecord{
			AdvanceWidth:    lastAdvance,
			LeftSideBearing: int16(u16(t.data[base+(i-numberOfHMetrics)*2:])),
		}
	}
	t.NumberOfHMetrics = numberOfHMetrics
	t.metrics = metrics
	return nil
}

// GlyphCount returns the number of glyphs with metrics.
func (t *HMtxTable) GlyphCount() int {
	if t == nil {
		return 0
	}
	return len(t.metrics)
}

// HMetrics returns the advance width and left side bearing for a glyph.
func (t *HMtxTable) HMetrics(g GlyphIndex) (uint16, int16, bool) {
	if t == nil || int(g) >= len(t.metrics) {
		return 0, 0, false
	}
	m := t.metrics[g]
	return m.AdvanceWidth, m.LeftSideBearing, true
}

// Metric returns the metric record of a glyph.
func (t *HMtxTable) Metric(g GlyphIndex) (HMetricRecord, bool) {
	if t == nil || int(g) >= len(t.metrics) {
		return HMetricRecord{}, false
	}
	return t.metrics[g], true
}

// SetMetric changes the metric of a glyph. Glyph indices beyond the current
// glyph count extend the table.
func (t *HMtxTable) SetMetric(g GlyphIndex, advance uint16, lsb int16) {
	for int(g) >= len(t.metrics) {
		t.metrics = append(t.metrics, HMetricRecord{})
	}
	t.metrics[g] = HMetricRecord{AdvanceWidth: advance, LeftSideBearing: lsb}
}

// Metrics returns a copy of all metric records, one per glyph.
func (t *HMtxTable) Metrics() []HMetricRecord {
	if t == nil {
		return nil
	}
	return append([]HMetricRecord(nil), t.metrics...)
}

// Truncate reduces the table to n glyphs.
func (t *HMtxTable) Truncate(n int) {
	if n < len(t.metrics) {
		t.metrics = t.metrics[:n]
	}
}

// Encode serializes table hmtx. The number of long metrics is chosen as small
// as possible and stored in NumberOfHMetrics.
func (t *HMtxTable) Encode() ([]byte, error) {
	n := len(t.metrics)
	if t.metrics == nil {
		return t.data, nil // not decoded
	}
	if n == 0 {
		t.NumberOfHMetrics = 0
		return []byte{}, nil
	}
	last := t.metrics[n-1].AdvanceWidth
	long := n
	for long > 1 && t.metrics[long-2].AdvanceWidth == last {
		long--
	}
	w := newBinaryWriter(long*4 + (n-long)*2)
	for i := 0; i < long; i++ {
		w.u16(t.metrics[i].AdvanceWidth)
		w.i16(t.metrics[i].LeftSideBearing)
	}
	for i := long; i < n; i++ {
		w.i16(t.metrics[i].LeftSideBearing)
	}
	t.NumberOfHMetrics = long
	return w.Bytes(), nil
}
