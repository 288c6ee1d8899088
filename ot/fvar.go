package ot

import (
	"fmt"

	"github.com/go-text/typesetting/font/opentype/tables"
)

// FvarTable is the font variations table. It is present in variable fonts only
// and lists the variation axes and the named instances of a font.
type FvarTable struct {
	tableBase
	Axes      []FvarAxis
	Instances []FvarInstance
	psNames   bool // instance records carry a PostScript name ID
}

// FvarAxis is a variation axis record.
type FvarAxis struct {
	Tag     Tag
	Minimum float64
	Default float64
	Maximum float64
	Flags   uint16
	NameID  uint16
}

// AxisHidden is the axis flag recommending not to expose an axis in user interfaces.
const AxisHidden uint16 = 0x0001

// IsHidden reports whether an axis has flag HIDDEN_AXIS set.
func (a FvarAxis) IsHidden() bool {
	return a.Flags&AxisHidden != 0
}

// FvarInstance is a named instance of a variable font.
type FvarInstance struct {
	SubfamilyNameID  uint16
	Flags            uint16
	Coordinates      []float64 // one per axis, in axis order
	PostScriptNameID uint16    // 0xFFFF if not present
}

func newFvarTable(tag Tag, b binarySegm, offset, size uint32) *FvarTable {
	t := &FvarTable{}
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

// NewFvarTable creates an fvar table without axes and instances.
func NewFvarTable() *FvarTable {
	return newFvarTable(T("fvar"), nil, 0, 0)
}

func parseFvar(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) (Table, error) {
	fv, _, err := tables.ParseFvar(b)
	if err != nil {
		ec.addError(tag, "Header", err.Error(), SeverityMajor, offset)
		return nil, errFontFormat(fmt.Sprintf("fvar: %v", err))
	}
	t := newFvarTable(tag, b, offset, size)
	axesOffset, _ := b.u16(4)
	axisCount, _ := b.u16(8)
	instanceSize, _ := b.u16(14)
	t.psNames = int(instanceSize) == int(axisCount)*4+6
	for i, axis := range fv.Axis {
		rec, err := b.view(int(axesOffset)+20*i, 20)
		if err != nil {
			return nil, errFontFormat("fvar axis record out of bounds")
		}
		t.Axes = append(t.Axes, FvarAxis{
			Tag:     Tag(axis.Tag),
			Minimum: float64(axis.Minimum),
			Default: float64(axis.Default),
			Maximum: float64(axis.Maximum),
			Flags:   u16(rec[16:]),
			NameID:  u16(rec[18:]),
		})
	}
	instancesOffset := int(axesOffset) + 20*len(fv.Axis)
	for i, inst := range fv.Instances {
		flags, _ := b.u16(instancesOffset + int(instanceSize)*i + 2)
		fi := FvarInstance{
			SubfamilyNameID:  inst.SubfamilyNameID,
			Flags:            flags,
			PostScriptNameID: 0xFFFF,
		}
		if t.psNames {
			fi.PostScriptNameID = inst.PostScriptNameID
		}
		for _, c := range inst.Coordinates {
			fi.Coordinates = append(fi.Coordinates, float64(c))
		}
		t.Instances = append(t.Instances, fi)
	}
	return t, nil
}

// Axis returns the axis record for a tag.
func (t *FvarTable) Axis(tag Tag) (FvarAxis, bool) {
	for _, a := range t.Axes {
		if a.Tag == tag {
			return a, true
		}
	}
	return FvarAxis{}, false
}

// Encode serializes table fvar.
func (t *FvarTable) Encode() ([]byte, error) {
	axisCount := len(t.Axes)
	instanceSize := axisCount*4 + 4
	psNames := t.psNames
	for _, inst := range t.Instances {
		if len(inst.Coordinates) != axisCount {
			return nil, fmt.Errorf("fvar instance has %d coordinates for %d axes", len(inst.Coordinates), axisCount)
		}
		if inst.PostScriptNameID != 0xFFFF {
			psNames = true
		}
	}
	if psNames {
		instanceSize += 2
	}
	w := newBinaryWriter(16 + 20*axisCount + instanceSize*len(t.Instances))
	w.u16(1)
	w.u16(0)
	w.u16(16) // axes array offset
	w.u16(2)  // reserved
	w.u16(uint16(axisCount))
	w.u16(20)
	w.u16(uint16(len(t.Instances)))
	w.u16(uint16(instanceSize))
	for _, a := range t.Axes {
		w.u32(uint32(a.Tag))
		w.i32(FloatToFixed1616(a.Minimum))
		w.i32(FloatToFixed1616(a.Default))
		w.i32(FloatToFixed1616(a.Maximum))
		w.u16(a.Flags)
		w.u16(a.NameID)
	}
	for _, inst := range t.Instances {
		w.u16(inst.SubfamilyNameID)
		w.u16(inst.Flags)
		for _, c := range inst.Coordinates {
			w.i32(FloatToFixed1616(c))
		}
		if psNames {
			w.u16(inst.PostScriptNameID)
		}
	}
	return w.Bytes(), nil
}
