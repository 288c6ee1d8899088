package tables

import (
	"fmt"

	"github.com/npillmayer/foundry/ot"
)

// Fvar wraps table fvar of variable fonts.
type Fvar struct {
	Base
}

// NewFvar creates a wrapper for table fvar of a font.
func NewFvar(otf *ot.Font) (*Fvar, error) {
	b, err := newBase(otf, ot.T("fvar"))
	if err != nil {
		return nil, err
	}
	if otf.Lookup(ot.T("fvar")).AsFvar() == nil {
		return nil, fmt.Errorf("table 'fvar' not decoded: %w", ot.ErrMissingTable)
	}
	return &Fvar{Base: b}, nil
}

// FvarTable returns the live fvar table.
func (f *Fvar) FvarTable() *ot.FvarTable {
	return f.otf.Lookup(ot.T("fvar")).AsFvar()
}

// Axes returns the variation axes. Hidden axes are included only if hidden is true.
func (f *Fvar) Axes(hidden bool) []ot.FvarAxis {
	var axes []ot.FvarAxis
	for _, a := range f.FvarTable().Axes {
		if hidden || !a.IsHidden() {
			axes = append(axes, a)
		}
	}
	return axes
}

// AxisTags returns the tags of the variation axes.
func (f *Fvar) AxisTags(hidden bool) []string {
	var tags []string
	for _, a := range f.Axes(hidden) {
		tags = append(tags, a.Tag.String())
	}
	return tags
}

// AxisLimits returns the minimum and maximum value of an axis, hidden or not.
func (f *Fvar) AxisLimits(tag string) (float64, float64, error) {
	t, err := parseTag(tag)
	if err != nil {
		return 0, 0, err
	}
	a, ok := f.FvarTable().Axis(t)
	if !ok {
		return 0, 0, fmt.Errorf("axis '%s' not found", tag)
	}
	return a.Minimum, a.Maximum, nil
}

// Instances returns the named instances.
func (f *Fvar) Instances() []ot.FvarInstance {
	return f.FvarTable().Instances
}
