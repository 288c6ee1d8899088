package ot

import (
	"fmt"
	"reflect"
)

// FieldValue returns the value of an exported integer field of a decoded table,
// looked up by its Go name, e.g.
//
//	v, err := ot.FieldValue(otf.Table(ot.T("OS/2")), "FsSelection")
//
// Signed values are returned in two's complement. If the table has no integer
// field of that name, an error wrapping ErrFieldNotFound is returned.
func FieldValue(t Table, name string) (uint64, error) {
	f, err := tableField(t, name)
	if err != nil {
		return 0, err
	}
	switch f.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return uint64(f.Int()), nil
	}
	return f.Uint(), nil
}

// SetFieldValue sets an exported integer field of a decoded table. v is truncated
// to the width of the field.
func SetFieldValue(t Table, name string, v uint64) error {
	f, err := tableField(t, name)
	if err != nil {
		return err
	}
	if !f.CanSet() {
		return fmt.Errorf("field %s of table '%s' is read-only: %w", name, t.Self().NameTag(), ErrFieldNotFound)
	}
	switch f.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f.SetInt(int64(v) << (64 - f.Type().Bits()) >> (64 - f.Type().Bits()))
	default:
		f.SetUint(v)
	}
	return nil
}

func tableField(t Table, name string) (reflect.Value, error) {
	if t == nil {
		return reflect.Value{}, fmt.Errorf("field %s: %w", name, ErrMissingTable)
	}
	self := safeSelf(t.Self())
	v := reflect.ValueOf(self)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("field %s of table '%s': %w", name, t.Self().NameTag(), ErrFieldNotFound)
	}
	sf, ok := v.Elem().Type().FieldByName(name)
	if !ok || !sf.IsExported() || len(sf.Index) > 1 {
		return reflect.Value{}, fmt.Errorf("field %s of table '%s': %w", name, t.Self().NameTag(), ErrFieldNotFound)
	}
	f := v.Elem().FieldByIndex(sf.Index)
	switch f.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return f, nil
	}
	return reflect.Value{}, fmt.Errorf("field %s of table '%s' is not an integer: %w", name, t.Self().NameTag(), ErrFieldNotFound)
}
