/*
Package bits has helpers for single-bit manipulation of integer-valued table fields,
e.g. OS/2 fsSelection or head macStyle.

Bit positions are zero-based, counting from the least significant bit. Positions
outside the width of the field are not checked.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package bits

// Integer is the set of field types bits may operate on.
type Integer interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~int8 | ~int16 | ~int32 | ~int64 | ~int | ~uint
}

// Set returns v with bit pos set (on=true) or cleared (on=false).
// All other bits are left untouched.
func Set[T Integer](v T, pos uint, on bool) T {
	mask := T(1) << pos
	if on {
		return v | mask
	}
	return v &^ mask
}

// IsSet reports whether bit pos of v is set.
func IsSet[T Integer](v T, pos uint) bool {
	return v&(T(1)<<pos) != 0
}

// Mask returns a value with all the given bit positions set.
func Mask[T Integer](positions ...uint) T {
	var m T
	for _, p := range positions {
		m |= T(1) << p
	}
	return m
}
