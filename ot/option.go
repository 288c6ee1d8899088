package ot

import "fmt"

// Option is a value which may be absent. Write uses an Option[bool] to choose
// the order of table data: Some(true) sorts by tag, Some(false) keeps the order
// of the source file, None writes tables in dependency order.
type Option[T any] struct {
	value T
	ok    bool
}

// Some returns an Option holding v.
func Some[T any](v T) Option[T] {
	return Option[T]{value: v, ok: true}
}

// None returns an empty Option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// Unwrap returns the value and whether it is present.
func (o Option[T]) Unwrap() (T, bool) {
	return o.value, o.ok
}

func (o Option[T]) String() string {
	if !o.ok {
		return "none"
	}
	return fmt.Sprint(o.value)
}
