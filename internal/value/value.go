// Package value classifies runtime Go values into the shapes a GraphQL type
// can accept: null, scalar, record, sequence, or lazily produced sequence.
package value

import (
	"iter"
	"reflect"
)

// Kind is the shape of a runtime value.
type Kind uint8

const (
	Null Kind = iota
	Scalar
	Record
	Sequence
	Lazy
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Scalar:
		return "scalar"
	case Record:
		return "record"
	case Sequence:
		return "sequence"
	case Lazy:
		return "lazy sequence"
	}
	return "unknown"
}

// Iterator is implemented by producers that yield list items on demand.
type Iterator interface {
	Next() bool
	Value() any
}

// Value is a classified runtime value. The zero Value is Null.
type Value struct {
	kind Kind
	raw  any
}

// Of classifies v. Pointers and interfaces are followed; a nil pointer, map,
// slice, func or channel is Null. Booleans, numbers and strings are
// scalars. Maps and structs are records. Slices and arrays are sequences,
// except byte slices which are scalars. Channels, iter.Seq functions and
// Iterator implementations are lazy sequences. Anything else (functions of
// other shapes, complex numbers) is classified as a record so it never
// satisfies a scalar or list type.
func Of(v any) Value {
	if v == nil {
		return Value{}
	}
	switch x := v.(type) {
	case Value:
		return x
	case Iterator, iter.Seq[any]:
		return Value{kind: Lazy, raw: v}
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return Value{}
		}
		if _, ok := rv.Interface().(Iterator); ok {
			return Value{kind: Lazy, raw: v}
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return Value{kind: Scalar, raw: v}
	case reflect.Slice:
		if rv.IsNil() {
			return Value{}
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return Value{kind: Scalar, raw: v}
		}
		return Value{kind: Sequence, raw: v}
	case reflect.Array:
		return Value{kind: Sequence, raw: v}
	case reflect.Map:
		if rv.IsNil() {
			return Value{}
		}
		return Value{kind: Record, raw: v}
	case reflect.Struct:
		return Value{kind: Record, raw: v}
	case reflect.Chan:
		if rv.IsNil() {
			return Value{}
		}
		return Value{kind: Lazy, raw: v}
	case reflect.Func:
		if rv.IsNil() {
			return Value{}
		}
		if isSeqFunc(rv.Type()) {
			return Value{kind: Lazy, raw: v}
		}
	}
	return Value{kind: Record, raw: v}
}

// isSeqFunc reports whether t has the shape of iter.Seq[V] for any V.
func isSeqFunc(t reflect.Type) bool {
	if t.NumIn() != 1 || t.NumOut() != 0 {
		return false
	}
	yield := t.In(0)
	return yield.Kind() == reflect.Func &&
		yield.NumIn() == 1 && yield.NumOut() == 1 &&
		yield.Out(0).Kind() == reflect.Bool
}

func (v Value) Kind() Kind { return v.kind }

// Raw returns the value as it was classified.
func (v Value) Raw() any { return v.raw }

func (v Value) IsNull() bool { return v.kind == Null }

// Len reports the number of elements of a Sequence and -1 for other kinds.
func (v Value) Len() int {
	if v.kind != Sequence {
		return -1
	}
	return indirect(v.raw).Len()
}

// Elements yields the classified elements of a Sequence. Other kinds yield
// nothing; lazy sequences are never drained.
func (v Value) Elements() iter.Seq2[int, Value] {
	return func(yield func(int, Value) bool) {
		if v.kind != Sequence {
			return
		}
		rv := indirect(v.raw)
		for i := 0; i < rv.Len(); i++ {
			if !yield(i, Of(rv.Index(i).Interface())) {
				return
			}
		}
	}
}

func indirect(raw any) reflect.Value {
	rv := reflect.ValueOf(raw)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		rv = rv.Elem()
	}
	return rv
}
