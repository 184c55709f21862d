package jsonv

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Kind identifies which case of the JSON variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindString
	KindArray
	KindObject
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is an immutable JSON value. The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	i    int
	s    string
	arr  []Value
	obj  map[string]Value
}

var (
	// ErrNoField indicates an object has no member with the requested key.
	ErrNoField = errors.New("json object has no such field")

	// ErrIndexOutOfRange indicates an array index outside the array.
	ErrIndexOutOfRange = errors.New("json array index out of range")
)

// KindError reports an access that expected a different kind of value.
type KindError struct {
	Want Kind
	Got  Kind
}

// Error implements the error interface.
func (e *KindError) Error() string {
	return fmt.Sprintf("json value is %s, not %s", e.Got, e.Want)
}

// Null returns the JSON null value.
func Null() Value { return Value{} }

// Bool returns a JSON boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns a JSON integer.
func Int(i int) Value { return Value{kind: KindInt, i: i} }

// String returns a JSON string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Array returns a JSON array holding a copy of the given elements.
func Array(elems ...Value) Value {
	return Value{kind: KindArray, arr: slices.Clone(elems)}
}

// Object returns a JSON object holding a copy of the given members.
func Object(members map[string]Value) Value {
	obj := maps.Clone(members)
	if obj == nil {
		obj = map[string]Value{}
	}
	return Value{kind: KindObject, obj: obj}
}

// Kind returns the kind of the value.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is JSON null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Len returns the number of elements of an array or members of an object,
// and zero for all other kinds.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return len(v.obj)
	default:
		return 0
	}
}

// Equal reports whether two values are structurally identical.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindInt:
		return a.i == b.i
	case KindString:
		return a.s == b.s
	case KindArray:
		return slices.EqualFunc(a.arr, b.arr, Equal)
	case KindObject:
		return maps.EqualFunc(a.obj, b.obj, Equal)
	}
	return false
}

// Equal reports whether v and other are structurally identical.
func (v Value) Equal(other Value) bool {
	return Equal(v, other)
}
