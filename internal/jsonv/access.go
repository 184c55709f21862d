package jsonv

import (
	"fmt"
	"maps"
	"slices"
)

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, error) {
	if v.kind != KindBool {
		return false, &KindError{Want: KindBool, Got: v.kind}
	}
	return v.b, nil
}

// AsInt returns the integer held by v.
func (v Value) AsInt() (int, error) {
	if v.kind != KindInt {
		return 0, &KindError{Want: KindInt, Got: v.kind}
	}
	return v.i, nil
}

// AsString returns the string held by v.
func (v Value) AsString() (string, error) {
	if v.kind != KindString {
		return "", &KindError{Want: KindString, Got: v.kind}
	}
	return v.s, nil
}

// AsArray returns a copy of the elements held by v.
func (v Value) AsArray() ([]Value, error) {
	if v.kind != KindArray {
		return nil, &KindError{Want: KindArray, Got: v.kind}
	}
	return slices.Clone(v.arr), nil
}

// AsObject returns a copy of the members held by v.
func (v Value) AsObject() (map[string]Value, error) {
	if v.kind != KindObject {
		return nil, &KindError{Want: KindObject, Got: v.kind}
	}
	return maps.Clone(v.obj), nil
}

// Keys returns the sorted member keys of an object, or nil.
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	var keys []string
	for k := range v.obj {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Index returns the array element at i. It reports false when v is not
// an array or i is out of range.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindArray || i < 0 || i >= len(v.arr) {
		return Value{}, false
	}
	return v.arr[i], true
}

// At is like Index but returns a descriptive error.
func (v Value) At(i int) (Value, error) {
	if v.kind != KindArray {
		return Value{}, &KindError{Want: KindArray, Got: v.kind}
	}
	if i < 0 || i >= len(v.arr) {
		return Value{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	return v.arr[i], nil
}

// Field returns the object member named key. It reports false when v is
// not an object or has no such member.
func (v Value) Field(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	member, ok := v.obj[key]
	return member, ok
}

// Get is like Field but returns a descriptive error.
func (v Value) Get(key string) (Value, error) {
	if v.kind != KindObject {
		return Value{}, &KindError{Want: KindObject, Got: v.kind}
	}
	member, ok := v.obj[key]
	if !ok {
		return Value{}, fmt.Errorf("%w %q", ErrNoField, key)
	}
	return member, nil
}

// BoolAt returns the boolean member named key.
func (v Value) BoolAt(key string) (bool, error) {
	member, err := v.Get(key)
	if err != nil {
		return false, err
	}
	return member.AsBool()
}

// IntAt returns the integer member named key.
func (v Value) IntAt(key string) (int, error) {
	member, err := v.Get(key)
	if err != nil {
		return 0, err
	}
	return member.AsInt()
}

// StringAt returns the string member named key.
func (v Value) StringAt(key string) (string, error) {
	member, err := v.Get(key)
	if err != nil {
		return "", err
	}
	return member.AsString()
}

// ArrayAt returns the array member named key.
func (v Value) ArrayAt(key string) ([]Value, error) {
	member, err := v.Get(key)
	if err != nil {
		return nil, err
	}
	return member.AsArray()
}

// ObjectAt returns the object member named key.
func (v Value) ObjectAt(key string) (map[string]Value, error) {
	member, err := v.Get(key)
	if err != nil {
		return nil, err
	}
	return member.AsObject()
}

// NullAt reports an error unless the member named key exists and is null.
func (v Value) NullAt(key string) error {
	member, err := v.Get(key)
	if err != nil {
		return err
	}
	if !member.IsNull() {
		return &KindError{Want: KindNull, Got: member.kind}
	}
	return nil
}
