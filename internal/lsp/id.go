package lsp

import (
	"strconv"

	"github.com/dshills/toolz/internal/jsonv"
)

// ID identifies a request. It is either a string or an integer; the two
// forms never compare equal.
type ID struct {
	str      string
	num      int
	isString bool
}

// StringID returns a string request ID.
func StringID(s string) ID { return ID{str: s, isString: true} }

// IntID returns an integer request ID.
func IntID(i int) ID { return ID{num: i} }

// IsString reports whether the ID is a string.
func (id ID) IsString() bool { return id.isString }

// Str returns the string form and whether the ID is a string.
func (id ID) Str() (string, bool) { return id.str, id.isString }

// Int returns the integer form and whether the ID is an integer.
func (id ID) Int() (int, bool) { return id.num, !id.isString }

// String returns the ID's text.
func (id ID) String() string {
	if id.isString {
		return id.str
	}
	return strconv.Itoa(id.num)
}

// Value returns the JSON form of the ID.
func (id ID) Value() jsonv.Value {
	if id.isString {
		return jsonv.String(id.str)
	}
	return jsonv.Int(id.num)
}

// NullableID is the ID of a response, which is null when the server
// could not determine the request it answers.
type NullableID struct {
	id    ID
	valid bool
}

// NullID returns the null response ID.
func NullID() NullableID { return NullableID{} }

// SomeID wraps a request ID.
func SomeID(id ID) NullableID { return NullableID{id: id, valid: true} }

// ID returns the wrapped ID and whether it is non-null.
func (n NullableID) ID() (ID, bool) { return n.id, n.valid }

// IsNull reports whether the ID is null.
func (n NullableID) IsNull() bool { return !n.valid }

// String returns the ID's text, or "<null>".
func (n NullableID) String() string {
	if !n.valid {
		return "<null>"
	}
	return n.id.String()
}

// Value returns the JSON form of the ID.
func (n NullableID) Value() jsonv.Value {
	if !n.valid {
		return jsonv.Null()
	}
	return n.id.Value()
}

// nullableIDFromValue converts a JSON id member. It reports false for
// kinds that cannot be an ID.
func nullableIDFromValue(v jsonv.Value) (NullableID, bool) {
	switch v.Kind() {
	case jsonv.KindString:
		s, _ := v.AsString()
		return SomeID(StringID(s)), true
	case jsonv.KindInt:
		i, _ := v.AsInt()
		return SomeID(IntID(i)), true
	case jsonv.KindNull:
		return NullID(), true
	default:
		return NullableID{}, false
	}
}
