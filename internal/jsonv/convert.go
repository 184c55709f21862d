package jsonv

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"strconv"
	"unicode/utf8"

	"github.com/tidwall/pretty"
)

// ErrInvalid indicates input that cannot be represented as a Value.
var ErrInvalid = errors.New("invalid json value")

// Parse parses a UTF-8 JSON document into a Value.
func Parse(data []byte) (Value, error) {
	if !utf8.Valid(data) {
		return Value{}, fmt.Errorf("parse json: %w: invalid UTF-8", ErrInvalid)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Value{}, fmt.Errorf("parse json: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Value{}, fmt.Errorf("parse json: %w: trailing data after document", ErrInvalid)
	}

	return FromAny(raw)
}

// FromAny converts a generic decoded JSON tree into a Value. Supported
// inputs are nil, bool, Go integers, integral float64, json.Number,
// string, []any, map[string]any and Value itself.
func FromAny(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(x), nil
	case int32:
		return Int(int(x)), nil
	case int64:
		return Int(int(x)), nil
	case float64:
		i, err := intFromFloat(x)
		if err != nil {
			return Value{}, err
		}
		return Int(i), nil
	case json.Number:
		i, err := intFromNumber(x)
		if err != nil {
			return Value{}, err
		}
		return Int(i), nil
	case string:
		return String(x), nil
	case []any:
		elems := make([]Value, len(x))
		for i, elem := range x {
			v, err := FromAny(elem)
			if err != nil {
				return Value{}, err
			}
			elems[i] = v
		}
		return Value{kind: KindArray, arr: elems}, nil
	case map[string]any:
		members := make(map[string]Value, len(x))
		for key, member := range x {
			v, err := FromAny(member)
			if err != nil {
				return Value{}, err
			}
			members[key] = v
		}
		return Value{kind: KindObject, obj: members}, nil
	default:
		return Value{}, fmt.Errorf("%w: unsupported type %T", ErrInvalid, raw)
	}
}

func intFromNumber(n json.Number) (int, error) {
	if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		return int(i), nil
	}
	// Fractions and exponents are evaluated exactly so that a value such
	// as 9007199254740993.0 is not rounded through float64.
	f, _, err := big.ParseFloat(string(n), 10, 256, big.ToNearestEven)
	if err != nil {
		return 0, fmt.Errorf("%w: number %s", ErrInvalid, n)
	}
	if f.Acc() != big.Exact || !f.IsInt() {
		return 0, fmt.Errorf("%w: number %s is not an integer", ErrInvalid, n)
	}
	i, acc := f.Int64()
	if acc != big.Exact {
		return 0, fmt.Errorf("%w: number %s is out of range", ErrInvalid, n)
	}
	return int(i), nil
}

func intFromFloat(f float64) (int, error) {
	if math.Trunc(f) != f || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: number %v is not an integer", ErrInvalid, f)
	}
	return int(f), nil
}

// Any converts v back into a generic tree of nil, bool, int, string,
// []any and map[string]any.
func (v Value) Any() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindString:
		return v.s
	case KindArray:
		elems := make([]any, len(v.arr))
		for i, elem := range v.arr {
			elems[i] = elem.Any()
		}
		return elems
	case KindObject:
		members := make(map[string]any, len(v.obj))
		for key, member := range v.obj {
			members[key] = member.Any()
		}
		return members
	default:
		return nil
	}
}

// Encode returns the compact JSON encoding of v. Object members are
// written in sorted key order.
func (v Value) Encode() ([]byte, error) {
	return json.Marshal(v.Any())
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return v.Encode()
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Decode decodes v into target, which must be a pointer.
func (v Value) Decode(target any) error {
	data, err := v.Encode()
	if err != nil {
		return fmt.Errorf("encode json value: %w", err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode json value: %w", err)
	}
	return nil
}

// DecodeAs decodes v into a new value of type T.
func DecodeAs[T any](v Value) (T, error) {
	var out T
	err := v.Decode(&out)
	return out, err
}

// From encodes an arbitrary Go value and parses the result into a Value.
func From(x any) (Value, error) {
	if v, ok := x.(Value); ok {
		return v, nil
	}
	data, err := json.Marshal(x)
	if err != nil {
		return Value{}, fmt.Errorf("encode %T: %w", x, err)
	}
	return Parse(data)
}

// String returns indented JSON text for v.
func (v Value) String() string {
	data, err := v.Encode()
	if err != nil {
		return fmt.Sprintf("%v", v.Any())
	}
	return string(bytes.TrimRight(pretty.Pretty(data), "\n"))
}
