package jsonv

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Query looks up a nested value using gjson path syntax, for example
// "result.0.location.uri". It reports false when nothing matches.
func (v Value) Query(path string) (Value, bool) {
	data, err := v.Encode()
	if err != nil {
		return Value{}, false
	}
	res := gjson.GetBytes(data, path)
	if !res.Exists() {
		return Value{}, false
	}
	found, err := Parse([]byte(res.Raw))
	if err != nil {
		return Value{}, false
	}
	return found, true
}

// Set returns a copy of v with the value at path replaced by x, using
// sjson path syntax. Missing intermediate objects are created.
func (v Value) Set(path string, x any) (Value, error) {
	data, err := v.Encode()
	if err != nil {
		return Value{}, fmt.Errorf("encode json value: %w", err)
	}
	updated, err := sjson.SetBytes(data, path, x)
	if err != nil {
		return Value{}, fmt.Errorf("set %q: %w", path, err)
	}
	return Parse(updated)
}

// Delete returns a copy of v without the value at path.
func (v Value) Delete(path string) (Value, error) {
	data, err := v.Encode()
	if err != nil {
		return Value{}, fmt.Errorf("encode json value: %w", err)
	}
	updated, err := sjson.DeleteBytes(data, path)
	if err != nil {
		return Value{}, fmt.Errorf("delete %q: %w", path, err)
	}
	return Parse(updated)
}
