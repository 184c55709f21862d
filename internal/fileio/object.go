package fileio

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/pretty"
)

// ReadJSONObject parses data whose root must be a JSON object.
func ReadJSONObject(data []byte) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("parse json object: %w", err)
	}
	if obj == nil {
		return nil, fmt.Errorf("parse json object: root is not an object")
	}
	return obj, nil
}

// ReadJSONArray parses data whose root must be a JSON array.
func ReadJSONArray(data []byte) ([]any, error) {
	var arr []any
	if err := json.Unmarshal(data, &arr); err != nil {
		return nil, fmt.Errorf("parse json array: %w", err)
	}
	if arr == nil {
		return nil, fmt.Errorf("parse json array: root is not an array")
	}
	return arr, nil
}

// JSONObjectData encodes obj as indented JSON.
func JSONObjectData(obj map[string]any) ([]byte, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("encode json object: %w", err)
	}
	return pretty.Pretty(data), nil
}
