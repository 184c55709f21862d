// Package codec encodes and decodes Go values as JSON and moves them
// to and from files.
package codec

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/pretty"

	"github.com/dshills/toolz/internal/fileio"
	xlog "github.com/dshills/toolz/internal/log"
)

// Encode returns the indented JSON encoding of v.
func Encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	return pretty.Pretty(data), nil
}

// EncodeOrNil is like Encode but logs failures and returns nil.
func EncodeOrNil(v any) []byte {
	data, err := Encode(v)
	if err != nil {
		logger := xlog.WithComponent("codec")
		logger.Error().Err(err).Msg("encode value")
		return nil
	}
	return data
}

// Decode decodes JSON data into a new value of type T.
func Decode[T any](data []byte) (T, error) {
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode %T: %w", out, err)
	}
	return out, nil
}

// DecodeOrZero is like Decode but logs failures. Nil data is absent
// without being logged.
func DecodeOrZero[T any](data []byte) (T, bool) {
	if data == nil {
		var zero T
		return zero, false
	}
	out, err := Decode[T](data)
	if err != nil {
		logger := xlog.WithComponent("codec")
		logger.Error().Err(err).Msg("decode value")
		return out, false
	}
	return out, true
}

// Load reads the JSON file at path and decodes it into a T.
func Load[T any](path string) (T, bool) {
	data, ok := fileio.Read(path)
	if !ok {
		var zero T
		return zero, false
	}
	return DecodeOrZero[T](data)
}

// Save encodes v and writes it to path, returning the absolute path of
// the written file.
func Save(v any, path string) (string, bool) {
	data := EncodeOrNil(v)
	if data == nil {
		return "", false
	}
	return fileio.Save(data, path)
}
