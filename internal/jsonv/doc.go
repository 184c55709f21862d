// Package jsonv provides a generic, immutable JSON value.
//
// A Value is one of six kinds: null, bool, int, string, array or object.
// Floating point numbers are deliberately not representable; parsing a
// document that contains a non-integral number fails. Values are used as a
// passthrough representation for payloads whose schema is not known up
// front, such as JSON-RPC params and results.
//
// # Building and Reading Values
//
//	v := jsonv.Object(map[string]jsonv.Value{
//	    "query": jsonv.String("main"),
//	    "limit": jsonv.Int(10),
//	})
//
//	limit, err := v.IntAt("limit")
//
// # Path Access
//
// Query and Set accept gjson/sjson paths ("result.0.name") for reaching
// into nested values without walking them manually.
package jsonv
