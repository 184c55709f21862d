package rest

import (
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"
)

// Sentinel errors for errors.Is checks against a *RequestError.
var (
	ErrEncodingFailed   = errors.New("could not encode the request data")
	ErrRequestFailed    = errors.New("request failed")
	ErrUnexpectedStatus = errors.New("unexpected http status")
	ErrDecodingFailed   = errors.New("could not decode the response data")
)

// ErrorKind classifies a failed request.
type ErrorKind int

const (
	EncodingFailed ErrorKind = iota
	RequestFailed
	UnexpectedStatus
	DecodingFailed
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case EncodingFailed:
		return "encoding failed"
	case RequestFailed:
		return "request failed"
	case UnexpectedStatus:
		return "unexpected status"
	case DecodingFailed:
		return "decoding failed"
	default:
		return "unknown"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case EncodingFailed:
		return ErrEncodingFailed
	case RequestFailed:
		return ErrRequestFailed
	case UnexpectedStatus:
		return ErrUnexpectedStatus
	default:
		return ErrDecodingFailed
	}
}

// RequestError is the error returned by every Client operation.
type RequestError struct {
	Kind   ErrorKind
	Method string
	URL    string
	Status int    // zero unless a response was received
	Body   []byte // response body for UnexpectedStatus and DecodingFailed
	Err    error  // underlying cause, if any
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Kind.sentinel())
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d %s)", msg, e.Status, http.StatusText(e.Status))
	}
	if e.Kind == UnexpectedStatus && len(e.Body) > 0 && utf8.Valid(e.Body) {
		msg = fmt.Sprintf("%s\nresponse data: %s", msg, e.Body)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Is reports whether target is the sentinel for e's kind.
func (e *RequestError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// Unwrap returns the underlying cause.
func (e *RequestError) Unwrap() error {
	return e.Err
}
