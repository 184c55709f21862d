package lsp

import (
	"errors"
	"fmt"

	"github.com/dshills/toolz/internal/jsonv"
)

// Standard errors returned by the LSP package.
var (
	// ErrInvalidFrame indicates bytes that are not a Content-Length frame.
	ErrInvalidFrame = errors.New("invalid LSP frame")

	// ErrInvalidMessage indicates JSON that is not a JSON-RPC message.
	ErrInvalidMessage = errors.New("invalid JSON-RPC message")

	// ErrNotStarted indicates the connection has not been started.
	ErrNotStarted = errors.New("lsp connection not started")

	// ErrAlreadyStarted indicates the connection is already running.
	ErrAlreadyStarted = errors.New("lsp connection already started")

	// ErrShutdown indicates the connection has been closed.
	ErrShutdown = errors.New("lsp connection shut down")

	// ErrServerCrashed indicates the server process terminated unexpectedly.
	ErrServerCrashed = errors.New("server crashed")
)

// ResponseError is the error member of a JSON-RPC response.
type ResponseError struct {
	Code    int
	Message string
	Data    *jsonv.Value
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	msg := fmt.Sprintf("LSP Error: %s (code %d)", e.Message, e.Code)
	if e.Data != nil {
		msg += " data:\n" + e.Data.String()
	}
	return msg
}

// Value returns the JSON object form of the error.
func (e *ResponseError) Value() jsonv.Value {
	members := map[string]jsonv.Value{
		"code":    jsonv.Int(e.Code),
		"message": jsonv.String(e.Message),
	}
	if e.Data != nil {
		members["data"] = *e.Data
	}
	return jsonv.Object(members)
}

func responseErrorFromValue(v jsonv.Value) (*ResponseError, error) {
	code, err := v.IntAt("code")
	if err != nil {
		return nil, fmt.Errorf("%w: error code: %v", ErrInvalidMessage, err)
	}
	message, err := v.StringAt("message")
	if err != nil {
		return nil, fmt.Errorf("%w: error message: %v", ErrInvalidMessage, err)
	}
	rerr := &ResponseError{Code: code, Message: message}
	if data, ok := v.Field("data"); ok {
		rerr.Data = &data
	}
	return rerr, nil
}

// Standard JSON-RPC error codes.
const (
	// JSON-RPC standard errors
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603

	// LSP-specific errors
	CodeServerNotInitialized = -32002
	CodeUnknownErrorCode     = -32001
	CodeRequestCancelled     = -32800
	CodeContentModified      = -32801
	CodeServerCancelled      = -32802
	CodeRequestFailed        = -32803
)

// ServerError represents an error related to the server process.
type ServerError struct {
	Command string
	Err     error
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	return fmt.Sprintf("server %s: %v", e.Command, e.Err)
}

// Unwrap returns the underlying error.
func (e *ServerError) Unwrap() error {
	return e.Err
}
