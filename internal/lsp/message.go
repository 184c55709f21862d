package lsp

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dshills/toolz/internal/jsonv"
)

const jsonrpcVersion = "2.0"

// Message is a JSON-RPC message: a Request, a Response or a Notification.
type Message interface {
	// Value returns the JSON-RPC envelope of the message.
	Value() jsonv.Value

	isMessage()
}

// Request asks the peer to perform a method and answer with a Response.
type Request struct {
	ID     ID
	Method string
	Params *jsonv.Value
}

// Response answers the request with the same ID. Exactly one of Result
// and Error is meaningful: Result when Error is nil.
type Response struct {
	ID     NullableID
	Result jsonv.Value
	Error  *ResponseError
}

// Notification is a one-way message without ID.
type Notification struct {
	Method string
	Params *jsonv.Value
}

func (Request) isMessage()      {}
func (Response) isMessage()     {}
func (Notification) isMessage() {}

// NewRequest creates a request with a fresh UUID string ID. Pass a nil
// params to omit the member.
func NewRequest(method string, params *jsonv.Value) Request {
	return Request{ID: StringID(uuid.NewString()), Method: method, Params: params}
}

// NewRequestWithID creates a request with a caller-chosen ID.
func NewRequestWithID(id ID, method string, params *jsonv.Value) Request {
	return Request{ID: id, Method: method, Params: params}
}

// NewNotification creates a notification.
func NewNotification(method string, params *jsonv.Value) Notification {
	return Notification{Method: method, Params: params}
}

// Success creates a successful response.
func Success(id NullableID, result jsonv.Value) Response {
	return Response{ID: id, Result: result}
}

// Failure creates an error response.
func Failure(id NullableID, err *ResponseError) Response {
	return Response{ID: id, Error: err}
}

// Params wraps v for use as request or notification params.
func Params(v jsonv.Value) *jsonv.Value {
	return &v
}

// Err returns the response error as an error value, or nil on success.
func (r Response) Err() error {
	if r.Error == nil {
		return nil
	}
	return r.Error
}

// Value returns the JSON-RPC envelope of the request.
func (r Request) Value() jsonv.Value {
	members := map[string]jsonv.Value{
		"jsonrpc": jsonv.String(jsonrpcVersion),
		"id":      r.ID.Value(),
		"method":  jsonv.String(r.Method),
	}
	if r.Params != nil {
		members["params"] = *r.Params
	}
	return jsonv.Object(members)
}

// Value returns the JSON-RPC envelope of the response.
func (r Response) Value() jsonv.Value {
	members := map[string]jsonv.Value{
		"jsonrpc": jsonv.String(jsonrpcVersion),
		"id":      r.ID.Value(),
	}
	if r.Error != nil {
		members["error"] = r.Error.Value()
	} else {
		members["result"] = r.Result
	}
	return jsonv.Object(members)
}

// Value returns the JSON-RPC envelope of the notification.
func (n Notification) Value() jsonv.Value {
	members := map[string]jsonv.Value{
		"jsonrpc": jsonv.String(jsonrpcVersion),
		"method":  jsonv.String(n.Method),
	}
	if n.Params != nil {
		members["params"] = *n.Params
	}
	return jsonv.Object(members)
}

// Encode returns the compact JSON encoding of msg.
func Encode(msg Message) ([]byte, error) {
	return msg.Value().Encode()
}

// ParseMessage parses JSON data into a Message.
func ParseMessage(data []byte) (Message, error) {
	v, err := jsonv.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return MessageFromValue(v)
}

// MessageFromValue classifies a JSON-RPC envelope.
//
// A message whose id is a string, an integer or null is a response when
// it has a result or an error object, and a request otherwise. A message
// without such an id is a notification. Requests must have a non-null id;
// requests and notifications must have a string method.
func MessageFromValue(v jsonv.Value) (Message, error) {
	if v.Kind() != jsonv.KindObject {
		return nil, fmt.Errorf("%w: envelope is %s, not object", ErrInvalidMessage, v.Kind())
	}

	params := optionalField(v, "params")

	idValue, hasID := v.Field("id")
	if !hasID {
		return notificationFromValue(v, params)
	}
	id, ok := nullableIDFromValue(idValue)
	if !ok {
		return notificationFromValue(v, params)
	}

	if result, ok := v.Field("result"); ok {
		return Success(id, result), nil
	}

	if errValue, ok := v.Field("error"); ok && errValue.Kind() == jsonv.KindObject {
		rerr, err := responseErrorFromValue(errValue)
		if err != nil {
			return nil, err
		}
		return Failure(id, rerr), nil
	}

	requestID, ok := id.ID()
	if !ok {
		return nil, fmt.Errorf("%w: response without result or error, or request with null id", ErrInvalidMessage)
	}
	method, err := v.StringAt("method")
	if err != nil {
		return nil, fmt.Errorf("%w: request method: %v", ErrInvalidMessage, err)
	}
	return Request{ID: requestID, Method: method, Params: params}, nil
}

func notificationFromValue(v jsonv.Value, params *jsonv.Value) (Message, error) {
	method, err := v.StringAt("method")
	if err != nil {
		return nil, fmt.Errorf("%w: notification method: %v", ErrInvalidMessage, err)
	}
	return Notification{Method: method, Params: params}, nil
}

func optionalField(v jsonv.Value, key string) *jsonv.Value {
	member, ok := v.Field(key)
	if !ok {
		return nil
	}
	return &member
}
