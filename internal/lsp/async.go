package lsp

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/tidwall/match"

	"github.com/dshills/toolz/internal/jsonv"
	xlog "github.com/dshills/toolz/internal/log"
)

// ResultHandler receives the outcome of a request: the result on
// success, or a *ResponseError, ErrShutdown or a send error.
type ResultHandler func(result jsonv.Value, err error)

// NotificationHandler handles incoming notifications.
type NotificationHandler func(n Notification)

// RequestHandler answers a request sent by the server. Returning a nil
// error sends result as a success response.
type RequestHandler func(req Request) (jsonv.Value, *ResponseError)

type notificationRoute struct {
	pattern string
	handler NotificationHandler
}

// AsyncConnection matches responses to the requests that caused them.
// It is the Handler for a Connection or ServerConnection and sends
// through the Sender it was created with. It is safe for concurrent use.
type AsyncConnection struct {
	sender Sender
	logger zerolog.Logger

	mu       sync.Mutex
	byString map[string]ResultHandler
	byInt    map[int]ResultHandler
	routes   []notificationRoute
	closed   bool

	onError       func(*ResponseError)
	onErrorOutput func(string)
	onRequest     RequestHandler
}

// NewAsyncConnection creates an AsyncConnection sending through s.
func NewAsyncConnection(s Sender) *AsyncConnection {
	return &AsyncConnection{
		sender:   s,
		logger:   xlog.WithComponent("lsp"),
		byString: make(map[string]ResultHandler),
		byInt:    make(map[int]ResultHandler),
	}
}

// Request registers h for the response to req and sends req.
func (a *AsyncConnection) Request(req Request, h ResultHandler) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrShutdown
	}
	a.setHandler(req.ID, h)
	a.mu.Unlock()

	if err := a.sender.Send(req); err != nil {
		a.mu.Lock()
		a.takeHandler(req.ID)
		a.mu.Unlock()
		return fmt.Errorf("send request: %w", err)
	}
	return nil
}

// Call sends req and waits for its response.
func (a *AsyncConnection) Call(ctx context.Context, req Request) (jsonv.Value, error) {
	type outcome struct {
		result jsonv.Value
		err    error
	}
	ch := make(chan outcome, 1)

	err := a.Request(req, func(result jsonv.Value, err error) {
		ch <- outcome{result: result, err: err}
	})
	if err != nil {
		return jsonv.Value{}, err
	}

	select {
	case <-ctx.Done():
		a.mu.Lock()
		a.takeHandler(req.ID)
		a.mu.Unlock()
		return jsonv.Value{}, ctx.Err()
	case out := <-ch:
		return out.result, out.err
	}
}

// Notify sends a notification.
func (a *AsyncConnection) Notify(n Notification) error {
	return a.sender.Send(n)
}

// OnNotification registers h for notifications whose method matches
// pattern. Patterns use * and ? wildcards, so "window/*" matches every
// window notification. The first matching registration wins.
func (a *AsyncConnection) OnNotification(pattern string, h NotificationHandler) {
	a.mu.Lock()
	a.routes = append(a.routes, notificationRoute{pattern: pattern, handler: h})
	a.mu.Unlock()
}

// OnError registers a handler for error responses with a null ID.
func (a *AsyncConnection) OnError(h func(*ResponseError)) {
	a.mu.Lock()
	a.onError = h
	a.mu.Unlock()
}

// OnErrorOutput registers a handler for server stderr lines.
func (a *AsyncConnection) OnErrorOutput(h func(line string)) {
	a.mu.Lock()
	a.onErrorOutput = h
	a.mu.Unlock()
}

// OnRequest registers a handler for requests sent by the server. Without
// one, such requests are answered with MethodNotFound.
func (a *AsyncConnection) OnRequest(h RequestHandler) {
	a.mu.Lock()
	a.onRequest = h
	a.mu.Unlock()
}

// Pending returns the number of requests awaiting a response.
func (a *AsyncConnection) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.byString) + len(a.byInt)
}

// HandleMessage implements Handler.
func (a *AsyncConnection) HandleMessage(msg Message) {
	switch m := msg.(type) {
	case Response:
		a.handleResponse(m)
	case Notification:
		a.handleNotification(m)
	case Request:
		a.handleRequest(m)
	}
}

// HandleErrorOutput implements ErrorOutputHandler.
func (a *AsyncConnection) HandleErrorOutput(line string) {
	a.mu.Lock()
	h := a.onErrorOutput
	a.mu.Unlock()

	if h == nil {
		a.logger.Debug().Str("stderr", line).Msg("server error output")
		return
	}
	h(line)
}

// HandleClose implements CloseHandler. Every pending request fails with
// ErrShutdown and later requests are refused.
func (a *AsyncConnection) HandleClose(err error) {
	a.mu.Lock()
	a.closed = true
	pending := make([]ResultHandler, 0, len(a.byString)+len(a.byInt))
	for id, h := range a.byString {
		pending = append(pending, h)
		delete(a.byString, id)
	}
	for id, h := range a.byInt {
		pending = append(pending, h)
		delete(a.byInt, id)
	}
	a.mu.Unlock()

	if err != nil {
		a.logger.Warn().Err(err).Int("pending", len(pending)).Msg("connection closed")
	}
	for _, h := range pending {
		h(jsonv.Value{}, ErrShutdown)
	}
}

func (a *AsyncConnection) handleResponse(resp Response) {
	id, ok := resp.ID.ID()
	if !ok {
		if resp.Error == nil {
			a.logger.Error().Str("result", resp.Result.String()).Msg("did receive result without request ID")
			return
		}
		a.mu.Lock()
		h := a.onError
		a.mu.Unlock()
		if h == nil {
			a.logger.Error().Err(resp.Error).Msg("did receive error without request ID")
			return
		}
		h(resp.Error)
		return
	}

	a.mu.Lock()
	h, found := a.takeHandler(id)
	a.mu.Unlock()

	if !found {
		a.logger.Error().Str(xlog.FieldID, id.String()).Msg("no response handler found")
		return
	}
	if resp.Error != nil {
		h(jsonv.Value{}, resp.Error)
		return
	}
	h(resp.Result, nil)
}

func (a *AsyncConnection) handleNotification(n Notification) {
	a.mu.Lock()
	var h NotificationHandler
	for _, route := range a.routes {
		if match.Match(n.Method, route.pattern) {
			h = route.handler
			break
		}
	}
	a.mu.Unlock()

	if h == nil {
		a.logger.Debug().Str(xlog.FieldMethod, n.Method).Msg("unhandled notification")
		return
	}
	h(n)
}

func (a *AsyncConnection) handleRequest(req Request) {
	a.mu.Lock()
	h := a.onRequest
	a.mu.Unlock()

	var resp Response
	if h == nil {
		resp = Failure(SomeID(req.ID), &ResponseError{
			Code:    CodeMethodNotFound,
			Message: "method not found: " + req.Method,
		})
	} else if result, rerr := h(req); rerr != nil {
		resp = Failure(SomeID(req.ID), rerr)
	} else {
		resp = Success(SomeID(req.ID), result)
	}

	if err := a.sender.Send(resp); err != nil {
		a.logger.Error().Err(err).Str(xlog.FieldMethod, req.Method).Msg("answer server request")
	}
}

// setHandler and takeHandler require a.mu to be held.
func (a *AsyncConnection) setHandler(id ID, h ResultHandler) {
	if s, ok := id.Str(); ok {
		a.byString[s] = h
		return
	}
	n, _ := id.Int()
	a.byInt[n] = h
}

func (a *AsyncConnection) takeHandler(id ID) (ResultHandler, bool) {
	if s, ok := id.Str(); ok {
		h, found := a.byString[s]
		delete(a.byString, s)
		return h, found
	}
	n, _ := id.Int()
	h, found := a.byInt[n]
	delete(a.byInt, n)
	return h, found
}
