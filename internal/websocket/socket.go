// Package websocket runs a WebSocket connection as a message pump.
//
// A Socket receives messages one at a time on its own goroutine and hands
// them to the handlers given at Dial: binary frames to OnData, text frames
// to OnText. Receiving continues until the socket is closed or the
// connection fails.
package websocket

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	xws "golang.org/x/net/websocket"

	xlog "github.com/dshills/toolz/internal/log"
)

var (
	// ErrClosed is returned when sending on a closed socket.
	ErrClosed = errors.New("websocket closed")

	// ErrUnsupportedScheme is returned by Dial for non-http(s)/ws(s) URLs.
	ErrUnsupportedScheme = errors.New("unsupported websocket url scheme")
)

// Options configures a Socket.
type Options struct {
	// Origin sent during the handshake. Defaults to the http(s) form of
	// the target URL.
	Origin string

	// Header holds extra handshake headers.
	Header http.Header

	// OnData receives binary messages.
	OnData func(data []byte)

	// OnText receives text messages.
	OnText func(text string)

	// OnError receives receive failures. The socket is closed afterwards.
	OnError func(s *Socket, err error)
}

// Socket is a connected WebSocket.
type Socket struct {
	url    *url.URL
	conn   *xws.Conn
	opts   Options
	logger zerolog.Logger

	sendMu sync.Mutex
	closed atomic.Bool
	done   chan struct{}
}

// Dial connects to rawURL and starts the receive loop. http and https
// URLs are converted to ws and wss.
func Dial(ctx context.Context, rawURL string, opts Options) (*Socket, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	target, err := socketURL(parsed)
	if err != nil {
		return nil, err
	}

	origin := opts.Origin
	if origin == "" {
		originScheme := SchemeHTTP
		if Scheme(target.Scheme) == SchemeWSS {
			originScheme = SchemeHTTPS
		}
		origin = string(originScheme) + "://" + target.Host
	}

	cfg, err := xws.NewConfig(target.String(), origin)
	if err != nil {
		return nil, fmt.Errorf("websocket config: %w", err)
	}
	for key, values := range opts.Header {
		for _, v := range values {
			cfg.Header.Add(key, v)
		}
	}

	conn, err := cfg.DialContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}

	s := &Socket{
		url:    target,
		conn:   conn,
		opts:   opts,
		logger: xlog.WithComponent("websocket").With().Str(xlog.FieldURL, target.String()).Logger(),
		done:   make(chan struct{}),
	}
	go s.receiveLoop()
	return s, nil
}

// URL returns the WebSocket URL the socket is connected to.
func (s *Socket) URL() *url.URL {
	return s.url
}

// receiveLoop reads messages until the socket is closed.
func (s *Socket) receiveLoop() {
	defer close(s.done)

	for {
		var msg frame
		err := frameCodec.Receive(s.conn, &msg)
		if s.closed.Load() {
			return
		}
		if err != nil {
			s.didReceiveError(err)
			s.Close()
			return
		}
		s.process(msg)
	}
}

func (s *Socket) process(msg frame) {
	switch msg.payloadType {
	case xws.BinaryFrame:
		if s.opts.OnData == nil {
			s.logger.Warn().Msg("data handler not set")
			return
		}
		s.opts.OnData(msg.data)
	case xws.TextFrame:
		if s.opts.OnText == nil {
			s.logger.Warn().Msg("text handler not set")
			return
		}
		s.opts.OnText(string(msg.data))
	default:
		s.logger.Error().Int("payload_type", int(msg.payloadType)).Msg("unknown type of websocket message")
	}
}

func (s *Socket) didReceiveError(err error) {
	if s.opts.OnError == nil {
		s.logger.Warn().Err(err).Msg("error handler not set")
		return
	}
	s.opts.OnError(s, err)
}

// Send writes a binary message.
func (s *Socket) Send(ctx context.Context, data []byte) error {
	return s.send(ctx, data)
}

// SendText writes a text message.
func (s *Socket) SendText(ctx context.Context, text string) error {
	return s.send(ctx, text)
}

func (s *Socket) send(ctx context.Context, payload any) error {
	if s.closed.Load() {
		return ErrClosed
	}

	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	deadline, _ := ctx.Deadline()
	if err := s.conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := frameCodec.Send(s.conn, payload); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return nil
}

// Close stops the receive loop and closes the connection. It is safe to
// call more than once and from within a handler.
func (s *Socket) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.conn.Close()
}

// IsClosed reports whether Close has been called.
func (s *Socket) IsClosed() bool {
	return s.closed.Load()
}

// Done returns a channel that is closed once the receive loop has exited.
func (s *Socket) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the receive loop exits or the timeout elapses.
func (s *Socket) Wait(timeout time.Duration) bool {
	select {
	case <-s.done:
		return true
	case <-time.After(timeout):
		return false
	}
}
