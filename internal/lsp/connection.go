package lsp

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	xlog "github.com/dshills/toolz/internal/log"
)

// Handler receives every message read from a connection, in order, on
// the connection's read goroutine. HandleMessage must not block on a
// response from the same connection.
type Handler interface {
	HandleMessage(msg Message)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(msg Message)

// HandleMessage calls f(msg).
func (f HandlerFunc) HandleMessage(msg Message) { f(msg) }

// CloseHandler is implemented by handlers that want to know when the
// read loop has stopped. err is nil after a clean end of stream.
type CloseHandler interface {
	HandleClose(err error)
}

// ErrorOutputHandler is implemented by handlers that want the lines a
// server process writes to stderr.
type ErrorOutputHandler interface {
	HandleErrorOutput(line string)
}

// Sender sends messages to the peer.
type Sender interface {
	Send(msg Message) error
}

// Connection exchanges framed JSON-RPC messages over a byte stream.
type Connection struct {
	reader *FrameReader
	writer *FrameWriter
	closer io.Closer
	logger zerolog.Logger

	started atomic.Bool
	closed  atomic.Bool
	done    chan struct{}

	mu      sync.Mutex
	readErr error
}

// NewConnection creates a connection reading from r and writing to w.
// Close closes c, which should unblock a pending read on r.
func NewConnection(r io.Reader, w io.Writer, c io.Closer) *Connection {
	return &Connection{
		reader: NewFrameReader(r),
		writer: NewFrameWriter(w),
		closer: c,
		logger: xlog.WithComponent("lsp"),
		done:   make(chan struct{}),
	}
}

// Start begins reading messages and passing them to h.
func (c *Connection) Start(ctx context.Context, h Handler) error {
	if c.started.Swap(true) {
		return ErrAlreadyStarted
	}
	go c.readLoop(ctx, h)
	return nil
}

// Send writes msg to the peer.
func (c *Connection) Send(msg Message) error {
	if c.closed.Load() {
		return ErrShutdown
	}
	return c.writer.WriteMessage(msg)
}

// Close closes the connection. The read loop exits once the pending read
// returns.
func (c *Connection) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}

// IsClosed returns true if the connection has been closed.
func (c *Connection) IsClosed() bool {
	return c.closed.Load()
}

// Done returns a channel that is closed when the read loop exits.
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// Err returns the error that stopped the read loop, if any.
func (c *Connection) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readErr
}

// readLoop reads messages from the connection.
func (c *Connection) readLoop(ctx context.Context, h Handler) {
	var loopErr error
	defer func() {
		c.mu.Lock()
		c.readErr = loopErr
		c.mu.Unlock()
		close(c.done)
		if ch, ok := h.(CloseHandler); ok {
			ch.HandleClose(loopErr)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			loopErr = ctx.Err()
			return
		default:
		}

		content, err := c.reader.ReadFrame()
		if err != nil {
			if c.closed.Load() || errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
				return
			}
			loopErr = err
			c.logger.Error().Err(err).Msg("read frame")
			return
		}

		msg, err := ParseMessage(content)
		if err != nil {
			c.logger.Error().Err(err).Bytes("content", content).Msg("dropping unparseable message")
			continue
		}

		h.HandleMessage(msg)
	}
}
