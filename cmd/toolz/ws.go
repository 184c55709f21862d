package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dshills/toolz/internal/websocket"
)

// WSCmd prints the messages received on a WebSocket.
type WSCmd struct {
	URL     string        `arg:"" help:"WebSocket URL; http and https are converted to ws and wss."`
	Send    []string      `help:"Text messages to send after connecting." short:"s"`
	Count   int           `help:"Exit after receiving this many messages; 0 waits for the peer to close." short:"n"`
	Timeout time.Duration `help:"Maximum time to wait for messages." default:"30s"`
}

// Run executes the ws command.
func (c *WSCmd) Run(app *appContext) error {
	messages := make(chan string, 16)
	failures := make(chan error, 1)
	stop := make(chan struct{})
	defer close(stop)

	deliver := func(m string) {
		select {
		case messages <- m:
		case <-stop:
		}
	}

	sock, err := websocket.Dial(app.ctx, c.URL, websocket.Options{
		Origin: app.cfg.WebSocket.Origin,
		OnText: deliver,
		OnData: func(data []byte) { deliver(fmt.Sprintf("<%d bytes> %x", len(data), data)) },
		OnError: func(_ *websocket.Socket, err error) {
			select {
			case failures <- err:
			default:
			}
		},
	})
	if err != nil {
		return err
	}
	defer sock.Close()

	for _, text := range c.Send {
		if err := sock.SendText(app.ctx, text); err != nil {
			return err
		}
	}

	timer := time.NewTimer(c.Timeout)
	defer timer.Stop()

	received := 0
	show := func(m string) bool {
		fmt.Fprintln(app.stdio.out, m)
		received++
		return c.Count > 0 && received >= c.Count
	}

	for {
		select {
		case m := <-messages:
			if show(m) {
				return nil
			}
		case err := <-failures:
			for drained := false; !drained; {
				select {
				case m := <-messages:
					if show(m) {
						return nil
					}
				default:
					drained = true
				}
			}
			if errors.Is(err, io.EOF) && c.Count == 0 {
				return nil
			}
			return fmt.Errorf("receive: %w", err)
		case <-timer.C:
			if c.Count > 0 {
				return fmt.Errorf("timed out after %d of %d messages", received, c.Count)
			}
			return nil
		case <-app.ctx.Done():
			return app.ctx.Err()
		}
	}
}
