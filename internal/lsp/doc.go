// Package lsp implements the Language Server Protocol base protocol:
// JSON-RPC 2.0 messages carried in Content-Length frames.
//
// # Messages
//
// A Message is a Request, a Response or a Notification. ParseMessage
// classifies a decoded envelope by its members:
//
//   - an id (string, integer or null) with a result: success Response
//   - an id with an error object: error Response
//   - a non-null id with neither: Request
//   - no id: Notification
//
// Params and results are carried as jsonv.Value so that callers can pass
// through payloads without declaring Go types for them.
//
// # Framing
//
// Each message is transmitted as
//
//	Content-Length: <N>\r\n\r\n<N bytes of UTF-8 JSON>
//
// MakeFrame and ExtractContent work on whole frames in memory;
// FrameReader, FrameWriter and ScanFrames work on streams.
//
// # Talking to a Server
//
// A ServerConnection launches a language server and exchanges frames over
// its stdin and stdout. An AsyncConnection matches responses to requests:
//
//	server := lsp.NewServerConnection(lsp.ServerConfig{Command: "gopls"})
//	client := lsp.NewAsyncConnection(server)
//	if err := server.Start(ctx, client); err != nil {
//	    return err
//	}
//	defer server.Close()
//
//	if _, err := client.Initialize(ctx, root, lsp.DefaultClientCapabilities()); err != nil {
//	    return err
//	}
//	symbols, err := client.WorkspaceSymbols(ctx, "Handler")
//
// Handlers run on the connection's read goroutine in message order and
// must not wait for another response from the same connection.
package lsp
