package lsp

import (
	"os"

	"github.com/dshills/toolz/internal/jsonv"
)

// Method names used by the message constructors.
const (
	MethodInitialize      = "initialize"
	MethodInitialized     = "initialized"
	MethodShutdown        = "shutdown"
	MethodExit            = "exit"
	MethodWorkspaceSymbol = "workspace/symbol"
	MethodDocumentSymbol  = "textDocument/documentSymbol"
	MethodLogMessage      = "window/logMessage"
	MethodShowMessage     = "window/showMessage"
)

// Initialize creates the initialize request for a workspace folder.
// capabilities is a ClientCapabilities object.
func Initialize(folder string, capabilities jsonv.Value) Request {
	return NewRequest(MethodInitialize, Params(jsonv.Object(map[string]jsonv.Value{
		"processId":    jsonv.Int(os.Getpid()),
		"rootUri":      jsonv.String(string(FolderURI(folder))),
		"capabilities": capabilities,
	})))
}

// DefaultClientCapabilities declares support for hierarchical document
// symbols and nothing else.
func DefaultClientCapabilities() jsonv.Value {
	return jsonv.Object(map[string]jsonv.Value{
		"textDocument": jsonv.Object(map[string]jsonv.Value{
			"documentSymbol": jsonv.Object(map[string]jsonv.Value{
				"hierarchicalDocumentSymbolSupport": jsonv.Bool(true),
			}),
		}),
	})
}

// Initialized creates the notification sent after a successful initialize.
func Initialized() Notification {
	return NewNotification(MethodInitialized, Params(jsonv.Object(nil)))
}

// Shutdown creates the shutdown request.
func Shutdown() Request {
	return NewRequest(MethodShutdown, nil)
}

// Exit creates the exit notification.
func Exit() Notification {
	return NewNotification(MethodExit, nil)
}

// WorkspaceSymbol creates a workspace/symbol request. An empty query asks
// for all symbols.
func WorkspaceSymbol(query string) Request {
	return NewRequest(MethodWorkspaceSymbol, Params(jsonv.Object(map[string]jsonv.Value{
		"query": jsonv.String(query),
	})))
}

// DocSymbol creates a textDocument/documentSymbol request for a file.
func DocSymbol(file string) Request {
	return NewRequest(MethodDocumentSymbol, Params(jsonv.Object(map[string]jsonv.Value{
		"textDocument": jsonv.Object(map[string]jsonv.Value{
			"uri": jsonv.String(string(FilePathToURI(file))),
		}),
	})))
}
