package lsp

import (
	"context"
	"fmt"

	"github.com/dshills/toolz/internal/jsonv"
)

// Initialize performs the LSP initialize handshake: the initialize
// request followed by the initialized notification.
func (a *AsyncConnection) Initialize(ctx context.Context, folder string, capabilities jsonv.Value) (InitializeResult, error) {
	var result InitializeResult

	raw, err := a.Call(ctx, Initialize(folder, capabilities))
	if err != nil {
		return result, fmt.Errorf("initialize request: %w", err)
	}
	if err := raw.Decode(&result); err != nil {
		return result, fmt.Errorf("initialize result: %w", err)
	}

	if err := a.Notify(Initialized()); err != nil {
		return result, fmt.Errorf("initialized notification: %w", err)
	}
	return result, nil
}

// Shutdown asks the server to shut down and then to exit.
func (a *AsyncConnection) Shutdown(ctx context.Context) error {
	if _, err := a.Call(ctx, Shutdown()); err != nil {
		return fmt.Errorf("shutdown request: %w", err)
	}
	if err := a.Notify(Exit()); err != nil {
		return fmt.Errorf("exit notification: %w", err)
	}
	return nil
}

// WorkspaceSymbols runs a workspace/symbol query.
func (a *AsyncConnection) WorkspaceSymbols(ctx context.Context, query string) ([]SymbolInformation, error) {
	raw, err := a.Call(ctx, WorkspaceSymbol(query))
	if err != nil {
		return nil, fmt.Errorf("workspace symbol request: %w", err)
	}
	if raw.IsNull() {
		return nil, nil
	}
	symbols, err := jsonv.DecodeAs[[]SymbolInformation](raw)
	if err != nil {
		return nil, fmt.Errorf("workspace symbol result: %w", err)
	}
	return symbols, nil
}

// DocumentSymbols holds a textDocument/documentSymbol result, which a
// server sends either as a hierarchy or as a flat list.
type DocumentSymbols struct {
	Hierarchy []DocumentSymbol
	Flat      []SymbolInformation
}

// DocumentSymbols requests the symbols of a file.
func (a *AsyncConnection) DocumentSymbols(ctx context.Context, file string) (DocumentSymbols, error) {
	raw, err := a.Call(ctx, DocSymbol(file))
	if err != nil {
		return DocumentSymbols{}, fmt.Errorf("document symbol request: %w", err)
	}
	return ParseDocumentSymbols(raw)
}

// ParseDocumentSymbols decodes a textDocument/documentSymbol result.
func ParseDocumentSymbols(raw jsonv.Value) (DocumentSymbols, error) {
	var out DocumentSymbols
	if raw.IsNull() || raw.Len() == 0 {
		return out, nil
	}

	if _, flat := raw.Query("0.location"); flat {
		symbols, err := jsonv.DecodeAs[[]SymbolInformation](raw)
		if err != nil {
			return out, fmt.Errorf("document symbol result: %w", err)
		}
		out.Flat = symbols
		return out, nil
	}

	symbols, err := jsonv.DecodeAs[[]DocumentSymbol](raw)
	if err != nil {
		return out, fmt.Errorf("document symbol result: %w", err)
	}
	out.Hierarchy = symbols
	return out, nil
}
