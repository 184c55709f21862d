package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dshills/toolz/internal/jsonv"
	xlog "github.com/dshills/toolz/internal/log"
	"github.com/dshills/toolz/internal/lsp"
)

// FrameCmd frames JSON read from stdin.
type FrameCmd struct {
	Check bool `help:"Require the input to be a JSON-RPC message."`
}

// Run executes the frame command.
func (c *FrameCmd) Run(app *appContext) error {
	data, err := io.ReadAll(app.stdio.in)
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}
	v, err := jsonv.Parse(data)
	if err != nil {
		return err
	}
	if c.Check {
		if _, err := lsp.MessageFromValue(v); err != nil {
			return err
		}
	}
	content, err := v.Encode()
	if err != nil {
		return err
	}
	_, err = app.stdio.out.Write(lsp.MakeFrame(content))
	return err
}

// UnframeCmd prints the messages in a stream of frames.
type UnframeCmd struct{}

// Run executes the unframe command.
func (c *UnframeCmd) Run(app *appContext) error {
	scanner := bufio.NewScanner(app.stdio.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	scanner.Split(lsp.ScanFrames)

	for scanner.Scan() {
		msg, err := lsp.ParseMessage(scanner.Bytes())
		if err != nil {
			return err
		}
		fmt.Fprintln(app.stdio.out, describe(msg))
		if err := app.printValue(msg.Value()); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// describe summarizes a message on one line.
func describe(msg lsp.Message) string {
	switch m := msg.(type) {
	case lsp.Request:
		return fmt.Sprintf("request %s %s", m.ID, m.Method)
	case lsp.Response:
		if m.Error != nil {
			return fmt.Sprintf("response %s error %d", m.ID, m.Error.Code)
		}
		return fmt.Sprintf("response %s", m.ID)
	case lsp.Notification:
		return fmt.Sprintf("notification %s", m.Method)
	}
	return "unknown"
}

// SymbolsCmd lists symbols from a language server.
type SymbolsCmd struct {
	File       string   `arg:"" optional:"" help:"List the symbols of this file instead of the workspace." type:"path"`
	Query      string   `help:"Workspace symbol query." short:"q"`
	Root       string   `help:"Workspace folder (default: current directory)." type:"path"`
	Capability []string `help:"Client capability override as path=value, value in JSON." placeholder:"PATH=VALUE"`
}

// Run executes the symbols command.
func (c *SymbolsCmd) Run(app *appContext) error {
	root := c.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		root = wd
	}

	caps, err := applyCapabilities(lsp.DefaultClientCapabilities(), c.Capability)
	if err != nil {
		return err
	}

	ctx := app.ctx
	if timeout := app.cfg.LSP.RequestTimeout.Std(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	server := lsp.NewServerConnection(lsp.ServerConfig{
		Command: app.cfg.LSP.Command,
		Args:    app.cfg.LSP.Args,
		Env:     app.cfg.LSP.Env,
		WorkDir: root,
	})
	client := lsp.NewAsyncConnection(server)
	logger := xlog.WithComponent("symbols")
	client.OnNotification("window/*", func(n lsp.Notification) {
		var message string
		if n.Params != nil {
			message, _ = n.Params.StringAt("message")
		}
		logger.Debug().Str(xlog.FieldMethod, n.Method).Msg(message)
	})

	if err := server.Start(ctx, client); err != nil {
		return err
	}
	defer server.Close()

	if _, err := client.Initialize(ctx, root, caps); err != nil {
		return err
	}

	if c.File != "" {
		symbols, err := client.DocumentSymbols(ctx, c.File)
		if err != nil {
			return err
		}
		printDocumentSymbols(app.stdio.out, c.File, symbols)
	} else {
		symbols, err := client.WorkspaceSymbols(ctx, c.Query)
		if err != nil {
			return err
		}
		for _, s := range symbols {
			printSymbolInformation(app.stdio.out, s)
		}
	}

	return client.Shutdown(ctx)
}

// applyCapabilities sets each PATH=VALUE override on caps. A value that
// is not valid JSON is used as a string.
func applyCapabilities(caps jsonv.Value, overrides []string) (jsonv.Value, error) {
	for _, o := range overrides {
		path, raw, ok := strings.Cut(o, "=")
		if !ok || path == "" {
			return caps, fmt.Errorf("capability %q: expected PATH=VALUE", o)
		}
		var value any = raw
		if parsed, err := jsonv.Parse([]byte(raw)); err == nil {
			value = parsed
		}
		updated, err := caps.Set(path, value)
		if err != nil {
			return caps, fmt.Errorf("capability %q: %w", o, err)
		}
		caps = updated
	}
	return caps, nil
}

func printSymbolInformation(w io.Writer, s lsp.SymbolInformation) {
	start := s.Location.Range.Start
	fmt.Fprintf(w, "%s\t%s\t%s:%d:%d\n", s.Kind, s.Name,
		lsp.URIToFilePath(s.Location.URI), start.Line+1, start.Character+1)
}

func printDocumentSymbols(w io.Writer, file string, symbols lsp.DocumentSymbols) {
	for _, s := range symbols.Flat {
		printSymbolInformation(w, s)
	}
	var walk func(list []lsp.DocumentSymbol, depth int)
	walk = func(list []lsp.DocumentSymbol, depth int) {
		for _, s := range list {
			start := s.SelectionRange.Start
			fmt.Fprintf(w, "%s%s\t%s\t%s:%d:%d\n", strings.Repeat("  ", depth), s.Kind, s.Name,
				file, start.Line+1, start.Character+1)
			walk(s.Children, depth+1)
		}
	}
	walk(symbols.Hierarchy, 0)
}
