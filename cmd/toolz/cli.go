package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/term"
	"golang.org/x/time/rate"

	"github.com/dshills/toolz/internal/config"
	"github.com/dshills/toolz/internal/jsonv"
	xlog "github.com/dshills/toolz/internal/log"
	"github.com/dshills/toolz/internal/rest"
)

// CLI defines the command-line interface.
type CLI struct {
	Config     string           `help:"Path to a TOML or YAML config file." short:"c" type:"path"`
	LogLevel   string           `help:"Log level (overrides config)."`
	LogConsole bool             `help:"Human-readable log output."`
	Output     string           `help:"JSON output style." enum:"auto,pretty,compact" default:"auto"`
	Metrics    string           `help:"Write Prometheus metrics to this file on exit." type:"path"`
	Version    kong.VersionFlag `help:"Show version information." short:"v"`

	Get      GetCmd      `cmd:"" help:"GET a URL and print the JSON response."`
	Post     PostCmd     `cmd:"" help:"POST a JSON file to a URL."`
	WS       WSCmd       `cmd:"" name:"ws" help:"Connect to a WebSocket and print received messages."`
	Frame    FrameCmd    `cmd:"" help:"Wrap JSON from stdin in an LSP Content-Length frame."`
	Unframe  UnframeCmd  `cmd:"" help:"Read LSP frames from stdin and print the classified messages."`
	Symbols  SymbolsCmd  `cmd:"" help:"Ask a language server for workspace or document symbols."`
	ShowConf ShowConfCmd `cmd:"" name:"config" help:"Print the effective configuration."`
}

// stdio holds the streams commands read from and write to.
type stdio struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

// appContext is bound to every command's Run method.
type appContext struct {
	ctx    context.Context
	cfg    config.Config
	stdio  stdio
	pretty bool
}

// exitRequest is the panic value used to unwind out of kong when it asks
// to exit, as it does after --help and --version.
type exitRequest struct{ code int }

// run parses args and runs the selected command, returning the process
// exit code.
func run(ctx context.Context, args []string, streams stdio) (code int) {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("toolz"),
		kong.Description("JSON, HTTP, WebSocket and LSP utilities"),
		kong.Writers(streams.out, streams.err),
		kong.Exit(func(code int) { panic(exitRequest{code: code}) }),
		kong.Vars{"version": fmt.Sprintf("toolz %s (commit %s, built %s)", version, commit, date)},
	)
	if err != nil {
		fmt.Fprintf(streams.err, "Error: %v\n", err)
		return 2
	}

	defer func() {
		if r := recover(); r != nil {
			exit, ok := r.(exitRequest)
			if !ok {
				panic(r)
			}
			code = exit.code
		}
	}()

	kctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(streams.err, "toolz: error: %v\n", err)
		return 2
	}

	app, err := newAppContext(ctx, &cli, streams)
	if err != nil {
		fmt.Fprintf(streams.err, "Error: %v\n", err)
		return 1
	}

	code = 0
	if err := kctx.Run(app); err != nil {
		fmt.Fprintf(streams.err, "Error: %v\n", err)
		code = 1
	}
	if cli.Metrics != "" {
		if err := prometheus.WriteToTextfile(cli.Metrics, prometheus.DefaultGatherer); err != nil {
			fmt.Fprintf(streams.err, "Error: writing metrics: %v\n", err)
			code = 1
		}
	}
	return code
}

// newAppContext loads configuration and sets up logging.
func newAppContext(ctx context.Context, cli *CLI, streams stdio) (*appContext, error) {
	path := cli.Config
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cli.LogLevel != "" {
		cfg.Log.Level = cli.LogLevel
	}
	if cli.LogConsole {
		cfg.Log.Console = true
	}

	xlog.Configure(xlog.Config{
		Level:   cfg.Log.Level,
		Output:  streams.err,
		Console: cfg.Log.Console,
	})

	return &appContext{
		ctx:    ctx,
		cfg:    cfg,
		stdio:  streams,
		pretty: wantPretty(cli.Output, streams.out),
	}, nil
}

// wantPretty resolves the output style. auto pretty-prints only to a
// terminal.
func wantPretty(style string, out io.Writer) bool {
	switch style {
	case "pretty":
		return true
	case "compact":
		return false
	}
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// restClient builds a REST client from the http settings.
func (a *appContext) restClient() *rest.Client {
	return rest.NewClient(rest.Options{
		Timeout:        a.cfg.HTTP.Timeout.Std(),
		UserAgent:      a.cfg.HTTP.UserAgent,
		RateLimit:      rate.Limit(a.cfg.HTTP.RateLimit),
		RateLimitBurst: a.cfg.HTTP.RateBurst,
	})
}

// printValue writes v in the selected output style.
func (a *appContext) printValue(v jsonv.Value) error {
	if a.pretty {
		_, err := fmt.Fprintln(a.stdio.out, v.String())
		return err
	}
	data, err := v.Encode()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.stdio.out, "%s\n", data)
	return err
}
