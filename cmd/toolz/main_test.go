package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xws "golang.org/x/net/websocket"

	"github.com/dshills/toolz/internal/jsonv"
	"github.com/dshills/toolz/internal/lsp"
)

// fakeServerEnv makes the test binary act as a language server.
const fakeServerEnv = "TOOLZ_CMD_FAKE_SERVER"

func TestMain(m *testing.M) {
	if os.Getenv(fakeServerEnv) == "1" {
		os.Exit(fakeLanguageServer(os.Stdin, os.Stdout))
	}
	os.Exit(m.Run())
}

// fakeLanguageServer answers initialize, workspace/symbol,
// textDocument/documentSymbol and shutdown.
func fakeLanguageServer(in io.Reader, out io.Writer) int {
	reader := lsp.NewFrameReader(in)
	writer := lsp.NewFrameWriter(out)
	for {
		msg, err := reader.ReadMessage()
		if err != nil {
			return 0
		}
		switch m := msg.(type) {
		case lsp.Notification:
			if m.Method == lsp.MethodExit {
				return 0
			}
		case lsp.Request:
			var result string
			switch m.Method {
			case lsp.MethodInitialize:
				result = `{"capabilities":{}}`
			case lsp.MethodWorkspaceSymbol:
				result = `[{"name":"Handler","kind":11,"location":{"uri":"file:///src/api.go","range":{"start":{"line":9,"character":5},"end":{"line":9,"character":12}}}}]`
			case lsp.MethodDocumentSymbol:
				result = `[{"name":"Server","kind":23,"range":{"start":{"line":0,"character":0},"end":{"line":4,"character":1}},"selectionRange":{"start":{"line":0,"character":5},"end":{"line":0,"character":11}},"children":[{"name":"Start","kind":6,"range":{"start":{"line":2,"character":0},"end":{"line":3,"character":1}},"selectionRange":{"start":{"line":2,"character":17},"end":{"line":2,"character":22}}}]}]`
			default:
				result = `null`
			}
			v, _ := jsonv.Parse([]byte(result))
			if err := writer.WriteMessage(lsp.Success(lsp.SomeID(m.ID), v)); err != nil {
				return 1
			}
		}
	}
}

type result struct {
	code   int
	stdout string
	stderr string
}

// runCLI runs the command with an isolated config file.
func runCLI(t *testing.T, stdin string, args ...string) result {
	t.Helper()

	var stdout, stderr bytes.Buffer
	full := append([]string{"--config", filepath.Join(t.TempDir(), "none.toml")}, args...)
	code := run(context.Background(), full, stdio{
		in:  strings.NewReader(stdin),
		out: &stdout,
		err: &stderr,
	})
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestRun_Version(t *testing.T) {
	res := runCLI(t, "", "--version")
	assert.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "toolz dev")
}

func TestRun_Help(t *testing.T) {
	res := runCLI(t, "", "--help")
	assert.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "unframe")
}

func TestRun_UnknownCommand(t *testing.T) {
	res := runCLI(t, "", "explode")
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, "toolz: error")
}

func newAPIServer(t *testing.T, posted chan<- []byte) *httptest.Server {
	t.Helper()

	r := chi.NewRouter()
	r.Get("/item", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"toolz","items":[1,2]}`))
	})
	r.Get("/missing", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no such item", http.StatusNotFound)
	})
	r.Post("/item", func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		posted <- body
		w.WriteHeader(http.StatusCreated)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestRun_Get(t *testing.T) {
	srv := newAPIServer(t, nil)

	res := runCLI(t, "", "--output", "compact", "get", srv.URL+"/item")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, `{"items":[1,2],"name":"toolz"}`+"\n", res.stdout)

	res = runCLI(t, "", "--output", "compact", "get", "-q", "items.1", srv.URL+"/item")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "2\n", res.stdout)

	res = runCLI(t, "", "--output", "pretty", "get", "-q", "items", srv.URL+"/item")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "[1, 2]\n", res.stdout)
}

func TestRun_GetSave(t *testing.T) {
	srv := newAPIServer(t, nil)
	target := filepath.Join(t.TempDir(), "item.json")

	res := runCLI(t, "", "get", "--save", target, srv.URL+"/item")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stderr, "Saved response to "+target)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	saved, err := jsonv.Parse(data)
	require.NoError(t, err)
	name, _ := saved.StringAt("name")
	assert.Equal(t, "toolz", name)
}

func TestRun_Metrics(t *testing.T) {
	srv := newAPIServer(t, nil)
	target := filepath.Join(t.TempDir(), "metrics.prom")

	res := runCLI(t, "", "--metrics", target, "get", srv.URL+"/missing")
	assert.Equal(t, 1, res.code)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "toolz_rest_requests_total")
	assert.Contains(t, string(data), `result="unexpected_status"`)
}

func TestCLI_FlagsAreUnique(t *testing.T) {
	var cli CLI
	_, err := kong.New(&cli, kong.Vars{"version": "test"})
	require.NoError(t, err)
}

func TestRun_GetErrors(t *testing.T) {
	srv := newAPIServer(t, nil)

	res := runCLI(t, "", "get", srv.URL+"/missing")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "404")
	assert.Contains(t, res.stderr, "no such item")

	res = runCLI(t, "", "get", "-q", "nope", srv.URL+"/item")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, `path "nope" not found`)
}

func TestRun_Post(t *testing.T) {
	posted := make(chan []byte, 1)
	srv := newAPIServer(t, posted)

	file := filepath.Join(t.TempDir(), "body.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"name": "new", "tags": ["a"]}`), 0o644))

	res := runCLI(t, "", "post", srv.URL+"/item", file)
	require.Equal(t, 0, res.code, res.stderr)

	body := <-posted
	assert.JSONEq(t, `{"name":"new","tags":["a"]}`, string(body))

	res = runCLI(t, "", "post", srv.URL+"/item", filepath.Join(t.TempDir(), "missing.json"))
	assert.NotEqual(t, 0, res.code)
}

func TestRun_FrameUnframe(t *testing.T) {
	input := `{"jsonrpc": "2.0", "id": 1, "method": "initialize", "params": {"rootUri": null}}`

	framed := runCLI(t, input, "frame", "--check")
	require.Equal(t, 0, framed.code, framed.stderr)
	content := `{"id":1,"jsonrpc":"2.0","method":"initialize","params":{"rootUri":null}}`
	assert.Equal(t, fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(content), content), framed.stdout)

	stream := framed.stdout + string(lsp.MakeFrame([]byte(`{"jsonrpc":"2.0","method":"exit"}`)))
	res := runCLI(t, stream, "--output", "compact", "unframe")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "request 1 initialize\n"+content+"\n"+
		"notification exit\n"+`{"jsonrpc":"2.0","method":"exit"}`+"\n", res.stdout)
}

func TestRun_FrameCheckRejects(t *testing.T) {
	res := runCLI(t, `{"id":null}`, "frame", "--check")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "invalid JSON-RPC message")

	res = runCLI(t, `{"id":null}`, "frame")
	assert.Equal(t, 0, res.code)
}

func TestRun_Config(t *testing.T) {
	res := runCLI(t, "", "config", "--format", "yaml")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "userAgent: toolz")
	assert.Contains(t, res.stdout, "command: gopls")

	dir := t.TempDir()
	path := filepath.Join(dir, "toolz.toml")
	require.NoError(t, os.WriteFile(path, []byte("[http]\ntimeout = '3s'\n"), 0o644))

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"--config", path, "config"}, stdio{in: strings.NewReader(""), out: &stdout, err: &stderr})
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "timeout = '3s'")
}

func TestRun_WS(t *testing.T) {
	r := chi.NewRouter()
	r.Handle("/echo", xws.Handler(func(conn *xws.Conn) {
		for {
			var msg string
			if err := xws.Message.Receive(conn, &msg); err != nil {
				return
			}
			if err := xws.Message.Send(conn, "echo: "+msg); err != nil {
				return
			}
		}
	}))
	srv := httptest.NewServer(r)
	defer srv.Close()

	res := runCLI(t, "", "ws", "-s", "one", "-s", "two", "-n", "2", srv.URL+"/echo")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "echo: one\necho: two\n", res.stdout)

	res = runCLI(t, "", "ws", "ftp://example.com/x")
	assert.Equal(t, 1, res.code)
}

func TestRun_Symbols(t *testing.T) {
	exe, err := os.Executable()
	require.NoError(t, err)

	t.Setenv(fakeServerEnv, "1")
	t.Setenv("TOOLZ_LSP_COMMAND", exe)
	t.Setenv("TOOLZ_LSP_ARGS", "-test.run=^$")

	root := t.TempDir()
	res := runCLI(t, "", "symbols", "--root", root, "-q", "Handler",
		"--capability", "workspace.symbol.dynamicRegistration=false")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "interface\tHandler\t"+filepath.FromSlash("/src/api.go")+":10:6\n", res.stdout)

	file := filepath.Join(root, "server.go")
	res = runCLI(t, "", "symbols", "--root", root, file)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "struct\tServer\t"+file+":1:6\n  method\tStart\t"+file+":3:18\n", res.stdout)
}

func TestApplyCapabilities(t *testing.T) {
	caps, err := applyCapabilities(lsp.DefaultClientCapabilities(), []string{
		"workspace.applyEdit=true",
		"general.positionEncodings=[\"utf-16\"]",
		"window.name=toolz",
	})
	require.NoError(t, err)

	edit, ok := caps.Query("workspace.applyEdit")
	require.True(t, ok)
	assert.True(t, edit.Equal(jsonv.Bool(true)))

	encodings, ok := caps.Query("general.positionEncodings")
	require.True(t, ok)
	assert.Equal(t, 1, encodings.Len())

	name, ok := caps.Query("window.name")
	require.True(t, ok)
	assert.True(t, name.Equal(jsonv.String("toolz")))

	hierarchical, ok := caps.Query("textDocument.documentSymbol.hierarchicalDocumentSymbolSupport")
	require.True(t, ok)
	assert.True(t, hierarchical.Equal(jsonv.Bool(true)))

	_, err = applyCapabilities(caps, []string{"missing-equals"})
	assert.Error(t, err)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "response <null> error -32700", describe(lsp.Failure(lsp.NullID(), &lsp.ResponseError{Code: lsp.CodeParseError})))
	assert.Equal(t, "response x", describe(lsp.Success(lsp.SomeID(lsp.StringID("x")), jsonv.Null())))
}

func TestWantPretty(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, wantPretty("pretty", &buf))
	assert.False(t, wantPretty("compact", &buf))
	assert.False(t, wantPretty("auto", &buf))
}

