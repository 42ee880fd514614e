package app

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greeting/internal/config"
	"greeting/internal/imagegen"
	mcp "greeting/internal/mcp"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

type fakeImages struct{ calls int }

func (f *fakeImages) Generate(context.Context, string) (*imagegen.Image, error) {
	f.calls++
	return &imagegen.Image{Data: pngBytes, MimeType: "image/png"}, nil
}

func newTestApp(t *testing.T, vars map[string]string, out *bytes.Buffer) (*App, *fakeImages) {
	t.Helper()
	cfg, err := config.FromMap(vars)
	require.NoError(t, err)
	images := &fakeImages{}
	a, err := New(cfg,
		WithImageGenerator(images),
		WithClock(func() time.Time { return time.Date(2024, 3, 15, 5, 3, 40, 0, time.UTC) }),
		WithOutput(out),
	)
	require.NoError(t, err)
	return a, images
}

func TestNew_UnknownProvider(t *testing.T) {
	cfg, err := config.FromMap(map[string]string{"MCP_PROVIDERS": "greeting,nope"})
	require.NoError(t, err)
	_, err = New(cfg, WithImageGenerator(&fakeImages{}))
	assert.ErrorContains(t, err, "unknown provider: nope")
}

func TestCall(t *testing.T) {
	a, _ := newTestApp(t, nil, &bytes.Buffer{})

	env := a.Call(context.Background(), mcp.KindTool, "greeting", map[string]any{"name": "Ada", "language": "english"})
	require.False(t, env.IsError)
	assert.Equal(t, "Hello, Ada! Nice to meet you!", env.Text())

	env = a.Call(context.Background(), mcp.KindTool, "korea-time", map[string]any{"format": "time-only"})
	assert.Equal(t, "오후 2:03:40", env.Text())

	env = a.Call(context.Background(), mcp.KindResource, "server-spec://info", nil)
	require.False(t, env.IsError)
	assert.Equal(t, "text/markdown", env.Content[0].MimeType)
}

func TestCall_ImageRequiresCredential(t *testing.T) {
	a, images := newTestApp(t, nil, &bytes.Buffer{})
	env := a.Call(context.Background(), mcp.KindTool, "generate-image", map[string]any{"prompt": "x"})
	assert.False(t, env.IsError)
	assert.Contains(t, env.Text(), "HF_TOKEN")
	assert.Zero(t, images.calls)
	assert.Error(t, SaveImage(env, filepath.Join(t.TempDir(), "none.png")))
}

func TestCall_SaveImage(t *testing.T) {
	a, images := newTestApp(t, map[string]string{"HF_TOKEN": "hf_test"}, &bytes.Buffer{})
	env := a.Call(context.Background(), mcp.KindTool, "generate-image", map[string]any{"prompt": "x"})
	require.False(t, env.IsError, env.Text())
	assert.Equal(t, 1, images.calls)
	assert.Contains(t, a.Render(env), "[image image/png")

	path := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, SaveImage(env, path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, b)
}

func TestParseArgs(t *testing.T) {
	args, err := ParseArgs("")
	require.NoError(t, err)
	assert.Nil(t, args)

	args, err = ParseArgs(`{"operation":"multiply","a":39800,"b":10}`)
	require.NoError(t, err)
	assert.Equal(t, json.Number("39800"), args["a"])

	_, err = ParseArgs(`[1,2]`)
	assert.Error(t, err)
}

func TestCall_JSONNumbersFromParseArgs(t *testing.T) {
	a, _ := newTestApp(t, nil, &bytes.Buffer{})
	args, err := ParseArgs(`{"operation":"multiply","a":39800,"b":10}`)
	require.NoError(t, err)
	env := a.Call(context.Background(), mcp.KindTool, "calculator", args)
	require.False(t, env.IsError, env.Text())
	assert.Contains(t, env.Text(), "398000")
}

func TestServe(t *testing.T) {
	a, _ := newTestApp(t, nil, &bytes.Buffer{})
	in := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-06-18","clientInfo":{"name":"test"}}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"calculator","arguments":{"operation":"divide","a":1,"b":0}}}`,
		`{"jsonrpc":"2.0","id":4,"method":"resources/read","params":{"uri":"server-spec://info"}}`,
	}, "\n") + "\n"

	var out bytes.Buffer
	require.NoError(t, a.Serve(context.Background(), strings.NewReader(in), &out))

	byID := map[string]json.RawMessage{}
	sc := bufio.NewScanner(&out)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		var resp struct {
			ID     json.RawMessage `json:"id"`
			Result json.RawMessage `json:"result"`
		}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &resp))
		byID[string(resp.ID)] = resp.Result
	}
	require.Len(t, byID, 4)

	var initRes struct {
		ServerInfo mcp.Implementation `json:"serverInfo"`
	}
	require.NoError(t, json.Unmarshal(byID["1"], &initRes))
	assert.Equal(t, mcp.Implementation{Name: "Greeting MCP Server", Version: "1.0.0"}, initRes.ServerInfo)

	var tools struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(byID["2"], &tools))
	assert.Len(t, tools.Tools, 4)

	var res mcp.ToolResult
	require.NoError(t, json.Unmarshal(byID["3"], &res))
	assert.False(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, "cannot divide by zero")

	assert.Contains(t, string(byID["4"]), "Greeting MCP Server")
}

func TestConsole(t *testing.T) {
	var out bytes.Buffer
	a, _ := newTestApp(t, nil, &out)

	in := strings.Join([]string{
		":help",
		":tools",
		`:call greeting {"name":"Ada","language":"english"}`,
		`:call greeting {"language":"english"}`,
		":call",
		`:prompt code-review {"code":"package main"}`,
		":resources",
		":providers",
		":bogus",
		"hello",
		":quit",
		":tools",
	}, "\n")
	require.NoError(t, a.Console(context.Background(), strings.NewReader(in)))

	got := out.String()
	assert.Contains(t, got, ":call <tool> [json args]")
	assert.Contains(t, got, "korea-time")
	assert.Contains(t, got, "Hello, Ada!")
	assert.Contains(t, got, "❌ invalid_arguments")
	assert.Contains(t, got, "Usage: :call <name> [json args]")
	assert.Contains(t, got, "[user]")
	assert.Contains(t, got, "server-spec://info")
	assert.Contains(t, got, "  greeting\n")
	assert.Contains(t, got, "unknown command :bogus")
	assert.Contains(t, got, "Commands start with ':'")
	// :quit stops the loop; the trailing :tools is never printed twice.
	assert.Equal(t, 1, strings.Count(got, "generate-image"))
}

func TestServe_InitializeAdvertisesServerInfo(t *testing.T) {
	a, _ := newTestApp(t, nil, &bytes.Buffer{})
	in := `{"jsonrpc":"2.0","id":"init","method":"initialize","params":{"protocolVersion":"2025-06-18","clientInfo":{"name":"test"}}}` + "\n"

	var out bytes.Buffer
	require.NoError(t, a.Serve(context.Background(), strings.NewReader(in), &out))

	var resp struct {
		ID     string `json:"id"`
		Result struct {
			ProtocolVersion string             `json:"protocolVersion"`
			ServerInfo      mcp.Implementation `json:"serverInfo"`
			Instructions    string             `json:"instructions"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "init", resp.ID)
	assert.Equal(t, "2025-06-18", resp.Result.ProtocolVersion)
	assert.Equal(t, "Greeting MCP Server", resp.Result.ServerInfo.Name)
	assert.Equal(t, "1.0.0", resp.Result.ServerInfo.Version)
	assert.NotEmpty(t, resp.Result.Instructions)
}
