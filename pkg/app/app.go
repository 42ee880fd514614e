package app

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	markdown "github.com/MichaelMure/go-term-markdown"
	"github.com/sirupsen/logrus"

	"greeting/internal/config"
	"greeting/internal/imagegen"
	mcp "greeting/internal/mcp"
	"greeting/internal/providers/greeting"
)

// ServerName and Version are reported as serverInfo.
const (
	ServerName = "Greeting MCP Server"
	Version    = "1.0.0"
)

const instructions = "Greeting server: multilingual greetings, arithmetic, Korean time, image generation, a code-review prompt and a server-spec resource."

// App wires configuration, providers and the dispatcher together.
type App struct {
	cfg        *config.Config
	mgr        *mcp.Manager
	dispatcher *mcp.Dispatcher
	images     greeting.ImageGenerator
	now        func() time.Time
	out        io.Writer
	width      int
}

// Option configures an App.
type Option func(*App)

// WithImageGenerator replaces the Hugging Face client.
func WithImageGenerator(g greeting.ImageGenerator) Option {
	return func(a *App) { a.images = g }
}

// WithClock replaces time.Now for korea-time.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// WithOutput sets where console and call output are written.
func WithOutput(w io.Writer) Option {
	return func(a *App) { a.out = w }
}

// New loads the configured providers and seals the registry.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{cfg: cfg, now: time.Now, out: os.Stdout, width: 80}
	for _, opt := range opts {
		opt(a)
	}
	if a.images == nil {
		a.images = imagegen.New(cfg.HFToken,
			imagegen.WithBaseURL(cfg.HFRouterURL),
			imagegen.WithTimeout(cfg.HFTimeout),
			imagegen.WithRateLimit(cfg.HFRateLimit, cfg.HFRateBurst),
			imagegen.WithMaxBytes(cfg.HFMaxBytes),
		)
	}

	a.mgr = mcp.NewManager()
	err := a.mgr.Load(cfg.Providers, mcp.Options{
		greeting.OptCredential:     cfg.HFToken,
		greeting.OptImageGenerator: a.images,
		greeting.OptClock:          a.now,
	})
	if err != nil {
		return nil, err
	}
	a.dispatcher = mcp.NewDispatcher(a.mgr.Registry())

	logrus.WithFields(logrus.Fields{
		"providers":    a.mgr.List(),
		"capabilities": a.mgr.Registry().Len(),
		"credential":   cfg.HFToken != "",
	}).Info("initialized app")
	return a, nil
}

// Registry returns the sealed capability registry.
func (a *App) Registry() *mcp.Registry { return a.dispatcher.Registry() }

// Serve runs the MCP server on r/w until EOF.
func (a *App) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	srv := mcp.NewServer(
		mcp.Implementation{Name: ServerName, Version: Version},
		a.dispatcher,
		mcp.WithInstructions(instructions),
	)
	logrus.WithField("version", Version).Info("starting MCP server on stdio")
	return srv.Serve(ctx, r, w)
}

// Call runs a single invocation outside the protocol channel.
func (a *App) Call(ctx context.Context, kind mcp.Kind, name string, args map[string]any) *mcp.Envelope {
	return a.dispatcher.Dispatch(ctx, mcp.InvocationRequest{
		ID:   json.RawMessage(`"local"`),
		Kind: kind,
		Name: name,
		Args: args,
	})
}

// ParseArgs decodes a JSON object of arguments. Empty input means none.
func ParseArgs(s string) (map[string]any, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var args map[string]any
	if err := dec.Decode(&args); err != nil {
		return nil, fmt.Errorf("arguments must be a JSON object: %w", err)
	}
	return args, nil
}

// Render formats an envelope for the terminal. Text is rendered as markdown,
// images as a one-line summary.
func (a *App) Render(env *mcp.Envelope) string {
	var sb strings.Builder
	for _, b := range env.Content {
		switch b.Type {
		case mcp.BlockImage:
			n := base64.StdEncoding.DecodedLen(len(b.Data))
			fmt.Fprintf(&sb, "[image %s, ~%d bytes]\n", b.MimeType, n)
		default:
			if b.Role != "" {
				fmt.Fprintf(&sb, "[%s]\n", b.Role)
			}
			sb.Write(markdown.Render(b.Text, a.width, 2))
		}
	}
	return sb.String()
}

// SaveImage writes the first image block of env to path.
func SaveImage(env *mcp.Envelope, path string) error {
	for _, b := range env.Content {
		if b.Type != mcp.BlockImage {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(b.Data)
		if err != nil {
			return fmt.Errorf("decode image: %w", err)
		}
		return os.WriteFile(path, data, 0o644)
	}
	return errors.New("result contains no image")
}

// Console reads ":" commands from in until EOF or :quit.
func (a *App) Console(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(a.out, "Type :help for commands.")
	fmt.Fprint(a.out, "> ")
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !a.handleLocalCommand(ctx, line) {
			return nil
		}
		fmt.Fprint(a.out, "> ")
	}
	return scanner.Err()
}

// handleLocalCommand runs one console line. It returns false when the
// console should exit.
func (a *App) handleLocalCommand(ctx context.Context, line string) bool {
	if !strings.HasPrefix(line, ":") {
		fmt.Fprintln(a.out, "Commands start with ':'; try :help")
		return true
	}
	cmd, rest, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	rest = strings.TrimSpace(rest)
	switch strings.ToLower(cmd) {
	case "help":
		fmt.Fprintln(a.out, "Commands:\n  :tools\n  :prompts\n  :resources\n  :call <tool> [json args]\n  :prompt <name> [json args]\n  :read <uri>\n  :providers\n  :quit")
	case "quit", "exit":
		return false
	case "providers":
		for _, name := range a.mgr.List() {
			p, err := a.mgr.Provider(name)
			if err != nil {
				fmt.Fprintf(a.out, "providers error: %v\n", err)
				continue
			}
			fmt.Fprintf(a.out, "  %s\n", p.Name())
		}
	case "tools":
		a.printList(mcp.KindTool)
	case "prompts":
		a.printList(mcp.KindPrompt)
	case "resources":
		for _, d := range a.Registry().List(mcp.KindResource) {
			fmt.Fprintf(a.out, "  %-20s %s (%s)\n", d.URI, d.Description, d.MimeType)
		}
	case "call", "prompt":
		name, raw, _ := strings.Cut(rest, " ")
		if name == "" {
			fmt.Fprintf(a.out, "Usage: :%s <name> [json args]\n", cmd)
			return true
		}
		args, err := ParseArgs(raw)
		if err != nil {
			fmt.Fprintf(a.out, "%s error: %v\n", cmd, err)
			return true
		}
		kind := mcp.KindTool
		if cmd == "prompt" {
			kind = mcp.KindPrompt
		}
		a.printEnvelope(a.Call(ctx, kind, name, args))
		logrus.WithFields(logrus.Fields{"kind": kind, "name": name}).Debug(":" + cmd)
	case "read":
		if rest == "" {
			fmt.Fprintln(a.out, "Usage: :read <uri>")
			return true
		}
		a.printEnvelope(a.Call(ctx, mcp.KindResource, rest, nil))
	default:
		fmt.Fprintf(a.out, "unknown command :%s; try :help\n", cmd)
	}
	return true
}

func (a *App) printList(kind mcp.Kind) {
	for _, d := range a.Registry().List(kind) {
		names := make([]string, 0, len(d.Schema.Params))
		for _, p := range d.Schema.Params {
			n := p.Name
			if !p.Required {
				n += "?"
			}
			names = append(names, n)
		}
		fmt.Fprintf(a.out, "  %-16s (%s) %s\n", d.Name, strings.Join(names, ", "), d.Description)
	}
}

func (a *App) printEnvelope(env *mcp.Envelope) {
	if env.IsError {
		fmt.Fprintln(a.out, env.Text())
		return
	}
	fmt.Fprint(a.out, a.Render(env))
}
