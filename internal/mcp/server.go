package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"
)

// Server speaks MCP over newline-delimited JSON-RPC and hands invocations to
// a Dispatcher. Invocations run on their own goroutines, so responses may be
// written in a different order than requests arrived; each carries its
// request id.
type Server struct {
	info         Implementation
	instructions string
	dispatch     *Dispatcher
	log          logrus.FieldLogger

	mu       sync.Mutex // serializes writes
	inflight sync.WaitGroup
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithInstructions sets the instructions returned from initialize.
func WithInstructions(s string) ServerOption {
	return func(srv *Server) { srv.instructions = s }
}

// WithServerLogger sets the server logger.
func WithServerLogger(l logrus.FieldLogger) ServerOption {
	return func(srv *Server) { srv.log = l }
}

// NewServer returns a server that answers as info and dispatches through d.
func NewServer(info Implementation, d *Dispatcher, opts ...ServerOption) *Server {
	s := &Server{info: info, dispatch: d, log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serve processes JSON-RPC (NDJSON) from r and writes responses to w until r
// reaches EOF or ctx is done. It waits for in-flight invocations before
// returning.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	defer s.inflight.Wait()

	frames := make(chan frame)
	done := make(chan struct{})
	defer close(done)
	go readFrames(bufio.NewReader(r), frames, done)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f := <-frames:
			if f.err != nil {
				var fe *frameError
				if errors.As(f.err, &fe) {
					s.log.WithError(f.err).Warn("dropping malformed frame")
					s.write(w, &Response{Error: &Error{Code: CodeParseError, Message: fe.Error()}})
					continue
				}
				if errors.Is(f.err, io.EOF) {
					return nil
				}
				return f.err
			}
			s.handle(ctx, w, f.req)
		}
	}
}

type frame struct {
	req *Request
	err error
}

// readFrames feeds frames until a read fails or done is closed. A read
// blocked on an idle reader outlives Serve; it ends with the process or when
// the reader is closed.
func readFrames(br *bufio.Reader, out chan<- frame, done <-chan struct{}) {
	for {
		req, err := readNDJSON(br)
		select {
		case out <- frame{req, err}:
		case <-done:
			return
		}
		var fe *frameError
		if err != nil && !errors.As(err, &fe) {
			return
		}
	}
}

func (s *Server) handle(ctx context.Context, w io.Writer, req *Request) {
	if req.JSONRPC != "2.0" {
		if !req.IsNotification() {
			s.write(w, &Response{ID: req.ID, Error: &Error{Code: CodeInvalidRequest, Message: "invalid JSON-RPC version"}})
		}
		return
	}

	switch req.Method {
	case "initialize":
		var in initializeParams
		if perr := decodeParams(req.Params, &in); perr != nil {
			s.write(w, &Response{ID: req.ID, Error: perr})
			return
		}
		s.log.WithField("client", in.ClientInfo.Name).Info("client connected")
		s.write(w, &Response{ID: req.ID, Result: s.initialize(in)})

	case "notifications/initialized":
	case "notifications/cancelled":
		// In-flight calls run to completion.
		s.log.WithField("params", string(req.Params)).Debug("cancellation ignored")

	case "ping":
		s.write(w, &Response{ID: req.ID, Result: map[string]any{}})

	case "shutdown":
		s.write(w, &Response{ID: req.ID, Result: map[string]string{"status": "bye"}})

	case "tools/list":
		s.write(w, &Response{ID: req.ID, Result: s.listTools()})

	case "prompts/list":
		s.write(w, &Response{ID: req.ID, Result: s.listPrompts()})

	case "resources/list":
		s.write(w, &Response{ID: req.ID, Result: s.listResources()})

	case "tools/call", "prompts/get", "resources/read":
		s.inflight.Add(1)
		go func() {
			defer s.inflight.Done()
			resp := s.invoke(context.WithoutCancel(ctx), req)
			if req.IsNotification() {
				s.log.WithField("method", req.Method).Debug("notification invoked; response dropped")
				return
			}
			s.write(w, resp)
		}()

	default:
		if !req.IsNotification() {
			s.write(w, &Response{ID: req.ID, Error: &Error{Code: CodeMethodNotFound, Message: "method not found: " + req.Method}})
		}
	}
}

func (s *Server) initialize(in initializeParams) *initializeResult {
	version := SupportedProtocolVersions[0]
	if slices.Contains(SupportedProtocolVersions, in.ProtocolVersion) {
		version = in.ProtocolVersion
	}
	return &initializeResult{
		ProtocolVersion: version,
		Capabilities:    Capabilities{Tools: &struct{}{}, Resources: &struct{}{}, Prompts: &struct{}{}},
		ServerInfo:      s.info,
		Instructions:    s.instructions,
	}
}

// invoke decodes an invocation method, dispatches it and builds the response.
func (s *Server) invoke(ctx context.Context, req *Request) *Response {
	reg := s.dispatch.Registry()
	switch req.Method {
	case "tools/call":
		var in toolCallParams
		if perr := decodeParams(req.Params, &in); perr != nil {
			return &Response{ID: req.ID, Error: perr}
		}
		env := s.dispatch.Dispatch(ctx, InvocationRequest{ID: req.ID, Kind: KindTool, Name: in.Name, Args: in.Args})
		return &Response{ID: req.ID, Result: ToToolResult(env)}

	case "prompts/get":
		var in promptGetParams
		if perr := decodeParams(req.Params, &in); perr != nil {
			return &Response{ID: req.ID, Error: perr}
		}
		env := s.dispatch.Dispatch(ctx, InvocationRequest{ID: req.ID, Kind: KindPrompt, Name: in.Name, Args: in.Args})
		if env.IsError {
			return &Response{ID: req.ID, Error: envelopeError(env)}
		}
		d, _ := reg.Resolve(KindPrompt, in.Name)
		return &Response{ID: req.ID, Result: toPromptResult(d.Description, env)}

	default: // resources/read
		var in resourceReadParams
		if perr := decodeParams(req.Params, &in); perr != nil {
			return &Response{ID: req.ID, Error: perr}
		}
		env := s.dispatch.Dispatch(ctx, InvocationRequest{ID: req.ID, Kind: KindResource, Name: in.URI})
		if env.IsError {
			return &Response{ID: req.ID, Error: envelopeError(env)}
		}
		d, _ := reg.Resolve(KindResource, in.URI)
		return &Response{ID: req.ID, Result: toResourceResult(d, env)}
	}
}

func (s *Server) listTools() *toolsListResult {
	out := &toolsListResult{Tools: []toolDesc{}}
	for _, d := range s.dispatch.Registry().List(KindTool) {
		out.Tools = append(out.Tools, toolDesc{Name: d.Name, Description: d.Description, InputSchema: d.Schema.JSONSchema()})
	}
	return out
}

func (s *Server) listPrompts() *promptsListResult {
	out := &promptsListResult{Prompts: []promptDesc{}}
	for _, d := range s.dispatch.Registry().List(KindPrompt) {
		out.Prompts = append(out.Prompts, promptDesc{Name: d.Name, Description: d.Description, Arguments: d.Schema.PromptArguments()})
	}
	return out
}

func (s *Server) listResources() *resourcesListResult {
	out := &resourcesListResult{Resources: []resourceDesc{}}
	for _, d := range s.dispatch.Registry().List(KindResource) {
		out.Resources = append(out.Resources, resourceDesc{URI: d.URI, Name: d.Name, Description: d.Description, MimeType: d.MimeType})
	}
	return out
}

func (s *Server) write(w io.Writer, resp *Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeNDJSON(w, resp); err != nil {
		s.log.WithError(err).Error("failed to write response")
	}
}

// MarshalEnvelope renders env the way tools/call would, for callers outside
// the channel.
func MarshalEnvelope(env *Envelope) ([]byte, error) {
	return json.Marshal(ToToolResult(env))
}
