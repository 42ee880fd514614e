package mcp

// Protocol versions this server understands, newest first.
var SupportedProtocolVersions = []string{"2025-06-18", "2025-03-26", "2024-11-05"}

// Implementation identifies a client or server.
type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

type initializeParams struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities,omitempty"`
	ClientInfo      Implementation `json:"clientInfo"`
}

// Capabilities mirrors the high-level MCP capabilities advertised by the server.
type Capabilities struct {
	Tools     *struct{} `json:"tools,omitempty"`
	Resources *struct{} `json:"resources,omitempty"`
	Prompts   *struct{} `json:"prompts,omitempty"`
}

type initializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    Capabilities   `json:"capabilities"`
	ServerInfo      Implementation `json:"serverInfo"`
	Instructions    string         `json:"instructions,omitempty"`
}

type toolDesc struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"inputSchema"`
}

type toolsListResult struct {
	Tools []toolDesc `json:"tools"`
}

type toolCallParams struct {
	Name string         `json:"name"`
	Args map[string]any `json:"arguments,omitempty"`
}

// ToolContent is a tools/call content item on the wire.
type ToolContent struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Data     string `json:"data,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

// ToolResult is the tools/call result.
type ToolResult struct {
	Content     []ToolContent `json:"content"`
	IsError     bool          `json:"isError,omitempty"`
	Annotations *Annotations  `json:"annotations,omitempty"`
}

type promptDesc struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Arguments   []PromptArgument `json:"arguments,omitempty"`
}

type promptsListResult struct {
	Prompts []promptDesc `json:"prompts"`
}

type promptGetParams struct {
	Name string         `json:"name"`
	Args map[string]any `json:"arguments,omitempty"`
}

type promptMessage struct {
	Role    Role        `json:"role"`
	Content ToolContent `json:"content"`
}

type promptGetResult struct {
	Description string          `json:"description,omitempty"`
	Messages    []promptMessage `json:"messages"`
}

type resourceDesc struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

type resourcesListResult struct {
	Resources []resourceDesc `json:"resources"`
}

type resourceReadParams struct {
	URI string `json:"uri"`
}

type resourceContents struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
	Blob     string `json:"blob,omitempty"`
}

type resourceReadResult struct {
	Contents []resourceContents `json:"contents"`
}

// envelopeErrorData travels in Error.Data for prompt and resource failures.
type envelopeErrorData struct {
	Kind    Cause          `json:"kind"`
	Class   string         `json:"class,omitempty"`
	Content []ContentBlock `json:"content"`
}

// ToToolResult renders an envelope as a tools/call result.
func ToToolResult(env *Envelope) *ToolResult {
	out := &ToolResult{IsError: env.IsError, Annotations: env.Annotations}
	for _, b := range env.Content {
		switch b.Type {
		case BlockImage:
			out.Content = append(out.Content, ToolContent{Type: "image", Data: b.Data, MimeType: b.MimeType})
		default:
			out.Content = append(out.Content, ToolContent{Type: "text", Text: b.Text})
		}
	}
	return out
}

func toPromptResult(desc string, env *Envelope) *promptGetResult {
	out := &promptGetResult{Description: desc, Messages: []promptMessage{}}
	for _, b := range env.Content {
		role := b.Role
		if role == "" {
			role = RoleUser
		}
		c := ToolContent{Type: "text", Text: b.Text}
		if b.Type == BlockImage {
			c = ToolContent{Type: "image", Data: b.Data, MimeType: b.MimeType}
		}
		out.Messages = append(out.Messages, promptMessage{Role: role, Content: c})
	}
	return out
}

func toResourceResult(d Descriptor, env *Envelope) *resourceReadResult {
	out := &resourceReadResult{Contents: []resourceContents{}}
	for _, b := range env.Content {
		uri, mt := b.URI, b.MimeType
		if uri == "" {
			uri = d.URI
		}
		if mt == "" {
			mt = d.MimeType
		}
		c := resourceContents{URI: uri, MimeType: mt, Text: b.Text}
		if b.Type == BlockImage {
			c.Text, c.Blob = "", b.Data
		}
		out.Contents = append(out.Contents, c)
	}
	return out
}

func envelopeError(env *Envelope) *Error {
	code := CodeInternalError
	switch env.Cause {
	case CauseInvalidArguments:
		code = CodeInvalidParams
	case CauseUnknownCapability:
		code = CodeUnknownEntity
	}
	return &Error{
		Code:    code,
		Message: env.Text(),
		Data:    envelopeErrorData{Kind: env.Cause, Class: env.Class, Content: env.Content},
	}
}
