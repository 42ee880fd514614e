package mcp

import (
	"encoding/base64"
	"errors"
	"fmt"
)

// Role tags a prompt message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// BlockType identifies a ContentBlock variant.
type BlockType string

const (
	BlockText    BlockType = "text"
	BlockImage   BlockType = "image"
	BlockMessage BlockType = "message"
)

// ContentBlock is one unit of response payload. Text blocks use Text (and URI
// and MimeType when they carry a resource document), Image blocks use Data and
// MimeType, Message blocks use Role and Text.
type ContentBlock struct {
	Type     BlockType `json:"type"`
	Text     string    `json:"text,omitempty"`
	Data     string    `json:"data,omitempty"`
	MimeType string    `json:"mimeType,omitempty"`
	URI      string    `json:"uri,omitempty"`
	Role     Role      `json:"role,omitempty"`
}

// TextBlock returns a Text block.
func TextBlock(s string) ContentBlock {
	return ContentBlock{Type: BlockText, Text: s}
}

// Annotations are optional hints attached to an envelope.
type Annotations struct {
	Audience []Role  `json:"audience,omitempty"`
	Priority float64 `json:"priority,omitempty"`
}

// Result is a handler's domain-level output.
type Result interface {
	result()
}

// Text is a plain textual result.
type Text string

// Artifact is a binary result fully materialized in memory.
type Artifact struct {
	Data     []byte
	MimeType string
}

// PromptMessage is one message of a prompt template result.
type PromptMessage struct {
	Role Role
	Text string
}

// Messages is a prompt template result.
type Messages []PromptMessage

// Document is a resource body.
type Document struct {
	URI      string
	MimeType string
	Text     string
}

// Annotated attaches annotations to another result.
type Annotated struct {
	Result      Result
	Annotations Annotations
}

func (Text) result()      {}
func (Artifact) result()  {}
func (Messages) result()  {}
func (Document) result()  {}
func (Annotated) result() {}

var errEmptyResult = errors.New("handler returned no content")

// Encode converts r into content blocks. It never returns an empty slice
// without an error.
func Encode(r Result) ([]ContentBlock, *Annotations, error) {
	switch v := r.(type) {
	case Text:
		return []ContentBlock{TextBlock(string(v))}, nil, nil
	case Artifact:
		if len(v.Data) == 0 {
			return nil, nil, errEmptyResult
		}
		if v.MimeType == "" {
			return nil, nil, fmt.Errorf("artifact has no media type")
		}
		return []ContentBlock{{
			Type:     BlockImage,
			Data:     base64.StdEncoding.EncodeToString(v.Data),
			MimeType: v.MimeType,
		}}, nil, nil
	case Messages:
		if len(v) == 0 {
			return nil, nil, errEmptyResult
		}
		blocks := make([]ContentBlock, 0, len(v))
		for _, m := range v {
			role := m.Role
			if role == "" {
				role = RoleUser
			}
			blocks = append(blocks, ContentBlock{Type: BlockMessage, Role: role, Text: m.Text})
		}
		return blocks, nil, nil
	case Document:
		return []ContentBlock{{Type: BlockText, Text: v.Text, URI: v.URI, MimeType: v.MimeType}}, nil, nil
	case Annotated:
		if _, nested := v.Result.(Annotated); nested {
			return nil, nil, fmt.Errorf("nested annotations")
		}
		blocks, _, err := Encode(v.Result)
		if err != nil {
			return nil, nil, err
		}
		ann := v.Annotations
		return blocks, &ann, nil
	case nil:
		return nil, nil, errEmptyResult
	default:
		return nil, nil, fmt.Errorf("unsupported result type %T", r)
	}
}
