package greeting

import (
	"context"
	_ "embed"

	mcp "greeting/internal/mcp"
)

// ServerSpecURI addresses the server description document.
const ServerSpecURI = "server-spec://info"

//go:embed serverspec.md
var serverSpec string

func serverSpecResource() mcp.Descriptor {
	return mcp.Descriptor{
		Kind:        mcp.KindResource,
		Name:        "server-spec",
		Description: "Markdown document describing the server and its capabilities.",
		URI:         ServerSpecURI,
		MimeType:    "text/markdown",
		Handler: func(context.Context, mcp.Args) (mcp.Result, error) {
			return mcp.Document{URI: ServerSpecURI, MimeType: "text/markdown", Text: serverSpec}, nil
		},
	}
}
