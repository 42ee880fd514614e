package greeting

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcp "greeting/internal/mcp"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"interface User { name: string }\nconst u: User = { name: 'a' }", "TypeScript"},
		{"const add = (a, b) => a + b;", "JavaScript"},
		{"function add(a, b) { return a + b; }", "JavaScript"},
		{"def add(a, b):\n    return a + b", "Python"},
		{"<?php echo 'hi';", "PHP"},
		{"public class Main {}", "Java"},
		{"#include <iostream>\nint main() { return 0; }", "C++"},
		{"fn main() { println!(\"hi\"); }", "Rust"},
		{"package main\n\nfunc main() {}", "Go"},
		{"hello world", UnknownLanguage},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, DetectLanguage(tc.code), tc.code)
	}
}

func TestCodeReviewPrompt(t *testing.T) {
	d := newDispatcher(t, "", nil, nil)

	env := d.Dispatch(context.Background(), mcp.InvocationRequest{
		Kind: mcp.KindPrompt,
		Name: "code-review",
		Args: map[string]any{"code": "package main\n\nfunc main() {}"},
	})
	require.False(t, env.IsError, env.Text())
	require.Len(t, env.Content, 1)
	msg := env.Content[0]
	assert.Equal(t, mcp.BlockMessage, msg.Type)
	assert.Equal(t, mcp.RoleUser, msg.Role)
	assert.Contains(t, msg.Text, "Language: Go")
	assert.Contains(t, msg.Text, "```go\npackage main\n\nfunc main() {}\n```")
	assert.Contains(t, msg.Text, "### 📊 Overall Assessment")

	env = d.Dispatch(context.Background(), mcp.InvocationRequest{Kind: mcp.KindPrompt, Name: "code-review"})
	assert.Equal(t, mcp.CauseInvalidArguments, env.Cause)
}

func TestServerSpecResource(t *testing.T) {
	d := newDispatcher(t, "", nil, nil)
	for _, name := range []string{"server-spec", ServerSpecURI} {
		env := d.Dispatch(context.Background(), mcp.InvocationRequest{Kind: mcp.KindResource, Name: name})
		require.False(t, env.IsError, env.Text())
		require.Len(t, env.Content, 1)
		assert.Equal(t, ServerSpecURI, env.Content[0].URI)
		assert.Equal(t, "text/markdown", env.Content[0].MimeType)
		assert.Contains(t, env.Content[0].Text, "# 🚀 Greeting MCP Server")
		assert.Contains(t, env.Content[0].Text, "HF_TOKEN")
	}
}
