// Package greeting provides the greeting server's tools, prompts and
// resources.
package greeting

import (
	"context"
	"time"

	"greeting/internal/imagegen"
	mcp "greeting/internal/mcp"
)

// Option keys understood by the provider factory.
const (
	OptCredential     = "credential"
	OptImageGenerator = "imageGenerator"
	OptClock          = "clock"
)

// ImageGenerator is the external call adapter used by generate-image.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (*imagegen.Image, error)
}

type provider struct {
	credential string
	images     ImageGenerator
	now        func() time.Time
}

func (p *provider) Name() string { return "greeting" }

// Registration
func init() {
	mcp.RegisterProvider("greeting", func(opts mcp.Options) (mcp.Provider, error) {
		return New(
			mcp.Get[string](opts, OptCredential, ""),
			mcp.Get[ImageGenerator](opts, OptImageGenerator, nil),
			mcp.Get[func() time.Time](opts, OptClock, time.Now),
		), nil
	})
}

// New returns the provider. images may be nil when no credential is set.
func New(credential string, images ImageGenerator, now func() time.Time) mcp.Provider {
	if now == nil {
		now = time.Now
	}
	return &provider{credential: credential, images: images, now: now}
}

func (p *provider) Register(reg *mcp.Registry) error {
	for _, d := range []mcp.Descriptor{
		greetingTool(),
		calculatorTool(),
		koreaTimeTool(p.now),
		generateImageTool(p.credential, p.images),
		codeReviewPrompt(),
		serverSpecResource(),
	} {
		if err := reg.Register(d); err != nil {
			return err
		}
	}
	return nil
}
