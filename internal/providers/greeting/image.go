package greeting

import (
	"context"
	"fmt"

	"greeting/internal/imagegen"
	mcp "greeting/internal/mcp"
)

// MissingTokenText is returned instead of calling the provider when no
// credential is configured.
const MissingTokenText = "⚠️ HF_TOKEN is not set. A Hugging Face API token is required to generate images."

func generateImageTool(credential string, gen ImageGenerator) mcp.Descriptor {
	return mcp.Descriptor{
		Kind:        mcp.KindTool,
		Name:        "generate-image",
		Description: fmt.Sprintf("Generates an image from a text prompt (%s via %s).", imagegen.Model, imagegen.Provider),
		Schema: mcp.Schema(
			mcp.StringParam("prompt", "Text prompt describing the image"),
		),
		Handler: func(ctx context.Context, args mcp.Args) (mcp.Result, error) {
			if credential == "" || gen == nil {
				return mcp.Text(MissingTokenText), nil
			}
			img, err := gen.Generate(ctx, args.String("prompt"))
			if err != nil {
				if imagegen.IsPrecondition(err) {
					return mcp.Text(MissingTokenText), nil
				}
				return nil, fmt.Errorf("image generation: %w", err)
			}
			return mcp.Annotated{
				Result: mcp.Artifact{Data: img.Data, MimeType: img.MimeType},
				Annotations: mcp.Annotations{
					Audience: []mcp.Role{mcp.RoleUser},
					Priority: 0.9,
				},
			}, nil
		},
	}
}
