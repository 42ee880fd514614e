// Package imagegen calls the Hugging Face inference router to turn a text
// prompt into a PNG image.
package imagegen

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://router.huggingface.co"

	// Provider and Model are fixed; the router maps the model to the
	// provider's own id.
	Provider       = "fal-ai"
	Model          = "black-forest-labs/FLUX.1-schnell"
	providerModel  = "fal-ai/flux/schnell"
	InferenceSteps = 5

	DefaultMaxBytes = 16 << 20
	defaultMimeType = "image/png"
)

// Image is a generated artifact.
type Image struct {
	Data     []byte
	MimeType string
}

// PreconditionError reports a missing requirement detected before any
// network call.
type PreconditionError struct {
	Requirement string
	Message     string
}

func (e *PreconditionError) Error() string { return e.Message }

// ErrorClass implements the dispatcher's classifier.
func (e *PreconditionError) ErrorClass() string { return "precondition" }

// ExternalError is a network, authentication or provider fault. Message
// carries the provider's own text.
type ExternalError struct {
	Provider string
	Status   int
	Message  string
	Err      error
}

func (e *ExternalError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (HTTP %d): %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ExternalError) Unwrap() error { return e.Err }

// ErrorClass implements the dispatcher's classifier.
func (e *ExternalError) ErrorClass() string { return "external" }

// Client is the external call adapter for text-to-image generation.
type Client struct {
	http     *resty.Client
	token    string
	limiter  *rate.Limiter
	maxBytes int64
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another router, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.http.SetBaseURL(strings.TrimRight(u, "/")) }
}

// WithTimeout bounds a single Generate call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.SetTimeout(d)
		}
	}
}

// WithRateLimit limits outbound calls to rps with the given burst.
// A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithMaxBytes caps the size of a returned artifact.
func WithMaxBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBytes = n
		}
	}
}

// New returns a client that authenticates with token.
func New(token string, opts ...Option) *Client {
	c := &Client{
		http:     resty.New().SetBaseURL(DefaultBaseURL).SetTimeout(2 * time.Minute).SetDisableWarn(true),
		token:    token,
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.SetResponseBodyLimit(int(bodyLimit(c.maxBytes)))
	return c
}

// bodyLimit bounds any response body read from the provider. A data URL
// carries the image base64-encoded inside JSON, so the limit leaves room for
// that expansion; the decoded size is checked against maxBytes afterwards.
func bodyLimit(maxBytes int64) int64 {
	return maxBytes/3*4 + 4 + 64<<10
}

// HasCredential reports whether a token was configured.
func (c *Client) HasCredential() bool { return c.token != "" }

type textToImageRequest struct {
	Prompt            string `json:"prompt"`
	NumInferenceSteps int    `json:"num_inference_steps"`
	SyncMode          bool   `json:"sync_mode"`
}

type textToImageResponse struct {
	Images []struct {
		URL         string `json:"url"`
		ContentType string `json:"content_type"`
	} `json:"images"`
}

type providerError struct {
	Error   any    `json:"error"`
	Detail  any    `json:"detail"`
	Message string `json:"message"`
}

// Generate issues one text-to-image request and returns the image bytes.
func (c *Client) Generate(ctx context.Context, prompt string) (*Image, error) {
	if c.token == "" {
		return nil, &PreconditionError{
			Requirement: "HF_TOKEN",
			Message:     "HF_TOKEN is not set; a Hugging Face API token is required",
		}
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &ExternalError{Provider: Provider, Message: err.Error(), Err: err}
		}
	}

	start := time.Now()
	var out textToImageResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		SetHeader("Accept", "application/json").
		SetBody(textToImageRequest{Prompt: prompt, NumInferenceSteps: InferenceSteps, SyncMode: true}).
		SetResult(&out).
		ForceContentType("application/json").
		Post("/" + Provider + "/" + providerModel)
	if err != nil {
		return nil, &ExternalError{Provider: Provider, Message: err.Error(), Err: err}
	}
	if resp.IsError() {
		return nil, &ExternalError{Provider: Provider, Status: resp.StatusCode(), Message: providerMessage(resp.Body(), resp.Status())}
	}
	if len(out.Images) == 0 || out.Images[0].URL == "" {
		return nil, &ExternalError{Provider: Provider, Status: resp.StatusCode(), Message: "response contained no image"}
	}

	img := out.Images[0]
	data, mimeType, err := c.fetch(ctx, img.URL)
	if err != nil {
		return nil, err
	}
	if img.ContentType != "" {
		mimeType = img.ContentType
	}
	if int64(len(data)) > c.maxBytes {
		return nil, &ExternalError{Provider: Provider, Message: fmt.Sprintf("image of %d bytes exceeds limit of %d", len(data), c.maxBytes)}
	}

	logrus.WithFields(logrus.Fields{
		"provider": Provider,
		"model":    Model,
		"bytes":    len(data),
		"elapsed":  time.Since(start),
	}).Debug("image generated")
	return &Image{Data: data, MimeType: mimeType}, nil
}

// fetch materializes the image behind u, which is either a data URL or a
// plain HTTP(S) URL.
func (c *Client) fetch(ctx context.Context, u string) ([]byte, string, error) {
	if strings.HasPrefix(u, "data:") {
		return decodeDataURL(u)
	}
	resp, err := c.http.R().SetContext(ctx).Get(u)
	if err != nil {
		return nil, "", &ExternalError{Provider: Provider, Message: err.Error(), Err: err}
	}
	if resp.IsError() {
		return nil, "", &ExternalError{Provider: Provider, Status: resp.StatusCode(), Message: providerMessage(resp.Body(), resp.Status())}
	}
	mt := resp.Header().Get("Content-Type")
	if mt == "" || !strings.HasPrefix(mt, "image/") {
		mt = defaultMimeType
	}
	return resp.Body(), mt, nil
}

func decodeDataURL(u string) ([]byte, string, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(u, "data:"), ",")
	if !ok {
		return nil, "", &ExternalError{Provider: Provider, Message: "malformed data URL"}
	}
	mt, isBase64 := strings.CutSuffix(meta, ";base64")
	if mt == "" {
		mt = defaultMimeType
	}
	if !isBase64 {
		return []byte(payload), mt, nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", &ExternalError{Provider: Provider, Message: "malformed data URL: " + err.Error(), Err: err}
	}
	return data, mt, nil
}

// providerMessage extracts the provider's error text from body, falling back
// to the raw body and then the HTTP status line.
func providerMessage(body []byte, status string) string {
	var pe providerError
	if err := json.Unmarshal(body, &pe); err == nil {
		for _, v := range []any{pe.Error, pe.Detail} {
			if s := stringify(v); s != "" {
				return s
			}
		}
		if pe.Message != "" {
			return pe.Message
		}
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return s
	}
	return status
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case map[string]any:
		if m, ok := t["message"].(string); ok {
			return m
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// IsPrecondition reports whether err is a PreconditionError.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}
