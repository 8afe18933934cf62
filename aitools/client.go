// Package aitools wraps the generative models used by the public marketing
// tools and by the admin content assistant.
package aitools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	DefaultModel      = "gemini-2.5-flash"
	DefaultImageModel = "imagen-4.0-generate-001"
)

var (
	// ErrEmptyPrompt is returned when a required input is blank.
	ErrEmptyPrompt = errors.New("aitools: input is required")
	// ErrNoImage is returned when the image model produced nothing,
	// typically because a safety filter rejected the prompt.
	ErrNoImage = errors.New("aitools: the model did not return an image, try rephrasing your prompt")
	// ErrNotConfigured is returned by a Client built without an API key.
	ErrNotConfigured = errors.New("aitools: no API key configured")
)

// models is the subset of *genai.Models the client calls.
type models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
	GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// Client runs the prompts against a text model and an image model.
type Client struct {
	models     models
	model      string
	imageModel string
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

func WithModel(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.model = name
		}
	}
}

func WithImageModel(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.imageModel = name
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Client for the Gemini API. With an empty apiKey the client
// is returned but every call fails with ErrNotConfigured.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	c := &Client{model: DefaultModel, imageModel: DefaultImageModel, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("aitools")
	if apiKey == "" {
		c.logger.Warn("no API key configured, AI tools are disabled")
		return c, nil
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	c.models = gc.Models
	return c, nil
}

func newWithModels(m models, opts ...Option) *Client {
	c := &Client{models: m, model: DefaultModel, imageModel: DefaultImageModel, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether the client can reach a model.
func (c *Client) Enabled() bool { return c != nil && c.models != nil }

func (c *Client) text(ctx context.Context, op, prompt string) (string, error) {
	if !c.Enabled() {
		return "", ErrNotConfigured
	}
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		c.logger.Error("generate failed", zap.String("op", op), zap.Error(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return strings.TrimSpace(resp.Text()), nil
}

// structured asks for JSON matching schema and decodes it into out.
func (c *Client) structured(ctx context.Context, op, prompt string, schema *genai.Schema, out any) error {
	if !c.Enabled() {
		return ErrNotConfigured
	}
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	})
	if err != nil {
		c.logger.Error("generate failed", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	raw := strings.TrimSpace(resp.Text())
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		c.logger.Warn("undecodable model output", zap.String("op", op), zap.Int("bytes", len(raw)), zap.Error(err))
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func required(fields ...string) error {
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return ErrEmptyPrompt
		}
	}
	return nil
}
