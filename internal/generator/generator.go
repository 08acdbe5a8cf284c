// Package generator produces issue descriptions from a prompt using an Ollama
// server through its OpenAI compatible API.
package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "llama3.2"

// ErrEmptyCompletion is returned when the server answers without choices.
var ErrEmptyCompletion = errors.New("generator: completion returned no choices")

// APIError reports an error response from the model server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("status %d", e.StatusCode)
	}
	return e.Message
}

// Option customises a Client.
type Option func(*Client)

// WithModel selects the model used by Generate.
func WithModel(model string) Option {
	return func(c *Client) {
		if strings.TrimSpace(model) != "" {
			c.model = model
		}
	}
}

// WithHTTPClient overrides the HTTP client used for API calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client talks to a single Ollama host.
type Client struct {
	host       string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
	api        openai.Client
}

// New builds a client for host. Hosts without a scheme are treated as http.
func New(host string, opts ...Option) (*Client, error) {
	normalized := NormalizeHost(host)
	if normalized == "" {
		return nil, errors.New("generator: host is required")
	}

	c := &Client{
		host:       normalized,
		model:      DefaultModel,
		httpClient: http.DefaultClient,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.logger = c.logger.Named("generator")

	c.api = openai.NewClient(
		option.WithBaseURL(c.host+"/v1/"),
		option.WithAPIKey("ollama"),
		option.WithHTTPClient(c.httpClient),
		option.WithMaxRetries(0),
	)
	return c, nil
}

// Host returns the normalized host URL.
func (c *Client) Host() string {
	return c.host
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Ping verifies the server is reachable by listing its models.
func (c *Client) Ping(ctx context.Context) error {
	c.logger.Debug("listing models", zap.String("host", c.host))
	if _, err := c.api.Models.List(ctx); err != nil {
		return translateErr(err)
	}
	return nil
}

// Generate runs a completion for prompt and returns the generated text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug("generating description",
		zap.String("host", c.host),
		zap.String("model", c.model),
	)

	completion, err := c.api.Completions.New(ctx, openai.CompletionNewParams{
		Model: openai.CompletionNewParamsModel(c.model),
		Prompt: openai.CompletionNewParamsPromptUnion{
			OfString: openai.String(prompt),
		},
	})
	if err != nil {
		return "", translateErr(err)
	}
	if len(completion.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return completion.Choices[0].Text, nil
}

// NormalizeHost prefixes http:// when host has no scheme and drops trailing
// slashes.
func NormalizeHost(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		return ""
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	return strings.TrimRight(host, "/")
}

func translateErr(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &APIError{StatusCode: apiErr.StatusCode, Message: apiErr.Message}
	}
	return err
}
