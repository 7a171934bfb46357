// Package groq is an OpenAI-compatible chat-completions client for the Groq
// API. It is the transport behind narrative generation: one request per
// call, no retries, no client-side timeout. Cancellation comes from the
// caller's context.
package groq

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

var (
	// ErrMissingCredential means no API key was configured. Detected at
	// construction time, before any request is attempted.
	ErrMissingCredential = errors.New("missing API credential")

	// ErrNarrativeGenerationFailed wraps any provider-side failure: network
	// error, auth failure, malformed response, empty completion.
	ErrNarrativeGenerationFailed = errors.New("narrative generation failed")
)

const DefaultBaseURL = "https://api.groq.com/openai/v1"

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
}

// Client is safe for concurrent use: the underlying resty client is
// immutable after construction and every call builds its own request.
type Client struct {
	httpClient  *resty.Client
	model       string
	temperature float64
	logger      zerolog.Logger
}

// New builds the client once per process. Fails fast with
// ErrMissingCredential when the key is absent.
func New(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingCredential
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient:  httpClient,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      logger,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends the prompt as a single user message and returns the first
// choice's content. Blocks until the provider responds or ctx is cancelled.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	body := chatRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
	}

	var out chatResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		SetError(&out).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("%w: call provider: %v", ErrNarrativeGenerationFailed, err)
	}

	if resp.IsError() {
		msg := resp.Status()
		if out.Error != nil && out.Error.Message != "" {
			msg = fmt.Sprintf("%s: %s", resp.Status(), out.Error.Message)
		}
		c.logger.Error().
			Int("status_code", resp.StatusCode()).
			Str("model", c.model).
			Msg("provider returned error")
		return "", fmt.Errorf("%w: %s", ErrNarrativeGenerationFailed, msg)
	}

	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: response contains no choices", ErrNarrativeGenerationFailed)
	}
	return out.Choices[0].Message.Content, nil
}
