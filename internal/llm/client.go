package llm

import (
	"context"
	"errors"

	genai "google.golang.org/genai"
)

var ErrEmptyResponse = errors.New("llm: empty response from model")

// Completer is the outbound contract to the generative-model service:
// opaque text in, opaque text out. Prompt construction and response
// parsing belong to the callers.
type Completer interface {
	Complete(ctx context.Context, prompt string, temperature float32) (string, error)
}

// Client is a thin wrapper around the official genai client.
type Client struct {
	cli   *genai.Client
	model string
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &Client{cli: cli, model: model}, nil
}

func (c *Client) Model() string { return c.model }

// Complete sends one prompt and returns the model's raw text. No retries
// here: retry policy belongs to callers, not this layer.
func (c *Client) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	resp, err := c.cli.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		&genai.GenerateContentConfig{Temperature: &temperature},
	)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
