// Package llm wraps the Gemini SDK behind a small collaborator interface. All
// transport-level concerns live here: retries, usage accounting, and mapping
// upstream failures to error kinds the HTTP layer can act on.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"gemgate/internal/logger"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

const maxAttempts = 3

// Options control a single generation call.
type Options struct {
	Temperature float32 // 0 means model default
	MaxTokens   int32   // 0 means model default
}

// Result is a completed generation with its token usage.
type Result struct {
	Text       string
	TokensUsed int
}

// Chunk is one increment of a streamed generation. Err is non-nil only on the
// terminal chunk of a failed stream; the channel closing signals a clean end.
type Chunk struct {
	Text string
	Err  error
}

// Client talks to the Gemini API.
type Client struct {
	modelName string
	gClient   *genai.Client
}

// NewClient creates a Gemini client for the given API key and model.
func NewClient(ctx context.Context, apiKey, modelName string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required. Set GEMINI_API_KEY or gemini.api_key in config.\nGet your API key from: https://makersuite.google.com/app/apikey")
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{modelName: modelName, gClient: gClient}, nil
}

// Model returns the configured model name, reported in response metadata.
func (c *Client) Model() string {
	return c.modelName
}

func buildContents(prompt string) []*genai.Content {
	return []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}
}

func buildConfig(opts Options) *genai.GenerateContentConfig {
	if opts.Temperature == 0 && opts.MaxTokens == 0 {
		return nil
	}
	config := &genai.GenerateContentConfig{}
	if opts.Temperature > 0 {
		config.Temperature = genai.Ptr(opts.Temperature)
	}
	if opts.MaxTokens > 0 {
		config.MaxOutputTokens = opts.MaxTokens
	}
	return config
}

// GenerateText runs a single generation, retrying transient upstream failures
// with exponential backoff. Region restrictions are not retried; a VPN does
// not appear between attempts.
func (c *Client) GenerateText(ctx context.Context, prompt string, opts Options) (Result, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := c.gClient.Models.GenerateContent(ctx, c.modelName, buildContents(prompt), buildConfig(opts))
		if err == nil {
			text := resp.Text()
			if text == "" {
				return Result{}, fmt.Errorf("empty response from model")
			}
			return Result{Text: text, TokensUsed: tokensUsed(resp)}, nil
		}

		lastErr = err
		kind := Classify(err)
		if kind == KindRegionRestricted || attempt == maxAttempts {
			break
		}

		wait := time.Duration(1<<(attempt-1)) * time.Second
		logger.Warn("Gemini call failed, retrying",
			"attempt", attempt, "kind", kind.String(), "wait", wait, "error", err)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}

	return Result{}, fmt.Errorf("gemini generation failed: %w", lastErr)
}

// StreamText starts a streamed generation and returns a channel of chunks.
// The channel is closed when the stream ends; a producer failure is delivered
// as a final chunk with Err set before the close. Streams are not retried —
// partial output may already have been consumed.
func (c *Client) StreamText(ctx context.Context, prompt string, opts Options) <-chan Chunk {
	out := make(chan Chunk)

	go func() {
		defer close(out)

		for resp, err := range c.gClient.Models.GenerateContentStream(ctx, c.modelName, buildContents(prompt), buildConfig(opts)) {
			if err != nil {
				select {
				case out <- Chunk{Err: fmt.Errorf("gemini stream failed: %w", err)}:
				case <-ctx.Done():
				}
				return
			}
			text := resp.Text()
			if text == "" {
				continue
			}
			select {
			case out <- Chunk{Text: text}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

func tokensUsed(resp *genai.GenerateContentResponse) int {
	if resp.UsageMetadata != nil {
		return int(resp.UsageMetadata.TotalTokenCount)
	}
	return 0
}

// ApproximateTokens estimates token usage for streamed output, where the
// upstream usage metadata is not aggregated: one token per whitespace-separated
// word.
func ApproximateTokens(text string) int {
	return len(strings.Fields(text))
}
