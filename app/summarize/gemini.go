package summarize

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Client is the generative-text backend seam used by the Gateway.
type Client interface {
	Generate(ctx context.Context, content, instructions string) (string, error)
}

// GeminiClient wraps a single generateContent call against the Gemini API.
// The search-augmented variant attaches the GoogleSearch tool and is used by
// the chat enrichment path.
type GeminiClient struct {
	client *genai.Client
	model  string
	search bool
}

func NewGeminiClient(ctx context.Context, apiKey, model string, withSearch bool) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  model,
		search: withSearch,
	}, nil
}

func (c *GeminiClient) Generate(ctx context.Context, content, instructions string) (string, error) {
	config := &genai.GenerateContentConfig{}
	if instructions != "" {
		config.SystemInstruction = genai.NewContentFromText(instructions, genai.RoleUser)
	}
	if c.search {
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(content), config)
	if err != nil {
		return "", fmt.Errorf("generate content failed: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model %s", c.model)
	}

	return text, nil
}
