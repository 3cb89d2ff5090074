// Package assistant answers single-shot questions about places through a
// generative-text model. Calls go through a circuit breaker so a failing
// upstream is rejected fast instead of holding requests open.
package assistant

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.0-flash"

// Generator turns a prompt into generated text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenAIGenerator calls the Gemini API.
type GenAIGenerator struct {
	client *genai.Client
	model  string
}

// NewGenAIGenerator creates a Gemini-backed generator.
func NewGenAIGenerator(ctx context.Context, apiKey, model string) (*GenAIGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("assistant.NewGenAIGenerator: API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("assistant.NewGenAIGenerator: %w", err)
	}
	return &GenAIGenerator{client: client, model: model}, nil
}

// Generate sends prompt as a single user turn and returns the concatenated text.
func (g *GenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("assistant.GenAIGenerator.Generate: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("assistant.GenAIGenerator.Generate: empty response")
	}
	return text, nil
}
