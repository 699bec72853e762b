package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiCompleter calls the Gemini API directly.
type GeminiCompleter struct {
	client      *genai.Client
	model       string
	temperature *float32
}

// NewGeminiCompleter creates a Gemini-backed completer.
func NewGeminiCompleter(ctx context.Context, apiKey, modelName string, temperature *float64) (*GeminiCompleter, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	var temp *float32
	if temperature != nil {
		val := float32(*temperature)
		temp = &val
	}
	return &GeminiCompleter{client: client, model: modelName, temperature: temp}, nil
}

// Complete implements Completer.
func (g *GeminiCompleter) Complete(ctx context.Context, text string) (string, error) {
	config := &genai.GenerateContentConfig{Temperature: g.temperature}
	res, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(text), config)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	// blocked or empty candidates
	if res == nil || len(res.Candidates) == 0 || res.Candidates[0].Content == nil || len(res.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrUpstream)
	}

	var builder strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if part != nil {
			builder.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(builder.String()) == "" {
		return "", fmt.Errorf("%w: empty response", ErrUpstream)
	}
	return builder.String(), nil
}
