package ai

import (
	"context"
	"fmt"
	"log"

	documentdomain "ladinglens-backend/internal/document/domain"
	"ladinglens-backend/pkg/gemini"
)

// GeminiExtractor implements Extractor on top of the Gemini API client.
type GeminiExtractor struct {
	client *gemini.GeminiService
}

// NewGeminiExtractor creates a Gemini-backed extractor
func NewGeminiExtractor(apiKey string) *GeminiExtractor {
	return &GeminiExtractor{client: gemini.NewGeminiService(apiKey)}
}

// ExtractDocument submits segment text and returns a schema-valid
// extraction. Invalid model output is rejected and re-prompted up to the
// capability's retry ceiling.
func (g *GeminiExtractor) ExtractDocument(ctx context.Context, text string) (*documentdomain.DocumentExtraction, error) {
	prompt := buildPrompt(text)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		raw, err := g.client.GenerateContent(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("gemini extraction failed: %w", err)
		}

		result, err := parseExtraction(raw)
		if err == nil {
			return result, nil
		}
		lastErr = err
		log.Printf("[AI] Gemini returned invalid extraction (attempt %d/%d): %v", attempt, maxAttempts, err)
	}
	return nil, fmt.Errorf("gemini output failed schema validation after %d attempts: %w", maxAttempts, lastErr)
}
