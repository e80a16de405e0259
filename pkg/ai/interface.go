package ai

import (
	"context"

	documentdomain "ladinglens-backend/internal/document/domain"
)

// Extractor is the interface for generative document extraction.
// Implement this interface to add new AI providers (Gemini, Ollama, etc.).
// Implementations own schema validation and their own retry ceiling, so
// callers only ever see a schema-valid result or an error.
type Extractor interface {
	ExtractDocument(ctx context.Context, text string) (*documentdomain.DocumentExtraction, error)
}

// ProviderType represents the AI provider type
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderOllama ProviderType = "ollama"
	ProviderAuto   ProviderType = "auto"
)
