package ai

import (
	"fmt"
)

// Config holds AI provider configuration
type Config struct {
	Provider ProviderType // "gemini", "ollama" or "auto"

	// Gemini config
	GeminiAPIKey string

	// Ollama config
	OllamaBaseURL string // e.g., "http://localhost:11434"
	OllamaModel   string // e.g., "llama3", "mistral"
}

// NewExtractor creates an Extractor based on the config.
// This is the factory function - switch AI provider by changing
// config.Provider. "auto" wires both providers behind the fallback
// router when a Gemini key is present.
func NewExtractor(cfg Config) (Extractor, error) {
	switch cfg.Provider {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
		}
		return NewGeminiExtractor(cfg.GeminiAPIKey), nil

	case ProviderOllama:
		return NewOllamaExtractor(cfg.OllamaBaseURL, cfg.OllamaModel), nil

	default:
		if cfg.GeminiAPIKey != "" {
			return NewFallbackExtractor(
				NewGeminiExtractor(cfg.GeminiAPIKey),
				NewOllamaExtractor(cfg.OllamaBaseURL, cfg.OllamaModel),
			), nil
		}
		return NewOllamaExtractor(cfg.OllamaBaseURL, cfg.OllamaModel), nil
	}
}
