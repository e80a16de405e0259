package ai

import (
	"context"
	"fmt"
	"log"
	"net"
	"strings"

	documentdomain "ladinglens-backend/internal/document/domain"
)

// FallbackExtractor routes extraction across providers:
// Gemini first (better structured output), Ollama when Gemini is out of
// quota or unreachable.
type FallbackExtractor struct {
	gemini Extractor
	ollama Extractor
}

// NewFallbackExtractor creates a new fallback extractor with both providers
func NewFallbackExtractor(gemini, ollama Extractor) *FallbackExtractor {
	return &FallbackExtractor{
		gemini: gemini,
		ollama: ollama,
	}
}

// ExtractDocument tries Gemini first, falls back to Ollama on quota or
// connection errors.
func (f *FallbackExtractor) ExtractDocument(ctx context.Context, text string) (*documentdomain.DocumentExtraction, error) {
	if f.gemini != nil {
		result, err := f.gemini.ExtractDocument(ctx, text)
		if err == nil {
			return result, nil
		}

		if isQuotaError(err) {
			log.Printf("[AI] Gemini quota exhausted: %v, falling back to Ollama", err)
		} else {
			log.Printf("[AI] Gemini error: %v, falling back to Ollama", err)
		}
	}

	if f.ollama != nil {
		result, err := f.ollama.ExtractDocument(ctx, text)
		if err == nil {
			return result, nil
		}
		if isConnectionError(err) && f.gemini != nil {
			log.Printf("[AI] Ollama connection failed: %v, retrying Gemini", err)
			return f.gemini.ExtractDocument(ctx, text)
		}
		return nil, fmt.Errorf("ollama extraction failed: %w", err)
	}

	return nil, fmt.Errorf("no AI provider available for extraction")
}

// isConnectionError checks if the error is a network/connection error
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}

	if _, ok := err.(net.Error); ok {
		return true
	}

	errStr := strings.ToLower(err.Error())
	connectionIndicators := []string{
		"connection refused",
		"no such host",
		"network is unreachable",
		"connection reset",
		"timeout",
		"dial tcp",
		"eof",
	}
	for _, indicator := range connectionIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}
	return false
}

// isQuotaError checks if the error indicates API quota exhaustion (429)
func isQuotaError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	quotaIndicators := []string{
		"429",
		"quota",
		"rate limit",
		"too many requests",
		"resource exhausted",
	}
	for _, indicator := range quotaIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}
	return false
}
