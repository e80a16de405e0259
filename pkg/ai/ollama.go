package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	documentdomain "ladinglens-backend/internal/document/domain"
)

// OllamaExtractor implements Extractor using an Ollama local LLM.
type OllamaExtractor struct {
	baseURL string
	model   string
}

// NewOllamaExtractor creates a new Ollama-backed extractor
func NewOllamaExtractor(baseURL, model string) *OllamaExtractor {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3"
	}
	return &OllamaExtractor{baseURL: baseURL, model: model}
}

// ExtractDocument implements Extractor, re-prompting on schema-invalid
// output up to the capability's retry ceiling.
func (o *OllamaExtractor) ExtractDocument(ctx context.Context, text string) (*documentdomain.DocumentExtraction, error) {
	prompt := buildPrompt(text)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		raw, err := o.generate(ctx, prompt)
		if err != nil {
			return nil, err
		}

		result, err := parseExtraction(raw)
		if err == nil {
			return result, nil
		}
		lastErr = err
		log.Printf("[AI] Ollama returned invalid extraction (attempt %d/%d): %v", attempt, maxAttempts, err)
	}
	return nil, fmt.Errorf("ollama output failed schema validation after %d attempts: %w", maxAttempts, lastErr)
}

func (o *OllamaExtractor) generate(ctx context.Context, prompt string) (string, error) {
	url := o.baseURL + "/api/generate"

	payload := map[string]interface{}{
		"model":  o.model,
		"prompt": prompt,
		"stream": false,
		"format": "json",
		"options": map[string]interface{}{
			"temperature": 0.1,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Response string `json:"response"`
		Done     bool   `json:"done"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	return result.Response, nil
}
