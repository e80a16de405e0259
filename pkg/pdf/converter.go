package pdf

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	documentdomain "ladinglens-backend/internal/document/domain"
)

// ErrConversion means an attachment could not be converted to text.
// The attachment is skipped; the batch continues.
var ErrConversion = errors.New("pdf conversion failed")

// Converter turns PDF bytes into normalized per-page markdown. Treated
// as a pure function at this boundary.
type Converter interface {
	Convert(ctx context.Context, filename string, data []byte) ([]documentdomain.PageText, error)
}

// HTTPConverter calls an external PDF-to-markdown service.
type HTTPConverter struct {
	baseURL string
	client  *http.Client
}

// NewHTTPConverter creates a converter client for the given service URL.
func NewHTTPConverter(baseURL string) *HTTPConverter {
	return &HTTPConverter{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// Convert uploads the PDF and returns one PageText per physical page,
// ordered by page index.
func (c *HTTPConverter) Convert(ctx context.Context, filename string, data []byte) ([]documentdomain.PageText, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConversion, err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConversion, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConversion, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/convert", &buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConversion, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConversion, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConversion, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: converter returned %d: %s", ErrConversion, resp.StatusCode, string(respBody))
	}

	var result struct {
		Pages []struct {
			PageIndex int    `json:"page_index"`
			Markdown  string `json:"markdown"`
		} `json:"pages"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("%w: invalid converter response: %v", ErrConversion, err)
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("%w: converter returned no pages for %s", ErrConversion, filename)
	}

	pages := make([]documentdomain.PageText, len(result.Pages))
	for i, p := range result.Pages {
		pages[i] = documentdomain.PageText{Index: p.PageIndex, Text: p.Markdown}
	}
	return pages, nil
}
