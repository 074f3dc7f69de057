package intel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// GeminiClient generates free-text analysis from the Gemini generateContent
// REST endpoint.
type GeminiClient struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// GeminiOption configures the client.
type GeminiOption func(*GeminiClient)

// WithGeminiEndpoint sets a custom API base (tests, proxies).
func WithGeminiEndpoint(endpoint string) GeminiOption {
	return func(c *GeminiClient) { c.endpoint = endpoint }
}

// WithGeminiModel overrides the default model.
func WithGeminiModel(model string) GeminiOption {
	return func(c *GeminiClient) { c.model = model }
}

// NewGeminiClient creates a Gemini completion client with the given timeout.
func NewGeminiClient(apiKey string, timeout time.Duration, opts ...GeminiOption) *GeminiClient {
	c := &GeminiClient{
		apiKey:   apiKey,
		model:    "gemini-pro",
		endpoint: "https://generativelanguage.googleapis.com/v1beta/models",
		client:   &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GenerateContent sends a prompt and returns the model's text, trimmed.
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	u := fmt.Sprintf("%s/%s:generateContent?key=%s", c.endpoint, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini returned %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("gemini error: %s", parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	return strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text), nil
}
