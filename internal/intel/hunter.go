package intel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// HunterClient enumerates contact emails for a domain via the hunter.io
// domain-search API.
type HunterClient struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// HunterOption configures the client.
type HunterOption func(*HunterClient)

// WithHunterEndpoint sets a custom API endpoint (tests, proxies).
func WithHunterEndpoint(endpoint string) HunterOption {
	return func(c *HunterClient) { c.endpoint = endpoint }
}

// NewHunterClient creates a hunter.io client with the given timeout.
func NewHunterClient(apiKey string, timeout time.Duration, opts ...HunterOption) *HunterClient {
	c := &HunterClient{
		apiKey:   apiKey,
		endpoint: "https://api.hunter.io/v2/domain-search",
		client:   &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ContactEmail is one discovered address on the domain.
type ContactEmail struct {
	Value      string `json:"value"`
	Type       string `json:"type,omitempty"`
	Confidence int    `json:"confidence,omitempty"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	Position   string `json:"position,omitempty"`
}

type hunterResponse struct {
	Data struct {
		Emails []ContactEmail `json:"emails"`
	} `json:"data"`
}

// DomainSearch returns the contact emails discovered for a domain.
func (c *HunterClient) DomainSearch(ctx context.Context, domain string) ([]ContactEmail, error) {
	q := url.Values{}
	q.Set("domain", domain)
	q.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hunter request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("hunter returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed hunterResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode hunter response: %w", err)
	}
	return parsed.Data.Emails, nil
}
