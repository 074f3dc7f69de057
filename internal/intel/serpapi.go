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

// maxSearchResults caps how many organic results a search returns.
const maxSearchResults = 5

// SerpAPIClient runs Google searches through SerpAPI and returns the top
// organic results.
type SerpAPIClient struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// SerpAPIOption configures the client.
type SerpAPIOption func(*SerpAPIClient)

// WithSerpAPIEndpoint sets a custom API endpoint (tests, proxies).
func WithSerpAPIEndpoint(endpoint string) SerpAPIOption {
	return func(c *SerpAPIClient) { c.endpoint = endpoint }
}

// NewSerpAPIClient creates a SerpAPI client with the given timeout.
func NewSerpAPIClient(apiKey string, timeout time.Duration, opts ...SerpAPIOption) *SerpAPIClient {
	c := &SerpAPIClient{
		apiKey:   apiKey,
		endpoint: "https://serpapi.com/search",
		client:   &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchResult is one organic web result.
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type serpAPIResponse struct {
	OrganicResults []SearchResult `json:"organic_results"`
}

// Search runs a Google search and returns up to five organic results.
func (c *SerpAPIClient) Search(ctx context.Context, query string) ([]SearchResult, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("api_key", c.apiKey)
	q.Set("num", fmt.Sprint(maxSearchResults))
	q.Set("engine", "google")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serpapi request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("serpapi returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed serpAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode serpapi response: %w", err)
	}

	results := parsed.OrganicResults
	if len(results) > maxSearchResults {
		results = results[:maxSearchResults]
	}
	return results, nil
}
