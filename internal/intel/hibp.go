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

// HIBPClient checks an email address against the Have I Been Pwned
// breached-account API.
type HIBPClient struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// HIBPOption configures the client.
type HIBPOption func(*HIBPClient)

// WithHIBPEndpoint sets a custom API base (tests, proxies).
func WithHIBPEndpoint(endpoint string) HIBPOption {
	return func(c *HIBPClient) { c.endpoint = endpoint }
}

// NewHIBPClient creates a Have I Been Pwned client with the given timeout.
func NewHIBPClient(apiKey string, timeout time.Duration, opts ...HIBPOption) *HIBPClient {
	c := &HIBPClient{
		apiKey:   apiKey,
		endpoint: "https://haveibeenpwned.com/api/v3/breachedaccount",
		client:   &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Breach is one breach the account appears in.
type Breach struct {
	Name        string   `json:"Name"`
	Title       string   `json:"Title"`
	Domain      string   `json:"Domain"`
	BreachDate  string   `json:"BreachDate"`
	PwnCount    int      `json:"PwnCount"`
	DataClasses []string `json:"DataClasses"`
}

// BreachResult distinguishes "not breached" (HIBP 404) from a breach list.
type BreachResult struct {
	Breached bool     `json:"breached"`
	Breaches []Breach `json:"breaches,omitempty"`
}

// CheckEmail looks up the breach history for an email address.
// A 404 from HIBP means the account is clean and is not an error.
func (c *HIBPClient) CheckEmail(ctx context.Context, email string) (*BreachResult, error) {
	u := fmt.Sprintf("%s/%s?truncateResponse=false", c.endpoint, url.PathEscape(email))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("hibp-api-key", c.apiKey)
	req.Header.Set("User-Agent", "sentrascan")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hibp request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var breaches []Breach
		if err := json.NewDecoder(resp.Body).Decode(&breaches); err != nil {
			return nil, fmt.Errorf("decode hibp response: %w", err)
		}
		return &BreachResult{Breached: true, Breaches: breaches}, nil
	case http.StatusNotFound:
		return &BreachResult{Breached: false}, nil
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("hibp returned %d: %s", resp.StatusCode, string(body))
	}
}
