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

// AbuseIPDBClient queries the AbuseIPDB v2 check endpoint for an IP's
// abuse confidence score and report count.
type AbuseIPDBClient struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// AbuseIPDBOption configures the client.
type AbuseIPDBOption func(*AbuseIPDBClient)

// WithAbuseIPDBEndpoint sets a custom API endpoint (tests, proxies).
func WithAbuseIPDBEndpoint(endpoint string) AbuseIPDBOption {
	return func(c *AbuseIPDBClient) { c.endpoint = endpoint }
}

// NewAbuseIPDBClient creates an AbuseIPDB client with the given timeout.
func NewAbuseIPDBClient(apiKey string, timeout time.Duration, opts ...AbuseIPDBOption) *AbuseIPDBClient {
	c := &AbuseIPDBClient{
		apiKey:   apiKey,
		endpoint: "https://api.abuseipdb.com/api/v2/check",
		client:   &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AbuseReport is the normalized AbuseIPDB result.
type AbuseReport struct {
	AbuseConfidenceScore int `json:"abuseConfidenceScore"`
	TotalReports         int `json:"totalReports"`
}

type abuseIPDBResponse struct {
	Data struct {
		AbuseConfidenceScore int `json:"abuseConfidenceScore"`
		TotalReports         int `json:"totalReports"`
	} `json:"data"`
}

// CheckIP looks up the abuse record for an IP over the last 90 days.
func (c *AbuseIPDBClient) CheckIP(ctx context.Context, ip string) (*AbuseReport, error) {
	q := url.Values{}
	q.Set("ipAddress", ip)
	q.Set("maxAgeInDays", "90")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("abuseipdb request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("abuseipdb returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed abuseIPDBResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode abuseipdb response: %w", err)
	}

	return &AbuseReport{
		AbuseConfidenceScore: parsed.Data.AbuseConfidenceScore,
		TotalReports:         parsed.Data.TotalReports,
	}, nil
}
