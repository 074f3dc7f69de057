package intel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// VirusTotalClient queries the VirusTotal v3 IP address endpoint for the
// community reputation score and last analysis stats.
type VirusTotalClient struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// VirusTotalOption configures the client.
type VirusTotalOption func(*VirusTotalClient)

// WithVirusTotalEndpoint sets a custom API base (tests, proxies).
func WithVirusTotalEndpoint(endpoint string) VirusTotalOption {
	return func(c *VirusTotalClient) { c.endpoint = endpoint }
}

// NewVirusTotalClient creates a VirusTotal client with the given timeout.
func NewVirusTotalClient(apiKey string, timeout time.Duration, opts ...VirusTotalOption) *VirusTotalClient {
	c := &VirusTotalClient{
		apiKey:   apiKey,
		endpoint: "https://www.virustotal.com/api/v3/ip_addresses",
		client:   &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// VTReport is the normalized VirusTotal result. Reputation is the
// community score: negative values mean the IP has been voted malicious.
type VTReport struct {
	Reputation        int            `json:"reputation"`
	LastAnalysisStats map[string]int `json:"last_analysis_stats"`
}

type virusTotalResponse struct {
	Data struct {
		Attributes struct {
			Reputation        int            `json:"reputation"`
			LastAnalysisStats map[string]int `json:"last_analysis_stats"`
		} `json:"attributes"`
	} `json:"data"`
}

// ScanIP fetches the reputation record for an IP.
func (c *VirusTotalClient) ScanIP(ctx context.Context, ip string) (*VTReport, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/"+ip, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("x-apikey", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("virustotal request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("virustotal returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed virusTotalResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode virustotal response: %w", err)
	}

	return &VTReport{
		Reputation:        parsed.Data.Attributes.Reputation,
		LastAnalysisStats: parsed.Data.Attributes.LastAnalysisStats,
	}, nil
}
