package intel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// IPInfoClient fetches geolocation and network ownership details for an IP
// from ipinfo.io.
type IPInfoClient struct {
	token    string
	endpoint string
	client   *http.Client
}

// IPInfoOption configures the client.
type IPInfoOption func(*IPInfoClient)

// WithIPInfoEndpoint sets a custom API base (tests, proxies).
func WithIPInfoEndpoint(endpoint string) IPInfoOption {
	return func(c *IPInfoClient) { c.endpoint = endpoint }
}

// NewIPInfoClient creates an ipinfo.io client with the given timeout.
func NewIPInfoClient(token string, timeout time.Duration, opts ...IPInfoOption) *IPInfoClient {
	c := &IPInfoClient{
		token:    token,
		endpoint: "https://ipinfo.io",
		client:   &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GeoInfo is the normalized geolocation record.
type GeoInfo struct {
	IP       string `json:"ip"`
	Hostname string `json:"hostname,omitempty"`
	City     string `json:"city,omitempty"`
	Region   string `json:"region,omitempty"`
	Country  string `json:"country,omitempty"`
	Loc      string `json:"loc,omitempty"`
	Org      string `json:"org,omitempty"`
	Postal   string `json:"postal,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

// Lookup fetches geo details for an IP.
func (c *IPInfoClient) Lookup(ctx context.Context, ip string) (*GeoInfo, error) {
	url := fmt.Sprintf("%s/%s?token=%s", c.endpoint, ip, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ipinfo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ipinfo returned %d: %s", resp.StatusCode, string(body))
	}

	var info GeoInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode ipinfo response: %w", err)
	}
	return &info, nil
}
