package intel

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const testTimeout = 5 * time.Second

func TestAbuseIPDBCheckIP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Key"); got != "test-key" {
			t.Errorf("Key header = %q, want test-key", got)
		}
		if got := r.URL.Query().Get("ipAddress"); got != "203.0.113.7" {
			t.Errorf("ipAddress = %q, want 203.0.113.7", got)
		}
		fmt.Fprint(w, `{"data":{"abuseConfidenceScore":85,"totalReports":42}}`)
	}))
	defer srv.Close()

	c := NewAbuseIPDBClient("test-key", testTimeout, WithAbuseIPDBEndpoint(srv.URL))
	report, err := c.CheckIP(context.Background(), "203.0.113.7")
	if err != nil {
		t.Fatalf("CheckIP() error = %v", err)
	}
	if report.AbuseConfidenceScore != 85 || report.TotalReports != 42 {
		t.Errorf("CheckIP() = %+v, want score 85 / 42 reports", report)
	}
}

func TestAbuseIPDBErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"detail":"Authentication failed"}]}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewAbuseIPDBClient("bad-key", testTimeout, WithAbuseIPDBEndpoint(srv.URL))
	if _, err := c.CheckIP(context.Background(), "203.0.113.7"); err == nil {
		t.Fatal("CheckIP() should fail on 401")
	} else if !strings.Contains(err.Error(), "401") {
		t.Errorf("CheckIP() error = %v, want status in message", err)
	}
}

func TestVirusTotalScanIP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-apikey"); got != "vt-key" {
			t.Errorf("x-apikey header = %q, want vt-key", got)
		}
		if !strings.HasSuffix(r.URL.Path, "/198.51.100.4") {
			t.Errorf("path = %q, want it to end with the ip", r.URL.Path)
		}
		fmt.Fprint(w, `{"data":{"attributes":{"reputation":-12,"last_analysis_stats":{"malicious":7,"harmless":60}}}}`)
	}))
	defer srv.Close()

	c := NewVirusTotalClient("vt-key", testTimeout, WithVirusTotalEndpoint(srv.URL))
	report, err := c.ScanIP(context.Background(), "198.51.100.4")
	if err != nil {
		t.Fatalf("ScanIP() error = %v", err)
	}
	if report.Reputation != -12 {
		t.Errorf("Reputation = %d, want -12", report.Reputation)
	}
	if report.LastAnalysisStats["malicious"] != 7 {
		t.Errorf("malicious stat = %d, want 7", report.LastAnalysisStats["malicious"])
	}
}

func TestIPInfoLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ip":"203.0.113.7","city":"Berlin","country":"DE","org":"AS64500 Example Net"}`)
	}))
	defer srv.Close()

	c := NewIPInfoClient("tok", testTimeout, WithIPInfoEndpoint(srv.URL))
	info, err := c.Lookup(context.Background(), "203.0.113.7")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if info.City != "Berlin" || info.Country != "DE" {
		t.Errorf("Lookup() = %+v, want Berlin/DE", info)
	}
}

func TestHIBPCheckEmailBreached(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("hibp-api-key"); got != "hibp-key" {
			t.Errorf("hibp-api-key header = %q, want hibp-key", got)
		}
		fmt.Fprint(w, `[{"Name":"Adobe","Title":"Adobe","Domain":"adobe.com","BreachDate":"2013-10-04","PwnCount":152445165,"DataClasses":["Email addresses","Passwords"]}]`)
	}))
	defer srv.Close()

	c := NewHIBPClient("hibp-key", testTimeout, WithHIBPEndpoint(srv.URL))
	result, err := c.CheckEmail(context.Background(), "victim@example.com")
	if err != nil {
		t.Fatalf("CheckEmail() error = %v", err)
	}
	if !result.Breached || len(result.Breaches) != 1 || result.Breaches[0].Name != "Adobe" {
		t.Errorf("CheckEmail() = %+v, want one Adobe breach", result)
	}
}

func TestHIBPCheckEmailClean(t *testing.T) {
	// HIBP signals "never breached" with a 404, which is a clean result,
	// not an error.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewHIBPClient("hibp-key", testTimeout, WithHIBPEndpoint(srv.URL))
	result, err := c.CheckEmail(context.Background(), "clean@example.com")
	if err != nil {
		t.Fatalf("CheckEmail() error = %v, want clean result for 404", err)
	}
	if result.Breached || len(result.Breaches) != 0 {
		t.Errorf("CheckEmail() = %+v, want breached=false", result)
	}
}

func TestHIBPCheckEmailRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewHIBPClient("hibp-key", testTimeout, WithHIBPEndpoint(srv.URL))
	if _, err := c.CheckEmail(context.Background(), "x@example.com"); err == nil {
		t.Fatal("CheckEmail() should fail on 429")
	}
}

func TestHunterDomainSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("domain"); got != "example.com" {
			t.Errorf("domain = %q, want example.com", got)
		}
		fmt.Fprint(w, `{"data":{"emails":[{"value":"ceo@example.com","type":"personal","confidence":92}]}}`)
	}))
	defer srv.Close()

	c := NewHunterClient("hunter-key", testTimeout, WithHunterEndpoint(srv.URL))
	emails, err := c.DomainSearch(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("DomainSearch() error = %v", err)
	}
	if len(emails) != 1 || emails[0].Value != "ceo@example.com" {
		t.Errorf("DomainSearch() = %+v, want ceo@example.com", emails)
	}
}

func TestSerpAPISearchCapsResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var results []string
		for i := 0; i < 8; i++ {
			results = append(results, fmt.Sprintf(`{"title":"r%d","link":"https://x/%d","snippet":"s%d"}`, i, i, i))
		}
		fmt.Fprintf(w, `{"organic_results":[%s]}`, strings.Join(results, ","))
	}))
	defer srv.Close()

	c := NewSerpAPIClient("serp-key", testTimeout, WithSerpAPIEndpoint(srv.URL))
	results, err := c.Search(context.Background(), "203.0.113.7 malware")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != maxSearchResults {
		t.Errorf("Search() returned %d results, want capped at %d", len(results), maxSearchResults)
	}
	if results[0].Title != "r0" {
		t.Errorf("first result = %+v, want r0", results[0])
	}
}

func TestGeminiGenerateContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"  The IP shows coordinated abuse.\n"}]}}]}`)
	}))
	defer srv.Close()

	c := NewGeminiClient("gem-key", testTimeout, WithGeminiEndpoint(srv.URL))
	text, err := c.GenerateContent(context.Background(), "analyze this")
	if err != nil {
		t.Fatalf("GenerateContent() error = %v", err)
	}
	if text != "The IP shows coordinated abuse." {
		t.Errorf("GenerateContent() = %q, want trimmed text", text)
	}
}

func TestGeminiNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[]}`)
	}))
	defer srv.Close()

	c := NewGeminiClient("gem-key", testTimeout, WithGeminiEndpoint(srv.URL))
	if _, err := c.GenerateContent(context.Background(), "analyze"); err == nil {
		t.Fatal("GenerateContent() should fail when no candidates come back")
	}
}
