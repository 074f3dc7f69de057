package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sentrascan/sentrascan/internal/agents"
	"github.com/sentrascan/sentrascan/internal/api"
	"github.com/sentrascan/sentrascan/internal/api/handlers"
	"github.com/sentrascan/sentrascan/internal/config"
	"github.com/sentrascan/sentrascan/internal/controller"
	"github.com/sentrascan/sentrascan/internal/store"
	"github.com/sentrascan/sentrascan/pkg/models"
)

// cannedAgent always returns the same payload.
type cannedAgent struct {
	name   models.AgentID
	result models.Payload
}

func (a *cannedAgent) Name() models.AgentID { return a.name }
func (a *cannedAgent) HandleTask(ctx context.Context, payload models.Payload) models.Payload {
	return a.result
}

func newTestServer(t *testing.T, scans store.ScanStore) http.Handler {
	t.Helper()

	registry := make(agents.Registry)
	for _, id := range []models.AgentID{
		models.AgentThreatIntel, models.AgentOSINT, models.AgentCorrelation,
		models.AgentRAG, models.AgentReport, models.AgentSelfTest, models.AgentAlert,
	} {
		registry.Register(&cannedAgent{name: id, result: models.Payload{"stage": string(id)}})
	}

	factory := func(creds handlers.Credentials) *controller.Controller {
		return controller.New(registry, scans)
	}
	h := handlers.New(scans, factory)
	return api.NewRouter(config.Load(), h)
}

func TestScanEndpoint(t *testing.T) {
	router := newTestServer(t, store.NewMemoryStore())

	req := httptest.NewRequest(http.MethodPost, "/scan", strings.NewReader(`{"query":"203.0.113.7"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /scan status = %d, want %d (body: %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["scan_id"] == "" || body["scan_id"] == nil {
		t.Error("response missing scan_id")
	}
	for _, key := range models.StageKeys {
		if _, ok := body[key]; !ok {
			t.Errorf("response missing stage key %q", key)
		}
	}
}

func TestScanEndpointBadBody(t *testing.T) {
	router := newTestServer(t, store.NewMemoryStore())

	req := httptest.NewRequest(http.MethodPost, "/scan", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("POST /scan with bad body status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestScanEndpointMissingQuery(t *testing.T) {
	router := newTestServer(t, store.NewMemoryStore())

	req := httptest.NewRequest(http.MethodPost, "/scan", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("POST /scan without query status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestScanHistoryEndpoints(t *testing.T) {
	scans := store.NewMemoryStore()
	router := newTestServer(t, scans)

	record := &models.ScanRecord{
		ID:        "known-scan",
		Query:     "example.com",
		Status:    models.ScanStatusIssue,
		Timestamp: time.Now().UTC(),
		Results:   map[string]models.Payload{models.StageOSINT: {"hunter": []any{}}},
	}
	if err := scans.CreateScan(context.Background(), record); err != nil {
		t.Fatalf("seed record: %v", err)
	}

	// List
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/scans", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /scans status = %d, want 200", rec.Code)
	}
	var list []models.ScanRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || list[0].ID != "known-scan" {
		t.Errorf("GET /scans = %v, want the seeded record", list)
	}

	// Get one
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/scans/known-scan", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET /scans/known-scan status = %d, want 200", rec.Code)
	}

	// Unknown id
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/scans/ghost", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /scans/ghost status = %d, want 404", rec.Code)
	}
}

func TestHealthAndVersion(t *testing.T) {
	router := newTestServer(t, store.NewMemoryStore())

	for _, path := range []string{"/health", "/version"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, rec.Code)
		}
	}
}
