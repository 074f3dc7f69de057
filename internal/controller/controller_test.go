package controller_test

import (
	"context"
	"testing"
	"time"

	"github.com/sentrascan/sentrascan/internal/agents"
	"github.com/sentrascan/sentrascan/internal/controller"
	"github.com/sentrascan/sentrascan/internal/store"
	"github.com/sentrascan/sentrascan/pkg/models"
)

// stubAgent returns a canned payload and records what it was asked.
type stubAgent struct {
	name   models.AgentID
	result models.Payload
	seen   models.Payload
}

func (a *stubAgent) Name() models.AgentID { return a.name }
func (a *stubAgent) HandleTask(ctx context.Context, payload models.Payload) models.Payload {
	a.seen = payload
	return a.result
}

func stubRegistry() (agents.Registry, map[models.AgentID]*stubAgent) {
	stubs := map[models.AgentID]*stubAgent{
		models.AgentThreatIntel: {name: models.AgentThreatIntel, result: models.Payload{
			"ip":         "203.0.113.7",
			"virustotal": models.Payload{"reputation": -2},
			"abuseipdb":  models.Payload{"abuseConfidenceScore": 60},
			"ipinfo":     models.Payload{"country": "DE"},
		}},
		models.AgentOSINT:       {name: models.AgentOSINT, result: models.Payload{"hunter": []any{"a@b.com"}}},
		models.AgentCorrelation: {name: models.AgentCorrelation, result: models.Payload{"analysis": "likely malicious"}},
		models.AgentRAG:         {name: models.AgentRAG, result: models.Payload{"llm_summary": "seen in botnets"}},
		models.AgentReport:      {name: models.AgentReport, result: models.Payload{"message": "Report generated", "file": "r.md"}},
		models.AgentAlert:       {name: models.AgentAlert, result: models.Payload{"triggered": true}},
	}
	registry := make(agents.Registry)
	for _, s := range stubs {
		registry.Register(s)
	}
	registry.Register(agents.NewSelfTestAgent())
	return registry, stubs
}

func TestRunReturnsAllStageKeys(t *testing.T) {
	registry, _ := stubRegistry()
	c := controller.New(registry, store.NewMemoryStore())

	results, err := c.Run(context.Background(), "203.0.113.7", "")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for _, key := range models.StageKeys {
		if _, ok := results[key]; !ok {
			t.Errorf("Run() missing stage key %q", key)
		}
	}
	if len(results) != len(models.StageKeys) {
		t.Errorf("Run() returned %d stages, want %d", len(results), len(models.StageKeys))
	}
}

func TestRunThreadsStageOutputs(t *testing.T) {
	registry, stubs := stubRegistry()
	c := controller.New(registry, store.NewMemoryStore())

	if _, err := c.Run(context.Background(), "203.0.113.7", ""); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	corr := stubs[models.AgentCorrelation].seen
	if corr.GetPayload(models.StageThreatIntel).GetString("ip") != "203.0.113.7" {
		t.Error("correlation stage did not receive the threatintel result")
	}
	if corr.GetPayload(models.StageOSINT).Get("hunter") == nil {
		t.Error("correlation stage did not receive the osint result")
	}

	rag := stubs[models.AgentRAG].seen
	if rag.GetString("query") != "203.0.113.7" {
		t.Error("rag stage did not receive the query")
	}
	if rag.GetPayload("threat_data").GetString("ip") != "203.0.113.7" {
		t.Error("rag stage did not receive the threat data")
	}

	rep := stubs[models.AgentReport].seen
	if rep.GetString("ip") != "203.0.113.7" {
		t.Error("report stage did not receive the flattened ip")
	}
	if rep.GetPayload("abuseipdb").Get("abuseConfidenceScore") == nil {
		t.Error("report stage did not receive the abuseipdb sub-result")
	}

	alert := stubs[models.AgentAlert].seen
	if alert.GetString("ip") != "203.0.113.7" {
		t.Error("alert stage did not receive the threatintel result")
	}
}

func TestRunSurvivesMissingAgents(t *testing.T) {
	// An empty registry degrades every stage to an error payload; the run
	// itself still completes with all seven keys.
	c := controller.New(make(agents.Registry), store.NewMemoryStore())

	results, err := c.Run(context.Background(), "example.com", "")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for _, key := range models.StageKeys {
		if !results[key].HasError() {
			t.Errorf("stage %q should carry an error payload, got %v", key, results[key])
		}
	}
}

func TestRunPersistsWhenScanIDGiven(t *testing.T) {
	registry, _ := stubRegistry()
	s := store.NewMemoryStore()
	c := controller.New(registry, s)
	ctx := context.Background()

	if _, err := c.Run(ctx, "203.0.113.7", "scan-a"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	time.Sleep(5 * time.Millisecond) // distinct timestamps for ordering
	if _, err := c.Run(ctx, "203.0.113.7", "scan-b"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	records, err := s.ListScans(ctx)
	if err != nil {
		t.Fatalf("ListScans() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("persisted %d records, want 2", len(records))
	}
	if records[0].ID != "scan-b" || records[1].ID != "scan-a" {
		t.Errorf("retrieval order = [%s %s], want newest first", records[0].ID, records[1].ID)
	}

	// Selftest passed (all required fields present, scores consistent),
	// so the record status derives to complete.
	if records[0].Status != models.ScanStatusComplete {
		t.Errorf("record status = %q, want %q", records[0].Status, models.ScanStatusComplete)
	}
}

func TestRunEphemeralWithoutScanID(t *testing.T) {
	registry, _ := stubRegistry()
	s := store.NewMemoryStore()
	c := controller.New(registry, s)

	if _, err := c.Run(context.Background(), "203.0.113.7", ""); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	records, _ := s.ListScans(context.Background())
	if len(records) != 0 {
		t.Errorf("ephemeral run persisted %d records, want 0", len(records))
	}
}

func TestRunValidationTargetOption(t *testing.T) {
	registry, stubs := stubRegistry()
	c := controller.New(registry, store.NewMemoryStore(),
		controller.WithValidationTarget(models.AgentRAG))

	results, err := c.Run(context.Background(), "203.0.113.7", "")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// The rag stub provides llm_summary, so validating the rag stage passes.
	if got := results[models.StageSelfTest].GetString("status"); got != models.SelfTestPassed {
		t.Errorf("selftest status = %q, want PASSED (issues: %v)", got, results[models.StageSelfTest].Get("issues"))
	}

	// Make the rag stage unhealthy and the verdict must flip.
	stubs[models.AgentRAG].result = models.Payload{"search_results": []any{}}
	results, _ = c.Run(context.Background(), "203.0.113.7", "")
	if got := results[models.StageSelfTest].GetString("status"); got != models.SelfTestFailed {
		t.Errorf("selftest status = %q, want FAILED for unhealthy rag stage", got)
	}
}

// failingStore rejects every write.
type failingStore struct {
	store.ScanStore
}

func (f *failingStore) CreateScan(ctx context.Context, record *models.ScanRecord) error {
	return context.DeadlineExceeded
}

func TestRunPersistenceFailureIsHard(t *testing.T) {
	registry, _ := stubRegistry()
	c := controller.New(registry, &failingStore{ScanStore: store.NewMemoryStore()})

	results, err := c.Run(context.Background(), "203.0.113.7", "scan-x")
	if err == nil {
		t.Fatal("Run() should surface persistence failure when a scan id was requested")
	}
	// Stage results still come back alongside the error.
	if len(results) != len(models.StageKeys) {
		t.Errorf("Run() returned %d stages with persistence error, want %d", len(results), len(models.StageKeys))
	}
}
