// Package controller implements the orchestration core: it sequences the
// sub-agents for one scan query, threads earlier stage outputs into later
// stage inputs, aggregates the unified result, and persists the record.
//
// The pipeline order is fixed and never branches on failure. Every stage
// runs regardless of prior stage outcome; adapter errors are carried as
// payload data, so one broken integration degrades its own stage without
// blocking downstream stages. The only hard failure is persistence when a
// scan id was requested.
package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/sentrascan/sentrascan/internal/agents"
	"github.com/sentrascan/sentrascan/internal/store"
	"github.com/sentrascan/sentrascan/pkg/models"
)

// validationStage maps a validation target agent to the stage key whose
// result it inspects.
var validationStage = map[models.AgentID]string{
	models.AgentThreatIntel: models.StageThreatIntel,
	models.AgentOSINT:       models.StageOSINT,
	models.AgentCorrelation: models.StageCorrelation,
	models.AgentRAG:         models.StageRAG,
	models.AgentReport:      models.StageReport,
}

// Controller orchestrates one scan run over a per-run agent registry.
// Registries are built fresh per request (they hold per-request
// credentials), so concurrent runs share no mutable state.
type Controller struct {
	registry agents.Registry
	scans    store.ScanStore

	// validateTarget is the agent whose output the selftest stage checks.
	// Defaults to the reputation agent.
	validateTarget models.AgentID
}

// Option configures a Controller.
type Option func(*Controller)

// WithValidationTarget changes which stage the selftest agent inspects.
func WithValidationTarget(target models.AgentID) Option {
	return func(c *Controller) { c.validateTarget = target }
}

// New creates a controller over the given registry and scan store.
func New(registry agents.Registry, scans store.ScanStore, opts ...Option) *Controller {
	c := &Controller{
		registry:       registry,
		scans:          scans,
		validateTarget: models.AgentThreatIntel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes the full pipeline for a query. When scanID is non-empty the
// aggregate is persisted under that id; otherwise the run is ephemeral.
// The returned map always contains all seven stage keys.
func (c *Controller) Run(ctx context.Context, query, scanID string) (map[string]models.Payload, error) {
	start := time.Now()
	results := make(map[string]models.Payload, len(models.StageKeys))

	// Reputation and OSINT are mutually independent; run them concurrently.
	// Both must land before correlation starts.
	var threatResult, osintResult models.Payload
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		threatResult = c.dispatch(gctx, models.AgentThreatIntel, models.Payload{"query": query})
		return nil
	})
	g.Go(func() error {
		osintResult = c.dispatch(gctx, models.AgentOSINT, models.Payload{"query": query})
		return nil
	})
	g.Wait()
	results[models.StageThreatIntel] = threatResult
	results[models.StageOSINT] = osintResult

	results[models.StageCorrelation] = c.dispatch(ctx, models.AgentCorrelation, models.Payload{
		models.StageThreatIntel: threatResult,
		models.StageOSINT:       osintResult,
	})

	results[models.StageRAG] = c.dispatch(ctx, models.AgentRAG, models.Payload{
		"query":       query,
		"threat_data": threatResult,
	})

	results[models.StageReport] = c.dispatch(ctx, models.AgentReport, models.Payload{
		"ip":          query,
		"virustotal":  threatResult.GetPayload("virustotal"),
		"abuseipdb":   threatResult.GetPayload("abuseipdb"),
		"ipinfo":      threatResult.GetPayload("ipinfo"),
		"osint":       osintResult,
		"correlation": results[models.StageCorrelation],
	})

	results[models.StageSelfTest] = c.dispatch(ctx, models.AgentSelfTest, models.Payload{
		"agent_name": string(c.validateTarget),
		"result":     c.validationInput(results, threatResult),
	})

	results[models.StageAlert] = c.dispatch(ctx, models.AgentAlert, threatResult)

	if scanID != "" {
		record := &models.ScanRecord{
			ID:        scanID,
			Query:     query,
			Status:    models.StatusFromResults(results),
			Timestamp: time.Now().UTC(),
			Results:   results,
		}
		if err := c.scans.CreateScan(ctx, record); err != nil {
			// The caller asked for durability and didn't get it.
			return results, fmt.Errorf("persist scan %s: %w", scanID, err)
		}
	}

	log.Info().
		Str("query", query).
		Str("scan_id", scanID).
		Dur("duration", time.Since(start)).
		Str("selftest", results[models.StageSelfTest].GetString("status")).
		Msg("Scan complete")

	return results, nil
}

// dispatch invokes one agent with the routing layer's tolerance: a missing
// agent becomes an error payload, not a crash.
func (c *Controller) dispatch(ctx context.Context, to models.AgentID, payload models.Payload) models.Payload {
	agent, ok := c.registry[to]
	if !ok {
		return models.ErrorPayload("No agent found with name " + string(to))
	}
	return agent.HandleTask(ctx, payload)
}

// validationInput picks the stage result the selftest agent should inspect.
func (c *Controller) validationInput(results map[string]models.Payload, threatResult models.Payload) models.Payload {
	if stage, ok := validationStage[c.validateTarget]; ok {
		if r, ok := results[stage]; ok {
			return r
		}
	}
	return threatResult
}
