package agents

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/sentrascan/sentrascan/internal/report"
	"github.com/sentrascan/sentrascan/pkg/models"
)

// ReportAgent renders the aggregated stage outputs into a markdown report
// file. Missing upstream values render as placeholders rather than failing
// the stage.
type ReportAgent struct {
	renderer *report.Renderer
}

// NewReportAgent wires the markdown renderer.
func NewReportAgent(renderer *report.Renderer) *ReportAgent {
	return &ReportAgent{renderer: renderer}
}

// Name implements Agent.
func (a *ReportAgent) Name() models.AgentID { return models.AgentReport }

// HandleTask renders and writes the report, returning {message, file}.
func (a *ReportAgent) HandleTask(ctx context.Context, payload models.Payload) models.Payload {
	data := report.Data{
		Query:        stringOr(payload.GetString("ip"), "N/A"),
		VTReputation: fieldOr(payload.GetPayload("virustotal"), "reputation", "-"),
		AbuseScore:   fieldOr(payload.GetPayload("abuseipdb"), "abuseConfidenceScore", "-"),
		Geo:          fieldOr(payload.GetPayload("ipinfo"), "country", "-"),
		BreachData:   anyOr(payload.GetPayload("osint").Get("hibp"), "None"),
		ContactData:  anyOr(payload.GetPayload("osint").Get("hunter"), "None"),
		Analysis:     stringOr(payload.GetPayload("correlation").GetString("analysis"), "N/A"),
	}

	path, err := a.renderer.Render(data)
	if err != nil {
		log.Warn().Err(err).Str("query", data.Query).Msg("Report generation failed")
		return models.ErrorPayload(err.Error())
	}

	return models.Payload{"message": "Report generated", "file": path}
}

func stringOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func fieldOr(p models.Payload, key, fallback string) string {
	if v := p.Get(key); v != nil {
		return fmt.Sprint(v)
	}
	return fallback
}

func anyOr(v any, fallback string) string {
	if v == nil {
		return fallback
	}
	return fmt.Sprint(v)
}
