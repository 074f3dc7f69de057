package agents

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/sentrascan/sentrascan/internal/intel"
	"github.com/sentrascan/sentrascan/pkg/models"
)

const correlationPrompt = `You are a senior security analyst. Correlate the
reputation data and OSINT data below into a short natural-language assessment
of whether the subject is a likely threat, what the signals agree on, and
where they diverge.

## Reputation data
%v

## OSINT data
%v

Assessment:`

// CorrelationAgent synthesizes the reputation and OSINT stages into a
// natural-language assessment via the LLM.
type CorrelationAgent struct {
	llm *intel.GeminiClient
}

// NewCorrelationAgent wires the LLM client.
func NewCorrelationAgent(llm *intel.GeminiClient) *CorrelationAgent {
	return &CorrelationAgent{llm: llm}
}

// Name implements Agent.
func (a *CorrelationAgent) Name() models.AgentID { return models.AgentCorrelation }

// HandleTask renders the reasoning prompt from the threatintel and osint
// payloads and returns {analysis: <text>}.
func (a *CorrelationAgent) HandleTask(ctx context.Context, payload models.Payload) models.Payload {
	threatData := payload.GetPayload(models.StageThreatIntel)
	osintData := payload.GetPayload(models.StageOSINT)

	prompt := fmt.Sprintf(correlationPrompt, threatData, osintData)
	analysis, err := a.llm.GenerateContent(ctx, prompt)
	if err != nil {
		log.Warn().Err(err).Msg("Correlation analysis failed")
		return models.ErrorPayload(err.Error())
	}

	return models.Payload{"analysis": analysis}
}
