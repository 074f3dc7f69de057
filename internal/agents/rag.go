package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/sentrascan/sentrascan/internal/intel"
	"github.com/sentrascan/sentrascan/pkg/models"
)

const ragPrompt = `You are a cybersecurity analyst. Use the threat intel data
and real-time web search results below to summarize the situation.

## Threat Intel
%v

## Web Search
%s

Answer:
- Is this query related to a known threat?
- What can be inferred based on real-time information?`

// RAGAgent augments the reputation data with live web search results and
// asks the LLM for a combined summary.
type RAGAgent struct {
	search *intel.SerpAPIClient
	llm    *intel.GeminiClient
}

// NewRAGAgent wires the search and LLM clients.
func NewRAGAgent(search *intel.SerpAPIClient, llm *intel.GeminiClient) *RAGAgent {
	return &RAGAgent{search: search, llm: llm}
}

// Name implements Agent.
func (a *RAGAgent) Name() models.AgentID { return models.AgentRAG }

// HandleTask searches the web for the query, then summarizes search results
// plus threat data. Returns {search_results, llm_summary}. If the search
// fails the whole stage degrades; if only the LLM fails the search results
// are still returned alongside the error.
func (a *RAGAgent) HandleTask(ctx context.Context, payload models.Payload) models.Payload {
	query := payload.GetString("query")
	threatData := payload.GetPayload("threat_data")

	results, err := a.search.Search(ctx, query)
	if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("Web search failed")
		return models.ErrorPayload(err.Error())
	}

	var lines []string
	for _, r := range results {
		lines = append(lines, fmt.Sprintf("- %s (%s): %s", r.Title, r.Link, r.Snippet))
	}

	prompt := fmt.Sprintf(ragPrompt, threatData, strings.Join(lines, "\n"))
	summary, err := a.llm.GenerateContent(ctx, prompt)
	if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("RAG summary failed")
		return models.Payload{"search_results": results, "error": err.Error()}
	}

	return models.Payload{"search_results": results, "llm_summary": summary}
}
