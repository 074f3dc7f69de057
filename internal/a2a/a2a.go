// Package a2a implements the agent-to-agent routing layer: addressed
// messages dispatched against a per-run agent registry.
package a2a

import (
	"context"

	"github.com/sentrascan/sentrascan/internal/agents"
	"github.com/sentrascan/sentrascan/pkg/models"
)

// Route dispatches a message to the addressed agent and returns its result.
// Unknown receivers produce an explicit error payload, never an error value:
// routing failures are data like every other soft failure in the pipeline.
// Route is a pure lookup-and-dispatch; it does no retries and never mutates
// the registry.
func Route(ctx context.Context, msg models.Message, registry agents.Registry) models.Payload {
	agent, ok := registry[msg.To]
	if !ok {
		return models.ErrorPayload("No agent found with name " + string(msg.To))
	}
	return agent.HandleTask(ctx, models.Payload{"query": msg.Payload.Get("query")})
}
