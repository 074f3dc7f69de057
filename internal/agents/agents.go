// Package agents implements the pipeline's sub-agents. Each agent exposes
// the uniform HandleTask contract over one or more intel tool adapters and
// never returns a Go error: adapter failures degrade to an "error" key in
// the stage payload so the pipeline keeps moving.
package agents

import (
	"context"

	"github.com/sentrascan/sentrascan/pkg/models"
)

// Agent is the uniform task contract every sub-agent implements.
type Agent interface {
	// Name identifies the agent in the registry.
	Name() models.AgentID

	// HandleTask runs the agent against one task payload and returns the
	// stage result. Failures are carried in the payload, never raised.
	HandleTask(ctx context.Context, payload models.Payload) models.Payload
}

// Registry maps agent ids to their implementations. Built once per scan
// run: agents hold per-run credentials, so concurrent runs share nothing.
type Registry map[models.AgentID]Agent

// Register adds an agent under its own name.
func (r Registry) Register(a Agent) {
	r[a.Name()] = a
}
