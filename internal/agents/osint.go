package agents

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/sentrascan/sentrascan/internal/intel"
	"github.com/sentrascan/sentrascan/pkg/models"
)

// OSINTAgent branches on the query shape: emails go to the breach lookup,
// domains to contact discovery. Bare IPs have no OSINT path and produce an
// explicit error payload.
type OSINTAgent struct {
	hibp   *intel.HIBPClient
	hunter *intel.HunterClient
}

// NewOSINTAgent wires the breach and contact-discovery clients.
func NewOSINTAgent(hibp *intel.HIBPClient, hunter *intel.HunterClient) *OSINTAgent {
	return &OSINTAgent{hibp: hibp, hunter: hunter}
}

// Name implements Agent.
func (a *OSINTAgent) Name() models.AgentID { return models.AgentOSINT }

// HandleTask returns {hibp: ...} for emails, {hunter: ...} for domains.
func (a *OSINTAgent) HandleTask(ctx context.Context, payload models.Payload) models.Payload {
	query := payload.GetString("query")
	result := models.Payload{}

	switch models.ClassifyQuery(query) {
	case models.QueryEmail:
		breach, err := a.hibp.CheckEmail(ctx, query)
		if err != nil {
			log.Warn().Err(err).Str("email", query).Msg("HIBP lookup failed")
			result["hibp"] = models.ErrorPayload(err.Error())
			break
		}
		hibp := models.Payload{"breached": breach.Breached}
		if breach.Breached {
			hibp["breaches"] = breach.Breaches
		}
		result["hibp"] = hibp
	case models.QueryDomain:
		emails, err := a.hunter.DomainSearch(ctx, query)
		if err != nil {
			log.Warn().Err(err).Str("domain", query).Msg("Hunter lookup failed")
			result["hunter"] = models.ErrorPayload(err.Error())
			break
		}
		result["hunter"] = emails
	default:
		result["error"] = "Input must be a domain or email"
	}

	return result
}
