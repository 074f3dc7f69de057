package agents

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/sentrascan/sentrascan/internal/notify"
	"github.com/sentrascan/sentrascan/pkg/models"
)

// Alert trigger thresholds. Either signal alone is sufficient: an abuse
// confidence strictly above alertAbuseThreshold, or a negative reputation.
const alertAbuseThreshold = 50

// AlertAgent evaluates the reputation result against the alert thresholds
// and fans out to the notification channels when they trip.
type AlertAgent struct {
	notifier *notify.Service
}

// NewAlertAgent wires the notification service.
func NewAlertAgent(notifier *notify.Service) *AlertAgent {
	return &AlertAgent{notifier: notifier}
}

// Name implements Agent.
func (a *AlertAgent) Name() models.AgentID { return models.AgentAlert }

// HandleTask adapts CheckAndAlert to the uniform agent contract for
// registry dispatch.
func (a *AlertAgent) HandleTask(ctx context.Context, payload models.Payload) models.Payload {
	return a.CheckAndAlert(ctx, payload)
}

// ShouldAlert applies the trigger condition to a reputation result. Parse
// failures count as zero, matching the adapters' numeric shapes.
func ShouldAlert(result models.Payload) bool {
	abuseScore, err := parseScore(result.GetPayload("abuseipdb").Get("abuseConfidenceScore"))
	if err != nil {
		abuseScore = 0
	}
	reputation, err := parseScore(result.GetPayload("virustotal").Get("reputation"))
	if err != nil {
		reputation = 0
	}
	return abuseScore > alertAbuseThreshold || reputation < 0
}

// CheckAndAlert dispatches to all configured channels when the thresholds
// trip. Channel failures are recorded in the returned payload, never
// propagated.
func (a *AlertAgent) CheckAndAlert(ctx context.Context, result models.Payload) models.Payload {
	if !ShouldAlert(result) {
		return models.Payload{"triggered": false}
	}

	query := result.GetString("ip")
	log.Info().Str("query", query).Msg("Alert thresholds tripped, notifying channels")

	dispatched := a.notifier.DispatchAll(ctx, notify.NewAlert(query, result))
	return models.Payload{"triggered": true, "channels": dispatched}
}
