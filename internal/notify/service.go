// Package notify dispatches security alerts to the configured notification
// channels: email (SMTP), Slack webhook, and Discord webhook.
//
// Dispatch is best-effort fan-out. Channels without configured endpoints are
// silently skipped; a failing channel is logged and never aborts the other
// channels or the caller.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sentrascan/sentrascan/internal/config"
	"github.com/sentrascan/sentrascan/pkg/models"
)

// Alert is the payload fanned out to every channel.
type Alert struct {
	Query     string         `json:"query"`
	Result    models.Payload `json:"result"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewAlert builds an alert for a suspicious scan result.
func NewAlert(query string, result models.Payload) Alert {
	return Alert{Query: query, Result: result, Timestamp: time.Now().UTC()}
}

// ChannelDriver sends an alert through one notification channel.
type ChannelDriver interface {
	// Kind names the channel ("email", "slack", "discord").
	Kind() string

	// Configured reports whether the channel has an endpoint to send to.
	// Unconfigured channels are skipped without logging.
	Configured() bool

	// Send delivers the alert. Errors are reported to the caller for
	// logging only; they carry no control flow.
	Send(ctx context.Context, alert Alert) error
}

// DispatchResult records one channel's delivery outcome.
type DispatchResult struct {
	Channel string `json:"channel"`
	Sent    bool   `json:"sent"`
	Error   string `json:"error,omitempty"`
}

// Service fans alerts out to the registered channel drivers.
type Service struct {
	drivers []ChannelDriver
	drvMu   sync.RWMutex
}

// NewService builds a notification service from the alert configuration,
// registering the built-in email, Slack, and Discord drivers.
func NewService(cfg config.AlertConfig) *Service {
	s := &Service{}
	s.RegisterDriver(NewEmailDriver(cfg))
	s.RegisterDriver(NewWebhookDriver("slack", cfg.SlackWebhook, slackFormatter))
	s.RegisterDriver(NewWebhookDriver("discord", cfg.DiscordWebhook, discordFormatter))
	return s
}

// RegisterDriver appends a channel driver.
func (s *Service) RegisterDriver(driver ChannelDriver) {
	s.drvMu.Lock()
	defer s.drvMu.Unlock()
	s.drivers = append(s.drivers, driver)
}

// DispatchAll sends the alert to every configured channel concurrently and
// collects the per-channel outcomes. It never returns an error: channel
// failures are data.
func (s *Service) DispatchAll(ctx context.Context, alert Alert) []DispatchResult {
	s.drvMu.RLock()
	drivers := make([]ChannelDriver, len(s.drivers))
	copy(drivers, s.drivers)
	s.drvMu.RUnlock()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []DispatchResult
	)

	for _, d := range drivers {
		if !d.Configured() {
			continue
		}
		wg.Add(1)
		go func(d ChannelDriver) {
			defer wg.Done()
			r := DispatchResult{Channel: d.Kind()}
			if err := d.Send(ctx, alert); err != nil {
				r.Error = err.Error()
				log.Warn().Err(err).Str("channel", d.Kind()).Str("query", alert.Query).Msg("Alert channel failed")
			} else {
				r.Sent = true
				log.Info().Str("channel", d.Kind()).Str("query", alert.Query).Msg("Alert dispatched")
			}
			mu.Lock()
			results = append(results, r)
			mu.Unlock()
		}(d)
	}

	wg.Wait()
	return results
}

func summarize(alert Alert) string {
	return fmt.Sprintf("query=%s result=%v", alert.Query, alert.Result)
}
