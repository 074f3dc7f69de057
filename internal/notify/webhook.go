package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WebhookDriver posts alerts as JSON to a webhook URL. The formatter shapes
// the body for the target service (Slack wants {"text"}, Discord wants
// {"content"}).
type WebhookDriver struct {
	kind      string
	url       string
	formatter func(Alert) any
	client    *http.Client
}

// NewWebhookDriver creates a webhook channel driver. An empty URL leaves
// the driver unconfigured.
func NewWebhookDriver(kind, url string, formatter func(Alert) any) *WebhookDriver {
	return &WebhookDriver{
		kind:      kind,
		url:       url,
		formatter: formatter,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (d *WebhookDriver) Kind() string     { return d.kind }
func (d *WebhookDriver) Configured() bool { return d.url != "" }

// Send posts the formatted alert to the webhook URL.
func (d *WebhookDriver) Send(ctx context.Context, alert Alert) error {
	body, err := json.Marshal(d.formatter(alert))
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "sentrascan-webhook/1.0")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook HTTP %d from %s", resp.StatusCode, d.url)
	}
	return nil
}

func slackFormatter(alert Alert) any {
	return map[string]string{
		"text": fmt.Sprintf(":rotating_light: Suspicious query alert:\n```%s```", summarize(alert)),
	}
}

func discordFormatter(alert Alert) any {
	return map[string]string{
		"content": fmt.Sprintf("Suspicious query alert:\n```%s```", summarize(alert)),
	}
}
