package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WebhookConfig holds settings for a JSON webhook channel.
type WebhookConfig struct {
	URL     string `toml:"url"`
	Timeout string `toml:"timeout"`
}

// TimeoutDuration returns Timeout as a time.Duration, defaulting to 10s.
func (c *WebhookConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

type webhook struct {
	url    string
	client *http.Client
}

// NewWebhook creates a channel that posts notifications as JSON to a
// configured endpoint.
func NewWebhook(cfg *WebhookConfig) Channel {
	return &webhook{
		url: cfg.URL,
		client: &http.Client{
			Timeout: cfg.TimeoutDuration(),
		},
	}
}

func (c *webhook) Send(ctx context.Context, addresses []string, subject, body string) error {
	payload, err := json.Marshal(map[string]any{
		"addresses": addresses,
		"subject":   subject,
		"body":      body,
	})
	if err != nil {
		return fmt.Errorf("webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook post returned %d", resp.StatusCode)
	}
	return nil
}
