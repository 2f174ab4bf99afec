package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redlinehq/redline/internal/notify"
)

const (
	EnvSMTPHost     = "REDLINE_SMTP_HOST"
	EnvSMTPPort     = "REDLINE_SMTP_PORT"
	EnvSMTPFrom     = "REDLINE_SMTP_FROM"
	EnvSMTPUsername = "REDLINE_SMTP_USERNAME"
	EnvSMTPPassword = "REDLINE_SMTP_PASSWORD"

	EnvWebhookURL     = "REDLINE_WEBHOOK_URL"
	EnvWebhookTimeout = "REDLINE_WEBHOOK_TIMEOUT"
)

// NotifyConfig holds notification channel settings. A channel is active
// when its connection fields are set: SMTP requires a host, webhook a URL.
// With neither configured, notifications are logged and dropped.
type NotifyConfig struct {
	SMTP    notify.SMTPConfig    `toml:"smtp"`
	Webhook notify.WebhookConfig `toml:"webhook"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *NotifyConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *NotifyConfig) Merge(overlay *NotifyConfig) {
	if overlay.SMTP.Host != "" {
		c.SMTP.Host = overlay.SMTP.Host
	}
	if overlay.SMTP.Port != 0 {
		c.SMTP.Port = overlay.SMTP.Port
	}
	if overlay.SMTP.From != "" {
		c.SMTP.From = overlay.SMTP.From
	}
	if overlay.SMTP.Username != "" {
		c.SMTP.Username = overlay.SMTP.Username
	}
	if overlay.SMTP.Password != "" {
		c.SMTP.Password = overlay.SMTP.Password
	}
	if overlay.Webhook.URL != "" {
		c.Webhook.URL = overlay.Webhook.URL
	}
	if overlay.Webhook.Timeout != "" {
		c.Webhook.Timeout = overlay.Webhook.Timeout
	}
}

func (c *NotifyConfig) loadDefaults() {
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	if c.Webhook.Timeout == "" {
		c.Webhook.Timeout = "10s"
	}
}

func (c *NotifyConfig) loadEnv() {
	if v := os.Getenv(EnvSMTPHost); v != "" {
		c.SMTP.Host = v
	}
	if v := os.Getenv(EnvSMTPPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.SMTP.Port = port
		}
	}
	if v := os.Getenv(EnvSMTPFrom); v != "" {
		c.SMTP.From = v
	}
	if v := os.Getenv(EnvSMTPUsername); v != "" {
		c.SMTP.Username = v
	}
	if v := os.Getenv(EnvSMTPPassword); v != "" {
		c.SMTP.Password = v
	}
	if v := os.Getenv(EnvWebhookURL); v != "" {
		c.Webhook.URL = v
	}
	if v := os.Getenv(EnvWebhookTimeout); v != "" {
		c.Webhook.Timeout = v
	}
}

func (c *NotifyConfig) validate() error {
	if c.SMTP.Host != "" && c.SMTP.From == "" {
		return fmt.Errorf("smtp from address required")
	}
	if _, err := time.ParseDuration(c.Webhook.Timeout); err != nil {
		return fmt.Errorf("invalid webhook timeout: %w", err)
	}
	return nil
}
