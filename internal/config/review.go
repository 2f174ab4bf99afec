package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redlinehq/redline/internal/docsource"
)

const (
	EnvReviewPrimaryTeam = "REDLINE_REVIEW_PRIMARY_TEAM"
	EnvReviewWorkerLimit = "REDLINE_REVIEW_WORKER_LIMIT"

	EnvRemoteBaseURL = "REDLINE_REMOTE_BASE_URL"
	EnvRemoteTimeout = "REDLINE_REMOTE_TIMEOUT"
)

// ReviewConfig holds analysis run settings. PrimaryTeam names the oversight
// team notified when a review completes. WorkerLimit bounds concurrent
// comparator calls per run; zero derives the bound from CPU count. Remote
// configures the optional remote document source; when its base URL is
// empty only uploaded documents can be analyzed.
type ReviewConfig struct {
	PrimaryTeam string                 `toml:"primary_team"`
	WorkerLimit int                    `toml:"worker_limit"`
	Remote      docsource.RemoteConfig `toml:"remote"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ReviewConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ReviewConfig) Merge(overlay *ReviewConfig) {
	if overlay.PrimaryTeam != "" {
		c.PrimaryTeam = overlay.PrimaryTeam
	}
	if overlay.WorkerLimit != 0 {
		c.WorkerLimit = overlay.WorkerLimit
	}
	if overlay.Remote.BaseURL != "" {
		c.Remote.BaseURL = overlay.Remote.BaseURL
	}
	if overlay.Remote.Timeout != "" {
		c.Remote.Timeout = overlay.Remote.Timeout
	}
}

func (c *ReviewConfig) loadDefaults() {
	if c.PrimaryTeam == "" {
		c.PrimaryTeam = "legal"
	}
	if c.Remote.Timeout == "" {
		c.Remote.Timeout = "30s"
	}
}

func (c *ReviewConfig) loadEnv() {
	if v := os.Getenv(EnvReviewPrimaryTeam); v != "" {
		c.PrimaryTeam = v
	}
	if v := os.Getenv(EnvReviewWorkerLimit); v != "" {
		if limit, err := strconv.Atoi(v); err == nil {
			c.WorkerLimit = limit
		}
	}
	if v := os.Getenv(EnvRemoteBaseURL); v != "" {
		c.Remote.BaseURL = v
	}
	if v := os.Getenv(EnvRemoteTimeout); v != "" {
		c.Remote.Timeout = v
	}
}

func (c *ReviewConfig) validate() error {
	if c.WorkerLimit < 0 {
		return fmt.Errorf("invalid worker_limit: %d", c.WorkerLimit)
	}
	if _, err := time.ParseDuration(c.Remote.Timeout); err != nil {
		return fmt.Errorf("invalid remote timeout: %w", err)
	}
	return nil
}
