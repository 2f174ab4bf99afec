package config

import (
	"fmt"
	"os"
)

const (
	EnvRulebookSource = "REDLINE_RULEBOOK_SOURCE"
	EnvRulebookRef    = "REDLINE_RULEBOOK_REF"
)

// RulebookConfig locates the rules document. Source is "file" or "blob";
// Ref is the filesystem path or blob key respectively.
type RulebookConfig struct {
	Source string `toml:"source"`
	Ref    string `toml:"ref"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *RulebookConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *RulebookConfig) Merge(overlay *RulebookConfig) {
	if overlay.Source != "" {
		c.Source = overlay.Source
	}
	if overlay.Ref != "" {
		c.Ref = overlay.Ref
	}
}

func (c *RulebookConfig) loadDefaults() {
	if c.Source == "" {
		c.Source = "file"
	}
	if c.Ref == "" {
		c.Ref = "rulebook.yaml"
	}
}

func (c *RulebookConfig) loadEnv() {
	if v := os.Getenv(EnvRulebookSource); v != "" {
		c.Source = v
	}
	if v := os.Getenv(EnvRulebookRef); v != "" {
		c.Ref = v
	}
}

func (c *RulebookConfig) validate() error {
	if c.Source != "file" && c.Source != "blob" {
		return fmt.Errorf("invalid source: %s", c.Source)
	}
	if c.Ref == "" {
		return fmt.Errorf("ref required")
	}
	return nil
}
