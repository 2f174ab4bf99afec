package config

import (
	"fmt"
	"os"
	"time"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
	"github.com/pelletier/go-toml/v2"

	"github.com/redlinehq/redline/pkg/database"
	"github.com/redlinehq/redline/pkg/middleware"
	"github.com/redlinehq/redline/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvRedlineEnv             = "REDLINE_ENV"
	EnvRedlineShutdownTimeout = "REDLINE_SHUTDOWN_TIMEOUT"
	EnvRedlineVersion         = "REDLINE_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "REDLINE_DB_HOST",
	Port:            "REDLINE_DB_PORT",
	Name:            "REDLINE_DB_NAME",
	User:            "REDLINE_DB_USER",
	Password:        "REDLINE_DB_PASSWORD",
	SSLMode:         "REDLINE_DB_SSL_MODE",
	MaxOpenConns:    "REDLINE_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "REDLINE_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "REDLINE_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "REDLINE_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "REDLINE_STORAGE_CONTAINER_NAME",
	ConnectionString: "REDLINE_STORAGE_CONNECTION_STRING",
	AccountURL:       "REDLINE_STORAGE_ACCOUNT_URL",
	MaxListSize:      "REDLINE_STORAGE_MAX_LIST_SIZE",
}

var authEnv = &middleware.AuthEnv{
	Enabled:  "REDLINE_AUTH_ENABLED",
	Issuer:   "REDLINE_AUTH_ISSUER",
	Audience: "REDLINE_AUTH_AUDIENCE",
}

// Config is the root configuration for the Redline service.
type Config struct {
	Server          ServerConfig          `toml:"server"`
	Database        database.Config       `toml:"database"`
	Storage         storage.Config        `toml:"storage"`
	API             APIConfig             `toml:"api"`
	Auth            middleware.AuthConfig `toml:"auth"`
	Agent           gaconfig.AgentConfig  `toml:"agent"`
	Rulebook        RulebookConfig        `toml:"rulebook"`
	Notify          NotifyConfig          `toml:"notify"`
	Review          ReviewConfig          `toml:"review"`
	ShutdownTimeout string                `toml:"shutdown_timeout"`
	Version         string                `toml:"version"`
}

// Env returns the REDLINE_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvRedlineEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Auth.Merge(&overlay.Auth)
	c.Agent.Merge(&overlay.Agent)
	c.Rulebook.Merge(&overlay.Rulebook)
	c.Notify.Merge(&overlay.Notify)
	c.Review.Merge(&overlay.Review)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := FinalizeAgent(&c.Agent); err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	if err := c.Rulebook.Finalize(); err != nil {
		return fmt.Errorf("rulebook: %w", err)
	}
	if err := c.Notify.Finalize(); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	if err := c.Review.Finalize(); err != nil {
		return fmt.Errorf("review: %w", err)
	}
	return nil
}
func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvRedlineShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvRedlineVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvRedlineEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
