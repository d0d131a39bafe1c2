// Package config loads the service configuration from a YAML file with
// environment overrides for secrets.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the VoceSpace record service.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `yaml:"addr"`
	// DBPath is the SQLite database file.
	DBPath string `yaml:"db_path"`

	Token    TokenConfig    `yaml:"token"`
	Redirect RedirectConfig `yaml:"redirect"`
	Platform PlatformConfig `yaml:"platform"`
	Cache    CacheConfig    `yaml:"cache"`
}

// TokenConfig holds the cross-domain token settings. The secret is shared with
// the meeting domain's verifier and must come from deployment configuration,
// never a source literal.
type TokenConfig struct {
	Secret string `yaml:"secret"`
}

// RedirectConfig names the two fixed destination hostnames selected by the
// auth source flag on redirects.
type RedirectConfig struct {
	// VoceSpaceHost receives redirects originating from the main app.
	VoceSpaceHost string `yaml:"vocespace_host"`
	// MeetingHost receives redirects originating from the meeting entry page.
	MeetingHost string `yaml:"meeting_host"`
}

// PlatformConfig points at the external room platform API.
type PlatformConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// CacheConfig tunes the read-through user cache.
type CacheConfig struct {
	UserTTLSeconds int `yaml:"user_ttl_seconds"`
}

func defaultConfig() Config {
	return Config{
		Addr:   ":8080",
		DBPath: "vocespace.db",
		Redirect: RedirectConfig{
			VoceSpaceHost: "space.vocespace.com",
			MeetingHost:   "meeting.vocespace.com",
		},
		Cache: CacheConfig{UserTTLSeconds: 300},
	}
}

// Load reads the config file at path, fills unset fields with defaults, and
// applies environment overrides. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg.fillDefaults()
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) fillDefaults() {
	d := defaultConfig()
	if c.Addr == "" {
		c.Addr = d.Addr
	}
	if c.DBPath == "" {
		c.DBPath = d.DBPath
	}
	if c.Redirect.VoceSpaceHost == "" {
		c.Redirect.VoceSpaceHost = d.Redirect.VoceSpaceHost
	}
	if c.Redirect.MeetingHost == "" {
		c.Redirect.MeetingHost = d.Redirect.MeetingHost
	}
	if c.Cache.UserTTLSeconds <= 0 {
		c.Cache.UserTTLSeconds = d.Cache.UserTTLSeconds
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("VOCESPACE_TOKEN_SECRET"); v != "" {
		c.Token.Secret = v
	}
	if v := os.Getenv("VOCESPACE_PLATFORM_API_KEY"); v != "" {
		c.Platform.APIKey = v
	}
	if v := os.Getenv("VOCESPACE_ADDR"); v != "" {
		c.Addr = v
	}
}

// Validate checks the fields required to serve.
func (c *Config) Validate() error {
	if c.Token.Secret == "" {
		return fmt.Errorf("token secret is not set (config token.secret or VOCESPACE_TOKEN_SECRET)")
	}
	return nil
}
