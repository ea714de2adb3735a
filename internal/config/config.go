// Package config holds coursecast's persisted session configuration.
// The config file lives at ~/.coursecast/config.yaml and carries the Canvas
// base URL and API token, so it is written with 0600 permissions.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all coursecast configuration.
type Config struct {
	// BaseURL is the HTTPS origin of the Canvas instance, without a
	// trailing slash (e.g. https://canvas.example.edu).
	BaseURL string `yaml:"base_url"`

	// Token is the Canvas API bearer token. Never logged verbatim.
	Token string `yaml:"token"`

	// RequestSpacing is the minimum gap between consecutive API calls.
	RequestSpacing time.Duration `yaml:"request_spacing"`

	// PageSize is the per_page value used when listing courses.
	PageSize int `yaml:"page_size"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		RequestSpacing: 500 * time.Millisecond,
		PageSize:       100,
	}
}

// DefaultPath returns the standard config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".coursecast", "config.yaml"), nil
}

// Load reads the config from path, applying defaults for unset fields and
// environment overrides on top. A missing file is not an error: it returns
// the defaults so first-run setup can proceed.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.RequestSpacing <= 0 {
		cfg.RequestSpacing = DefaultConfig().RequestSpacing
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultConfig().PageSize
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the config to path, creating the parent directory if needed.
// The file is written 0600 since it contains the API token.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// Reset removes the config file. A missing file is not an error.
func Reset(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// applyEnvOverrides lets environment variables take precedence over the file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("COURSECAST_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("COURSECAST_TOKEN"); v != "" {
		c.Token = v
	}
	if v := os.Getenv("CANVAS_API_TOKEN"); v != "" && c.Token == "" {
		c.Token = v
	}
}

// SetBaseURL normalizes and stores a Canvas origin: the scheme must be https
// (plain http is upgraded), and any trailing slash is stripped.
func (c *Config) SetBaseURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("base URL is required")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "http" {
		u.Scheme = "https"
	}
	if u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("base URL must be an https origin, got %q", raw)
	}
	c.BaseURL = "https://" + u.Host + strings.TrimSuffix(u.Path, "/")
	return nil
}

// ClearToken wipes the token in memory and, when path is non-empty, on disk.
// Called after a failed connectivity probe so a stale credential is not reused.
func (c *Config) ClearToken(path string) error {
	c.Token = ""
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return c.Save(path)
}

// Validate checks that the config is usable for API calls.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("no base URL configured, run --setup")
	}
	if c.Token == "" {
		return fmt.Errorf("no API token configured, run --setup")
	}
	return nil
}

// MaskedToken returns a loggable form of the token: its length and last four
// characters only.
func (c *Config) MaskedToken() string {
	if c.Token == "" {
		return "(none)"
	}
	if len(c.Token) <= 4 {
		return "****"
	}
	return fmt.Sprintf("****%s (len=%d)", c.Token[len(c.Token)-4:], len(c.Token))
}
