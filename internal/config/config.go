// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvAPIKey   = "PHENHANCE_API_KEY"
	EnvAuthKey  = "PHENHANCE_AUTH_KEY"
	EnvReferrer = "PHENHANCE_REFERRER"
)

// Default configuration values.
const (
	DefaultEndpoint    = "https://us.i.posthog.com"
	DefaultFlushPeriod = 5 * time.Second
	DefaultBatchSize   = 50
)

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "5s", "1m", "1h30m", or integer milliseconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	// Try parsing as integer (milliseconds)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '5s', '1m', '1h30m' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// UnmarshalYAML decodes a scalar duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config represents the phenhance configuration.
type Config struct {
	Analytics    AnalyticsConfig    `toml:"analytics" yaml:"analytics"`
	Organization OrganizationConfig `toml:"organization" yaml:"organization"`
	Theme        ThemeConfig        `toml:"theme" yaml:"theme"`
	Session      SessionConfig      `toml:"session" yaml:"session"`
	Metrics      MetricsConfig      `toml:"metrics" yaml:"metrics"`
}

// AnalyticsConfig configures the PostHog client.
type AnalyticsConfig struct {
	APIKey      string   `toml:"api_key" yaml:"api_key"`           // Empty = log events only
	Endpoint    string   `toml:"endpoint" yaml:"endpoint"`         // PostHog ingestion host
	FlushPeriod Duration `toml:"flush_period" yaml:"flush_period"` // Batch flush interval
	BatchSize   int      `toml:"batch_size" yaml:"batch_size"`
}

// OrganizationConfig configures the organization lookup.
type OrganizationConfig struct {
	BaseURL string   `toml:"base_url" yaml:"base_url"` // Site hosting /astuteo-toolkit/info
	AuthKey string   `toml:"auth_key" yaml:"auth_key"` // Empty = lookup disabled
	Timeout Duration `toml:"timeout" yaml:"timeout"`   // 0 = no client timeout
}

// ThemeConfig selects the color-scheme source.
type ThemeConfig struct {
	ColorScheme string `toml:"color_scheme" yaml:"color_scheme"` // "system", "terminal", "light", "dark"
}

// SessionConfig describes the launch context.
type SessionConfig struct {
	Referrer string `toml:"referrer" yaml:"referrer"` // Recorded once as initial_referrer
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Listen string `toml:"listen" yaml:"listen"` // e.g. "127.0.0.1:9464"; empty = disabled
}

// ColorScheme represents the color scheme source preference.
type ColorScheme string

const (
	ColorSchemeSystem   ColorScheme = "system"
	ColorSchemeTerminal ColorScheme = "terminal"
	ColorSchemeLight    ColorScheme = "light"
	ColorSchemeDark     ColorScheme = "dark"
)

// ValidColorSchemes returns all valid color scheme values.
func ValidColorSchemes() []ColorScheme {
	return []ColorScheme{ColorSchemeSystem, ColorSchemeTerminal, ColorSchemeLight, ColorSchemeDark}
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Analytics: AnalyticsConfig{
			Endpoint:    DefaultEndpoint,
			FlushPeriod: Duration(DefaultFlushPeriod),
			BatchSize:   DefaultBatchSize,
		},
		Theme: ThemeConfig{
			ColorScheme: string(ColorSchemeSystem),
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "phenhance", "config.toml")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path. Files ending in .yaml or
// .yml are decoded as YAML, everything else as TOML. Returns the default
// config (with environment overrides) if the file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	// Start with defaults
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err == nil {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(data, cfg)
		default:
			err = toml.Unmarshal(data, cfg)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyEnv overlays environment variables on the loaded values.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.Analytics.APIKey = v
	}
	if v := os.Getenv(EnvAuthKey); v != "" {
		c.Organization.AuthKey = v
	}
	if v := os.Getenv(EnvReferrer); v != "" {
		c.Session.Referrer = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	validScheme := false
	for _, s := range ValidColorSchemes() {
		if c.Theme.ColorScheme == string(s) {
			validScheme = true
			break
		}
	}
	if !validScheme {
		return fmt.Errorf("invalid color_scheme %q, must be one of: %v", c.Theme.ColorScheme, ValidColorSchemes())
	}

	if c.Analytics.Endpoint != "" {
		if err := validateURL(c.Analytics.Endpoint); err != nil {
			return fmt.Errorf("analytics endpoint: %w", err)
		}
	}
	if c.Organization.BaseURL != "" {
		if err := validateURL(c.Organization.BaseURL); err != nil {
			return fmt.Errorf("organization base_url: %w", err)
		}
	}

	if c.Analytics.BatchSize < 0 {
		return fmt.Errorf("batch_size must not be negative, got %d", c.Analytics.BatchSize)
	}
	if c.Organization.Timeout < 0 {
		return fmt.Errorf("organization timeout must not be negative")
	}

	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme in %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}

// Save writes the configuration as TOML to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	// Config may hold API keys
	return os.WriteFile(path, data, 0600)
}
