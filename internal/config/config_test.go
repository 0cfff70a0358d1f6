package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvAuthKey, "")
	t.Setenv(EnvReferrer, "")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DefaultEndpoint, cfg.Analytics.Endpoint)
	assert.Equal(t, DefaultFlushPeriod, cfg.Analytics.FlushPeriod.Duration())
	assert.Equal(t, DefaultBatchSize, cfg.Analytics.BatchSize)
	assert.Empty(t, cfg.Analytics.APIKey)
	assert.Empty(t, cfg.Organization.AuthKey)
	assert.Equal(t, "system", cfg.Theme.ColorScheme)
	assert.Empty(t, cfg.Metrics.Listen)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_DefaultsWhenNoFile(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig("/nonexistent/path/config.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_ParsesTOML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")

	content := `
[analytics]
api_key = "phc_abc"
endpoint = "https://eu.i.posthog.com"
flush_period = "10s"
batch_size = 10

[organization]
base_url = "https://www.example.com"
auth_key = "secret"
timeout = "2500"

[theme]
color_scheme = "dark"

[session]
referrer = "https://search.example.org/"

[metrics]
listen = "127.0.0.1:9464"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "phc_abc", cfg.Analytics.APIKey)
	assert.Equal(t, "https://eu.i.posthog.com", cfg.Analytics.Endpoint)
	assert.Equal(t, 10*time.Second, cfg.Analytics.FlushPeriod.Duration())
	assert.Equal(t, 10, cfg.Analytics.BatchSize)
	assert.Equal(t, "https://www.example.com", cfg.Organization.BaseURL)
	assert.Equal(t, "secret", cfg.Organization.AuthKey)
	assert.Equal(t, 2500*time.Millisecond, cfg.Organization.Timeout.Duration())
	assert.Equal(t, "dark", cfg.Theme.ColorScheme)
	assert.Equal(t, "https://search.example.org/", cfg.Session.Referrer)
	assert.Equal(t, "127.0.0.1:9464", cfg.Metrics.Listen)
}

func TestLoadConfig_ParsesYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")

	content := `
analytics:
  api_key: phc_yaml
  flush_period: 1m
organization:
  base_url: http://localhost:8080
  timeout: 3s
theme:
  color_scheme: terminal
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "phc_yaml", cfg.Analytics.APIKey)
	assert.Equal(t, time.Minute, cfg.Analytics.FlushPeriod.Duration())
	assert.Equal(t, DefaultEndpoint, cfg.Analytics.Endpoint, "unset keys keep defaults")
	assert.Equal(t, "http://localhost:8080", cfg.Organization.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Organization.Timeout.Duration())
	assert.Equal(t, "terminal", cfg.Theme.ColorScheme)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[analytics]\napi_key = \"from-file\"\n"), 0644))

	t.Setenv(EnvAPIKey, "from-env")
	t.Setenv(EnvAuthKey, "auth-env")
	t.Setenv(EnvReferrer, "launcher")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Analytics.APIKey)
	assert.Equal(t, "auth-env", cfg.Organization.AuthKey)
	assert.Equal(t, "launcher", cfg.Session.Referrer)
}

func TestLoadConfig_Invalid(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name    string
		content string
	}{
		{"bad toml", "[analytics\n"},
		{"bad color scheme", "[theme]\ncolor_scheme = \"sepia\"\n"},
		{"bad endpoint", "[analytics]\nendpoint = \"ftp://example.com\"\n"},
		{"bad base url", "[organization]\nbase_url = \"not a url\"\n"},
		{"bad duration", "[organization]\ntimeout = \"soon\"\n"},
		{"negative batch", "[analytics]\nbatch_size = -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := LoadConfig(path)
			require.Error(t, err)
		})
	}
}

func TestConfigSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := DefaultConfig()
	cfg.Organization.BaseURL = "https://www.example.com"
	cfg.Theme.ColorScheme = "light"
	require.NoError(t, cfg.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestConfigPath_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, "/tmp/xdg/phenhance/config.toml", ConfigPath())
}
