package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flibproxy/internal/catalog"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flibproxy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// переменные из окружения разработчика не должны влиять на тесты
func clearEnv(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir()) // без .env
	for _, k := range []string{"PORT", "FLIBPROXY_PORT", "FLIBPROXY_BASE_URL", "FLIBPROXY_TIMEOUT",
		"FLIBPROXY_MAX_BOOKS", "FLIBPROXY_LOG_LEVEL", "FLIBPROXY_METRICS_PORT", "FLIBPROXY_GATEWAY_URL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), false)
	require.NoError(t, err)

	assert.Equal(t, catalog.DefaultBaseURL, cfg.Catalog.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, 10, cfg.Catalog.MaxBooks)
	assert.Equal(t, []string{"fb2", "epub", "mobi", "pdf", "txt"}, cfg.Catalog.FormatPriority)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, ":3000", cfg.Server.Address())
}

func TestLoadMissingRequired(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), true)
	assert.Error(t, err)
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
catalog:
  base_url: https://mirror.example.org
  timeout: 5s
  max_books: 3
  format_priority: [epub, fb2]
  headers:
    User-Agent: flibproxy-test
server:
  host: 127.0.0.1
  port: 8080
metrics:
  port: 9100
logging:
  level: debug
`)
	cfg, err := Load(path, true)
	require.NoError(t, err)

	assert.Equal(t, "https://mirror.example.org", cfg.Catalog.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, 3, cfg.Catalog.MaxBooks)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Address())
	assert.Equal(t, "127.0.0.1:9100", cfg.Metrics.Address(cfg.Server.Host))
	assert.Equal(t, "debug", cfg.Logging.Level)
	// не тронутое в файле остается по умолчанию
	assert.Equal(t, "public", cfg.Server.StaticDir)

	opts := cfg.Catalog.Options()
	assert.Equal(t, []string{"epub", "fb2"}, opts.FormatPriority)
	assert.Equal(t, "flibproxy-test", opts.Headers["User-Agent"])
	assert.Equal(t, "gzip, deflate", opts.Headers["Accept-Encoding"])
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "server:\n  port: 8080\n")

	t.Setenv("PORT", "4000")
	cfg, err := Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Server.Port)

	t.Setenv("FLIBPROXY_PORT", "5000")
	t.Setenv("FLIBPROXY_BASE_URL", "http://localhost:9999")
	t.Setenv("FLIBPROXY_TIMEOUT", "2s")
	t.Setenv("FLIBPROXY_MAX_BOOKS", "20")
	cfg, err = Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "http://localhost:9999", cfg.Catalog.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, 20, cfg.Catalog.MaxBooks)
}

func TestEnvBadPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "http")
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), false)
	assert.Error(t, err)
}

func TestDotEnv(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.WriteFile(".env", []byte("FLIBPROXY_MAX_BOOKS=7\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("FLIBPROXY_MAX_BOOKS") })

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), false)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Catalog.MaxBooks)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty_base_url", func(c *Config) { c.Catalog.BaseURL = "" }},
		{"zero_timeout", func(c *Config) { c.Catalog.Timeout = 0 }},
		{"zero_max_books", func(c *Config) { c.Catalog.MaxBooks = 0 }},
		{"port_range", func(c *Config) { c.Server.Port = 70000 }},
		{"metrics_port_range", func(c *Config) { c.Metrics.Port = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestPath(t *testing.T) {
	t.Setenv(PathEnv, "")
	p, explicit := Path()
	assert.Equal(t, DefaultPath, p)
	assert.False(t, explicit)

	t.Setenv(PathEnv, "/etc/flibproxy.yaml")
	p, explicit = Path()
	assert.Equal(t, "/etc/flibproxy.yaml", p)
	assert.True(t, explicit)
}
