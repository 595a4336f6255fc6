package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
env: prod
log_level: debug
timezone: Europe/Madrid
http_server:
  address: ":9090"
  request_timeout: 3s
  idle_timeout: 30s
  shutdown_timeout: 2s
form:
  base_path: /reports
  assets_path: /static
  templates_dir: ./templates
  success_url: /results
  csrf:
    field: _csrf
    key: 0123456789abcdef0123456789abcdef
    secure: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, ":9090", cfg.Address)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 30*time.Second, cfg.IdleTimeout)
	assert.Equal(t, 2*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "/reports", cfg.BasePath)
	assert.Equal(t, "/static", cfg.AssetsPath)
	assert.Equal(t, "./templates", cfg.TemplatesDir)
	assert.Equal(t, "/results", cfg.SuccessURL)
	assert.Equal(t, "_csrf", cfg.CSRF.Field)
	assert.True(t, cfg.CSRF.Enabled())
	assert.False(t, cfg.CSRF.Secure)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Madrid", loc.String())
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "env: test\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, ":8080", cfg.Address)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 60*time.Second, cfg.IdleTimeout)
	assert.Equal(t, "/search", cfg.BasePath)
	assert.Equal(t, "/assets", cfg.AssetsPath)
	assert.Equal(t, "", cfg.SuccessURL)
	assert.False(t, cfg.CSRF.Enabled())
	assert.True(t, cfg.CSRF.Secure)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("DATERANGE_ADDRESS", ":7070")
	t.Setenv("DATERANGE_BASE_PATH", "/dates")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Address)
	assert.Equal(t, "/dates", cfg.BasePath)
	assert.Equal(t, "local", cfg.Env)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := writeConfig(t, "timezone: Mars/Olympus\n")
	_, err = Load(path)
	assert.Error(t, err)
}

func TestLoad_CSRFKeyRequired(t *testing.T) {
	path := writeConfig(t, "form:\n  csrf:\n    field: _csrf\n    key: short\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csrf key")

	t.Setenv("DATERANGE_CSRF_FIELD", "_csrf")
	t.Setenv("DATERANGE_CSRF_KEY", "0123456789abcdef0123456789abcdef")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "_csrf", cfg.CSRF.Field)
}

func TestSlogLevel_Unknown(t *testing.T) {
	cfg := &Config{LogLevel: "loud"}
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}
