package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvAPIURL, "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:9380", cfg.API.BaseURL)
	assert.Empty(t, cfg.API.Key)
	assert.Equal(t, int64(50*1024*1024), cfg.Ingest.MaxFileSize)
	assert.Equal(t, 1000, cfg.Ingest.MaxPDFPages)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvAPIKey, "secret-key")
	t.Setenv(EnvAPIURL, "http://ragflow.internal:9380")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "secret-key", cfg.API.Key)
	assert.Equal(t, "http://ragflow.internal:9380", cfg.API.BaseURL)
}

func TestLoad_YAMLFile(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvAPIURL, "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
api:
  baseUrl: http://yaml-host:9380
  timeout: 30s
ingest:
  maxFileSize: 1048576
  maxPdfPages: 50
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://yaml-host:9380", cfg.API.BaseURL)
	assert.Equal(t, Duration(30*time.Second), cfg.API.Timeout)
	assert.Equal(t, int64(1048576), cfg.Ingest.MaxFileSize)
	assert.Equal(t, 50, cfg.Ingest.MaxPDFPages)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched sections keep their defaults.
	assert.Equal(t, 4, cfg.Ingest.PreflightWorkers)
}

func TestLoad_EnvWinsOverYAML(t *testing.T) {
	t.Setenv(EnvAPIURL, "http://env-host:9380")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  baseUrl: http://yaml-host:9380\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env-host:9380", cfg.API.BaseURL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
