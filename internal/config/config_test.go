package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.Anthropic.Model)
	assert.Equal(t, 2048, cfg.Anthropic.MaxTokens)
	assert.Equal(t, 0.1, cfg.Anthropic.Temperature)
	assert.Equal(t, 120, cfg.Anthropic.TimeoutSecs)
	assert.Equal(t, 2.0, cfg.Anthropic.RequestsPerSecond)

	assert.Equal(t, 6000, cfg.Extract.ChunkSize)
	assert.Equal(t, 200, cfg.Extract.ChunkOverlap)
	assert.Equal(t, 3, cfg.Extract.MaxChunks)
	assert.Equal(t, 3, cfg.Extract.MaxConcurrency)

	assert.Equal(t, ReportModeGenerate, cfg.Report.Mode)
	assert.Equal(t, 2048, cfg.Report.MaxTokens)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "analyses.db", cfg.Store.DatabaseURL)

	assert.Equal(t, "reports", cfg.Output.Dir)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(16<<20), cfg.Server.MaxBodyBytes)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverride(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SUMMARY_ANTHROPIC_MODEL", "claude-haiku-4-5-20251001")
	t.Setenv("SUMMARY_REPORT_MODE", ReportModeTemplate)
	t.Setenv("SUMMARY_STORE_DRIVER", "postgres")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	assert.Equal(t, ReportModeTemplate, cfg.Report.Mode)
	assert.Equal(t, "postgres", cfg.Store.Driver)
}

func TestLoad_ConfigFile(t *testing.T) {
	chdirTemp(t)

	wd, err := os.Getwd()
	require.NoError(t, err)
	content := []byte("extract:\n  chunk_size: 9000\nserver:\n  port: 9090\n")
	require.NoError(t, os.WriteFile(filepath.Join(wd, "config.yaml"), content, 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Extract.ChunkSize)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Untouched keys keep defaults.
	assert.Equal(t, 200, cfg.Extract.ChunkOverlap)
}

func TestLoad_MalformedConfigFile(t *testing.T) {
	chdirTemp(t)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(wd, "config.yaml"), []byte("extract: [unclosed"), 0o644))

	_, err = Load()
	require.Error(t, err)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	require.Error(t, InitLogger(LogConfig{Level: "bogus", Format: "json"}))
}
