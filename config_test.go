package spool_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpasecinic/spool"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := spool.DefaultConfig()
	assert.True(t, cfg.ResolverCache)
	assert.True(t, cfg.DetectCycles)
	assert.Equal(t, 256, cfg.MaxDepth)
	require.NoError(t, cfg.Validate())

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestParseConfig(t *testing.T) {
	t.Parallel()

	cfg, err := spool.ParseConfig([]byte("log_level: debug\nresolver_cache: false\nmax_depth: 16\n"))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.ResolverCache)
	assert.True(t, cfg.DetectCycles, "unset fields keep their defaults")
	assert.Equal(t, 16, cfg.MaxDepth)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestParseConfigInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{"malformed", "max_depth: [1, 2"},
		{"negative depth", "max_depth: -1"},
		{"unknown level", "log_level: loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := spool.ParseConfig([]byte(tt.data))
			require.Error(t, err)
			assert.True(t, spool.IsConfigInvalid(err))
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "spool.yaml", "detect_cycles: false\nmax_depth: 8\n")

	cfg, err := spool.LoadConfig(path)
	require.NoError(t, err)
	assert.False(t, cfg.DetectCycles)
	assert.Equal(t, 8, cfg.MaxDepth)
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Parallel()

	_, err := spool.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, spool.IsConfigInvalid(err))
}

func TestLoadConfigEnvFile(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "spool.yaml", "max_depth: 8\n")
	envFile := writeFile(t, ".env", "SPOOL_MAX_DEPTH=32\nSPOOL_RESOLVER_CACHE=false\nSPOOL_LOG_LEVEL=warn\n")

	cfg, err := spool.LoadConfig(path, envFile)
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.MaxDepth)
	assert.False(t, cfg.ResolverCache)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadConfigEnvFileInvalid(t *testing.T) {
	t.Parallel()

	envFile := writeFile(t, ".env", "SPOOL_DETECT_CYCLES=maybe\n")

	_, err := spool.LoadConfig("", envFile)
	require.Error(t, err)
	assert.True(t, spool.IsConfigInvalid(err))
}

func TestLoadConfigProcessEnvWins(t *testing.T) {
	t.Setenv(spool.EnvMaxDepth, "4")
	t.Setenv(spool.EnvLogLevel, "error")

	envFile := writeFile(t, ".env", "SPOOL_MAX_DEPTH=32\n")

	cfg, err := spool.LoadConfig("", envFile)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.MaxDepth)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestWithConfigDisablesResolverCache(t *testing.T) {
	t.Parallel()

	cfg := spool.DefaultConfig()
	cfg.ResolverCache = false
	cfg.LogLevel = "error"

	c := newContainer(t, spool.WithConfig(cfg))
	reg := spool.MustProvideValue(c, &Config{Port: 1})
	assert.True(t, spool.Has[*Config](c))

	require.NoError(t, reg.Close())
	assert.False(t, spool.Has[*Config](c))
}
