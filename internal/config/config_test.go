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

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"JOBS_DB_PATH", "HISTORY_DB_PATH", "LISTEN_ADDR", "LOG_LEVEL", "ENV",
		"CANDIDATE_OVERRIDES_PATH", "CACHE_SWEEP_SCHEDULE",
		"SCHEMA_CACHE_TTL", "RESULT_CACHE_TTL",
		"DEFAULT_CAP_PERCENTILE", "DEFAULT_BIN_COUNT", "MAX_SAMPLE_ROWS",
		"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadFromEnvDefaults(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("JOBS_DB_PATH", "/data/jobs.duckdb")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "/data/jobs.duckdb", cfg.JobsDBPath)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30*time.Minute, cfg.SchemaTTL)
	assert.Equal(t, 5*time.Minute, cfg.ResultTTL)
	assert.Equal(t, "*/5 * * * *", cfg.SweepSchedule)
	assert.Equal(t, 0.95, cfg.DefaultPercentile)
	assert.Equal(t, 50, cfg.DefaultBinCount)
	assert.Equal(t, 300000, cfg.MaxSampleRows)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnvRequiresJobsDBPath(t *testing.T) {
	clearConfigEnv(t)

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JOBS_DB_PATH")
}

func TestLoadFromEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("JOBS_DB_PATH", "/data/jobs.duckdb")
	t.Setenv("SCHEMA_CACHE_TTL", "1h")
	t.Setenv("RESULT_CACHE_TTL", "90s")
	t.Setenv("DEFAULT_CAP_PERCENTILE", "0.9")
	t.Setenv("DEFAULT_BIN_COUNT", "25")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, time.Hour, cfg.SchemaTTL)
	assert.Equal(t, 90*time.Second, cfg.ResultTTL)
	assert.Equal(t, 0.9, cfg.DefaultPercentile)
	assert.Equal(t, 25, cfg.DefaultBinCount)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoadFromEnvRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"SCHEMA_CACHE_TTL":       "not-a-duration",
		"DEFAULT_CAP_PERCENTILE": "1.5",
		"DEFAULT_BIN_COUNT":      "-3",
		"MAX_SAMPLE_ROWS":        "zero",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			clearConfigEnv(t)
			t.Setenv("JOBS_DB_PATH", "/data/jobs.duckdb")
			t.Setenv(key, val)

			_, err := LoadFromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestProductionRejectsCORSWildcard(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("JOBS_DB_PATH", "/data/jobs.duckdb")
	t.Setenv("ENV", "production")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CORS")

	t.Setenv("CORS_ALLOWED_ORIGINS", "https://dashboard.example")
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, (&Config{LogLevel: "debug"}).SlogLevel())
	assert.Equal(t, slog.LevelWarn, (&Config{LogLevel: "WARN"}).SlogLevel())
	assert.Equal(t, slog.LevelError, (&Config{LogLevel: "error"}).SlogLevel())
	assert.Equal(t, slog.LevelInfo, (&Config{LogLevel: "anything"}).SlogLevel())
}

func TestLoadDotEnv(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"# comment\n"+
			"JOBS_DB_PATH=/data/jobs.duckdb\n"+
			"LOG_LEVEL=\"debug\"\n"+
			"LISTEN_ADDR=':9090'\n"+
			"malformed line without equals\n",
	), 0o600))

	t.Setenv("LOG_LEVEL", "warn")
	require.NoError(t, LoadDotEnv(path))

	assert.Equal(t, "/data/jobs.duckdb", os.Getenv("JOBS_DB_PATH"))
	// Existing environment wins over the file.
	assert.Equal(t, "warn", os.Getenv("LOG_LEVEL"))
	assert.Equal(t, ":9090", os.Getenv("LISTEN_ADDR"))
}

func TestLoadDotEnvMissingFileIsNotAnError(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
}
