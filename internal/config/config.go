// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the configuration for the analytics server and CLI.
type Config struct {
	JobsDBPath    string        // path to the read-only DuckDB job-postings database
	HistoryDBPath string        // path to the SQLite query-history metastore ("" disables history)
	ListenAddr    string        // HTTP listen address (default ":8080")
	LogLevel      string        // log level: debug, info, warn, error (default "info")
	Env           string        // environment: "development" (default) or "production"
	CandidatePath string        // optional YAML file overriding candidate-name lists
	SchemaTTL     time.Duration // schema-probe and filter-option cache window (default 30m)
	ResultTTL     time.Duration // aggregation-result cache window (default 5m)
	SweepSchedule string        // cron spec for the cache sweep job (default "*/5 * * * *")

	// Request defaults and guardrails.
	DefaultPercentile float64 // default heatmap cap percentile (default 0.95)
	DefaultBinCount   int     // default heatmap bin count (default 50)
	MaxSampleRows     int     // hard cap on detail-sample rows (default 300000)

	// Rate limiting
	RateLimitRPS   float64 // sustained requests per second (default 100)
	RateLimitBurst int     // burst capacity (default 200)

	// CORS
	CORSAllowedOrigins []string // allowed origins for CORS (default: ["*"])

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		JobsDBPath:    os.Getenv("JOBS_DB_PATH"),
		HistoryDBPath: os.Getenv("HISTORY_DB_PATH"),
		ListenAddr:    os.Getenv("LISTEN_ADDR"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		Env:           os.Getenv("ENV"),
		CandidatePath: os.Getenv("CANDIDATE_OVERRIDES_PATH"),
		SweepSchedule: os.Getenv("CACHE_SWEEP_SCHEDULE"),
	}

	if v := os.Getenv("SCHEMA_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SCHEMA_CACHE_TTL %q: %w", v, err)
		}
		cfg.SchemaTTL = d
	}
	if v := os.Getenv("RESULT_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid RESULT_CACHE_TTL %q: %w", v, err)
		}
		cfg.ResultTTL = d
	}

	if v := os.Getenv("DEFAULT_CAP_PERCENTILE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f >= 1 {
			return nil, fmt.Errorf("invalid DEFAULT_CAP_PERCENTILE %q: must be a number in [0, 1)", v)
		}
		cfg.DefaultPercentile = f
	}
	if v := os.Getenv("DEFAULT_BIN_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid DEFAULT_BIN_COUNT %q: must be a positive integer", v)
		}
		cfg.DefaultBinCount = n
	}
	if v := os.Getenv("MAX_SAMPLE_ROWS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid MAX_SAMPLE_ROWS %q: must be a positive integer", v)
		}
		cfg.MaxSampleRows = n
	}

	// Rate limiting
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = f
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitBurst = n
		}
	}

	// CORS
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORSAllowedOrigins = origins
	}

	// Defaults
	if cfg.JobsDBPath == "" {
		return nil, fmt.Errorf("JOBS_DB_PATH must be set")
	}
	if cfg.HistoryDBPath == "" {
		cfg.HistoryDBPath = "sgjobs_history.sqlite"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.SchemaTTL == 0 {
		cfg.SchemaTTL = 30 * time.Minute
	}
	if cfg.ResultTTL == 0 {
		cfg.ResultTTL = 5 * time.Minute
	}
	if cfg.SweepSchedule == "" {
		cfg.SweepSchedule = "*/5 * * * *"
	}
	if cfg.DefaultPercentile == 0 {
		cfg.DefaultPercentile = 0.95
	}
	if cfg.DefaultBinCount == 0 {
		cfg.DefaultBinCount = 50
	}
	if cfg.MaxSampleRows == 0 {
		cfg.MaxSampleRows = 300000
	}
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 100
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 200
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	// Production mode: loose defaults become warnings worth surfacing.
	if cfg.IsProduction() {
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
	}

	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from a .env file into the process
// environment. Existing environment variables take precedence. A missing
// file is not an error.
func LoadDotEnv(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes one layer of matching single or double quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
