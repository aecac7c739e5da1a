package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: CRATEVIEW_[SECTION]_[KEY] (e.g., CRATEVIEW_INDEX_WORKERS).
func ApplyEnvOverrides(cfg *Config) {
	setEnvInt(&cfg.Index.Workers, "CRATEVIEW_INDEX_WORKERS")

	setEnvInt(&cfg.Search.DefaultLimit, "CRATEVIEW_SEARCH_DEFAULT_LIMIT")
	setEnvString(&cfg.Search.Mode, "CRATEVIEW_SEARCH_MODE")

	setEnvDuration(&cfg.Watch.Debounce, "CRATEVIEW_WATCH_DEBOUNCE")
	setEnvFloat64(&cfg.Watch.MaxRechecksPerSecond, "CRATEVIEW_WATCH_MAX_RECHECKS_PER_SECOND")

	setEnvString(&cfg.Observability.LogLevel, "CRATEVIEW_OBSERVABILITY_LOG_LEVEL")
	setEnvString(&cfg.Observability.MetricsAddr, "CRATEVIEW_OBSERVABILITY_METRICS_ADDR")
	setEnvString(&cfg.Observability.OTLPEndpoint, "CRATEVIEW_OBSERVABILITY_OTLP_ENDPOINT")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = f
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(val)); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
