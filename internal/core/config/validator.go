package config

import (
	"fmt"
	"log/slog"
	"strings"

	"crateview/internal/core/errors"

	"github.com/gobwas/glob"
)

// Validate checks a defaulted config and reports the first problem found.
func Validate(cfg *Config) error {
	checks := []func(*Config) error{
		validateIndex,
		validateSearch,
		validateWatch,
		validateObservability,
	}
	for _, check := range checks {
		if err := check(cfg); err != nil {
			return err
		}
	}
	return nil
}

func validateIndex(cfg *Config) error {
	if cfg.Index.Workers < 0 {
		return invalid("index.workers must be >= 0, got %d", cfg.Index.Workers)
	}
	for i, ext := range cfg.Index.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return invalid("index.extensions[%d] must start with '.', got %q", i, ext)
		}
	}
	return nil
}

func validateSearch(cfg *Config) error {
	if cfg.Search.DefaultLimit < 0 {
		return invalid("search.default_limit must be >= 0, got %d", cfg.Search.DefaultLimit)
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Search.Mode)) {
	case "fuzzy", "prefix", "exact":
		return nil
	default:
		return invalid("search.mode must be one of: fuzzy, prefix, exact")
	}
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return invalid("watch.debounce must not be negative")
	}
	if cfg.Watch.MaxRechecksPerSecond < 0 {
		return invalid("watch.max_rechecks_per_second must not be negative")
	}
	if cfg.Watch.Burst < 1 {
		return invalid("watch.burst must be >= 1, got %d", cfg.Watch.Burst)
	}
	for _, pattern := range append(append([]string(nil), cfg.Watch.ExcludeDirs...), cfg.Watch.ExcludeFiles...) {
		if _, err := glob.Compile(pattern); err != nil {
			return errors.Wrap(err, errors.CodeValidationError, fmt.Sprintf("invalid exclude pattern %q", pattern))
		}
	}
	return nil
}

func validateObservability(cfg *Config) error {
	if _, err := ParseLogLevel(cfg.Observability.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLogLevel maps a config level name onto slog.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, invalid("observability.log_level must be one of: debug, info, warn, error")
	}
}

func invalid(format string, args ...any) error {
	return errors.New(errors.CodeValidationError, fmt.Sprintf(format, args...))
}
