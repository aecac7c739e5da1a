package config

import (
	"log/slog"
	"testing"

	"crateview/internal/core/errors"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLogLevel(in)
		if err != nil {
			t.Fatalf("ParseLogLevel(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := ParseLogLevel("trace"); !errors.IsCode(err, errors.CodeValidationError) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidate_DefaultIsValid(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidate_WatchLimits(t *testing.T) {
	cfg := Default()
	cfg.Watch.Burst = 0
	if err := Validate(cfg); !errors.IsCode(err, errors.CodeValidationError) {
		t.Fatalf("expected burst validation error, got %v", err)
	}

	cfg = Default()
	cfg.Watch.MaxRechecksPerSecond = -1
	if err := Validate(cfg); !errors.IsCode(err, errors.CodeValidationError) {
		t.Fatalf("expected rate validation error, got %v", err)
	}

	cfg = Default()
	cfg.Search.DefaultLimit = -5
	if err := Validate(cfg); !errors.IsCode(err, errors.CodeValidationError) {
		t.Fatalf("expected limit validation error, got %v", err)
	}
}
