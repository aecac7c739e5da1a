package config

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Load reads, defaults, env-overrides and validates a TOML config file.
// A missing file at DefaultPath yields Default().
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && path == DefaultPath {
			cfg := Default()
			ApplyEnvOverrides(cfg)
			return cfg, Validate(cfg)
		}
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	ApplyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if len(cfg.Index.Extensions) == 0 {
		cfg.Index.Extensions = []string{".rs"}
	}

	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 32
	}
	if strings.TrimSpace(cfg.Search.Mode) == "" {
		cfg.Search.Mode = "fuzzy"
	}

	if len(cfg.Watch.Paths) == 0 {
		cfg.Watch.Paths = []string{"."}
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 300 * time.Millisecond
	}
	if len(cfg.Watch.ExcludeDirs) == 0 {
		cfg.Watch.ExcludeDirs = []string{".git", "target", "node_modules"}
	}
	if cfg.Watch.MaxRechecksPerSecond == 0 {
		cfg.Watch.MaxRechecksPerSecond = 4
	}
	if cfg.Watch.Burst == 0 {
		cfg.Watch.Burst = 1
	}

	if strings.TrimSpace(cfg.Observability.LogLevel) == "" {
		cfg.Observability.LogLevel = "info"
	}
}
