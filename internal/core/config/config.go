package config

import "time"

const DefaultPath = "./crateview.toml"

type Config struct {
	Index         Index         `toml:"index"`
	Search        Search        `toml:"search"`
	Watch         Watch         `toml:"watch"`
	Observability Observability `toml:"observability"`
}

type Index struct {
	// Workers bounds the reindex fan-out. Zero means GOMAXPROCS.
	Workers    int      `toml:"workers"`
	Extensions []string `toml:"extensions"`
}

type Search struct {
	DefaultLimit int    `toml:"default_limit"`
	Mode         string `toml:"mode"` // fuzzy, prefix, exact
}

type Watch struct {
	Paths                []string      `toml:"paths"`
	Debounce             time.Duration `toml:"debounce"`
	ExcludeDirs          []string      `toml:"exclude_dirs"`
	ExcludeFiles         []string      `toml:"exclude_files"`
	MaxRechecksPerSecond float64       `toml:"max_rechecks_per_second"`
	Burst                int           `toml:"burst"`
}

type Observability struct {
	LogLevel     string `toml:"log_level"`
	MetricsAddr  string `toml:"metrics_addr"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
