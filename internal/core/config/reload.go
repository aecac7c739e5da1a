package config

import "slices"

// Changes lists the settings that differ between two configurations, split
// by whether a running watch session can apply them. Names are the TOML keys.
type Changes struct {
	Reloadable []string
	Restart    []string
}

// Empty reports whether nothing differs.
func (c Changes) Empty() bool {
	return len(c.Reloadable) == 0 && len(c.Restart) == 0
}

// Diff compares old and next. Search defaults and watch pacing take effect on
// the next recheck; anything that shapes the loaded file set or the process
// wiring needs a restart.
func Diff(old, next *Config) Changes {
	var c Changes
	reload := func(name string, changed bool) {
		if changed {
			c.Reloadable = append(c.Reloadable, name)
		}
	}
	restart := func(name string, changed bool) {
		if changed {
			c.Restart = append(c.Restart, name)
		}
	}

	reload("search.mode", old.Search.Mode != next.Search.Mode)
	reload("search.default_limit", old.Search.DefaultLimit != next.Search.DefaultLimit)
	reload("watch.debounce", old.Watch.Debounce != next.Watch.Debounce)
	reload("watch.max_rechecks_per_second", old.Watch.MaxRechecksPerSecond != next.Watch.MaxRechecksPerSecond)
	reload("watch.burst", old.Watch.Burst != next.Watch.Burst)

	restart("index.workers", old.Index.Workers != next.Index.Workers)
	restart("index.extensions", !slices.Equal(old.Index.Extensions, next.Index.Extensions))
	restart("watch.paths", !slices.Equal(old.Watch.Paths, next.Watch.Paths))
	restart("watch.exclude_dirs", !slices.Equal(old.Watch.ExcludeDirs, next.Watch.ExcludeDirs))
	restart("watch.exclude_files", !slices.Equal(old.Watch.ExcludeFiles, next.Watch.ExcludeFiles))
	restart("observability.log_level", old.Observability.LogLevel != next.Observability.LogLevel)
	restart("observability.metrics_addr", old.Observability.MetricsAddr != next.Observability.MetricsAddr)
	restart("observability.otlp_endpoint", old.Observability.OTLPEndpoint != next.Observability.OTLPEndpoint)
	return c
}

// withReloadable returns a copy of c with the reloadable settings of next.
func (c *Config) withReloadable(next *Config) *Config {
	out := *c
	out.Search = next.Search
	out.Watch.Debounce = next.Watch.Debounce
	out.Watch.MaxRechecksPerSecond = next.Watch.MaxRechecksPerSecond
	out.Watch.Burst = next.Watch.Burst
	return &out
}
