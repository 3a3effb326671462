// Package config holds the simulator's tunable constants and an optional
// YAML loader for overriding them. The zero value of
// Config is not meaningful; use Default() and optionally apply a loaded
// file over it.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config mirrors the simulator's named constants. All durations are
// milliseconds, matching the rest of the core's timer arithmetic.
type Config struct {
	// RouteRefreshMillis is DEFAULT_ROUTE_REFRESH.
	RouteRefreshMillis int64 `yaml:"route_refresh_millis"`

	// ForwardingTimeoutMillis is DEFAULT_FORWARDING_TIMEOUT.
	ForwardingTimeoutMillis int64 `yaml:"forwarding_timeout_millis"`

	// DefaultTTL is DEFAULT_TTL.
	DefaultTTL uint8 `yaml:"default_ttl"`

	// MessageCacheSize is MSG_CACHE_SIZE.
	MessageCacheSize int `yaml:"message_cache_size"`

	// PendingQueueSize is PENDING_PACKET_QUEUE_SIZE.
	PendingQueueSize int `yaml:"pending_queue_size"`

	// TickIntervalMillis is how often the scheduler scans nodes for due timers,
	// in milliseconds. Exposed here so tests can run the scheduler faster
	// than real time.
	TickIntervalMillis int64 `yaml:"tick_interval_millis"`
}

// Default returns the simulator's mandated defaults.
func Default() Config {
	return Config{
		RouteRefreshMillis:      500,
		ForwardingTimeoutMillis: 1500,
		DefaultTTL:              32,
		MessageCacheSize:        2048,
		PendingQueueSize:        256,
		TickIntervalMillis:      1,
	}
}

// LoadYAML reads an optional override file at path and applies any fields
// it sets on top of Default(). A missing file is not an error: these knobs
// are optionally exposed as configuration, so absence just means "use the
// defaults". A present-but-malformed file is an error.
func LoadYAML(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	var override Config
	if err := yaml.Unmarshal(data, &override); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	applyOverride(&cfg, &override, data)
	return cfg, nil
}

// applyOverride merges fields present in the YAML document into cfg. yaml.v3
// zero-values absent fields, so it re-parses into a map to distinguish
// "explicitly set to zero" from "not present in the document" for the
// integer fields, where zero is never a sensible simulator value anyway.
func applyOverride(cfg *Config, override *Config, raw []byte) {
	var present map[string]any
	// Best-effort: if this fails the override values (already zero-defaulted
	// by yaml.Unmarshal for missing keys) are simply not applied, which is
	// the safe direction.
	_ = yaml.Unmarshal(raw, &present)

	if _, ok := present["route_refresh_millis"]; ok {
		cfg.RouteRefreshMillis = override.RouteRefreshMillis
	}
	if _, ok := present["forwarding_timeout_millis"]; ok {
		cfg.ForwardingTimeoutMillis = override.ForwardingTimeoutMillis
	}
	if _, ok := present["default_ttl"]; ok {
		cfg.DefaultTTL = override.DefaultTTL
	}
	if _, ok := present["message_cache_size"]; ok {
		cfg.MessageCacheSize = override.MessageCacheSize
	}
	if _, ok := present["pending_queue_size"]; ok {
		cfg.PendingQueueSize = override.PendingQueueSize
	}
	if _, ok := present["tick_interval_millis"]; ok {
		cfg.TickIntervalMillis = override.TickIntervalMillis
	}
}
