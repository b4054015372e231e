// Package timeouts provides the deadlines applied to backend API calls.
//
// Handlers wrap each call to the remote API in context.WithTimeout using one
// of these values so a slow backend degrades one screen instead of tying up
// the request goroutine.
//
//   - Ping: health checks
//   - Short: sign-in calls, single-record lookups, statistics
//   - Medium: list pages and row actions
//   - Long: bulk actions (one request per selected record)
//   - Download: file downloads and spreadsheet/PDF exports
package timeouts

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default values used until Configure is called.
const (
	DefaultPing     = 2 * time.Second
	DefaultShort    = 5 * time.Second
	DefaultMedium   = 10 * time.Second
	DefaultLong     = 30 * time.Second
	DefaultDownload = 60 * time.Second
)

// Config holds timeout values. Zero fields are ignored by Configure.
type Config struct {
	Ping     time.Duration
	Short    time.Duration
	Medium   time.Duration
	Long     time.Duration
	Download time.Duration
}

func defaults() Config {
	return Config{
		Ping:     DefaultPing,
		Short:    DefaultShort,
		Medium:   DefaultMedium,
		Long:     DefaultLong,
		Download: DefaultDownload,
	}
}

var (
	mu      sync.RWMutex
	current = defaults()
)

func get(pick func(Config) time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return pick(current)
}

// Ping returns the timeout for health checks.
func Ping() time.Duration { return get(func(c Config) time.Duration { return c.Ping }) }

// Short returns the timeout for single-record calls.
func Short() time.Duration { return get(func(c Config) time.Duration { return c.Short }) }

// Medium returns the timeout for list loads and row actions.
func Medium() time.Duration { return get(func(c Config) time.Duration { return c.Medium }) }

// Long returns the timeout for bulk actions.
func Long() time.Duration { return get(func(c Config) time.Duration { return c.Long }) }

// Download returns the timeout for downloads and exports.
func Download() time.Duration { return get(func(c Config) time.Duration { return c.Download }) }

// Configure overrides the non-zero fields of cfg. Call during startup.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	merge(&current, cfg)
}

func merge(dst *Config, src Config) {
	if src.Ping > 0 {
		dst.Ping = src.Ping
	}
	if src.Short > 0 {
		dst.Short = src.Short
	}
	if src.Medium > 0 {
		dst.Medium = src.Medium
	}
	if src.Long > 0 {
		dst.Long = src.Long
	}
	if src.Download > 0 {
		dst.Download = src.Download
	}
}

// Reset restores the defaults. Used by tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	current = defaults()
}

// Current returns the active configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// ConfigureFromEnv reads MODCONSOLE_TIMEOUT_{PING,SHORT,MEDIUM,LONG,DOWNLOAD}
// as Go durations ("2s", "500ms"). Unset or invalid values are skipped.
// Returns how many values were applied.
func ConfigureFromEnv() int {
	var cfg Config
	n := 0
	for name, dst := range map[string]*time.Duration{
		"MODCONSOLE_TIMEOUT_PING":     &cfg.Ping,
		"MODCONSOLE_TIMEOUT_SHORT":    &cfg.Short,
		"MODCONSOLE_TIMEOUT_MEDIUM":   &cfg.Medium,
		"MODCONSOLE_TIMEOUT_LONG":     &cfg.Long,
		"MODCONSOLE_TIMEOUT_DOWNLOAD": &cfg.Download,
	} {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*dst = d
			n++
		}
	}
	Configure(cfg)
	return n
}

// WithTimeout is context.WithTimeout whose cancel func logs a warning when
// the deadline was hit, naming the operation.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "load venues")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if log != nil && ctx.Err() == context.DeadlineExceeded {
			log.Warn("backend call timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout))
		}
		cancel()
	}
}
