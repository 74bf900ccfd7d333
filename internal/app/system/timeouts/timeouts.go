// Package timeouts holds the process-wide timeout values used around I/O.
//
// Handlers never call the backend or Mongo without one of these. Values
// start at the defaults below and may be overridden once at startup with
// Configure or ConfigureFromEnv.
//
// Which one to use:
//   - Ping: health checks against the backend and Mongo
//   - Short: single audit writes and other small Mongo operations
//   - Backend: every call to the retreat REST backend
//   - Medium: audit queries for the admin activity page
package timeouts

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default timeout values (used if Configure is not called).
const (
	DefaultPing    = 2 * time.Second
	DefaultShort   = 5 * time.Second
	DefaultBackend = 10 * time.Second
	DefaultMedium  = 10 * time.Second
)

var mu sync.RWMutex

var (
	ping    = DefaultPing
	short   = DefaultShort
	backend = DefaultBackend
	medium  = DefaultMedium
)

// Ping returns the timeout for health checks.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Short returns the timeout for single small Mongo operations.
func Short() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return short
}

// Backend returns the per-call timeout for the retreat backend.
func Backend() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Medium returns the timeout for list queries.
func Medium() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return medium
}

// Config holds timeout configuration values.
// Zero values are ignored (defaults are kept).
type Config struct {
	Ping    time.Duration
	Short   time.Duration
	Backend time.Duration
	Medium  time.Duration
}

// Configure sets custom timeout values. Zero values in the config are
// ignored, keeping the current values. Call it during startup before
// handlers are built.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Short > 0 {
		short = cfg.Short
	}
	if cfg.Backend > 0 {
		backend = cfg.Backend
	}
	if cfg.Medium > 0 {
		medium = cfg.Medium
	}
}

// Reset restores all timeouts to their default values.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping = DefaultPing
	short = DefaultShort
	backend = DefaultBackend
	medium = DefaultMedium
}

// ConfigureFromEnv reads TIMEOUT_PING, TIMEOUT_SHORT, TIMEOUT_BACKEND and
// TIMEOUT_MEDIUM (Go durations such as "500ms" or "15s"). Unset or invalid
// values are skipped. Returns how many were applied.
func ConfigureFromEnv() int {
	mu.Lock()
	defer mu.Unlock()

	configured := 0
	for _, e := range []struct {
		name string
		dst  *time.Duration
	}{
		{"TIMEOUT_PING", &ping},
		{"TIMEOUT_SHORT", &short},
		{"TIMEOUT_BACKEND", &backend},
		{"TIMEOUT_MEDIUM", &medium},
	} {
		v := os.Getenv(e.name)
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*e.dst = d
			configured++
		}
	}
	return configured
}

// Current returns the current timeout configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{
		Ping:    ping,
		Short:   short,
		Backend: backend,
		Medium:  medium,
	}
}

// WithTimeout creates a context with timeout and returns a cancel function
// that logs a warning if the context ended because the deadline passed.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Backend(), h.Log, "backend lookup")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
