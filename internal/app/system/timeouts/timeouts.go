// Package timeouts provides centralized timeout values for handler
// operations. Handlers wrap request contexts with these rather than
// scattering literals:
//
//   - Ping: health checks and connectivity verification
//   - Short: single-document reads
//   - Medium: list queries and simple writes
//   - Long: transactions and multi-collection writes
//   - Outbound: calls to the generation backend, payment gateway, and
//     blob storage
package timeouts

import (
	"sync"
	"time"
)

// Default timeout values (used if Configure is not called).
const (
	DefaultPing     = 2 * time.Second
	DefaultShort    = 5 * time.Second
	DefaultMedium   = 10 * time.Second
	DefaultLong     = 30 * time.Second
	DefaultOutbound = 20 * time.Second
)

var mu sync.RWMutex

var (
	ping     = DefaultPing
	short    = DefaultShort
	medium   = DefaultMedium
	long     = DefaultLong
	outbound = DefaultOutbound
)

// Ping returns the timeout for health checks.
func Ping() time.Duration { mu.RLock(); defer mu.RUnlock(); return ping }

// Short returns the timeout for single-document reads.
func Short() time.Duration { mu.RLock(); defer mu.RUnlock(); return short }

// Medium returns the timeout for list queries and simple writes.
func Medium() time.Duration { mu.RLock(); defer mu.RUnlock(); return medium }

// Long returns the timeout for transactions and multi-collection writes.
func Long() time.Duration { mu.RLock(); defer mu.RUnlock(); return long }

// Outbound returns the timeout for calls to external services.
func Outbound() time.Duration { mu.RLock(); defer mu.RUnlock(); return outbound }

// Config holds timeout overrides. Zero values keep the current setting.
type Config struct {
	Ping     time.Duration
	Short    time.Duration
	Medium   time.Duration
	Long     time.Duration
	Outbound time.Duration
}

// Configure applies overrides. Call during startup, before handlers run.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Short > 0 {
		short = cfg.Short
	}
	if cfg.Medium > 0 {
		medium = cfg.Medium
	}
	if cfg.Long > 0 {
		long = cfg.Long
	}
	if cfg.Outbound > 0 {
		outbound = cfg.Outbound
	}
}

// Reset restores defaults. Useful for testing.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping = DefaultPing
	short = DefaultShort
	medium = DefaultMedium
	long = DefaultLong
	outbound = DefaultOutbound
}
