// Package timeouts holds the per-tier deadlines handlers put on database work.
//
// Three tiers: Ping for health probes, Medium for single-collection ops
// queries, Long for loading a user's history before analytics run.
package timeouts

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPing   = 2 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
)

// Config is one set of tier deadlines.
type Config struct {
	Ping   time.Duration
	Medium time.Duration
	Long   time.Duration
}

func defaults() Config {
	return Config{Ping: DefaultPing, Medium: DefaultMedium, Long: DefaultLong}
}

var current atomic.Pointer[Config]

func init() { Reset() }

func Ping() time.Duration { return current.Load().Ping }
func Medium() time.Duration { return current.Load().Medium }
func Long() time.Duration { return current.Load().Long }

// Current returns a copy of the active deadlines.
func Current() Config { return *current.Load() }

// Configure overrides the tiers set in cfg; zero fields keep their value.
func Configure(cfg Config) {
	next := Current()
	if cfg.Ping > 0 {
		next.Ping = cfg.Ping
	}
	if cfg.Medium > 0 {
		next.Medium = cfg.Medium
	}
	if cfg.Long > 0 {
		next.Long = cfg.Long
	}
	current.Store(&next)
}

// Reset restores the defaults.
func Reset() {
	d := defaults()
	current.Store(&d)
}

// WithTimeout derives a context bounded by timeout. Its cancel func warns on
// log when operation ran out of time.
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if log != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout))
		}
		cancel()
	}
}
