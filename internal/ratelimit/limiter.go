// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package ratelimit provides token-bucket limiters keyed by an arbitrary string.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"
)

var rateLimitExceeded = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "avalon",
		Name:      "ratelimit_exceeded_total",
		Help:      "Total rate limit rejections",
	},
	[]string{"scope"},
)

// Config holds the limits applied to every key.
type Config struct {
	// Rate is the sustained events per second. Zero or less disables limiting.
	Rate rate.Limit
	// Burst is the bucket size.
	Burst int
	// IdleTTL drops the bucket of a key unused for this long.
	IdleTTL time.Duration
}

// DefaultConfig allows one event per second per key with a burst of five.
func DefaultConfig() Config {
	return Config{
		Rate:    1,
		Burst:   5,
		IdleTTL: 10 * time.Minute,
	}
}

type bucket struct {
	lim      *rate.Limiter
	lastUsed time.Time
}

// Keyed holds one limiter per key.
type Keyed struct {
	scope  string
	config Config
	now    func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

// NewKeyed creates a limiter set. scope labels the rejection metric.
func NewKeyed(scope string, config Config) *Keyed {
	if config.Burst <= 0 {
		config.Burst = 1
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = DefaultConfig().IdleTTL
	}
	return &Keyed{
		scope:     scope,
		config:    config,
		now:       time.Now,
		buckets:   make(map[string]*bucket),
		lastSweep: time.Now(),
	}
}

// Allow reports whether key may act now, consuming a token if so.
func (k *Keyed) Allow(key string) bool {
	if k.unlimited() {
		return true
	}
	if !k.limiter(key).Allow() {
		rateLimitExceeded.WithLabelValues(k.scope).Inc()
		return false
	}
	return true
}

// Wait blocks until key may act or ctx ends.
func (k *Keyed) Wait(ctx context.Context, key string) error {
	if k.unlimited() {
		return ctx.Err()
	}
	if err := k.limiter(key).Wait(ctx); err != nil {
		rateLimitExceeded.WithLabelValues(k.scope).Inc()
		return err
	}
	return nil
}

// Len returns the number of tracked keys.
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.buckets)
}

func (k *Keyed) unlimited() bool { return k.config.Rate <= 0 }

func (k *Keyed) limiter(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	k.sweepLocked(now)
	b, ok := k.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(k.config.Rate, k.config.Burst)}
		k.buckets[key] = b
	}
	b.lastUsed = now
	return b.lim
}

// sweepLocked drops idle buckets at most once per IdleTTL.
func (k *Keyed) sweepLocked(now time.Time) {
	if now.Sub(k.lastSweep) < k.config.IdleTTL {
		return
	}
	for key, b := range k.buckets {
		if now.Sub(b.lastUsed) >= k.config.IdleTTL {
			delete(k.buckets, key)
		}
	}
	k.lastSweep = now
}
