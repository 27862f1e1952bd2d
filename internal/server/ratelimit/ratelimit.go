// Package ratelimit throttles API clients with a cost-weighted token bucket.
// Every client gets one budget bucket; each endpoint draws a cost from it
// proportional to the downstream work it triggers, so one evidence refresh
// weighs as much as dozens of searches.
package ratelimit

import (
	"sync"
	"time"
)

// bucket is a token bucket refilled continuously against an injected clock.
type bucket struct {
	capacity     float64
	refillPerSec float64
	tokens       float64
	last         time.Time
	mu           sync.Mutex
}

func newBucket(capacity int, refillPerSec float64, now time.Time) *bucket {
	return &bucket{
		capacity:     float64(capacity),
		refillPerSec: refillPerSec,
		tokens:       float64(capacity),
		last:         now,
	}
}

// refillLocked advances the bucket to now. Callers hold b.mu.
func (b *bucket) refillLocked(now time.Time) {
	elapsed := now.Sub(b.last)
	if elapsed > 0 {
		b.tokens = min(b.capacity, b.tokens+elapsed.Seconds()*b.refillPerSec)
	}
	b.last = now
}

// take draws cost tokens if the budget covers them. It reports whether the
// draw happened, the remaining whole tokens, and how long until the budget
// covers the cost again when it does not.
func (b *bucket) take(now time.Time, cost int) (ok bool, remaining int, retryAfter time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refillLocked(now)

	c := float64(cost)
	if b.tokens >= c {
		b.tokens -= c
		return true, int(b.tokens), 0
	}

	needed := c - b.tokens
	retryAfter = time.Duration(needed / b.refillPerSec * float64(time.Second))
	return false, int(b.tokens), retryAfter
}

// resetAt reports when the bucket will be full again.
func (b *bucket) resetAt(now time.Time) time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refillLocked(now)
	if b.tokens >= b.capacity {
		return now
	}
	missing := b.capacity - b.tokens
	return now.Add(time.Duration(missing / b.refillPerSec * float64(time.Second)))
}

// Info describes the budget state after an Allow decision. Limit is zero for
// requests outside the budget (disabled limiter, whitelisted client, or a
// zero-cost endpoint).
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	Capacity        int
	RefillPerMinute int
	DefaultCost     int
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointCosts   []EndpointCost
}

// Limiter holds one budget bucket per client.
type Limiter struct {
	buckets map[string]*bucket
	mu      sync.RWMutex

	config *Config
	now    func() time.Time

	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
	lastAccess    map[string]time.Time
	accessMu      sync.Mutex
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock injects a clock for deterministic refill tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// NewLimiter creates a rate limiter with the given configuration.
func NewLimiter(config *Config, opts ...Option) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			Capacity:        DefaultCapacity,
			RefillPerMinute: DefaultRefillPerMinute,
			DefaultCost:     1,
			CleanupInterval: 5 * time.Minute,
			Whitelist:       make(map[string]bool),
			Blacklist:       make(map[string]bool),
			EndpointCosts:   DefaultEndpointCosts(),
		}
	}

	l := &Limiter{
		buckets:    make(map[string]*bucket),
		config:     config,
		now:        time.Now,
		lastAccess: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(l)
	}

	if config.Enabled && config.CleanupInterval > 0 {
		l.cleanupTicker = time.NewTicker(config.CleanupInterval)
		l.cleanupStop = make(chan struct{})
		go l.cleanupLoop()
	}

	return l
}

// Allow decides whether the client may call the endpoint. A zero-cost
// endpoint never touches the budget; every other endpoint draws its cost
// from the client's single bucket, so expensive calls crowd out cheap ones.
func (l *Limiter) Allow(clientID string, endpoint string, method string) (bool, Info) {
	if !l.config.Enabled {
		return true, Info{Allowed: true}
	}

	if l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{Allowed: false}
	}

	cost := CostFor(endpoint, method, l.config.EndpointCosts, l.config.DefaultCost)
	if cost <= 0 {
		return true, Info{Allowed: true}
	}

	now := l.now()
	b := l.getBucket(clientID, now)

	l.accessMu.Lock()
	l.lastAccess[clientID] = now
	l.accessMu.Unlock()

	allowed, remaining, retryAfter := b.take(now, cost)
	return allowed, Info{
		Allowed:    allowed,
		Limit:      l.config.Capacity,
		Remaining:  remaining,
		ResetTime:  b.resetAt(now),
		RetryAfter: retryAfter,
	}
}

// getBucket gets or creates the budget bucket for a client.
func (l *Limiter) getBucket(clientID string, now time.Time) *bucket {
	l.mu.RLock()
	b, exists := l.buckets[clientID]
	l.mu.RUnlock()
	if exists {
		return b
	}

	refillPerSec := float64(l.config.RefillPerMinute) / 60.0

	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, exists := l.buckets[clientID]; exists {
		return existing
	}
	b = newBucket(l.config.Capacity, refillPerSec, now)
	l.buckets[clientID] = b
	return b
}

func (l *Limiter) cleanupLoop() {
	for {
		select {
		case <-l.cleanupTicker.C:
			l.cleanupBuckets()
		case <-l.cleanupStop:
			return
		}
	}
}

// cleanupBuckets drops clients idle for over an hour.
func (l *Limiter) cleanupBuckets() {
	cutoff := l.now().Add(-1 * time.Hour)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.accessMu.Lock()
	defer l.accessMu.Unlock()

	for clientID, last := range l.lastAccess {
		if last.Before(cutoff) {
			delete(l.buckets, clientID)
			delete(l.lastAccess, clientID)
		}
	}
}

// Stop stops the cleanup goroutine.
func (l *Limiter) Stop() {
	if l.cleanupTicker != nil {
		l.cleanupTicker.Stop()
	}
	if l.cleanupStop != nil {
		close(l.cleanupStop)
	}
}
