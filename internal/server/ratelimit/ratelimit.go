// Package ratelimit provides per-client token bucket rate limiting with
// endpoint tiers. Endpoints that spend model quota get the strictest limits.
package ratelimit

import (
	"strings"
	"sync"
	"time"
)

// Rule sets the limit for one endpoint. Path supports prefix matching when it
// ends with "/".
type Rule struct {
	Path   string
	Method string
	Limit  int // requests per Window; 0 means unlimited
	Window time.Duration
	Burst  int // bucket capacity; defaults to Limit
}

// Config holds limiter configuration
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Rules           []Rule
}

// DefaultConfig returns the cvlens endpoint tiers
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    600,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		Rules: []Rule{
			// Analysis and rewriting may call the model.
			{Path: "/cvs", Method: "POST", Limit: 20, Window: time.Hour, Burst: 5},
			{Path: "/cvs/", Method: "POST", Limit: 60, Window: time.Hour, Burst: 10},
			// Health stays unlimited for probes.
			{Path: "/health", Method: "GET", Limit: 0},
		},
	}
}

// Info reports the limit state for one decision
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// bucket is a token bucket with its own lock and access timestamp
type bucket struct {
	mu         sync.Mutex
	capacity   float64
	refillRate float64 // tokens per second
	tokens     float64
	lastRefill time.Time
	lastAccess time.Time
}

func (b *bucket) take() (allowed bool, remaining int, reset time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.tokens += now.Sub(b.lastRefill).Seconds() * b.refillRate
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.lastRefill = now
	b.lastAccess = now

	if b.tokens >= 1.0 {
		b.tokens--
		allowed = true
	}

	remaining = int(b.tokens)
	reset = now
	if b.tokens < b.capacity {
		secondsUntilFull := (b.capacity - b.tokens) / b.refillRate
		reset = now.Add(time.Duration(secondsUntilFull * float64(time.Second)))
	}
	return allowed, remaining, reset
}

// Limiter manages one bucket per client and endpoint
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	cfg     *Config
	ticker  *time.Ticker
	stop    chan struct{}
}

// NewLimiter creates a limiter and starts its cleanup loop
func NewLimiter(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	l := &Limiter{
		buckets: make(map[string]*bucket),
		cfg:     cfg,
	}
	if cfg.Enabled && cfg.CleanupInterval > 0 {
		l.ticker = time.NewTicker(cfg.CleanupInterval)
		l.stop = make(chan struct{})
		go l.cleanupLoop()
	}
	return l
}

// Allow decides whether a request from clientID may proceed
func (l *Limiter) Allow(clientID, path, method string) (bool, Info) {
	if !l.cfg.Enabled {
		return true, Info{Allowed: true}
	}

	rule := l.match(path, method)
	if rule.Limit <= 0 {
		return true, Info{Allowed: true}
	}

	key := clientID + ":" + rule.Path + ":" + method
	b := l.bucketFor(key, rule)

	allowed, remaining, reset := b.take()
	info := Info{
		Allowed:   allowed,
		Limit:     rule.Limit,
		Remaining: remaining,
		ResetTime: reset,
	}
	if !allowed {
		if retry := time.Until(reset); retry > 0 {
			info.RetryAfter = retry
		}
	}
	return allowed, info
}

// match finds the rule for a path and method, exact matches before prefixes
func (l *Limiter) match(path, method string) Rule {
	for _, rule := range l.cfg.Rules {
		if rule.Path == path && rule.Method == method {
			return rule
		}
	}
	for _, rule := range l.cfg.Rules {
		if rule.Method == method && strings.HasSuffix(rule.Path, "/") && strings.HasPrefix(path, rule.Path) {
			return rule
		}
	}
	return Rule{Path: path, Limit: l.cfg.DefaultLimit, Window: l.cfg.DefaultWindow}
}

func (l *Limiter) bucketFor(key string, rule Rule) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	if b, ok := l.buckets[key]; ok {
		return b
	}
	capacity := rule.Burst
	if capacity <= 0 {
		capacity = rule.Limit
	}
	b := &bucket{
		capacity:   float64(capacity),
		refillRate: float64(rule.Limit) / rule.Window.Seconds(),
		tokens:     float64(capacity),
		lastRefill: time.Now(),
		lastAccess: time.Now(),
	}
	l.buckets[key] = b
	return b
}

func (l *Limiter) cleanupLoop() {
	for {
		select {
		case <-l.ticker.C:
			l.removeStale()
		case <-l.stop:
			return
		}
	}
}

// removeStale drops buckets idle for over an hour
func (l *Limiter) removeStale() {
	cutoff := time.Now().Add(-time.Hour)
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		b.mu.Lock()
		stale := b.lastAccess.Before(cutoff)
		b.mu.Unlock()
		if stale {
			delete(l.buckets, key)
		}
	}
}

// Stop halts the cleanup loop
func (l *Limiter) Stop() {
	if l.ticker != nil {
		l.ticker.Stop()
	}
	if l.stop != nil {
		close(l.stop)
	}
}
