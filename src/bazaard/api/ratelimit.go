package api

import (
	"sync"
	"time"
)

// RateLimitConfig holds configuration for the rate limiter.
type RateLimitConfig struct {
	Enabled bool
	// AuthRequestsPerMin applies per client IP to login, registration and token exchange.
	AuthRequestsPerMin int
	// APIRequestsPerMin applies per account, or per IP for anonymous callers.
	APIRequestsPerMin int
}

// DefaultRateLimitConfig returns the limits used when none are configured.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:            true,
		AuthRequestsPerMin: 10,
		APIRequestsPerMin:  120,
	}
}

type window struct {
	count     int
	expiresAt time.Time
}

// RateLimiter counts requests per key in fixed one-minute windows.
type RateLimiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	config   RateLimitConfig
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a rate limiter and starts its background sweeper.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		windows: make(map[string]*window),
		config:  cfg,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Allow records a request for key and reports whether it stays within limit.
func (rl *RateLimiter) Allow(key string, limit int) bool {
	if !rl.config.Enabled || limit <= 0 {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, exists := rl.windows[key]
	if !exists || !now.Before(w.expiresAt) {
		rl.windows[key] = &window{count: 1, expiresAt: now.Add(time.Minute)}
		return true
	}

	if w.count >= limit {
		return false
	}
	w.count++
	return true
}

// sweep drops windows that have expired by now
func (rl *RateLimiter) sweep() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, w := range rl.windows {
		if !now.Before(w.expiresAt) {
			delete(rl.windows, key)
		}
	}
	return len(rl.windows)
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.stopCh:
			return
		}
	}
}

// Stop terminates the background sweeper. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}
