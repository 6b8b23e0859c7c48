package api

import (
	"testing"
	"time"
)

func newTestLimiter(t *testing.T, cfg RateLimitConfig) (*RateLimiter, *time.Time) {
	t.Helper()
	rl := NewRateLimiter(cfg)
	t.Cleanup(rl.Stop)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestRateLimiter_Allow(t *testing.T) {
	rl, _ := newTestLimiter(t, RateLimitConfig{Enabled: true, AuthRequestsPerMin: 3})

	key := "ip:127.0.0.1"
	for i := 0; i < 3; i++ {
		if !rl.Allow(key, 3) {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow(key, 3) {
		t.Fatal("4th request should be denied")
	}
}

func TestRateLimiter_DifferentKeys(t *testing.T) {
	rl, _ := newTestLimiter(t, RateLimitConfig{Enabled: true})

	rl.Allow("user:1", 1)
	if rl.Allow("user:1", 1) {
		t.Fatal("second request for user:1 should be denied")
	}
	if !rl.Allow("user:2", 1) {
		t.Fatal("user:2 has its own window")
	}
	if !rl.Allow("ip:10.0.0.1", 1) {
		t.Fatal("ip keys are independent of user keys")
	}
}

func TestRateLimiter_WindowExpiry(t *testing.T) {
	rl, now := newTestLimiter(t, RateLimitConfig{Enabled: true})

	key := "ip:10.0.0.1"
	if !rl.Allow(key, 1) {
		t.Fatal("first request should be allowed")
	}
	*now = now.Add(59 * time.Second)
	if rl.Allow(key, 1) {
		t.Fatal("second request should be denied within the same window")
	}
	*now = now.Add(time.Second)
	if !rl.Allow(key, 1) {
		t.Fatal("request at window expiry should open a new window")
	}
}

func TestRateLimiter_DisabledOrUnlimited(t *testing.T) {
	rl, _ := newTestLimiter(t, RateLimitConfig{Enabled: false})
	for i := 0; i < 100; i++ {
		if !rl.Allow("ip:1.1.1.1", 1) {
			t.Fatalf("request %d should be allowed when rate limiting is disabled", i+1)
		}
	}

	rl, _ = newTestLimiter(t, RateLimitConfig{Enabled: true})
	if !rl.Allow("ip:1.1.1.1", 0) {
		t.Fatal("zero limit should allow all requests")
	}
}

func TestRateLimiter_Sweep(t *testing.T) {
	rl, now := newTestLimiter(t, RateLimitConfig{Enabled: true})

	rl.Allow("ip:1.1.1.1", 5)
	*now = now.Add(30 * time.Second)
	rl.Allow("ip:2.2.2.2", 5)

	*now = now.Add(30 * time.Second)
	if remaining := rl.sweep(); remaining != 1 {
		t.Fatalf("expected 1 window after sweep, got %d", remaining)
	}

	rl.Stop()
	rl.Stop()
}
