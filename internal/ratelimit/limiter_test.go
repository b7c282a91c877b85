package ratelimit

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "https://oauth.reddit.com/r/x/hot"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	if err := limiter.Wait(ctx, "https://www.reddit.com/api/v1/access_token"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	if len(limiter.limiters) != 2 {
		t.Errorf("expected one limiter per host, got %d", len(limiter.limiters))
	}
}

func TestLimiter_RateLimit(t *testing.T) {
	limiter := NewLimiter(1, 1)
	ctx := context.Background()
	url := "https://oauth.reddit.com"

	if err := limiter.Wait(ctx, url); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(ctx, url); err == nil {
		t.Error("expected second wait to exceed the deadline")
	}
}

func TestLimiter_ObservePausesHost(t *testing.T) {
	limiter := NewLimiter(100, 5)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	h := http.Header{}
	h.Set("X-Ratelimit-Remaining", "0.0")
	h.Set("X-Ratelimit-Reset", "42")
	limiter.Observe("https://oauth.reddit.com/comments/abc", h)

	until := limiter.PausedUntil("https://oauth.reddit.com/r/x/hot")
	if !until.Equal(now.Add(42 * time.Second)) {
		t.Errorf("expected pause until %v, got %v", now.Add(42*time.Second), until)
	}
	if !limiter.PausedUntil("https://www.reddit.com").IsZero() {
		t.Error("other hosts must not be paused")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(ctx, "https://oauth.reddit.com/x"); err == nil {
		t.Error("expected paused host to block until the deadline")
	}
}

func TestLimiter_ObserveIgnoresHealthyQuota(t *testing.T) {
	limiter := NewLimiter(100, 5)

	h := http.Header{}
	h.Set("X-Ratelimit-Remaining", "550")
	h.Set("X-Ratelimit-Reset", "300")
	limiter.Observe("https://oauth.reddit.com", h)
	limiter.Observe("https://oauth.reddit.com", http.Header{})

	if !limiter.PausedUntil("https://oauth.reddit.com").IsZero() {
		t.Error("host should not be paused")
	}
}

func TestLimiter_PauseExpires(t *testing.T) {
	limiter := NewLimiter(100, 5)

	h := http.Header{}
	h.Set("X-Ratelimit-Remaining", "0")
	h.Set("X-Ratelimit-Reset", "0.01")
	limiter.Observe("https://oauth.reddit.com", h)

	if err := limiter.Wait(context.Background(), "https://oauth.reddit.com"); err != nil {
		t.Fatalf("wait failed: %v", err)
	}
	if !limiter.PausedUntil("https://oauth.reddit.com").IsZero() {
		t.Error("expected pause to be cleared")
	}
}

func TestLimiter_SetHostRate(t *testing.T) {
	limiter := NewLimiter(1, 1)
	limiter.SetHostRate("oauth.reddit.com", 1000, 10)

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		if err := limiter.Wait(ctx, "https://oauth.reddit.com"); err != nil {
			t.Fatalf("wait %d failed: %v", i, err)
		}
	}
}
