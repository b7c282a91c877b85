package ratelimit

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter implements per-host rate limiting. Hosts that report an exhausted
// quota through X-Ratelimit-* headers are paused until the reported reset.
type Limiter struct {
	limiters     map[string]*rate.Limiter
	pausedUntil  map[string]time.Time
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
	now          func() time.Time
}

// NewLimiter creates a new rate limiter
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		pausedUntil:  make(map[string]time.Time),
		defaultRate:  rate.Limit(requestsPerSecond),
		defaultBurst: burst,
		now:          time.Now,
	}
}

// Wait waits for rate limit clearance for the given URL
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	host, err := extractHost(rawURL)
	if err != nil {
		return err
	}

	if err := l.waitPause(ctx, host); err != nil {
		return err
	}
	return l.getLimiter(host).Wait(ctx)
}

// Observe records the quota headers of a response from rawURL
func (l *Limiter) Observe(rawURL string, header http.Header) {
	remaining, err := strconv.ParseFloat(header.Get("X-Ratelimit-Remaining"), 64)
	if err != nil || remaining >= 1 {
		return
	}
	reset, err := strconv.ParseFloat(header.Get("X-Ratelimit-Reset"), 64)
	if err != nil || reset <= 0 {
		return
	}
	host, err := extractHost(rawURL)
	if err != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.pausedUntil[host] = l.now().Add(time.Duration(reset * float64(time.Second)))
}

// PausedUntil returns when the host becomes available again, zero if it is not paused
func (l *Limiter) PausedUntil(rawURL string) time.Time {
	host, err := extractHost(rawURL)
	if err != nil {
		return time.Time{}
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	until := l.pausedUntil[host]
	if !until.After(l.now()) {
		return time.Time{}
	}
	return until
}

func (l *Limiter) waitPause(ctx context.Context, host string) error {
	l.mu.RLock()
	until, paused := l.pausedUntil[host]
	l.mu.RUnlock()
	if !paused {
		return nil
	}

	wait := until.Sub(l.now())
	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	l.mu.Lock()
	if l.pausedUntil[host].Equal(until) {
		delete(l.pausedUntil, host)
	}
	l.mu.Unlock()
	return nil
}

// getLimiter returns the rate limiter for a host
func (l *Limiter) getLimiter(host string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[host]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, exists := l.limiters[host]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[host] = limiter

	return limiter
}

// SetHostRate sets a custom rate limit for a specific host
func (l *Limiter) SetHostRate(host string, requestsPerSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if burst <= 0 {
		burst = l.defaultBurst
	}

	l.limiters[host] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

func extractHost(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return parsed.Host, nil
}
