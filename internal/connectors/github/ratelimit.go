package github

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter paces GitHub API requests with two strategies. A token
// bucket proactively spreads requests below the API budget, and the
// X-RateLimit response headers are tracked reactively so callers can
// tell when the quota is exhausted and when it resets.
type RateLimiter struct {
	limiter *rate.Limiter

	mu        sync.Mutex
	remaining int
	resetTime time.Time
}

// NewRateLimiter creates a limiter paced for the authenticated API
// budget of 5000 requests per hour, kept a little under the ceiling.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		// 1.2 req/s is ~4300/hour, leaving headroom for other consumers
		// of the same token.
		limiter:   rate.NewLimiter(rate.Limit(1.2), 5),
		remaining: -1,
	}
}

// Wait blocks until a request may be sent or the context is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

// UpdateFromResponse records the rate limit state from response headers.
func (r *RateLimiter) UpdateFromResponse(resp *http.Response) {
	if resp == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if v := resp.Header.Get("X-RateLimit-Remaining"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			r.remaining = n
		}
	}
	if v := resp.Header.Get("X-RateLimit-Reset"); v != "" {
		if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
			r.resetTime = time.Unix(ts, 0)
		}
	}
}

// Remaining returns the last reported remaining quota, or -1 when no
// response has been observed yet.
func (r *RateLimiter) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining
}

// ResetTime returns the last reported quota reset time.
func (r *RateLimiter) ResetTime() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resetTime
}
