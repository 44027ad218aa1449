// Package ratelimit throttles calls to embedding providers.
package ratelimit

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBackoff is used when a 429 response carries no usable Retry-After.
const DefaultBackoff = 10 * time.Second

// Limiter is a token bucket with a provider-imposed backoff window.
// A nil *Limiter never blocks.
type Limiter struct {
	mu      sync.Mutex
	bucket  *rate.Limiter
	retryAt time.Time
}

// New creates a limiter allowing requestsPerSecond sustained requests.
// A non-positive rate disables the token bucket but keeps backoff handling.
func New(requestsPerSecond float64) *Limiter {
	l := &Limiter{}
	if requestsPerSecond > 0 {
		burst := int(requestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		l.bucket = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
	return l
}

// Wait blocks until a request may be sent or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}

	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if d := time.Until(retryAt); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	if l.bucket == nil {
		return ctx.Err()
	}
	return l.bucket.Wait(ctx)
}

// Backoff delays further requests after a rate-limit response.
// retryAfter is the raw Retry-After header value, in seconds.
func (l *Limiter) Backoff(retryAfter string) {
	if l == nil {
		return
	}

	d := DefaultBackoff
	if secs, err := strconv.Atoi(retryAfter); err == nil && secs > 0 {
		d = time.Duration(secs) * time.Second
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if until := time.Now().Add(d); until.After(l.retryAt) {
		l.retryAt = until
	}
}
