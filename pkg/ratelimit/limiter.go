package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter defines the interface for gating outgoing requests
type Limiter interface {
	// Wait blocks until a request is allowed or ctx is done
	Wait(ctx context.Context) error
}

// RequestLimiter caps the number of requests per minute across all
// attempts of a run
type RequestLimiter struct {
	limiter *rate.Limiter
}

// NewRequestLimiter returns a limiter allowing requestsPerMinute with the
// given burst. A non-positive rate yields an unlimited limiter.
func NewRequestLimiter(requestsPerMinute, burst int) *RequestLimiter {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	if requestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(requestsPerMinute))
	}
	return &RequestLimiter{limiter: rate.NewLimiter(limit, burst)}
}

// Wait blocks until the ceiling allows another request
func (l *RequestLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// allow reports whether a request may proceed right now, consuming a token
// if so
func (l *RequestLimiter) allow() bool {
	return l.limiter.Allow()
}

// Unlimited never blocks
type Unlimited struct{}

func (Unlimited) Wait(ctx context.Context) error {
	return ctx.Err()
}
