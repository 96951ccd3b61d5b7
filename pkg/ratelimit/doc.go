// Package ratelimit throttles requests to the Douyin catalog endpoint.
//
// Two independent mechanisms exist:
//
// Pacer:
//   - fixed pause after each successfully processed page
//   - never applied after a failed attempt
//
// RequestLimiter:
//   - optional requests-per-minute ceiling backed by golang.org/x/time/rate
//   - consulted before every attempt, retries included
//
// Usage:
//
//	pacer := ratelimit.NewPacer(time.Second)
//	limiter := ratelimit.NewRequestLimiter(30, 1)
//
//	if err := limiter.Wait(ctx); err != nil {
//	    return err
//	}
//	// request page
//	if err := pacer.Pause(ctx); err != nil {
//	    return err
//	}
package ratelimit
