package ratelimit

import (
	"context"
	"time"
)

// Pacer enforces a fixed pause between successfully processed pages. It is
// independent of the retry delay and of any request ceiling.
type Pacer struct {
	Delay time.Duration

	// sleep is swapped in tests
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPacer returns a Pacer that waits delay after each page
func NewPacer(delay time.Duration) *Pacer {
	return &Pacer{Delay: delay, sleep: sleepContext}
}

// Pause waits the configured delay or returns early with ctx's error
func (p *Pacer) Pause(ctx context.Context) error {
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepContext
	}
	return sleep(ctx, p.Delay)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
