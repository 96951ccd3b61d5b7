package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLimiterBurst(t *testing.T) {
	l := NewRequestLimiter(60, 2)

	assert.True(t, l.allow())
	assert.True(t, l.allow())
	assert.False(t, l.allow(), "burst exhausted")
}

func TestRequestLimiterUnlimited(t *testing.T) {
	l := NewRequestLimiter(0, 0)
	for i := 0; i < 100; i++ {
		require.True(t, l.allow())
	}
	assert.NoError(t, l.Wait(context.Background()))
}

func TestRequestLimiterWaitHonoursContext(t *testing.T) {
	l := NewRequestLimiter(1, 1)
	require.True(t, l.allow())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// next token is a minute away
	assert.Error(t, l.Wait(ctx))
}

func TestUnlimited(t *testing.T) {
	var l Limiter = Unlimited{}
	assert.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Wait(ctx), context.Canceled)
}

func TestPacerPause(t *testing.T) {
	var got []time.Duration
	p := NewPacer(1500 * time.Millisecond)
	p.sleep = func(ctx context.Context, d time.Duration) error {
		got = append(got, d)
		return nil
	}

	require.NoError(t, p.Pause(context.Background()))
	require.NoError(t, p.Pause(context.Background()))
	assert.Equal(t, []time.Duration{1500 * time.Millisecond, 1500 * time.Millisecond}, got)
}

func TestPacerRealSleep(t *testing.T) {
	p := NewPacer(15 * time.Millisecond)
	start := time.Now()
	require.NoError(t, p.Pause(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)

	zero := &Pacer{}
	assert.NoError(t, zero.Pause(context.Background()))
}

func TestPacerCancelled(t *testing.T) {
	p := NewPacer(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Pause(ctx), context.Canceled)
}
