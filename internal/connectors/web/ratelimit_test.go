package web

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateLimiter_Defaults(t *testing.T) {
	r := NewRateLimiter(RateLimitConfig{})
	require.NotNil(t, r)
	assert.InDelta(t, DefaultRateLimit.RequestsPerSecond, float64(r.limiter.Limit()), 1e-9)
	assert.Equal(t, DefaultRateLimit.BurstSize, r.limiter.Burst())
}

func TestRateLimiter_Allow_Burst(t *testing.T) {
	r := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 2})

	assert.True(t, r.Allow())
	assert.True(t, r.Allow())
	assert.False(t, r.Allow())
}

func TestRateLimiter_RecordRateLimitError(t *testing.T) {
	r := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 100, BurstSize: 10})
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	r.RecordRateLimitError(30 * time.Second)
	assert.False(t, r.Allow())
	assert.Equal(t, now.Add(30*time.Second), r.retryAt)

	r.RecordRateLimitError(0)
	assert.Equal(t, now.Add(60*time.Second), r.retryAt, "default backoff")

	now = now.Add(61 * time.Second)
	assert.True(t, r.Allow())
}

func TestRateLimiter_Wait_RespectsContext(t *testing.T) {
	r := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 100, BurstSize: 1})
	r.RecordRateLimitError(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := r.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRateLimiter_Wait_Succeeds(t *testing.T) {
	r := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 100, BurstSize: 1})
	assert.NoError(t, r.Wait(context.Background()))
}
