package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucketLimiterExhausts(t *testing.T) {
	limiter := NewTokenBucketLimiter(3, time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "user-1")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should pass", i)
	}

	allowed, err := limiter.Allow(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestTokenBucketLimiterKeysAreIndependent(t *testing.T) {
	limiter := NewTokenBucketLimiter(1, time.Hour)
	ctx := context.Background()

	allowed, _ := limiter.Allow(ctx, "user-1")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow(ctx, "user-1")
	assert.False(t, allowed)

	allowed, _ = limiter.Allow(ctx, "user-2")
	assert.True(t, allowed)
}

func TestTokenBucketLimiterRefills(t *testing.T) {
	limiter := NewTokenBucketLimiter(1, 10*time.Millisecond)
	ctx := context.Background()

	allowed, _ := limiter.Allow(ctx, "user-1")
	require.True(t, allowed)
	allowed, _ = limiter.Allow(ctx, "user-1")
	require.False(t, allowed)

	time.Sleep(25 * time.Millisecond)

	allowed, _ = limiter.Allow(ctx, "user-1")
	assert.True(t, allowed)
}

func TestTokenBucketLimiterReset(t *testing.T) {
	limiter := NewTokenBucketLimiter(1, time.Hour)
	ctx := context.Background()

	limiter.Allow(ctx, "user-1")
	require.NoError(t, limiter.Reset(ctx, "user-1"))

	allowed, _ := limiter.Allow(ctx, "user-1")
	assert.True(t, allowed)
}

func TestSlidingWindowLimiterEnforcesLimit(t *testing.T) {
	limiter := NewSlidingWindowLimiter(2, time.Hour)
	ctx := context.Background()

	allowed, _ := limiter.Allow(ctx, "ip:10.0.0.1")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow(ctx, "ip:10.0.0.1")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow(ctx, "ip:10.0.0.1")
	assert.False(t, allowed)
}

func TestSlidingWindowLimiterExpiresOldRequests(t *testing.T) {
	limiter := NewSlidingWindowLimiter(1, 20*time.Millisecond)
	ctx := context.Background()

	allowed, _ := limiter.Allow(ctx, "key")
	require.True(t, allowed)
	allowed, _ = limiter.Allow(ctx, "key")
	require.False(t, allowed)

	time.Sleep(30 * time.Millisecond)

	allowed, _ = limiter.Allow(ctx, "key")
	assert.True(t, allowed)
}

func TestSlidingWindowLimiterReset(t *testing.T) {
	limiter := NewSlidingWindowLimiter(1, time.Hour)
	ctx := context.Background()

	limiter.Allow(ctx, "key")
	require.NoError(t, limiter.Reset(ctx, "key"))

	allowed, _ := limiter.Allow(ctx, "key")
	assert.True(t, allowed)
}

func TestIPAndUserLimitersUseSeparateKeyspaces(t *testing.T) {
	ctx := context.Background()

	ipLimiter := NewIPRateLimiter(1)
	userLimiter := NewUserRateLimiter(1)

	allowed, _ := ipLimiter.Allow(ctx, "10.0.0.1")
	assert.True(t, allowed)
	allowed, _ = ipLimiter.Allow(ctx, "10.0.0.1")
	assert.False(t, allowed)

	// The same literal key under the user limiter is unaffected
	allowed, _ = userLimiter.Allow(ctx, "10.0.0.1")
	assert.True(t, allowed)
}
