package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func clockedLimiter(max int) (*RateLimiter, *time.Time) {
	current := testStart
	limiter := NewRateLimiter(max)
	limiter.now = func() time.Time { return current }
	return limiter, &current
}

func TestRateLimiterAllowsUpToMax(t *testing.T) {
	limiter, _ := clockedLimiter(3)

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow(), "call %d", i)
	}
	assert.False(t, limiter.Allow())
}

func TestRateLimiterSlidingWindow(t *testing.T) {
	limiter, clock := clockedLimiter(2)

	assert.True(t, limiter.Allow())
	*clock = clock.Add(30 * time.Minute)
	assert.True(t, limiter.Allow())
	assert.False(t, limiter.Allow())

	// The first call leaves the window, the second is still inside.
	*clock = clock.Add(31 * time.Minute)
	assert.True(t, limiter.Allow())
	assert.False(t, limiter.Allow())
}

func TestRateLimiterUnlimited(t *testing.T) {
	limiter, _ := clockedLimiter(0)

	for i := 0; i < 100; i++ {
		assert.True(t, limiter.Allow())
	}
}
