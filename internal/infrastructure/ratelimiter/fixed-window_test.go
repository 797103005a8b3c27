package ratelimiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFixedWindow_EnforcesLimit(t *testing.T) {
	rl := NewFixedWindowRateLimiter(3, time.Minute)
	defer rl.Close()

	for i := 0; i < 3; i++ {
		allowed, _ := rl.Allow("1.2.3.4")
		require.True(t, allowed)
	}

	allowed, retryAfter := rl.Allow("1.2.3.4")
	require.False(t, allowed)
	require.Greater(t, retryAfter, time.Duration(0))

	// Other sources are unaffected.
	allowed, _ = rl.Allow("5.6.7.8")
	require.True(t, allowed)
}

func TestFixedWindow_ResetsAfterFrame(t *testing.T) {
	rl := NewFixedWindowRateLimiter(1, 20*time.Millisecond)
	defer rl.Close()

	allowed, _ := rl.Allow("1.2.3.4")
	require.True(t, allowed)

	allowed, _ = rl.Allow("1.2.3.4")
	require.False(t, allowed)

	time.Sleep(30 * time.Millisecond)

	allowed, _ = rl.Allow("1.2.3.4")
	require.True(t, allowed)
}
