package ratelimiter

import (
	"sync"
	"time"
)

type Limiter interface {
	Allow(key string) (bool, time.Duration)
	Close()
}

type window struct {
	count   int
	resetAt time.Time
}

// FixedWindowRateLimiter counts requests per source key within fixed
// time frames. Counters for idle sources are swept periodically so the
// map does not grow with every client ever seen.
type FixedWindowRateLimiter struct {
	limit int
	frame time.Duration

	mu      sync.Mutex
	windows map[string]*window

	done chan struct{}
}

func NewFixedWindowRateLimiter(limit int, frame time.Duration) *FixedWindowRateLimiter {
	rl := &FixedWindowRateLimiter{
		limit:   limit,
		frame:   frame,
		windows: make(map[string]*window),
		done:    make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// Allow reports whether the key may proceed. When the limit is hit it
// also reports how long until the window resets.
func (rl *FixedWindowRateLimiter) Allow(key string) (bool, time.Duration) {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[key]
	if !ok || now.After(w.resetAt) {
		rl.windows[key] = &window{count: 1, resetAt: now.Add(rl.frame)}
		return true, 0
	}

	if w.count >= rl.limit {
		return false, time.Until(w.resetAt)
	}

	w.count++
	return true, 0
}

func (rl *FixedWindowRateLimiter) sweep() {
	ticker := time.NewTicker(rl.frame)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			rl.mu.Lock()
			for key, w := range rl.windows {
				if now.After(w.resetAt) {
					delete(rl.windows, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.done:
			return
		}
	}
}

func (rl *FixedWindowRateLimiter) Close() {
	close(rl.done)
}
