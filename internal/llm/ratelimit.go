package llm

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	defaultRequestsPerMinute = 60
	waitPollInterval         = 50 * time.Millisecond
)

// rateLimiter keeps a session's provider calls under llm.rate_limit requests
// per minute. A full bucket lets a burst of extraction passes through; after
// that one slot frees up every minute/limit.
type rateLimiter struct {
	stopCh    chan struct{}
	interval  time.Duration
	slots     int
	capacity  int
	mu        sync.Mutex
	closeOnce sync.Once
}

func newRateLimiter(requestsPerMinute int) *rateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = defaultRequestsPerMinute
	}

	rl := &rateLimiter{
		stopCh:   make(chan struct{}),
		interval: time.Minute / time.Duration(requestsPerMinute),
		slots:    requestsPerMinute,
		capacity: requestsPerMinute,
	}
	go rl.refill()
	return rl
}

// wait holds a turn until a slot frees up. A cancelled turn gives up its place.
func (rl *rateLimiter) wait(ctx context.Context) error {
	poll := time.NewTicker(waitPollInterval)
	defer poll.Stop()

	for !rl.tryAcquire() {
		select {
		case <-ctx.Done():
			return fmt.Errorf("rate limiter canceled: %w", ctx.Err())
		case <-poll.C:
		}
	}
	return nil
}

func (rl *rateLimiter) tryAcquire() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.slots == 0 {
		return false
	}
	rl.slots--
	return true
}

func (rl *rateLimiter) refill() {
	ticker := time.NewTicker(rl.interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			rl.mu.Lock()
			rl.slots = min(rl.slots+1, rl.capacity)
			rl.mu.Unlock()
		}
	}
}

// Close stops refilling. It is safe to call more than once.
func (rl *rateLimiter) Close() {
	rl.closeOnce.Do(func() { close(rl.stopCh) })
}
