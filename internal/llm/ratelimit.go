package llm

import (
	"sync"
	"time"
)

// RateLimiter enforces a minimum interval between successive calls to the
// model API.
type RateLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

// NewRateLimiter creates a limiter with the given minimum interval between
// calls. A non-positive interval disables waiting.
func NewRateLimiter(interval time.Duration) *RateLimiter {
	return &RateLimiter{
		interval: interval,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// Acquire blocks until at least the configured interval has elapsed since
// the previous acquisition, then records the new call time.
func (r *RateLimiter) Acquire() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.interval > 0 && !r.last.IsZero() {
		if elapsed := r.now().Sub(r.last); elapsed < r.interval {
			r.sleep(r.interval - elapsed)
		}
	}
	r.last = r.now()
}
