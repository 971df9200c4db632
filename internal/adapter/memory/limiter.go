package memory

import (
	"sync"
	"time"
)

// RateLimiter allows at most max events per sliding hour window.
// A max of zero or less disables limiting.
type RateLimiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	calls  []time.Time
	now    func() time.Time
}

func NewRateLimiter(max int) *RateLimiter {
	return &RateLimiter{
		max:    max,
		window: time.Hour,
		now:    time.Now,
	}
}

// Allow records an event if the window has room and reports whether it did.
func (r *RateLimiter) Allow() bool {
	if r.max <= 0 {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.prune(now)
	if len(r.calls) >= r.max {
		return false
	}
	r.calls = append(r.calls, now)
	return true
}

func (r *RateLimiter) prune(now time.Time) {
	cutoff := now.Add(-r.window)
	kept := r.calls[:0]
	for _, c := range r.calls {
		if c.After(cutoff) {
			kept = append(kept, c)
		}
	}
	r.calls = kept
}
