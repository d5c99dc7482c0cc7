package routing

import (
	"sync"
	"time"
)

// slidingWindowLimiter allows at most maxCalls within any trailing window.
// Call timestamps are pruned lazily on each Allow.
type slidingWindowLimiter struct {
	mu       sync.Mutex
	maxCalls int
	window   time.Duration
	calls    []time.Time
}

func newSlidingWindowLimiter(maxCalls int, window time.Duration) *slidingWindowLimiter {
	return &slidingWindowLimiter{
		maxCalls: maxCalls,
		window:   window,
	}
}

// Allow reports whether another call fits in the window, recording it if so.
func (l *slidingWindowLimiter) Allow(now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-l.window)
	kept := l.calls[:0]
	for _, t := range l.calls {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.calls = kept

	if len(l.calls) >= l.maxCalls {
		return false
	}
	l.calls = append(l.calls, now)
	return true
}
