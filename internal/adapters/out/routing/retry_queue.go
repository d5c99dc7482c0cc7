package routing

import (
	"sync"
	"time"

	"dispatch/internal/core/ports"
)

// retryQueueCap bounds the replay queue so a long provider outage cannot
// grow it without limit. The oldest entries are evicted first.
const retryQueueCap = 1000

// RetryItem is a failed provider request kept for later cache warming.
type RetryItem struct {
	Request    ports.PlanRequest
	EnqueuedAt time.Time
}

// RetryQueue holds failed provider requests so a background sweeper can
// replay them once the provider recovers, warming the cache. Items older
// than maxAge are dropped: a day-old route request serves nobody.
type RetryQueue struct {
	mu     sync.Mutex
	maxAge time.Duration
	items  []RetryItem
}

// NewRetryQueue creates an empty queue with the given staleness bound.
func NewRetryQueue(maxAge time.Duration) *RetryQueue {
	return &RetryQueue{maxAge: maxAge}
}

// Enqueue appends a failed request, evicting the oldest when full.
func (q *RetryQueue) Enqueue(req ports.PlanRequest, now time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) >= retryQueueCap {
		q.items = q.items[1:]
	}
	q.items = append(q.items, RetryItem{Request: req, EnqueuedAt: now})
}

// SweepStale removes items older than the staleness bound and returns how
// many were dropped.
func (q *RetryQueue) SweepStale(now time.Time) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	cutoff := now.Add(-q.maxAge)
	kept := q.items[:0]
	dropped := 0
	for _, item := range q.items {
		if item.EnqueuedAt.Before(cutoff) {
			dropped++
			continue
		}
		kept = append(kept, item)
	}
	q.items = kept
	return dropped
}

// Drain removes and returns up to max items in arrival order, skipping
// anything already stale.
func (q *RetryQueue) Drain(max int, now time.Time) []RetryItem {
	q.mu.Lock()
	defer q.mu.Unlock()

	cutoff := now.Add(-q.maxAge)
	var out []RetryItem
	rest := q.items[:0]
	for _, item := range q.items {
		if item.EnqueuedAt.Before(cutoff) {
			continue
		}
		if len(out) < max {
			out = append(out, item)
			continue
		}
		rest = append(rest, item)
	}
	q.items = rest
	return out
}

// Len returns the current queue depth.
func (q *RetryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
