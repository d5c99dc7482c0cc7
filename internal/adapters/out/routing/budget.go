package routing

import (
	"sync"
	"time"
)

// dailyBudget caps billable provider calls per calendar day. The counter
// resets when the local date changes.
type dailyBudget struct {
	mu    sync.Mutex
	limit int
	day   string
	spent int
}

func newDailyBudget(limit int) *dailyBudget {
	return &dailyBudget{limit: limit}
}

// Allow reports whether the day's budget permits another call, charging it
// if so.
func (b *dailyBudget) Allow(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	day := now.Format("2006-01-02")
	if day != b.day {
		b.day = day
		b.spent = 0
	}

	if b.spent >= b.limit {
		return false
	}
	b.spent++
	return true
}

// Remaining returns how many calls are left today.
func (b *dailyBudget) Remaining(now time.Time) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.Format("2006-01-02") != b.day {
		return b.limit
	}
	return b.limit - b.spent
}
