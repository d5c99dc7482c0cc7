package commands

import (
	"sync"

	"dispatch/internal/core/domain/model/kernel"
)

// routeLockSet serializes mutations of individual routes across concurrent
// adjustment handlers. Repository transactions alone cannot prevent two
// handlers from replacing the same route's stop set from stale snapshots,
// so every stop-set mutation acquires the route's lock first. Entries are
// reference counted and removed once nothing holds or awaits the route.
type routeLockSet struct {
	mu    sync.Mutex
	locks map[kernel.UUID]*routeLock
}

type routeLock struct {
	mu   sync.Mutex
	refs int
}

func newRouteLockSet() *routeLockSet {
	return &routeLockSet{locks: make(map[kernel.UUID]*routeLock)}
}

// acquire blocks until the route's lock is held and returns the release
// function.
func (s *routeLockSet) acquire(routeID kernel.UUID) func() {
	s.mu.Lock()
	l, ok := s.locks[routeID]
	if !ok {
		l = &routeLock{}
		s.locks[routeID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, routeID)
		}
		s.mu.Unlock()
	}
}
