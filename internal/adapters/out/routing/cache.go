package routing

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"dispatch/internal/core/ports"
)

// planCache is a TTL cache of provider responses keyed by origin,
// destination, the ordered waypoint list and the traffic flag. Reordering
// waypoints is a different request and misses on purpose.
type planCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

type cacheEntry struct {
	plan      ports.Plan
	expiresAt time.Time
}

func newPlanCache(ttl time.Duration) *planCache {
	return &planCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

func cacheKey(req ports.PlanRequest) string {
	var b strings.Builder
	b.WriteString(req.Origin.String())
	b.WriteString("|")
	b.WriteString(req.Destination.String())
	for _, w := range req.Waypoints {
		b.WriteString("|")
		b.WriteString(w.String())
	}
	fmt.Fprintf(&b, "|traffic=%t|keep=%t", req.TrafficAware, req.KeepOrder)
	return b.String()
}

func (c *planCache) get(req ports.PlanRequest, now time.Time) (ports.Plan, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(req)
	entry, ok := c.entries[key]
	if !ok {
		return ports.Plan{}, false
	}
	if now.After(entry.expiresAt) {
		delete(c.entries, key)
		return ports.Plan{}, false
	}
	return entry.plan, true
}

func (c *planCache) put(req ports.PlanRequest, plan ports.Plan, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cacheKey(req)] = cacheEntry{
		plan:      plan,
		expiresAt: now.Add(c.ttl),
	}
}
