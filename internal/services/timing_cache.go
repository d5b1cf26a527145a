package services

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"route-schedule-service/internal/domain"
)

// Memoized provider response for one ordered stop sequence. Runtime-only
// state: entries are never persisted and are safe to discard at any time.
type TimingCacheEntry struct {
	Key                 string
	LegDurationsMinutes []int
	PathEncoding        string
}

// RouteTimingCache memoizes per-leg durations keyed by the ordered stop
// identifier/coordinate sequence. Capacity-bounded; when an insert would
// exceed capacity the oldest-inserted entry is evicted (strict FIFO, not
// LRU). No TTL: identical coordinates imply identical legs for the life of
// the process.
type RouteTimingCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]TimingCacheEntry
	order    []string // insertion order, oldest first
}

const DefaultTimingCacheCapacity = 50

func NewRouteTimingCache(capacity int) *RouteTimingCache {
	if capacity <= 0 {
		capacity = DefaultTimingCacheCapacity
	}
	return &RouteTimingCache{
		capacity: capacity,
		entries:  make(map[string]TimingCacheEntry, capacity),
	}
}

func (c *RouteTimingCache) Get(key string) (TimingCacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if ok {
		e.LegDurationsMinutes = slices.Clone(e.LegDurationsMinutes)
	}
	return e, ok
}

func (c *RouteTimingCache) Put(key string, entry TimingCacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry.Key = key
	entry.LegDurationsMinutes = slices.Clone(entry.LegDurationsMinutes)

	if _, exists := c.entries[key]; exists {
		// Overwrite keeps the original insertion position.
		c.entries[key] = entry
		return
	}

	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = entry
	c.order = append(c.order, key)
}

func (c *RouteTimingCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// TimingCacheKey builds the memo key from the ordered (identifier, lat, lng)
// tuples of the stop sequence. Start time is deliberately excluded: a start
// time change alone must not re-invoke the provider.
func TimingCacheKey(stops []domain.StopItem) string {
	parts := make([]string, 0, len(stops))
	for _, s := range stops {
		if s.Location != nil {
			parts = append(parts, fmt.Sprintf("%s@%.6f,%.6f", s.StopID, s.Location.Lat, s.Location.Lng))
		} else {
			parts = append(parts, s.StopID+"@unresolved")
		}
	}
	return strings.Join(parts, "|")
}
