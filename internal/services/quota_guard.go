package services

import (
	"sync"
	"time"
)

// Provider operation type tracked by the quota guard.
type OpType string

const (
	OpGeocoding     OpType = "geocoding"
	OpDirections    OpType = "directions"
	OpPlaces        OpType = "places"
	OpMapScriptLoad OpType = "mapScriptLoad"
)

// Default daily ceilings per operation type. Overridable per guard via
// NewQuotaGuard.
var defaultCeilings = map[OpType]int{
	OpGeocoding:     200,
	OpDirections:    300,
	OpPlaces:        150,
	OpMapScriptLoad: 1000,
}

const quotaWindow = 24 * time.Hour

type quotaCounter struct {
	count           int
	windowStartedAt time.Time
}

// QuotaGuard tracks call counts per provider operation type against a
// configured ceiling over a rolling 24h window. One instance is shared
// process-wide; TryReserve is a reservation made before the provider call,
// so quota is consumed even when the call is later abandoned.
type QuotaGuard struct {
	mu       sync.Mutex
	ceilings map[OpType]int
	counters map[OpType]*quotaCounter

	// now is swappable so tests can drive the rolling window.
	now func() time.Time
}

// NewQuotaGuard builds a guard with the default ceilings, overridden by any
// entries in ceilings.
func NewQuotaGuard(ceilings map[OpType]int) *QuotaGuard {
	merged := make(map[OpType]int, len(defaultCeilings))
	for op, c := range defaultCeilings {
		merged[op] = c
	}
	for op, c := range ceilings {
		if c > 0 {
			merged[op] = c
		}
	}
	return &QuotaGuard{
		ceilings: merged,
		counters: make(map[OpType]*quotaCounter),
		now:      time.Now,
	}
}

// TryReserve reserves one call of the given operation type. The window
// check, reset, and increment happen under one lock so concurrent callers
// can never over-admit past the ceiling.
func (g *QuotaGuard) TryReserve(op OpType) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	c := g.counters[op]
	if c == nil {
		c = &quotaCounter{windowStartedAt: now}
		g.counters[op] = c
	}

	if now.Sub(c.windowStartedAt) > quotaWindow {
		c.count = 0
		c.windowStartedAt = now
	}

	ceiling, ok := g.ceilings[op]
	if !ok || c.count >= ceiling {
		return false
	}

	c.count++
	return true
}

// PercentUsed reports how much of the ceiling for op is consumed in the
// current window, for UI display. Read-only: an expired window reads as 0
// without being reset.
func (g *QuotaGuard) PercentUsed(op OpType) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	ceiling, ok := g.ceilings[op]
	if !ok || ceiling == 0 {
		return 0
	}

	c := g.counters[op]
	if c == nil || g.now().Sub(c.windowStartedAt) > quotaWindow {
		return 0
	}

	return float64(c.count) / float64(ceiling) * 100
}
