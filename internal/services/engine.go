package services

// EngineContext owns the process-wide runtime state shared by timing
// computations: the route timing cache and the provider quota counters.
// It is constructed once in the composition root and passed by reference
// into the calculator, never reached for as ambient global state.
type EngineContext struct {
	Cache *RouteTimingCache
	Quota *QuotaGuard
}

func NewEngineContext(cacheCapacity int, ceilings map[OpType]int) *EngineContext {
	return &EngineContext{
		Cache: NewRouteTimingCache(cacheCapacity),
		Quota: NewQuotaGuard(ceilings),
	}
}
