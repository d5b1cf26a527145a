package domain

import "time"

// Represents a single ordered stop along a route.
// A stop's Location stays nil until its address has been geocoded.
// ETA is derived output from the timing calculator, never authoritative
// persisted state.
type StopItem struct {
	StopID   string
	Name     string
	Address  string
	Location *Coordinates
	ETA      *time.Time
}

// Reports whether the stop has resolved coordinates.
func (s StopItem) Resolved() bool { return s.Location != nil }

// ResolvedStops counts the stops whose coordinates have been resolved.
func ResolvedStops(stops []StopItem) int {
	n := 0
	for _, s := range stops {
		if s.Resolved() {
			n++
		}
	}
	return n
}
