package ports

import (
	"context"

	"route-schedule-service/internal/domain"
)

// Per-leg travel durations for an ordered stop sequence, plus an optional
// encoded path geometry.
type RouteLegsResult struct {
	LegDurationSeconds []int
	PathEncoding       string
}

// A single place candidate returned by free-text search.
type PlaceResult struct {
	Name     string
	Address  string
	Location domain.Coordinates
}

// Contract for the external directions/geocoding collaborator. Stateless
// from the engine's perspective; any failure is a rejected call and the
// engine treats all failures identically (trigger the synthetic fallback).
type DirectionsProvider interface {
	// Resolve travel legs for the whole ordered coordinate sequence in a
	// single call. len(result.LegDurationSeconds) == len(coords)-1.
	RouteLegs(ctx context.Context, coords []domain.Coordinates) (RouteLegsResult, error)

	// Resolve an address to coordinates.
	Geocode(ctx context.Context, address string) (domain.Coordinates, error)

	// Resolve coordinates to a display address.
	ReverseGeocode(ctx context.Context, c domain.Coordinates) (string, error)

	// Free-text place search with an optional location bias.
	TextSearch(ctx context.Context, query string, bias *domain.Coordinates) ([]PlaceResult, error)
}
