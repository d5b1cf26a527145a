package ports

import (
	"context"

	"route-schedule-service/internal/domain"
)

// Port: a boundary for loading and persisting Route entities.
//
// SaveRoutes persists each route independently (no cross-route transaction)
// and returns the IDs that were written even when a later route fails, so
// callers can scope retries after a partial failure.
type RouteRepository interface {
	// Retrieve all routes belonging to a school/fleet.
	ListRoutes(ctx context.Context, schoolID string) ([]*domain.Route, error)

	// Retrieve one route by ID.
	GetRoute(ctx context.Context, routeID string) (*domain.Route, error)

	// Persist a single route.
	SaveRoute(ctx context.Context, route *domain.Route) error

	// Persist many routes, one at a time. Returns the IDs saved so far
	// alongside the first error encountered.
	SaveRoutes(ctx context.Context, routes []*domain.Route) ([]string, error)
}
