package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"route-schedule-service/internal/domain"
)

// SQLite-backed implementation of the RouteRepository port. Route documents
// are stored as JSON in the doc column; alias normalization happens in
// docmap.go.
type SqliteRouteRepository struct{ DB *sql.DB }

func NewSqliteRouteRepository(db *sql.DB) *SqliteRouteRepository {
	return &SqliteRouteRepository{DB: db}
}

// Return all routes belonging to a school.
func (s *SqliteRouteRepository) ListRoutes(ctx context.Context, schoolID string) ([]*domain.Route, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite route repository: DB is nil")
	}

	query := `
	SELECT
		route_id,
		school_id,
		doc
	FROM routes
	WHERE school_id = ?
	ORDER BY route_id;
	`
	rows, err := s.DB.QueryContext(ctx, query, schoolID)
	if err != nil {
		return nil, fmt.Errorf("list routes: query routes table: %w", err)
	}
	defer rows.Close()

	routes := make([]*domain.Route, 0, 16)
	for rows.Next() {
		var id, school string
		var doc []byte
		if err := rows.Scan(&id, &school, &doc); err != nil {
			return nil, fmt.Errorf("list routes: scan row: %w", err)
		}

		route, err := decodeRouteDocument(id, school, doc)
		if err != nil {
			return nil, fmt.Errorf("list routes: route %q: %w", id, err)
		}
		routes = append(routes, route)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list routes: row iteration: %w", err)
	}

	return routes, nil
}

// Return one route by ID.
func (s *SqliteRouteRepository) GetRoute(ctx context.Context, routeID string) (*domain.Route, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite route repository: DB is nil")
	}

	query := `
	SELECT school_id, doc
	FROM routes
	WHERE route_id = ?;
	`
	var school string
	var doc []byte
	err := s.DB.QueryRowContext(ctx, query, routeID).Scan(&school, &doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get route: route %q not found", routeID)
	}
	if err != nil {
		return nil, fmt.Errorf("get route: query routes table: %w", err)
	}

	route, err := decodeRouteDocument(routeID, school, doc)
	if err != nil {
		return nil, fmt.Errorf("get route: route %q: %w", routeID, err)
	}
	return route, nil
}

// Persist a single route, validating its schedule first.
func (s *SqliteRouteRepository) SaveRoute(ctx context.Context, route *domain.Route) error {
	if s.DB == nil {
		return errors.New("sqlite route repository: DB is nil")
	}
	if route == nil || route.RouteID == "" {
		return errors.New("save route: route with ID is required")
	}

	if route.Schedule != nil {
		if err := domain.ValidateSchedule(*route.Schedule); err != nil {
			return fmt.Errorf("save route %q: %w", route.RouteID, err)
		}
	}

	doc, err := encodeRouteDocument(route)
	if err != nil {
		return fmt.Errorf("save route %q: %w", route.RouteID, err)
	}

	query := `
	INSERT OR REPLACE INTO routes (
		route_id,
		school_id,
		doc
	)
	VALUES (?, ?, ?);
	`
	if _, err := s.DB.ExecContext(ctx, query, route.RouteID, route.SchoolID, doc); err != nil {
		return fmt.Errorf("save route %q: exec insert: %w", route.RouteID, err)
	}

	return nil
}

// Persist many routes one at a time. On failure the IDs written so far are
// returned so the caller can scope a retry; there is no cross-route
// transaction or rollback.
func (s *SqliteRouteRepository) SaveRoutes(ctx context.Context, routes []*domain.Route) ([]string, error) {
	saved := make([]string, 0, len(routes))
	for _, r := range routes {
		if err := s.SaveRoute(ctx, r); err != nil {
			return saved, fmt.Errorf("save routes: %w", err)
		}
		saved = append(saved, r.RouteID)
	}
	return saved, nil
}
