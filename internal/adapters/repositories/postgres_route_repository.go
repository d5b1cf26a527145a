package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"route-schedule-service/internal/domain"
	"route-schedule-service/internal/platform/obs"
)

// Postgres-backed implementation of the RouteRepository port, used by
// deployments that share one database across instances.
type PostgresRouteRepository struct{ DB *sql.DB }

func NewPostgresRouteRepository(db *sql.DB) *PostgresRouteRepository {
	return &PostgresRouteRepository{DB: db}
}

func (p *PostgresRouteRepository) ListRoutes(ctx context.Context, schoolID string) (_ []*domain.Route, err error) {
	defer obs.Time(ctx, "routes.pg.ListRoutes")(&err)

	if p.DB == nil {
		return nil, errors.New("postgres route repository: DB is nil")
	}

	q := `
	SELECT route_id, school_id, doc
    FROM routes
    WHERE school_id = $1
    ORDER BY route_id;
	`

	rows, err := p.DB.QueryContext(ctx, q, schoolID)
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

func (p *PostgresRouteRepository) GetRoute(ctx context.Context, routeID string) (_ *domain.Route, err error) {
	defer obs.Time(ctx, "routes.pg.GetRoute")(&err)

	if p.DB == nil {
		return nil, errors.New("postgres route repository: DB is nil")
	}

	q := `
	SELECT school_id, doc
    FROM routes
    WHERE route_id = $1;
	`

	var school string
	var doc []byte
	err = p.DB.QueryRowContext(ctx, q, routeID).Scan(&school, &doc)
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

func (p *PostgresRouteRepository) SaveRoute(ctx context.Context, route *domain.Route) error {
	if p.DB == nil {
		return errors.New("postgres route repository: DB is nil")
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

	q := `
	INSERT INTO routes (route_id, school_id, doc)
    VALUES ($1, $2, $3)
	ON CONFLICT (route_id) DO UPDATE
	SET school_id = EXCLUDED.school_id,
		doc = EXCLUDED.doc;
	`
	if _, err := p.DB.ExecContext(ctx, q, route.RouteID, route.SchoolID, doc); err != nil {
		return fmt.Errorf("save route %q: exec insert: %w", route.RouteID, err)
	}

	return nil
}

func (p *PostgresRouteRepository) SaveRoutes(ctx context.Context, routes []*domain.Route) ([]string, error) {
	saved := make([]string, 0, len(routes))
	for _, r := range routes {
		if err := p.SaveRoute(ctx, r); err != nil {
			return saved, fmt.Errorf("save routes: %w", err)
		}
		saved = append(saved, r.RouteID)
	}
	return saved, nil
}
