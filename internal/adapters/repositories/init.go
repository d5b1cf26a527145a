package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"route-schedule-service/internal/domain"
)

// Initialize the routes schema. The statements are dialect-neutral and run
// against both SQLite and Postgres.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createRoutesQuery := `
	CREATE TABLE IF NOT EXISTS routes (
		route_id TEXT PRIMARY KEY,
		school_id TEXT NOT NULL,
		doc TEXT NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_routes_school_id
    ON routes(school_id);
	`

	statements := []string{
		createRoutesQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type stopSeed struct {
	Name    string   `json:"name"`
	Address string   `json:"address"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
}

type routeSeed struct {
	RouteID  string     `json:"route_id"`
	RouteKey string     `json:"route_key"`
	Name     string     `json:"name"`
	SchoolID string     `json:"school_id"`
	Stops    []stopSeed `json:"stops"`
}

// LoadSeeds parses demo route data from a JSON file. Seed rows without IDs
// get generated ones.
func LoadSeeds(jsonPath string) ([]*domain.Route, error) {
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("load seeds: read %q: %w", jsonPath, err)
	}

	var data []routeSeed
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("load seeds: parse json: %w", err)
	}

	routes := make([]*domain.Route, 0, len(data))
	for i, item := range data {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			return nil, fmt.Errorf("load seeds: route at index %d: name cannot be empty", i+1)
		}
		schoolID := strings.TrimSpace(item.SchoolID)
		if schoolID == "" {
			return nil, fmt.Errorf("load seeds: route %q: school_id cannot be empty", name)
		}

		routeID := item.RouteID
		if routeID == "" {
			routeID = uuid.NewString()
		}

		route := &domain.Route{
			RouteID:  routeID,
			RouteKey: item.RouteKey,
			Name:     name,
			SchoolID: schoolID,
		}

		for _, s := range item.Stops {
			stop := domain.StopItem{
				StopID:  uuid.NewString(),
				Name:    s.Name,
				Address: s.Address,
			}
			if s.Lat != nil && s.Lng != nil {
				stop.Location = &domain.Coordinates{Lat: *s.Lat, Lng: *s.Lng}
			}
			route.Stops = append(route.Stops, stop)
		}

		routes = append(routes, route)
	}

	return routes, nil
}
