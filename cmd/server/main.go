package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"route-schedule-service/internal/adapters/directions"
	"route-schedule-service/internal/adapters/repositories"
	"route-schedule-service/internal/api"
	"route-schedule-service/internal/config"
	"route-schedule-service/internal/ports"
	"route-schedule-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (SQLite, OpenRouteService) behind ports,
// constructs the shared engine context, and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	dbPath := config.Get("DB_PATH", "data/app.db")
	seedPath := config.Get("SEED_PATH", "data/seeds/routes.json")
	port := config.Get("PORT", "8080")

	db, err := openDB(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	// Initialize schema and seed demo data on startup for local runs.
	if err := initAndSeed(db, seedPath); err != nil {
		log.Fatal(err)
	}

	// The engine context owns the process-wide timing cache and quota
	// counters; one instance is shared by every request.
	engine := services.NewEngineContext(
		config.GetInt("TIMING_CACHE_CAPACITY", services.DefaultTimingCacheCapacity),
		map[services.OpType]int{
			services.OpGeocoding:     config.GetInt("QUOTA_GEOCODING", 0),
			services.OpDirections:    config.GetInt("QUOTA_DIRECTIONS", 0),
			services.OpPlaces:        config.GetInt("QUOTA_PLACES", 0),
			services.OpMapScriptLoad: config.GetInt("QUOTA_MAP_SCRIPT_LOAD", 0),
		},
	)

	var provider ports.DirectionsProvider
	orsKey := strings.TrimSpace(os.Getenv("ORS_API_KEY"))
	if orsKey == "" {
		// Timing still works without a key: the mock serves local dev and
		// the calculator falls back to its synthetic estimator on misses.
		log.Println("ORS_API_KEY not set; using mock directions provider")
		provider = directions.NewMockDirectionsProvider()
	} else {
		ors, err := directions.NewORSDirectionsProvider(orsKey)
		if err != nil {
			log.Fatal(err)
		}
		provider = ors
	}

	repo := repositories.NewSqliteRouteRepository(db)
	router := api.NewRouter(repo, provider, engine)

	// Timeouts are tuned for cold-cache timing requests (external API latency).
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func openDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("openDB: open sqlite database %q: %w", dbPath, err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify sqlite connection to %q: %w", dbPath, err)
	}

	return db, nil
}

func initAndSeed(db *sql.DB, seedPath string) error {
	if err := repositories.InitSchema(db); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if _, err := os.Stat(seedPath); os.IsNotExist(err) {
		log.Printf("seed file %q not found; skipping seed", seedPath)
		return nil
	}

	routes, err := repositories.LoadSeeds(seedPath)
	if err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	repo := repositories.NewSqliteRouteRepository(db)
	ctx := context.Background()
	for _, route := range routes {
		if err := repo.SaveRoute(ctx, route); err != nil {
			return fmt.Errorf("init and seed: %w", err)
		}
	}

	return nil
}
