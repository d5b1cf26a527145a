package api

import (
	"net/http"

	"route-schedule-service/internal/api/handlers"
	"route-schedule-service/internal/ports"
	"route-schedule-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler. This is the API composition root (handlers stay unaware of
// concrete adapters and share one engine context).
func NewRouter(repo ports.RouteRepository, provider ports.DirectionsProvider, engine *services.EngineContext) http.Handler {
	mux := http.NewServeMux()

	routeHandler := &handlers.RouteHandler{Repo: repo}
	timingHandler := &handlers.TimingHandler{
		Calc: services.NewTimingCalculator(engine, provider),
	}
	quotaHandler := &handlers.QuotaHandler{Guard: engine.Quota}
	scheduleHandler := &handlers.ScheduleHandler{
		Repo:    repo,
		Applier: services.NewExceptionBulkApplier(),
	}
	placesHandler := &handlers.PlacesHandler{Provider: provider, Guard: engine.Quota}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/routes", routeHandler.List)
	mux.HandleFunc("/routes/timings", timingHandler.Compute)
	mux.HandleFunc("/routes/schedule", scheduleHandler.Save)
	mux.HandleFunc("/schedules/exceptions/apply", scheduleHandler.Apply)
	mux.HandleFunc("/schedules/exceptions/remove", scheduleHandler.Remove)
	mux.HandleFunc("/geocode", placesHandler.Geocode)
	mux.HandleFunc("/geocode/reverse", placesHandler.ReverseGeocode)
	mux.HandleFunc("/places/search", placesHandler.Search)
	mux.HandleFunc("/quota", quotaHandler.Usage)

	return loggingMiddleware(mux)
}
