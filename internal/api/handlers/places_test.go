package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"route-schedule-service/internal/adapters/directions"
	"route-schedule-service/internal/api/dto"
	"route-schedule-service/internal/domain"
	"route-schedule-service/internal/services"
)

func TestPlacesHandlerGeocode(t *testing.T) {
	provider := directions.NewMockDirectionsProvider()
	provider.SetAddress("1 Main St", domain.Coordinates{Lat: 40.7, Lng: -74.0})

	h := &PlacesHandler{Provider: provider, Guard: services.NewQuotaGuard(nil)}

	req := httptest.NewRequest(http.MethodGet, "/geocode?address=1+Main+St", nil)
	rec := httptest.NewRecorder()
	h.Geocode(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var res dto.GeocodeResponse
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.Lat != 40.7 || res.Lng != -74.0 {
		t.Fatalf("coords = %v,%v, want 40.7,-74", res.Lat, res.Lng)
	}
}

func TestPlacesHandlerGeocodeQuotaExhausted(t *testing.T) {
	guard := services.NewQuotaGuard(map[services.OpType]int{services.OpGeocoding: 1})
	guard.TryReserve(services.OpGeocoding)

	h := &PlacesHandler{Provider: directions.NewMockDirectionsProvider(), Guard: guard}

	req := httptest.NewRequest(http.MethodGet, "/geocode?address=anywhere", nil)
	rec := httptest.NewRecorder()
	h.Geocode(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
}

func TestPlacesHandlerReverseGeocodeRejectsBadCoords(t *testing.T) {
	h := &PlacesHandler{Provider: directions.NewMockDirectionsProvider(), Guard: services.NewQuotaGuard(nil)}

	cases := []string{
		"/geocode/reverse",
		"/geocode/reverse?lat=91&lng=0",
		"/geocode/reverse?lat=0&lng=east",
	}
	for _, url := range cases {
		req := httptest.NewRequest(http.MethodGet, url, nil)
		rec := httptest.NewRecorder()
		h.ReverseGeocode(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400", url, rec.Code)
		}
	}
}

func TestPlacesHandlerSearch(t *testing.T) {
	provider := directions.NewMockDirectionsProvider()
	provider.SetAddress("Lincoln Elementary School", domain.Coordinates{Lat: 41.0, Lng: -73.5})
	provider.SetAddress("Lincoln Tunnel", domain.Coordinates{Lat: 40.76, Lng: -74.01})

	h := &PlacesHandler{Provider: provider, Guard: services.NewQuotaGuard(nil)}

	req := httptest.NewRequest(http.MethodGet, "/places/search?q=lincoln&lat=40.7&lng=-74", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var res dto.PlaceSearchResponse
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(res.Places) != 2 {
		t.Fatalf("places = %d, want 2", len(res.Places))
	}
}
