package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"route-schedule-service/internal/adapters/directions"
	"route-schedule-service/internal/api/dto"
	"route-schedule-service/internal/domain"
	"route-schedule-service/internal/ports"
	"route-schedule-service/internal/services"
)

func TestParseStartTime(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	got, err := parseStartTime("08:00 AM", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("wall clock = %v, want %v", got, want)
	}

	got, err = parseStartTime("02:30 PM", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Hour() != 14 || got.Minute() != 30 {
		t.Fatalf("PM clock = %v, want 14:30", got)
	}

	rfc := "2025-09-02T07:45:00Z"
	got, err = parseStartTime(rfc, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Format(time.RFC3339) != rfc {
		t.Fatalf("RFC3339 = %v, want %s", got, rfc)
	}

	if _, err := parseStartTime("soon", now); err == nil {
		t.Fatal("expected error for unrecognized start time")
	}
}

func TestTimingHandlerCompute(t *testing.T) {
	provider := directions.NewMockDirectionsProvider()
	provider.SetLegs(
		[]domain.Coordinates{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}, {Lat: 0, Lng: 2}},
		ports.RouteLegsResult{LegDurationSeconds: []int{600, 900}},
	)

	engine := services.NewEngineContext(services.DefaultTimingCacheCapacity, nil)
	h := &TimingHandler{Calc: services.NewTimingCalculator(engine, provider)}

	body := `{
		"stops": [
			{"stop_id": "A", "name": "A", "lat": 0, "lng": 0},
			{"stop_id": "B", "name": "B", "lat": 0, "lng": 1},
			{"stop_id": "C", "name": "C", "lat": 0, "lng": 2}
		],
		"start_time": "08:00 AM"
	}`

	req := httptest.NewRequest(http.MethodPost, "/routes/timings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Compute(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var res dto.TimingResponse
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if res.TotalDurationMinutes != 29 {
		t.Fatalf("total duration = %d, want 29", res.TotalDurationMinutes)
	}
	if res.Source != "provider" {
		t.Fatalf("source = %q, want provider", res.Source)
	}
	if len(res.Stops) != 3 {
		t.Fatalf("stops = %d, want 3", len(res.Stops))
	}
	if got := res.Stops[2].ETA.Sub(res.Stops[0].ETA); got != 29*time.Minute {
		t.Fatalf("last ETA offset = %v, want 29m", got)
	}
}

func TestTimingHandlerRejectsBadPayloads(t *testing.T) {
	engine := services.NewEngineContext(services.DefaultTimingCacheCapacity, nil)
	h := &TimingHandler{Calc: services.NewTimingCalculator(engine, directions.NewMockDirectionsProvider())}

	cases := []struct {
		name string
		body string
	}{
		{"missing start_time", `{"stops": []}`},
		{"unknown field", `{"stops": [], "start_time": "08:00 AM", "bogus": 1}`},
		{"bad lat", `{"stops": [{"stop_id": "A", "lat": 95, "lng": 0}], "start_time": "08:00 AM"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/routes/timings", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			h.Compute(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestQuotaHandlerUsage(t *testing.T) {
	engine := services.NewEngineContext(services.DefaultTimingCacheCapacity, map[services.OpType]int{
		services.OpDirections: 4,
	})
	engine.Quota.TryReserve(services.OpDirections)

	h := &QuotaHandler{Guard: engine.Quota}

	req := httptest.NewRequest(http.MethodGet, "/quota", nil)
	rec := httptest.NewRecorder()
	h.Usage(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var res dto.QuotaResponse
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if got := res.PercentUsed["directions"]; got != 25 {
		t.Fatalf("directions percent = %v, want 25", got)
	}
	if got := res.PercentUsed["geocoding"]; got != 0 {
		t.Fatalf("geocoding percent = %v, want 0", got)
	}
}
