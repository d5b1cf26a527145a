package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"route-schedule-service/internal/adapters/directions"
	"route-schedule-service/internal/domain"
	"route-schedule-service/internal/ports"
)

func testStops() []domain.StopItem {
	return []domain.StopItem{
		{StopID: "A", Name: "A", Location: &domain.Coordinates{Lat: 0, Lng: 0}},
		{StopID: "B", Name: "B", Location: &domain.Coordinates{Lat: 0, Lng: 1}},
		{StopID: "C", Name: "C", Location: &domain.Coordinates{Lat: 0, Lng: 2}},
	}
}

func stopCoords(stops []domain.StopItem) []domain.Coordinates {
	out := make([]domain.Coordinates, len(stops))
	for i, s := range stops {
		out[i] = *s.Location
	}
	return out
}

func TestComputeTimingsProviderScenario(t *testing.T) {
	stops := testStops()

	provider := directions.NewMockDirectionsProvider()
	provider.SetLegs(stopCoords(stops), ports.RouteLegsResult{
		LegDurationSeconds: []int{600, 900}, // 10 and 15 minutes
		PathEncoding:       "encoded",
	})

	engine := NewEngineContext(DefaultTimingCacheCapacity, nil)
	calc := NewTimingCalculator(engine, provider)

	start := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	res, err := calc.ComputeTimings(context.Background(), stops, start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantETAs := []time.Time{
		start,
		start.Add(12 * time.Minute), // 08:12 AM
		start.Add(29 * time.Minute), // 08:29 AM
	}
	for i, want := range wantETAs {
		if res.Stops[i].ETA == nil || !res.Stops[i].ETA.Equal(want) {
			t.Errorf("ETA[%d] = %v, want %v", i, res.Stops[i].ETA, want)
		}
	}

	if res.TotalDurationMinutes != 29 {
		t.Errorf("total duration = %d, want 29", res.TotalDurationMinutes)
	}
	if !res.CalculatedEndTime.Equal(start.Add(29 * time.Minute)) {
		t.Errorf("end time = %v, want 08:29", res.CalculatedEndTime)
	}
	if res.PathEncoding != "encoded" {
		t.Errorf("path encoding = %q", res.PathEncoding)
	}
	if res.Source != SourceProvider {
		t.Errorf("source = %q, want provider", res.Source)
	}

	// Input stops must not be mutated.
	for i, s := range stops {
		if s.ETA != nil {
			t.Errorf("input stop %d was mutated", i)
		}
	}
}

func TestComputeTimingsETAsStrictlyIncreasing(t *testing.T) {
	stops := testStops()
	provider := directions.NewMockDirectionsProvider()

	engine := NewEngineContext(DefaultTimingCacheCapacity, nil)
	calc := NewTimingCalculator(engine, provider)

	start := time.Date(2025, 9, 1, 7, 15, 0, 0, time.UTC)
	res, err := calc.ComputeTimings(context.Background(), stops, start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !res.Stops[0].ETA.Equal(start) {
		t.Fatalf("ETA[0] = %v, want start time", res.Stops[0].ETA)
	}
	for i := 1; i < len(res.Stops); i++ {
		if !res.Stops[i].ETA.After(*res.Stops[i-1].ETA) {
			t.Fatalf("ETA[%d] not after ETA[%d]", i, i-1)
		}
	}
}

func TestComputeTimingsCacheHitSkipsProvider(t *testing.T) {
	stops := testStops()

	provider := directions.NewMockDirectionsProvider()
	provider.SetLegs(stopCoords(stops), ports.RouteLegsResult{
		LegDurationSeconds: []int{600, 900},
	})

	engine := NewEngineContext(DefaultTimingCacheCapacity, nil)
	calc := NewTimingCalculator(engine, provider)

	first := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	if _, err := calc.ComputeTimings(context.Background(), stops, first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Same sequence, different start time: must be a pure cache hit.
	second := time.Date(2025, 9, 1, 14, 0, 0, 0, time.UTC)
	res, err := calc.ComputeTimings(context.Background(), stops, second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if provider.Calls() != 1 {
		t.Fatalf("provider calls = %d, want 1", provider.Calls())
	}
	if res.Source != SourceCache {
		t.Fatalf("source = %q, want cache", res.Source)
	}
	if !res.Stops[1].ETA.Equal(second.Add(12 * time.Minute)) {
		t.Fatalf("cached legs not re-anchored to new start: ETA[1] = %v", res.Stops[1].ETA)
	}

	// Cache hits must not consume quota either.
	want := float64(1) / float64(defaultCeilings[OpDirections]) * 100
	if got := engine.Quota.PercentUsed(OpDirections); got != want {
		t.Fatalf("quota used = %v, want %v (a single reservation)", got, want)
	}
}

func TestComputeTimingsDegenerateStopCounts(t *testing.T) {
	provider := directions.NewMockDirectionsProvider()
	engine := NewEngineContext(DefaultTimingCacheCapacity, nil)
	calc := NewTimingCalculator(engine, provider)

	start := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)

	for _, stops := range [][]domain.StopItem{
		nil,
		{{StopID: "only", Location: &domain.Coordinates{Lat: 1, Lng: 1}}},
	} {
		res, err := calc.ComputeTimings(context.Background(), stops, start)
		if err != nil {
			t.Fatalf("degenerate case should not error: %v", err)
		}
		if res.TotalDurationMinutes != 0 {
			t.Fatalf("duration = %d, want 0", res.TotalDurationMinutes)
		}
		if !res.CalculatedEndTime.Equal(start) {
			t.Fatalf("end time = %v, want start", res.CalculatedEndTime)
		}
		for i, s := range res.Stops {
			if s.ETA == nil || !s.ETA.Equal(start) {
				t.Fatalf("stop %d ETA = %v, want start", i, s.ETA)
			}
		}
	}

	if provider.Calls() != 0 {
		t.Fatalf("degenerate cases must not call the provider; calls = %d", provider.Calls())
	}
}

func TestComputeTimingsUnresolvedStops(t *testing.T) {
	stops := testStops()
	stops[1].Location = nil

	provider := directions.NewMockDirectionsProvider()
	engine := NewEngineContext(DefaultTimingCacheCapacity, nil)
	calc := NewTimingCalculator(engine, provider)

	_, err := calc.ComputeTimings(context.Background(), stops, time.Now())
	if err == nil {
		t.Fatal("expected error for unresolved stop coordinates")
	}
	if !errors.Is(err, domain.ErrInsufficientStops) {
		t.Fatalf("error = %v, want ErrInsufficientStops", err)
	}
}

func TestComputeTimingsFallbackOnProviderFailure(t *testing.T) {
	stops := testStops()

	provider := directions.NewMockDirectionsProvider()
	provider.Fail(true)

	engine := NewEngineContext(DefaultTimingCacheCapacity, nil)
	calc := NewTimingCalculator(engine, provider)

	start := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	res, err := calc.ComputeTimings(context.Background(), stops, start)
	if err != nil {
		t.Fatalf("fallback must recover, got error: %v", err)
	}

	if res.Source != SourceEstimated {
		t.Fatalf("source = %q, want estimated", res.Source)
	}
	if res.TotalDurationMinutes <= 0 {
		t.Fatal("synthetic schedule should have a positive duration")
	}
	if res.PathEncoding == "" {
		t.Fatal("synthetic result should carry an encoded path")
	}

	// Synthetic results are never cached.
	if engine.Cache.Len() != 0 {
		t.Fatalf("cache len = %d, want 0 after fallback", engine.Cache.Len())
	}

	// The estimator is deterministic: a retry yields the same schedule.
	again, err := calc.ComputeTimings(context.Background(), stops, start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.TotalDurationMinutes != res.TotalDurationMinutes {
		t.Fatalf("synthetic estimator not deterministic: %d vs %d",
			again.TotalDurationMinutes, res.TotalDurationMinutes)
	}
}

func TestComputeTimingsFallbackWhenQuotaExhausted(t *testing.T) {
	stops := testStops()

	provider := directions.NewMockDirectionsProvider()
	provider.SetLegs(stopCoords(stops), ports.RouteLegsResult{
		LegDurationSeconds: []int{600, 900},
	})

	engine := NewEngineContext(DefaultTimingCacheCapacity, map[OpType]int{OpDirections: 1})
	calc := NewTimingCalculator(engine, provider)

	start := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	if _, err := calc.ComputeTimings(context.Background(), stops, start); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A different sequence misses the cache; with quota exhausted it must
	// fall back without touching the provider.
	other := []domain.StopItem{
		{StopID: "X", Location: &domain.Coordinates{Lat: 10, Lng: 10}},
		{StopID: "Y", Location: &domain.Coordinates{Lat: 10, Lng: 11}},
	}
	res, err := calc.ComputeTimings(context.Background(), other, start)
	if err != nil {
		t.Fatalf("quota denial must recover via fallback: %v", err)
	}
	if res.Source != SourceEstimated {
		t.Fatalf("source = %q, want estimated", res.Source)
	}
	if provider.Calls() != 1 {
		t.Fatalf("provider calls = %d, want 1 (quota denial performs no call)", provider.Calls())
	}
}
