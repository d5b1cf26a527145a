package directions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/bluele/gcache"

	"route-schedule-service/internal/domain"
	"route-schedule-service/internal/ports"
)

// ORSDirectionsProvider implements DirectionsProvider using OpenRouteService.
//
// It coordinates:
//   - A one-time readiness probe awaited by every public call
//   - An in-memory LRU memo for geocode lookups
//   - External API calls with retry/backoff
//
// The provider is safe for concurrent use.
type ORSDirectionsProvider struct {
	session *http.Client
	apiKey  string
	baseURL string
	profile string

	geocodeMemo gcache.Cache

	readyOnce sync.Once
	ready     chan struct{}
	readyErr  error
}

func NewORSDirectionsProvider(apiKey string) (*ORSDirectionsProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	provider := &ORSDirectionsProvider{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: "https://api.openrouteservice.org",
		profile: "driving-car",
		geocodeMemo: gcache.New(10000).
			LRU().
			Expiration(24 * time.Hour).
			Build(),
		ready: make(chan struct{}),
	}

	return provider, nil
}

// Ready blocks until the one-time readiness probe has completed, or the
// context is done. The probe runs at most once per provider; calls made
// before readiness await it rather than polling.
func (o *ORSDirectionsProvider) Ready(ctx context.Context) error {
	o.readyOnce.Do(func() {
		go func() {
			o.readyErr = o.probe(ctx)
			close(o.ready)
		}()
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-o.ready:
		return o.readyErr
	}
}

func (o *ORSDirectionsProvider) probe(ctx context.Context) error {
	endpoint := o.baseURL + "/health"
	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return fmt.Errorf("readiness probe: %w", err)
	}
	resp.Body.Close()
	return nil
}

type directionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
}

type directionsResponse struct {
	Routes []struct {
		Segments []struct {
			Duration float64 `json:"duration"`
		} `json:"segments"`
		Geometry string `json:"geometry"`
	} `json:"routes"`
}

// RouteLegs resolves per-leg travel durations for the whole ordered
// coordinate sequence in a single directions call.
func (o *ORSDirectionsProvider) RouteLegs(ctx context.Context, coords []domain.Coordinates) (ports.RouteLegsResult, error) {
	if len(coords) < 2 {
		return ports.RouteLegsResult{}, errors.New("route legs: at least 2 coordinates required")
	}

	if err := o.Ready(ctx); err != nil {
		return ports.RouteLegsResult{}, fmt.Errorf("route legs: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/directions/%s", o.baseURL, o.profile)

	locations := make([][]float64, 0, len(coords))
	for _, c := range coords {
		locations = append(locations, c.CoordsToList())
	}

	payload, err := json.Marshal(directionsRequest{Coordinates: locations})
	if err != nil {
		return ports.RouteLegsResult{}, fmt.Errorf("marshal directions request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return ports.RouteLegsResult{}, fmt.Errorf("directions request failed: %w", err)
	}
	defer resp.Body.Close()

	var dr directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return ports.RouteLegsResult{}, fmt.Errorf("decode directions response: %w", err)
	}

	if len(dr.Routes) == 0 {
		return ports.RouteLegsResult{}, errors.New("directions response has no routes")
	}

	route := dr.Routes[0]
	if len(route.Segments) != len(coords)-1 {
		return ports.RouteLegsResult{}, fmt.Errorf(
			"expected %d segments for %d coordinates; got %d",
			len(coords)-1, len(coords), len(route.Segments),
		)
	}

	legs := make([]int, 0, len(route.Segments))
	for _, seg := range route.Segments {
		legs = append(legs, int(seg.Duration))
	}

	return ports.RouteLegsResult{
		LegDurationSeconds: legs,
		PathEncoding:       route.Geometry,
	}, nil
}

type geocodeResponse struct {
	Features []struct {
		Properties struct {
			Name  string `json:"name"`
			Label string `json:"label"`
		} `json:"properties"`
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// Geocode resolves an address to coordinates, consulting the in-memory memo
// before issuing an external call.
func (o *ORSDirectionsProvider) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	if address == "" {
		return domain.Coordinates{}, errors.New("geocode: address must be non-empty")
	}

	if cached, err := o.geocodeMemo.Get(address); err == nil {
		if c, ok := cached.(domain.Coordinates); ok {
			return c, nil
		}
	}

	if err := o.Ready(ctx); err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode: %w", err)
	}

	decoded, err := o.searchGeocode(ctx, address, nil, 1)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", address, err)
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, fmt.Errorf("no geocode results for %q", address)
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Coordinates{}, fmt.Errorf("invalid coordinate format for %q", address)
	}

	result := domain.Coordinates{Lat: coords[1], Lng: coords[0]}
	_ = o.geocodeMemo.Set(address, result)
	return result, nil
}

// ReverseGeocode resolves coordinates to a display address.
func (o *ORSDirectionsProvider) ReverseGeocode(ctx context.Context, c domain.Coordinates) (string, error) {
	if err := o.Ready(ctx); err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}

	endpoint := o.baseURL + "/geocode/reverse"
	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("point.lat", strconv.FormatFloat(c.Lat, 'f', 6, 64))
		q.Set("point.lon", strconv.FormatFloat(c.Lng, 'f', 6, 64))
		q.Set("size", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return "", fmt.Errorf("reverse geocode request: %w", err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode reverse geocode response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return "", fmt.Errorf("no address found for %.6f,%.6f", c.Lat, c.Lng)
	}

	return decoded.Features[0].Properties.Label, nil
}

// TextSearch resolves a free-text query to place candidates, optionally
// biased toward a location.
func (o *ORSDirectionsProvider) TextSearch(ctx context.Context, query string, bias *domain.Coordinates) ([]ports.PlaceResult, error) {
	if query == "" {
		return nil, errors.New("text search: query must be non-empty")
	}

	if err := o.Ready(ctx); err != nil {
		return nil, fmt.Errorf("text search: %w", err)
	}

	decoded, err := o.searchGeocode(ctx, query, bias, 5)
	if err != nil {
		return nil, fmt.Errorf("text search %q: %w", query, err)
	}

	out := make([]ports.PlaceResult, 0, len(decoded.Features))
	for _, f := range decoded.Features {
		if len(f.Geometry.Coordinates) != 2 {
			continue
		}
		out = append(out, ports.PlaceResult{
			Name:    f.Properties.Name,
			Address: f.Properties.Label,
			Location: domain.Coordinates{
				Lat: f.Geometry.Coordinates[1],
				Lng: f.Geometry.Coordinates[0],
			},
		})
	}

	return out, nil
}

func (o *ORSDirectionsProvider) searchGeocode(ctx context.Context, text string, bias *domain.Coordinates, size int) (*geocodeResponse, error) {
	endpoint := o.baseURL + "/geocode/search"

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", text)
		q.Set("size", strconv.Itoa(size))
		if bias != nil {
			q.Set("focus.point.lat", strconv.FormatFloat(bias.Lat, 'f', 6, 64))
			q.Set("focus.point.lon", strconv.FormatFloat(bias.Lng, 'f', 6, 64))
		}
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}

	return &decoded, nil
}
