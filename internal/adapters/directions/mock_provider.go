package directions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"route-schedule-service/internal/domain"
	"route-schedule-service/internal/ports"
)

// MockDirectionsProvider serves canned leg durations keyed by the ordered
// coordinate sequence, plus a geocode table. Used by tests and as the local
// development backend when no API key is configured.
type MockDirectionsProvider struct {
	mu        sync.Mutex
	legs      map[string]ports.RouteLegsResult
	addresses map[string]domain.Coordinates
	fail      bool
	calls     int
}

func NewMockDirectionsProvider() *MockDirectionsProvider {
	return &MockDirectionsProvider{
		legs:      make(map[string]ports.RouteLegsResult),
		addresses: make(map[string]domain.Coordinates),
	}
}

func seqKey(coords []domain.Coordinates) string {
	parts := make([]string, 0, len(coords))
	for _, c := range coords {
		parts = append(parts, fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lng))
	}
	return strings.Join(parts, ";")
}

// SetLegs registers the result returned for the exact coordinate sequence.
func (p *MockDirectionsProvider) SetLegs(coords []domain.Coordinates, result ports.RouteLegsResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.legs[seqKey(coords)] = result
}

// SetAddress registers a geocode table entry.
func (p *MockDirectionsProvider) SetAddress(address string, c domain.Coordinates) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.addresses[address] = c
}

// Fail makes every subsequent call return an error, simulating an outage.
func (p *MockDirectionsProvider) Fail(fail bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fail = fail
}

// Calls reports how many RouteLegs calls have been issued.
func (p *MockDirectionsProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func (p *MockDirectionsProvider) RouteLegs(ctx context.Context, coords []domain.Coordinates) (ports.RouteLegsResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	if p.fail {
		return ports.RouteLegsResult{}, errors.New("mock provider: unavailable")
	}

	r, ok := p.legs[seqKey(coords)]
	if !ok {
		// Unregistered sequences get uniform 5-minute legs so local dev
		// works without fixtures.
		legs := make([]int, len(coords)-1)
		for i := range legs {
			legs[i] = 300
		}
		return ports.RouteLegsResult{LegDurationSeconds: legs}, nil
	}
	return r, nil
}

func (p *MockDirectionsProvider) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.fail {
		return domain.Coordinates{}, errors.New("mock provider: unavailable")
	}

	c, ok := p.addresses[address]
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("mock provider: unknown address %q", address)
	}
	return c, nil
}

func (p *MockDirectionsProvider) ReverseGeocode(ctx context.Context, c domain.Coordinates) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.fail {
		return "", errors.New("mock provider: unavailable")
	}

	for addr, loc := range p.addresses {
		if loc == c {
			return addr, nil
		}
	}
	return "", fmt.Errorf("mock provider: no address at %.6f,%.6f", c.Lat, c.Lng)
}

func (p *MockDirectionsProvider) TextSearch(ctx context.Context, query string, bias *domain.Coordinates) ([]ports.PlaceResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.fail {
		return nil, errors.New("mock provider: unavailable")
	}

	out := make([]ports.PlaceResult, 0)
	for addr, loc := range p.addresses {
		if strings.Contains(strings.ToLower(addr), strings.ToLower(query)) {
			out = append(out, ports.PlaceResult{Name: addr, Address: addr, Location: loc})
		}
	}
	return out, nil
}
