package repositories

import (
	"encoding/json"
	"fmt"
	"time"

	"route-schedule-service/internal/domain"
)

// Persisted route documents accumulated field aliases over time
// (route_key/routeKey/route_code, lat/latitude, lng/longitude/lon). This
// file is the one place those aliases exist: decoding normalizes every
// variant into the canonical domain shape, and encoding always writes
// canonical snake_case. Nothing past this boundary ever sees an alias.

type stopDocument struct {
	StopID  string   `json:"stop_id,omitempty"`
	ID      string   `json:"id,omitempty"` // legacy alias
	Name    string   `json:"name"`
	Address string   `json:"address"`
	Lat     *float64 `json:"lat,omitempty"`
	Latit   *float64 `json:"latitude,omitempty"` // legacy alias
	Lng     *float64 `json:"lng,omitempty"`
	Longit  *float64 `json:"longitude,omitempty"` // legacy alias
	Lon     *float64 `json:"lon,omitempty"`       // legacy alias
}

type effectiveDatesDocument struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date,omitempty"`
}

type exceptionDocument struct {
	Date   string `json:"date"`
	Type   string `json:"type"`
	Reason string `json:"reason,omitempty"`
}

type scheduleDocument struct {
	OperatingDays  []int                   `json:"operating_days"`
	EffectiveDates *effectiveDatesDocument `json:"effective_dates,omitempty"`
	Exceptions     []exceptionDocument     `json:"exceptions,omitempty"`
}

type routeDocument struct {
	RouteKey      string            `json:"route_key,omitempty"`
	RouteKeyCamel string            `json:"routeKey,omitempty"`   // legacy alias
	RouteCode     string            `json:"route_code,omitempty"` // legacy alias
	Name          string            `json:"name"`
	Stops         []stopDocument    `json:"stops,omitempty"`
	Schedule      *scheduleDocument `json:"schedule,omitempty"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonNil(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// encodeRouteDocument serializes a route to its canonical persisted shape.
func encodeRouteDocument(r *domain.Route) ([]byte, error) {
	doc := routeDocument{
		RouteKey: r.RouteKey,
		Name:     r.Name,
	}

	for _, s := range r.Stops {
		sd := stopDocument{
			StopID:  s.StopID,
			Name:    s.Name,
			Address: s.Address,
		}
		if s.Location != nil {
			lat, lng := s.Location.Lat, s.Location.Lng
			sd.Lat = &lat
			sd.Lng = &lng
		}
		doc.Stops = append(doc.Stops, sd)
	}

	if r.Schedule != nil {
		sched := scheduleDocument{
			OperatingDays: r.Schedule.OperatingDays,
			EffectiveDates: &effectiveDatesDocument{
				StartDate: r.Schedule.EffectiveStart.Format(time.RFC3339),
			},
		}
		if r.Schedule.EffectiveEnd != nil {
			sched.EffectiveDates.EndDate = r.Schedule.EffectiveEnd.Format(time.RFC3339)
		}
		for _, e := range r.Schedule.Exceptions {
			sched.Exceptions = append(sched.Exceptions, exceptionDocument{
				Date:   e.Date.Format(time.RFC3339),
				Type:   string(e.Type),
				Reason: e.Reason,
			})
		}
		doc.Schedule = &sched
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode route document: %w", err)
	}
	return out, nil
}

// decodeRouteDocument parses a persisted document, folding every known
// field alias into the canonical shape.
func decodeRouteDocument(routeID, schoolID string, raw []byte) (*domain.Route, error) {
	var doc routeDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode route document: %w", err)
	}

	route := &domain.Route{
		RouteID:  routeID,
		SchoolID: schoolID,
		RouteKey: firstNonEmpty(doc.RouteKey, doc.RouteKeyCamel, doc.RouteCode),
		Name:     doc.Name,
	}

	for _, sd := range doc.Stops {
		stop := domain.StopItem{
			StopID:  firstNonEmpty(sd.StopID, sd.ID),
			Name:    sd.Name,
			Address: sd.Address,
		}
		lat := firstNonNil(sd.Lat, sd.Latit)
		lng := firstNonNil(sd.Lng, sd.Longit, sd.Lon)
		if lat != nil && lng != nil {
			stop.Location = &domain.Coordinates{Lat: *lat, Lng: *lng}
		}
		route.Stops = append(route.Stops, stop)
	}

	if doc.Schedule != nil {
		sched := domain.RouteSchedule{OperatingDays: doc.Schedule.OperatingDays}

		if doc.Schedule.EffectiveDates != nil {
			start, err := parseDocTime(doc.Schedule.EffectiveDates.StartDate)
			if err != nil {
				return nil, fmt.Errorf("decode route document: effective start: %w", err)
			}
			sched.EffectiveStart = start

			if doc.Schedule.EffectiveDates.EndDate != "" {
				end, err := parseDocTime(doc.Schedule.EffectiveDates.EndDate)
				if err != nil {
					return nil, fmt.Errorf("decode route document: effective end: %w", err)
				}
				sched.EffectiveEnd = &end
			}
		}

		for i, ed := range doc.Schedule.Exceptions {
			date, err := parseDocTime(ed.Date)
			if err != nil {
				return nil, fmt.Errorf("decode route document: exception #%d: %w", i+1, err)
			}
			sched.Exceptions = append(sched.Exceptions, domain.ScheduleException{
				Date:   date,
				Type:   domain.ExceptionType(ed.Type),
				Reason: ed.Reason,
			})
		}

		route.Schedule = &sched
	}

	return route, nil
}

// parseDocTime accepts the timestamp formats observed in persisted
// documents: RFC3339 and bare calendar dates.
func parseDocTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
	}
	return t, nil
}
