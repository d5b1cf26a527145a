package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"route-schedule-service/internal/api/dto"
	"route-schedule-service/internal/domain"
	"route-schedule-service/internal/ports"
)

// RouteHandler exposes read-only route retrieval endpoints.
type RouteHandler struct {
	Repo ports.RouteRepository
}

func (h *RouteHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	schoolID := strings.TrimSpace(r.URL.Query().Get("school_id"))
	if schoolID == "" {
		writeError(w, r, http.StatusBadRequest, "school_id is required")
		return
	}

	routes, err := h.Repo.ListRoutes(r.Context(), schoolID)
	if err != nil {
		log.Printf("list routes failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListRoutesResponse{
		Routes: make([]dto.RouteResponse, 0, len(routes)),
	}
	for _, route := range routes {
		res.Routes = append(res.Routes, toRouteResponse(route))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func toRouteResponse(route *domain.Route) dto.RouteResponse {
	out := dto.RouteResponse{
		RouteID:  route.RouteID,
		RouteKey: route.RouteKey,
		Name:     route.Name,
		SchoolID: route.SchoolID,
		Stops:    make([]dto.StopResponse, 0, len(route.Stops)),
	}

	for _, s := range route.Stops {
		sr := dto.StopResponse{
			StopID:  s.StopID,
			Name:    s.Name,
			Address: s.Address,
		}
		if s.Location != nil {
			lat, lng := s.Location.Lat, s.Location.Lng
			sr.Lat = &lat
			sr.Lng = &lng
		}
		out.Stops = append(out.Stops, sr)
	}

	if route.Schedule != nil {
		sched := dto.ScheduleResponse{
			OperatingDays: route.Schedule.OperatingDays,
			StartDate:     route.Schedule.EffectiveStart.Format(time.RFC3339),
		}
		if route.Schedule.EffectiveEnd != nil {
			sched.EndDate = route.Schedule.EffectiveEnd.Format(time.RFC3339)
		}
		for _, e := range route.Schedule.Exceptions {
			sched.Exceptions = append(sched.Exceptions, dto.ExceptionPayload{
				Date:   e.Date.Format(time.RFC3339),
				Type:   string(e.Type),
				Reason: e.Reason,
			})
		}
		out.Schedule = &sched
	}

	return out
}
