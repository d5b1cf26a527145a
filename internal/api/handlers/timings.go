package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"route-schedule-service/internal/api/dto"
	"route-schedule-service/internal/domain"
	"route-schedule-service/internal/services"
)

// TimingHandler computes per-stop arrival estimates for an ordered stop
// list. Provider failures never surface here: the calculator recovers with
// its synthetic estimator and the response carries source=estimated.
type TimingHandler struct {
	Calc *services.TimingCalculator
}

func (h *TimingHandler) Compute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.TimingRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	startTime, err := parseStartTime(req.StartTime, time.Now())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	stops := make([]domain.StopItem, 0, len(req.Stops))
	for _, s := range req.Stops {
		stop := domain.StopItem{
			StopID:  s.StopID,
			Name:    s.Name,
			Address: s.Address,
		}
		if s.Lat != nil && s.Lng != nil {
			stop.Location = &domain.Coordinates{Lat: *s.Lat, Lng: *s.Lng}
		}
		stops = append(stops, stop)
	}

	result, err := h.Calc.ComputeTimings(r.Context(), stops, startTime)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStops) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("compute timings failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.TimingResponse{
		Stops:                make([]dto.TimingStopResponse, 0, len(result.Stops)),
		TotalDurationMinutes: result.TotalDurationMinutes,
		CalculatedEndTime:    result.CalculatedEndTime,
		PathEncoding:         result.PathEncoding,
		Source:               string(result.Source),
	}
	for _, s := range result.Stops {
		sr := dto.TimingStopResponse{StopID: s.StopID, Name: s.Name}
		if s.ETA != nil {
			sr.ETA = *s.ETA
		}
		res.Stops = append(res.Stops, sr)
	}

	writeJSON(w, r, http.StatusOK, res)
}

// QuotaHandler exposes quota usage for UI display. Read-only.
type QuotaHandler struct {
	Guard *services.QuotaGuard
}

func (h *QuotaHandler) Usage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ops := []services.OpType{
		services.OpGeocoding,
		services.OpDirections,
		services.OpPlaces,
		services.OpMapScriptLoad,
	}

	res := dto.QuotaResponse{PercentUsed: make(map[string]float64, len(ops))}
	for _, op := range ops {
		res.PercentUsed[string(op)] = h.Guard.PercentUsed(op)
	}

	writeJSON(w, r, http.StatusOK, res)
}
