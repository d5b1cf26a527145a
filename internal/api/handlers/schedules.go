package handlers

import (
	"errors"
	"log"
	"net/http"

	"route-schedule-service/internal/api/dto"
	"route-schedule-service/internal/domain"
	"route-schedule-service/internal/ports"
	"route-schedule-service/internal/services"
)

// ScheduleHandler covers single-route schedule saves and fleet-wide
// exception operations. Bulk operations apply in memory across the whole
// fleet first and persist afterwards; a partial persistence failure is
// surfaced with the IDs that did save, so the caller can retry the batch
// (replace and removal are idempotent).
type ScheduleHandler struct {
	Repo    ports.RouteRepository
	Applier *services.ExceptionBulkApplier
}

// Save validates and persists a single route's schedule.
func (h *ScheduleHandler) Save(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		w.Header().Set("Allow", http.MethodPut)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.SaveScheduleRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	sched, err := scheduleFromPayload(req.Schedule)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := domain.ValidateSchedule(sched); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	route, err := h.Repo.GetRoute(r.Context(), req.RouteID)
	if err != nil {
		writeError(w, r, http.StatusNotFound, err.Error())
		return
	}

	route.Schedule = &sched
	if err := h.Repo.SaveRoute(r.Context(), route); err != nil {
		if errors.Is(err, domain.ErrInvalidSchedule) {
			writeError(w, r, http.StatusUnprocessableEntity, err.Error())
			return
		}
		log.Printf("save schedule failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, toRouteResponse(route))
}

// Apply layers one exception across every route of a school's fleet.
func (h *ScheduleHandler) Apply(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.ApplyExceptionRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	date, err := parseDate(req.Exception.Date)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	exc := domain.ScheduleException{
		Date:   date,
		Type:   domain.ExceptionType(req.Exception.Type),
		Reason: req.Exception.Reason,
	}

	routes, err := h.Repo.ListRoutes(r.Context(), req.SchoolID)
	if err != nil {
		log.Printf("apply exception: list routes failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	updated := h.Applier.ApplyToAll(routes, exc)
	h.persistBulk(w, r, updated)
}

// Remove drops exceptions by single date or inclusive date range across a
// school's fleet.
func (h *ScheduleHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.RemoveExceptionRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	routes, err := h.Repo.ListRoutes(r.Context(), req.SchoolID)
	if err != nil {
		log.Printf("remove exception: list routes failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	var updated []*domain.Route
	if req.EndDate == "" {
		updated = h.Applier.RemoveByDate(routes, startDate)
	} else {
		endDate, err := parseDate(req.EndDate)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		updated = h.Applier.RemoveByDateRange(routes, startDate, endDate)
	}

	h.persistBulk(w, r, updated)
}

func (h *ScheduleHandler) persistBulk(w http.ResponseWriter, r *http.Request, updated []*domain.Route) {
	saved, err := h.Repo.SaveRoutes(r.Context(), updated)
	if err != nil {
		log.Printf("bulk save failed after %d routes: %v", len(saved), err)
		writeJSON(w, r, http.StatusInternalServerError, dto.BulkFailureResponse{
			Error:         "persistence failed partway; retry the batch",
			SavedRouteIDs: saved,
		})
		return
	}

	writeJSON(w, r, http.StatusOK, dto.BulkUpdateResponse{UpdatedRouteIDs: saved})
}

func scheduleFromPayload(p dto.SchedulePayload) (domain.RouteSchedule, error) {
	start, err := parseDate(p.StartDate)
	if err != nil {
		return domain.RouteSchedule{}, err
	}

	sched := domain.RouteSchedule{
		OperatingDays:  p.OperatingDays,
		EffectiveStart: start,
	}

	if p.EndDate != "" {
		end, err := parseDate(p.EndDate)
		if err != nil {
			return domain.RouteSchedule{}, err
		}
		sched.EffectiveEnd = &end
	}

	for _, e := range p.Exceptions {
		date, err := parseDate(e.Date)
		if err != nil {
			return domain.RouteSchedule{}, err
		}
		sched.Exceptions = append(sched.Exceptions, domain.ScheduleException{
			Date:   date,
			Type:   domain.ExceptionType(e.Type),
			Reason: e.Reason,
		})
	}

	return sched, nil
}
