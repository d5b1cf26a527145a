package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"route-schedule-service/internal/api/dto"
	"route-schedule-service/internal/domain"
	"route-schedule-service/internal/ports"
	"route-schedule-service/internal/services"
)

// PlacesHandler exposes the geocoding and place-search operations the stop
// editor uses to resolve addresses. Unlike route timing there is no local
// fallback for these: a denied reservation surfaces as 429 and the caller
// defers.
type PlacesHandler struct {
	Provider ports.DirectionsProvider
	Guard    *services.QuotaGuard
}

func (h *PlacesHandler) Geocode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	address := strings.TrimSpace(r.URL.Query().Get("address"))
	if address == "" {
		writeError(w, r, http.StatusBadRequest, "address is required")
		return
	}

	if !h.Guard.TryReserve(services.OpGeocoding) {
		writeError(w, r, http.StatusTooManyRequests, "geocoding quota exceeded")
		return
	}

	c, err := h.Provider.Geocode(r.Context(), address)
	if err != nil {
		log.Printf("geocode failed: %v", err)
		writeError(w, r, http.StatusBadGateway, "geocoding provider unavailable")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.GeocodeResponse{Lat: c.Lat, Lng: c.Lng})
}

func (h *PlacesHandler) ReverseGeocode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	c, err := coordsFromQuery(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if !h.Guard.TryReserve(services.OpGeocoding) {
		writeError(w, r, http.StatusTooManyRequests, "geocoding quota exceeded")
		return
	}

	address, err := h.Provider.ReverseGeocode(r.Context(), c)
	if err != nil {
		log.Printf("reverse geocode failed: %v", err)
		writeError(w, r, http.StatusBadGateway, "geocoding provider unavailable")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ReverseGeocodeResponse{Address: address})
}

func (h *PlacesHandler) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, r, http.StatusBadRequest, "q is required")
		return
	}

	var bias *domain.Coordinates
	if r.URL.Query().Get("lat") != "" {
		c, err := coordsFromQuery(r)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		bias = &c
	}

	if !h.Guard.TryReserve(services.OpPlaces) {
		writeError(w, r, http.StatusTooManyRequests, "places quota exceeded")
		return
	}

	places, err := h.Provider.TextSearch(r.Context(), query, bias)
	if err != nil {
		log.Printf("place search failed: %v", err)
		writeError(w, r, http.StatusBadGateway, "places provider unavailable")
		return
	}

	res := dto.PlaceSearchResponse{Places: make([]dto.PlaceCandidate, 0, len(places))}
	for _, p := range places {
		res.Places = append(res.Places, dto.PlaceCandidate{
			Name:    p.Name,
			Address: p.Address,
			Lat:     p.Location.Lat,
			Lng:     p.Location.Lng,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

func coordsFromQuery(r *http.Request) (domain.Coordinates, error) {
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		return domain.Coordinates{}, fmt.Errorf("lat must be a number between -90 and 90")
	}
	lng, err := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err != nil || lng < -180 || lng > 180 {
		return domain.Coordinates{}, fmt.Errorf("lng must be a number between -180 and 180")
	}
	return domain.Coordinates{Lat: lat, Lng: lng}, nil
}
