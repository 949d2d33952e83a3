package handler

import (
	"net/http"
	"strconv"

	"bustracker/internal/api/util"
	"bustracker/internal/routing"
)

// DirectionsHandler proxies driving-route computation through the
// provider fallback chain.
type DirectionsHandler struct {
	chain *routing.Chain
}

func NewDirectionsHandler(chain *routing.Chain) *DirectionsHandler {
	return &DirectionsHandler{chain: chain}
}

func (h *DirectionsHandler) Directions(w http.ResponseWriter, r *http.Request) {
	if h.chain == nil {
		util.WriteError(w, http.StatusServiceUnavailable, "Routing is not configured")
		return
	}

	q := r.URL.Query()
	fromLat, err1 := strconv.ParseFloat(q.Get("fromLat"), 64)
	fromLng, err2 := strconv.ParseFloat(q.Get("fromLng"), 64)
	toLat, err3 := strconv.ParseFloat(q.Get("toLat"), 64)
	toLng, err4 := strconv.ParseFloat(q.Get("toLng"), 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		util.WriteError(w, http.StatusBadRequest, "fromLat, fromLng, toLat and toLng are required")
		return
	}

	route, err := h.chain.ComputeRoute(r.Context(), []routing.Waypoint{
		{Lat: fromLat, Lng: fromLng},
		{Lat: toLat, Lng: toLng},
	})
	if err != nil {
		util.WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"provider": route.Provider,
		"distance": route.DistanceKm,
		"duration": route.Duration.Seconds(),
		"path":     route.Path,
	})
}
