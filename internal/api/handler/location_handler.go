package handler

import (
	"encoding/json"
	"net/http"

	"bustracker/internal/api/util"
	"bustracker/internal/core/model"
	"bustracker/internal/core/service"
)

type LocationHandler struct {
	locationService service.LocationService
}

func NewLocationHandler(locationService service.LocationService) *LocationHandler {
	return &LocationHandler{
		locationService: locationService,
	}
}

// upsertLocationRequest uses pointers for the required coordinates so
// a missing field is distinguishable from zero.
type upsertLocationRequest struct {
	BusID       string   `json:"busId"`
	BusNumber   string   `json:"busNumber"`
	RouteNumber string   `json:"routeNumber"`
	RouteName   string   `json:"routeName"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	Speed       float64  `json:"speed"`
	Heading     float64  `json:"heading"`
	DriverID    string   `json:"driverId"`
	Accuracy    float64  `json:"accuracy"`
}

func (h *LocationHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req upsertLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.BusID == "" || req.Lat == nil || req.Lng == nil {
		util.WriteError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	fix := &model.LocationFix{
		BusID:       req.BusID,
		BusNumber:   req.BusNumber,
		RouteNumber: req.RouteNumber,
		RouteName:   req.RouteName,
		Lat:         *req.Lat,
		Lng:         *req.Lng,
		Speed:       req.Speed,
		Heading:     req.Heading,
		DriverID:    req.DriverID,
		Accuracy:    req.Accuracy,
	}

	if err := h.locationService.UpsertFix(fix); err != nil {
		util.WriteServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Location updated",
	})
}

func (h *LocationHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	fixes, err := h.locationService.ActiveBuses()
	if err != nil {
		util.WriteServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, fixes)
}

type removeLocationRequest struct {
	BusID string `json:"busId"`
}

func (h *LocationHandler) Remove(w http.ResponseWriter, r *http.Request) {
	var req removeLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.BusID == "" {
		util.WriteError(w, http.StatusBadRequest, "Bus ID required")
		return
	}

	if err := h.locationService.RemoveBus(req.BusID); err != nil {
		util.WriteServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Bus removed",
	})
}
