package handler

import (
	"encoding/json"
	"net/http"

	"bustracker/internal/api/util"
	"bustracker/internal/core/model"
	"bustracker/internal/core/service"
)

type BusHandler struct {
	busService service.BusService
}

func NewBusHandler(busService service.BusService) *BusHandler {
	return &BusHandler{
		busService: busService,
	}
}

type busRequest struct {
	BusNumber   string `json:"busNumber"`
	RouteNumber string `json:"routeNumber"`
	RouteName   string `json:"routeName"`
	Depot       string `json:"depot"`
	DriverName  string `json:"driverName"`
	DriverID    string `json:"driverId"`
	Capacity    int    `json:"capacity"`
	Type        string `json:"type"`
}

func (r *busRequest) toModel() *model.Bus {
	return &model.Bus{
		BusNumber:   r.BusNumber,
		RouteNumber: r.RouteNumber,
		RouteName:   r.RouteName,
		Depot:       r.Depot,
		DriverName:  r.DriverName,
		DriverID:    r.DriverID,
		Capacity:    r.Capacity,
		Type:        r.Type,
	}
}

func (h *BusHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req busRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	bus, err := h.busService.CreateBus(req.toModel())
	if err != nil {
		util.WriteServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"busId":   bus.BusID,
		"bus":     bus,
	})
}

// Register is the driver-app registration path: same payload, but
// re-registering an existing bus overwrites it instead of conflicting.
func (h *BusHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req busRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	bus, err := h.busService.RegisterBus(req.toModel())
	if err != nil {
		util.WriteServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"busId":   bus.BusID,
	})
}

func (h *BusHandler) List(w http.ResponseWriter, r *http.Request) {
	buses, err := h.busService.ListBuses()
	if err != nil {
		util.WriteServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, buses)
}

type updateBusRequest struct {
	BusNumber string `json:"busNumber"`
	model.BusPatch
}

func (h *BusHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateBusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.BusNumber == "" {
		util.WriteError(w, http.StatusBadRequest, "Bus number is required")
		return
	}

	updated, err := h.busService.UpdateBus(req.BusNumber, &req.BusPatch)
	if err != nil {
		util.WriteServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"updated": updated,
	})
}

func (h *BusHandler) Delete(w http.ResponseWriter, r *http.Request) {
	busNumber := r.URL.Query().Get("busNumber")
	if busNumber == "" {
		util.WriteError(w, http.StatusBadRequest, "Bus number is required")
		return
	}

	deleted, err := h.busService.DeleteBus(busNumber)
	if err != nil {
		util.WriteServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"deleted": deleted,
	})
}
