package handler

import (
	"encoding/json"
	"net/http"

	"bustracker/internal/api/util"
	"bustracker/internal/core/model"
	"bustracker/internal/core/service"
)

type RouteHandler struct {
	routeService service.RouteService
}

func NewRouteHandler(routeService service.RouteService) *RouteHandler {
	return &RouteHandler{
		routeService: routeService,
	}
}

func (h *RouteHandler) List(w http.ResponseWriter, r *http.Request) {
	routes, err := h.routeService.ListRoutes()
	if err != nil {
		util.WriteServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, routes)
}

type routeRequest struct {
	Code           string       `json:"code"`
	RouteNumber    string       `json:"routeNumber"`
	Name           string       `json:"name"`
	Stops          []model.Stop `json:"stops"`
	Fare           float64      `json:"fare"`
	Frequency      int          `json:"frequency"`
	OperatingHours string       `json:"operatingHours"`
}

func (h *RouteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req routeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// The driver app sends routeNumber where the dashboard sends code.
	code := req.Code
	if code == "" {
		code = req.RouteNumber
	}

	route, err := h.routeService.CreateRoute(&model.Route{
		Code:           code,
		Name:           req.Name,
		Stops:          req.Stops,
		Fare:           req.Fare,
		Frequency:      req.Frequency,
		OperatingHours: req.OperatingHours,
	})
	if err != nil {
		util.WriteServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"route":   route,
	})
}

type updateRouteRequest struct {
	Code string `json:"code"`
	model.RoutePatch
}

func (h *RouteHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Code == "" {
		util.WriteError(w, http.StatusBadRequest, "Route code is required")
		return
	}

	updated, err := h.routeService.UpdateRoute(req.Code, &req.RoutePatch)
	if err != nil {
		util.WriteServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"updated": updated,
	})
}

func (h *RouteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		util.WriteError(w, http.StatusBadRequest, "Route code is required")
		return
	}

	deleted, err := h.routeService.DeleteRoute(code)
	if err != nil {
		util.WriteServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"deleted": deleted,
	})
}
