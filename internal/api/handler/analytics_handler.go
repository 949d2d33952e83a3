package handler

import (
	"net/http"

	"bustracker/internal/api/util"
	"bustracker/internal/core/service"
)

type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
}

func NewAnalyticsHandler(analyticsService service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

func (h *AnalyticsHandler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.analyticsService.Report()
	if err != nil {
		util.WriteServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, report)
}
