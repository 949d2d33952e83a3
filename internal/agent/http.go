package agent

import (
	"encoding/json"
	"net/http"

	"bustracker/internal/api/util"
	"bustracker/internal/core/model"
)

// captureRequest uses pointers for the required coordinates so a
// missing field is distinguishable from zero. A capture without them
// is rejected here, before it can reach the queue or the server.
type captureRequest struct {
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

// NewHandler exposes the producer to the device-local capture process:
// POST /fix submits one observation, POST /sync forces a drain, and
// GET /queue reports the backlog size.
func NewHandler(producer *Producer, q interface{ Len() (int, error) }) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/fix", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			util.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		var req captureRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			util.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.BusID == "" || req.Lat == nil || req.Lng == nil {
			util.WriteError(w, http.StatusBadRequest, "Missing required fields")
			return
		}

		queued, err := producer.Submit(r.Context(), model.LocationFix{
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
		})
		if err != nil {
			util.WriteServiceError(w, err)
			return
		}
		if queued {
			util.WriteJSON(w, http.StatusAccepted, map[string]interface{}{
				"success": true,
				"message": "Location queued",
			})
			return
		}
		util.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Location updated",
		})
	})

	mux.HandleFunc("/sync", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			util.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		producer.SyncNow()
		util.WriteJSON(w, http.StatusAccepted, map[string]interface{}{
			"success": true,
			"message": "Sync scheduled",
		})
	})

	mux.HandleFunc("/queue", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			util.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		n, err := q.Len()
		if err != nil {
			util.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		util.WriteJSON(w, http.StatusOK, map[string]interface{}{"pending": n})
	})

	return mux
}
