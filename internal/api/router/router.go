package router

import (
	"encoding/json"
	"net/http"

	"bustracker/internal/api/handler"
	"bustracker/internal/api/middleware"
	"bustracker/internal/core/service"
	"bustracker/internal/routing"
)

func NewRouter(
	locationService service.LocationService,
	busService service.BusService,
	routeService service.RouteService,
	analyticsService service.AnalyticsService,
	authMiddleware *middleware.AuthMiddleware,
	routingChain *routing.Chain,
) http.Handler {
	// Initialize handlers
	locationHandler := handler.NewLocationHandler(locationService)
	busHandler := handler.NewBusHandler(busService)
	routeHandler := handler.NewRouteHandler(routeService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)
	directionsHandler := handler.NewDirectionsHandler(routingChain)

	// Create router
	mux := http.NewServeMux()

	// Add middleware chain
	withMiddleware := func(h http.Handler) http.Handler {
		return middleware.CORSMiddleware(
			middleware.LoggingMiddleware(h),
		)
	}
	withAdmin := func(h http.Handler) http.Handler {
		return withMiddleware(authMiddleware.Authenticate(h))
	}

	// Health check endpoint
	mux.Handle("/health", withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":   "ok",
			"database": "connected",
		})
	})))

	// Location ingest and public map feed
	mux.Handle("/location", withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			locationHandler.Upsert(w, r)
		case http.MethodGet:
			locationHandler.ListActive(w, r)
		case http.MethodDelete:
			locationHandler.Remove(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	// Bus management
	mux.Handle("/buses", withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			busHandler.Create(w, r)
		case http.MethodGet:
			busHandler.List(w, r)
		case http.MethodPut:
			busHandler.Update(w, r)
		case http.MethodDelete:
			busHandler.Delete(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	mux.Handle("/buses/register", withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		busHandler.Register(w, r)
	})))

	// Route management
	mux.Handle("/routes", withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			routeHandler.Create(w, r)
		case http.MethodGet:
			routeHandler.List(w, r)
		case http.MethodPut:
			routeHandler.Update(w, r)
		case http.MethodDelete:
			routeHandler.Delete(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	mux.Handle("/routes/directions", withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		directionsHandler.Directions(w, r)
	})))

	// Admin reporting
	mux.Handle("/admin/analytics", withAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		analyticsHandler.Report(w, r)
	})))

	return mux
}
