package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"bustracker/internal/api/middleware"
	"bustracker/internal/api/router"
	"bustracker/internal/cache"
	"bustracker/internal/config"
	"bustracker/internal/core/repository"
	"bustracker/internal/core/service"
	"bustracker/internal/routing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting bus tracker (%s profile)", cfg.Profile)

	// Initialize repositories
	var (
		locationRepo repository.LocationRepository
		busRepo      repository.BusRepository
		routeRepo    repository.RouteRepository
	)
	if cfg.TestMode {
		log.Println("TEST_MODE enabled, using in-memory repositories")
		locationRepo = repository.NewInMemoryLocationRepository()
		busRepo = repository.NewInMemoryBusRepository()
		routeRepo = repository.NewInMemoryRouteRepository()
	} else {
		client, db, err := config.ConnectMongoDB(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				log.Printf("MongoDB disconnect error: %v", err)
			}
		}()
		locationRepo = repository.NewMongoLocationRepository(db)
		busRepo = repository.NewMongoBusRepository(db)
		routeRepo = repository.NewMongoRouteRepository(db)
	}

	// Optional Redis read cache
	c := cache.New(cfg.RedisURL)
	defer c.Close()

	// Initialize services
	locationService := service.NewLocationService(locationRepo, c, cfg.PublicActiveWindow)
	busService := service.NewBusService(busRepo, locationRepo, c, cfg.AdminActiveWindow)
	routeService := service.NewRouteService(routeRepo, busRepo)
	analyticsService := service.NewAnalyticsService(locationRepo, busRepo, routeRepo, c, cfg.AdminActiveWindow)

	authMiddleware := middleware.NewAuthMiddleware(cfg.AdminJWTSecret)
	if cfg.AdminJWTSecret == "" {
		log.Println("ADMIN_JWT_SECRET not set, admin routes are unguarded")
	}

	// Routing provider fallback chain
	providers := []routing.Provider{}
	if cfg.GoogleRoutesAPIKey != "" {
		providers = append(providers, routing.NewGoogleRoutesProvider(cfg.GoogleRoutesAPIKey))
	}
	providers = append(providers, routing.NewOSRMProvider(cfg.OSRMBaseURL), routing.NewGeometricProvider())
	chain := routing.NewChain(10*time.Second, providers...)

	r := router.NewRouter(locationService, busService, routeService, analyticsService, authMiddleware, chain)

	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Ask agents to drain backlogs now that the server is reachable.
	if cfg.NATSURL != "" {
		go publishSyncRequest(cfg.NATSURL)
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func publishSyncRequest(natsURL string) {
	nc, err := nats.Connect(natsURL,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		log.Printf("NATS connect failed, skipping sync broadcast: %v", err)
		return
	}
	defer nc.Drain()

	if err := nc.Publish("bustracker.sync.request", nil); err != nil {
		log.Printf("Sync broadcast failed: %v", err)
		return
	}
	nc.Flush()
	log.Println("Published sync request to agents")
}
