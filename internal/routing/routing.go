package routing

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Waypoint is one point along a requested route.
type Waypoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Route is a computed driving route between waypoints.
type Route struct {
	Path       []Waypoint    `json:"path"`
	DistanceKm float64       `json:"distance"`
	Duration   time.Duration `json:"duration"`
	Provider   string        `json:"provider"`
}

// Provider computes a route. Providers are external collaborators and
// may fail or hang; the chain bounds each attempt with a timeout.
type Provider interface {
	Name() string
	ComputeRoute(ctx context.Context, waypoints []Waypoint) (*Route, error)
}

// Chain tries providers in order until one succeeds. The geometric
// fallback never fails, so a fully populated chain always returns a
// route.
type Chain struct {
	providers []Provider
	timeout   time.Duration
}

func NewChain(timeout time.Duration, providers ...Provider) *Chain {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Chain{providers: providers, timeout: timeout}
}

func (c *Chain) ComputeRoute(ctx context.Context, waypoints []Waypoint) (*Route, error) {
	if len(waypoints) < 2 {
		return nil, fmt.Errorf("at least two waypoints required")
	}

	var lastErr error
	for _, p := range c.providers {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		route, err := p.ComputeRoute(attemptCtx, waypoints)
		cancel()
		if err == nil {
			return route, nil
		}
		lastErr = err
		log.Printf("routing provider %s failed, trying next: %v", p.Name(), err)
	}
	return nil, fmt.Errorf("all routing providers failed: %v", lastErr)
}
