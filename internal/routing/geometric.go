package routing

import (
	"context"
	"time"

	"bustracker/internal/core/model"
	"bustracker/internal/geo"
)

// Average road speed assumed when estimating duration from straight
// line distance.
const assumedSpeedKmh = 40.0

// GeometricProvider estimates the route from great-circle distances
// between consecutive waypoints. It never fails, so it terminates
// every fallback chain.
type GeometricProvider struct{}

func NewGeometricProvider() *GeometricProvider { return &GeometricProvider{} }

func (p *GeometricProvider) Name() string { return "geometric" }

func (p *GeometricProvider) ComputeRoute(_ context.Context, waypoints []Waypoint) (*Route, error) {
	stops := make([]model.Stop, len(waypoints))
	for i, wp := range waypoints {
		stops[i] = model.Stop{Lat: wp.Lat, Lng: wp.Lng}
	}
	distance := geo.RouteDistanceKm(stops)

	return &Route{
		Path:       waypoints,
		DistanceKm: distance,
		Duration:   time.Duration(distance / assumedSpeedKmh * float64(time.Hour)),
		Provider:   p.Name(),
	}, nil
}
