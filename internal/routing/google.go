package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const googleRoutesURL = "https://routes.googleapis.com/directions/v2:computeRoutes"

// GoogleRoutesProvider uses the Google Routes API.
type GoogleRoutesProvider struct {
	client *http.Client
	apiKey string
}

func NewGoogleRoutesProvider(apiKey string) *GoogleRoutesProvider {
	return &GoogleRoutesProvider{
		client: &http.Client{},
		apiKey: apiKey,
	}
}

func (p *GoogleRoutesProvider) Name() string { return "google-routes" }

type googleLatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type googleWaypoint struct {
	Location struct {
		LatLng googleLatLng `json:"latLng"`
	} `json:"location"`
}

type googleRoutesRequest struct {
	Origin        googleWaypoint   `json:"origin"`
	Destination   googleWaypoint   `json:"destination"`
	Intermediates []googleWaypoint `json:"intermediates,omitempty"`
	TravelMode    string           `json:"travelMode"`
}

type googleRoutesResponse struct {
	Routes []struct {
		DistanceMeters float64 `json:"distanceMeters"`
		Duration       string  `json:"duration"`
	} `json:"routes"`
}

func (p *GoogleRoutesProvider) ComputeRoute(ctx context.Context, waypoints []Waypoint) (*Route, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("no Routes API key configured")
	}

	reqBody := googleRoutesRequest{TravelMode: "DRIVE"}
	reqBody.Origin = toGoogleWaypoint(waypoints[0])
	reqBody.Destination = toGoogleWaypoint(waypoints[len(waypoints)-1])
	for _, wp := range waypoints[1 : len(waypoints)-1] {
		reqBody.Intermediates = append(reqBody.Intermediates, toGoogleWaypoint(wp))
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, googleRoutesURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", p.apiKey)
	req.Header.Set("X-Goog-FieldMask", "routes.duration,routes.distanceMeters")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Routes API returned %d", resp.StatusCode)
	}

	var data googleRoutesResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}
	if len(data.Routes) == 0 {
		return nil, fmt.Errorf("Routes API returned no routes")
	}

	route := data.Routes[0]
	seconds, err := strconv.Atoi(strings.TrimSuffix(route.Duration, "s"))
	if err != nil {
		return nil, fmt.Errorf("unexpected duration format %q", route.Duration)
	}

	return &Route{
		Path:       waypoints,
		DistanceKm: route.DistanceMeters / 1000,
		Duration:   time.Duration(seconds) * time.Second,
		Provider:   p.Name(),
	}, nil
}

func toGoogleWaypoint(wp Waypoint) googleWaypoint {
	var g googleWaypoint
	g.Location.LatLng = googleLatLng{Latitude: wp.Lat, Longitude: wp.Lng}
	return g
}
