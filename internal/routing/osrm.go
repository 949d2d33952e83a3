package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultOSRMBaseURL = "https://router.project-osrm.org"

// OSRMProvider uses the public OSRM routing service. No API key
// required, which makes it the standing fallback behind Google.
type OSRMProvider struct {
	client  *http.Client
	baseURL string
}

func NewOSRMProvider(baseURL string) *OSRMProvider {
	if baseURL == "" {
		baseURL = defaultOSRMBaseURL
	}
	return &OSRMProvider{
		client:  &http.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (p *OSRMProvider) Name() string { return "osrm" }

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

func (p *OSRMProvider) ComputeRoute(ctx context.Context, waypoints []Waypoint) (*Route, error) {
	coords := make([]string, len(waypoints))
	for i, wp := range waypoints {
		coords[i] = fmt.Sprintf("%f,%f", wp.Lng, wp.Lat)
	}
	url := fmt.Sprintf("%s/route/v1/driving/%s?overview=full&geometries=geojson", p.baseURL, strings.Join(coords, ";"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var data osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}
	if data.Code != "Ok" || len(data.Routes) == 0 {
		return nil, fmt.Errorf("OSRM error: %s", data.Code)
	}

	route := data.Routes[0]
	path := make([]Waypoint, 0, len(route.Geometry.Coordinates))
	for _, c := range route.Geometry.Coordinates {
		if len(c) < 2 {
			continue
		}
		// GeoJSON order is lng,lat
		path = append(path, Waypoint{Lat: c[1], Lng: c[0]})
	}

	return &Route{
		Path:       path,
		DistanceKm: route.Distance / 1000,
		Duration:   time.Duration(route.Duration * float64(time.Second)),
		Provider:   p.Name(),
	}, nil
}
