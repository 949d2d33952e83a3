package model

import "time"

// Stop is one stop on a route. The stop order inside Route.Stops is
// the travel order; route distance is computed over that sequence.
type Stop struct {
	Name string  `json:"name" bson:"name"`
	Lat  float64 `json:"lat" bson:"lat"`
	Lng  float64 `json:"lng" bson:"lng"`
}

type Route struct {
	Code           string    `json:"code" bson:"code"`
	Name           string    `json:"name" bson:"name"`
	Stops          []Stop    `json:"stops" bson:"stops"`
	Fare           float64   `json:"fare" bson:"fare"`
	Frequency      int       `json:"frequency" bson:"frequency"`
	OperatingHours string    `json:"operatingHours" bson:"operatingHours"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" bson:"updatedAt"`
}

func NewRoute(code, name string) *Route {
	now := time.Now()
	return &Route{
		Code:           code,
		Name:           name,
		Stops:          []Stop{},
		Frequency:      30,
		OperatingHours: "06:00-22:00",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// RoutePatch enumerates the fields a partial route update may touch.
type RoutePatch struct {
	Name           *string  `json:"name,omitempty"`
	Stops          *[]Stop  `json:"stops,omitempty"`
	Fare           *float64 `json:"fare,omitempty"`
	Frequency      *int     `json:"frequency,omitempty"`
	OperatingHours *string  `json:"operatingHours,omitempty"`
}

func (p *RoutePatch) IsZero() bool {
	return p.Name == nil && p.Stops == nil && p.Fare == nil &&
		p.Frequency == nil && p.OperatingHours == nil
}

// RouteSummary is a route joined with usage statistics for listings.
type RouteSummary struct {
	Route            `bson:",inline"`
	AssignedBusCount int64   `json:"assignedBusCount"`
	StopCount        int     `json:"stopCount"`
	DistanceKm       float64 `json:"distance"`
}
