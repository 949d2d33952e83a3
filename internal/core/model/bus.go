package model

import "time"

// Bus is one registered physical vehicle. BusID is derived from the
// fleet number and stays stable across re-registrations.
type Bus struct {
	BusID        string    `json:"busId" bson:"busId"`
	BusNumber    string    `json:"busNumber" bson:"busNumber"`
	RouteNumber  string    `json:"routeNumber,omitempty" bson:"routeNumber,omitempty"`
	RouteName    string    `json:"routeName" bson:"routeName"`
	Depot        string    `json:"depot" bson:"depot"`
	DriverName   string    `json:"driverName" bson:"driverName"`
	DriverID     string    `json:"driverId" bson:"driverId"`
	Capacity     int       `json:"capacity" bson:"capacity"`
	Type         string    `json:"type" bson:"type"`
	Status       string    `json:"status" bson:"status"`
	RegisteredAt time.Time `json:"registeredAt,omitempty" bson:"registeredAt,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// BusIDPrefix is prepended to the fleet number to form the busId.
const BusIDPrefix = "KSRTC_"

func NewBus(busNumber string) *Bus {
	now := time.Now()
	return &Bus{
		BusID:     BusIDPrefix + busNumber,
		BusNumber: busNumber,
		Capacity:  50,
		Type:      "ordinary",
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// BusPatch enumerates the fields a partial update may touch. A nil
// field is left unchanged; there is no blind merging of request bodies.
type BusPatch struct {
	RouteNumber *string `json:"routeNumber,omitempty"`
	RouteName   *string `json:"routeName,omitempty"`
	Depot       *string `json:"depot,omitempty"`
	DriverName  *string `json:"driverName,omitempty"`
	DriverID    *string `json:"driverId,omitempty"`
	Capacity    *int    `json:"capacity,omitempty"`
	Type        *string `json:"type,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// IsZero reports whether the patch changes nothing.
func (p *BusPatch) IsZero() bool {
	return p.RouteNumber == nil && p.RouteName == nil && p.Depot == nil &&
		p.DriverName == nil && p.DriverID == nil && p.Capacity == nil &&
		p.Type == nil && p.Status == nil
}

// EnrichedBus is a bus joined with its last known fix for the
// management view.
type EnrichedBus struct {
	Bus          `bson:",inline"`
	LastLocation *LocationFix `json:"lastLocation"`
	IsActive     bool         `json:"isActive"`
}
