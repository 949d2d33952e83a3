package model

import (
	"fmt"
	"time"
)

// LocationFix is one GPS observation from one vehicle. The server keeps
// exactly one fix per busId; repeated reports overwrite earlier ones.
type LocationFix struct {
	BusID       string    `json:"busId" bson:"busId"`
	BusNumber   string    `json:"busNumber,omitempty" bson:"busNumber,omitempty"`
	RouteNumber string    `json:"routeNumber,omitempty" bson:"routeNumber,omitempty"`
	RouteName   string    `json:"routeName,omitempty" bson:"routeName,omitempty"`
	Lat         float64   `json:"lat" bson:"lat"`
	Lng         float64   `json:"lng" bson:"lng"`
	Speed       float64   `json:"speed" bson:"speed"`
	Heading     float64   `json:"heading" bson:"heading"`
	DriverID    string    `json:"driverId" bson:"driverId"`
	Accuracy    float64   `json:"accuracy,omitempty" bson:"accuracy,omitempty"`
	Timestamp   time.Time `json:"timestamp" bson:"timestamp"`
	LastUpdated time.Time `json:"lastUpdated" bson:"lastUpdated"`
}

// Validate checks the fields a fix must carry before it may be stored.
func (f *LocationFix) Validate() error {
	if f.BusID == "" {
		return fmt.Errorf("%w: busId is required", ErrInvalidInput)
	}
	if f.Lat < -90 || f.Lat > 90 {
		return fmt.Errorf("%w: lat out of range", ErrInvalidInput)
	}
	if f.Lng < -180 || f.Lng > 180 {
		return fmt.Errorf("%w: lng out of range", ErrInvalidInput)
	}
	if f.Speed < 0 {
		return fmt.Errorf("%w: speed must be >= 0", ErrInvalidInput)
	}
	if f.Heading < 0 || f.Heading > 360 {
		return fmt.Errorf("%w: heading out of range", ErrInvalidInput)
	}
	return nil
}

// ApplyDefaults fills the optional display fields the way the ingest
// endpoint always stored them.
func (f *LocationFix) ApplyDefaults() {
	if f.DriverID == "" {
		f.DriverID = "unknown"
	}
	if f.RouteNumber == "" {
		f.RouteNumber = "N/A"
	}
	if f.BusNumber == "" {
		f.BusNumber = f.BusID
	}
}
