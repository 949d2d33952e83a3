package geo

import (
	"math"

	"bustracker/internal/core/model"
)

const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between two coordinates.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// RouteDistanceKm sums segment distances over the stop sequence in
// travel order and rounds to one decimal. Stops without coordinates
// contribute nothing. Reordering stops changes the result.
func RouteDistanceKm(stops []model.Stop) float64 {
	if len(stops) < 2 {
		return 0
	}
	var distance float64
	for i := 0; i < len(stops)-1; i++ {
		a, b := stops[i], stops[i+1]
		if (a.Lat == 0 && a.Lng == 0) || (b.Lat == 0 && b.Lng == 0) {
			continue
		}
		distance += DistanceKm(a.Lat, a.Lng, b.Lat, b.Lng)
	}
	return math.Round(distance*10) / 10
}
