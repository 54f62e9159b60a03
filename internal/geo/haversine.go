// Package geo holds pure great-circle helpers used to weight route graphs.
package geo

import (
	"math"

	"nearby-route-service/internal/domain"
)

const EarthRadiusKm = 6371.0

// DistanceFunc returns the distance in kilometers between two coordinates.
// The graph builder accepts any DistanceFunc so edges can later come from a
// road network instead of straight lines.
type DistanceFunc func(a, b domain.Coordinates) float64

// Distance returns the haversine great-circle distance in kilometers.
// It is defined for every real input; NaN coordinates yield NaN.
func Distance(a, b domain.Coordinates) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
