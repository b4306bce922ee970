// Package geo provides great-circle distance math for feed ranking.
package geo

import (
	"math"

	"platepick/models"
)

// earthRadiusKm is the mean Earth radius. Distances across the whole app are
// in kilometers; there is no miles variant.
const earthRadiusKm = 6371.0

// DistanceKm returns the haversine distance between two coordinates in
// kilometers. It is symmetric and zero when both points coincide.
func DistanceKm(a, b models.Coordinate) float64 {
	latA := a.Latitude * math.Pi / 180
	latB := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}
