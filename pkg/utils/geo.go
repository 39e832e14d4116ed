package utils

import (
	"math"

	"grassmap/internal/models/domain_models"
)

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between a and b in kilometres.
func HaversineKm(a, b domain_models.Coordinates) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Center is the arithmetic mean of coords. ok is false for an empty slice.
func Center(coords []domain_models.Coordinates) (domain_models.Coordinates, bool) {
	if len(coords) == 0 {
		return domain_models.Coordinates{}, false
	}
	var lat, lng float64
	for _, c := range coords {
		lat += c.Lat
		lng += c.Lng
	}
	n := float64(len(coords))
	return domain_models.Coordinates{Lat: lat / n, Lng: lng / n}, true
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
