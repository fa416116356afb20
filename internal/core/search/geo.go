package search

import (
	"math"

	"findar-backend/internal/core/domain"
)

const (
	EarthRadiusKm = 6371.0
	// DefaultRadiusKm is the fixed search radius around the query point.
	DefaultRadiusKm = 20.0
)

// DistanceKm is the great-circle distance between two points (haversine).
func DistanceKm(a, b domain.GeoPoint) float64 {
	lat1 := degreesToRadians(a.Latitude)
	lat2 := degreesToRadians(b.Latitude)
	dLat := lat2 - lat1
	dLon := degreesToRadians(b.Longitude - a.Longitude)

	h := math.Pow(math.Sin(dLat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLon/2), 2)
	// rounding can push h slightly outside [0, 1] for antipodal or identical points
	h = math.Min(1, math.Max(0, h))

	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// ListingDistanceKm returns +Inf for a listing without coordinates so it never fits a bounded radius.
func ListingDistanceKm(origin domain.GeoPoint, l domain.Listing) float64 {
	if !l.HasCoordinates() {
		return math.Inf(1)
	}
	return DistanceKm(origin, domain.GeoPoint{Latitude: *l.Latitude, Longitude: *l.Longitude})
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
