package search

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"findar-backend/internal/core/domain"
)

func TestDistanceKm(t *testing.T) {
	algiers := domain.GeoPoint{Latitude: 36.7538, Longitude: 3.0588}
	oran := domain.GeoPoint{Latitude: 35.6971, Longitude: -0.6308}

	assert.InDelta(t, 0, DistanceKm(algiers, algiers), 1e-9)
	// ~ 353 km by great circle
	assert.InDelta(t, 353, DistanceKm(algiers, oran), 5)
	assert.InDelta(t, DistanceKm(algiers, oran), DistanceKm(oran, algiers), 1e-9)

	// one degree of latitude along a meridian
	assert.InDelta(t, EarthRadiusKm*math.Pi/180, DistanceKm(domain.GeoPoint{}, domain.GeoPoint{Latitude: 1}), 1e-6)
}

func TestDistanceKm_Antipodal(t *testing.T) {
	d := DistanceKm(domain.GeoPoint{Latitude: 0, Longitude: 0}, domain.GeoPoint{Latitude: 0, Longitude: 180})
	assert.False(t, math.IsNaN(d))
	assert.InDelta(t, math.Pi*EarthRadiusKm, d, 1e-6)
}

func TestListingDistanceKm_NoCoordinates(t *testing.T) {
	l := domain.Listing{ID: 1, Latitude: ptr(36.7)}
	assert.True(t, math.IsInf(ListingDistanceKm(domain.GeoPoint{Latitude: 36.7}, l), 1))
}
