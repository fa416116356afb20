package postgres_adapter

import (
	"math"

	"findar-backend/internal/core/domain"
	"findar-backend/internal/core/search"

	"github.com/mmcloughlin/geohash"
)

// storedGeohashPrecision is the length of the geohash kept on each listing (~5m cells).
const storedGeohashPrecision = 9

const (
	kmPerDegree = search.EarthRadiusKm * math.Pi / 180
	// coverMargin inflates the radius so rounding near cell edges never drops a match.
	coverMargin = 1.1
	maxCoverLat = 89.0
)

// listingGeohash is nil for listings without coordinates.
func listingGeohash(lat, lon *float64) *string {
	if lat == nil || lon == nil {
		return nil
	}
	h := geohash.EncodeWithPrecision(*lat, *lon, storedGeohashPrecision)
	return &h
}

// coverCells returns geohash prefixes whose union contains every point within
// radiusKm of p: the cell holding p and its eight neighbours, at the finest
// precision whose cells are still at least radiusKm wide and tall.
// It returns nil when no such cover is reliable (close to a pole or the antimeridian);
// callers then skip the geohash condition.
func coverCells(p domain.GeoPoint, radiusKm float64) []string {
	r := radiusKm * coverMargin
	rLatDeg := r / kmPerDegree
	extremeLat := math.Abs(p.Latitude) + rLatDeg
	if extremeLat >= maxCoverLat {
		return nil
	}
	cosLat := math.Cos(extremeLat * math.Pi / 180)
	if math.Abs(p.Longitude)+rLatDeg/cosLat >= 180 {
		return nil
	}

	precision := uint(0)
	for n := uint(1); n <= storedGeohashPrecision; n++ {
		heightKm, widthKm := cellSizeKm(n, cosLat)
		if heightKm < r || widthKm < r {
			break
		}
		precision = n
	}
	if precision == 0 {
		return nil
	}

	center := geohash.EncodeWithPrecision(p.Latitude, p.Longitude, precision)
	return append([]string{center}, geohash.Neighbors(center)...)
}

// cellSizeKm is the size of a geohash cell of the given length, with the
// width measured at the latitude whose cosine is cosLat.
func cellSizeKm(precision uint, cosLat float64) (heightKm, widthKm float64) {
	bits := 5 * int(precision)
	lonBits := (bits + 1) / 2
	latBits := bits / 2
	heightDeg := 180 / math.Pow(2, float64(latBits))
	widthDeg := 360 / math.Pow(2, float64(lonBits))
	return heightDeg * kmPerDegree, widthDeg * kmPerDegree * cosLat
}
