package search

import (
	"math"
	"strconv"
	"strings"

	"findar-backend/internal/core/domain"
)

// ParamSource is satisfied by url.Values.
type ParamSource interface {
	Get(key string) string
}

// ParseCriteria normalizes raw advanced-search parameters.
// Malformed or out-of-range values are dropped, never reported: the filter is simply not applied.
func ParseCriteria(p ParamSource) domain.SearchCriteria {
	c := domain.SearchCriteria{
		MinPrice:     parseFloat(p, "min_price"),
		MaxPrice:     parseFloat(p, "max_price"),
		MinBedrooms:  parseInt(p, "num_bedrooms"),
		MinBathrooms: parseInt(p, "num_bathrooms"),
		MinArea:      parseFloat(p, "min_sqft"),
		MaxArea:      parseFloat(p, "max_sqft"),
		Text:         strings.TrimSpace(p.Get("q")),
		SortBy:       domain.ParseSortKey(p.Get("sort_by")),
	}

	lat, lon := parseFloat(p, "latitude"), parseFloat(p, "longitude")
	if lat != nil && lon != nil && math.Abs(*lat) <= 90 && math.Abs(*lon) <= 180 {
		c.Origin = &domain.GeoPoint{Latitude: *lat, Longitude: *lon}
	}

	if lt, ok := domain.ParseListingType(p.Get("listing_type")); ok {
		c.ListingType = &lt
	}
	if bt, ok := domain.ParseBuildingType(p.Get("building_type")); ok {
		c.BuildingType = &bt
	}
	if lb, ok := domain.ParseListedBy(p.Get("listed_by")); ok {
		c.ListedBy = &lb
	}

	return c
}

// ParseRecentQuery normalizes the home-feed parameters.
func ParseRecentQuery(p ParamSource) domain.RecentQuery {
	q := domain.RecentQuery{Text: strings.TrimSpace(p.Get("q"))}
	if lt, ok := domain.ParseListingType(p.Get("listing_type")); ok {
		q.ListingType = &lt
	}
	return q
}

func parseFloat(p ParamSource, key string) *float64 {
	raw := strings.TrimSpace(p.Get(key))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func parseInt(p ParamSource, key string) *int {
	raw := strings.TrimSpace(p.Get(key))
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}
