package domain

import "strings"

type SortKey string

const (
	SortPriceAsc   SortKey = "price_asc"
	SortPriceDesc  SortKey = "price_desc"
	SortDateNewest SortKey = "date_newest"
	SortDateOldest SortKey = "date_oldest"
	SortAreaAsc    SortKey = "area_asc"
	SortAreaDesc   SortKey = "area_desc"
)

const DefaultSortKey = SortDateNewest

// ParseSortKey falls back to DefaultSortKey for anything outside the fixed set.
func ParseSortKey(s string) SortKey {
	switch k := SortKey(strings.TrimSpace(s)); k {
	case SortPriceAsc, SortPriceDesc, SortDateNewest, SortDateOldest, SortAreaAsc, SortAreaDesc:
		return k
	}
	return DefaultSortKey
}

type ListedBy string

const (
	ListedByIndividual ListedBy = "individual"
	ListedByAgency     ListedBy = "agency"
)

func ParseListedBy(s string) (ListedBy, bool) {
	switch lb := ListedBy(strings.TrimSpace(s)); lb {
	case ListedByIndividual, ListedByAgency:
		return lb, true
	}
	return "", false
}

// AccountType maps the public lister category onto the stored account type.
func (lb ListedBy) AccountType() AccountType {
	if lb == ListedByAgency {
		return AccountTypeAgency
	}
	return AccountTypeNormal
}

type GeoPoint struct {
	Latitude  float64
	Longitude float64
}

// SearchCriteria is the normalized advanced-search query. A nil field means "do not filter".
type SearchCriteria struct {
	Origin       *GeoPoint
	MinPrice     *float64
	MaxPrice     *float64
	ListingType  *ListingType
	BuildingType *BuildingType
	MinBedrooms  *int
	MinBathrooms *int
	MinArea      *float64
	MaxArea      *float64
	ListedBy     *ListedBy
	Text         string
	SortBy       SortKey
}

// RecentQuery drives the home feed.
type RecentQuery struct {
	Text        string
	ListingType *ListingType
}

const RecentListingsLimit = 20
