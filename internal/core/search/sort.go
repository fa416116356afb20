package search

import (
	"cmp"
	"slices"

	"findar-backend/internal/core/domain"
)

// Sort orders listings in place by key. Ties are broken by ascending ID, so the order is total.
func Sort(listings []domain.Listing, key domain.SortKey) {
	byKey := comparator(key)
	slices.SortFunc(listings, func(a, b domain.Listing) int {
		if c := byKey(a, b); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func comparator(key domain.SortKey) func(a, b domain.Listing) int {
	switch key {
	case domain.SortPriceAsc:
		return func(a, b domain.Listing) int { return cmp.Compare(a.Price, b.Price) }
	case domain.SortPriceDesc:
		return func(a, b domain.Listing) int { return cmp.Compare(b.Price, a.Price) }
	case domain.SortDateOldest:
		return func(a, b domain.Listing) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case domain.SortAreaAsc:
		return func(a, b domain.Listing) int { return cmp.Compare(a.Area, b.Area) }
	case domain.SortAreaDesc:
		return func(a, b domain.Listing) int { return cmp.Compare(b.Area, a.Area) }
	default:
		return func(a, b domain.Listing) int { return b.CreatedAt.Compare(a.CreatedAt) }
	}
}
