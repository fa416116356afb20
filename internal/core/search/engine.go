package search

import "findar-backend/internal/core/domain"

// Run filters and ranks a candidate set. Candidates are not modified.
func Run(candidates []domain.Listing, c domain.SearchCriteria) []domain.Listing {
	result := Filter(candidates, c)
	Sort(result, c.SortBy)
	return result
}

// Recent is the home-feed query: active listings of the requested type matching the text,
// newest first, capped at domain.RecentListingsLimit.
func Recent(candidates []domain.Listing, q domain.RecentQuery) []domain.Listing {
	result := Filter(candidates, domain.SearchCriteria{ListingType: q.ListingType, Text: q.Text})
	Sort(result, domain.SortDateNewest)
	if len(result) > domain.RecentListingsLimit {
		result = result[:domain.RecentListingsLimit]
	}
	return result
}
