package search

import (
	"strings"

	"findar-backend/internal/core/domain"
)

// Predicate reports whether a listing passes one filter.
type Predicate func(l domain.Listing) bool

// Predicates builds the filter chain for c. Criteria that are absent add nothing.
// The order is cheapest first with the distance check last; the result set does not depend on it.
func Predicates(c domain.SearchCriteria, radiusKm float64) []Predicate {
	preds := []Predicate{isActive}

	if c.ListingType != nil {
		want := *c.ListingType
		preds = append(preds, func(l domain.Listing) bool {
			return l.ListingType != nil && *l.ListingType == want
		})
	}
	if c.BuildingType != nil {
		want := *c.BuildingType
		preds = append(preds, func(l domain.Listing) bool {
			return l.BuildingType != nil && *l.BuildingType == want
		})
	}
	if c.ListedBy != nil {
		want := c.ListedBy.AccountType()
		preds = append(preds, func(l domain.Listing) bool { return l.OwnerAccountType == want })
	}
	if c.MinPrice != nil {
		min := *c.MinPrice
		preds = append(preds, func(l domain.Listing) bool { return l.Price >= min })
	}
	if c.MaxPrice != nil {
		max := *c.MaxPrice
		preds = append(preds, func(l domain.Listing) bool { return l.Price <= max })
	}
	if c.MinBedrooms != nil {
		min := *c.MinBedrooms
		preds = append(preds, func(l domain.Listing) bool { return l.Bedrooms >= min })
	}
	if c.MinBathrooms != nil {
		min := *c.MinBathrooms
		preds = append(preds, func(l domain.Listing) bool { return l.Bathrooms >= min })
	}
	if c.MinArea != nil {
		min := *c.MinArea
		preds = append(preds, func(l domain.Listing) bool { return l.Area >= min })
	}
	if c.MaxArea != nil {
		max := *c.MaxArea
		preds = append(preds, func(l domain.Listing) bool { return l.Area <= max })
	}
	if c.Text != "" {
		text := c.Text
		preds = append(preds, func(l domain.Listing) bool { return MatchesText(l, text) })
	}
	if c.Origin != nil {
		origin := *c.Origin
		preds = append(preds, func(l domain.Listing) bool {
			return ListingDistanceKm(origin, l) <= radiusKm
		})
	}

	return preds
}

// Filter returns the listings that satisfy every criterion in c, in input order.
func Filter(listings []domain.Listing, c domain.SearchCriteria) []domain.Listing {
	return filterWith(listings, Predicates(c, DefaultRadiusKm))
}

// MatchesText is a case-insensitive substring match on title or description.
func MatchesText(l domain.Listing, text string) bool {
	if text == "" {
		return true
	}
	needle := strings.ToLower(text)
	return strings.Contains(strings.ToLower(l.Title), needle) ||
		strings.Contains(strings.ToLower(l.Description), needle)
}

func isActive(l domain.Listing) bool { return l.Active }

func filterWith(listings []domain.Listing, preds []Predicate) []domain.Listing {
	out := make([]domain.Listing, 0, len(listings))
next:
	for _, l := range listings {
		for _, p := range preds {
			if !p(l) {
				continue next
			}
		}
		out = append(out, l)
	}
	return out
}
