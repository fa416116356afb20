package search

import (
	"time"

	"findar-backend/internal/core/domain"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func listing(id int64, price float64, lt domain.ListingType) domain.Listing {
	return domain.Listing{
		ID:               id,
		Title:            "Listing",
		Price:            price,
		Active:           true,
		CreatedAt:        baseTime.Add(time.Duration(id) * time.Hour),
		OwnerAccountType: domain.AccountTypeNormal,
		ListingType:      ptr(lt),
	}
}

func ids(listings []domain.Listing) []int64 {
	out := make([]int64, 0, len(listings))
	for _, l := range listings {
		out = append(out, l.ID)
	}
	return out
}
