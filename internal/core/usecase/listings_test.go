package usecase

import (
	"context"
	"testing"

	"findar-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvancedSearch_FiltersRepositoryCandidates(t *testing.T) {
	rent, sale := domain.ListingTypeRent, domain.ListingTypeSale
	prices := []float64{800, 1500, 1800, 2500, 1900}
	types := []*domain.ListingType{&rent, &rent, &sale, &rent, &rent}

	var fixture []domain.Listing
	for i := range prices {
		fixture = append(fixture, domain.Listing{ID: int64(i + 1), Price: prices[i], ListingType: types[i], Active: true})
	}
	inactive := domain.Listing{ID: 6, Price: 1600, ListingType: &rent}
	fixture = append(fixture, inactive)

	uc := NewAdvancedSearchUseCase(newFakeListingRepo(fixture...))
	result, err := uc.Execute(context.Background(), domain.SearchCriteria{
		MinPrice:    ptr(1000.0),
		MaxPrice:    ptr(2000.0),
		ListingType: &rent,
		SortBy:      domain.SortPriceAsc,
	})
	require.NoError(t, err)

	require.Len(t, result, 2)
	assert.Equal(t, 1500.0, result[0].Price)
	assert.Equal(t, 1900.0, result[1].Price)
}

func TestRecentListings_Capped(t *testing.T) {
	var fixture []domain.Listing
	for i := 1; i <= 25; i++ {
		fixture = append(fixture, domain.Listing{ID: int64(i), Active: true, Title: "Flat"})
	}

	result, err := NewRecentListingsUseCase(newFakeListingRepo(fixture...)).Execute(context.Background(), domain.RecentQuery{})
	require.NoError(t, err)
	assert.Len(t, result, domain.RecentListingsLimit)
}

func TestCreateAndEditListing(t *testing.T) {
	owner := uuid.New()
	repo := newFakeListingRepo()

	created, err := NewCreateListingUseCase(repo).Execute(context.Background(), owner, domain.ListingInput{
		Title: "  Sea view flat ", Price: 1200, Bedrooms: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "Sea view flat", created.Title)
	assert.True(t, created.Active)
	assert.Equal(t, owner, created.OwnerID)

	_, err = NewCreateListingUseCase(repo).Execute(context.Background(), owner, domain.ListingInput{Title: "Free", Price: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidListing)

	edit := NewEditListingUseCase(repo)
	edited, err := edit.Execute(context.Background(), owner, created.ID, domain.ListingInput{Title: "Renamed", Price: 1300})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", edited.Title)
	assert.Equal(t, 1300.0, repo.listings[created.ID].Price)

	_, err = edit.Execute(context.Background(), uuid.New(), created.ID, domain.ListingInput{Title: "Hijack", Price: 1})
	assert.ErrorIs(t, err, domain.ErrNotListingOwner)

	_, err = edit.Execute(context.Background(), owner, 999, domain.ListingInput{Title: "Ghost", Price: 1})
	assert.ErrorIs(t, err, domain.ErrListingNotFound)
}

func TestToggleListingActive(t *testing.T) {
	owner := uuid.New()
	repo := newFakeListingRepo(domain.Listing{ID: 1, OwnerID: owner, Active: true})
	uc := NewToggleListingActiveUseCase(repo)

	active, err := uc.Execute(context.Background(), owner, 1)
	require.NoError(t, err)
	assert.False(t, active)

	active, err = uc.Execute(context.Background(), owner, 1)
	require.NoError(t, err)
	assert.True(t, active)

	_, err = uc.Execute(context.Background(), uuid.New(), 1)
	assert.ErrorIs(t, err, domain.ErrNotListingOwner)
}

func TestReportListing(t *testing.T) {
	reports := &fakeReportRepo{}
	uc := NewReportListingUseCase(newFakeListingRepo(domain.Listing{ID: 3, Active: true}), reports)

	report, err := uc.Execute(context.Background(), uuid.New(), 3, " spam ", "")
	require.NoError(t, err)
	assert.Equal(t, "spam", report.Reason)
	assert.Len(t, reports.reports, 1)

	_, err = uc.Execute(context.Background(), uuid.New(), 3, "  ", "")
	assert.ErrorIs(t, err, domain.ErrInvalidReport)

	_, err = uc.Execute(context.Background(), uuid.New(), 4, "spam", "")
	assert.ErrorIs(t, err, domain.ErrListingNotFound)
}

type fakeReportRepo struct{ reports []domain.Report }

func (r *fakeReportRepo) Create(_ context.Context, report *domain.Report) error {
	report.ID = int64(len(r.reports) + 1)
	r.reports = append(r.reports, *report)
	return nil
}
