package usecases_port

import (
	"context"

	"findar-backend/internal/core/domain"

	"github.com/google/uuid"
)

type AdvancedSearchUseCasePort interface {
	Execute(ctx context.Context, criteria domain.SearchCriteria) ([]domain.Listing, error)
}

type RecentListingsUseCasePort interface {
	Execute(ctx context.Context, query domain.RecentQuery) ([]domain.Listing, error)
}

type GetListingDetailsUseCasePort interface {
	Execute(ctx context.Context, listingID int64) (*domain.Listing, error)
}

type GetSponsoredListingsUseCasePort interface {
	Execute(ctx context.Context) ([]domain.Listing, error)
}

type CreateListingUseCasePort interface {
	Execute(ctx context.Context, ownerID uuid.UUID, input domain.ListingInput) (*domain.Listing, error)
}

type EditListingUseCasePort interface {
	Execute(ctx context.Context, ownerID uuid.UUID, listingID int64, input domain.ListingInput) (*domain.Listing, error)
}

type ToggleListingActiveUseCasePort interface {
	// Execute returns the new value of the active flag.
	Execute(ctx context.Context, ownerID uuid.UUID, listingID int64) (bool, error)
}

type GetMyListingsUseCasePort interface {
	Execute(ctx context.Context, ownerID uuid.UUID) ([]domain.Listing, error)
}

type ReportListingUseCasePort interface {
	Execute(ctx context.Context, reporterID uuid.UUID, listingID int64, reason, details string) (*domain.Report, error)
}
