package port

import (
	"context"
	"time"

	"findar-backend/internal/core/domain"

	"github.com/google/uuid"
)

type ListingRepositoryPort interface {
	// FindByID returns domain.ErrListingNotFound for an unknown id.
	FindByID(ctx context.Context, id int64) (*domain.Listing, error)

	// FindSearchCandidates returns active listings that may satisfy c.
	// It may return extra rows but must never drop a listing that satisfies c.
	FindSearchCandidates(ctx context.Context, c domain.SearchCriteria) ([]domain.Listing, error)

	FindRecent(ctx context.Context, q domain.RecentQuery, limit int) ([]domain.Listing, error)
	// FindSponsored returns active boosted listings with a promotion still running at now.
	FindSponsored(ctx context.Context, now time.Time) ([]domain.Listing, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Listing, error)

	// Create fills in ID and CreatedAt.
	Create(ctx context.Context, listing *domain.Listing) error
	Update(ctx context.Context, listing *domain.Listing) error
	SetActive(ctx context.Context, id int64, active bool) error
	MarkBoosted(ctx context.Context, id int64) error
}
