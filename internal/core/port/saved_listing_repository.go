package port

import (
	"context"

	"findar-backend/internal/core/domain"

	"github.com/google/uuid"
)

type SavedListingRepositoryPort interface {
	// Save is a no-op when the pair already exists.
	Save(ctx context.Context, userID uuid.UUID, listingID int64) error
	Remove(ctx context.Context, userID uuid.UUID, listingID int64) error
	// FindListingsByUser returns the saved listings, most recently saved first.
	FindListingsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Listing, error)
}
