package usecases_port

import (
	"context"

	"findar-backend/internal/core/domain"

	"github.com/google/uuid"
)

type SaveListingUseCasePort interface {
	Execute(ctx context.Context, userID uuid.UUID, listingID int64) error
}

type UnsaveListingUseCasePort interface {
	Execute(ctx context.Context, userID uuid.UUID, listingID int64) error
}

type GetSavedListingsUseCasePort interface {
	Execute(ctx context.Context, userID uuid.UUID) ([]domain.Listing, error)
}
