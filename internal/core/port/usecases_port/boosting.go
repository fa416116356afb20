package usecases_port

import (
	"context"

	"findar-backend/internal/core/domain"

	"github.com/google/uuid"
)

type ListBoostingPlansUseCasePort interface {
	Execute(ctx context.Context) ([]domain.BoostingPlan, error)
}

type CreateBoostingPlanUseCasePort interface {
	Execute(ctx context.Context, plan domain.BoostingPlan) (*domain.BoostingPlan, error)
}

type SyncPlanCatalogUseCasePort interface {
	// Execute creates the catalog plans that do not exist yet and returns how many were created.
	Execute(ctx context.Context, catalog []domain.BoostingPlan) (int, error)
}

type BoostListingUseCasePort interface {
	Execute(ctx context.Context, ownerID uuid.UUID, listingID, planID int64) (*domain.Promotion, error)
}
