package port

import (
	"context"

	"findar-backend/internal/core/domain"
)

type BoostingPlanRepositoryPort interface {
	FindAll(ctx context.Context) ([]domain.BoostingPlan, error)
	// FindByID returns domain.ErrPlanNotFound for an unknown id.
	FindByID(ctx context.Context, id int64) (*domain.BoostingPlan, error)
	Exists(ctx context.Context, planType string, audience domain.TargetAudience) (bool, error)
	Create(ctx context.Context, plan *domain.BoostingPlan) error
}
