package port

import (
	"context"

	"findar-backend/internal/core/domain"
)

type ReportRepositoryPort interface {
	Create(ctx context.Context, report *domain.Report) error
}
