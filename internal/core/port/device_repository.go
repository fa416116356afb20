package port

import (
	"context"

	"findar-backend/internal/core/domain"

	"github.com/google/uuid"
)

type DeviceRepositoryPort interface {
	// Upsert registers the token for the user, taking it over if another user held it.
	Upsert(ctx context.Context, device *domain.DeviceRegistration) error
	FindByUser(ctx context.Context, userID uuid.UUID) ([]domain.DeviceRegistration, error)
	// DeleteByToken returns the number of registrations removed.
	DeleteByToken(ctx context.Context, token string) (int64, error)
}
