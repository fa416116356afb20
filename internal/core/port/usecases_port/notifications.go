package usecases_port

import (
	"context"
	"time"

	"findar-backend/internal/core/domain"

	"github.com/google/uuid"
)

type SendNotificationUseCasePort interface {
	// Execute returns an error wrapping domain.ErrTransientDelivery when the caller may retry.
	Execute(ctx context.Context, recipient domain.Recipient, msg domain.PushMessage) (domain.DeliveryResult, error)
}

type ScanExpiringBoostsUseCasePort interface {
	Execute(ctx context.Context, now time.Time) ([]domain.ExpiryReminder, error)
}

type CheckExpiringBoostsUseCasePort interface {
	Execute(ctx context.Context, now time.Time) (domain.ReminderRunStats, error)
}

type RemindInactiveUsersUseCasePort interface {
	Execute(ctx context.Context, now time.Time) (domain.ReminderRunStats, error)
}

type RegisterDeviceUseCasePort interface {
	Execute(ctx context.Context, userID uuid.UUID, token string) error
}

type TrackActivityUseCasePort interface {
	Execute(ctx context.Context, userID uuid.UUID) error
}
