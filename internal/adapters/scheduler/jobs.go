package scheduler_adapter

import (
	"context"
	"time"

	"findar-backend/internal/core/port/usecases_port"
)

func BoostExpiryJob(uc usecases_port.CheckExpiringBoostsUseCasePort) JobFunc {
	return func(ctx context.Context, now time.Time) error {
		_, err := uc.Execute(ctx, now)
		return err
	}
}

func EngagementReminderJob(uc usecases_port.RemindInactiveUsersUseCasePort) JobFunc {
	return func(ctx context.Context, now time.Time) error {
		_, err := uc.Execute(ctx, now)
		return err
	}
}
