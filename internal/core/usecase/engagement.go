package usecase

import (
	"context"
	"time"

	"findar-backend/internal/contextkeys"
	"findar-backend/internal/core/domain"
	"findar-backend/internal/core/port"

	"github.com/google/uuid"
)

// RemindInactiveUsersUseCase sends one engagement reminder per inactivity period.
type RemindInactiveUsersUseCase struct {
	users   port.UserRepositoryPort
	devices port.DeviceRepositoryPort
	queue   port.PushJobQueuePort
	limit   int
}

func NewRemindInactiveUsersUseCase(users port.UserRepositoryPort, devices port.DeviceRepositoryPort, queue port.PushJobQueuePort, maxParallel int) *RemindInactiveUsersUseCase {
	return &RemindInactiveUsersUseCase{users: users, devices: devices, queue: queue, limit: maxParallel}
}

func (uc *RemindInactiveUsersUseCase) Execute(ctx context.Context, now time.Time) (domain.ReminderRunStats, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "RemindInactiveUsers"})
	ucLogger.Info("Use case started", nil)

	var stats domain.ReminderRunStats
	users, err := uc.users.ClaimInactive(ctx, now, domain.InactivityThreshold)
	if err != nil {
		ucLogger.Error("Failed to claim inactive users", err, nil)
		return stats, err
	}
	stats.Claimed = len(users)

	msg := domain.EngagementReminderMessage()
	var jobs []domain.PushJob
	for _, u := range users {
		devices, err := uc.devices.FindByUser(ctx, u.ID)
		if err != nil {
			stats.LookupFailures++
			ucLogger.Error("Failed to load user devices", err, port.Fields{"user_id": u.ID.String()})
			continue
		}
		for _, d := range devices {
			jobs = append(jobs, domain.PushJob{
				Kind:      domain.PushKindEngagement,
				Recipient: domain.TokenRecipient(d.Token),
				Message:   msg,
			})
		}
	}

	stats.JobsEnqueued, stats.EnqueueFailed = enqueueAll(ctx, uc.queue, jobs, uc.limit, ucLogger)

	ucLogger.Info("Use case finished successfully", port.Fields{
		"claimed":        stats.Claimed,
		"jobs_enqueued":  stats.JobsEnqueued,
		"enqueue_failed": stats.EnqueueFailed,
	})
	return stats, nil
}

type TrackActivityUseCase struct {
	users port.UserRepositoryPort
	now   func() time.Time
}

func NewTrackActivityUseCase(users port.UserRepositoryPort) *TrackActivityUseCase {
	return &TrackActivityUseCase{users: users, now: time.Now}
}

func (uc *TrackActivityUseCase) Execute(ctx context.Context, userID uuid.UUID) error {
	return uc.users.Touch(ctx, userID, uc.now().UTC())
}
