package usecase

import (
	"context"
	"time"

	"findar-backend/internal/contextkeys"
	"findar-backend/internal/core/domain"
	"findar-backend/internal/core/port"
	"findar-backend/internal/core/port/usecases_port"
)

// ScanExpiringBoostsUseCase claims every promotion entering its final 24 hours and
// resolves the owner's devices. The claim is the only state change and happens once per promotion.
type ScanExpiringBoostsUseCase struct {
	promotions port.PromotionRepositoryPort
	devices    port.DeviceRepositoryPort
}

func NewScanExpiringBoostsUseCase(promotions port.PromotionRepositoryPort, devices port.DeviceRepositoryPort) *ScanExpiringBoostsUseCase {
	return &ScanExpiringBoostsUseCase{promotions: promotions, devices: devices}
}

func (uc *ScanExpiringBoostsUseCase) Execute(ctx context.Context, now time.Time) ([]domain.ExpiryReminder, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "ScanExpiringBoosts",
		"now":      now.UTC().Format(time.RFC3339),
	})

	ucLogger.Info("Use case started", nil)

	claimed, err := uc.promotions.ClaimExpiring(ctx, now, domain.ExpiryWarningWindow)
	if err != nil {
		ucLogger.Error("Failed to claim expiring promotions", err, nil)
		return nil, err
	}

	reminders := make([]domain.ExpiryReminder, 0, len(claimed))
	for _, p := range claimed {
		reminder := domain.ExpiryReminder{Promotion: p}
		devices, err := uc.devices.FindByUser(ctx, p.OwnerID)
		if err != nil {
			ucLogger.Error("Failed to load owner devices, reminder is lost", err, port.Fields{
				"promotion_id": p.ID,
				"owner_id":     p.OwnerID.String(),
			})
			reminder.DeviceLookupFailed = true
		} else {
			reminder.Devices = devices
		}
		reminders = append(reminders, reminder)
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"claimed": len(claimed)})
	return reminders, nil
}

// CheckExpiringBoostsUseCase is the scheduled job around the scan: one reminder
// job per owner device plus a live event for the owner.
type CheckExpiringBoostsUseCase struct {
	scanner  usecases_port.ScanExpiringBoostsUseCasePort
	queue    port.PushJobQueuePort
	notifier port.LiveNotifierPort
	limit    int
}

func NewCheckExpiringBoostsUseCase(
	scanner usecases_port.ScanExpiringBoostsUseCasePort,
	queue port.PushJobQueuePort,
	notifier port.LiveNotifierPort,
	maxParallel int,
) *CheckExpiringBoostsUseCase {
	return &CheckExpiringBoostsUseCase{scanner: scanner, queue: queue, notifier: notifier, limit: maxParallel}
}

func (uc *CheckExpiringBoostsUseCase) Execute(ctx context.Context, now time.Time) (domain.ReminderRunStats, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "CheckExpiringBoosts"})

	var stats domain.ReminderRunStats
	reminders, err := uc.scanner.Execute(ctx, now)
	if err != nil {
		return stats, err
	}
	stats.Claimed = len(reminders)

	var jobs []domain.PushJob
	for _, r := range reminders {
		if r.DeviceLookupFailed {
			stats.LookupFailures++
		}
		msg := domain.BoostExpiryReminderMessage(r.Promotion.ListingID)
		for _, d := range r.Devices {
			jobs = append(jobs, domain.PushJob{
				Kind:      domain.PushKindBoostExpiry,
				Recipient: domain.TokenRecipient(d.Token),
				Message:   msg,
			})
		}

		uc.notifier.Notify(ctx, domain.UserEvent{
			Type:   string(domain.PushKindBoostExpiry),
			UserID: r.Promotion.OwnerID,
			Data: map[string]interface{}{
				"listing_id":    r.Promotion.ListingID,
				"listing_title": r.Promotion.ListingTitle,
				"expires_at":    r.Promotion.ExpiresAt,
			},
		})
	}

	stats.JobsEnqueued, stats.EnqueueFailed = enqueueAll(ctx, uc.queue, jobs, uc.limit, ucLogger)

	ucLogger.Info("Use case finished successfully", port.Fields{
		"claimed":         stats.Claimed,
		"jobs_enqueued":   stats.JobsEnqueued,
		"enqueue_failed":  stats.EnqueueFailed,
		"lookup_failures": stats.LookupFailures,
	})
	return stats, nil
}
