package usecase

import (
	"context"
	"fmt"

	"findar-backend/internal/contextkeys"
	"findar-backend/internal/core/domain"
	"findar-backend/internal/core/port"
)

// SendNotificationUseCase is the single delivery point for push messages.
// A recipient the transport rejects for good is removed from the device registry.
// A message the transport refuses fails with domain.ErrInvalidPush; any other failure is returned as retryable. It never retries by itself.
type SendNotificationUseCase struct {
	transport port.PushTransportPort
	devices   port.DeviceRepositoryPort
}

func NewSendNotificationUseCase(transport port.PushTransportPort, devices port.DeviceRepositoryPort) *SendNotificationUseCase {
	return &SendNotificationUseCase{transport: transport, devices: devices}
}

func (uc *SendNotificationUseCase) Execute(ctx context.Context, recipient domain.Recipient, msg domain.PushMessage) (domain.DeliveryResult, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":  "SendNotification",
		"recipient": recipient.String(),
	})

	if err := recipient.Validate(); err != nil {
		return "", err
	}
	if err := msg.Validate(); err != nil {
		return "", err
	}

	ucLogger.Debug("Use case started", nil)

	status, err := uc.transport.Deliver(ctx, recipient, msg)
	switch status {
	case domain.DeliveryOK:
		ucLogger.Debug("Use case finished successfully", nil)
		return domain.DeliveryDelivered, nil

	case domain.DeliveryInvalidRecipient:
		if recipient.IsTopic() {
			ucLogger.Warn("Transport rejected topic", port.Fields{"reason": errString(err)})
			return domain.DeliveryRecipientRetired, nil
		}
		removed, derr := uc.devices.DeleteByToken(ctx, recipient.Token)
		if derr != nil {
			ucLogger.Error("Failed to retire invalid device token", derr, nil)
			return "", fmt.Errorf("%w: retire token: %v", domain.ErrTransientDelivery, derr)
		}
		ucLogger.Info("Invalid device token retired", port.Fields{
			"removed": removed,
			"reason":  errString(err),
		})
		return domain.DeliveryRecipientRetired, nil

	case domain.DeliveryRejected:
		ucLogger.Warn("Transport rejected message", port.Fields{"reason": errString(err)})
		return "", fmt.Errorf("%w: rejected by transport: %v", domain.ErrInvalidPush, err)

	default:
		ucLogger.Warn("Transient delivery failure", port.Fields{"reason": errString(err)})
		return "", fmt.Errorf("%w: %v", domain.ErrTransientDelivery, err)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
