package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"findar-backend/internal/contextkeys"
	"findar-backend/internal/core/domain"
	"findar-backend/internal/core/port"

	"github.com/google/uuid"
)

type RegisterDeviceUseCase struct {
	devices port.DeviceRepositoryPort
	now     func() time.Time
}

func NewRegisterDeviceUseCase(devices port.DeviceRepositoryPort) *RegisterDeviceUseCase {
	return &RegisterDeviceUseCase{devices: devices, now: time.Now}
}

func (uc *RegisterDeviceUseCase) Execute(ctx context.Context, userID uuid.UUID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: token is required", domain.ErrInvalidDevice)
	}

	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "RegisterDevice",
		"user_id":  userID.String(),
	})

	now := uc.now().UTC()
	device := &domain.DeviceRegistration{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     token,
		CreatedAt: now,
		LastSeen:  now,
	}
	if err := uc.devices.Upsert(ctx, device); err != nil {
		ucLogger.Error("Repository failed to register device", err, nil)
		return err
	}

	ucLogger.Info("Device registered", port.Fields{"device_id": device.ID.String()})
	return nil
}
