package postgres_adapter

import (
	"context"
	"fmt"

	"findar-backend/internal/contextkeys"
	"findar-backend/internal/core/domain"
	"findar-backend/internal/core/port"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresDeviceRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresDeviceRepository(pool *pgxpool.Pool) (*PostgresDeviceRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresDeviceRepository{pool: pool}, nil
}

// Upsert keeps the original id and created_at when the token is already known.
func (r *PostgresDeviceRepository) Upsert(ctx context.Context, device *domain.DeviceRegistration) error {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresDeviceRepository",
		"method":    "Upsert",
		"user_id":   device.UserID,
	})

	if device.ID == uuid.Nil {
		device.ID = uuid.New()
	}
	query := `INSERT INTO device_registrations (id, user_id, token, created_at, last_seen)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (token) DO UPDATE SET user_id = EXCLUDED.user_id, last_seen = EXCLUDED.last_seen
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query, device.ID, device.UserID, device.Token, device.CreatedAt, device.LastSeen).
		Scan(&device.ID, &device.CreatedAt)
	if err != nil {
		repoLogger.Error("Failed to upsert device registration", err, nil)
		return fmt.Errorf("failed to upsert device registration: %w", err)
	}
	return nil
}

func (r *PostgresDeviceRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]domain.DeviceRegistration, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresDeviceRepository",
		"method":    "FindByUser",
		"user_id":   userID,
	})

	query := `SELECT id, user_id, token, created_at, last_seen FROM device_registrations
		WHERE user_id = $1 ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		repoLogger.Error("Failed to query devices", err, nil)
		return nil, fmt.Errorf("failed to query devices of user %s: %w", userID, err)
	}
	defer rows.Close()

	devices := make([]domain.DeviceRegistration, 0)
	for rows.Next() {
		var d domain.DeviceRegistration
		if err := rows.Scan(&d.ID, &d.UserID, &d.Token, &d.CreatedAt, &d.LastSeen); err != nil {
			repoLogger.Error("Failed to scan device row", err, nil)
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		repoLogger.Error("Error during devices iteration", err, nil)
		return nil, fmt.Errorf("error during devices iteration: %w", err)
	}
	return devices, nil
}

func (r *PostgresDeviceRepository) DeleteByToken(ctx context.Context, token string) (int64, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresDeviceRepository",
		"method":    "DeleteByToken",
		"recipient": domain.TokenRecipient(token).String(),
	})

	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM device_registrations WHERE token = $1`, token)
	if err != nil {
		repoLogger.Error("Failed to delete device registration", err, nil)
		return 0, fmt.Errorf("failed to delete device registration: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		repoLogger.Warn("No registration held this token.", nil)
	}
	return cmdTag.RowsAffected(), nil
}
