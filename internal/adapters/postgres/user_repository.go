package postgres_adapter

import (
	"context"
	"fmt"
	"time"

	"findar-backend/internal/contextkeys"
	"findar-backend/internal/core/domain"
	"findar-backend/internal/core/port"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// touchResolution bounds how often activity of the same user is written.
const touchResolution = time.Minute

// PostgresUserRepository also serves as the credit ledger: balances live on the user row.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepository(pool *pgxpool.Pool) (*PostgresUserRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresUserRepository{pool: pool}, nil
}

func (r *PostgresUserRepository) Touch(ctx context.Context, userID uuid.UUID, at time.Time) error {
	query := `INSERT INTO users (id, last_active_at) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET last_active_at = EXCLUDED.last_active_at
		WHERE users.last_active_at < $3`

	if _, err := r.pool.Exec(ctx, query, userID, at, at.Add(-touchResolution)); err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to record user activity", err, port.Fields{
			"component": "PostgresUserRepository",
			"user_id":   userID,
		})
		return fmt.Errorf("failed to record activity of user %s: %w", userID, err)
	}
	return nil
}

// ClaimInactive reminds a user at most once per idle period: the stamp is
// only rewritten after newer activity moves last_active_at past it.
func (r *PostgresUserRepository) ClaimInactive(ctx context.Context, now time.Time, threshold time.Duration) ([]domain.User, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresUserRepository",
		"method":    "ClaimInactive",
	})

	query := `UPDATE users SET engagement_reminded_at = $1
		WHERE last_active_at <= $2
		  AND (engagement_reminded_at IS NULL OR engagement_reminded_at < last_active_at)
		RETURNING id, account_type, credits, last_active_at, engagement_reminded_at`

	rows, err := r.pool.Query(ctx, query, now, now.Add(-threshold))
	if err != nil {
		repoLogger.Error("Failed to claim inactive users", err, nil)
		return nil, fmt.Errorf("failed to claim inactive users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var (
			u           domain.User
			accountType string
		)
		if err := rows.Scan(&u.ID, &accountType, &u.Credits, &u.LastActiveAt, &u.EngagementRemindedAt); err != nil {
			repoLogger.Error("Failed to scan inactive user", err, nil)
			return nil, fmt.Errorf("failed to scan inactive user: %w", err)
		}
		u.AccountType = domain.AccountType(accountType)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during inactive users iteration: %w", err)
	}

	repoLogger.Debug("Inactive users claimed", port.Fields{"count": len(users)})
	return users, nil
}

// Charge debits atomically; the balance never goes negative.
func (r *PostgresUserRepository) Charge(ctx context.Context, userID uuid.UUID, amount float64) error {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresUserRepository",
		"method":    "Charge",
		"user_id":   userID,
		"amount":    amount,
	})

	cmdTag, err := r.pool.Exec(ctx, `UPDATE users SET credits = credits - $2 WHERE id = $1 AND credits >= $2`, userID, amount)
	if err != nil {
		repoLogger.Error("Failed to charge credits", err, nil)
		return fmt.Errorf("failed to charge credits: %w", err)
	}
	if cmdTag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check user existence: %w", err)
	}
	if !exists {
		return domain.ErrUserNotFound
	}
	return domain.ErrInsufficientCredits
}

func (r *PostgresUserRepository) Refund(ctx context.Context, userID uuid.UUID, amount float64) error {
	cmdTag, err := r.pool.Exec(ctx, `UPDATE users SET credits = credits + $2 WHERE id = $1`, userID, amount)
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to refund credits", err, port.Fields{
			"component": "PostgresUserRepository",
			"user_id":   userID,
			"amount":    amount,
		})
		return fmt.Errorf("failed to refund credits: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
