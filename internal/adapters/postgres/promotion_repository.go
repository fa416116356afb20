package postgres_adapter

import (
	"context"
	"fmt"
	"time"

	"findar-backend/internal/contextkeys"
	"findar-backend/internal/core/domain"
	"findar-backend/internal/core/port"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresPromotionRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresPromotionRepository(pool *pgxpool.Pool) (*PostgresPromotionRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresPromotionRepository{pool: pool}, nil
}

func (r *PostgresPromotionRepository) Create(ctx context.Context, promotion *domain.Promotion) error {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":  "PostgresPromotionRepository",
		"method":     "Create",
		"listing_id": promotion.ListingID,
		"plan_id":    promotion.PlanID,
	})

	query := `INSERT INTO promotions (plan_id, listing_id, created_at, expires_at, notified)
		VALUES ($1, $2, $3, $4, false)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query, promotion.PlanID, promotion.ListingID, promotion.CreatedAt, promotion.ExpiresAt).
		Scan(&promotion.ID)
	if err != nil {
		repoLogger.Error("Failed to insert promotion", err, nil)
		return fmt.Errorf("failed to insert promotion: %w", err)
	}
	promotion.Notified = false
	return nil
}

// ClaimExpiring relies on row locking under READ COMMITTED: a concurrent
// claimer blocks on the same rows, re-evaluates "notified = false" after the
// first commits and skips them.
func (r *PostgresPromotionRepository) ClaimExpiring(ctx context.Context, now time.Time, window time.Duration) ([]domain.ExpiringPromotion, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresPromotionRepository",
		"method":    "ClaimExpiring",
	})

	query := `WITH claimed AS (
			UPDATE promotions SET notified = true
			WHERE notified = false AND expires_at > $1 AND expires_at <= $2
			RETURNING id, plan_id, listing_id, created_at, expires_at
		)
		SELECT c.id, c.plan_id, c.listing_id, c.created_at, c.expires_at, l.owner_id, l.title
		FROM claimed c JOIN listings l ON l.id = c.listing_id
		ORDER BY c.expires_at ASC, c.id ASC`

	rows, err := r.pool.Query(ctx, query, now, now.Add(window))
	if err != nil {
		repoLogger.Error("Failed to claim expiring promotions", err, nil)
		return nil, fmt.Errorf("failed to claim expiring promotions: %w", err)
	}
	defer rows.Close()

	claimed := make([]domain.ExpiringPromotion, 0)
	for rows.Next() {
		var p domain.ExpiringPromotion
		if err := rows.Scan(&p.ID, &p.PlanID, &p.ListingID, &p.CreatedAt, &p.ExpiresAt, &p.OwnerID, &p.ListingTitle); err != nil {
			repoLogger.Error("Failed to scan claimed promotion", err, nil)
			return nil, fmt.Errorf("failed to scan claimed promotion: %w", err)
		}
		p.Notified = true
		claimed = append(claimed, p)
	}
	if err := rows.Err(); err != nil {
		repoLogger.Error("Error during claimed promotions iteration", err, nil)
		return nil, fmt.Errorf("error during claimed promotions iteration: %w", err)
	}

	repoLogger.Debug("Expiring promotions claimed", port.Fields{"count": len(claimed)})
	return claimed, nil
}
