package postgres_adapter

import (
	"context"
	"errors"
	"fmt"

	"findar-backend/internal/contextkeys"
	"findar-backend/internal/core/domain"
	"findar-backend/internal/core/port"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresBoostingPlanRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresBoostingPlanRepository(pool *pgxpool.Pool) (*PostgresBoostingPlanRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresBoostingPlanRepository{pool: pool}, nil
}

const planColumns = `id, plan_type, target_audience, credit_cost, duration_months, created_at`

func scanPlan(row pgx.Row) (domain.BoostingPlan, error) {
	var (
		p        domain.BoostingPlan
		audience string
	)
	if err := row.Scan(&p.ID, &p.PlanType, &audience, &p.CreditCost, &p.DurationMonths, &p.CreatedAt); err != nil {
		return domain.BoostingPlan{}, err
	}
	p.TargetAudience = domain.TargetAudience(audience)
	return p, nil
}

func (r *PostgresBoostingPlanRepository) FindAll(ctx context.Context) ([]domain.BoostingPlan, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresBoostingPlanRepository",
		"method":    "FindAll",
	})

	rows, err := r.pool.Query(ctx, `SELECT `+planColumns+` FROM boosting_plans ORDER BY credit_cost ASC, id ASC`)
	if err != nil {
		repoLogger.Error("Failed to query boosting plans", err, nil)
		return nil, fmt.Errorf("failed to query boosting plans: %w", err)
	}
	defer rows.Close()

	plans := make([]domain.BoostingPlan, 0)
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			repoLogger.Error("Failed to scan boosting plan", err, nil)
			return nil, fmt.Errorf("failed to scan boosting plan: %w", err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during boosting plans iteration: %w", err)
	}
	return plans, nil
}

func (r *PostgresBoostingPlanRepository) FindByID(ctx context.Context, id int64) (*domain.BoostingPlan, error) {
	p, err := scanPlan(r.pool.QueryRow(ctx, `SELECT `+planColumns+` FROM boosting_plans WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlanNotFound
		}
		contextkeys.LoggerFromContext(ctx).Error("Failed to load boosting plan", err, port.Fields{
			"component": "PostgresBoostingPlanRepository",
			"plan_id":   id,
		})
		return nil, fmt.Errorf("failed to load boosting plan %d: %w", id, err)
	}
	return &p, nil
}

func (r *PostgresBoostingPlanRepository) Exists(ctx context.Context, planType string, audience domain.TargetAudience) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM boosting_plans WHERE plan_type = $1 AND target_audience = $2)`
	if err := r.pool.QueryRow(ctx, query, planType, string(audience)).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check boosting plan existence: %w", err)
	}
	return exists, nil
}

func (r *PostgresBoostingPlanRepository) Create(ctx context.Context, plan *domain.BoostingPlan) error {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresBoostingPlanRepository",
		"method":    "Create",
		"plan_type": plan.PlanType,
		"audience":  plan.TargetAudience,
	})

	query := `INSERT INTO boosting_plans (plan_type, target_audience, credit_cost, duration_months)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query, plan.PlanType, string(plan.TargetAudience), plan.CreditCost, plan.DurationMonths).
		Scan(&plan.ID, &plan.CreatedAt)
	if err != nil {
		if pgErrorCode(err) == uniqueViolation {
			return fmt.Errorf("%w: plan %q for %s already exists", domain.ErrInvalidPlan, plan.PlanType, plan.TargetAudience)
		}
		repoLogger.Error("Failed to insert boosting plan", err, nil)
		return fmt.Errorf("failed to insert boosting plan: %w", err)
	}
	return nil
}
