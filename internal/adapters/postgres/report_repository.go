package postgres_adapter

import (
	"context"
	"fmt"

	"findar-backend/internal/contextkeys"
	"findar-backend/internal/core/domain"
	"findar-backend/internal/core/port"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresReportRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresReportRepository(pool *pgxpool.Pool) (*PostgresReportRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresReportRepository{pool: pool}, nil
}

func (r *PostgresReportRepository) Create(ctx context.Context, report *domain.Report) error {
	query := `INSERT INTO reports (listing_id, reporter_id, reason, details)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query, report.ListingID, report.ReporterID, report.Reason, report.Details).
		Scan(&report.ID, &report.CreatedAt)
	if err != nil {
		if pgErrorCode(err) == foreignKeyViolation {
			return domain.ErrListingNotFound
		}
		contextkeys.LoggerFromContext(ctx).Error("Failed to insert report", err, port.Fields{
			"component":  "PostgresReportRepository",
			"listing_id": report.ListingID,
		})
		return fmt.Errorf("failed to insert report: %w", err)
	}
	return nil
}
