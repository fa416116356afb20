package postgres_adapter

import (
	"context"
	"errors"
	"fmt"

	"findar-backend/internal/contextkeys"
	"findar-backend/internal/core/domain"
	"findar-backend/internal/core/port"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

type PostgresSavedListingRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresSavedListingRepository(pool *pgxpool.Pool) (*PostgresSavedListingRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresSavedListingRepository{pool: pool}, nil
}

func (r *PostgresSavedListingRepository) Save(ctx context.Context, userID uuid.UUID, listingID int64) error {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":  "PostgresSavedListingRepository",
		"method":     "Save",
		"user_id":    userID,
		"listing_id": listingID,
	})

	query := `INSERT INTO saved_listings (user_id, listing_id) VALUES ($1, $2)`
	if _, err := r.pool.Exec(ctx, query, userID, listingID); err != nil {
		switch pgErrorCode(err) {
		case uniqueViolation:
			repoLogger.Debug("Listing already saved, operation considered successful.", nil)
			return nil
		case foreignKeyViolation:
			return domain.ErrListingNotFound
		}
		repoLogger.Error("Failed to save listing", err, port.Fields{"query": query})
		return fmt.Errorf("failed to save listing: %w", err)
	}
	return nil
}

func (r *PostgresSavedListingRepository) Remove(ctx context.Context, userID uuid.UUID, listingID int64) error {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":  "PostgresSavedListingRepository",
		"method":     "Remove",
		"user_id":    userID,
		"listing_id": listingID,
	})

	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM saved_listings WHERE user_id = $1 AND listing_id = $2`, userID, listingID)
	if err != nil {
		repoLogger.Error("Failed to remove saved listing", err, nil)
		return fmt.Errorf("failed to remove saved listing: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		repoLogger.Debug("Attempted to remove a listing that was not saved.", nil)
	}
	return nil
}

func (r *PostgresSavedListingRepository) FindListingsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Listing, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresSavedListingRepository",
		"method":    "FindListingsByUser",
		"user_id":   userID,
	})

	query := `SELECT ` + listingColumns + `
		FROM saved_listings s
		JOIN listings l ON l.id = s.listing_id
		LEFT JOIN users u ON u.id = l.owner_id
		WHERE s.user_id = $1
		ORDER BY s.created_at DESC, l.id ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		repoLogger.Error("Failed to query saved listings", err, nil)
		return nil, fmt.Errorf("failed to query saved listings: %w", err)
	}
	return collectListings(rows)
}
