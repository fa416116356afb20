package postgres_adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"findar-backend/internal/contextkeys"
	"findar-backend/internal/core/domain"
	"findar-backend/internal/core/port"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresListingRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresListingRepository(pool *pgxpool.Pool) (*PostgresListingRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresListingRepository{pool: pool}, nil
}

func (r *PostgresListingRepository) logger(ctx context.Context, method string, fields port.Fields) port.LoggerPort {
	base := port.Fields{"component": "PostgresListingRepository", "method": method}
	for k, v := range fields {
		base[k] = v
	}
	return contextkeys.LoggerFromContext(ctx).WithFields(base)
}

func (r *PostgresListingRepository) FindByID(ctx context.Context, id int64) (*domain.Listing, error) {
	repoLogger := r.logger(ctx, "FindByID", port.Fields{"listing_id": id})

	query := `SELECT ` + listingColumns + ` ` + listingFrom + ` WHERE l.id = $1`
	l, err := scanListing(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrListingNotFound
		}
		repoLogger.Error("Failed to load listing", err, nil)
		return nil, fmt.Errorf("failed to load listing %d: %w", id, err)
	}
	return &l, nil
}

func (r *PostgresListingRepository) FindSearchCandidates(ctx context.Context, c domain.SearchCriteria) ([]domain.Listing, error) {
	repoLogger := r.logger(ctx, "FindSearchCandidates", nil)

	whereClause, args := applySearchCriteria(c)
	query := fmt.Sprintf(`SELECT %s %s %s`, listingColumns, listingFrom, whereClause)

	repoLogger.Debug("Querying search candidates", port.Fields{"where": whereClause, "args_count": len(args)})
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		repoLogger.Error("Failed to query search candidates", err, port.Fields{"query": query})
		return nil, fmt.Errorf("failed to query search candidates: %w", err)
	}
	listings, err := collectListings(rows)
	if err != nil {
		repoLogger.Error("Failed to read search candidates", err, nil)
		return nil, err
	}
	repoLogger.Debug("Search candidates loaded", port.Fields{"count": len(listings)})
	return listings, nil
}

func (r *PostgresListingRepository) FindRecent(ctx context.Context, q domain.RecentQuery, limit int) ([]domain.Listing, error) {
	repoLogger := r.logger(ctx, "FindRecent", port.Fields{"limit": limit})

	qb := applyRecentQuery(q)
	limitPlaceholder := qb.nextPlaceholder()
	whereClause, args := qb.build()
	query := fmt.Sprintf(`SELECT %s %s %s ORDER BY l.created_at DESC, l.id ASC`,
		listingColumns, listingFrom, whereClause)
	// a text match the database cannot do would shorten a limited page
	if qb.textDeferred {
		repoLogger.Debug("Text filter deferred to in-memory match, loading without limit", nil)
	} else {
		query += " LIMIT " + limitPlaceholder
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		repoLogger.Error("Failed to query recent listings", err, port.Fields{"query": query})
		return nil, fmt.Errorf("failed to query recent listings: %w", err)
	}
	return collectListings(rows)
}

func (r *PostgresListingRepository) FindSponsored(ctx context.Context, now time.Time) ([]domain.Listing, error) {
	repoLogger := r.logger(ctx, "FindSponsored", nil)

	query := `SELECT ` + listingColumns + ` ` + listingFrom + `
		WHERE l.active = true AND l.boosted = true
		  AND EXISTS (SELECT 1 FROM promotions p WHERE p.listing_id = l.id AND p.expires_at > $1)
		ORDER BY l.created_at DESC, l.id ASC`

	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		repoLogger.Error("Failed to query sponsored listings", err, nil)
		return nil, fmt.Errorf("failed to query sponsored listings: %w", err)
	}
	return collectListings(rows)
}

func (r *PostgresListingRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Listing, error) {
	repoLogger := r.logger(ctx, "FindByOwner", port.Fields{"owner_id": ownerID})

	query := `SELECT ` + listingColumns + ` ` + listingFrom + `
		WHERE l.owner_id = $1
		ORDER BY l.created_at DESC, l.id ASC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		repoLogger.Error("Failed to query owner listings", err, nil)
		return nil, fmt.Errorf("failed to query listings of owner %s: %w", ownerID, err)
	}
	return collectListings(rows)
}

func (r *PostgresListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	repoLogger := r.logger(ctx, "Create", port.Fields{"owner_id": listing.OwnerID})

	query := `INSERT INTO listings (
			owner_id, title, description, price, active, boosted, latitude, longitude, geohash,
			bedrooms, bathrooms, living_rooms, area, listing_type, building_type
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		listing.OwnerID, listing.Title, listing.Description, listing.Price, listing.Active, listing.Boosted,
		listing.Latitude, listing.Longitude, listingGeohash(listing.Latitude, listing.Longitude),
		listing.Bedrooms, listing.Bathrooms, listing.LivingRooms, listing.Area,
		nullableString(listing.ListingType), nullableString(listing.BuildingType),
	).Scan(&listing.ID, &listing.CreatedAt)
	if err != nil {
		repoLogger.Error("Failed to insert listing", err, nil)
		return fmt.Errorf("failed to insert listing: %w", err)
	}

	repoLogger.Debug("Listing created", port.Fields{"listing_id": listing.ID})
	return nil
}

func (r *PostgresListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	repoLogger := r.logger(ctx, "Update", port.Fields{"listing_id": listing.ID})

	query := `UPDATE listings SET
			title = $2, description = $3, price = $4, latitude = $5, longitude = $6, geohash = $7,
			bedrooms = $8, bathrooms = $9, living_rooms = $10, area = $11, listing_type = $12, building_type = $13
		WHERE id = $1`

	cmdTag, err := r.pool.Exec(ctx, query,
		listing.ID, listing.Title, listing.Description, listing.Price,
		listing.Latitude, listing.Longitude, listingGeohash(listing.Latitude, listing.Longitude),
		listing.Bedrooms, listing.Bathrooms, listing.LivingRooms, listing.Area,
		nullableString(listing.ListingType), nullableString(listing.BuildingType),
	)
	if err != nil {
		repoLogger.Error("Failed to update listing", err, nil)
		return fmt.Errorf("failed to update listing %d: %w", listing.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (r *PostgresListingRepository) SetActive(ctx context.Context, id int64, active bool) error {
	repoLogger := r.logger(ctx, "SetActive", port.Fields{"listing_id": id, "active": active})

	cmdTag, err := r.pool.Exec(ctx, `UPDATE listings SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		repoLogger.Error("Failed to change listing state", err, nil)
		return fmt.Errorf("failed to change state of listing %d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (r *PostgresListingRepository) MarkBoosted(ctx context.Context, id int64) error {
	repoLogger := r.logger(ctx, "MarkBoosted", port.Fields{"listing_id": id})

	cmdTag, err := r.pool.Exec(ctx, `UPDATE listings SET boosted = true WHERE id = $1`, id)
	if err != nil {
		repoLogger.Error("Failed to mark listing as boosted", err, nil)
		return fmt.Errorf("failed to mark listing %d as boosted: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}
