package postgres_adapter

import (
	"fmt"

	"findar-backend/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

const listingColumns = `l.id, l.owner_id, COALESCE(u.account_type, 'normal'), l.title, l.description,
	l.price, l.created_at, l.active, l.boosted, l.latitude, l.longitude,
	l.bedrooms, l.bathrooms, l.living_rooms, l.area, l.listing_type, l.building_type`

const listingFrom = `FROM listings l LEFT JOIN users u ON u.id = l.owner_id`

func scanListing(row pgx.Row) (domain.Listing, error) {
	var (
		l            domain.Listing
		accountType  string
		listingType  *string
		buildingType *string
	)
	err := row.Scan(
		&l.ID, &l.OwnerID, &accountType, &l.Title, &l.Description,
		&l.Price, &l.CreatedAt, &l.Active, &l.Boosted, &l.Latitude, &l.Longitude,
		&l.Bedrooms, &l.Bathrooms, &l.LivingRooms, &l.Area, &listingType, &buildingType,
	)
	if err != nil {
		return domain.Listing{}, err
	}
	l.OwnerAccountType = domain.AccountType(accountType)
	if listingType != nil {
		lt := domain.ListingType(*listingType)
		l.ListingType = &lt
	}
	if buildingType != nil {
		bt := domain.BuildingType(*buildingType)
		l.BuildingType = &bt
	}
	return l, nil
}

func collectListings(rows pgx.Rows) ([]domain.Listing, error) {
	defer rows.Close()

	listings := make([]domain.Listing, 0)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing row: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during listings iteration: %w", err)
	}
	return listings, nil
}

func nullableString[T ~string](v *T) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
