package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ListingType string

const (
	ListingTypeRent ListingType = "rent"
	ListingTypeSale ListingType = "sale"
)

// ParseListingType accepts only the exact lowercase values.
func ParseListingType(s string) (ListingType, bool) {
	switch lt := ListingType(strings.TrimSpace(s)); lt {
	case ListingTypeRent, ListingTypeSale:
		return lt, true
	}
	return "", false
}

type BuildingType string

const (
	BuildingTypeApartment BuildingType = "apartment"
	BuildingTypeHouse     BuildingType = "house"
	BuildingTypeStudio    BuildingType = "studio"
	BuildingTypeVilla     BuildingType = "villa"
	BuildingTypeOffice    BuildingType = "office"
)

// ParseBuildingType is case-insensitive and returns the canonical lowercase value.
func ParseBuildingType(s string) (BuildingType, bool) {
	switch bt := BuildingType(strings.ToLower(strings.TrimSpace(s))); bt {
	case BuildingTypeApartment, BuildingTypeHouse, BuildingTypeStudio, BuildingTypeVilla, BuildingTypeOffice:
		return bt, true
	}
	return "", false
}

// Listing is a property advertisement.
// Latitude and Longitude are nil when the owner did not place the property on the map.
type Listing struct {
	ID               int64
	OwnerID          uuid.UUID
	OwnerAccountType AccountType
	Title            string
	Description      string
	Price            float64
	CreatedAt        time.Time
	Active           bool
	Boosted          bool
	Latitude         *float64
	Longitude        *float64
	Bedrooms         int
	Bathrooms        int
	LivingRooms      int
	Area             float64
	ListingType      *ListingType
	BuildingType     *BuildingType
}

func (l Listing) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// ListingInput carries the owner-editable fields of a listing.
type ListingInput struct {
	Title        string
	Description  string
	Price        float64
	Latitude     *float64
	Longitude    *float64
	Bedrooms     int
	Bathrooms    int
	LivingRooms  int
	Area         float64
	ListingType  *ListingType
	BuildingType *BuildingType
}

func (in ListingInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidListing)
	}
	if in.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrInvalidListing)
	}
	if in.Bedrooms < 0 || in.Bathrooms < 0 || in.LivingRooms < 0 || in.Area < 0 {
		return fmt.Errorf("%w: room counts and area cannot be negative", ErrInvalidListing)
	}
	if (in.Latitude == nil) != (in.Longitude == nil) {
		return fmt.Errorf("%w: latitude and longitude must be set together", ErrInvalidListing)
	}
	if in.Latitude != nil && (*in.Latitude < -90 || *in.Latitude > 90 || *in.Longitude < -180 || *in.Longitude > 180) {
		return fmt.Errorf("%w: coordinates out of range", ErrInvalidListing)
	}
	return nil
}

// Apply copies the input onto an existing listing, keeping identity and lifecycle flags.
func (in ListingInput) Apply(l *Listing) {
	l.Title = strings.TrimSpace(in.Title)
	l.Description = in.Description
	l.Price = in.Price
	l.Latitude = in.Latitude
	l.Longitude = in.Longitude
	l.Bedrooms = in.Bedrooms
	l.Bathrooms = in.Bathrooms
	l.LivingRooms = in.LivingRooms
	l.Area = in.Area
	l.ListingType = in.ListingType
	l.BuildingType = in.BuildingType
}
