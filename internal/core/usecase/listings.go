package usecase

import (
	"context"
	"errors"
	"time"

	"findar-backend/internal/contextkeys"
	"findar-backend/internal/core/domain"
	"findar-backend/internal/core/port"

	"github.com/google/uuid"
)

type GetListingDetailsUseCase struct {
	repo port.ListingRepositoryPort
}

func NewGetListingDetailsUseCase(repo port.ListingRepositoryPort) *GetListingDetailsUseCase {
	return &GetListingDetailsUseCase{repo: repo}
}

func (uc *GetListingDetailsUseCase) Execute(ctx context.Context, listingID int64) (*domain.Listing, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":   "GetListingDetails",
		"listing_id": listingID,
	})

	listing, err := uc.repo.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			ucLogger.Debug("Listing not found", nil)
		} else {
			ucLogger.Error("Repository failed to find listing", err, nil)
		}
		return nil, err
	}
	return listing, nil
}

type GetSponsoredListingsUseCase struct {
	repo port.ListingRepositoryPort
	now  func() time.Time
}

func NewGetSponsoredListingsUseCase(repo port.ListingRepositoryPort) *GetSponsoredListingsUseCase {
	return &GetSponsoredListingsUseCase{repo: repo, now: time.Now}
}

func (uc *GetSponsoredListingsUseCase) Execute(ctx context.Context) ([]domain.Listing, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "GetSponsoredListings"})

	listings, err := uc.repo.FindSponsored(ctx, uc.now().UTC())
	if err != nil {
		ucLogger.Error("Repository failed to load sponsored listings", err, nil)
		return nil, err
	}
	return listings, nil
}

type CreateListingUseCase struct {
	repo port.ListingRepositoryPort
}

func NewCreateListingUseCase(repo port.ListingRepositoryPort) *CreateListingUseCase {
	return &CreateListingUseCase{repo: repo}
}

func (uc *CreateListingUseCase) Execute(ctx context.Context, ownerID uuid.UUID, input domain.ListingInput) (*domain.Listing, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "CreateListing",
		"owner_id": ownerID.String(),
	})

	ucLogger.Info("Use case started", nil)

	if err := input.Validate(); err != nil {
		ucLogger.Warn("Listing input rejected", port.Fields{"reason": err.Error()})
		return nil, err
	}

	listing := &domain.Listing{OwnerID: ownerID, Active: true}
	input.Apply(listing)

	if err := uc.repo.Create(ctx, listing); err != nil {
		ucLogger.Error("Repository failed to create listing", err, nil)
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"listing_id": listing.ID})
	return listing, nil
}

type EditListingUseCase struct {
	repo port.ListingRepositoryPort
}

func NewEditListingUseCase(repo port.ListingRepositoryPort) *EditListingUseCase {
	return &EditListingUseCase{repo: repo}
}

func (uc *EditListingUseCase) Execute(ctx context.Context, ownerID uuid.UUID, listingID int64, input domain.ListingInput) (*domain.Listing, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":   "EditListing",
		"owner_id":   ownerID.String(),
		"listing_id": listingID,
	})

	ucLogger.Info("Use case started", nil)

	listing, err := findOwnedListing(ctx, uc.repo, ownerID, listingID)
	if err != nil {
		ucLogger.Warn("Listing is not editable by this user", port.Fields{"reason": err.Error()})
		return nil, err
	}
	if err := input.Validate(); err != nil {
		ucLogger.Warn("Listing input rejected", port.Fields{"reason": err.Error()})
		return nil, err
	}

	input.Apply(listing)
	if err := uc.repo.Update(ctx, listing); err != nil {
		ucLogger.Error("Repository failed to update listing", err, nil)
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", nil)
	return listing, nil
}

type ToggleListingActiveUseCase struct {
	repo port.ListingRepositoryPort
}

func NewToggleListingActiveUseCase(repo port.ListingRepositoryPort) *ToggleListingActiveUseCase {
	return &ToggleListingActiveUseCase{repo: repo}
}

func (uc *ToggleListingActiveUseCase) Execute(ctx context.Context, ownerID uuid.UUID, listingID int64) (bool, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":   "ToggleListingActive",
		"owner_id":   ownerID.String(),
		"listing_id": listingID,
	})

	listing, err := findOwnedListing(ctx, uc.repo, ownerID, listingID)
	if err != nil {
		ucLogger.Warn("Listing is not editable by this user", port.Fields{"reason": err.Error()})
		return false, err
	}

	active := !listing.Active
	if err := uc.repo.SetActive(ctx, listingID, active); err != nil {
		ucLogger.Error("Repository failed to toggle listing", err, nil)
		return false, err
	}

	ucLogger.Info("Listing active flag changed", port.Fields{"active": active})
	return active, nil
}

type GetMyListingsUseCase struct {
	repo port.ListingRepositoryPort
}

func NewGetMyListingsUseCase(repo port.ListingRepositoryPort) *GetMyListingsUseCase {
	return &GetMyListingsUseCase{repo: repo}
}

func (uc *GetMyListingsUseCase) Execute(ctx context.Context, ownerID uuid.UUID) ([]domain.Listing, error) {
	listings, err := uc.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Repository failed to load owner listings", err, port.Fields{
			"use_case": "GetMyListings",
			"owner_id": ownerID.String(),
		})
		return nil, err
	}
	return listings, nil
}

func findOwnedListing(ctx context.Context, repo port.ListingRepositoryPort, ownerID uuid.UUID, listingID int64) (*domain.Listing, error) {
	listing, err := repo.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != ownerID {
		return nil, domain.ErrNotListingOwner
	}
	return listing, nil
}
