package usecase

import (
	"context"

	"findar-backend/internal/contextkeys"
	"findar-backend/internal/core/domain"
	"findar-backend/internal/core/port"

	"github.com/google/uuid"
)

type SaveListingUseCase struct {
	listings port.ListingRepositoryPort
	saved    port.SavedListingRepositoryPort
}

func NewSaveListingUseCase(listings port.ListingRepositoryPort, saved port.SavedListingRepositoryPort) *SaveListingUseCase {
	return &SaveListingUseCase{listings: listings, saved: saved}
}

func (uc *SaveListingUseCase) Execute(ctx context.Context, userID uuid.UUID, listingID int64) error {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":   "SaveListing",
		"user_id":    userID.String(),
		"listing_id": listingID,
	})

	ucLogger.Info("Use case started", nil)

	if _, err := uc.listings.FindByID(ctx, listingID); err != nil {
		ucLogger.Warn("Cannot save listing", port.Fields{"reason": err.Error()})
		return err
	}
	if err := uc.saved.Save(ctx, userID, listingID); err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return err
	}

	ucLogger.Info("Use case finished successfully", nil)
	return nil
}

type UnsaveListingUseCase struct {
	saved port.SavedListingRepositoryPort
}

func NewUnsaveListingUseCase(saved port.SavedListingRepositoryPort) *UnsaveListingUseCase {
	return &UnsaveListingUseCase{saved: saved}
}

func (uc *UnsaveListingUseCase) Execute(ctx context.Context, userID uuid.UUID, listingID int64) error {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":   "UnsaveListing",
		"user_id":    userID.String(),
		"listing_id": listingID,
	})

	if err := uc.saved.Remove(ctx, userID, listingID); err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return err
	}

	ucLogger.Info("Use case finished successfully", nil)
	return nil
}

type GetSavedListingsUseCase struct {
	saved port.SavedListingRepositoryPort
}

func NewGetSavedListingsUseCase(saved port.SavedListingRepositoryPort) *GetSavedListingsUseCase {
	return &GetSavedListingsUseCase{saved: saved}
}

func (uc *GetSavedListingsUseCase) Execute(ctx context.Context, userID uuid.UUID) ([]domain.Listing, error) {
	listings, err := uc.saved.FindListingsByUser(ctx, userID)
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Repository failed to load saved listings", err, port.Fields{
			"use_case": "GetSavedListings",
			"user_id":  userID.String(),
		})
		return nil, err
	}
	return listings, nil
}
