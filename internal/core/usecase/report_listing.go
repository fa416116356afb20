package usecase

import (
	"context"
	"strings"

	"findar-backend/internal/contextkeys"
	"findar-backend/internal/core/domain"
	"findar-backend/internal/core/port"

	"github.com/google/uuid"
)

type ReportListingUseCase struct {
	listings port.ListingRepositoryPort
	reports  port.ReportRepositoryPort
}

func NewReportListingUseCase(listings port.ListingRepositoryPort, reports port.ReportRepositoryPort) *ReportListingUseCase {
	return &ReportListingUseCase{listings: listings, reports: reports}
}

func (uc *ReportListingUseCase) Execute(ctx context.Context, reporterID uuid.UUID, listingID int64, reason, details string) (*domain.Report, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":    "ReportListing",
		"reporter_id": reporterID.String(),
		"listing_id":  listingID,
	})

	ucLogger.Info("Use case started", nil)

	report := &domain.Report{
		ListingID:  listingID,
		ReporterID: reporterID,
		Reason:     strings.TrimSpace(reason),
		Details:    strings.TrimSpace(details),
	}
	if err := report.Validate(); err != nil {
		return nil, err
	}
	if _, err := uc.listings.FindByID(ctx, listingID); err != nil {
		ucLogger.Warn("Cannot report listing", port.Fields{"reason": err.Error()})
		return nil, err
	}

	if err := uc.reports.Create(ctx, report); err != nil {
		ucLogger.Error("Repository failed to create report", err, nil)
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"report_id": report.ID})
	return report, nil
}
