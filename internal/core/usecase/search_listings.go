package usecase

import (
	"context"

	"findar-backend/internal/contextkeys"
	"findar-backend/internal/core/domain"
	"findar-backend/internal/core/port"
	"findar-backend/internal/core/search"
)

// AdvancedSearchUseCase lets the repository narrow the candidate set and then
// applies the full filter chain and ranking in memory, so the result never depends
// on how precise the repository prefilter is.
type AdvancedSearchUseCase struct {
	repo port.ListingRepositoryPort
}

func NewAdvancedSearchUseCase(repo port.ListingRepositoryPort) *AdvancedSearchUseCase {
	return &AdvancedSearchUseCase{repo: repo}
}

func (uc *AdvancedSearchUseCase) Execute(ctx context.Context, criteria domain.SearchCriteria) ([]domain.Listing, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "AdvancedSearch",
		"sort_by":  string(criteria.SortBy),
		"geo":      criteria.Origin != nil,
	})

	ucLogger.Info("Use case started", nil)

	candidates, err := uc.repo.FindSearchCandidates(ctx, criteria)
	if err != nil {
		ucLogger.Error("Repository failed to load search candidates", err, nil)
		return nil, err
	}

	result := search.Run(candidates, criteria)

	ucLogger.Info("Use case finished successfully", port.Fields{
		"candidates": len(candidates),
		"results":    len(result),
	})
	return result, nil
}

type RecentListingsUseCase struct {
	repo port.ListingRepositoryPort
}

func NewRecentListingsUseCase(repo port.ListingRepositoryPort) *RecentListingsUseCase {
	return &RecentListingsUseCase{repo: repo}
}

func (uc *RecentListingsUseCase) Execute(ctx context.Context, query domain.RecentQuery) ([]domain.Listing, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "RecentListings"})

	ucLogger.Debug("Use case started", nil)

	candidates, err := uc.repo.FindRecent(ctx, query, domain.RecentListingsLimit)
	if err != nil {
		ucLogger.Error("Repository failed to load recent listings", err, nil)
		return nil, err
	}

	result := search.Recent(candidates, query)
	ucLogger.Debug("Use case finished successfully", port.Fields{"results": len(result)})
	return result, nil
}
