package usecase

import (
	"context"
	"fmt"
	"time"

	"findar-backend/internal/contextkeys"
	"findar-backend/internal/core/domain"
	"findar-backend/internal/core/port"
	"findar-backend/internal/core/port/usecases_port"

	"github.com/google/uuid"
)

type ListBoostingPlansUseCase struct {
	repo port.BoostingPlanRepositoryPort
}

func NewListBoostingPlansUseCase(repo port.BoostingPlanRepositoryPort) *ListBoostingPlansUseCase {
	return &ListBoostingPlansUseCase{repo: repo}
}

func (uc *ListBoostingPlansUseCase) Execute(ctx context.Context) ([]domain.BoostingPlan, error) {
	plans, err := uc.repo.FindAll(ctx)
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Repository failed to load boosting plans", err, port.Fields{"use_case": "ListBoostingPlans"})
		return nil, err
	}
	return plans, nil
}

// CreateBoostingPlanUseCase persists a plan and only then announces it to the plan's audience topic.
type CreateBoostingPlanUseCase struct {
	repo  port.BoostingPlanRepositoryPort
	queue port.PushJobQueuePort
}

func NewCreateBoostingPlanUseCase(repo port.BoostingPlanRepositoryPort, queue port.PushJobQueuePort) *CreateBoostingPlanUseCase {
	return &CreateBoostingPlanUseCase{repo: repo, queue: queue}
}

func (uc *CreateBoostingPlanUseCase) Execute(ctx context.Context, plan domain.BoostingPlan) (*domain.BoostingPlan, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":        "CreateBoostingPlan",
		"plan_type":       plan.PlanType,
		"target_audience": string(plan.TargetAudience),
	})

	ucLogger.Info("Use case started", nil)

	if err := plan.Validate(); err != nil {
		ucLogger.Warn("Plan rejected", port.Fields{"reason": err.Error()})
		return nil, err
	}
	if err := uc.repo.Create(ctx, &plan); err != nil {
		ucLogger.Error("Repository failed to create plan", err, nil)
		return nil, err
	}
	ucLogger = ucLogger.WithFields(port.Fields{"plan_id": plan.ID})

	job := domain.PushJob{
		Kind:      domain.PushKindNewPlans,
		Recipient: domain.TopicRecipient(plan.AnnouncementTopic()),
		Message:   domain.NewBoostingPlansMessage(),
	}
	if err := uc.queue.Enqueue(ctx, job); err != nil {
		// the plan is committed; a lost announcement is not worth failing the request for
		ucLogger.Error("Failed to enqueue plan announcement", err, port.Fields{"topic": job.Recipient.Topic})
	} else {
		ucLogger.Info("Plan announcement enqueued", port.Fields{"topic": job.Recipient.Topic})
	}

	ucLogger.Info("Use case finished successfully", nil)
	return &plan, nil
}

// SyncPlanCatalogUseCase creates catalog plans missing from the store, keyed by plan type and audience.
type SyncPlanCatalogUseCase struct {
	repo    port.BoostingPlanRepositoryPort
	creator usecases_port.CreateBoostingPlanUseCasePort
}

func NewSyncPlanCatalogUseCase(repo port.BoostingPlanRepositoryPort, creator usecases_port.CreateBoostingPlanUseCasePort) *SyncPlanCatalogUseCase {
	return &SyncPlanCatalogUseCase{repo: repo, creator: creator}
}

func (uc *SyncPlanCatalogUseCase) Execute(ctx context.Context, catalog []domain.BoostingPlan) (int, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":     "SyncPlanCatalog",
		"catalog_size": len(catalog),
	})

	ucLogger.Info("Use case started", nil)

	created := 0
	for _, plan := range catalog {
		exists, err := uc.repo.Exists(ctx, plan.PlanType, plan.TargetAudience)
		if err != nil {
			return created, fmt.Errorf("check plan %s/%s: %w", plan.PlanType, plan.TargetAudience, err)
		}
		if exists {
			continue
		}
		if _, err := uc.creator.Execute(ctx, plan); err != nil {
			return created, fmt.Errorf("create plan %s/%s: %w", plan.PlanType, plan.TargetAudience, err)
		}
		created++
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"created": created})
	return created, nil
}

// BoostListingUseCase charges the owner and starts a promotion.
// Any failure after the charge refunds it.
type BoostListingUseCase struct {
	listings   port.ListingRepositoryPort
	plans      port.BoostingPlanRepositoryPort
	promotions port.PromotionRepositoryPort
	ledger     port.CreditLedgerPort
	now        func() time.Time
}

func NewBoostListingUseCase(
	listings port.ListingRepositoryPort,
	plans port.BoostingPlanRepositoryPort,
	promotions port.PromotionRepositoryPort,
	ledger port.CreditLedgerPort,
) *BoostListingUseCase {
	return &BoostListingUseCase{
		listings:   listings,
		plans:      plans,
		promotions: promotions,
		ledger:     ledger,
		now:        time.Now,
	}
}

func (uc *BoostListingUseCase) Execute(ctx context.Context, ownerID uuid.UUID, listingID, planID int64) (*domain.Promotion, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":   "BoostListing",
		"owner_id":   ownerID.String(),
		"listing_id": listingID,
		"plan_id":    planID,
	})

	ucLogger.Info("Use case started", nil)

	if _, err := findOwnedListing(ctx, uc.listings, ownerID, listingID); err != nil {
		ucLogger.Warn("Listing cannot be boosted by this user", port.Fields{"reason": err.Error()})
		return nil, err
	}
	plan, err := uc.plans.FindByID(ctx, planID)
	if err != nil {
		ucLogger.Warn("Plan lookup failed", port.Fields{"reason": err.Error()})
		return nil, err
	}

	if err := uc.ledger.Charge(ctx, ownerID, plan.CreditCost); err != nil {
		ucLogger.Warn("Credit charge failed", port.Fields{"reason": err.Error(), "cost": plan.CreditCost})
		return nil, err
	}

	now := uc.now().UTC()
	promotion := &domain.Promotion{
		PlanID:    plan.ID,
		ListingID: listingID,
		CreatedAt: now,
		ExpiresAt: plan.ExpiresAt(now),
	}

	// boosted is set first: a sponsored listing also needs a running promotion, so a
	// failure between the two steps never exposes an unpaid boost
	if err := uc.listings.MarkBoosted(ctx, listingID); err != nil {
		ucLogger.Error("Failed to mark listing boosted", err, nil)
		uc.refund(ctx, ucLogger, ownerID, plan.CreditCost)
		return nil, err
	}
	if err := uc.promotions.Create(ctx, promotion); err != nil {
		ucLogger.Error("Failed to create promotion", err, nil)
		uc.refund(ctx, ucLogger, ownerID, plan.CreditCost)
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{
		"promotion_id": promotion.ID,
		"expires_at":   promotion.ExpiresAt,
	})
	return promotion, nil
}

func (uc *BoostListingUseCase) refund(ctx context.Context, logger port.LoggerPort, ownerID uuid.UUID, amount float64) {
	if err := uc.ledger.Refund(ctx, ownerID, amount); err != nil {
		logger.Error("Refund failed, credits must be restored manually", err, port.Fields{"amount": amount})
	}
}
