package port

import (
	"context"
	"time"

	"findar-backend/internal/core/domain"
)

type PromotionRepositoryPort interface {
	Create(ctx context.Context, promotion *domain.Promotion) error

	// ClaimExpiring flips notified to true for every unnotified promotion with
	// now < expires_at <= now+window and returns exactly the rows it flipped.
	// Concurrent callers never receive the same promotion.
	ClaimExpiring(ctx context.Context, now time.Time, window time.Duration) ([]domain.ExpiringPromotion, error)
}
