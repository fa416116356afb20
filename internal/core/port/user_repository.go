package port

import (
	"context"
	"time"

	"findar-backend/internal/core/domain"

	"github.com/google/uuid"
)

// UserRepositoryPort works on the local mirror of users owned by the auth service.
type UserRepositoryPort interface {
	// Touch records activity, creating the mirror row on first sight.
	Touch(ctx context.Context, userID uuid.UUID, at time.Time) error

	// ClaimInactive marks as reminded every user idle for at least threshold
	// who has not been reminded since their last activity, and returns them.
	ClaimInactive(ctx context.Context, now time.Time, threshold time.Duration) ([]domain.User, error)
}

// CreditLedgerPort settles boosting payments.
type CreditLedgerPort interface {
	// Charge returns domain.ErrInsufficientCredits when the balance is too low.
	Charge(ctx context.Context, userID uuid.UUID, amount float64) error
	Refund(ctx context.Context, userID uuid.UUID, amount float64) error
}
