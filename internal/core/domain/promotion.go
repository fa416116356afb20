package domain

import (
	"time"

	"github.com/google/uuid"
)

// ExpiryWarningWindow is the period before expiry during which exactly one reminder is due.
const ExpiryWarningWindow = 24 * time.Hour

// Promotion is a paid, time-bounded boost of a listing.
// ExpiresAt never changes after creation; Notified flips from false to true at most once.
type Promotion struct {
	ID        int64
	PlanID    int64
	ListingID int64
	CreatedAt time.Time
	ExpiresAt time.Time
	Notified  bool
}

// EntersWarningWindow reports whether a scan at now must claim this promotion.
func (p Promotion) EntersWarningWindow(now time.Time) bool {
	return !p.Notified && p.ExpiresAt.After(now) && !p.ExpiresAt.After(now.Add(ExpiryWarningWindow))
}

// ExpiringPromotion is a promotion claimed by a scan together with the owner it must be reported to.
type ExpiringPromotion struct {
	Promotion
	OwnerID      uuid.UUID
	ListingTitle string
}

// ExpiryReminder pairs a claimed promotion with every registered device of its owner.
// DeviceLookupFailed is set when the owner's devices could not be loaded; the promotion stays claimed.
type ExpiryReminder struct {
	Promotion          ExpiringPromotion
	Devices            []DeviceRegistration
	DeviceLookupFailed bool
}

// ReminderRunStats summarizes one scheduled reminder run.
type ReminderRunStats struct {
	Claimed        int
	JobsEnqueued   int
	EnqueueFailed  int
	LookupFailures int
}
